package tenant

import (
	"fmt"
	"sync"
	"time"

	"github.com/nblast/nblast/pkg/nblast"
)

// Quota represents resource limits for a tenant's arena.
type Quota struct {
	MaxNeurons      int64 // Maximum number of neurons held in the arena
	MaxStorageBytes int64 // Approximate point-cloud storage budget, in bytes
	RateLimitQPS    int   // Query/batch/all-vs-all requests per second
}

// Usage tracks current resource usage for a tenant.
type Usage struct {
	NeuronCount   int64
	StorageBytes  int64
	LastQueryTime time.Time
	QueryCount    int64
}

// Tenant represents an isolated NBLAST arena with its own quotas.
type Tenant struct {
	ID        string
	Name      string
	Namespace string
	Quota     Quota
	Usage     Usage
	Arena     *nblast.Arena
	PairCache *nblast.PairCache // nil unless the manager was configured with one
	CreatedAt time.Time
	UpdatedAt time.Time
	IsActive  bool
	Metadata  map[string]interface{}
	mu        sync.RWMutex
}

// Manager handles tenant lifecycle and resource enforcement. Each tenant
// owns exactly one Arena, scored with the same ScoreFunc for every tenant
// since the dissimilarity lookup table is a property of the deployment,
// not of any one dataset.
type Manager struct {
	scoreFn           nblast.ScoreFunc
	tenants           map[string]*Tenant
	pairCacheCapacity int
	pairCacheTTL      time.Duration
	mu                sync.RWMutex
}

// NewManager creates a new tenant manager. scoreFn is shared across every
// tenant's arena.
func NewManager(scoreFn nblast.ScoreFunc) *Manager {
	return &Manager{
		scoreFn: scoreFn,
		tenants: make(map[string]*Tenant),
	}
}

// EnablePairCaching turns on a per-tenant pairwise-score cache for every
// tenant created from this point forward. Existing tenants are unaffected.
func (m *Manager) EnablePairCaching(capacity int, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pairCacheCapacity = capacity
	m.pairCacheTTL = ttl
}

// CreateTenant creates a new tenant with its own arena and the given quota.
func (m *Manager) CreateTenant(namespace string, quota Quota) (*Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tenants[namespace]; exists {
		return nil, fmt.Errorf("tenant with namespace '%s' already exists", namespace)
	}

	t := &Tenant{
		ID:        generateTenantID(namespace),
		Name:      namespace,
		Namespace: namespace,
		Quota:     quota,
		Arena:     nblast.NewArena(m.scoreFn),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		IsActive:  true,
		Metadata:  make(map[string]interface{}),
	}
	if m.pairCacheCapacity > 0 {
		t.PairCache = nblast.NewPairCache(m.pairCacheCapacity, m.pairCacheTTL)
	}

	m.tenants[namespace] = t
	return t, nil
}

// GetTenant retrieves a tenant by namespace.
func (m *Manager) GetTenant(namespace string) (*Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, exists := m.tenants[namespace]
	if !exists {
		return nil, fmt.Errorf("tenant with namespace '%s' not found", namespace)
	}

	return t, nil
}

// DeleteTenant removes a tenant and its arena.
func (m *Manager) DeleteTenant(namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tenants[namespace]; !exists {
		return fmt.Errorf("tenant with namespace '%s' not found", namespace)
	}

	delete(m.tenants, namespace)
	return nil
}

// ListTenants returns all tenants.
func (m *Manager) ListTenants() []*Tenant {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tenants := make([]*Tenant, 0, len(m.tenants))
	for _, t := range m.tenants {
		tenants = append(tenants, t)
	}

	return tenants
}

// Count returns the number of tenants, active or not.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tenants)
}

// UpdateQuota updates the quota for a tenant.
func (m *Manager) UpdateQuota(namespace string, quota Quota) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, exists := m.tenants[namespace]
	if !exists {
		return fmt.Errorf("tenant with namespace '%s' not found", namespace)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.Quota = quota
	t.UpdatedAt = time.Now()

	return nil
}

// CheckNeuronQuota checks if adding count neurons would exceed quota.
func (t *Tenant) CheckNeuronQuota(count int64) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.Quota.MaxNeurons > 0 && t.Usage.NeuronCount+count > t.Quota.MaxNeurons {
		return fmt.Errorf("neuron quota exceeded: current=%d, requested=%d, max=%d",
			t.Usage.NeuronCount, count, t.Quota.MaxNeurons)
	}

	return nil
}

// CheckStorageQuota checks if adding storage would exceed quota.
func (t *Tenant) CheckStorageQuota(bytes int64) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.Quota.MaxStorageBytes > 0 && t.Usage.StorageBytes+bytes > t.Quota.MaxStorageBytes {
		return fmt.Errorf("storage quota exceeded: current=%d, requested=%d, max=%d",
			t.Usage.StorageBytes, bytes, t.Quota.MaxStorageBytes)
	}

	return nil
}

// CheckRateLimit checks if the query rate limit is exceeded, advancing the
// per-second counter as a side effect.
func (t *Tenant) CheckRateLimit() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.Quota.RateLimitQPS <= 0 {
		return nil
	}

	now := time.Now()
	if now.Sub(t.Usage.LastQueryTime) < time.Second {
		if t.Usage.QueryCount >= int64(t.Quota.RateLimitQPS) {
			return fmt.Errorf("rate limit exceeded: %d queries per second (max: %d)",
				t.Usage.QueryCount, t.Quota.RateLimitQPS)
		}
	} else {
		t.Usage.QueryCount = 0
		t.Usage.LastQueryTime = now
	}

	t.Usage.QueryCount++
	return nil
}

// Query answers from the tenant's PairCache when one is configured and the
// pair is present, otherwise delegates to the Arena and populates the
// cache. Behaves exactly like Arena.Query when no cache is configured.
func (t *Tenant) Query(q, target nblast.NeuronIndex, normalized, symmetric bool) (float64, bool) {
	if t.PairCache != nil {
		if score, ok := t.PairCache.Get(q, target, normalized, symmetric); ok {
			return score, true
		}
	}
	score, ok := t.Arena.Query(q, target, normalized, symmetric)
	if ok && t.PairCache != nil {
		t.PairCache.Put(q, target, normalized, symmetric, score)
	}
	return score, ok
}

// AddNeuron checks the neuron and storage quotas, builds a target neuron
// from points, adds it to the tenant's arena, and updates usage on success.
func (t *Tenant) AddNeuron(points []nblast.Point, metadata map[string]interface{}) (nblast.NeuronIndex, error) {
	if err := t.CheckNeuronQuota(1); err != nil {
		return 0, err
	}

	storageBytes := int64(len(points)) * pointStorageBytes
	if err := t.CheckStorageQuota(storageBytes); err != nil {
		return 0, err
	}

	neuron, err := nblast.NewTargetNeuron(points)
	if err != nil {
		return 0, err
	}

	idx := t.Arena.AddWithMetadata(neuron, metadata)

	t.mu.Lock()
	t.Usage.NeuronCount++
	t.Usage.StorageBytes += storageBytes
	t.UpdatedAt = time.Now()
	t.mu.Unlock()

	return idx, nil
}

// pointStorageBytes approximates the resident size of one sampled point:
// three float64 coordinates plus the three float64 components of the
// tangent computed for it.
const pointStorageBytes = 6 * 8

// GetUsagePercentage returns usage as a percentage of quota, per resource.
func (t *Tenant) GetUsagePercentage() map[string]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	percentages := make(map[string]float64)

	if t.Quota.MaxNeurons > 0 {
		percentages["neurons"] = float64(t.Usage.NeuronCount) / float64(t.Quota.MaxNeurons) * 100
	}

	if t.Quota.MaxStorageBytes > 0 {
		percentages["storage"] = float64(t.Usage.StorageBytes) / float64(t.Quota.MaxStorageBytes) * 100
	}

	return percentages
}

// IsOverQuota checks if any quota is exceeded.
func (t *Tenant) IsOverQuota() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.Quota.MaxNeurons > 0 && t.Usage.NeuronCount > t.Quota.MaxNeurons {
		return true
	}

	if t.Quota.MaxStorageBytes > 0 && t.Usage.StorageBytes > t.Quota.MaxStorageBytes {
		return true
	}

	return false
}

// SetActive sets the tenant active status.
func (t *Tenant) SetActive(active bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.IsActive = active
	t.UpdatedAt = time.Now()
}

// GetMetadata retrieves tenant metadata.
func (t *Tenant) GetMetadata(key string) (interface{}, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	value, exists := t.Metadata[key]
	return value, exists
}

// SetMetadata sets tenant metadata.
func (t *Tenant) SetMetadata(key string, value interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Metadata[key] = value
	t.UpdatedAt = time.Now()
}

// generateTenantID generates a unique tenant ID.
func generateTenantID(namespace string) string {
	return fmt.Sprintf("tenant_%s_%d", namespace, time.Now().UnixNano())
}

// DefaultQuota returns a default quota configuration.
func DefaultQuota() Quota {
	return Quota{
		MaxNeurons:      100000,
		MaxStorageBytes: 1024 * 1024 * 1024, // 1GB
		RateLimitQPS:    1000,
	}
}

// UnlimitedQuota returns an unlimited quota configuration.
func UnlimitedQuota() Quota {
	return Quota{
		MaxNeurons:      -1,
		MaxStorageBytes: -1,
		RateLimitQPS:    -1,
	}
}
