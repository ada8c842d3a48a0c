package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/nblast/nblast/pkg/nblast"
	"github.com/nblast/nblast/pkg/neighbor"
	"github.com/nblast/nblast/pkg/observability"
	"github.com/nblast/nblast/pkg/tenant"
)

// Handler implements the NBLAST REST API against an in-process tenant
// manager. There is no client stub here: every handler reaches straight
// into a tenant's Arena.
type Handler struct {
	tenants *tenant.Manager
	metrics *observability.Metrics
	logger  *observability.Logger
	labels  map[string]*nblast.LabelIndex // one label index per tenant namespace
}

// NewHandler creates a new REST API handler bound to a tenant manager.
func NewHandler(tenants *tenant.Manager, metrics *observability.Metrics, logger *observability.Logger) *Handler {
	return &Handler{
		tenants: tenants,
		metrics: metrics,
		logger:  logger,
		labels:  make(map[string]*nblast.LabelIndex),
	}
}

func (h *Handler) labelIndex(namespace string) *nblast.LabelIndex {
	if idx, ok := h.labels[namespace]; ok {
		return idx
	}
	idx := nblast.NewLabelIndex()
	h.labels[namespace] = idx
	return idx
}

// HealthCheck handles GET /v1/health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, map[string]interface{}{
		"status":  "ok",
		"tenants": h.tenants.Count(),
	}, http.StatusOK)
}

// CreateTenant handles POST /v1/tenants
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Namespace       string `json:"namespace"`
		MaxNeurons      int64  `json:"max_neurons"`
		MaxStorageBytes int64  `json:"max_storage_bytes"`
		RateLimitQPS    int    `json:"rate_limit_qps"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	quota := tenant.DefaultQuota()
	if req.MaxNeurons != 0 {
		quota.MaxNeurons = req.MaxNeurons
	}
	if req.MaxStorageBytes != 0 {
		quota.MaxStorageBytes = req.MaxStorageBytes
	}
	if req.RateLimitQPS != 0 {
		quota.RateLimitQPS = req.RateLimitQPS
	}

	t, err := h.tenants.CreateTenant(req.Namespace, quota)
	if err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}

	if h.metrics != nil {
		h.metrics.UpdateTenantCount(h.tenants.Count())
	}

	writeJSON(w, tenantResponse(t), http.StatusCreated)
}

// GetTenant handles GET /v1/tenants/{namespace}
func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request, namespace string) {
	t, err := h.tenants.GetTenant(namespace)
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, tenantResponse(t), http.StatusOK)
}

func tenantResponse(t *tenant.Tenant) map[string]interface{} {
	return map[string]interface{}{
		"id":            t.ID,
		"namespace":     t.Namespace,
		"neuron_count":  t.Usage.NeuronCount,
		"storage_bytes": t.Usage.StorageBytes,
		"is_active":     t.IsActive,
		"usage_percent": t.GetUsagePercentage(),
		"created_at":    t.CreatedAt,
	}
}

// neuronRequest is the wire shape for a single neuron submission: a flat
// list of [x, y, z] points sampled along the arbor.
type neuronRequest struct {
	Points   [][3]float64           `json:"points"`
	Label    string                 `json:"label,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// AddNeuron handles POST /v1/tenants/{namespace}/neurons
func (h *Handler) AddNeuron(w http.ResponseWriter, r *http.Request, namespace string) {
	t, err := h.tenants.GetTenant(namespace)
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}

	var req neuronRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	points := make([]nblast.Point, len(req.Points))
	for i, p := range req.Points {
		points[i] = nblast.Point(p)
	}

	start := time.Now()
	idx, err := t.AddNeuron(points, req.Metadata)
	if err != nil {
		if h.metrics != nil && errors.Is(err, nblast.ErrTangentEstimationFailed) {
			h.metrics.RecordTangentEstimationFailure()
		}
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Label != "" {
		h.labelIndex(namespace).Set(idx, req.Label)
	}

	if h.metrics != nil {
		h.metrics.RecordNeuronAdded()
		h.metrics.RecordArenaQuery("add", time.Since(start), 0)
		h.metrics.UpdateTenantQuota(namespace, "neurons", t.GetUsagePercentage()["neurons"])
	}

	writeJSON(w, map[string]interface{}{"index": idx}, http.StatusCreated)
}

// NeuronStats handles GET /v1/tenants/{namespace}/neurons/{id}/stats
func (h *Handler) NeuronStats(w http.ResponseWriter, r *http.Request, namespace, id string) {
	t, err := h.tenants.GetTenant(namespace)
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}

	idx, err := parseNeuronIndex(id)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	points, ok := t.Arena.Points(idx)
	if !ok {
		writeError(w, "neuron not found", http.StatusNotFound)
		return
	}

	writeJSON(w, nblast.ComputePointCloudStats(points), http.StatusOK)
}

// SuggestSimilar handles GET /v1/tenants/{namespace}/neurons/{id}/similar
// It is backed by the approximate shortlist (pkg/neighbor), built lazily on
// first use, and never touches exact scoring.
func (h *Handler) SuggestSimilar(w http.ResponseWriter, r *http.Request, namespace, id string) {
	t, err := h.tenants.GetTenant(namespace)
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}

	idx, err := parseNeuronIndex(id)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	k := ParseIntQuery(r, "k", 10)

	if !t.Arena.ShortlistEnabled() {
		if err := t.Arena.EnableShortlist(neighbor.DefaultConfig()); err != nil {
			writeError(w, fmt.Sprintf("Failed to build shortlist index: %v", err), http.StatusInternalServerError)
			return
		}
	}

	start := time.Now()
	suggestions, err := t.Arena.SuggestSimilar(idx, k)
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordShortlistQuery(time.Since(start))
	}

	writeJSON(w, map[string]interface{}{"suggestions": suggestions}, http.StatusOK)
}

// Query handles POST /v1/tenants/{namespace}/query, a single directional or
// symmetrized score between two neurons already held by the arena.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request, namespace string) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	t, err := h.tenants.GetTenant(namespace)
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}

	if err := t.CheckRateLimit(); err != nil {
		writeError(w, err.Error(), http.StatusTooManyRequests)
		return
	}

	var req struct {
		Query      int  `json:"query"`
		Target     int  `json:"target"`
		Normalized bool `json:"normalized"`
		Symmetric  bool `json:"symmetric"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	start := time.Now()
	score, ok := t.Query(nblast.NeuronIndex(req.Query), nblast.NeuronIndex(req.Target), req.Normalized, req.Symmetric)
	if !ok {
		writeError(w, "query or target index out of range", http.StatusNotFound)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordArenaQuery("query", time.Since(start), 1)
	}

	writeJSON(w, map[string]interface{}{"score": score}, http.StatusOK)
}

// Batch handles POST /v1/tenants/{namespace}/batch, the cartesian product
// of the given query and target indices.
func (h *Handler) Batch(w http.ResponseWriter, r *http.Request, namespace string) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	t, err := h.tenants.GetTenant(namespace)
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}

	if err := t.CheckRateLimit(); err != nil {
		writeError(w, err.Error(), http.StatusTooManyRequests)
		return
	}

	var req struct {
		Queries    []int `json:"queries"`
		Targets    []int `json:"targets"`
		Normalized bool  `json:"normalized"`
		Symmetric  bool  `json:"symmetric"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	queries := toNeuronIndices(req.Queries)
	targets := toNeuronIndices(req.Targets)

	start := time.Now()
	result := t.Arena.Batch(queries, targets, req.Normalized, req.Symmetric)

	if h.metrics != nil {
		h.metrics.RecordArenaQuery("batch", time.Since(start), len(result))
	}

	writeJSON(w, map[string]interface{}{"scores": batchResponse(result)}, http.StatusOK)
}

// AllVsAll handles POST /v1/tenants/{namespace}/all-vs-all.
func (h *Handler) AllVsAll(w http.ResponseWriter, r *http.Request, namespace string) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	t, err := h.tenants.GetTenant(namespace)
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}

	if err := t.CheckRateLimit(); err != nil {
		writeError(w, err.Error(), http.StatusTooManyRequests)
		return
	}

	var req struct {
		Normalized bool `json:"normalized"`
		Symmetric  bool `json:"symmetric"`
	}
	// An empty body is fine: defaults to un-normalized, asymmetric.
	_ = json.NewDecoder(r.Body).Decode(&req)

	start := time.Now()
	result := t.Arena.AllVsAll(req.Normalized, req.Symmetric)

	if h.metrics != nil {
		h.metrics.RecordArenaQuery("all_vs_all", time.Since(start), len(result))
	}

	writeJSON(w, map[string]interface{}{"scores": batchResponse(result)}, http.StatusOK)
}

// SearchLabels handles GET /v1/tenants/{namespace}/labels/search?q=...
func (h *Handler) SearchLabels(w http.ResponseWriter, r *http.Request, namespace string) {
	if _, err := h.tenants.GetTenant(namespace); err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}

	query := r.URL.Query().Get("q")
	matches := h.labelIndex(namespace).Search(query)
	writeJSON(w, map[string]interface{}{"matches": matches}, http.StatusOK)
}

func batchResponse(result map[nblast.PairKey]float64) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(result))
	for pair, score := range result {
		out = append(out, map[string]interface{}{
			"query":  pair.Query,
			"target": pair.Target,
			"score":  score,
		})
	}
	return out
}

func toNeuronIndices(ints []int) []nblast.NeuronIndex {
	out := make([]nblast.NeuronIndex, len(ints))
	for i, v := range ints {
		out[i] = nblast.NeuronIndex(v)
	}
	return out
}

func parseNeuronIndex(id string) (nblast.NeuronIndex, error) {
	v, err := strconv.Atoi(id)
	if err != nil {
		return 0, err
	}
	return nblast.NeuronIndex(v), nil
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, fmt.Sprintf("Failed to encode response: %v", err), http.StatusInternalServerError)
	}
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  message,
		"status": statusCode,
	})
}

// ServeDocs serves the OpenAPI documentation
func ServeDocs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	content, err := os.ReadFile("docs/api/openapi.yaml")
	if err != nil {
		writeError(w, "OpenAPI spec not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/x-yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

// ServeSwaggerUI serves the Swagger UI HTML page
func ServeSwaggerUI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	html := `<!DOCTYPE html>
<html>
<head>
    <title>NBLAST API Documentation</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            SwaggerUIBundle({
                url: "/docs/openapi.yaml",
                dom_id: '#swagger-ui',
                presets: [
                    SwaggerUIBundle.presets.apis,
                    SwaggerUIBundle.SwaggerUIStandalonePreset
                ],
                layout: "BaseLayout"
            });
        };
    </script>
</body>
</html>`

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// ParseIntQuery parses an integer query parameter
func ParseIntQuery(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return parsed
}
