package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/nblast/nblast/pkg/nblast"
	"github.com/nblast/nblast/pkg/observability"
	"github.com/nblast/nblast/pkg/tenant"
)

func identityScoreFn(d nblast.DistDot) float64 {
	if d.Dist == 0 && d.Dot == 1 {
		return 1
	}
	return 0
}

func linePoints(n int, offset float64) [][3]float64 {
	points := make([][3]float64, n)
	for i := 0; i < n; i++ {
		points[i] = [3]float64{float64(i) + offset, 0, 0}
	}
	return points
}

var (
	testMetricsOnce sync.Once
	testMetrics     *observability.Metrics
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	tenants := tenant.NewManager(identityScoreFn)
	if _, err := tenants.CreateTenant("default", tenant.UnlimitedQuota()); err != nil {
		t.Fatalf("CreateTenant: %v", err)
	}
	// NewMetrics registers with the global Prometheus registry, so every
	// handler in this test binary shares one Metrics.
	testMetricsOnce.Do(func() { testMetrics = observability.NewMetrics() })
	return NewHandler(tenants, testMetrics, observability.NewDefaultLogger())
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	h := newTestHandler(t)
	rec := doJSON(t, h.HealthCheck, http.MethodGet, "/v1/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAddNeuronAndQuery(t *testing.T) {
	h := newTestHandler(t)

	addFirst := func(w http.ResponseWriter, r *http.Request) { h.AddNeuron(w, r, "default") }
	rec := doJSON(t, addFirst, http.MethodPost, "/v1/tenants/default/neurons", neuronRequest{
		Points: linePoints(5, 0),
		Label:  "DA1 PN",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, addFirst, http.MethodPost, "/v1/tenants/default/neurons", neuronRequest{
		Points: linePoints(5, 10),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	queryHandler := func(w http.ResponseWriter, r *http.Request) { h.Query(w, r, "default") }
	rec = doJSON(t, queryHandler, http.MethodPost, "/v1/tenants/default/query", map[string]interface{}{
		"query":      0,
		"target":     0,
		"normalized": false,
		"symmetric":  false,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if result["score"].(float64) != 5 {
		t.Errorf("expected self-query score of 5 (identity scoreFn over 5 points), got %v", result["score"])
	}
}

func TestAddNeuronTooFewPoints(t *testing.T) {
	h := newTestHandler(t)
	addHandler := func(w http.ResponseWriter, r *http.Request) { h.AddNeuron(w, r, "default") }
	rec := doJSON(t, addHandler, http.MethodPost, "/v1/tenants/default/neurons", neuronRequest{
		Points: linePoints(2, 0),
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for too few points, got %d", rec.Code)
	}
}

func TestSearchLabels(t *testing.T) {
	h := newTestHandler(t)
	addHandler := func(w http.ResponseWriter, r *http.Request) { h.AddNeuron(w, r, "default") }
	doJSON(t, addHandler, http.MethodPost, "/v1/tenants/default/neurons", neuronRequest{
		Points: linePoints(5, 0),
		Label:  "DA1 projection neuron",
	})

	searchHandler := func(w http.ResponseWriter, r *http.Request) { h.SearchLabels(w, r, "default") }
	req := httptest.NewRequest(http.MethodGet, "/v1/tenants/default/labels/search?q=DA1", nil)
	rec := httptest.NewRecorder()
	searchHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result struct {
		Matches []int `json:"matches"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(result.Matches) != 1 || result.Matches[0] != 0 {
		t.Errorf("expected match [0], got %v", result.Matches)
	}
}

func TestSuggestSimilarUnknownTenant(t *testing.T) {
	h := newTestHandler(t)
	similarHandler := func(w http.ResponseWriter, r *http.Request) { h.SuggestSimilar(w, r, "nonexistent", "0") }
	req := httptest.NewRequest(http.MethodGet, "/v1/tenants/nonexistent/neurons/0/similar", nil)
	rec := httptest.NewRecorder()
	similarHandler(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCreateTenantDuplicate(t *testing.T) {
	h := newTestHandler(t)
	rec := doJSON(t, h.CreateTenant, http.MethodPost, "/v1/tenants", map[string]interface{}{"namespace": "default"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate tenant, got %d", rec.Code)
	}
}
