package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/database"
	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/entanglement"
	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/filtration"
	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/moments"
	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/reduction"
	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/simulation"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRouter(t *testing.T) chi.Router {
	t.Helper()
	log := zerolog.New(nil).Level(zerolog.Disabled)

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "filtrations.db"),
		Profile: database.ProfileStandard,
		Name:    "results",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := filtration.NewRepository(db, log)
	require.NoError(t, err)

	weigher, err := entanglement.New(entanglement.Config{
		Strategy:  entanglement.StrategyMutualInformation,
		LogBase:   entanglement.Base2,
		Tolerance: entanglement.DefaultEigenTolerance,
	}, reduction.New(reduction.DefaultTolerance, log), log)
	require.NoError(t, err)

	partitioner := moments.NewPartitioner(simulation.NewStateVector(log), log)
	service := filtration.NewService(partitioner, weigher, log)

	r := chi.NewRouter()
	NewHandler(service, repo, log).RegisterRoutes(r)
	return r
}

const bellCircuit = `{
	"qubits": 2,
	"gates": [
		{"type": "H", "target": 0},
		{"type": "CX", "target": 1, "control": 0}
	]
}`

func computeRun(t *testing.T, router chi.Router, store bool) map[string]interface{} {
	t.Helper()
	body := fmt.Sprintf(`{"circuit": %s, "store": %t}`, bellCircuit, store)
	req := httptest.NewRequest(http.MethodPost, "/filtration/compute", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandleCompute(t *testing.T) {
	router := testRouter(t)

	resp := computeRun(t, router, false)
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, data["id"])
	assert.Equal(t, float64(2), data["qubits"])
	assert.Equal(t, float64(2), data["moments"])
	assert.Equal(t, "mutual_information", data["strategy"])

	frames, ok := data["frames"].([]interface{})
	require.True(t, ok)
	assert.Len(t, frames, 2)

	metadata, ok := resp["metadata"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, metadata["stored"])
}

func TestHandleCompute_BadRequests(t *testing.T) {
	router := testRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing circuit", `{"store": false}`},
		{"empty circuit", `{"circuit": {"qubits": 2, "gates": []}}`},
		{"gate out of range", `{"circuit": {"qubits": 1, "gates": [{"type": "H", "target": 3}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/filtration/compute", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleListRuns(t *testing.T) {
	router := testRouter(t)

	computeRun(t, router, true)
	computeRun(t, router, true)

	req := httptest.NewRequest(http.MethodGet, "/filtration/runs", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["count"])
	assert.Len(t, data["runs"], 2)
}

func TestHandleGetRun(t *testing.T) {
	router := testRouter(t)

	resp := computeRun(t, router, true)
	id := resp["data"].(map[string]interface{})["id"].(string)

	req := httptest.NewRequest(http.MethodGet, "/filtration/runs/"+id, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var loaded map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loaded))
	data := loaded["data"].(map[string]interface{})
	assert.Equal(t, id, data["id"])
	assert.Len(t, data["frames"], 2)
}

func TestHandleGetRun_NotFound(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/filtration/runs/no-such-run", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleDeleteRun(t *testing.T) {
	router := testRouter(t)

	resp := computeRun(t, router, true)
	id := resp["data"].(map[string]interface{})["id"].(string)

	req := httptest.NewRequest(http.MethodDelete, "/filtration/runs/"+id, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/filtration/runs/"+id, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/filtration/runs/"+id, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleCompute_UnstoredRunNotListed(t *testing.T) {
	router := testRouter(t)

	computeRun(t, router, false)

	req := httptest.NewRequest(http.MethodGet, "/filtration/runs", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["count"])
}
