package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/vallois/aquawatt/internal/anomaly"
	"github.com/vallois/aquawatt/internal/server"
	"github.com/vallois/aquawatt/internal/simulation"
	"github.com/vallois/aquawatt/internal/store"
)

func newTestRouter(t *testing.T) (*gin.Engine, server.Dependencies) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := store.Open(filepath.Join(t.TempDir(), "readings.json"))
	require.NoError(t, err)

	manager := simulation.NewManager()
	for _, sensor := range simulation.DefaultSensors() {
		require.NoError(t, manager.Add(sensor))
	}

	deps := server.Dependencies{
		Manager:  manager,
		Store:    s,
		Detector: anomaly.New(anomaly.DefaultConfig()),
	}
	return server.NewRouter(deps), deps
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestListSensors(t *testing.T) {
	router, _ := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/api/sensors", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Sensors []simulation.Info `json:"sensors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Sensors, 5)
}

func TestRegisterSensorValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/sensors", gin.H{
		"sensor_id":       "CAP_TURBINE_01",
		"type_equipement": "turbine",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/sensors", gin.H{
		"sensor_id":       "CAP_POMPE_03",
		"type_equipement": "pompe",
		"location":        "Bassin annexe",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/sensors", gin.H{
		"sensor_id":       "CAP_POMPE_03",
		"type_equipement": "pompe",
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestCollectPersistsReadings(t *testing.T) {
	router, deps := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/collect", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Collected int            `json:"collected"`
		Readings  []store.Record `json:"readings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 5, resp.Collected)

	count, err := deps.Store.Count()
	require.NoError(t, err)
	require.Equal(t, 5, count)
}

func TestCollectSkipsInactive(t *testing.T) {
	router, deps := newTestRouter(t)
	require.NoError(t, deps.Manager.SetActive("CAP_POMPE_02", false))

	w := doJSON(t, router, http.MethodPost, "/api/collect", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Collected int      `json:"collected"`
		Skipped   []string `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 4, resp.Collected)
	require.Equal(t, []string{"CAP_POMPE_02"}, resp.Skipped)
}

func TestReadingsFilterByType(t *testing.T) {
	router, _ := newTestRouter(t)
	doJSON(t, router, http.MethodPost, "/api/collect", nil)

	w := doJSON(t, router, http.MethodGet, "/api/readings?type=pompe", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count    int            `json:"count"`
		Readings []store.Record `json:"readings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	for _, rec := range resp.Readings {
		require.Equal(t, "pompe", rec.Equipment)
	}
}

func TestStatsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/readings/stats", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	doJSON(t, router, http.MethodPost, "/api/collect", nil)

	w = doJSON(t, router, http.MethodGet, "/api/readings/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats store.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.Equal(t, 5, stats.Count)
	require.Positive(t, stats.Mean)
}

func TestResetEndpoint(t *testing.T) {
	router, deps := newTestRouter(t)
	doJSON(t, router, http.MethodPost, "/api/collect", nil)

	w := doJSON(t, router, http.MethodPost, "/api/readings/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)

	count, err := deps.Store.Count()
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestAnomalyEndpoints(t *testing.T) {
	router, deps := newTestRouter(t)
	require.NoError(t, deps.Store.InsertBatch([]store.Record{
		{SensorID: "CAP_POMPE_01", Value: 2.0, Equipment: "pompe", Unit: "kW"},
		{SensorID: "CAP_POMPE_01", Value: 3.5, Equipment: "pompe", Unit: "kW"},
	}))

	w := doJSON(t, router, http.MethodGet, "/api/anomalies", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var detect struct {
		Count    int               `json:"count"`
		Flagged  int               `json:"flagged"`
		Verdicts []anomaly.Verdict `json:"verdicts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detect))
	require.Equal(t, 2, detect.Count)
	require.Equal(t, 1, detect.Flagged)

	w = doJSON(t, router, http.MethodGet, "/api/anomalies/report", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var report anomaly.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.Equal(t, 1, report.TotalAnomalies)
	require.Equal(t, 1, report.ByRule[anomaly.RuleFixedThreshold])
}

func TestUnconfiguredCollaborators(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/insight", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/influx/ping", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/simulation/status", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSetSensorActive(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPatch, "/api/sensors/CAP_POMPE_01/active", gin.H{"active": false})
	require.Equal(t, http.StatusOK, w.Code)

	var info simulation.Info
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	require.False(t, info.Active)

	w = doJSON(t, router, http.MethodPatch, "/api/sensors/CAP_INCONNU/active", gin.H{"active": true})
	require.Equal(t, http.StatusNotFound, w.Code)
}
