package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-medalert/dispatch"
	"go-medalert/geocode"
	"go-medalert/locate"
	"go-medalert/mission"
	"go-medalert/routes"
	"go-medalert/routing"
	"go-medalert/store"
	"go-medalert/types"
)

type straightLineRouter struct{}

func (straightLineRouter) Route(_ context.Context, start, end types.Coordinate) types.RouteLeg {
	return routing.StraightLineLeg(start, end)
}

type testApp struct {
	router *gin.Engine
	store  *store.Memory
	runner *mission.Runner
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Set(ctx, store.CollectionHospitals, "chu", store.Document{
		"name":        "CHU Ibn Rochd",
		"coordinates": map[string]interface{}{"lat": 33.5892, "lng": -7.6031},
		"specialties": []interface{}{"urgences"},
	}))
	require.NoError(t, m.Set(ctx, store.CollectionAmbulances, "amb", store.Document{
		"name":             "Ambulance 1",
		"class":            "standard",
		"status":           "available",
		"current_position": map[string]interface{}{"lat": 33.5950, "lng": -7.6190},
	}))

	router := straightLineRouter{}
	planner := dispatch.NewPlanner(
		dispatch.NewFacilitySelector(m, router),
		dispatch.NewFleetSelector(m),
		router,
	)
	orch := mission.NewOrchestrator(m, planner, mission.WithDrivePace(1, 0))
	runner := mission.NewRunner()
	resolver := locate.NewResolver(geocode.NewCascade(geocode.NewGazetteer()), nil)

	engine := routes.SetupRouter(routes.Deps{
		Store:        m,
		Resolver:     resolver,
		Orchestrator: orch,
		Runner:       runner,
	})
	return &testApp{router: engine, store: m, runner: runner}
}

func (a *testApp) request(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCreateAlert(t *testing.T) {
	t.Run("accepted and resolved in the background", func(t *testing.T) {
		app := newTestApp(t)
		w := app.request(t, http.MethodPost, "/api/medalert/alert", gin.H{
			"patient_name": "test patient",
			"age":          40,
			"symptoms":     "chest pain",
			"severity":     2,
			"position":     gin.H{"lat": 33.5731, "lng": -7.5898},
		})
		require.Equal(t, http.StatusAccepted, w.Code)

		body := decodeBody(t, w)
		alertID, _ := body["alert_id"].(string)
		require.NotEmpty(t, alertID)
		assert.Equal(t, string(types.PhaseCreated), body["phase"])

		app.runner.Wait()

		got := app.request(t, http.MethodGet, "/api/medalert/alert/"+alertID, nil)
		require.Equal(t, http.StatusOK, got.Code)
		alert := decodeBody(t, got)
		assert.Equal(t, string(types.PhaseResolved), alert["phase"])
		assert.Equal(t, "CHU Ibn Rochd", alert["selected_facility"])
		assert.NotNil(t, alert["completed_at"])
	})

	t.Run("manual address resolves through the cascade", func(t *testing.T) {
		app := newTestApp(t)
		w := app.request(t, http.MethodPost, "/api/medalert/alert", gin.H{
			"severity": 1,
			"address":  "somewhere in El Jadida",
		})
		require.Equal(t, http.StatusAccepted, w.Code)

		body := decodeBody(t, w)
		loc, ok := body["location"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, types.SourceManual, loc["source"])
		coord := loc["coordinate"].(map[string]interface{})
		assert.InDelta(t, 33.2564, coord["lat"].(float64), 1e-4)
		app.runner.Wait()
	})

	t.Run("no signals falls back to the default location", func(t *testing.T) {
		app := newTestApp(t)
		w := app.request(t, http.MethodPost, "/api/medalert/alert", gin.H{"severity": 1})
		require.Equal(t, http.StatusAccepted, w.Code)

		body := decodeBody(t, w)
		loc := body["location"].(map[string]interface{})
		assert.Equal(t, types.SourceDefault, loc["source"])
		app.runner.Wait()
	})

	t.Run("severity out of range is rejected", func(t *testing.T) {
		app := newTestApp(t)
		w := app.request(t, http.MethodPost, "/api/medalert/alert", gin.H{"severity": 9})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing severity is rejected", func(t *testing.T) {
		app := newTestApp(t)
		w := app.request(t, http.MethodPost, "/api/medalert/alert", gin.H{"age": 30})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetAlertNotFound(t *testing.T) {
	app := newTestApp(t)
	w := app.request(t, http.MethodGet, "/api/medalert/alert/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGeocodeEndpoint(t *testing.T) {
	t.Run("hit", func(t *testing.T) {
		app := newTestApp(t)
		w := app.request(t, http.MethodPost, "/api/medalert/geocode", gin.H{"address": "Casablanca"})
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "gazetteer", body["source"])
	})

	t.Run("miss", func(t *testing.T) {
		app := newTestApp(t)
		w := app.request(t, http.MethodPost, "/api/medalert/geocode", gin.H{"address": "Lilliput"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing address", func(t *testing.T) {
		app := newTestApp(t)
		w := app.request(t, http.MethodPost, "/api/medalert/geocode", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDetectIPUnconfigured(t *testing.T) {
	app := newTestApp(t)
	w := app.request(t, http.MethodPost, "/api/medalert/detect-ip", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestListings(t *testing.T) {
	app := newTestApp(t)

	w := app.request(t, http.MethodGet, "/api/medalert/facilities", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["count"])

	w = app.request(t, http.MethodGet, "/api/medalert/fleet", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Equal(t, float64(1), body["count"])
}
