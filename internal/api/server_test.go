package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norddeich/castaway/internal/api"
	"github.com/norddeich/castaway/internal/catalog"
)

type fixedSource struct {
	status api.Status
}

func (f *fixedSource) Status() api.Status { return f.status }

type fakeControl struct {
	speed float64
}

func (f *fakeControl) SetSpeed(v float64) { f.speed = v }
func (f *fakeControl) Speed() float64     { return f.speed }

func testServer(t *testing.T, adminKey string) (*api.Server, *fakeControl) {
	t.Helper()
	cat, diags, err := catalog.Parse([]byte(`{
		"events": [
			{"id": "gull", "type": "ambient", "weight": 5, "cooldown": 40, "duration": 9},
			{"id": "seal", "type": "rare", "weight": 3, "cooldown": 900, "min_runtime": 600,
			 "duration": 30, "conditions": {"weather": ["clear"]}},
			{"id": "", "type": "ambient", "weight": 1, "duration": 5}
		]
	}`))
	require.NoError(t, err)
	require.Len(t, diags, 1)

	ctl := &fakeControl{speed: 1}
	srv := &api.Server{
		Source: &fixedSource{status: api.Status{
			Tick:           1200,
			SessionSeconds: 60,
			TimeOfDay:      "dawn",
			Weather:        "clear",
			CloudStrength:  0.1,
			Speed:          1,
			Instance: &api.InstanceView{
				EventID:        "gull",
				InstanceID:     "9b2d7c3e-0000-4000-8000-000000000000",
				Pool:           "ambient",
				PhaseIndex:     1,
				PhaseType:      "pass",
				ElapsedSeconds: 4.5,
			},
		}},
		Catalog:     cat,
		Diagnostics: diags,
		Control:     ctl,
		AdminKey:    adminKey,
	}
	return srv, ctl
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestStatusEndpoint(t *testing.T) {
	srv, _ := testServer(t, "")
	rec := get(t, srv.Handler(), "/api/v1/status")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var status api.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, uint64(1200), status.Tick)
	assert.Equal(t, "dawn", status.TimeOfDay)
	require.NotNil(t, status.Instance)
	assert.Equal(t, "gull", status.Instance.EventID)
	assert.Equal(t, "pass", status.Instance.PhaseType)
}

func TestInstanceEndpointNullWhenIdle(t *testing.T) {
	srv, _ := testServer(t, "")
	src := srv.Source.(*fixedSource)
	src.status.Instance = nil

	rec := get(t, srv.Handler(), "/api/v1/instance")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestCatalogEndpoint(t *testing.T) {
	srv, _ := testServer(t, "")
	rec := get(t, srv.Handler(), "/api/v1/catalog")

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Events []struct {
			ID         string              `json:"id"`
			Pool       string              `json:"pool"`
			Tier       int                 `json:"tier"`
			Duration   float64             `json:"duration"`
			Conditions map[string][]string `json:"conditions"`
		} `json:"events"`
		RareMinInterval float64 `json:"rare_min_interval"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	require.Len(t, body.Events, 2, "skipped entries stay out of the catalog")
	assert.Equal(t, 300.0, body.RareMinInterval)

	byID := map[string]int{}
	for i, e := range body.Events {
		byID[e.ID] = i
	}
	seal := body.Events[byID["seal"]]
	assert.Equal(t, "rare", seal.Pool)
	assert.Equal(t, 1, seal.Tier)
	assert.Equal(t, 30.0, seal.Duration)
	assert.Equal(t, []string{"clear"}, seal.Conditions["weather"])
}

func TestDiagnosticsEndpoint(t *testing.T) {
	srv, _ := testServer(t, "")
	rec := get(t, srv.Handler(), "/api/v1/diagnostics")

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Skipped []struct {
			Index  int    `json:"index"`
			Reason string `json:"reason"`
		} `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Skipped, 1)
	assert.Equal(t, 2, body.Skipped[0].Index)
	assert.Equal(t, "missing id", body.Skipped[0].Reason)
}

func TestGetEndpointsRejectPost(t *testing.T) {
	srv, _ := testServer(t, "")
	h := srv.Handler()

	for _, path := range []string{"/api/v1/status", "/api/v1/instance", "/api/v1/catalog", "/api/v1/diagnostics"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, path)
	}
}

func postSpeed(t *testing.T, h http.Handler, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSpeedRequiresAuth(t *testing.T) {
	srv, ctl := testServer(t, "sekrit")
	h := srv.Handler()

	rec := postSpeed(t, h, "", `{"speed": 4}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postSpeed(t, h, "wrong", `{"speed": 4}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 1.0, ctl.speed, "speed untouched on failed auth")

	rec = postSpeed(t, h, "sekrit", `{"speed": 4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4.0, ctl.speed)

	var body map[string]float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 4.0, body["speed"])
}

func TestSpeedDisabledWithoutAdminKey(t *testing.T) {
	srv, _ := testServer(t, "")
	rec := postSpeed(t, srv.Handler(), "anything", `{"speed": 2}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSpeedValidation(t *testing.T) {
	srv, ctl := testServer(t, "sekrit")
	h := srv.Handler()

	rec := postSpeed(t, h, "sekrit", `{"speed": -1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postSpeed(t, h, "sekrit", `{"speed": 101}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postSpeed(t, h, "sekrit", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, 1.0, ctl.speed, "speed untouched on invalid input")

	rec = postSpeed(t, h, "sekrit", `{"speed": 0}`)
	assert.Equal(t, http.StatusOK, rec.Code, "zero pauses the loop")
	assert.Equal(t, 0.0, ctl.speed)
}
