package httpapi

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apptrack-engine/internal/config"
	"apptrack-engine/internal/domain"
	"apptrack-engine/internal/events"
	"apptrack-engine/internal/gateway"
	"apptrack-engine/internal/metrics"
	"apptrack-engine/internal/store"
)

type testEnv struct {
	db         *sql.DB
	gw         *gateway.Gateway
	mux        *http.ServeMux
	metricsVal *atomic.Value
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := store.Open(filepath.Join(t.TempDir(), "apptrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db))

	hub := events.NewHub()
	gw := gateway.New(db, hub)

	var cfgVal, metricsVal, emailVal atomic.Value
	var cfg config.Config
	cfg.App.Port = 38471
	cfg.Autofill.Enabled = true
	cfgVal.Store(cfg)
	emailVal.Store(EmailPollStatus{})

	unsub := gw.Subscribe(func(recs []domain.Application) {
		metricsVal.Store(metrics.Compute(recs))
	}, nil)
	t.Cleanup(unsub)

	mux := NewMux(Deps{
		DB:         db,
		Gateway:    gw,
		Hub:        hub,
		CfgVal:     &cfgVal,
		MetricsVal: &metricsVal,
		EmailVal:   &emailVal,
		EmailMu:    &sync.Mutex{},
		LoadCfg:    func() (config.Config, error) { return cfg, nil },
	})

	return &testEnv{db: db, gw: gw, mux: mux, metricsVal: &metricsVal}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, req)
	return w
}

func TestCreateAndListApplications(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/applications", map[string]string{
		"company":     "Acme",
		"role":        "Backend Engineer",
		"dateApplied": "2025-02-10",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created domain.Application
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.StatusApplied, created.Status) // default

	w = env.do(t, http.MethodGet, "/applications", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list []domain.Application
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "Acme", list[0].Company)
}

func TestCreateApplicationValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/applications", map[string]string{
		"company": "", "role": "Eng", "dateApplied": "2025-02-10",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/applications", map[string]string{
		"company": "Acme", "role": "Eng", "dateApplied": "02/10/2025",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/applications", map[string]string{
		"company": "Acme", "role": "Eng", "dateApplied": "2025-02-10", "status": "Ghosted",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStatusEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/applications", map[string]string{
		"company": "Acme", "role": "Eng", "dateApplied": "2025-02-10",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created domain.Application
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))

	w = env.do(t, http.MethodPatch, "/applications/"+created.ID+"/status", map[string]string{
		"status": "Interview",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/applications", nil)
	var list []domain.Application
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, domain.StatusInterview, list[0].Status)

	// unknown id
	w = env.do(t, http.MethodPatch, "/applications/nope/status", map[string]string{"status": "Offer"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// bad status
	w = env.do(t, http.MethodPatch, "/applications/"+created.ID+"/status", map[string]string{"status": "Ghosted"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// bad path
	w = env.do(t, http.MethodPatch, "/applications/"+created.ID, map[string]string{"status": "Offer"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/applications", map[string]string{
		"company": "Acme", "role": "Eng", "dateApplied": "2025-02-10",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created domain.Application
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))

	w = env.do(t, http.MethodDelete, "/applications/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodDelete, "/applications/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPut, "/applications", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
