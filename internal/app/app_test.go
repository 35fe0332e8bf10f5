package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	prefsDir := filepath.Join(dir, "prefs")
	content := strings.Join([]string{
		`environment = "development"`,
		`[backend]`,
		`base_url = "` + baseURL + `"`,
		`[storage]`,
		`prefs_path = "` + filepath.ToSlash(prefsDir) + `"`,
		`[logging]`,
		`level = "error"`,
	}, "\n")
	path := filepath.Join(dir, "stockview.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewApp_InitializesAllServices(t *testing.T) {
	a, err := NewApp(writeTestConfig(t, "http://127.0.0.1:1/api"))
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Config)
	assert.NotNil(t, a.Logger)
	assert.NotNil(t, a.Backend)
	assert.NotNil(t, a.Prices)
	assert.NotNil(t, a.Market)
	assert.NotNil(t, a.Portfolio)
	assert.NotNil(t, a.Notifier)
	assert.NotNil(t, a.Prefs)
	assert.Nil(t, a.Hub, "hub starts only on demand")
	assert.False(t, a.StartupTime.IsZero())
	assert.Equal(t, "http://127.0.0.1:1/api", a.Config.Backend.BaseURL)
}

func TestResolvePortfolio_CreatesAndRemembers(t *testing.T) {
	var created bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/portfolio":
			created = true
			json.NewEncoder(w).Encode(map[string]interface{}{"id": 12, "name": "My Portfolio", "holdings": []interface{}{}})
		case r.Method == http.MethodGet && r.URL.Path == "/api/portfolio/12" && created:
			json.NewEncoder(w).Encode(map[string]interface{}{"id": 12, "name": "My Portfolio", "holdings": []interface{}{}})
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"Portfolio not found"}`))
		}
	}))
	defer srv.Close()

	t.Setenv("STOCKVIEW_PORTFOLIO_ID", "3")
	a, err := NewApp(writeTestConfig(t, srv.URL+"/api"))
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.ResolvePortfolio(context.Background()))
	assert.True(t, created)
	assert.Equal(t, int64(12), a.Portfolio.PortfolioID())

	id, err := a.Prefs.LastPortfolioID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
}

func TestStartHub_Idempotent(t *testing.T) {
	a, err := NewApp(writeTestConfig(t, "http://127.0.0.1:1/api"))
	require.NoError(t, err)

	a.StartHub()
	hub := a.Hub
	require.NotNil(t, hub)
	a.StartHub()
	assert.Same(t, hub, a.Hub)

	a.Close()
	a.Close()
	assert.Nil(t, a.Hub)
}
