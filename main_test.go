package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tienda/internal/database/dbtest"
	"tienda/pkg/config"
	"tienda/pkg/logger"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		App:     config.AppConfig{Env: "test"},
		HTTP:    config.HTTPConfig{StaticDir: t.TempDir()},
		DB:      config.DBConfig{Driver: "sqlite"},
		Session: config.SessionConfig{Secret: "test_jwt_secret", TTL: time.Hour},
		Store:   config.StoreConfig{Name: "Tienda de Prueba", DeliveryFee: decimal.NewFromInt(20), WhatsApp: "59170000000"},
		Upload:  config.UploadConfig{Dir: t.TempDir(), PublicPath: "/static/images/productos", MaxBytes: 4 * 1024 * 1024},
	}
}

func TestHealthCheck(t *testing.T) {
	app := newApp(deps{cfg: testConfig(t), db: dbtest.New(t), log: logger.Nop(), registry: newRegistry()})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	_, err = time.Parse(time.RFC3339, body["time"])
	assert.NoError(t, err)
}

func TestMetricsEndpoint(t *testing.T) {
	app := newApp(deps{cfg: testConfig(t), db: dbtest.New(t), log: logger.Nop(), registry: newRegistry()})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestHomePageUsesStoreName(t *testing.T) {
	app := newApp(deps{cfg: testConfig(t), db: dbtest.New(t), log: logger.Nop(), registry: newRegistry()})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Tienda de Prueba")
}
