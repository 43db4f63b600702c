package bootstrap_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraconfig "github.com/jonesrussell/north-cloud/example-api/infrastructure/config"
	infragin "github.com/jonesrussell/north-cloud/example-api/infrastructure/gin"
	infralogger "github.com/jonesrussell/north-cloud/example-api/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/example-api/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/example-api/internal/config"
)

func newTestServer(t *testing.T) (*infragin.Server, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	cfg := &config.Config{
		Service: config.ServiceConfig{
			Name:                   "example-api",
			Version:                "9.9.9",
			SlowOperationThreshold: time.Second,
		},
		Server: infraconfig.ServerConfig{
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000"},
		},
	}

	server := bootstrap.SetupHTTPServer(cfg, sqlx.NewDb(mockDB, "postgres"), nil, infralogger.NewNop())
	return server, mock
}

func serve(server *infragin.Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)
	return w
}

func TestSetupHTTPServer_Routes(t *testing.T) {
	server, _ := newTestServer(t)

	w := serve(server, httptest.NewRequest(http.MethodGet, "/health/simple", http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(infragin.RequestIDHeader))

	w = serve(server, httptest.NewRequest(http.MethodGet, "/nope", http.NoBody))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"Not Found"}`, w.Body.String())

	w = serve(server, httptest.NewRequest(http.MethodPatch, "/api/v1/examples/1", http.NoBody))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"detail":"Method Not Allowed"}`, w.Body.String())

	w = serve(server, httptest.NewRequest(http.MethodHead, "/health", http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetupHTTPServer_ReadinessPingsDatabase(t *testing.T) {
	server, _ := newTestServer(t)

	w := serve(server, httptest.NewRequest(http.MethodGet, infragin.ReadinessPath, http.NoBody))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database"`)
	assert.Contains(t, w.Body.String(), `"9.9.9"`)
}

func TestSetupHTTPServer_ExampleRequestIsMeasured(t *testing.T) {
	server, mock := newTestServer(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM examples WHERE id").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	w := serve(server, httptest.NewRequest(http.MethodGet, "/api/v1/examples/5", http.NoBody))
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"Example not found"}`, w.Body.String())

	w = serve(server, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `example_api_http_requests_total{method="GET",route="/api/v1/examples/:id",status="404"} 1`)
	assert.Contains(t, body, `example_api_examples_operations_total{operation="get",outcome="not_found"} 1`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetupHTTPServer_CORSPreflight(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/examples", http.NoBody)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	w := serve(server, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
