package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	infralogger "github.com/jonesrussell/north-cloud/example-api/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/example-api/internal/api"
	"github.com/jonesrussell/north-cloud/example-api/internal/domain"
	"github.com/jonesrussell/north-cloud/example-api/internal/health"
	"github.com/jonesrussell/north-cloud/example-api/internal/pagination"
)

type fakeService struct {
	createFn func(ctx context.Context, in *domain.ExampleCreate) (*domain.Example, error)
	getFn    func(ctx context.Context, id int64) (*domain.Example, error)
	listFn   func(ctx context.Context, params domain.ListParams) (*domain.ExamplePage, error)
	updateFn func(ctx context.Context, id int64, in *domain.ExampleUpdate) (*domain.Example, error)
	deleteFn func(ctx context.Context, id int64) error
}

func (f *fakeService) Create(ctx context.Context, in *domain.ExampleCreate) (*domain.Example, error) {
	return f.createFn(ctx, in)
}

func (f *fakeService) Get(ctx context.Context, id int64) (*domain.Example, error) {
	return f.getFn(ctx, id)
}

func (f *fakeService) List(ctx context.Context, params domain.ListParams) (*domain.ExamplePage, error) {
	return f.listFn(ctx, params)
}

func (f *fakeService) Update(ctx context.Context, id int64, in *domain.ExampleUpdate) (*domain.Example, error) {
	return f.updateFn(ctx, id, in)
}

func (f *fakeService) Delete(ctx context.Context, id int64) error {
	return f.deleteFn(ctx, id)
}

type fakeReporter struct {
	snapshot *health.Snapshot
	err      error
}

func (f fakeReporter) Snapshot(context.Context) (*health.Snapshot, error) {
	return f.snapshot, f.err
}

func newRouter(svc api.ExampleService, reporter api.HealthReporter, log infralogger.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api.RegisterRoutes(router, api.Deps{
		Examples: svc,
		Health:   reporter,
		Logger:   log,
	})
	return router
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type validationBody struct {
	Detail []domain.FieldIssue `json:"detail"`
}

func decodeIssues(t *testing.T, w *httptest.ResponseRecorder) []domain.FieldIssue {
	t.Helper()

	var body validationBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Detail)
	return body.Detail
}

func sampleExample(id int64) *domain.Example {
	now := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	return &domain.Example{ID: id, Name: "Widget", IsActive: true, CreatedAt: now, UpdatedAt: now}
}

func TestCreate_Returns201(t *testing.T) {
	t.Parallel()

	var got *domain.ExampleCreate
	svc := &fakeService{createFn: func(_ context.Context, in *domain.ExampleCreate) (*domain.Example, error) {
		got = in
		return sampleExample(1), nil
	}}
	router := newRouter(svc, nil, infralogger.NewNop())

	w := do(router, http.MethodPost, "/api/v1/examples", `{"name":"Widget","description":null}`)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, "Widget", *got.Name)
	assert.Nil(t, got.Description)
	assert.Nil(t, got.IsActive)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.InDelta(t, 1, body["id"], 0)
	assert.Nil(t, body["description"])
	assert.Equal(t, "2026-10-17T09:30:00Z", body["created_at"])
}

func TestCreate_ValidationErrorIs422(t *testing.T) {
	t.Parallel()

	svc := &fakeService{createFn: func(_ context.Context, in *domain.ExampleCreate) (*domain.Example, error) {
		return nil, in.Validate()
	}}
	router := newRouter(svc, nil, infralogger.NewNop())

	w := do(router, http.MethodPost, "/examples", `{"name":""}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	issues := decodeIssues(t, w)
	assert.Equal(t, []string{"body", "name"}, issues[0].Loc)
	assert.Equal(t, "string_too_short", issues[0].Type)
}

func TestCreate_NullNameIsStringType(t *testing.T) {
	t.Parallel()

	svc := &fakeService{createFn: func(_ context.Context, in *domain.ExampleCreate) (*domain.Example, error) {
		return nil, in.Validate()
	}}
	router := newRouter(svc, nil, infralogger.NewNop())

	w := do(router, http.MethodPost, "/examples", `{"name":null}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	issues := decodeIssues(t, w)
	require.Len(t, issues, 1)
	assert.Equal(t, []string{"body", "name"}, issues[0].Loc)
	assert.Equal(t, "string_type", issues[0].Type)
}

func TestCreate_MalformedBodies(t *testing.T) {
	t.Parallel()

	svc := &fakeService{createFn: func(context.Context, *domain.ExampleCreate) (*domain.Example, error) {
		t.Error("service must not be called")
		return nil, nil
	}}
	router := newRouter(svc, nil, infralogger.NewNop())

	tests := []struct {
		name     string
		body     string
		wantLoc  []string
		wantType string
	}{
		{name: "empty body", body: "", wantLoc: []string{"body"}, wantType: "missing"},
		{name: "broken json", body: `{"name":`, wantLoc: []string{"body"}, wantType: "json_invalid"},
		{name: "syntax error", body: `{name:"x"}`, wantLoc: []string{"body"}, wantType: "json_invalid"},
		{name: "name not a string", body: `{"name":42}`, wantLoc: []string{"body", "name"}, wantType: "string_type"},
		{name: "is_active not a bool", body: `{"name":"x","is_active":"yes"}`, wantLoc: []string{"body", "is_active"}, wantType: "bool_type"},
		{name: "description not a string", body: `{"name":"x","description":5}`, wantLoc: []string{"body", "description"}, wantType: "string_type"},
		{name: "array body", body: `[]`, wantLoc: []string{"body"}, wantType: "model_attributes_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := do(router, http.MethodPost, "/examples", tt.body)

			require.Equal(t, http.StatusUnprocessableEntity, w.Code)
			issues := decodeIssues(t, w)
			assert.Equal(t, tt.wantLoc, issues[0].Loc)
			assert.Equal(t, tt.wantType, issues[0].Type)
		})
	}
}

func TestGet_NotFoundIs404(t *testing.T) {
	t.Parallel()

	svc := &fakeService{getFn: func(_ context.Context, id int64) (*domain.Example, error) {
		return nil, domain.NewNotFoundError(domain.ResourceExample, id)
	}}
	router := newRouter(svc, nil, infralogger.NewNop())

	w := do(router, http.MethodGet, "/api/v1/examples/99999", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"Example not found"}`, w.Body.String())
}

func TestGet_NonIntegerIDIs422(t *testing.T) {
	t.Parallel()

	router := newRouter(&fakeService{}, nil, infralogger.NewNop())

	w := do(router, http.MethodGet, "/examples/abc", "")

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	issues := decodeIssues(t, w)
	assert.Equal(t, []string{"path", "id"}, issues[0].Loc)
	assert.Equal(t, "int_parsing", issues[0].Type)
}

func TestList_DefaultsAndShape(t *testing.T) {
	t.Parallel()

	var got domain.ListParams
	svc := &fakeService{listFn: func(_ context.Context, params domain.ListParams) (*domain.ExamplePage, error) {
		got = params
		return &domain.ExamplePage{
			Items: []domain.Example{},
			Meta:  pagination.Calculate(0, params.Page, params.PerPage),
		}, nil
	}}
	router := newRouter(svc, nil, infralogger.NewNop())

	w := do(router, http.MethodGet, "/api/v1/examples", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.ListParams{Page: 1, PerPage: 10}, got)
	assert.JSONEq(t,
		`{"items":[],"total":0,"page":1,"per_page":10,"pages":0,"has_next":false,"has_prev":false}`,
		w.Body.String(),
	)
}

func TestList_PassesQuery(t *testing.T) {
	t.Parallel()

	var got domain.ListParams
	svc := &fakeService{listFn: func(_ context.Context, params domain.ListParams) (*domain.ExamplePage, error) {
		got = params
		return &domain.ExamplePage{Items: []domain.Example{}, Meta: pagination.Calculate(15, params.Page, params.PerPage)}, nil
	}}
	router := newRouter(svc, nil, infralogger.NewNop())

	w := do(router, http.MethodGet, "/examples?page=2&per_page=5&search=wid", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.ListParams{Page: 2, PerPage: 5, Search: "wid"}, got)

	var body api.ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Pages)
	assert.True(t, body.HasNext)
}

func TestList_BadQueryIs422(t *testing.T) {
	t.Parallel()

	router := newRouter(&fakeService{}, nil, infralogger.NewNop())

	w := do(router, http.MethodGet, "/examples?page=one&per_page=x", "")

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	issues := decodeIssues(t, w)
	require.Len(t, issues, 2)
	assert.Equal(t, []string{"query", "page"}, issues[0].Loc)
	assert.Equal(t, []string{"query", "per_page"}, issues[1].Loc)
}

func TestUpdate_PartialBody(t *testing.T) {
	t.Parallel()

	var got *domain.ExampleUpdate
	svc := &fakeService{updateFn: func(_ context.Context, id int64, in *domain.ExampleUpdate) (*domain.Example, error) {
		got = in
		return sampleExample(id), nil
	}}
	router := newRouter(svc, nil, infralogger.NewNop())

	w := do(router, http.MethodPut, "/api/v1/examples/4", `{"description":null,"is_active":false}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got)
	assert.False(t, got.Name.Set)
	assert.True(t, got.Description.Set)
	assert.True(t, got.Description.Null)
	assert.Equal(t, domain.Some(false), got.IsActive)
}

func TestDelete_ReturnsMessage(t *testing.T) {
	t.Parallel()

	svc := &fakeService{deleteFn: func(context.Context, int64) error { return nil }}
	router := newRouter(svc, nil, infralogger.NewNop())

	w := do(router, http.MethodDelete, "/examples/3", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Example deleted successfully"}`, w.Body.String())
}

func TestUnknownErrorIsOpaqueAndLogged(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.ErrorLevel)
	svc := &fakeService{deleteFn: func(context.Context, int64) error {
		return errors.New("pq: connection refused to 10.0.0.5")
	}}
	router := newRouter(svc, nil, infralogger.NewFromZap(zap.New(core)))

	w := do(router, http.MethodDelete, "/examples/3", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"Internal server error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
	assert.Equal(t, 1, logs.FilterMessage("Request failed").Len())
}

func TestHealth(t *testing.T) {
	t.Parallel()

	snap := &health.Snapshot{
		Status:    health.StatusWarning,
		Timestamp: time.Now().UTC(),
		Message:   "High resource usage: CPU 75.0%, Memory 20.0%",
		Metrics:   health.Metrics{CPUUsage: 75, MemoryUsage: 20, DiskUsage: 50, UptimeSeconds: 10},
		Version:   "1.0.0",
	}
	router := newRouter(&fakeService{}, fakeReporter{snapshot: snap}, infralogger.NewNop())

	w := do(router, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "warning", body["status"])
	assert.Equal(t, "1.0.0", body["version"])
	metrics, ok := body["metrics"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 75, metrics["cpu_usage"], 0)
	assert.InDelta(t, 50, metrics["disk_usage"], 0)
}

func TestHealth_SamplingFailureIs500(t *testing.T) {
	t.Parallel()

	router := newRouter(&fakeService{}, fakeReporter{err: errors.New("no procfs")}, infralogger.NewNop())

	w := do(router, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"Internal server error"}`, w.Body.String())
}

func TestHealthSimpleAndRoot(t *testing.T) {
	t.Parallel()

	router := newRouter(&fakeService{}, fakeReporter{err: errors.New("never sampled")}, infralogger.NewNop())

	w := do(router, http.MethodGet, "/health/simple", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["timestamp"])

	w = do(router, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Hello, World!"}`, w.Body.String())
}
