package service_test

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	infralogger "github.com/jonesrussell/north-cloud/example-api/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/example-api/internal/domain"
	"github.com/jonesrussell/north-cloud/example-api/internal/events"
	"github.com/jonesrussell/north-cloud/example-api/internal/service"
	"github.com/jonesrussell/north-cloud/example-api/internal/telemetry"
)

var exampleColumns = []string{"id", "name", "description", "is_active", "created_at", "updated_at"}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.ExampleEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.ExampleEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) published() []events.ExampleEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.ExampleEvent(nil), p.events...)
}

func setup(t *testing.T, opts service.Options) (*service.ExampleService, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db := sqlx.NewDb(mockDB, "postgres")
	return service.NewExampleService(db, infralogger.NewNop(), opts), mock
}

func strPtr(s string) *string { return &s }

func TestExampleService_Create(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{}
	svc, mock := setup(t, service.Options{Publisher: pub})
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO examples").
		WithArgs("Widget", nil, true).
		WillReturnRows(sqlmock.NewRows(exampleColumns).AddRow(int64(1), "Widget", nil, true, now, now))
	mock.ExpectCommit()

	example, err := svc.Create(context.Background(), &domain.ExampleCreate{Name: strPtr("Widget")})
	require.NoError(t, err)

	assert.Equal(t, int64(1), example.ID)
	assert.Equal(t, example.CreatedAt, example.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())

	published := pub.published()
	require.Len(t, published, 1)
	assert.Equal(t, events.ExampleCreated, published[0].EventType)
	assert.Equal(t, int64(1), published[0].ExampleID)
}

func TestExampleService_Create_InvalidNeverTouchesDatabase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    *domain.ExampleCreate
		wantType string
	}{
		{name: "missing name", input: &domain.ExampleCreate{}, wantType: "missing"},
		{name: "empty name", input: &domain.ExampleCreate{Name: strPtr("")}, wantType: "string_too_short"},
		{name: "name too long", input: &domain.ExampleCreate{Name: strPtr(strings.Repeat("a", 101))}, wantType: "string_too_long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pub := &recordingPublisher{}
			svc, mock := setup(t, service.Options{Publisher: pub})

			_, err := svc.Create(context.Background(), tt.input)

			var validationErr *domain.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.wantType, validationErr.Issues[0].Type)
			assert.Equal(t, []string{"body", "name"}, validationErr.Issues[0].Loc)
			assert.Empty(t, pub.published())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestExampleService_Get_NonPositiveID(t *testing.T) {
	t.Parallel()

	svc, mock := setup(t, service.Options{})

	for _, id := range []int64{0, -1} {
		_, err := svc.Get(context.Background(), id)

		var notFound *domain.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "Example not found", notFound.Error())
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExampleService_Get_NotFoundRollsBack(t *testing.T) {
	t.Parallel()

	svc, mock := setup(t, service.Options{})

	mock.ExpectBegin()
	mock.ExpectQuery("FROM examples WHERE id").
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.Get(context.Background(), 42)

	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExampleService_List(t *testing.T) {
	t.Parallel()

	svc, mock := setup(t, service.Options{})
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(15)))
	mock.ExpectQuery("ORDER BY created_at DESC").
		WithArgs(5, 10).
		WillReturnRows(sqlmock.NewRows(exampleColumns).
			AddRow(int64(5), "e", nil, true, now, now).
			AddRow(int64(4), "d", nil, true, now, now).
			AddRow(int64(3), "c", nil, true, now, now).
			AddRow(int64(2), "b", nil, true, now, now).
			AddRow(int64(1), "a", nil, true, now, now))
	mock.ExpectCommit()

	page, err := svc.List(context.Background(), domain.ListParams{Page: 3, PerPage: 5})
	require.NoError(t, err)

	assert.Len(t, page.Items, 5)
	assert.Equal(t, int64(15), page.Meta.Total)
	assert.Equal(t, 3, page.Meta.Pages)
	assert.False(t, page.Meta.HasNext)
	assert.True(t, page.Meta.HasPrev)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExampleService_List_Empty(t *testing.T) {
	t.Parallel()

	svc, mock := setup(t, service.Options{})

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery("ORDER BY created_at DESC").
		WillReturnRows(sqlmock.NewRows(exampleColumns))
	mock.ExpectCommit()

	page, err := svc.List(context.Background(), domain.ListParams{Page: 1, PerPage: 10})
	require.NoError(t, err)

	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Meta.Pages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExampleService_List_PageBeyondOffsetRange(t *testing.T) {
	t.Parallel()

	svc, mock := setup(t, service.Options{})

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(15)))
	mock.ExpectCommit()

	page, err := svc.List(context.Background(), domain.ListParams{Page: math.MaxInt / 50, PerPage: 100})
	require.NoError(t, err)

	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(15), page.Meta.Total)
	assert.Equal(t, 1, page.Meta.Pages)
	assert.False(t, page.Meta.HasNext)
	assert.True(t, page.Meta.HasPrev)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExampleService_List_InvalidParams(t *testing.T) {
	t.Parallel()

	svc, mock := setup(t, service.Options{})

	_, err := svc.List(context.Background(), domain.ListParams{Page: 1, PerPage: 101})

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{"query", "per_page"}, validationErr.Issues[0].Loc)
	assert.Equal(t, "less_than_equal", validationErr.Issues[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExampleService_Update_PublishFailureDoesNotFailRequest(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{err: errors.New("redis down")}
	svc, mock := setup(t, service.Options{Publisher: pub})
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE examples SET is_active").
		WithArgs(false, int64(7)).
		WillReturnRows(sqlmock.NewRows(exampleColumns).AddRow(int64(7), "Seven", nil, false, now.Add(-time.Minute), now))
	mock.ExpectCommit()

	example, err := svc.Update(context.Background(), 7, &domain.ExampleUpdate{IsActive: domain.Some(false)})
	require.NoError(t, err)
	assert.False(t, example.IsActive)

	published := pub.published()
	require.Len(t, published, 1)
	assert.Equal(t, events.ExampleUpdated, published[0].EventType)
	payload, ok := published[0].Payload.(events.ExampleUpdatedPayload)
	require.True(t, ok)
	assert.Equal(t, []string{"is_active"}, payload.ChangedFields)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExampleService_Update_InvalidName(t *testing.T) {
	t.Parallel()

	svc, mock := setup(t, service.Options{})

	_, err := svc.Update(context.Background(), 7, &domain.ExampleUpdate{Name: domain.Some("")})

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExampleService_Delete(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{}
	svc, mock := setup(t, service.Options{Publisher: pub})
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("DELETE FROM examples").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(exampleColumns).AddRow(int64(9), "Nine", nil, true, now, now))
	mock.ExpectCommit()

	require.NoError(t, svc.Delete(context.Background(), 9))

	published := pub.published()
	require.Len(t, published, 1)
	assert.Equal(t, events.ExampleDeleted, published[0].EventType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExampleService_Delete_NotFoundPublishesNothing(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{}
	svc, mock := setup(t, service.Options{Publisher: pub})

	mock.ExpectBegin()
	mock.ExpectQuery("DELETE FROM examples").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := svc.Delete(context.Background(), 9)

	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Empty(t, pub.published())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExampleService_SlowOperationIsLoggedAndCounted(t *testing.T) {
	t.Parallel()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	core, logs := observer.New(zapcore.DebugLevel)
	metrics := telemetry.NewMetrics(prometheus.NewRegistry())
	svc := service.NewExampleService(sqlx.NewDb(mockDB, "postgres"), infralogger.NewFromZap(zap.New(core)), service.Options{
		Metrics:       metrics,
		SlowThreshold: time.Nanosecond,
	})

	mock.ExpectBegin()
	mock.ExpectQuery("FROM examples WHERE id").
		WillDelayFor(5 * time.Millisecond).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, _ = svc.Get(context.Background(), 1)

	slow := logs.FilterMessage("Slow operation detected").All()
	require.Len(t, slow, 1)
	assert.Equal(t, "get", slow[0].ContextMap()["operation"])
	assert.Equal(t, telemetry.OutcomeNotFound, slow[0].ContextMap()["outcome"])

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.SlowOperations.WithLabelValues("get")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.OperationsTotal.WithLabelValues("get", telemetry.OutcomeNotFound)), 0)
}
