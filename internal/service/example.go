// Package service implements the Example operations. Each operation owns one
// transaction on the pool it was constructed with.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	infralogger "github.com/jonesrussell/north-cloud/example-api/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/example-api/internal/database"
	"github.com/jonesrussell/north-cloud/example-api/internal/domain"
	"github.com/jonesrussell/north-cloud/example-api/internal/events"
	"github.com/jonesrussell/north-cloud/example-api/internal/pagination"
	"github.com/jonesrussell/north-cloud/example-api/internal/repository"
	"github.com/jonesrussell/north-cloud/example-api/internal/telemetry"
)

// DefaultSlowThreshold is the duration above which an operation is logged as slow.
const DefaultSlowThreshold = 100 * time.Millisecond

// Operation names used in logs and metrics.
const (
	OpCreate = "create"
	OpGet    = "get"
	OpList   = "list"
	OpUpdate = "update"
	OpDelete = "delete"
)

// EventPublisher receives lifecycle events after a successful commit.
type EventPublisher interface {
	Publish(ctx context.Context, event events.ExampleEvent) error
}

// Options tunes an ExampleService. The zero value is usable.
type Options struct {
	Publisher     EventPublisher
	Metrics       *telemetry.Metrics
	SlowThreshold time.Duration
}

// ExampleService exposes the Example operation set.
type ExampleService struct {
	db            *sqlx.DB
	publisher     EventPublisher
	metrics       *telemetry.Metrics
	slowThreshold time.Duration
	logger        infralogger.Logger
}

// NewExampleService creates a service over db. The service never opens or
// closes db itself.
func NewExampleService(db *sqlx.DB, log infralogger.Logger, opts Options) *ExampleService {
	threshold := opts.SlowThreshold
	if threshold <= 0 {
		threshold = DefaultSlowThreshold
	}

	return &ExampleService{
		db:            db,
		publisher:     opts.Publisher,
		metrics:       opts.Metrics,
		slowThreshold: threshold,
		logger:        log,
	}
}

// Create validates in and inserts a new example.
func (s *ExampleService) Create(ctx context.Context, in *domain.ExampleCreate) (example *domain.Example, err error) {
	defer s.track(ctx, OpCreate, time.Now(), &err)

	if err = in.Validate(); err != nil {
		return nil, err
	}

	err = s.inTx(ctx, func(repo *repository.ExampleRepository) error {
		var txErr error
		example, txErr = repo.Create(ctx, in)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.ExampleEvent{
		EventType: events.ExampleCreated,
		ExampleID: example.ID,
		Payload: events.ExampleSnapshotPayload{
			Name:     example.Name,
			IsActive: example.IsActive,
		},
	})

	return example, nil
}

// Get returns the example with id.
func (s *ExampleService) Get(ctx context.Context, id int64) (example *domain.Example, err error) {
	defer s.track(ctx, OpGet, time.Now(), &err)

	if id <= 0 {
		return nil, domain.NewNotFoundError(domain.ResourceExample, id)
	}

	err = s.inTx(ctx, func(repo *repository.ExampleRepository) error {
		var txErr error
		example, txErr = repo.GetByID(ctx, id)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	return example, nil
}

// List returns one page of examples and its metadata. The count and the page
// are read in the same transaction with the same predicate.
func (s *ExampleService) List(ctx context.Context, params domain.ListParams) (page *domain.ExamplePage, err error) {
	defer s.track(ctx, OpList, time.Now(), &err)

	if err = params.Validate(); err != nil {
		return nil, err
	}

	var (
		total int64
		items []domain.Example
	)
	err = s.inTx(ctx, func(repo *repository.ExampleRepository) error {
		var txErr error
		if total, txErr = repo.Count(ctx, params.Search); txErr != nil {
			return txErr
		}
		offset, ok := pagination.Offset(params.Page, params.PerPage)
		if !ok {
			items = []domain.Example{}
			return nil
		}
		items, txErr = repo.ListPaginated(ctx, params.Search, params.PerPage, offset)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	return &domain.ExamplePage{
		Items: items,
		Meta:  pagination.Calculate(total, params.Page, params.PerPage),
	}, nil
}

// Update applies the fields present in in to the example with id.
func (s *ExampleService) Update(ctx context.Context, id int64, in *domain.ExampleUpdate) (example *domain.Example, err error) {
	defer s.track(ctx, OpUpdate, time.Now(), &err)

	if id <= 0 {
		return nil, domain.NewNotFoundError(domain.ResourceExample, id)
	}
	if err = in.Validate(); err != nil {
		return nil, err
	}

	err = s.inTx(ctx, func(repo *repository.ExampleRepository) error {
		var txErr error
		example, txErr = repo.Update(ctx, id, in)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.ExampleEvent{
		EventType: events.ExampleUpdated,
		ExampleID: example.ID,
		Payload: events.ExampleUpdatedPayload{
			ChangedFields: in.ChangedFields(),
			Name:          example.Name,
			IsActive:      example.IsActive,
		},
	})

	return example, nil
}

// Delete removes the example with id.
func (s *ExampleService) Delete(ctx context.Context, id int64) (err error) {
	defer s.track(ctx, OpDelete, time.Now(), &err)

	if id <= 0 {
		return domain.NewNotFoundError(domain.ResourceExample, id)
	}

	var deleted *domain.Example
	err = s.inTx(ctx, func(repo *repository.ExampleRepository) error {
		var txErr error
		deleted, txErr = repo.Delete(ctx, id)
		return txErr
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.ExampleEvent{
		EventType: events.ExampleDeleted,
		ExampleID: deleted.ID,
		Payload: events.ExampleSnapshotPayload{
			Name:     deleted.Name,
			IsActive: deleted.IsActive,
		},
	})

	return nil
}

func (s *ExampleService) inTx(ctx context.Context, fn func(repo *repository.ExampleRepository) error) error {
	return database.WithTx(ctx, s.db, s.logger, func(tx *sqlx.Tx) error {
		return fn(repository.NewExampleRepository(tx, s.logger))
	})
}

// publish is best-effort: a failure is logged and never reaches the caller.
func (s *ExampleService) publish(ctx context.Context, event events.ExampleEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		infralogger.FromContextOr(ctx, s.logger).Warn("Failed to publish example event",
			infralogger.String("event_type", string(event.EventType)),
			infralogger.Int64("example_id", event.ExampleID),
			infralogger.Error(err),
		)
	}
}

func (s *ExampleService) track(ctx context.Context, operation string, start time.Time, errp *error) {
	elapsed := time.Since(start)
	slow := elapsed > s.slowThreshold
	outcome := outcomeOf(*errp)

	log := infralogger.FromContextOr(ctx, s.logger)
	fields := []infralogger.Field{
		infralogger.String("operation", operation),
		infralogger.String("outcome", outcome),
		infralogger.Duration("duration", elapsed),
	}
	if slow {
		log.Warn("Slow operation detected", append(fields, infralogger.Duration("threshold", s.slowThreshold))...)
	} else {
		log.Debug("Operation completed", fields...)
	}

	s.metrics.Observe(operation, outcome, elapsed, slow)
}

func outcomeOf(err error) string {
	if err == nil {
		return telemetry.OutcomeSuccess
	}

	var (
		notFound   *domain.NotFoundError
		validation *domain.ValidationError
	)
	switch {
	case errors.As(err, &notFound):
		return telemetry.OutcomeNotFound
	case errors.As(err, &validation):
		return telemetry.OutcomeInvalid
	default:
		return telemetry.OutcomeError
	}
}
