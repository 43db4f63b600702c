// Package repository maps Example entities to the examples table.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	infralogger "github.com/jonesrussell/north-cloud/example-api/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/example-api/internal/domain"
)

const exampleColumns = "id, name, description, is_active, created_at, updated_at"

// PostgreSQL error codes surfaced as validation failures.
const (
	pqCheckViolation       = "23514"
	pqStringDataRightTrunc = "22001"
)

// ExampleRepository runs Example queries against q, which is either the pool
// or a transaction.
type ExampleRepository struct {
	q      sqlx.ExtContext
	logger infralogger.Logger
}

// NewExampleRepository creates a repository bound to q.
func NewExampleRepository(q sqlx.ExtContext, log infralogger.Logger) *ExampleRepository {
	return &ExampleRepository{
		q:      q,
		logger: log,
	}
}

// Create inserts a new example. created_at and updated_at come from the same
// NOW() and are therefore equal.
func (r *ExampleRepository) Create(ctx context.Context, in *domain.ExampleCreate) (*domain.Example, error) {
	query := `
		INSERT INTO examples (name, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING ` + exampleColumns

	var example domain.Example
	if err := sqlx.GetContext(ctx, r.q, &example, query, *in.Name, in.Description, in.Active()); err != nil {
		return nil, fmt.Errorf("insert example: %w", translateError(err))
	}

	return &example, nil
}

// GetByID returns the example with id or a *domain.NotFoundError.
func (r *ExampleRepository) GetByID(ctx context.Context, id int64) (*domain.Example, error) {
	query := `SELECT ` + exampleColumns + ` FROM examples WHERE id = $1`

	var example domain.Example
	if err := sqlx.GetContext(ctx, r.q, &example, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.ResourceExample, id)
		}
		return nil, fmt.Errorf("get example: %w", err)
	}

	return &example, nil
}

// Count returns the number of examples matching search. It shares its
// predicate with ListPaginated.
func (r *ExampleRepository) Count(ctx context.Context, search string) (int64, error) {
	where, args := buildListWhere(search)
	query := `SELECT COUNT(*) FROM examples` + where

	var count int64
	if err := sqlx.GetContext(ctx, r.q, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count examples: %w", err)
	}

	return count, nil
}

// ListPaginated returns at most limit examples matching search, newest first,
// after skipping offset rows. It never returns a nil slice.
func (r *ExampleRepository) ListPaginated(ctx context.Context, search string, limit, offset int) ([]domain.Example, error) {
	where, args := buildListWhere(search)
	args = append(args, limit, offset)

	query := fmt.Sprintf(
		`SELECT %s FROM examples%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		exampleColumns, where, len(args)-1, len(args),
	)

	examples := make([]domain.Example, 0, limit)
	if err := sqlx.SelectContext(ctx, r.q, &examples, query, args...); err != nil {
		return nil, fmt.Errorf("list examples: %w", err)
	}

	return examples, nil
}

// Update applies the fields present in in and refreshes updated_at. The new
// updated_at is strictly later than the previous one even when the clock has
// not advanced.
func (r *ExampleRepository) Update(ctx context.Context, id int64, in *domain.ExampleUpdate) (*domain.Example, error) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 4)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if in.Name.Set {
		set("name", in.Name.Value)
	}
	if in.Description.Set {
		set("description", in.Description.Ptr())
	}
	if in.IsActive.Set {
		set("is_active", in.IsActive.Value)
	}
	sets = append(sets, "updated_at = GREATEST(NOW(), updated_at + INTERVAL '1 microsecond')")
	args = append(args, id)

	query := fmt.Sprintf(
		`UPDATE examples SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), exampleColumns,
	)

	var example domain.Example
	if err := sqlx.GetContext(ctx, r.q, &example, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.ResourceExample, id)
		}
		return nil, fmt.Errorf("update example: %w", translateError(err))
	}

	return &example, nil
}

// Delete removes the example and returns the deleted row.
func (r *ExampleRepository) Delete(ctx context.Context, id int64) (*domain.Example, error) {
	query := `DELETE FROM examples WHERE id = $1 RETURNING ` + exampleColumns

	var example domain.Example
	if err := sqlx.GetContext(ctx, r.q, &example, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.ResourceExample, id)
		}
		return nil, fmt.Errorf("delete example: %w", err)
	}

	r.logger.Debug("Example row deleted", infralogger.Int64("example_id", id))
	return &example, nil
}

// buildListWhere returns the WHERE clause (with leading space) and its args.
func buildListWhere(search string) (whereClause string, args []any) {
	if search == "" {
		return "", nil
	}
	return " WHERE name ILIKE $1", []any{"%" + escapeLike(search) + "%"}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in s match literally under the default
// backslash escape character.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// translateError turns constraint violations that slipped past input
// validation into *domain.ValidationError.
func translateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch string(pqErr.Code) {
	case pqCheckViolation, pqStringDataRightTrunc:
		field := pqErr.Column
		return domain.InvalidBody(field, pqErr.Message, "value_error")
	default:
		return err
	}
}
