package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Resolver looks up catalog entries for the booking flow.
type Resolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Service, error)
}

type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository reads services from the relational database.
type Repository struct {
	db db
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("catalog: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for tests.
func NewRepositoryWithDB(db db) *Repository {
	return &Repository{db: db}
}

const serviceColumns = `id, name, category, description, duration_minutes, base_price, is_active, created_at, updated_at`

// GetByID fetches a single service.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`
	var svc Service
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&svc.ID,
		&svc.Name,
		&svc.Category,
		&svc.Description,
		&svc.DurationMinutes,
		&svc.BasePrice,
		&svc.IsActive,
		&svc.CreatedAt,
		&svc.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("catalog: load service: %w", err)
	}
	return &svc, nil
}

// ListActive returns the services currently offered for booking.
func (r *Repository) ListActive(ctx context.Context) ([]*Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE is_active ORDER BY category, name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("catalog: list active: %w", err)
	}
	defer rows.Close()

	var out []*Service
	for rows.Next() {
		var svc Service
		if err := rows.Scan(
			&svc.ID,
			&svc.Name,
			&svc.Category,
			&svc.Description,
			&svc.DurationMinutes,
			&svc.BasePrice,
			&svc.IsActive,
			&svc.CreatedAt,
			&svc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("catalog: scan service: %w", err)
		}
		out = append(out, &svc)
	}
	if out == nil {
		out = []*Service{}
	}
	return out, rows.Err()
}
