package ratecards

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warebill/warebill/internal/billing"
	"github.com/warebill/warebill/internal/platform/httpx"
)

// Repository defines rate-card data access.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Entry, error)
	Get(ctx context.Context, id int64) (Entry, error)
	Create(ctx context.Context, e Entry) (Entry, error)
	Update(ctx context.Context, id int64, e Entry) error
	Delete(ctx context.Context, id int64) error
}

// PGRepository provides PostgreSQL backed persistence. The table carries a
// unique index on (customer_id, service_type, charge_type).
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const entryColumns = `id, customer_id, service_type, charge_type, rate, currency, unit, created_at, updated_at`

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.CustomerID, &e.ServiceType, &e.ChargeType, &e.Rate, &e.Currency, &e.Unit, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// List returns entries matching the filters, rate-card order (insert order
// by id) so fixed charges bill deterministically.
func (r *PGRepository) List(ctx context.Context, filters ListFilters) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM rate_card_entries
WHERE ($1 = '' OR customer_id = $1)
  AND ($2 = '' OR service_type = $2)
ORDER BY id`
	rows, err := r.pool.Query(ctx, query, filters.CustomerID, filters.ServiceType)
	if err != nil {
		return nil, fmt.Errorf("ratecards: list: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("ratecards: scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ratecards: rows: %w", err)
	}
	return out, nil
}

// Get returns one entry by id.
func (r *PGRepository) Get(ctx context.Context, id int64) (Entry, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM rate_card_entries WHERE id = $1`, id)
	e, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, fmt.Errorf("ratecards: %d: %w", id, httpx.ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("ratecards: get: %w", err)
	}
	return e, nil
}

// Create inserts a new entry. A key collision means the registry would
// become ambiguous for billing and is rejected.
func (r *PGRepository) Create(ctx context.Context, e Entry) (Entry, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO rate_card_entries (customer_id, service_type, charge_type, rate, currency, unit)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING `+entryColumns, e.CustomerID, e.ServiceType, e.ChargeType, e.Rate, e.Currency, e.Unit)
	created, err := scanEntry(row)
	if isUniqueViolation(err) {
		return Entry{}, &billing.DuplicateRateError{
			CustomerID:  e.CustomerID,
			ServiceType: e.ServiceType,
			ChargeType:  e.ChargeType,
		}
	}
	if err != nil {
		return Entry{}, fmt.Errorf("ratecards: create: %w", err)
	}
	return created, nil
}

// Update replaces the price fields of an entry.
func (r *PGRepository) Update(ctx context.Context, id int64, e Entry) error {
	tag, err := r.pool.Exec(ctx, `UPDATE rate_card_entries
SET rate = $2, currency = $3, unit = $4, updated_at = now()
WHERE id = $1`, id, e.Rate, e.Currency, e.Unit)
	if err != nil {
		return fmt.Errorf("ratecards: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ratecards: %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

// Delete removes an entry.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM rate_card_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ratecards: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ratecards: %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
