package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warebill/warebill/internal/platform/httpx"
)

// Repository defines registry data access.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Customer, error)
	Get(ctx context.Context, id string) (Customer, error)
	Create(ctx context.Context, c Customer) (Customer, error)
	Update(ctx context.Context, id string, c Customer) error
	Delete(ctx context.Context, id string) error
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const customerColumns = `id, name, type, billing_frequency_days, status, created_at, updated_at`

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Type, &c.BillingFrequencyDays, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// List returns customers matching the filters, ordered by id.
func (r *PGRepository) List(ctx context.Context, filters ListFilters) ([]Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers
WHERE ($1 = '' OR type = $1)
  AND ($2 = '' OR status = $2)
  AND ($3 = '' OR name ILIKE '%' || $3 || '%')
ORDER BY id`
	rows, err := r.pool.Query(ctx, query, filters.Type, filters.Status, filters.Search)
	if err != nil {
		return nil, fmt.Errorf("customers: list: %w", err)
	}
	defer rows.Close()
	var out []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("customers: scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("customers: rows: %w", err)
	}
	return out, nil
}

// Get returns one customer by id.
func (r *PGRepository) Get(ctx context.Context, id string) (Customer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	c, err := scanCustomer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, fmt.Errorf("customers: %s: %w", id, httpx.ErrNotFound)
	}
	if err != nil {
		return Customer{}, fmt.Errorf("customers: get: %w", err)
	}
	return c, nil
}

// Create inserts a new customer.
func (r *PGRepository) Create(ctx context.Context, c Customer) (Customer, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO customers (id, name, type, billing_frequency_days, status)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+customerColumns, c.ID, c.Name, c.Type, c.BillingFrequencyDays, c.Status)
	created, err := scanCustomer(row)
	if isUniqueViolation(err) {
		return Customer{}, fmt.Errorf("customers: %s: %w", c.ID, httpx.ErrDuplicate)
	}
	if err != nil {
		return Customer{}, fmt.Errorf("customers: create: %w", err)
	}
	return created, nil
}

// Update replaces the mutable fields of a customer.
func (r *PGRepository) Update(ctx context.Context, id string, c Customer) error {
	tag, err := r.pool.Exec(ctx, `UPDATE customers
SET name = $2, type = $3, billing_frequency_days = $4, status = $5, updated_at = now()
WHERE id = $1`, id, c.Name, c.Type, c.BillingFrequencyDays, c.Status)
	if err != nil {
		return fmt.Errorf("customers: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customers: %s: %w", id, httpx.ErrNotFound)
	}
	return nil
}

// Delete removes a customer.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("customers: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customers: %s: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
