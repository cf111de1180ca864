// Package invoices persists assembled invoices and serves them back for
// reporting and export. Invoices are written once and never mutated.
package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/warebill/warebill/internal/billing"
	"github.com/warebill/warebill/internal/platform/db"
	"github.com/warebill/warebill/internal/platform/httpx"
)

// Summary is the header view used by listings.
type Summary struct {
	ID          string          `json:"id"`
	CustomerID  string          `json:"customer_id"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	Currency    string          `json:"currency"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Repository defines invoice persistence.
type Repository interface {
	Save(ctx context.Context, inv *billing.Invoice) error
	Get(ctx context.Context, id string) (*billing.Invoice, error)
	List(ctx context.Context, customerID string) ([]Summary, error)
	Exists(ctx context.Context, customerID string, periodStart time.Time) (bool, error)
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Save writes the invoice header and its lines atomically.
func (r *PGRepository) Save(ctx context.Context, inv *billing.Invoice) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO invoices (id, customer_id, period_start, period_end, frequency_days, currency, total_amount, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			inv.ID, inv.CustomerID, inv.Period.StartDate, inv.Period.EndDate, inv.Period.FrequencyDays,
			inv.Currency, inv.TotalAmount, inv.CreatedAt)
		if err != nil {
			return fmt.Errorf("invoices: insert header: %w", err)
		}
		for i, ln := range inv.Lines {
			_, err := tx.Exec(ctx, `INSERT INTO invoice_lines (invoice_id, line_no, service_type, charge_type, quantity, unit_rate, unit, currency, amount)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				inv.ID, i+1, ln.ServiceType, ln.ChargeType, ln.Quantity, ln.UnitRate, ln.Unit, ln.Currency, ln.Amount)
			if err != nil {
				return fmt.Errorf("invoices: insert line %d: %w", i+1, err)
			}
		}
		return nil
	})
}

// Get returns one stored invoice with its lines in original order.
func (r *PGRepository) Get(ctx context.Context, id string) (*billing.Invoice, error) {
	inv := &billing.Invoice{ID: id}
	row := r.pool.QueryRow(ctx, `SELECT customer_id, period_start, period_end, frequency_days, currency, total_amount, created_at
FROM invoices WHERE id = $1`, id)
	err := row.Scan(&inv.CustomerID, &inv.Period.StartDate, &inv.Period.EndDate, &inv.Period.FrequencyDays,
		&inv.Currency, &inv.TotalAmount, &inv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("invoices: %s: %w", id, httpx.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("invoices: get: %w", err)
	}
	inv.Period.CustomerID = inv.CustomerID

	rows, err := r.pool.Query(ctx, `SELECT service_type, charge_type, quantity, unit_rate, unit, currency, amount
FROM invoice_lines WHERE invoice_id = $1 ORDER BY line_no`, id)
	if err != nil {
		return nil, fmt.Errorf("invoices: lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ln billing.InvoiceLine
		if err := rows.Scan(&ln.ServiceType, &ln.ChargeType, &ln.Quantity, &ln.UnitRate, &ln.Unit, &ln.Currency, &ln.Amount); err != nil {
			return nil, fmt.Errorf("invoices: scan line: %w", err)
		}
		inv.Lines = append(inv.Lines, ln)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("invoices: rows: %w", err)
	}
	return inv, nil
}

// Exists reports whether the customer already has an invoice for the
// given period start. Batch billing uses this to skip billed periods.
func (r *PGRepository) Exists(ctx context.Context, customerID string, periodStart time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE customer_id = $1 AND period_start = $2)`,
		customerID, periodStart).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("invoices: exists: %w", err)
	}
	return exists, nil
}

// List returns invoice headers, newest first.
func (r *PGRepository) List(ctx context.Context, customerID string) ([]Summary, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, customer_id, period_start, period_end, currency, total_amount, created_at
FROM invoices
WHERE ($1 = '' OR customer_id = $1)
ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("invoices: list: %w", err)
	}
	defer rows.Close()
	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.CustomerID, &s.PeriodStart, &s.PeriodEnd, &s.Currency, &s.TotalAmount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("invoices: scan: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("invoices: rows: %w", err)
	}
	return out, nil
}
