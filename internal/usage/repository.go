// Package usage is the usage ledger: timestamped billable activity per
// customer, read back by billing runs as an inclusive date range.
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warebill/warebill/internal/billing"
	"github.com/warebill/warebill/internal/platform/db"
)

// Repository defines ledger data access.
type Repository interface {
	Insert(ctx context.Context, records []billing.UsageRecord) error
	ListRange(ctx context.Context, customerID string, start, end time.Time) ([]billing.UsageRecord, error)
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Insert appends a usage batch to the ledger in one transaction; either
// every record lands or none do.
func (r *PGRepository) Insert(ctx context.Context, records []billing.UsageRecord) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return insertRecords(ctx, tx, records)
	})
}

func insertRecords(ctx context.Context, q execer, records []billing.UsageRecord) error {
	for _, rec := range records {
		_, err := q.Exec(ctx, `INSERT INTO usage_records (customer_id, service_type, charge_type, quantity, occurred_at)
VALUES ($1, $2, $3, $4, $5)`, rec.CustomerID, rec.ServiceType, rec.ChargeType, rec.Quantity, rec.OccurredAt)
		if err != nil {
			return fmt.Errorf("usage: insert: %w", err)
		}
	}
	return nil
}

// ListRange returns a customer's records with occurred_at inside
// [start, end], both ends inclusive, in insertion order.
func (r *PGRepository) ListRange(ctx context.Context, customerID string, start, end time.Time) ([]billing.UsageRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT customer_id, service_type, charge_type, quantity, occurred_at
FROM usage_records
WHERE customer_id = $1 AND occurred_at >= $2 AND occurred_at < $3
ORDER BY id`, customerID, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("usage: list range: %w", err)
	}
	defer rows.Close()
	var out []billing.UsageRecord
	for rows.Next() {
		var rec billing.UsageRecord
		if err := rows.Scan(&rec.CustomerID, &rec.ServiceType, &rec.ChargeType, &rec.Quantity, &rec.OccurredAt); err != nil {
			return nil, fmt.Errorf("usage: scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("usage: rows: %w", err)
	}
	return out, nil
}
