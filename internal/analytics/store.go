// Package analytics mirrors transaction outcomes into Postgres for
// reporting. The mirror is optional: a nil Store is a no-op, and
// Firestore remains the source of truth.
package analytics

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store writes transaction rows into the analytics database.
type Store struct {
	db *pgxpool.Pool
}

// NewStore creates a Store. db may be nil when no DSN is configured.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the analytics tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}

	const q = `
create table if not exists transaction_logs (
	payment_id text primary key,
	user_id    text not null,
	amount     double precision not null,
	status     text not null,
	created_at timestamptz not null default now()
);

create table if not exists failed_payments (
	id         bigserial primary key,
	payment_id text not null,
	user_id    text not null,
	amount     double precision not null,
	reason     text not null,
	created_at timestamptz not null default now()
);

create index if not exists idx_transaction_logs_user on transaction_logs (user_id);
create index if not exists idx_failed_payments_user on failed_payments (user_id);
`
	_, err := s.db.Exec(ctx, q)
	return err
}

// LogTransaction records a completed payment. Idempotent on payment id.
func (s *Store) LogTransaction(ctx context.Context, paymentID, userID string, amount float64, status string) {
	if s == nil || s.db == nil {
		return
	}

	const q = `
insert into transaction_logs (payment_id, user_id, amount, status)
values ($1, $2, $3, $4)
on conflict (payment_id) do nothing;
`
	if _, err := s.db.Exec(ctx, q, paymentID, userID, amount, status); err != nil {
		log.Printf("[analytics] transaction log failed payment_id=%s: %v", paymentID, err)
	}
}

// LogFailedPayment records a rejected verification attempt.
func (s *Store) LogFailedPayment(ctx context.Context, paymentID, userID string, amount float64, reason string) {
	if s == nil || s.db == nil {
		return
	}

	const q = `
insert into failed_payments (payment_id, user_id, amount, reason)
values ($1, $2, $3, $4);
`
	if _, err := s.db.Exec(ctx, q, paymentID, userID, amount, reason); err != nil {
		log.Printf("[analytics] failed-payment log failed payment_id=%s: %v", paymentID, err)
	}
}

// UserSpendSummary is one row of the per-user spend report.
type UserSpendSummary struct {
	UserID     string  `json:"userId"`
	Payments   int64   `json:"payments"`
	TotalSpent float64 `json:"totalSpent"`
}

// TopSpenders returns the highest-spending users, for the ops report.
func (s *Store) TopSpenders(ctx context.Context, limit int) ([]UserSpendSummary, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	const q = `
select user_id, count(*), coalesce(sum(amount), 0)
from transaction_logs
where status = 'success'
group by user_id
order by 3 desc
limit $1;
`
	rows, err := s.db.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]UserSpendSummary, 0, limit)
	for rows.Next() {
		var row UserSpendSummary
		if err := rows.Scan(&row.UserID, &row.Payments, &row.TotalSpent); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
