package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/casebridge/casebridge/internal/clio"
)

// Transaction is one recorded API call, as returned by RecentTransactions.
type Transaction struct {
	ID        uuid.UUID `json:"id"`
	Source    string    `json:"source"`
	Dest      string    `json:"destination"`
	Method    string    `json:"method"`
	URL       string    `json:"url"`
	Status    *int      `json:"status"`
	Success   bool      `json:"success"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrorEntry is one recorded error, as returned by RecentErrors.
type ErrorEntry struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// LogTransaction implements clio.TransactionLog. Persistence failures are
// logged and swallowed: the diagnostics trail must never break request
// processing.
func (s *Store) LogTransaction(ctx context.Context, rec clio.TransactionRecord) {
	var respBody any
	if len(rec.ResponseBody) > 0 {
		respBody = string(rec.ResponseBody)
	}
	var reqBody any
	if len(rec.RequestBody) > 0 {
		reqBody = string(rec.RequestBody)
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO transactions (id, source, destination, request_method, request_url, request_body, response_status, response_body, duration_ms, success, created_at)
		VALUES ($1, $2, $3, $4, $5, to_jsonb($6::text), $7, to_jsonb($8::text), $9, $10, now())`,
		uuid.New(), rec.Source, rec.Destination, rec.Method, rec.URL,
		reqBody, rec.Status, respBody, rec.Duration.Milliseconds(), rec.Success,
	)
	if err != nil {
		slog.Warn("failed to log transaction", "url", rec.URL, "error", err)
	}
}

// LogError implements clio.TransactionLog.
func (s *Store) LogError(ctx context.Context, errType, message string) {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO error_logs (id, error_type, error_message, created_at)
		VALUES ($1, $2, $3, now())`,
		uuid.New(), errType, message,
	)
	if err != nil {
		slog.Warn("failed to log error entry", "type", errType, "error", err)
	}
}

// RecentTransactions returns the most recent API calls, newest first.
func (s *Store) RecentTransactions(ctx context.Context, limit int) ([]Transaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, source, destination, request_method, request_url, response_status, success, created_at
		FROM transactions
		ORDER BY created_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.Source, &t.Dest, &t.Method, &t.URL, &t.Status, &t.Success, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// RecentErrors returns the most recent error entries, newest first.
func (s *Store) RecentErrors(ctx context.Context, limit int) ([]ErrorEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, error_type, error_message, created_at
		FROM error_logs
		ORDER BY created_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ErrorEntry
	for rows.Next() {
		var e ErrorEntry
		if err := rows.Scan(&e.ID, &e.Type, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
