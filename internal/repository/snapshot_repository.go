package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ycliang/portfolio-performance-engine/internal/apperrors"
	"github.com/ycliang/portfolio-performance-engine/internal/model"
)

// SnapshotRepository provides data access for the
// transaction_portfolio_snapshot table. One row per cash-flow-bearing
// transaction, overwritten on recompute.
type SnapshotRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewSnapshotRepository creates a new SnapshotRepository with the provided database connection.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) WithTx(tx *sql.Tx) *SnapshotRepository {
	return &SnapshotRepository{db: r.db, tx: tx}
}

func (r *SnapshotRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Upsert writes the snapshot for a transaction, replacing any previous
// values for the same transaction.
func (r *SnapshotRepository) Upsert(s model.TransactionPortfolioSnapshot) error {
	query := `
		INSERT INTO transaction_portfolio_snapshot
			(id, portfolio_id, transaction_id, date, value_before, value_after, calculated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (transaction_id) DO UPDATE SET
			date = excluded.date,
			value_before = excluded.value_before,
			value_after = excluded.value_after,
			calculated_at = CURRENT_TIMESTAMP
	`
	_, err := r.getQuerier().Exec(query,
		s.ID,
		s.PortfolioID,
		s.TransactionID,
		DateString(s.Date),
		s.ValueBefore,
		s.ValueAfter,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert transaction snapshot: %w", err)
	}
	return nil
}

// DeleteByTransaction removes the snapshot belonging to a transaction.
// Deleting a snapshot that does not exist is not an error: callers
// delete defensively when transactions are removed.
func (r *SnapshotRepository) DeleteByTransaction(transactionID string) error {
	if _, err := r.getQuerier().Exec(
		`DELETE FROM transaction_portfolio_snapshot WHERE transaction_id = ?`, transactionID); err != nil {
		return fmt.Errorf("failed to delete transaction snapshot: %w", err)
	}
	return nil
}

// GetByTransaction retrieves the snapshot for a single transaction.
func (r *SnapshotRepository) GetByTransaction(transactionID string) (model.TransactionPortfolioSnapshot, error) {
	query := `
		SELECT id, portfolio_id, transaction_id, date, value_before, value_after, calculated_at
		FROM transaction_portfolio_snapshot
		WHERE transaction_id = ?
	`
	rows, err := r.getQuerier().Query(query, transactionID)
	if err != nil {
		return model.TransactionPortfolioSnapshot{}, fmt.Errorf("failed to query transaction_portfolio_snapshot table: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return model.TransactionPortfolioSnapshot{}, fmt.Errorf("error iterating transaction_portfolio_snapshot table: %w", err)
		}
		return model.TransactionPortfolioSnapshot{}, apperrors.ErrSnapshotNotFound
	}
	return scanSnapshot(rows)
}

// GetRange retrieves snapshots for a portfolio within [from, to],
// ordered by date ascending with ties broken by transaction id for
// determinism.
func (r *SnapshotRepository) GetRange(portfolioID string, from, to time.Time) ([]model.TransactionPortfolioSnapshot, error) {
	query := `
		SELECT id, portfolio_id, transaction_id, date, value_before, value_after, calculated_at
		FROM transaction_portfolio_snapshot
		WHERE portfolio_id = ?
	`
	args := []any{portfolioID}
	if !from.IsZero() {
		query += ` AND date >= ?`
		args = append(args, DateString(from))
	}
	if !to.IsZero() {
		query += ` AND date <= ?`
		args = append(args, DateString(to))
	}
	query += ` ORDER BY date, transaction_id`

	rows, err := r.getQuerier().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction_portfolio_snapshot table: %w", err)
	}
	defer rows.Close()

	snapshots := []model.TransactionPortfolioSnapshot{}
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction_portfolio_snapshot table: %w", err)
	}
	return snapshots, nil
}

func scanSnapshot(rows *sql.Rows) (model.TransactionPortfolioSnapshot, error) {
	var s model.TransactionPortfolioSnapshot
	var date string
	var calculatedAt sql.NullString

	err := rows.Scan(&s.ID, &s.PortfolioID, &s.TransactionID, &date, &s.ValueBefore, &s.ValueAfter, &calculatedAt)
	if err != nil {
		return model.TransactionPortfolioSnapshot{}, fmt.Errorf("failed to scan transaction_portfolio_snapshot results: %w", err)
	}
	if s.Date, err = ParseTime(date); err != nil {
		return model.TransactionPortfolioSnapshot{}, err
	}
	if calculatedAt.Valid {
		if parsed, err := ParseTime(calculatedAt.String); err == nil {
			s.CalculatedAt = parsed
		}
	}
	return s, nil
}
