package repository

import (
	"database/sql"
	"fmt"

	"github.com/ycliang/portfolio-performance-engine/internal/apperrors"
	"github.com/ycliang/portfolio-performance-engine/internal/model"
)

// TransactionRepository provides data access methods for the
// stock_transaction table. Soft-deleted rows are excluded from every
// read path.
type TransactionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) WithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{db: r.db, tx: tx}
}

func (r *TransactionRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const transactionColumns = `id, portfolio_id, date, ticker, type, shares, price_per_share,
	fees, market, exchange_rate, externally_funded, deleted, created_at`

// GetTransactions retrieves non-deleted transactions matching the
// filter, ordered by date ascending with ties broken by id so callers
// see a deterministic sequence.
func (r *TransactionRepository) GetTransactions(filter model.TransactionFilter) ([]model.StockTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM stock_transaction
		WHERE deleted = FALSE
	`
	var args []any
	if filter.PortfolioID != "" {
		query += ` AND portfolio_id = ?`
		args = append(args, filter.PortfolioID)
	}
	if filter.Ticker != "" {
		query += ` AND ticker = ? COLLATE NOCASE`
		args = append(args, filter.Ticker)
	}
	if !filter.From.IsZero() {
		query += ` AND date >= ?`
		args = append(args, DateString(filter.From))
	}
	if !filter.To.IsZero() {
		query += ` AND date <= ?`
		args = append(args, DateString(filter.To))
	}
	if filter.CashFlowOnly {
		query += ` AND externally_funded = TRUE AND type IN ('BUY', 'SELL')`
	}
	query += ` ORDER BY date, id`

	rows, err := r.getQuerier().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock_transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.StockTransaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock_transaction table: %w", err)
	}

	return transactions, nil
}

// GetMissingRateTransactions retrieves every non-deleted buy/sell
// transaction still lacking a stored exchange rate, across all
// portfolios. Used by the nightly FX refresh job.
func (r *TransactionRepository) GetMissingRateTransactions() ([]model.StockTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM stock_transaction
		WHERE deleted = FALSE AND exchange_rate IS NULL AND type IN ('BUY', 'SELL')
		ORDER BY date, id
	`
	rows, err := r.getQuerier().Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock_transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.StockTransaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock_transaction table: %w", err)
	}
	return transactions, nil
}

// GetTransaction retrieves a single non-deleted transaction by ID.
// Returns apperrors.ErrTransactionNotFound when no row exists.
func (r *TransactionRepository) GetTransaction(id string) (model.StockTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM stock_transaction
		WHERE id = ? AND deleted = FALSE
	`
	rows, err := r.getQuerier().Query(query, id)
	if err != nil {
		return model.StockTransaction{}, fmt.Errorf("failed to query stock_transaction table: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return model.StockTransaction{}, fmt.Errorf("error iterating stock_transaction table: %w", err)
		}
		return model.StockTransaction{}, apperrors.ErrTransactionNotFound
	}
	return scanTransaction(rows)
}

// CreateTransaction inserts a new stock transaction row.
func (r *TransactionRepository) CreateTransaction(t model.StockTransaction) error {
	query := `
		INSERT INTO stock_transaction
			(id, portfolio_id, date, ticker, type, shares, price_per_share, fees, market, exchange_rate, externally_funded)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.getQuerier().Exec(query,
		t.ID,
		t.PortfolioID,
		DateString(t.Date),
		t.Ticker,
		string(t.Type),
		t.Shares,
		t.PricePerShare,
		t.Fees,
		string(t.Market),
		t.ExchangeRate,
		t.ExternallyFunded,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to insert stock transaction: %w", err)
	}
	return nil
}

// UpdateExchangeRate stores a resolved exchange rate on a transaction.
// Only rates still unset are written; a stored rate is never replaced.
func (r *TransactionRepository) UpdateExchangeRate(id string, rate float64) error {
	query := `
		UPDATE stock_transaction
		SET exchange_rate = ?
		WHERE id = ? AND exchange_rate IS NULL AND deleted = FALSE
	`
	if _, err := r.getQuerier().Exec(query, rate, id); err != nil {
		return fmt.Errorf("failed to update exchange rate: %w", err)
	}
	return nil
}

// SoftDeleteTransaction marks a transaction deleted without removing the
// row, keeping historical references intact.
func (r *TransactionRepository) SoftDeleteTransaction(id string) error {
	result, err := r.getQuerier().Exec(
		`UPDATE stock_transaction SET deleted = TRUE WHERE id = ? AND deleted = FALSE`, id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete stock transaction: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

func scanTransaction(rows *sql.Rows) (model.StockTransaction, error) {
	var t model.StockTransaction
	var date string
	var txType, market string
	var rate sql.NullFloat64
	var createdAt sql.NullString

	err := rows.Scan(
		&t.ID,
		&t.PortfolioID,
		&date,
		&t.Ticker,
		&txType,
		&t.Shares,
		&t.PricePerShare,
		&t.Fees,
		&market,
		&rate,
		&t.ExternallyFunded,
		&t.Deleted,
		&createdAt,
	)
	if err != nil {
		return model.StockTransaction{}, fmt.Errorf("failed to scan stock_transaction table results: %w", err)
	}

	t.Type = model.TransactionType(txType)
	t.Market = model.Market(market)
	if rate.Valid {
		r := rate.Float64
		t.ExchangeRate = &r
	}
	if t.Date, err = ParseTime(date); err != nil {
		return model.StockTransaction{}, err
	}
	if createdAt.Valid {
		if parsed, err := ParseTime(createdAt.String); err == nil {
			t.CreatedAt = parsed
		}
	}
	return t, nil
}
