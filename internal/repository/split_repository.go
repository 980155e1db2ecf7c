package repository

import (
	"database/sql"
	"fmt"

	"github.com/ycliang/portfolio-performance-engine/internal/apperrors"
	"github.com/ycliang/portfolio-performance-engine/internal/model"
)

// SplitRepository provides data access methods for the stock_split
// table. Splits are global rows shared by all users.
type SplitRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewSplitRepository creates a new SplitRepository with the provided database connection.
func NewSplitRepository(db *sql.DB) *SplitRepository {
	return &SplitRepository{db: db}
}

func (r *SplitRepository) WithTx(tx *sql.Tx) *SplitRepository {
	return &SplitRepository{db: r.db, tx: tx}
}

func (r *SplitRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetSplitsForSymbol retrieves all splits for a symbol on a market,
// ordered by effective date ascending. Adjustment math depends on this
// ordering.
func (r *SplitRepository) GetSplitsForSymbol(symbol string, market model.Market) ([]model.StockSplit, error) {
	query := `
		SELECT id, symbol, market, effective_date, ratio, created_at
		FROM stock_split
		WHERE symbol = ? COLLATE NOCASE AND market = ?
		ORDER BY effective_date, id
	`
	rows, err := r.getQuerier().Query(query, symbol, string(market))
	if err != nil {
		return nil, fmt.Errorf("failed to query stock_split table: %w", err)
	}
	defer rows.Close()

	splits := []model.StockSplit{}
	for rows.Next() {
		s, err := scanSplit(rows)
		if err != nil {
			return nil, err
		}
		splits = append(splits, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock_split table: %w", err)
	}
	return splits, nil
}

// GetSplits retrieves every registered split, ordered by symbol then
// effective date.
func (r *SplitRepository) GetSplits() ([]model.StockSplit, error) {
	query := `
		SELECT id, symbol, market, effective_date, ratio, created_at
		FROM stock_split
		ORDER BY symbol, effective_date
	`
	rows, err := r.getQuerier().Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock_split table: %w", err)
	}
	defer rows.Close()

	splits := []model.StockSplit{}
	for rows.Next() {
		s, err := scanSplit(rows)
		if err != nil {
			return nil, err
		}
		splits = append(splits, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock_split table: %w", err)
	}
	return splits, nil
}

// CreateSplit inserts a new split row. A second split for the same
// symbol/market/date is a duplicate.
func (r *SplitRepository) CreateSplit(s model.StockSplit) error {
	query := `
		INSERT INTO stock_split (id, symbol, market, effective_date, ratio)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.getQuerier().Exec(query, s.ID, s.Symbol, string(s.Market), DateString(s.EffectiveDate), s.Ratio)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to insert stock split: %w", err)
	}
	return nil
}

// DeleteSplit removes a split registration.
func (r *SplitRepository) DeleteSplit(id string) error {
	result, err := r.getQuerier().Exec(`DELETE FROM stock_split WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete stock split: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrSplitNotFound
	}
	return nil
}

func scanSplit(rows *sql.Rows) (model.StockSplit, error) {
	var s model.StockSplit
	var market, date string
	var createdAt sql.NullString

	if err := rows.Scan(&s.ID, &s.Symbol, &market, &date, &s.Ratio, &createdAt); err != nil {
		return model.StockSplit{}, fmt.Errorf("failed to scan stock_split table results: %w", err)
	}
	s.Market = model.Market(market)
	var err error
	if s.EffectiveDate, err = ParseTime(date); err != nil {
		return model.StockSplit{}, err
	}
	if createdAt.Valid {
		if parsed, err := ParseTime(createdAt.String); err == nil {
			s.CreatedAt = parsed
		}
	}
	return s, nil
}
