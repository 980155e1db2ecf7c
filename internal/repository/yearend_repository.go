package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/ycliang/portfolio-performance-engine/internal/apperrors"
	"github.com/ycliang/portfolio-performance-engine/internal/model"
)

// YearEndDataRepository provides data access for the append-only
// historical_year_end_data cache. Rows are keyed by (data_type, ticker,
// year); the unique constraint is the only arbitration between
// concurrent writers.
type YearEndDataRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewYearEndDataRepository creates a new YearEndDataRepository with the provided database connection.
func NewYearEndDataRepository(db *sql.DB) *YearEndDataRepository {
	return &YearEndDataRepository{db: db}
}

func (r *YearEndDataRepository) WithTx(tx *sql.Tx) *YearEndDataRepository {
	return &YearEndDataRepository{db: r.db, tx: tx}
}

func (r *YearEndDataRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const yearEndColumns = `id, data_type, ticker, year, value, currency, actual_date, source, fetched_at`

// Get retrieves the cache entry for (dataType, ticker, year).
// Returns apperrors.ErrCacheEntryNotFound when the key is not populated.
func (r *YearEndDataRepository) Get(dataType model.HistoricalDataType, ticker string, year int) (model.HistoricalYearEndData, error) {
	query := `
		SELECT ` + yearEndColumns + `
		FROM historical_year_end_data
		WHERE data_type = ? AND ticker = ? COLLATE NOCASE AND year = ?
	`
	rows, err := r.getQuerier().Query(query, string(dataType), normalizeTicker(ticker), year)
	if err != nil {
		return model.HistoricalYearEndData{}, fmt.Errorf("failed to query historical_year_end_data table: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return model.HistoricalYearEndData{}, fmt.Errorf("error iterating historical_year_end_data table: %w", err)
		}
		return model.HistoricalYearEndData{}, apperrors.ErrCacheEntryNotFound
	}
	return scanYearEnd(rows)
}

// Exists reports whether the key is already populated.
func (r *YearEndDataRepository) Exists(dataType model.HistoricalDataType, ticker string, year int) (bool, error) {
	var count int
	err := r.getQuerier().QueryRow(
		`SELECT COUNT(1) FROM historical_year_end_data WHERE data_type = ? AND ticker = ? COLLATE NOCASE AND year = ?`,
		string(dataType), normalizeTicker(ticker), year,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check historical_year_end_data existence: %w", err)
	}
	return count > 0, nil
}

// Add inserts a new cache entry. A populated key surfaces as
// apperrors.ErrCacheEntryExists, a recoverable condition the caller can
// resolve by re-reading.
func (r *YearEndDataRepository) Add(entry model.HistoricalYearEndData) error {
	query := `
		INSERT INTO historical_year_end_data
			(id, data_type, ticker, year, value, currency, actual_date, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.getQuerier().Exec(query,
		entry.ID,
		string(entry.DataType),
		normalizeTicker(entry.Ticker),
		entry.Year,
		entry.Value,
		entry.Currency,
		DateString(entry.ActualDate),
		string(entry.Source),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrCacheEntryExists
		}
		return fmt.Errorf("failed to insert historical_year_end_data row: %w", err)
	}
	return nil
}

// InsertOrGet atomically inserts the entry or, when the key is already
// populated, returns the existing row. Two concurrent first-fetches of
// the same key both succeed and observe the same stored value.
func (r *YearEndDataRepository) InsertOrGet(entry model.HistoricalYearEndData) (model.HistoricalYearEndData, bool, error) {
	query := `
		INSERT INTO historical_year_end_data
			(id, data_type, ticker, year, value, currency, actual_date, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (data_type, ticker, year) DO NOTHING
	`
	result, err := r.getQuerier().Exec(query,
		entry.ID,
		string(entry.DataType),
		normalizeTicker(entry.Ticker),
		entry.Year,
		entry.Value,
		entry.Currency,
		DateString(entry.ActualDate),
		string(entry.Source),
	)
	if err != nil {
		return model.HistoricalYearEndData{}, false, fmt.Errorf("failed to insert historical_year_end_data row: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return model.HistoricalYearEndData{}, false, fmt.Errorf("failed to read insert result: %w", err)
	}

	stored, err := r.Get(entry.DataType, entry.Ticker, entry.Year)
	if err != nil {
		return model.HistoricalYearEndData{}, false, err
	}
	return stored, affected > 0, nil
}

func scanYearEnd(rows *sql.Rows) (model.HistoricalYearEndData, error) {
	var e model.HistoricalYearEndData
	var dataType, source, actualDate string
	var fetchedAt sql.NullString

	err := rows.Scan(&e.ID, &dataType, &e.Ticker, &e.Year, &e.Value, &e.Currency, &actualDate, &source, &fetchedAt)
	if err != nil {
		return model.HistoricalYearEndData{}, fmt.Errorf("failed to scan historical_year_end_data results: %w", err)
	}
	e.DataType = model.HistoricalDataType(dataType)
	e.Source = model.PriceSource(source)
	if e.ActualDate, err = ParseTime(actualDate); err != nil {
		return model.HistoricalYearEndData{}, err
	}
	if fetchedAt.Valid {
		if parsed, err := ParseTime(fetchedAt.String); err == nil {
			e.FetchedAt = parsed
		}
	}
	return e, nil
}

// normalizeTicker stores tickers upper-cased so the unique key is
// case-insensitive regardless of collation on reads.
func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
