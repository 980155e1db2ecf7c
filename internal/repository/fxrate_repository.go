package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ycliang/portfolio-performance-engine/internal/apperrors"
	"github.com/ycliang/portfolio-performance-engine/internal/model"
)

// FXRateCacheRepository provides data access for the transaction-date
// exchange-rate cache. Rows are keyed by (currency_pair,
// requested_date) with the same append-only contract as the year-end
// cache.
type FXRateCacheRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewFXRateCacheRepository creates a new FXRateCacheRepository with the provided database connection.
func NewFXRateCacheRepository(db *sql.DB) *FXRateCacheRepository {
	return &FXRateCacheRepository{db: db}
}

func (r *FXRateCacheRepository) WithTx(tx *sql.Tx) *FXRateCacheRepository {
	return &FXRateCacheRepository{db: r.db, tx: tx}
}

func (r *FXRateCacheRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const fxRateColumns = `id, currency_pair, requested_date, rate, actual_date, source, fetched_at`

// Get retrieves the cached rate for (pair, requestedDate).
// Returns apperrors.ErrCacheEntryNotFound when the key is not populated.
func (r *FXRateCacheRepository) Get(pair string, requestedDate time.Time) (model.HistoricalExchangeRate, error) {
	query := `
		SELECT ` + fxRateColumns + `
		FROM historical_exchange_rate
		WHERE currency_pair = ? AND requested_date = ?
	`
	rows, err := r.getQuerier().Query(query, normalizeTicker(pair), DateString(requestedDate))
	if err != nil {
		return model.HistoricalExchangeRate{}, fmt.Errorf("failed to query historical_exchange_rate table: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return model.HistoricalExchangeRate{}, fmt.Errorf("error iterating historical_exchange_rate table: %w", err)
		}
		return model.HistoricalExchangeRate{}, apperrors.ErrCacheEntryNotFound
	}
	return scanFXRate(rows)
}

// Exists reports whether the key is already populated.
func (r *FXRateCacheRepository) Exists(pair string, requestedDate time.Time) (bool, error) {
	var count int
	err := r.getQuerier().QueryRow(
		`SELECT COUNT(1) FROM historical_exchange_rate WHERE currency_pair = ? AND requested_date = ?`,
		normalizeTicker(pair), DateString(requestedDate),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check historical_exchange_rate existence: %w", err)
	}
	return count > 0, nil
}

// Add inserts a new rate row. A populated key surfaces as
// apperrors.ErrCacheEntryExists.
func (r *FXRateCacheRepository) Add(entry model.HistoricalExchangeRate) error {
	query := `
		INSERT INTO historical_exchange_rate
			(id, currency_pair, requested_date, rate, actual_date, source)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.getQuerier().Exec(query,
		entry.ID,
		normalizeTicker(entry.CurrencyPair),
		DateString(entry.RequestedDate),
		entry.Rate,
		DateString(entry.ActualDate),
		string(entry.Source),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrCacheEntryExists
		}
		return fmt.Errorf("failed to insert historical_exchange_rate row: %w", err)
	}
	return nil
}

// InsertOrGet atomically inserts the entry or returns the existing row
// when a concurrent writer populated the key first.
func (r *FXRateCacheRepository) InsertOrGet(entry model.HistoricalExchangeRate) (model.HistoricalExchangeRate, bool, error) {
	query := `
		INSERT INTO historical_exchange_rate
			(id, currency_pair, requested_date, rate, actual_date, source)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (currency_pair, requested_date) DO NOTHING
	`
	result, err := r.getQuerier().Exec(query,
		entry.ID,
		normalizeTicker(entry.CurrencyPair),
		DateString(entry.RequestedDate),
		entry.Rate,
		DateString(entry.ActualDate),
		string(entry.Source),
	)
	if err != nil {
		return model.HistoricalExchangeRate{}, false, fmt.Errorf("failed to insert historical_exchange_rate row: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return model.HistoricalExchangeRate{}, false, fmt.Errorf("failed to read insert result: %w", err)
	}

	stored, err := r.Get(entry.CurrencyPair, entry.RequestedDate)
	if err != nil {
		return model.HistoricalExchangeRate{}, false, err
	}
	return stored, affected > 0, nil
}

func scanFXRate(rows *sql.Rows) (model.HistoricalExchangeRate, error) {
	var e model.HistoricalExchangeRate
	var requestedDate, actualDate, source string
	var fetchedAt sql.NullString

	err := rows.Scan(&e.ID, &e.CurrencyPair, &requestedDate, &e.Rate, &actualDate, &source, &fetchedAt)
	if err != nil {
		return model.HistoricalExchangeRate{}, fmt.Errorf("failed to scan historical_exchange_rate results: %w", err)
	}
	e.Source = model.PriceSource(source)
	if e.RequestedDate, err = ParseTime(requestedDate); err != nil {
		return model.HistoricalExchangeRate{}, err
	}
	if e.ActualDate, err = ParseTime(actualDate); err != nil {
		return model.HistoricalExchangeRate{}, err
	}
	if fetchedAt.Valid {
		if parsed, err := ParseTime(fetchedAt.String); err == nil {
			e.FetchedAt = parsed
		}
	}
	return e, nil
}
