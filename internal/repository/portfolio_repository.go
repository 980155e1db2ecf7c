package repository

import (
	"database/sql"
	"fmt"

	"github.com/ycliang/portfolio-performance-engine/internal/apperrors"
	"github.com/ycliang/portfolio-performance-engine/internal/model"
)

// PortfolioRepository provides data access methods for the portfolio table.
type PortfolioRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

func (r *PortfolioRepository) WithTx(tx *sql.Tx) *PortfolioRepository {
	return &PortfolioRepository{db: r.db, tx: tx}
}

func (r *PortfolioRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetPortfolios retrieves portfolios matching the filter, ordered by name.
// Returns an empty slice if no portfolios are found.
func (r *PortfolioRepository) GetPortfolios(filter model.PortfolioFilter) ([]model.Portfolio, error) {
	query := `
		SELECT id, user_id, name, base_currency, home_currency, created_at
		FROM portfolio
	`
	var args []any
	if filter.UserID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, filter.UserID)
	}
	query += ` ORDER BY name, id`

	rows, err := r.getQuerier().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio table: %w", err)
	}
	defer rows.Close()

	portfolios := []model.Portfolio{}
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, err
		}
		portfolios = append(portfolios, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio table: %w", err)
	}

	return portfolios, nil
}

// GetPortfolio retrieves a single portfolio by ID.
// Returns apperrors.ErrPortfolioNotFound when no row exists.
func (r *PortfolioRepository) GetPortfolio(id string) (model.Portfolio, error) {
	query := `
		SELECT id, user_id, name, base_currency, home_currency, created_at
		FROM portfolio
		WHERE id = ?
	`
	rows, err := r.getQuerier().Query(query, id)
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to query portfolio table: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return model.Portfolio{}, fmt.Errorf("error iterating portfolio table: %w", err)
		}
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	return scanPortfolio(rows)
}

// CreatePortfolio inserts a new portfolio row.
func (r *PortfolioRepository) CreatePortfolio(p model.Portfolio) error {
	query := `
		INSERT INTO portfolio (id, user_id, name, base_currency, home_currency)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := r.getQuerier().Exec(query, p.ID, p.UserID, p.Name, p.BaseCurrency, p.HomeCurrency); err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to insert portfolio: %w", err)
	}
	return nil
}

// UpdatePortfolio updates portfolio metadata. Identity fields are not touched.
func (r *PortfolioRepository) UpdatePortfolio(p model.Portfolio) error {
	query := `
		UPDATE portfolio
		SET name = ?, base_currency = ?, home_currency = ?
		WHERE id = ?
	`
	result, err := r.getQuerier().Exec(query, p.Name, p.BaseCurrency, p.HomeCurrency, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update portfolio: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrPortfolioNotFound
	}
	return nil
}

func scanPortfolio(rows *sql.Rows) (model.Portfolio, error) {
	var p model.Portfolio
	var createdAt sql.NullString
	if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.BaseCurrency, &p.HomeCurrency, &createdAt); err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to scan portfolio table results: %w", err)
	}
	if createdAt.Valid {
		if t, err := ParseTime(createdAt.String); err == nil {
			p.CreatedAt = t
		}
	}
	return p, nil
}
