package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the goose migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE portfolio (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			name VARCHAR(100) NOT NULL,
			base_currency VARCHAR(3) NOT NULL,
			home_currency VARCHAR(3) NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX idx_portfolio_user ON portfolio(user_id);

		CREATE TABLE stock_transaction (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			portfolio_id VARCHAR(36) NOT NULL,
			date DATE NOT NULL,
			ticker VARCHAR(20) NOT NULL,
			type VARCHAR(10) NOT NULL,
			shares FLOAT NOT NULL,
			price_per_share FLOAT NOT NULL,
			fees FLOAT NOT NULL DEFAULT 0,
			market VARCHAR(2) NOT NULL,
			exchange_rate FLOAT,
			externally_funded BOOLEAN NOT NULL DEFAULT FALSE,
			deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(portfolio_id) REFERENCES portfolio(id) ON DELETE CASCADE
		);

		CREATE INDEX idx_stock_transaction_portfolio_date ON stock_transaction(portfolio_id, date);
		CREATE INDEX idx_stock_transaction_ticker ON stock_transaction(ticker, market);

		CREATE TABLE stock_split (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			symbol VARCHAR(20) NOT NULL,
			market VARCHAR(2) NOT NULL,
			effective_date DATE NOT NULL,
			ratio FLOAT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT unique_stock_split UNIQUE (symbol, market, effective_date)
		);

		CREATE TABLE historical_year_end_data (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			data_type VARCHAR(15) NOT NULL,
			ticker VARCHAR(20) NOT NULL,
			year INTEGER NOT NULL,
			value FLOAT NOT NULL,
			currency VARCHAR(3) NOT NULL,
			actual_date DATE NOT NULL,
			source VARCHAR(10) NOT NULL,
			fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT unique_year_end_data UNIQUE (data_type, ticker, year)
		);

		CREATE TABLE historical_exchange_rate (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			currency_pair VARCHAR(7) NOT NULL,
			requested_date DATE NOT NULL,
			rate FLOAT NOT NULL,
			actual_date DATE NOT NULL,
			source VARCHAR(10) NOT NULL,
			fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT unique_exchange_rate UNIQUE (currency_pair, requested_date)
		);

		CREATE TABLE transaction_portfolio_snapshot (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			portfolio_id VARCHAR(36) NOT NULL,
			transaction_id VARCHAR(36) NOT NULL,
			date DATE NOT NULL,
			value_before FLOAT NOT NULL,
			value_after FLOAT NOT NULL,
			calculated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(portfolio_id) REFERENCES portfolio(id) ON DELETE CASCADE,
			FOREIGN KEY(transaction_id) REFERENCES stock_transaction(id) ON DELETE CASCADE,
			CONSTRAINT unique_snapshot_transaction UNIQUE (transaction_id)
		);

		CREATE INDEX idx_snapshot_portfolio_date ON transaction_portfolio_snapshot(portfolio_id, date);

		CREATE TABLE provider_config (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			provider VARCHAR(10) NOT NULL UNIQUE,
			api_token VARCHAR(500) NOT NULL,
			enabled BOOLEAN NOT NULL DEFAULT TRUE,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`

	_, err := db.Exec(schema)
	return err
}
