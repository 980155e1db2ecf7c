package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPortfolioNotFound indicates that a portfolio with the given ID does
	// not exist or is not owned by the calling user.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrTransactionNotFound indicates that a stock transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrSplitNotFound indicates that a stock split with the given ID does not exist.
	ErrSplitNotFound = errors.New("stock split not found")

	// ErrSnapshotNotFound indicates no snapshot exists for the given transaction.
	ErrSnapshotNotFound = errors.New("portfolio snapshot not found")

	// ErrCacheEntryNotFound indicates no cached value for the requested key.
	ErrCacheEntryNotFound = errors.New("historical data cache entry not found")

	// ErrProviderConfigNotFound indicates a provider has no stored configuration.
	ErrProviderConfigNotFound = errors.New("provider configuration not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrCacheEntryExists indicates a manual save targeted a key that is
	// already populated. Cache rows are immutable once written.
	ErrCacheEntryExists = errors.New("historical data cache entry already exists")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrInvalidSplitRatio indicates a split ratio that is not strictly positive.
	ErrInvalidSplitRatio = errors.New("split ratio must be greater than zero")

	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidRate indicates a non-positive exchange rate or price value.
	ErrInvalidRate = errors.New("value must be greater than zero")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrNegativeAmount indicates that an amount field has an invalid negative value.
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// Validation errors for required fields
	ErrInvalidPortfolioID   = errors.New("portfolio ID is required")
	ErrInvalidTicker        = errors.New("ticker is required")
	ErrInvalidTransactionID = errors.New("transaction ID is required")
	ErrInvalidCurrency      = errors.New("currency parameter is required")
	ErrInvalidDate          = errors.New("date parameter is required")
	ErrInvalidYear          = errors.New("year parameter is required")
)

// Operation failure errors represent system-level failures when retrieving or
// processing data. These indicate that an operation failed, but not due to
// missing entities or validation issues.
var (
	ErrFailedToRetrievePortfolios   = errors.New("failed to retrieve portfolios")
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveSplits       = errors.New("failed to retrieve stock splits")
	ErrFailedToRetrieveSnapshots    = errors.New("failed to retrieve snapshots")
	ErrFailedToCalculateReturns     = errors.New("failed to calculate returns")
	ErrFailedToSaveCacheEntry       = errors.New("failed to save cache entry")
)

// Data integrity errors represent inconsistencies or corruption in the data.
var (
	// ErrDataInconsistency indicates that the data is in an inconsistent state.
	ErrDataInconsistency = errors.New("data inconsistency detected")

	// ErrMissingRequiredField indicates that a required field is missing or empty.
	ErrMissingRequiredField = errors.New("missing required field")
)
