package service

import (
	"github.com/google/uuid"

	"github.com/ycliang/portfolio-performance-engine/internal/apperrors"
	"github.com/ycliang/portfolio-performance-engine/internal/model"
	"github.com/ycliang/portfolio-performance-engine/internal/repository"
)

// PortfolioService handles portfolio-level business logic.
type PortfolioService struct {
	portfolioRepo *repository.PortfolioRepository
}

// NewPortfolioService creates a new PortfolioService with the provided repository.
func NewPortfolioService(portfolioRepo *repository.PortfolioRepository) *PortfolioService {
	return &PortfolioService{portfolioRepo: portfolioRepo}
}

// GetPortfolios retrieves all portfolios owned by the user.
func (s *PortfolioService) GetPortfolios(userID string) ([]model.Portfolio, error) {
	return s.portfolioRepo.GetPortfolios(model.PortfolioFilter{UserID: userID})
}

// GetPortfolio retrieves one portfolio, verifying ownership. A
// portfolio owned by someone else is reported as not found.
func (s *PortfolioService) GetPortfolio(userID, portfolioID string) (model.Portfolio, error) {
	portfolio, err := s.portfolioRepo.GetPortfolio(portfolioID)
	if err != nil {
		return model.Portfolio{}, err
	}
	if portfolio.UserID != userID {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	return portfolio, nil
}

// CreatePortfolio validates and stores a new portfolio.
func (s *PortfolioService) CreatePortfolio(userID, name, baseCurrency, homeCurrency string) (model.Portfolio, error) {
	if name == "" {
		return model.Portfolio{}, apperrors.ErrMissingRequiredField
	}
	if baseCurrency == "" || homeCurrency == "" {
		return model.Portfolio{}, apperrors.ErrInvalidCurrency
	}
	portfolio := model.Portfolio{
		ID:           uuid.New().String(),
		UserID:       userID,
		Name:         name,
		BaseCurrency: normalizeSymbol(baseCurrency),
		HomeCurrency: normalizeSymbol(homeCurrency),
	}
	if err := s.portfolioRepo.CreatePortfolio(portfolio); err != nil {
		return model.Portfolio{}, err
	}
	return portfolio, nil
}

// UpdatePortfolio updates portfolio metadata after an ownership check.
func (s *PortfolioService) UpdatePortfolio(userID string, portfolio model.Portfolio) error {
	existing, err := s.GetPortfolio(userID, portfolio.ID)
	if err != nil {
		return err
	}
	existing.Name = portfolio.Name
	existing.BaseCurrency = normalizeSymbol(portfolio.BaseCurrency)
	existing.HomeCurrency = normalizeSymbol(portfolio.HomeCurrency)
	return s.portfolioRepo.UpdatePortfolio(existing)
}
