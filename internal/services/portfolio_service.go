package services

import (
	"context"
	"fmt"

	"finance/internal/models"
	"finance/internal/money"
	"finance/internal/quote"
)

type PortfolioService struct {
	users        UserStore
	transactions TransactionStore
	quotes       quote.Provider
}

func NewPortfolioService(users UserStore, transactions TransactionStore, quotes quote.Provider) *PortfolioService {
	return &PortfolioService{users: users, transactions: transactions, quotes: quotes}
}

type Position struct {
	Symbol string
	Name   string
	Shares int64
	Price  int64
	Total  int64
}

type Portfolio struct {
	Username  string
	Positions []Position
	Cash      int64
	Holdings  int64
	NetWorth  int64
}

// Holdings returns the user's positive positions ordered by symbol.
func (s *PortfolioService) Holdings(ctx context.Context, userID string) ([]models.Holding, error) {
	return s.transactions.Holdings(ctx, userID)
}

// Portfolio values every holding at its live price. Any failed quote fails
// the whole valuation.
func (s *PortfolioService) Portfolio(ctx context.Context, userID string) (Portfolio, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Portfolio{}, err
	}
	holdings, err := s.transactions.Holdings(ctx, userID)
	if err != nil {
		return Portfolio{}, err
	}
	portfolio := Portfolio{
		Username:  user.Username,
		Positions: make([]Position, 0, len(holdings)),
		Cash:      user.Cash,
	}
	for _, holding := range holdings {
		q, err := s.quotes.Lookup(ctx, holding.Symbol)
		if err != nil {
			return Portfolio{}, fmt.Errorf("value %s: %w", holding.Symbol, ErrQuoteUnavailable)
		}
		price := q.PriceMinor()
		total, err := money.Mul(price, holding.Shares)
		if err != nil {
			return Portfolio{}, err
		}
		portfolio.Holdings, err = money.Add(portfolio.Holdings, total)
		if err != nil {
			return Portfolio{}, err
		}
		portfolio.Positions = append(portfolio.Positions, Position{
			Symbol: holding.Symbol,
			Name:   q.Name,
			Shares: holding.Shares,
			Price:  price,
			Total:  total,
		})
	}
	portfolio.NetWorth, err = money.Add(portfolio.Cash, portfolio.Holdings)
	if err != nil {
		return Portfolio{}, err
	}
	return portfolio, nil
}

func (s *PortfolioService) NetWorth(ctx context.Context, userID string) (int64, error) {
	portfolio, err := s.Portfolio(ctx, userID)
	if err != nil {
		return 0, err
	}
	return portfolio.NetWorth, nil
}

func (s *PortfolioService) History(ctx context.Context, userID string) ([]models.Transaction, error) {
	return s.transactions.ListByUser(ctx, userID)
}
