package handlers

import (
	"context"

	"finance/internal/auth"
	"finance/internal/models"
	"finance/internal/quote"
	"finance/internal/services"
)

type SessionStore interface {
	Create(userID string) auth.Session
	Get(id string) (auth.Session, bool)
	Delete(id string)
	AddFlash(id, message string)
	PopFlashes(id string) []string
}

type AccountService interface {
	Register(ctx context.Context, req services.RegisterRequest) (string, error)
	Authenticate(ctx context.Context, req services.LoginRequest) (string, error)
	Logout(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, req services.ChangePasswordRequest) error
	UsernameAvailable(ctx context.Context, username string) (bool, error)
}

type TradeService interface {
	Lookup(ctx context.Context, symbol string) (quote.Quote, error)
	Buy(ctx context.Context, req services.TradeRequest) (services.TradeResult, error)
	Sell(ctx context.Context, req services.TradeRequest) (services.TradeResult, error)
	AddFunds(ctx context.Context, userID, amount string) (int64, int64, error)
}

type PortfolioService interface {
	Portfolio(ctx context.Context, userID string) (services.Portfolio, error)
	Holdings(ctx context.Context, userID string) ([]models.Holding, error)
	History(ctx context.Context, userID string) ([]models.Transaction, error)
}
