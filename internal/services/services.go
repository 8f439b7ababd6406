package services

import (
	"context"
	"errors"

	"finance/internal/models"
	"finance/internal/quote"
	"finance/internal/store"
	"finance/internal/websocket"
)

var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username and/or password")
	ErrInsufficientFunds  = errors.New("can't afford")
	ErrInsufficientShares = errors.New("too many shares")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrUnknownSymbol      = quote.ErrUnknownSymbol
	ErrQuoteUnavailable   = quote.ErrUnavailable
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, username, hash string, cash int64) error
	GetByUsername(ctx context.Context, username string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
	GetForUpdate(ctx context.Context, tx store.Getter, userID string) (models.User, error)
	UpdateCash(ctx context.Context, tx store.Execer, userID string, cash int64) error
	UpdateHash(ctx context.Context, tx store.Execer, userID, hash string) error
	UsernameExists(ctx context.Context, username string) (bool, error)
}

type TransactionStore interface {
	Append(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	ListByUser(ctx context.Context, userID string) ([]models.Transaction, error)
	Holdings(ctx context.Context, userID string) ([]models.Holding, error)
	HoldingForSymbol(ctx context.Context, tx store.Getter, userID, symbol string) (int64, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID string, data map[string]any) error
}

type PortfolioHub interface {
	BroadcastPortfolio(userID string, update websocket.PortfolioUpdate)
}
