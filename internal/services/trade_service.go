package services

import (
	"context"
	"errors"

	"finance/internal/db"
	"finance/internal/money"
	"finance/internal/quote"
	"finance/internal/store"
	"finance/internal/validator"
	"finance/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TradeService struct {
	txRunner     db.TxRunner
	users        UserStore
	transactions TransactionStore
	audit        AuditStore
	quotes       quote.Provider
	hub          PortfolioHub
}

func NewTradeService(txRunner db.TxRunner, users UserStore, transactions TransactionStore, audit AuditStore, quotes quote.Provider, hub PortfolioHub) *TradeService {
	return &TradeService{
		txRunner:     txRunner,
		users:        users,
		transactions: transactions,
		audit:        audit,
		quotes:       quotes,
		hub:          hub,
	}
}

type TradeRequest struct {
	UserID string
	Symbol string
	Shares string
}

type TradeResult struct {
	TransactionID string
	Symbol        string
	Name          string
	Shares        int64
	PricePerShare int64
	Total         int64
	Cash          int64
}

// Lookup normalizes symbol and fetches its current quote.
func (s *TradeService) Lookup(ctx context.Context, symbol string) (quote.Quote, error) {
	normalized, err := normalizeSymbol(symbol)
	if err != nil {
		return quote.Quote{}, err
	}
	return s.quotes.Lookup(ctx, normalized)
}

func (s *TradeService) Buy(ctx context.Context, req TradeRequest) (TradeResult, error) {
	q, shares, err := s.prepare(ctx, req)
	if err != nil {
		return TradeResult{}, err
	}
	price := q.PriceMinor()
	total, err := money.Mul(price, shares)
	if err != nil {
		return TradeResult{}, ErrInsufficientFunds
	}
	result := TradeResult{
		TransactionID: uuid.NewString(),
		Symbol:        q.Symbol,
		Name:          q.Name,
		Shares:        shares,
		PricePerShare: price,
		Total:         total,
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		user, err := s.users.GetForUpdate(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		if total > user.Cash {
			return ErrInsufficientFunds
		}
		result.Cash = user.Cash - total
		if err := s.users.UpdateCash(ctx, tx, req.UserID, result.Cash); err != nil {
			return err
		}
		return s.record(ctx, tx, req.UserID, store.AuditBuy, result, shares)
	})
	if err != nil {
		return TradeResult{}, err
	}
	s.publish(req.UserID, "buy", result.Symbol, shares, result.Cash)
	return result, nil
}

func (s *TradeService) Sell(ctx context.Context, req TradeRequest) (TradeResult, error) {
	q, shares, err := s.prepare(ctx, req)
	if err != nil {
		return TradeResult{}, err
	}
	price := q.PriceMinor()
	total, err := money.Mul(price, shares)
	if err != nil {
		// Holdings are bought with cash, so they can never be worth this much.
		return TradeResult{}, ErrInsufficientShares
	}
	result := TradeResult{
		TransactionID: uuid.NewString(),
		Symbol:        q.Symbol,
		Name:          q.Name,
		Shares:        shares,
		PricePerShare: price,
		Total:         total,
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		user, err := s.users.GetForUpdate(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		held, err := s.transactions.HoldingForSymbol(ctx, tx, req.UserID, q.Symbol)
		if err != nil {
			return err
		}
		if shares > held {
			return ErrInsufficientShares
		}
		cash, err := money.Add(user.Cash, total)
		if err != nil {
			return err
		}
		result.Cash = cash
		if err := s.users.UpdateCash(ctx, tx, req.UserID, cash); err != nil {
			return err
		}
		return s.record(ctx, tx, req.UserID, store.AuditSell, result, -shares)
	})
	if err != nil {
		return TradeResult{}, err
	}
	s.publish(req.UserID, "sell", result.Symbol, -shares, result.Cash)
	return result, nil
}

// AddFunds credits a positive dollar amount such as "250" or "99.95" and
// returns the new cash balance.
func (s *TradeService) AddFunds(ctx context.Context, userID, amount string) (int64, int64, error) {
	if err := validator.Required(amount); err != nil {
		return 0, 0, err
	}
	minor, err := money.ParseMinor(amount)
	if err != nil || minor <= 0 {
		return 0, 0, ErrInvalidAmount
	}
	var cash int64
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		user, err := s.users.GetForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		cash, err = money.Add(user.Cash, minor)
		if err != nil {
			if errors.Is(err, money.ErrOverflow) {
				return ErrInvalidAmount
			}
			return err
		}
		if err := s.users.UpdateCash(ctx, tx, userID, cash); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, userID, store.AuditAddFunds, "user", userID, map[string]any{
			"amount": money.FormatMinor(minor),
			"cash":   money.FormatMinor(cash),
		})
	})
	if err != nil {
		return 0, 0, err
	}
	s.publish(userID, "deposit", "", 0, cash)
	return minor, cash, nil
}

// prepare validates the request and fetches the quote. It runs before any
// transaction so no row lock is held during the network call.
func (s *TradeService) prepare(ctx context.Context, req TradeRequest) (quote.Quote, int64, error) {
	symbol, err := normalizeSymbol(req.Symbol)
	if err != nil {
		return quote.Quote{}, 0, err
	}
	q, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		return quote.Quote{}, 0, err
	}
	if q.PriceMinor() <= 0 {
		return quote.Quote{}, 0, ErrUnknownSymbol
	}
	shares, err := validator.ParseShares(req.Shares)
	if err != nil {
		return quote.Quote{}, 0, err
	}
	return q, shares, nil
}

func (s *TradeService) record(ctx context.Context, tx *sqlx.Tx, userID, action string, result TradeResult, signedShares int64) error {
	if err := s.transactions.Append(ctx, tx, store.TransactionInput{
		ID:            result.TransactionID,
		UserID:        userID,
		Symbol:        result.Symbol,
		Shares:        signedShares,
		PricePerShare: result.PricePerShare,
	}); err != nil {
		return err
	}
	return s.audit.Log(ctx, tx, userID, action, "transaction", result.TransactionID, map[string]any{
		"symbol": result.Symbol,
		"shares": signedShares,
		"price":  money.FormatMinor(result.PricePerShare),
		"total":  money.FormatMinor(result.Total),
	})
}

func (s *TradeService) publish(userID, event, symbol string, shares, cash int64) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastPortfolio(userID, websocket.PortfolioUpdate{
		Event:       event,
		Symbol:      symbol,
		Shares:      shares,
		Cash:        money.FormatMinor(cash),
		CashDisplay: money.USD(cash),
	})
}

// normalizeSymbol reports a malformed ticker the same way as one the quote
// source does not know.
func normalizeSymbol(raw string) (string, error) {
	symbol, err := validator.NormalizeSymbol(raw)
	if errors.Is(err, validator.ErrInvalidSymbol) {
		return "", ErrUnknownSymbol
	}
	return symbol, err
}
