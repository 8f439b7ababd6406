package store

import (
	"context"
	"errors"

	"finance/internal/models"
)

var ErrZeroShares = errors.New("transaction shares must not be zero")

// TransactionStore is the append-only trade ledger. Holdings are always
// derived from it and never stored.
type TransactionStore struct {
	db DB
}

type TransactionInput struct {
	ID            string
	UserID        string
	Symbol        string
	Shares        int64
	PricePerShare int64
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

func (s *TransactionStore) Append(ctx context.Context, tx Execer, input TransactionInput) error {
	if input.Shares == 0 {
		return ErrZeroShares
	}
	query := `
		INSERT INTO transactions (id, user_id, symbol, shares, price_per_share)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := tx.ExecContext(ctx, query, input.ID, input.UserID, input.Symbol, input.Shares, input.PricePerShare)
	return err
}

func (s *TransactionStore) ListByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	var rows []models.Transaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, symbol, shares, price_per_share, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Holdings returns the symbols with a positive net share count, by symbol.
func (s *TransactionStore) Holdings(ctx context.Context, userID string) ([]models.Holding, error) {
	var rows []models.Holding
	err := s.db.SelectContext(ctx, &rows, `
		SELECT symbol, SUM(shares) AS shares
		FROM transactions
		WHERE user_id = $1
		GROUP BY symbol
		HAVING SUM(shares) > 0
		ORDER BY symbol
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *TransactionStore) HoldingForSymbol(ctx context.Context, tx Getter, userID, symbol string) (int64, error) {
	var shares int64
	err := tx.GetContext(ctx, &shares, `
		SELECT COALESCE(SUM(shares), 0)
		FROM transactions
		WHERE user_id = $1 AND symbol = $2
	`, userID, symbol)
	return shares, err
}
