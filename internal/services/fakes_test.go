package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"finance/internal/models"
	"finance/internal/quote"
	"finance/internal/store"
	"finance/internal/websocket"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// memoryBank is an in-memory stand-in for the users, transactions and
// audit_logs tables. Its WithTx serializes transactions and restores the
// previous state when fn fails.
type memoryBank struct {
	txMu   sync.Mutex
	mu     sync.Mutex
	users  map[string]models.User
	ledger []models.Transaction
	audits []string
	seq    int

	auditErr error
	createFn func(id, username string) error
}

func newMemoryBank() *memoryBank {
	return &memoryBank{users: make(map[string]models.User)}
}

type bankState struct {
	users  map[string]models.User
	ledger []models.Transaction
	audits []string
}

func (b *memoryBank) snapshot() bankState {
	b.mu.Lock()
	defer b.mu.Unlock()
	users := make(map[string]models.User, len(b.users))
	for id, user := range b.users {
		users[id] = user
	}
	return bankState{
		users:  users,
		ledger: append([]models.Transaction(nil), b.ledger...),
		audits: append([]string(nil), b.audits...),
	}
}

func (b *memoryBank) restore(state bankState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users = state.users
	b.ledger = state.ledger
	b.audits = state.audits
}

func (b *memoryBank) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	b.txMu.Lock()
	defer b.txMu.Unlock()
	state := b.snapshot()
	if err := fn(nil); err != nil {
		b.restore(state)
		return err
	}
	return nil
}

func (b *memoryBank) Create(_ context.Context, _ store.Execer, id, username, hash string, cash int64) error {
	if b.createFn != nil {
		if err := b.createFn(id, username); err != nil {
			return err
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, user := range b.users {
		if user.Username == username {
			return &pq.Error{Code: "23505", Constraint: store.UsernameConstraint}
		}
	}
	b.users[id] = models.User{ID: id, Username: username, Hash: hash, Cash: cash, CreatedAt: time.Now()}
	return nil
}

func (b *memoryBank) GetByUsername(_ context.Context, username string) (models.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, user := range b.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (b *memoryBank) GetByID(_ context.Context, userID string) (models.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	user, ok := b.users[userID]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return user, nil
}

func (b *memoryBank) GetForUpdate(ctx context.Context, _ store.Getter, userID string) (models.User, error) {
	return b.GetByID(ctx, userID)
}

func (b *memoryBank) UpdateCash(_ context.Context, _ store.Execer, userID string, cash int64) error {
	if cash < 0 {
		return errors.New("check constraint users_cash_check")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	user, ok := b.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	user.Cash = cash
	b.users[userID] = user
	return nil
}

func (b *memoryBank) UpdateHash(_ context.Context, _ store.Execer, userID, hash string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	user, ok := b.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	user.Hash = hash
	b.users[userID] = user
	return nil
}

func (b *memoryBank) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := b.GetByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (b *memoryBank) Append(_ context.Context, _ store.Execer, input store.TransactionInput) error {
	if input.Shares == 0 {
		return store.ErrZeroShares
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	b.ledger = append(b.ledger, models.Transaction{
		ID:            input.ID,
		UserID:        input.UserID,
		Symbol:        input.Symbol,
		Shares:        input.Shares,
		PricePerShare: input.PricePerShare,
		CreatedAt:     time.Unix(int64(b.seq), 0),
	})
	return nil
}

func (b *memoryBank) ListByUser(_ context.Context, userID string) ([]models.Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var rows []models.Transaction
	for i := len(b.ledger) - 1; i >= 0; i-- {
		if b.ledger[i].UserID == userID {
			rows = append(rows, b.ledger[i])
		}
	}
	return rows, nil
}

func (b *memoryBank) Holdings(_ context.Context, userID string) ([]models.Holding, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sums := make(map[string]int64)
	for _, row := range b.ledger {
		if row.UserID == userID {
			sums[row.Symbol] += row.Shares
		}
	}
	holdings := make([]models.Holding, 0, len(sums))
	for symbol, shares := range sums {
		if shares > 0 {
			holdings = append(holdings, models.Holding{Symbol: symbol, Shares: shares})
		}
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })
	return holdings, nil
}

func (b *memoryBank) HoldingForSymbol(_ context.Context, _ store.Getter, userID, symbol string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var shares int64
	for _, row := range b.ledger {
		if row.UserID == userID && row.Symbol == symbol {
			shares += row.Shares
		}
	}
	return shares, nil
}

func (b *memoryBank) Log(_ context.Context, _ store.Execer, _, action, _, _ string, _ map[string]any) error {
	if b.auditErr != nil {
		return b.auditErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.audits = append(b.audits, action)
	return nil
}

func (b *memoryBank) cash(userID string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.users[userID].Cash
}

func (b *memoryBank) ledgerLen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ledger)
}

type recordingHub struct {
	mu      sync.Mutex
	updates []websocket.PortfolioUpdate
}

func (h *recordingHub) BroadcastPortfolio(_ string, update websocket.PortfolioUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.updates = append(h.updates, update)
}

type stubProvider struct {
	lookupFn func(ctx context.Context, symbol string) (quote.Quote, error)
}

func (s stubProvider) Lookup(ctx context.Context, symbol string) (quote.Quote, error) {
	return s.lookupFn(ctx, symbol)
}

func cheapHash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(hash), err
}

func newAccountService(bank *memoryBank, startingCash int64) *AccountService {
	svc := NewAccountService(bank, bank, bank, startingCash)
	svc.hash = cheapHash
	return svc
}

// seedUser registers a user directly in the bank with the given cash.
func seedUser(bank *memoryBank, id, username string, cash int64) {
	hash, _ := cheapHash("secret")
	bank.mu.Lock()
	defer bank.mu.Unlock()
	bank.users[id] = models.User{ID: id, Username: username, Hash: hash, Cash: cash}
}
