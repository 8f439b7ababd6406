package quote

import (
	"context"
	"errors"
	"sync"

	"finance/internal/money"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownSymbol = errors.New("invalid symbol")
	ErrUnavailable   = errors.New("quote service unavailable")
)

type Quote struct {
	Symbol string
	Name   string
	Price  decimal.Decimal
}

// PriceMinor returns the quoted price in cents, rounded half to even.
func (q Quote) PriceMinor() int64 {
	return money.FromDecimal(q.Price)
}

type Provider interface {
	Lookup(ctx context.Context, symbol string) (Quote, error)
}

// StaticProvider serves quotes from a fixed table. It backs local development
// and tests when no quote URL is configured.
type StaticProvider struct {
	mu     sync.RWMutex
	quotes map[string]Quote
}

func NewStaticProvider(quotes ...Quote) *StaticProvider {
	p := &StaticProvider{quotes: make(map[string]Quote, len(quotes))}
	for _, q := range quotes {
		p.quotes[q.Symbol] = q
	}
	return p
}

func (p *StaticProvider) Set(q Quote) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quotes[q.Symbol] = q
}

func (p *StaticProvider) Lookup(ctx context.Context, symbol string) (Quote, error) {
	if err := ctx.Err(); err != nil {
		return Quote{}, ErrUnavailable
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	q, ok := p.quotes[symbol]
	if !ok {
		return Quote{}, ErrUnknownSymbol
	}
	return q, nil
}

// DevelopmentQuotes is the price table used when no upstream is configured.
func DevelopmentQuotes() []Quote {
	return []Quote{
		{Symbol: "AAPL", Name: "Apple Inc.", Price: decimal.RequireFromString("189.84")},
		{Symbol: "MSFT", Name: "Microsoft Corporation", Price: decimal.RequireFromString("415.50")},
		{Symbol: "NFLX", Name: "Netflix, Inc.", Price: decimal.RequireFromString("612.09")},
		{Symbol: "GOOGL", Name: "Alphabet Inc.", Price: decimal.RequireFromString("172.63")},
		{Symbol: "AMZN", Name: "Amazon.com, Inc.", Price: decimal.RequireFromString("181.05")},
	}
}
