package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

type HTTPConfig struct {
	// URL may contain {symbol} and {token} placeholders.
	URL        string
	Token      string
	PricePath  string
	NamePath   string
	SymbolPath string
	Timeout    time.Duration
}

type HTTPProvider struct {
	cfg    HTTPConfig
	client *http.Client
}

func NewHTTPProvider(cfg HTTPConfig, client *http.Client) *HTTPProvider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.PricePath == "" {
		cfg.PricePath = "$.latestPrice"
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPProvider{cfg: cfg, client: client}
}

func (p *HTTPProvider) Lookup(ctx context.Context, symbol string) (Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	endpoint := strings.NewReplacer(
		"{symbol}", url.PathEscape(symbol),
		"{token}", url.QueryEscape(p.cfg.Token),
	).Replace(p.cfg.URL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		log.WithError(err).WithField("symbol", symbol).Warn("quote request failed")
		return Quote{}, ErrUnavailable
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Quote{}, ErrUnknownSymbol
	case resp.StatusCode != http.StatusOK:
		log.WithFields(log.Fields{"symbol": symbol, "status": resp.StatusCode}).Warn("quote upstream error")
		return Quote{}, ErrUnavailable
	}

	decoder := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes))
	decoder.UseNumber()
	var body any
	if err := decoder.Decode(&body); err != nil {
		// Some upstreams answer 200 with a plain-text error for unknown tickers.
		return Quote{}, ErrUnknownSymbol
	}
	return p.extract(body, symbol)
}

func (p *HTTPProvider) extract(body any, symbol string) (Quote, error) {
	rawPrice, err := lookupPath(p.cfg.PricePath, body)
	if err != nil || rawPrice == nil {
		return Quote{}, ErrUnknownSymbol
	}
	price, err := toDecimal(rawPrice)
	if err != nil || !price.IsPositive() {
		return Quote{}, ErrUnknownSymbol
	}

	q := Quote{Symbol: symbol, Name: symbol, Price: price}
	if p.cfg.NamePath != "" {
		if name, err := lookupPath(p.cfg.NamePath, body); err == nil {
			if s, ok := name.(string); ok && s != "" {
				q.Name = s
			}
		}
	}
	if p.cfg.SymbolPath != "" {
		if sym, err := lookupPath(p.cfg.SymbolPath, body); err == nil {
			if s, ok := sym.(string); ok && s != "" {
				q.Symbol = strings.ToUpper(s)
			}
		}
	}
	return q, nil
}

// lookupPath evaluates a JSONPath expression. Wildcard paths yield a list;
// the first element wins.
func lookupPath(path string, body any) (any, error) {
	value, err := jsonpath.Get(path, body)
	if err != nil {
		return nil, err
	}
	if list, ok := value.([]any); ok {
		if len(list) == 0 {
			return nil, nil
		}
		return list[0], nil
	}
	return value, nil
}

func toDecimal(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	case float64:
		return decimal.NewFromFloat(v), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("unexpected price type %T", value)
	}
}
