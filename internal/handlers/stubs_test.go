package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"finance/internal/auth"
	"finance/internal/config"
	"finance/internal/models"
	"finance/internal/quote"
	"finance/internal/services"
	"finance/internal/websocket"
)

type stubAccounts struct {
	registerFn       func(ctx context.Context, req services.RegisterRequest) (string, error)
	authenticateFn   func(ctx context.Context, req services.LoginRequest) (string, error)
	logoutFn         func(ctx context.Context, userID string) error
	changePasswordFn func(ctx context.Context, req services.ChangePasswordRequest) error
	availableFn      func(ctx context.Context, username string) (bool, error)
}

func (s stubAccounts) Register(ctx context.Context, req services.RegisterRequest) (string, error) {
	if s.registerFn == nil {
		return "user-1", nil
	}
	return s.registerFn(ctx, req)
}

func (s stubAccounts) Authenticate(ctx context.Context, req services.LoginRequest) (string, error) {
	if s.authenticateFn == nil {
		return "user-1", nil
	}
	return s.authenticateFn(ctx, req)
}

func (s stubAccounts) Logout(ctx context.Context, userID string) error {
	if s.logoutFn == nil {
		return nil
	}
	return s.logoutFn(ctx, userID)
}

func (s stubAccounts) ChangePassword(ctx context.Context, req services.ChangePasswordRequest) error {
	if s.changePasswordFn == nil {
		return nil
	}
	return s.changePasswordFn(ctx, req)
}

func (s stubAccounts) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	if s.availableFn == nil {
		return true, nil
	}
	return s.availableFn(ctx, username)
}

type stubTrades struct {
	lookupFn   func(ctx context.Context, symbol string) (quote.Quote, error)
	buyFn      func(ctx context.Context, req services.TradeRequest) (services.TradeResult, error)
	sellFn     func(ctx context.Context, req services.TradeRequest) (services.TradeResult, error)
	addFundsFn func(ctx context.Context, userID, amount string) (int64, int64, error)
}

func (s stubTrades) Lookup(ctx context.Context, symbol string) (quote.Quote, error) {
	if s.lookupFn == nil {
		return quote.Quote{}, nil
	}
	return s.lookupFn(ctx, symbol)
}

func (s stubTrades) Buy(ctx context.Context, req services.TradeRequest) (services.TradeResult, error) {
	if s.buyFn == nil {
		return services.TradeResult{}, nil
	}
	return s.buyFn(ctx, req)
}

func (s stubTrades) Sell(ctx context.Context, req services.TradeRequest) (services.TradeResult, error) {
	if s.sellFn == nil {
		return services.TradeResult{}, nil
	}
	return s.sellFn(ctx, req)
}

func (s stubTrades) AddFunds(ctx context.Context, userID, amount string) (int64, int64, error) {
	if s.addFundsFn == nil {
		return 0, 0, nil
	}
	return s.addFundsFn(ctx, userID, amount)
}

type stubPortfolio struct {
	portfolioFn func(ctx context.Context, userID string) (services.Portfolio, error)
	holdingsFn  func(ctx context.Context, userID string) ([]models.Holding, error)
	historyFn   func(ctx context.Context, userID string) ([]models.Transaction, error)
}

func (s stubPortfolio) Portfolio(ctx context.Context, userID string) (services.Portfolio, error) {
	if s.portfolioFn == nil {
		return services.Portfolio{}, nil
	}
	return s.portfolioFn(ctx, userID)
}

func (s stubPortfolio) Holdings(ctx context.Context, userID string) ([]models.Holding, error) {
	if s.holdingsFn == nil {
		return nil, nil
	}
	return s.holdingsFn(ctx, userID)
}

func (s stubPortfolio) History(ctx context.Context, userID string) ([]models.Transaction, error) {
	if s.historyFn == nil {
		return nil, nil
	}
	return s.historyFn(ctx, userID)
}

type testServer struct {
	handler  http.Handler
	sessions *auth.SessionStore
}

func newTestServer(t *testing.T, accounts AccountService, trades TradeService, portfolio PortfolioService) testServer {
	t.Helper()
	cfg := config.Config{
		AppEnv:         "test",
		SessionSecret:  "secret",
		SessionTTL:     time.Hour,
		AllowedOrigins: "*",
	}
	sessions := auth.NewSessionStore(time.Hour)
	h, err := New(cfg, sessions, accounts, trades, portfolio, websocket.NewHub())
	if err != nil {
		t.Fatalf("failed to build handler: %v", err)
	}
	return testServer{handler: h.Routes(), sessions: sessions}
}

// login creates a session for userID and returns its cookie.
func (s testServer) login(t *testing.T, userID string) *http.Cookie {
	t.Helper()
	session := s.sessions.Create(userID)
	token, err := auth.GenerateToken("secret", session.ID, userID, time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return &http.Cookie{Name: auth.CookieName, Value: token}
}

func (s testServer) do(method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func sessionCookieFrom(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == auth.CookieName && cookie.Value != "" {
			return cookie
		}
	}
	return nil
}
