package handlers

import (
	"net/http"
	"strings"

	"finance/internal/config"
	"finance/internal/middleware"
	"finance/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	cfg       config.Config
	sessions  SessionStore
	accounts  AccountService
	trades    TradeService
	portfolio PortfolioService
	hub       *websocket.Hub
	views     views
}

func New(cfg config.Config, sessions SessionStore, accounts AccountService, trades TradeService, portfolio PortfolioService, hub *websocket.Hub) (*Handler, error) {
	parsed, err := loadViews()
	if err != nil {
		return nil, err
	}
	return &Handler{
		cfg:       cfg,
		sessions:  sessions,
		accounts:  accounts,
		trades:    trades,
		portfolio: portfolio,
		hub:       hub,
		views:     parsed,
	}, nil
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestLogger(log.StandardLogger()))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.NoCache)
	router.Use(middleware.LoadSession(h.sessions, h.cfg.SessionSecret))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.apology(w, r, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.apology(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.Get("/login", h.LoginForm)
	router.Post("/login", h.Login)
	router.Get("/logout", h.Logout)
	router.Get("/register", h.RegisterForm)
	router.Post("/register", h.Register)

	router.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: strings.Split(h.cfg.AllowedOrigins, ","),
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		}))
		r.Get("/check", h.Check)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireLogin)
		r.Get("/", h.Index)
		r.Get("/quote", h.QuoteForm)
		r.Post("/quote", h.Quote)
		r.Get("/buy", h.BuyForm)
		r.Post("/buy", h.Buy)
		r.Get("/sell", h.SellForm)
		r.Post("/sell", h.Sell)
		r.Get("/history", h.History)
		r.Get("/add-funds", h.AddFundsForm)
		r.Post("/add-funds", h.AddFunds)
		r.Get("/change_password", h.ChangePasswordForm)
		r.Post("/change_password", h.ChangePassword)
		r.Get("/ws/portfolio", h.WSPortfolio)
	})
	return router
}
