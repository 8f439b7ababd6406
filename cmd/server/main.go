package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finance/internal/auth"
	"finance/internal/config"
	"finance/internal/db"
	"finance/internal/handlers"
	"finance/internal/quote"
	"finance/internal/services"
	"finance/internal/store"
	"finance/internal/websocket"

	log "github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	configureLogging(cfg)

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	users := store.NewUserStore(database)
	transactions := store.NewTransactionStore(database)
	audit := store.NewAuditStore()
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()
	quotes := newQuoteProvider(cfg)

	sessions := auth.NewSessionStore(cfg.SessionTTL)
	accounts := services.NewAccountService(txRunner, users, audit, cfg.StartingCash)
	trades := services.NewTradeService(txRunner, users, transactions, audit, quotes, hub)
	portfolio := services.NewPortfolioService(users, transactions, quotes)

	handler, err := handlers.New(cfg, sessions, accounts, trades, portfolio, hub)
	if err != nil {
		log.Fatalf("failed to load templates: %v", err)
	}
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go sweepSessions(ctx, sessions, time.Minute)

	go func() {
		log.Infof("finance listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

func configureLogging(cfg config.Config) {
	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("invalid LOG_LEVEL %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func newQuoteProvider(cfg config.Config) quote.Provider {
	if cfg.Quote.URL == "" {
		log.Info("QUOTE_URL not set, serving static development quotes")
		return quote.NewStaticProvider(quote.DevelopmentQuotes()...)
	}
	return quote.NewHTTPProvider(quote.HTTPConfig{
		URL:        cfg.Quote.URL,
		Token:      cfg.Quote.Token,
		PricePath:  cfg.Quote.PricePath,
		NamePath:   cfg.Quote.NamePath,
		SymbolPath: cfg.Quote.SymbolPath,
		Timeout:    cfg.Quote.Timeout,
	}, nil)
}

func sweepSessions(ctx context.Context, sessions *auth.SessionStore, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := sessions.Sweep(); removed > 0 {
				log.Debugf("swept %d expired sessions", removed)
			}
		}
	}
}
