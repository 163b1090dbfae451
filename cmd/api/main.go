package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voznikov/banknote/internal/api/handlers"
	"github.com/voznikov/banknote/internal/api/middleware"
	"github.com/voznikov/banknote/internal/app"
	"github.com/voznikov/banknote/internal/config"
	"github.com/voznikov/banknote/internal/debt"
	"github.com/voznikov/banknote/internal/logger"
)

func main() {
	var (
		configPath = flag.String("config", os.Getenv("BANKNOTE_CONFIG"), "Path to config file (or set BANKNOTE_CONFIG)")
		listenAddr = flag.String("listen", "", "HTTP listen address (overrides config)")
	)
	flag.Parse()

	log := logger.New()

	cfg, err := config.Read(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read configuration")
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}

	if cfg.Gemini.APIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY not set - parse requests will fail until it is provided")
	}

	// Assemble the core: store, ledger, inbox, debts, pipeline.
	a := app.New(cfg, log)

	// Daily debt reminder sweep.
	reminder, err := debt.NewReminder(a.Debts, cfg.ReminderSchedule, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule debt reminder")
	}
	reminder.Start()
	defer reminder.Stop()

	// Initialize handlers
	ledgerHandler := handlers.NewLedgerHandler(a.Ledger, log)
	inboxHandler := handlers.NewInboxHandler(a.Inbox, log)
	parseHandler := handlers.NewParseHandler(a.Pipeline, log)
	debtsHandler := handlers.NewDebtsHandler(a.Debts, log)

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/accounts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ledgerHandler.ListAccounts(w, r)
		case http.MethodPost:
			ledgerHandler.CreateAccount(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/categories", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ledgerHandler.ListCategories(w, r)
		case http.MethodPost:
			ledgerHandler.CreateCategory(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			ledgerHandler.ListTransactions(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/inbox", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			inboxHandler.List(w, r)
		case http.MethodPost:
			inboxHandler.Add(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/parse", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			parseHandler.Status(w, r)
		case http.MethodPost:
			parseHandler.Start(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/parse/commit", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			parseHandler.Commit(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/parse/abort", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			parseHandler.Abort(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/debts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			debtsHandler.List(w, r)
		case http.MethodPost:
			debtsHandler.Create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/debts/toggle", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			debtsHandler.TogglePaid(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/debts/delete", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			debtsHandler.Delete(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Str("data_dir", cfg.DataDir).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Abort any in-flight parse; the message stays in the inbox for retry.
	a.Pipeline.Abort()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
