package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/calvinwijaya/blackjack-table/internal/api"
	"github.com/calvinwijaya/blackjack-table/internal/db"
	"github.com/calvinwijaya/blackjack-table/internal/store"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

type CLI struct {
	Port     string `default:"8080" env:"PORT" help:"Server port"`
	DBDriver string `name:"db-driver" default:"sqlite3" enum:"sqlite3,postgres" env:"DB_DRIVER" help:"Database driver (sqlite3|postgres)"`
	DSN      string `name:"dsn" default:"./data/blackjack.db" env:"DATABASE_URL" help:"Database path or connection string"`
	Frontend string `default:"http://localhost:5173" env:"FRONTEND_URL" help:"Frontend URL for CORS"`
	Seats    int    `default:"3" help:"Seats at a newly created table"`
	Seed     int64  `help:"Seed for reproducible dealing (0 means random)"`
	LogLevel string `short:"l" default:"info" enum:"debug,info,warn,error" help:"Log level (debug|info|warn|error)"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjack-server"),
		kong.Description("Multi-table blackjack server"),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(run(cli))
}

func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	switch level {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}

func openStore(cli CLI, logger *log.Logger) (store.Store, func()) {
	if cli.DBDriver == db.DriverSQLite {
		// Create data directory if it doesn't exist
		if err := os.MkdirAll(filepath.Dir(cli.DSN), 0755); err != nil {
			logger.Warn("Failed to create data directory", "error", err)
		}
	}

	database, err := db.NewDatabase(cli.DBDriver, cli.DSN, logger)
	if err != nil {
		logger.Warn("Failed to initialize database, continuing without persistence", "error", err)
		return store.NewMemoryStore(), func() {}
	}

	logger.Info("Database initialized", "driver", cli.DBDriver)
	return store.NewDatabaseStore(database), func() { database.Close() }
}

func run(cli CLI) error {
	logger := newLogger(cli.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tables, closeStore := openStore(cli, logger)
	defer closeStore()

	clock := quartz.NewReal()

	// Initialize WebSocket hub
	hub := api.NewHub(clock, logger)
	go hub.Run(ctx)

	handlers := api.NewHandlers(tables, hub, clock, logger, api.Config{
		DefaultSeats: cli.Seats,
		Seed:         cli.Seed,
	})

	r := mux.NewRouter()
	handlers.RegisterRoutes(r)

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := clock.Now()
			next.ServeHTTP(w, r)
			logger.Debug("Request", "method", r.Method, "uri", r.RequestURI, "duration", clock.Since(start))
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cli.Frontend},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         ":" + cli.Port,
		Handler:      c.Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cli.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stop:
	case err := <-serverErr:
		return err
	}

	logger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
