// main is the entry point of the student registry.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Open the roster (memory or in-memory SQLite)
//  4. Wire the decoder, feedback notifier, workflow service and templates
//  5. Register all HTTP routes and start the server in a goroutine
//  6. Block until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, then exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/student-registry --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/student-registry
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aanand-mishra/student-registry/internal/config"
	"github.com/aanand-mishra/student-registry/internal/feedback"
	"github.com/aanand-mishra/student-registry/internal/http/server"
	"github.com/aanand-mishra/student-registry/internal/photo"
	"github.com/aanand-mishra/student-registry/internal/registration"
	"github.com/aanand-mishra/student-registry/internal/storage"
	"github.com/aanand-mishra/student-registry/internal/storage/memory"
	"github.com/aanand-mishra/student-registry/internal/storage/sqlite"
	"github.com/aanand-mishra/student-registry/internal/view"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	// Handlers log through the default logger, so install ours there too.
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting student-registry",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
	)

	// ── 3. Open the Roster ────────────────────────────────────────────────
	// Both drivers keep everything in memory: the roster is empty on every
	// start and gone when the process exits.
	roster, closer, err := openRoster(cfg)
	if err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closer.Close()

	log.Info("storage initialised", slog.String("driver", cfg.Storage.Driver))

	// ── 4. Wire the Workflow ──────────────────────────────────────────────
	notifier := feedback.New(feedback.Durations{
		feedback.Success: cfg.Feedback.Success,
		feedback.Info:    cfg.Feedback.Info,
		feedback.Error:   cfg.Feedback.Error,
	})
	decoder := photo.NewDecoder(cfg.Photo.MaxBytes)
	svc := registration.NewService(roster, decoder, notifier, log)

	renderer, err := view.NewRenderer()
	if err != nil {
		log.Error("failed to load templates", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// ── 5. Routes and Server ──────────────────────────────────────────────
	router := server.NewRouter(server.Deps{
		Roster:        roster,
		Service:       svc,
		Notifier:      notifier,
		Renderer:      renderer,
		MaxPhotoBytes: cfg.Photo.MaxBytes,
		Log:           log,
	})

	srv := &http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: router,

		// Uploads carry a photo; reads get more room than a JSON body.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		// ListenAndServe returns http.ErrServerClosed after Shutdown; that
		// is the normal way out.
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server encountered an error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 6. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openRoster builds the backend named by cfg.Storage.Driver.
func openRoster(cfg *config.Config) (storage.Roster, io.Closer, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := sqlite.New(cfg)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	case config.DriverMemory:
		return memory.New(), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default: // "dev" and anything unrecognised
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	}
}
