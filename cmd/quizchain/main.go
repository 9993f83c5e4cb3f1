// CLAUDE:SUMMARY Entry point for the quizchain service — chi router, background chain runner, optional SQLite event log and MCP stdio.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/quizchain/chain"
	"github.com/hazyhaar/quizchain/dbopen"
	"github.com/hazyhaar/quizchain/ingest"
	"github.com/hazyhaar/quizchain/observability"
	"github.com/hazyhaar/quizchain/render"
	"github.com/hazyhaar/quizchain/solve"
	"github.com/hazyhaar/quizchain/submit"
)

func main() {
	secret := os.Getenv("SECRET")
	if secret == "" {
		slog.Error("SECRET is required")
		os.Exit(1)
	}
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		slog.Error("GEMINI_API_KEY is required")
		os.Exit(1)
	}

	var fc fileConfig
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		loaded, err := loadFileConfig(path)
		if err != nil {
			slog.Error("config file", "error", err)
			os.Exit(1)
		}
		fc = *loaded
	}

	port := envOr("PORT", fc.Port, "8080")
	model := envOr("GEMINI_MODEL", fc.Model, "")
	eventsPath := envOr("EVENTS_DB", fc.EventsDB, "")
	remoteBrowser := envOr("REMOTE_BROWSER", fc.RemoteBrowser, "")
	mcpTransport := os.Getenv("MCP_TRANSPORT")
	logLevel := os.Getenv("LOG_LEVEL")

	// Logging.
	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Collaborators.
	renderer := render.New(render.Config{RemoteBrowser: remoteBrowser, Logger: logger})
	defer renderer.Close()

	solver, err := solve.New(ctx, solve.Config{APIKey: apiKey, Model: model, Logger: logger})
	if err != nil {
		slog.Error("solver", "error", err)
		os.Exit(1)
	}

	fetcher := ingest.New(ingest.Config{Logger: logger})
	submitter := submit.New(submit.Config{Logger: logger})

	// Optional event log.
	var events chain.EventSink
	var middlewares []func(http.Handler) http.Handler
	if eventsPath != "" {
		db, err := dbopen.Open(eventsPath, dbopen.WithMkdirAll(), dbopen.WithSchema(observability.Schema))
		if err != nil {
			slog.Error("events db", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := observability.Cleanup(ctx, db, observability.RetentionConfig{
			HTTPLogsDays:    envInt("HTTP_LOGS_RETENTION_DAYS", 14),
			ChainEventsDays: envInt("CHAIN_EVENTS_RETENTION_DAYS", 30),
			HeartbeatsDays:  envInt("HEARTBEATS_RETENTION_DAYS", 7),
		}); err != nil {
			slog.Warn("events db cleanup", "error", err)
		}

		events = observability.NewEventLogger(db)
		middlewares = append(middlewares, observability.RequestLogger(db))

		hb := observability.NewHeartbeatWriter(db, "quizchain", 15*time.Second)
		hb.Start(ctx)
		defer hb.Stop()
	}

	runnerCfg := chain.Config{
		MaxDepth:    envInt("MAX_DEPTH", fc.MaxDepth),
		RetryBudget: envInt("RETRY_BUDGET", fc.RetryBudget),
		Budget:      envDuration("CHAIN_BUDGET", fc.Budget),
		Logger:      logger,
	}
	runner := chain.NewRunner(runnerCfg, renderer, fetcher, solver, submitter, events)

	// Optional MCP stdio transport.
	if mcpTransport == "stdio" {
		mcpSrv := mcp.NewServer(&mcp.Implementation{
			Name:    "quizchain",
			Version: "1.0.0",
		}, nil)
		runner.RegisterMCP(mcpSrv, ctx, chain.Identity{
			Email:  os.Getenv("QUIZ_EMAIL"),
			Secret: secret,
		})
		go func() {
			slog.Info("MCP stdio starting")
			if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
				slog.Error("MCP stdio", "error", err)
			}
		}()
	}

	s := &server{starter: runner, secret: secret, base: ctx, logger: logger}
	router := newRouter(s, middlewares...)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

// --- Helpers ---

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("invalid integer env, using default", "key", key, "value", v)
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		slog.Warn("invalid duration env, using default", "key", key, "value", v)
	}
	return def
}
