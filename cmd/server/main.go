package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	appscan "github.com/repoguard/api/internal/app/scan"
	"github.com/repoguard/api/internal/config"
	"github.com/repoguard/api/internal/infra/git"
	"github.com/repoguard/api/internal/infra/http"
	"github.com/repoguard/api/internal/infra/http/handler"
	"github.com/repoguard/api/internal/infra/http/routes"
	"github.com/repoguard/api/internal/infra/llm"
	"github.com/repoguard/api/internal/infra/websocket"
	"github.com/repoguard/api/pkg/logger"
	"github.com/repoguard/api/pkg/validator"
)

var showRoutes = flag.Bool("routes", false, "Print all registered routes and exit")

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log := logger.NewDefault()
		log.Error("failed to load configuration", "error", err)
		return 1
	}

	log := initLogger(cfg)
	log.Info("starting application", "app", cfg.App.Name, "env", cfg.App.Env)

	// ==========================================================================
	// Analysis backend
	// ==========================================================================
	provider, err := llm.NewProvider(ctx, cfg.LLM)
	if err != nil {
		log.Error("failed to initialize analysis provider", "error", err)
		return 1
	}
	log.Info("analysis provider initialized",
		"provider", provider.Name(),
		"model", provider.Model(),
	)

	// ==========================================================================
	// Scan service
	// ==========================================================================
	scanService := appscan.NewService(git.NewGoGitCloner(), provider, cfg.Scan, log)
	v := validator.New()

	// ==========================================================================
	// HTTP Server
	// ==========================================================================
	server := http.NewServer(cfg, log)
	routes.Register(server.Router(), routes.Handlers{
		Health:    handler.NewHealthHandler(handler.WithAnalyzer(provider)),
		Scan:      handler.NewScanHandler(scanService, v, log),
		WebSocket: websocket.NewHandler(scanService, v, log),
	})

	if *showRoutes {
		http.PrintRoutes(os.Stdout, http.CollectRoutes(server.Router()))
		return 0
	}

	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", "error", err)
		}
	}()
	log.Info("application started", "http_addr", cfg.Server.Addr())

	// ==========================================================================
	// Graceful Shutdown
	// ==========================================================================
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
		return 1
	}

	log.Info("application stopped")
	return 0
}

func initLogger(cfg *config.Config) *logger.Logger {
	var log *logger.Logger
	if cfg.IsProduction() {
		log = logger.New(logger.Config{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
		})
	} else {
		log = logger.NewDevelopment()
	}
	log.SetDefault()
	return log
}
