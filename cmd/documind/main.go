package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/NITESH777RAJPUT/Documind/internal/adapters/auth"
	"github.com/NITESH777RAJPUT/Documind/internal/adapters/extract"
	"github.com/NITESH777RAJPUT/Documind/internal/adapters/fetch"
	"github.com/NITESH777RAJPUT/Documind/internal/adapters/filewatcher"
	"github.com/NITESH777RAJPUT/Documind/internal/adapters/llm"
	"github.com/NITESH777RAJPUT/Documind/internal/adapters/logic"
	"github.com/NITESH777RAJPUT/Documind/internal/adapters/match"
	"github.com/NITESH777RAJPUT/Documind/internal/adapters/parser"
	memstore "github.com/NITESH777RAJPUT/Documind/internal/adapters/storage/memory"
	sqlitestore "github.com/NITESH777RAJPUT/Documind/internal/adapters/storage/sqlite"
	"github.com/NITESH777RAJPUT/Documind/internal/config"
	"github.com/NITESH777RAJPUT/Documind/internal/domain/ports"
	"github.com/NITESH777RAJPUT/Documind/internal/domain/usecases"
	httpinfra "github.com/NITESH777RAJPUT/Documind/internal/infrastructure/http"
	"github.com/NITESH777RAJPUT/Documind/internal/observability"
)

func main() {
	log := observability.Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Error("loading config failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Session store: sqlite or memory.
	var store ports.SessionStore
	switch cfg.Storage.Backend {
	case "sqlite":
		log.Info("using sqlite session store", "path", cfg.Storage.Path)
		sqlStore, err := sqlitestore.NewStore(cfg.Storage.Path)
		if err != nil {
			log.Error("opening session store failed", "error", err)
			os.Exit(1)
		}
		defer sqlStore.Close()
		store = sqlStore
	default:
		log.Info("using in-memory session store")
		store = memstore.NewStore()
	}

	llmClient := llm.NewOpenRouterClient(
		cfg.OpenRouter.BaseURL,
		cfg.OpenRouter.APIKey,
		cfg.OpenRouter.Model,
		llm.WithTimeout(cfg.OpenRouter.Timeout),
		llm.WithMaxTokens(cfg.OpenRouter.MaxTokens),
	)

	resolver := usecases.NewResolver(
		fetch.NewHTTPFetcher(cfg.FetchTimeout),
		parser.NewPDFParser(cfg.PDFServiceURL),
		store,
	)

	svc := usecases.NewQueryService(
		resolver,
		usecases.NewOrchestrator(llmClient),
		extract.NewExtractor(0),
		match.NewMatcher(0, 0, cfg.TopK),
		logic.NewEvaluator(),
		store,
	)

	// Optional auto-ingest of documents dropped into the watch directory.
	if cfg.WatchDir != "" {
		watcher, err := filewatcher.NewWatcher(svc, cfg.WatchOwner, nil)
		if err != nil {
			log.Error("creating watcher failed", "error", err)
			os.Exit(1)
		}
		defer watcher.Stop()
		if err := watcher.Watch(ctx, cfg.WatchDir); err != nil {
			log.Error("starting watcher failed", "error", err)
			os.Exit(1)
		}
	}

	server := httpinfra.NewServer(svc, auth.NewStaticVerifier(cfg.AuthTokens), cfg.SamplePath, ":"+cfg.Port)
	if err := server.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
