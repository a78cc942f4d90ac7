package main

import (
	"log/slog"

	"github.com/vmunix/embywatch/internal/catalog"
	"github.com/vmunix/embywatch/internal/config"
	"github.com/vmunix/embywatch/internal/enrich"
	"github.com/vmunix/embywatch/internal/httpx"
	"github.com/vmunix/embywatch/internal/notify"
	"github.com/vmunix/embywatch/internal/runner"
	"github.com/vmunix/embywatch/internal/snapshot"
	"github.com/vmunix/embywatch/internal/telegram"
	"github.com/vmunix/embywatch/internal/tmdb"
	"github.com/vmunix/embywatch/internal/trakt"
)

// app holds the wired components for one invocation.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *snapshot.Store
	runner *runner.Runner
	bot    *telegram.Client
}

// buildApp wires every component from config. All outbound clients
// share the retrying transport; each keeps its own request timeout.
func buildApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	store, err := snapshot.Open(cfg.State.Path, logger)
	if err != nil {
		return nil, err
	}

	httpClient := httpx.NewClient(
		cfg.HTTP.Timeout.Std(),
		httpx.WithMaxAttempts(cfg.HTTP.MaxRetries),
		httpx.WithInitialDelay(cfg.HTTP.RetryDelay.Std()),
		httpx.WithLogger(logger),
	)

	catalogClient := catalog.NewClient(cfg.Catalog.URL, cfg.Catalog.APIKey,
		catalog.WithHTTPClient(httpClient))

	var tmdbClient *tmdb.Client
	var language, fallback string
	if cfg.TMDB != nil {
		tmdbClient = tmdb.NewClient(cfg.TMDB.APIKey, tmdb.WithHTTPClient(httpClient))
		language = cfg.TMDB.Language
		fallback = cfg.TMDB.FallbackLanguage
	}

	var traktClient *trakt.Client
	if cfg.Trakt != nil {
		traktClient = trakt.New(cfg.Trakt.APIKey, trakt.WithHTTPClient(httpClient))
	}

	gateway := enrich.New(tmdbClient, traktClient, language, fallback, logger)

	bot := telegram.New(cfg.Telegram.BotToken, telegram.WithHTTPClient(httpClient))
	dispatcher := notify.New(bot, cfg.Telegram.ChatID, cfg.Telegram.ParseMode, logger)

	run := runner.New(catalogClient, gateway, dispatcher, store, runner.Config{
		Concurrency:  cfg.Poll.Concurrency,
		RecentWindow: cfg.Poll.RecentWindow.Std(),
	}, logger)

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		runner: run,
		bot:    bot,
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing snapshot store", "error", err)
	}
}
