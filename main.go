package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/yourchoicemarket/llm-shop/internal/api"
	"github.com/yourchoicemarket/llm-shop/internal/bot"
	"github.com/yourchoicemarket/llm-shop/internal/catalog"
	"github.com/yourchoicemarket/llm-shop/internal/config"
	"github.com/yourchoicemarket/llm-shop/internal/images"
	"github.com/yourchoicemarket/llm-shop/internal/llm"
	"github.com/yourchoicemarket/llm-shop/internal/printful"
	"github.com/yourchoicemarket/llm-shop/internal/shop"
	"github.com/yourchoicemarket/llm-shop/internal/storage"
	"golang.org/x/sync/errgroup"
)

const logFileName = "llm-shop.log"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	config.LoadEnvFile()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	closeLog := setupLogging(cfg)
	defer closeLog()

	if missing := cfg.CheckRequired(); len(missing) > 0 {
		log.Fatal().Msgf("missing required config: %s", strings.Join(missing, ", "))
	}

	// Create context that cancels on SIGINT or SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := storage.NewSQLiteStore(cfg.DBPath, cfg.DataKey)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize store")
	}
	defer store.Close()
	log.Info().Str("dbPath", cfg.DBPath).Msg("store initialized")

	loader := catalog.Loader{CatalogPath: cfg.CatalogFile, OverridesPath: cfg.OverridesFile}
	idx, err := loader.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load catalog")
	}
	categories := catalog.NewStore(idx)
	log.Info().Int("categories", idx.Len()).Msg("category index loaded")

	files, err := images.NewStore(cfg.ImageDir, cfg.PublicBaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize image store")
	}

	gemini, err := llm.NewGemini(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize gemini")
	}
	log.Info().Msg("gemini initialized")

	service := shop.NewService(shop.Deps{
		Analyzer: llm.NewCachedAnalyzer(gemini, store),
		Images:   gemini,
		Files:    files,
		Printful: printful.NewClient(printful.ClientOpts{
			BaseURL: cfg.PrintfulBaseURL,
			Token:   cfg.PrintfulAPIKey,
			StoreID: cfg.PrintfulStoreID,
		}),
		Catalog: categories,
		Store:   store,
	}, shop.Options{
		MinMatchScore: cfg.MinMatchScore,
		PriceMarkup:   cfg.PriceMarkup,
		TaxRate:       cfg.TaxRate,
		ShippingCost:  cfg.ShippingCost,
	})

	server := api.New(api.Options{
		Addr:           cfg.ListenAddr,
		AllowedOrigins: cfg.AllowedOrigins,
		ImageDir:       files.Root(),
		MinMatchScore:  cfg.MinMatchScore,
		Production:     cfg.IsProduction(),
	}, service, categories, store)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(server.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Stop(shutdownCtx)
	})

	g.Go(func() error {
		return catalog.NewWatcher(categories, loader).Run(ctx)
	})

	if cfg.BotToken != "" {
		g.Go(func() error {
			return runBot(ctx, cfg, service, categories, store, files)
		})
	} else {
		log.Info().Msg("BOT_TOKEN not set, telegram bot disabled")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("shutdown with error")
	} else {
		log.Info().Msg("shutdown complete")
	}
}

// setupLogging writes to stderr, and to a log file too unless running under
// systemd (JOURNAL_STREAM is set), where journald keeps the logs.
func setupLogging(cfg *config.Config) (closeLog func()) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if _, underSystemd := os.LookupEnv("JOURNAL_STREAM"); underSystemd {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})
		return func() {}
	}

	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		log.Warn().Err(err).Msg("failed to open log file")
		return func() {}
	}

	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr}
	fileWriter := zerolog.ConsoleWriter{Out: logFile, NoColor: true}
	log.Logger = log.Output(io.MultiWriter(consoleWriter, fileWriter))
	log.Info().Str("logFile", logFileName).Msg("logging to file")
	return func() { logFile.Close() }
}

func runBot(ctx context.Context, cfg *config.Config, service *shop.Service, categories *catalog.Store, store *storage.SQLiteStore, files *images.Store) error {
	tg, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return err
	}
	tg.Debug = false
	log.Info().Str("username", tg.Self.UserName).Msg("authorized on account")

	bot.RegisterCommands(tg)

	b := bot.NewBot(tg, service, categories, store, files, bot.Options{
		AdminID:       cfg.AdminTelegramID,
		AllowedIDs:    cfg.AllowedTelegramIDs,
		MinMatchScore: cfg.MinMatchScore,
	})

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := tg.GetUpdatesChan(updateConfig)
	defer tg.StopReceivingUpdates()

	return b.Run(ctx, updates)
}
