package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/docsmith/internal/config"
	"github.com/kitbuilder587/docsmith/internal/llm"
	"github.com/kitbuilder587/docsmith/internal/llm/anthropic"
	"github.com/kitbuilder587/docsmith/internal/llm/gemini"
	llmmock "github.com/kitbuilder587/docsmith/internal/llm/mock"
	"github.com/kitbuilder587/docsmith/internal/llm/openai"
	"github.com/kitbuilder587/docsmith/internal/metrics"
	"github.com/kitbuilder587/docsmith/internal/refine"
	"github.com/kitbuilder587/docsmith/internal/repository/postgres"
	"github.com/kitbuilder587/docsmith/internal/search"
	"github.com/kitbuilder587/docsmith/internal/search/googlecse"
	"github.com/kitbuilder587/docsmith/internal/service"
	"github.com/kitbuilder587/docsmith/internal/stage"
	"github.com/kitbuilder587/docsmith/internal/telegram"
	"github.com/kitbuilder587/docsmith/internal/template"
	"github.com/kitbuilder587/docsmith/internal/validate"

	"github.com/kitbuilder587/docsmith/internal/cache/memory"
)

const vendorTimeout = 60 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("bot exited with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	db, err := postgres.New(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("database connected")

	userRepo := postgres.NewUserRepo(db)
	docRepo := postgres.NewDocumentRepo(db)
	statsRepo := postgres.NewStatsRepo(db)

	m := metrics.New()
	metricsSrv := &http.Server{Addr: cfg.Metrics.Addr, Handler: metrics.Handler()}
	go func() {
		logger.Info("metrics server listening", zap.String("addr", cfg.Metrics.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		metricsSrv.Shutdown(shutdownCtx)
	}()

	providers, err := buildProviders(cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("llm providers registered", zap.Strings("providers", providers.Names()))

	tpls, err := template.Load(cfg.Templates.Path, logger)
	if err != nil {
		return err
	}

	var searchClient search.Client
	if cfg.Search.Enabled {
		searchClient = googlecse.New(googlecse.Config{
			APIKey:   cfg.Search.APIKey,
			EngineID: cfg.Search.EngineID,
			BaseURL:  cfg.Search.BaseURL,
			Timeout:  cfg.Search.Timeout,
		}, logger)
		logger.Info("search enrichment enabled")
	}

	searchCache := memory.NewWithJanitor(ctx, 10*time.Minute)
	defer searchCache.Stop()

	params := llm.Params{
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}

	loop := func(p llm.Provider) *refine.Controller {
		return refine.NewController(refine.Deps{
			Draft:   stage.NewDraftWriter(p, params, tpls, logger),
			Critic:  stage.NewCritic(p, params, nil, logger),
			Refiner: stage.NewRefiner(p, params, logger),
			Logger:  logger,
		})
	}

	userSvc := service.NewUserService(userRepo, logger)
	historySvc := service.NewHistoryService(docRepo, statsRepo, logger)
	assistantSvc := service.NewAssistantService(service.AssistantDeps{
		Users:     userRepo,
		Documents: docRepo,
		Stats:     statsRepo,
		Providers: providers,
		Loop:      loop,
		Logger:    logger,
		Config: service.AssistantConfig{
			DefaultPreset:    cfg.DefaultPreset,
			Params:           params,
			SearchEnabled:    cfg.Search.Enabled,
			MaxSearchResults: 3,
			CacheTTL:         cfg.Cache.TTL,
		},
		Validator: validate.New(tpls, logger),
		Search:    searchClient,
		Cache:     searchCache,
		Metrics:   m,
	})

	bot, err := telegram.New(telegram.BotConfig{
		Token:             cfg.Telegram.Token,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
	}, userSvc, assistantSvc, historySvc, providers, logger, m)
	if err != nil {
		return err
	}

	return bot.Run(ctx)
}

// buildProviders регистрирует вендоров с заданными ключами. Без единого
// ключа остается mock, чтобы бот поднимался в дев-окружении.
func buildProviders(cfg *config.Config, logger *zap.Logger) (*llm.Registry, error) {
	reg := llm.NewRegistry()

	if cfg.LLM.OpenAI.APIKey != "" {
		reg.Register(openai.Name, withBudget(openai.New(openai.Config{
			APIKey:  cfg.LLM.OpenAI.APIKey,
			Model:   cfg.LLM.OpenAI.Model,
			BaseURL: cfg.LLM.OpenAI.BaseURL,
			Timeout: vendorTimeout,
		}, logger), cfg))
	}
	if cfg.LLM.Anthropic.APIKey != "" {
		reg.Register(anthropic.Name, withBudget(anthropic.New(anthropic.Config{
			APIKey:  cfg.LLM.Anthropic.APIKey,
			Model:   cfg.LLM.Anthropic.Model,
			BaseURL: cfg.LLM.Anthropic.BaseURL,
			Timeout: vendorTimeout,
		}, logger), cfg))
	}
	if cfg.LLM.Gemini.APIKey != "" {
		reg.Register(gemini.Name, withBudget(gemini.New(gemini.Config{
			APIKey:  cfg.LLM.Gemini.APIKey,
			Model:   cfg.LLM.Gemini.Model,
			BaseURL: cfg.LLM.Gemini.BaseURL,
			Timeout: vendorTimeout,
		}, logger), cfg))
	}
	if cfg.LLM.Provider == llmmock.Name || len(reg.Names()) == 0 {
		reg.Register(llmmock.Name, llmmock.New())
	}

	if err := reg.SetDefault(cfg.LLM.Provider); err != nil {
		// настроенный вендор без ключа: падаем сразу, а не на первом запросе
		logger.Error("default provider has no api key", zap.String("provider", cfg.LLM.Provider))
		return nil, err
	}
	return reg, nil
}

func withBudget(p llm.Provider, cfg *config.Config) llm.Provider {
	if cfg.LLM.RPS <= 0 {
		return p
	}
	return llm.NewRateLimited(p, cfg.LLM.RPS, cfg.LLM.Burst)
}
