package app

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"

	"medsumma/internal/asr"
	"medsumma/internal/cache"
	"medsumma/internal/config"
	"medsumma/internal/core"
	"medsumma/internal/llm"
	"medsumma/internal/logger"
	"medsumma/internal/queue"
	"medsumma/internal/store"
)

// Deps bundles runtime dependencies for the gateway service.
type Deps struct {
	Config config.Config
	Log    *slog.Logger
	Store  store.Store
	Queue  queue.Queue
	Cache  cache.Cache
	LLM    llm.Client
	Core   *core.Service
}

// TranscriberDeps bundles runtime dependencies for the transcriber worker.
type TranscriberDeps struct {
	Config      config.Config
	Log         *slog.Logger
	Store       store.Store
	Queue       queue.Queue
	Transcriber asr.Transcriber
}

// Build loads env, config, and the gateway's shared components. The
// collaborator handles (LLM, store, queue, cache) are constructed here once
// and passed in explicitly; nothing is lazily initialized on first use.
func Build() (Deps, error) {
	cfg, log, err := loadBase()
	if err != nil {
		return Deps{}, err
	}

	st, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	llmClient, err := buildLLM(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	answerCache := buildCache(cfg, log)

	return Deps{
		Config: cfg,
		Log:    log,
		Store:  st,
		Queue:  q,
		Cache:  answerCache,
		LLM:    llmClient,
		Core: &core.Service{
			LLM:          llmClient,
			Store:        st,
			Cache:        answerCache,
			Log:          log,
			PollInterval: cfg.PollInterval,
			AnswerTTL:    cfg.AnswerCacheTTL,
		},
	}, nil
}

// BuildTranscriber loads env, config, and the transcriber worker's components.
func BuildTranscriber() (TranscriberDeps, error) {
	cfg, log, err := loadBase()
	if err != nil {
		return TranscriberDeps{}, err
	}

	st, err := buildStore(cfg, log)
	if err != nil {
		return TranscriberDeps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		return TranscriberDeps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	transcriber, err := buildTranscriber(cfg, log)
	if err != nil {
		return TranscriberDeps{}, fmt.Errorf("failed to initialize transcriber: %w", err)
	}

	return TranscriberDeps{
		Config:      cfg,
		Log:         log,
		Store:       st,
		Queue:       q,
		Transcriber: transcriber,
	}, nil
}

func loadBase() (config.Config, *slog.Logger, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file loaded", "err", err)
	}
	cfg := config.Load()
	return cfg, logger.New(cfg.LogLevel), nil
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreProvider {
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres store")
		return db, nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid option: postgres)", cfg.StoreProvider)
	}
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	switch cfg.QueueProvider {
	case "nats":
		if cfg.QueueURL == "" {
			return nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue")
		return queue.NewNATS(log, nc), nil
	default:
		return nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid option: nats)", cfg.QueueProvider)
	}
}

func buildLLM(cfg config.Config, log *slog.Logger) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		client, err := llm.NewOpenAIClient(cfg.OpenAIKey, openai.ChatModel(cfg.LLMModel))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		log.Info("using OpenAI LLM client", "model", cfg.LLMModel)
		return client, nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid option: openai)", cfg.LLMProvider)
	}
}

func buildTranscriber(cfg config.Config, log *slog.Logger) (asr.Transcriber, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		transcriber, err := asr.NewOpenAITranscriber(cfg.OpenAIKey, openai.AudioModel(cfg.ASRModel))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI transcriber: %w", err)
		}
		log.Info("using OpenAI transcriber", "model", cfg.ASRModel)
		return transcriber, nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid option: openai)", cfg.LLMProvider)
	}
}

// buildCache prefers Redis and degrades to the no-op cache when Redis is
// not configured or unreachable: answer caching is an optimization, not a
// requirement.
func buildCache(cfg config.Config, log *slog.Logger) cache.Cache {
	if cfg.RedisAddr == "" {
		log.Info("no REDIS_ADDR set, answer caching disabled")
		return cache.NewNoOpCache()
	}
	c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Warn("redis unavailable, answer caching disabled", "err", err)
		return cache.NewNoOpCache()
	}
	log.Info("using Redis answer cache", "addr", cfg.RedisAddr)
	return c
}
