// Package sutraquery provides the SutraQuery server implementation.
package sutraquery

import (
	"context"
	"fmt"
	"time"

	"github.com/kart-io/logger"
	"github.com/kart-io/version"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ISHANT57/Gita-Chatbot/internal/sutraquery/biz"
	"github.com/ISHANT57/Gita-Chatbot/internal/sutraquery/handler"
	"github.com/ISHANT57/Gita-Chatbot/internal/sutraquery/metrics"
	"github.com/ISHANT57/Gita-Chatbot/internal/sutraquery/router"
	"github.com/ISHANT57/Gita-Chatbot/internal/sutraquery/store"
	"github.com/ISHANT57/Gita-Chatbot/pkg/infra/pool"
	"github.com/ISHANT57/Gita-Chatbot/pkg/infra/server"
	"github.com/ISHANT57/Gita-Chatbot/pkg/llm"
	"github.com/ISHANT57/Gita-Chatbot/pkg/llm/hashembed"
	"github.com/ISHANT57/Gita-Chatbot/pkg/llm/mistral"
	"github.com/ISHANT57/Gita-Chatbot/pkg/llm/resilience"

	// 导入 LLM 供应商以自动注册
	_ "github.com/ISHANT57/Gita-Chatbot/pkg/llm/openrouter"

	cacheopts "github.com/ISHANT57/Gita-Chatbot/pkg/options/cache"
	llmopts "github.com/ISHANT57/Gita-Chatbot/pkg/options/llm"
	logopts "github.com/ISHANT57/Gita-Chatbot/pkg/options/logger"
	middlewareopts "github.com/ISHANT57/Gita-Chatbot/pkg/options/middleware"
	qdrantopts "github.com/ISHANT57/Gita-Chatbot/pkg/options/qdrant"
	ragopts "github.com/ISHANT57/Gita-Chatbot/pkg/options/rag"
	httpopts "github.com/ISHANT57/Gita-Chatbot/pkg/options/server/http"
)

// Name is the name of the application.
const Name = "sutraquery"

// Config contains application-related configurations.
type Config struct {
	HTTPOptions      *httpopts.Options
	LogOptions       *logopts.Options
	QdrantOptions    *qdrantopts.Options
	EmbeddingOptions *llmopts.ProviderOptions
	ChatOptions      *llmopts.ProviderOptions
	RAGOptions       *ragopts.Options
	CacheOptions     *cacheopts.Options
	RecoveryOptions  *middlewareopts.RecoveryOptions
	RequestIDOptions *middlewareopts.RequestIDOptions
	LoggerOptions    *middlewareopts.LoggerOptions
	CORSOptions      *middlewareopts.CORSOptions
	TimeoutOptions   *middlewareopts.TimeoutOptions
	HealthOptions    *middlewareopts.HealthOptions
	MetricsOptions   *middlewareopts.MetricsOptions
	PprofOptions     *middlewareopts.PprofOptions
	VersionOptions   *middlewareopts.VersionOptions
	ShutdownTimeout  time.Duration
}

// Server represents the SutraQuery server.
type Server struct {
	srv     *server.Manager
	closers []func()
}

// NewServer initializes and returns a new Server instance.
func (cfg *Config) NewServer(ctx context.Context) (*Server, error) {
	printBanner(cfg)

	// 1. 初始化日志
	cfg.LogOptions.AddInitialField("service.name", Name)
	cfg.LogOptions.AddInitialField("service.version", version.Get().GitVersion)
	if err := cfg.LogOptions.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting SutraQuery service...")

	// 2. 初始化 Biz 层及其依赖
	queryService, closers, err := cfg.NewService(ctx)
	if err != nil {
		return nil, err
	}

	// 3. 初始化 Handler 层
	queryHandler := handler.NewHandler(queryService)
	logger.Info("Handler layer initialized")

	// 4. 初始化服务器
	serverManager := server.NewManager(
		server.WithHTTPOptions(cfg.HTTPOptions),
		server.WithMiddleware(cfg.GetMiddlewareOptions()),
		server.WithShutdownTimeout(cfg.ShutdownTimeout),
	)

	// 5. 注册路由
	if err := router.Register(serverManager, queryHandler); err != nil {
		return nil, fmt.Errorf("failed to register routes: %w", err)
	}

	logger.Info("SutraQuery service is ready")
	return &Server{
		srv:     serverManager,
		closers: closers,
	}, nil
}

// Run starts the server and listens for termination signals.
func (s *Server) Run(_ context.Context) error {
	defer runClosers(s.closers)
	return s.srv.Run()
}

// NewService assembles the query service and its dependencies.
// 返回的 closers 按注册顺序的逆序执行。
func (cfg *Config) NewService(ctx context.Context) (biz.Service, []func(), error) {
	// 初始化全局协程池（索引构建使用）
	if err := pool.InitGlobal(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize worker pools: %w", err)
	}

	var closers []func()

	// 初始化向量存储，Qdrant 不可达时降级为内存存储
	vectorStore, err := buildVectorStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, func() { _ = vectorStore.Close(context.Background()) })

	// 初始化诗节目录（SQLite）
	catalog, err := store.NewVerseCatalog(cfg.RAGOptions.CatalogPath)
	if err != nil {
		runClosers(closers)
		return nil, nil, fmt.Errorf("failed to open verse catalog: %w", err)
	}
	closers = append(closers, func() { _ = catalog.Close() })
	logger.Infow("Verse catalog initialized", "path", cfg.RAGOptions.CatalogPath)

	// 初始化 Redis 客户端（查询与 Embedding 缓存）
	redisClient, queryCache := buildCache(cfg)
	if redisClient != nil {
		closers = append(closers, func() { _ = redisClient.Close() })
	}

	// 初始化 LLM 供应商，远端不可用时走回退链
	embedProvider, err := buildEmbeddingProvider(cfg)
	if err != nil {
		runClosers(closers)
		return nil, nil, err
	}
	if redisClient != nil {
		embedProvider = llm.NewCachedEmbeddingProvider(embedProvider, redisClient, &llm.EmbeddingCacheConfig{
			Enabled:   true,
			TTL:       cfg.CacheOptions.EmbeddingTTL,
			KeyPrefix: cfg.CacheOptions.KeyPrefix + "emb:",
		})
	}

	chatProvider, err := buildChatProvider(cfg)
	if err != nil {
		runClosers(closers)
		return nil, nil, err
	}

	serviceConfig := &biz.ServiceConfig{
		IndexerConfig: &biz.IndexerConfig{
			ChunkSize:    cfg.RAGOptions.ChunkSize,
			ChunkOverlap: cfg.RAGOptions.ChunkOverlap,
			Collection:   cfg.RAGOptions.Collection,
			EmbeddingDim: cfg.RAGOptions.EmbeddingDim,
			DataDir:      cfg.RAGOptions.DataDir,
		},
		RetrieverConfig: &biz.RetrieverConfig{
			TopK:                cfg.RAGOptions.TopK,
			SearchLimit:         cfg.RAGOptions.SearchLimit,
			SimilarityThreshold: float32(cfg.RAGOptions.SimilarityThreshold),
			Collection:          cfg.RAGOptions.Collection,
		},
		GeneratorConfig: &biz.GeneratorConfig{
			SystemPrompt: cfg.RAGOptions.SystemPrompt,
		},
		QueryCacheConfig: &biz.QueryCacheConfig{
			Enabled:   cfg.CacheOptions.Enabled,
			TTL:       cfg.CacheOptions.TTL,
			KeyPrefix: cfg.CacheOptions.KeyPrefix,
		},
	}
	queryService := biz.NewQueryService(vectorStore, catalog, embedProvider, chatProvider, queryCache, serviceConfig)
	logger.Infow("Query service initialized",
		"collection", cfg.RAGOptions.Collection,
		"top_k", cfg.RAGOptions.TopK,
		"similarity_threshold", cfg.RAGOptions.SimilarityThreshold,
		"cache.enabled", cfg.CacheOptions.Enabled,
	)

	return queryService, closers, nil
}

// NewIndexer assembles only the indexing pipeline, without chat or cache
// dependencies. sutra-loader 使用该入口。
func (cfg *Config) NewIndexer(ctx context.Context) (*biz.Indexer, []func(), error) {
	if err := pool.InitGlobal(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize worker pools: %w", err)
	}

	var closers []func()

	vectorStore, err := buildVectorStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, func() { _ = vectorStore.Close(context.Background()) })

	catalog, err := store.NewVerseCatalog(cfg.RAGOptions.CatalogPath)
	if err != nil {
		runClosers(closers)
		return nil, nil, fmt.Errorf("failed to open verse catalog: %w", err)
	}
	closers = append(closers, func() { _ = catalog.Close() })

	embedProvider, err := buildEmbeddingProvider(cfg)
	if err != nil {
		runClosers(closers)
		return nil, nil, err
	}

	indexer := biz.NewIndexer(vectorStore, catalog, embedProvider, &biz.IndexerConfig{
		ChunkSize:    cfg.RAGOptions.ChunkSize,
		ChunkOverlap: cfg.RAGOptions.ChunkOverlap,
		Collection:   cfg.RAGOptions.Collection,
		EmbeddingDim: cfg.RAGOptions.EmbeddingDim,
		DataDir:      cfg.RAGOptions.DataDir,
	})
	return indexer, closers, nil
}

func runClosers(closers []func()) {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}

// buildVectorStore 连接 Qdrant，失败时降级为基于文件快照的内存存储。
func buildVectorStore(ctx context.Context, cfg *Config) (store.VectorStore, error) {
	qdrantStore, err := store.NewQdrantStore(ctx, cfg.QdrantOptions)
	if err == nil {
		logger.Infow("Qdrant vector store initialized",
			"host", cfg.QdrantOptions.Host,
			"port", cfg.QdrantOptions.Port,
		)
		return qdrantStore, nil
	}
	logger.Warnw("failed to connect to qdrant, falling back to in-memory vector store",
		"error", err.Error(),
		"index_path", cfg.RAGOptions.IndexPath,
	)

	memStore, err := store.NewMemoryStore(cfg.RAGOptions.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory vector store: %w", err)
	}
	return memStore, nil
}

// buildCache 建立 Redis 连接。连接失败时缓存自动降级关闭。
func buildCache(cfg *Config) (*goredis.Client, *biz.QueryCache) {
	if !cfg.CacheOptions.Enabled {
		logger.Info("Cache is disabled")
		return nil, nil
	}
	redisOpts := cfg.CacheOptions.Redis
	if redisOpts == nil {
		logger.Warn("Cache is enabled but no Redis configuration provided in CacheOptions")
		return nil, nil
	}

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:         fmt.Sprintf("%s:%d", redisOpts.Host, redisOpts.Port),
		Password:     redisOpts.Password,
		DB:           redisOpts.Database,
		MaxRetries:   redisOpts.MaxRetries,
		PoolSize:     redisOpts.PoolSize,
		MinIdleConns: redisOpts.MinIdleConns,
	})

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warnw("failed to connect to redis, cache will be disabled", "error", err.Error())
		_ = redisClient.Close()
		return nil, nil
	}

	queryCache := biz.NewQueryCache(redisClient, &biz.QueryCacheConfig{
		Enabled:   true,
		TTL:       cfg.CacheOptions.TTL,
		KeyPrefix: cfg.CacheOptions.KeyPrefix,
	})
	logger.Infow("Redis cache initialized",
		"host", redisOpts.Host,
		"port", redisOpts.Port,
		"ttl", cfg.CacheOptions.TTL,
	)
	return redisClient, queryCache
}

// buildEmbeddingProvider 构建 Embedding 供应商。
// 远端供应商可用时挂接哈希回退链，不可用时直接使用确定性哈希向量。
func buildEmbeddingProvider(cfg *Config) (llm.EmbeddingProvider, error) {
	hashProvider, err := llm.NewEmbeddingProvider(hashembed.ProviderName, map[string]any{
		"dimension": cfg.RAGOptions.EmbeddingDim,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize hash embedding provider: %w", err)
	}

	if cfg.EmbeddingOptions.Provider == hashembed.ProviderName {
		logger.Infow("Embedding provider initialized", "provider", hashembed.ProviderName)
		return hashProvider, nil
	}

	primary, err := llm.NewEmbeddingProvider(cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.ToConfigMap())
	if err != nil {
		logger.Warnw("embedding provider unavailable, using deterministic hash embeddings",
			"provider", cfg.EmbeddingOptions.Provider,
			"error", err.Error(),
		)
		return hashProvider, nil
	}
	logger.Infow("Embedding provider initialized",
		"provider", cfg.EmbeddingOptions.Provider,
		"model", cfg.EmbeddingOptions.Model,
	)

	qm := metrics.GetQueryMetrics()
	resilient := resilience.NewResilientEmbeddingProvider(primary, nil, nil)
	resilient.CircuitBreaker().OnOpen = qm.RecordCircuitBreakerOpen

	chain, err := resilience.NewFallbackEmbeddingProvider(resilient, hashProvider)
	if err != nil {
		return nil, err
	}
	chain.OnFallback = func(from, to string) {
		qm.RecordLLMFallback()
	}
	return chain, nil
}

// buildChatProvider 构建 Chat 供应商，可用时挂接 Mistral 回退链。
// 首选供应商初始化失败时降级为仅使用回退供应商。
func buildChatProvider(cfg *Config) (llm.ChatProvider, error) {
	qm := metrics.GetQueryMetrics()
	wrap := func(p llm.ChatProvider) llm.ChatProvider {
		resilient := resilience.NewResilientChatProvider(p, nil, nil)
		resilient.CircuitBreaker().OnOpen = qm.RecordCircuitBreakerOpen
		return resilient
	}

	primary, primaryErr := llm.NewChatProvider(cfg.ChatOptions.Provider, cfg.ChatOptions.ToConfigMap())
	if primaryErr == nil {
		logger.Infow("Chat provider initialized",
			"provider", cfg.ChatOptions.Provider,
			"model", cfg.ChatOptions.Model,
		)
		primary = wrap(primary)
		if cfg.ChatOptions.Provider == mistral.ProviderName {
			return primary, nil
		}
	}

	// Mistral 回退复用 Embedding 侧的 API key
	fallback, fallbackErr := llm.NewChatProvider(mistral.ProviderName, map[string]any{
		"api_key":     cfg.EmbeddingOptions.APIKey,
		"timeout":     cfg.ChatOptions.Timeout,
		"max_retries": cfg.ChatOptions.MaxRetries,
		"temperature": cfg.ChatOptions.Temperature,
		"max_tokens":  cfg.ChatOptions.MaxTokens,
	})

	switch {
	case primaryErr == nil && fallbackErr == nil:
		chain, err := resilience.NewFallbackChatProvider(primary, fallback)
		if err != nil {
			return nil, err
		}
		chain.OnFallback = func(from, to string) {
			qm.RecordLLMFallback()
		}
		return chain, nil
	case primaryErr == nil:
		logger.Warnw("mistral fallback chat provider unavailable", "error", fallbackErr.Error())
		return primary, nil
	case fallbackErr == nil:
		logger.Warnw("chat provider unavailable, falling back to mistral",
			"provider", cfg.ChatOptions.Provider,
			"error", primaryErr.Error(),
		)
		return fallback, nil
	default:
		return nil, fmt.Errorf("failed to initialize chat provider: %w", primaryErr)
	}
}

// GetMiddlewareOptions 从各个配置构建中间件选项。
func (cfg *Config) GetMiddlewareOptions() *middlewareopts.Options {
	opts := middlewareopts.NewOptions()

	if cfg.RecoveryOptions != nil {
		opts.SetConfig(middlewareopts.MiddlewareRecovery, cfg.RecoveryOptions)
	}
	if cfg.RequestIDOptions != nil {
		opts.SetConfig(middlewareopts.MiddlewareRequestID, cfg.RequestIDOptions)
	}
	if cfg.LoggerOptions != nil {
		opts.SetConfig(middlewareopts.MiddlewareLogger, cfg.LoggerOptions)
	}
	if cfg.CORSOptions != nil {
		opts.SetConfig(middlewareopts.MiddlewareCORS, cfg.CORSOptions)
	}
	if cfg.TimeoutOptions != nil {
		opts.SetConfig(middlewareopts.MiddlewareTimeout, cfg.TimeoutOptions)
	}
	if cfg.HealthOptions != nil {
		opts.SetConfig(middlewareopts.MiddlewareHealth, cfg.HealthOptions)
	}
	if cfg.MetricsOptions != nil {
		opts.SetConfig(middlewareopts.MiddlewareMetrics, cfg.MetricsOptions)
	}
	if cfg.PprofOptions != nil {
		opts.SetConfig(middlewareopts.MiddlewarePprof, cfg.PprofOptions)
	}
	if cfg.VersionOptions != nil {
		opts.SetConfig(middlewareopts.MiddlewareVersion, cfg.VersionOptions)
	}

	return opts
}

func printBanner(cfg *Config) {
	fmt.Printf("Starting %s...\n", Name)
	fmt.Printf("  Embedding: %s (%s)\n", cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.Model)
	fmt.Printf("  Chat: %s (%s)\n", cfg.ChatOptions.Provider, cfg.ChatOptions.Model)

	mw := cfg.GetMiddlewareOptions()
	if mw != nil {
		fmt.Printf("  Enabled Middlewares: %v\n", mw.GetEnabledMiddlewares())
	}
}
