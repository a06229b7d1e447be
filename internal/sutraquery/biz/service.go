package biz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kart-io/logger"

	"github.com/ISHANT57/Gita-Chatbot/internal/model"
	"github.com/ISHANT57/Gita-Chatbot/internal/sutraquery/metrics"
	"github.com/ISHANT57/Gita-Chatbot/internal/sutraquery/store"
	"github.com/ISHANT57/Gita-Chatbot/pkg/llm"
)

// ErrVerseNotFound 诗节不存在。
var ErrVerseNotFound = store.ErrVerseNotFound

// Service 定义经文问答服务接口。
type Service interface {
	// Query 执行问答。sourceFilter 非空时只在指定语料中检索。
	Query(ctx context.Context, question, sourceFilter string) (*model.QueryResult, error)
	// SearchByVerse 按章节号精确查询诗节。
	SearchByVerse(ctx context.Context, source string, chapter, verse int) (*model.Verse, error)
	// Initialize 构建或重建索引。
	Initialize(ctx context.Context, force bool) (*model.LoadReport, error)
	// GetStats 获取知识库统计信息。
	GetStats(ctx context.Context) (map[string]any, error)
}

// QueryService 组合 TopicGate、Indexer、Retriever 和 Generator
// 提供完整的经文问答服务。
type QueryService struct {
	gate          *TopicGate
	indexer       *Indexer
	retriever     *Retriever
	generator     *Generator
	cache         *QueryCache
	catalog       *store.VerseCatalog
	store         store.VectorStore
	embedProvider llm.EmbeddingProvider
	chatProvider  llm.ChatProvider
	collection    string
	metrics       *metrics.QueryMetrics
}

// ServiceConfig 服务配置。
type ServiceConfig struct {
	IndexerConfig    *IndexerConfig
	RetrieverConfig  *RetrieverConfig
	GeneratorConfig  *GeneratorConfig
	QueryCacheConfig *QueryCacheConfig
}

// NewQueryService 创建问答服务实例。
func NewQueryService(
	vectorStore store.VectorStore,
	catalog *store.VerseCatalog,
	embedProvider llm.EmbeddingProvider,
	chatProvider llm.ChatProvider,
	cache *QueryCache,
	config *ServiceConfig,
) *QueryService {
	return &QueryService{
		gate:          NewTopicGate(),
		indexer:       NewIndexer(vectorStore, catalog, embedProvider, config.IndexerConfig),
		retriever:     NewRetriever(vectorStore, embedProvider, config.RetrieverConfig),
		generator:     NewGenerator(chatProvider, config.GeneratorConfig),
		cache:         cache,
		catalog:       catalog,
		store:         vectorStore,
		embedProvider: embedProvider,
		chatProvider:  chatProvider,
		collection:    config.IndexerConfig.Collection,
		metrics:       metrics.GetQueryMetrics(),
	}
}

// Query 执行问答。
func (s *QueryService) Query(ctx context.Context, question, sourceFilter string) (*model.QueryResult, error) {
	// 1. 主题判定,无关提问直接拒绝
	if !s.gate.Allows(question) {
		s.metrics.RecordRejected()
		logger.Infow("question rejected as off-topic", "question", question)
		return &model.QueryResult{
			Answer:     RejectionAnswer,
			Sources:    []model.VerseSource{},
			Confidence: 0,
		}, nil
	}

	// 2. 尝试从缓存获取
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, question, sourceFilter); err == nil && cached != nil {
			cached.Cached = true
			s.metrics.RecordQuery(true, nil)
			return cached, nil
		}
	}

	// 3. 检索相关经文
	retrievalStart := time.Now()
	retrieval, err := s.retriever.Retrieve(ctx, question, sourceFilter)
	resultCount := 0
	if retrieval != nil {
		resultCount = len(retrieval.Results)
	}
	s.metrics.RecordRetrieval(time.Since(retrievalStart), resultCount, err)
	if err != nil {
		s.metrics.RecordQuery(false, err)
		return nil, err
	}

	// 4. 生成答案
	llmStart := time.Now()
	resp, err := s.generator.GenerateAnswer(ctx, question, retrieval.Results)

	promptTokens, completionTokens := 0, 0
	if resp != nil && resp.TokenUsage != nil {
		promptTokens = resp.TokenUsage.PromptTokens
		completionTokens = resp.TokenUsage.CompletionTokens
	}
	// 无检索结果时返回固定回复,不产生真实 LLM 调用
	if len(retrieval.Results) > 0 {
		s.metrics.RecordLLMCall(time.Since(llmStart), promptTokens, completionTokens, err)
	}
	if err != nil {
		s.metrics.RecordQuery(false, err)
		return nil, err
	}

	// 5. 构建响应
	sources := make([]model.VerseSource, len(retrieval.Results))
	for i, res := range retrieval.Results {
		sources[i] = model.VerseSource{
			VerseID: res.VerseID,
			Source:  res.Source,
			Book:    res.Book,
			Chapter: res.Chapter,
			Verse:   res.Verse,
			Content: res.Content,
			Score:   res.Score,
		}
	}

	result := &model.QueryResult{
		Answer:     resp.Content,
		Sources:    sources,
		Confidence: retrieval.Confidence,
	}

	// 6. 写入缓存,失败不影响正常返回
	if s.cache != nil && len(retrieval.Results) > 0 {
		_ = s.cache.Set(ctx, question, sourceFilter, result)
	}

	s.metrics.RecordQuery(false, nil)
	return result, nil
}

// SearchByVerse 按章节号精确查询诗节。source 为空时在全部语料中查找。
// 目录未命中时退回向量库,按章节号过滤候选片段。
func (s *QueryService) SearchByVerse(ctx context.Context, source string, chapter, verse int) (*model.Verse, error) {
	if s.catalog != nil {
		v, err := s.catalog.GetVerse(ctx, source, chapter, verse)
		if err == nil {
			s.metrics.RecordVerseLookup(true)
			return v, nil
		}
		if !errors.Is(err, ErrVerseNotFound) {
			s.metrics.RecordVerseLookup(false)
			return nil, err
		}
	}

	v, err := s.searchStoreByVerse(ctx, source, chapter, verse)
	s.metrics.RecordVerseLookup(err == nil)
	return v, err
}

// verseSearchLimit 向量库诗节回退查找的候选数。
const verseSearchLimit = 50

func (s *QueryService) searchStoreByVerse(ctx context.Context, source string, chapter, verse int) (*model.Verse, error) {
	embedding, err := s.embedProvider.EmbedSingle(ctx, fmt.Sprintf("chapter %d verse %d", chapter, verse))
	if err != nil {
		return nil, fmt.Errorf("failed to embed verse query: %w", err)
	}

	results, err := s.store.Search(ctx, s.collection, embedding, &store.SearchOptions{
		Limit:  verseSearchLimit,
		Source: source,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search vector store: %w", err)
	}

	for _, res := range results {
		if res.Chapter != chapter || res.Verse != verse {
			continue
		}
		if source != "" && res.Source != source {
			continue
		}
		return &model.Verse{
			VerseID: res.VerseID,
			Source:  res.Source,
			Book:    res.Book,
			Chapter: res.Chapter,
			Verse:   res.Verse,
			Text:    res.Content,
		}, nil
	}
	return nil, ErrVerseNotFound
}

// Initialize 构建或重建索引。force 时先清空向量库、诗节目录与查询缓存。
func (s *QueryService) Initialize(ctx context.Context, force bool) (*model.LoadReport, error) {
	report, err := s.indexer.Load(ctx, force)
	if err != nil {
		s.metrics.RecordIndexing(0, 0, err)
		return nil, err
	}

	if !report.Skipped {
		s.metrics.RecordIndexing(report.Verses, report.Chunks, nil)
		// 语料变化后旧答案失效
		if s.cache != nil {
			_ = s.cache.Clear(ctx)
		}
	}
	return report, nil
}

// GetStats 获取知识库统计信息。
func (s *QueryService) GetStats(ctx context.Context) (map[string]any, error) {
	count, err := s.store.Count(ctx, s.collection)
	if err != nil {
		return nil, err
	}

	stats := map[string]any{
		"collection":     s.collection,
		"chunk_count":    count,
		"embed_provider": s.embedProvider.Name(),
		"chat_provider":  s.chatProvider.Name(),
	}

	if s.catalog != nil {
		if total, err := s.catalog.Count(ctx); err == nil {
			stats["verse_count"] = total
		}
		if perSource, err := s.catalog.CountBySource(ctx); err == nil {
			stats["verses_by_source"] = perSource
		}
	}

	if s.cache != nil {
		if cacheStats, err := s.cache.GetStats(ctx); err == nil {
			stats["cache"] = cacheStats
		}
	}

	stats["metrics"] = s.metrics.GetSnapshot()
	return stats, nil
}

// 确保 QueryService 实现了 Service 接口。
var _ Service = (*QueryService)(nil)
