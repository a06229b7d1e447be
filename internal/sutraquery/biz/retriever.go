package biz

import (
	"context"
	"fmt"

	"github.com/kart-io/logger"

	"github.com/ISHANT57/Gita-Chatbot/internal/pkg/rag/textutil"
	"github.com/ISHANT57/Gita-Chatbot/internal/sutraquery/store"
	"github.com/ISHANT57/Gita-Chatbot/pkg/llm"
)

// RetrieverConfig 检索器配置。
type RetrieverConfig struct {
	// TopK 进入上下文的结果数上限。
	TopK int
	// SearchLimit 向量搜索返回的候选数,大于 TopK 以提高召回。
	SearchLimit int
	// SimilarityThreshold 最低相似度分数。
	SimilarityThreshold float32
	// Collection 集合名称。
	Collection string
}

// RetrievalResult 表示检索结果。
type RetrievalResult struct {
	// Query 归一化后的查询。
	Query string
	// Results 过滤排序后的检索结果,最多 TopK 条。
	Results []*store.SearchResult
	// Confidence 置信度,取 TopK 结果分数的均值。
	Confidence float64
}

// Retriever 负责经文检索。
type Retriever struct {
	store         store.VectorStore
	embedProvider llm.EmbeddingProvider
	config        *RetrieverConfig
}

// NewRetriever 创建检索器实例。
func NewRetriever(vectorStore store.VectorStore, embedProvider llm.EmbeddingProvider, config *RetrieverConfig) *Retriever {
	return &Retriever{
		store:         vectorStore,
		embedProvider: embedProvider,
		config:        config,
	}
}

// Retrieve 执行检索。sourceFilter 非空时只在指定语料中搜索。
func (r *Retriever) Retrieve(ctx context.Context, question, sourceFilter string) (*RetrievalResult, error) {
	normalized := textutil.NormalizeQuery(question)
	logger.Infow("processing query", "question", question, "normalized", normalized)

	embedding, err := r.embedProvider.EmbedSingle(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	results, err := r.store.Search(ctx, r.config.Collection, embedding, &store.SearchOptions{
		Limit:          r.config.SearchLimit,
		ScoreThreshold: r.config.SimilarityThreshold,
		Source:         sourceFilter,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search vector store: %w", err)
	}

	if len(results) > r.config.TopK {
		results = results[:r.config.TopK]
	}

	confidence := 0.0
	for _, res := range results {
		confidence += float64(res.Score)
	}
	if len(results) > 0 {
		confidence /= float64(len(results))
	}

	logger.Infow("retrieval completed",
		"normalized", normalized,
		"results", len(results),
		"confidence", confidence,
	)
	return &RetrievalResult{
		Query:      normalized,
		Results:    results,
		Confidence: confidence,
	}, nil
}
