package biz

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ISHANT57/Gita-Chatbot/internal/sutraquery/metrics"
	"github.com/ISHANT57/Gita-Chatbot/internal/sutraquery/store"
	"github.com/ISHANT57/Gita-Chatbot/pkg/llm"
)

// stubEmbedder 按关键词生成确定性向量,每个关键词对应一个维度。
// 文本不含任何关键词时落在最后一维,保证与关键词向量正交。
type stubEmbedder struct {
	axes []string
	dim  int
}

func newStubEmbedder() *stubEmbedder {
	return &stubEmbedder{
		axes: []string{"karma", "dharma", "arjuna", "rama"},
		dim:  8,
	}
}

func (e *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.vector(text)
	}
	return vectors, nil
}

func (e *stubEmbedder) EmbedSingle(_ context.Context, text string) ([]float32, error) {
	return e.vector(text), nil
}

func (e *stubEmbedder) Name() string { return "stub-embed" }

func (e *stubEmbedder) vector(text string) []float32 {
	v := make([]float32, e.dim)
	lower := strings.ToLower(text)
	matched := false
	for i, axis := range e.axes {
		if strings.Contains(lower, axis) {
			v[i] = 1
			matched = true
		}
	}
	if !matched {
		v[e.dim-1] = 1
	}
	return v
}

// stubChat 记录最近一次收到的提示词,返回固定答案。
type stubChat struct {
	answer     string
	lastPrompt string
	calls      int
}

func (c *stubChat) Chat(_ context.Context, _ []llm.Message) (string, error) {
	return c.answer, nil
}

func (c *stubChat) Generate(_ context.Context, prompt string, _ string) (*llm.GenerateResponse, error) {
	c.calls++
	c.lastPrompt = prompt
	return &llm.GenerateResponse{
		Content:    c.answer,
		TokenUsage: &llm.TokenUsage{PromptTokens: 120, CompletionTokens: 48, TotalTokens: 168},
	}, nil
}

func (c *stubChat) Name() string { return "stub-chat" }

const testVersesCSV = `chapter,verse,sanskrit,translation,explanation,question
2,47,,"You have a right to perform your prescribed karma, but never to the fruits of action.",,
4,7,,"Whenever there is a decline of dharma I manifest myself to restore balance in every age.",,
`

// 辅助函数:写入语料目录并组装完整的问答服务
func newTestService(t *testing.T) (*QueryService, *stubChat) {
	t.Helper()

	dataDir := t.TempDir()
	err := os.WriteFile(filepath.Join(dataDir, "bhagavad_gita_verses.csv"), []byte(testVersesCSV), 0o644)
	require.NoError(t, err)

	vectorStore, err := store.NewMemoryStore("")
	require.NoError(t, err)

	catalog, err := store.NewVerseCatalog(filepath.Join(t.TempDir(), "verses.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = catalog.Close()
	})

	chat := &stubChat{answer: "Krishna teaches selfless action without attachment to results."}
	svc := NewQueryService(vectorStore, catalog, newStubEmbedder(), chat, nil, &ServiceConfig{
		IndexerConfig: &IndexerConfig{
			ChunkSize:    400,
			ChunkOverlap: 100,
			Collection:   "hindu_texts",
			EmbeddingDim: 8,
			DataDir:      dataDir,
		},
		RetrieverConfig: &RetrieverConfig{
			TopK:                5,
			SearchLimit:         20,
			SimilarityThreshold: 0.65,
			Collection:          "hindu_texts",
		},
		GeneratorConfig: &GeneratorConfig{
			SystemPrompt: "Answer based on the following scripture passages.\n\n{{context}}\n\nQuestion: {{question}}",
		},
	})
	return svc, chat
}

func TestQueryRejectsOffTopic(t *testing.T) {
	svc, chat := newTestService(t)
	ctx := context.Background()

	result, err := svc.Query(ctx, "tell me about the stock market", "")
	require.NoError(t, err)
	assert.Equal(t, RejectionAnswer, result.Answer)
	assert.Empty(t, result.Sources)
	assert.Zero(t, result.Confidence)
	assert.Zero(t, chat.calls)
}

func TestQueryNoResults(t *testing.T) {
	svc, chat := newTestService(t)
	ctx := context.Background()

	_, err := svc.Initialize(ctx, false)
	require.NoError(t, err)

	// 语料里只有 Gita,罗摩相关的提问应检索不到任何片段
	result, err := svc.Query(ctx, "tell me about rama in the ramayana", "")
	require.NoError(t, err)
	assert.Equal(t, NoResultsAnswer, result.Answer)
	assert.Empty(t, result.Sources)
	assert.Zero(t, result.Confidence)
	assert.Zero(t, chat.calls)
}

func TestQuerySuccess(t *testing.T) {
	svc, chat := newTestService(t)
	ctx := context.Background()

	_, err := svc.Initialize(ctx, false)
	require.NoError(t, err)

	result, err := svc.Query(ctx, "What does the Bhagavad Gita say about karma?", "")
	require.NoError(t, err)

	assert.Equal(t, chat.answer, result.Answer)
	assert.False(t, result.Cached)
	assert.Greater(t, result.Confidence, 0.65)

	require.Len(t, result.Sources, 1)
	src := result.Sources[0]
	assert.Equal(t, "bhagavad_gita", src.Source)
	assert.Equal(t, 2, src.Chapter)
	assert.Equal(t, 47, src.Verse)
	assert.Contains(t, src.Content, "fruits of action")

	// 提示词应包含带出处的上下文和原始提问
	assert.Equal(t, 1, chat.calls)
	assert.Contains(t, chat.lastPrompt, "[1] Source: Bhagavad Gita - Chapter 2, Verse 47")
	assert.Contains(t, chat.lastPrompt, "fruits of action")
	assert.Contains(t, chat.lastPrompt, "What does the Bhagavad Gita say about karma?")
}

func TestQueryWithSourceFilter(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Initialize(ctx, false)
	require.NoError(t, err)

	result, err := svc.Query(ctx, "What does the Gita teach about karma?", "ramayana")
	require.NoError(t, err)
	assert.Equal(t, NoResultsAnswer, result.Answer)
	assert.Empty(t, result.Sources)
}

func TestInitialize(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	report, err := svc.Initialize(ctx, false)
	require.NoError(t, err)
	assert.False(t, report.Skipped)
	assert.Equal(t, 2, report.Verses)
	assert.Equal(t, 2, report.Chunks)
	assert.Equal(t, 2, report.PerSource["bhagavad_gita"])
	assert.NotEmpty(t, report.BatchID)

	// 已有数据时跳过重建
	report, err = svc.Initialize(ctx, false)
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.Equal(t, 2, report.Chunks)

	// force 清空后重建
	report, err = svc.Initialize(ctx, true)
	require.NoError(t, err)
	assert.False(t, report.Skipped)
	assert.Equal(t, 2, report.Verses)
}

func TestSearchByVerse(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Initialize(ctx, false)
	require.NoError(t, err)

	v, err := svc.SearchByVerse(ctx, "bhagavad_gita", 2, 47)
	require.NoError(t, err)
	assert.Equal(t, "bhagavad_gita_2_47", v.VerseID)
	assert.Contains(t, v.Text, "prescribed karma")

	// source 为空时可以跨语料查找
	v, err = svc.SearchByVerse(ctx, "", 4, 7)
	require.NoError(t, err)
	assert.Equal(t, 4, v.Chapter)
	assert.Equal(t, 7, v.Verse)

	_, err = svc.SearchByVerse(ctx, "bhagavad_gita", 99, 1)
	assert.True(t, errors.Is(err, ErrVerseNotFound))
}

func TestSearchByVerseStoreFallback(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Initialize(ctx, false)
	require.NoError(t, err)

	// 只存在于向量库、目录里没有的诗节
	vec, err := newStubEmbedder().EmbedSingle(ctx, "chapter 3 verse 16")
	require.NoError(t, err)
	err = svc.store.Insert(ctx, "hindu_texts", []*store.Chunk{{
		ID:        "chunk-3-16",
		VerseID:   "bhagavad_gita_3_16",
		Source:    "bhagavad_gita",
		Chapter:   3,
		Verse:     16,
		Content:   "He who does not follow the wheel thus set revolving lives in vain.",
		Embedding: vec,
	}})
	require.NoError(t, err)

	v, err := svc.SearchByVerse(ctx, "bhagavad_gita", 3, 16)
	require.NoError(t, err)
	assert.Equal(t, "bhagavad_gita_3_16", v.VerseID)
	assert.Contains(t, v.Text, "wheel")

	// source 过滤不匹配时依然未命中
	_, err = svc.SearchByVerse(ctx, "ramayana", 3, 16)
	assert.True(t, errors.Is(err, ErrVerseNotFound))
}

func TestGetStats(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Initialize(ctx, false)
	require.NoError(t, err)

	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, "hindu_texts", stats["collection"])
	assert.Equal(t, int64(2), stats["chunk_count"])
	assert.Equal(t, "stub-embed", stats["embed_provider"])
	assert.Equal(t, "stub-chat", stats["chat_provider"])
	assert.Equal(t, int64(2), stats["verse_count"])

	perSource, ok := stats["verses_by_source"].(map[string]int64)
	require.True(t, ok)
	assert.Equal(t, int64(2), perSource["bhagavad_gita"])

	snapshot, ok := stats["metrics"].(metrics.Snapshot)
	require.True(t, ok)
	assert.GreaterOrEqual(t, snapshot.VersesIndexed, uint64(2))
}

// 确保测试桩满足供应商接口。
var (
	_ llm.EmbeddingProvider = (*stubEmbedder)(nil)
	_ llm.ChatProvider      = (*stubChat)(nil)
)
