package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ISHANT57/Gita-Chatbot/internal/sutraquery/store"
)

func newTestCollection(t *testing.T, s *store.MemoryStore) {
	t.Helper()
	err := s.EnsureCollection(context.Background(), &store.CollectionConfig{
		Name:      "hindu_texts",
		Dimension: 3,
	})
	require.NoError(t, err)
}

func insertTestChunks(t *testing.T, s *store.MemoryStore) {
	t.Helper()
	chunks := []*store.Chunk{
		{
			ID: "c1", VerseID: "bhagavad_gita_2_47", Source: "bhagavad_gita",
			Chapter: 2, Verse: 47,
			Content:   "You have a right to perform your duty.",
			Embedding: []float32{1, 0, 0},
		},
		{
			ID: "c2", VerseID: "bhagavad_gita_2_48", Source: "bhagavad_gita",
			Chapter: 2, Verse: 48,
			Content:   "Perform your duty equipoised.",
			Embedding: []float32{0.9, 0.1, 0},
		},
		{
			ID: "c3", VerseID: "ramayana_1_1", Source: "ramayana", Book: "Bala Kanda",
			Chapter: 1, Verse: 1,
			Content:   "Valmiki questioned Narada.",
			Embedding: []float32{0, 0, 1},
		},
	}
	require.NoError(t, s.Insert(context.Background(), "hindu_texts", chunks))
}

func TestMemoryStoreSearch(t *testing.T) {
	s, err := store.NewMemoryStore("")
	require.NoError(t, err)
	newTestCollection(t, s)
	insertTestChunks(t, s)

	results, err := s.Search(context.Background(), "hindu_texts", []float32{1, 0, 0}, &store.SearchOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// 按相似度降序
	assert.Equal(t, "bhagavad_gita_2_47", results[0].VerseID)
	assert.Equal(t, "bhagavad_gita_2_48", results[1].VerseID)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-5)
}

func TestMemoryStoreSearchThreshold(t *testing.T) {
	s, err := store.NewMemoryStore("")
	require.NoError(t, err)
	newTestCollection(t, s)
	insertTestChunks(t, s)

	results, err := s.Search(context.Background(), "hindu_texts", []float32{1, 0, 0}, &store.SearchOptions{
		Limit:          10,
		ScoreThreshold: 0.65,
	})
	require.NoError(t, err)
	// 正交向量(ramayana)被阈值过滤
	require.Len(t, results, 2)
	for _, r := range results {
		assert.GreaterOrEqual(t, float64(r.Score), 0.65)
	}
}

func TestMemoryStoreSearchSourceFilter(t *testing.T) {
	s, err := store.NewMemoryStore("")
	require.NoError(t, err)
	newTestCollection(t, s)
	insertTestChunks(t, s)

	results, err := s.Search(context.Background(), "hindu_texts", []float32{1, 0, 0}, &store.SearchOptions{
		Limit:  10,
		Source: "ramayana",
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ramayana_1_1", results[0].VerseID)
	assert.Equal(t, "Bala Kanda", results[0].Book)
}

func TestMemoryStoreCountAndDrop(t *testing.T) {
	s, err := store.NewMemoryStore("")
	require.NoError(t, err)
	newTestCollection(t, s)

	count, err := s.Count(context.Background(), "hindu_texts")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	insertTestChunks(t, s)
	count, err = s.Count(context.Background(), "hindu_texts")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	require.NoError(t, s.Drop(context.Background(), "hindu_texts"))
	count, err = s.Count(context.Background(), "hindu_texts")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestMemoryStoreDimensionMismatch(t *testing.T) {
	s, err := store.NewMemoryStore("")
	require.NoError(t, err)
	newTestCollection(t, s)

	err = s.Insert(context.Background(), "hindu_texts", []*store.Chunk{
		{ID: "bad", Embedding: []float32{1, 0}},
	})
	assert.Error(t, err)
}

func TestMemoryStoreUnknownCollection(t *testing.T) {
	s, err := store.NewMemoryStore("")
	require.NoError(t, err)

	_, err = s.Search(context.Background(), "missing", []float32{1}, &store.SearchOptions{Limit: 1})
	assert.Error(t, err)

	err = s.Insert(context.Background(), "missing", []*store.Chunk{{ID: "x"}})
	assert.Error(t, err)
}

func TestMemoryStorePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")

	s, err := store.NewMemoryStore(path)
	require.NoError(t, err)
	newTestCollection(t, s)
	insertTestChunks(t, s)
	require.NoError(t, s.Close(context.Background()))

	// 重新打开后数据应被恢复
	restored, err := store.NewMemoryStore(path)
	require.NoError(t, err)

	count, err := restored.Count(context.Background(), "hindu_texts")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	results, err := restored.Search(context.Background(), "hindu_texts", []float32{0, 0, 1}, &store.SearchOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ramayana_1_1", results[0].VerseID)
}

func TestMemoryStoreCorruptIndexFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, writeFile(path, "{not json"))

	// 损坏的索引文件不应阻止启动
	s, err := store.NewMemoryStore(path)
	require.NoError(t, err)

	count, err := s.Count(context.Background(), "hindu_texts")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
