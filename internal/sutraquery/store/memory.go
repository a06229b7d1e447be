package store

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/kart-io/logger"

	"github.com/ISHANT57/Gita-Chatbot/internal/pkg/rag/docutil"
	"github.com/ISHANT57/Gita-Chatbot/pkg/utils/json"
)

// MemoryStore 实现基于内存的向量存储,作为 Qdrant 不可用时的降级方案。
// 向量在插入时归一化,检索用点积等价于余弦相似度。
// 设置 path 后,数据会持久化到 JSON 文件,重启后可恢复。
type MemoryStore struct {
	mu          sync.RWMutex
	path        string
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	Dimension int      `json:"dimension"`
	Chunks    []*Chunk `json:"chunks"`
}

// NewMemoryStore 创建内存存储。path 为空时禁用持久化。
func NewMemoryStore(path string) (*MemoryStore, error) {
	s := &MemoryStore{
		path:        path,
		collections: make(map[string]*memoryCollection),
	}
	if path != "" {
		if err := s.load(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// EnsureCollection 确保集合存在。
func (s *MemoryStore) EnsureCollection(_ context.Context, config *CollectionConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[config.Name]; !ok {
		s.collections[config.Name] = &memoryCollection{Dimension: config.Dimension}
	}
	return nil
}

// Insert 插入经文片段。向量在此处归一化。
func (s *MemoryStore) Insert(_ context.Context, collection string, chunks []*Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		return fmt.Errorf("collection %s does not exist", collection)
	}

	for _, chunk := range chunks {
		if coll.Dimension > 0 && len(chunk.Embedding) != coll.Dimension {
			return fmt.Errorf("embedding dimension mismatch: want %d, got %d", coll.Dimension, len(chunk.Embedding))
		}
		c := *chunk
		c.Embedding = normalize(chunk.Embedding)
		coll.Chunks = append(coll.Chunks, &c)
	}

	return s.persistLocked()
}

// Search 暴力扫描全部片段,按余弦相似度降序返回。
func (s *MemoryStore) Search(_ context.Context, collection string, embedding []float32, opts *SearchOptions) ([]*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %s does not exist", collection)
	}

	query := normalize(embedding)
	results := make([]*SearchResult, 0, len(coll.Chunks))
	for _, chunk := range coll.Chunks {
		if opts.Source != "" && chunk.Source != opts.Source {
			continue
		}
		score := dot(query, chunk.Embedding)
		if opts.ScoreThreshold > 0 && score < opts.ScoreThreshold {
			continue
		}
		results = append(results, &SearchResult{
			ID:      chunk.ID,
			VerseID: chunk.VerseID,
			Source:  chunk.Source,
			Book:    chunk.Book,
			Chapter: chunk.Chapter,
			Verse:   chunk.Verse,
			Content: chunk.Content,
			Score:   score,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

// Count 返回集合中的片段数量。集合不存在时返回 0。
func (s *MemoryStore) Count(_ context.Context, collection string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, ok := s.collections[collection]
	if !ok {
		return 0, nil
	}
	return int64(len(coll.Chunks)), nil
}

// Drop 删除集合及其全部数据。
func (s *MemoryStore) Drop(_ context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections, collection)
	return s.persistLocked()
}

// Close 将数据刷盘。
func (s *MemoryStore) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

// load 从持久化文件恢复数据。文件不存在不算错误。
func (s *MemoryStore) load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read index file %s: %w", s.path, err)
	}

	var collections map[string]*memoryCollection
	if err := json.Unmarshal(raw, &collections); err != nil {
		// 索引文件损坏时重建,不中断启动。
		logger.Warnw("向量索引文件损坏,将重建", "path", s.path, "error", err)
		return nil
	}
	s.collections = collections

	total := 0
	for _, coll := range collections {
		total += len(coll.Chunks)
	}
	logger.Infow("已从磁盘恢复向量索引", "path", s.path, "chunks", total)
	return nil
}

// persistLocked 将数据写入持久化文件。调用方须持有写锁。
func (s *MemoryStore) persistLocked() error {
	if s.path == "" {
		return nil
	}

	if err := docutil.EnsureDir(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("failed to create index dir: %w", err)
	}

	raw, err := json.Marshal(s.collections)
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}

	// 先写临时文件再重命名,避免写入中断产生半截文件。
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write index file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace index file: %w", err)
	}
	return nil
}

func normalize(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dot(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return float32(sum)
}

var _ VectorStore = (*MemoryStore)(nil)
