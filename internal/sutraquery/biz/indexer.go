package biz

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kart-io/logger"
	"github.com/oklog/ulid/v2"

	"github.com/ISHANT57/Gita-Chatbot/internal/model"
	"github.com/ISHANT57/Gita-Chatbot/internal/pkg/rag/corpus"
	"github.com/ISHANT57/Gita-Chatbot/internal/pkg/rag/textutil"
	"github.com/ISHANT57/Gita-Chatbot/internal/sutraquery/store"
	"github.com/ISHANT57/Gita-Chatbot/pkg/infra/pool"
	"github.com/ISHANT57/Gita-Chatbot/pkg/llm"
)

// IndexerConfig 索引器配置。
type IndexerConfig struct {
	// ChunkSize 文本块大小(rune)。
	ChunkSize int
	// ChunkOverlap 块重叠大小。
	ChunkOverlap int
	// Collection 集合名称。
	Collection string
	// EmbeddingDim 嵌入向量维度。
	EmbeddingDim int
	// DataDir 语料文件目录。
	DataDir string
	// EmbedBatchSize 单次嵌入请求的片段数。
	EmbedBatchSize int
}

// minChunkRunes 短于此长度的片段不进入索引。
const minChunkRunes = 20

// Indexer 负责语料索引:解析、分块、嵌入、写入向量库与诗节目录。
type Indexer struct {
	store         store.VectorStore
	catalog       *store.VerseCatalog
	embedProvider llm.EmbeddingProvider
	parser        *corpus.Parser
	chunker       *textutil.Chunker
	config        *IndexerConfig
}

// NewIndexer 创建索引器实例。catalog 可以为 nil,此时不维护诗节目录。
func NewIndexer(vectorStore store.VectorStore, catalog *store.VerseCatalog, embedProvider llm.EmbeddingProvider, config *IndexerConfig) *Indexer {
	if config.EmbedBatchSize <= 0 {
		config.EmbedBatchSize = 32
	}
	return &Indexer{
		store:         vectorStore,
		catalog:       catalog,
		embedProvider: embedProvider,
		parser:        corpus.NewParser(),
		chunker:       textutil.NewChunker(config.ChunkSize, config.ChunkOverlap),
		config:        config,
	}
}

// Load 解析数据目录下的全部语料并建立索引。
// 向量库已有数据且未指定 force 时跳过,force 时先清空重建。
func (i *Indexer) Load(ctx context.Context, force bool) (*model.LoadReport, error) {
	start := time.Now()
	report := &model.LoadReport{
		BatchID:   ulid.Make().String(),
		PerSource: map[string]int{},
	}

	count, err := i.store.Count(ctx, i.config.Collection)
	if err != nil {
		return nil, fmt.Errorf("failed to check collection state: %w", err)
	}
	if count > 0 && !force {
		logger.Infow("向量库已有数据,跳过索引", "collection", i.config.Collection, "chunks", count)
		report.Skipped = true
		report.Chunks = int(count)
		report.DurationSecs = time.Since(start).Seconds()
		return report, nil
	}

	if force {
		logger.Infow("强制重建,清空现有数据", "collection", i.config.Collection, "batch_id", report.BatchID)
		if err := i.store.Drop(ctx, i.config.Collection); err != nil {
			return nil, fmt.Errorf("failed to drop collection: %w", err)
		}
		if i.catalog != nil {
			if err := i.catalog.Clear(ctx); err != nil {
				return nil, fmt.Errorf("failed to clear catalog: %w", err)
			}
		}
	}

	if err := i.store.EnsureCollection(ctx, &store.CollectionConfig{
		Name:      i.config.Collection,
		Dimension: i.config.EmbeddingDim,
	}); err != nil {
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}

	parsed := i.parser.ProcessAll(i.config.DataDir)
	report.FailedFiles = parsed.FailedFiles
	report.PerSource = parsed.PerSource
	if len(parsed.Verses) == 0 {
		return nil, fmt.Errorf("no corpus files found in %s", i.config.DataDir)
	}

	if i.catalog != nil {
		if err := i.catalog.UpsertBatch(ctx, parsed.Verses); err != nil {
			return nil, fmt.Errorf("failed to populate verse catalog: %w", err)
		}
	}

	chunks := i.buildChunks(parsed.Verses)
	logger.Infow("语料分块完成",
		"batch_id", report.BatchID,
		"verses", len(parsed.Verses),
		"chunks", len(chunks),
	)

	if err := i.embedAndInsert(ctx, chunks); err != nil {
		return nil, err
	}

	report.Verses = len(parsed.Verses)
	report.Chunks = len(chunks)
	report.DurationSecs = time.Since(start).Seconds()
	logger.Infow("索引构建完成",
		"batch_id", report.BatchID,
		"verses", report.Verses,
		"chunks", report.Chunks,
		"duration_secs", report.DurationSecs,
	)
	return report, nil
}

// buildChunks 将诗节文本切分为带元数据的片段。
func (i *Indexer) buildChunks(verses []model.Verse) []*store.Chunk {
	var chunks []*store.Chunk
	for idx := range verses {
		v := &verses[idx]
		for _, piece := range i.chunker.Split(v.FullText()) {
			if len([]rune(strings.TrimSpace(piece))) < minChunkRunes {
				continue
			}
			chunks = append(chunks, &store.Chunk{
				ID:      uuid.NewString(),
				VerseID: v.VerseID,
				Source:  v.Source,
				Book:    v.Book,
				Chapter: v.Chapter,
				Verse:   v.Verse,
				Content: piece,
			})
		}
	}
	return chunks
}

// embedAndInsert 并发地按批生成嵌入并写入向量库。
// 批之间通过工作池并行,池不可用时降级为串行执行。
func (i *Indexer) embedAndInsert(ctx context.Context, chunks []*store.Chunk) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	recordErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for start := 0; start < len(chunks); start += i.config.EmbedBatchSize {
		end := start + i.config.EmbedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		wg.Add(1)
		task := func() {
			defer wg.Done()
			if err := i.embedBatch(ctx, batch); err != nil {
				recordErr(err)
			}
		}

		if err := pool.SubmitToType(pool.IndexPool, task); err != nil {
			// 池不可用时串行执行
			task()
		}
	}
	wg.Wait()

	if firstErr != nil {
		return fmt.Errorf("indexing failed: %w", firstErr)
	}
	return nil
}

func (i *Indexer) embedBatch(ctx context.Context, batch []*store.Chunk) error {
	texts := make([]string, len(batch))
	for idx, chunk := range batch {
		texts[idx] = chunk.Content
	}

	embeddings, err := i.embedProvider.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embeddings) != len(batch) {
		return fmt.Errorf("embedding count mismatch: want %d, got %d", len(batch), len(embeddings))
	}

	for idx, chunk := range batch {
		chunk.Embedding = embeddings[idx]
	}

	if err := i.store.Insert(ctx, i.config.Collection, batch); err != nil {
		return fmt.Errorf("failed to insert chunks: %w", err)
	}
	return nil
}
