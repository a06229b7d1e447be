package store

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	qdrantopts "github.com/ISHANT57/Gita-Chatbot/pkg/options/qdrant"
)

// upsertBatchSize 单次 Upsert 的片段数上限。
const upsertBatchSize = 100

// QdrantStore 实现基于 Qdrant 的向量存储。
type QdrantStore struct {
	client *qdrant.Client
}

// NewQdrantStore 创建 Qdrant 存储实例并验证连接。
func NewQdrantStore(ctx context.Context, opts *qdrantopts.Options) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   opts.Host,
		Port:   opts.Port,
		APIKey: opts.APIKey,
		UseTLS: opts.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	// 连通性探测,失败时上层可以降级到内存存储。
	if _, err := client.HealthCheck(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("qdrant health check failed: %w", err)
	}

	return &QdrantStore{client: client}, nil
}

// EnsureCollection 确保集合存在,不存在则按余弦距离创建。
func (s *QdrantStore) EnsureCollection(ctx context.Context, config *CollectionConfig) error {
	exists, err := s.client.CollectionExists(ctx, config.Name)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: config.Name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(config.Dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", config.Name, err)
	}
	return nil
}

// Insert 批量插入经文片段,按 upsertBatchSize 分批写入。
func (s *QdrantStore) Insert(ctx context.Context, collection string, chunks []*Chunk) error {
	for start := 0; start < len(chunks); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		batch := chunks[start:end]
		points := make([]*qdrant.PointStruct, len(batch))
		for i, chunk := range batch {
			points[i] = &qdrant.PointStruct{
				Id:      qdrant.NewIDUUID(chunk.ID),
				Vectors: qdrant.NewVectors(chunk.Embedding...),
				Payload: map[string]*qdrant.Value{
					"verse_id": qdrant.NewValueString(chunk.VerseID),
					"source":   qdrant.NewValueString(chunk.Source),
					"book":     qdrant.NewValueString(chunk.Book),
					"chapter":  qdrant.NewValueInt(int64(chunk.Chapter)),
					"verse":    qdrant.NewValueInt(int64(chunk.Verse)),
					"content":  qdrant.NewValueString(chunk.Content),
				},
			}
		}

		wait := true
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: collection,
			Points:         points,
			Wait:           &wait,
		})
		if err != nil {
			return fmt.Errorf("failed to upsert into qdrant: %w", err)
		}
	}
	return nil
}

// Search 执行向量相似度搜索,支持分数阈值与来源过滤。
func (s *QdrantStore) Search(ctx context.Context, collection string, embedding []float32, opts *SearchOptions) ([]*SearchResult, error) {
	limit := uint64(opts.Limit)
	query := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if opts.ScoreThreshold > 0 {
		threshold := opts.ScoreThreshold
		query.ScoreThreshold = &threshold
	}
	if opts.Source != "" {
		query.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("source", opts.Source),
			},
		}
	}

	hits, err := s.client.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query qdrant: %w", err)
	}

	results := make([]*SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = &SearchResult{
			ID:      hit.Id.GetUuid(),
			VerseID: hit.Payload["verse_id"].GetStringValue(),
			Source:  hit.Payload["source"].GetStringValue(),
			Book:    hit.Payload["book"].GetStringValue(),
			Chapter: int(hit.Payload["chapter"].GetIntegerValue()),
			Verse:   int(hit.Payload["verse"].GetIntegerValue()),
			Content: hit.Payload["content"].GetStringValue(),
			Score:   hit.Score,
		}
	}
	return results, nil
}

// Count 返回集合中的片段数量。集合不存在时返回 0。
func (s *QdrantStore) Count(ctx context.Context, collection string) (int64, error) {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return 0, fmt.Errorf("failed to check collection existence: %w", err)
	}
	if !exists {
		return 0, nil
	}

	exact := true
	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return int64(count), nil
}

// Drop 删除集合及其全部数据。集合不存在时不报错。
func (s *QdrantStore) Drop(ctx context.Context, collection string) error {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if !exists {
		return nil
	}
	if err := s.client.DeleteCollection(ctx, collection); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", collection, err)
	}
	return nil
}

// Close 关闭与 Qdrant 的连接。
func (s *QdrantStore) Close(_ context.Context) error {
	return s.client.Close()
}

var _ VectorStore = (*QdrantStore)(nil)
