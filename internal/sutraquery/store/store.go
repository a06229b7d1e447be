// Package store 提供经文检索服务的存储层:向量库与诗节目录。
package store

import (
	"context"
)

// Chunk 表示写入向量库的经文片段。
// JSON 标签用于内存存储的磁盘持久化。
type Chunk struct {
	// ID 片段 ID,UUID。
	ID string `json:"id"`
	// VerseID 所属诗节 ID,如 "bhagavad_gita_2_47"。
	VerseID string `json:"verse_id"`
	// Source 语料来源标识。
	Source string `json:"source"`
	// Book 所属篇章(Kanda/Parva),可为空。
	Book string `json:"book,omitempty"`
	// Chapter 章号。
	Chapter int `json:"chapter"`
	// Verse 诗节号。
	Verse int `json:"verse"`
	// Content 片段文本。
	Content string `json:"content"`
	// Embedding 嵌入向量。
	Embedding []float32 `json:"embedding"`
}

// SearchResult 表示检索结果。
type SearchResult struct {
	// ID 片段 ID。
	ID string
	// VerseID 所属诗节 ID。
	VerseID string
	// Source 语料来源标识。
	Source string
	// Book 所属篇章。
	Book string
	// Chapter 章号。
	Chapter int
	// Verse 诗节号。
	Verse int
	// Content 片段文本。
	Content string
	// Score 余弦相似度分数。
	Score float32
}

// SearchOptions 检索参数。
type SearchOptions struct {
	// Limit 返回结果数上限。
	Limit int
	// ScoreThreshold 最低相似度分数,低于此值的结果被丢弃。
	ScoreThreshold float32
	// Source 按语料来源过滤,为空时不过滤。
	Source string
}

// CollectionConfig 集合配置。
type CollectionConfig struct {
	// Name 集合名称。
	Name string
	// Dimension 向量维度。
	Dimension int
}

// VectorStore 定义向量存储接口。
type VectorStore interface {
	// EnsureCollection 确保集合存在,不存在则创建。
	EnsureCollection(ctx context.Context, config *CollectionConfig) error

	// Insert 批量插入经文片段。
	Insert(ctx context.Context, collection string, chunks []*Chunk) error

	// Search 向量相似度搜索。
	Search(ctx context.Context, collection string, embedding []float32, opts *SearchOptions) ([]*SearchResult, error)

	// Count 返回集合中的片段数量。
	Count(ctx context.Context, collection string) (int64, error)

	// Drop 删除集合及其全部数据。
	Drop(ctx context.Context, collection string) error

	// Close 关闭连接。
	Close(ctx context.Context) error
}
