// Package rag provides RAG (Retrieval-Augmented Generation) configuration options.
package rag

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/ISHANT57/Gita-Chatbot/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options contains RAG-specific configuration.
type Options struct {
	// ChunkSize is the size of text chunks in runes.
	ChunkSize int `json:"chunk-size" mapstructure:"chunk-size"`

	// ChunkOverlap is the overlap between chunks in runes.
	ChunkOverlap int `json:"chunk-overlap" mapstructure:"chunk-overlap"`

	// TopK is the number of passages kept for context assembly.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// SearchLimit is the number of candidates fetched from the vector store
	// before threshold filtering.
	SearchLimit int `json:"search-limit" mapstructure:"search-limit"`

	// SimilarityThreshold 低于该余弦相似度的候选会被丢弃。
	SimilarityThreshold float64 `json:"similarity-threshold" mapstructure:"similarity-threshold"`

	// Collection is the name of the vector collection.
	Collection string `json:"collection" mapstructure:"collection"`

	// EmbeddingDim is the dimension of embedding vectors.
	EmbeddingDim int `json:"embedding-dim" mapstructure:"embedding-dim"`

	// DataDir is the directory holding the scripture corpus files.
	DataDir string `json:"data-dir" mapstructure:"data-dir"`

	// IndexPath is the sidecar file for the in-memory fallback store.
	IndexPath string `json:"index-path" mapstructure:"index-path"`

	// CatalogPath is the SQLite file for the verse catalog.
	CatalogPath string `json:"catalog-path" mapstructure:"catalog-path"`

	// SystemPrompt is the system prompt for answer generation.
	SystemPrompt string `json:"system-prompt" mapstructure:"system-prompt"`
}

// DefaultSystemPrompt is the default system prompt for answer generation.
// 要求回答仅依据给定经文段落，并以章节/诗节形式内联引用。
const DefaultSystemPrompt = `You are a knowledgeable guide to classical Hindu scriptures, answering questions
about the Bhagavad Gita, the Ramayana and the Mahabharata.

Ground every statement in the passages provided below. Cite the supporting
passage inline using its chapter and verse, for example (Bhagavad Gita 2.47).
If the passages do not contain the answer, say so plainly instead of guessing.
Keep a respectful, explanatory tone suitable for readers new to these texts.

Passages:
{{context}}

Question: {{question}}

Answer:`

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		ChunkSize:           400,
		ChunkOverlap:        100,
		TopK:                5,
		SearchLimit:         20,
		SimilarityThreshold: 0.65,
		Collection:          "hindu_texts",
		EmbeddingDim:        1024, // mistral-embed dimension
		DataDir:             "data",
		IndexPath:           "_output/vector_index.json",
		CatalogPath:         "_output/verse_catalog.db",
		SystemPrompt:        DefaultSystemPrompt,
	}
}

// AddFlags adds flags for RAG options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.IntVar(&o.ChunkSize, options.Join(prefixes...)+"rag.chunk-size", o.ChunkSize, "Size of text chunks in runes.")
	fs.IntVar(&o.ChunkOverlap, options.Join(prefixes...)+"rag.chunk-overlap", o.ChunkOverlap, "Overlap between chunks in runes.")
	fs.IntVar(&o.TopK, options.Join(prefixes...)+"rag.top-k", o.TopK, "Number of passages kept for context assembly.")
	fs.IntVar(&o.SearchLimit, options.Join(prefixes...)+"rag.search-limit", o.SearchLimit, "Number of candidates fetched before threshold filtering.")
	fs.Float64Var(&o.SimilarityThreshold, options.Join(prefixes...)+"rag.similarity-threshold", o.SimilarityThreshold, "Minimum cosine similarity for retrieved passages.")
	fs.StringVar(&o.Collection, options.Join(prefixes...)+"rag.collection", o.Collection, "Vector collection name.")
	fs.IntVar(&o.EmbeddingDim, options.Join(prefixes...)+"rag.embedding-dim", o.EmbeddingDim, "Embedding vector dimension.")
	fs.StringVar(&o.DataDir, options.Join(prefixes...)+"rag.data-dir", o.DataDir, "Directory holding the scripture corpus files.")
	fs.StringVar(&o.IndexPath, options.Join(prefixes...)+"rag.index-path", o.IndexPath, "Sidecar file for the in-memory fallback store.")
	fs.StringVar(&o.CatalogPath, options.Join(prefixes...)+"rag.catalog-path", o.CatalogPath, "SQLite file for the verse catalog.")
}

// Validate validates the RAG options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("chunk-size must be positive"))
	}
	if o.ChunkOverlap < 0 || o.ChunkOverlap >= o.ChunkSize {
		errs = append(errs, fmt.Errorf("chunk-overlap must be in [0, chunk-size)"))
	}
	if o.TopK <= 0 {
		errs = append(errs, fmt.Errorf("top-k must be positive"))
	}
	if o.SearchLimit < o.TopK {
		errs = append(errs, fmt.Errorf("search-limit must be >= top-k"))
	}
	if o.SimilarityThreshold < 0 || o.SimilarityThreshold > 1 {
		errs = append(errs, fmt.Errorf("similarity-threshold must be in [0, 1]"))
	}
	if o.EmbeddingDim <= 0 {
		errs = append(errs, fmt.Errorf("embedding-dim must be positive"))
	}
	if o.Collection == "" {
		errs = append(errs, fmt.Errorf("collection is required"))
	}
	return errs
}

// Complete completes the RAG options with defaults.
func (o *Options) Complete() error {
	if o.SystemPrompt == "" {
		o.SystemPrompt = DefaultSystemPrompt
	}
	return nil
}
