// Package hashembed 提供基于哈希的确定性 Embedding 供应商。
// 它不依赖任何外部服务，作为远程 Embedding API 全部不可用时的
// 最后兜底：相同文本永远得到相同向量，检索退化为词面匹配但服务不中断。
package hashembed

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ISHANT57/Gita-Chatbot/pkg/llm"
)

// ProviderName 是哈希 Embedding 供应商的名称标识符
const ProviderName = "hashembed"

func init() {
	llm.RegisterEmbeddingProvider(ProviderName, NewEmbeddingProvider)
}

// DefaultDimension 默认向量维度，与 mistral-embed 保持一致。
const DefaultDimension = 1024

// Provider 哈希 Embedding 供应商实现。
type Provider struct {
	dimension int
}

// NewEmbeddingProvider 从配置 map 创建哈希 Embedding 供应商。
func NewEmbeddingProvider(configMap map[string]any) (llm.EmbeddingProvider, error) {
	dim := DefaultDimension
	if v, ok := configMap["dimension"].(int); ok && v > 0 {
		dim = v
	}
	return New(dim), nil
}

// New 创建指定维度的哈希 Embedding 供应商。
func New(dimension int) *Provider {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Provider{dimension: dimension}
}

// Name 返回供应商名称。
func (p *Provider) Name() string {
	return ProviderName
}

// Embed 为多个文本生成确定性向量。
func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		embeddings[i] = p.embed(text)
	}
	return embeddings, nil
}

// EmbedSingle 为单个文本生成确定性向量。
func (p *Provider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return p.embed(text), nil
}

// embed 由文本的 MD5 链式哈希展开到目标维度，再做 L2 归一化。
func (p *Provider) embed(text string) []float32 {
	vec := make([]float32, p.dimension)

	seed := md5.Sum([]byte(text))
	block := seed
	idx := 0
	for counter := 0; idx < p.dimension; counter++ {
		for off := 0; off+4 <= len(block) && idx < p.dimension; off += 4 {
			// 每 4 字节映射到 [-1, 1]
			u := binary.BigEndian.Uint32(block[off : off+4])
			vec[idx] = float32(u)/float32(math.MaxUint32)*2 - 1
			idx++
		}
		block = md5.Sum(append(seed[:], []byte(fmt.Sprintf(":%d", counter))...))
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}
