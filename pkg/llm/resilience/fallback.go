// fallback.go 提供多供应商降级链。
// 主供应商失败时按顺序尝试后备供应商，全部失败才返回错误。
package resilience

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/logger"

	"github.com/ISHANT57/Gita-Chatbot/pkg/llm"
)

// FallbackEmbeddingProvider 按顺序尝试多个 Embedding 供应商。
type FallbackEmbeddingProvider struct {
	providers []llm.EmbeddingProvider

	// OnFallback 切换到后备供应商时的回调（可选，用于指标上报）。
	OnFallback func(from, to string)
}

// NewFallbackEmbeddingProvider 创建 Embedding 降级链。
// providers 按优先级排列，至少需要一个。
func NewFallbackEmbeddingProvider(providers ...llm.EmbeddingProvider) (*FallbackEmbeddingProvider, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("至少需要一个 embedding 供应商")
	}
	return &FallbackEmbeddingProvider{providers: providers}, nil
}

// Embed 为多个文本生成向量嵌入，主供应商失败时降级。
func (f *FallbackEmbeddingProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for i, p := range f.providers {
		result, err := p.Embed(ctx, texts)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if i < len(f.providers)-1 {
			logger.Warnw("embedding 供应商失败，切换到后备供应商",
				"provider", p.Name(),
				"next", f.providers[i+1].Name(),
				"error", err.Error(),
			)
			if f.OnFallback != nil {
				f.OnFallback(p.Name(), f.providers[i+1].Name())
			}
		}
	}
	return nil, fmt.Errorf("所有 embedding 供应商均失败: %w", lastErr)
}

// EmbedSingle 为单个文本生成向量嵌入，主供应商失败时降级。
func (f *FallbackEmbeddingProvider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for i, p := range f.providers {
		result, err := p.EmbedSingle(ctx, text)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if i < len(f.providers)-1 {
			logger.Warnw("embedding 供应商失败，切换到后备供应商",
				"provider", p.Name(),
				"next", f.providers[i+1].Name(),
				"error", err.Error(),
			)
			if f.OnFallback != nil {
				f.OnFallback(p.Name(), f.providers[i+1].Name())
			}
		}
	}
	return nil, fmt.Errorf("所有 embedding 供应商均失败: %w", lastErr)
}

// Name 返回降级链名称，如 "mistral>hashembed"。
func (f *FallbackEmbeddingProvider) Name() string {
	names := make([]string, len(f.providers))
	for i, p := range f.providers {
		names[i] = p.Name()
	}
	return strings.Join(names, ">")
}

// FallbackChatProvider 按顺序尝试多个 Chat 供应商。
type FallbackChatProvider struct {
	providers []llm.ChatProvider

	// OnFallback 切换到后备供应商时的回调（可选，用于指标上报）。
	OnFallback func(from, to string)
}

// NewFallbackChatProvider 创建 Chat 降级链。
func NewFallbackChatProvider(providers ...llm.ChatProvider) (*FallbackChatProvider, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("至少需要一个 chat 供应商")
	}
	return &FallbackChatProvider{providers: providers}, nil
}

// Chat 进行多轮对话，主供应商失败时降级。
func (f *FallbackChatProvider) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	var lastErr error
	for i, p := range f.providers {
		result, err := p.Chat(ctx, messages)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if i < len(f.providers)-1 {
			logger.Warnw("chat 供应商失败，切换到后备供应商",
				"provider", p.Name(),
				"next", f.providers[i+1].Name(),
				"error", err.Error(),
			)
			if f.OnFallback != nil {
				f.OnFallback(p.Name(), f.providers[i+1].Name())
			}
		}
	}
	return "", fmt.Errorf("所有 chat 供应商均失败: %w", lastErr)
}

// Generate 根据提示生成文本，主供应商失败时降级。
func (f *FallbackChatProvider) Generate(ctx context.Context, prompt string, systemPrompt string) (*llm.GenerateResponse, error) {
	var lastErr error
	for i, p := range f.providers {
		result, err := p.Generate(ctx, prompt, systemPrompt)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if i < len(f.providers)-1 {
			logger.Warnw("chat 供应商失败，切换到后备供应商",
				"provider", p.Name(),
				"next", f.providers[i+1].Name(),
				"error", err.Error(),
			)
			if f.OnFallback != nil {
				f.OnFallback(p.Name(), f.providers[i+1].Name())
			}
		}
	}
	return nil, fmt.Errorf("所有 chat 供应商均失败: %w", lastErr)
}

// Name 返回降级链名称。
func (f *FallbackChatProvider) Name() string {
	names := make([]string, len(f.providers))
	for i, p := range f.providers {
		names[i] = p.Name()
	}
	return strings.Join(names, ">")
}
