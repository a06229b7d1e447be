package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/logger"

	"github.com/ISHANT57/Gita-Chatbot/internal/model"
	"github.com/ISHANT57/Gita-Chatbot/internal/sutraquery/store"
	"github.com/ISHANT57/Gita-Chatbot/pkg/llm"
)

// GeneratorConfig 生成器配置。
type GeneratorConfig struct {
	// SystemPrompt 提示词模板,含 {{context}} 与 {{question}} 占位符。
	SystemPrompt string
}

// NoResultsAnswer 检索无结果时的固定回复。
const NoResultsAnswer = "Based on the available texts, I cannot find relevant information to answer this question. Please try rephrasing your question or asking about specific verses or concepts from the Bhagavad Gita, Ramayana, or Mahabharata."

// contextSeparator 上下文条目之间的分隔线。
const contextSeparator = "\n\n---\n\n"

// Generator 负责答案生成。
type Generator struct {
	chatProvider llm.ChatProvider
	config       *GeneratorConfig
}

// NewGenerator 创建生成器实例。
func NewGenerator(chatProvider llm.ChatProvider, config *GeneratorConfig) *Generator {
	return &Generator{
		chatProvider: chatProvider,
		config:       config,
	}
}

// GenerateAnswer 根据检索结果生成带出处的答案。
func (g *Generator) GenerateAnswer(ctx context.Context, question string, results []*store.SearchResult) (*llm.GenerateResponse, error) {
	if len(results) == 0 {
		return &llm.GenerateResponse{Content: NoResultsAnswer}, nil
	}

	if ctx.Err() != nil {
		return nil, fmt.Errorf("context cancelled before generation: %w", ctx.Err())
	}

	context := g.buildContext(results)

	prompt := strings.ReplaceAll(g.config.SystemPrompt, "{{context}}", context)
	prompt = strings.ReplaceAll(prompt, "{{question}}", question)

	logger.Info("calling LLM to generate answer")
	resp, err := g.chatProvider.Generate(ctx, prompt, "")
	if err != nil {
		logger.Errorw("LLM generation failed", "error", err.Error())
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	if resp.TokenUsage != nil {
		logger.Infow("LLM answer generated",
			"length", len(resp.Content),
			"tokens", resp.TokenUsage.TotalTokens,
		)
	} else {
		logger.Infow("LLM answer generated", "length", len(resp.Content))
	}
	return resp, nil
}

// buildContext 将检索结果格式化为带编号与出处的上下文。
func (g *Generator) buildContext(results []*store.SearchResult) string {
	entries := make([]string, len(results))
	for i, res := range results {
		var sb strings.Builder
		title := model.SourceTitle(res.Source)
		if res.Chapter > 0 && res.Verse > 0 {
			sb.WriteString(fmt.Sprintf("[%d] Source: %s - Chapter %d, Verse %d\n", i+1, title, res.Chapter, res.Verse))
		} else {
			sb.WriteString(fmt.Sprintf("[%d] Source: %s\n", i+1, title))
		}
		if res.Book != "" {
			sb.WriteString("Book: " + res.Book + "\n")
		}
		sb.WriteString("Text: " + res.Content)
		entries[i] = sb.String()
	}
	return strings.Join(entries, contextSeparator)
}
