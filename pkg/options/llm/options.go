// Package llm provides LLM provider configuration options.
package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/ISHANT57/Gita-Chatbot/pkg/options"
)

var _ options.IOptions = (*ProviderOptions)(nil)

// ProviderOptions 定义 LLM 供应商配置。
type ProviderOptions struct {
	// Provider 供应商名称（mistral, openrouter, hashembed）。
	Provider string `json:"provider" mapstructure:"provider"`

	// BaseURL API 基础地址，为空时使用供应商默认地址。
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// APIKey API 密钥。
	APIKey string `json:"-" mapstructure:"api-key"`

	// APIKeyEnv 读取 API 密钥的环境变量名。
	// CLI 未传入 api-key 时生效。
	APIKeyEnv string `json:"api-key-env" mapstructure:"api-key-env"`

	// Model 使用的模型名称。
	Model string `json:"model" mapstructure:"model"`

	// Timeout 请求超时时间。
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// MaxRetries 最大重试次数。
	MaxRetries int `json:"max-retries" mapstructure:"max-retries"`

	// Temperature 生成随机性，0 表示使用供应商默认值。
	Temperature float64 `json:"temperature" mapstructure:"temperature"`

	// MaxTokens 最大生成 token 数，0 表示使用供应商默认值。
	MaxTokens int `json:"max-tokens" mapstructure:"max-tokens"`

	// flagScope 区分 embedding/chat 的 flag 前缀段。
	flagScope string
}

// NewEmbeddingOptions 创建默认 Embedding 供应商配置（Mistral mistral-embed）。
func NewEmbeddingOptions() *ProviderOptions {
	return &ProviderOptions{
		Provider:   "mistral",
		APIKeyEnv:  "MISTRAL_API_KEY",
		Model:      "mistral-embed",
		Timeout:    60 * time.Second,
		MaxRetries: 2,
		flagScope:  "embedding",
	}
}

// NewChatOptions 创建默认 Chat 供应商配置（OpenRouter Mixtral）。
func NewChatOptions() *ProviderOptions {
	return &ProviderOptions{
		Provider:    "openrouter",
		APIKeyEnv:   "OPENROUTER_API_KEY",
		Model:       "mistralai/mixtral-8x7b-instruct",
		Timeout:     60 * time.Second,
		MaxRetries:  2,
		Temperature: 0.4,
		MaxTokens:   1200,
		flagScope:   "chat",
	}
}

// ToConfigMap 转换为配置 map，用于供应商工厂。
func (o *ProviderOptions) ToConfigMap() map[string]any {
	return map[string]any{
		"base_url":    o.BaseURL,
		"api_key":     o.APIKey,
		"embed_model": o.Model,
		"chat_model":  o.Model,
		"timeout":     o.Timeout,
		"max_retries": o.MaxRetries,
		"temperature": o.Temperature,
		"max_tokens":  o.MaxTokens,
	}
}

// AddFlags adds flags for LLM provider options to the specified FlagSet.
func (o *ProviderOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	scope := "llm"
	if o.flagScope != "" {
		scope = "llm." + o.flagScope
	}
	fs.StringVar(&o.Provider, options.Join(prefixes...)+scope+".provider", o.Provider, "LLM provider (mistral, openrouter, hashembed).")
	fs.StringVar(&o.BaseURL, options.Join(prefixes...)+scope+".base-url", o.BaseURL, "LLM API base URL (empty for provider default).")
	fs.StringVar(&o.APIKey, options.Join(prefixes...)+scope+".api-key", o.APIKey, "LLM API key (DEPRECATED: prefer the provider environment variable).")
	fs.StringVar(&o.Model, options.Join(prefixes...)+scope+".model", o.Model, "LLM model name.")
	fs.DurationVar(&o.Timeout, options.Join(prefixes...)+scope+".timeout", o.Timeout, "LLM request timeout.")
	fs.IntVar(&o.MaxRetries, options.Join(prefixes...)+scope+".max-retries", o.MaxRetries, "LLM maximum number of retries.")
	fs.Float64Var(&o.Temperature, options.Join(prefixes...)+scope+".temperature", o.Temperature, "LLM sampling temperature.")
	fs.IntVar(&o.MaxTokens, options.Join(prefixes...)+scope+".max-tokens", o.MaxTokens, "LLM maximum completion tokens.")
}

// Validate validates the LLM provider options.
func (o *ProviderOptions) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Provider == "" {
		errs = append(errs, fmt.Errorf("provider is required"))
	}
	if o.Model == "" && o.Provider != "hashembed" {
		errs = append(errs, fmt.Errorf("model is required"))
	}
	// 远程供应商必须有 API key
	if (o.Provider == "mistral" || o.Provider == "openrouter") && o.APIKey == "" {
		errs = append(errs, fmt.Errorf("api-key is required for %s provider (set %s)", o.Provider, o.APIKeyEnv))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive"))
	}
	return errs
}

// Complete completes the LLM provider options with defaults and environment values.
func (o *ProviderOptions) Complete() error {
	if o.APIKey == "" && o.APIKeyEnv != "" {
		o.APIKey = os.Getenv(o.APIKeyEnv)
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 2
	}
	return nil
}
