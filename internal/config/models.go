package config

import (
	"fmt"
	"time"
)

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// CacheConfig represents the configuration for the model output cache
type CacheConfig struct {
	Type             string
	Enabled          bool
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
}

// APIConfig represents the configuration for the classification HTTP API
type APIConfig struct {
	ListenAddress  string
	MaxUploadSize  int64
	AllowedOrigins []string
}

// SMTPConfig represents the configuration for the SMTP intake
type SMTPConfig struct {
	Enabled              bool
	ListenAddress        string
	ClassificationHeader string
	ReplyHeader          string
	ErrorHeader          string
	ForwardEnabled       bool
	ForwardAddress       string
	ForwardPort          int
}

// WebConfig represents the configuration for the web front end
type WebConfig struct {
	ListenAddress  string
	ClassifierURL  string
	RequestTimeout time.Duration
	MaxUploadSize  int64
	SessionTTL     time.Duration
	SessionCleanup time.Duration
	SecureCookies  bool
}

// PreprocessConfig controls how email text is prepared for the model
type PreprocessConfig struct {
	MaxPromptChars int
	KeywordCount   int
	PreviewChars   int
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		BaseURL:     c.GetString("openai.base_url"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
	}
}

// GetCache returns the cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		return CacheConfig{}, fmt.Errorf("invalid cache ttl: %w", err)
	}
	cleanup, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, fmt.Errorf("invalid cache cleanup frequency: %w", err)
	}

	return CacheConfig{
		Type:             c.GetString("cache.type"),
		Enabled:          c.GetBool("cache.enabled"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
	}, nil
}

// GetAPI returns the classification API configuration
func (c *Config) GetAPI() APIConfig {
	return APIConfig{
		ListenAddress:  c.GetString("api.listen_address"),
		MaxUploadSize:  c.GetInt64("api.max_upload_size"),
		AllowedOrigins: c.GetStringSlice("api.allowed_origins"),
	}
}

// GetSMTP returns the SMTP intake configuration
func (c *Config) GetSMTP() SMTPConfig {
	return SMTPConfig{
		Enabled:              c.GetBool("smtp.enabled"),
		ListenAddress:        c.GetString("smtp.listen_address"),
		ClassificationHeader: c.GetString("smtp.headers.classification"),
		ReplyHeader:          c.GetString("smtp.headers.reply"),
		ErrorHeader:          c.GetString("smtp.headers.error"),
		ForwardEnabled:       c.GetBool("smtp.forward.enabled"),
		ForwardAddress:       c.GetString("smtp.forward.address"),
		ForwardPort:          c.GetInt("smtp.forward.port"),
	}
}

// GetWeb returns the web front end configuration
func (c *Config) GetWeb() (WebConfig, error) {
	timeout, err := c.GetDuration("web.request_timeout")
	if err != nil {
		return WebConfig{}, fmt.Errorf("invalid web request timeout: %w", err)
	}
	ttl, err := c.GetDuration("web.session_ttl")
	if err != nil {
		return WebConfig{}, fmt.Errorf("invalid web session ttl: %w", err)
	}
	cleanup, err := c.GetDuration("web.session_cleanup_frequency")
	if err != nil {
		return WebConfig{}, fmt.Errorf("invalid web session cleanup frequency: %w", err)
	}

	return WebConfig{
		ListenAddress:  c.GetString("web.listen_address"),
		ClassifierURL:  c.GetString("web.classifier_url"),
		RequestTimeout: timeout,
		MaxUploadSize:  c.GetInt64("web.max_upload_size"),
		SessionTTL:     ttl,
		SessionCleanup: cleanup,
		SecureCookies:  c.GetBool("web.secure_cookies"),
	}, nil
}

// GetPreprocess returns the preprocessing configuration
func (c *Config) GetPreprocess() PreprocessConfig {
	return PreprocessConfig{
		MaxPromptChars: c.GetInt("preprocess.max_prompt_chars"),
		KeywordCount:   c.GetInt("preprocess.keyword_count"),
		PreviewChars:   c.GetInt("preprocess.preview_chars"),
	}
}
