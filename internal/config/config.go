package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Backend names accepted by LLM_BACKEND.
const (
	BackendOpenAI = "openai"
	BackendArk    = "ark"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server ServerConfig
	AI     AIConfig
	Chat   ChatConfig
	Log    LogConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Chat: chat, Log: loadLogConfig()}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr  string
	Share bool
}

// loadServerConfig 解析服务器监听地址。SHARE=true 且未显式指定 HOST 时监听所有网卡。
func loadServerConfig() (ServerConfig, error) {
	share, err := parseBoolEnv("SHARE", false)
	if err != nil {
		return ServerConfig{}, err
	}

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "7860"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":7860" 或 "127.0.0.1:7860"。
		return ServerConfig{Addr: port, Share: share}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, NewConfigError("PORT", fmt.Sprintf("invalid value %q", port))
	}

	host := strings.TrimSpace(os.Getenv("HOST"))
	if host == "" {
		host = "127.0.0.1"
		if share {
			host = "0.0.0.0"
		}
	}

	return ServerConfig{Addr: host + ":" + port, Share: share}, nil
}

// AIConfig 描述推理后端相关配置。
type AIConfig struct {
	Backend string
	Timeout time.Duration

	// OpenAI-compatible completion server (llama.cpp, Ollama, LM Studio).
	BaseURL string
	APIKey  string
	Model   string

	Ark ArkConfig
}

// ArkConfig carries the credentials for the Ark chat-model backend.
type ArkConfig struct {
	APIKey    string
	AccessKey string
	SecretKey string
	Model     string
	BaseURL   string
	Region    string
}

// Enabled 表示是否提供了必需的密钥。
func (c ArkConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。Sampling parameters are supplied per
// request, so none are fixed here.
func (c ArkConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, NewConfigError("ARK_MODEL", "Ark credentials or model missing, provide ARK_API_KEY + ARK_MODEL or an AK/SK pair")
	}

	return ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:   c.BaseURL,
		Region:    c.Region,
		APIKey:    c.APIKey,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		Model:     c.Model,
	})
}

func loadAIConfig() (AIConfig, error) {
	backend := strings.ToLower(getEnvOrDefault("LLM_BACKEND", BackendOpenAI))
	if backend != BackendOpenAI && backend != BackendArk {
		return AIConfig{}, NewConfigError("LLM_BACKEND", fmt.Sprintf("unsupported backend %q", backend))
	}

	timeout, err := parseDurationEnv("INFERENCE_TIMEOUT", 120*time.Second)
	if err != nil {
		return AIConfig{}, err
	}
	if timeout <= 0 {
		return AIConfig{}, NewConfigError("INFERENCE_TIMEOUT", "must be positive")
	}

	return AIConfig{
		Backend: backend,
		Timeout: timeout,
		BaseURL: getEnvOrDefault("LLM_BASE_URL", "http://127.0.0.1:8080/v1"),
		APIKey:  strings.TrimSpace(os.Getenv("LLM_API_KEY")),
		Model:   getEnvOrDefault("LLM_MODEL", "local"),
		Ark: ArkConfig{
			APIKey:    strings.TrimSpace(os.Getenv("ARK_API_KEY")),
			AccessKey: strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
			SecretKey: strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
			Model:     strings.TrimSpace(os.Getenv("ARK_MODEL")),
			BaseURL:   getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
			Region:    getEnvOrDefault("ARK_REGION", "cn-beijing"),
		},
	}, nil
}

// ChatConfig 描述对话默认参数，取值范围与前端控件一致。
type ChatConfig struct {
	Temperature    float64
	TopP           float64
	MaxTokens      int
	UserName       string
	AssistantName  string
	DefaultPersona string
}

func loadChatConfig() (ChatConfig, error) {
	cfg := ChatConfig{
		Temperature:    0.8,
		TopP:           0.9,
		MaxTokens:      512,
		UserName:       getEnvOrDefault("CHAT_USER_NAME", "Alice"),
		AssistantName:  getEnvOrDefault("CHAT_ASSISTANT_NAME", "Bob"),
		DefaultPersona: getEnvOrDefault("CHAT_DEFAULT_PERSONA", "humor-bot"),
	}

	temperature, err := parseOptionalFloatEnv("CHAT_TEMPERATURE")
	if err != nil {
		return ChatConfig{}, err
	}
	if temperature != nil {
		if *temperature < 0 || *temperature > 1.5 {
			return ChatConfig{}, NewConfigError("CHAT_TEMPERATURE", "must be within [0, 1.5]")
		}
		cfg.Temperature = *temperature
	}

	topP, err := parseOptionalFloatEnv("CHAT_TOP_P")
	if err != nil {
		return ChatConfig{}, err
	}
	if topP != nil {
		if *topP < 0 || *topP > 1 {
			return ChatConfig{}, NewConfigError("CHAT_TOP_P", "must be within [0, 1]")
		}
		cfg.TopP = *topP
	}

	maxTokens, err := parseOptionalIntEnv("CHAT_MAX_TOKENS")
	if err != nil {
		return ChatConfig{}, err
	}
	if maxTokens != nil {
		if *maxTokens < 64 || *maxTokens > 1024 {
			return ChatConfig{}, NewConfigError("CHAT_MAX_TOKENS", "must be within [64, 1024]")
		}
		cfg.MaxTokens = *maxTokens
	}

	return cfg, nil
}

// LogConfig controls the zerolog setup.
type LogConfig struct {
	Level  string
	Format string
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		Format: strings.ToLower(getEnvOrDefault("LOG_FORMAT", "console")),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
