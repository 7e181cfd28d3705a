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

const (
	defaultTemperature   = 0.7
	defaultWindowSize    = 2
	defaultHistoryLimit  = 20
	defaultTurnTimeout   = 30 * time.Second
	defaultFormatRetries = 1
	maxFormatRetries     = 2
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Memory  MemoryConfig
	Metrics MetricsConfig
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

	mem, err := loadMemoryConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		AI:      ai,
		Memory:  mem,
		Metrics: MetricsConfig{Namespace: getEnvOrDefault("METRICS_NAMESPACE", "zmemo")},
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "3000"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":3000" 或 "127.0.0.1:3000"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// MemoryConfig 描述短期记忆与单轮对话流程的配置。
type MemoryConfig struct {
	WindowSize    int
	HistoryLimit  int
	TurnTimeout   time.Duration
	FormatRetries int
	PolicyID      string
}

// MetricsConfig 描述 Prometheus 指标配置。
type MetricsConfig struct {
	Namespace string
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + Model 或 AK/SK 组合")
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature32(),
		TopP:        toFloat32(c.TopP),
	}

	return ark.NewChatModel(ctx, cfg)
}

// Temperature32 返回 float32 形式的温度，未配置时为 nil。
func (c AIConfig) Temperature32() *float32 {
	return toFloat32(c.Temperature)
}

func toFloat32(v *float64) *float32 {
	if v == nil {
		return nil
	}
	val := float32(*v)
	return &val
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}
	if temperature == nil {
		val := defaultTemperature
		temperature = &val
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("Model")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

func loadMemoryConfig() (MemoryConfig, error) {
	window := defaultWindowSize
	if override, err := parseOptionalIntEnv("MEMORY_WINDOW"); err != nil {
		return MemoryConfig{}, err
	} else if override != nil {
		if *override < 0 {
			return MemoryConfig{}, fmt.Errorf("invalid MEMORY_WINDOW value %d: must not be negative", *override)
		}
		window = *override
	}

	limit := defaultHistoryLimit
	if override, err := parseOptionalIntEnv("MEMORY_HISTORY_LIMIT"); err != nil {
		return MemoryConfig{}, err
	} else if override != nil {
		limit = *override
	}
	// 存储上限不得小于读取窗口，否则窗口永远取不满。
	if limit < window {
		limit = window
	}

	timeout := defaultTurnTimeout
	if override, err := parseOptionalIntEnv("TURN_TIMEOUT_SECONDS"); err != nil {
		return MemoryConfig{}, err
	} else if override != nil && *override > 0 {
		timeout = time.Duration(*override) * time.Second
	}

	retries := defaultFormatRetries
	if override, err := parseOptionalIntEnv("FORMAT_RETRIES"); err != nil {
		return MemoryConfig{}, err
	} else if override != nil {
		retries = clampInt(*override, 0, maxFormatRetries)
	}

	return MemoryConfig{
		WindowSize:    window,
		HistoryLimit:  limit,
		TurnTimeout:   timeout,
		FormatRetries: retries,
		PolicyID:      getEnvOrDefault("MEMORY_POLICY", "digest"),
	}, nil
}

func clampInt(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
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
