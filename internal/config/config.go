package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ==================== 应用配置 ====================

// Config 进程级配置，环境变量优先，未设置时取默认值
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	AI       AIProviderConfig
	Catalog  CatalogAPIConfig
	Pipeline PipelineConfig
	Limiter  LimiterConfig
}

type ServerConfig struct {
	Port    string
	GinMode string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type AIProviderConfig struct {
	Provider    string
	APIKey      string
	TextModel   string
	VisionModel string
}

type CatalogAPIConfig struct {
	APIVersion string
	Timeout    time.Duration
}

type PipelineConfig struct {
	Concurrency int
}

type LimiterConfig struct {
	Interval     time.Duration
	RequestLimit int
}

// Load 读取配置：SHOPCOPY_ 前缀的环境变量覆盖默认值
// 例如 SHOPCOPY_DB_HOST、SHOPCOPY_AI_PROVIDER
func Load() (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("SHOPCOPY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.gin_mode", "release")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "shopcopy")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.text_model", "")
	v.SetDefault("ai.vision_model", "")

	v.SetDefault("catalog.api_version", "2024-10")
	v.SetDefault("catalog.timeout", "30s")

	v.SetDefault("pipeline.concurrency", 3)

	v.SetDefault("limiter.interval", "1m")
	v.SetDefault("limiter.request_limit", 10)

	cfg := &Config{
		Server: ServerConfig{
			Port:    v.GetString("server.port"),
			GinMode: v.GetString("server.gin_mode"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("db.host"),
			Port:     v.GetString("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			Name:     v.GetString("db.name"),
			SSLMode:  v.GetString("db.sslmode"),
		},
		AI: AIProviderConfig{
			Provider:    v.GetString("ai.provider"),
			APIKey:      v.GetString("ai.api_key"),
			TextModel:   v.GetString("ai.text_model"),
			VisionModel: v.GetString("ai.vision_model"),
		},
		Catalog: CatalogAPIConfig{
			APIVersion: v.GetString("catalog.api_version"),
			Timeout:    v.GetDuration("catalog.timeout"),
		},
		Pipeline: PipelineConfig{
			Concurrency: v.GetInt("pipeline.concurrency"),
		},
		Limiter: LimiterConfig{
			Interval:     v.GetDuration("limiter.interval"),
			RequestLimit: v.GetInt("limiter.request_limit"),
		},
	}
	return cfg, nil
}

// DSN 拼接 postgres 连接串
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=UTC"
}
