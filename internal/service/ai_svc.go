package service

import (
	"context"
	"fmt"
)

// ==================== 生成能力 ====================

// MetaResult SEO meta 生成结果
type MetaResult struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// IsEmpty 标题与描述均为空
func (m *MetaResult) IsEmpty() bool {
	return m == nil || (m.Title == "" && m.Description == "")
}

// Generator 生成能力抽象：视觉分析 + 文案生成
// 两个 provider 实现（Gemini / OpenAI）互换，调用方只依赖该契约
type Generator interface {
	// AnalyzeImage 按指定深度分析商品图，返回归一化后的结构化结果
	AnalyzeImage(ctx context.Context, imageURL, depth string) (Analysis, error)

	// GenerateDescription 按语气与模板生成商品描述
	GenerateDescription(ctx context.Context, item *ItemDetail, analysis Analysis, tone, template string) (string, error)

	// GenerateMeta 生成 SEO 标题与描述
	GenerateMeta(ctx context.Context, item *ItemDetail, analysis Analysis, titleTemplate, descTemplate string) (*MetaResult, error)
}

// ==================== 配置与工厂 ====================

// AIConfig 生成服务配置
type AIConfig struct {
	Provider    string // gemini / openai
	APIKey      string
	TextModel   string
	VisionModel string
	BaseURL     string // 覆盖 API 地址（测试用）
}

// Provider 取值
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// NewGenerator 按配置选择 provider
func NewGenerator(cfg *AIConfig) (Generator, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIService(cfg), nil
	case ProviderGemini, "":
		return NewGeminiService(cfg), nil
	default:
		return nil, fmt.Errorf("未知的生成 provider: %s", cfg.Provider)
	}
}
