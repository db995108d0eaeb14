package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ==================== OpenAI Provider ====================

// OpenAIService 基于 OpenAI Chat Completions API 的生成实现
type OpenAIService struct {
	cfg    *AIConfig
	client *http.Client
}

var _ Generator = (*OpenAIService)(nil)

// NewOpenAIService 创建 OpenAI 生成服务
func NewOpenAIService(cfg *AIConfig) *OpenAIService {
	if cfg.TextModel == "" {
		cfg.TextModel = "gpt-4o-mini"
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = "gpt-4o-mini"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	return &OpenAIService{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// ==================== 请求/响应结构 ====================

type openaiMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type openaiContentPart struct {
	Type     string           `json:"type"`
	Text     string           `json:"text,omitempty"`
	ImageURL *openaiImagePart `json:"image_url,omitempty"`
}

type openaiImagePart struct {
	URL string `json:"url"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// chatCompletion 调用 chat/completions 接口，返回首个 choice 的内容
func (s *OpenAIService) chatCompletion(ctx context.Context, model string, messages []openaiMessage, temperature float64, jsonMode bool) (string, error) {
	if s.cfg.APIKey == "" {
		return "", fmt.Errorf("OpenAI API Key 未配置")
	}

	reqBody := map[string]interface{}{
		"model":       model,
		"messages":    messages,
		"temperature": temperature,
	}
	if jsonMode {
		reqBody["response_format"] = map[string]string{"type": "json_object"}
	}

	bodyBytes, _ := json.Marshal(reqBody)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("请求失败: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAI API 错误 [%d]: %s", resp.StatusCode, string(respBody))
	}

	var openaiResp openaiResponse
	if err := json.Unmarshal(respBody, &openaiResp); err != nil {
		return "", fmt.Errorf("解析响应失败: %v", err)
	}
	if openaiResp.Error != nil {
		return "", fmt.Errorf("API错误: %s", openaiResp.Error.Message)
	}
	if len(openaiResp.Choices) == 0 {
		return "", fmt.Errorf("无生成结果")
	}
	return openaiResp.Choices[0].Message.Content, nil
}

// ==================== Generator 实现 ====================

func (s *OpenAIService) AnalyzeImage(ctx context.Context, imageURL, depth string) (Analysis, error) {
	if imageURL == "" {
		return nil, fmt.Errorf("图片 URL 为空")
	}

	messages := []openaiMessage{
		{
			Role: "user",
			Content: []openaiContentPart{
				{Type: "text", Text: BuildAnalysisPrompt(depth)},
				{Type: "image_url", ImageURL: &openaiImagePart{URL: imageURL}},
			},
		},
	}

	text, err := s.chatCompletion(ctx, s.cfg.VisionModel, messages, 0.4, true)
	if err != nil {
		return nil, fmt.Errorf("图像分析失败: %w", err)
	}

	jsonText, ok := ExtractJSONObject(text)
	if !ok {
		return nil, fmt.Errorf("响应中未找到 JSON: %s", text)
	}

	var raw Analysis
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		return nil, fmt.Errorf("解析分析结果失败: %v, raw: %s", err, jsonText)
	}
	return NormalizeAnalysis(raw), nil
}

func (s *OpenAIService) GenerateDescription(ctx context.Context, item *ItemDetail, analysis Analysis, tone, template string) (string, error) {
	if item == nil {
		return "", fmt.Errorf("商品数据为空")
	}

	tpl := GetToneTemplate(tone)
	messages := []openaiMessage{
		{Role: "system", Content: tpl.System},
		{Role: "user", Content: BuildDescriptionPrompt(item, analysis, template)},
	}

	text, err := s.chatCompletion(ctx, s.cfg.TextModel, messages, tpl.Temperature, false)
	if err != nil {
		return "", fmt.Errorf("描述生成失败: %w", err)
	}

	return FormatDescription(text, template), nil
}

func (s *OpenAIService) GenerateMeta(ctx context.Context, item *ItemDetail, analysis Analysis, titleTemplate, descTemplate string) (*MetaResult, error) {
	if item == nil {
		return nil, fmt.Errorf("商品数据为空")
	}

	messages := []openaiMessage{
		{Role: "user", Content: BuildMetaPrompt(item, analysis, titleTemplate, descTemplate)},
	}

	text, err := s.chatCompletion(ctx, s.cfg.TextModel, messages, 0.3, true)
	if err != nil {
		return nil, fmt.Errorf("meta 生成失败: %w", err)
	}

	jsonText, ok := ExtractJSONObject(text)
	if !ok {
		return nil, fmt.Errorf("响应中未找到 JSON: %s", text)
	}

	var meta MetaResult
	if err := json.Unmarshal([]byte(jsonText), &meta); err != nil {
		return nil, fmt.Errorf("解析 meta 结果失败: %v, raw: %s", err, jsonText)
	}

	meta.Description = TruncateMetaDescription(meta.Description, descTemplate)
	return &meta, nil
}
