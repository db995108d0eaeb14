package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"shopcopy_v1_202602/pkg/utils"
)

// ==================== Gemini Provider ====================

// GeminiService 基于 Gemini REST API 的生成实现
type GeminiService struct {
	cfg    *AIConfig
	client *http.Client
}

var _ Generator = (*GeminiService)(nil)

// NewGeminiService 创建 Gemini 生成服务
func NewGeminiService(cfg *AIConfig) *GeminiService {
	if cfg.TextModel == "" {
		cfg.TextModel = "gemini-2.0-flash"
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = "gemini-2.0-flash"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	return &GeminiService{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// ==================== 请求/响应结构 ====================

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// generateContent 调用 generateContent 接口，返回首个文本 part
func (s *GeminiService) generateContent(ctx context.Context, model string, parts []geminiPart, temperature float64) (string, error) {
	if s.cfg.APIKey == "" {
		return "", fmt.Errorf("Gemini API Key 未配置")
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.cfg.BaseURL, model, s.cfg.APIKey)

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": parts},
		},
		"generationConfig": map[string]interface{}{
			"temperature": temperature,
			"topK":        40,
			"topP":        0.95,
		},
	}

	bodyBytes, _ := json.Marshal(reqBody)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("请求失败: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini API 错误 [%d]: %s", resp.StatusCode, string(respBody))
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return "", fmt.Errorf("解析响应失败: %v", err)
	}
	if geminiResp.Error != nil {
		return "", fmt.Errorf("API错误: %s", geminiResp.Error.Message)
	}

	for _, candidate := range geminiResp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				return part.Text, nil
			}
		}
	}
	return "", fmt.Errorf("无生成结果")
}

// ==================== Generator 实现 ====================

func (s *GeminiService) AnalyzeImage(ctx context.Context, imageURL, depth string) (Analysis, error) {
	if imageURL == "" {
		return nil, fmt.Errorf("图片 URL 为空")
	}

	imageData, mimeType, err := utils.DownloadImage(ctx, imageURL)
	if err != nil {
		return nil, fmt.Errorf("获取商品图失败: %w", err)
	}

	parts := []geminiPart{
		{Text: BuildAnalysisPrompt(depth)},
		{InlineData: &geminiInlineData{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(imageData),
		}},
	}

	text, err := s.generateContent(ctx, s.cfg.VisionModel, parts, 0.4)
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

func (s *GeminiService) GenerateDescription(ctx context.Context, item *ItemDetail, analysis Analysis, tone, template string) (string, error) {
	if item == nil {
		return "", fmt.Errorf("商品数据为空")
	}

	tpl := GetToneTemplate(tone)
	parts := []geminiPart{
		{Text: tpl.System},
		{Text: BuildDescriptionPrompt(item, analysis, template)},
	}

	text, err := s.generateContent(ctx, s.cfg.TextModel, parts, tpl.Temperature)
	if err != nil {
		return "", fmt.Errorf("描述生成失败: %w", err)
	}

	return FormatDescription(text, template), nil
}

func (s *GeminiService) GenerateMeta(ctx context.Context, item *ItemDetail, analysis Analysis, titleTemplate, descTemplate string) (*MetaResult, error) {
	if item == nil {
		return nil, fmt.Errorf("商品数据为空")
	}

	parts := []geminiPart{
		{Text: BuildMetaPrompt(item, analysis, titleTemplate, descTemplate)},
	}

	text, err := s.generateContent(ctx, s.cfg.TextModel, parts, 0.3)
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
