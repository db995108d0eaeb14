package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// ==================== 测试辅助 ====================

func geminiStub(t *testing.T, replyText string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.RawQuery, "key=") {
			t.Error("请求缺少 API Key")
		}

		reply := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]interface{}{{"text": replyText}},
				}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reply)
	}))
}

func testItem() *ItemDetail {
	return &ItemDetail{
		ID:          "gid://shopify/Product/1",
		Title:       "手工陶瓷杯",
		Description: "旧描述",
		ProductType: "杯具",
	}
}

// ==================== 文本生成 ====================

func TestGemini_GenerateDescription(t *testing.T) {
	server := geminiStub(t, "这是一款精心制作的陶瓷杯。")
	defer server.Close()

	svc := NewGeminiService(&AIConfig{APIKey: "test-key", BaseURL: server.URL})
	got, err := svc.GenerateDescription(context.Background(), testItem(), Analysis{"style": "极简"}, ToneProfessional, "")
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	if got != "这是一款精心制作的陶瓷杯。" {
		t.Fatalf("生成结果不符: %q", got)
	}
}

func TestGemini_GenerateMetaExtractsJSONAndTruncates(t *testing.T) {
	longDesc := strings.Repeat("a", 200)
	server := geminiStub(t, "Here you go:\n{\"title\": \"SEO 标题\", \"description\": \""+longDesc+"\"}")
	defer server.Close()

	svc := NewGeminiService(&AIConfig{APIKey: "test-key", BaseURL: server.URL})
	meta, err := svc.GenerateMeta(context.Background(), testItem(), nil, "", "meta 模板")
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	if meta.Title != "SEO 标题" {
		t.Fatalf("标题不符: %q", meta.Title)
	}
	// 有模板时描述截到 155 以内
	if len([]rune(meta.Description)) > 155 || !strings.HasSuffix(meta.Description, "...") {
		t.Fatalf("描述应被截断: len=%d", len(meta.Description))
	}
}

func TestGemini_MissingAPIKey(t *testing.T) {
	svc := NewGeminiService(&AIConfig{})
	if _, err := svc.GenerateDescription(context.Background(), testItem(), nil, ToneProfessional, ""); err == nil {
		t.Fatal("无 API Key 应报错")
	}
}

func TestGemini_NoJSONInResponse(t *testing.T) {
	server := geminiStub(t, "抱歉，我无法给出结构化结果。")
	defer server.Close()

	svc := NewGeminiService(&AIConfig{APIKey: "test-key", BaseURL: server.URL})
	if _, err := svc.GenerateMeta(context.Background(), testItem(), nil, "", ""); err == nil {
		t.Fatal("响应无 JSON 应报错")
	}
}

// ==================== 图像分析 ====================

func TestGemini_AnalyzeImage(t *testing.T) {
	// 1x1 像素的假图片
	imageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10})
	}))
	defer imageServer.Close()

	server := geminiStub(t, `{"productType": "杯具", "materials": ["陶瓷"], "colors": ["白色"], "features": ["手工"], "style": "极简", "targetAudience": "茶饮爱好者", "useCases": ["日常"], "qualityImpression": "精致", "additionalNotes": ""}`)
	defer server.Close()

	svc := NewGeminiService(&AIConfig{APIKey: "test-key", BaseURL: server.URL})
	analysis, err := svc.AnalyzeImage(context.Background(), imageServer.URL+"/main.jpg", "standard")
	if err != nil {
		t.Fatalf("分析失败: %v", err)
	}
	if analysis["style"] != "极简" {
		t.Fatalf("分析结果不符: %v", analysis)
	}
}

func TestGemini_AnalyzeImageEmptyURL(t *testing.T) {
	svc := NewGeminiService(&AIConfig{APIKey: "test-key"})
	if _, err := svc.AnalyzeImage(context.Background(), "", "standard"); err == nil {
		t.Fatal("空图片 URL 应报错")
	}
}

// ==================== 工厂 ====================

func TestNewGenerator(t *testing.T) {
	if _, err := NewGenerator(&AIConfig{Provider: ProviderGemini}); err != nil {
		t.Fatalf("gemini provider 应可创建: %v", err)
	}
	if _, err := NewGenerator(&AIConfig{Provider: ProviderOpenAI}); err != nil {
		t.Fatalf("openai provider 应可创建: %v", err)
	}
	if _, err := NewGenerator(&AIConfig{Provider: ""}); err != nil {
		t.Fatalf("默认 provider 应可创建: %v", err)
	}
	if _, err := NewGenerator(&AIConfig{Provider: "unknown"}); err == nil {
		t.Fatal("未知 provider 应报错")
	}
}
