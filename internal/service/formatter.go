package service

import (
	"fmt"
	"regexp"
	"strings"
)

// ==================== 模型输出整形 ====================
// 生成式上游的输出不可信，这里是"严格解析"与"尽力接受"之间的边界适配层：
// 精确 schema 命中 → 已知别名 key 重映射 → 原样透传

// Analysis 图像分析结果，字段形态由模型输出决定
type Analysis map[string]interface{}

// 已知别名到可读字段名的映射顺序
var analysisAliasFields = []string{
	"product_type", "productType", "type",
	"materials", "material",
	"colors", "color", "colorPalette",
	"style", "design", "designElements",
	"features", "keyFeatures",
	"uses", "applications", "potentialUses",
	"dimensions", "size", "measurements",
}

var camelRe = regexp.MustCompile(`([A-Z])`)

// NormalizeAnalysis 把模型返回的分析结果归一化
// 已经结构化的直接返回；否则按别名表提取；都提不出来就原样返回
func NormalizeAnalysis(raw Analysis) Analysis {
	if raw == nil {
		return nil
	}

	if raw["features"] != nil || raw["materials"] != nil || raw["colors"] != nil || raw["style"] != nil {
		return raw
	}

	structured := make(Analysis)
	for _, field := range analysisAliasFields {
		if val, ok := raw[field]; ok {
			readable := strings.TrimSpace(strings.ToLower(
				strings.ReplaceAll(camelRe.ReplaceAllString(field, " $1"), "_", " ")))
			structured[readable] = val
		}
	}

	if len(structured) == 0 {
		return raw
	}
	return structured
}

// ==================== JSON 提取 ====================

// ExtractJSONObject 从模型原始文本中提取第一个完整的 JSON 对象
// 模型经常在 JSON 前后夹带说明文字，这里按花括号配对截取
func ExtractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// ==================== 描述整形 ====================

var htmlTagRe = regexp.MustCompile(`(?i)</?[a-z][\s\S]*>`)

// FormatDescription 按模板整形生成的描述
// 模型已套用占位符或已输出 HTML 时原样返回；纯文本 + HTML 模板时自行切段替换占位符
func FormatDescription(description, template string) string {
	if strings.Contains(description, "[product_intro]") ||
		strings.Contains(description, "[features_list]") ||
		strings.Contains(description, "[technical_specs]") {
		return description
	}

	if strings.TrimSpace(template) == "" {
		return description
	}

	isHTML := htmlTagRe.MatchString(description)
	templateHasHTML := strings.Contains(template, "<")

	// 模型已经按 HTML 模板输出，视为已套用
	if isHTML && templateHasHTML {
		return description
	}

	if !isHTML && templateHasHTML {
		paragraphs := splitParagraphs(description)
		if len(paragraphs) == 0 {
			return description
		}

		intro := paragraphs[0]
		var featuresList string
		if len(paragraphs) > 1 {
			var sb strings.Builder
			sb.WriteString("<ul>")
			for _, feature := range paragraphs[1:] {
				sb.WriteString(fmt.Sprintf("<li>%s</li>", strings.TrimSpace(feature)))
			}
			sb.WriteString("</ul>")
			featuresList = sb.String()
		}

		result := strings.Replace(template, "[product_intro]", intro, 1)
		result = strings.Replace(result, "[features_list]", featuresList, 1)
		result = strings.Replace(result, "[technical_specs]", "", 1)
		return result
	}

	return description
}

var paragraphSplitRe = regexp.MustCompile(`\n\n+`)

func splitParagraphs(text string) []string {
	parts := paragraphSplitRe.Split(text, -1)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			result = append(result, part)
		}
	}
	return result
}

// ==================== Meta 整形 ====================

const metaDescMaxLen = 155

// TruncateMetaDescription 硬兜底：仅在提供了模板时把 meta 描述截到 155 字符以内
// 已在限内的原样返回，截断结果以省略号结尾
func TruncateMetaDescription(description, template string) string {
	if strings.TrimSpace(template) == "" {
		return description
	}

	runes := []rune(description)
	if len(runes) <= metaDescMaxLen {
		return description
	}
	return string(runes[:metaDescMaxLen-3]) + "..."
}
