package service

import (
	"encoding/json"
	"fmt"
)

// ==================== 语气模板 ====================

// PromptTemplate 一种语气对应的系统提示词与用户提示词构造器
type PromptTemplate struct {
	System string
	// Temperature 该语气的采样温度
	Temperature float64
}

// 支持的语气
const (
	ToneProfessional = "professional"
	ToneCasual       = "casual"
	ToneLuxury       = "luxury"
	ToneMinimal      = "minimal"
	ToneEnthusiastic = "enthusiastic"
)

// 默认描述模板（商品描述占位符）
const DefaultDescTemplate = "[product_intro]\n\n[features_list]"

var toneTemplates = map[string]PromptTemplate{
	ToneProfessional: {
		System: `You are a professional e-commerce copywriter who creates well-structured, informative product descriptions.
- Use a professional, authoritative tone
- Focus on technical details and specifications
- Highlight practical benefits and applications
- Use industry-standard terminology
- Maintain a formal, business-like voice throughout
- Be precise and factual, avoiding hyperbole`,
		Temperature: 0.5,
	},
	ToneCasual: {
		System: `You are a friendly, conversational e-commerce copywriter who creates approachable and engaging product descriptions.
- Use a casual, friendly tone like you're talking to a friend
- Focus on easy-to-understand benefits rather than technical jargon
- Use contractions and conversational language
- Include personal touches and relatable scenarios
- Maintain an upbeat, positive voice
- Be helpful and approachable`,
		Temperature: 0.5,
	},
	ToneLuxury: {
		System: `You are an upscale, sophisticated e-commerce copywriter who creates elegant and premium product descriptions.
- Use refined, sophisticated language
- Emphasize exclusivity, craftsmanship, and quality
- Create an aspirational atmosphere
- Highlight premium materials and artisanal details
- Focus on the luxurious experience and status
- Use elegant, polished phrasing`,
		Temperature: 0.5,
	},
	ToneMinimal: {
		System: `You are a minimalist e-commerce copywriter who creates clean, concise, and modern product descriptions.
- Use brief, efficient language with no fluff
- Prioritize clarity and essential information
- Use short sentences and paragraphs
- Focus on key features only
- Maintain a clean, modern aesthetic
- Be direct and straightforward`,
		Temperature: 0.3,
	},
	ToneEnthusiastic: {
		System: `You are an energetic e-commerce copywriter who creates dynamic and exciting product descriptions.
- Use vibrant, energetic language
- Be bold and enthusiastic
- Use exciting adjectives and superlatives appropriately
- Create a sense of excitement and possibility
- Use varied punctuation for emphasis
- Be passionate about the product's benefits`,
		Temperature: 0.8,
	},
}

// GetToneTemplate 按语气取模板，未知语气回退 professional
func GetToneTemplate(tone string) PromptTemplate {
	if tpl, ok := toneTemplates[tone]; ok {
		return tpl
	}
	return toneTemplates[ToneProfessional]
}

// BuildDescriptionPrompt 构造描述生成的用户提示词
func BuildDescriptionPrompt(item *ItemDetail, analysis Analysis, template string) string {
	if template == "" {
		template = DefaultDescTemplate
	}

	productJSON, _ := json.MarshalIndent(item, "", "  ")
	analysisJSON, _ := json.MarshalIndent(analysis, "", "  ")

	return fmt.Sprintf(`Create a product description for the following product using the template provided.

PRODUCT DATA:
%s

VISUAL ANALYSIS:
%s

TEMPLATE:
%s

Replace the placeholders in the template with appropriate content. Match the tone established in the system instructions.`,
		productJSON, analysisJSON, template)
}

// BuildAnalysisPrompt 构造图像分析提示词，固定输出 schema
func BuildAnalysisPrompt(depth string) string {
	detailLevel := "standard"
	switch depth {
	case "basic":
		detailLevel = "basic"
	case "detailed":
		detailLevel = "comprehensive and detailed"
	}

	return fmt.Sprintf(`You are a professional e-commerce product analyzer. Analyze the product image and identify key features, materials, colors, style, and potential uses. Provide a %s analysis suitable for an e-commerce product description.

Please analyze this product image and provide structured information about it in JSON format with the following fields:
- productType: The type of product shown
- materials: Array of materials used in the product
- colors: Array of colors present in the product
- features: Array of notable product features
- style: The design style of the product
- targetAudience: Who this product is likely designed for
- useCases: Array of potential uses for this product
- qualityImpression: Your impression of the product quality
- additionalNotes: Any other observations

Return ONLY valid JSON without any additional text.`, detailLevel)
}

// BuildMetaPrompt 构造 SEO meta 生成提示词，长度目标写进指令而非程序强制
func BuildMetaPrompt(item *ItemDetail, analysis Analysis, titleTemplate, descTemplate string) string {
	if titleTemplate == "" {
		titleTemplate = "[title] - [primary_keyword] | [brand_name]"
	}
	if descTemplate == "" {
		descTemplate = "[short_description] Features: [key_features]. [cta]"
	}

	productJSON, _ := json.Marshal(item)
	analysisJSON, _ := json.Marshal(analysis)

	return fmt.Sprintf(`You are an SEO expert for e-commerce products. Generate optimized SEO meta title and description based on the product data and visual analysis provided.

Follow these guidelines:
- Meta title should be 50-60 characters
- Meta description should be 140-155 characters
- Include primary keywords naturally
- Make them compelling and click-worthy
- Use the provided templates for structure

Product data: %s
Image analysis: %s
Title template: %s
Description template: %s

Return ONLY valid JSON with "title" and "description" fields without any additional text.`,
		productJSON, analysisJSON, titleTemplate, descTemplate)
}
