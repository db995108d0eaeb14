package dto

// ==================== 请求 DTO ====================

// UpdateSettingsReq 店铺设置更新请求，指针字段表示未传不修改
type UpdateSettingsReq struct {
	ShopID int64 `json:"shop_id" binding:"required"`

	// 生成选项
	DefaultTone *string `json:"default_tone"`
	IncludeMeta *bool   `json:"include_meta"`
	AutoSave    *bool   `json:"auto_save"`

	// 模板
	ProductTitleTemplate *string `json:"product_title_template"`
	ProductDescTemplate  *string `json:"product_desc_template"`
	MetaTitleTemplate    *string `json:"meta_title_template"`
	MetaDescTemplate     *string `json:"meta_desc_template"`

	// 图像分析
	VisualAnalysisDepth *string `json:"visual_analysis_depth"`
	AutoDetectType      *bool   `json:"auto_detect_type"`
	EnhancedMaterials   *bool   `json:"enhanced_materials"`
	ColorAnalysis       *bool   `json:"color_analysis"`

	// 通知
	EmailUpdates   *bool `json:"email_updates"`
	CreditAlerts   *bool `json:"credit_alerts"`
	ProductUpdates *bool `json:"product_updates"`
}

// ==================== 响应 DTO ====================

// SettingsResp 店铺设置响应
type SettingsResp struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}
