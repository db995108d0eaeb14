package dto

// ==================== 请求 DTO ====================

// AnalyzeBatchReq 批量生成请求
// 商品 ID 与合集 ID 至少给出一项
type AnalyzeBatchReq struct {
	ShopID        int64    `json:"shop_id" binding:"required"`
	ProductIDs    []string `json:"product_ids"`
	CollectionIDs []string `json:"collection_ids"`
	Tone          string   `json:"tone"`
	UpdateMeta    bool     `json:"update_meta"`
}

// ==================== 响应 DTO ====================

// AnalyzeBatchResp 批量提交响应，仅返回预估
type AnalyzeBatchResp struct {
	Code    int              `json:"code"`
	Message string           `json:"message"`
	Data    AnalyzeBatchData `json:"data"`
}

type AnalyzeBatchData struct {
	BatchID          string `json:"batch_id"`
	EstimatedUnits   int    `json:"estimated_units"`
	EstimatedCredits int    `json:"estimated_credits"`
}

// StatusResp 状态查询响应
type StatusResp struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}
