package dto

// ==================== 请求 DTO ====================

// PurchaseCreditsReq 额度充值请求
type PurchaseCreditsReq struct {
	ShopID int64 `json:"shop_id" binding:"required"`
	Amount int   `json:"amount" binding:"required,gt=0"`
}

// UpdatePlanReq 套餐变更请求
type UpdatePlanReq struct {
	ShopID int64  `json:"shop_id" binding:"required"`
	Plan   string `json:"plan" binding:"required"`
}

// ==================== 响应 DTO ====================

// CreditsResp 额度概览响应
type CreditsResp struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}
