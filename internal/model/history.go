package model

import (
	"time"

	"gorm.io/datatypes"
)

// GenerationHistory 单个商品处理单元的审计/状态记录
// 处理开始时创建（status=processing），阶段推进时原地更新，终态为 completed 或 error，不会复活
type GenerationHistory struct {
	BaseModel

	// --- 归属 ---
	ShopID  int64  `gorm:"index;not null"`
	BatchID string `gorm:"size:36;index"` // 一次提交内所有单元共享的批次 ID

	// --- 商品 ---
	ProductID    string `gorm:"size:128;index;not null"` // Shopify GID
	ProductTitle string `gorm:"size:512"`
	OriginalDesc string `gorm:"type:text"`

	// --- 生成结果 ---
	GeneratedDesc string         `gorm:"type:text"`
	ImageAnalysis datatypes.JSON `gorm:"type:jsonb"`
	GeneratedMeta datatypes.JSON `gorm:"type:jsonb"`

	// --- 计量与状态 ---
	CreditsUsed int    `gorm:"default:0"`
	Status      string `gorm:"size:16;index;default:pending"` // pending/processing/completed/error
	Error       string `gorm:"size:1024"`
	CompletedAt *time.Time
}

func (GenerationHistory) TableName() string {
	return "generation_histories"
}

// ==================== 状态常量 ====================

const (
	HistoryStatusPending    = "pending"
	HistoryStatusProcessing = "processing"
	HistoryStatusCompleted  = "completed"
	HistoryStatusError      = "error"
)
