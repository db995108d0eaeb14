package model

import "time"

// Credits 店铺信用点账本，单行记录
// Available 是可消耗余额，Total 跟踪累计授予基线（不约束 Available <= Total）
type Credits struct {
	BaseModel
	ShopID int64 `gorm:"uniqueIndex;not null"`

	Available int `gorm:"not null;default:0"` // 可用余额，永不为负
	Total     int `gorm:"not null;default:0"` // 累计授予

	ResetDate     time.Time  // 下次按套餐重置的时间
	LastPurchased *time.Time // 最近一次充值时间
}

func (Credits) TableName() string {
	return "credits"
}
