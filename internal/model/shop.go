package model

import (
	"github.com/lib/pq"
)

// Shop Shopify 店铺（租户）
type Shop struct {
	BaseModel

	// --- Shopify 身份 ---
	ShopifyDomain string         `gorm:"size:255;uniqueIndex;not null"` // xxx.myshopify.com
	ShopifyToken  string         `gorm:"size:255"`                      // Admin API access token
	Scopes        pq.StringArray `gorm:"type:text[]"`                   // 授权 scope 列表

	// --- 套餐 ---
	Plan   string `gorm:"size:20;default:FREE;index"` // FREE/BASIC/STANDARD/PRO
	Status int    `gorm:"default:1;index"`            // 1:正常 0:停用

	// --- 关联 ---
	Settings *ShopSettings `gorm:"foreignKey:ShopID"`
	Credits  *Credits      `gorm:"foreignKey:ShopID"`
}

func (Shop) TableName() string {
	return "shops"
}

// ==================== 套餐常量 ====================

const (
	PlanFree     = "FREE"
	PlanBasic    = "BASIC"
	PlanStandard = "STANDARD"
	PlanPro      = "PRO"
)

// PlanAllowance 套餐对应的每周期信用点额度
func PlanAllowance(plan string) int {
	switch plan {
	case PlanBasic:
		return 2500
	case PlanStandard:
		return 10000
	case PlanPro:
		return 50000
	default:
		return 50 // FREE
	}
}

// ==================== 店铺设置 ====================

// ShopSettings 店铺级生成配置，处理流程只读
type ShopSettings struct {
	BaseModel
	ShopID int64 `gorm:"uniqueIndex;not null"`

	// --- 文案生成 ---
	DefaultTone          string `gorm:"size:32;default:professional"` // professional/casual/luxury/minimal/enthusiastic
	IncludeMeta          bool   `gorm:"default:true"`
	AutoSave             bool   `gorm:"default:false"`
	ProductTitleTemplate string `gorm:"size:512"`
	ProductDescTemplate  string `gorm:"type:text"`
	MetaTitleTemplate    string `gorm:"size:512"`
	MetaDescTemplate     string `gorm:"size:512"`

	// --- 图像分析 ---
	VisualAnalysisDepth string `gorm:"size:16;default:standard"` // basic/standard/detailed
	AutoDetectType      bool   `gorm:"default:true"`
	EnhancedMaterials   bool   `gorm:"default:false"`
	ColorAnalysis       bool   `gorm:"default:true"`

	// --- 通知 ---
	EmailUpdates   bool `gorm:"default:true"`
	CreditAlerts   bool `gorm:"default:true"`
	ProductUpdates bool `gorm:"default:false"`
}

func (ShopSettings) TableName() string {
	return "shop_settings"
}

// ==================== 分析深度常量 ====================

const (
	AnalysisDepthBasic    = "basic"
	AnalysisDepthStandard = "standard"
	AnalysisDepthDetailed = "detailed"
)
