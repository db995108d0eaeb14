package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"shopcopy_v1_202602/internal/model"
)

var (
	// ErrShopNotFound 店铺不存在
	ErrShopNotFound = errors.New("shop not found")
	// ErrSettingsNotFound 店铺设置不存在
	ErrSettingsNotFound = errors.New("shop settings not found")
)

// ==================== 仓储接口 ====================

// ShopRepository 店铺仓储接口
type ShopRepository interface {
	Create(ctx context.Context, shop *model.Shop) error
	GetByID(ctx context.Context, id int64) (*model.Shop, error)
	GetByDomain(ctx context.Context, domain string) (*model.Shop, error)
	UpdatePlan(ctx context.Context, id int64, plan string) error
	List(ctx context.Context, page, pageSize int) ([]model.Shop, int64, error)

	// 设置
	GetSettings(ctx context.Context, shopID int64) (*model.ShopSettings, error)
	CreateSettings(ctx context.Context, settings *model.ShopSettings) error
	UpdateSettings(ctx context.Context, shopID int64, fields map[string]interface{}) error
}

// ==================== 仓储实现 ====================

type shopRepo struct {
	db *gorm.DB
}

// NewShopRepository 创建店铺仓储
func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepo{db: db}
}

func (r *shopRepo) Create(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

func (r *shopRepo) GetByID(ctx context.Context, id int64) (*model.Shop, error) {
	var shop model.Shop
	err := r.db.WithContext(ctx).First(&shop, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrShopNotFound
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepo) GetByDomain(ctx context.Context, domain string) (*model.Shop, error) {
	var shop model.Shop
	err := r.db.WithContext(ctx).Where("shopify_domain = ?", domain).First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrShopNotFound
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepo) UpdatePlan(ctx context.Context, id int64, plan string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Shop{}).
		Where("id = ?", id).
		Update("plan", plan)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrShopNotFound
	}
	return nil
}

func (r *shopRepo) List(ctx context.Context, page, pageSize int) ([]model.Shop, int64, error) {
	var shops []model.Shop
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Shop{}).Where("status = ?", 1)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	err := query.
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&shops).Error
	return shops, total, err
}

func (r *shopRepo) GetSettings(ctx context.Context, shopID int64) (*model.ShopSettings, error) {
	var settings model.ShopSettings
	err := r.db.WithContext(ctx).Where("shop_id = ?", shopID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *shopRepo) CreateSettings(ctx context.Context, settings *model.ShopSettings) error {
	return r.db.WithContext(ctx).Create(settings).Error
}

func (r *shopRepo) UpdateSettings(ctx context.Context, shopID int64, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&model.ShopSettings{}).
		Where("shop_id = ?", shopID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSettingsNotFound
	}
	return nil
}
