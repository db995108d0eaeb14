package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"shopcopy_v1_202602/internal/model"
)

// ==================== 过滤条件 ====================

// HistoryFilter 处理记录过滤条件
type HistoryFilter struct {
	ShopID    int64
	BatchID   string
	ProductID string
	Status    string
	Page      int
	PageSize  int
}

// ==================== 仓储接口 ====================

// HistoryRepository 生成历史仓储接口
// 记录由所属处理单元独占写入，查询方只读
type HistoryRepository interface {
	Create(ctx context.Context, record *model.GenerationHistory) error
	GetByID(ctx context.Context, id int64) (*model.GenerationHistory, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	List(ctx context.Context, filter HistoryFilter) ([]model.GenerationHistory, int64, error)

	// 统计
	CountByStatus(ctx context.Context, filter HistoryFilter) (map[string]int64, error)
	SumCreditsUsedSince(ctx context.Context, shopID int64, since time.Time) (int, error)

	// CloseStaleProcessing 把长期卡在 processing 的记录关闭为 error
	CloseStaleProcessing(ctx context.Context, before time.Time, errMsg string) (int64, error)
}

// ==================== 仓储实现 ====================

type historyRepo struct {
	db *gorm.DB
}

// NewHistoryRepository 创建生成历史仓储
func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepo{db: db}
}

func (r *historyRepo) Create(ctx context.Context, record *model.GenerationHistory) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *historyRepo) GetByID(ctx context.Context, id int64) (*model.GenerationHistory, error) {
	var record model.GenerationHistory
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *historyRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.GenerationHistory{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *historyRepo) applyFilter(ctx context.Context, filter HistoryFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.GenerationHistory{})
	if filter.ShopID > 0 {
		query = query.Where("shop_id = ?", filter.ShopID)
	}
	if filter.BatchID != "" {
		query = query.Where("batch_id = ?", filter.BatchID)
	}
	if filter.ProductID != "" {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	return query
}

func (r *historyRepo) List(ctx context.Context, filter HistoryFilter) ([]model.GenerationHistory, int64, error) {
	var records []model.GenerationHistory
	var total int64

	query := r.applyFilter(ctx, filter)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	offset := (filter.Page - 1) * filter.PageSize
	err := query.
		Order("created_at DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&records).Error

	return records, total, err
}

func (r *historyRepo) CountByStatus(ctx context.Context, filter HistoryFilter) (map[string]int64, error) {
	type result struct {
		Status string
		Count  int64
	}
	var results []result

	// 状态统计不受 Status 过滤影响
	filter.Status = ""
	err := r.applyFilter(ctx, filter).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int64)
	for _, res := range results {
		stats[res.Status] = res.Count
	}
	return stats, nil
}

func (r *historyRepo) SumCreditsUsedSince(ctx context.Context, shopID int64, since time.Time) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Model(&model.GenerationHistory{}).
		Where("shop_id = ? AND created_at >= ?", shopID, since).
		Select("COALESCE(SUM(credits_used), 0)").
		Scan(&total).Error
	return total, err
}

func (r *historyRepo) CloseStaleProcessing(ctx context.Context, before time.Time, errMsg string) (int64, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&model.GenerationHistory{}).
		Where("status = ? AND created_at < ?", model.HistoryStatusProcessing, before).
		Updates(map[string]interface{}{
			"status":       model.HistoryStatusError,
			"error":        errMsg,
			"completed_at": now,
		})
	return res.RowsAffected, res.Error
}
