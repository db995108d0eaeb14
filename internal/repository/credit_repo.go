package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"shopcopy_v1_202602/internal/model"
)

// ==================== 错误定义 ====================

var (
	// ErrCreditsNotFound 店铺没有信用点账本
	ErrCreditsNotFound = errors.New("credits record not found")
)

// ==================== 仓储接口 ====================

// CreditRepository 信用点账本仓储接口
// Consume/Grant/Reset 对同一店铺串行生效（单行原子更新），并发 Consume 不会把余额扣成负数
type CreditRepository interface {
	Get(ctx context.Context, shopID int64) (*model.Credits, error)
	Init(ctx context.Context, shopID int64, allowance int, resetDate time.Time) error

	// Consume 扣减 min(amount, available)，返回实际扣减数量
	Consume(ctx context.Context, shopID int64, amount int) (int, error)

	// Grant 同时增加 Available 与 Total，并记录充值时间
	Grant(ctx context.Context, shopID int64, amount int) error

	// Reset 按套餐额度重置 Available/Total，并推进 ResetDate
	Reset(ctx context.Context, shopID int64, allowance int, nextReset time.Time) error

	// ListResetDue 查询重置时间已过的账本
	ListResetDue(ctx context.Context, before time.Time) ([]model.Credits, error)
}

// ==================== 仓储实现 ====================

type creditRepo struct {
	db *gorm.DB
}

// NewCreditRepository 创建信用点仓储
func NewCreditRepository(db *gorm.DB) CreditRepository {
	return &creditRepo{db: db}
}

func (r *creditRepo) Get(ctx context.Context, shopID int64) (*model.Credits, error) {
	var credits model.Credits
	err := r.db.WithContext(ctx).Where("shop_id = ?", shopID).First(&credits).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCreditsNotFound
	}
	if err != nil {
		return nil, err
	}
	return &credits, nil
}

func (r *creditRepo) Init(ctx context.Context, shopID int64, allowance int, resetDate time.Time) error {
	now := time.Now()
	return r.db.WithContext(ctx).Create(&model.Credits{
		ShopID:        shopID,
		Available:     allowance,
		Total:         allowance,
		ResetDate:     resetDate,
		LastPurchased: &now,
	}).Error
}

// Consume 采用 CAS 循环保证单行原子性：
// 读出当前余额，按旧值条件更新；被并发写抢先则重读重试
// 失败只会发生在其他写入已成功时，整体总能推进
func (r *creditRepo) Consume(ctx context.Context, shopID int64, amount int) (int, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		credits, err := r.Get(ctx, shopID)
		if err != nil {
			return 0, err
		}

		toUse := amount
		if credits.Available < toUse {
			toUse = credits.Available
		}
		if toUse <= 0 {
			return 0, nil
		}

		res := r.db.WithContext(ctx).
			Model(&model.Credits{}).
			Where("shop_id = ? AND available = ?", shopID, credits.Available).
			UpdateColumn("available", credits.Available-toUse)
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 1 {
			return toUse, nil
		}
		// 余额被并发修改，重试
	}
}

func (r *creditRepo) Grant(ctx context.Context, shopID int64, amount int) error {
	res := r.db.WithContext(ctx).
		Model(&model.Credits{}).
		Where("shop_id = ?", shopID).
		Updates(map[string]interface{}{
			"available":      gorm.Expr("available + ?", amount),
			"total":          gorm.Expr("total + ?", amount),
			"last_purchased": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCreditsNotFound
	}
	return nil
}

func (r *creditRepo) Reset(ctx context.Context, shopID int64, allowance int, nextReset time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.Credits{}).
		Where("shop_id = ?", shopID).
		Updates(map[string]interface{}{
			"available":  allowance,
			"total":      allowance,
			"reset_date": nextReset,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCreditsNotFound
	}
	return nil
}

func (r *creditRepo) ListResetDue(ctx context.Context, before time.Time) ([]model.Credits, error) {
	var ledgers []model.Credits
	err := r.db.WithContext(ctx).
		Where("reset_date <= ?", before).
		Find(&ledgers).Error
	return ledgers, err
}
