package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"shopcopy_v1_202602/internal/model"
	"shopcopy_v1_202602/internal/repository"
)

// ==================== 额度服务 ====================

// CreditSummary 额度概览
type CreditSummary struct {
	Available      int    `json:"available"`
	Total          int    `json:"total"`
	DaysUntilReset int    `json:"daysUntilReset"`
	UsageTrend     int    `json:"usageTrend"`
	Plan           string `json:"plan"`
}

// CreditService 额度管理：初始化、消耗、充值、周期重置
type CreditService struct {
	creditRepo  repository.CreditRepository
	shopRepo    repository.ShopRepository
	historyRepo repository.HistoryRepository
}

func NewCreditService(creditRepo repository.CreditRepository, shopRepo repository.ShopRepository, historyRepo repository.HistoryRepository) *CreditService {
	return &CreditService{
		creditRepo:  creditRepo,
		shopRepo:    shopRepo,
		historyRepo: historyRepo,
	}
}

// Initialize 为店铺建立额度账户（按套餐额度，周期一个月）
// 已存在账户时不做任何变更
func (s *CreditService) Initialize(ctx context.Context, shopID int64, plan string) error {
	_, err := s.creditRepo.Get(ctx, shopID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrCreditsNotFound) {
		return err
	}
	allowance := model.PlanAllowance(plan)
	return s.creditRepo.Init(ctx, shopID, allowance, time.Now().AddDate(0, 1, 0))
}

// HasEnough 判断余额是否足够
func (s *CreditService) HasEnough(ctx context.Context, shopID int64, amount int) (bool, error) {
	credits, err := s.creditRepo.Get(ctx, shopID)
	if err != nil {
		return false, err
	}
	return credits.Available >= amount, nil
}

// Use 扣减额度，返回实际扣除数（余额不足时截断到余额）
func (s *CreditService) Use(ctx context.Context, shopID int64, amount int) (int, error) {
	if amount <= 0 {
		return 0, nil
	}
	return s.creditRepo.Consume(ctx, shopID, amount)
}

// Add 充值：余额与总额同步增加，并记录购买时间
func (s *CreditService) Add(ctx context.Context, shopID int64, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("充值数量必须大于 0")
	}
	return s.creditRepo.Grant(ctx, shopID, amount)
}

// UpdatePlan 更新店铺套餐并按新套餐重置额度
func (s *CreditService) UpdatePlan(ctx context.Context, shopID int64, plan string) error {
	switch plan {
	case model.PlanFree, model.PlanBasic, model.PlanStandard, model.PlanPro:
	default:
		return fmt.Errorf("未知套餐: %s", plan)
	}
	if err := s.shopRepo.UpdatePlan(ctx, shopID, plan); err != nil {
		return err
	}
	return s.ResetForPlan(ctx, shopID, plan)
}

// ResetForPlan 按套餐额度重置账户，下个周期一个月后
func (s *CreditService) ResetForPlan(ctx context.Context, shopID int64, plan string) error {
	allowance := model.PlanAllowance(plan)
	return s.creditRepo.Reset(ctx, shopID, allowance, time.Now().AddDate(0, 1, 0))
}

// Summary 额度概览：余额、距重置天数、近 7 天用量占套餐额度的百分比
func (s *CreditService) Summary(ctx context.Context, shopID int64) (*CreditSummary, error) {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	credits, err := s.creditRepo.Get(ctx, shopID)
	if errors.Is(err, repository.ErrCreditsNotFound) {
		// 首次访问时按套餐建立账户
		if err = s.Initialize(ctx, shopID, shop.Plan); err != nil {
			return nil, err
		}
		credits, err = s.creditRepo.Get(ctx, shopID)
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	daysUntilReset := int(math.Ceil(credits.ResetDate.Sub(now).Hours() / 24))
	if daysUntilReset < 0 {
		daysUntilReset = 0
	}

	used, err := s.historyRepo.SumCreditsUsedSince(ctx, shopID, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	trend := 0
	if allowance := model.PlanAllowance(shop.Plan); allowance > 0 {
		trend = int(math.Round(float64(used) / float64(allowance) * 100))
	}

	return &CreditSummary{
		Available:      credits.Available,
		Total:          credits.Total,
		DaysUntilReset: daysUntilReset,
		UsageTrend:     trend,
		Plan:           shop.Plan,
	}, nil
}
