package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"shopcopy_v1_202602/internal/repository"
	"shopcopy_v1_202602/internal/service"
)

// CreditResetTask 周期性重置到期的额度账户
// 每个账户的 ResetDate 过期后按店铺当前套餐恢复额度，周期顺延一个月
type CreditResetTask struct {
	CreditRepo    repository.CreditRepository
	ShopRepo      repository.ShopRepository
	CreditService *service.CreditService
	Cron          *cron.Cron
}

func NewCreditResetTask(creditRepo repository.CreditRepository, shopRepo repository.ShopRepository, creditService *service.CreditService) *CreditResetTask {
	return &CreditResetTask{
		CreditRepo:    creditRepo,
		ShopRepo:      shopRepo,
		CreditService: creditService,
		Cron:          cron.New(cron.WithSeconds()),
	}
}

// Start 启动定时任务
func (t *CreditResetTask) Start() {
	// 首次执行
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		log.Println("[Task] 服务启动，正在执行首次额度重置检查...")
		t.resetJob(ctx)
	}()

	// 每小时整点检查一次
	_, err := t.Cron.AddFunc("0 0 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		t.resetJob(ctx)
	})

	if err != nil {
		log.Fatalf("无法启动额度重置定时任务: %v", err)
	}

	t.Cron.Start()
	log.Println("额度重置任务已启动 (每小时检查一次)")
}

// Stop 停止定时任务
func (t *CreditResetTask) Stop() {
	t.Cron.Stop()
	log.Println("额度重置任务已停止")
}

// resetJob 找出 ResetDate 已过期的账户并逐个重置
func (t *CreditResetTask) resetJob(ctx context.Context) {
	due, err := t.CreditRepo.ListResetDue(ctx, time.Now())
	if err != nil {
		log.Printf("[Cron] 到期额度账户查询失败: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}

	log.Printf("[Cron] 共 %d 个额度账户到期，开始重置", len(due))

	var resetCount int
	for _, credits := range due {
		select {
		case <-ctx.Done():
			log.Println("[Cron] 额度重置任务超时停止")
			return
		default:
		}

		shop, err := t.ShopRepo.GetByID(ctx, credits.ShopID)
		if err != nil {
			log.Printf("[Cron] 店铺 %d 查询失败，跳过额度重置: %v", credits.ShopID, err)
			continue
		}

		if err := t.CreditService.ResetForPlan(ctx, shop.ID, shop.Plan); err != nil {
			log.Printf("[Cron] 店铺 [%s] 额度重置失败: %v", shop.ShopifyDomain, err)
			continue
		}
		resetCount++
	}

	log.Printf("[Cron] 本轮额度重置任务完成，成功 %d/%d", resetCount, len(due))
}
