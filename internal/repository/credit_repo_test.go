package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopcopy_v1_202602/internal/model"
)

// ==================== 测试辅助 ====================

func setupCreditTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	// sqlite 单连接，避免内存库多连接间互相看不到数据
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取底层 SQL DB 失败: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.Credits{}); err != nil {
		t.Fatalf("自动建表失败: %v", err)
	}
	return db
}

// ==================== 基础操作 ====================

func TestCreditRepo_InitAndGet(t *testing.T) {
	db := setupCreditTestDB(t)
	repo := NewCreditRepository(db)
	ctx := context.Background()

	if _, err := repo.Get(ctx, 1); err != ErrCreditsNotFound {
		t.Fatalf("未初始化应返回 ErrCreditsNotFound, 实际 %v", err)
	}

	resetDate := time.Now().AddDate(0, 1, 0)
	if err := repo.Init(ctx, 1, 2500, resetDate); err != nil {
		t.Fatalf("初始化失败: %v", err)
	}

	credits, err := repo.Get(ctx, 1)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if credits.Available != 2500 || credits.Total != 2500 {
		t.Fatalf("初始化额度不符: available=%d total=%d", credits.Available, credits.Total)
	}
}

func TestCreditRepo_ConsumeClampsToAvailable(t *testing.T) {
	db := setupCreditTestDB(t)
	repo := NewCreditRepository(db)
	ctx := context.Background()

	repo.Init(ctx, 1, 3, time.Now().AddDate(0, 1, 0))

	// 超出余额时只扣到余额
	used, err := repo.Consume(ctx, 1, 10)
	if err != nil {
		t.Fatalf("扣减失败: %v", err)
	}
	if used != 3 {
		t.Fatalf("期望实际扣减 3, 实际 %d", used)
	}

	// 余额归零后再扣返回 0
	used, err = repo.Consume(ctx, 1, 1)
	if err != nil {
		t.Fatalf("扣减失败: %v", err)
	}
	if used != 0 {
		t.Fatalf("余额为零时期望扣减 0, 实际 %d", used)
	}

	credits, _ := repo.Get(ctx, 1)
	if credits.Available != 0 {
		t.Fatalf("余额应为 0, 实际 %d", credits.Available)
	}
}

func TestCreditRepo_ConsumeMissingLedger(t *testing.T) {
	db := setupCreditTestDB(t)
	repo := NewCreditRepository(db)

	if _, err := repo.Consume(context.Background(), 99, 1); err != ErrCreditsNotFound {
		t.Fatalf("无账本时应返回 ErrCreditsNotFound, 实际 %v", err)
	}
}

// ==================== 并发安全 ====================

// 多协程并发扣减同一账本，余额不为负且总扣减不超过初始余额
func TestCreditRepo_ConcurrentConsumeNeverOverdraws(t *testing.T) {
	db := setupCreditTestDB(t)
	repo := NewCreditRepository(db)
	ctx := context.Background()

	const initial = 20
	repo.Init(ctx, 1, initial, time.Now().AddDate(0, 1, 0))

	const workers = 10
	results := make([]int, workers)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			used, err := repo.Consume(ctx, 1, 3)
			if err != nil {
				t.Errorf("协程 %d 扣减失败: %v", idx, err)
				return
			}
			results[idx] = used
		}(i)
	}
	wg.Wait()

	sum := 0
	for _, used := range results {
		sum += used
	}
	if sum > initial {
		t.Fatalf("并发扣减总量 %d 超过初始余额 %d", sum, initial)
	}

	credits, _ := repo.Get(ctx, 1)
	if credits.Available < 0 {
		t.Fatalf("余额被扣为负数: %d", credits.Available)
	}
	if credits.Available+sum != initial {
		t.Fatalf("余额与扣减量不守恒: available=%d sum=%d", credits.Available, sum)
	}
}

// ==================== 充值与重置 ====================

func TestCreditRepo_Grant(t *testing.T) {
	db := setupCreditTestDB(t)
	repo := NewCreditRepository(db)
	ctx := context.Background()

	repo.Init(ctx, 1, 50, time.Now().AddDate(0, 1, 0))
	repo.Consume(ctx, 1, 20)

	if err := repo.Grant(ctx, 1, 100); err != nil {
		t.Fatalf("充值失败: %v", err)
	}

	credits, _ := repo.Get(ctx, 1)
	if credits.Available != 130 {
		t.Fatalf("充值后余额应为 130, 实际 %d", credits.Available)
	}
	if credits.Total != 150 {
		t.Fatalf("充值后总额应为 150, 实际 %d", credits.Total)
	}
	if credits.LastPurchased == nil {
		t.Fatal("充值后应记录购买时间")
	}

	if err := repo.Grant(ctx, 99, 10); err != ErrCreditsNotFound {
		t.Fatalf("无账本充值应返回 ErrCreditsNotFound, 实际 %v", err)
	}
}

func TestCreditRepo_ResetAndListDue(t *testing.T) {
	db := setupCreditTestDB(t)
	repo := NewCreditRepository(db)
	ctx := context.Background()

	// 账本 1 已到期，账本 2 未到期
	repo.Init(ctx, 1, 50, time.Now().Add(-time.Hour))
	repo.Init(ctx, 2, 50, time.Now().AddDate(0, 1, 0))
	repo.Consume(ctx, 1, 30)

	due, err := repo.ListResetDue(ctx, time.Now())
	if err != nil {
		t.Fatalf("查询到期账本失败: %v", err)
	}
	if len(due) != 1 || due[0].ShopID != 1 {
		t.Fatalf("到期账本应只有店铺 1, 实际 %v", due)
	}

	nextReset := time.Now().AddDate(0, 1, 0)
	if err := repo.Reset(ctx, 1, 2500, nextReset); err != nil {
		t.Fatalf("重置失败: %v", err)
	}

	credits, _ := repo.Get(ctx, 1)
	if credits.Available != 2500 || credits.Total != 2500 {
		t.Fatalf("重置后额度不符: available=%d total=%d", credits.Available, credits.Total)
	}

	due, _ = repo.ListResetDue(ctx, time.Now())
	if len(due) != 0 {
		t.Fatalf("重置后不应再有到期账本, 实际 %d 个", len(due))
	}
}
