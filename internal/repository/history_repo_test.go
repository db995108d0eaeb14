package repository

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopcopy_v1_202602/internal/model"
)

// ==================== 测试辅助 ====================

func setupHistoryTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取底层 SQL DB 失败: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.GenerationHistory{}); err != nil {
		t.Fatalf("自动建表失败: %v", err)
	}
	return db
}

func seedHistory(t *testing.T, repo HistoryRepository, shopID int64, batchID, productID, status string, creditsUsed int) *model.GenerationHistory {
	t.Helper()
	record := &model.GenerationHistory{
		ShopID:      shopID,
		BatchID:     batchID,
		ProductID:   productID,
		Status:      status,
		CreditsUsed: creditsUsed,
	}
	if err := repo.Create(context.Background(), record); err != nil {
		t.Fatalf("写入测试记录失败: %v", err)
	}
	return record
}

// ==================== 查询与更新 ====================

func TestHistoryRepo_ListFiltersAndPaging(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewHistoryRepository(db)
	ctx := context.Background()

	seedHistory(t, repo, 1, "batch-a", "gid://shopify/Product/1", model.HistoryStatusCompleted, 1)
	seedHistory(t, repo, 1, "batch-a", "gid://shopify/Product/2", model.HistoryStatusError, 0)
	seedHistory(t, repo, 1, "batch-b", "gid://shopify/Product/3", model.HistoryStatusProcessing, 0)
	seedHistory(t, repo, 2, "batch-c", "gid://shopify/Product/4", model.HistoryStatusCompleted, 2)

	// 店铺过滤
	records, total, err := repo.List(ctx, HistoryFilter{ShopID: 1})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if total != 3 || len(records) != 3 {
		t.Fatalf("店铺 1 应有 3 条记录, 实际 total=%d len=%d", total, len(records))
	}

	// 批次过滤
	_, total, _ = repo.List(ctx, HistoryFilter{ShopID: 1, BatchID: "batch-a"})
	if total != 2 {
		t.Fatalf("batch-a 应有 2 条记录, 实际 %d", total)
	}

	// 状态过滤
	records, _, _ = repo.List(ctx, HistoryFilter{ShopID: 1, Status: model.HistoryStatusError})
	if len(records) != 1 || records[0].ProductID != "gid://shopify/Product/2" {
		t.Fatalf("状态过滤结果不符: %v", records)
	}

	// 分页：total 不受分页影响
	records, total, _ = repo.List(ctx, HistoryFilter{ShopID: 1, Page: 1, PageSize: 2})
	if total != 3 || len(records) != 2 {
		t.Fatalf("分页结果不符: total=%d len=%d", total, len(records))
	}
}

func TestHistoryRepo_UpdateFields(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewHistoryRepository(db)
	ctx := context.Background()

	record := seedHistory(t, repo, 1, "batch-a", "gid://shopify/Product/1", model.HistoryStatusProcessing, 0)

	now := time.Now()
	err := repo.UpdateFields(ctx, record.ID, map[string]interface{}{
		"status":         model.HistoryStatusCompleted,
		"generated_desc": "<p>新描述</p>",
		"credits_used":   2,
		"completed_at":   &now,
	})
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}

	got, err := repo.GetByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if got.Status != model.HistoryStatusCompleted || got.CreditsUsed != 2 {
		t.Fatalf("更新未生效: status=%s credits=%d", got.Status, got.CreditsUsed)
	}
	if got.CompletedAt == nil {
		t.Fatal("completed_at 未写入")
	}
}

// ==================== 统计 ====================

func TestHistoryRepo_CountByStatusIgnoresStatusFilter(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewHistoryRepository(db)
	ctx := context.Background()

	seedHistory(t, repo, 1, "batch-a", "p1", model.HistoryStatusCompleted, 1)
	seedHistory(t, repo, 1, "batch-a", "p2", model.HistoryStatusCompleted, 1)
	seedHistory(t, repo, 1, "batch-a", "p3", model.HistoryStatusError, 0)
	seedHistory(t, repo, 1, "batch-a", "p4", model.HistoryStatusProcessing, 0)

	// 即使带了状态过滤，统计仍覆盖全部状态
	stats, err := repo.CountByStatus(ctx, HistoryFilter{ShopID: 1, Status: model.HistoryStatusError})
	if err != nil {
		t.Fatalf("统计失败: %v", err)
	}
	if stats[model.HistoryStatusCompleted] != 2 {
		t.Fatalf("completed 应为 2, 实际 %d", stats[model.HistoryStatusCompleted])
	}
	if stats[model.HistoryStatusError] != 1 {
		t.Fatalf("error 应为 1, 实际 %d", stats[model.HistoryStatusError])
	}
	if stats[model.HistoryStatusProcessing] != 1 {
		t.Fatalf("processing 应为 1, 实际 %d", stats[model.HistoryStatusProcessing])
	}
}

func TestHistoryRepo_SumCreditsUsedSince(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewHistoryRepository(db)
	ctx := context.Background()

	seedHistory(t, repo, 1, "batch-a", "p1", model.HistoryStatusCompleted, 2)
	seedHistory(t, repo, 1, "batch-a", "p2", model.HistoryStatusCompleted, 1)
	seedHistory(t, repo, 2, "batch-b", "p3", model.HistoryStatusCompleted, 5)

	total, err := repo.SumCreditsUsedSince(ctx, 1, time.Now().AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("统计失败: %v", err)
	}
	if total != 3 {
		t.Fatalf("7 天用量应为 3, 实际 %d", total)
	}

	// 未来时间点之后没有记录
	total, _ = repo.SumCreditsUsedSince(ctx, 1, time.Now().Add(time.Hour))
	if total != 0 {
		t.Fatalf("无记录时应返回 0, 实际 %d", total)
	}
}

// ==================== 孤儿清理 ====================

func TestHistoryRepo_CloseStaleProcessing(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewHistoryRepository(db)
	ctx := context.Background()

	stale := seedHistory(t, repo, 1, "batch-a", "p1", model.HistoryStatusProcessing, 0)
	fresh := seedHistory(t, repo, 1, "batch-a", "p2", model.HistoryStatusProcessing, 0)
	done := seedHistory(t, repo, 1, "batch-a", "p3", model.HistoryStatusCompleted, 1)

	// 把 stale 的创建时间拨回 25 小时前
	db.Model(&model.GenerationHistory{}).
		Where("id = ?", stale.ID).
		UpdateColumn("created_at", time.Now().Add(-25*time.Hour))

	closed, err := repo.CloseStaleProcessing(ctx, time.Now().Add(-24*time.Hour), "处理超时")
	if err != nil {
		t.Fatalf("清理失败: %v", err)
	}
	if closed != 1 {
		t.Fatalf("应只关闭 1 条记录, 实际 %d", closed)
	}

	got, _ := repo.GetByID(ctx, stale.ID)
	if got.Status != model.HistoryStatusError || got.Error != "处理超时" {
		t.Fatalf("孤儿记录未被正确关闭: status=%s error=%s", got.Status, got.Error)
	}

	got, _ = repo.GetByID(ctx, fresh.ID)
	if got.Status != model.HistoryStatusProcessing {
		t.Fatalf("新记录不应被关闭: %s", got.Status)
	}
	got, _ = repo.GetByID(ctx, done.ID)
	if got.Status != model.HistoryStatusCompleted {
		t.Fatalf("已完成记录不应被改动: %s", got.Status)
	}
}
