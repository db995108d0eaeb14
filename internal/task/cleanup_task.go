package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"shopcopy_v1_202602/internal/repository"
)

// HistoryCleanupTask 清理长时间停留在 processing 的历史记录
// 进程重启或协程异常退出会留下孤儿记录，超时后统一关闭为 error
type HistoryCleanupTask struct {
	HistoryRepo repository.HistoryRepository
	Cron        *cron.Cron

	// staleAfter 超过该时长仍为 processing 的记录视为孤儿
	staleAfter time.Duration
}

func NewHistoryCleanupTask(historyRepo repository.HistoryRepository) *HistoryCleanupTask {
	return &HistoryCleanupTask{
		HistoryRepo: historyRepo,
		Cron:        cron.New(cron.WithSeconds()),
		staleAfter:  24 * time.Hour,
	}
}

// Start 启动定时任务
func (t *HistoryCleanupTask) Start() {
	// 每 6 小时执行一次
	_, err := t.Cron.AddFunc("0 0 0/6 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		t.cleanupJob(ctx)
	})

	if err != nil {
		log.Fatalf("无法启动历史清理定时任务: %v", err)
	}

	t.Cron.Start()
	log.Println("历史记录清理任务已启动 (每6小时执行一次)")
}

// Stop 停止定时任务
func (t *HistoryCleanupTask) Stop() {
	t.Cron.Stop()
	log.Println("历史记录清理任务已停止")
}

func (t *HistoryCleanupTask) cleanupJob(ctx context.Context) {
	before := time.Now().Add(-t.staleAfter)
	closed, err := t.HistoryRepo.CloseStaleProcessing(ctx, before, "处理超时，已由系统关闭")
	if err != nil {
		log.Printf("[Cron] 孤儿历史记录清理失败: %v", err)
		return
	}
	if closed > 0 {
		log.Printf("[Cron] 已关闭 %d 条超时的处理中记录", closed)
	}
}
