package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"shopcopy_v1_202602/internal/model"
	"shopcopy_v1_202602/internal/repository"
)

// ==================== 错误定义 ====================

var (
	// ErrInsufficientCredits 余额不足，整批拒绝
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrNoImage 商品没有可用图片
	ErrNoImage = errors.New("no image available")
)

// ==================== 请求/响应结构 ====================

// BatchRequest 批量生成请求，提交后即被完全消费，不落库
type BatchRequest struct {
	ShopID        int64
	ProductIDs    []string
	CollectionIDs []string
	Tone          string
	UpdateMeta    bool
}

// BatchEstimate 提交时同步返回的预估，处理结果通过状态查询获取
type BatchEstimate struct {
	BatchID          string `json:"batchId"`
	EstimatedUnits   int    `json:"estimatedUnits"`
	EstimatedCredits int    `json:"estimatedCredits"`
}

// Pagination 分页信息
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// BatchStatus 状态查询结果：记录、分页、各状态计数与总进度
type BatchStatus struct {
	Records         []model.GenerationHistory `json:"records"`
	Pagination      Pagination                `json:"pagination"`
	StatusCounts    map[string]int64          `json:"statusCounts"`
	OverallProgress int                       `json:"overallProgress"`
}

// ==================== 生成流水线服务 ====================

// EnrichService 批量生成流水线：展开、预估、扣费校验、并发处理
type EnrichService struct {
	catalog     CatalogClient
	generator   Generator
	credits     *CreditService
	historyRepo repository.HistoryRepository
	shopRepo    repository.ShopRepository

	// concurrency 单批次内同时处理的商品数
	concurrency int
}

func NewEnrichService(
	catalog CatalogClient,
	generator Generator,
	credits *CreditService,
	historyRepo repository.HistoryRepository,
	shopRepo repository.ShopRepository,
	concurrency int,
) *EnrichService {
	if concurrency <= 0 {
		concurrency = 3
	}
	return &EnrichService{
		catalog:     catalog,
		generator:   generator,
		credits:     credits,
		historyRepo: historyRepo,
		shopRepo:    shopRepo,
		concurrency: concurrency,
	}
}

// ==================== 批次提交 ====================

// SubmitBatch 展开请求、预估费用并校验余额，通过后异步处理整批
// 同步只返回预估，单品结果通过 Status 查询
func (s *EnrichService) SubmitBatch(ctx context.Context, req *BatchRequest) (*BatchEstimate, error) {
	shop, err := s.shopRepo.GetByID(ctx, req.ShopID)
	if err != nil {
		return nil, err
	}
	settings, err := s.shopRepo.GetSettings(ctx, req.ShopID)
	if err != nil {
		return nil, err
	}

	units, err := s.expandQueue(ctx, shop, req.ProductIDs, req.CollectionIDs)
	if err != nil {
		return nil, fmt.Errorf("展开商品列表失败: %w", err)
	}
	if len(units) == 0 {
		return nil, fmt.Errorf("没有待处理的商品")
	}

	perUnit := 1
	if req.UpdateMeta {
		perUnit = 2
	}
	required := len(units) * perUnit

	// 首次提交的店铺先建立额度账户
	if err := s.credits.Initialize(ctx, req.ShopID, shop.Plan); err != nil {
		return nil, err
	}
	enough, err := s.credits.HasEnough(ctx, req.ShopID, required)
	if err != nil {
		return nil, err
	}
	if !enough {
		return nil, fmt.Errorf("%w: 需要 %d", ErrInsufficientCredits, required)
	}

	batchID := uuid.New().String()
	log.Printf("[EnrichTask] 批次 %s 已受理: shop=%d, 商品 %d 个, 预估额度 %d", batchID, req.ShopID, len(units), required)

	tone := req.Tone
	if tone == "" {
		tone = settings.DefaultTone
	}

	// 处理与请求生命周期脱钩，结果只进历史表
	go s.processBatch(shop, settings, batchID, units, tone, req.UpdateMeta)

	return &BatchEstimate{
		BatchID:          batchID,
		EstimatedUnits:   len(units),
		EstimatedCredits: required,
	}, nil
}

// expandQueue 直接商品 ID 与合集成员合并展开，按商品 GID 去重
// 重复商品只处理一次，预估也只按去重后的数量计算
func (s *EnrichService) expandQueue(ctx context.Context, shop *model.Shop, productIDs, collectionIDs []string) ([]string, error) {
	seen := make(map[string]bool)
	var units []string

	add := func(id string) {
		gid := productGID(id)
		if seen[gid] {
			return
		}
		seen[gid] = true
		units = append(units, gid)
	}

	for _, id := range productIDs {
		add(id)
	}

	for _, collectionID := range collectionIDs {
		cursor := ""
		for {
			page, err := s.catalog.FetchCollectionMembers(ctx, shop, collectionID, cursor)
			if err != nil {
				return nil, fmt.Errorf("获取合集 %s 成员失败: %w", collectionID, err)
			}
			for _, id := range page.ItemIDs {
				add(id)
			}
			if !page.HasNext {
				break
			}
			cursor = page.NextCursor
		}
	}

	return units, nil
}

// ==================== 批次处理 ====================

// processBatch 有界并发处理整批，单品失败互不影响
func (s *EnrichService) processBatch(shop *model.Shop, settings *model.ShopSettings, batchID string, units []string, tone string, updateMeta bool) {
	ctx := context.Background()
	start := time.Now()
	log.Printf("[EnrichTask] 批次 %s 开始处理, 共 %d 个商品", batchID, len(units))

	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for _, productID := range units {
		wg.Add(1)
		sem <- struct{}{}

		go func(productID string) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := s.processItem(ctx, shop, settings, batchID, productID, tone, updateMeta); err != nil {
				log.Printf("[EnrichTask] 批次 %s 商品 %s 处理失败: %v", batchID, productID, err)
			}
		}(productID)
	}

	wg.Wait()
	log.Printf("[EnrichTask] 批次 %s 处理完成, 耗时 %v", batchID, time.Since(start))
}

// processItem 单品状态机：取详情 → 图像分析 → 生成描述 → 写回 →（可选）生成 meta → 写回 → 完成
// 任一阶段失败即终止并记入历史，已消耗的额度不回退
func (s *EnrichService) processItem(ctx context.Context, shop *model.Shop, settings *model.ShopSettings, batchID, productID, tone string, updateMeta bool) error {
	record := &model.GenerationHistory{
		ShopID:    shop.ID,
		BatchID:   batchID,
		ProductID: productID,
		Status:    model.HistoryStatusProcessing,
	}
	if err := s.historyRepo.Create(ctx, record); err != nil {
		return fmt.Errorf("创建历史记录失败: %w", err)
	}

	// 取详情
	item, err := s.catalog.FetchItemDetail(ctx, shop, productID)
	if err != nil {
		return s.markError(ctx, record, fmt.Errorf("获取商品详情失败: %w", err))
	}
	if err := s.historyRepo.UpdateFields(ctx, record.ID, map[string]interface{}{
		"product_title": item.Title,
		"original_desc": item.Description,
	}); err != nil {
		return s.markError(ctx, record, err)
	}

	// 选代表图
	imageURL := item.PrimaryImageURL()
	if imageURL == "" {
		return s.markError(ctx, record, ErrNoImage)
	}

	// 图像分析
	analysis, err := s.generator.AnalyzeImage(ctx, imageURL, settings.VisualAnalysisDepth)
	if err != nil {
		return s.markError(ctx, record, err)
	}

	// 生成描述
	descTemplate := settings.ProductDescTemplate
	if descTemplate == "" {
		descTemplate = DefaultDescTemplate
	}
	description, err := s.generator.GenerateDescription(ctx, item, analysis, tone, descTemplate)
	if err != nil {
		return s.markError(ctx, record, err)
	}

	// 写回描述：生成为空时跳过写回，但本阶段额度照常消耗
	if description != "" {
		if err := s.catalog.WriteDescription(ctx, shop, productID, description); err != nil {
			return s.markError(ctx, record, fmt.Errorf("写回描述失败: %w", err))
		}
	} else {
		log.Printf("[EnrichTask] 商品 %s 描述生成为空, 跳过写回", productID)
	}

	creditsUsed := 0
	if used, err := s.credits.Use(ctx, shop.ID, 1); err != nil {
		log.Printf("[EnrichTask] 商品 %s 扣减额度失败: %v", productID, err)
	} else {
		creditsUsed += used
	}

	fields := map[string]interface{}{
		"generated_desc": description,
		"credits_used":   creditsUsed,
	}
	if analysisJSON, err := json.Marshal(analysis); err == nil {
		fields["image_analysis"] = datatypes.JSON(analysisJSON)
	}
	if err := s.historyRepo.UpdateFields(ctx, record.ID, fields); err != nil {
		return s.markError(ctx, record, err)
	}

	// 可选的 meta 阶段
	if updateMeta {
		meta, err := s.generator.GenerateMeta(ctx, item, analysis, settings.MetaTitleTemplate, settings.MetaDescTemplate)
		if err != nil {
			return s.markError(ctx, record, err)
		}

		// meta 阶段的额度在写回前消耗，与内容是否为空无关
		if used, err := s.credits.Use(ctx, shop.ID, 1); err != nil {
			log.Printf("[EnrichTask] 商品 %s 扣减额度失败: %v", productID, err)
		} else {
			creditsUsed += used
		}

		if !meta.IsEmpty() {
			if err := s.catalog.WriteSeo(ctx, shop, productID, meta.Title, meta.Description); err != nil {
				return s.markError(ctx, record, fmt.Errorf("写回 SEO 失败: %w", err))
			}
		} else {
			log.Printf("[EnrichTask] 商品 %s meta 生成为空, 跳过写回", productID)
		}

		metaFields := map[string]interface{}{
			"credits_used": creditsUsed,
		}
		if metaJSON, err := json.Marshal(meta); err == nil {
			metaFields["generated_meta"] = datatypes.JSON(metaJSON)
		}
		if err := s.historyRepo.UpdateFields(ctx, record.ID, metaFields); err != nil {
			return s.markError(ctx, record, err)
		}
	}

	now := time.Now()
	return s.historyRepo.UpdateFields(ctx, record.ID, map[string]interface{}{
		"status":       model.HistoryStatusCompleted,
		"completed_at": &now,
	})
}

// markError 单品失败：落错误状态与时间戳，返回原始错误
func (s *EnrichService) markError(ctx context.Context, record *model.GenerationHistory, cause error) error {
	now := time.Now()
	if err := s.historyRepo.UpdateFields(ctx, record.ID, map[string]interface{}{
		"status":       model.HistoryStatusError,
		"error":        cause.Error(),
		"completed_at": &now,
	}); err != nil {
		log.Printf("[EnrichTask] 记录 %d 写入错误状态失败: %v", record.ID, err)
	}
	return cause
}

// ==================== 状态查询 ====================

// Status 分页查询历史记录，附各状态计数与总进度
func (s *EnrichService) Status(ctx context.Context, filter repository.HistoryFilter) (*BatchStatus, error) {
	records, total, err := s.historyRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	counts, err := s.historyRepo.CountByStatus(ctx, filter)
	if err != nil {
		return nil, err
	}

	var countTotal, terminal int64
	for status, n := range counts {
		countTotal += n
		if status == model.HistoryStatusCompleted || status == model.HistoryStatusError {
			terminal += n
		}
	}
	progress := 0
	if countTotal > 0 {
		progress = int(math.Round(float64(terminal) / float64(countTotal) * 100))
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return &BatchStatus{
		Records: records,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
		StatusCounts:    counts,
		OverallProgress: progress,
	}, nil
}
