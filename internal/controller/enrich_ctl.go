package controller

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopcopy_v1_202602/internal/api/dto"
	"shopcopy_v1_202602/internal/repository"
	"shopcopy_v1_202602/internal/service"
)

type EnrichController struct {
	enrichService *service.EnrichService
}

func NewEnrichController(enrichService *service.EnrichService) *EnrichController {
	return &EnrichController{enrichService: enrichService}
}

// ==================== 批量生成 ====================

// AnalyzeBatch 提交批量生成
// @Summary 提交批量文案生成，同步返回预估，结果通过状态接口轮询
// @Tags Enrich
// @Param request body dto.AnalyzeBatchReq true "批量请求"
// @Success 200 {object} dto.AnalyzeBatchResp
// @Router /api/enrich/analyze [post]
func (ctrl *EnrichController) AnalyzeBatch(c *gin.Context) {
	var req dto.AnalyzeBatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}
	if len(req.ProductIDs) == 0 && len(req.CollectionIDs) == 0 {
		c.JSON(400, gin.H{"code": 400, "message": "product_ids 与 collection_ids 至少提供一项"})
		return
	}

	estimate, err := ctrl.enrichService.SubmitBatch(c.Request.Context(), &service.BatchRequest{
		ShopID:        req.ShopID,
		ProductIDs:    req.ProductIDs,
		CollectionIDs: req.CollectionIDs,
		Tone:          req.Tone,
		UpdateMeta:    req.UpdateMeta,
	})
	if err != nil {
		if errors.Is(err, service.ErrInsufficientCredits) {
			c.JSON(402, gin.H{"code": 402, "message": "额度不足: " + err.Error()})
			return
		}
		if errors.Is(err, repository.ErrShopNotFound) || errors.Is(err, repository.ErrSettingsNotFound) {
			c.JSON(404, gin.H{"code": 404, "message": "店铺不存在或未初始化"})
			return
		}
		c.JSON(500, gin.H{"code": 500, "message": "提交失败: " + err.Error()})
		return
	}

	c.JSON(200, dto.AnalyzeBatchResp{
		Code:    0,
		Message: "success",
		Data: dto.AnalyzeBatchData{
			BatchID:          estimate.BatchID,
			EstimatedUnits:   estimate.EstimatedUnits,
			EstimatedCredits: estimate.EstimatedCredits,
		},
	})
}

// ==================== 状态查询 ====================

// GetStatus 查询处理状态
// @Summary 分页查询历史记录，附各状态计数与总进度
// @Tags Enrich
// @Param shop_id query int true "店铺ID"
// @Param batch_id query string false "批次ID筛选"
// @Param product_id query string false "商品ID筛选"
// @Param status query string false "状态筛选"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(50)
// @Success 200 {object} dto.StatusResp
// @Router /api/enrich/status [get]
func (ctrl *EnrichController) GetStatus(c *gin.Context) {
	shopID, err := strconv.ParseInt(c.Query("shop_id"), 10, 64)
	if err != nil || shopID <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的 shop_id"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	status, err := ctrl.enrichService.Status(c.Request.Context(), repository.HistoryFilter{
		ShopID:    shopID,
		BatchID:   c.Query("batch_id"),
		ProductID: c.Query("product_id"),
		Status:    c.Query("status"),
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	c.JSON(200, dto.StatusResp{
		Code:    0,
		Message: "success",
		Data:    status,
	})
}
