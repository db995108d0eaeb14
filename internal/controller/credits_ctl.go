package controller

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopcopy_v1_202602/internal/api/dto"
	"shopcopy_v1_202602/internal/repository"
	"shopcopy_v1_202602/internal/service"
)

type CreditsController struct {
	creditService *service.CreditService
}

func NewCreditsController(creditService *service.CreditService) *CreditsController {
	return &CreditsController{creditService: creditService}
}

// GetCredits 获取额度概览
// @Summary 获取店铺额度概览：余额、距重置天数、近7天用量趋势
// @Tags Credits
// @Param shop_id query int true "店铺ID"
// @Success 200 {object} dto.CreditsResp
// @Router /api/credits [get]
func (ctrl *CreditsController) GetCredits(c *gin.Context) {
	shopID, err := strconv.ParseInt(c.Query("shop_id"), 10, 64)
	if err != nil || shopID <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的 shop_id"})
		return
	}

	summary, err := ctrl.creditService.Summary(c.Request.Context(), shopID)
	if err != nil {
		if errors.Is(err, repository.ErrShopNotFound) || errors.Is(err, repository.ErrCreditsNotFound) {
			c.JSON(404, gin.H{"code": 404, "message": "额度账户不存在"})
			return
		}
		c.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	c.JSON(200, dto.CreditsResp{Code: 0, Message: "success", Data: summary})
}

// PurchaseCredits 额度充值
// @Summary 为店铺充值额度，余额与总额同步增加
// @Tags Credits
// @Param request body dto.PurchaseCreditsReq true "充值请求"
// @Success 200 {object} dto.CreditsResp
// @Router /api/credits/purchase [post]
func (ctrl *CreditsController) PurchaseCredits(c *gin.Context) {
	var req dto.PurchaseCreditsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	if err := ctrl.creditService.Add(c.Request.Context(), req.ShopID, req.Amount); err != nil {
		if errors.Is(err, repository.ErrCreditsNotFound) {
			c.JSON(404, gin.H{"code": 404, "message": "额度账户不存在"})
			return
		}
		c.JSON(500, gin.H{"code": 500, "message": "充值失败: " + err.Error()})
		return
	}

	summary, err := ctrl.creditService.Summary(c.Request.Context(), req.ShopID)
	if err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}
	c.JSON(200, dto.CreditsResp{Code: 0, Message: "success", Data: summary})
}

// UpdatePlan 变更套餐
// @Summary 更新店铺套餐并按新套餐重置额度
// @Tags Credits
// @Param request body dto.UpdatePlanReq true "套餐变更请求"
// @Success 200 {object} dto.CreditsResp
// @Router /api/credits/plan [post]
func (ctrl *CreditsController) UpdatePlan(c *gin.Context) {
	var req dto.UpdatePlanReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	if err := ctrl.creditService.UpdatePlan(c.Request.Context(), req.ShopID, req.Plan); err != nil {
		if errors.Is(err, repository.ErrShopNotFound) || errors.Is(err, repository.ErrCreditsNotFound) {
			c.JSON(404, gin.H{"code": 404, "message": "店铺或额度账户不存在"})
			return
		}
		c.JSON(400, gin.H{"code": 400, "message": "套餐变更失败: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{"code": 0, "message": "success"})
}
