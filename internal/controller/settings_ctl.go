package controller

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopcopy_v1_202602/internal/api/dto"
	"shopcopy_v1_202602/internal/repository"
)

type SettingsController struct {
	shopRepo repository.ShopRepository
}

func NewSettingsController(shopRepo repository.ShopRepository) *SettingsController {
	return &SettingsController{shopRepo: shopRepo}
}

// GetSettings 获取店铺设置
// @Summary 获取店铺的生成配置
// @Tags Settings
// @Param shop_id query int true "店铺ID"
// @Success 200 {object} dto.SettingsResp
// @Router /api/settings [get]
func (ctrl *SettingsController) GetSettings(c *gin.Context) {
	shopID, err := strconv.ParseInt(c.Query("shop_id"), 10, 64)
	if err != nil || shopID <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的 shop_id"})
		return
	}

	settings, err := ctrl.shopRepo.GetSettings(c.Request.Context(), shopID)
	if err != nil {
		if errors.Is(err, repository.ErrSettingsNotFound) {
			c.JSON(404, gin.H{"code": 404, "message": "店铺设置不存在"})
			return
		}
		c.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	c.JSON(200, dto.SettingsResp{Code: 0, Message: "success", Data: settings})
}

// UpdateSettings 更新店铺设置
// @Summary 部分更新店铺的生成配置，未传字段保持不变
// @Tags Settings
// @Param request body dto.UpdateSettingsReq true "设置更新请求"
// @Success 200 {object} dto.SettingsResp
// @Router /api/settings [put]
func (ctrl *SettingsController) UpdateSettings(c *gin.Context) {
	var req dto.UpdateSettingsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	fields := settingsUpdateFields(&req)
	if len(fields) == 0 {
		c.JSON(400, gin.H{"code": 400, "message": "没有需要更新的字段"})
		return
	}

	ctx := c.Request.Context()
	if err := ctrl.shopRepo.UpdateSettings(ctx, req.ShopID, fields); err != nil {
		if errors.Is(err, repository.ErrSettingsNotFound) {
			c.JSON(404, gin.H{"code": 404, "message": "店铺设置不存在"})
			return
		}
		c.JSON(500, gin.H{"code": 500, "message": "更新失败: " + err.Error()})
		return
	}

	settings, err := ctrl.shopRepo.GetSettings(ctx, req.ShopID)
	if err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}
	c.JSON(200, dto.SettingsResp{Code: 0, Message: "success", Data: settings})
}

// settingsUpdateFields 只收集请求中实际出现的字段
func settingsUpdateFields(req *dto.UpdateSettingsReq) map[string]interface{} {
	fields := make(map[string]interface{})

	if req.DefaultTone != nil {
		fields["default_tone"] = *req.DefaultTone
	}
	if req.IncludeMeta != nil {
		fields["include_meta"] = *req.IncludeMeta
	}
	if req.AutoSave != nil {
		fields["auto_save"] = *req.AutoSave
	}
	if req.ProductTitleTemplate != nil {
		fields["product_title_template"] = *req.ProductTitleTemplate
	}
	if req.ProductDescTemplate != nil {
		fields["product_desc_template"] = *req.ProductDescTemplate
	}
	if req.MetaTitleTemplate != nil {
		fields["meta_title_template"] = *req.MetaTitleTemplate
	}
	if req.MetaDescTemplate != nil {
		fields["meta_desc_template"] = *req.MetaDescTemplate
	}
	if req.VisualAnalysisDepth != nil {
		fields["visual_analysis_depth"] = *req.VisualAnalysisDepth
	}
	if req.AutoDetectType != nil {
		fields["auto_detect_type"] = *req.AutoDetectType
	}
	if req.EnhancedMaterials != nil {
		fields["enhanced_materials"] = *req.EnhancedMaterials
	}
	if req.ColorAnalysis != nil {
		fields["color_analysis"] = *req.ColorAnalysis
	}
	if req.EmailUpdates != nil {
		fields["email_updates"] = *req.EmailUpdates
	}
	if req.CreditAlerts != nil {
		fields["credit_alerts"] = *req.CreditAlerts
	}
	if req.ProductUpdates != nil {
		fields["product_updates"] = *req.ProductUpdates
	}

	return fields
}
