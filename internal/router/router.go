package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"shopcopy_v1_202602/internal/controller"
	"shopcopy_v1_202602/internal/middleware"

	_ "shopcopy_v1_202602/docs"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	limiter *middleware.SlidingWindowLimiter,
	requestLimit int,
	enrichCtl *controller.EnrichController,
	creditsCtl *controller.CreditsController,
	settingsCtl *controller.SettingsController) {
	// 1. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 2. API 路由组
	api := r.Group("/api")
	{
		// enrich 生成流水线
		enrich := api.Group("/enrich")
		enrich.Use(middleware.RateLimit(limiter, requestLimit))
		{
			// POST /api/enrich/analyze
			enrich.POST("/analyze", enrichCtl.AnalyzeBatch)
			// GET /api/enrich/status
			enrich.GET("/status", enrichCtl.GetStatus)
		}

		// credits 额度管理
		credits := api.Group("/credits")
		{
			credits.GET("", creditsCtl.GetCredits)
			credits.POST("/purchase", creditsCtl.PurchaseCredits)
			credits.POST("/plan", creditsCtl.UpdatePlan)
		}

		// settings 店铺设置
		settings := api.Group("/settings")
		{
			settings.GET("", settingsCtl.GetSettings)
			settings.PUT("", settingsCtl.UpdateSettings)
		}
	}
}
