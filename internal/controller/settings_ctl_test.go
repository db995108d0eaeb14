package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopcopy_v1_202602/internal/model"
	"shopcopy_v1_202602/internal/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 测试辅助 ====================

func setupSettingsCtlTest(t *testing.T) (*gin.Engine, repository.ShopRepository, int64) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.ShopSettings{}); err != nil {
		t.Fatalf("自动建表失败: %v", err)
	}

	shopRepo := repository.NewShopRepository(db)
	settings := &model.ShopSettings{
		ShopID:              1,
		DefaultTone:         "professional",
		VisualAnalysisDepth: "standard",
		IncludeMeta:         true,
	}
	if err := shopRepo.CreateSettings(context.Background(), settings); err != nil {
		t.Fatalf("创建测试设置失败: %v", err)
	}

	ctl := NewSettingsController(shopRepo)
	r := gin.New()
	r.GET("/api/settings", ctl.GetSettings)
	r.PUT("/api/settings", ctl.UpdateSettings)
	return r, shopRepo, 1
}

// ==================== 查询与更新 ====================

func TestSettingsCtl_Get(t *testing.T) {
	r, _, _ := setupSettingsCtlTest(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/settings?shop_id=1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200, 实际 %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Code int `json:"code"`
		Data struct {
			DefaultTone string `json:"DefaultTone"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Code != 0 {
		t.Fatalf("业务码应为 0, 实际 %d", resp.Code)
	}
	if resp.Data.DefaultTone != "professional" {
		t.Fatalf("default_tone 不符: %s", resp.Data.DefaultTone)
	}
}

func TestSettingsCtl_GetMissingShop(t *testing.T) {
	r, _, _ := setupSettingsCtlTest(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/settings?shop_id=99", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("期望 404, 实际 %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("缺少 shop_id 期望 400, 实际 %d", w.Code)
	}
}

func TestSettingsCtl_PartialUpdate(t *testing.T) {
	r, shopRepo, shopID := setupSettingsCtlTest(t)

	body, _ := json.Marshal(map[string]interface{}{
		"shop_id":      shopID,
		"default_tone": "luxury",
	})
	req := httptest.NewRequest(http.MethodPut, "/api/settings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200, 实际 %d: %s", w.Code, w.Body.String())
	}

	got, err := shopRepo.GetSettings(context.Background(), shopID)
	if err != nil {
		t.Fatalf("查询设置失败: %v", err)
	}
	if got.DefaultTone != "luxury" {
		t.Fatalf("default_tone 未更新: %s", got.DefaultTone)
	}
	// 未传字段保持原值
	if got.VisualAnalysisDepth != "standard" || !got.IncludeMeta {
		t.Fatalf("未传字段不应被改动: %+v", got)
	}
}

func TestSettingsCtl_UpdateNoFields(t *testing.T) {
	r, _, shopID := setupSettingsCtlTest(t)

	body, _ := json.Marshal(map[string]interface{}{"shop_id": shopID})
	req := httptest.NewRequest(http.MethodPut, "/api/settings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("无更新字段期望 400, 实际 %d", w.Code)
	}
}
