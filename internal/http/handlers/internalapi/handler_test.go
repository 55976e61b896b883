package internalapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/comissoes-next/internal/config"
	"github.com/comissoes-next/internal/constants"
	"github.com/comissoes-next/internal/models"
	"github.com/comissoes-next/internal/provider"
	"github.com/comissoes-next/internal/repository"
	"github.com/comissoes-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupInternalHandlerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:internal_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.Admin{}, &models.Order{}, &models.CommissionEntry{}, &models.SyncJob{}, &models.Notification{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := config.CommissionConfig{BatchSize: 10, DefaultPercent: 5}
	notificationRepo := repository.NewNotificationRepository(db)
	notifier := service.NewNotificationService(notificationRepo, repository.NewAdminRepository(db), service.NewEmailService(&config.EmailConfig{}), nil)
	syncSvc := service.NewCommissionSyncService(cfg, repository.NewOrderRepository(db), repository.NewCommissionRepository(db))
	c := &provider.Container{
		SyncJobService: service.NewSyncJobService(cfg, repository.NewSyncJobRepository(db), syncSvc, notifier, nil),
	}

	r := gin.New()
	r.POST("/commission-sync/run", New(c).RunCommissionSyncJob)
	return r, db
}

func postRun(t *testing.T, r *gin.Engine, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/commission-sync/run", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var resp struct {
		StatusCode int                    `json:"status_code"`
		Data       map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v body=%s", err, w.Body.String())
	}
	return resp.StatusCode, resp.Data
}

func TestRunCommissionSyncJob(t *testing.T) {
	r, db := setupInternalHandlerTest(t)
	order := &models.Order{
		Numero:        "P-1",
		Status:        constants.OrderStatusPaid,
		TotalPago:     models.NewMoneyFromFloat(1000),
		SaldoRestante: models.NewMoneyFromFloat(0),
		DataPagamento: "2026-03-10",
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	job := &models.SyncJob{Status: constants.SyncJobStatusQueued, Solicitante: "ana"}
	if err := db.Create(job).Error; err != nil {
		t.Fatalf("create job failed: %v", err)
	}

	code, data := postRun(t, r, fmt.Sprintf(`{"job_id":%d}`, job.ID))
	if code != 0 || data["success"] != true {
		t.Fatalf("expected successful run, got code=%d data=%v", code, data)
	}
	resultado, ok := data["resultado"].(map[string]interface{})
	if !ok || resultado["criados"] != float64(1) {
		t.Fatalf("unexpected resultado: %v", data["resultado"])
	}

	if code, _ := postRun(t, r, fmt.Sprintf(`{"job_id":%d}`, job.ID)); code != 409 {
		t.Fatalf("finished job should conflict, got %d", code)
	}
	if code, _ := postRun(t, r, `{"job_id":404}`); code != 404 {
		t.Fatalf("missing job should be 404, got %d", code)
	}
	if code, _ := postRun(t, r, `{}`); code != 400 {
		t.Fatalf("missing job_id should be 400, got %d", code)
	}
}
