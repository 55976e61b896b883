package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
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

type apiEnvelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func setupCommissionHandlerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:admin_commission_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&models.Admin{},
		&models.Representative{},
		&models.Customer{},
		&models.Order{},
		&models.CommissionEntry{},
		&models.SettlementSnapshot{},
		&models.SyncJob{},
		&models.Notification{},
		&models.AuthzAuditLog{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{Commission: config.CommissionConfig{BatchSize: 2, DefaultPercent: 5}}
	c := &provider.Container{
		Config:             cfg,
		AdminRepo:          repository.NewAdminRepository(db),
		OrderRepo:          repository.NewOrderRepository(db),
		CommissionRepo:     repository.NewCommissionRepository(db),
		SettlementRepo:     repository.NewSettlementRepository(db),
		SyncJobRepo:        repository.NewSyncJobRepository(db),
		RepresentativeRepo: repository.NewRepresentativeRepository(db),
		CustomerRepo:       repository.NewCustomerRepository(db),
		NotificationRepo:   repository.NewNotificationRepository(db),
	}
	c.EmailService = service.NewEmailService(&cfg.Email)
	c.NotificationService = service.NewNotificationService(c.NotificationRepo, c.AdminRepo, c.EmailService, nil)
	c.CommissionSyncService = service.NewCommissionSyncService(cfg.Commission, c.OrderRepo, c.CommissionRepo)
	c.SyncJobService = service.NewSyncJobService(cfg.Commission, c.SyncJobRepo, c.CommissionSyncService, c.NotificationService, nil)
	c.ReassignmentService = service.NewReassignmentService(c.OrderRepo, c.CommissionRepo, c.CustomerRepo, c.RepresentativeRepo, c.SettlementRepo)
	c.CommissionService = service.NewCommissionService(c.CommissionRepo, c.SettlementRepo, c.ReassignmentService)

	h := New(c)
	r := gin.New()
	r.Use(func(ctx *gin.Context) {
		ctx.Set("admin_id", uint(1))
		ctx.Set("username", "ana")
		ctx.Next()
	})
	r.GET("/commission-sync/stream", h.StreamCommissionSync)
	r.GET("/commission-sync/jobs", h.GetCommissionSyncJobs)
	r.GET("/commission-sync/jobs/:id", h.GetCommissionSyncJob)
	r.GET("/commissions", h.GetCommissions)
	r.POST("/commissions/generate", h.GenerateCommission)
	r.POST("/commissions/adjust", h.AdjustCommission)
	r.GET("/settlements/:id", h.GetSettlement)
	r.GET("/notifications", h.GetNotifications)
	r.GET("/orders", h.GetOrders)
	return r, db
}

func seedHandlerOrder(t *testing.T, db *gorm.DB, numero string, pago float64) *models.Order {
	t.Helper()
	order := &models.Order{
		Numero:              numero,
		Status:              constants.OrderStatusPaid,
		ClienteNome:         "Mercado Central",
		RepresentanteCodigo: "R001",
		RepresentanteNome:   "Ana Souza",
		ValorTotal:          models.NewMoneyFromFloat(pago),
		TotalPago:           models.NewMoneyFromFloat(pago),
		SaldoRestante:       models.NewMoneyFromFloat(0),
		DataPagamento:       "2026-03-10",
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func seedHandlerEntry(t *testing.T, db *gorm.DB, pedidoID uint, status string) *models.CommissionEntry {
	t.Helper()
	entry := &models.CommissionEntry{
		PedidoID:        pedidoID,
		Status:          status,
		ValorBase:       models.NewMoneyFromFloat(1000),
		Percentual:      models.NewMoneyFromFloat(5),
		ValorComissao:   models.NewMoneyFromFloat(50),
		DataCompetencia: "2026-03-01",
		MesCompetencia:  "2026-03",
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("create entry failed: %v", err)
	}
	return entry
}

func performJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) apiEnvelope {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("%s %s: unexpected http status %d", method, path, w.Code)
	}
	var resp apiEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v body=%s", err, w.Body.String())
	}
	return resp
}

func TestAdjustCommissionUpdateBase(t *testing.T) {
	r, db := setupCommissionHandlerTest(t)
	order := seedHandlerOrder(t, db, "P-1", 1000)
	entry := seedHandlerEntry(t, db, order.ID, constants.CommissionStatusOpen)

	resp := performJSON(t, r, http.MethodPost, "/commissions/adjust", map[string]interface{}{
		"action":     constants.CommissionActionUpdateBase,
		"entry_id":   entry.ID,
		"valor_base": "1200",
	})
	if resp.StatusCode != 0 {
		t.Fatalf("expected success, got %d %s", resp.StatusCode, resp.Msg)
	}
	var result struct {
		Action   string `json:"action"`
		Comissao struct {
			ValorComissao string `json:"valor_comissao"`
			Observacao    string `json:"observacao"`
		} `json:"comissao"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		t.Fatalf("decode data failed: %v", err)
	}
	if result.Action != constants.CommissionActionUpdateBase || result.Comissao.ValorComissao != "60.00" {
		t.Fatalf("unexpected adjust result: %+v", result)
	}
	if !strings.Contains(result.Comissao.Observacao, "Ajuste manual por ana") {
		t.Fatalf("note should name the admin, got %q", result.Comissao.Observacao)
	}
}

func TestAdjustCommissionErrors(t *testing.T) {
	r, db := setupCommissionHandlerTest(t)
	order := seedHandlerOrder(t, db, "P-1", 1000)
	closed := seedHandlerEntry(t, db, order.ID, constants.CommissionStatusClosed)

	cases := []struct {
		name string
		body map[string]interface{}
		want int
	}{
		{name: "closed entry", body: map[string]interface{}{"action": constants.CommissionActionUpdateBase, "entry_id": closed.ID, "valor_base": 10}, want: 409},
		{name: "missing entry", body: map[string]interface{}{"action": constants.CommissionActionUpdateBase, "entry_id": 999, "valor_base": 10}, want: 404},
		{name: "invalid percent", body: map[string]interface{}{"action": constants.CommissionActionUpdateBase, "entry_id": closed.ID, "percentual": 120}, want: 400},
		{name: "unknown action", body: map[string]interface{}{"action": "apagar"}, want: 400},
		{name: "missing action", body: map[string]interface{}{"entry_id": closed.ID}, want: 400},
		{name: "transfer without representative", body: map[string]interface{}{"action": constants.CommissionActionTransfer, "pedido_id": order.ID}, want: 400},
		{name: "transfer to unknown representative", body: map[string]interface{}{"action": constants.CommissionActionTransfer, "pedido_id": order.ID, "novo_representante_codigo": "R404"}, want: 404},
	}
	for _, tc := range cases {
		resp := performJSON(t, r, http.MethodPost, "/commissions/adjust", tc.body)
		if resp.StatusCode != tc.want {
			t.Fatalf("%s: want status_code %d got %d (%s)", tc.name, tc.want, resp.StatusCode, resp.Msg)
		}
	}
}

func TestGenerateCommissionAndList(t *testing.T) {
	r, db := setupCommissionHandlerTest(t)
	order := seedHandlerOrder(t, db, "P-1", 800)

	resp := performJSON(t, r, http.MethodPost, "/commissions/generate", map[string]interface{}{"pedido_id": order.ID})
	if resp.StatusCode != 0 {
		t.Fatalf("generate failed: %d %s", resp.StatusCode, resp.Msg)
	}
	var generated service.GenerateResult
	if err := json.Unmarshal(resp.Data, &generated); err != nil {
		t.Fatalf("decode generate result failed: %v", err)
	}
	if generated.Status != constants.GenerateStatusCreated || generated.Comissao == nil || generated.Comissao.ValorComissao.String() != "40.00" {
		t.Fatalf("unexpected generate result: %+v", generated)
	}

	if resp := performJSON(t, r, http.MethodPost, "/commissions/generate", map[string]interface{}{"pedido_id": 999}); resp.StatusCode != 404 {
		t.Fatalf("expected 404 for unknown order, got %d", resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/commissions?pedido_id=%d&mes=2026-03", order.ID), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var page struct {
		StatusCode int                      `json:"status_code"`
		Data       []models.CommissionEntry `json:"data"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode list failed: %v", err)
	}
	if page.StatusCode != 0 || page.Pagination.Total != 1 || len(page.Data) != 1 || page.Data[0].PedidoID != order.ID {
		t.Fatalf("unexpected list response: %s", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/commissions?busca=mercado", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode search failed: %v", err)
	}
	if page.Pagination.Total != 1 {
		t.Fatalf("expected search by customer to match, got %s", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/commissions?busca=inexistente", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode empty search failed: %v", err)
	}
	if page.Pagination.Total != 0 {
		t.Fatalf("expected empty search result, got %s", w.Body.String())
	}
}

func TestGetOrdersShowsCommissionLink(t *testing.T) {
	r, db := setupCommissionHandlerTest(t)
	order := seedHandlerOrder(t, db, "P-77", 500)
	seedHandlerOrder(t, db, "P-78", 300)

	if resp := performJSON(t, r, http.MethodPost, "/commissions/generate", map[string]interface{}{"pedido_id": order.ID}); resp.StatusCode != 0 {
		t.Fatalf("generate failed: %+v", resp)
	}

	req := httptest.NewRequest(http.MethodGet, "/orders?busca=p-77", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var page struct {
		StatusCode int            `json:"status_code"`
		Data       []models.Order `json:"data"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode orders failed: %v", err)
	}
	if page.StatusCode != 0 || page.Pagination.Total != 1 || len(page.Data) != 1 {
		t.Fatalf("unexpected orders response: %s", w.Body.String())
	}
	if page.Data[0].ComissaoEntryID == nil || page.Data[0].ComissaoLastSync == nil {
		t.Fatalf("expected commission link on order, got %+v", page.Data[0])
	}
}

func TestGetSettlement(t *testing.T) {
	r, db := setupCommissionHandlerTest(t)
	snapshot := &models.SettlementSnapshot{RepresentanteCodigo: "R001", MesAno: "2026-03", Status: constants.SettlementStatusOpen}
	if err := db.Create(snapshot).Error; err != nil {
		t.Fatalf("create snapshot failed: %v", err)
	}

	if resp := performJSON(t, r, http.MethodGet, fmt.Sprintf("/settlements/%d", snapshot.ID), nil); resp.StatusCode != 0 {
		t.Fatalf("expected success, got %d", resp.StatusCode)
	}
	if resp := performJSON(t, r, http.MethodGet, "/settlements/999", nil); resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if resp := performJSON(t, r, http.MethodGet, "/settlements/abc", nil); resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCommissionSyncJobQueries(t *testing.T) {
	r, db := setupCommissionHandlerTest(t)
	job := &models.SyncJob{Status: constants.SyncJobStatusQueued, Solicitante: "ana"}
	if err := db.Create(job).Error; err != nil {
		t.Fatalf("create job failed: %v", err)
	}

	resp := performJSON(t, r, http.MethodGet, fmt.Sprintf("/commission-sync/jobs/%d", job.ID), nil)
	if resp.StatusCode != 0 || !strings.Contains(string(resp.Data), constants.SyncJobStatusQueued) {
		t.Fatalf("unexpected job response: %d %s", resp.StatusCode, string(resp.Data))
	}
	if resp := performJSON(t, r, http.MethodGet, "/commission-sync/jobs/404", nil); resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	resp = performJSON(t, r, http.MethodGet, "/commission-sync/jobs?status="+constants.SyncJobStatusConcluded, nil)
	var jobs []models.SyncJob
	if err := json.Unmarshal(resp.Data, &jobs); err != nil {
		t.Fatalf("decode jobs failed: %v", err)
	}
	if resp.StatusCode != 0 || len(jobs) != 0 {
		t.Fatalf("expected empty list, got %s", string(resp.Data))
	}
}

func TestStreamCommissionSync(t *testing.T) {
	r, db := setupCommissionHandlerTest(t)
	for i := 0; i < 3; i++ {
		seedHandlerOrder(t, db, fmt.Sprintf("P-%d", i), 1000)
	}

	req := httptest.NewRequest(http.MethodGet, "/commission-sync/stream", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("unexpected content type: %s", ct)
	}
	body := w.Body.String()
	if n := strings.Count(body, "event:"+streamEventName); n != 5 {
		t.Fatalf("expected 5 progress events, got %d: %s", n, body)
	}
	for _, phase := range []string{constants.StreamPhaseStarting, constants.StreamPhaseProcessing, constants.StreamPhaseConcluded} {
		if !strings.Contains(body, `"fase":"`+phase+`"`) {
			t.Fatalf("stream missing phase %s: %s", phase, body)
		}
	}
	if strings.Index(body, `"fase":"`+constants.StreamPhaseConcluded+`"`) < strings.LastIndex(body, `"fase":"`+constants.StreamPhaseProcessing+`"`) {
		t.Fatalf("concluded must be the last phase: %s", body)
	}

	var count int64
	if err := db.Model(&models.CommissionEntry{}).Count(&count).Error; err != nil {
		t.Fatalf("count entries failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 entries written by the stream, got %d", count)
	}
}

func TestGetNotificationsForCurrentAdmin(t *testing.T) {
	r, db := setupCommissionHandlerTest(t)
	for _, n := range []models.Notification{
		{Destinatario: "ana", Titulo: "A", Prioridade: constants.NotificationPriorityNormal},
		{Destinatario: "bruno", Titulo: "B", Prioridade: constants.NotificationPriorityNormal},
	} {
		if err := db.Create(&n).Error; err != nil {
			t.Fatalf("create notification failed: %v", err)
		}
	}

	resp := performJSON(t, r, http.MethodGet, "/notifications", nil)
	var items []models.Notification
	if err := json.Unmarshal(resp.Data, &items); err != nil {
		t.Fatalf("decode notifications failed: %v", err)
	}
	if len(items) != 1 || items[0].Titulo != "A" {
		t.Fatalf("expected only the admin's notification, got %+v", items)
	}
}
