package admin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/comissoes-next/internal/authz"
	"github.com/comissoes-next/internal/models"
	"github.com/comissoes-next/internal/provider"
	"github.com/comissoes-next/internal/repository"
	"github.com/comissoes-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzHandlerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:admin_authz_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Admin{}, &models.AuthzAuditLog{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	authzService, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}

	c := &provider.Container{
		AdminRepo:         repository.NewAdminRepository(db),
		AuthzAuditLogRepo: repository.NewAuthzAuditLogRepository(db),
		AuthzService:      authzService,
	}
	c.AuthzAuditService = service.NewAuthzAuditService(c.AuthzAuditLogRepo)

	h := New(c)
	r := gin.New()
	r.Use(func(ctx *gin.Context) {
		ctx.Set("admin_id", uint(1))
		ctx.Set("username", "ana")
		ctx.Set("request_id", "req-authz")
		ctx.Next()
	})
	r.GET("/authz/admins/:id/roles", h.GetAuthzAdminRoles)
	r.PUT("/authz/admins/:id/roles", h.SetAuthzAdminRoles)
	r.GET("/authz/audit-logs", h.ListAuthzAuditLogs)
	r.GET("/authz/me", h.GetAuthzMe)
	return r, db
}

func TestSetAuthzAdminRolesRecordsAudit(t *testing.T) {
	r, db := setupAuthzHandlerTest(t)
	target := &models.Admin{Username: "bruno", PasswordHash: "x"}
	if err := db.Create(target).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	path := fmt.Sprintf("/authz/admins/%d/roles", target.ID)

	resp := performJSON(t, r, http.MethodPut, path, map[string]interface{}{"roles": []string{"commission_viewer"}})
	if resp.StatusCode != 0 {
		t.Fatalf("set roles failed: %+v", resp)
	}
	var roles []string
	if err := json.Unmarshal(resp.Data, &roles); err != nil {
		t.Fatalf("decode roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:commission_viewer" {
		t.Fatalf("unexpected roles: %v", roles)
	}

	// 相同角色再次设置不产生审计
	performJSON(t, r, http.MethodPut, path, map[string]interface{}{"roles": []string{"commission_viewer"}})
	performJSON(t, r, http.MethodPut, path, map[string]interface{}{"roles": []string{"commission_admin"}})

	resp = performJSON(t, r, http.MethodGet, fmt.Sprintf("/authz/audit-logs?target_admin_id=%d", target.ID), nil)
	if resp.StatusCode != 0 {
		t.Fatalf("list audit logs failed: %+v", resp)
	}
	var logs []models.AuthzAuditLog
	if err := json.Unmarshal(resp.Data, &logs); err != nil {
		t.Fatalf("decode audit logs failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 audit logs, got %d", len(logs))
	}
	latest := logs[0]
	if latest.OperatorUsername != "ana" || latest.TargetUsername != "bruno" || latest.RequestID != "req-authz" {
		t.Fatalf("unexpected audit log: %+v", latest)
	}
	removed, _ := latest.DetailJSON["removidos"].([]interface{})
	if len(removed) != 1 || removed[0] != "role:commission_viewer" {
		t.Fatalf("unexpected removed roles: %#v", latest.DetailJSON["removidos"])
	}
}

func TestAuthzHandlerErrors(t *testing.T) {
	r, db := setupAuthzHandlerTest(t)

	target := &models.Admin{Username: "carla", PasswordHash: "x"}
	if err := db.Create(target).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	resp := performJSON(t, r, http.MethodPut, fmt.Sprintf("/authz/admins/%d/roles", target.ID), map[string]interface{}{"roles": []string{"financeiro"}})
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400 for unknown role, got %+v", resp)
	}

	resp = performJSON(t, r, http.MethodPut, "/authz/admins/99/roles", map[string]interface{}{"roles": []string{"commission_viewer"}})
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404 for unknown admin, got %+v", resp)
	}
	resp = performJSON(t, r, http.MethodGet, "/authz/audit-logs?created_from=ontem", nil)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400 for invalid created_from, got %+v", resp)
	}
}

func TestGetAuthzMeListsPermissions(t *testing.T) {
	r, db := setupAuthzHandlerTest(t)
	operator := &models.Admin{Username: "ana", PasswordHash: "x"}
	if err := db.Create(operator).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	performJSON(t, r, http.MethodPut, fmt.Sprintf("/authz/admins/%d/roles", operator.ID), map[string]interface{}{"roles": []string{"commission_viewer"}})

	resp := performJSON(t, r, http.MethodGet, "/authz/me", nil)
	if resp.StatusCode != 0 {
		t.Fatalf("get me failed: %+v", resp)
	}
	var me struct {
		Roles       []string       `json:"roles"`
		Permissions []authz.Policy `json:"permissions"`
	}
	if err := json.Unmarshal(resp.Data, &me); err != nil {
		t.Fatalf("decode me failed: %v", err)
	}
	if len(me.Roles) != 1 || len(me.Permissions) == 0 {
		t.Fatalf("unexpected authz snapshot: %+v", me)
	}
}
