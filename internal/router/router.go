package router

import (
	"net/http"
	"sort"
	"strings"

	"github.com/comissoes-next/internal/authz"
	"github.com/comissoes-next/internal/cache"
	"github.com/comissoes-next/internal/config"
	adminhandlers "github.com/comissoes-next/internal/http/handlers/admin"
	internalhandlers "github.com/comissoes-next/internal/http/handlers/internalapi"
	"github.com/comissoes-next/internal/http/response"
	"github.com/comissoes-next/internal/logger"
	"github.com/comissoes-next/internal/provider"

	"github.com/gin-gonic/gin"
)

func rateLimitRule(name string, cfg config.RateLimitConfig, messageKey string) RateLimitRule {
	return RateLimitRule{
		Prefix:        cache.Prefix() + ":rate:" + name,
		WindowSeconds: cfg.WindowSeconds,
		MaxRequests:   cfg.MaxAttempts,
		MessageKey:    messageKey,
	}
}

// SetupRouter 组装中间件与路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggerMiddleware(log), CORSMiddleware(cfg.CORS))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiV1 := r.Group("/api/v1")

	// 定时器与运维脚本触发
	internal := apiV1.Group("/internal", InternalTokenMiddleware(cfg.Internal.Token))
	internal.POST("/commission-sync/run", internalhandlers.New(c).RunCommissionSyncJob)

	registerAdminRoutes(r, apiV1.Group("/admin"), cfg, c)
	return r
}

func registerAdminRoutes(engine *gin.Engine, admin *gin.RouterGroup, cfg *config.Config, c *provider.Container) {
	h := adminhandlers.New(c)
	redisClient := cache.Client()
	loginLimit := RateLimitMiddleware(redisClient, rateLimitRule("admin_login", cfg.Security.LoginRateLimit, "error.login_too_many"), KeyByIPAndJSONField("username"))
	streamLimit := RateLimitMiddleware(redisClient, rateLimitRule("commission_stream", cfg.Security.StreamRateLimit, "error.stream_too_many"), KeyByAdmin)

	admin.POST("/login", loginLimit, h.AdminLogin)

	authorized := admin.Group("", JWTAuthMiddleware(c.AuthService), AdminRBACMiddleware(c.AuthzService))
	authorized.POST("/logout", h.AdminLogout)

	// 同步任务与交互式同步
	authorized.POST("/commission-sync/jobs", h.CreateCommissionSyncJob)
	authorized.GET("/commission-sync/jobs", h.GetCommissionSyncJobs)
	authorized.GET("/commission-sync/jobs/:id", h.GetCommissionSyncJob)
	authorized.GET("/commission-sync/stream", streamLimit, h.StreamCommissionSync)

	// 台账
	authorized.GET("/commissions", h.GetCommissions)
	authorized.POST("/commissions/generate", h.GenerateCommission)
	authorized.POST("/commissions/adjust", h.AdjustCommission)
	authorized.GET("/settlements/:id", h.GetSettlement)
	authorized.GET("/orders", h.GetOrders)

	authorized.GET("/notifications", h.GetNotifications)

	// 权限
	authorized.GET("/authz/me", h.GetAuthzMe)
	authorized.GET("/authz/roles", h.ListAuthzRoles)
	authorized.GET("/authz/admins/:id/roles", h.GetAuthzAdminRoles)
	authorized.PUT("/authz/admins/:id/roles", h.SetAuthzAdminRoles)
	authorized.GET("/authz/audit-logs", h.ListAuthzAuditLogs)
	authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
		response.Success(ctx, buildAdminPermissionCatalog(engine.Routes()))
	})
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// buildAdminPermissionCatalog 由已注册的管理端路由生成可授权项，登录接口除外
func buildAdminPermissionCatalog(routes gin.RoutesInfo) []adminPermissionCatalogItem {
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))
	for _, route := range routes {
		method := strings.ToUpper(route.Method)
		if method == http.MethodOptions || method == http.MethodHead {
			continue
		}
		if !strings.HasPrefix(route.Path, "/api/v1/admin/") || route.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(route.Path)
		permission := method + ":" + object
		if _, dup := seen[permission]; dup {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Module != b.Module {
			return a.Module < b.Module
		}
		if a.Object != b.Object {
			return a.Object < b.Object
		}
		return a.Method < b.Method
	})
	return items
}

// deriveAdminPermissionModule 取 /admin/ 之后的第一段作为模块名，台账相关路由归入 commissions
func deriveAdminPermissionModule(object string) string {
	segments := strings.Split(strings.Trim(object, "/"), "/")
	if segments[0] == "" {
		return "system"
	}
	if segments[0] != "admin" || len(segments) == 1 {
		return segments[0]
	}
	switch segments[1] {
	case "commission-sync", "commissions", "settlements", "orders":
		return "commissions"
	}
	return segments[1]
}
