package router

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/comissoes-next/internal/authz"
	handlershared "github.com/comissoes-next/internal/http/handlers/shared"
	"github.com/comissoes-next/internal/http/response"
	"github.com/comissoes-next/internal/logger"
	"github.com/comissoes-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDHeader        = "X-Request-ID"
	internalTokenHeader    = "X-Internal-Token"
	adminIsSuperContextKey = "admin_is_super"
)

// RequestIDMiddleware 沿用上游 X-Request-ID，没有则生成 UUID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(response.RequestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// LoggerMiddleware 访问日志；5xx 记 error，4xx 记 warn，健康检查不记录
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.L()
	}
	sugar := log.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.Request.URL.Path == "/health" {
			return
		}

		status := c.Writer.Status()
		fields := []interface{}{
			"request_id", response.RequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if adminID, ok := c.Get("admin_id"); ok {
			fields = append(fields, "admin_id", adminID)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}
		switch {
		case status >= 500 || len(c.Errors) > 0:
			sugar.Errorw("request", fields...)
		case status >= 400:
			sugar.Warnw("request", fields...)
		default:
			sugar.Infow("request", fields...)
		}
	}
}

func abortUnauthorized(c *gin.Context, key string) {
	response.Unauthorized(c, handlershared.Message(key))
	c.Abort()
}

func bearerToken(c *gin.Context) string {
	scheme, token, found := strings.Cut(c.GetHeader("Authorization"), " ")
	if !found || scheme != "Bearer" {
		return ""
	}
	return strings.TrimSpace(token)
}

// JWTAuthMiddleware 校验管理员 Token，并把身份写入上下文
func JWTAuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" || authService == nil {
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		identity, err := authService.Authenticate(c.Request.Context(), token)
		switch {
		case errors.Is(err, service.ErrTokenExpired):
			abortUnauthorized(c, "error.token_expired")
			return
		case err != nil:
			if !errors.Is(err, service.ErrInvalidToken) {
				logger.Errorw("admin_authenticate_failed", "path", c.Request.URL.Path, "error", err)
			}
			abortUnauthorized(c, "error.token_invalid")
			return
		}

		c.Set("admin_id", identity.AdminID)
		c.Set("username", identity.Username)
		c.Set(adminIsSuperContextKey, identity.IsSuper)
		c.Next()
	}
}

// AdminRBACMiddleware 按路由模板与方法做 casbin 判定，超级管理员直接放行
func AdminRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authzService == nil {
			logger.Errorw("admin_rbac_service_unavailable")
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if c.GetBool(adminIsSuperContextKey) {
			c.Next()
			return
		}
		adminID, _ := c.Get("admin_id")
		id, _ := adminID.(uint)
		if id == 0 {
			abortUnauthorized(c, "error.unauthorized")
			return
		}

		resource := c.FullPath()
		if resource == "" {
			resource = c.Request.URL.Path
		}
		allowed, err := authzService.EnforceAdmin(id, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("admin_rbac_enforce_failed", "admin_id", id, "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if !allowed {
			logger.Warnw("admin_rbac_permission_denied", "admin_id", id, "method", c.Request.Method, "resource", authz.NormalizeObject(resource))
			response.Forbidden(c, handlershared.Message("error.forbidden"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// InternalTokenMiddleware 内部调用令牌校验，未配置令牌时一律拒绝
func InternalTokenMiddleware(token string) gin.HandlerFunc {
	expected := []byte(strings.TrimSpace(token))
	return func(c *gin.Context) {
		provided := []byte(strings.TrimSpace(c.GetHeader(internalTokenHeader)))
		if len(expected) == 0 || subtle.ConstantTimeCompare(provided, expected) != 1 {
			logger.Warnw("internal_token_rejected", "path", c.Request.URL.Path, "client_ip", c.ClientIP())
			abortUnauthorized(c, "error.internal_token_invalid")
			return
		}
		c.Next()
	}
}
