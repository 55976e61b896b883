package admin

import (
	"errors"
	"time"

	"github.com/comissoes-next/internal/http/response"
	"github.com/comissoes-next/internal/service"

	"github.com/gin-gonic/gin"
)

type loginPayload struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginAdmin struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	IsSuper  bool   `json:"is_super"`
}

type loginResult struct {
	Token     string     `json:"token"`
	User      loginAdmin `json:"user"`
	ExpiresAt string     `json:"expires_at"`
}

// AdminLogin 管理员登录
func (h *Handler) AdminLogin(c *gin.Context) {
	var req loginPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	admin, token, expiresAt, err := h.AuthService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, response.CodeUnauthorized, "error.invalid_credentials", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.login_failed", err)
		return
	}
	response.Success(c, loginResult{
		Token:     token,
		User:      loginAdmin{ID: admin.ID, Username: admin.Username, IsSuper: admin.IsSuper},
		ExpiresAt: expiresAt.Format(time.RFC3339),
	})
}

// AdminLogout 注销当前管理员的全部 Token
func (h *Handler) AdminLogout(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	if err := h.AuthService.Logout(c.Request.Context(), adminID); err != nil {
		respondError(c, response.CodeInternal, "error.logout_failed", err)
		return
	}
	response.Success(c, gin.H{"admin_id": adminID})
}
