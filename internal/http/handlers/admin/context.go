package admin

import (
	"strconv"
	"strings"
	"time"

	handlershared "github.com/comissoes-next/internal/http/handlers/shared"
	"github.com/comissoes-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.AdminID(c)
}

// getAdminUsername 作为台账与任务中的操作人
func getAdminUsername(c *gin.Context) string {
	username, _ := c.Get("username")
	s, _ := username.(string)
	return strings.TrimSpace(s)
}

// parseIDParam 非正整数时已写入 400 响应
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id := parseUint(c.Param(name))
	if id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return id, true
}

func queryUint(c *gin.Context, key string) uint {
	return parseUint(c.Query(key))
}

func parseUint(raw string) uint {
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 0)
	if err != nil {
		return 0
	}
	return uint(v)
}

// parseOptionalTime RFC3339，空串返回 nil
func parseOptionalTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
