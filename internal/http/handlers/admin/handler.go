package admin

import "github.com/comissoes-next/internal/provider"

// Handler 佣金后台接口，依赖统一从容器注入
type Handler struct {
	*provider.Container
}

func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
