package public

import (
	"github.com/grabgarden/admin-api/internal/provider"
)

// Handler 订单服务调用的结算接口处理器
type Handler struct {
	*provider.Container
}

// New 创建结算处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
