package admin

import (
	handlershared "github.com/grabgarden/admin-api/internal/http/handlers/shared"
	"github.com/grabgarden/admin-api/internal/provider"

	"github.com/gin-gonic/gin"
)

// Handler 后台管理接口处理器入口
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "admin_id")
}
