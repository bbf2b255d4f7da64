package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/grabgarden/admin-api/internal/http/handlers/shared"
	"github.com/grabgarden/admin-api/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListProducts 适用商品选择器使用的商品列表（仅上架商品）
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	products, total, err := h.ProductService.ListForPicker(strings.TrimSpace(c.Query("search")), page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}
