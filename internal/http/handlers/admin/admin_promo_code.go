package admin

import (
	"strconv"
	"strings"
	"time"

	handlershared "github.com/grabgarden/admin-api/internal/http/handlers/shared"
	"github.com/grabgarden/admin-api/internal/http/response"
	"github.com/grabgarden/admin-api/internal/i18n"
	"github.com/grabgarden/admin-api/internal/models"
	"github.com/grabgarden/admin-api/internal/repository"
	"github.com/grabgarden/admin-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

var promoCodeAdminErrorRules = handlershared.ConcatMappedErrors(
	handlershared.PromoCodeErrorRules,
	[]handlershared.MappedError{
		{Target: service.ErrPromoCodeExists, Code: response.CodeConflict, Key: "error.promo_code_exists"},
		{Target: service.ErrPromoModeInvalid, Code: response.CodeBadRequest, Key: "error.promo_mode_invalid"},
		{Target: service.ErrPromoExpiryInvalid, Code: response.CodeBadRequest, Key: "error.promo_expiry_invalid"},
		{Target: service.ErrPromoMaxUsesBelowUsed, Code: response.CodeConflict, Key: "error.promo_max_uses_below_used"},
		{Target: service.ErrPromoProductsInvalid, Code: response.CodeBadRequest, Key: "error.promo_products_invalid"},
	},
)

// PromoCodeRequest 创建/更新优惠码请求
// 与模式无关的金额字段会被忽略并清空。
type PromoCodeRequest struct {
	Code               string           `json:"code" binding:"required"`
	Description        string           `json:"description"`
	Mode               string           `json:"mode" binding:"required"`
	Value              *decimal.Decimal `json:"value"`
	MaxDiscount        *decimal.Decimal `json:"max_discount"`
	BundleMinItems     *int             `json:"bundle_min_items"`
	BundlePrice        *decimal.Decimal `json:"bundle_price"`
	EligibleProductIDs []uint           `json:"eligible_product_ids"`
	MinimumOrder       decimal.Decimal  `json:"minimum_order"`
	ExpiryDate         string           `json:"expiry_date" binding:"required"`
	MaxUses            *int             `json:"max_uses"`
	OneTimeUsePerUser  bool             `json:"one_time_use_per_user"`
	IsActive           *bool            `json:"is_active"`
}

func (r PromoCodeRequest) toServiceInput() service.PromoCodeInput {
	return service.PromoCodeInput{
		Code:               r.Code,
		Description:        r.Description,
		Mode:               r.Mode,
		Value:              r.Value,
		MaxDiscount:        r.MaxDiscount,
		BundleMinItems:     r.BundleMinItems,
		BundlePrice:        r.BundlePrice,
		EligibleProductIDs: r.EligibleProductIDs,
		MinimumOrder:       r.MinimumOrder,
		ExpiryDate:         r.ExpiryDate,
		MaxUses:            r.MaxUses,
		OneTimeUsePerUser:  r.OneTimeUsePerUser,
		IsActive:           r.IsActive,
	}
}

// PromoCodeResponse 后台优惠码展示结构，截止日期按 YYYY-MM-DD 输出
type PromoCodeResponse struct {
	models.PromoCode
	ExpiryDate    string `json:"expiry_date"`
	RemainingUses *int   `json:"remaining_uses"`
}

func toPromoCodeResponse(row *models.PromoCode) PromoCodeResponse {
	resp := PromoCodeResponse{
		PromoCode:  *row,
		ExpiryDate: service.FormatExpiryDate(row.ExpiryDate),
	}
	if row.MaxUses != nil {
		remaining := *row.MaxUses - row.UsedCount
		if remaining < 0 {
			remaining = 0
		}
		resp.RemainingUses = &remaining
	}
	return resp
}

// CreatePromoCode 创建优惠码
func (h *Handler) CreatePromoCode(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req PromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	row, err := h.PromoCodeAdminService.Create(c.Request.Context(), adminID, req.toServiceInput())
	if err != nil {
		handlershared.RespondMappedError(c, err, promoCodeAdminErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, toPromoCodeResponse(row))
}

// UpdatePromoCode 更新优惠码，已使用次数保持不变
func (h *Handler) UpdatePromoCode(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req PromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	row, err := h.PromoCodeAdminService.Update(c.Request.Context(), adminID, id, req.toServiceInput())
	if err != nil {
		handlershared.RespondMappedError(c, err, promoCodeAdminErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, toPromoCodeResponse(row))
}

// DeletePromoCode 删除优惠码
func (h *Handler) DeletePromoCode(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.PromoCodeAdminService.Delete(c.Request.Context(), adminID, id); err != nil {
		handlershared.RespondMappedError(c, err, promoCodeAdminErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, nil)
}

// PromoCodeStatusRequest 启停请求
type PromoCodeStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// SetPromoCodeStatus 启用/停用优惠码
func (h *Handler) SetPromoCodeStatus(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req PromoCodeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	row, err := h.PromoCodeAdminService.SetActive(c.Request.Context(), adminID, id, *req.IsActive)
	if err != nil {
		handlershared.RespondMappedError(c, err, promoCodeAdminErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, toPromoCodeResponse(row))
}

// GetPromoCode 获取优惠码详情
func (h *Handler) GetPromoCode(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	row, err := h.PromoCodeAdminService.GetByID(id)
	if err != nil {
		handlershared.RespondMappedError(c, err, promoCodeAdminErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, toPromoCodeResponse(row))
}

// ListPromoCodes 优惠码列表
// 支持 code（子串）、mode、is_active 过滤。
func (h *Handler) ListPromoCodes(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.PromoCodeListFilter{
		Page:     page,
		PageSize: pageSize,
		Code:     strings.TrimSpace(c.Query("code")),
		Mode:     strings.ToUpper(strings.TrimSpace(c.Query("mode"))),
	}
	if raw := strings.TrimSpace(c.Query("is_active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		filter.IsActive = &active
	}

	rows, total, err := h.PromoCodeAdminService.List(filter)
	if err != nil {
		handlershared.RespondMappedError(c, err, promoCodeAdminErrorRules, response.CodeInternal, "error.internal")
		return
	}
	items := make([]PromoCodeResponse, 0, len(rows))
	for i := range rows {
		items = append(items, toPromoCodeResponse(&rows[i]))
	}
	response.SuccessWithPage(c, items, response.NewPagination(page, pageSize, total))
}

// ListPromoCodeUsages 优惠码核销记录
func (h *Handler) ListPromoCodeUsages(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	usages, total, err := h.PromoCodeAdminService.ListUsages(id, page, pageSize)
	if err != nil {
		handlershared.RespondMappedError(c, err, promoCodeAdminErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.SuccessWithPage(c, usages, response.NewPagination(page, pageSize, total))
}

// SimulatePromoCodeRequest 后台试算请求
// at 为 RFC3339 时间，用于验证截止日边界；为空时取当前时间。
type SimulatePromoCodeRequest struct {
	Items  []handlershared.CartLineRequest `json:"items"`
	UserID uint                           `json:"user_id"`
	At     string                         `json:"at"`
}

// SimulatePromoCode 使用给定购物车试算优惠码，不写库，不检查每人限用
func (h *Handler) SimulatePromoCode(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req SimulatePromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	input := service.SimulateInput{Items: handlershared.ToCartLines(req.Items), UserID: req.UserID}
	if raw := strings.TrimSpace(req.At); raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		input.Now = &at
	}

	evaluation, err := h.PromoCodeAdminService.Simulate(id, input)
	if err != nil {
		handlershared.RespondMappedError(c, err, promoCodeAdminErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.SuccessWithMsg(c, i18n.PromoResultMessage(i18n.ResolveLocale(c), evaluation.Result.Applied, string(evaluation.Result.Reason)), evaluation)
}
