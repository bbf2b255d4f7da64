package public

import (
	handlershared "github.com/grabgarden/admin-api/internal/http/handlers/shared"
	"github.com/grabgarden/admin-api/internal/http/response"
	"github.com/grabgarden/admin-api/internal/i18n"
	"github.com/grabgarden/admin-api/internal/service"

	"github.com/gin-gonic/gin"
)

const checkoutUserContextKey = "checkout_user_id"

// PromoPreviewRequest 结算试算请求
type PromoPreviewRequest struct {
	Code  string                          `json:"code" binding:"required"`
	Items []handlershared.CartLineRequest `json:"items"`
}

// PromoRedeemRequest 核销请求；order_ref 作为幂等键
type PromoRedeemRequest struct {
	Code     string                          `json:"code" binding:"required"`
	OrderRef string                          `json:"order_ref" binding:"required"`
	Items    []handlershared.CartLineRequest `json:"items"`
}

// PromoReleaseRequest 订单取消后回滚核销
type PromoReleaseRequest struct {
	OrderRef string `json:"order_ref" binding:"required"`
}

// PreviewPromo 试算优惠，不占用名额
// 不可用原因属于正常结果，通过 applied=false 与 reason 返回。
func (h *Handler) PreviewPromo(c *gin.Context) {
	userID, ok := handlershared.GetContextUint(c, checkoutUserContextKey)
	if !ok {
		return
	}
	var req PromoPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	evaluation, err := h.CheckoutService.Preview(c.Request.Context(), service.PreviewInput{
		Code:   req.Code,
		UserID: userID,
		Items:  handlershared.ToCartLines(req.Items),
	})
	if err != nil {
		handlershared.RespondMappedError(c, err, checkoutPreviewErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.SuccessWithMsg(c, resultMessage(c, evaluation), evaluation)
}

// RedeemPromo 下单时核销优惠码；同一订单重复提交返回首次结果
func (h *Handler) RedeemPromo(c *gin.Context) {
	userID, ok := handlershared.GetContextUint(c, checkoutUserContextKey)
	if !ok {
		return
	}
	var req PromoRedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	redemption, err := h.CheckoutService.Redeem(c.Request.Context(), service.RedeemInput{
		Code:     req.Code,
		UserID:   userID,
		OrderRef: req.OrderRef,
		Items:    handlershared.ToCartLines(req.Items),
	})
	if err != nil {
		handlershared.RespondMappedError(c, err, checkoutRedeemErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.SuccessWithMsg(c, resultMessage(c, redemption.PromoEvaluation), redemption)
}

// ReleasePromo 回滚订单上的核销记录
func (h *Handler) ReleasePromo(c *gin.Context) {
	userID, ok := handlershared.GetContextUint(c, checkoutUserContextKey)
	if !ok {
		return
	}
	var req PromoReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.CheckoutService.Release(c.Request.Context(), req.OrderRef, userID)
	if err != nil {
		handlershared.RespondMappedError(c, err, checkoutReleaseErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, result)
}

func resultMessage(c *gin.Context, evaluation *service.PromoEvaluation) string {
	if evaluation == nil {
		return "success"
	}
	return i18n.PromoResultMessage(i18n.ResolveLocale(c), evaluation.Result.Applied, string(evaluation.Result.Reason))
}
