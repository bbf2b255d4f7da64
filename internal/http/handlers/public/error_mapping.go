package public

import (
	handlershared "github.com/grabgarden/admin-api/internal/http/handlers/shared"
	"github.com/grabgarden/admin-api/internal/http/response"
	"github.com/grabgarden/admin-api/internal/service"
)

var checkoutPreviewErrorRules = handlershared.PromoCodeErrorRules

var checkoutRedeemErrorRules = handlershared.ConcatMappedErrors(
	handlershared.PromoCodeErrorRules,
	[]handlershared.MappedError{
		{Target: service.ErrOrderRefRequired, Code: response.CodeBadRequest, Key: "error.order_ref_required"},
		{Target: service.ErrPromoRedeemConflict, Code: response.CodeConflict, Key: "error.promo_redeem_conflict"},
		{Target: service.ErrPromoOrderRefConflict, Code: response.CodeConflict, Key: "error.promo_order_ref_conflict"},
	},
)

var checkoutReleaseErrorRules = []handlershared.MappedError{
	{Target: service.ErrOrderRefRequired, Code: response.CodeBadRequest, Key: "error.order_ref_required"},
	{Target: service.ErrPromoUsageNotFound, Code: response.CodeNotFound, Key: "error.promo_usage_not_found"},
}
