package shared

import (
	"github.com/grabgarden/admin-api/internal/http/response"
	"github.com/grabgarden/admin-api/internal/service"
)

// PromoCodeErrorRules 后台与结算接口共用的优惠码错误映射
var PromoCodeErrorRules = []MappedError{
	{Target: service.ErrPromoCodeNotFound, Code: response.CodeNotFound, Key: "error.promo_code_not_found"},
	{Target: service.ErrPromoCodeInvalid, Code: response.CodeBadRequest, Key: "error.promo_code_invalid"},
	{Target: service.ErrPromoConfigInvalid, Code: response.CodeUnprocessable, Key: "error.promo_config_invalid"},
	{Target: service.ErrCartInvalid, Code: response.CodeBadRequest, Key: "error.cart_invalid"},
}
