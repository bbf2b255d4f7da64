package i18n

var zhCN = map[string]string{
	"error.bad_request":               "请求参数错误",
	"error.unauthorized":              "未登录或登录已过期",
	"error.forbidden":                 "没有访问权限",
	"error.not_found":                 "资源不存在",
	"error.too_many_requests":         "请求过于频繁，请在 %d 秒后重试",
	"error.internal":                  "服务器内部错误",
	"error.login_invalid":             "用户名或密码错误",
	"error.captcha_required":          "请输入验证码",
	"error.captcha_invalid":           "验证码错误或已过期",
	"error.captcha_generate_failed":   "验证码生成失败",
	"error.token_invalid":             "登录凭证无效",
	"error.checkout_token_invalid":    "结算凭证无效",
	"error.promo_code_not_found":      "优惠码不存在",
	"error.promo_code_exists":         "优惠码已存在",
	"error.promo_code_invalid":        "优惠码格式不正确",
	"error.promo_mode_invalid":        "不支持的优惠模式",
	"error.promo_config_invalid":      "优惠码配置不完整或与模式不符",
	"error.promo_expiry_invalid":      "截止日期格式应为 YYYY-MM-DD",
	"error.promo_max_uses_below_used": "总使用上限不能小于已使用次数",
	"error.promo_products_invalid":    "适用商品不存在",
	"error.promo_redeem_conflict":     "优惠码使用人数过多，请稍后重试",
	"error.promo_order_ref_conflict":  "订单号已被其他用户使用",
	"error.promo_usage_not_found":     "订单没有核销记录",
	"error.cart_invalid":              "购物车数据不合法",
	"error.order_ref_required":        "缺少订单号",
	"error.role_invalid":              "角色不合法",
	"error.super_admin_required":      "仅超级管理员可操作",
	"promo.reason.InactiveCode":       "优惠码未启用",
	"promo.reason.Expired":            "优惠码已过期",
	"promo.reason.UsageLimitReached":  "优惠码已达使用上限",
	"promo.reason.AlreadyUsedByUser":  "您已使用过该优惠码",
	"promo.reason.BelowMinimumOrder":  "未达到使用门槛",
	"promo.reason.BundleNotMet":       "未满足组合件数要求",
	"promo.reason.EmptyCart":          "购物车为空",
	"promo.applied":                   "优惠已生效",
}

var enUS = map[string]string{
	"error.bad_request":               "Invalid request parameters",
	"error.unauthorized":              "Not signed in or session expired",
	"error.forbidden":                 "Permission denied",
	"error.not_found":                 "Resource not found",
	"error.too_many_requests":         "Too many requests, retry in %d seconds",
	"error.internal":                  "Internal server error",
	"error.login_invalid":             "Invalid username or password",
	"error.captcha_required":          "Captcha is required",
	"error.captcha_invalid":           "Captcha is wrong or expired",
	"error.captcha_generate_failed":   "Failed to generate captcha",
	"error.token_invalid":             "Invalid credentials",
	"error.checkout_token_invalid":    "Invalid checkout token",
	"error.promo_code_not_found":      "Promo code not found",
	"error.promo_code_exists":         "Promo code already exists",
	"error.promo_code_invalid":        "Promo code format is invalid",
	"error.promo_mode_invalid":        "Unsupported promo mode",
	"error.promo_config_invalid":      "Promo code configuration is incomplete or does not match its mode",
	"error.promo_expiry_invalid":      "Expiry date must be YYYY-MM-DD",
	"error.promo_max_uses_below_used": "Max uses cannot be lower than the current used count",
	"error.promo_products_invalid":    "Eligible products do not exist",
	"error.promo_redeem_conflict":     "Promo code is busy, please retry",
	"error.promo_order_ref_conflict":  "Order reference belongs to another user",
	"error.promo_usage_not_found":     "No redemption found for this order",
	"error.cart_invalid":              "Cart data is invalid",
	"error.order_ref_required":        "Order reference is required",
	"error.role_invalid":              "Invalid role",
	"error.super_admin_required":      "Super admin only",
	"promo.reason.InactiveCode":       "Promo code is not active",
	"promo.reason.Expired":            "Promo code has expired",
	"promo.reason.UsageLimitReached":  "Promo code usage limit reached",
	"promo.reason.AlreadyUsedByUser":  "You have already used this promo code",
	"promo.reason.BelowMinimumOrder":  "Order does not meet the minimum amount",
	"promo.reason.BundleNotMet":       "Not enough bundle items in cart",
	"promo.reason.EmptyCart":          "Cart is empty",
	"promo.applied":                   "Discount applied",
}
