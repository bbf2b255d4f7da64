package service

import "errors"

var (
	// ErrInvalidCredentials 用户名或密码错误
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken Token 无效或已失效
	ErrInvalidToken = errors.New("invalid token")
	// ErrCaptchaRequired 缺少验证码
	ErrCaptchaRequired = errors.New("captcha required")
	// ErrCaptchaInvalid 验证码错误
	ErrCaptchaInvalid = errors.New("captcha invalid")

	// ErrPromoCodeNotFound 优惠码不存在
	ErrPromoCodeNotFound = errors.New("promo code not found")
	// ErrPromoCodeExists 优惠码已被占用（含已删除记录）
	ErrPromoCodeExists = errors.New("promo code already exists")
	// ErrPromoCodeInvalid 优惠码格式不合法
	ErrPromoCodeInvalid = errors.New("promo code invalid")
	// ErrPromoModeInvalid 不支持的优惠模式
	ErrPromoModeInvalid = errors.New("promo mode invalid")
	// ErrPromoConfigInvalid 优惠码配置与模式不匹配
	ErrPromoConfigInvalid = errors.New("promo config invalid")
	// ErrPromoExpiryInvalid 截止日期缺失或格式错误
	ErrPromoExpiryInvalid = errors.New("promo expiry invalid")
	// ErrPromoMaxUsesBelowUsed 使用上限低于已使用次数
	ErrPromoMaxUsesBelowUsed = errors.New("promo max uses below used count")
	// ErrPromoProductsInvalid 适用商品不存在
	ErrPromoProductsInvalid = errors.New("promo eligible products invalid")
	// ErrPromoRedeemConflict 并发核销冲突重试耗尽
	ErrPromoRedeemConflict = errors.New("promo redeem conflict")
	// ErrPromoOrderRefConflict 订单号已被其他用户核销
	ErrPromoOrderRefConflict = errors.New("promo order ref conflict")
	// ErrPromoUsageNotFound 订单没有核销记录
	ErrPromoUsageNotFound = errors.New("promo usage not found")
	// ErrCartInvalid 购物车数据非法
	ErrCartInvalid = errors.New("cart invalid")
	// ErrOrderRefRequired 缺少订单号
	ErrOrderRefRequired = errors.New("order ref required")
)
