package constants

// 优惠码模式常量（与 promo.Mode 取值一致，供存储层与接口层使用）
const (
	PromoModeFlat    = "FLAT"
	PromoModePercent = "PERCENT"
	PromoModeBundle  = "BUNDLE"
)

// 优惠码约束常量
const (
	PromoCodeMaxLength      = 64
	PromoCodeMinLength      = 3
	PromoDescriptionMaxLen  = 500
	PromoEligibleProductMax = 500
	CartMaxLines            = 200
	CartLineMaxQuantity     = 9999
	OrderRefMaxLength       = 64
)

// 异步任务常量
const (
	QueueDefault            = "default"
	QueueCritical           = "critical"
	TaskPromoUsageRecorded  = "promo:usage_recorded"
	TaskPromoCodeChanged    = "promo:code_changed"
	PromoCodeChangeCreated  = "created"
	PromoCodeChangeUpdated  = "updated"
	PromoCodeChangeDeleted  = "deleted"
	PromoCodeChangeToggled  = "toggled"
	PromoUsageActionRedeem  = "redeem"
	PromoUsageActionRelease = "release"
)

// 缓存键前缀
const (
	CacheKeyPromoCode  = "promo:code:"
	CacheKeyAdminAuth  = "auth:admin:"
	CacheKeyLoginLimit = "ratelimit:admin_login:"
)
