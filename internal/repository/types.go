package repository

// ProductListFilter 商品选择器过滤条件
type ProductListFilter struct {
	Page       int
	PageSize   int
	Search     string // 匹配名称或 slug
	OnlyActive bool
}

// PromoCodeListFilter 优惠码列表过滤条件
type PromoCodeListFilter struct {
	Page     int
	PageSize int
	Code     string // 大小写不敏感的子串匹配
	Mode     string
	IsActive *bool
}

// PromoCodeUsageListFilter 核销记录过滤条件
type PromoCodeUsageListFilter struct {
	Page        int
	PageSize    int
	PromoCodeID uint
	UserID      uint
}
