package promo

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Mode 优惠码折扣模式
type Mode string

const (
	// ModeFlat 固定金额立减
	ModeFlat Mode = "FLAT"
	// ModePercent 按小计百分比折扣（可设置封顶）
	ModePercent Mode = "PERCENT"
	// ModeBundle 组合价：满 minItems 件按 bundlePrice 计价
	ModeBundle Mode = "BUNDLE"
)

// Valid 判断模式是否受支持
func (m Mode) Valid() bool {
	switch m {
	case ModeFlat, ModePercent, ModeBundle:
		return true
	default:
		return false
	}
}

// Reason 优惠码不可用原因（业务结果，不是错误）
type Reason string

const (
	ReasonInactiveCode      Reason = "InactiveCode"
	ReasonExpired           Reason = "Expired"
	ReasonUsageLimitReached Reason = "UsageLimitReached"
	ReasonAlreadyUsedByUser Reason = "AlreadyUsedByUser"
	ReasonBelowMinimumOrder Reason = "BelowMinimumOrder"
	ReasonBundleNotMet      Reason = "BundleNotMet"
	ReasonEmptyCart         Reason = "EmptyCart"
)

var (
	// ErrInvalidConfiguration 优惠码记录与其模式不匹配（上游数据问题，需要暴露给管理员）
	ErrInvalidConfiguration = errors.New("promo code configuration invalid")
	// ErrInvalidCart 购物车行数据非法（数量非正或单价为负）
	ErrInvalidCart = errors.New("cart line invalid")
)

// Bundle 组合价配置
type Bundle struct {
	MinItems    int             `json:"min_items"`
	BundlePrice decimal.Decimal `json:"bundle_price"`
}

// Code 参与计算的优惠码快照
// Value/MaxDiscount 使用 NullDecimal 区分"未设置"与"设置为 0"
type Code struct {
	Code              string              `json:"code"`
	Description       string              `json:"description"`
	Mode              Mode                `json:"mode"`
	Value             decimal.NullDecimal `json:"value"`
	MaxDiscount       decimal.NullDecimal `json:"max_discount"`
	Bundle            *Bundle             `json:"bundle,omitempty"`
	EligibleProducts  []uint              `json:"eligible_products"`
	MinimumOrder      decimal.Decimal     `json:"minimum_order"`
	ExpiryDate        time.Time           `json:"expiry_date"`
	MaxUses           *int                `json:"max_uses,omitempty"`
	UsedCount         int                 `json:"used_count"`
	OneTimeUsePerUser bool                `json:"one_time_use_per_user"`
	Active            bool                `json:"active"`
}

// ExpiresAt 返回过期截止时刻：到期日当天最后一纳秒（含）
func (c Code) ExpiresAt() time.Time {
	d := c.ExpiryDate
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), d.Location())
}

// CartItem 购物车行
type CartItem struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Cart 购物车快照（由订单服务提供）
type Cart struct {
	Items []CartItem `json:"items"`
}

// Subtotal 计算小计：Σ 单价 × 数量
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Context 计算上下文
type Context struct {
	UserID          uint
	Now             time.Time
	UserHasUsedCode bool
}

// Result 计算结果
type Result struct {
	Applied        bool            `json:"applied"`
	Reason         Reason          `json:"reason,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalTotal     decimal.Decimal `json:"final_total"`
	BundleCount    int             `json:"bundle_count,omitempty"`
}

func rejected(subtotal decimal.Decimal, reason Reason) Result {
	return Result{
		Applied:        false,
		Reason:         reason,
		Subtotal:       subtotal,
		DiscountAmount: decimal.Zero,
		FinalTotal:     subtotal,
	}
}

func applied(subtotal, discount decimal.Decimal) Result {
	return Result{
		Applied:        true,
		Subtotal:       subtotal,
		DiscountAmount: discount,
		FinalTotal:     subtotal.Sub(discount),
	}
}
