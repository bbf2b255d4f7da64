package promo

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Evaluate 判断优惠码是否可用并计算优惠金额
//
// 纯函数：不做 I/O，不修改入参。业务上的"不可用"通过 Result.Reason 返回；
// 只有记录本身与模式不匹配（ErrInvalidConfiguration）或购物车行非法（ErrInvalidCart）才返回 error。
// 校验顺序固定，首个失败即返回：
// 启用状态 -> 有效期 -> 总次数 -> 每人一次 -> 使用门槛 -> 模式规则。
func Evaluate(cart Cart, code Code, ctx Context) (Result, error) {
	if len(cart.Items) == 0 {
		return rejected(decimal.Zero, ReasonEmptyCart), nil
	}
	for i, item := range cart.Items {
		if item.Quantity <= 0 || item.UnitPrice.IsNegative() {
			return Result{}, fmt.Errorf("%w: line %d product %d", ErrInvalidCart, i, item.ProductID)
		}
	}
	subtotal := roundMoney(cart.Subtotal())

	if !code.Active {
		return rejected(subtotal, ReasonInactiveCode), nil
	}
	if code.ExpiryDate.IsZero() {
		return Result{}, fmt.Errorf("%w: expiry date missing", ErrInvalidConfiguration)
	}
	if ctx.Now.After(code.ExpiresAt()) {
		return rejected(subtotal, ReasonExpired), nil
	}
	if code.MaxUses != nil && code.UsedCount >= *code.MaxUses {
		return rejected(subtotal, ReasonUsageLimitReached), nil
	}
	if code.OneTimeUsePerUser && ctx.UserHasUsedCode {
		return rejected(subtotal, ReasonAlreadyUsedByUser), nil
	}
	if subtotal.LessThan(code.MinimumOrder) {
		return rejected(subtotal, ReasonBelowMinimumOrder), nil
	}

	if err := ValidateConfiguration(code); err != nil {
		return Result{}, err
	}

	switch code.Mode {
	case ModeFlat:
		discount := decimal.Min(code.Value.Decimal, subtotal)
		return applied(subtotal, roundMoney(discount)), nil
	case ModePercent:
		discount := roundMoney(subtotal.Mul(code.Value.Decimal).Div(hundred))
		if code.MaxDiscount.Valid {
			// 先取整再封顶，上限按分向下取整
			discount = decimal.Min(discount, code.MaxDiscount.Decimal.RoundDown(2))
		}
		return applied(subtotal, clampDiscount(discount, subtotal)), nil
	case ModeBundle:
		discount, bundles, ok := bundleDiscount(cart.Items, *code.Bundle, code.EligibleProducts)
		if !ok {
			return rejected(subtotal, ReasonBundleNotMet), nil
		}
		result := applied(subtotal, clampDiscount(roundMoney(discount), subtotal))
		result.BundleCount = bundles
		return result, nil
	default:
		return Result{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfiguration, code.Mode)
	}
}

// ValidateConfiguration 校验记录在其声明模式下必填字段是否完整
// 其他模式的字段即使存在也忽略；maxDiscount 只对 PERCENT 生效。
func ValidateConfiguration(code Code) error {
	switch code.Mode {
	case ModeFlat:
		if !code.Value.Valid {
			return fmt.Errorf("%w: FLAT requires value", ErrInvalidConfiguration)
		}
		if code.Value.Decimal.IsNegative() {
			return fmt.Errorf("%w: FLAT value must not be negative", ErrInvalidConfiguration)
		}
	case ModePercent:
		if !code.Value.Valid {
			return fmt.Errorf("%w: PERCENT requires value", ErrInvalidConfiguration)
		}
		if code.Value.Decimal.IsNegative() || code.Value.Decimal.GreaterThan(hundred) {
			return fmt.Errorf("%w: PERCENT value %s outside [0,100]", ErrInvalidConfiguration, code.Value.Decimal.String())
		}
		if code.MaxDiscount.Valid && code.MaxDiscount.Decimal.IsNegative() {
			return fmt.Errorf("%w: max discount must not be negative", ErrInvalidConfiguration)
		}
	case ModeBundle:
		if code.Bundle == nil {
			return fmt.Errorf("%w: BUNDLE requires bundle", ErrInvalidConfiguration)
		}
		if code.Bundle.MinItems < 1 {
			return fmt.Errorf("%w: bundle min items must be positive", ErrInvalidConfiguration)
		}
		if code.Bundle.BundlePrice.IsNegative() {
			return fmt.Errorf("%w: bundle price must not be negative", ErrInvalidConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfiguration, code.Mode)
	}
	return nil
}

func roundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// clampDiscount 保证 0 <= discount <= subtotal
func clampDiscount(discount, subtotal decimal.Decimal) decimal.Decimal {
	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}
