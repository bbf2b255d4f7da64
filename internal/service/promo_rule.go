package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/grabgarden/admin-api/internal/constants"
	"github.com/grabgarden/admin-api/internal/models"
	"github.com/grabgarden/admin-api/internal/promo"

	"github.com/shopspring/decimal"
)

const expiryDateLayout = "2006-01-02"

// NormalizePromoCode 去空格并统一大写，只允许字母数字、- 与 _
func NormalizePromoCode(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) < constants.PromoCodeMinLength || len(code) > constants.PromoCodeMaxLength {
		return "", ErrPromoCodeInvalid
	}
	for _, r := range code {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return "", ErrPromoCodeInvalid
		}
	}
	return code, nil
}

// ParseExpiryDate 解析 YYYY-MM-DD，按 UTC 零点存储
func ParseExpiryDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, ErrPromoExpiryInvalid
	}
	date, err := time.ParseInLocation(expiryDateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrPromoExpiryInvalid, err)
	}
	return date, nil
}

// FormatExpiryDate 输出 YYYY-MM-DD
func FormatExpiryDate(date time.Time) string {
	if date.IsZero() {
		return ""
	}
	return date.UTC().Format(expiryDateLayout)
}

// anchorExpiry 将存储的日期落到业务时区，截止时刻为该时区当天结束
func anchorExpiry(date time.Time, loc *time.Location) time.Time {
	if date.IsZero() {
		return time.Time{}
	}
	if loc == nil {
		loc = time.UTC
	}
	utc := date.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, loc)
}

// toPromoCode 将数据库记录转换为计算快照
func toPromoCode(row *models.PromoCode, loc *time.Location) promo.Code {
	code := promo.Code{
		Code:              row.Code,
		Description:       row.Description,
		Mode:              promo.Mode(row.Mode),
		MinimumOrder:      row.MinimumOrder.Decimal,
		ExpiryDate:        anchorExpiry(row.ExpiryDate, loc),
		MaxUses:           row.MaxUses,
		UsedCount:         row.UsedCount,
		OneTimeUsePerUser: row.OneTimeUsePerUser,
		Active:            row.IsActive,
	}
	if row.Value != nil {
		code.Value = decimal.NewNullDecimal(row.Value.Decimal)
	}
	if row.MaxDiscount != nil {
		code.MaxDiscount = decimal.NewNullDecimal(row.MaxDiscount.Decimal)
	}
	if row.BundleMinItems != nil && row.BundlePrice != nil {
		code.Bundle = &promo.Bundle{
			MinItems:    *row.BundleMinItems,
			BundlePrice: row.BundlePrice.Decimal,
		}
	}
	if len(row.EligibleProductIDs) > 0 {
		code.EligibleProducts = append([]uint(nil), row.EligibleProductIDs...)
	}
	return code
}

// CartLineInput 购物车行输入
type CartLineInput struct {
	ProductID uint
	Quantity  int
	UnitPrice decimal.Decimal
}

// buildCart 校验并组装购物车；空购物车交给计算器返回 EmptyCart
func buildCart(lines []CartLineInput) (promo.Cart, error) {
	if len(lines) > constants.CartMaxLines {
		return promo.Cart{}, fmt.Errorf("%w: too many lines", ErrCartInvalid)
	}
	items := make([]promo.CartItem, 0, len(lines))
	for i, line := range lines {
		if line.ProductID == 0 || line.Quantity <= 0 || line.Quantity > constants.CartLineMaxQuantity || line.UnitPrice.IsNegative() {
			return promo.Cart{}, fmt.Errorf("%w: line %d", ErrCartInvalid, i)
		}
		items = append(items, promo.CartItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	return promo.Cart{Items: items}, nil
}

// PromoEvaluation 计算结果（附带优惠码信息）
type PromoEvaluation struct {
	PromoCodeID uint         `json:"promo_code_id"`
	Code        string       `json:"code"`
	Mode        string       `json:"mode"`
	Result      promo.Result `json:"result"`
}

func newPromoEvaluation(row *models.PromoCode, result promo.Result) *PromoEvaluation {
	return &PromoEvaluation{
		PromoCodeID: row.ID,
		Code:        row.Code,
		Mode:        row.Mode,
		Result:      result,
	}
}

// mapEvaluateError 将计算器的硬错误映射为服务层错误
func mapEvaluateError(err error) error {
	switch {
	case errors.Is(err, promo.ErrInvalidCart):
		return fmt.Errorf("%w: %v", ErrCartInvalid, err)
	case errors.Is(err, promo.ErrInvalidConfiguration):
		return fmt.Errorf("%w: %v", ErrPromoConfigInvalid, err)
	default:
		return err
	}
}
