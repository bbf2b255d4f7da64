package shared

import (
	"github.com/grabgarden/admin-api/internal/service"

	"github.com/shopspring/decimal"
)

// CartLineRequest 购物车行
type CartLineRequest struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// ToCartLines 转换为 service 层购物车行
func ToCartLines(items []CartLineRequest) []service.CartLineInput {
	lines := make([]service.CartLineInput, 0, len(items))
	for _, item := range items {
		lines = append(lines, service.CartLineInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return lines
}
