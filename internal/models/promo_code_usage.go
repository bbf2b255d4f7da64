package models

import "time"

// PromoCodeUsage 优惠码核销记录
// (promo_code_id, order_ref) 唯一，保证同一订单重复提交只核销一次。
type PromoCodeUsage struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                                              // 主键
	PromoCodeID    uint      `gorm:"not null;uniqueIndex:idx_promo_usage_order,priority:1;index" json:"promo_code_id"` // 优惠码ID
	UserID         uint      `gorm:"not null;index" json:"user_id"`                                                     // 用户ID
	OrderRef       string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_promo_usage_order,priority:2" json:"order_ref"` // 订单号
	DiscountAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`                      // 优惠金额
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                                                           // 核销时间
}

// TableName 指定表名
func (PromoCodeUsage) TableName() string {
	return "promo_code_usages"
}
