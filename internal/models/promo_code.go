package models

import (
	"time"

	"gorm.io/gorm"
)

// PromoCode 优惠码
// 可空列只在对应模式下有意义：Value（FLAT/PERCENT）、MaxDiscount（PERCENT）、Bundle*（BUNDLE）。
type PromoCode struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                                         // 主键
	Code               string         `gorm:"uniqueIndex;type:varchar(64);not null" json:"code"`            // 优惠码（统一大写）
	Description        string         `gorm:"type:text" json:"description"`                                 // 说明
	Mode               string         `gorm:"type:varchar(16);not null;index" json:"mode"`                  // 模式（FLAT/PERCENT/BUNDLE）
	Value              *Money         `gorm:"type:decimal(20,2)" json:"value"`                              // 立减金额或折扣百分比
	MaxDiscount        *Money         `gorm:"type:decimal(20,2)" json:"max_discount"`                       // 百分比折扣封顶
	BundleMinItems     *int           `json:"bundle_min_items"`                                             // 组合件数
	BundlePrice        *Money         `gorm:"type:decimal(20,2)" json:"bundle_price"`                       // 组合价
	EligibleProductIDs IDList         `gorm:"type:text" json:"eligible_product_ids"`                        // 计入组合的商品ID（JSON数组，空为全部）
	MinimumOrder       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"minimum_order"`   // 使用门槛
	ExpiryDate         time.Time      `gorm:"not null;index" json:"expiry_date"`                            // 截止日期（UTC 零点存储，当天有效）
	MaxUses            *int           `json:"max_uses"`                                                     // 总使用上限（空为不限）
	UsedCount          int            `gorm:"not null;default:0" json:"used_count"`                         // 已使用次数
	OneTimeUsePerUser  bool           `gorm:"not null;default:false" json:"one_time_use_per_user"`          // 每人限用一次
	IsActive           bool           `gorm:"not null;index" json:"is_active"`                              // 是否启用
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`                                      // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间
}

// TableName 指定表名
func (PromoCode) TableName() string {
	return "promo_codes"
}
