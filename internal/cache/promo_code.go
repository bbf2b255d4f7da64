package cache

import (
	"context"
	"strings"
	"time"

	"github.com/grabgarden/admin-api/internal/constants"
	"github.com/grabgarden/admin-api/internal/models"
)

// PromoCodeKey 优惠码快照键（按归一化后的大写码）
func PromoCodeKey(code string) string {
	return constants.CacheKeyPromoCode + strings.ToUpper(strings.TrimSpace(code))
}

// GetPromoCode 读取优惠码快照
// 快照中的 used_count 可能滞后，仅用于预览；核销必须回源数据库。
func GetPromoCode(ctx context.Context, code string) (*models.PromoCode, bool, error) {
	var row models.PromoCode
	hit, err := GetJSON(ctx, PromoCodeKey(code), &row)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &row, true, nil
}

// SetPromoCode 写入优惠码快照
func SetPromoCode(ctx context.Context, row *models.PromoCode, ttl time.Duration) error {
	if row == nil || row.ID == 0 {
		return nil
	}
	return SetJSON(ctx, PromoCodeKey(row.Code), row, ttl)
}

// DelPromoCode 删除优惠码快照
func DelPromoCode(ctx context.Context, codes ...string) error {
	keys := make([]string, 0, len(codes))
	for _, code := range codes {
		if strings.TrimSpace(code) == "" {
			continue
		}
		keys = append(keys, PromoCodeKey(code))
	}
	return Del(ctx, keys...)
}
