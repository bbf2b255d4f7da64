package repository

import (
	"errors"

	"github.com/grabgarden/admin-api/internal/models"

	"gorm.io/gorm"
)

// PromoCodeUsageRepository 核销记录数据访问接口
type PromoCodeUsageRepository interface {
	Create(usage *models.PromoCodeUsage) error
	CountByUser(promoCodeID, userID uint) (int64, error)
	GetByOrderRef(promoCodeID uint, orderRef string) (*models.PromoCodeUsage, error)
	ListByOrderRef(orderRef string, userID uint) ([]models.PromoCodeUsage, error)
	List(filter PromoCodeUsageListFilter) ([]models.PromoCodeUsage, int64, error)
	DeleteByIDs(ids []uint) error
	CountByPromoCodes(promoCodeIDs []uint) (map[uint]int64, error)
	WithTx(tx *gorm.DB) PromoCodeUsageRepository
}

// GormPromoCodeUsageRepository GORM 实现
type GormPromoCodeUsageRepository struct {
	db *gorm.DB
}

// NewPromoCodeUsageRepository 创建核销记录仓库
func NewPromoCodeUsageRepository(db *gorm.DB) *GormPromoCodeUsageRepository {
	return &GormPromoCodeUsageRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromoCodeUsageRepository) WithTx(tx *gorm.DB) PromoCodeUsageRepository {
	if tx == nil {
		return r
	}
	return &GormPromoCodeUsageRepository{db: tx}
}

// Create 创建核销记录
func (r *GormPromoCodeUsageRepository) Create(usage *models.PromoCodeUsage) error {
	return r.db.Create(usage).Error
}

// CountByUser 用户对某优惠码的核销次数
func (r *GormPromoCodeUsageRepository) CountByUser(promoCodeID, userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.PromoCodeUsage{}).
		Where("promo_code_id = ? AND user_id = ?", promoCodeID, userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GetByOrderRef 查询订单在某优惠码下的核销记录
func (r *GormPromoCodeUsageRepository) GetByOrderRef(promoCodeID uint, orderRef string) (*models.PromoCodeUsage, error) {
	var usage models.PromoCodeUsage
	err := r.db.Where("promo_code_id = ? AND order_ref = ?", promoCodeID, orderRef).First(&usage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &usage, nil
}

// ListByOrderRef 用户在该订单下的全部核销记录
func (r *GormPromoCodeUsageRepository) ListByOrderRef(orderRef string, userID uint) ([]models.PromoCodeUsage, error) {
	var usages []models.PromoCodeUsage
	if err := r.db.Where("order_ref = ? AND user_id = ?", orderRef, userID).Order("id asc").Find(&usages).Error; err != nil {
		return nil, err
	}
	return usages, nil
}

// List 核销记录列表
func (r *GormPromoCodeUsageRepository) List(filter PromoCodeUsageListFilter) ([]models.PromoCodeUsage, int64, error) {
	query := r.db.Model(&models.PromoCodeUsage{})
	if filter.PromoCodeID > 0 {
		query = query.Where("promo_code_id = ?", filter.PromoCodeID)
	}
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var usages []models.PromoCodeUsage
	if err := applyPagination(query, filter.Page, filter.PageSize).Order("id desc").Find(&usages).Error; err != nil {
		return nil, 0, err
	}
	return usages, total, nil
}

// DeleteByIDs 物理删除核销记录
func (r *GormPromoCodeUsageRepository) DeleteByIDs(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Where("id IN ?", ids).Delete(&models.PromoCodeUsage{}).Error
}

// CountByPromoCodes 按优惠码统计核销记录数，未出现的优惠码计为 0
func (r *GormPromoCodeUsageRepository) CountByPromoCodes(promoCodeIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(promoCodeIDs))
	if len(promoCodeIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		PromoCodeID uint
		Total       int64
	}
	if err := r.db.Model(&models.PromoCodeUsage{}).
		Select("promo_code_id, COUNT(*) AS total").
		Where("promo_code_id IN ?", promoCodeIDs).
		Group("promo_code_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, id := range promoCodeIDs {
		counts[id] = 0
	}
	for _, row := range rows {
		counts[row.PromoCodeID] = row.Total
	}
	return counts, nil
}
