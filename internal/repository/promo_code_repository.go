package repository

import (
	"errors"
	"strings"

	"github.com/grabgarden/admin-api/internal/models"

	"gorm.io/gorm"
)

// PromoCodeRepository 优惠码数据访问接口
type PromoCodeRepository interface {
	GetByID(id uint) (*models.PromoCode, error)
	GetByCode(code string) (*models.PromoCode, error)
	ExistsCode(code string, excludeID uint) (bool, error)
	Create(code *models.PromoCode) error
	Update(code *models.PromoCode) error
	Delete(id uint) error
	SetActive(id uint, active bool) error
	List(filter PromoCodeListFilter) ([]models.PromoCode, int64, error)
	CompareAndIncrementUsedCount(id uint, expectedUsed int) (bool, error)
	DecrementUsedCount(id uint, delta int) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) PromoCodeRepository
}

// GormPromoCodeRepository GORM 实现
type GormPromoCodeRepository struct {
	db *gorm.DB
}

// NewPromoCodeRepository 创建优惠码仓库
func NewPromoCodeRepository(db *gorm.DB) *GormPromoCodeRepository {
	return &GormPromoCodeRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromoCodeRepository) WithTx(tx *gorm.DB) PromoCodeRepository {
	if tx == nil {
		return r
	}
	return &GormPromoCodeRepository{db: tx}
}

// Transaction 执行事务
func (r *GormPromoCodeRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 根据ID获取优惠码
func (r *GormPromoCodeRepository) GetByID(id uint) (*models.PromoCode, error) {
	var row models.PromoCode
	if err := r.db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetByCode 根据优惠码获取（调用方负责大写归一）
func (r *GormPromoCodeRepository) GetByCode(code string) (*models.PromoCode, error) {
	var row models.PromoCode
	if err := r.db.Where("code = ?", code).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ExistsCode 判断优惠码是否被占用
// 唯一索引不区分软删除，这里同样包含已删除记录。
func (r *GormPromoCodeRepository) ExistsCode(code string, excludeID uint) (bool, error) {
	query := r.db.Unscoped().Model(&models.PromoCode{}).Where("code = ?", code)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create 创建优惠码
func (r *GormPromoCodeRepository) Create(code *models.PromoCode) error {
	return r.db.Create(code).Error
}

// Update 更新优惠码配置
// used_count 只能通过核销/释放变更，这里显式排除以免覆盖并发核销结果。
func (r *GormPromoCodeRepository) Update(code *models.PromoCode) error {
	return r.db.Model(code).Select("*").Omit("id", "used_count", "created_at", "deleted_at").Updates(code).Error
}

// Delete 删除优惠码（软删除）
func (r *GormPromoCodeRepository) Delete(id uint) error {
	return r.db.Delete(&models.PromoCode{}, id).Error
}

// SetActive 启用/停用
func (r *GormPromoCodeRepository) SetActive(id uint, active bool) error {
	return r.db.Model(&models.PromoCode{}).Where("id = ?", id).Update("is_active", active).Error
}

// List 优惠码列表
func (r *GormPromoCodeRepository) List(filter PromoCodeListFilter) ([]models.PromoCode, int64, error) {
	query := r.db.Model(&models.PromoCode{})

	if keyword := strings.TrimSpace(filter.Code); keyword != "" {
		condition, argCount := buildLikeCondition(r.db, "code")
		query = query.Where(condition, repeatLikeArgs(containsPattern(strings.ToUpper(keyword)), argCount)...)
	}
	if mode := strings.TrimSpace(filter.Mode); mode != "" {
		query = query.Where("mode = ?", strings.ToUpper(mode))
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.PromoCode
	if err := applyPagination(query, filter.Page, filter.PageSize).Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CompareAndIncrementUsedCount 条件自增已使用次数
// 仅当 used_count 仍等于读取值且未达上限时生效；返回 false 表示发生并发冲突或已满。
func (r *GormPromoCodeRepository) CompareAndIncrementUsedCount(id uint, expectedUsed int) (bool, error) {
	result := r.db.Model(&models.PromoCode{}).
		Where("id = ? AND used_count = ?", id, expectedUsed).
		Where("max_uses IS NULL OR used_count < max_uses").
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DecrementUsedCount 减少已使用次数（不会低于 0）
func (r *GormPromoCodeRepository) DecrementUsedCount(id uint, delta int) error {
	if delta <= 0 {
		return nil
	}
	return r.db.Model(&models.PromoCode{}).
		Where("id = ?", id).
		UpdateColumn("used_count", gorm.Expr("CASE WHEN used_count >= ? THEN used_count - ? ELSE 0 END", delta, delta)).Error
}
