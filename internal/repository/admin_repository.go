package repository

import (
	"errors"
	"time"

	"github.com/grabgarden/admin-api/internal/models"

	"gorm.io/gorm"
)

// AdminRepository 管理员数据访问接口
type AdminRepository interface {
	GetByUsername(username string) (*models.Admin, error)
	GetByID(id uint) (*models.Admin, error)
	TouchLogin(id uint, at time.Time, ip string) error
	RevokeTokens(id uint, at time.Time) error
}

// GormAdminRepository GORM 实现
type GormAdminRepository struct {
	db *gorm.DB
}

// NewAdminRepository 创建管理员仓库
func NewAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

// GetByUsername 根据用户名获取管理员
func (r *GormAdminRepository) GetByUsername(username string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.Where("username = ?", username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// GetByID 根据 ID 获取管理员
func (r *GormAdminRepository) GetByID(id uint) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.First(&admin, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// TouchLogin 记录最后登录时间与 IP
func (r *GormAdminRepository) TouchLogin(id uint, at time.Time, ip string) error {
	return r.db.Model(&models.Admin{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_login_at": at,
		"last_login_ip": ip,
	}).Error
}

// RevokeTokens 递增 Token 版本并记录吊销时间
func (r *GormAdminRepository) RevokeTokens(id uint, at time.Time) error {
	return r.db.Model(&models.Admin{}).Where("id = ?", id).Updates(map[string]interface{}{
		"token_version":        gorm.Expr("token_version + 1"),
		"token_invalid_before": at,
	}).Error
}
