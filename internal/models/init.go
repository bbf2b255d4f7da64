package models

import (
	"errors"
	"strings"

	"github.com/grabgarden/admin-api/internal/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrDefaultAdminPasswordRequired 首次初始化缺少管理员密码
var ErrDefaultAdminPasswordRequired = errors.New("default admin password is required")

// EnsureDefaultAdmin 管理员表为空时创建超级管理员
// 已存在任意管理员时不做修改，返回 created=false。
func EnsureDefaultAdmin(db *gorm.DB, username, password string) (bool, error) {
	var count int64
	if err := db.Model(&Admin{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	username = strings.TrimSpace(username)
	if username == "" {
		username = "admin"
	}
	if strings.TrimSpace(password) == "" {
		return false, ErrDefaultAdminPasswordRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	admin := Admin{
		Username:     username,
		PasswordHash: string(hash),
		IsSuper:      true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return false, err
	}
	logger.Warnw("default_admin_created", "username", username, "password_hidden", true)
	return true, nil
}
