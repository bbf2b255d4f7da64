package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/grabgarden/admin-api/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func openRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func createPromoCodeRow(t *testing.T, repo *GormPromoCodeRepository, code string, maxUses *int) *models.PromoCode {
	t.Helper()
	row := &models.PromoCode{
		Code:       code,
		Mode:       "FLAT",
		Value:      models.MoneyPtr(decimal.NewFromInt(10)),
		ExpiryDate: time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		MaxUses:    maxUses,
		IsActive:   true,
	}
	if err := repo.Create(row); err != nil {
		t.Fatalf("create promo code failed: %v", err)
	}
	return row
}
