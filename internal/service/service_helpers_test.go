package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/grabgarden/admin-api/internal/config"
	"github.com/grabgarden/admin-api/internal/models"
	"github.com/grabgarden/admin-api/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type promoTestEnv struct {
	db          *gorm.DB
	codeRepo    *repository.GormPromoCodeRepository
	usageRepo   *repository.GormPromoCodeUsageRepository
	productRepo *repository.GormProductRepository
	admin       *PromoCodeAdminService
	checkout    *CheckoutService
}

func openServiceTestDB(t *testing.T) *gorm.DB {
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

func newPromoTestEnv(t *testing.T, cfg config.PromoConfig) *promoTestEnv {
	t.Helper()
	db := openServiceTestDB(t)
	env := &promoTestEnv{
		db:          db,
		codeRepo:    repository.NewPromoCodeRepository(db),
		usageRepo:   repository.NewPromoCodeUsageRepository(db),
		productRepo: repository.NewProductRepository(db),
	}
	env.admin = NewPromoCodeAdminService(cfg, env.codeRepo, env.usageRepo, env.productRepo, nil)
	env.checkout = NewCheckoutService(cfg, env.codeRepo, env.usageRepo, nil)
	return env
}

func defaultPromoConfig() config.PromoConfig {
	return config.PromoConfig{Timezone: "UTC", RedeemMaxRetries: 3}
}

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func intPtr(v int) *int {
	return &v
}

func line(productID uint, quantity int, price string) CartLineInput {
	return CartLineInput{ProductID: productID, Quantity: quantity, UnitPrice: decimal.RequireFromString(price)}
}

func futureDate() string {
	return time.Now().UTC().AddDate(0, 1, 0).Format(expiryDateLayout)
}

func mustCreateProduct(t *testing.T, repo *repository.GormProductRepository, slug, price string) models.Product {
	t.Helper()
	product := models.Product{
		Slug:        slug,
		Name:        strings.ToUpper(slug),
		PriceAmount: models.NewMoneyFromDecimal(decimal.RequireFromString(price)),
		IsActive:    true,
	}
	if err := repo.Create(&product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}
