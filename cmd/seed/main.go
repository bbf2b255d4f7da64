package main

import (
	"context"
	"errors"
	"time"

	"github.com/grabgarden/admin-api/internal/config"
	"github.com/grabgarden/admin-api/internal/logger"
	"github.com/grabgarden/admin-api/internal/models"
	"github.com/grabgarden/admin-api/internal/repository"
	"github.com/grabgarden/admin-api/internal/service"

	"github.com/shopspring/decimal"
)

type productSeed struct {
	Slug  string
	Name  string
	Price string
}

var productSeeds = []productSeed{
	{Slug: "monstera-deliciosa", Name: "Monstera Deliciosa", Price: "200"},
	{Slug: "fiddle-leaf-fig", Name: "Fiddle Leaf Fig", Price: "220"},
	{Slug: "snake-plant", Name: "Snake Plant", Price: "250"},
	{Slug: "pothos-golden", Name: "Golden Pothos", Price: "45"},
	{Slug: "terracotta-pot-m", Name: "Terracotta Pot (M)", Price: "30"},
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.LogLevel, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	password := cfg.Bootstrap.AdminPassword
	if password == "" && !cfg.Server.IsRelease() {
		password = "Admin12345"
	}
	if created, err := models.EnsureDefaultAdmin(models.DB, cfg.Bootstrap.AdminUsername, password); err != nil {
		stdLog.Printf("Skip default admin: %v", err)
	} else if created {
		stdLog.Printf("Created default admin: %s", cfg.Bootstrap.AdminUsername)
	}

	productRepo := repository.NewProductRepository(models.DB)
	slugToID := make(map[string]uint, len(productSeeds))
	for i, seed := range productSeeds {
		existing, err := productRepo.GetBySlug(seed.Slug)
		if err != nil {
			stdLog.Fatalf("Failed to load product %s: %v", seed.Slug, err)
		}
		if existing != nil {
			slugToID[seed.Slug] = existing.ID
			stdLog.Printf("Product already exists: %s", seed.Slug)
			continue
		}
		product := models.Product{
			Slug:        seed.Slug,
			Name:        seed.Name,
			PriceAmount: models.NewMoneyFromDecimal(decimal.RequireFromString(seed.Price)),
			IsActive:    true,
			SortOrder:   len(productSeeds) - i,
		}
		if err := productRepo.Create(&product); err != nil {
			stdLog.Fatalf("Failed to create product %s: %v", seed.Slug, err)
		}
		slugToID[seed.Slug] = product.ID
		stdLog.Printf("Created product: %s", seed.Slug)
	}

	admin := service.NewPromoCodeAdminService(
		cfg.Promo,
		repository.NewPromoCodeRepository(models.DB),
		repository.NewPromoCodeUsageRepository(models.DB),
		productRepo,
		nil,
	)
	expiry := time.Now().In(cfg.Promo.Location()).AddDate(0, 3, 0).Format("2006-01-02")
	maxUses := 100
	for _, input := range []service.PromoCodeInput{
		{
			Code:         "WELCOME10",
			Description:  "10 off orders from 50",
			Mode:         "FLAT",
			Value:        decimalPtr("10"),
			MinimumOrder: decimal.NewFromInt(50),
			ExpiryDate:   expiry,
			MaxUses:      &maxUses,
		},
		{
			Code:              "SPRING15",
			Description:       "15% off, capped at 40",
			Mode:              "PERCENT",
			Value:             decimalPtr("15"),
			MaxDiscount:       decimalPtr("40"),
			ExpiryDate:        expiry,
			OneTimeUsePerUser: true,
		},
		{
			Code:           "TRIO500",
			Description:    "Any three large plants for 500",
			Mode:           "BUNDLE",
			BundleMinItems: intPtr(3),
			BundlePrice:    decimalPtr("500"),
			EligibleProductIDs: []uint{
				slugToID["monstera-deliciosa"],
				slugToID["fiddle-leaf-fig"],
				slugToID["snake-plant"],
			},
			ExpiryDate: expiry,
		},
	} {
		row, err := admin.Create(context.Background(), 0, input)
		switch {
		case errors.Is(err, service.ErrPromoCodeExists):
			stdLog.Printf("Promo code already exists: %s", input.Code)
		case err != nil:
			stdLog.Fatalf("Failed to create promo code %s: %v", input.Code, err)
		default:
			stdLog.Printf("Created promo code: %s (%s)", row.Code, row.Mode)
		}
	}

	stdLog.Printf("Seed completed")
}

func decimalPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func intPtr(v int) *int {
	return &v
}
