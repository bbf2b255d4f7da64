package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func openModelsTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(AllModels()...); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func TestMoneyJSON(t *testing.T) {
	var m Money
	if err := json.Unmarshal([]byte(`"12.345"`), &m); err != nil {
		t.Fatalf("unmarshal string failed: %v", err)
	}
	if m.String() != "12.35" {
		t.Fatalf("expected 12.35, got %s", m.String())
	}
	if err := json.Unmarshal([]byte(`7.1`), &m); err != nil {
		t.Fatalf("unmarshal number failed: %v", err)
	}
	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != `"7.10"` {
		t.Fatalf("expected \"7.10\", got %s", string(out))
	}
}

func TestIDListNormalize(t *testing.T) {
	got := IDList{5, 0, 3, 5, 1}.Normalize()
	if len(got) != 3 || got[0] != 1 || got[1] != 3 || got[2] != 5 {
		t.Fatalf("unexpected normalized list: %v", got)
	}
}

func TestPromoCodeRoundTripNullableColumns(t *testing.T) {
	db := openModelsTestDB(t)

	minItems := 3
	row := PromoCode{
		Code:               "TRIO",
		Mode:               "BUNDLE",
		BundleMinItems:     &minItems,
		BundlePrice:        MoneyPtr(decimal.NewFromInt(500)),
		EligibleProductIDs: IDList{4, 2},
		ExpiryDate:         time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		IsActive:           true,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create promo code failed: %v", err)
	}

	var loaded PromoCode
	if err := db.First(&loaded, row.ID).Error; err != nil {
		t.Fatalf("load promo code failed: %v", err)
	}
	if loaded.Value != nil || loaded.MaxDiscount != nil || loaded.MaxUses != nil {
		t.Fatalf("expected unset columns to stay nil: %+v", loaded)
	}
	if loaded.BundleMinItems == nil || *loaded.BundleMinItems != 3 {
		t.Fatalf("bundle min items lost: %+v", loaded.BundleMinItems)
	}
	if loaded.BundlePrice == nil || !loaded.BundlePrice.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("bundle price lost: %+v", loaded.BundlePrice)
	}
	if len(loaded.EligibleProductIDs) != 2 || loaded.EligibleProductIDs[0] != 4 {
		t.Fatalf("eligible products lost: %v", loaded.EligibleProductIDs)
	}
}

func TestPromoCodeUsageOrderRefUnique(t *testing.T) {
	db := openModelsTestDB(t)
	first := PromoCodeUsage{PromoCodeID: 1, UserID: 1, OrderRef: "ORD-1"}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("create usage failed: %v", err)
	}
	dup := PromoCodeUsage{PromoCodeID: 1, UserID: 2, OrderRef: "ORD-1"}
	if err := db.Create(&dup).Error; err == nil {
		t.Fatalf("expected unique violation for duplicated order ref")
	}
	other := PromoCodeUsage{PromoCodeID: 2, UserID: 1, OrderRef: "ORD-1"}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("same order ref on another code should pass: %v", err)
	}
}

func TestEnsureDefaultAdmin(t *testing.T) {
	db := openModelsTestDB(t)

	if _, err := EnsureDefaultAdmin(db, "root", ""); !errors.Is(err, ErrDefaultAdminPasswordRequired) {
		t.Fatalf("expected ErrDefaultAdminPasswordRequired, got %v", err)
	}
	created, err := EnsureDefaultAdmin(db, "root", "Secret123")
	if err != nil || !created {
		t.Fatalf("expected admin created, created=%v err=%v", created, err)
	}
	created, err = EnsureDefaultAdmin(db, "other", "Secret123")
	if err != nil || created {
		t.Fatalf("expected no-op when admin exists, created=%v err=%v", created, err)
	}

	var admin Admin
	if err := db.Where("username = ?", "root").First(&admin).Error; err != nil {
		t.Fatalf("load admin failed: %v", err)
	}
	if !admin.IsSuper {
		t.Fatalf("default admin should be super")
	}
}
