package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/grabgarden/admin-api/internal/promo"
	"github.com/grabgarden/admin-api/internal/repository"
)

func flatInput(code, value string) PromoCodeInput {
	return PromoCodeInput{
		Code:       code,
		Mode:       "flat",
		Value:      decPtr(value),
		ExpiryDate: futureDate(),
	}
}

func TestPromoCodeAdminCreateNormalizesCode(t *testing.T) {
	env := newPromoTestEnv(t, defaultPromoConfig())
	ctx := context.Background()

	row, err := env.admin.Create(ctx, 1, flatInput("  save10 ", "10"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if row.Code != "SAVE10" || row.Mode != "FLAT" || row.UsedCount != 0 || !row.IsActive {
		t.Fatalf("unexpected row: %+v", row)
	}

	if _, err := env.admin.Create(ctx, 1, flatInput("Save10", "5")); !errors.Is(err, ErrPromoCodeExists) {
		t.Fatalf("want ErrPromoCodeExists got %v", err)
	}
}

func TestPromoCodeAdminCreateValidation(t *testing.T) {
	env := newPromoTestEnv(t, defaultPromoConfig())
	ctx := context.Background()

	cases := []struct {
		name  string
		input PromoCodeInput
		want  error
	}{
		{"bad code chars", flatInput("SAVE 10", "10"), ErrPromoCodeInvalid},
		{"code too short", flatInput("AB", "10"), ErrPromoCodeInvalid},
		{"unknown mode", PromoCodeInput{Code: "MODEX", Mode: "BOGO", ExpiryDate: futureDate()}, ErrPromoModeInvalid},
		{"missing expiry", PromoCodeInput{Code: "NOEXP", Mode: "FLAT", Value: decPtr("1")}, ErrPromoExpiryInvalid},
		{"bad expiry", PromoCodeInput{Code: "BADEXP", Mode: "FLAT", Value: decPtr("1"), ExpiryDate: "31/12/2026"}, ErrPromoExpiryInvalid},
		{"flat without value", PromoCodeInput{Code: "FLATNV", Mode: "FLAT", ExpiryDate: futureDate()}, ErrPromoConfigInvalid},
		{"percent above 100", PromoCodeInput{Code: "PCT150", Mode: "PERCENT", Value: decPtr("150"), ExpiryDate: futureDate()}, ErrPromoConfigInvalid},
		{"negative cap", PromoCodeInput{Code: "PCTNEG", Mode: "PERCENT", Value: decPtr("10"), MaxDiscount: decPtr("-1"), ExpiryDate: futureDate()}, ErrPromoConfigInvalid},
		{"bundle without min items", PromoCodeInput{Code: "BNDL0", Mode: "BUNDLE", BundlePrice: decPtr("10"), ExpiryDate: futureDate()}, ErrPromoConfigInvalid},
		{"bundle zero min items", PromoCodeInput{Code: "BNDL1", Mode: "BUNDLE", BundleMinItems: intPtr(0), BundlePrice: decPtr("10"), ExpiryDate: futureDate()}, ErrPromoConfigInvalid},
		{"bundle unknown product", PromoCodeInput{Code: "BNDL2", Mode: "BUNDLE", BundleMinItems: intPtr(2), BundlePrice: decPtr("10"), EligibleProductIDs: []uint{999}, ExpiryDate: futureDate()}, ErrPromoProductsInvalid},
		{"negative minimum", PromoCodeInput{Code: "MINNEG", Mode: "FLAT", Value: decPtr("1"), MinimumOrder: *decPtr("-5"), ExpiryDate: futureDate()}, ErrPromoConfigInvalid},
		{"negative max uses", PromoCodeInput{Code: "USENEG", Mode: "FLAT", Value: decPtr("1"), MaxUses: intPtr(-1), ExpiryDate: futureDate()}, ErrPromoConfigInvalid},
	}
	for _, tc := range cases {
		if _, err := env.admin.Create(ctx, 1, tc.input); !errors.Is(err, tc.want) {
			t.Fatalf("%s: want %v got %v", tc.name, tc.want, err)
		}
	}
}

func TestPromoCodeAdminClearsFieldsOfOtherModes(t *testing.T) {
	env := newPromoTestEnv(t, defaultPromoConfig())
	input := PromoCodeInput{
		Code:           "PCT10",
		Mode:           "PERCENT",
		Value:          decPtr("10"),
		MaxDiscount:    decPtr("50"),
		BundleMinItems: intPtr(3),
		BundlePrice:    decPtr("500"),
		ExpiryDate:     futureDate(),
	}
	row, err := env.admin.Create(context.Background(), 1, input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if row.BundleMinItems != nil || row.BundlePrice != nil {
		t.Fatalf("bundle fields should be cleared for PERCENT: %+v", row)
	}
	if row.MaxDiscount == nil || row.MaxDiscount.String() != "50.00" {
		t.Fatalf("max discount lost: %+v", row.MaxDiscount)
	}
}

func TestPromoCodeAdminUpdateKeepsUsedCount(t *testing.T) {
	env := newPromoTestEnv(t, defaultPromoConfig())
	ctx := context.Background()

	input := flatInput("KEEP5", "5")
	input.MaxUses = intPtr(10)
	row, err := env.admin.Create(ctx, 1, input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if ok, err := env.codeRepo.CompareAndIncrementUsedCount(row.ID, i); err != nil || !ok {
			t.Fatalf("increment %d failed ok=%v err=%v", i, ok, err)
		}
	}

	input.MaxUses = intPtr(2)
	if _, err := env.admin.Update(ctx, 1, row.ID, input); !errors.Is(err, ErrPromoMaxUsesBelowUsed) {
		t.Fatalf("want ErrPromoMaxUsesBelowUsed got %v", err)
	}

	input.MaxUses = intPtr(3)
	input.Code = "keep-five"
	updated, err := env.admin.Update(ctx, 1, row.ID, input)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Code != "KEEP-FIVE" || updated.UsedCount != 3 {
		t.Fatalf("unexpected updated row: code=%s used=%d", updated.Code, updated.UsedCount)
	}

	if _, err := env.admin.Update(ctx, 1, 9999, input); !errors.Is(err, ErrPromoCodeNotFound) {
		t.Fatalf("want ErrPromoCodeNotFound got %v", err)
	}
}

func TestPromoCodeAdminDeleteKeepsCodeReserved(t *testing.T) {
	env := newPromoTestEnv(t, defaultPromoConfig())
	ctx := context.Background()

	row, err := env.admin.Create(ctx, 1, flatInput("GONE", "1"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := env.admin.Delete(ctx, 1, row.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := env.admin.GetByID(row.ID); !errors.Is(err, ErrPromoCodeNotFound) {
		t.Fatalf("want ErrPromoCodeNotFound after delete got %v", err)
	}
	if _, err := env.admin.Create(ctx, 1, flatInput("gone", "1")); !errors.Is(err, ErrPromoCodeExists) {
		t.Fatalf("deleted code should stay reserved, got %v", err)
	}
}

func TestPromoCodeAdminSetActiveAndList(t *testing.T) {
	env := newPromoTestEnv(t, defaultPromoConfig())
	ctx := context.Background()

	first, err := env.admin.Create(ctx, 1, flatInput("ALPHA1", "1"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := env.admin.Create(ctx, 1, PromoCodeInput{Code: "BETA20", Mode: "PERCENT", Value: decPtr("20"), ExpiryDate: futureDate()}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	toggled, err := env.admin.SetActive(ctx, 1, first.ID, false)
	if err != nil || toggled.IsActive {
		t.Fatalf("set inactive failed: %+v err=%v", toggled, err)
	}

	inactive := false
	rows, total, err := env.admin.List(repository.PromoCodeListFilter{IsActive: &inactive})
	if err != nil || total != 1 || rows[0].Code != "ALPHA1" {
		t.Fatalf("inactive filter want ALPHA1 got total=%d err=%v", total, err)
	}
	_, total, err = env.admin.List(repository.PromoCodeListFilter{Mode: "percent"})
	if err != nil || total != 1 {
		t.Fatalf("mode filter want 1 got %d err=%v", total, err)
	}
	if _, _, err := env.admin.List(repository.PromoCodeListFilter{Mode: "bogus"}); !errors.Is(err, ErrPromoModeInvalid) {
		t.Fatalf("want ErrPromoModeInvalid got %v", err)
	}
}

func TestPromoCodeAdminSimulateBundle(t *testing.T) {
	env := newPromoTestEnv(t, defaultPromoConfig())
	ctx := context.Background()
	p1 := mustCreateProduct(t, env.productRepo, "plant-a", "200")
	p2 := mustCreateProduct(t, env.productRepo, "plant-b", "220")
	p3 := mustCreateProduct(t, env.productRepo, "plant-c", "250")

	row, err := env.admin.Create(ctx, 1, PromoCodeInput{
		Code:               "TRIO500",
		Mode:               "BUNDLE",
		BundleMinItems:     intPtr(3),
		BundlePrice:        decPtr("500"),
		EligibleProductIDs: []uint{p3.ID, p1.ID, p2.ID, p1.ID},
		ExpiryDate:         futureDate(),
	})
	if err != nil {
		t.Fatalf("create bundle failed: %v", err)
	}
	if len(row.EligibleProductIDs) != 3 {
		t.Fatalf("eligible products should be deduplicated: %v", row.EligibleProductIDs)
	}

	evaluation, err := env.admin.Simulate(row.ID, SimulateInput{
		Items: []CartLineInput{
			line(p1.ID, 2, "200"),
			line(p2.ID, 2, "220"),
			line(p3.ID, 2, "250"),
		},
	})
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}
	result := evaluation.Result
	if !result.Applied || result.DiscountAmount.StringFixed(2) != "340.00" || result.FinalTotal.StringFixed(2) != "1000.00" || result.BundleCount != 2 {
		t.Fatalf("unexpected bundle result: %+v", result)
	}

	past := time.Now().AddDate(1, 0, 0)
	evaluation, err = env.admin.Simulate(row.ID, SimulateInput{Items: []CartLineInput{line(p1.ID, 3, "200")}, Now: &past})
	if err != nil {
		t.Fatalf("simulate expired failed: %v", err)
	}
	if evaluation.Result.Applied || evaluation.Result.Reason != promo.ReasonExpired {
		t.Fatalf("want Expired got %+v", evaluation.Result)
	}
}

func TestPromoCodeAdminSimulateSurfacesConfigurationError(t *testing.T) {
	env := newPromoTestEnv(t, defaultPromoConfig())
	row, err := env.admin.Create(context.Background(), 1, flatInput("BROKEN", "5"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := env.db.Exec("UPDATE promo_codes SET value = NULL WHERE id = ?", row.ID).Error; err != nil {
		t.Fatalf("corrupt row failed: %v", err)
	}
	if _, err := env.admin.Simulate(row.ID, SimulateInput{Items: []CartLineInput{line(1, 1, "10")}}); !errors.Is(err, ErrPromoConfigInvalid) {
		t.Fatalf("want ErrPromoConfigInvalid got %v", err)
	}
	if _, err := env.admin.Simulate(row.ID, SimulateInput{Items: []CartLineInput{line(1, 0, "10")}}); !errors.Is(err, ErrCartInvalid) {
		t.Fatalf("want ErrCartInvalid got %v", err)
	}
}
