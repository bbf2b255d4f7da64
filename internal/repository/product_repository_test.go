package repository

import (
	"testing"

	"github.com/grabgarden/admin-api/internal/models"

	"github.com/shopspring/decimal"
)

func TestProductRepositorySearchAndIDs(t *testing.T) {
	repo := NewProductRepository(openRepositoryTestDB(t))
	seed := []models.Product{
		{Slug: "basil-pot", Name: "Basil Pot", PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(120)), IsActive: true},
		{Slug: "mint-pot", Name: "Mint Pot", PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(100)), IsActive: true},
		{Slug: "clay-tray", Name: "Clay Tray", PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(300)), IsActive: false},
	}
	for i := range seed {
		if err := repo.Create(&seed[i]); err != nil {
			t.Fatalf("create product failed: %v", err)
		}
	}

	rows, total, err := repo.List(ProductListFilter{Search: "POT"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("search want 2 got total=%d", total)
	}

	rows, total, err = repo.List(ProductListFilter{OnlyActive: true})
	if err != nil {
		t.Fatalf("active list failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("active list want 2 got %d", total)
	}

	found, err := repo.ListByIDs([]uint{seed[0].ID, seed[2].ID, 9999})
	if err != nil {
		t.Fatalf("list by ids failed: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("list by ids want 2 got %d", len(found))
	}

	mint, err := repo.GetBySlug(" mint-pot ")
	if err != nil || mint == nil || mint.ID != seed[1].ID {
		t.Fatalf("get by slug want mint-pot got %+v err=%v", mint, err)
	}
	missing, err := repo.GetBySlug("cactus")
	if err != nil || missing != nil {
		t.Fatalf("missing slug want nil got %+v err=%v", missing, err)
	}
}
