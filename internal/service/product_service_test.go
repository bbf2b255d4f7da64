package service

import (
	"testing"

	"github.com/grabgarden/admin-api/internal/models"
	"github.com/grabgarden/admin-api/internal/repository"
)

func TestProductServiceListForPickerHidesInactive(t *testing.T) {
	db := openServiceTestDB(t)
	repo := repository.NewProductRepository(db)
	fern := mustCreateProduct(t, repo, "fern-pot", "80")
	mustCreateProduct(t, repo, "fern-mist", "15")
	moss := mustCreateProduct(t, repo, "moss-ball", "30")
	if err := db.Model(&models.Product{}).Where("id = ?", moss.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}

	svc := NewProductService(repo)
	rows, total, err := svc.ListForPicker("", 1, 20)
	if err != nil {
		t.Fatalf("list for picker failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("want 2 active products got total=%d len=%d", total, len(rows))
	}
	for _, row := range rows {
		if row.ID == moss.ID {
			t.Fatalf("inactive product should be hidden")
		}
	}

	rows, total, err = svc.ListForPicker("pot", 1, 20)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if total != 1 || rows[0].ID != fern.ID {
		t.Fatalf("search want fern-pot got total=%d", total)
	}
}
