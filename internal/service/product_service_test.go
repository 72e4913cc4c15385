package service

import (
	"errors"
	"testing"

	"github.com/nhorsopheak/promotion-management/internal/models"
	"github.com/nhorsopheak/promotion-management/internal/repository"

	"github.com/shopspring/decimal"
)

func newProductServiceFixture(t *testing.T) (*ProductService, *models.Category) {
	t.Helper()
	db := newServiceTestDB(t)
	category := models.Category{Slug: "beverages", Name: "Beverages", IsActive: true}
	mustCreate(t, db, &category)
	svc := NewProductService(repository.NewProductRepository(db), repository.NewCategoryRepository(db))
	return svc, &category
}

func TestProductCreateNormalizesSKU(t *testing.T) {
	svc, category := newProductServiceFixture(t)

	product, err := svc.Create(ProductInput{
		CategoryID: category.ID,
		SKU:        "  bev-cola-330 ",
		Name:       "Cola 330ml",
		Price:      models.NewMoneyFromDecimal(decimal.RequireFromString("1.50")),
		Stock:      10,
	})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if product.SKU != "BEV-COLA-330" {
		t.Fatalf("expected normalized sku BEV-COLA-330, got %s", product.SKU)
	}
	if !product.IsActive {
		t.Fatalf("expected product active by default")
	}
}

func TestProductCreateDuplicateSKU(t *testing.T) {
	svc, category := newProductServiceFixture(t)

	input := ProductInput{
		CategoryID: category.ID,
		SKU:        "BEV-COLA",
		Name:       "Cola",
		Price:      models.NewMoneyFromDecimal(decimal.RequireFromString("1.50")),
		Stock:      10,
	}
	if _, err := svc.Create(input); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if _, err := svc.Create(input); !errors.Is(err, ErrProductSKUExists) {
		t.Fatalf("expected ErrProductSKUExists, got %v", err)
	}
}

func TestProductCreateUnknownCategory(t *testing.T) {
	svc, _ := newProductServiceFixture(t)

	_, err := svc.Create(ProductInput{
		CategoryID: 9999,
		SKU:        "BEV-COLA",
		Name:       "Cola",
		Price:      models.NewMoneyFromDecimal(decimal.RequireFromString("1.50")),
		Stock:      10,
	})
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestProductCreateRejectsNegativeValues(t *testing.T) {
	svc, category := newProductServiceFixture(t)

	_, err := svc.Create(ProductInput{
		CategoryID: category.ID,
		SKU:        "BEV-COLA",
		Name:       "Cola",
		Price:      models.NewMoneyFromDecimal(decimal.RequireFromString("-1")),
		Stock:      10,
	})
	if !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("expected ErrProductNotAvailable for negative price, got %v", err)
	}

	_, err = svc.Create(ProductInput{
		CategoryID: category.ID,
		SKU:        "BEV-COLA",
		Name:       "Cola",
		Price:      models.NewMoneyFromDecimal(decimal.RequireFromString("1.50")),
		Stock:      -1,
	})
	if !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("expected ErrProductNotAvailable for negative stock, got %v", err)
	}
}

func TestProductUpdateSKUConflict(t *testing.T) {
	svc, category := newProductServiceFixture(t)

	first, err := svc.Create(ProductInput{
		CategoryID: category.ID,
		SKU:        "BEV-COLA",
		Name:       "Cola",
		Price:      models.NewMoneyFromDecimal(decimal.RequireFromString("1.50")),
		Stock:      10,
	})
	if err != nil {
		t.Fatalf("create first product failed: %v", err)
	}
	second, err := svc.Create(ProductInput{
		CategoryID: category.ID,
		SKU:        "BEV-WATER",
		Name:       "Water",
		Price:      models.NewMoneyFromDecimal(decimal.RequireFromString("0.80")),
		Stock:      10,
	})
	if err != nil {
		t.Fatalf("create second product failed: %v", err)
	}

	_, err = svc.Update(second.ID, ProductInput{
		CategoryID: category.ID,
		SKU:        first.SKU,
		Name:       "Water",
		Price:      models.NewMoneyFromDecimal(decimal.RequireFromString("0.80")),
		Stock:      10,
	})
	if !errors.Is(err, ErrProductSKUExists) {
		t.Fatalf("expected ErrProductSKUExists, got %v", err)
	}
}

func TestProductDeleteNotFound(t *testing.T) {
	svc, _ := newProductServiceFixture(t)
	if err := svc.Delete(12345); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
