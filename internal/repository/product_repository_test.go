package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nhorsopheak/promotion-management/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Promotion{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func seedCategory(t *testing.T, db *gorm.DB, slug string) *models.Category {
	t.Helper()
	category := &models.Category{Slug: slug, Name: slug, IsActive: true}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	return category
}

func seedProduct(t *testing.T, db *gorm.DB, categoryID uint, sku, name, price string, stock int, active bool) *models.Product {
	t.Helper()
	product := &models.Product{
		CategoryID: categoryID,
		SKU:        sku,
		Name:       name,
		Price:      models.NewMoneyFromDecimal(decimal.RequireFromString(price)),
		Stock:      stock,
		IsActive:   active,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product %s failed: %v", sku, err)
	}
	return product
}

func TestProductListFilters(t *testing.T) {
	db := newRepositoryTestDB(t)
	repo := NewProductRepository(db)

	beverages := seedCategory(t, db, "beverages")
	snacks := seedCategory(t, db, "snacks")
	seedProduct(t, db, beverages.ID, "BEV-COLA-330", "Cola 330ml", "1.50", 10, true)
	seedProduct(t, db, beverages.ID, "BEV-WATER-500", "Water 500ml", "0.80", 10, false)
	seedProduct(t, db, snacks.ID, "SNK-CHIPS", "Potato Chips", "2.40", 5, true)

	rows, total, err := repo.List(ProductListFilter{CategoryID: beverages.ID})
	if err != nil {
		t.Fatalf("list by category failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("category filter want 2 got total=%d len=%d", total, len(rows))
	}

	rows, total, err = repo.List(ProductListFilter{CategoryID: beverages.ID, OnlyActive: true})
	if err != nil {
		t.Fatalf("list only active failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].SKU != "BEV-COLA-330" {
		t.Fatalf("active filter want only cola, got total=%d rows=%+v", total, rows)
	}

	// 搜索同时匹配名称和 SKU
	rows, total, err = repo.List(ProductListFilter{Search: "Chips"})
	if err != nil {
		t.Fatalf("list by name search failed: %v", err)
	}
	if total != 1 || rows[0].SKU != "SNK-CHIPS" {
		t.Fatalf("name search want chips, got total=%d rows=%+v", total, rows)
	}
	rows, total, err = repo.List(ProductListFilter{Search: "BEV-COLA"})
	if err != nil {
		t.Fatalf("list by sku search failed: %v", err)
	}
	if total != 1 || rows[0].Name != "Cola 330ml" {
		t.Fatalf("sku search want cola, got total=%d rows=%+v", total, rows)
	}
}

func TestProductGetBySKU(t *testing.T) {
	db := newRepositoryTestDB(t)
	repo := NewProductRepository(db)

	category := seedCategory(t, db, "beverages")
	seedProduct(t, db, category.ID, "BEV-COLA-330", "Cola 330ml", "1.50", 10, true)

	product, err := repo.GetBySKU("BEV-COLA-330")
	if err != nil {
		t.Fatalf("get by sku failed: %v", err)
	}
	if product == nil || product.Name != "Cola 330ml" {
		t.Fatalf("unexpected product: %+v", product)
	}

	missing, err := repo.GetBySKU("NOPE")
	if err != nil {
		t.Fatalf("get missing sku failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing sku, got %+v", missing)
	}
}

func TestProductDecrementStock(t *testing.T) {
	db := newRepositoryTestDB(t)
	repo := NewProductRepository(db)

	category := seedCategory(t, db, "beverages")
	product := seedProduct(t, db, category.ID, "BEV-COLA-330", "Cola 330ml", "1.50", 5, true)

	if err := repo.DecrementStock(product.ID, 3); err != nil {
		t.Fatalf("decrement stock failed: %v", err)
	}
	reloaded, err := repo.GetByID(product.ID)
	if err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if reloaded.Stock != 2 {
		t.Fatalf("expected stock 2, got %d", reloaded.Stock)
	}

	// 剩余库存不足，守卫更新不生效
	if err := repo.DecrementStock(product.ID, 3); err == nil {
		t.Fatalf("expected error when stock is insufficient")
	}
	reloaded, err = repo.GetByID(product.ID)
	if err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if reloaded.Stock != 2 {
		t.Fatalf("expected stock unchanged at 2, got %d", reloaded.Stock)
	}

	// 非正数量视为无操作
	if err := repo.DecrementStock(product.ID, 0); err != nil {
		t.Fatalf("zero quantity should be a no-op, got %v", err)
	}
}
