package service

import (
	"errors"
	"testing"
	"time"

	"github.com/nhorsopheak/promotion-management/internal/constants"
	"github.com/nhorsopheak/promotion-management/internal/models"

	"github.com/shopspring/decimal"
)

func TestCartUpsertAndList(t *testing.T) {
	f := newCheckoutFixture(t)

	category := models.Category{Slug: "beverages", Name: "Beverages", IsActive: true}
	mustCreate(t, f.db, &category)
	cola := models.Product{
		CategoryID: category.ID, SKU: "BEV-COLA", Name: "Cola",
		Price: models.NewMoneyFromDecimal(decimal.RequireFromString("1.50")),
		Stock: 10, IsActive: true,
	}
	mustCreate(t, f.db, &cola)

	cashierID := uint(11)
	if err := f.cartService.UpsertItem(UpsertCartItemInput{CashierID: cashierID, ProductID: cola.ID, Quantity: 2}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	// 同商品再次写入覆盖数量
	if err := f.cartService.UpsertItem(UpsertCartItemInput{CashierID: cashierID, ProductID: cola.ID, Quantity: 5}); err != nil {
		t.Fatalf("upsert overwrite failed: %v", err)
	}

	items, err := f.cartService.ListByCashier(cashierID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 cart item, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", items[0].Quantity)
	}
	if !items[0].Subtotal.Decimal.Equal(decimal.RequireFromString("7.50")) {
		t.Fatalf("expected subtotal 7.50, got %s", items[0].Subtotal.Decimal.String())
	}
}

func TestCartUpsertValidation(t *testing.T) {
	f := newCheckoutFixture(t)

	category := models.Category{Slug: "beverages", Name: "Beverages", IsActive: true}
	mustCreate(t, f.db, &category)
	inactive := models.Product{
		CategoryID: category.ID, SKU: "BEV-OLD", Name: "Old Drink",
		Price: models.NewMoneyFromDecimal(decimal.RequireFromString("1.00")),
		Stock: 10, IsActive: false,
	}
	lowStock := models.Product{
		CategoryID: category.ID, SKU: "BEV-RARE", Name: "Rare Drink",
		Price: models.NewMoneyFromDecimal(decimal.RequireFromString("9.00")),
		Stock: 2, IsActive: true,
	}
	mustCreate(t, f.db, &inactive)
	mustCreate(t, f.db, &lowStock)

	if err := f.cartService.UpsertItem(UpsertCartItemInput{CashierID: 1, ProductID: 0, Quantity: 1}); !errors.Is(err, ErrInvalidOrderItem) {
		t.Fatalf("expected ErrInvalidOrderItem, got %v", err)
	}
	if err := f.cartService.UpsertItem(UpsertCartItemInput{CashierID: 1, ProductID: 9999, Quantity: 1}); !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("expected ErrProductNotAvailable for missing product, got %v", err)
	}
	if err := f.cartService.UpsertItem(UpsertCartItemInput{CashierID: 1, ProductID: inactive.ID, Quantity: 1}); !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("expected ErrProductNotAvailable for inactive product, got %v", err)
	}
	if err := f.cartService.UpsertItem(UpsertCartItemInput{CashierID: 1, ProductID: lowStock.ID, Quantity: 3}); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
}

func TestCartListDropsDeactivatedProducts(t *testing.T) {
	f := newCheckoutFixture(t)

	category := models.Category{Slug: "beverages", Name: "Beverages", IsActive: true}
	mustCreate(t, f.db, &category)
	cola := models.Product{
		CategoryID: category.ID, SKU: "BEV-COLA", Name: "Cola",
		Price: models.NewMoneyFromDecimal(decimal.RequireFromString("1.50")),
		Stock: 10, IsActive: true,
	}
	mustCreate(t, f.db, &cola)

	cashierID := uint(12)
	if err := f.cartService.UpsertItem(UpsertCartItemInput{CashierID: cashierID, ProductID: cola.ID, Quantity: 1}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	// 商品随后被下架
	if err := f.db.Model(&models.Product{}).Where("id = ?", cola.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}

	items, err := f.cartService.ListByCashier(cashierID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected deactivated product removed from cart, got %d items", len(items))
	}
}

func TestCartRemoveAndClear(t *testing.T) {
	f := newCheckoutFixture(t)

	category := models.Category{Slug: "beverages", Name: "Beverages", IsActive: true}
	mustCreate(t, f.db, &category)
	cola := models.Product{
		CategoryID: category.ID, SKU: "BEV-COLA", Name: "Cola",
		Price: models.NewMoneyFromDecimal(decimal.RequireFromString("1.50")),
		Stock: 10, IsActive: true,
	}
	water := models.Product{
		CategoryID: category.ID, SKU: "BEV-WATER", Name: "Water",
		Price: models.NewMoneyFromDecimal(decimal.RequireFromString("0.80")),
		Stock: 10, IsActive: true,
	}
	mustCreate(t, f.db, &cola)
	mustCreate(t, f.db, &water)

	cashierID := uint(13)
	if err := f.cartService.UpsertItem(UpsertCartItemInput{CashierID: cashierID, ProductID: cola.ID, Quantity: 1}); err != nil {
		t.Fatalf("upsert cola failed: %v", err)
	}
	if err := f.cartService.UpsertItem(UpsertCartItemInput{CashierID: cashierID, ProductID: water.ID, Quantity: 1}); err != nil {
		t.Fatalf("upsert water failed: %v", err)
	}

	if err := f.cartService.RemoveItem(cashierID, cola.ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	items, err := f.cartService.ListByCashier(cashierID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 1 || items[0].ProductID != water.ID {
		t.Fatalf("expected only water left, got %+v", items)
	}

	if err := f.cartService.Clear(cashierID); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	items, err = f.cartService.ListByCashier(cashierID)
	if err != nil {
		t.Fatalf("list after clear failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(items))
	}
}

func TestCartPreviewEmpty(t *testing.T) {
	f := newCheckoutFixture(t)
	if _, err := f.cartService.Preview(21, 0); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}
}

func TestCartPreviewClampsTotalAtZero(t *testing.T) {
	f := newCheckoutFixture(t)
	now := time.Now()
	start, end := activeWindow(now)

	category := models.Category{Slug: "beverages", Name: "Beverages", IsActive: true}
	mustCreate(t, f.db, &category)
	cola := models.Product{
		CategoryID: category.ID, SKU: "BEV-COLA", Name: "Cola",
		Price: models.NewMoneyFromDecimal(decimal.RequireFromString("10.00")),
		Stock: 10, IsActive: true,
	}
	mustCreate(t, f.db, &cola)

	// 买一赠一与全场 100% 折扣叠加，折扣总额超过折前小计
	mustCreate(t, f.db, &models.Promotion{
		Code: "B1G1", Name: "Buy 1 Get 1",
		Type:      constants.PromotionTypeBuyXGetYFree,
		Status:    constants.PromotionStatusActive,
		StartDate: start, EndDate: end,
		Priority:   100,
		Conditions: `{"buy_quantity":1,"get_quantity":1}`,
	})
	mustCreate(t, f.db, &models.Promotion{
		Code: "ALL100", Name: "Everything Free",
		Type:      constants.PromotionTypePercentage,
		Status:    constants.PromotionStatusActive,
		StartDate: start, EndDate: end,
		Priority:   50,
		Conditions: `{"discount_type":"percentage","discount_value":100,"apply_to_type":"all"}`,
	})

	cashierID := uint(31)
	if err := f.cartService.UpsertItem(UpsertCartItemInput{CashierID: cashierID, ProductID: cola.ID, Quantity: 2}); err != nil {
		t.Fatalf("add cola failed: %v", err)
	}

	result, err := f.cartService.Preview(cashierID, 0)
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if !result.Subtotal.Decimal.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("expected subtotal 20.00, got %s", result.Subtotal.Decimal.String())
	}
	if !result.Discount.Decimal.GreaterThan(result.Subtotal.Decimal) {
		t.Fatalf("expected stacked discount above subtotal, got %s", result.Discount.Decimal.String())
	}
	if !result.Total.Decimal.IsZero() {
		t.Fatalf("expected total clamped to 0, got %s", result.Total.Decimal.String())
	}
}

func TestCartPreviewLines(t *testing.T) {
	f := newCheckoutFixture(t)

	category := models.Category{Slug: "beverages", Name: "Beverages", IsActive: true}
	mustCreate(t, f.db, &category)
	cola := models.Product{
		CategoryID: category.ID, SKU: "BEV-COLA", Name: "Cola",
		Price: models.NewMoneyFromDecimal(decimal.RequireFromString("1.50")),
		Stock: 10, IsActive: true,
	}
	mustCreate(t, f.db, &cola)

	// 临时行试算不读写购物车
	result, err := f.cartService.PreviewLines([]PreviewLineInput{{ProductID: cola.ID, Quantity: 2}}, 0)
	if err != nil {
		t.Fatalf("preview lines failed: %v", err)
	}
	if !result.Subtotal.Decimal.Equal(decimal.RequireFromString("3.00")) {
		t.Fatalf("expected subtotal 3.00, got %s", result.Subtotal.Decimal.String())
	}

	if _, err := f.cartService.PreviewLines(nil, 0); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty for empty lines, got %v", err)
	}
	if _, err := f.cartService.PreviewLines([]PreviewLineInput{{ProductID: 9999, Quantity: 1}}, 0); !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("expected ErrProductNotAvailable, got %v", err)
	}
}
