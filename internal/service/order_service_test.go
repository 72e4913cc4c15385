package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/nhorsopheak/promotion-management/internal/constants"
	"github.com/nhorsopheak/promotion-management/internal/models"
	"github.com/nhorsopheak/promotion-management/internal/promotion"
	"github.com/nhorsopheak/promotion-management/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newServiceTestDB(t *testing.T) *gorm.DB {
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
		&models.CartItem{},
		&models.Promotion{},
		&models.PromotionLog{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

type checkoutFixture struct {
	db           *gorm.DB
	cartService  *CartService
	orderService *OrderService
	productRepo  repository.ProductRepository
	cartRepo     repository.CartRepository
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	db := newServiceTestDB(t)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	promotionRepo := repository.NewPromotionRepository(db)
	logRepo := repository.NewPromotionLogRepository(db)

	promotionService := NewPromotionService(promotionRepo, logRepo, userRepo, promotion.NewEngine(nil))
	cartService := NewCartService(cartRepo, productRepo, promotionService)
	orderService := NewOrderService(db, orderRepo, productRepo, cartRepo, userRepo, cartService, promotionService, nil)
	return &checkoutFixture{
		db:           db,
		cartService:  cartService,
		orderService: orderService,
		productRepo:  productRepo,
		cartRepo:     cartRepo,
	}
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("create fixture failed: %v", err)
	}
}

func activeWindow(now time.Time) (*time.Time, *time.Time) {
	start := now.Add(-time.Hour)
	end := now.Add(24 * time.Hour)
	return &start, &end
}

func TestCheckoutAppliesBuyTwoGetOneFree(t *testing.T) {
	f := newCheckoutFixture(t)
	now := time.Now()
	start, end := activeWindow(now)

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
	mustCreate(t, f.db, &models.Promotion{
		Code: "B2G1", Name: "Buy 2 Get 1",
		Type:      constants.PromotionTypeBuyXGetYFree,
		Status:    constants.PromotionStatusActive,
		StartDate: start, EndDate: end,
		Priority:   100,
		Conditions: `{"buy_quantity":2,"get_quantity":1}`,
	})

	cashierID := uint(7)
	if err := f.cartService.UpsertItem(UpsertCartItemInput{CashierID: cashierID, ProductID: cola.ID, Quantity: 2}); err != nil {
		t.Fatalf("add cola failed: %v", err)
	}
	if err := f.cartService.UpsertItem(UpsertCartItemInput{CashierID: cashierID, ProductID: water.ID, Quantity: 1}); err != nil {
		t.Fatalf("add water failed: %v", err)
	}

	result, err := f.orderService.Checkout(CheckoutInput{CashierID: cashierID, PaymentMethod: "cash"})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if result.Order == nil || result.Order.ID == 0 {
		t.Fatalf("expected persisted order, got %+v", result.Order)
	}
	if !strings.HasPrefix(result.Order.OrderNo, "POS") {
		t.Fatalf("unexpected order no: %s", result.Order.OrderNo)
	}

	// 3.80 折前小计，最便宜的水被赠出
	if !result.Order.Subtotal.Decimal.Equal(decimal.RequireFromString("3.80")) {
		t.Fatalf("expected subtotal 3.80, got %s", result.Order.Subtotal.Decimal.String())
	}
	if !result.Order.DiscountAmount.Decimal.Equal(decimal.RequireFromString("0.80")) {
		t.Fatalf("expected discount 0.80, got %s", result.Order.DiscountAmount.Decimal.String())
	}
	if !result.Order.TotalAmount.Decimal.Equal(decimal.RequireFromString("3.00")) {
		t.Fatalf("expected total 3.00, got %s", result.Order.TotalAmount.Decimal.String())
	}
	if len(result.FreeItems) != 1 || result.FreeItems[0].ProductID != water.ID || result.FreeItems[0].Quantity != 1 {
		t.Fatalf("expected one free water, got %+v", result.FreeItems)
	}

	// 赠品拆出独立订单项
	var items []models.OrderItem
	if err := f.db.Where("order_id = ?", result.Order.ID).Find(&items).Error; err != nil {
		t.Fatalf("load order items failed: %v", err)
	}
	freeRows := 0
	for _, item := range items {
		if item.IsFree {
			freeRows++
			if item.ProductName != "Water" || item.Quantity != 1 {
				t.Fatalf("unexpected free row: %+v", item)
			}
		}
	}
	if freeRows != 1 {
		t.Fatalf("expected 1 free order item, got %d", freeRows)
	}

	// 库存扣减与购物车清空
	reloadedCola, err := f.productRepo.GetByID(cola.ID)
	if err != nil {
		t.Fatalf("reload cola failed: %v", err)
	}
	if reloadedCola.Stock != 8 {
		t.Fatalf("expected cola stock 8, got %d", reloadedCola.Stock)
	}
	reloadedWater, err := f.productRepo.GetByID(water.ID)
	if err != nil {
		t.Fatalf("reload water failed: %v", err)
	}
	if reloadedWater.Stock != 9 {
		t.Fatalf("expected water stock 9, got %d", reloadedWater.Stock)
	}
	remaining, err := f.cartRepo.ListByCashier(cashierID)
	if err != nil {
		t.Fatalf("list cart failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected empty cart after checkout, got %d items", len(remaining))
	}
}

func TestCheckoutKeepsFreeRowWhenDiscountsStack(t *testing.T) {
	f := newCheckoutFixture(t)
	now := time.Now()
	start, end := activeWindow(now)

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

	// 低优先级的大额百分比折扣摊到被买赠释放的行并覆盖其行明细，赠品行不受影响
	mustCreate(t, f.db, &models.Promotion{
		Code: "B2G1", Name: "Buy 2 Get 1",
		Type:      constants.PromotionTypeBuyXGetYFree,
		Status:    constants.PromotionStatusActive,
		StartDate: start, EndDate: end,
		Priority:   100,
		Conditions: `{"buy_quantity":2,"get_quantity":1}`,
	})
	mustCreate(t, f.db, &models.Promotion{
		Code: "SAVE90", Name: "Save 90%",
		Type:      constants.PromotionTypePercentage,
		Status:    constants.PromotionStatusActive,
		StartDate: start, EndDate: end,
		Priority:   50,
		Conditions: `{"discount_type":"percentage","discount_value":90,"apply_to_type":"all"}`,
	})

	cashierID := uint(8)
	if err := f.cartService.UpsertItem(UpsertCartItemInput{CashierID: cashierID, ProductID: cola.ID, Quantity: 2}); err != nil {
		t.Fatalf("add cola failed: %v", err)
	}
	if err := f.cartService.UpsertItem(UpsertCartItemInput{CashierID: cashierID, ProductID: water.ID, Quantity: 1}); err != nil {
		t.Fatalf("add water failed: %v", err)
	}

	result, err := f.orderService.Checkout(CheckoutInput{CashierID: cashierID, PaymentMethod: "cash"})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if len(result.FreeItems) != 1 || result.FreeItems[0].ProductID != water.ID {
		t.Fatalf("expected one free water, got %+v", result.FreeItems)
	}

	var items []models.OrderItem
	if err := f.db.Where("order_id = ?", result.Order.ID).Find(&items).Error; err != nil {
		t.Fatalf("load order items failed: %v", err)
	}
	freeRows := 0
	paidColaRows := 0
	for _, item := range items {
		if item.IsFree {
			freeRows++
			if item.ProductName != "Water" || item.Quantity != 1 {
				t.Fatalf("unexpected free row: %+v", item)
			}
			continue
		}
		if item.ProductName == "Cola" {
			paidColaRows++
		}
	}
	if freeRows != 1 {
		t.Fatalf("expected 1 free order item, got %d", freeRows)
	}
	if paidColaRows != 1 {
		t.Fatalf("expected paid cola row, got items %+v", items)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)
	_, err := f.orderService.Checkout(CheckoutInput{CashierID: 3})
	if !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}
}

func TestCheckoutRejectsUnknownPaymentMethod(t *testing.T) {
	f := newCheckoutFixture(t)
	_, err := f.orderService.Checkout(CheckoutInput{CashierID: 3, PaymentMethod: "barter"})
	if !errors.Is(err, ErrInvalidOrderItem) {
		t.Fatalf("expected ErrInvalidOrderItem, got %v", err)
	}
}

func TestCheckoutUnknownCustomer(t *testing.T) {
	f := newCheckoutFixture(t)

	category := models.Category{Slug: "snacks", Name: "Snacks", IsActive: true}
	mustCreate(t, f.db, &category)
	chips := models.Product{
		CategoryID: category.ID, SKU: "SNK-CHIPS", Name: "Chips",
		Price: models.NewMoneyFromDecimal(decimal.RequireFromString("2.40")),
		Stock: 5, IsActive: true,
	}
	mustCreate(t, f.db, &chips)

	cashierID := uint(4)
	if err := f.cartService.UpsertItem(UpsertCartItemInput{CashierID: cashierID, ProductID: chips.ID, Quantity: 1}); err != nil {
		t.Fatalf("add chips failed: %v", err)
	}

	_, err := f.orderService.Checkout(CheckoutInput{CashierID: cashierID, UserID: 9999})
	if !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestCheckoutInsufficientStockRollsBack(t *testing.T) {
	f := newCheckoutFixture(t)

	category := models.Category{Slug: "snacks", Name: "Snacks", IsActive: true}
	mustCreate(t, f.db, &category)
	chips := models.Product{
		CategoryID: category.ID, SKU: "SNK-CHIPS", Name: "Chips",
		Price: models.NewMoneyFromDecimal(decimal.RequireFromString("2.40")),
		Stock: 3, IsActive: true,
	}
	mustCreate(t, f.db, &chips)

	cashierID := uint(5)
	if err := f.cartService.UpsertItem(UpsertCartItemInput{CashierID: cashierID, ProductID: chips.ID, Quantity: 3}); err != nil {
		t.Fatalf("add chips failed: %v", err)
	}
	// 结账前库存被并发卖掉
	if err := f.db.Model(&models.Product{}).Where("id = ?", chips.ID).Update("stock", 1).Error; err != nil {
		t.Fatalf("shrink stock failed: %v", err)
	}

	_, err := f.orderService.Checkout(CheckoutInput{CashierID: cashierID})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// 事务回滚：无订单落库，购物车保留
	var orderCount int64
	if err := f.db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if orderCount != 0 {
		t.Fatalf("expected no orders after rollback, got %d", orderCount)
	}
	remaining, err := f.cartRepo.ListByCashier(cashierID)
	if err != nil {
		t.Fatalf("list cart failed: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected cart preserved after rollback, got %d items", len(remaining))
	}
}

func TestGetOrderByNo(t *testing.T) {
	f := newCheckoutFixture(t)

	order := models.Order{
		OrderNo:   "POS20260830000001",
		CashierID: 1,
		Status:    constants.OrderStatusCompleted,
	}
	mustCreate(t, f.db, &order)

	got, err := f.orderService.GetOrderByNo("POS20260830000001")
	if err != nil {
		t.Fatalf("get order by no failed: %v", err)
	}
	if got.ID != order.ID {
		t.Fatalf("expected order id %d, got %d", order.ID, got.ID)
	}

	if _, err := f.orderService.GetOrderByNo("POS-MISSING"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}
