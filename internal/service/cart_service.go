package service

import (
	"time"

	"github.com/nhorsopheak/promotion-management/internal/models"
	"github.com/nhorsopheak/promotion-management/internal/promotion"
	"github.com/nhorsopheak/promotion-management/internal/repository"

	"github.com/shopspring/decimal"
)

// CartItemDetail 购物车项详情（用于响应）
type CartItemDetail struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice models.Money    `json:"unit_price"`
	Subtotal  models.Money    `json:"subtotal"`
	Product   *models.Product `json:"product"`
}

// UpsertCartItemInput 购物车更新输入
type UpsertCartItemInput struct {
	CashierID uint
	ProductID uint
	Quantity  int
}

// CartService 收银购物车服务
type CartService struct {
	cartRepo         repository.CartRepository
	productRepo      repository.ProductRepository
	promotionService *PromotionService
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, promotionService *PromotionService) *CartService {
	return &CartService{
		cartRepo:         cartRepo,
		productRepo:      productRepo,
		promotionService: promotionService,
	}
}

// ListByCashier 获取收银员购物车，下架商品顺手清理
func (s *CartService) ListByCashier(cashierID uint) ([]CartItemDetail, error) {
	if cashierID == 0 {
		return nil, ErrInvalidOrderItem
	}
	items, err := s.cartRepo.ListByCashier(cashierID)
	if err != nil {
		return nil, err
	}
	details := make([]CartItemDetail, 0, len(items))
	for _, item := range items {
		product := item.Product
		if product == nil || product.ID == 0 {
			p, err := s.productRepo.GetByID(item.ProductID)
			if err != nil {
				return nil, err
			}
			product = p
		}
		if product == nil || !product.IsActive {
			_ = s.cartRepo.DeleteByCashierAndProduct(cashierID, item.ProductID)
			continue
		}

		subtotal := product.Price.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity)))
		details = append(details, CartItemDetail{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			Subtotal:  models.NewMoneyFromDecimal(subtotal),
			Product:   product,
		})
	}
	return details, nil
}

// UpsertItem 添加或更新购物车项
func (s *CartService) UpsertItem(input UpsertCartItemInput) error {
	if input.CashierID == 0 || input.ProductID == 0 || input.Quantity <= 0 {
		return ErrInvalidOrderItem
	}
	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return err
	}
	if product == nil || !product.IsActive {
		return ErrProductNotAvailable
	}
	if product.Stock < input.Quantity {
		return ErrInsufficientStock
	}

	now := time.Now()
	item := &models.CartItem{
		CashierID: input.CashierID,
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.cartRepo.Upsert(item)
}

// RemoveItem 删除购物车项
func (s *CartService) RemoveItem(cashierID, productID uint) error {
	if cashierID == 0 || productID == 0 {
		return ErrInvalidOrderItem
	}
	return s.cartRepo.DeleteByCashierAndProduct(cashierID, productID)
}

// Clear 清空购物车
func (s *CartService) Clear(cashierID uint) error {
	if cashierID == 0 {
		return ErrInvalidOrderItem
	}
	return s.cartRepo.ClearByCashier(cashierID)
}

// BuildLines 将购物车快照转换为促销引擎输入行
func (s *CartService) BuildLines(cashierID uint) ([]*promotion.CartLine, error) {
	if cashierID == 0 {
		return nil, ErrInvalidOrderItem
	}
	items, err := s.cartRepo.ListByCashier(cashierID)
	if err != nil {
		return nil, err
	}
	lines := make([]*promotion.CartLine, 0, len(items))
	for _, item := range items {
		product := item.Product
		if product == nil || product.ID == 0 {
			p, err := s.productRepo.GetByID(item.ProductID)
			if err != nil {
				return nil, err
			}
			product = p
		}
		if product == nil || !product.IsActive {
			continue
		}
		lines = append(lines, &promotion.CartLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			SKU:         product.SKU,
			CategoryID:  product.CategoryID,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price.Decimal,
		})
	}
	return lines, nil
}

// Preview 对当前购物车执行促销试算
func (s *CartService) Preview(cashierID, userID uint) (*EvaluationResult, error) {
	lines, err := s.BuildLines(cashierID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}
	return s.promotionService.Evaluate(lines, userID, time.Now())
}

// PreviewLineInput 临时试算输入行
type PreviewLineInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// PreviewLines 对临时行执行促销试算，不读写购物车
func (s *CartService) PreviewLines(entries []PreviewLineInput, userID uint) (*EvaluationResult, error) {
	if len(entries) == 0 {
		return nil, ErrCartEmpty
	}
	lines := make([]*promotion.CartLine, 0, len(entries))
	for _, entry := range entries {
		if entry.ProductID == 0 || entry.Quantity <= 0 {
			return nil, ErrInvalidOrderItem
		}
		product, err := s.productRepo.GetByID(entry.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil || !product.IsActive {
			return nil, ErrProductNotAvailable
		}
		lines = append(lines, &promotion.CartLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			SKU:         product.SKU,
			CategoryID:  product.CategoryID,
			Quantity:    entry.Quantity,
			UnitPrice:   product.Price.Decimal,
		})
	}
	return s.promotionService.Evaluate(lines, userID, time.Now())
}
