package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/nhorsopheak/promotion-management/internal/constants"
	"github.com/nhorsopheak/promotion-management/internal/logger"
	"github.com/nhorsopheak/promotion-management/internal/models"
	"github.com/nhorsopheak/promotion-management/internal/promotion"
	"github.com/nhorsopheak/promotion-management/internal/queue"
	"github.com/nhorsopheak/promotion-management/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CheckoutInput 收银结账输入
type CheckoutInput struct {
	CashierID     uint
	UserID        uint
	CustomerName  string
	CustomerPhone string
	PaymentMethod string
	Notes         string
}

// CheckoutResult 结账结果
type CheckoutResult struct {
	Order      *models.Order        `json:"order"`
	Outcomes   []*promotion.Outcome `json:"outcomes"`
	FreeItems  []promotion.FreeItem `json:"free_items"`
	ChangeNote string               `json:"change_note,omitempty"`
}

// OrderService 订单服务
// 结账时在服务端权威评估促销，订单与订单项在同一事务内落库。
type OrderService struct {
	db               *gorm.DB
	orderRepo        repository.OrderRepository
	productRepo      repository.ProductRepository
	cartRepo         repository.CartRepository
	userRepo         repository.UserRepository
	cartService      *CartService
	promotionService *PromotionService
	queueClient      *queue.Client
}

// NewOrderService 创建订单服务
func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	userRepo repository.UserRepository,
	cartService *CartService,
	promotionService *PromotionService,
	queueClient *queue.Client,
) *OrderService {
	return &OrderService{
		db:               db,
		orderRepo:        orderRepo,
		productRepo:      productRepo,
		cartRepo:         cartRepo,
		userRepo:         userRepo,
		cartService:      cartService,
		promotionService: promotionService,
		queueClient:      queueClient,
	}
}

// Checkout 结账：评估促销、创建订单、扣减库存、清空购物车
func (s *OrderService) Checkout(input CheckoutInput) (*CheckoutResult, error) {
	if input.CashierID == 0 {
		return nil, ErrInvalidOrderItem
	}
	paymentMethod := strings.ToLower(strings.TrimSpace(input.PaymentMethod))
	if paymentMethod == "" {
		paymentMethod = constants.PaymentMethodCash
	}
	if paymentMethod != constants.PaymentMethodCash && paymentMethod != constants.PaymentMethodCard {
		return nil, ErrInvalidOrderItem
	}

	lines, err := s.cartService.BuildLines(input.CashierID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}

	now := time.Now()
	evaluation, err := s.promotionService.Evaluate(lines, input.UserID, now)
	if err != nil {
		return nil, err
	}

	customerName := strings.TrimSpace(input.CustomerName)
	customerPhone := strings.TrimSpace(input.CustomerPhone)
	var userID *uint
	if input.UserID != 0 {
		customer, err := s.userRepo.GetByID(input.UserID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, ErrCustomerNotFound
		}
		id := customer.ID
		userID = &id
		if customerName == "" {
			customerName = customer.Name
		}
		if customerPhone == "" {
			customerPhone = customer.Phone
		}
	}

	order := &models.Order{
		OrderNo:           generateOrderNo(),
		UserID:            userID,
		CashierID:         input.CashierID,
		Status:            constants.OrderStatusCompleted,
		Subtotal:          evaluation.Subtotal,
		DiscountAmount:    evaluation.Discount,
		TotalAmount:       evaluation.Total,
		CustomerName:      customerName,
		CustomerPhone:     customerPhone,
		PaymentMethod:     paymentMethod,
		PaymentStatus:     constants.PaymentStatusPaid,
		PaidAt:            &now,
		AppliedPromotions: buildAppliedPromotions(evaluation.Outcomes),
		Notes:             strings.TrimSpace(input.Notes),
		Items:             buildOrderItems(evaluation.Lines),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.WithTx(tx).Create(order); err != nil {
			return err
		}
		productRepo := s.productRepo.WithTx(tx)
		for _, line := range evaluation.Lines {
			if err := productRepo.DecrementStock(line.ProductID, line.Quantity); err != nil {
				return ErrInsufficientStock
			}
		}
		return s.cartRepo.WithTx(tx).ClearByCashier(input.CashierID)
	})
	if err != nil {
		return nil, err
	}

	s.enqueueUsageLogs(order, evaluation.Outcomes)

	return &CheckoutResult{
		Order:     order,
		Outcomes:  evaluation.Outcomes,
		FreeItems: evaluation.FreeItems,
	}, nil
}

// enqueueUsageLogs 结账成功后异步记录促销使用
func (s *OrderService) enqueueUsageLogs(order *models.Order, outcomes []*promotion.Outcome) {
	if s.queueClient == nil || !s.queueClient.Enabled() {
		return
	}
	for _, outcome := range outcomes {
		if !outcome.Applied {
			continue
		}
		payload := queue.PromotionUsageLogPayload{
			PromotionID:    outcome.PromotionID,
			OrderID:        order.ID,
			DiscountAmount: outcome.DiscountAmount.StringFixed(2),
			AffectedItems:  outcome.AffectedProductIDs,
			Notes:          outcome.Message,
		}
		if order.UserID != nil {
			payload.UserID = *order.UserID
		}
		for _, free := range outcome.FreeItems {
			payload.FreeItems = append(payload.FreeItems, fmt.Sprintf("%s x%d", free.ProductName, free.Quantity))
		}
		if err := s.queueClient.EnqueuePromotionUsageLog(payload); err != nil {
			logger.Warnw("order_promotion_usage_enqueue_failed",
				"order_id", order.ID,
				"promotion_id", outcome.PromotionID,
				"error", err,
			)
		}
	}
}

// buildOrderItems 将评估后的购物车行转为订单项
// 买赠命中的行拆出独立赠品行（FinalPrice 为 0），付费件数单独成行。
func buildOrderItems(lines []*promotion.CartLine) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		productID := line.ProductID
		freeQty := freeQuantityOf(line)
		paidQty := line.Quantity - freeQty
		var promotionID *uint
		if line.AppliedPromotionID != 0 {
			id := line.AppliedPromotionID
			promotionID = &id
		}

		if freeQty > 0 {
			freeValue := line.UnitPrice.Mul(decimal.NewFromInt(int64(freeQty)))
			items = append(items, models.OrderItem{
				ProductID:        &productID,
				ProductName:      line.ProductName,
				ProductSKU:       line.SKU,
				Price:            models.NewMoneyFromDecimal(line.UnitPrice),
				DiscountAmount:   models.NewMoneyFromDecimal(freeValue),
				FinalPrice:       models.Money{},
				Quantity:         freeQty,
				Subtotal:         models.Money{},
				IsFree:           true,
				PromotionID:      promotionID,
				PromotionDetails: models.JSON(line.Details),
			})
		}
		if paidQty <= 0 {
			continue
		}

		// 赠品行已吃掉买赠贡献的单件折扣，付费件只保留其余促销的折扣
		perUnitDiscount := line.DiscountPerUnit
		if freeQty > 0 {
			perUnitDiscount = perUnitDiscount.Sub(line.UnitPrice)
			if perUnitDiscount.IsNegative() {
				perUnitDiscount = decimal.Zero
			}
		}
		finalUnit := line.UnitPrice.Sub(perUnitDiscount)
		if finalUnit.IsNegative() {
			finalUnit = decimal.Zero
		}
		paidQtyDec := decimal.NewFromInt(int64(paidQty))
		items = append(items, models.OrderItem{
			ProductID:        &productID,
			ProductName:      line.ProductName,
			ProductSKU:       line.SKU,
			Price:            models.NewMoneyFromDecimal(line.UnitPrice),
			DiscountAmount:   models.NewMoneyFromDecimal(perUnitDiscount.Mul(paidQtyDec)),
			FinalPrice:       models.NewMoneyFromDecimal(finalUnit),
			Quantity:         paidQty,
			Subtotal:         models.NewMoneyFromDecimal(finalUnit.Mul(paidQtyDec)),
			IsFree:           false,
			PromotionID:      promotionID,
			PromotionDetails: models.JSON(line.Details),
		})
	}
	return items
}

// freeQuantityOf 读取买赠策略记在行上的赠送件数
// Details 是后写覆盖的展示元数据，拆行只信赖 FreeQuantity 字段
func freeQuantityOf(line *promotion.CartLine) int {
	if line.FreeQuantity <= 0 {
		return 0
	}
	if line.FreeQuantity > line.Quantity {
		return line.Quantity
	}
	return line.FreeQuantity
}

// buildAppliedPromotions 构建订单促销摘要
func buildAppliedPromotions(outcomes []*promotion.Outcome) models.JSON {
	if len(outcomes) == 0 {
		return nil
	}
	summaries := make([]interface{}, 0, len(outcomes))
	for _, outcome := range outcomes {
		summaries = append(summaries, map[string]interface{}{
			"promotion_id":    outcome.PromotionID,
			"promotion_code":  outcome.PromotionCode,
			"promotion_name":  outcome.PromotionName,
			"promotion_type":  outcome.PromotionType,
			"discount_amount": outcome.DiscountAmount.StringFixed(2),
			"message":         outcome.Message,
		})
	}
	return models.JSON{"promotions": summaries}
}

// GetOrder 获取订单详情
func (s *OrderService) GetOrder(id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetOrderByNo 按订单号获取订单详情
func (s *OrderService) GetOrderByNo(orderNo string) (*models.Order, error) {
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// List 获取订单列表
func (s *OrderService) List(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	randPart := randNumeric(6)
	return fmt.Sprintf("POS%s%s", now, randPart)
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}
