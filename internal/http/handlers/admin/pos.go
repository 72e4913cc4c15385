package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/nhorsopheak/promotion-management/internal/http/response"
	"github.com/nhorsopheak/promotion-management/internal/repository"
	"github.com/nhorsopheak/promotion-management/internal/service"

	"github.com/gin-gonic/gin"
)

// 收银台接口：购物车、促销试算与结账都以当前登录收银员为主体。

// GetPOSProducts 收银台商品检索（仅在售商品）
func (h *Handler) GetPOSProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	page, pageSize = normalizePagination(page, pageSize)

	var categoryID uint
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		categoryID = uint(parsed)
	}

	products, total, err := h.ProductService.List(repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		CategoryID: categoryID,
		Search:     strings.TrimSpace(c.Query("keyword")),
		OnlyActive: true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, products, pagination)
}

// GetPOSCart 获取当前收银员购物车
func (h *Handler) GetPOSCart(c *gin.Context) {
	cashierID, ok := getAdminID(c)
	if !ok {
		return
	}

	items, err := h.CartService.ListByCashier(cashierID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.cart_fetch_failed", err)
		return
	}

	response.Success(c, items)
}

// UpsertPOSCartItemRequest 购物车更新请求
type UpsertPOSCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// UpsertPOSCartItem 新增或更新购物车项
func (h *Handler) UpsertPOSCartItem(c *gin.Context) {
	cashierID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req UpsertPOSCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.CartService.UpsertItem(service.UpsertCartItemInput{
		CashierID: cashierID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	}); err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			respondError(c, response.CodeNotFound, "error.product_not_found", nil)
		case errors.Is(err, service.ErrProductNotAvailable):
			respondError(c, response.CodeBadRequest, "error.product_not_available", nil)
		case errors.Is(err, service.ErrInsufficientStock):
			respondError(c, response.CodeBadRequest, "error.insufficient_stock", nil)
		default:
			respondError(c, response.CodeInternal, "error.cart_save_failed", err)
		}
		return
	}

	items, err := h.CartService.ListByCashier(cashierID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.cart_fetch_failed", err)
		return
	}
	response.Success(c, items)
}

// DeletePOSCartItem 移除购物车项
func (h *Handler) DeletePOSCartItem(c *gin.Context) {
	cashierID, ok := getAdminID(c)
	if !ok {
		return
	}
	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.CartService.RemoveItem(cashierID, uint(productID)); err != nil {
		respondError(c, response.CodeInternal, "error.cart_save_failed", err)
		return
	}
	response.Success(c, nil)
}

// ClearPOSCart 清空购物车
func (h *Handler) ClearPOSCart(c *gin.Context) {
	cashierID, ok := getAdminID(c)
	if !ok {
		return
	}
	if err := h.CartService.Clear(cashierID); err != nil {
		respondError(c, response.CodeInternal, "error.cart_save_failed", err)
		return
	}
	response.Success(c, nil)
}

// POSPreviewRequest 促销试算请求，items 非空时按临时行试算，否则取当前购物车
type POSPreviewRequest struct {
	CustomerID uint                       `json:"customer_id"`
	Items      []service.PreviewLineInput `json:"items"`
}

// PreviewPOSCart 对当前购物车或临时行执行促销试算
func (h *Handler) PreviewPOSCart(c *gin.Context) {
	cashierID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req POSPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	var (
		result *service.EvaluationResult
		err    error
	)
	if len(req.Items) > 0 {
		result, err = h.CartService.PreviewLines(req.Items, req.CustomerID)
	} else {
		result, err = h.CartService.Preview(cashierID, req.CustomerID)
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartEmpty):
			respondError(c, response.CodeBadRequest, "error.cart_empty", nil)
		case errors.Is(err, service.ErrInvalidOrderItem):
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		case errors.Is(err, service.ErrProductNotAvailable):
			respondError(c, response.CodeBadRequest, "error.product_not_available", nil)
		default:
			respondError(c, response.CodeInternal, "error.preview_failed", err)
		}
		return
	}

	response.Success(c, result)
}

// POSCheckoutRequest 结账请求
type POSCheckoutRequest struct {
	CustomerID    uint   `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes"`
}

// POSCheckout 结账：落单、扣减库存并清空购物车
func (h *Handler) POSCheckout(c *gin.Context) {
	cashierID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req POSCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.OrderService.Checkout(service.CheckoutInput{
		CashierID:     cashierID,
		UserID:        req.CustomerID,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartEmpty):
			respondError(c, response.CodeBadRequest, "error.cart_empty", nil)
		case errors.Is(err, service.ErrInsufficientStock):
			respondError(c, response.CodeBadRequest, "error.insufficient_stock", nil)
		case errors.Is(err, service.ErrCustomerNotFound):
			respondError(c, response.CodeBadRequest, "error.customer_not_found", nil)
		case errors.Is(err, service.ErrInvalidOrderItem):
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		default:
			respondError(c, response.CodeInternal, "error.checkout_failed", err)
		}
		return
	}

	response.Success(c, result)
}
