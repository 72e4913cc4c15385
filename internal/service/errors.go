package service

import "errors"

// 服务层哨兵错误，处理器据此映射响应码。
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("weak password")

	ErrPromotionNotFound      = errors.New("promotion not found")
	ErrPromotionInvalid       = errors.New("promotion invalid")
	ErrPromotionCodeExists    = errors.New("promotion code already exists")
	ErrPromotionStatusInvalid = errors.New("promotion status transition invalid")

	ErrCategoryNotFound   = errors.New("category not found")
	ErrCategorySlugExists = errors.New("category slug already exists")

	ErrProductNotFound     = errors.New("product not found")
	ErrProductSKUExists    = errors.New("product sku already exists")
	ErrProductNotAvailable = errors.New("product not available")
	ErrInsufficientStock   = errors.New("insufficient stock")

	ErrCustomerNotFound    = errors.New("customer not found")
	ErrCustomerEmailExists = errors.New("customer email already exists")

	ErrCartEmpty        = errors.New("cart is empty")
	ErrInvalidOrderItem = errors.New("invalid order item")
	ErrOrderNotFound    = errors.New("order not found")

	ErrDashboardRangeInvalid = errors.New("dashboard range invalid")
)
