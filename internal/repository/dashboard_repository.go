package repository

import (
	"fmt"
	"time"

	"github.com/nhorsopheak/promotion-management/internal/constants"
	"github.com/nhorsopheak/promotion-management/internal/models"

	"gorm.io/gorm"
)

// DashboardRepository 仪表盘聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type DashboardRepository interface {
	GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error)
	GetSalesTrends(startAt, endAt time.Time) ([]DashboardSalesTrendRow, error)
	GetStockStats(lowStockThreshold int64) (DashboardStockStatsRow, error)
	GetTopProducts(startAt, endAt time.Time, limit int) ([]DashboardProductRankingRow, error)
}

// DashboardOverviewRow 仪表盘总览原始统计结果
type DashboardOverviewRow struct {
	OrdersTotal      int64
	PaidOrders       int64
	SalesTotal       float64
	DiscountTotal    float64
	PromotionsActive int64
	NewUsers         int64
	ActiveProducts   int64
}

// DashboardSalesTrendRow 销售趋势统计
type DashboardSalesTrendRow struct {
	Day           string
	OrdersTotal   int64
	SalesTotal    float64
	DiscountTotal float64
}

// DashboardStockStatsRow 库存统计
type DashboardStockStatsRow struct {
	OutOfStockProducts int64
	LowStockProducts   int64
	TotalStockUnits    int64
}

// DashboardProductRankingRow 商品排行原始行
type DashboardProductRankingRow struct {
	ProductID  uint
	Name       string
	PaidOrders int64
	Quantity   int64
	PaidAmount float64
}

// GormDashboardRepository GORM 仪表盘聚合实现
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository 创建仪表盘仓库
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// GetOverview 获取总览统计
func (r *GormDashboardRepository) GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error) {
	result := DashboardOverviewRow{}

	orderBase := func() *gorm.DB {
		return r.db.Model(&models.Order{}).
			Where("created_at >= ? AND created_at < ?", startAt, endAt)
	}

	if err := orderBase().Count(&result.OrdersTotal).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("payment_status = ?", constants.PaymentStatusPaid).Count(&result.PaidOrders).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("payment_status = ?", constants.PaymentStatusPaid).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&result.SalesTotal).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("payment_status = ?", constants.PaymentStatusPaid).
		Select("COALESCE(SUM(discount_amount), 0)").
		Scan(&result.DiscountTotal).Error; err != nil {
		return result, err
	}

	now := endAt
	if err := r.db.Model(&models.Promotion{}).
		Where("status = ?", constants.PromotionStatusActive).
		Where("start_date IS NULL OR start_date <= ?", now).
		Where("end_date IS NULL OR end_date >= ?", now).
		Count(&result.PromotionsActive).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.User{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Count(&result.NewUsers).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.Product{}).
		Where("is_active = ?", true).
		Count(&result.ActiveProducts).Error; err != nil {
		return result, err
	}

	return result, nil
}

// GetSalesTrends 获取按天销售趋势
func (r *GormDashboardRepository) GetSalesTrends(startAt, endAt time.Time) ([]DashboardSalesTrendRow, error) {
	rows := make([]DashboardSalesTrendRow, 0)
	dayExpr := "CAST(date(created_at) AS TEXT)"
	if err := r.db.Model(&models.Order{}).
		Select(fmt.Sprintf(`
			%s as day,
			COUNT(*) as orders_total,
			COALESCE(SUM(total_amount), 0) as sales_total,
			COALESCE(SUM(discount_amount), 0) as discount_total
		`, dayExpr)).
		Where("created_at >= ? AND created_at < ? AND payment_status = ?", startAt, endAt, constants.PaymentStatusPaid).
		Group(dayExpr).
		Order("day asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetStockStats 获取库存总览统计
func (r *GormDashboardRepository) GetStockStats(lowStockThreshold int64) (DashboardStockStatsRow, error) {
	result := DashboardStockStatsRow{}

	base := func() *gorm.DB {
		return r.db.Model(&models.Product{}).Where("is_active = ?", true)
	}

	if err := base().Where("stock <= 0").Count(&result.OutOfStockProducts).Error; err != nil {
		return result, err
	}
	if err := base().Where("stock > 0 AND stock <= ?", lowStockThreshold).Count(&result.LowStockProducts).Error; err != nil {
		return result, err
	}
	if err := base().Select("COALESCE(SUM(stock), 0)").Scan(&result.TotalStockUnits).Error; err != nil {
		return result, err
	}

	return result, nil
}

// GetTopProducts 获取商品排行榜
func (r *GormDashboardRepository) GetTopProducts(startAt, endAt time.Time, limit int) ([]DashboardProductRankingRow, error) {
	if limit <= 0 {
		limit = 5
	}
	rows := make([]DashboardProductRankingRow, 0)
	if err := r.db.Model(&models.OrderItem{}).
		Select(`
			order_items.product_id as product_id,
			order_items.product_name as name,
			COUNT(DISTINCT order_items.order_id) as paid_orders,
			COALESCE(SUM(order_items.quantity), 0) as quantity,
			COALESCE(SUM(order_items.subtotal), 0) as paid_amount
		`).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.created_at >= ? AND orders.created_at < ? AND orders.payment_status = ? AND order_items.is_free = ?", startAt, endAt, constants.PaymentStatusPaid, false).
		Group("order_items.product_id, order_items.product_name").
		Order("paid_amount DESC, quantity DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
