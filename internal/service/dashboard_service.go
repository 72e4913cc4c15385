package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nhorsopheak/promotion-management/internal/cache"
	"github.com/nhorsopheak/promotion-management/internal/constants"
	"github.com/nhorsopheak/promotion-management/internal/logger"
	"github.com/nhorsopheak/promotion-management/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	dashboardCacheTTL      = 45 * time.Second
	dashboardCustomMaxDays = 90
	dashboardRankingLimit  = 5
)

// DashboardService 仪表盘服务
// 说明：聚合后台首页核心经营数据。
type DashboardService struct {
	repo          repository.DashboardRepository
	logRepo       repository.PromotionLogRepository
	promotionRepo repository.PromotionRepository
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(
	repo repository.DashboardRepository,
	logRepo repository.PromotionLogRepository,
	promotionRepo repository.PromotionRepository,
) *DashboardService {
	return &DashboardService{repo: repo, logRepo: logRepo, promotionRepo: promotionRepo}
}

// DashboardQueryInput 仪表盘查询输入
type DashboardQueryInput struct {
	Range        string
	From         *time.Time
	To           *time.Time
	ForceRefresh bool
}

// DashboardOverviewResponse 仪表盘总览响应
type DashboardOverviewResponse struct {
	Range string       `json:"range"`
	From  string       `json:"from"`
	To    string       `json:"to"`
	KPI   DashboardKPI `json:"kpi"`
}

// DashboardKPI 仪表盘核心指标
type DashboardKPI struct {
	OrdersTotal        int64  `json:"orders_total"`
	PaidOrders         int64  `json:"paid_orders"`
	SalesTotal         string `json:"sales_total"`
	DiscountTotal      string `json:"discount_total"`
	PromotionsActive   int64  `json:"promotions_active"`
	NewUsers           int64  `json:"new_users"`
	ActiveProducts     int64  `json:"active_products"`
	OutOfStockProducts int64  `json:"out_of_stock_products"`
	LowStockProducts   int64  `json:"low_stock_products"`
	TotalStockUnits    int64  `json:"total_stock_units"`
}

// DashboardTrendResponse 仪表盘趋势响应
type DashboardTrendResponse struct {
	Range  string                `json:"range"`
	From   string                `json:"from"`
	To     string                `json:"to"`
	Points []DashboardTrendPoint `json:"points"`
}

// DashboardTrendPoint 趋势点
type DashboardTrendPoint struct {
	Date          string `json:"date"`
	OrdersTotal   int64  `json:"orders_total"`
	SalesTotal    string `json:"sales_total"`
	DiscountTotal string `json:"discount_total"`
}

// DashboardRankingsResponse 仪表盘排行榜响应
type DashboardRankingsResponse struct {
	Range         string                      `json:"range"`
	From          string                      `json:"from"`
	To            string                      `json:"to"`
	TopProducts   []DashboardProductRanking   `json:"top_products"`
	TopPromotions []DashboardPromotionRanking `json:"top_promotions"`
}

// DashboardProductRanking 商品排行项
type DashboardProductRanking struct {
	ProductID  uint   `json:"product_id"`
	Name       string `json:"name"`
	PaidOrders int64  `json:"paid_orders"`
	Quantity   int64  `json:"quantity"`
	PaidAmount string `json:"paid_amount"`
}

// DashboardPromotionRanking 促销排行项
type DashboardPromotionRanking struct {
	PromotionID   uint   `json:"promotion_id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	AppliedCount  int64  `json:"applied_count"`
	TotalDiscount string `json:"total_discount"`
}

type dashboardWindow struct {
	rangeKey string
	startAt  time.Time
	endAt    time.Time
}

// GetOverview 获取仪表盘总览
func (s *DashboardService) GetOverview(ctx context.Context, input DashboardQueryInput) (*DashboardOverviewResponse, error) {
	if s == nil || s.repo == nil {
		return &DashboardOverviewResponse{}, nil
	}
	window, err := resolveDashboardWindow(input, time.Now())
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("dashboard:overview:%s:%d:%d", window.rangeKey, window.startAt.Unix(), window.endAt.Unix())
	if !input.ForceRefresh {
		var cached DashboardOverviewResponse
		hit, err := cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			logger.Warnw("dashboard_overview_cache_read_failed", "error", err)
		} else if hit {
			return &cached, nil
		}
	}

	overview, err := s.repo.GetOverview(window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}
	stock, err := s.repo.GetStockStats(constants.ProductLowStockThreshold)
	if err != nil {
		return nil, err
	}

	response := &DashboardOverviewResponse{
		Range: window.rangeKey,
		From:  window.startAt.Format(time.RFC3339),
		To:    window.endAt.Format(time.RFC3339),
		KPI: DashboardKPI{
			OrdersTotal:        overview.OrdersTotal,
			PaidOrders:         overview.PaidOrders,
			SalesTotal:         formatDashboardAmount(overview.SalesTotal),
			DiscountTotal:      formatDashboardAmount(overview.DiscountTotal),
			PromotionsActive:   overview.PromotionsActive,
			NewUsers:           overview.NewUsers,
			ActiveProducts:     overview.ActiveProducts,
			OutOfStockProducts: stock.OutOfStockProducts,
			LowStockProducts:   stock.LowStockProducts,
			TotalStockUnits:    stock.TotalStockUnits,
		},
	}
	if err := cache.SetJSON(ctx, cacheKey, response, dashboardCacheTTL); err != nil {
		logger.Warnw("dashboard_overview_cache_write_failed", "error", err)
	}
	return response, nil
}

// GetTrends 获取按天销售趋势
func (s *DashboardService) GetTrends(ctx context.Context, input DashboardQueryInput) (*DashboardTrendResponse, error) {
	if s == nil || s.repo == nil {
		return &DashboardTrendResponse{}, nil
	}
	window, err := resolveDashboardWindow(input, time.Now())
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("dashboard:trends:%s:%d:%d", window.rangeKey, window.startAt.Unix(), window.endAt.Unix())
	if !input.ForceRefresh {
		var cached DashboardTrendResponse
		hit, err := cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			logger.Warnw("dashboard_trends_cache_read_failed", "error", err)
		} else if hit {
			return &cached, nil
		}
	}

	rows, err := s.repo.GetSalesTrends(window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}
	points := make([]DashboardTrendPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, DashboardTrendPoint{
			Date:          row.Day,
			OrdersTotal:   row.OrdersTotal,
			SalesTotal:    formatDashboardAmount(row.SalesTotal),
			DiscountTotal: formatDashboardAmount(row.DiscountTotal),
		})
	}
	response := &DashboardTrendResponse{
		Range:  window.rangeKey,
		From:   window.startAt.Format(time.RFC3339),
		To:     window.endAt.Format(time.RFC3339),
		Points: points,
	}
	if err := cache.SetJSON(ctx, cacheKey, response, dashboardCacheTTL); err != nil {
		logger.Warnw("dashboard_trends_cache_write_failed", "error", err)
	}
	return response, nil
}

// GetRankings 获取商品与促销排行
func (s *DashboardService) GetRankings(ctx context.Context, input DashboardQueryInput) (*DashboardRankingsResponse, error) {
	if s == nil || s.repo == nil {
		return &DashboardRankingsResponse{}, nil
	}
	window, err := resolveDashboardWindow(input, time.Now())
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("dashboard:rankings:%s:%d:%d", window.rangeKey, window.startAt.Unix(), window.endAt.Unix())
	if !input.ForceRefresh {
		var cached DashboardRankingsResponse
		hit, err := cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			logger.Warnw("dashboard_rankings_cache_read_failed", "error", err)
		} else if hit {
			return &cached, nil
		}
	}

	productRows, err := s.repo.GetTopProducts(window.startAt, window.endAt, dashboardRankingLimit)
	if err != nil {
		return nil, err
	}
	products := make([]DashboardProductRanking, 0, len(productRows))
	for _, row := range productRows {
		products = append(products, DashboardProductRanking{
			ProductID:  row.ProductID,
			Name:       row.Name,
			PaidOrders: row.PaidOrders,
			Quantity:   row.Quantity,
			PaidAmount: formatDashboardAmount(row.PaidAmount),
		})
	}

	promotionRows, err := s.logRepo.TopPromotions(window.startAt, dashboardRankingLimit)
	if err != nil {
		return nil, err
	}
	promotions := make([]DashboardPromotionRanking, 0, len(promotionRows))
	for _, row := range promotionRows {
		ranking := DashboardPromotionRanking{
			PromotionID:   row.PromotionID,
			AppliedCount:  row.AppliedCount,
			TotalDiscount: formatDashboardAmount(row.TotalDiscount),
		}
		record, err := s.promotionRepo.GetByID(row.PromotionID)
		if err != nil {
			return nil, err
		}
		if record != nil {
			ranking.Code = record.Code
			ranking.Name = record.Name
		}
		promotions = append(promotions, ranking)
	}

	response := &DashboardRankingsResponse{
		Range:         window.rangeKey,
		From:          window.startAt.Format(time.RFC3339),
		To:            window.endAt.Format(time.RFC3339),
		TopProducts:   products,
		TopPromotions: promotions,
	}
	if err := cache.SetJSON(ctx, cacheKey, response, dashboardCacheTTL); err != nil {
		logger.Warnw("dashboard_rankings_cache_write_failed", "error", err)
	}
	return response, nil
}

// resolveDashboardWindow 解析统计时间窗口
func resolveDashboardWindow(input DashboardQueryInput, now time.Time) (dashboardWindow, error) {
	rangeKey := strings.ToLower(strings.TrimSpace(input.Range))
	if rangeKey == "" {
		rangeKey = "today"
	}
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endAt := startOfToday.AddDate(0, 0, 1)

	switch rangeKey {
	case "today":
		return dashboardWindow{rangeKey: rangeKey, startAt: startOfToday, endAt: endAt}, nil
	case "7d":
		return dashboardWindow{rangeKey: rangeKey, startAt: startOfToday.AddDate(0, 0, -6), endAt: endAt}, nil
	case "30d":
		return dashboardWindow{rangeKey: rangeKey, startAt: startOfToday.AddDate(0, 0, -29), endAt: endAt}, nil
	case "custom":
		if input.From == nil || input.To == nil {
			return dashboardWindow{}, ErrDashboardRangeInvalid
		}
		if input.To.Before(*input.From) {
			return dashboardWindow{}, ErrDashboardRangeInvalid
		}
		if input.To.Sub(*input.From) > dashboardCustomMaxDays*24*time.Hour {
			return dashboardWindow{}, ErrDashboardRangeInvalid
		}
		return dashboardWindow{rangeKey: rangeKey, startAt: *input.From, endAt: *input.To}, nil
	default:
		return dashboardWindow{}, ErrDashboardRangeInvalid
	}
}

func formatDashboardAmount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}
