package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/nhorsopheak/promotion-management/internal/constants"
	"github.com/nhorsopheak/promotion-management/internal/models"
)

// PromotionStatsRow 促销使用统计行
type PromotionStatsRow struct {
	PromotionID   uint    `json:"promotion_id"`
	AppliedCount  int64   `json:"applied_count"`
	TotalDiscount float64 `json:"total_discount"`
}

// PromotionLogRepository 促销日志数据访问接口
type PromotionLogRepository interface {
	Create(log *models.PromotionLog) error
	List(filter PromotionLogListFilter) ([]models.PromotionLog, int64, error)
	UsageCountsByUser(userID uint) (map[uint]int, error)
	StatsByPromotion(promotionID uint) (*PromotionStatsRow, error)
	TopPromotions(since time.Time, limit int) ([]PromotionStatsRow, error)
	WithTx(tx *gorm.DB) *GormPromotionLogRepository
}

// GormPromotionLogRepository GORM 实现
type GormPromotionLogRepository struct {
	db *gorm.DB
}

// NewPromotionLogRepository 创建促销日志仓库
func NewPromotionLogRepository(db *gorm.DB) *GormPromotionLogRepository {
	return &GormPromotionLogRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromotionLogRepository) WithTx(tx *gorm.DB) *GormPromotionLogRepository {
	if tx == nil {
		return r
	}
	return &GormPromotionLogRepository{db: tx}
}

// Create 创建促销日志
func (r *GormPromotionLogRepository) Create(log *models.PromotionLog) error {
	if log == nil {
		return nil
	}
	return r.db.Create(log).Error
}

// List 查询促销日志列表
func (r *GormPromotionLogRepository) List(filter PromotionLogListFilter) ([]models.PromotionLog, int64, error) {
	query := r.db.Model(&models.PromotionLog{})
	if filter.PromotionID != 0 {
		query = query.Where("promotion_id = ?", filter.PromotionID)
	}
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	logs := make([]models.PromotionLog, 0)
	if err := query.Order("id DESC").Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// UsageCountsByUser 统计客户对各促销的已用次数（仅 applied）
func (r *GormPromotionLogRepository) UsageCountsByUser(userID uint) (map[uint]int, error) {
	counts := make(map[uint]int)
	if userID == 0 {
		return counts, nil
	}
	rows := make([]struct {
		PromotionID uint
		Total       int
	}, 0)
	err := r.db.Model(&models.PromotionLog{}).
		Select("promotion_id, COUNT(*) as total").
		Where("user_id = ? AND action = ?", userID, constants.PromotionLogActionApplied).
		Group("promotion_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.PromotionID] = row.Total
	}
	return counts, nil
}

// StatsByPromotion 单个促销的命中次数与优惠总额
func (r *GormPromotionLogRepository) StatsByPromotion(promotionID uint) (*PromotionStatsRow, error) {
	row := PromotionStatsRow{PromotionID: promotionID}
	err := r.db.Model(&models.PromotionLog{}).
		Select("COUNT(*) as applied_count, COALESCE(SUM(discount_amount), 0) as total_discount").
		Where("promotion_id = ? AND action = ?", promotionID, constants.PromotionLogActionApplied).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// TopPromotions 指定时间以来优惠额最高的促销排行
func (r *GormPromotionLogRepository) TopPromotions(since time.Time, limit int) ([]PromotionStatsRow, error) {
	if limit <= 0 {
		limit = 5
	}
	rows := make([]PromotionStatsRow, 0, limit)
	err := r.db.Model(&models.PromotionLog{}).
		Select("promotion_id, COUNT(*) as applied_count, COALESCE(SUM(discount_amount), 0) as total_discount").
		Where("action = ? AND created_at >= ?", constants.PromotionLogActionApplied, since).
		Group("promotion_id").
		Order("total_discount DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
