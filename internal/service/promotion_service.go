package service

import (
	"context"
	"time"

	"github.com/nhorsopheak/promotion-management/internal/cache"
	"github.com/nhorsopheak/promotion-management/internal/logger"
	"github.com/nhorsopheak/promotion-management/internal/models"
	"github.com/nhorsopheak/promotion-management/internal/promotion"
	"github.com/nhorsopheak/promotion-management/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	activePromotionsCacheKey = "promotion:active"
	activePromotionsCacheTTL = 30 * time.Second
)

// EvaluationResult 购物车促销评估结果
type EvaluationResult struct {
	Lines     []*promotion.CartLine `json:"lines"`
	Outcomes  []*promotion.Outcome  `json:"outcomes"`
	FreeItems []promotion.FreeItem  `json:"free_items"`
	Subtotal  models.Money          `json:"subtotal"`
	Discount  models.Money          `json:"discount"`
	Total     models.Money          `json:"total"`
}

// PromotionService 促销评估服务
// 负责加载生效中的促销定义并驱动促销引擎，引擎本身不做任何 IO。
type PromotionService struct {
	promotionRepo repository.PromotionRepository
	logRepo       repository.PromotionLogRepository
	userRepo      repository.UserRepository
	engine        *promotion.Engine
}

// NewPromotionService 创建促销评估服务
func NewPromotionService(
	promotionRepo repository.PromotionRepository,
	logRepo repository.PromotionLogRepository,
	userRepo repository.UserRepository,
	engine *promotion.Engine,
) *PromotionService {
	if engine == nil {
		engine = promotion.NewEngine(nil)
	}
	return &PromotionService{
		promotionRepo: promotionRepo,
		logRepo:       logRepo,
		userRepo:      userRepo,
		engine:        engine,
	}
}

// ActiveDefinitions 获取当前生效的促销定义，按优先级降序。
// 结果在 Redis 中短暂缓存，条件解析失败的促销记录告警后跳过。
func (s *PromotionService) ActiveDefinitions(now time.Time) ([]*promotion.Definition, error) {
	var records []models.Promotion
	hit, err := cache.GetJSON(context.Background(), activePromotionsCacheKey, &records)
	if err != nil {
		logger.Warnw("promotion_active_cache_read_failed", "error", err)
		hit = false
	}
	if !hit {
		fresh, err := s.promotionRepo.ListActive(now)
		if err != nil {
			return nil, err
		}
		records = fresh
		if err := cache.SetJSON(context.Background(), activePromotionsCacheKey, records, activePromotionsCacheTTL); err != nil {
			logger.Warnw("promotion_active_cache_write_failed", "error", err)
		}
	}

	definitions := make([]*promotion.Definition, 0, len(records))
	for i := range records {
		def, err := promotion.NewDefinition(&records[i])
		if err != nil {
			logger.Warnw("promotion_definition_invalid",
				"promotion_id", records[i].ID,
				"code", records[i].Code,
				"error", err,
			)
			continue
		}
		definitions = append(definitions, def)
	}
	return definitions, nil
}

// InvalidateActiveCache 管理端变更促销后清除缓存
func (s *PromotionService) InvalidateActiveCache() {
	if err := cache.Del(context.Background(), activePromotionsCacheKey); err != nil {
		logger.Warnw("promotion_active_cache_del_failed", "error", err)
	}
}

// MembershipFor 构建促销引擎使用的会员快照
// userID 为 0 表示匿名散客。
func (s *PromotionService) MembershipFor(userID uint, now time.Time) (*promotion.MembershipInfo, error) {
	info := &promotion.MembershipInfo{UserID: userID}
	if userID == 0 {
		return info, nil
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrCustomerNotFound
	}
	info.IsMember = user.IsMemberNow(now)
	info.Tier = user.Tier()
	counts, err := s.logRepo.UsageCountsByUser(userID)
	if err != nil {
		return nil, err
	}
	info.UsageCounts = counts
	return info, nil
}

// Evaluate 对购物车快照执行促销评估并汇总金额
func (s *PromotionService) Evaluate(lines []*promotion.CartLine, userID uint, now time.Time) (*EvaluationResult, error) {
	user, err := s.MembershipFor(userID, now)
	if err != nil {
		return nil, err
	}
	definitions, err := s.ActiveDefinitions(now)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.OriginalSubtotal())
	}

	outcomes := s.engine.EvaluateAt(lines, definitions, user, now)
	discount := promotion.TotalDiscount(outcomes)
	// 叠加促销的折扣可能超过折前小计，应收金额下限为 0
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return &EvaluationResult{
		Lines:     lines,
		Outcomes:  outcomes,
		FreeItems: promotion.AllFreeItems(outcomes),
		Subtotal:  models.NewMoneyFromDecimal(subtotal),
		Discount:  models.NewMoneyFromDecimal(discount),
		Total:     models.NewMoneyFromDecimal(total),
	}, nil
}

// PreviewOne 对单个促销做试算，未命中时结果带原因。
func (s *PromotionService) PreviewOne(lines []*promotion.CartLine, promotionID, userID uint, now time.Time) (*promotion.Outcome, error) {
	record, err := s.promotionRepo.GetByID(promotionID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrPromotionNotFound
	}
	def, err := promotion.NewDefinition(record)
	if err != nil {
		return nil, ErrPromotionInvalid
	}
	user, err := s.MembershipFor(userID, now)
	if err != nil {
		return nil, err
	}
	return s.engine.ApplyOne(lines, def, user, now), nil
}
