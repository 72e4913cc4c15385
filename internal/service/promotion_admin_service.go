package service

import (
	"strings"
	"time"

	"github.com/nhorsopheak/promotion-management/internal/constants"
	"github.com/nhorsopheak/promotion-management/internal/logger"
	"github.com/nhorsopheak/promotion-management/internal/models"
	"github.com/nhorsopheak/promotion-management/internal/promotion"
	"github.com/nhorsopheak/promotion-management/internal/repository"
)

// 促销状态机：列出每个状态允许迁出的目标状态。
var promotionStatusTransitions = map[string][]string{
	constants.PromotionStatusDraft:     {constants.PromotionStatusScheduled, constants.PromotionStatusActive, constants.PromotionStatusCancelled},
	constants.PromotionStatusScheduled: {constants.PromotionStatusActive, constants.PromotionStatusPaused, constants.PromotionStatusCancelled},
	constants.PromotionStatusActive:    {constants.PromotionStatusPaused, constants.PromotionStatusExpired, constants.PromotionStatusCancelled},
	constants.PromotionStatusPaused:    {constants.PromotionStatusActive, constants.PromotionStatusCancelled},
	constants.PromotionStatusExpired:   {},
	constants.PromotionStatusCancelled: {},
}

// PromotionAdminService 促销管理服务
type PromotionAdminService struct {
	repo             repository.PromotionRepository
	logRepo          repository.PromotionLogRepository
	promotionService *PromotionService
}

// NewPromotionAdminService 创建促销管理服务
func NewPromotionAdminService(
	repo repository.PromotionRepository,
	logRepo repository.PromotionLogRepository,
	promotionService *PromotionService,
) *PromotionAdminService {
	return &PromotionAdminService{
		repo:             repo,
		logRepo:          logRepo,
		promotionService: promotionService,
	}
}

// PromotionInput 创建/更新促销输入
type PromotionInput struct {
	Code               string
	Name               string
	Description        string
	Type               string
	StartDate          *time.Time
	EndDate            *time.Time
	Priority           int
	Conditions         string
	UsageLimit         int
	UsageLimitPerUser  int
	RequiresMembership bool
	MembershipTiers    []string
}

func (s *PromotionAdminService) validateInput(input *PromotionInput) error {
	input.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	input.Name = strings.TrimSpace(input.Name)
	input.Type = strings.ToLower(strings.TrimSpace(input.Type))
	if input.Code == "" || input.Name == "" {
		return ErrPromotionInvalid
	}
	validType := false
	for _, t := range constants.PromotionTypes {
		if input.Type == t {
			validType = true
			break
		}
	}
	if !validType {
		return ErrPromotionInvalid
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return ErrPromotionInvalid
	}
	if input.UsageLimit < 0 || input.UsageLimitPerUser < 0 {
		return ErrPromotionInvalid
	}
	for i, tier := range input.MembershipTiers {
		normalized := strings.ToLower(strings.TrimSpace(tier))
		validTier := false
		for _, t := range constants.MembershipTiers {
			if normalized == t {
				validTier = true
				break
			}
		}
		if !validTier {
			return ErrPromotionInvalid
		}
		input.MembershipTiers[i] = normalized
	}

	// 条件必须能按类型解析为结构化配置且通过校验
	cfg, err := promotion.DecodeConditions(input.Type, input.Conditions)
	if err != nil {
		return ErrPromotionInvalid
	}
	if err := cfg.Validate(); err != nil {
		return ErrPromotionInvalid
	}
	return nil
}

// Create 创建促销（初始状态为草稿）
func (s *PromotionAdminService) Create(input PromotionInput) (*models.Promotion, error) {
	if err := s.validateInput(&input); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByCode(input.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPromotionCodeExists
	}

	record := &models.Promotion{
		Code:               input.Code,
		Name:               input.Name,
		Description:        input.Description,
		Type:               input.Type,
		Status:             constants.PromotionStatusDraft,
		StartDate:          input.StartDate,
		EndDate:            input.EndDate,
		Priority:           input.Priority,
		Conditions:         input.Conditions,
		UsageLimit:         input.UsageLimit,
		UsageLimitPerUser:  input.UsageLimitPerUser,
		RequiresMembership: input.RequiresMembership,
		MembershipTiers:    models.StringArray(input.MembershipTiers),
	}
	if err := s.repo.Create(record); err != nil {
		return nil, err
	}
	return record, nil
}

// Update 更新促销，使用统计保持不变
func (s *PromotionAdminService) Update(id uint, input PromotionInput) (*models.Promotion, error) {
	if id == 0 {
		return nil, ErrPromotionInvalid
	}
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrPromotionNotFound
	}
	if err := s.validateInput(&input); err != nil {
		return nil, err
	}
	if input.Code != existing.Code {
		duplicate, err := s.repo.GetByCode(input.Code)
		if err != nil {
			return nil, err
		}
		if duplicate != nil && duplicate.ID != id {
			return nil, ErrPromotionCodeExists
		}
	}

	existing.Code = input.Code
	existing.Name = input.Name
	existing.Description = input.Description
	existing.Type = input.Type
	existing.StartDate = input.StartDate
	existing.EndDate = input.EndDate
	existing.Priority = input.Priority
	existing.Conditions = input.Conditions
	existing.UsageLimit = input.UsageLimit
	existing.UsageLimitPerUser = input.UsageLimitPerUser
	existing.RequiresMembership = input.RequiresMembership
	existing.MembershipTiers = models.StringArray(input.MembershipTiers)

	if err := s.repo.Update(existing); err != nil {
		return nil, err
	}
	s.invalidateCache()
	return existing, nil
}

// ChangeStatus 迁移促销状态，非法迁移返回错误
func (s *PromotionAdminService) ChangeStatus(id uint, next string) (*models.Promotion, error) {
	if id == 0 {
		return nil, ErrPromotionInvalid
	}
	next = strings.ToLower(strings.TrimSpace(next))
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrPromotionNotFound
	}
	allowed, ok := promotionStatusTransitions[existing.Status]
	if !ok {
		return nil, ErrPromotionStatusInvalid
	}
	valid := false
	for _, status := range allowed {
		if status == next {
			valid = true
			break
		}
	}
	if !valid {
		return nil, ErrPromotionStatusInvalid
	}

	existing.Status = next
	if err := s.repo.Update(existing); err != nil {
		return nil, err
	}
	s.invalidateCache()
	return existing, nil
}

// Get 获取促销详情
func (s *PromotionAdminService) Get(id uint) (*models.Promotion, error) {
	record, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrPromotionNotFound
	}
	return record, nil
}

// List 获取促销列表
func (s *PromotionAdminService) List(filter repository.PromotionListFilter) ([]models.Promotion, int64, error) {
	return s.repo.List(filter)
}

// Delete 删除促销（软删除）
func (s *PromotionAdminService) Delete(id uint) error {
	if id == 0 {
		return ErrPromotionInvalid
	}
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrPromotionNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.invalidateCache()
	return nil
}

// Logs 查询促销日志
func (s *PromotionAdminService) Logs(filter repository.PromotionLogListFilter) ([]models.PromotionLog, int64, error) {
	return s.logRepo.List(filter)
}

// Stats 单个促销的使用统计
func (s *PromotionAdminService) Stats(id uint) (*repository.PromotionStatsRow, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrPromotionNotFound
	}
	return s.logRepo.StatsByPromotion(id)
}

// ExpireDuePromotions 将已过结束时间的生效促销置为过期
func (s *PromotionAdminService) ExpireDuePromotions(now time.Time) error {
	affected, err := s.repo.ExpireDue(now)
	if err != nil {
		return err
	}
	if affected > 0 {
		logger.Infow("promotion_expired_batch", "count", affected)
		s.invalidateCache()
	}
	return nil
}

func (s *PromotionAdminService) invalidateCache() {
	if s.promotionService != nil {
		s.promotionService.InvalidateActiveCache()
	}
}
