package promotion

import (
	"strings"
	"time"

	"github.com/nhorsopheak/promotion-management/internal/constants"
	"github.com/nhorsopheak/promotion-management/internal/models"
)

// Definition 引擎侧的促销定义快照
// 由持久化记录构造，配置在加载时解析一次，评估期间只读
type Definition struct {
	ID                 uint       // 促销ID
	Code               string     // 促销编码
	Name               string     // 名称
	Type               string     // 策略类型
	Status             string     // 状态
	Priority           int        // 评估优先级（降序）
	StartDate          *time.Time // 生效时间
	EndDate            *time.Time // 失效时间
	UsageLimit         int        // 全局使用上限（0 不限）
	UsageCount         int        // 已使用次数
	UsageLimitPerUser  int        // 单客户使用上限（0 不限）
	RequiresMembership bool       // 是否仅限会员
	MembershipTiers    []string   // 允许的会员等级（空为不限）
	Config             Config     // 类型化策略配置
}

// NewDefinition 从促销记录构造引擎定义，conditions 解析失败时返回错误
func NewDefinition(p *models.Promotion) (*Definition, error) {
	cfg, err := DecodeConditions(p.Type, p.Conditions)
	if err != nil {
		return nil, err
	}
	return &Definition{
		ID:                 p.ID,
		Code:               p.Code,
		Name:               p.Name,
		Type:               p.Type,
		Status:             p.Status,
		Priority:           p.Priority,
		StartDate:          p.StartDate,
		EndDate:            p.EndDate,
		UsageLimit:         p.UsageLimit,
		UsageCount:         p.UsageCount,
		UsageLimitPerUser:  p.UsageLimitPerUser,
		RequiresMembership: p.RequiresMembership,
		MembershipTiers:    []string(p.MembershipTiers),
		Config:             cfg,
	}, nil
}

// ActiveAt 判断定义在指定时间点是否可用
func (d *Definition) ActiveAt(now time.Time) bool {
	if d.Status != constants.PromotionStatusActive {
		return false
	}
	if d.StartDate != nil && d.StartDate.After(now) {
		return false
	}
	if d.EndDate != nil && d.EndDate.Before(now) {
		return false
	}
	return true
}

// AllowsTier 判断会员等级是否在允许列表内（空列表不限）
func (d *Definition) AllowsTier(tier string) bool {
	if len(d.MembershipTiers) == 0 {
		return true
	}
	normalized := strings.ToLower(strings.TrimSpace(tier))
	for _, t := range d.MembershipTiers {
		if strings.ToLower(strings.TrimSpace(t)) == normalized {
			return true
		}
	}
	return false
}

// MembershipInfo 评估时可选的客户上下文
// UsageCounts 由调用方预先统计（促销ID → 该客户已用次数），引擎内不做任何查询
type MembershipInfo struct {
	UserID      uint           // 客户ID
	IsMember    bool           // 会员身份是否有效
	Tier        string         // 会员等级
	UsageCounts map[uint]int   // 单客户已用次数
}

// UsedCount 返回该客户对指定促销的已用次数
func (m *MembershipInfo) UsedCount(promotionID uint) int {
	if m == nil || m.UsageCounts == nil {
		return 0
	}
	return m.UsageCounts[promotionID]
}
