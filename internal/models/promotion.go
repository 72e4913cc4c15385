package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/nhorsopheak/promotion-management/internal/constants"
)

// Promotion 促销规则表
// Conditions 为策略私有配置的 JSON 文本，按 Type 解析为对应的结构化配置
type Promotion struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                               // 主键
	Code               string         `gorm:"uniqueIndex;not null" json:"code"`                   // 促销编码
	Name               string         `gorm:"not null" json:"name"`                               // 名称
	Description        string         `gorm:"type:text" json:"description"`                       // 描述
	Type               string         `gorm:"not null;index" json:"type"`                         // 策略类型
	Status             string         `gorm:"not null;default:'draft';index" json:"status"`       // 状态
	StartDate          *time.Time     `gorm:"index" json:"start_date"`                            // 生效时间
	EndDate            *time.Time     `gorm:"index" json:"end_date"`                              // 失效时间
	Priority           int            `gorm:"not null;default:0;index" json:"priority"`           // 评估优先级（降序）
	Conditions         string         `gorm:"type:text" json:"conditions"`                        // 策略配置 JSON
	UsageLimit         int            `gorm:"not null;default:0" json:"usage_limit"`              // 全局使用上限（0 不限）
	UsageCount         int            `gorm:"not null;default:0" json:"usage_count"`              // 已使用次数
	UsageLimitPerUser  int            `gorm:"not null;default:0" json:"usage_limit_per_user"`     // 单客户使用上限（0 不限）
	RequiresMembership bool           `gorm:"not null;default:false" json:"requires_membership"`  // 是否仅限会员
	MembershipTiers    StringArray    `gorm:"type:json" json:"membership_tiers"`                  // 允许的会员等级（空为不限）
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`                            // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                     // 软删除时间
}

// TableName 指定表名
func (Promotion) TableName() string {
	return "promotions"
}

// IsActiveAt 判断指定时间点促销是否处于可用窗口
func (p *Promotion) IsActiveAt(now time.Time) bool {
	if p.Status != constants.PromotionStatusActive {
		return false
	}
	if p.StartDate != nil && p.StartDate.After(now) {
		return false
	}
	if p.EndDate != nil && p.EndDate.Before(now) {
		return false
	}
	return true
}

// UsageExhausted 判断全局使用次数是否已达上限
func (p *Promotion) UsageExhausted() bool {
	return p.UsageLimit > 0 && p.UsageCount >= p.UsageLimit
}
