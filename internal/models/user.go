package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User 客户表（POS 收银时可选关联，用于会员促销判定）
type User struct {
	ID                  uint           `gorm:"primarykey" json:"id"`                           // 主键
	Name                string         `gorm:"not null;index" json:"name"`                     // 姓名
	Email               string         `gorm:"uniqueIndex;not null" json:"email"`              // 邮箱
	Phone               string         `gorm:"index" json:"phone"`                             // 电话
	Status              string         `gorm:"default:'active'" json:"status"`                 // 账号状态
	IsMember            bool           `gorm:"not null;default:false;index" json:"is_member"`  // 是否会员
	MembershipTier      string         `gorm:"type:varchar(20)" json:"membership_tier"`        // 会员等级
	MembershipStartedAt *time.Time     `json:"membership_started_at"`                          // 会员生效时间
	MembershipExpiresAt *time.Time     `gorm:"index" json:"membership_expires_at"`             // 会员过期时间
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`                        // 创建时间
	UpdatedAt           time.Time      `gorm:"index" json:"updated_at"`                        // 更新时间
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`                                 // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// IsMemberNow 判断指定时间点会员身份是否有效
func (u *User) IsMemberNow(now time.Time) bool {
	if u == nil || !u.IsMember {
		return false
	}
	if u.MembershipExpiresAt != nil && u.MembershipExpiresAt.Before(now) {
		return false
	}
	return true
}

// Tier 返回规范化后的会员等级
func (u *User) Tier() string {
	if u == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(u.MembershipTier))
}
