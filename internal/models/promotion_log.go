package models

import (
	"time"
)

// PromotionLog 促销使用/审计日志表
type PromotionLog struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                          // 主键
	PromotionID    uint      `gorm:"index;not null" json:"promotion_id"`                            // 促销ID
	OrderID        *uint     `gorm:"index" json:"order_id,omitempty"`                               // 订单ID
	UserID         *uint     `gorm:"index" json:"user_id,omitempty"`                                // 客户ID
	Action         string    `gorm:"not null;index" json:"action"`                                  // 动作（applied/failed/reverted）
	DiscountAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 优惠金额
	AffectedItems  JSON      `gorm:"type:json" json:"affected_items"`                               // 受影响商品明细
	Metadata       JSON      `gorm:"type:json" json:"metadata"`                                     // 策略附加信息
	Notes          string    `gorm:"type:text" json:"notes"`                                        // 备注
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                                       // 创建时间

	// 关联
	Promotion *Promotion `gorm:"foreignKey:PromotionID" json:"promotion,omitempty"` // 促销信息
}

// TableName 指定表名
func (PromotionLog) TableName() string {
	return "promotion_logs"
}
