package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表（POS 结账产生，创建即完成）
type Order struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                          // 主键
	OrderNo           string         `gorm:"uniqueIndex;not null" json:"order_no"`                          // 订单编号
	UserID            *uint          `gorm:"index" json:"user_id,omitempty"`                                // 客户ID（散客为空）
	CashierID         uint           `gorm:"index;not null" json:"cashier_id"`                              // 收银员ID
	Status            string         `gorm:"index;not null" json:"status"`                                  // 订单状态
	Subtotal          Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`         // 折前小计
	DiscountAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`  // 促销优惠金额
	TotalAmount       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`     // 实付金额
	CustomerName      string         `gorm:"type:varchar(100)" json:"customer_name,omitempty"`              // 客户姓名快照
	CustomerPhone     string         `gorm:"type:varchar(40)" json:"customer_phone,omitempty"`              // 客户电话快照
	PaymentMethod     string         `gorm:"type:varchar(20);not null;default:'cash'" json:"payment_method"` // 收款方式
	PaymentStatus     string         `gorm:"type:varchar(20);not null;default:'paid'" json:"payment_status"` // 收款状态
	PaidAt            *time.Time     `gorm:"index" json:"paid_at"`                                          // 收款时间
	AppliedPromotions JSON           `gorm:"type:json" json:"applied_promotions"`                           // 应用的促销摘要
	Notes             string         `gorm:"type:text" json:"notes,omitempty"`                              // 备注
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`                                       // 更新时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间

	// 关联
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
