package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem 订单项表
// 赠品以 IsFree 独立行记录，FinalPrice 为 0，DiscountAmount 为原价值
type OrderItem struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                          // 主键
	OrderID          uint           `gorm:"index;not null" json:"order_id"`                                // 订单ID
	ProductID        *uint          `gorm:"index" json:"product_id,omitempty"`                             // 商品ID
	ProductName      string         `gorm:"not null" json:"product_name"`                                  // 商品名称快照
	ProductSKU       string         `gorm:"type:varchar(100)" json:"product_sku"`                          // 商品编码快照
	Price            Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`            // 原始单价
	DiscountAmount   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`  // 行优惠金额
	FinalPrice       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"final_price"`      // 折后单价
	Quantity         int            `gorm:"not null" json:"quantity"`                                      // 数量
	Subtotal         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`         // 行小计
	IsFree           bool           `gorm:"not null;default:false;index" json:"is_free"`                   // 是否赠品行
	PromotionID      *uint          `gorm:"index" json:"promotion_id,omitempty"`                           // 促销ID
	PromotionDetails JSON           `gorm:"type:json" json:"promotion_details"`                            // 促销明细快照
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                                       // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
