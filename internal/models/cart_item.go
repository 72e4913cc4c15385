package models

import (
	"time"

	"gorm.io/gorm"
)

// CartItem 收银台暂存购物车项（按收银员隔离）
type CartItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                            // 主键
	CashierID uint           `gorm:"not null;uniqueIndex:idx_cart_cashier_product" json:"cashier_id"` // 收银员ID
	ProductID uint           `gorm:"not null;uniqueIndex:idx_cart_cashier_product" json:"product_id"` // 商品ID
	Quantity  int            `gorm:"not null" json:"quantity"`                                        // 数量
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                                         // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                                  // 软删除时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}
