package promotion

import (
	"github.com/shopspring/decimal"
)

// CartLine 参与促销评估的购物车行
// 每次评估由调用方从购物车快照新建，策略按评估顺序就地累加折扣；
// UnitPrice 始终为原始目录价，折后价只能通过 FinalUnitPrice 读取
type CartLine struct {
	ProductID          uint                   `json:"product_id"`           // 商品ID
	ProductName        string                 `json:"product_name"`         // 商品名称
	SKU                string                 `json:"sku"`                  // 商品编码
	CategoryID         uint                   `json:"category_id"`          // 分类ID
	Quantity           int                    `json:"quantity"`             // 数量
	UnitPrice          decimal.Decimal        `json:"unit_price"`           // 原始单价
	DiscountPerUnit    decimal.Decimal        `json:"discount_per_unit"`    // 累计单件折扣
	FreeQuantity       int                    `json:"free_quantity"`        // 买赠释放的赠送件数（跨策略累计）
	IsFullyFree        bool                   `json:"is_fully_free"`        // 整行是否全部赠送
	AppliedPromotionID uint                   `json:"applied_promotion_id"` // 最后写入的促销ID（0 表示无）
	Details            map[string]interface{} `json:"details,omitempty"`    // 促销明细（后写覆盖）
}

// FinalUnitPrice 折后单价，下限为 0
func (l *CartLine) FinalUnitPrice() decimal.Decimal {
	final := l.UnitPrice.Sub(l.DiscountPerUnit)
	if final.IsNegative() {
		return decimal.Zero
	}
	return final
}

// LineSubtotal 折后行小计
func (l *CartLine) LineSubtotal() decimal.Decimal {
	return l.FinalUnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LineTotalDiscount 行折扣总额（单件折扣 × 数量）
func (l *CartLine) LineTotalDiscount() decimal.Decimal {
	return l.DiscountPerUnit.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OriginalSubtotal 折前行小计
func (l *CartLine) OriginalSubtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
