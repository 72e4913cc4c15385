package promotion

import (
	"github.com/shopspring/decimal"
)

// FreeItem 促销产生的赠品
type FreeItem struct {
	ProductID   uint            `json:"product_id"`   // 商品ID
	ProductName string          `json:"product_name"` // 商品名称
	Quantity    int             `json:"quantity"`     // 赠送数量
	UnitValue   decimal.Decimal `json:"unit_value"`   // 单件价值（原价）
}

// Outcome 单个促销的评估结果
// 无论是否命中都会构造一个结果，未命中时 Message 给出原因
type Outcome struct {
	PromotionID        uint                   `json:"promotion_id"`         // 促销ID
	PromotionCode      string                 `json:"promotion_code"`       // 促销编码
	PromotionName      string                 `json:"promotion_name"`       // 促销名称
	PromotionType      string                 `json:"promotion_type"`       // 策略类型
	Applied            bool                   `json:"applied"`              // 是否命中
	DiscountAmount     decimal.Decimal        `json:"discount_amount"`      // 优惠总额
	AffectedProductIDs []uint                 `json:"affected_product_ids"` // 受影响商品
	FreeItems          []FreeItem             `json:"free_items,omitempty"` // 赠品列表
	Message            string                 `json:"message"`              // 说明文案
	Metadata           map[string]interface{} `json:"metadata,omitempty"`   // 策略附加信息
}

func notApplied(def *Definition, message string) *Outcome {
	return &Outcome{
		PromotionID:   def.ID,
		PromotionCode: def.Code,
		PromotionName: def.Name,
		PromotionType: def.Type,
		Applied:       false,
		Message:       message,
	}
}

// TotalDiscount 汇总命中结果的优惠总额
func TotalDiscount(outcomes []*Outcome) decimal.Decimal {
	total := decimal.Zero
	for _, o := range outcomes {
		total = total.Add(o.DiscountAmount)
	}
	return total
}

// AllFreeItems 汇总命中结果的全部赠品
func AllFreeItems(outcomes []*Outcome) []FreeItem {
	items := make([]FreeItem, 0)
	for _, o := range outcomes {
		items = append(items, o.FreeItems...)
	}
	return items
}
