package promotion

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nhorsopheak/promotion-management/internal/constants"
)

// StepDiscountStrategy 阶梯折扣策略
// 按购物车迭代顺位（1 起始，不按价格排序）命中档位，
// 对命中行按单价百分比累加单件折扣
//
// 注意：结果的 DiscountAmount 直接累加各行的单件折扣额，不乘以行数量；
// 行级总额仍由 LineTotalDiscount（单件折扣 × 数量）体现。
// 这是沿袭自既有计价口径的行为，调整前需先确认对账影响。
type StepDiscountStrategy struct{}

// Type 策略类型标识
func (s *StepDiscountStrategy) Type() string {
	return constants.PromotionTypeStepDiscount
}

// IsEligible 至少两行才可能命中阶梯
func (s *StepDiscountStrategy) IsEligible(lines []*CartLine, user *MembershipInfo) bool {
	return len(lines) >= 2
}

// Apply 应用阶梯折扣
func (s *StepDiscountStrategy) Apply(lines []*CartLine, def *Definition, user *MembershipInfo) (*Outcome, error) {
	cfg, ok := def.Config.(*StepDiscountConfig)
	if !ok {
		return nil, fmt.Errorf("promotion %d: config is not StepDiscountConfig", def.ID)
	}
	tiers := cfg.TierMap()

	totalDiscount := decimal.Zero
	affected := make([]uint, 0, len(lines))
	appliedDiscounts := make([]map[string]interface{}, 0, len(tiers))
	hundred := decimal.NewFromInt(100)

	for idx, line := range lines {
		position := idx + 1
		percentage, hit := tiers[position]
		if !hit {
			continue
		}

		originalPrice := line.UnitPrice
		discountAmount := originalPrice.Mul(percentage.Div(hundred))

		line.DiscountPerUnit = line.DiscountPerUnit.Add(discountAmount)
		line.AppliedPromotionID = def.ID
		line.Details = map[string]interface{}{
			"type":                def.Type,
			"position":            position,
			"discount_percentage": percentage,
			"original_price":      originalPrice,
			"discount_amount":     discountAmount,
		}

		totalDiscount = totalDiscount.Add(discountAmount)
		affected = append(affected, line.ProductID)
		appliedDiscounts = append(appliedDiscounts, map[string]interface{}{
			"position":            position,
			"product_name":        line.ProductName,
			"discount_percentage": percentage,
			"original_price":      originalPrice,
			"discount_amount":     discountAmount,
		})
	}

	if totalDiscount.LessThanOrEqual(decimal.Zero) {
		return notApplied(def, "Not enough items in cart for step discount"), nil
	}

	return &Outcome{
		PromotionID:        def.ID,
		PromotionCode:      def.Code,
		PromotionName:      def.Name,
		PromotionType:      def.Type,
		Applied:            true,
		DiscountAmount:     totalDiscount,
		AffectedProductIDs: affected,
		Message:            s.message(appliedDiscounts),
		Metadata: map[string]interface{}{
			"discount_tiers":    cfg.Tiers,
			"applied_discounts": appliedDiscounts,
			"total_items":       len(lines),
		},
	}, nil
}

func (s *StepDiscountStrategy) message(applied []map[string]interface{}) string {
	parts := make([]string, 0, len(applied))
	for _, d := range applied {
		pct := d["discount_percentage"].(decimal.Decimal)
		parts = append(parts, fmt.Sprintf("item %d gets %s%% off", d["position"], pct.String()))
	}
	return "Step Discount Applied: " + strings.Join(parts, ", ")
}
