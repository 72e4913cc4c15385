package promotion

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nhorsopheak/promotion-management/internal/constants"
)

// PercentageDiscountStrategy 百分比/固定额折扣策略
// 折扣额基于参与行的折前总额计算，再按迭代顺序贪心摊入各行
type PercentageDiscountStrategy struct{}

// Type 策略类型标识
func (s *PercentageDiscountStrategy) Type() string {
	return constants.PromotionTypePercentage
}

// IsEligible 预检查（权威判定在 Apply 内基于具体配置完成）
func (s *PercentageDiscountStrategy) IsEligible(lines []*CartLine, user *MembershipInfo) bool {
	return true
}

// Apply 应用折扣策略
func (s *PercentageDiscountStrategy) Apply(lines []*CartLine, def *Definition, user *MembershipInfo) (*Outcome, error) {
	cfg, ok := def.Config.(*PercentageDiscountConfig)
	if !ok {
		return nil, fmt.Errorf("promotion %d: config is not PercentageDiscountConfig", def.ID)
	}

	eligible := filterEligible(lines, cfg.EligibleProductIDs, cfg.EligibleCategoryIDs)
	if len(eligible) == 0 {
		return notApplied(def, "No eligible items in cart"), nil
	}

	totalEligible := decimal.Zero
	for _, line := range eligible {
		totalEligible = totalEligible.Add(line.OriginalSubtotal())
	}
	if totalEligible.LessThanOrEqual(decimal.Zero) {
		return notApplied(def, "No eligible amount to discount"), nil
	}

	discountAmount := s.calculateDiscount(totalEligible, cfg)
	if discountAmount.LessThanOrEqual(decimal.Zero) {
		return notApplied(def, "No discount calculated"), nil
	}

	affected := make([]uint, 0, len(eligible))
	remaining := discountAmount
	for _, line := range eligible {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		lineTotal := line.OriginalSubtotal()
		lineDiscount := remaining
		if lineTotal.LessThan(lineDiscount) {
			lineDiscount = lineTotal
		}
		perUnit := lineDiscount.Div(decimal.NewFromInt(int64(line.Quantity)))

		line.DiscountPerUnit = line.DiscountPerUnit.Add(perUnit)
		line.AppliedPromotionID = def.ID
		line.Details = map[string]interface{}{
			"type":           def.Type,
			"discount_type":  cfg.DiscountType,
			"discount_value": cfg.DiscountValue,
		}

		affected = append(affected, line.ProductID)
		remaining = remaining.Sub(lineDiscount)
	}

	return &Outcome{
		PromotionID:        def.ID,
		PromotionCode:      def.Code,
		PromotionName:      def.Name,
		PromotionType:      def.Type,
		Applied:            true,
		DiscountAmount:     discountAmount,
		AffectedProductIDs: affected,
		Message:            s.message(cfg, discountAmount),
		Metadata: map[string]interface{}{
			"discount_type":         cfg.DiscountType,
			"discount_value":        cfg.DiscountValue,
			"total_eligible_amount": totalEligible,
		},
	}, nil
}

// calculateDiscount 按折扣类型计算总额，固定额以参与总额封顶
func (s *PercentageDiscountStrategy) calculateDiscount(amount decimal.Decimal, cfg *PercentageDiscountConfig) decimal.Decimal {
	switch cfg.DiscountType {
	case constants.DiscountTypePercentage:
		return amount.Mul(cfg.DiscountValue.Div(decimal.NewFromInt(100)))
	case constants.DiscountTypeFixedAmount:
		if cfg.DiscountValue.LessThan(amount) {
			return cfg.DiscountValue
		}
		return amount
	default:
		return decimal.Zero
	}
}

func (s *PercentageDiscountStrategy) message(cfg *PercentageDiscountConfig, discountAmount decimal.Decimal) string {
	var discountText string
	switch cfg.DiscountType {
	case constants.DiscountTypePercentage:
		discountText = fmt.Sprintf("%s%% off", cfg.DiscountValue.String())
	case constants.DiscountTypeFixedAmount:
		discountText = fmt.Sprintf("$%s off", cfg.DiscountValue.StringFixed(2))
	default:
		discountText = "discount"
	}
	return fmt.Sprintf("%s applied! You saved $%s.", discountText, discountAmount.Round(2).StringFixed(2))
}
