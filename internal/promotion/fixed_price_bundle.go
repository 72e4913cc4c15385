package promotion

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nhorsopheak/promotion-management/internal/constants"
)

// FixedPriceBundleStrategy 固定价格捆绑策略
// 按迭代顺序贪心消费可成捆数量，差价按各行原价占比分摊为单件折扣
type FixedPriceBundleStrategy struct{}

type bundleConsumption struct {
	line          *CartLine
	quantity      int
	totalOriginal decimal.Decimal
}

// Type 策略类型标识
func (s *FixedPriceBundleStrategy) Type() string {
	return constants.PromotionTypeFixedPriceBundle
}

// IsEligible 预检查
func (s *FixedPriceBundleStrategy) IsEligible(lines []*CartLine, user *MembershipInfo) bool {
	return len(lines) >= 1
}

// Apply 应用捆绑策略
func (s *FixedPriceBundleStrategy) Apply(lines []*CartLine, def *Definition, user *MembershipInfo) (*Outcome, error) {
	cfg, ok := def.Config.(*FixedPriceBundleConfig)
	if !ok {
		return nil, fmt.Errorf("promotion %d: config is not FixedPriceBundleConfig", def.ID)
	}

	eligible := filterEligible(lines, cfg.EligibleProductIDs, cfg.EligibleCategoryIDs)
	if len(eligible) == 0 {
		return notApplied(def, "No eligible items for bundle"), nil
	}

	totalEligibleQty := sumQuantity(eligible)
	if totalEligibleQty < cfg.BundleQuantity {
		return notApplied(def, fmt.Sprintf("Need to buy at least %d eligible items for bundle", cfg.BundleQuantity)), nil
	}

	completeBundles := totalEligibleQty / cfg.BundleQuantity
	if completeBundles <= 0 {
		return notApplied(def, "Not enough items to form a bundle"), nil
	}

	// 贪心消费成捆数量，记录每行的消费件数与原价贡献
	consumptions := make([]bundleConsumption, 0, len(eligible))
	remaining := completeBundles * cfg.BundleQuantity
	originalBundlePrice := decimal.Zero
	for _, line := range eligible {
		if remaining <= 0 {
			break
		}
		use := remaining
		if line.Quantity < use {
			use = line.Quantity
		}
		contribution := line.UnitPrice.Mul(decimal.NewFromInt(int64(use)))
		consumptions = append(consumptions, bundleConsumption{
			line:          line,
			quantity:      use,
			totalOriginal: contribution,
		})
		originalBundlePrice = originalBundlePrice.Add(contribution)
		remaining -= use
	}

	totalBundlePrice := cfg.BundlePrice.Mul(decimal.NewFromInt(int64(completeBundles)))
	totalDiscount := originalBundlePrice.Sub(totalBundlePrice)
	if totalDiscount.LessThanOrEqual(decimal.Zero) {
		return notApplied(def, "Bundle price is higher than original price"), nil
	}

	affected := make([]uint, 0, len(consumptions))
	appliedDiscounts := make([]map[string]interface{}, 0, len(consumptions))
	for _, c := range consumptions {
		proportional := c.totalOriginal.Div(originalBundlePrice).Mul(totalDiscount)
		perUnit := proportional.Div(decimal.NewFromInt(int64(c.quantity)))

		c.line.DiscountPerUnit = c.line.DiscountPerUnit.Add(perUnit)
		c.line.AppliedPromotionID = def.ID
		c.line.Details = map[string]interface{}{
			"type":                  def.Type,
			"bundle_quantity":       cfg.BundleQuantity,
			"bundle_price":          cfg.BundlePrice,
			"bundles_count":         completeBundles,
			"proportional_discount": proportional,
		}

		affected = append(affected, c.line.ProductID)
		appliedDiscounts = append(appliedDiscounts, map[string]interface{}{
			"product_name":          c.line.ProductName,
			"quantity":              c.quantity,
			"original_price":        c.line.UnitPrice,
			"discount_amount":       perUnit,
			"proportional_discount": proportional,
		})
	}

	message := fmt.Sprintf("Buy %d for $%s! %d bundle(s) applied. Saved $%s",
		cfg.BundleQuantity, cfg.BundlePrice.StringFixed(2), completeBundles, totalDiscount.Round(2).StringFixed(2))

	return &Outcome{
		PromotionID:        def.ID,
		PromotionCode:      def.Code,
		PromotionName:      def.Name,
		PromotionType:      def.Type,
		Applied:            true,
		DiscountAmount:     totalDiscount,
		AffectedProductIDs: affected,
		Message:            message,
		Metadata: map[string]interface{}{
			"bundle_quantity":       cfg.BundleQuantity,
			"bundle_price":          cfg.BundlePrice,
			"complete_bundles":      completeBundles,
			"original_bundle_price": originalBundlePrice,
			"total_bundle_price":    totalBundlePrice,
			"applied_discounts":     appliedDiscounts,
		},
	}, nil
}
