package promotion

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/nhorsopheak/promotion-management/internal/constants"
)

// BuyXGetYFreeStrategy 买 X 赠 Y 策略
// 按资格范围统计可凑组数量，再从赠品候选中贪心释放免费件数
type BuyXGetYFreeStrategy struct{}

// Type 策略类型标识
func (s *BuyXGetYFreeStrategy) Type() string {
	return constants.PromotionTypeBuyXGetYFree
}

// IsEligible 预检查（权威判定在 Apply 内基于具体配置完成）
func (s *BuyXGetYFreeStrategy) IsEligible(lines []*CartLine, user *MembershipInfo) bool {
	return true
}

// Apply 应用买赠策略
func (s *BuyXGetYFreeStrategy) Apply(lines []*CartLine, def *Definition, user *MembershipInfo) (*Outcome, error) {
	cfg, ok := def.Config.(*BuyXGetYFreeConfig)
	if !ok {
		return nil, fmt.Errorf("promotion %d: config is not BuyXGetYFreeConfig", def.ID)
	}

	qualifying := s.qualifyingLines(lines, cfg)
	if len(qualifying) == 0 {
		return notApplied(def, "No eligible items in cart for buying"), nil
	}

	totalQualifyingQty := sumQuantity(qualifying)
	if totalQualifyingQty < cfg.BuyQuantity {
		return notApplied(def, fmt.Sprintf("Need to buy at least %d eligible items", cfg.BuyQuantity)), nil
	}

	sets := totalQualifyingQty / cfg.BuyQuantity
	totalFree := sets * cfg.GetQuantity
	if totalFree <= 0 {
		return notApplied(def, "Not enough items to qualify for free items"), nil
	}

	candidates := s.freeCandidates(lines, cfg)
	if len(candidates) == 0 {
		return notApplied(def, "No eligible items in cart for getting free"), nil
	}
	sorted := s.sortCandidates(candidates, cfg)

	freeItems := make([]FreeItem, 0, len(sorted))
	affected := make([]uint, 0, len(sorted))
	totalDiscount := decimal.Zero
	remaining := totalFree

	for _, line := range sorted {
		if remaining <= 0 {
			break
		}
		freeQty := remaining
		if line.Quantity < freeQty {
			freeQty = line.Quantity
		}
		if freeQty <= 0 {
			continue
		}

		discountPerItem := line.UnitPrice
		itemDiscount := discountPerItem.Mul(decimal.NewFromInt(int64(freeQty)))

		freeItems = append(freeItems, FreeItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    freeQty,
			UnitValue:   line.UnitPrice,
		})
		affected = append(affected, line.ProductID)
		totalDiscount = totalDiscount.Add(itemDiscount)
		remaining -= freeQty

		line.DiscountPerUnit = line.DiscountPerUnit.Add(discountPerItem)
		line.FreeQuantity += freeQty
		line.AppliedPromotionID = def.ID
		line.IsFullyFree = freeQty == line.Quantity
		line.Details = map[string]interface{}{
			"type":          def.Type,
			"free_quantity": freeQty,
			"buy_quantity":  cfg.BuyQuantity,
			"get_quantity":  cfg.GetQuantity,
			"apply_to_type": cfg.ApplyToType,
			"get_type":      cfg.GetType,
		}
	}

	return &Outcome{
		PromotionID:        def.ID,
		PromotionCode:      def.Code,
		PromotionName:      def.Name,
		PromotionType:      def.Type,
		Applied:            true,
		DiscountAmount:     totalDiscount,
		AffectedProductIDs: affected,
		FreeItems:          freeItems,
		Message:            s.message(cfg, totalFree),
		Metadata: map[string]interface{}{
			"buy_quantity":     cfg.BuyQuantity,
			"get_quantity":     cfg.GetQuantity,
			"sets_qualified":   sets,
			"total_free_items": totalFree,
			"apply_to_type":    cfg.ApplyToType,
			"get_type":         cfg.GetType,
		},
	}, nil
}

// qualifyingLines 按资格范围过滤行
func (s *BuyXGetYFreeStrategy) qualifyingLines(lines []*CartLine, cfg *BuyXGetYFreeConfig) []*CartLine {
	switch cfg.ApplyToType {
	case constants.ApplyToSpecificProducts:
		return filterEligible(lines, cfg.ApplyToProductIDs, nil)
	case constants.ApplyToSpecificCategories:
		return filterEligible(lines, nil, cfg.ApplyToCategoryIDs)
	default:
		return lines
	}
}

// freeCandidates 按赠品选取方式过滤行
func (s *BuyXGetYFreeStrategy) freeCandidates(lines []*CartLine, cfg *BuyXGetYFreeConfig) []*CartLine {
	switch cfg.GetType {
	case constants.GetTypeSpecificProducts:
		return filterEligible(lines, cfg.GetProductIDs, nil)
	case constants.GetTypeCheapest:
		return s.qualifyingLines(lines, cfg)
	default:
		return lines
	}
}

// sortCandidates 赠品排序：指定商品恒按价格升序，cheapest 按配置方向
func (s *BuyXGetYFreeStrategy) sortCandidates(candidates []*CartLine, cfg *BuyXGetYFreeConfig) []*CartLine {
	sorted := make([]*CartLine, len(candidates))
	copy(sorted, candidates)
	ascending := cfg.GetType == constants.GetTypeSpecificProducts || cfg.Cheapest()
	sort.SliceStable(sorted, func(i, j int) bool {
		if ascending {
			return sorted[i].UnitPrice.LessThan(sorted[j].UnitPrice)
		}
		return sorted[i].UnitPrice.GreaterThan(sorted[j].UnitPrice)
	})
	return sorted
}

func (s *BuyXGetYFreeStrategy) message(cfg *BuyXGetYFreeConfig, totalFree int) string {
	var buyText string
	switch cfg.ApplyToType {
	case constants.ApplyToSpecificProducts:
		buyText = fmt.Sprintf("%d specific products", cfg.BuyQuantity)
	case constants.ApplyToSpecificCategories:
		buyText = fmt.Sprintf("%d products from specific categories", cfg.BuyQuantity)
	default:
		buyText = fmt.Sprintf("%d items", cfg.BuyQuantity)
	}
	var getText string
	switch cfg.GetType {
	case constants.GetTypeSpecificProducts:
		getText = fmt.Sprintf("%d specific product(s) free", cfg.GetQuantity)
	case constants.GetTypeCheapest:
		getText = fmt.Sprintf("%d cheapest item(s) free", cfg.GetQuantity)
	default:
		getText = fmt.Sprintf("%d item(s) free", cfg.GetQuantity)
	}
	return fmt.Sprintf("Buy %s, Get %s! %d free item(s) added.", buyText, getText, totalFree)
}
