package promotion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nhorsopheak/promotion-management/internal/constants"
)

// Config 策略配置的封闭集合，按促销类型解析一次
// 未知字段在解析时拒绝，Validate 在创建/启用促销时执行结构校验
type Config interface {
	Validate() error
}

// DecodeConditions 按促销类型解析 conditions JSON 文本
// 空文本返回带默认值的配置（兼容历史数据）
func DecodeConditions(promotionType, raw string) (Config, error) {
	var cfg Config
	switch promotionType {
	case constants.PromotionTypeBuyXGetYFree:
		cfg = &BuyXGetYFreeConfig{}
	case constants.PromotionTypeStepDiscount:
		cfg = &StepDiscountConfig{}
	case constants.PromotionTypeFixedPriceBundle:
		cfg = &FixedPriceBundleConfig{}
	case constants.PromotionTypePercentage:
		cfg = &PercentageDiscountConfig{}
	default:
		return nil, fmt.Errorf("unknown promotion type: %s", promotionType)
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed != "" && trimmed != "null" {
		dec := json.NewDecoder(bytes.NewReader([]byte(trimmed)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode conditions for %s: %w", promotionType, err)
		}
	}

	switch c := cfg.(type) {
	case *BuyXGetYFreeConfig:
		c.normalize()
	case *StepDiscountConfig:
		c.normalize()
	case *FixedPriceBundleConfig:
		c.normalize()
	case *PercentageDiscountConfig:
		c.normalize()
	}
	return cfg, nil
}

// BuyXGetYFreeConfig 买 X 赠 Y 配置
type BuyXGetYFreeConfig struct {
	BuyQuantity        int    `json:"buy_quantity"`                    // 需购买件数
	GetQuantity        int    `json:"get_quantity"`                    // 赠送件数
	ApplyToType        string `json:"apply_to_type,omitempty"`         // 资格范围（any/specific_products/specific_categories）
	ApplyToProductIDs  []uint `json:"apply_to_product_ids,omitempty"`  // 资格商品列表
	ApplyToCategoryIDs []uint `json:"apply_to_category_ids,omitempty"` // 资格分类列表
	GetType            string `json:"get_type,omitempty"`              // 赠品选取（cheapest/specific_products）
	GetProductIDs      []uint `json:"get_product_ids,omitempty"`       // 赠品商品列表
	ApplyToCheapest    *bool  `json:"apply_to_cheapest,omitempty"`     // 赠最便宜（默认 true）
}

func (c *BuyXGetYFreeConfig) normalize() {
	if c.BuyQuantity == 0 {
		c.BuyQuantity = 2
	}
	if c.GetQuantity == 0 {
		c.GetQuantity = 1
	}
	if c.ApplyToType == "" {
		c.ApplyToType = constants.ApplyToAny
	}
	if c.GetType == "" {
		c.GetType = constants.GetTypeCheapest
	}
}

// Cheapest 赠品排序方向，未配置时默认赠最便宜
func (c *BuyXGetYFreeConfig) Cheapest() bool {
	return c.ApplyToCheapest == nil || *c.ApplyToCheapest
}

// Validate 结构校验（创建/启用时执行）
func (c *BuyXGetYFreeConfig) Validate() error {
	if c.BuyQuantity < 1 {
		return fmt.Errorf("buy_quantity must be at least 1")
	}
	if c.GetQuantity < 1 {
		return fmt.Errorf("get_quantity must be at least 1")
	}
	switch c.ApplyToType {
	case constants.ApplyToAny:
	case constants.ApplyToSpecificProducts:
		if len(c.ApplyToProductIDs) == 0 {
			return fmt.Errorf("apply_to_product_ids is required for apply_to_type %s", c.ApplyToType)
		}
	case constants.ApplyToSpecificCategories:
		if len(c.ApplyToCategoryIDs) == 0 {
			return fmt.Errorf("apply_to_category_ids is required for apply_to_type %s", c.ApplyToType)
		}
	default:
		return fmt.Errorf("invalid apply_to_type: %s", c.ApplyToType)
	}
	switch c.GetType {
	case constants.GetTypeCheapest:
	case constants.GetTypeSpecificProducts:
		if len(c.GetProductIDs) == 0 {
			return fmt.Errorf("get_product_ids is required for get_type %s", c.GetType)
		}
	default:
		return fmt.Errorf("invalid get_type: %s", c.GetType)
	}
	return nil
}

// DiscountTier 阶梯折扣档位（position 为购物车 1 起始顺位）
type DiscountTier struct {
	Position   int             `json:"position"`   // 顺位
	Percentage decimal.Decimal `json:"percentage"` // 折扣百分比
}

// StepDiscountConfig 阶梯折扣配置
type StepDiscountConfig struct {
	Tiers []DiscountTier `json:"discount_tiers"` // 档位列表
}

func (c *StepDiscountConfig) normalize() {
	if len(c.Tiers) == 0 {
		c.Tiers = []DiscountTier{
			{Position: 2, Percentage: decimal.NewFromInt(20)},
			{Position: 3, Percentage: decimal.NewFromInt(30)},
			{Position: 5, Percentage: decimal.NewFromInt(50)},
		}
	}
}

// TierMap 返回顺位到百分比的映射，重复顺位后者覆盖前者
func (c *StepDiscountConfig) TierMap() map[int]decimal.Decimal {
	tiers := make(map[int]decimal.Decimal, len(c.Tiers))
	for _, t := range c.Tiers {
		tiers[t.Position] = t.Percentage
	}
	return tiers
}

// Validate 结构校验（创建/启用时执行）
func (c *StepDiscountConfig) Validate() error {
	if len(c.Tiers) == 0 {
		return fmt.Errorf("discount_tiers must not be empty")
	}
	hundred := decimal.NewFromInt(100)
	for i, t := range c.Tiers {
		if t.Position < 2 {
			return fmt.Errorf("discount_tiers[%d].position must be at least 2", i)
		}
		if t.Percentage.LessThanOrEqual(decimal.Zero) || t.Percentage.GreaterThan(hundred) {
			return fmt.Errorf("discount_tiers[%d].percentage must be between 0 and 100", i)
		}
	}
	return nil
}

// FixedPriceBundleConfig 固定价格捆绑配置
type FixedPriceBundleConfig struct {
	BundleQuantity      int             `json:"bundle_quantity"`                 // 捆绑件数
	BundlePrice         decimal.Decimal `json:"bundle_price"`                    // 捆绑总价
	EligibleProductIDs  []uint          `json:"eligible_product_ids,omitempty"`  // 参与商品列表
	EligibleCategoryIDs []uint          `json:"eligible_category_ids,omitempty"` // 参与分类列表
}

func (c *FixedPriceBundleConfig) normalize() {
	if c.BundleQuantity == 0 {
		c.BundleQuantity = 3
	}
	if c.BundlePrice.IsZero() {
		c.BundlePrice = decimal.NewFromInt(30)
	}
}

// Validate 结构校验（创建/启用时执行）
func (c *FixedPriceBundleConfig) Validate() error {
	if c.BundleQuantity < 2 {
		return fmt.Errorf("bundle_quantity must be at least 2")
	}
	if c.BundlePrice.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("bundle_price must be greater than 0")
	}
	return nil
}

// PercentageDiscountConfig 百分比/固定额折扣配置
type PercentageDiscountConfig struct {
	DiscountType        string          `json:"discount_type"`                   // 折扣类型（percentage/fixed_amount）
	DiscountValue       decimal.Decimal `json:"discount_value"`                  // 折扣数值
	ApplyToType         string          `json:"apply_to_type,omitempty"`         // 适用范围（all/specific_products/specific_categories）
	EligibleProductIDs  []uint          `json:"eligible_product_ids,omitempty"`  // 参与商品列表
	EligibleCategoryIDs []uint          `json:"eligible_category_ids,omitempty"` // 参与分类列表
}

func (c *PercentageDiscountConfig) normalize() {
	if c.DiscountType == "" {
		c.DiscountType = constants.DiscountTypePercentage
	}
	if c.ApplyToType == "" {
		c.ApplyToType = constants.ApplyToAll
	}
}

// Validate 结构校验（创建/启用时执行）
func (c *PercentageDiscountConfig) Validate() error {
	switch c.DiscountType {
	case constants.DiscountTypePercentage:
		if c.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("discount_value must not exceed 100 for percentage discounts")
		}
	case constants.DiscountTypeFixedAmount:
	default:
		return fmt.Errorf("invalid discount_type: %s", c.DiscountType)
	}
	if c.DiscountValue.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("discount_value must be greater than 0")
	}
	switch c.ApplyToType {
	case constants.ApplyToAll:
	case constants.ApplyToSpecificProducts:
		if len(c.EligibleProductIDs) == 0 {
			return fmt.Errorf("eligible_product_ids is required for apply_to_type %s", c.ApplyToType)
		}
	case constants.ApplyToSpecificCategories:
		if len(c.EligibleCategoryIDs) == 0 {
			return fmt.Errorf("eligible_category_ids is required for apply_to_type %s", c.ApplyToType)
		}
	default:
		return fmt.Errorf("invalid apply_to_type: %s", c.ApplyToType)
	}
	return nil
}
