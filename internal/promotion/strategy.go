package promotion

import (
	"sort"
)

// Strategy 促销策略契约
// IsEligible 为廉价预检查；Apply 做权威判定并就地累加行折扣，
// 条件不满足时返回 Applied=false 的结果并附带原因，而不是错误
type Strategy interface {
	Type() string
	IsEligible(lines []*CartLine, user *MembershipInfo) bool
	Apply(lines []*CartLine, def *Definition, user *MembershipInfo) (*Outcome, error)
}

// Registry 策略注册表，启动时构建一次，评估期间只读
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// NewDefaultRegistry 创建并注册全部内置策略
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&BuyXGetYFreeStrategy{})
	r.Register(&StepDiscountStrategy{})
	r.Register(&FixedPriceBundleStrategy{})
	r.Register(&PercentageDiscountStrategy{})
	return r
}

// Register 注册策略，同类型后注册者覆盖
func (r *Registry) Register(s Strategy) {
	r.strategies[s.Type()] = s
}

// Get 按类型获取策略，未注册返回 nil
func (r *Registry) Get(promotionType string) Strategy {
	return r.strategies[promotionType]
}

// Types 返回已注册类型（字典序）
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.strategies))
	for t := range r.strategies {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// filterEligible 按商品/分类列表过滤行，两个列表均为空时全部通过
func filterEligible(lines []*CartLine, productIDs, categoryIDs []uint) []*CartLine {
	if len(productIDs) == 0 && len(categoryIDs) == 0 {
		return lines
	}
	productSet := make(map[uint]struct{}, len(productIDs))
	for _, id := range productIDs {
		productSet[id] = struct{}{}
	}
	categorySet := make(map[uint]struct{}, len(categoryIDs))
	for _, id := range categoryIDs {
		categorySet[id] = struct{}{}
	}
	eligible := make([]*CartLine, 0, len(lines))
	for _, line := range lines {
		if _, ok := productSet[line.ProductID]; ok && len(productIDs) > 0 {
			eligible = append(eligible, line)
			continue
		}
		if line.CategoryID != 0 && len(categoryIDs) > 0 {
			if _, ok := categorySet[line.CategoryID]; ok {
				eligible = append(eligible, line)
			}
		}
	}
	return eligible
}

// sumQuantity 统计行数量总和
func sumQuantity(lines []*CartLine) int {
	total := 0
	for _, line := range lines {
		total += line.Quantity
	}
	return total
}
