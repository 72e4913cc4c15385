package promotion

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nhorsopheak/promotion-management/internal/constants"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func makeLine(productID uint, name string, categoryID uint, price string, qty int) *CartLine {
	return &CartLine{
		ProductID:   productID,
		ProductName: name,
		CategoryID:  categoryID,
		Quantity:    qty,
		UnitPrice:   d(price),
	}
}

func makeDefinition(t *testing.T, id uint, promotionType, conditions string) *Definition {
	t.Helper()
	cfg, err := DecodeConditions(promotionType, conditions)
	if err != nil {
		t.Fatalf("decode conditions: %v", err)
	}
	return &Definition{
		ID:     id,
		Code:   "P" + promotionType,
		Name:   promotionType,
		Type:   promotionType,
		Status: constants.PromotionStatusActive,
		Config: cfg,
	}
}

func TestEvaluateBuyTwoGetOneCheapestFree(t *testing.T) {
	lines := []*CartLine{
		makeLine(1, "T-shirt", 1, "19.99", 1),
		makeLine(2, "Jeans", 1, "49.99", 1),
		makeLine(3, "Sneakers", 2, "79.99", 1),
	}
	def := makeDefinition(t, 10, constants.PromotionTypeBuyXGetYFree,
		`{"buy_quantity":2,"get_quantity":1,"apply_to_type":"any","get_type":"cheapest"}`)

	engine := NewEngine(nil)
	outcomes := engine.EvaluateAt(lines, []*Definition{def}, nil, time.Now())

	if len(outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(outcomes))
	}
	o := outcomes[0]
	if !o.Applied {
		t.Fatalf("expected applied outcome: %s", o.Message)
	}
	if !o.DiscountAmount.Equal(d("19.99")) {
		t.Fatalf("expected discount 19.99, got %s", o.DiscountAmount)
	}
	if len(o.FreeItems) != 1 || o.FreeItems[0].ProductID != 1 || o.FreeItems[0].Quantity != 1 {
		t.Fatalf("expected the cheapest line to be freed, got %+v", o.FreeItems)
	}
	if !lines[0].IsFullyFree {
		t.Fatalf("cheapest line should be fully free")
	}
	if !lines[0].FinalUnitPrice().IsZero() {
		t.Fatalf("freed line final price should be 0, got %s", lines[0].FinalUnitPrice())
	}
	if lines[1].DiscountPerUnit.Sign() != 0 || lines[2].DiscountPerUnit.Sign() != 0 {
		t.Fatalf("other lines must stay undiscounted")
	}
}

func TestEvaluateSkipsInactiveWindowAndStatus(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name   string
		mutate func(*Definition)
	}{
		{"paused", func(def *Definition) { def.Status = constants.PromotionStatusPaused }},
		{"draft", func(def *Definition) { def.Status = constants.PromotionStatusDraft }},
		{"not_started", func(def *Definition) { def.StartDate = &future }},
		{"ended", func(def *Definition) { def.EndDate = &past }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lines := []*CartLine{makeLine(1, "A", 1, "10.00", 3)}
			def := makeDefinition(t, 1, constants.PromotionTypeBuyXGetYFree, `{"buy_quantity":2,"get_quantity":1}`)
			tc.mutate(def)
			outcomes := NewEngine(nil).EvaluateAt(lines, []*Definition{def}, nil, now)
			if len(outcomes) != 0 {
				t.Fatalf("expected no outcomes, got %d", len(outcomes))
			}
			if lines[0].DiscountPerUnit.Sign() != 0 {
				t.Fatalf("lines must stay untouched when promotion is skipped")
			}
		})
	}
}

func TestEvaluateMembershipGate(t *testing.T) {
	def := makeDefinition(t, 2, constants.PromotionTypePercentage,
		`{"discount_type":"percentage","discount_value":10}`)
	def.RequiresMembership = true
	def.MembershipTiers = []string{constants.MembershipTierGold}

	engine := NewEngine(nil)
	now := time.Now()

	freshLines := func() []*CartLine {
		return []*CartLine{makeLine(1, "A", 1, "100.00", 1)}
	}

	if got := engine.EvaluateAt(freshLines(), []*Definition{def}, nil, now); len(got) != 0 {
		t.Fatalf("anonymous user must not receive member promotions")
	}
	nonMember := &MembershipInfo{UserID: 1, IsMember: false}
	if got := engine.EvaluateAt(freshLines(), []*Definition{def}, nonMember, now); len(got) != 0 {
		t.Fatalf("non-member must not receive member promotions")
	}
	silver := &MembershipInfo{UserID: 1, IsMember: true, Tier: constants.MembershipTierSilver}
	if got := engine.EvaluateAt(freshLines(), []*Definition{def}, silver, now); len(got) != 0 {
		t.Fatalf("wrong tier must not receive tier-limited promotions")
	}
	gold := &MembershipInfo{UserID: 1, IsMember: true, Tier: constants.MembershipTierGold}
	got := engine.EvaluateAt(freshLines(), []*Definition{def}, gold, now)
	if len(got) != 1 || !got[0].Applied {
		t.Fatalf("gold member should receive the promotion")
	}
}

func TestEvaluateUsageLimits(t *testing.T) {
	now := time.Now()
	engine := NewEngine(nil)

	exhausted := makeDefinition(t, 3, constants.PromotionTypePercentage,
		`{"discount_type":"percentage","discount_value":10}`)
	exhausted.UsageLimit = 5
	exhausted.UsageCount = 5
	lines := []*CartLine{makeLine(1, "A", 1, "100.00", 1)}
	if got := engine.EvaluateAt(lines, []*Definition{exhausted}, nil, now); len(got) != 0 {
		t.Fatalf("globally exhausted promotion must be skipped")
	}

	perUser := makeDefinition(t, 4, constants.PromotionTypePercentage,
		`{"discount_type":"percentage","discount_value":10}`)
	perUser.UsageLimitPerUser = 1
	user := &MembershipInfo{UserID: 9, UsageCounts: map[uint]int{4: 1}}
	lines = []*CartLine{makeLine(1, "A", 1, "100.00", 1)}
	if got := engine.EvaluateAt(lines, []*Definition{perUser}, user, now); len(got) != 0 {
		t.Fatalf("per-user exhausted promotion must be skipped")
	}

	fresh := &MembershipInfo{UserID: 9, UsageCounts: map[uint]int{}}
	lines = []*CartLine{makeLine(1, "A", 1, "100.00", 1)}
	if got := engine.EvaluateAt(lines, []*Definition{perUser}, fresh, now); len(got) != 1 {
		t.Fatalf("promotion should apply for a user below the per-user limit")
	}
}

func TestEvaluateUnknownStrategySkipped(t *testing.T) {
	def := &Definition{
		ID:     5,
		Type:   "mystery_type",
		Status: constants.PromotionStatusActive,
	}
	lines := []*CartLine{makeLine(1, "A", 1, "10.00", 1)}
	outcomes := NewEngine(nil).EvaluateAt(lines, []*Definition{def}, nil, time.Now())
	if len(outcomes) != 0 {
		t.Fatalf("unknown strategy type must be skipped, got %d outcomes", len(outcomes))
	}
}

func TestEvaluateCumulativeStackingInPriorityOrder(t *testing.T) {
	first := makeDefinition(t, 6, constants.PromotionTypePercentage,
		`{"discount_type":"percentage","discount_value":10}`)
	first.Priority = 10
	second := makeDefinition(t, 7, constants.PromotionTypePercentage,
		`{"discount_type":"fixed_amount","discount_value":5}`)
	second.Priority = 5

	lines := []*CartLine{makeLine(1, "A", 1, "100.00", 1)}
	outcomes := NewEngine(nil).EvaluateAt(lines, []*Definition{first, second}, nil, time.Now())
	if len(outcomes) != 2 {
		t.Fatalf("both promotions should apply, got %d", len(outcomes))
	}
	if outcomes[0].PromotionID != 6 || outcomes[1].PromotionID != 7 {
		t.Fatalf("outcome order must follow definition order")
	}
	// 第二个促销的折扣基于原始单价计算，不基于折后价
	if !outcomes[1].DiscountAmount.Equal(d("5")) {
		t.Fatalf("fixed discount should be 5, got %s", outcomes[1].DiscountAmount)
	}
	if !lines[0].DiscountPerUnit.Equal(d("15")) {
		t.Fatalf("discounts must accumulate, got %s", lines[0].DiscountPerUnit)
	}
	if !lines[0].FinalUnitPrice().Equal(d("85")) {
		t.Fatalf("final unit price should be 85, got %s", lines[0].FinalUnitPrice())
	}
	if !TotalDiscount(outcomes).Equal(d("15")) {
		t.Fatalf("total discount should be 15, got %s", TotalDiscount(outcomes))
	}
}

func TestEvaluateIdempotentOnFreshSnapshot(t *testing.T) {
	def := makeDefinition(t, 8, constants.PromotionTypeBuyXGetYFree,
		`{"buy_quantity":2,"get_quantity":1}`)
	now := time.Now()
	engine := NewEngine(nil)

	build := func() []*CartLine {
		return []*CartLine{
			makeLine(1, "A", 1, "19.99", 1),
			makeLine(2, "B", 1, "49.99", 2),
		}
	}

	firstLines := build()
	secondLines := build()
	first := engine.EvaluateAt(firstLines, []*Definition{def}, nil, now)
	second := engine.EvaluateAt(secondLines, []*Definition{def}, nil, now)

	if len(first) != len(second) {
		t.Fatalf("outcome count differs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].DiscountAmount.Equal(second[i].DiscountAmount) {
			t.Fatalf("discount differs at %d: %s vs %s", i, first[i].DiscountAmount, second[i].DiscountAmount)
		}
		if first[i].Message != second[i].Message {
			t.Fatalf("message differs at %d", i)
		}
	}
	for i := range firstLines {
		if !firstLines[i].FinalUnitPrice().Equal(secondLines[i].FinalUnitPrice()) {
			t.Fatalf("final price differs at line %d", i)
		}
	}
}

func TestApplyOneReportsIneligibilityReason(t *testing.T) {
	def := makeDefinition(t, 9, constants.PromotionTypeBuyXGetYFree,
		`{"buy_quantity":2,"get_quantity":1}`)
	lines := []*CartLine{makeLine(1, "A", 1, "19.99", 1)}

	o := NewEngine(nil).ApplyOne(lines, def, nil, time.Now())
	if o.Applied {
		t.Fatalf("single item cart must not qualify for buy 2 get 1")
	}
	if o.DiscountAmount.Sign() != 0 {
		t.Fatalf("not-applied outcome must carry zero discount")
	}
	if o.Message == "" {
		t.Fatalf("not-applied outcome must carry a reason")
	}
}

func TestFinalUnitPriceNeverNegative(t *testing.T) {
	line := makeLine(1, "A", 1, "5.00", 1)
	line.DiscountPerUnit = d("8.00")
	if line.FinalUnitPrice().Sign() < 0 {
		t.Fatalf("final unit price must never be negative")
	}
	if !line.FinalUnitPrice().IsZero() {
		t.Fatalf("over-discounted line clamps to zero, got %s", line.FinalUnitPrice())
	}
}

func TestAllFreeItemsFlattens(t *testing.T) {
	outcomes := []*Outcome{
		{Applied: true, FreeItems: []FreeItem{{ProductID: 1, Quantity: 1}}},
		{Applied: true, FreeItems: []FreeItem{{ProductID: 2, Quantity: 2}, {ProductID: 3, Quantity: 1}}},
	}
	items := AllFreeItems(outcomes)
	if len(items) != 3 {
		t.Fatalf("expected 3 free items, got %d", len(items))
	}
}
