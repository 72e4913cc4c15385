package promotion

import (
	"testing"

	"github.com/nhorsopheak/promotion-management/internal/constants"
)

func TestPercentageDiscountTenPercent(t *testing.T) {
	lines := []*CartLine{makeLine(1, "A", 1, "19.99", 1)}
	def := makeDefinition(t, 1, constants.PromotionTypePercentage,
		`{"discount_type":"percentage","discount_value":10}`)

	o, err := (&PercentageDiscountStrategy{}).Apply(lines, def, nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !o.Applied {
		t.Fatalf("expected applied: %s", o.Message)
	}
	if !o.DiscountAmount.Round(2).Equal(d("2.00")) {
		t.Fatalf("expected ~2.00 discount, got %s", o.DiscountAmount)
	}
	if !lines[0].DiscountPerUnit.Equal(d("1.999")) {
		t.Fatalf("expected per-unit discount 1.999, got %s", lines[0].DiscountPerUnit)
	}
}

func TestPercentageDiscountFixedAmountCapped(t *testing.T) {
	cases := []struct {
		name     string
		value    string
		total    string
		expected string
	}{
		{"below_total", "5", "30.00", "5"},
		{"capped_at_total", "50", "30.00", "30.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lines := []*CartLine{makeLine(1, "A", 1, tc.total, 1)}
			def := makeDefinition(t, 1, constants.PromotionTypePercentage,
				`{"discount_type":"fixed_amount","discount_value":`+tc.value+`}`)

			o, err := (&PercentageDiscountStrategy{}).Apply(lines, def, nil)
			if err != nil {
				t.Fatalf("apply: %v", err)
			}
			if !o.Applied {
				t.Fatalf("expected applied: %s", o.Message)
			}
			if !o.DiscountAmount.Equal(d(tc.expected)) {
				t.Fatalf("expected discount %s, got %s", tc.expected, o.DiscountAmount)
			}
		})
	}
}

func TestPercentageDiscountGreedyDistribution(t *testing.T) {
	lines := []*CartLine{
		makeLine(1, "A", 1, "10.00", 2), // 行总额 20
		makeLine(2, "B", 1, "15.00", 2), // 行总额 30
	}
	def := makeDefinition(t, 1, constants.PromotionTypePercentage,
		`{"discount_type":"fixed_amount","discount_value":25}`)

	o, err := (&PercentageDiscountStrategy{}).Apply(lines, def, nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	// 第一行吃满 20（每件 10），剩余 5 摊入第二行（每件 2.5）
	if !lines[0].DiscountPerUnit.Equal(d("10")) {
		t.Fatalf("first line per-unit should be 10, got %s", lines[0].DiscountPerUnit)
	}
	if !lines[1].DiscountPerUnit.Equal(d("2.5")) {
		t.Fatalf("second line per-unit should be 2.5, got %s", lines[1].DiscountPerUnit)
	}
	if !o.DiscountAmount.Equal(d("25")) {
		t.Fatalf("expected discount 25, got %s", o.DiscountAmount)
	}
}

func TestPercentageDiscountScopedByProducts(t *testing.T) {
	lines := []*CartLine{
		makeLine(1, "In", 1, "40.00", 1),
		makeLine(2, "Out", 1, "60.00", 1),
	}
	def := makeDefinition(t, 1, constants.PromotionTypePercentage,
		`{"discount_type":"percentage","discount_value":50,"apply_to_type":"specific_products","eligible_product_ids":[1]}`)

	o, err := (&PercentageDiscountStrategy{}).Apply(lines, def, nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !o.DiscountAmount.Equal(d("20")) {
		t.Fatalf("discount must be computed over eligible lines only, got %s", o.DiscountAmount)
	}
	if lines[1].DiscountPerUnit.Sign() != 0 {
		t.Fatalf("out-of-scope line must stay untouched")
	}
}

func TestPercentageDiscountNoEligibleItems(t *testing.T) {
	lines := []*CartLine{makeLine(1, "A", 1, "10.00", 1)}
	def := makeDefinition(t, 1, constants.PromotionTypePercentage,
		`{"discount_type":"percentage","discount_value":10,"apply_to_type":"specific_products","eligible_product_ids":[99]}`)

	o, err := (&PercentageDiscountStrategy{}).Apply(lines, def, nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if o.Applied {
		t.Fatalf("no eligible lines must yield not-applied")
	}
}
