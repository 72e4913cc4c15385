package promotion

import (
	"testing"
	"time"

	"github.com/nhorsopheak/promotion-management/internal/constants"
)

func TestBuyXGetYFreeSetsMath(t *testing.T) {
	cases := []struct {
		name       string
		buy, get   int
		quantities []int
		wantFree   int
	}{
		{"exact_one_set", 2, 1, []int{2}, 1},
		{"two_sets", 2, 1, []int{4}, 2},
		{"remainder_ignored", 3, 1, []int{7}, 2},
		{"multi_get", 2, 2, []int{4}, 4},
		{"across_lines", 2, 1, []int{1, 1, 1}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lines := make([]*CartLine, 0, len(tc.quantities))
			for i, q := range tc.quantities {
				lines = append(lines, makeLine(uint(i+1), "P", 1, "10.00", q))
			}
			def := makeDefinition(t, 1, constants.PromotionTypeBuyXGetYFree, "")
			cfg := def.Config.(*BuyXGetYFreeConfig)
			cfg.BuyQuantity = tc.buy
			cfg.GetQuantity = tc.get

			o, err := (&BuyXGetYFreeStrategy{}).Apply(lines, def, nil)
			if err != nil {
				t.Fatalf("apply: %v", err)
			}
			if !o.Applied {
				t.Fatalf("expected applied: %s", o.Message)
			}
			gotFree := 0
			for _, f := range o.FreeItems {
				gotFree += f.Quantity
			}
			if gotFree != tc.wantFree {
				t.Fatalf("expected %d free units, got %d", tc.wantFree, gotFree)
			}
		})
	}
}

func TestBuyXGetYFreeCappedByCandidateQuantity(t *testing.T) {
	// 资格按全场计算，赠品只能从指定商品中释放且不超过其在购数量
	lines := []*CartLine{
		makeLine(1, "Bulk", 1, "5.00", 10),
		makeLine(2, "Gift", 1, "8.00", 2),
	}
	def := makeDefinition(t, 1, constants.PromotionTypeBuyXGetYFree,
		`{"buy_quantity":2,"get_quantity":1,"get_type":"specific_products","get_product_ids":[2]}`)

	o, err := (&BuyXGetYFreeStrategy{}).Apply(lines, def, nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !o.Applied {
		t.Fatalf("expected applied: %s", o.Message)
	}
	// 12/2 = 6 组可得 6 件，但候选只有 2 件
	gotFree := 0
	for _, f := range o.FreeItems {
		gotFree += f.Quantity
		if f.ProductID != 2 {
			t.Fatalf("free items must come from the configured product set")
		}
	}
	if gotFree != 2 {
		t.Fatalf("free units must be capped at candidate quantity, got %d", gotFree)
	}
	if !lines[1].IsFullyFree {
		t.Fatalf("fully consumed candidate line should be marked fully free")
	}
}

func TestBuyXGetYFreeCategoryScope(t *testing.T) {
	lines := []*CartLine{
		makeLine(1, "Snack", 3, "2.50", 2),
		makeLine(2, "Soap", 7, "4.00", 5),
	}
	def := makeDefinition(t, 1, constants.PromotionTypeBuyXGetYFree,
		`{"buy_quantity":2,"get_quantity":1,"apply_to_type":"specific_categories","apply_to_category_ids":[3]}`)

	o, err := (&BuyXGetYFreeStrategy{}).Apply(lines, def, nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !o.Applied {
		t.Fatalf("expected applied: %s", o.Message)
	}
	// 仅类目 3 参与资格与赠品：2/2 = 1 件
	if len(o.FreeItems) != 1 || o.FreeItems[0].ProductID != 1 {
		t.Fatalf("free item must come from the qualifying category, got %+v", o.FreeItems)
	}
	if lines[1].DiscountPerUnit.Sign() != 0 {
		t.Fatalf("out-of-scope line must stay untouched")
	}
}

func TestBuyXGetYFreeMostExpensiveDirection(t *testing.T) {
	lines := []*CartLine{
		makeLine(1, "Cheap", 1, "1.00", 1),
		makeLine(2, "Costly", 1, "9.00", 1),
	}
	def := makeDefinition(t, 1, constants.PromotionTypeBuyXGetYFree,
		`{"buy_quantity":2,"get_quantity":1,"apply_to_cheapest":false}`)

	o, err := (&BuyXGetYFreeStrategy{}).Apply(lines, def, nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(o.FreeItems) != 1 || o.FreeItems[0].ProductID != 2 {
		t.Fatalf("apply_to_cheapest=false should free the most expensive line, got %+v", o.FreeItems)
	}
	if !o.DiscountAmount.Equal(d("9.00")) {
		t.Fatalf("expected discount 9.00, got %s", o.DiscountAmount)
	}
}

func TestBuyXGetYFreeInsufficientQuantity(t *testing.T) {
	lines := []*CartLine{makeLine(1, "A", 1, "19.99", 1)}
	def := makeDefinition(t, 1, constants.PromotionTypeBuyXGetYFree, `{"buy_quantity":2,"get_quantity":1}`)

	o := NewEngine(nil).ApplyOne(lines, def, nil, time.Now())
	if o.Applied {
		t.Fatalf("expected not applied")
	}
	if o.Message != "Need to buy at least 2 eligible items" {
		t.Fatalf("unexpected message: %q", o.Message)
	}
}
