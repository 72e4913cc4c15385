package promotion

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nhorsopheak/promotion-management/internal/constants"
)

func TestFixedPriceBundleProportionalDistribution(t *testing.T) {
	lines := []*CartLine{
		makeLine(1, "Cleanser", 7, "19.99", 1),
		makeLine(2, "Toner", 7, "29.99", 1),
		makeLine(3, "Serum", 7, "39.99", 1),
	}
	def := makeDefinition(t, 1, constants.PromotionTypeFixedPriceBundle,
		`{"bundle_quantity":3,"bundle_price":30,"eligible_category_ids":[7]}`)

	o, err := (&FixedPriceBundleStrategy{}).Apply(lines, def, nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !o.Applied {
		t.Fatalf("expected applied: %s", o.Message)
	}
	if !o.DiscountAmount.Equal(d("59.97")) {
		t.Fatalf("expected discount 59.97, got %s", o.DiscountAmount)
	}

	epsilon := d("0.01")
	// 各行折扣之和与总折扣的偏差不超过 0.01
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(line.LineTotalDiscount())
	}
	if sum.Sub(o.DiscountAmount).Abs().GreaterThan(epsilon) {
		t.Fatalf("per-line discounts must sum to the total within epsilon, got %s", sum)
	}
	// 39.99 行按占比分摊约 26.65
	if lines[2].DiscountPerUnit.Sub(d("26.65")).Abs().GreaterThan(epsilon) {
		t.Fatalf("expected ~26.65 on the most expensive line, got %s", lines[2].DiscountPerUnit)
	}
	meta := o.Metadata
	if !meta["original_bundle_price"].(decimal.Decimal).Equal(d("89.97")) {
		t.Fatalf("unexpected original bundle price: %v", meta["original_bundle_price"])
	}
	if !meta["total_bundle_price"].(decimal.Decimal).Equal(d("30")) {
		t.Fatalf("unexpected total bundle price: %v", meta["total_bundle_price"])
	}
	if meta["complete_bundles"].(int) != 1 {
		t.Fatalf("expected 1 complete bundle")
	}
}

func TestFixedPriceBundleGreedyConsumption(t *testing.T) {
	// 5 件参与、捆绑 3 件：只消费前两行的 3 件，第三行不动
	lines := []*CartLine{
		makeLine(1, "A", 1, "10.00", 2),
		makeLine(2, "B", 1, "10.00", 2),
		makeLine(3, "C", 1, "10.00", 1),
	}
	def := makeDefinition(t, 1, constants.PromotionTypeFixedPriceBundle,
		`{"bundle_quantity":3,"bundle_price":24}`)

	o, err := (&FixedPriceBundleStrategy{}).Apply(lines, def, nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !o.Applied {
		t.Fatalf("expected applied: %s", o.Message)
	}
	if !o.DiscountAmount.Equal(d("6")) {
		t.Fatalf("expected discount 6, got %s", o.DiscountAmount)
	}
	if lines[2].DiscountPerUnit.Sign() != 0 {
		t.Fatalf("line beyond the consumed quantity must stay untouched")
	}
	if len(o.AffectedProductIDs) != 2 {
		t.Fatalf("only consumed lines are affected, got %v", o.AffectedProductIDs)
	}
}

func TestFixedPriceBundleNotCheaper(t *testing.T) {
	lines := []*CartLine{makeLine(1, "A", 1, "5.00", 3)}
	def := makeDefinition(t, 1, constants.PromotionTypeFixedPriceBundle,
		`{"bundle_quantity":3,"bundle_price":20}`)

	o, err := (&FixedPriceBundleStrategy{}).Apply(lines, def, nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if o.Applied {
		t.Fatalf("bundle dearer than originals must not apply")
	}
	if lines[0].DiscountPerUnit.Sign() != 0 {
		t.Fatalf("lines must stay untouched for a not-applied bundle")
	}
}

func TestFixedPriceBundleInsufficientQuantity(t *testing.T) {
	lines := []*CartLine{makeLine(1, "A", 1, "10.00", 2)}
	def := makeDefinition(t, 1, constants.PromotionTypeFixedPriceBundle,
		`{"bundle_quantity":3,"bundle_price":20}`)

	o, err := (&FixedPriceBundleStrategy{}).Apply(lines, def, nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if o.Applied {
		t.Fatalf("below bundle quantity must not apply")
	}
}
