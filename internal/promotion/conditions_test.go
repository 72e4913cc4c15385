package promotion

import (
	"strings"
	"testing"

	"github.com/nhorsopheak/promotion-management/internal/constants"
	"github.com/nhorsopheak/promotion-management/internal/models"
)

func TestDecodeConditionsRejectsUnknownFields(t *testing.T) {
	_, err := DecodeConditions(constants.PromotionTypeBuyXGetYFree,
		`{"buy_quantity":2,"get_quantity":1,"mystery_field":true}`)
	if err == nil {
		t.Fatalf("unknown fields must be rejected")
	}
	if !strings.Contains(err.Error(), "mystery_field") {
		t.Fatalf("error should name the offending field: %v", err)
	}
}

func TestDecodeConditionsUnknownType(t *testing.T) {
	if _, err := DecodeConditions("mystery_type", "{}"); err == nil {
		t.Fatalf("unknown promotion type must be rejected")
	}
}

func TestDecodeConditionsDefaults(t *testing.T) {
	cfg, err := DecodeConditions(constants.PromotionTypeBuyXGetYFree, "")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	c := cfg.(*BuyXGetYFreeConfig)
	if c.BuyQuantity != 2 || c.GetQuantity != 1 {
		t.Fatalf("expected default buy 2 get 1, got %d/%d", c.BuyQuantity, c.GetQuantity)
	}
	if c.ApplyToType != constants.ApplyToAny || c.GetType != constants.GetTypeCheapest {
		t.Fatalf("expected default scopes, got %s/%s", c.ApplyToType, c.GetType)
	}
	if !c.Cheapest() {
		t.Fatalf("apply_to_cheapest must default to true")
	}

	bundle, err := DecodeConditions(constants.PromotionTypeFixedPriceBundle, "null")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := bundle.(*FixedPriceBundleConfig)
	if b.BundleQuantity != 3 || !b.BundlePrice.Equal(d("30")) {
		t.Fatalf("expected default bundle 3 for 30, got %d/%s", b.BundleQuantity, b.BundlePrice)
	}
}

func TestConfigValidation(t *testing.T) {
	cases := []struct {
		name       string
		typ        string
		conditions string
		wantErr    bool
	}{
		{"buyx_valid", constants.PromotionTypeBuyXGetYFree, `{"buy_quantity":2,"get_quantity":1}`, false},
		{"buyx_zero_buy", constants.PromotionTypeBuyXGetYFree, `{"buy_quantity":-1,"get_quantity":1}`, true},
		{"buyx_bad_apply_to", constants.PromotionTypeBuyXGetYFree, `{"buy_quantity":2,"get_quantity":1,"apply_to_type":"everything"}`, true},
		{"buyx_scoped_without_ids", constants.PromotionTypeBuyXGetYFree, `{"buy_quantity":2,"get_quantity":1,"apply_to_type":"specific_products"}`, true},
		{"buyx_get_scoped_without_ids", constants.PromotionTypeBuyXGetYFree, `{"buy_quantity":2,"get_quantity":1,"get_type":"specific_products"}`, true},
		{"step_valid", constants.PromotionTypeStepDiscount, `{"discount_tiers":[{"position":2,"percentage":20}]}`, false},
		{"step_position_one", constants.PromotionTypeStepDiscount, `{"discount_tiers":[{"position":1,"percentage":20}]}`, true},
		{"step_percentage_over_100", constants.PromotionTypeStepDiscount, `{"discount_tiers":[{"position":2,"percentage":120}]}`, true},
		{"bundle_valid", constants.PromotionTypeFixedPriceBundle, `{"bundle_quantity":3,"bundle_price":30}`, false},
		{"bundle_quantity_one", constants.PromotionTypeFixedPriceBundle, `{"bundle_quantity":1,"bundle_price":30}`, true},
		{"bundle_free", constants.PromotionTypeFixedPriceBundle, `{"bundle_quantity":3,"bundle_price":-1}`, true},
		{"pct_valid", constants.PromotionTypePercentage, `{"discount_type":"percentage","discount_value":15}`, false},
		{"pct_over_100", constants.PromotionTypePercentage, `{"discount_type":"percentage","discount_value":150}`, true},
		{"pct_bad_type", constants.PromotionTypePercentage, `{"discount_type":"half_off","discount_value":10}`, true},
		{"pct_scoped_without_ids", constants.PromotionTypePercentage, `{"discount_type":"percentage","discount_value":10,"apply_to_type":"specific_categories"}`, true},
		{"fixed_amount_valid", constants.PromotionTypePercentage, `{"discount_type":"fixed_amount","discount_value":500}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := DecodeConditions(tc.typ, tc.conditions)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			err = cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestNewDefinitionFromModel(t *testing.T) {
	p := &models.Promotion{
		ID:                 42,
		Code:               "BUNDLE30",
		Name:               "Skincare Bundle",
		Type:               constants.PromotionTypeFixedPriceBundle,
		Status:             constants.PromotionStatusActive,
		Priority:           5,
		Conditions:         `{"bundle_quantity":3,"bundle_price":30}`,
		UsageLimit:         100,
		UsageLimitPerUser:  2,
		RequiresMembership: true,
		MembershipTiers:    models.StringArray{"gold"},
	}
	def, err := NewDefinition(p)
	if err != nil {
		t.Fatalf("new definition: %v", err)
	}
	if def.ID != 42 || def.Code != "BUNDLE30" || def.Priority != 5 {
		t.Fatalf("identity fields not carried over: %+v", def)
	}
	if _, ok := def.Config.(*FixedPriceBundleConfig); !ok {
		t.Fatalf("config must be typed by promotion type")
	}
	if !def.AllowsTier("Gold") {
		t.Fatalf("tier match must be case-insensitive")
	}
	if def.AllowsTier("silver") {
		t.Fatalf("tier outside the allow list must be rejected")
	}

	p.Conditions = `{"bundle_quantity":3,"oops":1}`
	if _, err := NewDefinition(p); err == nil {
		t.Fatalf("malformed conditions must surface at load time")
	}
}
