package service

import (
	"errors"
	"testing"

	"github.com/nhorsopheak/promotion-management/internal/constants"
	"github.com/nhorsopheak/promotion-management/internal/repository"
)

func newPromotionAdminFixture(t *testing.T) *PromotionAdminService {
	t.Helper()
	db := newServiceTestDB(t)
	promotionRepo := repository.NewPromotionRepository(db)
	logRepo := repository.NewPromotionLogRepository(db)
	promotionService := NewPromotionService(promotionRepo, logRepo, repository.NewUserRepository(db), nil)
	return NewPromotionAdminService(promotionRepo, logRepo, promotionService)
}

func validPercentageInput() PromotionInput {
	return PromotionInput{
		Code:       "save10",
		Name:       "Save 10%",
		Type:       constants.PromotionTypePercentage,
		Conditions: `{"discount_type":"percentage","discount_value":10,"apply_to_type":"all"}`,
	}
}

func TestPromotionCreateStartsAsDraft(t *testing.T) {
	svc := newPromotionAdminFixture(t)

	record, err := svc.Create(validPercentageInput())
	if err != nil {
		t.Fatalf("create promotion failed: %v", err)
	}
	if record.Status != constants.PromotionStatusDraft {
		t.Fatalf("expected draft status, got %s", record.Status)
	}
	if record.Code != "SAVE10" {
		t.Fatalf("expected normalized code SAVE10, got %s", record.Code)
	}
}

func TestPromotionCreateDuplicateCode(t *testing.T) {
	svc := newPromotionAdminFixture(t)

	if _, err := svc.Create(validPercentageInput()); err != nil {
		t.Fatalf("create promotion failed: %v", err)
	}
	if _, err := svc.Create(validPercentageInput()); !errors.Is(err, ErrPromotionCodeExists) {
		t.Fatalf("expected ErrPromotionCodeExists, got %v", err)
	}
}

func TestPromotionCreateRejectsBadConditions(t *testing.T) {
	svc := newPromotionAdminFixture(t)

	cases := []PromotionInput{
		// 未知促销类型
		{Code: "X1", Name: "X", Type: "mystery", Conditions: `{}`},
		// 百分比超过 100
		{Code: "X2", Name: "X", Type: constants.PromotionTypePercentage,
			Conditions: `{"discount_type":"percentage","discount_value":150}`},
		// 条件 JSON 带未知字段
		{Code: "X3", Name: "X", Type: constants.PromotionTypePercentage,
			Conditions: `{"discount_type":"percentage","discount_value":10,"bogus":true}`},
		// 阶梯档位顺位非法
		{Code: "X4", Name: "X", Type: constants.PromotionTypeStepDiscount,
			Conditions: `{"discount_tiers":[{"position":1,"percentage":20}]}`},
		// 会员等级非法
		{Code: "X5", Name: "X", Type: constants.PromotionTypePercentage,
			Conditions:      `{"discount_type":"percentage","discount_value":10}`,
			MembershipTiers: []string{"diamond"}},
	}
	for _, input := range cases {
		if _, err := svc.Create(input); !errors.Is(err, ErrPromotionInvalid) {
			t.Fatalf("code %s: expected ErrPromotionInvalid, got %v", input.Code, err)
		}
	}
}

func TestPromotionStatusTransitions(t *testing.T) {
	svc := newPromotionAdminFixture(t)

	record, err := svc.Create(validPercentageInput())
	if err != nil {
		t.Fatalf("create promotion failed: %v", err)
	}

	// draft -> scheduled -> active -> paused -> active -> expired
	steps := []string{
		constants.PromotionStatusScheduled,
		constants.PromotionStatusActive,
		constants.PromotionStatusPaused,
		constants.PromotionStatusActive,
		constants.PromotionStatusExpired,
	}
	for _, next := range steps {
		updated, err := svc.ChangeStatus(record.ID, next)
		if err != nil {
			t.Fatalf("transition to %s failed: %v", next, err)
		}
		if updated.Status != next {
			t.Fatalf("expected status %s, got %s", next, updated.Status)
		}
	}

	// expired 为终态
	if _, err := svc.ChangeStatus(record.ID, constants.PromotionStatusActive); !errors.Is(err, ErrPromotionStatusInvalid) {
		t.Fatalf("expected ErrPromotionStatusInvalid from expired, got %v", err)
	}
}

func TestPromotionStatusInvalidJump(t *testing.T) {
	svc := newPromotionAdminFixture(t)

	record, err := svc.Create(validPercentageInput())
	if err != nil {
		t.Fatalf("create promotion failed: %v", err)
	}
	// draft 不允许直接 expired
	if _, err := svc.ChangeStatus(record.ID, constants.PromotionStatusExpired); !errors.Is(err, ErrPromotionStatusInvalid) {
		t.Fatalf("expected ErrPromotionStatusInvalid, got %v", err)
	}
}

func TestPromotionUpdate(t *testing.T) {
	svc := newPromotionAdminFixture(t)

	record, err := svc.Create(validPercentageInput())
	if err != nil {
		t.Fatalf("create promotion failed: %v", err)
	}

	input := validPercentageInput()
	input.Name = "Save Ten Percent"
	updated, err := svc.Update(record.ID, input)
	if err != nil {
		t.Fatalf("update promotion failed: %v", err)
	}
	if updated.Name != "Save Ten Percent" {
		t.Fatalf("expected updated name, got %s", updated.Name)
	}
}

func TestPromotionDeleteNotFound(t *testing.T) {
	svc := newPromotionAdminFixture(t)
	if err := svc.Delete(9999); !errors.Is(err, ErrPromotionNotFound) {
		t.Fatalf("expected ErrPromotionNotFound, got %v", err)
	}
}
