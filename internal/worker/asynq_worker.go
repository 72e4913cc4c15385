package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/nhorsopheak/promotion-management/internal/constants"
	"github.com/nhorsopheak/promotion-management/internal/logger"
	"github.com/nhorsopheak/promotion-management/internal/models"
	"github.com/nhorsopheak/promotion-management/internal/provider"
	"github.com/nhorsopheak/promotion-management/internal/queue"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskPromotionUsageLog, c.handlePromotionUsageLog)
}

func (c *Consumer) handlePromotionUsageLog(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_promotion_usage_log_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PromotionUsageLogPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_promotion_usage_log_unmarshal_failed", "error", err)
		return err
	}
	if payload.PromotionID == 0 || payload.OrderID == 0 {
		logger.Debugw("worker_promotion_usage_log_skip_invalid_payload",
			"promotion_id", payload.PromotionID,
			"order_id", payload.OrderID,
		)
		return nil
	}

	promotion, err := c.PromotionRepo.GetByID(payload.PromotionID)
	if err != nil {
		logger.Warnw("worker_promotion_usage_log_fetch_failed", "promotion_id", payload.PromotionID, "error", err)
		return err
	}
	if promotion == nil {
		logger.Debugw("worker_promotion_usage_log_skip_promotion_not_found", "promotion_id", payload.PromotionID)
		return nil
	}

	amount := decimal.Zero
	if trimmed := strings.TrimSpace(payload.DiscountAmount); trimmed != "" {
		parsed, parseErr := decimal.NewFromString(trimmed)
		if parseErr != nil {
			logger.Warnw("worker_promotion_usage_log_bad_amount",
				"promotion_id", payload.PromotionID,
				"order_id", payload.OrderID,
				"amount", payload.DiscountAmount,
				"error", parseErr,
			)
		} else {
			amount = parsed
		}
	}

	affected := make([]interface{}, 0, len(payload.AffectedItems))
	for _, productID := range payload.AffectedItems {
		affected = append(affected, productID)
	}
	metadata := models.JSON{}
	if len(payload.FreeItems) > 0 {
		metadata["free_items"] = payload.FreeItems
	}

	orderID := payload.OrderID
	log := &models.PromotionLog{
		PromotionID:    payload.PromotionID,
		OrderID:        &orderID,
		Action:         constants.PromotionLogActionApplied,
		DiscountAmount: models.NewMoneyFromDecimal(amount),
		AffectedItems:  models.JSON{"product_ids": affected},
		Metadata:       metadata,
		Notes:          payload.Notes,
	}
	if payload.UserID != 0 {
		userID := payload.UserID
		log.UserID = &userID
	}

	if err := c.PromotionLogRepo.Create(log); err != nil {
		logger.Warnw("worker_promotion_usage_log_create_failed",
			"promotion_id", payload.PromotionID,
			"order_id", payload.OrderID,
			"error", err,
		)
		return err
	}
	if err := c.PromotionRepo.IncrementUsage(payload.PromotionID); err != nil {
		logger.Warnw("worker_promotion_usage_increment_failed", "promotion_id", payload.PromotionID, "error", err)
		return err
	}
	return nil
}
