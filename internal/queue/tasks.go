package queue

import (
	"encoding/json"

	"github.com/nhorsopheak/promotion-management/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskPromotionUsageLog 促销使用记录任务
	TaskPromotionUsageLog = constants.TaskPromotionUsageLog
)

// PromotionUsageLogPayload 促销使用记录任务载荷
type PromotionUsageLogPayload struct {
	PromotionID    uint     `json:"promotion_id"`
	OrderID        uint     `json:"order_id"`
	UserID         uint     `json:"user_id,omitempty"`
	DiscountAmount string   `json:"discount_amount"`
	AffectedItems  []uint   `json:"affected_items,omitempty"`
	FreeItems      []string `json:"free_items,omitempty"`
	Notes          string   `json:"notes,omitempty"`
}

// NewPromotionUsageLogTask 创建促销使用记录任务
func NewPromotionUsageLogTask(payload PromotionUsageLogPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPromotionUsageLog, body), nil
}
