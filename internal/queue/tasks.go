package queue

import (
	"encoding/json"

	"github.com/grabgarden/admin-api/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskPromoUsageRecorded 优惠码核销/释放事件
	TaskPromoUsageRecorded = constants.TaskPromoUsageRecorded
	// TaskPromoCodeChanged 优惠码配置变更事件
	TaskPromoCodeChanged = constants.TaskPromoCodeChanged
)

// PromoUsageRecordedPayload 核销事件载荷
type PromoUsageRecordedPayload struct {
	PromoCodeID    uint   `json:"promo_code_id"`
	Code           string `json:"code"`
	UserID         uint   `json:"user_id"`
	OrderRef       string `json:"order_ref"`
	Action         string `json:"action"` // redeem / release
	DiscountAmount string `json:"discount_amount,omitempty"`
}

// PromoCodeChangedPayload 配置变更事件载荷
type PromoCodeChangedPayload struct {
	PromoCodeID uint   `json:"promo_code_id"`
	Code        string `json:"code"`
	PrevCode    string `json:"prev_code,omitempty"` // 修改了优惠码本身时携带旧码
	Change      string `json:"change"`
	AdminID     uint   `json:"admin_id"`
}

// NewPromoUsageRecordedTask 创建核销事件任务
func NewPromoUsageRecordedTask(payload PromoUsageRecordedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPromoUsageRecorded, body), nil
}

// NewPromoCodeChangedTask 创建配置变更任务
func NewPromoCodeChangedTask(payload PromoCodeChangedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPromoCodeChanged, body), nil
}
