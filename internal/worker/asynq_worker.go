package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/grabgarden/admin-api/internal/cache"
	"github.com/grabgarden/admin-api/internal/logger"
	"github.com/grabgarden/admin-api/internal/provider"
	"github.com/grabgarden/admin-api/internal/queue"

	"github.com/hibiken/asynq"
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
	mux.HandleFunc(queue.TaskPromoUsageRecorded, c.handlePromoUsageRecorded)
	mux.HandleFunc(queue.TaskPromoCodeChanged, c.handlePromoCodeChanged)
}

// handlePromoUsageRecorded 核销/释放后失效快照，使预览拿到最新 used_count
func (c *Consumer) handlePromoUsageRecorded(ctx context.Context, task *asynq.Task) error {
	if task == nil {
		return nil
	}
	var payload queue.PromoUsageRecordedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_promo_usage_unmarshal_failed", "error", err)
		return err
	}
	code := strings.TrimSpace(payload.Code)
	if payload.PromoCodeID == 0 || code == "" {
		logger.Debugw("worker_promo_usage_skip_invalid_payload", "promo_code_id", payload.PromoCodeID, "code", code)
		return nil
	}
	if err := cache.DelPromoCode(ctx, code); err != nil {
		logger.Warnw("worker_promo_usage_cache_invalidate_failed", "code", code, "error", err)
		return err
	}
	logger.Infow("worker_promo_usage_recorded",
		"promo_code_id", payload.PromoCodeID,
		"code", code,
		"user_id", payload.UserID,
		"order_ref", payload.OrderRef,
		"action", payload.Action,
		"discount_amount", payload.DiscountAmount,
	)
	return nil
}

// handlePromoCodeChanged 后台修改后失效新旧两个码的快照
func (c *Consumer) handlePromoCodeChanged(ctx context.Context, task *asynq.Task) error {
	if task == nil {
		return nil
	}
	var payload queue.PromoCodeChangedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_promo_code_changed_unmarshal_failed", "error", err)
		return err
	}
	if payload.PromoCodeID == 0 {
		logger.Debugw("worker_promo_code_changed_skip_invalid_payload", "code", payload.Code)
		return nil
	}
	if err := cache.DelPromoCode(ctx, payload.Code, payload.PrevCode); err != nil {
		logger.Warnw("worker_promo_code_changed_cache_invalidate_failed", "promo_code_id", payload.PromoCodeID, "error", err)
		return err
	}
	logger.Infow("worker_promo_code_changed",
		"promo_code_id", payload.PromoCodeID,
		"code", payload.Code,
		"prev_code", payload.PrevCode,
		"change", payload.Change,
		"admin_id", payload.AdminID,
	)
	return nil
}
