package queue

import (
	"encoding/json"
	"testing"

	"github.com/grabgarden/admin-api/internal/config"
)

func TestDisabledClientEnqueueIsNoop(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.EnqueuePromoUsageRecorded(PromoUsageRecordedPayload{PromoCodeID: 1}); err != nil {
		t.Fatalf("disabled enqueue should be noop: %v", err)
	}
	if err := client.EnqueuePromoCodeChanged(PromoCodeChangedPayload{PromoCodeID: 1}); err != nil {
		t.Fatalf("disabled enqueue should be noop: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close disabled client failed: %v", err)
	}

	var nilClient *Client
	if nilClient.Enabled() {
		t.Fatalf("nil client should report disabled")
	}
}

func TestPromoUsageRecordedTaskPayload(t *testing.T) {
	task, err := NewPromoUsageRecordedTask(PromoUsageRecordedPayload{
		PromoCodeID: 9,
		Code:        "SPRING",
		UserID:      3,
		OrderRef:    "ORD-77",
		Action:      "redeem",
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if task.Type() != TaskPromoUsageRecorded {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	var decoded PromoUsageRecordedPayload
	if err := json.Unmarshal(task.Payload(), &decoded); err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	if decoded.OrderRef != "ORD-77" || decoded.PromoCodeID != 9 {
		t.Fatalf("unexpected payload: %+v", decoded)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(nil)
	if opt.Addr != "127.0.0.1:6379" {
		t.Fatalf("unexpected default addr: %s", opt.Addr)
	}
	if cfg.Concurrency != 5 || cfg.Queues[CriticalQueue] != 10 {
		t.Fatalf("unexpected default server config: %+v", cfg)
	}

	opt, cfg = BuildServerConfig(&config.QueueConfig{Host: "redis", Port: 6380, DB: 2, Concurrency: 3, Queues: map[string]int{"default": 1}})
	if opt.Addr != "redis:6380" || opt.DB != 2 {
		t.Fatalf("unexpected redis opt: %+v", opt)
	}
	if cfg.Concurrency != 3 || len(cfg.Queues) != 1 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
}
