package worker

import (
	"context"
	"errors"
	"time"

	"github.com/grabgarden/admin-api/internal/config"
	"github.com/grabgarden/admin-api/internal/logger"
	"github.com/grabgarden/admin-api/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	usageAuditInterval = 10 * time.Minute
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
	shutdown func()
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
		shutdown: server.Shutdown,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.Container != nil && s.consumer.CheckoutService != nil {
		go s.runUsageAuditLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务，ctx 到期时不再等待进行中的任务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.shutdown == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.shutdown()
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		logger.Warnw("worker_shutdown_timeout", "error", ctx.Err())
		return ctx.Err()
	}
}

// runUsageAuditLoop 定期巡检 used_count 与核销记录是否一致
func (s *Service) runUsageAuditLoop(ctx context.Context) {
	runOnce := func() {
		drifts, err := s.consumer.CheckoutService.AuditUsageDrift(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Warnw("worker_usage_audit_failed", "error", err)
			}
			return
		}
		logger.Debugw("worker_usage_audit_done", "drift_count", len(drifts))
	}
	runOnce()

	ticker := time.NewTicker(usageAuditInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
