package main

import (
	"errors"
	"flag"
	"os"
	"strings"
	"syscall"

	"github.com/grabgarden/admin-api/internal/app"
	"github.com/grabgarden/admin-api/internal/config"
	"github.com/grabgarden/admin-api/internal/logger"
	"github.com/grabgarden/admin-api/internal/models"

	"github.com/gin-gonic/gin"
)

func main() {
	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	for name, secret := range map[string]string{"jwt.secret": cfg.JWT.SecretKey, "checkout_jwt.secret": cfg.CheckoutJWT.SecretKey} {
		if !isWeakSecret(secret) {
			continue
		}
		if cfg.Server.IsRelease() {
			stdLog.Fatalf("%s 过弱或仍为默认值，请在生产环境中配置强随机密钥", name)
		}
		logger.Warnw("weak_secret", "key", name)
	}

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.LogLevel, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}

	if _, err := models.EnsureDefaultAdmin(models.DB, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword); err != nil {
		if errors.Is(err, models.ErrDefaultAdminPasswordRequired) {
			logger.Warnw("default_admin_skipped", "reason", "bootstrap.admin_password is empty")
		} else {
			stdLog.Fatalf("初始化默认管理员失败: %v", err)
		}
	}

	if cfg.Server.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	return strings.Contains(normalized, "change-me") ||
		strings.Contains(normalized, "change-in-production") ||
		strings.Contains(normalized, "your-secret-key")
}
