package provider

import (
	"github.com/grabgarden/admin-api/internal/authz"
	"github.com/grabgarden/admin-api/internal/cache"
	"github.com/grabgarden/admin-api/internal/config"
	"github.com/grabgarden/admin-api/internal/logger"
	"github.com/grabgarden/admin-api/internal/models"
	"github.com/grabgarden/admin-api/internal/queue"
	"github.com/grabgarden/admin-api/internal/repository"
	"github.com/grabgarden/admin-api/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo          repository.AdminRepository
	ProductRepo        repository.ProductRepository
	PromoCodeRepo      repository.PromoCodeRepository
	PromoCodeUsageRepo repository.PromoCodeUsageRepository

	// Services
	AuthzService          *authz.Service
	AuthService           *service.AuthService
	CaptchaService        *service.CaptchaService
	ProductService        *service.ProductService
	PromoCodeAdminService *service.PromoCodeAdminService
	CheckoutService       *service.CheckoutService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}
	c.initRepositories()
	c.initServices()
	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.PromoCodeRepo = repository.NewPromoCodeRepository(db)
	c.PromoCodeUsageRepo = repository.NewPromoCodeUsageRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.PromoCodeAdminService = service.NewPromoCodeAdminService(c.Config.Promo, c.PromoCodeRepo, c.PromoCodeUsageRepo, c.ProductRepo, c.QueueClient)
	c.CheckoutService = service.NewCheckoutService(c.Config.Promo, c.PromoCodeRepo, c.PromoCodeUsageRepo, c.QueueClient)
}
