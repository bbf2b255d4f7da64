package router

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/grabgarden/admin-api/internal/authz"
	"github.com/grabgarden/admin-api/internal/cache"
	"github.com/grabgarden/admin-api/internal/config"
	"github.com/grabgarden/admin-api/internal/constants"
	adminhandlers "github.com/grabgarden/admin-api/internal/http/handlers/admin"
	publichandlers "github.com/grabgarden/admin-api/internal/http/handlers/public"
	"github.com/grabgarden/admin-api/internal/http/response"
	"github.com/grabgarden/admin-api/internal/logger"
	"github.com/grabgarden/admin-api/internal/models"
	"github.com/grabgarden/admin-api/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	adminHandler := adminhandlers.New(c)
	checkoutHandler := publichandlers.New(c)
	adminLoginRule := RateLimitRule{
		Prefix:        constants.CacheKeyLoginLimit,
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 订单服务调用的结算接口
		checkout := apiV1.Group("/checkout")
		checkout.Use(CheckoutJWTAuthMiddleware(c.AuthService))
		{
			checkout.POST("/promo/preview", checkoutHandler.PreviewPromo)
			checkout.POST("/promo/redeem", checkoutHandler.RedeemPromo)
			checkout.POST("/promo/release", checkoutHandler.ReleasePromo)
		}

		admin := apiV1.Group("/admin")
		{
			// 无需鉴权
			admin.POST("/login", RateLimitMiddleware(cache.Client(), adminLoginRule, KeyByIPAndJSONField("username")), adminHandler.AdminLogin)
			admin.GET("/captcha/image", adminHandler.GetImageCaptcha)

			// 仅需登录态
			session := admin.Group("")
			session.Use(JWTAuthMiddleware(c.AuthService))
			{
				session.POST("/logout", adminHandler.AdminLogout)
			}

			authorized := admin.Group("")
			authorized.Use(JWTAuthMiddleware(c.AuthService), AdminRBACMiddleware(c.AuthzService))
			{
				// 优惠码管理
				authorized.GET("/promo-codes", adminHandler.ListPromoCodes)
				authorized.POST("/promo-codes", adminHandler.CreatePromoCode)
				authorized.GET("/promo-codes/:id", adminHandler.GetPromoCode)
				authorized.PUT("/promo-codes/:id", adminHandler.UpdatePromoCode)
				authorized.DELETE("/promo-codes/:id", adminHandler.DeletePromoCode)
				authorized.PATCH("/promo-codes/:id/status", adminHandler.SetPromoCodeStatus)
				authorized.POST("/promo-codes/:id/simulate", adminHandler.SimulatePromoCode)
				authorized.GET("/promo-codes/:id/usages", adminHandler.ListPromoCodeUsages)

				// 适用商品选择
				authorized.GET("/products", adminHandler.ListProducts)

				// 权限管理
				authorized.GET("/authz/me", adminHandler.GetAuthzMe)
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
				authorized.PUT("/authz/admins/:id/roles", SuperAdminMiddleware(), adminHandler.SetAdminRoles)
			}
		}
	}

	// 健康检查
	r.GET("/health", healthHandler)

	return r
}

func healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok", "redis": "disabled"}
	healthy := true
	if models.DB == nil {
		checks["database"] = "unavailable"
		healthy = false
	} else if sqlDB, err := models.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "unavailable"
		healthy = false
	}
	if cache.Enabled() {
		checks["redis"] = "ok"
		if err := cache.Ping(ctx); err != nil {
			checks["redis"] = "unavailable"
			healthy = false
		}
	}

	status := "ok"
	if !healthy {
		status = "degraded"
		logger.Warnw("health_check_degraded", "checks", checks)
	}
	c.JSON(200, gin.H{"status": status, "checks": checks})
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// adminCatalogExcludedPaths 不经过 RBAC 的后台路由
var adminCatalogExcludedPaths = map[string]struct{}{
	"/api/v1/admin/login":         {},
	"/api/v1/admin/logout":        {},
	"/api/v1/admin/captcha/image": {},
}

// buildAdminPermissionCatalog 从已注册路由生成可授权的后台权限清单
func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if _, skip := adminCatalogExcludedPaths[item.Path]; skip {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})
	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 || segments[0] != "admin" {
		return segments[0]
	}
	return segments[1]
}
