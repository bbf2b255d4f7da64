package router

import (
	"strconv"
	"strings"
	"time"

	"github.com/grabgarden/admin-api/internal/authz"
	"github.com/grabgarden/admin-api/internal/config"
	"github.com/grabgarden/admin-api/internal/http/response"
	"github.com/grabgarden/admin-api/internal/i18n"
	"github.com/grabgarden/admin-api/internal/logger"
	"github.com/grabgarden/admin-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDKey           = "request_id"
	requestIDHeader        = "X-Request-ID"
	adminIDContextKey      = "admin_id"
	adminIsSuperContextKey = "admin_is_super"
	usernameContextKey     = "username"
	checkoutUserContextKey = "checkout_user_id"
)

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{"Content-Type", "Authorization", "Accept-Language", requestIDHeader}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

// resolveAllowedOrigin 携带凭证时不能回写 *，改为回写请求来源
func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.L()
	}
	sugar := log.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := sugar.With(
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			entry.Errorw("request", "errors", c.Errors.String())
			return
		}
		entry.Infow("request")
	}
}

func abortWithKey(c *gin.Context, code int, key string) {
	response.Error(c, code, i18n.T(i18n.ResolveLocale(c), key))
	c.Abort()
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(c.GetHeader("Authorization")), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// JWTAuthMiddleware 后台 JWT 鉴权：校验签名、版本号与失效时间
func JWTAuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authService == nil {
			abortWithKey(c, response.CodeUnauthorized, "error.token_invalid")
			return
		}
		token, ok := bearerToken(c)
		if !ok {
			abortWithKey(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}
		claims, state, err := authService.ValidateAdminToken(c.Request.Context(), token)
		if err != nil {
			logger.Debugw("admin_token_rejected", "request_id", c.GetString(requestIDKey), "error", err)
			abortWithKey(c, response.CodeUnauthorized, "error.token_invalid")
			return
		}
		c.Set(adminIDContextKey, claims.AdminID)
		c.Set(usernameContextKey, claims.Username)
		c.Set(adminIsSuperContextKey, state.IsSuper)
		c.Next()
	}
}

// AdminRBACMiddleware 后台 RBAC 鉴权，超级管理员直接放行
func AdminRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authzService == nil {
			logger.Errorw("admin_rbac_service_unavailable")
			abortWithKey(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}
		if c.GetBool(adminIsSuperContextKey) {
			c.Next()
			return
		}

		adminID := c.GetUint(adminIDContextKey)
		if adminID == 0 {
			abortWithKey(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}

		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}
		allowed, err := authzService.EnforceAdmin(adminID, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("admin_rbac_enforce_failed",
				"admin_id", adminID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
			abortWithKey(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}
		if !allowed {
			logger.Warnw("admin_rbac_permission_denied",
				"admin_id", adminID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"resource", authz.NormalizeObject(resource),
			)
			abortWithKey(c, response.CodeForbidden, "error.forbidden")
			return
		}
		c.Next()
	}
}

// SuperAdminMiddleware 仅超级管理员可访问
func SuperAdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(adminIsSuperContextKey) {
			abortWithKey(c, response.CodeForbidden, "error.super_admin_required")
			return
		}
		c.Next()
	}
}

// CheckoutJWTAuthMiddleware 校验订单服务签发的结算 Token
func CheckoutJWTAuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authService == nil {
			abortWithKey(c, response.CodeUnauthorized, "error.checkout_token_invalid")
			return
		}
		token, ok := bearerToken(c)
		if !ok {
			abortWithKey(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}
		claims, err := authService.ParseCheckoutJWT(token)
		if err != nil {
			logger.Debugw("checkout_token_rejected", "request_id", c.GetString(requestIDKey), "error", err)
			abortWithKey(c, response.CodeUnauthorized, "error.checkout_token_invalid")
			return
		}
		c.Set(checkoutUserContextKey, claims.UserID)
		c.Next()
	}
}
