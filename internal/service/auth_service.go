package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/grabgarden/admin-api/internal/cache"
	"github.com/grabgarden/admin-api/internal/config"
	"github.com/grabgarden/admin-api/internal/logger"
	"github.com/grabgarden/admin-api/internal/models"
	"github.com/grabgarden/admin-api/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 后台认证服务
type AuthService struct {
	cfg       *config.Config
	adminRepo repository.AdminRepository
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config, adminRepo repository.AdminRepository) *AuthService {
	return &AuthService{
		cfg:       cfg,
		adminRepo: adminRepo,
	}
}

// HashPassword 使用 bcrypt 加密密码
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 验证密码
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// JWTClaims 后台 JWT 声明
type JWTClaims struct {
	AdminID      uint   `json:"admin_id"`
	Username     string `json:"username"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// GenerateJWT 生成 JWT Token
func (s *AuthService) GenerateJWT(admin *models.Admin) (string, time.Time, error) {
	now := time.Now()
	hours := s.cfg.JWT.ExpireHours
	if hours <= 0 {
		hours = 12
	}
	expiresAt := now.Add(time.Duration(hours) * time.Hour)

	claims := JWTClaims{
		AdminID:      admin.ID,
		Username:     admin.Username,
		TokenVersion: admin.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseJWT 解析 JWT Token
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid && claims.AdminID > 0 {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// Login 管理员登录
func (s *AuthService) Login(username, password, clientIP string) (*models.Admin, string, time.Time, error) {
	admin, err := s.adminRepo.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if admin == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err := s.VerifyPassword(admin.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateJWT(admin)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	if err := s.adminRepo.TouchLogin(admin.ID, now, clientIP); err != nil {
		logger.Warnw("admin_touch_login_failed", "admin_id", admin.ID, "error", err)
	}
	admin.LastLoginAt = &now
	admin.LastLoginIP = clientIP
	if err := cache.SetAdminAuthState(context.Background(), cache.BuildAdminAuthState(admin)); err != nil {
		logger.Warnw("admin_auth_state_cache_failed", "admin_id", admin.ID, "error", err)
	}
	return admin, token, expiresAt, nil
}

// ResolveAdminAuthState 读取管理员鉴权状态：优先缓存，未命中回源
func (s *AuthService) ResolveAdminAuthState(ctx context.Context, adminID uint) (*cache.AdminAuthState, error) {
	if state, hit, err := cache.GetAdminAuthState(ctx, adminID); err == nil && hit && state != nil {
		return state, nil
	}
	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrInvalidToken
	}
	state := cache.BuildAdminAuthState(admin)
	if err := cache.SetAdminAuthState(ctx, state); err != nil {
		logger.Debugw("admin_auth_state_cache_failed", "admin_id", adminID, "error", err)
	}
	return state, nil
}

// ValidateAdminToken 校验 Token 并检查版本号与失效时间
func (s *AuthService) ValidateAdminToken(ctx context.Context, tokenString string) (*JWTClaims, *cache.AdminAuthState, error) {
	claims, err := s.ParseJWT(tokenString)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil, nil, err
		}
		return nil, nil, errors.Join(ErrInvalidToken, err)
	}
	state, err := s.ResolveAdminAuthState(ctx, claims.AdminID)
	if err != nil {
		return nil, nil, err
	}
	var issuedAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}
	if !state.Accepts(claims.TokenVersion, issuedAt) {
		return nil, nil, ErrInvalidToken
	}
	return claims, state, nil
}

// Logout 吊销管理员已签发的全部 Token
func (s *AuthService) Logout(ctx context.Context, adminID uint) error {
	if adminID == 0 {
		return ErrInvalidToken
	}
	if err := s.adminRepo.RevokeTokens(adminID, time.Now()); err != nil {
		return err
	}
	if err := cache.DelAdminAuthState(ctx, adminID); err != nil {
		logger.Warnw("admin_auth_state_evict_failed", "admin_id", adminID, "error", err)
	}
	logger.Infow("admin_logout", "admin_id", adminID)
	return nil
}

// CheckoutClaims 订单服务签发的结算 Token 声明
type CheckoutClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// ParseCheckoutJWT 校验订单服务签发的 Token；user_id 必填
func (s *AuthService) ParseCheckoutJWT(tokenString string) (*CheckoutClaims, error) {
	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer := strings.TrimSpace(s.cfg.CheckoutJWT.Issuer); issuer != "" {
		options = append(options, jwt.WithIssuer(issuer))
	}
	token, err := jwt.NewParser(options...).ParseWithClaims(tokenString, &CheckoutClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.CheckoutJWT.SecretKey), nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*CheckoutClaims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
