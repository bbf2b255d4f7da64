package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/grabgarden/admin-api/internal/constants"
	"github.com/grabgarden/admin-api/internal/models"
)

// adminAuthStateTTL 快照过期后回源数据库，吊销以数据库为准
const adminAuthStateTTL = 10 * time.Minute

// AdminAuthState 管理员鉴权快照
type AdminAuthState struct {
	AdminID            uint   `json:"admin_id"`
	Username           string `json:"username"`
	TokenVersion       uint64 `json:"token_version"`
	TokenInvalidBefore int64  `json:"token_invalid_before"` // Unix 秒，0 表示未吊销
	IsSuper            bool   `json:"is_super"`
	CachedAt           int64  `json:"cached_at"`
}

// Accepts 判断给定版本号与签发时间的 Token 是否仍有效
func (s *AdminAuthState) Accepts(tokenVersion uint64, issuedAt time.Time) bool {
	if s == nil || s.TokenVersion != tokenVersion {
		return false
	}
	if s.TokenInvalidBefore > 0 && issuedAt.Unix() < s.TokenInvalidBefore {
		return false
	}
	return true
}

// BuildAdminAuthState 从管理员记录构建鉴权快照
func BuildAdminAuthState(admin *models.Admin) *AdminAuthState {
	if admin == nil {
		return nil
	}
	state := &AdminAuthState{
		AdminID:      admin.ID,
		Username:     admin.Username,
		TokenVersion: admin.TokenVersion,
		IsSuper:      admin.IsSuper,
		CachedAt:     time.Now().Unix(),
	}
	if admin.TokenInvalidBefore != nil {
		state.TokenInvalidBefore = admin.TokenInvalidBefore.Unix()
	}
	return state
}

func adminAuthStateKey(adminID uint) string {
	return constants.CacheKeyAdminAuth + strconv.FormatUint(uint64(adminID), 10)
}

// GetAdminAuthState 读取鉴权快照，未命中返回 hit=false
func GetAdminAuthState(ctx context.Context, adminID uint) (*AdminAuthState, bool, error) {
	if adminID == 0 {
		return nil, false, nil
	}
	state := &AdminAuthState{}
	hit, err := GetJSON(ctx, adminAuthStateKey(adminID), state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return state, true, nil
}

// SetAdminAuthState 写入鉴权快照
func SetAdminAuthState(ctx context.Context, state *AdminAuthState) error {
	if state == nil || state.AdminID == 0 {
		return nil
	}
	return SetJSON(ctx, adminAuthStateKey(state.AdminID), state, adminAuthStateTTL)
}

// DelAdminAuthState 吊销 Token 后清除快照
func DelAdminAuthState(ctx context.Context, adminID uint) error {
	if adminID == 0 {
		return nil
	}
	return Del(ctx, adminAuthStateKey(adminID))
}
