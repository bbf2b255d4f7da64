package admin

import (
	"errors"

	"github.com/grabgarden/admin-api/internal/authz"
	handlershared "github.com/grabgarden/admin-api/internal/http/handlers/shared"
	"github.com/grabgarden/admin-api/internal/http/response"

	"github.com/gin-gonic/gin"
)

// AuthzRoleItem 角色及其策略
type AuthzRoleItem struct {
	Role     string         `json:"role"`
	Policies []authz.Policy `json:"policies"`
}

// GetAuthzMe 当前管理员的角色
func (h *Handler) GetAuthzMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	isSuper := c.GetBool("admin_is_super")
	roles := []string{}
	if h.AuthzService != nil {
		bound, err := h.AuthzService.GetAdminRoles(adminID)
		if err != nil {
			respondError(c, response.CodeInternal, "error.internal", err)
			return
		}
		roles = bound
	}
	response.Success(c, gin.H{
		"admin_id": adminID,
		"is_super": isSuper,
		"roles":    roles,
	})
}

// ListAuthzRoles 角色列表
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	if h.AuthzService == nil {
		respondError(c, response.CodeInternal, "error.internal", authz.ErrUnavailable)
		return
	}
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	items := make([]AuthzRoleItem, 0, len(roles))
	for _, role := range roles {
		policies, err := h.AuthzService.GetRolePolicies(role)
		if err != nil {
			respondError(c, response.CodeInternal, "error.internal", err)
			return
		}
		items = append(items, AuthzRoleItem{Role: role, Policies: policies})
	}
	response.Success(c, items)
}

// SetAdminRolesRequest 设置管理员角色请求
type SetAdminRolesRequest struct {
	Roles []string `json:"roles"`
}

// SetAdminRoles 覆盖设置管理员角色（仅超级管理员）
func (h *Handler) SetAdminRoles(c *gin.Context) {
	if h.AuthzService == nil {
		respondError(c, response.CodeInternal, "error.internal", authz.ErrUnavailable)
		return
	}
	targetID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req SetAdminRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	target, err := h.AdminRepo.GetByID(targetID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if target == nil {
		respondError(c, response.CodeNotFound, "error.not_found", nil)
		return
	}

	if err := h.AuthzService.SetAdminRoles(targetID, req.Roles); err != nil {
		if errors.Is(err, authz.ErrRoleInvalid) {
			respondError(c, response.CodeBadRequest, "error.role_invalid", err)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(targetID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	operatorID, _ := c.Get("admin_id")
	handlershared.RequestLog(c).Infow("admin_roles_updated", "operator_id", operatorID, "admin_id", targetID, "roles", roles)
	response.Success(c, gin.H{"admin_id": targetID, "roles": roles})
}
