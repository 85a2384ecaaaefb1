package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Chnix17/janitorial-sub000/internal/api/middleware"
	"github.com/Chnix17/janitorial-sub000/internal/service"
	"github.com/Chnix17/janitorial-sub000/pkg/response"
)

// mustGetString 从 Gin 上下文中安全提取 JWT 中间件注入的字符串。
// 缺失时写入 401 响应，调用方应在 ok=false 时直接 return。
func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, response.CodeUnauthorized, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, response.CodeUnauthorized, "未认证")
		return "", false
	}
	return s, true
}

// MustGetUserID 提取 user_id
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, middleware.CtxUserID)
}

// MustGetRole 提取 role
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, middleware.CtxRole)
}

// MustGetViewer 当前登录用户（user_id + role）
func MustGetViewer(c *gin.Context) (service.Viewer, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return service.Viewer{}, false
	}
	role, ok := MustGetRole(c)
	if !ok {
		return service.Viewer{}, false
	}
	return service.Viewer{UserID: userID, Role: role}, true
}
