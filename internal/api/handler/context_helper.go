package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/redmac135/banshee-training/internal/service"
	"github.com/redmac135/banshee-training/pkg/jwt"
	"github.com/redmac135/banshee-training/pkg/response"
)

// 由 JWTAuth 中间件写入的上下文键
const (
	CtxUserID   = "user_id"
	CtxSeniorID = "senior_id"
	CtxRole     = "role"
	CtxClaims   = "claims"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, CtxUserID)
}

// MustGetCaller 从上下文构造当前登录者
func MustGetCaller(c *gin.Context) (service.Caller, bool) {
	userID, ok := mustGetString(c, CtxUserID)
	if !ok {
		return service.Caller{}, false
	}
	seniorID, ok := mustGetString(c, CtxSeniorID)
	if !ok {
		return service.Caller{}, false
	}
	role, ok := mustGetString(c, CtxRole)
	if !ok {
		return service.Caller{}, false
	}
	return service.Caller{UserID: userID, SeniorID: seniorID, Role: role}, true
}

// GetClaims 读取当前 Access Token 的声明（登出时加入黑名单）
func GetClaims(c *gin.Context) *jwt.Claims {
	v, exists := c.Get(CtxClaims)
	if !exists {
		return nil
	}
	claims, _ := v.(*jwt.Claims)
	return claims
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// paramGroupID 解析路径中的课程编号（teach_id）
func paramGroupID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("teach_id"))
	if err != nil || id <= 0 {
		response.BadRequest(c, 10001, "课程编号无效")
		return 0, false
	}
	return id, true
}
