package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/redmac135/banshee-training/internal/dto"
	"github.com/redmac135/banshee-training/internal/service"
	"github.com/redmac135/banshee-training/pkg/jwt"
	"github.com/redmac135/banshee-training/pkg/response"
)

const refreshCookieName = "refresh_token"

// CookieOptions Refresh Token Cookie 参数
type CookieOptions struct {
	Path   string
	Domain string
	Secure bool
	MaxAge int // 秒
}

func defaultCookieOptions() *CookieOptions {
	return &CookieOptions{Path: "/api/v1/auth", MaxAge: 14 * 24 * 3600}
}

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
	cookie  *CookieOptions
}

// NewAuthHandler 创建 AuthHandler；cookie 为 nil 时使用默认参数
func NewAuthHandler(authSvc service.AuthService, cookie *CookieOptions) *AuthHandler {
	if cookie == nil {
		cookie = defaultCookieOptions()
	}
	return &AuthHandler{authSvc: authSvc, cookie: cookie}
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	response.OK(c, result)
}

// Signup 高年级学员注册
// POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Signup(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.Created(c, result)
}

// OfficerSignup 军官注册
// POST /api/v1/auth/signup/officer
func (h *AuthHandler) OfficerSignup(c *gin.Context) {
	var req dto.OfficerSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.OfficerSignup(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.Created(c, result)
}

// RefreshToken 刷新 Token（请求体或 Cookie）
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token := h.refreshTokenFrom(c)
	if token == "" {
		response.BadRequest(c, 10001, "缺少 refresh_token")
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), token)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	response.OK(c, result)
}

// Logout 登出：当前 Access Token 与 Refresh Token 加入黑名单
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if _, ok := MustGetUserID(c); !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), GetClaims(c), h.refreshTokenFrom(c)); err != nil {
		response.InternalError(c)
		return
	}

	h.clearRefreshCookie(c)
	response.OK(c, nil)
}

// GetCurrentUser 当前登录者信息
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.authSvc.Me(c.Request.Context(), caller)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// ChangePassword 修改密码
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), caller, &req); err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, nil)
}

// ── 辅助 ──

func (h *AuthHandler) refreshTokenFrom(c *gin.Context) string {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err == nil {
		return req.RefreshToken
	}
	if v, err := c.Cookie(refreshCookieName); err == nil {
		return v
	}
	return ""
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, token, h.cookie.MaxAge, h.cookie.Path, h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, "", -1, h.cookie.Path, h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 11001, "用户名或密码错误")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11002, "用户不存在")
	case errors.Is(err, service.ErrEmailNotAuthorized):
		response.Forbidden(c, 11003, "该邮箱未获注册授权")
	case errors.Is(err, service.ErrEmailAlreadyUsed):
		response.Conflict(c, 11004, "该授权邮箱已被使用")
	case errors.Is(err, service.ErrEmailOfficerOnly):
		response.Forbidden(c, 11005, "该邮箱仅限军官注册")
	case errors.Is(err, service.ErrEmailNotOfficer):
		response.Forbidden(c, 11006, "该邮箱未获军官注册授权")
	case errors.Is(err, service.ErrUsernameTaken):
		response.Conflict(c, 11007, err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		response.Conflict(c, 11008, err.Error())
	case errors.Is(err, service.ErrPasswordMismatch):
		response.BadRequest(c, 11009, "两次输入的密码不一致")
	case errors.Is(err, service.ErrWrongPassword):
		response.BadRequest(c, 11010, "原密码错误")
	case errors.Is(err, service.ErrTokenRevoked),
		errors.Is(err, jwt.ErrTokenExpired),
		errors.Is(err, jwt.ErrTokenInvalid),
		errors.Is(err, jwt.ErrTokenWrongType):
		response.Unauthorized(c, 11011, "Token 无效或已过期")
	case errors.Is(err, service.ErrLevelNotFound):
		response.BadRequest(c, 13001, "级别不存在")
	case errors.Is(err, service.ErrInvalidSeniorLevel):
		response.BadRequest(c, 12002, "高年级学员级别必须为 5 或 6")
	case errors.Is(err, service.ErrInvalidRank):
		response.BadRequest(c, 12003, "军衔无效")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/auth_handler.go
