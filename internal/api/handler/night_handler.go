package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/redmac135/banshee-training/internal/dto"
	"github.com/redmac135/banshee-training/internal/service"
	"github.com/redmac135/banshee-training/pkg/calendar"
	"github.com/redmac135/banshee-training/pkg/response"
)

// NightHandler 训练夜模块 HTTP 处理器
type NightHandler struct {
	nightSvc service.NightService
}

// NewNightHandler 创建 NightHandler
func NewNightHandler(nightSvc service.NightService) *NightHandler {
	return &NightHandler{nightSvc: nightSvc}
}

// ListNights 训练夜列表（可按月份筛选 ?month=2026-10）
// GET /api/v1/nights
func (h *NightHandler) ListNights(c *gin.Context) {
	var req dto.NightListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.nightSvc.List(c.Request.Context(), req.Month)
	if err != nil {
		handleNightError(c, err)
		return
	}

	response.OK(c, result)
}

// CreateNight 新建训练夜及其课表格
// POST /api/v1/nights
func (h *NightHandler) CreateNight(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateNightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.nightSvc.Create(c.Request.Context(), &req, caller)
	if err != nil {
		handleNightError(c, err)
		return
	}

	response.Created(c, result)
}

// DeleteNightByDate 按日期删除训练夜
// DELETE /api/v1/nights?date=2026-10-21
func (h *NightHandler) DeleteNightByDate(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.DeleteNightByDateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.nightSvc.DeleteByDate(c.Request.Context(), req.Date, caller); err != nil {
		handleNightError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetNight 训练夜详情
// GET /api/v1/nights/:id
func (h *NightHandler) GetNight(c *gin.Context) {
	result, err := h.nightSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleNightError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteNight 删除训练夜（级联删除课表格与分配）
// DELETE /api/v1/nights/:id
func (h *NightHandler) DeleteNight(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.nightSvc.Delete(c.Request.Context(), c.Param("id"), caller); err != nil {
		handleNightError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetSchedule 训练夜课表（view | edit | due）
// GET /api/v1/nights/:id/schedule
func (h *NightHandler) GetSchedule(c *gin.Context) {
	var req dto.ScheduleRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	view := req.View
	if view == "" {
		view = service.ViewSchedule
	}

	result, err := h.nightSvc.GetSchedule(c.Request.Context(), c.Param("id"), view)
	if err != nil {
		handleNightError(c, err)
		return
	}

	response.OK(c, result)
}

// GetExcused 请假名单
// GET /api/v1/nights/:id/excused
func (h *NightHandler) GetExcused(c *gin.Context) {
	result, err := h.nightSvc.GetExcused(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleNightError(c, err)
		return
	}

	response.OK(c, result)
}

// SetExcused 替换请假名单
// PUT /api/v1/nights/:id/excused
func (h *NightHandler) SetExcused(c *gin.Context) {
	var req dto.SetExcusedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.nightSvc.SetExcused(c.Request.Context(), c.Param("id"), req.SeniorIDs)
	if err != nil {
		handleNightError(c, err)
		return
	}

	response.OK(c, result)
}

func handleNightError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNightNotFound):
		response.NotFound(c, 14001, "训练夜不存在")
	case errors.Is(err, service.ErrNightDateTaken):
		response.Conflict(c, 14002, "该日期已有训练夜")
	case errors.Is(err, service.ErrInvalidNightDate):
		response.BadRequest(c, 14003, "日期格式错误，应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrInvalidPeriodOption):
		response.BadRequest(c, 14004, "时段选项无效")
	case errors.Is(err, calendar.ErrInvalidMonth):
		response.BadRequest(c, 14005, "月份格式错误，应为 YYYY-MM")
	case errors.Is(err, service.ErrNoJuniorLevel):
		response.BadRequest(c, 13002, "尚未配置学员级别")
	case errors.Is(err, service.ErrSeniorNotFound):
		response.BadRequest(c, 12001, "人员不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/night_handler.go
