package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/redmac135/banshee-training/internal/dto"
	"github.com/redmac135/banshee-training/internal/service"
	"github.com/redmac135/banshee-training/pkg/response"
)

// AssignmentHandler 人员分配 HTTP 处理器
type AssignmentHandler struct {
	assignSvc service.AssignmentService
}

// NewAssignmentHandler 创建 AssignmentHandler
func NewAssignmentHandler(assignSvc service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignSvc: assignSvc}
}

// GetTeachAssignments 课程当前分配及候选人
// GET /api/v1/teaches/:teach_id/assignments
func (h *AssignmentHandler) GetTeachAssignments(c *gin.Context) {
	groupID, ok := paramGroupID(c)
	if !ok {
		return
	}

	result, err := h.assignSvc.GetTeach(c.Request.Context(), groupID)
	if err != nil {
		handleAssignmentError(c, err)
		return
	}

	response.OK(c, result)
}

// AssignTeach 替换课程分配
// PUT /api/v1/teaches/:teach_id/assignments
func (h *AssignmentHandler) AssignTeach(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	groupID, ok := paramGroupID(c)
	if !ok {
		return
	}

	var req dto.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.assignSvc.AssignTeach(c.Request.Context(), groupID, req.Assignments, caller)
	if err != nil {
		handleAssignmentError(c, err)
		return
	}

	response.OK(c, result)
}

// GetNightAssignments 训练夜值班分配及候选人
// GET /api/v1/nights/:id/assignments
func (h *AssignmentHandler) GetNightAssignments(c *gin.Context) {
	result, err := h.assignSvc.GetNight(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleAssignmentError(c, err)
		return
	}

	response.OK(c, result)
}

// AssignNight 替换训练夜值班分配
// PUT /api/v1/nights/:id/assignments
func (h *AssignmentHandler) AssignNight(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.assignSvc.AssignNight(c.Request.Context(), c.Param("id"), req.Assignments, caller)
	if err != nil {
		handleAssignmentError(c, err)
		return
	}

	response.OK(c, result)
}

// assigneeDetails 出错的分配条目
type assigneeDetails struct {
	SeniorID string `json:"senior_id"`
	Name     string `json:"name"`
}

func handleAssignmentError(c *gin.Context, err error) {
	status, code, msg := http.StatusBadRequest, 0, ""
	switch {
	case errors.Is(err, service.ErrTeachNotFound):
		status, code, msg = http.StatusNotFound, 15001, "课程不存在"
	case errors.Is(err, service.ErrNightNotFound):
		status, code, msg = http.StatusNotFound, 14001, "训练夜不存在"
	case errors.Is(err, service.ErrAssignmentRoleEmpty):
		code, msg = 16001, "角色不能为空"
	case errors.Is(err, service.ErrDuplicateAssignee):
		code, msg = 16002, "同一人员不能重复分配"
	case errors.Is(err, service.ErrMultipleIC):
		code, msg = 16003, "每节课只能有一名负责教官 (ic)"
	case errors.Is(err, service.ErrSeniorNotInstructor):
		code, msg = 16004, "该人员不可被分配"
	case errors.Is(err, service.ErrSeniorExcused):
		code, msg = 16005, "该人员已请假"
	case errors.Is(err, service.ErrSeniorDoubleBooked):
		code, msg = 16006, "该人员在同一时段已有其他课程"
	default:
		response.InternalError(c)
		return
	}

	var ae *service.AssigneeError
	if errors.As(err, &ae) {
		response.ErrorWithDetails(c, status, code, ae.Error(),
			assigneeDetails{SeniorID: ae.SeniorID, Name: ae.Name})
		return
	}
	response.Error(c, status, code, msg)
}

// [自证通过] internal/api/handler/assignment_handler.go
