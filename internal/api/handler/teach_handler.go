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

// TeachHandler 课程模块 HTTP 处理器
type TeachHandler struct {
	teachSvc       service.TeachService
	maxUploadBytes int64
}

// NewTeachHandler 创建 TeachHandler；maxUploadBytes 为教案文件大小上限
func NewTeachHandler(teachSvc service.TeachService, maxUploadBytes int64) *TeachHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 20 << 20
	}
	return &TeachHandler{teachSvc: teachSvc, maxUploadBytes: maxUploadBytes}
}

// SaveTeach 保存课程表单（新建或编辑）
// POST /api/v1/nights/:id/teaches
func (h *TeachHandler) SaveTeach(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.SaveTeachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.teachSvc.Save(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		handleTeachError(c, err)
		return
	}

	response.OK(c, result)
}

// GetTeach 课程详情
// GET /api/v1/teaches/:teach_id
func (h *TeachHandler) GetTeach(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	groupID, ok := paramGroupID(c)
	if !ok {
		return
	}

	result, err := h.teachSvc.Get(c.Request.Context(), groupID, caller)
	if err != nil {
		handleTeachError(c, err)
		return
	}

	response.OK(c, result)
}

// GetTeachForm 编辑表单初始值与可选课表格
// GET /api/v1/teaches/:teach_id/form
func (h *TeachHandler) GetTeachForm(c *gin.Context) {
	groupID, ok := paramGroupID(c)
	if !ok {
		return
	}

	result, err := h.teachSvc.GetForm(c.Request.Context(), groupID)
	if err != nil {
		handleTeachError(c, err)
		return
	}

	response.OK(c, result)
}

// SubmitPlan 提交教案链接（空链接表示撤回）
// PUT /api/v1/teaches/:teach_id/plan
func (h *TeachHandler) SubmitPlan(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	groupID, ok := paramGroupID(c)
	if !ok {
		return
	}

	var req dto.SubmitPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.teachSvc.SubmitPlan(c.Request.Context(), groupID, req.Link, caller)
	if err != nil {
		handleTeachError(c, err)
		return
	}

	response.OK(c, result)
}

// UploadPlan 上传教案文件（multipart 字段 file）
// POST /api/v1/teaches/:teach_id/plan/file
func (h *TeachHandler) UploadPlan(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	groupID, ok := paramGroupID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 19003, "请选择要上传的文件")
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, 19002, "教案文件过大")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, 19003, "无法读取上传的文件")
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	result, err := h.teachSvc.UploadPlan(c.Request.Context(), groupID, fileHeader.Filename, contentType, file, caller)
	if err != nil {
		handleTeachError(c, err)
		return
	}

	response.OK(c, result)
}

func handleTeachError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTeachNotFound):
		response.NotFound(c, 15001, "课程不存在")
	case errors.Is(err, service.ErrNightNotFound):
		response.NotFound(c, 14001, "训练夜不存在")
	case errors.Is(err, service.ErrSlotNotFound):
		response.BadRequest(c, 15002, "所选课表格不存在")
	case errors.Is(err, service.ErrInvalidForm):
		response.BadRequest(c, 15003, "表单类型无效")
	case errors.Is(err, service.ErrEOCodeRequired):
		response.BadRequest(c, 15004, "课程需要填写有效的 EO 编号")
	case errors.Is(err, service.ErrTitleRequired):
		response.BadRequest(c, 15005, "标题不能为空")
	case errors.Is(err, service.ErrTeachEmpty):
		response.BadRequest(c, 15006, "课程尚未安排内容")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 15007, "课程已被其他人修改，请刷新后重试")
	case errors.Is(err, service.ErrPlanStorageDisabled):
		response.Error(c, http.StatusServiceUnavailable, 19001, "未启用教案文件存储")
	case errors.Is(err, pkgerrors.ErrPermissionDenied):
		response.Forbidden(c, 10003, "无权限访问")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/teach_handler.go
