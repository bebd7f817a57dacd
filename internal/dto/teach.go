package dto

// ── 课程模块 DTO ──

// SlotRequest 选中的课表格
type SlotRequest struct {
	Period  int    `json:"period"   binding:"required,min=1,max=3"`
	LevelID string `json:"level_id" binding:"required,uuid"`
}

// SaveTeachRequest 保存课程表单
// teach_id 为空时新建；否则编辑该组
type SaveTeachRequest struct {
	Form     string        `json:"form"     binding:"required,oneof=lesson activity generic"`
	TeachID  *int          `json:"teach_id" binding:"omitempty,min=1"`
	Slots    []SlotRequest `json:"slots"    binding:"required,min=1,dive"`
	Location string        `json:"location" binding:"max=64"`
	EOCode   string        `json:"eocode"   binding:"omitempty,eocode"`
	Title    string        `json:"title"    binding:"max=256"`
	POTitle  string        `json:"po_title" binding:"max=256"`
}

// SubmitPlanRequest 提交教案链接（空串表示撤回）
type SubmitPlanRequest struct {
	Link string `json:"link" binding:"omitempty,url,max=1000"`
}

// AssignmentItem 分配条目
type AssignmentItem struct {
	SeniorID string `json:"senior_id" binding:"required,uuid"`
	Role     string `json:"role"      binding:"required,max=32"`
}

// AssignRequest 替换分配名单
type AssignRequest struct {
	Assignments []AssignmentItem `json:"assignments" binding:"omitempty,dive"`
}

// ── 响应 ──

// SaveTeachResponse 保存结果
type SaveTeachResponse struct {
	TeachID int `json:"teach_id"`
}

// PlanResponse 教案状态
type PlanResponse struct {
	Finished bool   `json:"finished"`
	Link     string `json:"link,omitempty"`
	Status   string `json:"status"`
	DueDate  string `json:"due_date"`
}

// TeachResponse 课程详情
type TeachResponse struct {
	TeachID     int                      `json:"teach_id"`
	NightID     string                   `json:"night_id"`
	Date        string                   `json:"date"`
	Content     ContentBlock             `json:"content"`
	Slots       []SlotRef                `json:"slots"`
	Location    string                   `json:"location"`
	Plan        PlanResponse             `json:"plan"`
	Assignments []RoleAssignmentResponse `json:"assignments"`
	CanEditPlan bool                     `json:"can_edit_plan"`
}

// TeachFormResponse 编辑表单初始值
type TeachFormResponse struct {
	TeachID        int       `json:"teach_id"`
	NightID        string    `json:"night_id"`
	Form           string    `json:"form"`
	EOCode         string    `json:"eocode,omitempty"`
	Title          string    `json:"title,omitempty"`
	POTitle        string    `json:"po_title,omitempty"`
	Location       string    `json:"location"`
	Slots          []SlotRef `json:"slots"`
	AvailableSlots []SlotRef `json:"available_slots"`
}

// AssignmentListResponse 当前分配 + 可选人员
type AssignmentListResponse struct {
	Assignments     []RoleAssignmentResponse `json:"assignments"`
	Candidates      []SeniorBrief            `json:"candidates"`
	RoleSuggestions []string                 `json:"role_suggestions"`
}

// [自证通过] internal/dto/teach.go
