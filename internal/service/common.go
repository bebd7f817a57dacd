package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/redmac135/banshee-training/internal/dto"
	"github.com/redmac135/banshee-training/internal/model"
	"github.com/redmac135/banshee-training/internal/repository"
)

// Clock 时间源（测试中替换为固定时间）
type Clock func() time.Time

// Caller 当前登录者（由 JWT 声明构造）
type Caller struct {
	UserID   string
	SeniorID string
	Role     string
}

// IsTraining 训练主管、军官或管理员
func (c Caller) IsTraining() bool {
	for _, r := range model.TrainingRoles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// IsAdmin 管理员
func (c Caller) IsAdmin() bool { return c.Role == model.RoleAdmin }

// ── 日期 ──

const dateLayout = "2006-01-02"

// dateOnly 取日历日期（UTC 零点），与 training_nights.date 的存储形式一致
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// parseDate 解析 "2006-01-02"
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return dateOnly(t), nil
}

func formatDate(t time.Time) string { return t.Format(dateLayout) }

// ── 教案状态 ──

// 教案提交状态
const (
	PlanUnassigned = "unassigned"
	PlanSubmitted  = "submitted"
	PlanOverdue    = "overdue"
	PlanDueSoon    = "due_soon"
	PlanPending    = "pending"
)

// dueSoonDays 截止前多少天内视为即将到期
const dueSoonDays = 3

// PlanDueDate 教案截止日 = 训练夜日期 - 偏移天数
func PlanDueDate(nightDate time.Time, offsetDays int) time.Time {
	return dateOnly(nightDate).AddDate(0, 0, -offsetDays)
}

// PlanStatus 根据日期比较得出教案状态
func PlanStatus(teach *model.Teach, nightDate, today time.Time, offsetDays int) string {
	switch {
	case teach.IsEmpty():
		return PlanUnassigned
	case teach.Finished:
		return PlanSubmitted
	}

	due := PlanDueDate(nightDate, offsetDays)
	today = dateOnly(today)
	switch {
	case today.After(due):
		return PlanOverdue
	case !due.After(today.AddDate(0, 0, dueSoonDays)):
		return PlanDueSoon
	default:
		return PlanPending
	}
}

// ── 实体 → DTO ──

func toLevelResponse(l *model.Level) dto.LevelResponse {
	return dto.LevelResponse{ID: l.LevelID, Name: l.Name, Number: l.Number}
}

func toLevelResponses(levels []model.Level) []dto.LevelResponse {
	out := make([]dto.LevelResponse, 0, len(levels))
	for i := range levels {
		out = append(out, toLevelResponse(&levels[i]))
	}
	return out
}

func toSeniorResponse(s *model.Senior) dto.SeniorResponse {
	resp := dto.SeniorResponse{
		ID:                  s.SeniorID,
		UserID:              s.UserID,
		DisplayName:         s.DisplayName(),
		Rank:                s.Rank,
		RankName:            model.RankName(s.Rank),
		PermissionLevel:     s.PermissionLevel,
		Role:                s.Role(),
		DiscludedAssignment: s.DiscludedAssignment,
	}
	if s.User != nil {
		resp.Username = s.User.Username
		resp.FirstName = s.User.FirstName
		resp.LastName = s.User.LastName
		resp.Email = s.User.Email
	}
	if s.Level != nil {
		lvl := toLevelResponse(s.Level)
		resp.Level = &lvl
	}
	return resp
}

func toSeniorBriefs(seniors []model.Senior) []dto.SeniorBrief {
	out := make([]dto.SeniorBrief, 0, len(seniors))
	for i := range seniors {
		out = append(out, dto.SeniorBrief{ID: seniors[i].SeniorID, Name: seniors[i].DisplayName()})
	}
	return out
}

func seniorName(s *model.Senior) string {
	if s == nil {
		return ""
	}
	return s.DisplayName()
}

func teachAssignmentResponses(list []model.TeachAssignment) []dto.RoleAssignmentResponse {
	out := make([]dto.RoleAssignmentResponse, 0, len(list))
	for i := range list {
		out = append(out, dto.RoleAssignmentResponse{
			SeniorID: list[i].SeniorID,
			Name:     seniorName(list[i].Senior),
			Role:     list[i].Role,
		})
	}
	return out
}

func nightAssignmentResponses(list []model.NightAssignment) []dto.RoleAssignmentResponse {
	out := make([]dto.RoleAssignmentResponse, 0, len(list))
	for i := range list {
		out = append(out, dto.RoleAssignmentResponse{
			SeniorID: list[i].SeniorID,
			Name:     seniorName(list[i].Senior),
			Role:     list[i].Role,
		})
	}
	return out
}

// slotRefs 单元格坐标，按时段、级别编号排序
func slotRefs(teaches []model.Teach) []dto.SlotRef {
	sorted := make([]model.Teach, 0, len(teaches))
	for _, t := range teaches {
		if t.Period != nil && t.Level != nil {
			sorted = append(sorted, t)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Period.Number != sorted[j].Period.Number {
			return sorted[i].Period.Number < sorted[j].Period.Number
		}
		return sorted[i].Level.Number < sorted[j].Level.Number
	})

	out := make([]dto.SlotRef, 0, len(sorted))
	for _, t := range sorted {
		out = append(out, dto.SlotRef{
			Period:    t.Period.Number,
			LevelID:   t.Level.LevelID,
			LevelName: t.Level.Name,
		})
	}
	return out
}

// ── 训练设置 ──

// loadSetting 读取训练设置，未保存过时使用默认值
func loadSetting(ctx context.Context, repo *repository.Repository, logger *zap.Logger) (model.TrainingSetting, error) {
	setting, err := repo.Setting.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.DefaultTrainingSetting(), nil
		}
		logger.Error("查询训练设置失败", zap.Error(err))
		return model.TrainingSetting{}, err
	}
	return *setting, nil
}

// instructorFilter 可被分配课程的人员
// senior_assignment 开启时训练主管也可被分配
func instructorFilter(setting model.TrainingSetting) repository.SeniorFilter {
	f := repository.SeniorFilter{ExcludeDiscluded: true}
	if setting.SeniorAssignment {
		f.MaxPermission = model.PermissionTraining
	} else {
		f.ExactPermission = model.PermissionInstructor
	}
	return f
}

// ── 分配名单校验 ──

// normalizeAssignments 去空格并检查重复人员
func normalizeAssignments(items []dto.AssignmentItem) ([]dto.AssignmentItem, error) {
	seen := make(map[string]bool, len(items))
	out := make([]dto.AssignmentItem, 0, len(items))
	for _, it := range items {
		role := strings.TrimSpace(it.Role)
		if role == "" {
			return nil, ErrAssignmentRoleEmpty
		}
		if seen[it.SeniorID] {
			return nil, ErrDuplicateAssignee
		}
		seen[it.SeniorID] = true
		out = append(out, dto.AssignmentItem{SeniorID: it.SeniorID, Role: role})
	}
	return out, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// [自证通过] internal/service/common.go
