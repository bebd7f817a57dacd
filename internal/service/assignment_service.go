package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/redmac135/banshee-training/internal/dto"
	"github.com/redmac135/banshee-training/internal/model"
	"github.com/redmac135/banshee-training/internal/repository"
)

var (
	ErrAssignmentRoleEmpty = errors.New("角色不能为空")
	ErrDuplicateAssignee   = errors.New("同一人员不能重复分配")
	ErrMultipleIC          = errors.New("每节课只能有一名负责教官 (ic)")
	ErrSeniorNotInstructor = errors.New("该人员不可被分配")
	ErrSeniorExcused       = errors.New("该人员已请假")
	ErrSeniorDoubleBooked  = errors.New("该人员在同一时段已有其他课程")
)

// AssigneeError 指明被拒绝的人员
type AssigneeError struct {
	Err      error
	SeniorID string
	Name     string
}

func (e *AssigneeError) Error() string {
	if e.Name == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Name
}

func (e *AssigneeError) Unwrap() error { return e.Err }

// AssignmentService 分配业务接口
type AssignmentService interface {
	GetTeach(ctx context.Context, groupID int) (*dto.AssignmentListResponse, error)
	AssignTeach(ctx context.Context, groupID int, items []dto.AssignmentItem, caller Caller) (*dto.AssignmentListResponse, error)
	GetNight(ctx context.Context, nightID string) (*dto.AssignmentListResponse, error)
	AssignNight(ctx context.Context, nightID string, items []dto.AssignmentItem, caller Caller) (*dto.AssignmentListResponse, error)
}

type assignmentService struct {
	repo   *repository.Repository
	notify NotificationService
	logger *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(repo *repository.Repository, notify NotificationService, logger *zap.Logger) AssignmentService {
	return &assignmentService{repo: repo, notify: notify, logger: logger}
}

// ── 课程分配 ──

func (s *assignmentService) GetTeach(ctx context.Context, groupID int) (*dto.AssignmentListResponse, error) {
	teaches, err := s.repo.Teach.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(teaches) == 0 {
		return nil, ErrTeachNotFound
	}
	current, err := s.repo.Assignment.ListTeachByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	candidates, _, err := s.teachCandidates(ctx, s.repo)
	if err != nil {
		return nil, err
	}
	return &dto.AssignmentListResponse{
		Assignments:     teachAssignmentResponses(current),
		Candidates:      toSeniorBriefs(candidates),
		RoleSuggestions: model.TeachRoleSuggestions,
	}, nil
}

func (s *assignmentService) teachCandidates(ctx context.Context, repo *repository.Repository) ([]model.Senior, model.TrainingSetting, error) {
	setting, err := loadSetting(ctx, repo, s.logger)
	if err != nil {
		return nil, setting, err
	}
	seniors, err := repo.Senior.List(ctx, instructorFilter(setting))
	if err != nil {
		return nil, setting, err
	}
	return seniors, setting, nil
}

// lockNight 事务内锁定训练夜，同一晚的分配串行执行
func lockNight(ctx context.Context, tx *repository.Repository, nightID string) (*model.TrainingNight, error) {
	night, err := tx.Night.GetByIDForUpdate(ctx, nightID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNightNotFound
		}
		return nil, err
	}
	return night, nil
}

func (s *assignmentService) AssignTeach(ctx context.Context, groupID int, items []dto.AssignmentItem, caller Caller) (*dto.AssignmentListResponse, error) {
	items, err := normalizeAssignments(items)
	if err != nil {
		return nil, err
	}

	var (
		night    *model.TrainingNight
		teaches  []model.Teach
		pool     map[string]*model.Senior
		setting  model.TrainingSetting
		previous []model.TeachAssignment
	)
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		teaches, err = tx.Teach.ListByGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if len(teaches) == 0 {
			return ErrTeachNotFound
		}
		if night, err = lockNight(ctx, tx, teaches[0].NightID); err != nil {
			return err
		}

		// 1. 人员资格
		var candidates []model.Senior
		candidates, setting, err = s.teachCandidates(ctx, tx)
		if err != nil {
			return err
		}
		pool = indexSeniors(candidates)

		ics := 0
		for _, it := range items {
			if _, ok := pool[it.SeniorID]; !ok {
				return &AssigneeError{Err: ErrSeniorNotInstructor, SeniorID: it.SeniorID}
			}
			if strings.EqualFold(it.Role, model.InstructorInChargeRole) {
				ics++
			}
		}
		if ics > 1 {
			return ErrMultipleIC
		}

		// 2. 请假
		if err := checkExcused(ctx, tx, night.NightID, items, pool); err != nil {
			return err
		}

		// 3. 同一时段不可重复上课
		if err := checkDoubleBooked(ctx, tx, night.NightID, groupID, teaches, items, pool); err != nil {
			return err
		}

		previous, err = tx.Assignment.ListTeachByGroup(ctx, groupID)
		if err != nil {
			return err
		}

		rows := make([]model.TeachAssignment, 0, len(items))
		for _, it := range items {
			row := model.TeachAssignment{
				GroupID:  groupID,
				NightID:  night.NightID,
				SeniorID: it.SeniorID,
				Role:     it.Role,
			}
			if caller.UserID != "" {
				row.CreatedBy = &caller.UserID
			}
			rows = append(rows, row)
		}
		if err := tx.Assignment.ReplaceTeach(ctx, groupID, rows); err != nil {
			s.logger.Error("更新课程分配失败", zap.Int("teach_id", groupID), zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("课程分配已更新",
		zap.Int("teach_id", groupID),
		zap.Int("count", len(items)),
		zap.String("operator", caller.UserID),
	)

	// 4. 通知新增或角色变更的人员
	prevRoles := make(map[string]string, len(previous))
	for _, p := range previous {
		prevRoles[p.SeniorID] = p.Role
	}
	var notices []TeachNotice
	for _, it := range items {
		if role, ok := prevRoles[it.SeniorID]; ok && role == it.Role {
			continue
		}
		notices = append(notices, TeachNotice{Senior: pool[it.SeniorID], Role: it.Role})
	}
	if len(notices) > 0 {
		s.sendTeachNotices(ctx, night, groupID, teaches, setting, notices)
	}

	return s.GetTeach(ctx, groupID)
}

func (s *assignmentService) sendTeachNotices(ctx context.Context, night *model.TrainingNight, groupID int, teaches []model.Teach, setting model.TrainingSetting, notices []TeachNotice) {
	catalog, err := loadCatalog(ctx, s.repo, teaches)
	if err != nil {
		s.logger.Warn("加载课程内容失败，跳过通知", zap.Int("teach_id", groupID), zap.Error(err))
		return
	}
	periods, levels := teachCoordinates(teaches)
	for _, n := range notices {
		n.Night = night
		n.GroupID = groupID
		n.Content = catalog.Block(&teaches[0]).Label
		n.Periods = periods
		n.Levels = levels
		n.Location = teaches[0].Location
		n.DueDate = PlanDueDate(night.Date, setting.DueDateOffset)
		s.notify.NotifyTeach(ctx, n)
	}
}

// teachCoordinates 组内去重后的时段编号与级别名
func teachCoordinates(teaches []model.Teach) ([]int, []string) {
	var periods []int
	type lvl struct {
		number int
		name   string
	}
	var levels []lvl
	seenP := make(map[int]bool)
	seenL := make(map[string]bool)
	for _, t := range teaches {
		if t.Period != nil && !seenP[t.Period.Number] {
			seenP[t.Period.Number] = true
			periods = append(periods, t.Period.Number)
		}
		if t.Level != nil && !seenL[t.Level.LevelID] {
			seenL[t.Level.LevelID] = true
			levels = append(levels, lvl{t.Level.Number, t.Level.Name})
		}
	}
	sort.Ints(periods)
	sort.Slice(levels, func(i, j int) bool { return levels[i].number < levels[j].number })

	names := make([]string, 0, len(levels))
	for _, l := range levels {
		names = append(names, l.name)
	}
	return periods, names
}

func checkExcused(ctx context.Context, repo *repository.Repository, nightID string, items []dto.AssignmentItem, pool map[string]*model.Senior) error {
	excused, err := repo.Night.ListExcused(ctx, nightID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if containsString(excused, it.SeniorID) {
			return &AssigneeError{Err: ErrSeniorExcused, SeniorID: it.SeniorID, Name: seniorName(pool[it.SeniorID])}
		}
	}
	return nil
}

func checkDoubleBooked(ctx context.Context, repo *repository.Repository, nightID string, groupID int, teaches []model.Teach, items []dto.AssignmentItem, pool map[string]*model.Senior) error {
	own := make(map[string]bool)
	for _, t := range teaches {
		if t.PeriodID != nil {
			own[*t.PeriodID] = true
		}
	}
	if len(own) == 0 {
		return nil
	}

	nightTeaches, err := repo.Teach.ListByNight(ctx, nightID)
	if err != nil {
		return err
	}
	clashing := make(map[int]bool)
	for _, t := range nightTeaches {
		if t.GroupID != groupID && t.PeriodID != nil && own[*t.PeriodID] {
			clashing[t.GroupID] = true
		}
	}

	booked, err := repo.Assignment.ListTeachByNight(ctx, nightID)
	if err != nil {
		return err
	}
	for _, it := range items {
		for _, a := range booked {
			if a.SeniorID == it.SeniorID && clashing[a.GroupID] {
				return &AssigneeError{Err: ErrSeniorDoubleBooked, SeniorID: it.SeniorID, Name: seniorName(pool[it.SeniorID])}
			}
		}
	}
	return nil
}

// ── 训练夜角色 ──

func nightCandidates(ctx context.Context, repo *repository.Repository) ([]model.Senior, error) {
	return repo.Senior.List(ctx, repository.SeniorFilter{MaxPermission: model.PermissionTraining})
}

func (s *assignmentService) GetNight(ctx context.Context, nightID string) (*dto.AssignmentListResponse, error) {
	if _, err := s.repo.Night.GetByID(ctx, nightID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNightNotFound
		}
		return nil, err
	}
	current, err := s.repo.Assignment.ListNightByNight(ctx, nightID)
	if err != nil {
		return nil, err
	}
	candidates, err := nightCandidates(ctx, s.repo)
	if err != nil {
		return nil, err
	}
	return &dto.AssignmentListResponse{
		Assignments:     nightAssignmentResponses(current),
		Candidates:      toSeniorBriefs(candidates),
		RoleSuggestions: model.NightRoleSuggestions,
	}, nil
}

func (s *assignmentService) AssignNight(ctx context.Context, nightID string, items []dto.AssignmentItem, caller Caller) (*dto.AssignmentListResponse, error) {
	items, err := normalizeAssignments(items)
	if err != nil {
		return nil, err
	}

	var (
		night    *model.TrainingNight
		pool     map[string]*model.Senior
		previous []model.NightAssignment
	)
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		if night, err = lockNight(ctx, tx, nightID); err != nil {
			return err
		}

		candidates, err := nightCandidates(ctx, tx)
		if err != nil {
			return err
		}
		pool = indexSeniors(candidates)
		for _, it := range items {
			if _, ok := pool[it.SeniorID]; !ok {
				return &AssigneeError{Err: ErrSeniorNotInstructor, SeniorID: it.SeniorID}
			}
		}
		if err := checkExcused(ctx, tx, nightID, items, pool); err != nil {
			return err
		}

		previous, err = tx.Assignment.ListNightByNight(ctx, nightID)
		if err != nil {
			return err
		}

		rows := make([]model.NightAssignment, 0, len(items))
		for _, it := range items {
			row := model.NightAssignment{NightID: nightID, SeniorID: it.SeniorID, Role: it.Role}
			if caller.UserID != "" {
				row.CreatedBy = &caller.UserID
			}
			rows = append(rows, row)
		}
		if err := tx.Assignment.ReplaceNight(ctx, nightID, rows); err != nil {
			s.logger.Error("更新训练夜角色失败", zap.String("night_id", nightID), zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("训练夜角色已更新",
		zap.String("night_id", nightID),
		zap.Int("count", len(items)),
		zap.String("operator", caller.UserID),
	)

	prevRoles := make(map[string]string, len(previous))
	for _, p := range previous {
		prevRoles[p.SeniorID] = p.Role
	}
	for _, it := range items {
		if role, ok := prevRoles[it.SeniorID]; ok && role == it.Role {
			continue
		}
		s.notify.NotifyNight(ctx, NightNotice{Senior: pool[it.SeniorID], Role: it.Role, Night: night})
	}

	return s.GetNight(ctx, nightID)
}

func indexSeniors(seniors []model.Senior) map[string]*model.Senior {
	out := make(map[string]*model.Senior, len(seniors))
	for i := range seniors {
		out[seniors[i].SeniorID] = &seniors[i]
	}
	return out
}

// [自证通过] internal/service/assignment_service.go
