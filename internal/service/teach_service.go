package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/redmac135/banshee-training/internal/dto"
	"github.com/redmac135/banshee-training/internal/model"
	"github.com/redmac135/banshee-training/internal/repository"
	pkgerrors "github.com/redmac135/banshee-training/pkg/errors"
	"github.com/redmac135/banshee-training/pkg/metrics"
)

var (
	ErrTeachNotFound       = errors.New("课程不存在")
	ErrSlotNotFound        = errors.New("所选课表格不存在")
	ErrInvalidForm         = errors.New("表单类型无效")
	ErrEOCodeRequired      = errors.New("课程需要填写有效的 EO 编号")
	ErrTitleRequired       = errors.New("标题不能为空")
	ErrTeachEmpty          = errors.New("课程尚未安排内容")
	ErrPlanStorageDisabled = errors.New("未启用教案文件存储")
)

// 教案提交来源（指标标签）
const (
	planSourceLink    = "link"
	planSourceFile    = "file"
	planSourceCleared = "cleared"
)

// TeachService 课程业务接口
type TeachService interface {
	// Save 保存课程表单，返回 teach id
	Save(ctx context.Context, nightID string, req *dto.SaveTeachRequest, caller Caller) (*dto.SaveTeachResponse, error)
	Get(ctx context.Context, groupID int, caller Caller) (*dto.TeachResponse, error)
	GetForm(ctx context.Context, groupID int) (*dto.TeachFormResponse, error)
	SubmitPlan(ctx context.Context, groupID int, link string, caller Caller) (*dto.PlanResponse, error)
	UploadPlan(ctx context.Context, groupID int, filename, contentType string, body io.Reader, caller Caller) (*dto.PlanResponse, error)
}

type teachService struct {
	repo    *repository.Repository
	storage PlanStorage
	metrics *metrics.Metrics
	now     Clock
	logger  *zap.Logger
}

// NewTeachService 创建 TeachService 实例
// storage 为 nil 时不支持上传教案文件
func NewTeachService(
	repo *repository.Repository,
	storage PlanStorage,
	m *metrics.Metrics,
	now Clock,
	logger *zap.Logger,
) TeachService {
	return &teachService{repo: repo, storage: storage, metrics: m, now: now, logger: logger}
}

// ── 表单保存 ──

// teachForm 规范化后的表单内容
type teachForm struct {
	Kind     string
	EOCode   string
	Title    string
	POTitle  string
	Location string
}

func normalizeForm(req *dto.SaveTeachRequest) (teachForm, error) {
	f := teachForm{
		Kind:     req.Form,
		EOCode:   strings.ToUpper(strings.TrimSpace(req.EOCode)),
		Title:    strings.TrimSpace(req.Title),
		POTitle:  strings.TrimSpace(req.POTitle),
		Location: strings.TrimSpace(req.Location),
	}
	switch f.Kind {
	case model.ContentLesson:
		if !dto.IsEOCode(f.EOCode) {
			return f, ErrEOCodeRequired
		}
		if f.Title == "" {
			return f, ErrTitleRequired
		}
	case model.ContentActivity:
		if f.Title == "" {
			f.Title = model.DefaultActivityTitle
		}
	case model.ContentGeneric:
		if f.Title == "" {
			return f, ErrTitleRequired
		}
	default:
		return f, ErrInvalidForm
	}
	return f, nil
}

func (s *teachService) Save(ctx context.Context, nightID string, req *dto.SaveTeachRequest, caller Caller) (*dto.SaveTeachResponse, error) {
	form, err := normalizeForm(req)
	if err != nil {
		return nil, err
	}

	var groupID int
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		night, err := tx.Night.GetByID(ctx, nightID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNightNotFound
			}
			return err
		}
		teaches, err := tx.Teach.ListByNight(ctx, nightID)
		if err != nil {
			return err
		}

		// 1. 选中的格
		selected, err := resolveSlots(night, teaches, req.Slots)
		if err != nil {
			return err
		}

		// 2. 被编辑的组
		var edited []*model.Teach
		if req.TeachID != nil {
			for i := range teaches {
				if teaches[i].GroupID == *req.TeachID && teaches[i].PeriodID != nil {
					edited = append(edited, &teaches[i])
				}
			}
			if len(edited) == 0 {
				return ErrTeachNotFound
			}
		}

		// 修改前的状态
		touched := append(append([]*model.Teach{}, selected...), edited...)
		oldGroups := make([]int, 0, len(touched))
		oldTeaches := make([]model.Teach, 0, len(touched))
		for _, t := range touched {
			oldGroups = append(oldGroups, t.GroupID)
			oldTeaches = append(oldTeaches, *t)
		}

		// 3. 内容
		var prev *model.Teach
		if len(edited) > 0 {
			prev = edited[0]
		}
		contentID, err := s.resolveContent(ctx, tx, form, prev)
		if err != nil {
			return err
		}
		changed := prev == nil || prev.ContentType != form.Kind ||
			prev.ContentID == nil || *prev.ContentID != contentID

		plan, finished := "", false
		if !changed {
			plan, finished = prev.Plan, prev.Finished
		}

		// 4. teach id
		maxGroup, err := tx.Teach.MaxGroupID(ctx)
		if err != nil {
			return err
		}
		next := maxGroup + 1
		if req.TeachID != nil {
			groupID = *req.TeachID
		} else {
			groupID = next
			next++
		}

		var operator *string
		if caller.UserID != "" {
			operator = &caller.UserID
		}

		// 5. 写入选中的格
		isSelected := make(map[string]bool, len(selected))
		for _, t := range selected {
			isSelected[t.TeachID] = true
			t.GroupID = groupID
			t.ContentType = form.Kind
			t.ContentID = &contentID
			t.Location = form.Location
			t.Plan = plan
			t.Finished = finished
			t.UpdatedBy = operator
			if err := tx.Teach.Update(ctx, t); err != nil {
				return err
			}
		}

		// 6. 取消选中的格恢复为空课程，各自获得新 teach id
		for _, t := range edited {
			if isSelected[t.TeachID] {
				continue
			}
			t.ResetContent()
			t.GroupID = next
			next++
			t.UpdatedBy = operator
			if err := tx.Teach.Update(ctx, t); err != nil {
				return err
			}
		}

		// 7. 已无课表格的组删除其分配
		remaining, err := tx.Teach.ExistingGroups(ctx, oldGroups)
		if err != nil {
			return err
		}
		var gone []int
		for _, g := range dedupeInts(oldGroups) {
			if !containsInt(remaining, g) {
				gone = append(gone, g)
			}
		}
		if err := tx.Assignment.DeleteTeachByGroups(ctx, gone); err != nil {
			return err
		}

		// 8. 清理无引用内容
		return removeOrphanContent(ctx, tx, contentRefs(oldTeaches), s.logger)
	})
	if err != nil {
		if !isTeachRejection(err) {
			s.logger.Error("保存课程失败", zap.String("night_id", nightID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("课程已保存",
		zap.String("night_id", nightID),
		zap.Int("teach_id", groupID),
		zap.String("form", form.Kind),
		zap.Int("slots", len(req.Slots)),
		zap.String("operator", caller.UserID),
	)
	return &dto.SaveTeachResponse{TeachID: groupID}, nil
}

func isTeachRejection(err error) bool {
	for _, target := range []error{
		ErrNightNotFound, ErrTeachNotFound, ErrSlotNotFound, pkgerrors.ErrOptimisticLock,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// resolveSlots 将 (时段编号, 级别) 映射到该训练夜的 Teach
func resolveSlots(night *model.TrainingNight, teaches []model.Teach, slots []dto.SlotRequest) ([]*model.Teach, error) {
	periodNumber := make(map[string]int, len(night.Periods))
	for _, p := range night.Periods {
		periodNumber[p.PeriodID] = p.Number
	}

	type slotKey struct {
		period int
		level  string
	}
	index := make(map[slotKey]*model.Teach, len(teaches))
	for i := range teaches {
		t := &teaches[i]
		if t.PeriodID == nil || t.LevelID == nil {
			continue
		}
		index[slotKey{periodNumber[*t.PeriodID], *t.LevelID}] = t
	}

	seen := make(map[string]bool, len(slots))
	out := make([]*model.Teach, 0, len(slots))
	for _, slot := range slots {
		t, ok := index[slotKey{slot.Period, slot.LevelID}]
		if !ok {
			return nil, ErrSlotNotFound
		}
		if seen[t.TeachID] {
			continue
		}
		seen[t.TeachID] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, ErrSlotNotFound
	}
	return out, nil
}

// resolveContent 找到或创建内容，返回内容 ID
// 活动与通用课在类型、标题均未变时沿用原记录
func (s *teachService) resolveContent(ctx context.Context, tx *repository.Repository, form teachForm, prev *model.Teach) (string, error) {
	switch form.Kind {
	case model.ContentLesson:
		poCode := model.POCodeFromEOCode(form.EOCode)
		poTitle := form.POTitle
		if poTitle == "" {
			poTitle = poCode
		}
		po, err := tx.Content.GetOrCreatePO(ctx, poCode, poTitle)
		if err != nil {
			return "", err
		}
		lesson, err := tx.Content.GetOrCreateLesson(ctx, &model.Lesson{
			POID:   po.POID,
			EOCode: form.EOCode,
			Title:  form.Title,
		})
		if err != nil {
			return "", err
		}
		return lesson.LessonID, nil

	case model.ContentActivity, model.ContentGeneric:
		if prev != nil && prev.ContentType == form.Kind && prev.ContentID != nil {
			catalog, err := loadCatalog(ctx, tx, []model.Teach{*prev})
			if err != nil {
				return "", err
			}
			if catalog.Block(prev).Title == form.Title {
				return *prev.ContentID, nil
			}
		}
		if form.Kind == model.ContentActivity {
			a := &model.Activity{Title: form.Title}
			if err := tx.Content.CreateActivity(ctx, a); err != nil {
				return "", err
			}
			return a.ActivityID, nil
		}
		g := &model.GenericLesson{Title: form.Title}
		if err := tx.Content.CreateGeneric(ctx, g); err != nil {
			return "", err
		}
		return g.GenericLessonID, nil
	}
	return "", ErrInvalidForm
}

// ── 查询 ──

// teachGroup 一个 teach id 下的全部数据
type teachGroup struct {
	Night   *model.TrainingNight
	Teaches []model.Teach
	Lead    *model.Teach
}

func (s *teachService) loadGroup(ctx context.Context, groupID int) (*teachGroup, error) {
	teaches, err := s.repo.Teach.ListByGroup(ctx, groupID)
	if err != nil {
		s.logger.Error("查询课程失败", zap.Int("teach_id", groupID), zap.Error(err))
		return nil, err
	}
	if len(teaches) == 0 {
		return nil, ErrTeachNotFound
	}

	night, err := s.repo.Night.GetByID(ctx, teaches[0].NightID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeachNotFound
		}
		return nil, err
	}
	return &teachGroup{Night: night, Teaches: teaches, Lead: &teaches[0]}, nil
}

func (s *teachService) Get(ctx context.Context, groupID int, caller Caller) (*dto.TeachResponse, error) {
	g, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.repo.Assignment.ListTeachByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	catalog, err := loadCatalog(ctx, s.repo, g.Teaches)
	if err != nil {
		return nil, err
	}
	setting, err := loadSetting(ctx, s.repo, s.logger)
	if err != nil {
		return nil, err
	}

	return &dto.TeachResponse{
		TeachID:     groupID,
		NightID:     g.Night.NightID,
		Date:        formatDate(g.Night.Date),
		Content:     catalog.Block(g.Lead),
		Slots:       slotRefs(g.Teaches),
		Location:    g.Lead.Location,
		Plan:        s.planResponse(g, setting.DueDateOffset),
		Assignments: teachAssignmentResponses(assignments),
		CanEditPlan: canEditPlan(caller, assignments),
	}, nil
}

func (s *teachService) GetForm(ctx context.Context, groupID int) (*dto.TeachFormResponse, error) {
	g, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	catalog, err := loadCatalog(ctx, s.repo, g.Teaches)
	if err != nil {
		return nil, err
	}
	setting, err := loadSetting(ctx, s.repo, s.logger)
	if err != nil {
		return nil, err
	}
	nightTeaches, err := s.repo.Teach.ListByNight(ctx, g.Night.NightID)
	if err != nil {
		return nil, err
	}

	block := catalog.Block(g.Lead)
	form := block.Type
	if form == model.ContentEmpty {
		form = model.ContentLesson
	}
	location := g.Lead.Location
	if location == "" {
		location = setting.DefaultLocation
	}

	return &dto.TeachFormResponse{
		TeachID:        groupID,
		NightID:        g.Night.NightID,
		Form:           form,
		EOCode:         block.EOCode,
		Title:          block.Title,
		POTitle:        block.POTitle,
		Location:       location,
		Slots:          slotRefs(g.Teaches),
		AvailableSlots: slotRefs(nightTeaches),
	}, nil
}

// ── 教案 ──

func (s *teachService) SubmitPlan(ctx context.Context, groupID int, link string, caller Caller) (*dto.PlanResponse, error) {
	g, err := s.authorizePlan(ctx, groupID, caller)
	if err != nil {
		return nil, err
	}
	link = strings.TrimSpace(link)
	source := planSourceLink
	if link == "" {
		source = planSourceCleared
	}
	return s.writePlan(ctx, g, link, source, caller)
}

func (s *teachService) UploadPlan(ctx context.Context, groupID int, filename, contentType string, body io.Reader, caller Caller) (*dto.PlanResponse, error) {
	if s.storage == nil {
		return nil, ErrPlanStorageDisabled
	}
	g, err := s.authorizePlan(ctx, groupID, caller)
	if err != nil {
		return nil, err
	}

	url, err := s.storage.Upload(ctx, fmt.Sprintf("teach-%d", groupID), filename, contentType, body)
	if err != nil {
		s.logger.Error("上传教案文件失败", zap.Int("teach_id", groupID), zap.Error(err))
		return nil, err
	}
	return s.writePlan(ctx, g, url, planSourceFile, caller)
}

// authorizePlan 已分配到该课程的人员或训练主管可提交教案
func (s *teachService) authorizePlan(ctx context.Context, groupID int, caller Caller) (*teachGroup, error) {
	g, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g.Lead.IsEmpty() {
		return nil, ErrTeachEmpty
	}
	if caller.IsTraining() {
		return g, nil
	}

	assignments, err := s.repo.Assignment.ListTeachByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !canEditPlan(caller, assignments) {
		return nil, pkgerrors.ErrPermissionDenied
	}
	return g, nil
}

func (s *teachService) writePlan(ctx context.Context, g *teachGroup, link, source string, caller Caller) (*dto.PlanResponse, error) {
	finished := link != ""
	if err := s.repo.Teach.UpdatePlanByGroup(ctx, g.Lead.GroupID, link, finished, caller.UserID); err != nil {
		s.logger.Error("更新教案失败", zap.Int("teach_id", g.Lead.GroupID), zap.Error(err))
		return nil, err
	}
	s.metrics.PlanSubmitted(source)

	setting, err := loadSetting(ctx, s.repo, s.logger)
	if err != nil {
		return nil, err
	}
	for i := range g.Teaches {
		g.Teaches[i].Plan = link
		g.Teaches[i].Finished = finished
	}

	s.logger.Info("教案已更新",
		zap.Int("teach_id", g.Lead.GroupID),
		zap.String("source", source),
		zap.String("operator", caller.UserID),
	)
	resp := s.planResponse(g, setting.DueDateOffset)
	return &resp, nil
}

func (s *teachService) planResponse(g *teachGroup, offset int) dto.PlanResponse {
	return dto.PlanResponse{
		Finished: g.Lead.Finished,
		Link:     g.Lead.Plan,
		Status:   PlanStatus(g.Lead, g.Night.Date, s.now(), offset),
		DueDate:  formatDate(PlanDueDate(g.Night.Date, offset)),
	}
}

func canEditPlan(caller Caller, assignments []model.TeachAssignment) bool {
	if caller.IsTraining() {
		return true
	}
	for _, a := range assignments {
		if a.SeniorID == caller.SeniorID {
			return true
		}
	}
	return false
}

func dedupeInts(in []int) []int {
	seen := make(map[int]bool, len(in))
	out := make([]int, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// [自证通过] internal/service/teach_service.go
