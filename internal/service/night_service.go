package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/redmac135/banshee-training/internal/dto"
	"github.com/redmac135/banshee-training/internal/model"
	"github.com/redmac135/banshee-training/internal/repository"
	"github.com/redmac135/banshee-training/pkg/calendar"
)

var (
	ErrNightNotFound       = errors.New("训练夜不存在")
	ErrNightDateTaken      = errors.New("该日期已有训练夜")
	ErrInvalidNightDate    = errors.New("日期格式错误，应为 YYYY-MM-DD")
	ErrInvalidPeriodOption = errors.New("时段选项无效")
	ErrInvalidView         = errors.New("视图无效，应为 view / edit / due")
)

// 课表视图
const (
	ViewSchedule = "view"
	ViewEdit     = "edit"
	ViewDue      = "due"
)

// NightService 训练夜业务接口
type NightService interface {
	Create(ctx context.Context, req *dto.CreateNightRequest, caller Caller) (*dto.NightResponse, error)
	Get(ctx context.Context, id string) (*dto.NightResponse, error)
	List(ctx context.Context, month string) ([]dto.NightResponse, error)
	Delete(ctx context.Context, id string, caller Caller) error
	DeleteByDate(ctx context.Context, date string, caller Caller) error
	GetSchedule(ctx context.Context, id, view string) (*dto.ScheduleResponse, error)
	GetExcused(ctx context.Context, id string) (*dto.ExcusedResponse, error)
	SetExcused(ctx context.Context, id string, seniorIDs []string) (*dto.ExcusedResponse, error)
}

type nightService struct {
	repo   *repository.Repository
	now    Clock
	logger *zap.Logger
}

// NewNightService 创建 NightService 实例
func NewNightService(repo *repository.Repository, now Clock, logger *zap.Logger) NightService {
	return &nightService{repo: repo, now: now, logger: logger}
}

// ── 创建 ──

func (s *nightService) Create(ctx context.Context, req *dto.CreateNightRequest, caller Caller) (*dto.NightResponse, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, ErrInvalidNightDate
	}

	kinds := make([]string, 0, model.PeriodCount)
	for _, opt := range []int{req.P1, req.P2, req.P3} {
		kind, ok := model.PeriodKindForOption(opt)
		if !ok {
			return nil, ErrInvalidPeriodOption
		}
		kinds = append(kinds, kind)
	}

	var (
		night       *model.TrainingNight
		masterGroup int
	)
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		// 1. 日期唯一
		if _, err := tx.Night.GetByDate(ctx, date); err == nil {
			return ErrNightDateTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// 2. 级别
		juniors, err := juniorLevels(ctx, tx)
		if err != nil {
			return err
		}
		if len(juniors) == 0 && needsJuniors(kinds) {
			return ErrNoJuniorLevel
		}
		master, err := masterLevel(ctx, tx)
		if err != nil {
			return err
		}

		// 3. 训练夜与时段
		night = &model.TrainingNight{NightID: uuid.NewString(), Date: date}
		if caller.UserID != "" {
			night.CreatedBy = &caller.UserID
		}
		if err := tx.Night.Create(ctx, night); err != nil {
			// 预检查与插入之间被并发创建
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrNightDateTaken
			}
			return err
		}

		periods := make([]model.TrainingPeriod, 0, model.PeriodCount)
		for i, kind := range kinds {
			periods = append(periods, model.TrainingPeriod{
				PeriodID: uuid.NewString(),
				NightID:  night.NightID,
				Number:   i + 1,
				Kind:     kind,
			})
		}
		if err := tx.Night.CreatePeriods(ctx, periods); err != nil {
			return err
		}
		night.Periods = periods

		// 4. 空课程与主课程
		maxGroup, err := tx.Teach.MaxGroupID(ctx)
		if err != nil {
			return err
		}
		teaches := planNightTeaches(night.NightID, periods, juniors, master, maxGroup+1)
		if err := tx.Teach.BatchCreate(ctx, teaches); err != nil {
			return err
		}

		masterTeach := teaches[len(teaches)-1]
		masterGroup = masterTeach.GroupID
		night.MasterTeachID = &masterTeach.TeachID
		return tx.Night.SetMasterTeach(ctx, night.NightID, masterTeach.TeachID)
	})
	if err != nil {
		if !errors.Is(err, ErrNightDateTaken) && !errors.Is(err, ErrNoJuniorLevel) {
			s.logger.Error("创建训练夜失败", zap.String("date", req.Date), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("训练夜已创建",
		zap.String("night_id", night.NightID),
		zap.String("date", req.Date),
		zap.Strings("periods", kinds),
		zap.String("operator", caller.UserID),
	)
	resp := toNightResponse(night, masterGroup)
	return &resp, nil
}

func needsJuniors(kinds []string) bool {
	for _, k := range kinds {
		if k != model.PeriodKindBlank {
			return true
		}
	}
	return false
}

// planNightTeaches 新训练夜的空课程
// 课程时段每个学员级别一个 teach id；活动时段所有级别共享一个；主课程排在最后
func planNightTeaches(nightID string, periods []model.TrainingPeriod, juniors []model.Level, master *model.Level, nextGroup int) []model.Teach {
	var teaches []model.Teach
	add := func(periodID, levelID *string, group int) {
		teaches = append(teaches, model.Teach{
			TeachID:        uuid.NewString(),
			GroupID:        group,
			NightID:        nightID,
			PeriodID:       periodID,
			LevelID:        levelID,
			ContentType:    model.ContentEmpty,
			VersionedModel: model.VersionedModel{Version: 1},
		})
	}

	for i := range periods {
		periodID := periods[i].PeriodID
		switch periods[i].Kind {
		case model.PeriodKindLesson:
			for j := range juniors {
				levelID := juniors[j].LevelID
				add(&periodID, &levelID, nextGroup)
				nextGroup++
			}
		case model.PeriodKindActivity:
			if len(juniors) == 0 {
				continue
			}
			for j := range juniors {
				levelID := juniors[j].LevelID
				add(&periodID, &levelID, nextGroup)
			}
			nextGroup++
		}
	}

	masterID := master.LevelID
	add(nil, &masterID, nextGroup)
	return teaches
}

// ── 查询 ──

func (s *nightService) Get(ctx context.Context, id string) (*dto.NightResponse, error) {
	night, err := s.getNight(ctx, id)
	if err != nil {
		return nil, err
	}
	teaches, err := s.repo.Teach.ListByNight(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toNightResponse(night, masterGroupOf(night, teaches))
	return &resp, nil
}

func (s *nightService) List(ctx context.Context, month string) ([]dto.NightResponse, error) {
	m, err := calendar.ParseMonth(month, s.now())
	if err != nil {
		return nil, err
	}

	nights, err := s.repo.Night.ListBetween(ctx, m.First(), m.Last())
	if err != nil {
		s.logger.Error("查询训练夜列表失败", zap.Error(err))
		return nil, err
	}

	ids := make([]string, 0, len(nights))
	for _, n := range nights {
		ids = append(ids, n.NightID)
	}
	teaches, err := s.repo.Teach.ListByNights(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]dto.NightResponse, 0, len(nights))
	for i := range nights {
		out = append(out, toNightResponse(&nights[i], masterGroupOf(&nights[i], teaches)))
	}
	return out, nil
}

// ── 删除 ──

func (s *nightService) Delete(ctx context.Context, id string, caller Caller) error {
	return s.delete(ctx, id, caller)
}

func (s *nightService) DeleteByDate(ctx context.Context, date string, caller Caller) error {
	d, err := parseDate(date)
	if err != nil {
		return ErrInvalidNightDate
	}
	night, err := s.repo.Night.GetByDate(ctx, d)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNightNotFound
		}
		return err
	}
	return s.delete(ctx, night.NightID, caller)
}

func (s *nightService) delete(ctx context.Context, id string, caller Caller) error {
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		teaches, err := tx.Teach.ListByNight(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Night.Delete(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNightNotFound
			}
			return err
		}
		return removeOrphanContent(ctx, tx, contentRefs(teaches), s.logger)
	})
	if err != nil {
		if !errors.Is(err, ErrNightNotFound) {
			s.logger.Error("删除训练夜失败", zap.String("night_id", id), zap.Error(err))
		}
		return err
	}

	s.logger.Info("训练夜已删除", zap.String("night_id", id), zap.String("operator", caller.UserID))
	return nil
}

// ── 课表 ──

func (s *nightService) GetSchedule(ctx context.Context, id, view string) (*dto.ScheduleResponse, error) {
	if view == "" {
		view = ViewSchedule
	}

	night, err := s.getNight(ctx, id)
	if err != nil {
		return nil, err
	}
	juniors, err := juniorLevels(ctx, s.repo)
	if err != nil {
		return nil, err
	}
	teaches, err := s.repo.Teach.ListByNight(ctx, id)
	if err != nil {
		return nil, err
	}
	assignments, err := s.repo.Assignment.ListTeachByNight(ctx, id)
	if err != nil {
		return nil, err
	}
	nightRoles, err := s.repo.Assignment.ListNightByNight(ctx, id)
	if err != nil {
		return nil, err
	}
	catalog, err := loadCatalog(ctx, s.repo, teaches)
	if err != nil {
		return nil, err
	}
	setting, err := loadSetting(ctx, s.repo, s.logger)
	if err != nil {
		return nil, err
	}

	return buildSchedule(scheduleInput{
		Night:       night,
		Juniors:     juniors,
		Teaches:     teaches,
		Assignments: assignments,
		NightRoles:  nightRoles,
		Catalog:     catalog,
		View:        view,
		DueOffset:   setting.DueDateOffset,
		Today:       s.now(),
	}), nil
}

// ── 请假 ──

func (s *nightService) GetExcused(ctx context.Context, id string) (*dto.ExcusedResponse, error) {
	if _, err := s.getNight(ctx, id); err != nil {
		return nil, err
	}
	ids, err := s.repo.Night.ListExcused(ctx, id)
	if err != nil {
		return nil, err
	}
	seniors, err := s.repo.Senior.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &dto.ExcusedResponse{NightID: id, Seniors: toSeniorBriefs(seniors)}, nil
}

func (s *nightService) SetExcused(ctx context.Context, id string, seniorIDs []string) (*dto.ExcusedResponse, error) {
	if _, err := s.getNight(ctx, id); err != nil {
		return nil, err
	}

	ids := dedupeStrings(seniorIDs)
	seniors, err := s.repo.Senior.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(seniors) != len(ids) {
		return nil, ErrSeniorNotFound
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		return tx.Night.ReplaceExcused(ctx, id, ids)
	})
	if err != nil {
		s.logger.Error("更新请假名单失败", zap.String("night_id", id), zap.Error(err))
		return nil, err
	}
	return &dto.ExcusedResponse{NightID: id, Seniors: toSeniorBriefs(seniors)}, nil
}

func (s *nightService) getNight(ctx context.Context, id string) (*model.TrainingNight, error) {
	night, err := s.repo.Night.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNightNotFound
		}
		s.logger.Error("查询训练夜失败", zap.String("night_id", id), zap.Error(err))
		return nil, err
	}
	return night, nil
}

// masterGroupOf 主课程的 teach id，未找到返回 0
func masterGroupOf(night *model.TrainingNight, teaches []model.Teach) int {
	if night.MasterTeachID == nil {
		return 0
	}
	for _, t := range teaches {
		if t.TeachID == *night.MasterTeachID {
			return t.GroupID
		}
	}
	return 0
}

func toNightResponse(n *model.TrainingNight, masterGroup int) dto.NightResponse {
	periods := make([]dto.PeriodResponse, 0, len(n.Periods))
	for _, p := range n.Periods {
		periods = append(periods, dto.PeriodResponse{ID: p.PeriodID, Number: p.Number, Kind: p.Kind})
	}
	return dto.NightResponse{
		ID:            n.NightID,
		Date:          formatDate(n.Date),
		MasterTeachID: masterGroup,
		Periods:       periods,
	}
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// nightTitle 课表标题
func nightTitle(date time.Time) dto.NightTitle {
	return dto.NightTitle{
		Month:   date.Month().String(),
		Day:     date.Day(),
		Weekday: date.Weekday().String(),
	}
}

// [自证通过] internal/service/night_service.go
