package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/redmac135/banshee-training/internal/model"
	"github.com/redmac135/banshee-training/internal/repository"
	pkgerrors "github.com/redmac135/banshee-training/pkg/errors"
)

// memDB 内存数据集，各 mock repo 共享以便模拟关联查询
type memDB struct {
	seq int

	users       map[string]*model.User
	authorized  map[string]*model.AuthorizedEmail
	levels      map[string]*model.Level
	seniors     map[string]*model.Senior
	setting     *model.TrainingSetting
	nights      map[string]*model.TrainingNight
	periods     map[string]*model.TrainingPeriod
	excused     map[string][]string
	teaches     map[string]*model.Teach
	pos         map[string]*model.PerformanceObjective
	lessons     map[string]*model.Lesson
	activities  map[string]*model.Activity
	generics    map[string]*model.GenericLesson
	teachAssign []model.TeachAssignment
	nightAssign []model.NightAssignment
	emails      []model.Email

	// onNightLock 在 GetByIDForUpdate 取得锁时调用，模拟加锁前已提交的并发写入
	onNightLock func(nightID string)
	// beforeNightCreate 在 Night.Create 写入前调用，模拟日期预检查之后的并发创建
	beforeNightCreate func(date time.Time)
}

func newMemDB() *memDB {
	return &memDB{
		users:      make(map[string]*model.User),
		authorized: make(map[string]*model.AuthorizedEmail),
		levels:     make(map[string]*model.Level),
		seniors:    make(map[string]*model.Senior),
		nights:     make(map[string]*model.TrainingNight),
		periods:    make(map[string]*model.TrainingPeriod),
		excused:    make(map[string][]string),
		teaches:    make(map[string]*model.Teach),
		pos:        make(map[string]*model.PerformanceObjective),
		lessons:    make(map[string]*model.Lesson),
		activities: make(map[string]*model.Activity),
		generics:   make(map[string]*model.GenericLesson),
	}
}

func (db *memDB) nextID(prefix string) string {
	db.seq++
	return fmt.Sprintf("%s-%d", prefix, db.seq)
}

// newMockRepository 构造未绑定数据库的 Repository 聚合（Transaction 直接执行）
func newMockRepository() (*repository.Repository, *memDB) {
	db := newMemDB()
	return &repository.Repository{
		User:            &mockUserRepo{db},
		AuthorizedEmail: &mockAuthorizedEmailRepo{db},
		Level:           &mockLevelRepo{db},
		Senior:          &mockSeniorRepo{db},
		Setting:         &mockSettingRepo{db},
		Night:           &mockNightRepo{db},
		Teach:           &mockTeachRepo{db},
		Content:         &mockContentRepo{db},
		Assignment:      &mockAssignmentRepo{db},
		Email:           &mockEmailRepo{db},
	}, db
}

// ── Mock UserRepository ──

type mockUserRepo struct{ db *memDB }

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = m.db.nextID("user")
	}
	user.Email = strings.ToLower(user.Email)
	m.db.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.db.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.db.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, u := range m.db.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range m.db.users {
		if u.Email == strings.ToLower(email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	u, ok := m.db.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

// ── Mock AuthorizedEmailRepository ──

type mockAuthorizedEmailRepo struct{ db *memDB }

func (m *mockAuthorizedEmailRepo) List(_ context.Context) ([]model.AuthorizedEmail, error) {
	var out []model.AuthorizedEmail
	for _, e := range m.db.authorized {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *mockAuthorizedEmailRepo) BatchCreate(_ context.Context, emails []model.AuthorizedEmail) error {
	for i := range emails {
		if emails[i].AuthorizedEmailID == "" {
			emails[i].AuthorizedEmailID = m.db.nextID("ae")
		}
		e := emails[i]
		m.db.authorized[e.AuthorizedEmailID] = &e
	}
	return nil
}

func (m *mockAuthorizedEmailRepo) ListExisting(_ context.Context, emails []string) ([]string, error) {
	var out []string
	for _, e := range m.db.authorized {
		for _, want := range emails {
			if e.Email == want {
				out = append(out, e.Email)
			}
		}
	}
	return out, nil
}

func (m *mockAuthorizedEmailRepo) GetByEmailForUpdate(_ context.Context, email string) (*model.AuthorizedEmail, error) {
	for _, e := range m.db.authorized {
		if e.Email == strings.ToLower(email) {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAuthorizedEmailRepo) MarkUsed(_ context.Context, id, userID string, at time.Time) error {
	e, ok := m.db.authorized[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.UsedAt = &at
	e.UsedBy = &userID
	return nil
}

func (m *mockAuthorizedEmailRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.db.authorized[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.db.authorized, id)
	return nil
}

// ── Mock LevelRepository ──

type mockLevelRepo struct{ db *memDB }

func (m *mockLevelRepo) sorted() []model.Level {
	var out []model.Level
	for _, l := range m.db.levels {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func (m *mockLevelRepo) List(_ context.Context) ([]model.Level, error) {
	return m.sorted(), nil
}

func (m *mockLevelRepo) ListByNumberRange(_ context.Context, min, max int) ([]model.Level, error) {
	var out []model.Level
	for _, l := range m.sorted() {
		if l.Number >= min && l.Number <= max {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockLevelRepo) GetByID(_ context.Context, id string) (*model.Level, error) {
	if l, ok := m.db.levels[id]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLevelRepo) GetByNumber(_ context.Context, number int) (*model.Level, error) {
	for _, l := range m.db.levels {
		if l.Number == number {
			return l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLevelRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.db.levels)), nil
}

func (m *mockLevelRepo) CreateIgnoreConflict(ctx context.Context, levels []model.Level) error {
	for i := range levels {
		if _, err := m.GetByNumber(ctx, levels[i].Number); err == nil {
			continue
		}
		l := levels[i]
		if l.LevelID == "" {
			l.LevelID = m.db.nextID("level")
		}
		m.db.levels[l.LevelID] = &l
	}
	return nil
}

// ── Mock SeniorRepository ──

type mockSeniorRepo struct{ db *memDB }

// hydrate 模拟 Preload("User").Preload("Level")
func (m *mockSeniorRepo) hydrate(s *model.Senior) model.Senior {
	out := *s
	out.User = m.db.users[s.UserID]
	out.Level = nil
	if s.LevelID != nil {
		out.Level = m.db.levels[*s.LevelID]
	}
	return out
}

func (m *mockSeniorRepo) Create(_ context.Context, senior *model.Senior) error {
	if senior.SeniorID == "" {
		senior.SeniorID = m.db.nextID("senior")
	}
	s := *senior
	m.db.seniors[s.SeniorID] = &s
	return nil
}

func (m *mockSeniorRepo) GetByID(_ context.Context, id string) (*model.Senior, error) {
	if s, ok := m.db.seniors[id]; ok {
		out := m.hydrate(s)
		return &out, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSeniorRepo) GetByUserID(_ context.Context, userID string) (*model.Senior, error) {
	for _, s := range m.db.seniors {
		if s.UserID == userID {
			out := m.hydrate(s)
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSeniorRepo) GetByUsername(_ context.Context, username string) (*model.Senior, error) {
	for _, s := range m.db.seniors {
		if u := m.db.users[s.UserID]; u != nil && u.Username == username {
			out := m.hydrate(s)
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSeniorRepo) List(_ context.Context, f repository.SeniorFilter) ([]model.Senior, error) {
	var out []model.Senior
	for _, s := range m.db.seniors {
		if f.MaxPermission > 0 && s.PermissionLevel > f.MaxPermission {
			continue
		}
		if f.ExactPermission > 0 && s.PermissionLevel != f.ExactPermission {
			continue
		}
		if f.LevelID != "" && (s.LevelID == nil || *s.LevelID != f.LevelID) {
			continue
		}
		if f.ExcludeDiscluded && s.DiscludedAssignment {
			continue
		}
		out = append(out, m.hydrate(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeniorID < out[j].SeniorID })
	return out, nil
}

func (m *mockSeniorRepo) ListByIDs(_ context.Context, ids []string) ([]model.Senior, error) {
	var out []model.Senior
	for _, id := range ids {
		if s, ok := m.db.seniors[id]; ok {
			out = append(out, m.hydrate(s))
		}
	}
	return out, nil
}

func (m *mockSeniorRepo) UpdateProfile(_ context.Context, id string, rank int, levelID *string, _ string) error {
	s, ok := m.db.seniors[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Rank = rank
	s.LevelID = levelID
	return nil
}

func (m *mockSeniorRepo) UpdatePermission(_ context.Context, id string, level int, _ string) error {
	s, ok := m.db.seniors[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.PermissionLevel = level
	return nil
}

func (m *mockSeniorRepo) UpdateDiscluded(_ context.Context, id string, discluded bool, _ string) error {
	s, ok := m.db.seniors[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.DiscludedAssignment = discluded
	return nil
}

// ── Mock TrainingSettingRepository ──

type mockSettingRepo struct{ db *memDB }

func (m *mockSettingRepo) Get(_ context.Context) (*model.TrainingSetting, error) {
	if m.db.setting == nil {
		return nil, gorm.ErrRecordNotFound
	}
	s := *m.db.setting
	return &s, nil
}

func (m *mockSettingRepo) Save(_ context.Context, setting *model.TrainingSetting) error {
	switch {
	case setting.Version == 0 && m.db.setting != nil:
		return pkgerrors.ErrOptimisticLock
	case setting.Version != 0 && (m.db.setting == nil || m.db.setting.Version != setting.Version):
		return pkgerrors.ErrOptimisticLock
	}
	setting.Version++
	s := *setting
	m.db.setting = &s
	return nil
}

// ── Mock NightRepository ──

type mockNightRepo struct{ db *memDB }

// withPeriods 模拟 Preload("Periods")，按编号排序
func (m *mockNightRepo) withPeriods(n *model.TrainingNight) model.TrainingNight {
	out := *n
	out.Periods = nil
	for _, p := range m.db.periods {
		if p.NightID == n.NightID {
			out.Periods = append(out.Periods, *p)
		}
	}
	sort.Slice(out.Periods, func(i, j int) bool { return out.Periods[i].Number < out.Periods[j].Number })
	return out
}

func (m *mockNightRepo) Create(_ context.Context, night *model.TrainingNight) error {
	if m.db.beforeNightCreate != nil {
		m.db.beforeNightCreate(night.Date)
	}
	for _, n := range m.db.nights {
		if n.Date.Equal(night.Date) {
			return gorm.ErrDuplicatedKey
		}
	}
	if night.NightID == "" {
		night.NightID = m.db.nextID("night")
	}
	n := *night
	n.Periods = nil
	m.db.nights[n.NightID] = &n
	return nil
}

func (m *mockNightRepo) CreatePeriods(_ context.Context, periods []model.TrainingPeriod) error {
	for i := range periods {
		if periods[i].PeriodID == "" {
			periods[i].PeriodID = m.db.nextID("period")
		}
		p := periods[i]
		m.db.periods[p.PeriodID] = &p
	}
	return nil
}

func (m *mockNightRepo) GetByID(_ context.Context, id string) (*model.TrainingNight, error) {
	if n, ok := m.db.nights[id]; ok {
		out := m.withPeriods(n)
		return &out, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNightRepo) GetByIDForUpdate(_ context.Context, id string) (*model.TrainingNight, error) {
	n, ok := m.db.nights[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if m.db.onNightLock != nil {
		m.db.onNightLock(id)
	}
	out := *n
	return &out, nil
}

func (m *mockNightRepo) GetByDate(_ context.Context, date time.Time) (*model.TrainingNight, error) {
	for _, n := range m.db.nights {
		if n.Date.Equal(date) {
			out := m.withPeriods(n)
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNightRepo) ListBetween(_ context.Context, from, to time.Time) ([]model.TrainingNight, error) {
	var out []model.TrainingNight
	for _, n := range m.db.nights {
		if !n.Date.Before(from) && !n.Date.After(to) {
			out = append(out, m.withPeriods(n))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *mockNightRepo) ListByIDs(_ context.Context, ids []string) ([]model.TrainingNight, error) {
	var out []model.TrainingNight
	for _, id := range ids {
		if n, ok := m.db.nights[id]; ok {
			out = append(out, m.withPeriods(n))
		}
	}
	return out, nil
}

func (m *mockNightRepo) SetMasterTeach(_ context.Context, nightID, teachID string) error {
	n, ok := m.db.nights[nightID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	n.MasterTeachID = &teachID
	return nil
}

func (m *mockNightRepo) Delete(_ context.Context, nightID string) error {
	if _, ok := m.db.nights[nightID]; !ok {
		return gorm.ErrRecordNotFound
	}
	var ta []model.TeachAssignment
	for _, a := range m.db.teachAssign {
		if a.NightID != nightID {
			ta = append(ta, a)
		}
	}
	m.db.teachAssign = ta
	var na []model.NightAssignment
	for _, a := range m.db.nightAssign {
		if a.NightID != nightID {
			na = append(na, a)
		}
	}
	m.db.nightAssign = na
	delete(m.db.excused, nightID)
	for id, t := range m.db.teaches {
		if t.NightID == nightID {
			delete(m.db.teaches, id)
		}
	}
	for id, p := range m.db.periods {
		if p.NightID == nightID {
			delete(m.db.periods, id)
		}
	}
	delete(m.db.nights, nightID)
	return nil
}

func (m *mockNightRepo) ListExcused(_ context.Context, nightID string) ([]string, error) {
	return append([]string(nil), m.db.excused[nightID]...), nil
}

func (m *mockNightRepo) ReplaceExcused(_ context.Context, nightID string, seniorIDs []string) error {
	m.db.excused[nightID] = append([]string(nil), seniorIDs...)
	return nil
}

// ── Mock TeachRepository ──

type mockTeachRepo struct{ db *memDB }

// hydrate 模拟 Preload("Period").Preload("Level")
func (m *mockTeachRepo) hydrate(t *model.Teach) model.Teach {
	out := *t
	out.Period, out.Level = nil, nil
	if t.PeriodID != nil {
		out.Period = m.db.periods[*t.PeriodID]
	}
	if t.LevelID != nil {
		out.Level = m.db.levels[*t.LevelID]
	}
	return out
}

func (m *mockTeachRepo) list(keep func(*model.Teach) bool) []model.Teach {
	var out []model.Teach
	for _, t := range m.db.teaches {
		if keep(t) {
			out = append(out, m.hydrate(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := 0, 0
		if out[i].Period != nil {
			pi = out[i].Period.Number
		}
		if out[j].Period != nil {
			pj = out[j].Period.Number
		}
		if pi != pj {
			return pi < pj
		}
		li, lj := 0, 0
		if out[i].Level != nil {
			li = out[i].Level.Number
		}
		if out[j].Level != nil {
			lj = out[j].Level.Number
		}
		return li < lj
	})
	return out
}

func (m *mockTeachRepo) BatchCreate(_ context.Context, teaches []model.Teach) error {
	for i := range teaches {
		if teaches[i].TeachID == "" {
			teaches[i].TeachID = m.db.nextID("teach")
		}
		t := teaches[i]
		t.Period, t.Level = nil, nil
		m.db.teaches[t.TeachID] = &t
	}
	return nil
}

func (m *mockTeachRepo) MaxGroupID(_ context.Context) (int, error) {
	max := 0
	for _, t := range m.db.teaches {
		if t.GroupID > max {
			max = t.GroupID
		}
	}
	return max, nil
}

func (m *mockTeachRepo) GetByID(_ context.Context, id string) (*model.Teach, error) {
	if t, ok := m.db.teaches[id]; ok {
		out := m.hydrate(t)
		return &out, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeachRepo) ListByNight(_ context.Context, nightID string) ([]model.Teach, error) {
	return m.list(func(t *model.Teach) bool { return t.NightID == nightID }), nil
}

func (m *mockTeachRepo) ListByNights(_ context.Context, nightIDs []string) ([]model.Teach, error) {
	return m.list(func(t *model.Teach) bool { return containsString(nightIDs, t.NightID) }), nil
}

func (m *mockTeachRepo) ListByGroup(_ context.Context, groupID int) ([]model.Teach, error) {
	return m.list(func(t *model.Teach) bool { return t.GroupID == groupID }), nil
}

func (m *mockTeachRepo) ListByGroups(_ context.Context, groupIDs []int) ([]model.Teach, error) {
	return m.list(func(t *model.Teach) bool { return containsInt(groupIDs, t.GroupID) }), nil
}

func (m *mockTeachRepo) ExistingGroups(_ context.Context, groupIDs []int) ([]int, error) {
	var out []int
	for _, t := range m.db.teaches {
		if containsInt(groupIDs, t.GroupID) && !containsInt(out, t.GroupID) {
			out = append(out, t.GroupID)
		}
	}
	return out, nil
}

func (m *mockTeachRepo) CountByContent(_ context.Context, contentType, contentID string) (int64, error) {
	var n int64
	for _, t := range m.db.teaches {
		if t.ContentType == contentType && t.ContentID != nil && *t.ContentID == contentID {
			n++
		}
	}
	return n, nil
}

func (m *mockTeachRepo) Update(_ context.Context, teach *model.Teach) error {
	stored, ok := m.db.teaches[teach.TeachID]
	if !ok || stored.Version != teach.Version {
		return pkgerrors.ErrOptimisticLock
	}
	teach.Version++
	t := *teach
	t.Period, t.Level = nil, nil
	if teach.ContentID != nil {
		id := *teach.ContentID
		t.ContentID = &id
	}
	m.db.teaches[t.TeachID] = &t
	return nil
}

func (m *mockTeachRepo) UpdatePlanByGroup(_ context.Context, groupID int, plan string, finished bool, _ string) error {
	for _, t := range m.db.teaches {
		if t.GroupID == groupID {
			t.Plan = plan
			t.Finished = finished
			t.Version++
		}
	}
	return nil
}

// ── Mock ContentRepository ──

type mockContentRepo struct{ db *memDB }

func (m *mockContentRepo) GetOrCreatePO(_ context.Context, code, title string) (*model.PerformanceObjective, error) {
	for _, po := range m.db.pos {
		if po.Code == code {
			return po, nil
		}
	}
	po := &model.PerformanceObjective{POID: m.db.nextID("po"), Code: code, Title: title}
	m.db.pos[po.POID] = po
	return po, nil
}

func (m *mockContentRepo) GetOrCreateLesson(_ context.Context, lesson *model.Lesson) (*model.Lesson, error) {
	code := strings.ToUpper(lesson.EOCode)
	for _, l := range m.db.lessons {
		if l.EOCode == code {
			out := *l
			out.PO = m.db.pos[l.POID]
			return &out, nil
		}
	}
	l := *lesson
	l.EOCode = code
	if l.LessonID == "" {
		l.LessonID = m.db.nextID("lesson")
	}
	m.db.lessons[l.LessonID] = &l
	out := l
	out.PO = m.db.pos[l.POID]
	return &out, nil
}

func (m *mockContentRepo) CreateActivity(_ context.Context, activity *model.Activity) error {
	if activity.ActivityID == "" {
		activity.ActivityID = m.db.nextID("activity")
	}
	if activity.Title == "" {
		activity.Title = model.DefaultActivityTitle
	}
	a := *activity
	m.db.activities[a.ActivityID] = &a
	return nil
}

func (m *mockContentRepo) CreateGeneric(_ context.Context, generic *model.GenericLesson) error {
	if generic.GenericLessonID == "" {
		generic.GenericLessonID = m.db.nextID("generic")
	}
	g := *generic
	m.db.generics[g.GenericLessonID] = &g
	return nil
}

func (m *mockContentRepo) ListLessonsByIDs(_ context.Context, ids []string) ([]model.Lesson, error) {
	var out []model.Lesson
	for _, id := range ids {
		if l, ok := m.db.lessons[id]; ok {
			c := *l
			c.PO = m.db.pos[l.POID]
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockContentRepo) ListActivitiesByIDs(_ context.Context, ids []string) ([]model.Activity, error) {
	var out []model.Activity
	for _, id := range ids {
		if a, ok := m.db.activities[id]; ok {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockContentRepo) ListGenericsByIDs(_ context.Context, ids []string) ([]model.GenericLesson, error) {
	var out []model.GenericLesson
	for _, id := range ids {
		if g, ok := m.db.generics[id]; ok {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (m *mockContentRepo) DeleteActivity(_ context.Context, id string) error {
	delete(m.db.activities, id)
	return nil
}

func (m *mockContentRepo) DeleteGeneric(_ context.Context, id string) error {
	delete(m.db.generics, id)
	return nil
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct{ db *memDB }

func (m *mockAssignmentRepo) senior(id string) *model.Senior {
	s, ok := m.db.seniors[id]
	if !ok {
		return nil
	}
	out := (&mockSeniorRepo{m.db}).hydrate(s)
	return &out
}

func (m *mockAssignmentRepo) teachWhere(keep func(a model.TeachAssignment) bool) []model.TeachAssignment {
	var out []model.TeachAssignment
	for _, a := range m.db.teachAssign {
		if keep(a) {
			a.Senior = m.senior(a.SeniorID)
			out = append(out, a)
		}
	}
	return out
}

func (m *mockAssignmentRepo) ListTeachByGroup(_ context.Context, groupID int) ([]model.TeachAssignment, error) {
	return m.teachWhere(func(a model.TeachAssignment) bool { return a.GroupID == groupID }), nil
}

func (m *mockAssignmentRepo) ListTeachByNight(_ context.Context, nightID string) ([]model.TeachAssignment, error) {
	return m.teachWhere(func(a model.TeachAssignment) bool { return a.NightID == nightID }), nil
}

func (m *mockAssignmentRepo) ListTeachByNights(_ context.Context, nightIDs []string) ([]model.TeachAssignment, error) {
	return m.teachWhere(func(a model.TeachAssignment) bool { return containsString(nightIDs, a.NightID) }), nil
}

func (m *mockAssignmentRepo) ListTeachBySeniorFrom(_ context.Context, seniorID string, from time.Time) ([]model.TeachAssignment, error) {
	return m.teachWhere(func(a model.TeachAssignment) bool {
		n, ok := m.db.nights[a.NightID]
		return a.SeniorID == seniorID && ok && !n.Date.Before(from)
	}), nil
}

func (m *mockAssignmentRepo) ReplaceTeach(_ context.Context, groupID int, items []model.TeachAssignment) error {
	var kept []model.TeachAssignment
	for _, a := range m.db.teachAssign {
		if a.GroupID != groupID {
			kept = append(kept, a)
		}
	}
	for _, it := range items {
		it.AssignmentID = m.db.nextID("ta")
		kept = append(kept, it)
	}
	m.db.teachAssign = kept
	return nil
}

func (m *mockAssignmentRepo) DeleteTeachByGroups(_ context.Context, groupIDs []int) error {
	var kept []model.TeachAssignment
	for _, a := range m.db.teachAssign {
		if !containsInt(groupIDs, a.GroupID) {
			kept = append(kept, a)
		}
	}
	m.db.teachAssign = kept
	return nil
}

func (m *mockAssignmentRepo) nightWhere(keep func(a model.NightAssignment) bool) []model.NightAssignment {
	var out []model.NightAssignment
	for _, a := range m.db.nightAssign {
		if keep(a) {
			a.Senior = m.senior(a.SeniorID)
			out = append(out, a)
		}
	}
	return out
}

func (m *mockAssignmentRepo) ListNightByNight(_ context.Context, nightID string) ([]model.NightAssignment, error) {
	return m.nightWhere(func(a model.NightAssignment) bool { return a.NightID == nightID }), nil
}

func (m *mockAssignmentRepo) ListNightBySeniorFrom(_ context.Context, seniorID string, from time.Time) ([]model.NightAssignment, error) {
	return m.nightWhere(func(a model.NightAssignment) bool {
		n, ok := m.db.nights[a.NightID]
		return a.SeniorID == seniorID && ok && !n.Date.Before(from)
	}), nil
}

func (m *mockAssignmentRepo) ReplaceNight(_ context.Context, nightID string, items []model.NightAssignment) error {
	var kept []model.NightAssignment
	for _, a := range m.db.nightAssign {
		if a.NightID != nightID {
			kept = append(kept, a)
		}
	}
	for _, it := range items {
		it.AssignmentID = m.db.nextID("na")
		kept = append(kept, it)
	}
	m.db.nightAssign = kept
	return nil
}

// ── Mock EmailRepository ──

type mockEmailRepo struct{ db *memDB }

func (m *mockEmailRepo) Create(_ context.Context, email *model.Email) error {
	if email.EmailID == "" {
		email.EmailID = m.db.nextID("email")
	}
	m.db.emails = append(m.db.emails, *email)
	return nil
}

func (m *mockEmailRepo) List(_ context.Context, status string, offset, limit int) ([]model.Email, int64, error) {
	var filtered []model.Email
	for _, e := range m.db.emails {
		if status == "" || e.Status == status {
			filtered = append(filtered, e)
		}
	}
	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

// [自证通过] internal/service/mock_repos_test.go
