package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/redmac135/banshee-training/internal/dto"
	"github.com/redmac135/banshee-training/internal/model"
)

func setupTestNightService(t *testing.T) (NightService, *fixture) {
	f := newFixture(t)
	return NewNightService(f.repo, f.clock, zap.NewNop()), f
}

// ── 创建 ──

func TestNightCreate_TeachLayout(t *testing.T) {
	svc, f := setupTestNightService(t)

	night, err := svc.Create(context.Background(), &dto.CreateNightRequest{Date: "2026-10-21", P1: 0, P2: 1, P3: 2}, Caller{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if len(night.Periods) != 3 {
		t.Fatalf("期望 3 个时段，实际 %d", len(night.Periods))
	}
	wantKinds := []string{model.PeriodKindLesson, model.PeriodKindActivity, model.PeriodKindBlank}
	for i, p := range night.Periods {
		if p.Kind != wantKinds[i] || p.Number != i+1 {
			t.Errorf("时段 %d 不符: %+v", i+1, p)
		}
	}

	// 课程时段 4 格 + 活动时段 4 格 + 主课程 1 格
	if len(f.db.teaches) != 9 {
		t.Errorf("期望 9 个课表格，实际 %d", len(f.db.teaches))
	}

	// 课程时段每级别独立 teach id，活动时段共享
	p1 := map[int]bool{}
	for _, lvl := range []int{1, 2, 3, 4} {
		p1[f.groupAt(night.ID, 1, lvl)] = true
	}
	if len(p1) != 4 {
		t.Errorf("课程时段应有 4 个 teach id，实际 %d", len(p1))
	}
	activity := f.groupAt(night.ID, 2, 1)
	for _, lvl := range []int{2, 3, 4} {
		if f.groupAt(night.ID, 2, lvl) != activity {
			t.Error("活动时段所有级别应共享 teach id")
		}
	}
	if night.MasterTeachID != 6 {
		t.Errorf("主课程 teach id 应排在最后（6），实际 %d", night.MasterTeachID)
	}
	for _, teach := range f.db.teaches {
		if !teach.IsEmpty() {
			t.Error("新建的课表格应为空课程")
		}
	}
}

func TestNightCreate_GroupIDsContinue(t *testing.T) {
	_, f := setupTestNightService(t)
	first := f.createNight("2026-10-21", 0, 0, 0)
	second := f.createNight("2026-10-28", 2, 2, 2)

	if first.MasterTeachID != 13 {
		t.Errorf("第一个训练夜主课程应为 13，实际 %d", first.MasterTeachID)
	}
	if second.MasterTeachID != 14 {
		t.Errorf("全空白训练夜只有主课程，期望 14，实际 %d", second.MasterTeachID)
	}
}

func TestNightCreate_Rejections(t *testing.T) {
	svc, f := setupTestNightService(t)
	f.createNight("2026-10-21", 0, 0, 0)

	_, err := svc.Create(context.Background(), &dto.CreateNightRequest{Date: "2026-10-21"}, Caller{})
	if !errors.Is(err, ErrNightDateTaken) {
		t.Errorf("期望 ErrNightDateTaken，实际: %v", err)
	}
	_, err = svc.Create(context.Background(), &dto.CreateNightRequest{Date: "21/10/2026"}, Caller{})
	if !errors.Is(err, ErrInvalidNightDate) {
		t.Errorf("期望 ErrInvalidNightDate，实际: %v", err)
	}
	_, err = svc.Create(context.Background(), &dto.CreateNightRequest{Date: "2026-11-04", P2: 7}, Caller{})
	if !errors.Is(err, ErrInvalidPeriodOption) {
		t.Errorf("期望 ErrInvalidPeriodOption，实际: %v", err)
	}
}

func TestNightCreate_ConcurrentSameDate(t *testing.T) {
	svc, f := setupTestNightService(t)
	f.db.beforeNightCreate = func(date time.Time) {
		f.db.beforeNightCreate = nil
		f.db.nights["night-racer"] = &model.TrainingNight{NightID: "night-racer", Date: date}
	}

	_, err := svc.Create(context.Background(), &dto.CreateNightRequest{Date: "2026-10-21"}, Caller{})
	if !errors.Is(err, ErrNightDateTaken) {
		t.Fatalf("唯一约束冲突应映射为 ErrNightDateTaken，实际: %v", err)
	}
	if len(f.db.nights) != 1 || len(f.db.teaches) != 0 {
		t.Errorf("冲突后不应写入时段或课程: %d 个训练夜, %d 个课表格", len(f.db.nights), len(f.db.teaches))
	}
}

// ── 查询 ──

func TestNightList_ByMonth(t *testing.T) {
	svc, f := setupTestNightService(t)
	f.createNight("2026-10-07", 0, 0, 0)
	f.createNight("2026-10-21", 0, 1, 0)
	f.createNight("2026-11-04", 0, 0, 0)

	list, err := svc.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(list) != 2 || list[0].Date != "2026-10-07" || list[1].Date != "2026-10-21" {
		t.Errorf("当月训练夜不符: %+v", list)
	}

	list, _ = svc.List(context.Background(), "2026-11")
	if len(list) != 1 {
		t.Errorf("11 月应有 1 个训练夜，实际 %d", len(list))
	}

	if _, err := svc.List(context.Background(), "2026-13"); err == nil {
		t.Error("非法月份应返回错误")
	}
}

// ── 删除 ──

func TestNightDelete_CascadesAndCleansContent(t *testing.T) {
	svc, f := setupTestNightService(t)
	night := f.createNight("2026-10-21", 0, 1, 0)
	inst := f.addSenior("inst", 5, model.PermissionInstructor)

	teachSvc := NewTeachService(f.repo, nil, nil, f.clock, zap.NewNop())
	activityGroup := f.groupAt(night.ID, 2, 1)
	if _, err := teachSvc.Save(context.Background(), night.ID, &dto.SaveTeachRequest{
		Form:    model.ContentActivity,
		TeachID: &activityGroup,
		Slots:   []dto.SlotRequest{slot(f, 2, 1), slot(f, 2, 2), slot(f, 2, 3), slot(f, 2, 4)},
		Title:   "Sports Night",
	}, Caller{}); err != nil {
		t.Fatalf("保存活动失败: %v", err)
	}
	f.db.teachAssign = append(f.db.teachAssign, model.TeachAssignment{
		NightID: night.ID, GroupID: activityGroup, SeniorID: inst.SeniorID, Role: model.InstructorInChargeRole,
	})
	if len(f.db.activities) != 1 {
		t.Fatalf("期望 1 个活动，实际 %d", len(f.db.activities))
	}

	if err := svc.DeleteByDate(context.Background(), "2026-10-21", Caller{}); err != nil {
		t.Fatalf("DeleteByDate 应成功: %v", err)
	}
	if len(f.db.teaches) != 0 || len(f.db.periods) != 0 || len(f.db.teachAssign) != 0 {
		t.Error("课表格、时段与分配应随训练夜一并删除")
	}
	if len(f.db.activities) != 0 {
		t.Error("无引用的活动应被清理")
	}

	if err := svc.Delete(context.Background(), night.ID, Caller{}); !errors.Is(err, ErrNightNotFound) {
		t.Errorf("期望 ErrNightNotFound，实际: %v", err)
	}
}

// ── 课表 ──

func TestNightSchedule_MergesGroups(t *testing.T) {
	svc, f := setupTestNightService(t)
	night := f.createNight("2026-10-21", 0, 1, 2)

	teachSvc := NewTeachService(f.repo, nil, nil, f.clock, zap.NewNop())
	if _, err := teachSvc.Save(context.Background(), night.ID, &dto.SaveTeachRequest{
		Form:     model.ContentLesson,
		Slots:    []dto.SlotRequest{slot(f, 1, 1), slot(f, 1, 2)},
		EOCode:   "m409.01",
		Title:    "Drill",
		Location: "Gym",
	}, Caller{}); err != nil {
		t.Fatalf("保存课程失败: %v", err)
	}

	sched, err := svc.GetSchedule(context.Background(), night.ID, ViewSchedule)
	if err != nil {
		t.Fatalf("GetSchedule 应成功: %v", err)
	}
	if sched.Title.Month != "October" || sched.Title.Day != 21 || sched.Title.Weekday != "Wednesday" {
		t.Errorf("标题不符: %+v", sched.Title)
	}
	if len(sched.Rows) != 3 || len(sched.Levels) != 4 {
		t.Fatalf("期望 3 行 4 列，实际 %d 行 %d 列", len(sched.Rows), len(sched.Levels))
	}

	p1 := sched.Rows[0].Cells
	if len(p1) != 3 || p1[0].ColSpan != 2 {
		t.Fatalf("P1 前两格应合并，实际 %+v", p1)
	}
	if p1[0].Content.Label != "M409.01 Drill" || p1[0].Location != "Gym" {
		t.Errorf("合并格内容不符: %+v", p1[0])
	}
	if p1[1].Content.Type != model.ContentEmpty || p1[1].Content.Label != model.UnassignedLabel {
		t.Errorf("未安排的格应显示 UNASSIGNED，实际 %+v", p1[1].Content)
	}

	p2 := sched.Rows[1].Cells
	if len(p2) != 1 || p2[0].ColSpan != 4 {
		t.Errorf("活动时段应合并为一格，实际 %+v", p2)
	}

	p3 := sched.Rows[2].Cells
	if len(p3) != 4 || p3[0].TeachID != 0 || p3[0].Content.Type != contentBlank {
		t.Errorf("空白时段应为 4 个空白格，实际 %+v", p3)
	}
}

func TestNightSchedule_EditAndDueViews(t *testing.T) {
	svc, f := setupTestNightService(t)
	night := f.createNight("2026-10-21", 0, 0, 0)

	teachSvc := NewTeachService(f.repo, nil, nil, f.clock, zap.NewNop())
	if _, err := teachSvc.Save(context.Background(), night.ID, &dto.SaveTeachRequest{
		Form:  model.ContentGeneric,
		Slots:  []dto.SlotRequest{slot(f, 1, 1), slot(f, 2, 1)},
		Title: "Band",
	}, Caller{}); err != nil {
		t.Fatalf("保存失败: %v", err)
	}

	edit, err := svc.GetSchedule(context.Background(), night.ID, ViewEdit)
	if err != nil {
		t.Fatalf("edit 视图失败: %v", err)
	}
	if got := edit.Rows[0].Cells[0].Slots; len(got) != 2 || got[0].Period != 1 || got[1].Period != 2 {
		t.Errorf("edit 视图应列出跨时段的全部格，实际 %+v", got)
	}

	due, err := svc.GetSchedule(context.Background(), night.ID, ViewDue)
	if err != nil {
		t.Fatalf("due 视图失败: %v", err)
	}
	if due.DueDate != "2026-10-14" {
		t.Errorf("期望截止日 2026-10-14，实际 %s", due.DueDate)
	}
	if due.Rows[0].Cells[0].PlanStatus != PlanPending {
		t.Errorf("期望 pending，实际 %s", due.Rows[0].Cells[0].PlanStatus)
	}
	if due.Rows[0].Cells[1].PlanStatus != PlanUnassigned {
		t.Errorf("空课程应为 unassigned，实际 %s", due.Rows[0].Cells[1].PlanStatus)
	}
}

// ── 请假 ──

func TestNightExcused(t *testing.T) {
	svc, f := setupTestNightService(t)
	night := f.createNight("2026-10-21", 0, 0, 0)
	a := f.addSenior("alpha", 5, model.PermissionInstructor)

	got, err := svc.SetExcused(context.Background(), night.ID, []string{a.SeniorID, a.SeniorID})
	if err != nil {
		t.Fatalf("SetExcused 应成功: %v", err)
	}
	if len(got.Seniors) != 1 {
		t.Errorf("重复 id 应去重，实际 %d", len(got.Seniors))
	}

	list, _ := svc.GetExcused(context.Background(), night.ID)
	if len(list.Seniors) != 1 || list.Seniors[0].ID != a.SeniorID {
		t.Errorf("请假名单不符: %+v", list.Seniors)
	}

	if _, err := svc.SetExcused(context.Background(), night.ID, []string{"ghost"}); !errors.Is(err, ErrSeniorNotFound) {
		t.Errorf("期望 ErrSeniorNotFound，实际: %v", err)
	}
	if _, err := svc.GetExcused(context.Background(), "missing"); !errors.Is(err, ErrNightNotFound) {
		t.Errorf("期望 ErrNightNotFound，实际: %v", err)
	}
}

// [自证通过] internal/service/night_service_test.go
