package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Chnix17/janitorial-sub000/internal/model"
)

// AssignmentFilter 任务列表过滤条件（零值字段不参与过滤）
type AssignmentFilter struct {
	UserID   string
	ScopeID  string
	ActiveOn *time.Time // start_date <= ActiveOn <= end_date
	Offset   int
	Limit    int
}

// AssignmentRepository 巡检任务数据访问接口
type AssignmentRepository interface {
	GetByID(ctx context.Context, id string) (*model.Assignment, error)
	List(ctx context.Context, filter AssignmentFilter) ([]model.Assignment, int64, error)
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo 创建 AssignmentRepository 实例
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("AssignedUser").
		Preload("BuildingFloor.Building").
		Preload("BuildingFloor.Floor")
}

func (r *assignmentRepo) GetByID(ctx context.Context, id string) (*model.Assignment, error) {
	var a model.Assignment
	err := r.withRelations(r.db.WithContext(ctx)).
		Where("assignment_id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepo) List(ctx context.Context, filter AssignmentFilter) ([]model.Assignment, int64, error) {
	var list []model.Assignment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Assignment{})
	if filter.UserID != "" {
		db = db.Where("assigned_user_id = ?", filter.UserID)
	}
	if filter.ScopeID != "" {
		db = db.Where("building_floor_id = ?", filter.ScopeID)
	}
	if filter.ActiveOn != nil {
		d := sqlDate(*filter.ActiveOn)
		db = db.Where("start_date <= ?::date AND end_date >= ?::date", d, d)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := r.withRelations(db).Order("start_date DESC, created_at DESC")
	if filter.Limit > 0 {
		q = q.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}
