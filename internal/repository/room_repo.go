package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Chnix17/janitorial-sub000/internal/model"
	pkgerrors "github.com/Chnix17/janitorial-sub000/pkg/errors"
)

// RoomRepository 楼层房间数据访问接口
type RoomRepository interface {
	// GetRoster 楼栋楼层及其房间（按房间号排序）；楼层不存在返回 ErrScopeNotFound
	GetRoster(ctx context.Context, scopeID string) (*model.BuildingFloor, error)
}

type roomRepo struct {
	db *gorm.DB
}

// NewRoomRepo 创建 RoomRepository 实例
func NewRoomRepo(db *gorm.DB) RoomRepository {
	return &roomRepo{db: db}
}

func (r *roomRepo) GetRoster(ctx context.Context, scopeID string) (*model.BuildingFloor, error) {
	var bf model.BuildingFloor
	err := r.db.WithContext(ctx).
		Preload("Building").
		Preload("Floor").
		Preload("Rooms", func(db *gorm.DB) *gorm.DB {
			return db.Order("room_number ASC")
		}).
		Where("building_floor_id = ?", scopeID).
		First(&bf).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrScopeNotFound
		}
		return nil, err
	}
	return &bf, nil
}
