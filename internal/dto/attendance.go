package dto

import "github.com/Chnix17/janitorial-sub000/internal/reconcile"

// ── 对账报表 ──

// RoomResponse 房间
type RoomResponse struct {
	RoomID       string `json:"room_id"`
	RoomNumber   string `json:"room_number"`
	BuildingName string `json:"building_name"`
	FloorName    string `json:"floor_name"`
}

// RosterResponse 楼层房间名单
type RosterResponse struct {
	ScopeID   string         `json:"scope_id"`
	RoomCount int            `json:"room_count"`
	Rooms     []RoomResponse `json:"rooms"`
}

// DayRecordResponse 单日记录
type DayRecordResponse struct {
	Date           string `json:"date"`
	TotalRooms     int    `json:"total_rooms"`
	InspectedRooms int    `json:"inspected_rooms"`
	MissedRooms    int    `json:"missed_rooms"`
}

// ChecklistItemResponse 检查项（Label 随展示场景不同）
type ChecklistItemResponse struct {
	ChecklistID string `json:"checklist_id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Label       string `json:"label"`
}

// MissedRoomResponse 漏检房间
type MissedRoomResponse struct {
	RoomResponse
	Checklist []ChecklistItemResponse `json:"checklist"`
}

// MissedGroupResponse 某日漏检
type MissedGroupResponse struct {
	Date  string               `json:"date"`
	Rooms []MissedRoomResponse `json:"rooms"`
}

// SummaryResponse 区间汇总
type SummaryResponse struct {
	DayCount       int     `json:"day_count"`
	RoomCount      int     `json:"room_count"`
	RoomsInspected int     `json:"rooms_inspected"`
	ExpectedRooms  int     `json:"expected_rooms"`
	InspectedDays  int     `json:"inspected_days"`
	ProgressPct    float64 `json:"progress_pct"`
}

// ReportResponse GET /assignments/:id/report
type ReportResponse struct {
	Assignment   AssignmentResponse    `json:"assignment"`
	Scope        RosterResponse        `json:"scope"`
	Days         []DayRecordResponse   `json:"days"`
	MissedGroups []MissedGroupResponse `json:"missed_groups"`
	Summary      SummaryResponse       `json:"summary"`
	FailedDays   []string              `json:"failed_days"`
	Warnings     []string              `json:"warnings"`
	GeneratedAt  string                `json:"generated_at"`
}

// MissedDetailRequest 单日漏检查询
type MissedDetailRequest struct {
	Date string `form:"date" binding:"required"`
}

// MissedDetailResponse GET /assignments/:id/missed
type MissedDetailResponse struct {
	AssignmentID string               `json:"assignment_id"`
	Date         string               `json:"date"`
	Rooms        []MissedRoomResponse `json:"rooms"`
}

// ── 活动视图 ──

// ActivityRequest 活动视图查询（view 取值由 Service 校验）
type ActivityRequest struct {
	View   string `form:"view"`
	UserID string `form:"user_id" binding:"omitempty,max=64"`
}

// ActivityDayResponse 单日已检数
type ActivityDayResponse struct {
	Date           string `json:"date"`
	InspectedCount int    `json:"inspected_count"`
}

// ActivityBucketResponse 周 / 月分组
type ActivityBucketResponse struct {
	Key         string                `json:"key"`
	Label       string                `json:"label"`
	PeriodStart string                `json:"period_start"`
	PeriodEnd   string                `json:"period_end"`
	TotalCount  int                   `json:"total_count"`
	Days        []ActivityDayResponse `json:"days"`
}

// ActivityResponse GET /activity
// daily 视图只填 Days，weekly / monthly 只填 Buckets
type ActivityResponse struct {
	UserID  string                   `json:"user_id"`
	View    reconcile.ActivityView   `json:"view"`
	Days    []ActivityDayResponse    `json:"days,omitempty"`
	Buckets []ActivityBucketResponse `json:"buckets,omitempty"`
}

// ── 单日巡检记录 ──

// InspectionsRequest 单日巡检记录查询
type InspectionsRequest struct {
	Date   string `form:"date"    binding:"required"`
	UserID string `form:"user_id" binding:"omitempty,max=64"`
}

// InspectionResponse 巡检记录（含派生状态）
type InspectionResponse struct {
	InspectionID   string                  `json:"inspection_id"`
	Room           RoomResponse            `json:"room"`
	InspectionDate string                  `json:"inspection_date"`
	Status         string                  `json:"status"`
	SubmittedAt    *string                 `json:"submitted_at"`
	Remarks        string                  `json:"remarks"`
	Items          []ChecklistItemResponse `json:"items"`
}
