// Package reconcile 巡检考勤对账引擎
//
// 输入一条巡检任务（某学生在日期区间内负责某楼层），按自然日重建
// 每天已检 / 漏检房间，并汇总为区间统计与活动视图（日 / 周 / 月）。
// 引擎只读外部记录库，不持有跨请求状态。
package reconcile

import (
	"context"
	"time"
)

// ── 外部只读数据 ──

// Assignment 巡检任务（由管理员创建，引擎只读）
type Assignment struct {
	ID             string
	AssignedUserID string
	ScopeID        string // 楼栋内楼层
	StartDate      time.Time
	EndDate        time.Time
	CreatedBy      string
}

// RoomRef 房间引用
type RoomRef struct {
	RoomID       string `json:"room_id"`
	RoomNumber   string `json:"room_number"`
	BuildingName string `json:"building_name"`
	FloorName    string `json:"floor_name"`
}

// RoomScope 楼层房间名单
type RoomScope struct {
	ScopeID   string
	RoomCount int
	Rooms     []RoomRef
}

// DailyHistoryEntry 某日已检房间数（稀疏序列，缺失即为 0）
type DailyHistoryEntry struct {
	Date           time.Time `json:"date"`
	InspectedCount int       `json:"inspected_count"`
}

// ChecklistSnapshotItem 检查项快照
// OperationIsFunctional: nil=未填写, 0=异常, 1=正常
type ChecklistSnapshotItem struct {
	ChecklistID           string `json:"checklist_id"`
	ChecklistName         string `json:"checklist_name"`
	OperationIsFunctional *int   `json:"operation_is_functional"`
}

// MissedRoomEntry 当天没有完成巡检的房间
type MissedRoomEntry struct {
	Room      RoomRef                 `json:"room"`
	Checklist []ChecklistSnapshotItem `json:"checklist"`
}

// ── 派生结果（每次请求重新计算，不落库） ──

// DayRecord 单日记录
//
// InspectedRooms 与 MissedRooms 来自两条独立的数据源，
// 二者之和不保证等于 TotalRooms。
type DayRecord struct {
	Date           time.Time
	TotalRooms     int
	InspectedRooms int
	MissedRooms    int
}

// MissedGroup 某日漏检房间分组（Rooms 非空才会出现）
type MissedGroup struct {
	Date  time.Time
	Rooms []MissedRoomEntry
}

// RangeSummary 区间汇总
type RangeSummary struct {
	DayCount       int
	RoomCount      int
	RoomsInspected int
	ExpectedRooms  int
	InspectedDays  int
	ProgressPct    float64
}

// Report 一次对账的完整结果
type Report struct {
	Assignment   Assignment
	Scope        RoomScope
	Days         []DayRecord   // 按日期降序
	MissedGroups []MissedGroup // 按日期降序
	Summary      RangeSummary
	FailedDays   []time.Time // 漏检查询失败的日期（升序）
	Warnings     []string
}

// ── 数据源接口 ──

// RosterSource 楼层房间名单
type RosterSource interface {
	GetRoomRoster(ctx context.Context, scopeID string) (RoomScope, error)
}

// HistorySource 用户全部巡检历史（区间过滤由调用方负责）
type HistorySource interface {
	GetInspectionHistory(ctx context.Context, userID string) ([]DailyHistoryEntry, error)
}

// MissedRoomSource 用户 + 楼层 + 单日 的漏检房间
type MissedRoomSource interface {
	GetMissedRooms(ctx context.Context, userID, scopeID string, date time.Time) ([]MissedRoomEntry, error)
}

// RosterFunc 函数适配为 RosterSource
type RosterFunc func(ctx context.Context, scopeID string) (RoomScope, error)

func (f RosterFunc) GetRoomRoster(ctx context.Context, scopeID string) (RoomScope, error) {
	return f(ctx, scopeID)
}

// HistoryFunc 函数适配为 HistorySource
type HistoryFunc func(ctx context.Context, userID string) ([]DailyHistoryEntry, error)

func (f HistoryFunc) GetInspectionHistory(ctx context.Context, userID string) ([]DailyHistoryEntry, error) {
	return f(ctx, userID)
}

// MissedRoomFunc 函数适配为 MissedRoomSource
type MissedRoomFunc func(ctx context.Context, userID, scopeID string, date time.Time) ([]MissedRoomEntry, error)

func (f MissedRoomFunc) GetMissedRooms(ctx context.Context, userID, scopeID string, date time.Time) ([]MissedRoomEntry, error) {
	return f(ctx, userID, scopeID, date)
}
