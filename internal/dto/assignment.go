package dto

// ── 巡检任务 ──

// AssignmentListRequest 任务列表查询
// UserID 仅管理员 / 巡检员可指定，学生固定为本人
type AssignmentListRequest struct {
	PaginationRequest
	UserID   string `form:"user_id"   binding:"omitempty,max=64"`
	ScopeID  string `form:"scope_id"  binding:"omitempty,max=64"`
	ActiveOn string `form:"active_on" binding:"omitempty,datetime=2006-01-02"`
}

// ScopeResponse 巡检楼层
type ScopeResponse struct {
	ID           string `json:"id"`
	BuildingName string `json:"building_name"`
	FloorName    string `json:"floor_name"`
}

// AssignmentResponse 任务信息
type AssignmentResponse struct {
	ID           string         `json:"id"`
	AssignedUser *UserBrief     `json:"assigned_user,omitempty"`
	Scope        *ScopeResponse `json:"scope,omitempty"`
	StartDate    string         `json:"start_date"`
	EndDate      string         `json:"end_date"`
	CreatedBy    string         `json:"created_by"`
	CreatedAt    string         `json:"created_at"`
}
