package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Chnix17/janitorial-sub000/config"
	"github.com/Chnix17/janitorial-sub000/internal/dto"
	"github.com/Chnix17/janitorial-sub000/internal/model"
	"github.com/Chnix17/janitorial-sub000/internal/reconcile"
	"github.com/Chnix17/janitorial-sub000/internal/repository"
)

// ── 考勤模块业务错误 ──

var (
	ErrInvalidView    = errors.New("视图参数无效，可选 daily / weekly / monthly")
	ErrDateOutOfRange = errors.New("日期不在任务区间内")
)

// AttendanceService 巡检考勤查询接口
//
// 所有结果按请求实时计算，不落库不缓存。
type AttendanceService interface {
	ListAssignments(ctx context.Context, viewer Viewer, req *dto.AssignmentListRequest) ([]dto.AssignmentResponse, int64, error)
	GetAssignment(ctx context.Context, viewer Viewer, id string) (*dto.AssignmentResponse, error)
	// GetAssignmentReport 区间对账：每日记录、漏检分组与汇总
	GetAssignmentReport(ctx context.Context, viewer Viewer, id string) (*dto.ReportResponse, error)
	// GetMissedRoomDetail 单日漏检房间与检查项快照
	GetMissedRoomDetail(ctx context.Context, viewer Viewer, id, date string) (*dto.MissedDetailResponse, error)
	// GetActivity 用户全部巡检历史的日 / 周 / 月视图
	GetActivity(ctx context.Context, viewer Viewer, req *dto.ActivityRequest) (*dto.ActivityResponse, error)
	// GetInspectionsOnDate 用户某日的巡检记录及派生状态
	GetInspectionsOnDate(ctx context.Context, viewer Viewer, req *dto.InspectionsRequest) ([]dto.InspectionResponse, error)
}

type attendanceService struct {
	rc     *reconciler
	logger *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(cfg *config.ReconcileConfig, repo *repository.Repository, logger *zap.Logger) AttendanceService {
	return &attendanceService{rc: newReconciler(cfg, repo, logger), logger: logger}
}

func (s *attendanceService) ListAssignments(ctx context.Context, viewer Viewer, req *dto.AssignmentListRequest) ([]dto.AssignmentResponse, int64, error) {
	target := req.UserID
	if !viewer.CanViewAll() {
		var err error
		if target, err = viewer.resolveTarget(req.UserID); err != nil {
			return nil, 0, err
		}
	}

	filter := repository.AssignmentFilter{
		UserID:  target,
		ScopeID: req.ScopeID,
		Offset:  req.GetOffset(),
		Limit:   req.GetPageSize(),
	}
	if req.ActiveOn != "" {
		d, ok := reconcile.ParseDate(req.ActiveOn)
		if !ok {
			return nil, 0, ErrInvalidDate
		}
		filter.ActiveOn = &d
	}

	list, total, err := s.rc.repo.Assignment.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询巡检任务列表失败", zap.Error(err))
		return nil, 0, err
	}

	out := make([]dto.AssignmentResponse, 0, len(list))
	for i := range list {
		out = append(out, toAssignmentResponse(&list[i]))
	}
	return out, total, nil
}

func (s *attendanceService) GetAssignment(ctx context.Context, viewer Viewer, id string) (*dto.AssignmentResponse, error) {
	a, err := s.rc.loadAssignment(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	resp := toAssignmentResponse(a)
	return &resp, nil
}

func (s *attendanceService) GetAssignmentReport(ctx context.Context, viewer Viewer, id string) (*dto.ReportResponse, error) {
	a, report, err := s.rc.run(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if len(report.Warnings) > 0 {
		s.logger.Info("对账结果含降级提示",
			zap.String("assignment_id", id),
			zap.Strings("warnings", report.Warnings),
		)
	}
	return toReportResponse(a, report, s.rc.engine.Now()), nil
}

func (s *attendanceService) GetMissedRoomDetail(ctx context.Context, viewer Viewer, id, date string) (*dto.MissedDetailResponse, error) {
	day, ok := reconcile.ParseDate(date)
	if !ok {
		return nil, ErrInvalidDate
	}

	a, err := s.rc.loadAssignment(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if day.Before(reconcile.Day(a.StartDate)) || day.After(reconcile.Day(a.EndDate)) {
		return nil, ErrDateOutOfRange
	}

	rooms, err := s.rc.sources.GetMissedRooms(ctx, a.AssignedUserID, a.BuildingFloorID, day)
	if err != nil {
		s.logger.Error("查询漏检房间失败",
			zap.String("assignment_id", id),
			zap.String("date", reconcile.FormatDate(day)),
			zap.Error(err),
		)
		return nil, err
	}

	return &dto.MissedDetailResponse{
		AssignmentID: a.AssignmentID,
		Date:         reconcile.FormatDate(day),
		Rooms:        toMissedRooms(rooms),
	}, nil
}

func (s *attendanceService) GetActivity(ctx context.Context, viewer Viewer, req *dto.ActivityRequest) (*dto.ActivityResponse, error) {
	view, ok := reconcile.ParseActivityView(req.View)
	if !ok {
		return nil, ErrInvalidView
	}
	target, err := viewer.resolveTarget(req.UserID)
	if err != nil {
		return nil, err
	}
	if target != viewer.UserID {
		if _, err := s.rc.ensureUser(ctx, target); err != nil {
			return nil, err
		}
	}

	history, err := s.rc.sources.GetInspectionHistory(ctx, target)
	if err != nil {
		s.logger.Error("查询巡检历史失败", zap.String("user_id", target), zap.Error(err))
		return nil, err
	}

	resp := &dto.ActivityResponse{UserID: target, View: view}
	switch view {
	case reconcile.ViewWeekly:
		resp.Buckets = toBuckets(reconcile.WeeklyBuckets(history))
	case reconcile.ViewMonthly:
		resp.Buckets = toBuckets(reconcile.MonthlyBuckets(history))
	default:
		resp.Days = toActivityDays(reconcile.DailyView(history))
	}
	return resp, nil
}

func (s *attendanceService) GetInspectionsOnDate(ctx context.Context, viewer Viewer, req *dto.InspectionsRequest) ([]dto.InspectionResponse, error) {
	day, ok := reconcile.ParseDate(req.Date)
	if !ok {
		return nil, ErrInvalidDate
	}
	target, err := viewer.resolveTarget(req.UserID)
	if err != nil {
		return nil, err
	}

	list, err := s.rc.repo.Inspection.ListByUserAndDate(ctx, target, day)
	if err != nil {
		s.logger.Error("查询巡检记录失败",
			zap.String("user_id", target),
			zap.String("date", reconcile.FormatDate(day)),
			zap.Error(err),
		)
		return nil, err
	}

	now := s.rc.engine.Now()
	out := make([]dto.InspectionResponse, 0, len(list))
	for i := range list {
		out = append(out, toInspectionResponse(&list[i], now))
	}
	return out, nil
}

// ── 转换函数 ──

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func toAssignmentResponse(a *model.Assignment) dto.AssignmentResponse {
	resp := dto.AssignmentResponse{
		ID:        a.AssignmentID,
		StartDate: reconcile.FormatDate(a.StartDate),
		EndDate:   reconcile.FormatDate(a.EndDate),
		CreatedAt: formatTime(a.CreatedAt),
	}
	if a.CreatedBy != nil {
		resp.CreatedBy = *a.CreatedBy
	}
	if a.AssignedUser != nil {
		resp.AssignedUser = &dto.UserBrief{
			ID:        a.AssignedUser.UserID,
			Name:      a.AssignedUser.Name,
			StudentID: a.AssignedUser.StudentID,
		}
	}
	building, floor := scopeNames(a.BuildingFloor)
	resp.Scope = &dto.ScopeResponse{ID: a.BuildingFloorID, BuildingName: building, FloorName: floor}
	return resp
}

func toRoomResponse(r reconcile.RoomRef) dto.RoomResponse {
	return dto.RoomResponse{
		RoomID:       r.RoomID,
		RoomNumber:   r.RoomNumber,
		BuildingName: r.BuildingName,
		FloorName:    r.FloorName,
	}
}

func toChecklistItem(id, name string, flag *int, ctx reconcile.LabelContext) dto.ChecklistItemResponse {
	st := reconcile.ItemStatusOf(flag)
	return dto.ChecklistItemResponse{
		ChecklistID: id,
		Name:        name,
		Status:      st.String(),
		Label:       st.Label(ctx),
	}
}

func toMissedRooms(rooms []reconcile.MissedRoomEntry) []dto.MissedRoomResponse {
	out := make([]dto.MissedRoomResponse, 0, len(rooms))
	for _, r := range rooms {
		items := make([]dto.ChecklistItemResponse, 0, len(r.Checklist))
		for _, c := range r.Checklist {
			items = append(items, toChecklistItem(c.ChecklistID, c.ChecklistName, c.OperationIsFunctional, reconcile.MissedRoomContext))
		}
		out = append(out, dto.MissedRoomResponse{RoomResponse: toRoomResponse(r.Room), Checklist: items})
	}
	return out
}

func toReportResponse(a *model.Assignment, r *reconcile.Report, generatedAt time.Time) *dto.ReportResponse {
	rooms := make([]dto.RoomResponse, 0, len(r.Scope.Rooms))
	for _, room := range r.Scope.Rooms {
		rooms = append(rooms, toRoomResponse(room))
	}

	days := make([]dto.DayRecordResponse, 0, len(r.Days))
	for _, d := range r.Days {
		days = append(days, dto.DayRecordResponse{
			Date:           reconcile.FormatDate(d.Date),
			TotalRooms:     d.TotalRooms,
			InspectedRooms: d.InspectedRooms,
			MissedRooms:    d.MissedRooms,
		})
	}

	groups := make([]dto.MissedGroupResponse, 0, len(r.MissedGroups))
	for _, g := range r.MissedGroups {
		groups = append(groups, dto.MissedGroupResponse{Date: reconcile.FormatDate(g.Date), Rooms: toMissedRooms(g.Rooms)})
	}

	failed := make([]string, 0, len(r.FailedDays))
	for _, d := range r.FailedDays {
		failed = append(failed, reconcile.FormatDate(d))
	}

	warnings := r.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	return &dto.ReportResponse{
		Assignment:   toAssignmentResponse(a),
		Scope:        dto.RosterResponse{ScopeID: r.Scope.ScopeID, RoomCount: r.Scope.RoomCount, Rooms: rooms},
		Days:         days,
		MissedGroups: groups,
		Summary: dto.SummaryResponse{
			DayCount:       r.Summary.DayCount,
			RoomCount:      r.Summary.RoomCount,
			RoomsInspected: r.Summary.RoomsInspected,
			ExpectedRooms:  r.Summary.ExpectedRooms,
			InspectedDays:  r.Summary.InspectedDays,
			ProgressPct:    r.Summary.ProgressPct,
		},
		FailedDays:  failed,
		Warnings:    warnings,
		GeneratedAt: formatTime(generatedAt),
	}
}

func toActivityDays(entries []reconcile.DailyHistoryEntry) []dto.ActivityDayResponse {
	out := make([]dto.ActivityDayResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.ActivityDayResponse{Date: reconcile.FormatDate(e.Date), InspectedCount: e.InspectedCount})
	}
	return out
}

func toBuckets(buckets []reconcile.ActivityBucket) []dto.ActivityBucketResponse {
	out := make([]dto.ActivityBucketResponse, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, dto.ActivityBucketResponse{
			Key:         b.Key,
			Label:       b.Label,
			PeriodStart: reconcile.FormatDate(b.PeriodStart),
			PeriodEnd:   reconcile.FormatDate(b.PeriodEnd),
			TotalCount:  b.TotalCount,
			Days:        toActivityDays(b.Days),
		})
	}
	return out
}

func toInspectionResponse(ins *model.Inspection, now time.Time) dto.InspectionResponse {
	resp := dto.InspectionResponse{
		InspectionID:   ins.InspectionID,
		InspectionDate: reconcile.FormatDate(ins.InspectionDate),
		Status:         reconcile.InspectionStatus(ins.Status, ins.SubmittedAt, ins.InspectionDate, now),
		Remarks:        ins.Remarks,
	}
	if ins.SubmittedAt != nil {
		s := formatTime(*ins.SubmittedAt)
		resp.SubmittedAt = &s
	}
	if ins.Room != nil {
		building, floor := scopeNames(ins.Room.BuildingFloor)
		resp.Room = dto.RoomResponse{
			RoomID:       ins.Room.RoomID,
			RoomNumber:   ins.Room.RoomNumber,
			BuildingName: building,
			FloorName:    floor,
		}
	} else {
		resp.Room = dto.RoomResponse{RoomID: ins.RoomID}
	}

	items := make([]model.InspectionItem, len(ins.Items))
	copy(items, ins.Items)
	sort.SliceStable(items, func(i, j int) bool {
		return checklistOrder(items[i]) < checklistOrder(items[j])
	})
	resp.Items = make([]dto.ChecklistItemResponse, 0, len(items))
	for _, it := range items {
		name := ""
		if it.Checklist != nil {
			name = it.Checklist.Name
		}
		resp.Items = append(resp.Items, toChecklistItem(it.ChecklistID, name, it.OperationIsFunctional, reconcile.SubmittedContext))
	}
	return resp
}

func checklistOrder(it model.InspectionItem) int {
	if it.Checklist == nil {
		return 0
	}
	return it.Checklist.SortOrder
}

// [自证通过] internal/service/attendance_service.go
