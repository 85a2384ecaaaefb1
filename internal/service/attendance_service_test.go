package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Chnix17/janitorial-sub000/config"
	"github.com/Chnix17/janitorial-sub000/internal/dto"
	"github.com/Chnix17/janitorial-sub000/internal/model"
)

// ── 测试辅助 ──

func testReconcileConfig() *config.ReconcileConfig {
	return &config.ReconcileConfig{MaxConcurrent: 4, MissedRetry: 1, Timezone: "UTC"}
}

func setupTestAttendanceService() (AttendanceService, *mockRepos) {
	repo, m := newMockRepos()
	seedScenario(m)
	return NewAttendanceService(testReconcileConfig(), repo, zap.NewNop()), m
}

var (
	studentViewer   = Viewer{UserID: "stu-1", Role: model.RoleStudent}
	otherStudent    = Viewer{UserID: "stu-2", Role: model.RoleStudent}
	inspectorViewer = Viewer{UserID: "insp-1", Role: model.RoleInspector}
)

// ── GetAssignmentReport ──

func TestAttendanceService_GetAssignmentReport_Scenario(t *testing.T) {
	svc, m := setupTestAttendanceService()

	resp, err := svc.GetAssignmentReport(context.Background(), studentViewer, "asg-1")
	if err != nil {
		t.Fatalf("GetAssignmentReport 应成功: %v", err)
	}

	if resp.Scope.RoomCount != 5 {
		t.Errorf("期望 5 个房间，实际 %d", resp.Scope.RoomCount)
	}
	if len(resp.Days) != 3 {
		t.Fatalf("期望 3 天，实际 %d", len(resp.Days))
	}
	if resp.Days[0].Date != "2024-06-03" || resp.Days[2].Date != "2024-06-01" {
		t.Errorf("每日记录应按日期倒序: %+v", resp.Days)
	}
	if resp.Days[2].InspectedRooms != 3 || resp.Days[2].MissedRooms != 2 {
		t.Errorf("06-01 期望 已检3 漏检2，实际 %+v", resp.Days[2])
	}
	// 06-03 查询失败：漏检按 0 计
	if resp.Days[0].MissedRooms != 0 || resp.Days[0].InspectedRooms != 0 {
		t.Errorf("06-03 期望全 0，实际 %+v", resp.Days[0])
	}

	if len(resp.MissedGroups) != 1 || resp.MissedGroups[0].Date != "2024-06-01" {
		t.Errorf("期望只有 06-01 一个漏检分组，实际 %+v", resp.MissedGroups)
	}

	sum := resp.Summary
	if sum.RoomsInspected != 8 || sum.ExpectedRooms != 15 || sum.InspectedDays != 2 {
		t.Errorf("汇总错误: %+v", sum)
	}
	if sum.ProgressPct != 53.33 {
		t.Errorf("期望完成率 53.33，实际 %v", sum.ProgressPct)
	}

	if len(resp.FailedDays) != 1 || resp.FailedDays[0] != "2024-06-03" {
		t.Errorf("期望失败日期 [2024-06-03]，实际 %v", resp.FailedDays)
	}
	if len(resp.Warnings) != 1 {
		t.Errorf("期望 1 条提示，实际 %v", resp.Warnings)
	}

	// 1 次原始调用 + 1 次重试
	if m.inspections.missedCalls != 4 {
		t.Errorf("期望 4 次漏检查询（含 1 次重试），实际 %d", m.inspections.missedCalls)
	}
}

func TestAttendanceService_GetAssignmentReport_NotFound(t *testing.T) {
	svc, _ := setupTestAttendanceService()

	_, err := svc.GetAssignmentReport(context.Background(), studentViewer, "nope")
	if !errors.Is(err, ErrAssignmentNotFound) {
		t.Errorf("期望 ErrAssignmentNotFound，实际: %v", err)
	}
}

func TestAttendanceService_GetAssignmentReport_Permission(t *testing.T) {
	svc, _ := setupTestAttendanceService()

	if _, err := svc.GetAssignmentReport(context.Background(), otherStudent, "asg-1"); !errors.Is(err, ErrForbidden) {
		t.Errorf("其他学生查看应返回 ErrForbidden，实际: %v", err)
	}
	if _, err := svc.GetAssignmentReport(context.Background(), inspectorViewer, "asg-1"); err != nil {
		t.Errorf("督导应可查看: %v", err)
	}
}

func TestAttendanceService_GetAssignmentReport_ScopeMissingDegrades(t *testing.T) {
	svc, m := setupTestAttendanceService()
	delete(m.rooms.scopes, "bf-1")

	resp, err := svc.GetAssignmentReport(context.Background(), studentViewer, "asg-1")
	if err != nil {
		t.Fatalf("楼层缺失不应导致请求失败: %v", err)
	}
	if resp.Scope.RoomCount != 0 || resp.Summary.ProgressPct != 0 {
		t.Errorf("楼层缺失时房间数与完成率应为 0: %+v", resp.Summary)
	}
	if len(resp.Warnings) < 2 {
		t.Errorf("期望楼层与漏检两条提示，实际 %v", resp.Warnings)
	}
}

func TestAttendanceService_GetAssignmentReport_HistoryFailureDegrades(t *testing.T) {
	svc, m := setupTestAttendanceService()
	m.inspections.historyErr = errMockDB

	resp, err := svc.GetAssignmentReport(context.Background(), studentViewer, "asg-1")
	if err != nil {
		t.Fatalf("历史查询失败不应导致请求失败: %v", err)
	}
	if resp.Summary.RoomsInspected != 0 {
		t.Errorf("历史缺失时已检数应为 0，实际 %d", resp.Summary.RoomsInspected)
	}
	if resp.Days[2].MissedRooms != 2 {
		t.Errorf("漏检数据不受历史失败影响，实际 %+v", resp.Days[2])
	}
}

// ── GetMissedRoomDetail ──

func TestAttendanceService_GetMissedRoomDetail(t *testing.T) {
	svc, _ := setupTestAttendanceService()

	resp, err := svc.GetMissedRoomDetail(context.Background(), studentViewer, "asg-1", "2024-06-01")
	if err != nil {
		t.Fatalf("GetMissedRoomDetail 应成功: %v", err)
	}
	if len(resp.Rooms) != 2 {
		t.Fatalf("期望 2 个漏检房间，实际 %d", len(resp.Rooms))
	}

	items := resp.Rooms[0].Checklist
	if len(items) != 2 {
		t.Fatalf("期望 2 个检查项，实际 %d", len(items))
	}
	if items[0].Label != "No Action" || items[0].Status != "not_ok" {
		t.Errorf("漏检场景下 0 应显示 No Action，实际 %+v", items[0])
	}
	if items[1].Label != "Pending" {
		t.Errorf("未填写应显示 Pending，实际 %+v", items[1])
	}
	if resp.Rooms[1].Checklist == nil {
		t.Error("无检查项时应返回空数组")
	}
}

func TestAttendanceService_GetMissedRoomDetail_InvalidDate(t *testing.T) {
	svc, _ := setupTestAttendanceService()

	tests := []struct {
		date string
		want error
	}{
		{"2024/06/01", ErrInvalidDate},
		{"", ErrInvalidDate},
		{"2024-05-31", ErrDateOutOfRange},
		{"2024-06-04", ErrDateOutOfRange},
	}
	for _, tt := range tests {
		_, err := svc.GetMissedRoomDetail(context.Background(), studentViewer, "asg-1", tt.date)
		if !errors.Is(err, tt.want) {
			t.Errorf("date=%q 期望 %v，实际 %v", tt.date, tt.want, err)
		}
	}
}

// ── ListAssignments ──

func TestAttendanceService_ListAssignments_StudentSeesOwn(t *testing.T) {
	svc, m := setupTestAttendanceService()

	list, total, err := svc.ListAssignments(context.Background(), studentViewer, &dto.AssignmentListRequest{})
	if err != nil {
		t.Fatalf("ListAssignments 应成功: %v", err)
	}
	if total != 1 || len(list) != 1 {
		t.Fatalf("期望 1 条，实际 total=%d len=%d", total, len(list))
	}
	if m.assignments.lastFilter.UserID != "stu-1" {
		t.Errorf("学生查询应限定本人，实际 filter=%+v", m.assignments.lastFilter)
	}
	if m.assignments.lastFilter.Limit != 20 {
		t.Errorf("默认每页 20，实际 %d", m.assignments.lastFilter.Limit)
	}
	if list[0].StartDate != "2024-06-01" || list[0].Scope == nil || list[0].Scope.FloorName != "2F" {
		t.Errorf("任务信息转换错误: %+v", list[0])
	}

	_, _, err = svc.ListAssignments(context.Background(), studentViewer, &dto.AssignmentListRequest{UserID: "stu-2"})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("学生查询他人应返回 ErrForbidden，实际: %v", err)
	}
}

func TestAttendanceService_ListAssignments_InspectorSeesAll(t *testing.T) {
	svc, m := setupTestAttendanceService()

	if _, _, err := svc.ListAssignments(context.Background(), inspectorViewer, &dto.AssignmentListRequest{}); err != nil {
		t.Fatalf("ListAssignments 应成功: %v", err)
	}
	if m.assignments.lastFilter.UserID != "" {
		t.Errorf("督导未指定用户时不应按用户过滤，实际 %q", m.assignments.lastFilter.UserID)
	}

	list, _, err := svc.ListAssignments(context.Background(), inspectorViewer, &dto.AssignmentListRequest{ActiveOn: "2024-07-01"})
	if err != nil {
		t.Fatalf("ListAssignments 应成功: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("区间外日期不应命中，实际 %d", len(list))
	}

	_, _, err = svc.ListAssignments(context.Background(), inspectorViewer, &dto.AssignmentListRequest{ActiveOn: "07/01/2024"})
	if !errors.Is(err, ErrInvalidDate) {
		t.Errorf("期望 ErrInvalidDate，实际: %v", err)
	}
}

func TestAttendanceService_ListAssignments_RepoError(t *testing.T) {
	svc, m := setupTestAttendanceService()
	m.assignments.listErr = errMockDB

	if _, _, err := svc.ListAssignments(context.Background(), inspectorViewer, &dto.AssignmentListRequest{}); !errors.Is(err, errMockDB) {
		t.Errorf("期望透传数据库错误，实际: %v", err)
	}
}

// ── GetActivity ──

func TestAttendanceService_GetActivity_Views(t *testing.T) {
	svc, _ := setupTestAttendanceService()
	ctx := context.Background()

	daily, err := svc.GetActivity(ctx, studentViewer, &dto.ActivityRequest{})
	if err != nil {
		t.Fatalf("GetActivity 应成功: %v", err)
	}
	if daily.View != "daily" || len(daily.Days) != 3 || daily.Days[0].Date != "2024-06-02" {
		t.Errorf("日视图错误: %+v", daily)
	}
	if daily.Buckets != nil {
		t.Error("日视图不应返回分组")
	}

	weekly, err := svc.GetActivity(ctx, studentViewer, &dto.ActivityRequest{View: "weekly"})
	if err != nil {
		t.Fatalf("GetActivity 应成功: %v", err)
	}
	// 05-20 周一；06-01(周六) 与 06-02(周日) 同属 05-27 周
	if len(weekly.Buckets) != 2 {
		t.Fatalf("期望 2 个周分组，实际 %d", len(weekly.Buckets))
	}
	if weekly.Buckets[0].Key != "2024-05-27" || weekly.Buckets[0].TotalCount != 8 {
		t.Errorf("首个周分组错误: %+v", weekly.Buckets[0])
	}

	monthly, err := svc.GetActivity(ctx, studentViewer, &dto.ActivityRequest{View: "monthly"})
	if err != nil {
		t.Fatalf("GetActivity 应成功: %v", err)
	}
	if len(monthly.Buckets) != 2 || monthly.Buckets[0].Label != "June 2024" {
		t.Errorf("月视图错误: %+v", monthly.Buckets)
	}
}

func TestAttendanceService_GetActivity_Errors(t *testing.T) {
	svc, m := setupTestAttendanceService()
	ctx := context.Background()

	if _, err := svc.GetActivity(ctx, studentViewer, &dto.ActivityRequest{View: "yearly"}); !errors.Is(err, ErrInvalidView) {
		t.Errorf("期望 ErrInvalidView，实际: %v", err)
	}
	if _, err := svc.GetActivity(ctx, studentViewer, &dto.ActivityRequest{UserID: "stu-2"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("期望 ErrForbidden，实际: %v", err)
	}
	if _, err := svc.GetActivity(ctx, inspectorViewer, &dto.ActivityRequest{UserID: "ghost"}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}

	m.inspections.historyErr = errMockDB
	if _, err := svc.GetActivity(ctx, studentViewer, &dto.ActivityRequest{}); !errors.Is(err, errMockDB) {
		t.Errorf("活动视图不降级，应返回错误，实际: %v", err)
	}
}

// ── GetInspectionsOnDate ──

func TestAttendanceService_GetInspectionsOnDate(t *testing.T) {
	svc, m := setupTestAttendanceService()

	rating := "Good"
	submitted := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	m.inspections.inspections["stu-1|2024-06-01"] = []model.Inspection{
		{
			InspectionID:   "ins-1",
			RoomID:         "room-201",
			InspectionDate: day("2024-06-01"),
			Status:         &rating,
			SubmittedAt:    &submitted,
			Room:           &model.Room{RoomID: "room-201", RoomNumber: "201"},
			Items: []model.InspectionItem{
				{ChecklistID: "c-2", OperationIsFunctional: intPtr(1), Checklist: &model.Checklist{Name: "门窗", SortOrder: 2}},
				{ChecklistID: "c-1", OperationIsFunctional: intPtr(0), Checklist: &model.Checklist{Name: "灯光", SortOrder: 1}},
			},
		},
		{
			InspectionID:   "ins-2",
			RoomID:         "room-202",
			InspectionDate: day("2024-06-01"),
			SubmittedAt:    &submitted,
		},
		{
			InspectionID:   "ins-3",
			RoomID:         "room-203",
			InspectionDate: day("2024-06-01"),
		},
	}

	list, err := svc.GetInspectionsOnDate(context.Background(), studentViewer, &dto.InspectionsRequest{Date: "2024-06-01"})
	if err != nil {
		t.Fatalf("GetInspectionsOnDate 应成功: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("期望 3 条，实际 %d", len(list))
	}

	if list[0].Status != "Good" {
		t.Errorf("已存储评级优先，实际 %s", list[0].Status)
	}
	if list[1].Status != "Done" {
		t.Errorf("已提交无评级应为 Done，实际 %s", list[1].Status)
	}
	if list[2].Status != "Missed" {
		t.Errorf("过去日期未提交应为 Missed，实际 %s", list[2].Status)
	}

	items := list[0].Items
	if len(items) != 2 || items[0].Name != "灯光" {
		t.Fatalf("检查项应按排序号排列: %+v", items)
	}
	if items[0].Label != "Not OK" {
		t.Errorf("已提交场景下 0 应显示 Not OK，实际 %s", items[0].Label)
	}
	if list[0].SubmittedAt == nil || list[2].SubmittedAt != nil {
		t.Error("提交时间转换错误")
	}
	if list[0].Room.RoomNumber != "201" || list[1].Room.RoomID != "room-202" {
		t.Errorf("房间信息转换错误: %+v / %+v", list[0].Room, list[1].Room)
	}
}

func TestAttendanceService_GetInspectionsOnDate_Errors(t *testing.T) {
	svc, _ := setupTestAttendanceService()
	ctx := context.Background()

	if _, err := svc.GetInspectionsOnDate(ctx, studentViewer, &dto.InspectionsRequest{Date: "bad"}); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("期望 ErrInvalidDate，实际: %v", err)
	}
	if _, err := svc.GetInspectionsOnDate(ctx, studentViewer, &dto.InspectionsRequest{Date: "2024-06-01", UserID: "stu-2"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("期望 ErrForbidden，实际: %v", err)
	}

	list, err := svc.GetInspectionsOnDate(ctx, inspectorViewer, &dto.InspectionsRequest{Date: "2024-06-05", UserID: "stu-2"})
	if err != nil {
		t.Fatalf("督导查询应成功: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("无记录时应返回空数组，实际 %v", list)
	}
}
