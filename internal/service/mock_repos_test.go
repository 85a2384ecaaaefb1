package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Chnix17/janitorial-sub000/internal/model"
	"github.com/Chnix17/janitorial-sub000/internal/repository"
	pkgerrors "github.com/Chnix17/janitorial-sub000/pkg/errors"
)

var errMockDB = errors.New("mock db error")

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct {
	assignments map[string]*model.Assignment
	lastFilter  repository.AssignmentFilter
	listErr     error
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{assignments: make(map[string]*model.Assignment)}
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.Assignment, error) {
	if a, ok := m.assignments[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) List(_ context.Context, filter repository.AssignmentFilter) ([]model.Assignment, int64, error) {
	m.lastFilter = filter
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	var result []model.Assignment
	for _, a := range m.assignments {
		if filter.UserID != "" && a.AssignedUserID != filter.UserID {
			continue
		}
		if filter.ScopeID != "" && a.BuildingFloorID != filter.ScopeID {
			continue
		}
		if filter.ActiveOn != nil && (filter.ActiveOn.Before(a.StartDate) || filter.ActiveOn.After(a.EndDate)) {
			continue
		}
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.After(result[j].StartDate) })
	return result, int64(len(result)), nil
}

// ── Mock RoomRepository ──

type mockRoomRepo struct {
	scopes map[string]*model.BuildingFloor
	err    error
}

func newMockRoomRepo() *mockRoomRepo {
	return &mockRoomRepo{scopes: make(map[string]*model.BuildingFloor)}
}

func (m *mockRoomRepo) GetRoster(_ context.Context, scopeID string) (*model.BuildingFloor, error) {
	if m.err != nil {
		return nil, m.err
	}
	if bf, ok := m.scopes[scopeID]; ok {
		return bf, nil
	}
	return nil, pkgerrors.ErrScopeNotFound
}

// ── Mock InspectionRepository ──

type mockInspectionRepo struct {
	mu          sync.Mutex
	counts      map[string][]repository.DailyCount // userID → 历史
	missed      map[string][]repository.MissedRoom // date → 漏检
	missedErr   map[string]error                   // date → 错误
	inspections map[string][]model.Inspection      // userID|date → 记录
	historyErr  error
	missedCalls int
}

func newMockInspectionRepo() *mockInspectionRepo {
	return &mockInspectionRepo{
		counts:      make(map[string][]repository.DailyCount),
		missed:      make(map[string][]repository.MissedRoom),
		missedErr:   make(map[string]error),
		inspections: make(map[string][]model.Inspection),
	}
}

func (m *mockInspectionRepo) DailyCounts(_ context.Context, userID string) ([]repository.DailyCount, error) {
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	return m.counts[userID], nil
}

func (m *mockInspectionRepo) MissedRooms(_ context.Context, _, _ string, date time.Time) ([]repository.MissedRoom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.missedCalls++
	key := date.Format("2006-01-02")
	if err, ok := m.missedErr[key]; ok {
		return nil, err
	}
	return m.missed[key], nil
}

func (m *mockInspectionRepo) ListByUserAndDate(_ context.Context, userID string, date time.Time) ([]model.Inspection, error) {
	return m.inspections[userID+"|"+date.Format("2006-01-02")], nil
}

// ── 测试数据 ──

type mockRepos struct {
	users       *mockUserRepo
	assignments *mockAssignmentRepo
	rooms       *mockRoomRepo
	inspections *mockInspectionRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		users:       newMockUserRepo(),
		assignments: newMockAssignmentRepo(),
		rooms:       newMockRoomRepo(),
		inspections: newMockInspectionRepo(),
	}
	repo := &repository.Repository{
		User:       m.users,
		Assignment: m.assignments,
		Room:       m.rooms,
		Inspection: m.inspections,
	}
	return repo, m
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func intPtr(v int) *int { return &v }

// seedScenario 学生 stu-1 负责 A 栋 2F（5 个房间），任务区间 2024-06-01 ~ 2024-06-03
func seedScenario(m *mockRepos) {
	student := &model.User{UserID: "stu-1", Name: "Juan", Role: model.RoleStudent}
	m.users.users[student.UserID] = student
	m.users.users["stu-2"] = &model.User{UserID: "stu-2", Name: "Maria", Role: model.RoleStudent}

	bf := &model.BuildingFloor{
		BuildingFloorID: "bf-1",
		Building:        &model.Building{BuildingID: "b-1", Name: "A栋"},
		Floor:           &model.Floor{FloorID: "f-2", Name: "2F"},
	}
	for _, no := range []string{"201", "202", "203", "204", "205"} {
		bf.Rooms = append(bf.Rooms, model.Room{RoomID: "room-" + no, RoomNumber: no, BuildingFloorID: "bf-1"})
	}
	m.rooms.scopes[bf.BuildingFloorID] = bf

	m.assignments.assignments["asg-1"] = &model.Assignment{
		AssignmentID:    "asg-1",
		AssignedUserID:  "stu-1",
		BuildingFloorID: "bf-1",
		StartDate:       day("2024-06-01"),
		EndDate:         day("2024-06-03"),
		AssignedUser:    student,
		BuildingFloor:   bf,
	}

	m.inspections.counts["stu-1"] = []repository.DailyCount{
		{InspectionDate: day("2024-05-20"), RoomCount: 4},
		{InspectionDate: day("2024-06-01"), RoomCount: 3},
		{InspectionDate: day("2024-06-02"), RoomCount: 5},
	}
	m.inspections.missed["2024-06-01"] = []repository.MissedRoom{
		{RoomID: "room-204", RoomNumber: "204", BuildingName: "A栋", FloorName: "2F", Checklist: []repository.ChecklistSnapshot{
			{ChecklistID: "c-1", Name: "灯光", OperationIsFunctional: intPtr(0)},
			{ChecklistID: "c-2", Name: "门窗"},
		}},
		{RoomID: "room-205", RoomNumber: "205", BuildingName: "A栋", FloorName: "2F", Checklist: []repository.ChecklistSnapshot{}},
	}
	m.inspections.missedErr["2024-06-03"] = errMockDB
}
