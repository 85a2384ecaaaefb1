package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Chnix17/janitorial-sub000/config"
	"github.com/Chnix17/janitorial-sub000/internal/model"
	"github.com/Chnix17/janitorial-sub000/internal/reconcile"
	"github.com/Chnix17/janitorial-sub000/internal/repository"
	pkgerrors "github.com/Chnix17/janitorial-sub000/pkg/errors"
)

// ── 通用业务错误 ──

var (
	ErrAssignmentNotFound = errors.New("巡检任务不存在")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrForbidden          = errors.New("无权查看其他用户的巡检记录")
	ErrInvalidDate        = pkgerrors.ErrInvalidDate
)

// Viewer 当前登录用户
type Viewer struct {
	UserID string
	Role   string
}

// CanViewAll 管理员与督导可查看所有学生
func (v Viewer) CanViewAll() bool {
	return v.Role == model.RoleAdmin || v.Role == model.RoleInspector
}

// resolveTarget 确定查询对象：未指定时为本人，指定他人需要权限
func (v Viewer) resolveTarget(userID string) (string, error) {
	if userID == "" || userID == v.UserID {
		return v.UserID, nil
	}
	if !v.CanViewAll() {
		return "", ErrForbidden
	}
	return userID, nil
}

// ── 记录库 → 对账引擎数据源 ──

// storeSources 以 Repository 实现 reconcile 的三个数据源接口
type storeSources struct {
	repo *repository.Repository
}

func (s storeSources) GetRoomRoster(ctx context.Context, scopeID string) (reconcile.RoomScope, error) {
	bf, err := s.repo.Room.GetRoster(ctx, scopeID)
	if err != nil {
		return reconcile.RoomScope{}, err
	}
	building, floor := scopeNames(bf)
	rooms := make([]reconcile.RoomRef, 0, len(bf.Rooms))
	for _, r := range bf.Rooms {
		rooms = append(rooms, reconcile.RoomRef{
			RoomID:       r.RoomID,
			RoomNumber:   r.RoomNumber,
			BuildingName: building,
			FloorName:    floor,
		})
	}
	return reconcile.RoomScope{ScopeID: bf.BuildingFloorID, RoomCount: len(rooms), Rooms: rooms}, nil
}

func (s storeSources) GetInspectionHistory(ctx context.Context, userID string) ([]reconcile.DailyHistoryEntry, error) {
	counts, err := s.repo.Inspection.DailyCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]reconcile.DailyHistoryEntry, 0, len(counts))
	for _, c := range counts {
		out = append(out, reconcile.DailyHistoryEntry{Date: reconcile.Day(c.InspectionDate), InspectedCount: c.RoomCount})
	}
	return out, nil
}

func (s storeSources) GetMissedRooms(ctx context.Context, userID, scopeID string, date time.Time) ([]reconcile.MissedRoomEntry, error) {
	rows, err := s.repo.Inspection.MissedRooms(ctx, userID, scopeID, date)
	if err != nil {
		return nil, err
	}
	out := make([]reconcile.MissedRoomEntry, 0, len(rows))
	for _, r := range rows {
		items := make([]reconcile.ChecklistSnapshotItem, 0, len(r.Checklist))
		for _, c := range r.Checklist {
			items = append(items, reconcile.ChecklistSnapshotItem{
				ChecklistID:           c.ChecklistID,
				ChecklistName:         c.Name,
				OperationIsFunctional: c.OperationIsFunctional,
			})
		}
		out = append(out, reconcile.MissedRoomEntry{
			Room: reconcile.RoomRef{
				RoomID:       r.RoomID,
				RoomNumber:   r.RoomNumber,
				BuildingName: r.BuildingName,
				FloorName:    r.FloorName,
			},
			Checklist: items,
		})
	}
	return out, nil
}

func scopeNames(bf *model.BuildingFloor) (building, floor string) {
	if bf == nil {
		return "", ""
	}
	if bf.Building != nil {
		building = bf.Building.Name
	}
	if bf.Floor != nil {
		floor = bf.Floor.Name
	}
	return building, floor
}

// ── 对账入口（Attendance 与 Export 共用） ──

type reconciler struct {
	repo    *repository.Repository
	sources storeSources
	engine  *reconcile.Engine
	logger  *zap.Logger
}

func newReconciler(cfg *config.ReconcileConfig, repo *repository.Repository, logger *zap.Logger) *reconciler {
	src := storeSources{repo: repo}
	loc := cfg.Location()
	engine := reconcile.NewEngine(src, src,
		reconcile.WithRetry(src, cfg.MissedRetry, cfg.RetryBackoff),
		reconcile.Options{
			MaxConcurrent: cfg.MaxConcurrent,
			Now:           func() time.Time { return time.Now().In(loc) },
			Logger:        logger,
		},
	)
	return &reconciler{repo: repo, sources: src, engine: engine, logger: logger}
}

// loadAssignment 读取任务并校验查看权限
func (r *reconciler) loadAssignment(ctx context.Context, viewer Viewer, id string) (*model.Assignment, error) {
	a, err := r.repo.Assignment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		r.logger.Error("查询巡检任务失败", zap.String("assignment_id", id), zap.Error(err))
		return nil, err
	}
	if a.AssignedUserID != viewer.UserID && !viewer.CanViewAll() {
		return nil, ErrForbidden
	}
	return a, nil
}

// run 读取任务并执行对账
func (r *reconciler) run(ctx context.Context, viewer Viewer, id string) (*model.Assignment, *reconcile.Report, error) {
	a, err := r.loadAssignment(ctx, viewer, id)
	if err != nil {
		return nil, nil, err
	}
	return a, r.engine.Reconcile(ctx, toEngineAssignment(a)), nil
}

// ensureUser 确认被查询用户存在
func (r *reconciler) ensureUser(ctx context.Context, userID string) (*model.User, error) {
	u, err := r.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		r.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return u, nil
}

func toEngineAssignment(a *model.Assignment) reconcile.Assignment {
	out := reconcile.Assignment{
		ID:             a.AssignmentID,
		AssignedUserID: a.AssignedUserID,
		ScopeID:        a.BuildingFloorID,
		StartDate:      reconcile.Day(a.StartDate),
		EndDate:        reconcile.Day(a.EndDate),
	}
	if a.CreatedBy != nil {
		out.CreatedBy = *a.CreatedBy
	}
	return out
}
