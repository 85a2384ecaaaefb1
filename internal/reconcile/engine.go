package reconcile

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxConcurrent 单次对账中同时进行的漏检查询数上限
const DefaultMaxConcurrent = 20

// Options 引擎配置
type Options struct {
	MaxConcurrent int
	Now           func() time.Time
	Logger        *zap.Logger
}

// Engine 区间对账引擎
//
// 不持有跨请求状态，多个 Reconcile 调用可并发执行。
type Engine struct {
	roster        RosterSource
	history       HistorySource
	missed        MissedRoomSource
	maxConcurrent int
	now           func() time.Time
	logger        *zap.Logger
}

// NewEngine 创建对账引擎
func NewEngine(roster RosterSource, history HistorySource, missed MissedRoomSource, opts Options) *Engine {
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Engine{
		roster:        roster,
		history:       history,
		missed:        missed,
		maxConcurrent: opts.MaxConcurrent,
		now:           opts.Now,
		logger:        opts.Logger.Named("reconcile"),
	}
}

// Now 引擎使用的当前时间
func (e *Engine) Now() time.Time {
	return e.now()
}

type dayResult struct {
	date  time.Time
	rooms []MissedRoomEntry
	err   error
}

type historyResult struct {
	entries []DailyHistoryEntry
	err     error
}

// Reconcile 对一条巡检任务执行完整对账
//
// 所有数据源失败都降级为空结果并记录提示，不会中断整体计算，因此不返回 error。
// 请求一旦发出就会全部执行完，调用方 ctx 取消不会中止扇出查询。
func (e *Engine) Reconcile(ctx context.Context, a Assignment) *Report {
	ctx = context.WithoutCancel(ctx)
	started := time.Now()

	rangeOpts := RangeOptions{Now: e.now(), ClampToToday: true}
	days := EnumerateDays(a.StartDate, a.EndDate, rangeOpts)
	report := &Report{
		Assignment:   a,
		Days:         []DayRecord{},
		MissedGroups: []MissedGroup{},
		FailedDays:   []time.Time{},
		Warnings:     []string{},
	}

	// 1. 楼层房间名单（每次对账只查一次）
	scope, warn := ResolveScope(ctx, e.roster, a.ScopeID)
	if warn != "" {
		e.logger.Warn("楼层房间名单获取失败", zap.String("assignment_id", a.ID), zap.String("scope_id", a.ScopeID), zap.String("warning", warn))
		report.Warnings = append(report.Warnings, warn)
	}
	report.Scope = scope

	// 2. 巡检历史与逐日漏检查询并行
	histCh := make(chan historyResult, 1)
	go func() {
		histCh <- e.fetchHistory(ctx, a.AssignedUserID)
	}()

	results := e.scatter(ctx, a, days)
	hist := <-histCh

	var history []DailyHistoryEntry
	if hist.err != nil {
		e.logger.Warn("巡检历史获取失败", zap.String("user_id", a.AssignedUserID), zap.Error(hist.err))
		report.Warnings = append(report.Warnings, fmt.Sprintf("获取巡检历史失败: %v", hist.err))
	} else if len(days) > 0 {
		history = FilterHistory(hist.entries, a.StartDate, EffectiveEnd(a.EndDate, rangeOpts))
	}

	// 3. 汇集逐日结果：失败的日期按空列表处理，只提示最早的一次失败
	groups := make([]MissedGroup, 0, len(results))
	var firstErr *dayResult
	for i := range results {
		r := &results[i]
		if r.err != nil {
			report.FailedDays = append(report.FailedDays, r.date)
			if firstErr == nil {
				firstErr = r
			}
			continue
		}
		if len(r.rooms) > 0 {
			groups = append(groups, MissedGroup{Date: r.date, Rooms: r.rooms})
		}
	}
	if firstErr != nil {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("%s 漏检房间查询失败: %v", FormatDate(firstErr.date), firstErr.err))
	}

	// 4. 组装结果，内部保持升序，出口处倒序
	records := BuildDayRecords(scope.RoomCount, days, history, groups)
	report.Days = Descending(records, func(r DayRecord) time.Time { return r.Date })
	report.MissedGroups = Descending(groups, func(g MissedGroup) time.Time { return g.Date })
	report.Summary = Summarize(scope.RoomCount, len(days), history)

	e.logger.Debug("对账完成",
		zap.String("assignment_id", a.ID),
		zap.Int("days", len(days)),
		zap.Int("failed_days", len(report.FailedDays)),
		zap.Float64("progress_pct", report.Summary.ProgressPct),
		zap.Duration("latency", time.Since(started)),
	)
	return report
}

func (e *Engine) fetchHistory(ctx context.Context, userID string) (res historyResult) {
	if e.history == nil {
		return historyResult{}
	}
	defer func() {
		if p := recover(); p != nil {
			res = historyResult{err: fmt.Errorf("panic: %v", p)}
		}
	}()
	entries, err := e.history.GetInspectionHistory(ctx, userID)
	return historyResult{entries: entries, err: err}
}

// scatter 每天发起一次漏检查询，最多 maxConcurrent 个同时进行；
// 单日失败不影响其他日期，全部完成后返回（结果与 days 同序）
func (e *Engine) scatter(ctx context.Context, a Assignment, days []time.Time) []dayResult {
	results := make([]dayResult, len(days))
	if e.missed == nil {
		for i, d := range days {
			results[i] = dayResult{date: d}
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(e.maxConcurrent)
	for i, day := range days {
		i, day := i, day
		g.Go(func() error {
			results[i] = e.lookupDay(ctx, a, day)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (e *Engine) lookupDay(ctx context.Context, a Assignment, day time.Time) (res dayResult) {
	defer func() {
		if p := recover(); p != nil {
			res = dayResult{date: day, err: fmt.Errorf("panic: %v", p)}
		}
	}()

	rooms, err := e.missed.GetMissedRooms(ctx, a.AssignedUserID, a.ScopeID, day)
	if err != nil {
		e.logger.Warn("漏检房间查询失败",
			zap.String("assignment_id", a.ID),
			zap.String("date", FormatDate(day)),
			zap.Error(err),
		)
		return dayResult{date: day, err: err}
	}
	return dayResult{date: day, rooms: slices.Clip(rooms)}
}
