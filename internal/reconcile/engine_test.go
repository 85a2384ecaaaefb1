package reconcile

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roster(n int) RosterFunc {
	return func(_ context.Context, scopeID string) (RoomScope, error) {
		rooms := make([]RoomRef, 0, n)
		for i := 0; i < n; i++ {
			rooms = append(rooms, RoomRef{RoomID: scopeID + "-r" + string(rune('a'+i)), RoomNumber: string(rune('A' + i))})
		}
		return RoomScope{ScopeID: scopeID, RoomCount: n, Rooms: rooms}, nil
	}
}

func history(entries map[string]int) HistoryFunc {
	return func(_ context.Context, _ string) ([]DailyHistoryEntry, error) {
		out := make([]DailyHistoryEntry, 0, len(entries))
		for d, n := range entries {
			out = append(out, DailyHistoryEntry{Date: date(d), InspectedCount: n})
		}
		return out, nil
	}
}

func fixedNow(s string) func() time.Time {
	return func() time.Time { return date(s) }
}

func missedRooms(n int) []MissedRoomEntry {
	out := make([]MissedRoomEntry, n)
	for i := range out {
		out[i] = MissedRoomEntry{Room: RoomRef{RoomID: "m" + string(rune('0'+i))}}
	}
	return out
}

func testAssignment() Assignment {
	return Assignment{
		ID:             "as-1",
		AssignedUserID: "stu-1",
		ScopeID:        "bf-1",
		StartDate:      date("2024-06-01"),
		EndDate:        date("2024-06-03"),
	}
}

func TestReconcile_MixedResultsScenario(t *testing.T) {
	missed := MissedRoomFunc(func(_ context.Context, userID, scopeID string, d time.Time) ([]MissedRoomEntry, error) {
		assert.Equal(t, "stu-1", userID)
		assert.Equal(t, "bf-1", scopeID)
		switch FormatDate(d) {
		case "2024-06-01":
			return nil, nil
		case "2024-06-02":
			return missedRooms(2), nil
		default:
			return nil, errors.New("connection reset")
		}
	})
	e := NewEngine(roster(5), history(map[string]int{"2024-06-01": 5, "2024-06-02": 3}), missed,
		Options{Now: fixedNow("2024-06-04")})

	r := e.Reconcile(context.Background(), testAssignment())

	assert.Equal(t, 3, r.Summary.DayCount)
	assert.Equal(t, 5, r.Summary.RoomCount)
	assert.Equal(t, 15, r.Summary.ExpectedRooms)
	assert.Equal(t, 8, r.Summary.RoomsInspected)
	assert.Equal(t, 2, r.Summary.InspectedDays)
	assert.InDelta(t, 53.33, r.Summary.ProgressPct, 0.001)

	require.Len(t, r.MissedGroups, 1)
	assert.Equal(t, date("2024-06-02"), r.MissedGroups[0].Date)
	assert.Len(t, r.MissedGroups[0].Rooms, 2)

	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0], "2024-06-03")
	assert.Equal(t, []time.Time{date("2024-06-03")}, r.FailedDays)

	require.Len(t, r.Days, 3)
	assert.Equal(t, DayRecord{Date: date("2024-06-03"), TotalRooms: 5}, r.Days[0])
	assert.Equal(t, DayRecord{Date: date("2024-06-02"), TotalRooms: 5, InspectedRooms: 3, MissedRooms: 2}, r.Days[1])
	assert.Equal(t, DayRecord{Date: date("2024-06-01"), TotalRooms: 5, InspectedRooms: 5}, r.Days[2])
}

func TestReconcile_ZeroRoomsProgressIsZero(t *testing.T) {
	e := NewEngine(roster(0), history(map[string]int{"2024-06-01": 12, "2024-06-02": 7}), MissedRoomFunc(
		func(context.Context, string, string, time.Time) ([]MissedRoomEntry, error) { return nil, nil },
	), Options{Now: fixedNow("2024-06-10")})

	r := e.Reconcile(context.Background(), testAssignment())

	assert.Equal(t, 0, r.Summary.ExpectedRooms)
	assert.Equal(t, 19, r.Summary.RoomsInspected)
	assert.Zero(t, r.Summary.ProgressPct)
	assert.Empty(t, r.Warnings)
}

func TestReconcile_ProgressCappedAt100(t *testing.T) {
	// 历史数量大于当前房间数（房间后来被删除）
	e := NewEngine(roster(1), history(map[string]int{"2024-06-01": 9}), nil, Options{Now: fixedNow("2024-06-10")})

	r := e.Reconcile(context.Background(), testAssignment())
	assert.Equal(t, 100.0, r.Summary.ProgressPct)
}

func TestReconcile_HistoryFilteredToRange(t *testing.T) {
	e := NewEngine(roster(5), history(map[string]int{
		"2024-05-31": 5, // 区间前
		"2024-06-02": 4,
		"2024-06-05": 5, // 今天之后（截止到 06-03）
	}), nil, Options{Now: fixedNow("2024-06-03")})

	a := testAssignment()
	a.EndDate = date("2024-06-30")
	r := e.Reconcile(context.Background(), a)

	assert.Equal(t, 3, r.Summary.DayCount)
	assert.Equal(t, 4, r.Summary.RoomsInspected)
	assert.Equal(t, 1, r.Summary.InspectedDays)
}

func TestReconcile_ScopeFailureDegrades(t *testing.T) {
	failing := RosterFunc(func(context.Context, string) (RoomScope, error) {
		return RoomScope{}, errors.New("scope not found")
	})
	var calls atomic.Int32
	missed := MissedRoomFunc(func(context.Context, string, string, time.Time) ([]MissedRoomEntry, error) {
		calls.Add(1)
		return missedRooms(1), nil
	})
	e := NewEngine(failing, history(map[string]int{"2024-06-01": 2}), missed, Options{Now: fixedNow("2024-06-04")})

	r := e.Reconcile(context.Background(), testAssignment())

	assert.Equal(t, int32(3), calls.Load(), "名单失败不应阻止逐日查询")
	assert.Equal(t, 0, r.Scope.RoomCount)
	assert.Equal(t, 0, r.Summary.ExpectedRooms)
	assert.Zero(t, r.Summary.ProgressPct)
	assert.Len(t, r.MissedGroups, 3)
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0], "scope not found")
}

func TestReconcile_HistoryFailureDegrades(t *testing.T) {
	failing := HistoryFunc(func(context.Context, string) ([]DailyHistoryEntry, error) {
		return nil, errors.New("timeout")
	})
	e := NewEngine(roster(3), failing, nil, Options{Now: fixedNow("2024-06-04")})

	r := e.Reconcile(context.Background(), testAssignment())

	assert.Equal(t, 9, r.Summary.ExpectedRooms)
	assert.Zero(t, r.Summary.RoomsInspected)
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0], "timeout")
	assert.Len(t, r.Days, 3)
}

func TestReconcile_OnlyFirstDayErrorSurfaced(t *testing.T) {
	missed := MissedRoomFunc(func(_ context.Context, _, _ string, d time.Time) ([]MissedRoomEntry, error) {
		return nil, errors.New("fail " + FormatDate(d))
	})
	e := NewEngine(roster(2), history(nil), missed, Options{Now: fixedNow("2024-07-01")})

	a := testAssignment()
	a.EndDate = date("2024-06-20")
	r := e.Reconcile(context.Background(), a)

	assert.Len(t, r.FailedDays, 20)
	require.Len(t, r.Warnings, 1)
	assert.True(t, strings.HasPrefix(r.Warnings[0], "2024-06-01"), r.Warnings[0])
	assert.Empty(t, r.MissedGroups)
	assert.Len(t, r.Days, 20)
}

func TestReconcile_PanicInLookupContained(t *testing.T) {
	missed := MissedRoomFunc(func(_ context.Context, _, _ string, d time.Time) ([]MissedRoomEntry, error) {
		if FormatDate(d) == "2024-06-02" {
			panic("boom")
		}
		return missedRooms(1), nil
	})
	e := NewEngine(roster(2), history(nil), missed, Options{Now: fixedNow("2024-06-04")})

	r := e.Reconcile(context.Background(), testAssignment())

	assert.Len(t, r.MissedGroups, 2)
	assert.Equal(t, []time.Time{date("2024-06-02")}, r.FailedDays)
	require.Len(t, r.Warnings, 1)
}

func TestReconcile_BoundedConcurrency(t *testing.T) {
	var inFlight, peak, calls atomic.Int32
	missed := MissedRoomFunc(func(context.Context, string, string, time.Time) ([]MissedRoomEntry, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		calls.Add(1)
		return nil, nil
	})
	e := NewEngine(roster(1), history(nil), missed, Options{MaxConcurrent: 3, Now: fixedNow("2024-12-31")})

	a := testAssignment()
	a.EndDate = date("2024-06-30")
	e.Reconcile(context.Background(), a)

	assert.Equal(t, int32(30), calls.Load())
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestReconcile_CancelledContextStillCompletes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var mu sync.Mutex
	seen := map[string]bool{}
	missed := MissedRoomFunc(func(c context.Context, _, _ string, d time.Time) ([]MissedRoomEntry, error) {
		if c.Err() != nil {
			return nil, c.Err()
		}
		mu.Lock()
		seen[FormatDate(d)] = true
		mu.Unlock()
		return nil, nil
	})
	e := NewEngine(roster(1), history(nil), missed, Options{Now: fixedNow("2024-06-04")})

	r := e.Reconcile(ctx, testAssignment())

	assert.Len(t, seen, 3)
	assert.Empty(t, r.Warnings)
}

func TestReconcile_EmptyRange(t *testing.T) {
	var calls atomic.Int32
	missed := MissedRoomFunc(func(context.Context, string, string, time.Time) ([]MissedRoomEntry, error) {
		calls.Add(1)
		return nil, nil
	})
	e := NewEngine(roster(4), history(map[string]int{"2024-06-01": 4}), missed, Options{Now: fixedNow("2024-05-01")})

	r := e.Reconcile(context.Background(), testAssignment())

	assert.Zero(t, calls.Load())
	assert.Empty(t, r.Days)
	assert.Empty(t, r.MissedGroups)
	assert.Equal(t, 0, r.Summary.DayCount)
	assert.Zero(t, r.Summary.RoomsInspected)
	assert.Zero(t, r.Summary.ProgressPct)
}

func TestReconcile_DoesNotForcePartition(t *testing.T) {
	// 已检数与漏检数来自不同数据源，允许之和超过房间总数
	missed := MissedRoomFunc(func(context.Context, string, string, time.Time) ([]MissedRoomEntry, error) {
		return missedRooms(3), nil
	})
	e := NewEngine(roster(3), history(map[string]int{"2024-06-01": 3}), missed, Options{Now: fixedNow("2024-06-01")})

	a := testAssignment()
	a.EndDate = date("2024-06-01")
	r := e.Reconcile(context.Background(), a)

	require.Len(t, r.Days, 1)
	assert.Equal(t, 3, r.Days[0].InspectedRooms)
	assert.Equal(t, 3, r.Days[0].MissedRooms)
	assert.Equal(t, 3, r.Days[0].TotalRooms)
}

func TestWithRetry(t *testing.T) {
	var calls atomic.Int32
	flaky := MissedRoomFunc(func(context.Context, string, string, time.Time) ([]MissedRoomEntry, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("transient")
		}
		return missedRooms(1), nil
	})

	rooms, err := WithRetry(flaky, 1, 0).GetMissedRooms(context.Background(), "u", "s", date("2024-06-01"))
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestWithRetry_GivesUp(t *testing.T) {
	var calls atomic.Int32
	broken := MissedRoomFunc(func(context.Context, string, string, time.Time) ([]MissedRoomEntry, error) {
		calls.Add(1)
		return nil, errors.New("down")
	})

	_, err := WithRetry(broken, 2, time.Millisecond).GetMissedRooms(context.Background(), "u", "s", date("2024-06-01"))
	assert.EqualError(t, err, "down")
	assert.Equal(t, int32(3), calls.Load())

	assert.Nil(t, WithRetry(nil, 1, 0))
}
