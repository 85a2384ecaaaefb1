package reconcile

import (
	"math"
	"slices"
	"time"
)

// FilterHistory 保留 [from, to] 内的记录，日期统一为自然日
func FilterHistory(history []DailyHistoryEntry, from, to time.Time) []DailyHistoryEntry {
	from, to = Day(from), Day(to)
	out := make([]DailyHistoryEntry, 0, len(history))
	for _, h := range history {
		d := Day(h.Date)
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, DailyHistoryEntry{Date: d, InspectedCount: h.InspectedCount})
	}
	return out
}

// indexHistory 按日期汇总已检数（同一天出现多条时累加）
func indexHistory(history []DailyHistoryEntry) map[time.Time]int {
	idx := make(map[time.Time]int, len(history))
	for _, h := range history {
		idx[Day(h.Date)] += h.InspectedCount
	}
	return idx
}

// BuildDayRecords 为 days 中每一天生成一条记录，顺序与 days 一致（升序）
func BuildDayRecords(roomCount int, days []time.Time, history []DailyHistoryEntry, missed []MissedGroup) []DayRecord {
	inspected := indexHistory(history)
	missedByDay := make(map[time.Time]int, len(missed))
	for _, g := range missed {
		missedByDay[Day(g.Date)] += len(g.Rooms)
	}

	records := make([]DayRecord, 0, len(days))
	for _, d := range days {
		d = Day(d)
		records = append(records, DayRecord{
			Date:           d,
			TotalRooms:     roomCount,
			InspectedRooms: inspected[d],
			MissedRooms:    missedByDay[d],
		})
	}
	return records
}

// Descending 返回按日期倒序排列的副本（展示层使用，最近的日期在前）
func Descending[T any](items []T, date func(T) time.Time) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		return date(b).Compare(date(a))
	})
	return out
}

// Summarize 计算区间汇总
//
// history 需已按区间过滤。进度封顶 100%：历史已检数可能超过当前房间数（例如房间后来被删除）。
func Summarize(roomCount, dayCount int, history []DailyHistoryEntry) RangeSummary {
	sum := RangeSummary{
		DayCount:      dayCount,
		RoomCount:     roomCount,
		ExpectedRooms: roomCount * dayCount,
	}
	for _, n := range indexHistory(history) {
		sum.RoomsInspected += n
		if n > 0 {
			sum.InspectedDays++
		}
	}
	sum.ProgressPct = progress(sum.RoomsInspected, sum.ExpectedRooms)
	return sum
}

func progress(inspected, expected int) float64 {
	if expected <= 0 || inspected <= 0 {
		return 0
	}
	pct := float64(inspected) / float64(expected) * 100
	if pct > 100 {
		pct = 100
	}
	return math.Round(pct*100) / 100
}
