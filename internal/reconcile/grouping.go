package reconcile

import (
	"slices"
	"time"
)

// ActivityView 活动视图粒度
type ActivityView string

const (
	ViewDaily   ActivityView = "daily"
	ViewWeekly  ActivityView = "weekly"
	ViewMonthly ActivityView = "monthly"
)

// ParseActivityView 解析视图参数，空串默认按日
func ParseActivityView(s string) (ActivityView, bool) {
	switch ActivityView(s) {
	case "", ViewDaily:
		return ViewDaily, true
	case ViewWeekly:
		return ViewWeekly, true
	case ViewMonthly:
		return ViewMonthly, true
	default:
		return "", false
	}
}

// ActivityBucket 周 / 月分组
type ActivityBucket struct {
	Key         string              `json:"key"`
	PeriodStart time.Time           `json:"period_start"`
	PeriodEnd   time.Time           `json:"period_end"`
	Label       string              `json:"label"`
	TotalCount  int                 `json:"total_count"`
	Days        []DailyHistoryEntry `json:"days"`
}

// WeekStart 所在 ISO 周的周一
func WeekStart(t time.Time) time.Time {
	d := Day(t)
	offset := int(d.Weekday()) - 1
	if offset < 0 {
		offset = 6 // 周日
	}
	return d.AddDate(0, 0, -offset)
}

// DailyView 日视图：原序列按日期倒序
func DailyView(series []DailyHistoryEntry) []DailyHistoryEntry {
	out := make([]DailyHistoryEntry, 0, len(series))
	for _, e := range series {
		out = append(out, DailyHistoryEntry{Date: Day(e.Date), InspectedCount: e.InspectedCount})
	}
	return Descending(out, func(e DailyHistoryEntry) time.Time { return e.Date })
}

// WeeklyBuckets 按周一分组，分组与组内日期均倒序
func WeeklyBuckets(series []DailyHistoryEntry) []ActivityBucket {
	return fold(series, func(d time.Time) period {
		start := WeekStart(d)
		end := start.AddDate(0, 0, 6)
		return period{
			key:   FormatDate(start),
			start: start,
			end:   end,
			label: start.Format("Jan 2") + " - " + end.Format("Jan 2, 2006"),
		}
	})
}

// MonthlyBuckets 按年月分组，分组与组内日期均倒序
func MonthlyBuckets(series []DailyHistoryEntry) []ActivityBucket {
	return fold(series, func(d time.Time) period {
		start := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
		return period{
			key:   start.Format("2006-01"),
			start: start,
			end:   start.AddDate(0, 1, -1),
			label: start.Format("January 2006"),
		}
	})
}

type period struct {
	key        string
	start, end time.Time
	label      string
}

func fold(series []DailyHistoryEntry, periodOf func(time.Time) period) []ActivityBucket {
	byKey := make(map[string]*ActivityBucket)
	for _, e := range series {
		d := Day(e.Date)
		p := periodOf(d)
		b, ok := byKey[p.key]
		if !ok {
			b = &ActivityBucket{Key: p.key, PeriodStart: p.start, PeriodEnd: p.end, Label: p.label}
			byKey[p.key] = b
		}
		b.TotalCount += e.InspectedCount
		b.Days = append(b.Days, DailyHistoryEntry{Date: d, InspectedCount: e.InspectedCount})
	}

	buckets := make([]ActivityBucket, 0, len(byKey))
	for _, b := range byKey {
		b.Days = Descending(b.Days, func(e DailyHistoryEntry) time.Time { return e.Date })
		buckets = append(buckets, *b)
	}
	slices.SortFunc(buckets, func(a, b ActivityBucket) int {
		return b.PeriodStart.Compare(a.PeriodStart)
	})
	return buckets
}
