package reconcile

import (
	"strings"
	"time"
)

// DateLayout 日期字符串格式
const DateLayout = "2006-01-02"

// MaxRangeDays 单次枚举的最大天数，同时限制了每次对账的并发查询数量
const MaxRangeDays = 370

// RangeOptions 日期枚举选项
type RangeOptions struct {
	Now          time.Time // 零值时取当前时间
	ClampToToday bool      // 区间视图截止到今天；列表视图可以不截
}

// Day 截取自然日（按 t 所在时区取年月日），统一为 UTC 零点
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate 解析 YYYY-MM-DD，失败返回 false
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate 格式化为 YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// EffectiveEnd 计算实际截止日期：ClampToToday 时取 min(end, today)
func EffectiveEnd(end time.Time, opts RangeOptions) time.Time {
	end = Day(end)
	if !opts.ClampToToday {
		return end
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	if today := Day(now); today.Before(end) {
		return today
	}
	return end
}

// EnumerateDays 返回 [start, 实际截止日] 内的每一天（升序，含两端）
//
// start 晚于截止日或任一日期为零值时返回空切片；结果最多 MaxRangeDays 天。
func EnumerateDays(start, end time.Time, opts RangeOptions) []time.Time {
	if start.IsZero() || end.IsZero() {
		return []time.Time{}
	}
	start = Day(start)
	last := EffectiveEnd(end, opts)
	if start.After(last) {
		return []time.Time{}
	}

	days := make([]time.Time, 0, min(int(last.Sub(start).Hours()/24)+1, MaxRangeDays))
	for d := start; !d.After(last) && len(days) < MaxRangeDays; d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// EnumerateDateStrings 同 EnumerateDays，入参为 YYYY-MM-DD 字符串
// 无法解析时返回空切片，不报错（仪表盘渲染不能因此中断）
func EnumerateDateStrings(start, end string, opts RangeOptions) []time.Time {
	s, ok := ParseDate(start)
	if !ok {
		return []time.Time{}
	}
	e, ok := ParseDate(end)
	if !ok {
		return []time.Time{}
	}
	return EnumerateDays(s, e, opts)
}
