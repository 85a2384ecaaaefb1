package reconcile

import (
	"strings"
	"time"
)

// ── 检查项状态 ──

// ItemStatus 检查项三态
type ItemStatus int

const (
	ItemPending ItemStatus = iota // 未填写
	ItemOK                        // 正常
	ItemNotOK                     // 异常 / 未处理
)

// LabelContext 检查项标签的展示场景
//
// 值为 0 的检查项在两个场景下含义不同：漏检快照中表示从未处理，
// 已提交巡检中表示检查不通过，因此标签按场景区分而不是统一。
type LabelContext int

const (
	MissedRoomContext LabelContext = iota
	SubmittedContext
)

// ItemStatusOf 将可空的 0/1 标记映射为三态；其他取值按未填写处理
func ItemStatusOf(flag *int) ItemStatus {
	if flag == nil {
		return ItemPending
	}
	switch *flag {
	case 1:
		return ItemOK
	case 0:
		return ItemNotOK
	default:
		return ItemPending
	}
}

// Label 返回场景对应的展示文字
func (s ItemStatus) Label(ctx LabelContext) string {
	switch s {
	case ItemOK:
		return "OK"
	case ItemNotOK:
		if ctx == SubmittedContext {
			return "Not OK"
		}
		return "No Action"
	default:
		return "Pending"
	}
}

func (s ItemStatus) String() string {
	switch s {
	case ItemOK:
		return "ok"
	case ItemNotOK:
		return "not_ok"
	default:
		return "pending"
	}
}

// ── 巡检记录状态 ──

const (
	InspectionDone    = "Done"
	InspectionMissed  = "Missed"
	InspectionPending = "Pending"
)

// InspectionStatus 推导巡检记录状态，优先级固定：
//  1. 已存储的评级（Excellent / Good / Fair / Poor 等）
//  2. 有更新时间 → Done
//  3. 日期早于今天 → Missed
//  4. 其余 → Pending
//
// 2 必须在 3 之前，否则当天完成的记录会被误判。
func InspectionStatus(stored *string, updatedAt *time.Time, date, now time.Time) string {
	if stored != nil {
		if s := strings.TrimSpace(*stored); s != "" {
			return s
		}
	}
	if updatedAt != nil && !updatedAt.IsZero() {
		return InspectionDone
	}
	if Day(date).Before(Day(now)) {
		return InspectionMissed
	}
	return InspectionPending
}
