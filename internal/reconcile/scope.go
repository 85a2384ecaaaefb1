package reconcile

import (
	"context"
	"fmt"
)

// ResolveScope 解析楼层房间名单
//
// 失败时返回空名单（RoomCount=0）和一条提示，调用方继续后续计算。
// RoomCount 仅作为容量使用，不与漏检房间逐个比对。
func ResolveScope(ctx context.Context, src RosterSource, scopeID string) (RoomScope, string) {
	empty := RoomScope{ScopeID: scopeID, Rooms: []RoomRef{}}
	if src == nil || scopeID == "" {
		return empty, "未配置巡检楼层，房间数按 0 计算"
	}

	scope, err := src.GetRoomRoster(ctx, scopeID)
	if err != nil {
		return empty, fmt.Sprintf("获取楼层房间失败: %v", err)
	}

	scope.ScopeID = scopeID
	if scope.Rooms == nil {
		scope.Rooms = []RoomRef{}
	}
	if scope.RoomCount < 0 {
		scope.RoomCount = 0
	}
	return scope, ""
}
