package reconcile

import (
	"context"
	"time"
)

// retryMissedSource 漏检查询失败时有限次重试
type retryMissedSource struct {
	next    MissedRoomSource
	retries int
	backoff time.Duration
}

// WithRetry 为 MissedRoomSource 增加最多 retries 次重试；retries<=0 时原样返回
func WithRetry(src MissedRoomSource, retries int, backoff time.Duration) MissedRoomSource {
	if src == nil || retries <= 0 {
		return src
	}
	return &retryMissedSource{next: src, retries: retries, backoff: backoff}
}

func (r *retryMissedSource) GetMissedRooms(ctx context.Context, userID, scopeID string, date time.Time) ([]MissedRoomEntry, error) {
	rooms, err := r.next.GetMissedRooms(ctx, userID, scopeID, date)
	for attempt := 1; err != nil && attempt <= r.retries; attempt++ {
		if r.backoff > 0 {
			timer := time.NewTimer(r.backoff * time.Duration(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, err
			case <-timer.C:
			}
		}
		rooms, err = r.next.GetMissedRooms(ctx, userID, scopeID, date)
	}
	return rooms, err
}
