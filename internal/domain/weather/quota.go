package weather

import (
	"sync"
	"time"

	"github.com/yanqian/wearcast/pkg/util"
)

// MandatoryCalls is the number of upstream requests every fetch makes
// (current conditions and forecast). Callers reserve them before fetching.
const MandatoryCalls = 2

// Budget hands out upstream calls. TryReserve either grants all n calls or none.
type Budget interface {
	TryReserve(n int) bool
}

// Quota counts upstream calls per UTC day. It is safe for concurrent use.
type Quota struct {
	mu      sync.Mutex
	limit   int
	used    int
	resetOn time.Time
	now     func() time.Time
}

// NewQuota builds a counter with the given daily ceiling.
func NewQuota(limit int) *Quota {
	if limit <= 0 {
		limit = defaultDailyQuota
	}
	return &Quota{limit: limit, now: util.NowUTC}
}

// WithClock swaps the time source, mainly for tests.
func (q *Quota) WithClock(now func() time.Time) *Quota {
	if now != nil {
		q.now = now
	}
	return q
}

// TryReserve claims n calls if the whole batch fits in today's budget.
// The check and the increment happen under one lock, so concurrent callers
// can never push the total past the limit.
func (q *Quota) TryReserve(n int) bool {
	if n <= 0 {
		return true
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rollover()
	if q.used+n > q.limit {
		return false
	}
	q.used += n
	return true
}

// Status returns a point-in-time view of the counter.
func (q *Quota) Status() QuotaStatus {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rollover()
	remaining := q.limit - q.used
	if remaining < 0 {
		remaining = 0
	}
	return QuotaStatus{
		Used:      q.used,
		Limit:     q.limit,
		Remaining: remaining,
		ResetsAt:  q.resetOn.Add(24 * time.Hour),
	}
}

// rollover zeroes the counter on the first access of a new UTC day. Caller holds mu.
func (q *Quota) rollover() {
	today := util.StartOfDayUTC(q.now())
	if today.After(q.resetOn) {
		q.used = 0
		q.resetOn = today
	}
}

var _ Budget = (*Quota)(nil)
