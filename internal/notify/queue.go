package notify

import (
	"container/heap"
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-birthday-reminders/internal/config"
)

var (
	ErrInvalidFireTime = errors.New(config.ErrInvalidFireTime)
	ErrQueueStopped    = errors.New(config.ErrQueueStopped)
)

type pendingQueue []PendingNotification

func (pq pendingQueue) Len() int { return len(pq) }

func (pq pendingQueue) Less(i, j int) bool {
	return pq[i].At.Before(pq[j].At)
}

func (pq pendingQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *pendingQueue) Push(x any) {
	*pq = append(*pq, x.(PendingNotification))
}

func (pq *pendingQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}

// TimerQueue is an in-process NativeBackend: an absolute-time priority queue
// keyed by notification id. Scheduling an id that is already pending replaces
// the previous entry. Due entries are emitted on C(); when the consumer is too
// slow the entry is dropped and counted.
type TimerQueue struct {
	mu      sync.Mutex
	queue   pendingQueue
	out     chan PendingNotification
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

func NewTimerQueue(bufferSize int) *TimerQueue {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &TimerQueue{
		queue:  make(pendingQueue, 0),
		out:    make(chan PendingNotification, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// C delivers due entries. It is closed exactly once, by Stop, whether or not
// the queue was ever started, so consumers can always range over it.
func (q *TimerQueue) C() <-chan PendingNotification {
	return q.out
}

// Start launches the dispatch goroutine. It is a no-op when the queue is
// already running or has been stopped: a stopped queue has closed C() and
// cannot deliver again.
func (q *TimerQueue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.stopped {
		return
	}
	q.started = true
	heap.Init(&q.queue)
	go q.loop()
}

// Stop ends dispatch and closes C(). Pending entries are discarded.
//
// The output channel has two possible owners. Once Start has run, the loop
// goroutine owns it and closes it on its way out, and Stop only waits for
// doneCh. If the queue never started there is no goroutine to do that, so
// Stop closes it itself; the stopped flag, read under mu, keeps either path
// from running twice.
func (q *TimerQueue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	if !q.started {
		close(q.out)
		q.mu.Unlock()
		return
	}
	close(q.stopCh)
	q.mu.Unlock()
	<-q.doneCh
}

// RequestPermission always grants: the queue lives in the application process.
func (q *TimerQueue) RequestPermission(context.Context) (Permission, error) {
	return PermissionGranted, nil
}

func (q *TimerQueue) Schedule(_ context.Context, n PendingNotification) error {
	if n.At.IsZero() {
		return ErrInvalidFireTime
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return ErrQueueStopped
	}

	q.removeLocked(map[int32]struct{}{n.ID: {}})
	heap.Push(&q.queue, n)
	q.signalWakeup()
	return nil
}

// Cancel removes the given ids; unknown ids are ignored.
func (q *TimerQueue) Cancel(_ context.Context, ids []int32) error {
	set := make(map[int32]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.removeLocked(set) {
		q.signalWakeup()
	}
	return nil
}

// ListPending returns a snapshot ordered by fire instant.
func (q *TimerQueue) ListPending(context.Context) ([]PendingNotification, error) {
	q.mu.Lock()
	out := make([]PendingNotification, len(q.queue))
	copy(out, q.queue)
	q.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].At.Before(out[j].At)
	})
	return out, nil
}

func (q *TimerQueue) Dropped() uint64 {
	return atomic.LoadUint64(&q.dropped)
}

func (q *TimerQueue) removeLocked(ids map[int32]struct{}) bool {
	kept := q.queue[:0]
	removed := false
	for _, item := range q.queue {
		if _, ok := ids[item.ID]; ok {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	q.queue = kept
	if removed {
		heap.Init(&q.queue)
	}
	return removed
}

func (q *TimerQueue) loop() {
	defer close(q.doneCh)
	defer close(q.out)

	var timer *time.Timer
	for {
		next, hasNext := q.peek()
		if !hasNext {
			select {
			case <-q.wakeup:
				continue
			case <-q.stopCh:
				return
			}
		}

		wait := time.Until(next.At)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			for _, n := range q.popDue(time.Now()) {
				select {
				case q.out <- n:
				default:
					atomic.AddUint64(&q.dropped, 1)
					slog.Warn(config.MsgQueueDropped,
						config.LogKeyComponent, config.CompQueue,
						config.LogKeyNotifID, n.ID)
				}
			}
		case <-q.wakeup:
			continue
		case <-q.stopCh:
			stopTimer(timer)
			return
		}
	}
}

func (q *TimerQueue) signalWakeup() {
	select {
	case q.wakeup <- struct{}{}:
	default:
	}
}

func (q *TimerQueue) peek() (PendingNotification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.queue) == 0 {
		return PendingNotification{}, false
	}
	return q.queue[0], true
}

func (q *TimerQueue) popDue(now time.Time) []PendingNotification {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]PendingNotification, 0)
	for len(q.queue) > 0 {
		if q.queue[0].At.After(now) {
			break
		}
		out = append(out, heap.Pop(&q.queue).(PendingNotification))
	}
	return out
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
