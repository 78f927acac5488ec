package live

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultGracePeriod is how long a query keeps its upstream watch alive
// after the last subscriber leaves, so quickly returning consumers reuse
// the running query instead of restarting it.
const DefaultGracePeriod = 5 * time.Second

// FetchFunc produces one snapshot of the query result.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Query is a shared live query: all subscribers share one upstream
// execution, and every committed write to a watched table re-emits a
// fresh snapshot to each of them. Slow subscribers are conflated to the
// latest snapshot rather than back-pressuring the rest.
type Query[T any] struct {
	broker    *Broker
	fetch     FetchFunc[T]
	subs      map[int64]chan T
	unwatch   func()
	stopTimer *time.Timer
	refresh   chan struct{}
	done      chan struct{}
	tables    []string
	grace     time.Duration
	nextSub   int64
	mu        sync.Mutex
}

// NewQuery creates a live query over fetch, invalidated by writes to the
// given tables. The upstream watch starts with the first subscriber.
func NewQuery[T any](broker *Broker, fetch FetchFunc[T], tables ...string) *Query[T] {
	return &Query[T]{
		broker:  broker,
		fetch:   fetch,
		tables:  tables,
		grace:   DefaultGracePeriod,
		subs:    make(map[int64]chan T),
		refresh: make(chan struct{}, 1),
	}
}

// WithGracePeriod overrides the teardown grace period.
func (q *Query[T]) WithGracePeriod(grace time.Duration) *Query[T] {
	q.grace = grace
	return q
}

// Subscribe attaches a consumer. The returned channel receives the
// current snapshot promptly and a fresh one after every relevant write;
// it is closed by cancel. Cancelling the context also unsubscribes.
func (q *Query[T]) Subscribe(ctx context.Context) (<-chan T, func()) {
	ch := make(chan T, 1)

	q.mu.Lock()
	if q.stopTimer != nil {
		q.stopTimer.Stop()
		q.stopTimer = nil
	}

	id := q.nextSub
	q.nextSub++
	q.subs[id] = ch

	if q.unwatch == nil {
		q.start()
	}
	q.requestRefresh()
	q.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			q.mu.Lock()
			delete(q.subs, id)
			close(ch)
			if len(q.subs) == 0 {
				q.scheduleStop()
			}
			q.mu.Unlock()
		})
	}

	stop := context.AfterFunc(ctx, cancel)
	return ch, func() {
		stop()
		cancel()
	}
}

// start launches the shared upstream loop. Caller holds q.mu.
func (q *Query[T]) start() {
	q.done = make(chan struct{})
	q.unwatch = q.broker.watch(q.tables, q.requestRefresh)

	refresh, done := q.refresh, q.done
	go func() {
		for {
			select {
			case <-done:
				return
			case <-refresh:
				q.runFetch()
			}
		}
	}()
}

// scheduleStop arms the grace-period teardown. Caller holds q.mu.
func (q *Query[T]) scheduleStop() {
	q.stopTimer = time.AfterFunc(q.grace, func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		if len(q.subs) > 0 || q.unwatch == nil {
			return
		}
		q.unwatch()
		q.unwatch = nil
		close(q.done)
		q.stopTimer = nil
	})
}

// requestRefresh queues one upstream execution; pending requests conflate.
func (q *Query[T]) requestRefresh() {
	select {
	case q.refresh <- struct{}{}:
	default:
	}
}

// runFetch executes the query once and fans the snapshot out.
func (q *Query[T]) runFetch() {
	snapshot, err := q.fetch(context.Background())
	if err != nil {
		slog.Error("live query fetch failed", "tables", q.tables, "error", err)
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	for _, ch := range q.subs {
		// Replace a stale unread snapshot instead of blocking.
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}
