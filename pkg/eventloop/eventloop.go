// Package eventloop implements the single-threaded, deterministic
// discrete-event scheduler at the heart of the simulator. It drives every
// notion of time in the system: nothing outside Dispatch ever advances the
// virtual clock.
package eventloop

import (
	"container/heap"
	"errors"
	"fmt"

	"github.com/rivermark-labs/marketsim/pkg/simtime"
)

// ErrCapacityExceeded is returned by Add once the replayable cap is reached.
var ErrCapacityExceeded = errors.New("eventloop: replayable capacity exceeded")

// maxReplayables mirrors the reference implementation's cap.
const maxReplayables = 4096

// Action is a deferred callable posted to the loop.
type Action func()

// Replayable is a lazy, non-restartable, finite-or-infinite sequence of
// timestamped events. The event loop drives it via Add.
type Replayable interface {
	// NextEventTime returns the timestamp of the next pending event, or
	// simtime.Max once exhausted.
	NextEventTime() simtime.TimestampNs
	// DispatchNext emits every event sharing the next timestamp to the
	// downstream sink and advances past them.
	DispatchNext()
	// Skip advances past all events strictly before ts without dispatching.
	Skip(ts simtime.TimestampNs)
}

// timedEvent is a future-scheduled action, ordered by (expireTime, id).
type timedEvent struct {
	id         int64
	expireTime simtime.TimestampNs
	action     Action
}

// futureQueue is a min-heap over timedEvent ordered first by expireTime,
// then by id (the tie-break that gives FIFO semantics for co-timed events).
type futureQueue []*timedEvent

func (q futureQueue) Len() int { return len(q) }
func (q futureQueue) Less(i, j int) bool {
	if q[i].expireTime != q[j].expireTime {
		return q[i].expireTime < q[j].expireTime
	}
	return q[i].id < q[j].id
}
func (q futureQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *futureQueue) Push(x any)   { *q = append(*q, x.(*timedEvent)) }
func (q *futureQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// EventLoop is the virtual-clock scheduler. The zero value is not usable;
// construct with New.
type EventLoop struct {
	now    simtime.TimestampNs
	future futureQueue
	chores []Action
	nextID int64
	enabled bool

	replayables      []*replayableDispatcher
	activeReplayable int
}

// New constructs an EventLoop whose clock starts at start.
func New(start simtime.TimestampNs) *EventLoop {
	return &EventLoop{
		now:     start,
		enabled: true,
	}
}

// Now returns the current virtual-clock time.
func (el *EventLoop) Now() simtime.TimestampNs {
	return el.now
}

// Post schedules action to run at Now()+delta. A zero delta places the
// action on the FIFO chore queue, where it runs before the clock advances
// again; a positive delta places it on the future-event priority queue.
func (el *EventLoop) Post(delta simtime.TimestampNs, action Action) {
	if delta <= 0 {
		el.chores = append(el.chores, action)
		return
	}
	el.postFuture(el.now+delta, action)
}

func (el *EventLoop) postFuture(at simtime.TimestampNs, action Action) {
	el.nextID++
	heap.Push(&el.future, &timedEvent{id: el.nextID, expireTime: at, action: action})
}

// Stop schedules the loop to halt delta nanoseconds from now. It is
// implemented as a future event carrying the maximum possible tie-break id,
// so it always runs after every other event co-scheduled at that instant.
func (el *EventLoop) Stop(delta simtime.TimestampNs) {
	heap.Push(&el.future, &timedEvent{
		id:         int64(^uint64(0) >> 1),
		expireTime: el.now + delta,
		action:     func() { el.enabled = false },
	})
}

// Add attaches a Replayable to the loop. It calls Skip(Now()) once and then
// drives the replayable forward via posted future events until it is
// exhausted, at which point the loop schedules Stop(0) once the last
// attached replayable finishes.
func (el *EventLoop) Add(r Replayable) error {
	if len(el.replayables) >= maxReplayables {
		return fmt.Errorf("eventloop: add replayable: %w", ErrCapacityExceeded)
	}
	rd := &replayableDispatcher{loop: el, replayable: r}
	el.replayables = append(el.replayables, rd)
	el.activeReplayable++
	rd.start()
	return nil
}

// Dispatch runs the loop until both queues are empty or Stop fires. If the
// future-event queue is non-empty on entry, the clock fast-forwards to the
// soonest pending expireTime first — used to skip the idle warm-up period
// straight to the first market-data record.
func (el *EventLoop) Dispatch() {
	el.enabled = true

	if el.future.Len() > 0 {
		el.now = el.future[0].expireTime
	}

	for el.enabled && (el.future.Len() > 0 || len(el.chores) > 0) {
		el.dispatchChores()
		el.dispatchNextFuture()
	}
}

// dispatchChores drains every chore FIFO, including chores appended by
// chores run during this very drain.
func (el *EventLoop) dispatchChores() {
	for el.enabled && len(el.chores) > 0 {
		next := el.chores[0]
		el.chores = el.chores[1:]
		next()
	}
}

func (el *EventLoop) dispatchNextFuture() {
	if !el.enabled || el.future.Len() == 0 {
		return
	}
	ev := heap.Pop(&el.future).(*timedEvent)
	el.now = ev.expireTime
	ev.action()
}

// onReplayableDone is called by a replayableDispatcher once its source is
// exhausted. When the count of active replayables drops to zero, the loop
// schedules Stop(0).
func (el *EventLoop) onReplayableDone() {
	el.activeReplayable--
	if el.activeReplayable == 0 {
		el.Stop(0)
	}
}

// replayableDispatcher is the state machine described in §4.2: skip to now,
// then alternate between posting the wait for the next event and
// dispatching it.
type replayableDispatcher struct {
	loop       *EventLoop
	replayable Replayable
}

func (d *replayableDispatcher) start() {
	d.replayable.Skip(d.loop.Now())
	d.postNext()
}

func (d *replayableDispatcher) dispatch() {
	d.replayable.DispatchNext()
	d.postNext()
}

func (d *replayableDispatcher) postNext() {
	now := d.loop.Now()
	next := d.replayable.NextEventTime()
	if next >= simtime.Max {
		d.loop.onReplayableDone()
		return
	}
	delta := next - now
	if delta < 0 {
		delta = 0
	}
	d.loop.Post(delta, d.dispatch)
}
