package driver

import (
	"container/heap"
	"fmt"
	"sync"
	"time"
)

// DeferredFunc is an action a deferred fires. The Context is the
// driver context of the tick in which the deferred comes due.
type DeferredFunc func(ctx *Context, d *Deferred)

// ActionResolver rediscovers a deferred's action function from its
// owner and action name. Deferreds are persisted by name, never by
// function value, so the resolver is consulted both at scheduling time
// and when a snapshot is loaded.
type ActionResolver interface {
	ResolveAction(owner, action string) (DeferredFunc, bool)
}

// Deferred is one scheduled action. All fields are exported so a
// snapshot can gob-encode the pending queue.
type Deferred struct {
	Due    time.Time
	Owner  string
	Action string
	Args   []string
	Seq    uint64
}

func (d *Deferred) String() string {
	return fmt.Sprintf("deferred %s:%s due %s", d.Owner, d.Action, d.Due.Format(time.RFC3339))
}

// deferredHeap orders by due time; equal due times fire in insertion
// order via the sequence number.
type deferredHeap []*Deferred

func (h deferredHeap) Len() int { return len(h) }

func (h deferredHeap) Less(i, j int) bool {
	if h[i].Due.Equal(h[j].Due) {
		return h[i].Seq < h[j].Seq
	}
	return h[i].Due.Before(h[j].Due)
}

func (h deferredHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *deferredHeap) Push(x any) { *h = append(*h, x.(*Deferred)) }

func (h *deferredHeap) Pop() any {
	old := *h
	n := len(old)
	d := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return d
}

// Scheduler is the mutex-protected deferred queue. Scheduling and
// cancellation may be called from deferreds and commands; popping
// happens only in the driver loop.
type Scheduler struct {
	mu       sync.Mutex
	heap     deferredHeap
	seq      uint64
	resolver ActionResolver
}

// NewScheduler creates an empty scheduler. The resolver vets every
// scheduled action name.
func NewScheduler(resolver ActionResolver) *Scheduler {
	return &Scheduler{resolver: resolver}
}

// ScheduleAt schedules an action at an absolute game time. The action
// must be rediscoverable by name on its owner; an unknown action fails
// here rather than when it comes due.
func (s *Scheduler) ScheduleAt(due time.Time, owner, action string, args ...string) (*Deferred, error) {
	if s.resolver != nil {
		if _, ok := s.resolver.ResolveAction(owner, action); !ok {
			return nil, fmt.Errorf("cannot schedule %s:%s: action is not addressable by name", owner, action)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d := &Deferred{Due: due, Owner: owner, Action: action, Args: args, Seq: s.seq}
	s.seq++
	heap.Push(&s.heap, d)
	return d, nil
}

// ScheduleAfter schedules an action after a real-time duration,
// converted to game time with the clock's factor.
func (s *Scheduler) ScheduleAfter(clock *GameClock, real time.Duration, owner, action string, args ...string) (*Deferred, error) {
	return s.ScheduleAt(clock.AfterReal(real), owner, action, args...)
}

// PopDue removes and returns every deferred due at or before now, in
// firing order.
func (s *Scheduler) PopDue(now time.Time) []*Deferred {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []*Deferred
	for len(s.heap) > 0 && !s.heap[0].Due.After(now) {
		due = append(due, heap.Pop(&s.heap).(*Deferred))
	}
	return due
}

// CancelOwner removes all deferreds belonging to an owner. Used when a
// living is destroyed or a player disconnects.
func (s *Scheduler) CancelOwner(owner string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.heap[:0]
	removed := 0
	for _, d := range s.heap {
		if d.Owner == owner {
			removed++
			continue
		}
		kept = append(kept, d)
	}
	s.heap = kept
	heap.Init(&s.heap)
	return removed
}

// Pending returns a copy of the queue in firing order.
func (s *Scheduler) Pending() []*Deferred {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(deferredHeap, len(s.heap))
	copy(out, s.heap)
	heap.Init(&out)
	sorted := make([]*Deferred, 0, len(out))
	for len(out) > 0 {
		sorted = append(sorted, heap.Pop(&out).(*Deferred))
	}
	return sorted
}

// Len reports the number of pending deferreds.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.heap)
}

// Restore replaces the queue with deferreds loaded from a snapshot.
// Each one must still resolve to an action.
func (s *Scheduler) Restore(deferreds []*Deferred) error {
	if s.resolver != nil {
		for _, d := range deferreds {
			if _, ok := s.resolver.ResolveAction(d.Owner, d.Action); !ok {
				return fmt.Errorf("saved deferred %s:%s no longer resolves", d.Owner, d.Action)
			}
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heap = s.heap[:0]
	for _, d := range deferreds {
		if d.Seq >= s.seq {
			s.seq = d.Seq + 1
		}
		s.heap = append(s.heap, d)
	}
	heap.Init(&s.heap)
	return nil
}
