package crawler

import "sync"

// VisitedSet tracks the players already claimed for processing within this
// process lifetime. It guards against re-entrant processing only; the
// durable resume cursor on each Player is what survives restarts.
type VisitedSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewVisitedSet() *VisitedSet {
	return &VisitedSet{ids: make(map[string]struct{})}
}

// Add claims an id, returning false when it was already claimed.
func (v *VisitedSet) Add(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.ids[id]; ok {
		return false
	}
	v.ids[id] = struct{}{}
	return true
}

func (v *VisitedSet) Contains(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.ids[id]
	return ok
}

func (v *VisitedSet) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.ids)
}

// playerQueue is a process-local FIFO of membership ids awaiting
// ingestion. Discovery pushes while a drain is in progress, so the queue
// can grow during a player's own processing.
type playerQueue struct {
	mu  sync.Mutex
	ids []string
}

func (q *playerQueue) Push(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = append(q.ids, id)
}

func (q *playerQueue) Pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.ids) == 0 {
		return "", false
	}
	id := q.ids[0]
	q.ids = q.ids[1:]
	return id, true
}

func (q *playerQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ids)
}
