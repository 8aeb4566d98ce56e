package engine

import (
	"sync"

	"hero-engine/quality"
	"hero-engine/scene"
)

// EventKind identifies what an Event asks the engine to do.
type EventKind int

const (
	EventPointer EventKind = iota
	EventSelect
	EventNext
	EventResize
	EventPulse
	EventTier
)

// Event is a request from outside the tick. It is applied at the start of
// the next tick.
type Event struct {
	Kind     EventKind
	Pointer  scene.PointerEvent
	SceneID  string
	Width    int
	Height   int
	Strength float32
	Tier     quality.Tier
}

// Queue is a bounded ring drained once per tick by the engine. Producers
// may call Push from any goroutine. When full, the oldest event is dropped.
// Consecutive pointer moves coalesce into one slot.
type Queue struct {
	mu      sync.Mutex
	buf     []Event
	head    int // next to read
	size    int
	dropped int
}

func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{buf: make([]Event, capacity)}
}

func (q *Queue) Push(ev Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if ev.Kind == EventPointer && ev.Pointer.Kind == scene.PointerMove && q.size > 0 {
		last := &q.buf[(q.head+q.size-1)%len(q.buf)]
		if last.Kind == EventPointer && last.Pointer.Kind == scene.PointerMove {
			*last = ev
			return
		}
	}
	if q.size == len(q.buf) {
		q.head = (q.head + 1) % len(q.buf)
		q.size--
		q.dropped++
	}
	q.buf[(q.head+q.size)%len(q.buf)] = ev
	q.size++
}

// Drain appends every queued event to dst in arrival order and empties the
// queue.
func (q *Queue) Drain(dst []Event) []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := 0; i < q.size; i++ {
		dst = append(dst, q.buf[(q.head+i)%len(q.buf)])
	}
	q.head = 0
	q.size = 0
	return dst
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Dropped is the number of events lost to overflow.
func (q *Queue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
