package engine

import (
	"testing"

	"hero-engine/scene"
)

func TestQueueCoalescesPointerMoves(t *testing.T) {
	q := NewQueue(8)
	q.Push(Event{Kind: EventPointer, Pointer: scene.PointerEvent{X: 0.1, Kind: scene.PointerMove}})
	q.Push(Event{Kind: EventPointer, Pointer: scene.PointerEvent{X: 0.2, Kind: scene.PointerMove}})
	q.Push(Event{Kind: EventPointer, Pointer: scene.PointerEvent{X: 0.3, Kind: scene.PointerMove}})
	q.Push(Event{Kind: EventPointer, Pointer: scene.PointerEvent{X: 0.3, Kind: scene.PointerDown}})
	q.Push(Event{Kind: EventPointer, Pointer: scene.PointerEvent{X: 0.4, Kind: scene.PointerMove}})

	got := q.Drain(nil)
	if len(got) != 3 {
		t.Fatalf("Drain: expected 3 events, got %d", len(got))
	}
	if got[0].Pointer.X != 0.3 {
		t.Errorf("coalesced move: expected 0.3, got %v", got[0].Pointer.X)
	}
	if got[1].Pointer.Kind != scene.PointerDown {
		t.Errorf("second event: expected down, got %v", got[1].Pointer.Kind)
	}
	if q.Len() != 0 {
		t.Errorf("Len after drain: expected 0, got %d", q.Len())
	}
}

func TestQueueDropsOldestWhenFull(t *testing.T) {
	q := NewQueue(3)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		q.Push(Event{Kind: EventSelect, SceneID: id})
	}
	if q.Dropped() != 2 {
		t.Errorf("Dropped: expected 2, got %d", q.Dropped())
	}
	got := q.Drain(nil)
	if len(got) != 3 || got[0].SceneID != "c" || got[2].SceneID != "e" {
		t.Errorf("Drain: expected [c d e], got %+v", got)
	}

	// The ring keeps working after wrap-around.
	q.Push(Event{Kind: EventNext})
	if got := q.Drain(nil); len(got) != 1 || got[0].Kind != EventNext {
		t.Errorf("Drain after wrap: unexpected %+v", got)
	}
}
