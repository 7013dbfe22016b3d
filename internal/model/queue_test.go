package model

import (
	"errors"
	"testing"
)

func everyone(Player) bool { return true }

func TestQueuePairsInArrivalOrder(t *testing.T) {
	q := NewQueue()
	for _, id := range []string{"p1", "p2", "p3"} {
		if err := q.AddPlayer(Player{ID: id}); err != nil {
			t.Fatalf("AddPlayer(%s): %v", id, err)
		}
	}
	if err := q.AddPlayer(Player{ID: "p2"}); !errors.Is(err, ErrAlreadyQueued) {
		t.Fatalf("expected ErrAlreadyQueued, got %v", err)
	}

	a, b, ok := q.PopPair(everyone)
	if !ok || a.Player.ID != "p1" || b.Player.ID != "p2" {
		t.Fatalf("PopPair = %s, %s, %v", a.Player.ID, b.Player.ID, ok)
	}
	if a.JoinedAt.IsZero() || b.JoinedAt.Before(a.JoinedAt) {
		t.Fatalf("join times %s, %s", a.JoinedAt, b.JoinedAt)
	}
	if _, _, ok := q.PopPair(everyone); ok {
		t.Fatalf("one player left, no pair expected")
	}
	if q.Size() != 1 {
		t.Fatalf("Size = %d", q.Size())
	}
	if !q.RemovePlayer("p3") || q.RemovePlayer("p3") {
		t.Fatalf("RemovePlayer should succeed exactly once")
	}
}

func TestQueueSkipsPlayersNotReady(t *testing.T) {
	q := NewQueue()
	for _, id := range []string{"p1", "p2", "p3", "p4"} {
		if err := q.AddPlayer(Player{ID: id}); err != nil {
			t.Fatalf("AddPlayer(%s): %v", id, err)
		}
	}
	ready := func(p Player) bool { return p.ID != "p1" && p.ID != "p3" }

	a, b, ok := q.PopPair(ready)
	if !ok || a.Player.ID != "p2" || b.Player.ID != "p4" {
		t.Fatalf("PopPair = %s, %s, %v", a.Player.ID, b.Player.ID, ok)
	}
	if _, _, ok := q.PopPair(ready); ok {
		t.Fatalf("no ready players left, no pair expected")
	}

	first, second, ok := q.PopPair(everyone)
	if !ok || first.Player.ID != "p1" || second.Player.ID != "p3" {
		t.Fatalf("skipped players lost their place: %s, %s, %v", first.Player.ID, second.Player.ID, ok)
	}
}
