package server

import "testing"

func joined(id EntityID) Event { return Event{Kind: EventJoined, ID: id} }
func left(id EntityID) Event   { return Event{Kind: EventLeft, ID: id} }
func move(id EntityID, dir Direction, start bool) Event {
	return Event{Kind: EventMove, ID: id, Move: MoveIntent{Direction: dir, Start: start}}
}

func TestConsolidateCancelsJoinLeavePairs(t *testing.T) {
	events := []Event{
		joined(1),
		joined(2),
		move(2, DirUp, true),
		left(2),
		left(7),
		joined(3),
	}
	c, cancelled := Consolidate(events)

	if cancelled != 1 || len(c.Cancelled) != 1 || c.Cancelled[0] != 2 {
		t.Fatalf("expected entity 2 cancelled, got %d %v", cancelled, c.Cancelled)
	}
	if len(c.Joined) != 2 || c.Joined[0].ID != 1 || c.Joined[1].ID != 3 {
		t.Fatalf("unexpected joined set %+v", c.Joined)
	}
	if len(c.Left) != 1 || c.Left[0] != 7 {
		t.Fatalf("unexpected left set %v", c.Left)
	}
	// 移动事件原样保留，由广播阶段按实体是否存在决定丢弃
	if len(c.Moves) != 1 || c.Moves[0].ID != 2 {
		t.Fatalf("unexpected moves %+v", c.Moves)
	}
}

func TestConsolidateNeverPutsIDInBothSets(t *testing.T) {
	events := []Event{joined(1), left(1), left(1), joined(2), left(3)}
	c, _ := Consolidate(events)
	in := make(map[EntityID]bool)
	for _, ev := range c.Joined {
		in[ev.ID] = true
	}
	for _, id := range c.Left {
		if in[id] {
			t.Fatalf("id %d in both joined and left", id)
		}
	}
}

func TestConsolidateKeepsMoveOrderWithoutDedup(t *testing.T) {
	events := []Event{
		move(1, DirUp, true),
		move(2, DirLeft, true),
		move(1, DirUp, true),
		move(1, DirUp, false),
	}
	c, _ := Consolidate(events)
	if len(c.Moves) != len(events) {
		t.Fatalf("expected %d moves, got %d", len(events), len(c.Moves))
	}
	for i := range events {
		if c.Moves[i] != events[i] {
			t.Fatalf("move %d reordered: %+v", i, c.Moves[i])
		}
	}
}

func TestEventQueueDrainClears(t *testing.T) {
	var q EventQueue
	q.Push(joined(1))
	q.Push(left(1))
	if q.Len() != 2 {
		t.Fatalf("expected 2 queued, got %d", q.Len())
	}
	got := q.Drain()
	if len(got) != 2 || got[0].Kind != EventJoined || got[1].Kind != EventLeft {
		t.Fatalf("unexpected drain %+v", got)
	}
	if q.Len() != 0 || len(q.Drain()) != 0 {
		t.Fatal("queue not cleared by Drain")
	}
}
