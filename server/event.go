package server

import "sync"

// EventKind 入站事件类型
type EventKind int

const (
	EventJoined EventKind = iota
	EventLeft
	EventMove
)

// Event 两次 Tick 之间累积的入站事件，纯数据，被下一次 Tick 消费一次
type Event struct {
	Kind EventKind
	ID   EntityID

	// Joined
	X, Y  float64
	Style string

	// Move
	Move MoveIntent
}

// Consolidated 一个 Tick 窗口内事件的合并结果
// Joined/Left 保持到达顺序，同一 id 至多出现在其中一个里
type Consolidated struct {
	Joined    []Event
	Left      []EntityID
	Moves     []Event
	Cancelled []EntityID // 加入又离开而被抵消的 id
}

// Consolidate 合并一个窗口内的事件：同窗口内先加入后离开的实体被整体抵消
// cancelled 为被抵消的实体数；移动事件原样保序保留，不去重
func Consolidate(events []Event) (c Consolidated, cancelled int) {
	joinedAt := make(map[EntityID]int)
	removed := make(map[int]bool)
	for _, ev := range events {
		switch ev.Kind {
		case EventJoined:
			joinedAt[ev.ID] = len(c.Joined)
			c.Joined = append(c.Joined, ev)
		case EventLeft:
			if idx, ok := joinedAt[ev.ID]; ok {
				// 整个生命周期对其他客户端不可见
				delete(joinedAt, ev.ID)
				removed[idx] = true
				c.Cancelled = append(c.Cancelled, ev.ID)
				continue
			}
			c.Left = append(c.Left, ev.ID)
		case EventMove:
			c.Moves = append(c.Moves, ev)
		}
	}
	if len(removed) > 0 {
		kept := c.Joined[:0]
		for i, ev := range c.Joined {
			if !removed[i] {
				kept = append(kept, ev)
			}
		}
		c.Joined = kept
	}
	return c, len(c.Cancelled)
}

// EventQueue 按到达顺序追加、每个 Tick 整体取走一次
// 锁只在追加与取走时持有，绝不跨越发送
type EventQueue struct {
	mu     sync.Mutex
	events []Event
}

func (q *EventQueue) Push(ev Event) {
	q.mu.Lock()
	q.events = append(q.events, ev)
	q.mu.Unlock()
}

// Drain 取走当前全部事件并清空队列
func (q *EventQueue) Drain() []Event {
	q.mu.Lock()
	events := q.events
	q.events = nil
	q.mu.Unlock()
	return events
}

func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
