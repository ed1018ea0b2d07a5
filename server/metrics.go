package server

import (
	"sync/atomic"
)

// RoomMetrics 记录房间运行期的关键指标（用于监控与调试）
type RoomMetrics struct {
	TickCount          int64 // 统计的 Tick 次数
	TotalTickNs        int64 // Tick 累计耗时（纳秒）
	EventsEnqueued     int64 // 入队事件数
	Joined             int64 // 进入世界的实体数
	Left               int64 // 离开世界的实体数
	Cancelled          int64 // 同 Tick 内加入又离开而被抵消的实体数
	MovesRelayed       int64 // 转发的移动意图
	StaleMovesDropped  int64 // 发起者已离开而丢弃的移动意图
	ProtocolViolations int64 // 因协议违规关闭的连接
	SendOverflows      int64 // 因发送队列满关闭的连接
	MessagesSent       int64 // 投递到发送队列的消息数
	Recovered          int64 // 处理单个事件时恢复的 panic
}

func (m *RoomMetrics) IncEnqueued()          { atomic.AddInt64(&m.EventsEnqueued, 1) }
func (m *RoomMetrics) IncJoined()            { atomic.AddInt64(&m.Joined, 1) }
func (m *RoomMetrics) IncLeft()              { atomic.AddInt64(&m.Left, 1) }
func (m *RoomMetrics) AddCancelled(n int)    { atomic.AddInt64(&m.Cancelled, int64(n)) }
func (m *RoomMetrics) IncMoveRelayed()       { atomic.AddInt64(&m.MovesRelayed, 1) }
func (m *RoomMetrics) IncStaleMove()         { atomic.AddInt64(&m.StaleMovesDropped, 1) }
func (m *RoomMetrics) IncProtocolViolation() { atomic.AddInt64(&m.ProtocolViolations, 1) }
func (m *RoomMetrics) IncSendOverflow()      { atomic.AddInt64(&m.SendOverflows, 1) }
func (m *RoomMetrics) IncSent()              { atomic.AddInt64(&m.MessagesSent, 1) }
func (m *RoomMetrics) IncRecovered()         { atomic.AddInt64(&m.Recovered, 1) }
func (m *RoomMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *RoomMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":          tick,
		"events_enqueued":     atomic.LoadInt64(&m.EventsEnqueued),
		"joined":              atomic.LoadInt64(&m.Joined),
		"left":                atomic.LoadInt64(&m.Left),
		"cancelled":           atomic.LoadInt64(&m.Cancelled),
		"moves_relayed":       atomic.LoadInt64(&m.MovesRelayed),
		"stale_moves_dropped": atomic.LoadInt64(&m.StaleMovesDropped),
		"protocol_violations": atomic.LoadInt64(&m.ProtocolViolations),
		"send_overflows":      atomic.LoadInt64(&m.SendOverflows),
		"messages_sent":       atomic.LoadInt64(&m.MessagesSent),
		"recovered_panics":    atomic.LoadInt64(&m.Recovered),
		"avg_tick_ms":         avgMs,
	}
}
