package server

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"tickarena/config"
)

// Peer 单个连接的发送端；Send 非阻塞，队列满或已关闭时返回 false
type Peer interface {
	Send(msg []byte) bool
	Close()
}

// Room 房间世界：权威状态维护在内存，单线程 Tick 推进
// 网络侧只向事件队列追加，世界状态只在 Step 中读写
type Room struct {
	ID string

	cfg     config.WorldConfig
	queue   EventQueue
	world   *World
	metrics *RoomMetrics

	nextID atomic.Uint64

	// Connect 登记、Tick 取走；事件本身只携带 id
	connMu sync.Mutex
	conns  map[EntityID]Peer

	rngMu sync.Mutex
	rng   *rand.Rand

	// 管理接口写入，下一次 Tick 开始时生效
	speedBits atomic.Uint64

	stepMu   sync.Mutex
	tickSeq  atomic.Uint64
	snapshot atomic.Pointer[[]PlayerState]

	runMu sync.Mutex
	stop  chan struct{}
	done  chan struct{}
}

// NewRoom 创建房间，初始化数据结构
func NewRoom(id string, cfg config.WorldConfig) *Room {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	r := &Room{
		ID:      id,
		cfg:     cfg,
		world:   NewWorld(cfg.Width, cfg.Height),
		metrics: &RoomMetrics{},
		conns:   make(map[EntityID]Peer),
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	r.speedBits.Store(math.Float64bits(cfg.PlayerSpeed))
	empty := []PlayerState{}
	r.snapshot.Store(&empty)
	return r
}

// Connect 为新连接分配 id 与出生点，并登记 Joined 事件；实体在下一次 Tick 才进入世界
func (r *Room) Connect(conn Peer) EntityID {
	id := EntityID(r.nextID.Add(1))
	x, y, style := r.spawn()
	r.connMu.Lock()
	r.conns[id] = conn
	r.connMu.Unlock()
	r.queue.Push(Event{Kind: EventJoined, ID: id, X: x, Y: y, Style: style})
	r.metrics.IncEnqueued()
	return id
}

// RequestLeave 登记 Left 事件，由 Tick 线程移除玩家，避免并发改动房间状态
func (r *Room) RequestLeave(id EntityID) {
	r.queue.Push(Event{Kind: EventLeft, ID: id})
	r.metrics.IncEnqueued()
}

// OnInput 入站输入（不立即改变状态），仅记录意图，等下一次 Tick 处理
func (r *Room) OnInput(id EntityID, in MoveIntent) {
	r.queue.Push(Event{Kind: EventMove, ID: id, Move: in})
	r.metrics.IncEnqueued()
}

// takeConn 取出并注销连接；不存在时返回 nil
func (r *Room) takeConn(id EntityID) Peer {
	r.connMu.Lock()
	defer r.connMu.Unlock()
	conn := r.conns[id]
	delete(r.conns, id)
	return conn
}

// pendingConns 已连接但尚未进入世界的连接数
func (r *Room) pendingConns() int {
	r.connMu.Lock()
	defer r.connMu.Unlock()
	return len(r.conns)
}

// spawn 在世界内（扣除实体占位）均匀随机取点，并生成随机外观
func (r *Room) spawn() (x, y float64, style string) {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	x = r.rng.Float64() * (r.cfg.Width - r.cfg.PlayerSize)
	y = r.rng.Float64() * (r.cfg.Height - r.cfg.PlayerSize)
	style = fmt.Sprintf("hsl(%d 80%% 50%%)", r.rng.IntN(360))
	return x, y, style
}

// SetSpeed 修改移动速度，下一次 Tick 生效
func (r *Room) SetSpeed(v float64) error {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("invalid speed %v", v)
	}
	r.speedBits.Store(math.Float64bits(v))
	return nil
}

func (r *Room) Speed() float64 { return math.Float64frombits(r.speedBits.Load()) }

func (r *Room) Config() config.WorldConfig { return r.cfg }

func (r *Room) Metrics() *RoomMetrics { return r.metrics }

// TickSeq 当前 Tick 序号，仅用于诊断
func (r *Room) TickSeq() uint64 { return r.tickSeq.Load() }

// Snapshot 返回最近一次 Tick 结束后发布的世界快照（按 id 升序）
func (r *Room) Snapshot() []PlayerState { return *r.snapshot.Load() }

// Step 执行一次完整 Tick：取走事件 → 合并 → 广播 → 模拟 → 发布快照
func (r *Room) Step() {
	r.stepMu.Lock()
	defer r.stepMu.Unlock()

	start := time.Now()
	seq := r.tickSeq.Add(1)
	speed := r.Speed()

	events := r.queue.Drain()
	c, cancelled := Consolidate(events)

	r.discardCancelled(c.Cancelled)
	departed := r.removeDeparted(c.Left)
	greeted := r.greetJoined(c.Joined)
	r.announceJoined(greeted)
	r.announceLeft(departed, greeted)
	r.relayMoves(c.Moves)

	r.world.Integrate(speed, 1/float64(r.cfg.TickRate), r.cfg.NormalizeDiagonal)

	snap := r.world.Snapshot()
	r.snapshot.Store(&snap)

	r.metrics.AddCancelled(cancelled)
	elapsed := time.Since(start)
	r.metrics.AddTick(elapsed.Nanoseconds())
	if len(events) > 0 {
		Log.Debugw("tick",
			"room", r.ID,
			"tick", seq,
			"events", len(events),
			"joined", len(greeted),
			"left", len(departed),
			"moves", len(c.Moves),
			"cancelled", cancelled,
			"players", r.world.Len(),
			"elapsed", elapsed,
		)
	}
}

// discardCancelled 注销被抵消实体的连接，它们不会进入世界
func (r *Room) discardCancelled(ids []EntityID) {
	for _, id := range ids {
		if conn := r.takeConn(id); conn != nil {
			r.isolate("cancel", id, conn.Close)
		}
	}
}

// removeDeparted 在广播前移除离开的实体；返回确实存在过的 id
// 先移出世界再关闭连接，Close 异常不影响移除
func (r *Room) removeDeparted(left []EntityID) []EntityID {
	departed := make([]EntityID, 0, len(left))
	for _, id := range left {
		p, ok := r.world.Remove(id)
		if !ok {
			continue
		}
		departed = append(departed, id)
		r.metrics.IncLeft()
		if p.Conn != nil {
			r.isolate("close", id, p.Conn.Close)
		}
	}
	return departed
}

// isolate 单个事件的处理异常只丢弃该事件，Tick 其余部分照常进行
func (r *Room) isolate(stage string, id EntityID, fn func()) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			ok = false
			r.metrics.IncRecovered()
			Log.Errorw("event handling panicked",
				"room", r.ID,
				"stage", stage,
				"id", id,
				"panic", rec,
			)
		}
	}()
	fn()
	return true
}
