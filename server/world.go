package server

import (
	"math"
	"sort"
)

// World 权威世界状态：id -> 实体。只由所属 Room 的 Tick 线程访问，无需加锁
type World struct {
	width  float64
	height float64

	players map[EntityID]*Player
	order   []EntityID // 升序 id，即加入顺序，用于确定性遍历
}

func NewWorld(width, height float64) *World {
	return &World{width: width, height: height, players: make(map[EntityID]*Player)}
}

func (w *World) Get(id EntityID) (*Player, bool) {
	p, ok := w.players[id]
	return p, ok
}

func (w *World) Len() int { return len(w.players) }

// Add 插入实体；id 已存在时返回 false，保证同一 id 只有一条记录
func (w *World) Add(p *Player) bool {
	if _, exists := w.players[p.ID]; exists {
		return false
	}
	w.players[p.ID] = p
	i := sort.Search(len(w.order), func(i int) bool { return w.order[i] >= p.ID })
	w.order = append(w.order, 0)
	copy(w.order[i+1:], w.order[i:])
	w.order[i] = p.ID
	return true
}

// Remove 移除实体并返回它
func (w *World) Remove(id EntityID) (*Player, bool) {
	p, ok := w.players[id]
	if !ok {
		return nil, false
	}
	delete(w.players, id)
	i := sort.Search(len(w.order), func(i int) bool { return w.order[i] >= id })
	w.order = append(w.order[:i], w.order[i+1:]...)
	return p, true
}

// Each 按 id 升序遍历；回调内不得增删实体
func (w *World) Each(fn func(*Player)) {
	for _, id := range w.order {
		fn(w.players[id])
	}
}

// Snapshot 按 id 升序导出只读状态
func (w *World) Snapshot() []PlayerState {
	out := make([]PlayerState, 0, len(w.order))
	w.Each(func(p *Player) { out = append(out, p.State()) })
	return out
}

// Integrate 以固定 dt 推进所有实体位置
func (w *World) Integrate(speed, dt float64, normalize bool) {
	w.Each(func(p *Player) {
		p.X, p.Y = Step(p.X, p.Y, p.Moving, speed, dt, normalize, w.width, w.height)
	})
}

// Step 由移动意图计算新位置，结果总在 [0,width)×[0,height) 内（环形世界）
func Step(x, y float64, moving Intent, speed, dt float64, normalize bool, width, height float64) (float64, float64) {
	var dx, dy float64
	for _, dir := range allDirections {
		if moving[dir] {
			dx += directionVectors[dir][0]
			dy += directionVectors[dir][1]
		}
	}
	if normalize {
		if l := math.Hypot(dx, dy); l > 0 {
			dx /= l
			dy /= l
		}
	}
	return Wrap(x+dx*speed*dt, width), Wrap(y+dy*speed*dt, height)
}

// Wrap 向下取模，结果落在 [0,size)
func Wrap(v, size float64) float64 {
	return math.Mod(math.Mod(v, size)+size, size)
}
