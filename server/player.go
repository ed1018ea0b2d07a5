package server

import "fmt"

// EntityID 实体唯一标识：连接建立时分配，房间内单调递增，永不复用
type EntityID uint64

// Direction 移动方向（服务端权威解释客户端“意图”）
type Direction int

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown

	numDirections
)

// allDirections 固定遍历顺序，保证合成消息的顺序可预测
var allDirections = [numDirections]Direction{DirLeft, DirRight, DirUp, DirDown}

var directionNames = [numDirections]string{"left", "right", "up", "down"}

// 单位方向向量（y 轴向下）
var directionVectors = [numDirections][2]float64{
	DirLeft:  {-1, 0},
	DirRight: {1, 0},
	DirUp:    {0, -1},
	DirDown:  {0, 1},
}

func (d Direction) String() string {
	if d < 0 || d >= numDirections {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// ParseDirection 只接受四个已知名称
func ParseDirection(s string) (Direction, bool) {
	for i, name := range directionNames {
		if name == s {
			return Direction(i), true
		}
	}
	return 0, false
}

// Intent 各方向是否处于按下状态；重复置位不计数
type Intent [numDirections]bool

// Active 是否存在任一方向意图
func (in Intent) Active() bool {
	for _, v := range in {
		if v {
			return true
		}
	}
	return false
}

// Player 房间内的实体（服务端权威状态），只由 Tick 线程读写
type Player struct {
	ID     EntityID
	X      float64
	Y      float64
	Moving Intent
	Style  string

	Conn    Peer // 网络连接的发送端
	dropped bool // 发送失败后不再投递
}

// State 导出为只读快照
func (p *Player) State() PlayerState {
	return PlayerState{ID: p.ID, X: p.X, Y: p.Y, Style: p.Style, Moving: p.Moving}
}

// PlayerState 为对外（管理接口、测试）发布的轻量状态
type PlayerState struct {
	ID     EntityID `json:"id"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Style  string   `json:"style"`
	Moving Intent   `json:"-"`
}
