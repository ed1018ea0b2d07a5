package server

import "encoding/json"

// 出站消息：字段集固定，一条消息对应一个 WebSocket 文本帧

type HelloMessage struct {
	Kind  string   `json:"kind"`
	ID    EntityID `json:"id"`
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	Style string   `json:"style"`
}

type PeerJoinedMessage struct {
	Kind  string   `json:"kind"`
	ID    EntityID `json:"id"`
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	Style string   `json:"style"`
}

type PeerLeftMessage struct {
	Kind string   `json:"kind"`
	ID   EntityID `json:"id"`
}

type PeerMovingMessage struct {
	Kind      string   `json:"kind"`
	ID        EntityID `json:"id"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Start     bool     `json:"start"`
	Direction string   `json:"direction"`
}

func encodeHello(p *Player) []byte {
	return mustEncode(HelloMessage{Kind: "Hello", ID: p.ID, X: p.X, Y: p.Y, Style: p.Style})
}

func encodePeerJoined(p *Player) []byte {
	return mustEncode(PeerJoinedMessage{Kind: "PeerJoined", ID: p.ID, X: p.X, Y: p.Y, Style: p.Style})
}

func encodePeerLeft(id EntityID) []byte {
	return mustEncode(PeerLeftMessage{Kind: "PeerLeft", ID: id})
}

func encodePeerMoving(p *Player, dir Direction, start bool) []byte {
	return mustEncode(PeerMovingMessage{
		Kind:      "PeerMoving",
		ID:        p.ID,
		X:         p.X,
		Y:         p.Y,
		Start:     start,
		Direction: dir.String(),
	})
}

// 以上结构只含数值与字符串，编码不会失败
func mustEncode(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
