package server

import (
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"tickarena/config"
)

// ClientConn 负责发送（写）数据到客户端的轻量包装，实现 Peer
type ClientConn struct {
	ws      *websocket.Conn
	cfg     config.NetworkConfig
	session string // 仅用于日志关联

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func NewClientConn(ws *websocket.Conn, cfg config.NetworkConfig) *ClientConn {
	return &ClientConn{
		ws:      ws,
		cfg:     cfg,
		session: uuid.NewString(),
		send:    make(chan []byte, cfg.SendQueueSize),
	}
}

// Send 将要发送的消息压入队列（非阻塞）；满或已关闭时返回 false
func (c *ClientConn) Send(b []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

// Close 关闭发送队列；写协程写完剩余消息后关闭底层连接。可重复调用
func (c *ClientConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// closeWith 发送带原因的关闭帧后关闭
func (c *ClientConn) closeWith(code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.cfg.WriteTimeout))
	c.Close()
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定时发送 ping
func (c *ClientConn) writePump() {
	var ping <-chan time.Time
	if c.cfg.PingInterval > 0 {
		ticker := time.NewTicker(c.cfg.PingInterval)
		defer ticker.Stop()
		ping = ticker.C
	}
	defer c.ws.Close()
	for {
		select {
		case msg, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping:
			c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 读取客户端输入，解析为 MoveIntent 注入房间；协议违规立即断开
func (c *ClientConn) readPump(room *Room, id EntityID) {
	defer c.Close()
	// 读泵退出时，通知房间在 Tick 线程中移除该玩家
	defer room.RequestLeave(id)

	c.ws.SetReadLimit(c.cfg.ReadLimit)
	c.extendReadDeadline()
	c.ws.SetPongHandler(func(string) error { c.extendReadDeadline(); return nil })

	for {
		mt, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				Log.Debugw("read error", "room", room.ID, "id", id, "session", c.session, "err", err)
			}
			Log.Infow("connection closed", "room", room.ID, "id", id, "session", c.session)
			return
		}
		c.extendReadDeadline()
		in, err := parseFrame(mt, payload)
		if err != nil {
			room.Metrics().IncProtocolViolation()
			Log.Warnw("protocol violation, closing connection",
				"room", room.ID, "id", id, "session", c.session, "err", err)
			c.closeWith(websocket.ClosePolicyViolation, err.Error())
			return
		}
		room.OnInput(id, in)
	}
}

func (c *ClientConn) extendReadDeadline() {
	if c.cfg.ReadTimeout > 0 {
		c.ws.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	}
}

func parseFrame(mt int, payload []byte) (MoveIntent, error) {
	if mt != websocket.TextMessage {
		return MoveIntent{}, ErrMalformed
	}
	return ParseClientMessage(payload)
}

func (m *RoomManager) upgrader() websocket.Upgrader {
	allowed := m.cfg.Network.AllowedOrigins
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true
			}
			return slices.Contains(allowed, r.Header.Get("Origin"))
		},
	}
}

// HandleWS WebSocket 接入：?room=room-1，房间为空时使用默认房间
func (m *RoomManager) HandleWS(w http.ResponseWriter, r *http.Request) {
	up := m.upgrader()
	ws, err := up.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnw("upgrade error", "remote", r.RemoteAddr, "err", err)
		return
	}

	room := m.GetOrCreateRoom(r.URL.Query().Get("room"))
	client := NewClientConn(ws, m.cfg.Network)
	id := room.Connect(client)
	Log.Infow("connection accepted", "room", room.ID, "id", id, "session", client.session, "remote", r.RemoteAddr)

	go client.writePump()
	go client.readPump(room, id)
}
