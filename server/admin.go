package server

import (
	"encoding/json"
	"net/http"
)

// Routes 组装全部 HTTP 路由
func (m *RoomManager) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", m.HandleWS)
	// 管理与监控接口
	mux.HandleFunc("/admin/config", m.HandleAdminConfig)
	mux.HandleFunc("/admin/players", m.HandlePlayers)
	mux.HandleFunc("/metrics", m.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	if dir := m.cfg.Server.StaticDir; dir != "" {
		mux.Handle("/", http.FileServer(http.Dir(dir)))
	}
	return mux
}

type roomSettings struct {
	Speed             float64 `json:"speed"`
	Width             float64 `json:"width"`
	Height            float64 `json:"height"`
	PlayerSize        float64 `json:"playerSize"`
	TickRate          int     `json:"tickRate"`
	NormalizeDiagonal bool    `json:"normalizeDiagonal"`
}

// HandleAdminConfig 读取房间设置；POST 仅允许修改移动速度，下一 Tick 生效
// GET /admin/config?room=room-1
// POST /admin/config?room=room-1  {"speed": 300}
func (m *RoomManager) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	room, ok := m.Room(r.URL.Query().Get("room"))
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		cfg := room.Config()
		writeJSON(w, roomSettings{
			Speed:             room.Speed(),
			Width:             cfg.Width,
			Height:            cfg.Height,
			PlayerSize:        cfg.PlayerSize,
			TickRate:          cfg.TickRate,
			NormalizeDiagonal: cfg.NormalizeDiagonal,
		})
	case http.MethodPost:
		var body struct {
			Speed *float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Speed == nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := room.SetSpeed(*body.Speed); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		Log.Infow("config updated", "room", room.ID, "speed", *body.Speed)
		writeJSON(w, map[string]any{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMetrics 输出指定房间的运行指标
// GET /metrics?room=room-1
func (m *RoomManager) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	room, ok := m.Room(r.URL.Query().Get("room"))
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{
		"room":    room.ID,
		"tick":    room.TickSeq(),
		"players": len(room.Snapshot()),
		"pending": room.pendingConns(),
		"metrics": room.Metrics().Snapshot(),
	})
}

// HandlePlayers 输出最近一次 Tick 后的世界快照
// GET /admin/players?room=room-1
func (m *RoomManager) HandlePlayers(w http.ResponseWriter, r *http.Request) {
	room, ok := m.Room(r.URL.Query().Get("room"))
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{
		"room":    room.ID,
		"tick":    room.TickSeq(),
		"players": room.Snapshot(),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
