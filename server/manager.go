package server

import (
	"sort"
	"sync"

	"tickarena/config"
)

// RoomManager 管理多个房间的生命周期；每个房间是独立的世界与 Tick 引擎
type RoomManager struct {
	cfg *config.Config

	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRoomManager(cfg *config.Config) *RoomManager {
	return &RoomManager{cfg: cfg, rooms: make(map[string]*Room)}
}

// GetOrCreateRoom 获取或创建房间，并确保开始 Tick
func (m *RoomManager) GetOrCreateRoom(id string) *Room {
	if id == "" {
		id = m.cfg.Server.DefaultRoom
	}
	m.mu.RLock()
	r, ok := m.rooms[id]
	m.mu.RUnlock()
	if ok {
		return r
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok = m.rooms[id]; !ok {
		r = NewRoom(id, m.cfg.World)
		m.rooms[id] = r
		r.StartTicker()
		Log.Infow("room created", "room", id, "tick_rate", m.cfg.World.TickRate)
	}
	return r
}

// Room 查找已存在的房间，不创建
func (m *RoomManager) Room(id string) (*Room, bool) {
	if id == "" {
		id = m.cfg.Server.DefaultRoom
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

// RoomIDs 按名称排序
func (m *RoomManager) RoomIDs() []string {
	m.mu.RLock()
	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Shutdown 停止所有房间的 Tick
func (m *RoomManager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.rooms {
		r.Stop()
		delete(m.rooms, id)
	}
}
