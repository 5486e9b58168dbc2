package chat

import (
	"encoding/json"
	"sync"

	"SupportChat/logger"
)

// UserRoom 每个用户固定一个房间，鉴权成功即加入。
func UserRoom(userID string) string { return "user-" + userID }

// ConversationRoom 按会话的房间，由客户端信令显式加入/退出。
func ConversationRoom(conversationID string) string { return "conversation-" + conversationID }

// Rooms 组播路由。成员关系只存在于内存，随句柄消失；
// 向空房间组播是静默 no-op，不是错误。
type Rooms struct {
	mu      sync.RWMutex
	members map[string]map[string]*Conn    // room -> connID -> conn
	byConn  map[string]map[string]struct{} // connID -> rooms
}

func NewRooms() *Rooms {
	return &Rooms{
		members: make(map[string]map[string]*Conn),
		byConn:  make(map[string]map[string]struct{}),
	}
}

func (r *Rooms) Join(c *Conn, room string) {
	if c == nil || room == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.members[room] == nil {
		r.members[room] = make(map[string]*Conn)
	}
	r.members[room][c.ID] = c

	if r.byConn[c.ID] == nil {
		r.byConn[c.ID] = make(map[string]struct{})
	}
	r.byConn[c.ID][room] = struct{}{}
}

func (r *Rooms) Leave(c *Conn, room string) {
	if c == nil || room == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(c.ID, room)
}

// LeaveAll 断开清理：把句柄从它所在的全部房间移除。
func (r *Rooms) LeaveAll(c *Conn) {
	if c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for room := range r.byConn[c.ID] {
		r.leaveLocked(c.ID, room)
	}
}

func (r *Rooms) leaveLocked(connID, room string) {
	if mm := r.members[room]; mm != nil {
		delete(mm, connID)
		if len(mm) == 0 {
			delete(r.members, room)
		}
	}
	if rooms := r.byConn[connID]; rooms != nil {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(r.byConn, connID)
		}
	}
}

func (r *Rooms) Members(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members[room])
}

// Multicast 向房间内所有连接发送一帧。只编码一次，逐连接入队。
func (r *Rooms) Multicast(room, event string, payload any) {
	r.mu.RLock()
	conns := make([]*Conn, 0, len(r.members[room]))
	for _, c := range r.members[room] {
		conns = append(conns, c)
	}
	r.mu.RUnlock()

	if len(conns) == 0 {
		return
	}
	raw, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		logger.Errorf("[rooms] marshal event=%s room=%s: %v", event, room, err)
		return
	}
	for _, c := range conns {
		c.enqueue(raw)
	}
}

// BroadcastAll 向所有在任意房间内的连接发送一帧（每连接一次）。
func (r *Rooms) BroadcastAll(event string, payload any) {
	r.mu.RLock()
	seen := make(map[string]*Conn)
	for _, mm := range r.members {
		for id, c := range mm {
			seen[id] = c
		}
	}
	r.mu.RUnlock()

	if len(seen) == 0 {
		return
	}
	raw, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		logger.Errorf("[rooms] marshal event=%s: %v", event, err)
		return
	}
	for _, c := range seen {
		c.enqueue(raw)
	}
}
