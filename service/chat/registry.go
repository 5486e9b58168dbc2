package chat

import (
	"sync"
)

// Registry 在线连接注册表。主索引 connID，辅助索引 userID -> (connID -> conn)，
// 支持同一用户多端同时在线。移除以句柄为键：并发的连入/断开
// 互不干扰，只有最后一条断开时才删除用户条目。
type Registry struct {
	mu     sync.RWMutex
	byID   map[string]*Conn
	byUser map[string]map[string]*Conn
}

func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[string]*Conn),
		byUser: make(map[string]map[string]*Conn),
	}
}

func (r *Registry) Add(userID string, c *Conn) {
	if userID == "" || c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[c.ID] = c
	if r.byUser[userID] == nil {
		r.byUser[userID] = make(map[string]*Conn)
	}
	r.byUser[userID][c.ID] = c
}

// Remove 只移除这一条句柄；用户的其余连接保持不变。
func (r *Registry) Remove(c *Conn) {
	if c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.byID, c.ID)
	if mm := r.byUser[c.UserID]; mm != nil {
		delete(mm, c.ID)
		if len(mm) == 0 {
			delete(r.byUser, c.UserID)
		}
	}
}

func (r *Registry) IsConnected(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]) > 0
}

func (r *Registry) ConnectionCount(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID])
}

func (r *Registry) ListConnectedUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byUser))
	for u := range r.byUser {
		out = append(out, u)
	}
	return out
}

// UserConns 用户当前所有连接的快照。
func (r *Registry) UserConns(userID string) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mm := r.byUser[userID]
	out := make([]*Conn, 0, len(mm))
	for _, c := range mm {
		out = append(out, c)
	}
	return out
}
