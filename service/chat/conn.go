package chat

import (
	"encoding/json"
	"sync"
	"time"

	"SupportChat/logger"

	"github.com/gorilla/websocket"
)

const (
	sendQueueSize = 64
	writeDeadline = 5 * time.Second
	pingEvery     = 30 * time.Second
)

// Envelope 双向统一帧格式 {"event": ..., "data": ...}
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Conn 一条已通过鉴权的连接句柄。句柄归注册表独占，
// 握手成功时创建，断开时销毁；UserID/Email 是句柄的属性。
type Conn struct {
	ID     string
	UserID string
	Email  string

	ws   *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func newConn(id, userID, email string, ws *websocket.Conn) *Conn {
	return &Conn{
		ID:     id,
		UserID: userID,
		Email:  email,
		ws:     ws,
		send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
	}
}

// EnqueueJSON 编码信封并入队。队列满视为慢客户端，直接丢弃该帧。
func (c *Conn) EnqueueJSON(event string, data any) {
	raw, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		logger.Errorf("[conn] marshal event=%s conn=%s: %v", event, c.ID, err)
		return
	}
	c.enqueue(raw)
}

func (c *Conn) enqueue(raw []byte) {
	select {
	case c.send <- raw:
	case <-c.done:
	default:
		logger.Warnf("[conn] send queue full, drop frame conn=%s user=%s", c.ID, c.UserID)
	}
}

// writePump 独立写协程：序列化所有写操作，周期性 ping。
func (c *Conn) writePump() {
	t := time.NewTicker(pingEvery)
	defer t.Stop()

	for {
		select {
		case <-c.done:
			return
		case raw := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.ws.WriteMessage(websocket.TextMessage, raw); err != nil {
				logger.Debugf("[conn] write err conn=%s: %v", c.ID, err)
				c.close()
				return
			}
		case <-t.C:
			if err := c.ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeDeadline)); err != nil {
				c.close()
				return
			}
		}
	}
}

func (c *Conn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.ws != nil {
			_ = c.ws.Close()
		}
	})
}
