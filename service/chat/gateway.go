package chat

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"SupportChat/logger"
	"SupportChat/service/storage"
	"SupportChat/tools/ids"
	"SupportChat/tools/security"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	readLimit    = 1 << 20 // 1MB
	readDeadline = 60 * time.Second
)

// Frame 客户端上行信令帧。
type Frame struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

// Gateway 连接层边界：握手鉴权、注册、读循环、断开清理。
// 未通过鉴权的连接不会出现在注册表里（fail-closed）。
type Gateway struct {
	nodeID   string
	jwtOpts  security.Options
	registry *Registry
	rooms    *Rooms
	disp     *Dispatcher
	life     Lifecycle
	presence *storage.Presence // 可为 nil（未配置 redis）
}

func NewGateway(nodeID string, jwtOpts security.Options, registry *Registry, rooms *Rooms,
	disp *Dispatcher, life Lifecycle, presence *storage.Presence) *Gateway {
	return &Gateway{
		nodeID:   nodeID,
		jwtOpts:  jwtOpts,
		registry: registry,
		rooms:    rooms,
		disp:     disp,
		life:     life,
		presence: presence,
	}
}

func (g *Gateway) Registry() *Registry { return g.registry }
func (g *Gateway) Rooms() *Rooms       { return g.rooms }

// bearerToken 握手凭证：query 参数 token 优先，其次 Authorization: Bearer。
func bearerToken(r *http.Request) string {
	if t := strings.TrimSpace(r.URL.Query().Get("token")); t != "" {
		return t
	}
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[len("bearer "):])
	}
	return ""
}

// HandleWS GET /ws 鉴权在升级前完成：凭证缺失、签名/有效期校验失败、
// 或提取不到可用的 subject，一律拒绝，连接不注册。
func (g *Gateway) HandleWS(c *gin.Context) {
	token := bearerToken(c.Request)
	if token == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	claims, err := security.Verify(g.jwtOpts, token)
	if err != nil {
		logger.Infof("[ws] reject: verify token: %v", err)
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	ident, err := security.IdentityFromClaims(claims)
	if err != nil {
		logger.Infof("[ws] reject: %v", err)
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[ws] upgrade error: %v", err)
		return
	}

	conn := newConn(ids.GenerateString(), ident.UserID, ident.Email, ws)
	g.registry.Add(conn.UserID, conn)
	g.rooms.Join(conn, UserRoom(conn.UserID))
	if g.presence != nil {
		if err := g.presence.Online(conn.UserID, g.nodeID); err != nil {
			logger.Warnf("[ws] presence online user=%s: %v", conn.UserID, err)
		}
	}

	go conn.writePump()
	conn.EnqueueJSON("connected", map[string]string{
		"userId": conn.UserID,
		"connId": conn.ID,
	})
	logger.Infof("[ws] connected user=%s conn=%s remote=%s", conn.UserID, conn.ID, ws.RemoteAddr())

	g.readLoop(conn)
	g.teardown(conn)
}

func (g *Gateway) readLoop(conn *Conn) {
	ws := conn.ws
	ws.SetReadLimit(readLimit)
	_ = ws.SetReadDeadline(time.Now().Add(readDeadline))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(readDeadline))
	})

	for {
		mt, data, rerr := ws.ReadMessage()
		if rerr != nil {
			if websocket.IsCloseError(rerr,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[ws] peer closed conn=%s", conn.ID)
			} else if ne, ok := rerr.(net.Error); ok && ne.Timeout() {
				logger.Infof("[ws] read timeout conn=%s", conn.ID)
			} else {
				logger.Infof("[ws] read err conn=%s: %v", conn.ID, rerr)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		var f Frame
		if err := json.Unmarshal(data, &f); err != nil || f.Event == "" {
			// 畸形信令：纯丢弃，不回错误帧
			logger.Debugf("[ws] drop malformed frame conn=%s len=%d", conn.ID, len(data))
			continue
		}

		h := g.disp.Get(f.Event)
		if h == nil {
			continue
		}
		h.Handle(&Context{Conn: conn, Rooms: g.rooms, Lifecycle: g.life}, f.Data)
	}
}

// teardown 断开清理：句柄从注册表与所有房间移除；
// 会话房间成员资格随句柄消失，不单独持久化。
func (g *Gateway) teardown(conn *Conn) {
	g.rooms.LeaveAll(conn)
	g.registry.Remove(conn)
	if g.presence != nil && !g.registry.IsConnected(conn.UserID) {
		if err := g.presence.Offline(conn.UserID); err != nil {
			logger.Warnf("[ws] presence offline user=%s: %v", conn.UserID, err)
		}
	}
	conn.close()
	logger.Infof("[ws] disconnected user=%s conn=%s", conn.UserID, conn.ID)
}
