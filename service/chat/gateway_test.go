package chat

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"SupportChat/tools/security"

	"github.com/gin-gonic/gin"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJWT = security.DefaultOptions([]byte("gateway-test-secret"))

type gwFixture struct {
	gw   *Gateway
	disp *Dispatcher
	srv  *httptest.Server
}

func newGWFixture(t *testing.T) *gwFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	disp := NewDispatcher()
	gw := NewGateway("node-test", testJWT, NewRegistry(), NewRooms(), disp, nil, nil)

	r := gin.New()
	r.GET("/ws", gw.HandleWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &gwFixture{gw: gw, disp: disp, srv: srv}
}

func (f *gwFixture) wsURL(query string) string {
	u := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws"
	if query != "" {
		u += "?" + query
	}
	return u
}

func dialOK(t *testing.T, f *gwFixture, url string, hdr http.Header) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(url, hdr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func readEnvelope(t *testing.T, ws *websocket.Conn) (string, map[string]any) {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env struct {
		Event string         `json:"event"`
		Data  map[string]any `json:"data"`
	}
	require.NoError(t, ws.ReadJSON(&env))
	return env.Event, env.Data
}

func TestHandshakeRejectsMissingToken(t *testing.T) {
	f := newGWFixture(t)

	_, resp, err := websocket.DefaultDialer.Dial(f.wsURL(""), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, f.gw.Registry().ListConnectedUsers())
}

func TestHandshakeRejectsInvalidToken(t *testing.T) {
	f := newGWFixture(t)

	_, resp, err := websocket.DefaultDialer.Dial(f.wsURL("token=not-a-jwt"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, f.gw.Registry().ListConnectedUsers())
}

func TestHandshakeRejectsTokenWithoutSubject(t *testing.T) {
	f := newGWFixture(t)

	// 签名有效但没有可用的 subject：fail-closed
	claims := jwtlib.MapClaims{
		"email": "a@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(testJWT.Secret)
	require.NoError(t, err)

	_, resp, err := websocket.DefaultDialer.Dial(f.wsURL("token="+token), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, f.gw.Registry().ListConnectedUsers())
}

func TestHandshakeRegistersAndAcks(t *testing.T) {
	f := newGWFixture(t)

	token, _, err := security.Generate(testJWT, "42", "a@example.com")
	require.NoError(t, err)

	ws := dialOK(t, f, f.wsURL("token="+token), nil)

	event, data := readEnvelope(t, ws)
	assert.Equal(t, "connected", event)
	assert.Equal(t, "42", data["userId"])
	assert.NotEmpty(t, data["connId"])

	assert.True(t, f.gw.Registry().IsConnected("42"))
	assert.Equal(t, 1, f.gw.Registry().ConnectionCount("42"))
	assert.Equal(t, 1, f.gw.Rooms().Members(UserRoom("42")))
}

func TestHandshakeBearerHeader(t *testing.T) {
	f := newGWFixture(t)

	token, _, err := security.Generate(testJWT, "42", "")
	require.NoError(t, err)

	hdr := http.Header{}
	hdr.Set("Authorization", "Bearer "+token)
	ws := dialOK(t, f, f.wsURL(""), hdr)

	event, _ := readEnvelope(t, ws)
	assert.Equal(t, "connected", event)
	assert.True(t, f.gw.Registry().IsConnected("42"))
}

func TestSecondDeviceKeepsFirst(t *testing.T) {
	f := newGWFixture(t)

	token, _, err := security.Generate(testJWT, "42", "")
	require.NoError(t, err)

	ws1 := dialOK(t, f, f.wsURL("token="+token), nil)
	readEnvelope(t, ws1)
	ws2 := dialOK(t, f, f.wsURL("token="+token), nil)
	readEnvelope(t, ws2)

	assert.Equal(t, 2, f.gw.Registry().ConnectionCount("42"))
	assert.Equal(t, 2, f.gw.Rooms().Members(UserRoom("42")))

	// 断开一端：另一端保持注册
	_ = ws1.Close()
	require.Eventually(t, func() bool {
		return f.gw.Registry().ConnectionCount("42") == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, f.gw.Registry().IsConnected("42"))
}

func TestDisconnectCleansUp(t *testing.T) {
	f := newGWFixture(t)

	token, _, err := security.Generate(testJWT, "42", "")
	require.NoError(t, err)

	ws := dialOK(t, f, f.wsURL("token="+token), nil)
	readEnvelope(t, ws)
	require.True(t, f.gw.Registry().IsConnected("42"))

	_ = ws.Close()
	require.Eventually(t, func() bool {
		return !f.gw.Registry().IsConnected("42")
	}, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, f.gw.Rooms().Members(UserRoom("42")))
	assert.Empty(t, f.gw.Registry().ListConnectedUsers())
}

type captureHandler struct {
	name string
	got  chan map[string]any
}

func (h *captureHandler) Name() string { return h.name }
func (h *captureHandler) Handle(_ *Context, payload map[string]any) {
	h.got <- payload
}

func TestSignalDispatch(t *testing.T) {
	f := newGWFixture(t)
	h := &captureHandler{name: "echo", got: make(chan map[string]any, 1)}
	f.disp.Register(h)

	token, _, err := security.Generate(testJWT, "42", "")
	require.NoError(t, err)
	ws := dialOK(t, f, f.wsURL("token="+token), nil)
	readEnvelope(t, ws)

	// 畸形帧纯丢弃，连接不断
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, ws.WriteJSON(map[string]any{
		"event": "echo",
		"data":  map[string]any{"x": "1"},
	}))

	select {
	case payload := <-h.got:
		assert.Equal(t, "1", payload["x"])
	case <-time.After(2 * time.Second):
		t.Fatal("signal handler not invoked")
	}

	// 未注册的信令同样丢弃，无错误帧返回
	require.NoError(t, ws.WriteJSON(map[string]any{"event": "unknown", "data": map[string]any{}}))
	assert.True(t, f.gw.Registry().IsConnected("42"))
}
