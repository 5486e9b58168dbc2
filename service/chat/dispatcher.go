package chat

import (
	"context"

	"SupportChat/logger"
	"SupportChat/module/message/model"
)

// Lifecycle 客户端读回执需要触达的消息生命周期操作。
type Lifecycle interface {
	MarkRead(ctx context.Context, id, readerID string) (*model.Message, error)
}

// Context 信令处理上下文：当前连接 + 路由与生命周期依赖。
type Context struct {
	Conn      *Conn
	Rooms     *Rooms
	Lifecycle Lifecycle
}

// SignalHandler 一类客户端信令对应一个 handler。
// 信令是 fire-and-forget：处理失败只丢弃，不回错误帧。
type SignalHandler interface {
	Name() string
	Handle(ctx *Context, payload map[string]any)
}

type Dispatcher struct {
	handlers map[string]SignalHandler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]SignalHandler)}
}

func (d *Dispatcher) Register(h SignalHandler) { d.handlers[h.Name()] = h }

func (d *Dispatcher) Get(name string) SignalHandler {
	h, ok := d.handlers[name]
	if !ok {
		logger.Debugf("[dispatch] no handler for signal=%s", name)
		return nil
	}
	return h
}
