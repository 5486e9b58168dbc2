package handlers

import (
	"SupportChat/service/chat"
)

// RegisterAll 装配全部客户端信令 handler。
func RegisterAll(d *chat.Dispatcher) {
	d.Register(NewTypingHandler())
	d.Register(NewJoinConversationHandler())
	d.Register(NewLeaveConversationHandler())
	d.Register(NewMarkReadHandler())
}
