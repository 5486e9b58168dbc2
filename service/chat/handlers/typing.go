package handlers

import (
	"SupportChat/logger"
	"SupportChat/service/chat"
	"SupportChat/tools/decode"
)

type TypingPayload struct {
	RecipientID string `json:"recipientId"`
	IsTyping    bool   `json:"isTyping"`
}

// TypingHandler 输入中指示：原样转发到对方的用户房间，附带发送者身份。
// 不持久化，对方不在线即丢弃。
type TypingHandler struct{}

func NewTypingHandler() chat.SignalHandler { return &TypingHandler{} }

func (h *TypingHandler) Name() string { return "typing" }

func (h *TypingHandler) Handle(ctx *chat.Context, payload map[string]any) {
	if ctx.Conn.UserID == "" {
		return
	}
	p, err := decode.DecodeMap[TypingPayload](payload)
	if err != nil || p.RecipientID == "" {
		logger.Debugf("[typing] drop malformed payload conn=%s: %v", ctx.Conn.ID, err)
		return
	}
	ctx.Rooms.Multicast(chat.UserRoom(p.RecipientID), "userTyping", map[string]any{
		"userId":   ctx.Conn.UserID,
		"isTyping": p.IsTyping,
	})
}
