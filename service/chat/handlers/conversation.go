package handlers

import (
	"SupportChat/logger"
	"SupportChat/service/chat"
	"SupportChat/tools/decode"
)

type ConversationPayload struct {
	ConversationID string `json:"conversationId"`
}

// JoinConversationHandler 显式加入会话房间。
type JoinConversationHandler struct{}

func NewJoinConversationHandler() chat.SignalHandler { return &JoinConversationHandler{} }

func (h *JoinConversationHandler) Name() string { return "join_conversation" }

func (h *JoinConversationHandler) Handle(ctx *chat.Context, payload map[string]any) {
	if ctx.Conn.UserID == "" {
		return
	}
	p, err := decode.DecodeMap[ConversationPayload](payload)
	if err != nil || p.ConversationID == "" {
		logger.Debugf("[join_conversation] drop malformed payload conn=%s: %v", ctx.Conn.ID, err)
		return
	}
	ctx.Rooms.Join(ctx.Conn, chat.ConversationRoom(p.ConversationID))
	logger.Debugf("[join_conversation] user=%s conv=%s", ctx.Conn.UserID, p.ConversationID)
}

// LeaveConversationHandler 显式退出会话房间。
type LeaveConversationHandler struct{}

func NewLeaveConversationHandler() chat.SignalHandler { return &LeaveConversationHandler{} }

func (h *LeaveConversationHandler) Name() string { return "leave_conversation" }

func (h *LeaveConversationHandler) Handle(ctx *chat.Context, payload map[string]any) {
	if ctx.Conn.UserID == "" {
		return
	}
	p, err := decode.DecodeMap[ConversationPayload](payload)
	if err != nil || p.ConversationID == "" {
		logger.Debugf("[leave_conversation] drop malformed payload conn=%s: %v", ctx.Conn.ID, err)
		return
	}
	ctx.Rooms.Leave(ctx.Conn, chat.ConversationRoom(p.ConversationID))
	logger.Debugf("[leave_conversation] user=%s conv=%s", ctx.Conn.UserID, p.ConversationID)
}
