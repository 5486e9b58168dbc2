package handlers

import (
	"context"
	"time"

	"SupportChat/logger"
	"SupportChat/service/chat"
	"SupportChat/tools/decode"
)

const markReadTimeout = 2 * time.Second

type MarkReadPayload struct {
	MessageID string `json:"messageId"`
}

// MarkReadHandler 客户端读回执：走生命周期 MarkRead 落库并发出
// message.read 事件（发送方经事件桥收到 messageRead），
// 再给读取者本地回一条 readConfirmation。
type MarkReadHandler struct{}

func NewMarkReadHandler() chat.SignalHandler { return &MarkReadHandler{} }

func (h *MarkReadHandler) Name() string { return "mark_read" }

func (h *MarkReadHandler) Handle(ctx *chat.Context, payload map[string]any) {
	if ctx.Conn.UserID == "" {
		return
	}
	p, err := decode.DecodeMap[MarkReadPayload](payload)
	if err != nil || p.MessageID == "" {
		logger.Debugf("[mark_read] drop malformed payload conn=%s: %v", ctx.Conn.ID, err)
		return
	}

	cctx, cancel := context.WithTimeout(context.Background(), markReadTimeout)
	defer cancel()
	if _, err := ctx.Lifecycle.MarkRead(cctx, p.MessageID, ctx.Conn.UserID); err != nil {
		// 信令 fire-and-forget：失败只记录，不回错误帧
		logger.Debugf("[mark_read] drop id=%s user=%s: %v", p.MessageID, ctx.Conn.UserID, err)
		return
	}

	ctx.Conn.EnqueueJSON("readConfirmation", map[string]string{
		"messageId": p.MessageID,
	})
}
