package event

import (
	"SupportChat/module/message/model"
)

const (
	KindCreated = "message.created"
	KindRead    = "message.read"
	KindClosed  = "message.closed"
)

// MessageCreated 新消息已落库。RecipientID/SenderID 由生命周期服务填好，
// 事件桥只做房间解析，不回查存储。
type MessageCreated struct {
	Message     model.Message `json:"message"`
	RecipientID string        `json:"recipientId"`
	SenderID    string        `json:"senderId"`
}

func (MessageCreated) Kind() string { return KindCreated }

// MessageRead 消息已标记为已读。
type MessageRead struct {
	MessageID string        `json:"messageId"`
	Message   model.Message `json:"message"`
	ReaderID  string        `json:"readerId"`
	SenderID  string        `json:"senderId"`
}

func (MessageRead) Kind() string { return KindRead }

// MessageClosed 消息已关闭。
type MessageClosed struct {
	MessageID string        `json:"messageId"`
	Message   model.Message `json:"message"`
	CloserID  string        `json:"closerId"`
	SenderID  string        `json:"senderId"`
}

func (MessageClosed) Kind() string { return KindClosed }
