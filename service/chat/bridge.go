package chat

import (
	"SupportChat/logger"
	"SupportChat/module/message/event"
	"SupportChat/service/eventbus"
)

// Bridge 把生命周期领域事件翻译成房间组播。纯翻译层：
// 不落库、除订阅外无状态，进程重启后重新订阅即可（事件不重放）。
type Bridge struct {
	rooms *Rooms
}

func NewBridge(rooms *Rooms) *Bridge {
	return &Bridge{rooms: rooms}
}

// Register 在启动装配阶段调用一次，只订阅三类生命周期事件。
func (b *Bridge) Register(bus *eventbus.Bus) {
	for _, kind := range []string{event.KindCreated, event.KindRead, event.KindClosed} {
		if err := bus.Subscribe(kind, b.Deliver); err != nil {
			logger.Errorf("[bridge] subscribe %s: %v", kind, err)
		}
	}
}

// Deliver 按事件类型解析目标房间并组播。
// 空房间组播是 no-op；NATS 中继收到的远端事件也从这里进入。
func (b *Bridge) Deliver(e eventbus.Event) {
	switch ev := e.(type) {
	case event.MessageCreated:
		b.rooms.Multicast(UserRoom(ev.RecipientID), "newMessage", ev.Message)
		b.rooms.Multicast(UserRoom(ev.SenderID), "messageSent", ev.Message)
	case event.MessageRead:
		// 已读只通知发送方；读取者自己的房间不收副本
		b.rooms.Multicast(UserRoom(ev.SenderID), "messageRead", ev)
	case event.MessageClosed:
		b.rooms.Multicast(UserRoom(ev.SenderID), "messageClosed", ev)
	default:
		logger.Debugf("[bridge] ignore event kind=%s", e.Kind())
	}
}
