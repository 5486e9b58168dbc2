package relay

import (
	"encoding/json"

	"SupportChat/logger"
	"SupportChat/module/message/event"
	"SupportChat/service/eventbus"
	"SupportChat/tools/errs"

	"github.com/nats-io/nats.go"
)

const defaultSubject = "im.message.events"

// Relay 跨节点事件中继：本节点发布的生命周期事件镜像到 NATS，
// 其他网关节点收到后经各自的事件桥推给自己的连接。
// 事件仍是 fire-and-forget，中继不可用只影响跨节点推送。
type Relay struct {
	nc      *nats.Conn
	subject string
	node    string
	sub     *nats.Subscription
}

type envelope struct {
	Node string          `json:"node"`
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

func Connect(url, subject, node string) (*Relay, error) {
	if subject == "" {
		subject = defaultSubject
	}
	nc, err := nats.Connect(url,
		nats.Name("support-chat-"+node),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, errs.WrapMsg(err, "connect nats", "url", url)
	}
	return &Relay{nc: nc, subject: subject, node: node}, nil
}

// Publish 镜像一条本地事件。
func (r *Relay) Publish(e eventbus.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return errs.WrapMsg(err, "marshal event", "kind", e.Kind())
	}
	raw, err := json.Marshal(envelope{Node: r.node, Kind: e.Kind(), Data: data})
	if err != nil {
		return errs.Wrap(err)
	}
	return errs.WrapMsg(r.nc.Publish(r.subject, raw), "publish", "subject", r.subject)
}

// BindBus 把三类生命周期事件镜像出去。发布失败只记录。
func (r *Relay) BindBus(bus *eventbus.Bus) {
	mirror := func(e eventbus.Event) {
		if err := r.Publish(e); err != nil {
			logger.Warnf("[relay] publish kind=%s: %v", e.Kind(), err)
		}
	}
	for _, kind := range []string{event.KindCreated, event.KindRead, event.KindClosed} {
		_ = bus.Subscribe(kind, mirror)
	}
}

// Subscribe 消费远端节点的事件；跳过本节点发布的，解码后交给 deliver
// （通常是事件桥的 Deliver）。
func (r *Relay) Subscribe(deliver func(eventbus.Event)) error {
	sub, err := r.nc.Subscribe(r.subject, func(m *nats.Msg) {
		var env envelope
		if err := json.Unmarshal(m.Data, &env); err != nil {
			logger.Warnf("[relay] drop malformed envelope: %v", err)
			return
		}
		if env.Node == r.node {
			return
		}
		e, err := decodeEvent(env.Kind, env.Data)
		if err != nil {
			logger.Warnf("[relay] drop event kind=%s: %v", env.Kind, err)
			return
		}
		deliver(e)
	})
	if err != nil {
		return errs.WrapMsg(err, "subscribe", "subject", r.subject)
	}
	r.sub = sub
	return nil
}

func decodeEvent(kind string, data []byte) (eventbus.Event, error) {
	switch kind {
	case event.KindCreated:
		var ev event.MessageCreated
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case event.KindRead:
		var ev event.MessageRead
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case event.KindClosed:
		var ev event.MessageClosed
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	default:
		return nil, errs.New("unknown event kind", "kind", kind)
	}
}

func (r *Relay) Close() {
	if r.sub != nil {
		_ = r.sub.Unsubscribe()
	}
	r.nc.Close()
}
