package eventbus

import (
	"sync"

	"SupportChat/logger"
	"SupportChat/tools/errs"
)

// Event 领域事件：一次已完成状态变更的不可变描述。
type Event interface {
	Kind() string
}

type Handler func(Event)

// Bus 进程内事件总线。订阅在启动装配阶段完成，
// Publish 同步投递到所有订阅者，投递顺序与订阅顺序一致。
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func New() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

func (b *Bus) Subscribe(kind string, h Handler) error {
	if kind == "" || h == nil {
		return errs.ErrArgs.WrapMsg("subscribe", "kind", kind)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], h)
	return nil
}

// Publish fire-and-forget：无订阅者时静默丢弃。
// handler panic 不会中断发布方。
func (b *Bus) Publish(e Event) {
	if e == nil {
		return
	}
	b.mu.RLock()
	hs := b.handlers[e.Kind()]
	b.mu.RUnlock()

	for _, h := range hs {
		dispatch(h, e)
	}
}

func dispatch(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[eventbus] handler panic kind=%s: %v", e.Kind(), r)
		}
	}()
	h(e)
}
