package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// EventKind 会话事件类型
type EventKind string

const (
	EventSelectionChanged EventKind = "selection_changed"
	EventSectionUpdated   EventKind = "section_updated"
	EventElementAdded     EventKind = "element_added"
	EventElementUpdated   EventKind = "element_updated"
	EventElementMoved     EventKind = "element_moved"
	EventElementRemoved   EventKind = "element_removed"
	EventFlushed          EventKind = "flushed"
)

// Event 会话内发生的一次模型变更
type Event struct {
	Kind        EventKind
	SectionType string
	ElementID   string
}

// Handler 事件处理函数
type Handler func(ctx context.Context, event Event) error

// Bus 会话内的观察者总线：渲染器与控制器通过订阅感知模型变化，
// 取代环境式全局可变 store
type Bus struct {
	mutex       sync.RWMutex
	subscribers map[EventKind]map[uint64]Handler
	counter     uint64
}

func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[EventKind]map[uint64]Handler),
	}
}

// Subscribe 订阅某类事件，返回取消订阅函数
func (b *Bus) Subscribe(kind EventKind, handler Handler) func() {
	if handler == nil {
		return func() {}
	}
	id := atomic.AddUint64(&b.counter, 1)
	b.mutex.Lock()
	if b.subscribers[kind] == nil {
		b.subscribers[kind] = make(map[uint64]Handler)
	}
	b.subscribers[kind][id] = handler
	b.mutex.Unlock()
	return func() {
		b.mutex.Lock()
		handlers, ok := b.subscribers[kind]
		if ok {
			delete(handlers, id)
			if len(handlers) == 0 {
				delete(b.subscribers, kind)
			}
		}
		b.mutex.Unlock()
	}
}

// Publish 同步广播事件，处理错误合并返回
func (b *Bus) Publish(ctx context.Context, event Event) error {
	b.mutex.RLock()
	handlersMap := b.subscribers[event.Kind]
	handlers := make([]Handler, 0, len(handlersMap))
	for _, handler := range handlersMap {
		handlers = append(handlers, handler)
	}
	b.mutex.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
