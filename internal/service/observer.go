package service

import (
	"sync"
	"time"
)

// EventType 变更事件类型
type EventType string

const (
	EventNoticeCreated     EventType = "notice.created"
	EventNoticeUpdated     EventType = "notice.updated"
	EventNoticeDeleted     EventType = "notice.deleted"
	EventNoticePublished   EventType = "notice.published"
	EventNoticeExpired     EventType = "notice.expired"
	EventNoticeReactivated EventType = "notice.reactivated"
	EventCategoriesUpdated EventType = "categories.updated"
)

// Event 公告或分类的变更通知
type Event struct {
	Type EventType `json:"type"`
	ID   string    `json:"id,omitempty"`
	At   time.Time `json:"at"`
}

// Observer 变更订阅。写操作成功后同步通知所有订阅者。
type Observer struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(Event)
}

// NewObserver 创建变更订阅器
func NewObserver() *Observer {
	return &Observer{subs: make(map[int]func(Event))}
}

// Subscribe 注册订阅者，返回取消订阅函数
func (o *Observer) Subscribe(fn func(Event)) (unsubscribe func()) {
	o.mu.Lock()
	id := o.next
	o.next++
	o.subs[id] = fn
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.subs, id)
			o.mu.Unlock()
		})
	}
}

// Publish 通知所有订阅者。回调在锁外执行，可以在回调中取消订阅。
func (o *Observer) Publish(e Event) {
	o.mu.RLock()
	subs := make([]func(Event), 0, len(o.subs))
	for _, fn := range o.subs {
		subs = append(subs, fn)
	}
	o.mu.RUnlock()

	for _, fn := range subs {
		fn(e)
	}
}
