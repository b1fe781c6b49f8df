package callbacks

import (
	"sync"
	"sync/atomic"
)

// Callback fans a message out to named subscribers. Subscribers run on the
// publisher's goroutine in no particular order and must not block; a
// subscriber returning false is removed.
type Callback[V any] struct {
	callbacks sync.Map
	n         atomic.Int32
}

func New[V any]() *Callback[V] {
	return &Callback[V]{
		callbacks: sync.Map{},
	}
}

func (p *Callback[V]) Publish(msg V) {
	if p == nil {
		return
	}

	p.callbacks.Range(func(key, value any) bool {
		if fn, ok := value.(func(msg V) bool); ok {
			if !fn(msg) {
				p.Unsubscribe(key.(string))
			}
		}

		return true
	})
}

func (p *Callback[V]) SubscribeNamed(name string, fn func(msg V) bool) {
	if _, loaded := p.callbacks.Swap(name, fn); !loaded {
		p.n.Add(1)
	}
}

func (p *Callback[V]) Unsubscribe(name string) bool {
	_, found := p.callbacks.LoadAndDelete(name)

	if found {
		p.n.Add(-1)
	}

	return found
}

func (p *Callback[V]) Len() int {
	if p == nil {
		return 0
	}

	return int(p.n.Load())
}
