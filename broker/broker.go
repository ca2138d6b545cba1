// Package broker fans frames out from the render loop to any number of
// display subscribers (websocket clients, metrics publishers). Publish
// never blocks the render tick: subscriber channels are buffered and
// slow consumers drop frames rather than stall acquisition.
package broker

import "sync/atomic"

type Broker[M any] struct {
	subCount  int64  // needs 64-bit alignment
	dropCount uint64 // needs 64-bit alignment

	stopCh    chan struct{}
	publishCh chan M
	subCh     chan chan M
	unsubCh   chan chan M
}

func New[M any]() *Broker[M] {
	return &Broker[M]{
		stopCh:    make(chan struct{}),
		publishCh: make(chan M, 1),
		subCh:     make(chan chan M, 1),
		unsubCh:   make(chan chan M, 1),
	}
}

func (b *Broker[M]) Start() {
	subs := map[chan M]struct{}{}
	for {
		select {
		case <-b.stopCh:
			for msgCh := range subs {
				close(msgCh)
			}
			return
		case msgCh := <-b.subCh:
			subs[msgCh] = struct{}{}
			atomic.StoreInt64(&b.subCount, int64(len(subs)))
		case msgCh := <-b.unsubCh:
			delete(subs, msgCh)
			atomic.StoreInt64(&b.subCount, int64(len(subs)))
		case msg := <-b.publishCh:
			for msgCh := range subs {
				// msgCh is buffered, use non-blocking send to protect the broker:
				select {
				case msgCh <- msg:
				default:
					atomic.AddUint64(&b.dropCount, 1)
				}
			}
		}
	}
}

func (b *Broker[M]) Stop() {
	close(b.stopCh)
}

func (b *Broker[M]) Subscribe() chan M {
	msgCh := make(chan M, 64)
	select {
	case b.subCh <- msgCh:
	case <-b.stopCh:
		close(msgCh)
	}
	return msgCh
}

func (b *Broker[M]) Unsubscribe(msgCh chan M) {
	select {
	case b.unsubCh <- msgCh:
	case <-b.stopCh:
	}
}

func (b *Broker[M]) Publish(msg M) {
	select {
	case b.publishCh <- msg:
	case <-b.stopCh:
	}
}

func (b *Broker[M]) SubCount() int {
	return int(atomic.LoadInt64(&b.subCount))
}

func (b *Broker[M]) DropCount() int {
	return int(atomic.LoadUint64(&b.dropCount))
}

type Publisher[M any] interface {
	Publish(msg M)
}
