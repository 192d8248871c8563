package broker

import "sync"

// Broker fans out published messages to every current subscriber.
//
// All bookkeeping happens in the goroutine running Start, the other methods only talk to it through channels.
// Subscribers that fall behind miss messages instead of blocking the publisher, which suits state change
// notifications where the subscriber can always fetch the latest state.
type Broker[T any] struct {
	stopChannel        chan struct{}
	publishChannel     chan T
	subscribeChannel   chan chan T
	unsubscribeChannel chan chan T
	buffer             int
	stopOnce           sync.Once
}

// New creates a Broker whose subscriber channels hold up to buffer pending messages. Use Start to run it and Stop
// to stop it.
func New[T any](buffer int) *Broker[T] {
	return &Broker[T]{
		stopChannel:        make(chan struct{}),
		publishChannel:     make(chan T),
		subscribeChannel:   make(chan chan T),
		unsubscribeChannel: make(chan chan T),
		buffer:             buffer,
	}
}

// Start handles publish, subscribe, and unsubscribe events. It blocks until Stop is called, so it should be called
// in a goroutine. Subscriber channels are closed when it returns.
func (b *Broker[T]) Start() {
	subscribers := map[chan T]struct{}{}
	defer func() {
		for c := range subscribers {
			close(c)
		}
	}()
	for {
		select {
		case <-b.stopChannel:
			return

		case c := <-b.subscribeChannel:
			subscribers[c] = struct{}{}

		case c := <-b.unsubscribeChannel:
			if _, ok := subscribers[c]; ok {
				delete(subscribers, c)
				close(c)
			}

		case msg := <-b.publishChannel:
			for c := range subscribers {
				select {
				case c <- msg:
				default:
					// Slow subscriber, drop the message.
				}
			}
		}
	}
}

// Stop the goroutine that handles the broker. Calling it more than once is fine.
func (b *Broker[T]) Stop() {
	b.stopOnce.Do(func() {
		close(b.stopChannel)
	})
}

// Subscribe returns a channel receiving every message published from now on. The channel is closed by Unsubscribe
// or when the broker stops. Subscribing to a stopped broker returns a closed channel.
func (b *Broker[T]) Subscribe() chan T {
	c := make(chan T, b.buffer)
	select {
	case b.subscribeChannel <- c:
	case <-b.stopChannel:
		close(c)
	}
	return c
}

// Unsubscribe removes and closes c.
func (b *Broker[T]) Unsubscribe(c chan T) {
	select {
	case b.unsubscribeChannel <- c:
	case <-b.stopChannel:
	}
}

// Publish sends msg to the current subscribers. It is a no-op once the broker has stopped.
func (b *Broker[T]) Publish(msg T) {
	select {
	case b.publishChannel <- msg:
	case <-b.stopChannel:
	}
}
