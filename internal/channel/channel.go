package channel

import (
	"context"
	"fmt"
	"sync"
)

// Item is one unit of work flowing between stages: a sample key plus the
// ordered file paths produced for it. Items are immutable once published.
type Item struct {
	Key   string
	Paths []string
	Meta  map[string]string
}

// Channel is an ordered conduit of items from producer stages to consumer
// stages. Multiple subscriptions fan the full sequence out independently;
// CollectAll provides the close-triggered barrier used by aggregate stages.
type Channel struct {
	name string

	mu     sync.Mutex
	items  []Item
	closed bool
	wake   chan struct{}
}

// New creates an open channel with the given name.
func New(name string) *Channel {
	return &Channel{name: name, wake: make(chan struct{})}
}

// Name returns the channel's name.
func (c *Channel) Name() string { return c.name }

// Publish appends an item and notifies waiting consumers. Publishing on a
// closed channel is a wiring bug and panics.
func (c *Channel) Publish(item Item) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		panic(fmt.Sprintf("channel %s: publish after close", c.name))
	}
	c.items = append(c.items, item)
	c.broadcastLocked()
	c.mu.Unlock()
}

// Close marks that no more items will arrive. Close is idempotent.
func (c *Channel) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		c.broadcastLocked()
	}
	c.mu.Unlock()
}

// Closed reports whether the channel has been closed.
func (c *Channel) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Len returns the number of items published so far.
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// broadcastLocked wakes every waiter by replacing the wake channel.
func (c *Channel) broadcastLocked() {
	close(c.wake)
	c.wake = make(chan struct{})
}

// Subscribe returns an independent cursor over the channel's full item
// sequence, including items published before the call.
func (c *Channel) Subscribe() *Subscription {
	return &Subscription{ch: c}
}

// CollectAll blocks until the channel is closed, then returns every published
// item as one batch.
func (c *Channel) CollectAll(ctx context.Context) ([]Item, error) {
	for {
		c.mu.Lock()
		if c.closed {
			batch := make([]Item, len(c.items))
			copy(batch, c.items)
			c.mu.Unlock()
			return batch, nil
		}
		wake := c.wake
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-wake:
		}
	}
}

// Subscription is a single consumer's position in a channel.
type Subscription struct {
	ch   *Channel
	next int
}

// Next returns the next item in sequence. It blocks until an item is
// available or the channel closes; ok is false once the channel is closed
// and fully drained.
func (s *Subscription) Next(ctx context.Context) (item Item, ok bool, err error) {
	for {
		s.ch.mu.Lock()
		if s.next < len(s.ch.items) {
			item = s.ch.items[s.next]
			s.next++
			s.ch.mu.Unlock()
			return item, true, nil
		}
		if s.ch.closed {
			s.ch.mu.Unlock()
			return Item{}, false, nil
		}
		wake := s.ch.wake
		s.ch.mu.Unlock()

		select {
		case <-ctx.Done():
			return Item{}, false, ctx.Err()
		case <-wake:
		}
	}
}
