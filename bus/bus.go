// bus.go
package bus

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
)

// -----------------------------------------------------------------------------
// Tokens + Topics
// -----------------------------------------------------------------------------

// Token is a single element in a topic path. Any comparable value works;
// strings and ints are the norm.
type Token = any

// Topic is a sequence of tokens.
type Topic []Token

// Wildcards, valid in subscriptions only.
const (
	SingleWild = "+" // exactly one level
	MultiWild  = "#" // zero or more trailing levels
)

// T builds a topic. It panics if a token is not comparable.
func T(tokens ...Token) Topic {
	check := make(map[Token]struct{}, len(tokens))
	for _, tok := range tokens {
		check[tok] = struct{}{} // panics on unhashable types
	}
	return Topic(tokens)
}

// Append returns a new topic with extra tokens after t.
func (t Topic) Append(tokens ...Token) Topic {
	out := make(Topic, 0, len(t)+len(tokens))
	out = append(out, t...)
	return append(out, tokens...)
}

// -----------------------------------------------------------------------------
// Message
// -----------------------------------------------------------------------------

type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
	ReplyTo  Topic
}

// -----------------------------------------------------------------------------
// Subscription
// -----------------------------------------------------------------------------

type Subscription struct {
	topic Topic
	ch    chan *Message
	conn  *Connection // owning connection
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

// deliver never blocks; a full queue drops its oldest message.
func (s *Subscription) deliver(m *Message) {
	for {
		select {
		case s.ch <- m:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

// -----------------------------------------------------------------------------
// Trie node
// -----------------------------------------------------------------------------

type node struct {
	children map[Token]*node
	subs     []*Subscription
	retained *Message
}

func (n *node) child(tok Token, create bool) *node {
	if c, ok := n.children[tok]; ok || !create {
		return c
	}
	if n.children == nil {
		n.children = make(map[Token]*node)
	}
	c := &node{}
	n.children[tok] = c
	return c
}

func (n *node) empty() bool {
	return len(n.subs) == 0 && len(n.children) == 0 && n.retained == nil
}

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

type Bus struct {
	mu       sync.Mutex
	subs     *node // subscription patterns
	retained *node // concrete topics with a retained message
	qLen     int
	nextID   atomic.Uint32
}

// NewBus creates a new bus with the given subscription queue length.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8
	}
	return &Bus{
		subs:     &node{},
		retained: &node{},
		qLen:     queueLen,
	}
}

// NewMessage builds a message; it does not publish it.
func (b *Bus) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

// Publish delivers a message to every matching subscriber and updates the
// retained store. A retained message with a nil payload clears the topic.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if msg.Retained {
		b.storeRetained(msg)
	}
	collectSubs(b.subs, msg.Topic, 0, func(s *Subscription) { s.deliver(msg) })
}

func (b *Bus) storeRetained(msg *Message) {
	if msg.Payload != nil {
		n := b.retained
		for _, tok := range msg.Topic {
			n = n.child(tok, true)
		}
		n.retained = msg
		return
	}
	path := make([]*node, 0, len(msg.Topic)+1)
	n := b.retained
	path = append(path, n)
	for _, tok := range msg.Topic {
		if n = n.child(tok, false); n == nil {
			return
		}
		path = append(path, n)
	}
	n.retained = nil
	prune(path, msg.Topic)
}

// collectSubs visits subscriptions whose pattern matches topic[i:] below n.
func collectSubs(n *node, topic Topic, i int, fn func(*Subscription)) {
	if c := n.child(MultiWild, false); c != nil {
		for _, s := range c.subs {
			fn(s)
		}
	}
	if i == len(topic) {
		for _, s := range n.subs {
			fn(s)
		}
		return
	}
	if c := n.child(SingleWild, false); c != nil {
		collectSubs(c, topic, i+1, fn)
	}
	if tok := topic[i]; tok != SingleWild && tok != MultiWild {
		if c := n.child(tok, false); c != nil {
			collectSubs(c, topic, i+1, fn)
		}
	}
}

// collectRetained visits retained messages below n matching pattern[i:].
func collectRetained(n *node, pattern Topic, i int, fn func(*Message)) {
	if i == len(pattern) {
		if n.retained != nil {
			fn(n.retained)
		}
		return
	}
	switch pattern[i] {
	case MultiWild:
		walkRetained(n, fn)
	case SingleWild:
		for _, c := range n.children {
			collectRetained(c, pattern, i+1, fn)
		}
	default:
		if c := n.child(pattern[i], false); c != nil {
			collectRetained(c, pattern, i+1, fn)
		}
	}
}

func walkRetained(n *node, fn func(*Message)) {
	if n.retained != nil {
		fn(n.retained)
	}
	for _, c := range n.children {
		walkRetained(c, fn)
	}
}

// prune removes empty nodes bottom-up along path (path[0] is the root).
func prune(path []*node, topic Topic) {
	for i := len(topic) - 1; i >= 0; i-- {
		if !path[i+1].empty() {
			return
		}
		delete(path[i].children, topic[i])
	}
}

func (b *Bus) addSubscription(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.subs
	for _, tok := range sub.topic {
		n = n.child(tok, true)
	}
	n.subs = append(n.subs, sub)

	collectRetained(b.retained, sub.topic, 0, sub.deliver)
}

func (b *Bus) removeSubscription(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := make([]*node, 0, len(sub.topic)+1)
	n := b.subs
	path = append(path, n)
	for _, tok := range sub.topic {
		if n = n.child(tok, false); n == nil {
			return
		}
		path = append(path, n)
	}
	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			break
		}
	}
	prune(path, sub.topic)
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

type Connection struct {
	bus  *Bus
	subs []*Subscription
	mu   sync.Mutex
	id   string
}

// NewConnection creates a new connection bound to this bus.
func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{bus: b, id: id}
}

// ID returns the name given to NewConnection.
func (c *Connection) ID() string { return c.id }

// NewMessage builds a message on the connection's bus.
func (c *Connection) NewMessage(topic Topic, payload any, retained bool) *Message {
	return c.bus.NewMessage(topic, payload, retained)
}

// Publish sends a message via the bus.
func (c *Connection) Publish(msg *Message) {
	c.bus.Publish(msg)
}

// Subscribe registers a subscription owned by this connection. Retained
// messages matching topic are queued immediately.
func (c *Connection) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan *Message, c.bus.qLen),
		conn:  c,
	}
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	c.bus.addSubscription(sub)
	return sub
}

// Unsubscribe removes a subscription owned by this connection and closes its
// channel. Calling it twice is harmless.
func (c *Connection) Unsubscribe(sub *Subscription) {
	c.mu.Lock()
	found := false
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			found = true
			break
		}
	}
	c.mu.Unlock()
	if !found {
		return
	}
	c.bus.removeSubscription(sub)
	close(sub.ch)
}

// Disconnect closes all subscriptions and clears them.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		c.bus.removeSubscription(sub)
		close(sub.ch)
	}
}

// -----------------------------------------------------------------------------
// Request–Reply
// -----------------------------------------------------------------------------

// Request assigns msg a private ReplyTo topic (unless it has one), subscribes
// to it, then publishes msg. The caller owns the returned subscription.
func (c *Connection) Request(msg *Message) *Subscription {
	if len(msg.ReplyTo) == 0 {
		id := c.bus.nextID.Add(1)
		msg.ReplyTo = Topic{"_reply", c.id, strconv.FormatUint(uint64(id), 10)}
	}
	sub := c.Subscribe(msg.ReplyTo)
	c.Publish(msg)
	return sub
}

// RequestWait publishes msg and waits for the first reply or ctx expiry.
func (c *Connection) RequestWait(ctx context.Context, msg *Message) (*Message, error) {
	sub := c.Request(msg)
	defer c.Unsubscribe(sub)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case reply := <-sub.Channel():
		return reply, nil
	}
}

// Reply publishes payload to req.ReplyTo. Requests without ReplyTo are ignored.
func (c *Connection) Reply(req *Message, payload any, retained bool) {
	if req == nil || len(req.ReplyTo) == 0 {
		return
	}
	c.Publish(c.NewMessage(req.ReplyTo, payload, retained))
}
