package pubsub

import (
	"regexp"
	"sort"
	"sync"
)

// ClientID identifies a subscriber connection.
type ClientID uint64

// Message is one delivery of a published payload to one subscriber.
type Message struct {
	ClientID ClientID
	Channel  string
	Payload  []byte
}

// Subscription reports a channel added to or removed from a client. Count
// is the client's number of channels after the change.
type Subscription struct {
	ClientID ClientID
	Channel  string
	Count    int
}

// Publication summarises one PUBLISH. Count is the number of subscribers
// the channel had when the message was published.
type Publication struct {
	PublisherID ClientID
	Channel     string
	Count       int
}

// Listener receives hub notifications.
type Listener interface {
	OnMessage(Message)
	OnSubscribe(Subscription)
	OnUnsubscribe(Subscription)
	OnPublish(Publication)
}

// Listeners adapts optional funcs to Listener. Nil funcs are skipped.
type Listeners struct {
	Message     func(Message)
	Subscribe   func(Subscription)
	Unsubscribe func(Subscription)
	Publish     func(Publication)
}

func (l Listeners) OnMessage(m Message) {
	if l.Message != nil {
		l.Message(m)
	}
}

func (l Listeners) OnSubscribe(s Subscription) {
	if l.Subscribe != nil {
		l.Subscribe(s)
	}
}

func (l Listeners) OnUnsubscribe(s Subscription) {
	if l.Unsubscribe != nil {
		l.Unsubscribe(s)
	}
}

func (l Listeners) OnPublish(p Publication) {
	if l.Publish != nil {
		l.Publish(p)
	}
}

// Hub is the subscription index.
type Hub struct {
	mu        sync.Mutex
	clients   map[ClientID]map[string]struct{}
	channels  map[string]map[ClientID]struct{}
	listeners []Listener
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients:  make(map[ClientID]map[string]struct{}),
		channels: make(map[string]map[ClientID]struct{}),
	}
}

// AddListener appends l to the listeners notified of hub events.
func (h *Hub) AddListener(l Listener) {
	h.mu.Lock()
	h.listeners = append(h.listeners, l)
	h.mu.Unlock()
}

// Subscribe adds each channel to the client's set. It returns the client's
// number of distinct channels after the call and reports one subscribe
// notification per channel, repeated channels included.
func (h *Hub) Subscribe(id ClientID, channels ...string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range channels {
		subs, ok := h.clients[id]
		if !ok {
			subs = make(map[string]struct{})
			h.clients[id] = subs
		}
		subs[ch] = struct{}{}

		members, ok := h.channels[ch]
		if !ok {
			members = make(map[ClientID]struct{})
			h.channels[ch] = members
		}
		members[id] = struct{}{}

		sub := Subscription{ClientID: id, Channel: ch, Count: len(subs)}
		for _, l := range h.listeners {
			l.OnSubscribe(sub)
		}
	}
	return len(h.clients[id])
}

// Unsubscribe removes the given channels from the client's set, or all of
// them when none are given. It returns the client's remaining number of
// channels. Channels the client was not subscribed to are still reported,
// with the unchanged count.
func (h *Hub) Unsubscribe(id ClientID, channels ...string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(channels) == 0 {
		channels = h.sortedChannelsOf(id)
	}

	for _, ch := range channels {
		h.remove(id, ch)
		sub := Subscription{ClientID: id, Channel: ch, Count: len(h.clients[id])}
		for _, l := range h.listeners {
			l.OnUnsubscribe(sub)
		}
	}
	return len(h.clients[id])
}

// remove must be called with h.mu held.
func (h *Hub) remove(id ClientID, ch string) {
	if subs, ok := h.clients[id]; ok {
		delete(subs, ch)
		if len(subs) == 0 {
			delete(h.clients, id)
		}
	}
	if members, ok := h.channels[ch]; ok {
		delete(members, id)
		if len(members) == 0 {
			delete(h.channels, ch)
		}
	}
}

// Publish delivers payload to every subscriber of channel, in ascending
// client id order, and returns how many there were.
func (h *Hub) Publish(publisher ClientID, channel string, payload []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	members := h.channels[channel]
	ids := make([]ClientID, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		msg := Message{ClientID: id, Channel: channel, Payload: payload}
		for _, l := range h.listeners {
			l.OnMessage(msg)
		}
	}

	pub := Publication{PublisherID: publisher, Channel: channel, Count: len(ids)}
	for _, l := range h.listeners {
		l.OnPublish(pub)
	}
	return len(ids)
}

// Channels returns the active channels matching the regular expression
// pattern, sorted. An empty pattern matches all; an invalid one matches
// none.
func (h *Hub) Channels(pattern string) []string {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return []string{}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, 0, len(h.channels))
	for ch := range h.channels {
		if re.MatchString(ch) {
			out = append(out, ch)
		}
	}
	sort.Strings(out)
	return out
}

// NumSub returns the subscriber count of each channel.
func (h *Hub) NumSub(channels ...string) []int {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]int, len(channels))
	for i, ch := range channels {
		out[i] = len(h.channels[ch])
	}
	return out
}

// SubscriptionCount returns the client's number of channels.
func (h *Hub) SubscriptionCount(id ClientID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[id])
}

// ChannelCount returns the number of channels with at least one subscriber.
func (h *Hub) ChannelCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.channels)
}

// sortedChannelsOf returns a snapshot of the client's channels. It must be
// called with h.mu held.
func (h *Hub) sortedChannelsOf(id ClientID) []string {
	subs := h.clients[id]
	out := make([]string, 0, len(subs))
	for ch := range subs {
		out = append(out, ch)
	}
	sort.Strings(out)
	return out
}
