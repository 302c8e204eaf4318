package redisserver

import (
	"strings"

	"github.com/yndnr/redmod-go/internal/core/domain"
	"github.com/yndnr/redmod-go/internal/core/pubsub"
	"github.com/yndnr/redmod-go/pkg/resp"
)

// onMessage runs under the hub lock and only queues frames.
func (s *Server) onMessage(m pubsub.Message) {
	c, ok := s.clients.Get(uint64(m.ClientID))
	if !ok {
		return
	}
	frame := resp.Array(
		resp.BulkString("message"),
		resp.BulkString(m.Channel),
		resp.Bulk(m.Payload),
	)
	if c.reply(frame) {
		s.metrics.MessageDelivered()
	}
}

func (s *Server) onSubscription(kind string) func(pubsub.Subscription) {
	return func(sub pubsub.Subscription) {
		c, ok := s.clients.Get(uint64(sub.ClientID))
		if !ok {
			return
		}
		c.reply(resp.Array(
			resp.BulkString(kind),
			resp.BulkString(sub.Channel),
			resp.Integer(int64(sub.Count)),
		))
	}
}

// subscribe replies through the hub's subscribe notifications.
func (s *Server) subscribe(c *Conn, args [][]byte) {
	s.hub.Subscribe(pubsub.ClientID(c.id), byteStrings(args)...)
}

func (s *Server) unsubscribe(c *Conn, args [][]byte) {
	id := pubsub.ClientID(c.id)
	if len(args) == 0 && s.hub.SubscriptionCount(id) == 0 {
		c.reply(resp.Array(resp.BulkString("unsubscribe"), resp.Nil(), resp.Integer(0)))
		return
	}
	s.hub.Unsubscribe(id, byteStrings(args)...)
}

func (s *Server) publish(c *Conn, args [][]byte) {
	n := s.hub.Publish(pubsub.ClientID(c.id), string(args[0]), args[1])
	c.reply(resp.Integer(int64(n)))
}

// pubsubInfo implements PUBSUB CHANNELS [pattern], NUMSUB [channel ...] and
// NUMPAT.
func (s *Server) pubsubInfo(c *Conn, args [][]byte) {
	sub := strings.ToLower(string(args[0]))
	rest := args[1:]

	switch sub {
	case "channels":
		if len(rest) > 1 {
			c.reply(errorValue(domain.ArityError("pubsub|channels")))
			return
		}
		pattern := ""
		if len(rest) == 1 {
			pattern = string(rest[0])
		}
		c.reply(resp.Strings(s.hub.Channels(pattern)))
	case "numsub":
		channels := byteStrings(rest)
		counts := s.hub.NumSub(channels...)
		out := make([]resp.Value, 0, 2*len(channels))
		for i, ch := range channels {
			out = append(out, resp.BulkString(ch), resp.Integer(int64(counts[i])))
		}
		c.reply(resp.Array(out...))
	case "numpat":
		c.reply(resp.Integer(0))
	default:
		c.reply(errorValue(domain.UnknownSubcommandError("PUBSUB", string(args[0]))))
	}
}

func byteStrings(bs [][]byte) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = string(b)
	}
	return out
}
