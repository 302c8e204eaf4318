package redisserver

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/yndnr/redmod-go/internal/core/command"
	"github.com/yndnr/redmod-go/internal/core/domain"
	"github.com/yndnr/redmod-go/internal/core/pubsub"
	"github.com/yndnr/redmod-go/pkg/resp"
)

// connHandler runs a connection-level command and queues its replies.
type connHandler func(c *Conn, args [][]byte)

type connCommand struct {
	desc command.Descriptor
	run  connHandler
	// allowed while the connection has subscriptions
	pubsub bool
	// allowed before AUTH
	noAuth bool
}

func (s *Server) connCommands() map[string]connCommand {
	cmds := []connCommand{
		{desc: command.Descriptor{Name: "ping", Optional: 1}, run: s.ping, pubsub: true},
		{desc: command.Descriptor{Name: "echo", Required: 1}, run: s.echo},
		{desc: command.Descriptor{Name: "quit", Optional: command.Unbounded}, run: s.quit, pubsub: true, noAuth: true},
		{desc: command.Descriptor{Name: "auth", Required: 1, Optional: 1}, run: s.auth, noAuth: true},
		{desc: command.Descriptor{Name: "select", Required: 1}, run: s.selectDB},
		{desc: command.Descriptor{Name: "client", Required: 1, Optional: command.Unbounded}, run: s.client},
		{desc: command.Descriptor{Name: "info", Optional: command.Unbounded, Flags: command.FlagReadOnly}, run: s.info},
		{desc: command.Descriptor{Name: "command", Optional: command.Unbounded}, run: s.commandInfo},
		{desc: command.Descriptor{Name: "subscribe", Required: 1, Optional: command.Unbounded}, run: s.subscribe, pubsub: true},
		{desc: command.Descriptor{Name: "unsubscribe", Optional: command.Unbounded}, run: s.unsubscribe, pubsub: true},
		{desc: command.Descriptor{Name: "publish", Required: 2}, run: s.publish},
		{desc: command.Descriptor{Name: "pubsub", Required: 1, Optional: command.Unbounded}, run: s.pubsubInfo},
	}

	m := make(map[string]connCommand, len(cmds))
	for _, cmd := range cmds {
		m[cmd.desc.Name] = cmd
	}
	return m
}

// handle runs one request. tokens[0] is the command name.
func (s *Server) handle(c *Conn, tokens [][]byte) {
	name := string(tokens[0])
	lower := strings.ToLower(name)
	args := tokens[1:]

	s.totalCommands.Add(1)
	c.touch(lower)

	if c.limiter != nil && !c.limiter.Allow() {
		c.reply(errorValue(domain.ErrRateLimited))
		return
	}

	cmd, isConnCmd := s.commands[lower]

	if !c.authed && !(isConnCmd && cmd.noAuth) {
		c.reply(errorValue(domain.ErrNoAuth))
		return
	}

	if s.hub.SubscriptionCount(pubsub.ClientID(c.id)) > 0 && !(isConnCmd && cmd.pubsub) {
		c.reply(errorValue(domain.SubscribeModeError(name)))
		return
	}

	if !isConnCmd {
		c.reply(s.engine.Dispatch(name, args))
		return
	}

	if !cmd.desc.Accepts(len(args)) {
		s.metrics.ObserveCommand(lower, 0, true)
		c.reply(errorValue(domain.ArityError(lower)))
		return
	}

	start := time.Now()
	cmd.run(c, args)
	s.metrics.ObserveCommand(lower, time.Since(start), false)
}

func errorValue(err error) resp.Value {
	return resp.Error(err.Error())
}

func (s *Server) ping(c *Conn, args [][]byte) {
	inPubSub := s.hub.SubscriptionCount(pubsub.ClientID(c.id)) > 0
	switch {
	case inPubSub && len(args) == 0:
		c.reply(resp.Array(resp.BulkString("pong"), resp.BulkString("")))
	case inPubSub:
		c.reply(resp.Array(resp.BulkString("pong"), resp.Bulk(args[0])))
	case len(args) == 0:
		c.reply(resp.SimpleString("PONG"))
	default:
		c.reply(resp.Bulk(args[0]))
	}
}

func (s *Server) echo(c *Conn, args [][]byte) {
	c.reply(resp.Bulk(args[0]))
}

func (s *Server) quit(c *Conn, _ [][]byte) {
	c.reply(resp.OK())
	c.quitting = true
}

// auth accepts AUTH password and AUTH default password.
func (s *Server) auth(c *Conn, args [][]byte) {
	if s.cfg.RequirePass == "" {
		c.reply(errorValue(domain.ErrAuthNotConfigured))
		return
	}

	password := args[len(args)-1]
	userOK := len(args) == 1 || string(args[0]) == "default"
	if !userOK || subtle.ConstantTimeCompare(password, []byte(s.cfg.RequirePass)) != 1 {
		s.logger.Warn("authentication failed", "client_id", c.id, "remote", c.RemoteAddr())
		c.reply(errorValue(domain.ErrInvalidPassword))
		return
	}

	c.authed = true
	c.reply(resp.OK())
}

// selectDB accepts only database 0.
func (s *Server) selectDB(c *Conn, args [][]byte) {
	switch string(args[0]) {
	case "0":
		c.reply(resp.OK())
	default:
		for _, b := range args[0] {
			if (b < '0' || b > '9') && b != '-' {
				c.reply(errorValue(domain.ErrNotInteger))
				return
			}
		}
		c.reply(errorValue(domain.ErrDBIndex))
	}
}

func (s *Server) client(c *Conn, args [][]byte) {
	sub := strings.ToLower(string(args[0]))
	rest := args[1:]

	switch {
	case sub == "id" && len(rest) == 0:
		c.reply(resp.Integer(int64(c.id)))
	case sub == "getname" && len(rest) == 0:
		if name := c.getName(); name != "" {
			c.reply(resp.BulkString(name))
		} else {
			c.reply(resp.Nil())
		}
	case sub == "setname" && len(rest) == 1:
		name := string(rest[0])
		if strings.ContainsAny(name, " \r\n") {
			c.reply(errorValue(domain.ErrClientName))
			return
		}
		c.setName(name)
		c.reply(resp.OK())
	case sub == "list" && len(rest) == 0:
		c.reply(resp.BulkString(s.clientList()))
	case sub == "id", sub == "getname", sub == "setname", sub == "list":
		c.reply(errorValue(domain.ArityError("client|" + sub)))
	default:
		c.reply(errorValue(domain.UnknownSubcommandError("CLIENT", string(args[0]))))
	}
}
