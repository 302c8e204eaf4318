package redisserver

import (
	"fmt"
	"net"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/yndnr/redmod-go/internal/core/command"
	"github.com/yndnr/redmod-go/internal/core/domain"
	"github.com/yndnr/redmod-go/internal/core/pubsub"
	"github.com/yndnr/redmod-go/internal/infra/buildinfo"
	"github.com/yndnr/redmod-go/pkg/resp"
)

var infoSections = []string{"server", "clients", "stats", "keyspace"}

// info implements INFO [section ...]. "all", "everything" and "default"
// select every section; unknown names are ignored.
func (s *Server) info(c *Conn, args [][]byte) {
	want := make(map[string]bool)
	for _, a := range args {
		name := strings.ToLower(string(a))
		switch name {
		case "all", "everything", "default":
			for _, sec := range infoSections {
				want[sec] = true
			}
		default:
			want[name] = true
		}
	}
	if len(args) == 0 {
		for _, sec := range infoSections {
			want[sec] = true
		}
	}

	var b strings.Builder
	for _, sec := range infoSections {
		if !want[sec] {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\r\n")
		}
		switch sec {
		case "server":
			s.writeServerInfo(&b)
		case "clients":
			fmt.Fprintf(&b, "# Clients\r\nconnected_clients:%d\r\n", s.clients.Count())
		case "stats":
			fmt.Fprintf(&b, "# Stats\r\ntotal_connections_received:%d\r\ntotal_commands_processed:%d\r\npubsub_channels:%d\r\n",
				s.totalConns.Load(), s.totalCommands.Load(), s.hub.ChannelCount())
		case "keyspace":
			b.WriteString("# Keyspace\r\n")
			if keys, expires := s.engine.Keyspace(); keys > 0 {
				fmt.Fprintf(&b, "db0:keys=%d,expires=%d,avg_ttl=0\r\n", keys, expires)
			}
		}
	}
	c.reply(resp.BulkString(b.String()))
}

func (s *Server) writeServerInfo(b *strings.Builder) {
	port := 0
	if addr, ok := s.Addr().(*net.TCPAddr); ok {
		port = addr.Port
	}
	bi := buildinfo.Get()

	b.WriteString("# Server\r\n")
	fmt.Fprintf(b, "redis_version:%s\r\n", buildinfo.CompatVersion)
	fmt.Fprintf(b, "redmod_version:%s\r\n", bi.Version)
	fmt.Fprintf(b, "redmod_git_sha1:%s\r\n", bi.Commit)
	fmt.Fprintf(b, "go_version:%s\r\n", bi.GoVersion)
	fmt.Fprintf(b, "run_id:%s\r\n", s.runID)
	fmt.Fprintf(b, "process_id:%d\r\n", os.Getpid())
	fmt.Fprintf(b, "tcp_port:%d\r\n", port)
	fmt.Fprintf(b, "uptime_in_seconds:%d\r\n", int64(time.Since(s.startedAt).Seconds()))
}

// clientList renders CLIENT LIST, one line per connection in id order.
func (s *Server) clientList() string {
	conns := s.clients.Values()
	sort.Slice(conns, func(i, j int) bool { return conns[i].id < conns[j].id })

	now := time.Now()
	var b strings.Builder
	for _, c := range conns {
		c.mu.Lock()
		name, cmd := c.name, c.lastCmd
		age := now.Sub(c.createdAt)
		idle := now.Sub(c.lastSeen)
		c.mu.Unlock()

		if cmd == "" {
			cmd = "NULL"
		}
		fmt.Fprintf(&b, "id=%d addr=%s name=%s age=%d idle=%d sub=%d cmd=%s\n",
			c.id, c.RemoteAddr(), name, int64(age.Seconds()), int64(idle.Seconds()),
			s.hub.SubscriptionCount(pubsub.ClientID(c.id)), cmd)
	}
	return b.String()
}

// commandInfo implements COMMAND, COMMAND COUNT, COMMAND LIST and
// COMMAND DOCS over engine and connection commands alike.
func (s *Server) commandInfo(c *Conn, args [][]byte) {
	descs := s.descriptors()

	if len(args) == 0 {
		out := make([]resp.Value, len(descs))
		for i, d := range descs {
			out[i] = describe(d)
		}
		c.reply(resp.Array(out...))
		return
	}

	switch sub := strings.ToLower(string(args[0])); sub {
	case "count":
		c.reply(resp.Integer(int64(len(descs))))
	case "list":
		names := make([]string, len(descs))
		for i, d := range descs {
			names[i] = d.Name
		}
		c.reply(resp.Strings(names))
	case "info":
		out := make([]resp.Value, 0, len(args)-1)
		for _, a := range args[1:] {
			if d, ok := s.descriptor(strings.ToLower(string(a))); ok {
				out = append(out, describe(d))
			} else {
				out = append(out, resp.NullArray())
			}
		}
		c.reply(resp.Array(out...))
	case "docs":
		c.reply(resp.Array())
	default:
		c.reply(errorValue(domain.UnknownSubcommandError("COMMAND", string(args[0]))))
	}
}

func (s *Server) descriptor(name string) (command.Descriptor, bool) {
	if cmd, ok := s.commands[name]; ok {
		return cmd.desc, true
	}
	return s.engine.Lookup(name)
}

// descriptors returns every command, sorted by name.
func (s *Server) descriptors() []command.Descriptor {
	names := s.engine.CommandNames(false)
	out := make([]command.Descriptor, 0, len(names)+len(s.commands))
	for _, name := range names {
		if d, ok := s.engine.Lookup(name); ok {
			out = append(out, d)
		}
	}
	for _, cmd := range s.commands {
		out = append(out, cmd.desc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// describe renders the leading COMMAND INFO fields: name, arity, flags.
func describe(d command.Descriptor) resp.Value {
	flags := []resp.Value{}
	if f := d.Flags.String(); f != "" {
		flags = append(flags, resp.SimpleString(f))
	}
	return resp.Array(
		resp.BulkString(d.Name),
		resp.Integer(int64(d.Arity())),
		resp.Array(flags...),
	)
}
