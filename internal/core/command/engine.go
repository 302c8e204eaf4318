package command

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yndnr/redmod-go/internal/core/clock"
	"github.com/yndnr/redmod-go/internal/core/domain"
	"github.com/yndnr/redmod-go/internal/storage/memory"
	"github.com/yndnr/redmod-go/pkg/resp"
)

// Observer receives one call per dispatched command.
type Observer interface {
	ObserveCommand(name string, duration time.Duration, failed bool)
}

// Engine dispatches commands against a store.
type Engine struct {
	mu       sync.Mutex
	store    *memory.Store
	commands map[string]entry

	observer Observer
	logger   *slog.Logger
	onExpire func(key string)
}

type entry struct {
	desc Descriptor
	call Handler
}

// Option configures the Engine.
type Option func(*Engine)

// WithObserver reports every dispatched command to o.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithOnExpire registers a hook called, under the engine lock, for every
// key removed by expiration.
func WithOnExpire(fn func(key string)) Option {
	return func(e *Engine) {
		e.onExpire = fn
	}
}

// New creates an engine over a fresh store. Expiration callbacks handed
// to sched acquire the engine lock before touching the keyspace, so sched
// must not run them synchronously from At.
func New(c clock.Clock, sched clock.Scheduler, opts ...Option) *Engine {
	e := &Engine{
		commands: make(map[string]entry),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	locked := clock.SchedulerFunc(func(when time.Time, fn func()) {
		sched.At(when, func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			fn()
		})
	})
	e.store = memory.New(c, locked, memory.WithOnExpire(e.expired))

	e.registerStrings()
	e.registerKeys()
	e.registerExpire()
	e.registerHashes()
	e.registerServer()

	return e
}

func (e *Engine) expired(key string) {
	e.logger.Debug("key expired", "key", key)
	if e.onExpire != nil {
		e.onExpire(key)
	}
}

// Register adds d to the registry under its lower-cased name, replacing
// any existing command of that name.
func (e *Engine) Register(d Descriptor) {
	d.Name = strings.ToLower(d.Name)
	e.mu.Lock()
	e.commands[d.Name] = entry{desc: d, call: arityChecked(d)}
	e.mu.Unlock()
}

// Exec runs a flattened request: tokens[0] is the command name.
func (e *Engine) Exec(tokens [][]byte) resp.Value {
	if len(tokens) == 0 {
		return resp.Error("ERR empty command")
	}
	return e.Dispatch(string(tokens[0]), tokens[1:])
}

// Dispatch runs the command name with args and returns its reply.
func (e *Engine) Dispatch(name string, args [][]byte) resp.Value {
	lower := strings.ToLower(name)

	e.mu.Lock()
	ent, ok := e.commands[lower]
	if !ok {
		e.mu.Unlock()
		e.logger.Debug("unknown command", "command", name, "args", len(args))
		return errorReply(domain.UnknownCommandError(name))
	}

	start := time.Now()
	reply := ent.call(args)
	e.mu.Unlock()

	if e.observer != nil {
		e.observer.ObserveCommand(lower, time.Since(start), reply.IsError())
	}
	return reply
}

// Lookup returns the descriptor registered under name.
func (e *Engine) Lookup(name string) (Descriptor, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ent, ok := e.commands[strings.ToLower(name)]
	return ent.desc, ok
}

// CommandNames lists every registered command name, sorted ascending when
// sorted is true.
func (e *Engine) CommandNames(sorted bool) []string {
	e.mu.Lock()
	names := make([]string, 0, len(e.commands))
	for name := range e.commands {
		names = append(names, name)
	}
	e.mu.Unlock()

	if sorted {
		sort.Strings(names)
	}
	return names
}

// KeyCount returns the live number of keys.
func (e *Engine) KeyCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Len()
}

// Keyspace returns the number of keys and how many of them carry an expiry.
func (e *Engine) Keyspace() (keys, expires int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Len(), e.store.Expires()
}
