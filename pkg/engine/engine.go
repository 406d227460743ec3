package engine

import (
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/goliatone/go-softlimit/pkg/counter"
	"github.com/goliatone/go-softlimit/pkg/dom"
	"github.com/goliatone/go-softlimit/pkg/eventloop"
	"github.com/goliatone/go-softlimit/pkg/placeholder"
	"github.com/goliatone/go-softlimit/pkg/surface"
)

// Engine discovers counter placeholders and keeps their bindings current.
type Engine struct {
	doc        dom.Document
	sched      eventloop.Scheduler
	logger     *slog.Logger
	registry   *surface.Registry
	cfg        Config
	thresholds counter.Thresholds
	observer   observers

	bindings map[string]*Binding
	running  bool
	scanning bool
	rescan   bool
	unwatch  dom.Cancel
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRegistry replaces the surface adapter registry.
func WithRegistry(reg *surface.Registry) Option {
	return func(e *Engine) {
		if reg != nil {
			e.registry = reg
		}
	}
}

// WithConfig sets the tunables; zero fields keep their defaults.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg.WithDefaults()
	}
}

// WithObserver adds a lifecycle observer. It may be given more than once.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = append(e.observer, o)
		}
	}
}

// ErrNoDocument is returned by New when doc is nil.
var ErrNoDocument = errors.New("engine: document is required")

// ErrNoScheduler is returned by New when sched is nil.
var ErrNoScheduler = errors.New("engine: scheduler is required")

// New builds an engine over doc. Nothing happens until Start.
func New(doc dom.Document, sched eventloop.Scheduler, opts ...Option) (*Engine, error) {
	if doc == nil {
		return nil, ErrNoDocument
	}
	if sched == nil {
		return nil, ErrNoScheduler
	}
	e := &Engine{
		doc:      doc,
		sched:    sched,
		logger:   slog.Default(),
		registry: surface.NewRegistry(),
		cfg:      DefaultConfig(),
		bindings: make(map[string]*Binding),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.thresholds = e.cfg.thresholds()
	return e, nil
}

// Config returns the effective tunables.
func (e *Engine) Config() Config { return e.cfg }

// Start scans the document and watches it for new placeholders. Calling it
// again while running does nothing.
func (e *Engine) Start() {
	if e.running {
		return
	}
	e.running = true
	e.unwatch = e.doc.Observe(e.onMutation)
	e.Scan()
}

// Stop stops watching the document and releases every binding. The engine
// can be started again.
func (e *Engine) Stop() {
	if !e.running {
		return
	}
	e.running = false
	if e.unwatch != nil {
		e.unwatch()
		e.unwatch = nil
	}
	for _, b := range e.Bindings() {
		b.Release()
	}
}

// Running reports whether Start was called without a matching Stop.
func (e *Engine) Running() bool { return e.running }

// Binding returns the active binding for id.
func (e *Engine) Binding(id string) (*Binding, bool) {
	b, ok := e.bindings[id]
	return b, ok
}

// Bindings returns the active bindings ordered by id.
func (e *Engine) Bindings() []*Binding {
	out := make([]*Binding, 0, len(e.bindings))
	for _, b := range e.bindings {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b *Binding) int { return strings.Compare(a.id, b.id) })
	return out
}

// Release releases the binding for id and reports whether one existed.
func (e *Engine) Release(id string) bool {
	b, ok := e.bindings[id]
	if !ok {
		return false
	}
	b.Release()
	return true
}

func (e *Engine) onMutation() {
	defer e.recoverCallback("mutation", "")
	e.Scan()
}

// Scan claims unbound placeholders, drops bindings whose placeholder left the
// document and retries resolving bindings right away. Calls made while a scan
// is running are folded into it.
func (e *Engine) Scan() {
	if e.scanning {
		e.rescan = true
		return
	}
	e.scanning = true
	defer func() { e.scanning = false }()

	for pass := 0; ; pass++ {
		e.rescan = false
		e.sweep()
		for _, el := range e.doc.QueryAttr(placeholder.AttrMarker) {
			if _, claimed := el.Attr(placeholder.AttrBound); claimed || !el.Connected() {
				continue
			}
			e.claim(el)
		}
		for _, b := range e.Bindings() {
			if b.state == StateResolving {
				b.tryResolve()
			}
		}
		if !e.rescan || pass >= maxScanPasses {
			return
		}
	}
}

const maxScanPasses = 8

// sweep releases bindings whose placeholder is gone. A bound binding whose
// input was removed is released and its placeholder returned to the pool so
// the identifier can be bound again.
func (e *Engine) sweep() {
	for _, b := range e.Bindings() {
		switch {
		case !b.placeholder.Connected():
			e.logger.Debug("soft-limit placeholder removed", "target", b.id)
			b.Release()
		case b.state == StateBound && b.input != nil && !b.input.Connected():
			e.logger.Debug("soft-limit input removed, rebinding", "target", b.id)
			b.Release()
			b.placeholder.RemoveAttr(placeholder.AttrBound)
		}
	}
}

func (e *Engine) claim(el dom.Element) {
	p, err := placeholder.Decode(el)
	if err != nil {
		el.SetAttr(placeholder.AttrBound, placeholder.BoundAbandoned)
		e.logger.Debug("soft-limit placeholder ignored", "error", err)
		return
	}
	if prev, ok := e.bindings[p.Target]; ok {
		e.logger.Debug("soft-limit binding superseded", "target", p.Target, "state", prev.state)
		prev.Release()
	}
	b := newBinding(e, el, p)
	e.bindings[p.Target] = b
	b.begin()
}

func (e *Engine) forget(b *Binding) {
	if current, ok := e.bindings[b.id]; ok && current == b {
		delete(e.bindings, b.id)
	}
}

func (e *Engine) recoverCallback(op, target string) {
	if r := recover(); r != nil {
		e.logger.Error("soft-limit callback panicked", "op", op, "target", target, "panic", r)
	}
}
