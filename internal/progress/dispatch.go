package progress

import (
	"context"
	"log/slog"
	"sort"
	"sync"
)

// Dispatcher forwards tracker changes to registered event sinks.
type Dispatcher struct {
	sinks map[string]EventLogger
	mu    sync.RWMutex
	log   *slog.Logger
}

// NewDispatcher creates a dispatcher with no sinks.
func NewDispatcher(log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		sinks: make(map[string]EventLogger),
		log:   log,
	}
}

// Register adds a sink under name, replacing any sink with the same name.
func (d *Dispatcher) Register(name string, sink EventLogger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sinks[name] = sink
	d.log.Info("progress sink registered", "sink", name)
}

// HasSink returns true if the named sink is registered.
func (d *Dispatcher) HasSink(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.sinks[name]
	return ok
}

// Dispatch delivers one change to every sink. Sink failures are logged and do
// not stop delivery to the others.
func (d *Dispatcher) Dispatch(c Change) {
	ev := EventFromChange(c)

	d.mu.RLock()
	names := make([]string, 0, len(d.sinks))
	for name := range d.sinks {
		names = append(names, name)
	}
	sort.Strings(names)
	sinks := make([]EventLogger, len(names))
	for i, name := range names {
		sinks[i] = d.sinks[name]
	}
	d.mu.RUnlock()

	for i, sink := range sinks {
		if err := sink.LogEvent(ev); err != nil {
			d.log.Warn("progress sink failed",
				"sink", names[i],
				"kind", c.Kind,
				"chapter_id", c.ChapterID,
				"error", err,
			)
		}
	}
}

// Run consumes sub until ctx is done or the subscription is closed.
// The subscription is closed on return.
func (d *Dispatcher) Run(ctx context.Context, sub *Subscription) {
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-sub.C:
			if !ok {
				return
			}
			d.Dispatch(c)
		}
	}
}
