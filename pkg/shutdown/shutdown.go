// Package shutdown ties process lifetime to SIGINT/SIGTERM and runs
// registered cleanups in reverse order under a deadline.
package shutdown

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"
)

// WithSignals returns a context cancelled on SIGINT or SIGTERM.
func WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

type closer struct {
	name string
	fn   func(context.Context) error
}

// Group collects cleanup steps and closes them LIFO, so dependents shut down
// before the resources they use. Failures are logged, never propagated: at
// shutdown there is nobody left to handle them.
type Group struct {
	timeout time.Duration
	closers []closer
	log     *slog.Logger
}

func NewGroup(timeout time.Duration, log *slog.Logger) *Group {
	return &Group{timeout: timeout, log: log}
}

func (g *Group) Add(name string, fn func(context.Context) error) {
	g.closers = append(g.closers, closer{name: name, fn: fn})
}

func (g *Group) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	for i := len(g.closers) - 1; i >= 0; i-- {
		c := g.closers[i]
		if err := c.fn(ctx); err != nil {
			g.log.Error("shutdown step failed", slog.String("step", c.name), slog.Any("err", err))
			continue
		}
		g.log.Info("shutdown step done", slog.String("step", c.name))
	}
}
