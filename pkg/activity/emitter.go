package activity

import "context"

// DefaultChannel is applied to events emitted without an explicit channel.
const DefaultChannel = "dashboard"

// Config controls whether an emitter publishes and on which channel.
type Config struct {
	Enabled bool
	Channel string
}

// Emitter publishes activity events through a hook chain.
type Emitter struct {
	hooks Hooks
	cfg   Config
}

// NewEmitter builds an emitter. An emitter without hooks is disabled
// regardless of configuration.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	return &Emitter{hooks: hooks, cfg: cfg}
}

// Enabled reports whether Emit will deliver events.
func (e *Emitter) Enabled() bool {
	return e != nil && e.cfg.Enabled && len(e.hooks) > 0
}

// Emit publishes the event on the configured channel.
func (e *Emitter) Emit(ctx context.Context, evt Event) error {
	if !e.Enabled() {
		return nil
	}
	if evt.Channel == "" {
		evt.Channel = e.cfg.Channel
	}
	return e.hooks.Notify(ctx, evt)
}
