package bridge

import (
	"time"

	"github.com/rs/zerolog"

	"fmbridge/internal/engine"
	"fmbridge/pkg/types"
)

// Config encapsulates all tunables for Bridge construction.
type Config struct {
	Engine engine.Engine
	// Logger receives structured operation logs; nil disables logging.
	Logger *zerolog.Logger
	// Publisher receives lifecycle events; nil drops them.
	Publisher EventPublisher
}

// Bridge exposes an engine through the blocking and streaming call modes.
// A Bridge is safe for concurrent use; construct one per process.
type Bridge struct {
	engine    engine.Engine
	log       zerolog.Logger
	pub       EventPublisher
	modes     [2]*modeState
	startTime time.Time
}

// New constructs a Bridge over eng with default logging and events.
func New(eng engine.Engine) *Bridge {
	return NewWithConfig(Config{Engine: eng})
}

// NewWithConfig constructs a Bridge from Config.
func NewWithConfig(cfg Config) *Bridge {
	b := &Bridge{
		engine:    cfg.Engine,
		log:       zerolog.Nop(),
		pub:       cfg.Publisher,
		startTime: time.Now(),
	}
	if cfg.Logger != nil {
		b.log = cfg.Logger.With().Str("component", "bridge").Logger()
	}
	if b.pub == nil {
		b.pub = noopPublisher{}
	}
	if b.engine == nil {
		b.engine = engine.Echo{}
	}
	b.modes[Blocking] = newModeState(Blocking)
	b.modes[Streaming] = newModeState(Streaming)
	return b
}

// Engine returns the engine the bridge drives.
func (b *Bridge) Engine() engine.Engine { return b.engine }

// CheckAvailability reports whether the engine can serve requests.
func (b *Bridge) CheckAvailability() bool { return b.engine.Available() == nil }

// Current returns the running operation of mode, or nil when idle.
func (b *Bridge) Current(mode CallMode) *Operation { return b.modes[mode].slot.current() }

// Status builds the status response for /status.
func (b *Bridge) Status() types.StatusResponse {
	now := time.Now()
	resp := types.StatusResponse{
		Engine:         b.engine.Name(),
		Available:      true,
		UptimeSeconds:  int64(now.Sub(b.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
	if err := b.engine.Available(); err != nil {
		resp.Available = false
		resp.Reason = err.Error()
	}
	for _, st := range b.modes {
		ms := types.ModeStatus{Mode: st.mode.String(), Started: st.started.Load()}
		if op := st.slot.current(); op != nil {
			ms.Operation = op.id
		}
		resp.Modes = append(resp.Modes, ms)
	}
	return resp
}

func (b *Bridge) publish(name string, op *Operation, fields map[string]any) {
	b.pub.Publish(Event{Name: name, Mode: op.mode, Operation: op.id, Fields: fields})
}
