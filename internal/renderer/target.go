package renderer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/versecast/versecast/internal/model"
)

const (
	jobQueueSize = 64
	opTimeout    = 5 * time.Second
)

// LayerSettings names the two layers reserved on the output channel.
type LayerSettings struct {
	Background int `mapstructure:"background" json:"background"`
	Foreground int `mapstructure:"foreground" json:"foreground"`
}

// Settings configures one render target.
type Settings struct {
	Name    string        `mapstructure:"name" json:"name"`
	Host    string        `mapstructure:"host" json:"host"`
	Port    int           `mapstructure:"port" json:"port"`
	Channel int           `mapstructure:"channel" json:"channel"`
	Layers  LayerSettings `mapstructure:"layers" json:"layers"`
}

func (s Settings) validate() error {
	if s.Host == "" || s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("target %q: invalid address %s:%d", s.Name, s.Host, s.Port)
	}
	if s.Layers.Background == s.Layers.Foreground {
		return fmt.Errorf("target %q: background and foreground layers must differ", s.Name)
	}
	return nil
}

// State is what a reconnecting target needs to catch up: the payload of the
// currently-active item, whether anything is active, and the visibility flag.
type State struct {
	Payload model.RenderPayload
	Active  bool
	Visible bool
}

// StateProvider returns the then-current state at resync time.
type StateProvider func() State

// Target keeps one remote renderer synchronized. All remote work runs on a
// single worker goroutine, so operations reach the renderer in the order the
// corresponding playlist mutations occurred; failures are logged, never
// surfaced. A target that could not be constructed is a permanently
// disconnected stub.
type Target struct {
	settings Settings
	conn     Connection
	provider StateProvider
	degraded bool

	jobs chan func(ctx context.Context)
	done chan struct{}

	mu          sync.Mutex
	knownMedia  map[string]struct{}
	resyncArmed bool
}

func newTarget(settings Settings, conn Connection, provider StateProvider) *Target {
	t := &Target{
		settings:   settings,
		conn:       conn,
		provider:   provider,
		jobs:       make(chan func(ctx context.Context), jobQueueSize),
		done:       make(chan struct{}),
		knownMedia: make(map[string]struct{}),
	}
	if conn == nil {
		t.degraded = true
		return t
	}

	conn.OnConnect(func() { t.enqueue("refresh-media", t.refreshMedia) })
	conn.OnDisconnect(func(err error) { t.armResync() })
	// the first connect is a resync from nothing
	t.armResync()

	go t.run()
	return t
}

func (t *Target) Name() string { return t.settings.Name }

func (t *Target) run() {
	for {
		select {
		case <-t.done:
			return
		case job := <-t.jobs:
			ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
			job(ctx)
			cancel()
		}
	}
}

// enqueue hands a job to the worker. A full queue drops the job; the target
// lags and catches up through reconnect-resync.
func (t *Target) enqueue(op string, job func(ctx context.Context)) {
	if t.degraded {
		log.Debug().Str("target", t.settings.Name).Str("op", op).Msg("[renderer] degraded target, dropping")
		return
	}
	select {
	case t.jobs <- job:
	default:
		log.Warn().Str("target", t.settings.Name).Str("op", op).Msg("[renderer] job queue full, dropping")
	}
}

// armResync registers the one-shot listener that replays the then-current
// state on the next connect, exactly once per disconnect cycle.
func (t *Target) armResync() {
	t.mu.Lock()
	if t.resyncArmed {
		t.mu.Unlock()
		return
	}
	t.resyncArmed = true
	t.mu.Unlock()

	t.conn.OnConnectOnce(func() {
		t.mu.Lock()
		t.resyncArmed = false
		t.mu.Unlock()

		state := t.provider()
		log.Info().Str("target", t.settings.Name).Bool("active", state.Active).Msg("[renderer] resyncing after reconnect")
		if state.Active {
			t.Play(state.Payload)
		}
		if !state.Visible {
			t.SetVisibility(false)
		}
	})
}

func (t *Target) refreshMedia(ctx context.Context) {
	clips, err := t.conn.ListMedia(ctx)
	if err != nil {
		log.Warn().Err(err).Str("target", t.settings.Name).Msg("[renderer] media list failed")
		return
	}
	known := make(map[string]struct{}, len(clips))
	for _, clip := range clips {
		known[clip] = struct{}{}
	}
	t.mu.Lock()
	t.knownMedia = known
	t.mu.Unlock()
	log.Debug().Str("target", t.settings.Name).Int("clips", len(clips)).Msg("[renderer] media list refreshed")
}

func (t *Target) knowsClip(clip string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.knownMedia) == 0 {
		// list not fetched yet; let the renderer decide
		return true
	}
	_, ok := t.knownMedia[clip]
	return ok
}

// Play prepares the payload on the background layer, clears the foreground
// and swaps, in that exact order, so outgoing content is never replaced by an
// empty frame before the incoming content is ready.
func (t *Target) Play(payload model.RenderPayload) {
	t.enqueue("play", func(ctx context.Context) {
		ch := t.settings.Channel
		bg, fg := t.settings.Layers.Background, t.settings.Layers.Foreground

		switch payload.Kind {
		case model.PayloadTemplate:
			if err := t.conn.AddTemplate(ctx, ch, bg, payload.TemplateName, payload.Data, true); err != nil {
				log.Warn().Err(err).Str("target", t.settings.Name).Msg("[renderer] template load failed")
				return
			}
		case model.PayloadMedia:
			source := payload.RawURL
			if source == "" {
				if !t.knowsClip(payload.Clip) {
					log.Warn().Str("target", t.settings.Name).Str("clip", payload.Clip).Msg("[renderer] unknown clip, skipping")
					return
				}
				source = payload.Clip
			}
			if err := t.conn.PlayMedia(ctx, ch, bg, source, "MIX 25"); err != nil {
				log.Warn().Err(err).Str("target", t.settings.Name).Msg("[renderer] media play failed")
				return
			}
		case model.PayloadCommand:
			t.sendRaw(ctx, payload.Commands)
			return
		default:
			log.Warn().Str("target", t.settings.Name).Str("kind", string(payload.Kind)).Msg("[renderer] unsupported payload kind, skipping")
			return
		}

		if err := t.conn.Clear(ctx, ch, fg); err != nil {
			log.Warn().Err(err).Str("target", t.settings.Name).Msg("[renderer] foreground clear failed")
			return
		}
		if err := t.conn.Swap(ctx, ch, bg, fg); err != nil {
			log.Warn().Err(err).Str("target", t.settings.Name).Msg("[renderer] layer swap failed")
		}
	})
}

// UpdateTemplate refreshes the data of the foreground template in place.
func (t *Target) UpdateTemplate(data map[string]any) {
	t.enqueue("update", func(ctx context.Context) {
		if err := t.conn.UpdateTemplate(ctx, t.settings.Channel, t.settings.Layers.Foreground, data); err != nil {
			log.Warn().Err(err).Str("target", t.settings.Name).Msg("[renderer] template update failed")
		}
	})
}

// SelectSlide jumps the already-loaded foreground template to a slide,
// avoiding the visible reload a full play would cause.
func (t *Target) SelectSlide(slide int) {
	t.enqueue("select-slide", func(ctx context.Context) {
		method := fmt.Sprintf("jump(%d)", slide)
		if err := t.conn.Invoke(ctx, t.settings.Channel, t.settings.Layers.Foreground, method); err != nil {
			log.Warn().Err(err).Str("target", t.settings.Name).Int("slide", slide).Msg("[renderer] slide jump failed")
		}
	})
}

// SetVisibility clears the background first so a hide runs the renderer's
// built-in hide animation instead of a hard cut, then plays or stops the
// foreground template.
func (t *Target) SetVisibility(visible bool) {
	t.enqueue("visibility", func(ctx context.Context) {
		ch := t.settings.Channel
		if err := t.conn.Clear(ctx, ch, t.settings.Layers.Background); err != nil {
			log.Warn().Err(err).Str("target", t.settings.Name).Msg("[renderer] background clear failed")
		}
		var err error
		if visible {
			err = t.conn.Play(ctx, ch, t.settings.Layers.Foreground)
		} else {
			err = t.conn.Stop(ctx, ch, t.settings.Layers.Foreground)
		}
		if err != nil {
			log.Warn().Err(err).Str("target", t.settings.Name).Bool("visible", visible).Msg("[renderer] visibility change failed")
		}
	})
}

// Clear empties both layers.
func (t *Target) Clear() {
	t.enqueue("clear", func(ctx context.Context) {
		ch := t.settings.Channel
		if err := t.conn.Clear(ctx, ch, t.settings.Layers.Foreground); err != nil {
			log.Warn().Err(err).Str("target", t.settings.Name).Msg("[renderer] foreground clear failed")
		}
		if err := t.conn.Clear(ctx, ch, t.settings.Layers.Background); err != nil {
			log.Warn().Err(err).Str("target", t.settings.Name).Msg("[renderer] background clear failed")
		}
	})
}

// SendRaw issues protocol lines verbatim, in order.
func (t *Target) SendRaw(commands []string) {
	t.enqueue("raw", func(ctx context.Context) {
		t.sendRaw(ctx, commands)
	})
}

func (t *Target) sendRaw(ctx context.Context, commands []string) {
	for _, cmd := range commands {
		if err := t.conn.Raw(ctx, cmd); err != nil {
			log.Warn().Err(err).Str("target", t.settings.Name).Str("command", cmd).Msg("[renderer] raw command failed")
		}
	}
}

// Connected reports the live connection state; a degraded stub is never
// connected.
func (t *Target) Connected() bool {
	if t.degraded {
		return false
	}
	return t.conn.Connected()
}

func (t *Target) close() {
	if t.degraded {
		return
	}
	close(t.done)
	t.conn.Close()
}
