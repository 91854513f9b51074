package renderer

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/versecast/versecast/internal/item"
	"github.com/versecast/versecast/internal/model"
)

// Pool owns one entry per configured renderer plus the shared visibility
// flag. Every logical operation fans out to all targets concurrently and
// independently: each target executes on its own worker, so one target's
// failure or lag never delays the others.
type Pool struct {
	targets []*Target

	mu       sync.Mutex
	visible  bool
	provider StateProvider
}

// NewPool builds a target per settings entry. A target whose settings are
// invalid degrades to a permanently-disconnected stub instead of failing the
// pool.
func NewPool(settings []Settings) *Pool {
	p := &Pool{visible: true}
	provider := func() State { return p.currentState() }

	for _, s := range settings {
		if err := s.validate(); err != nil {
			log.Error().Err(err).Str("target", s.Name).Msg("[renderer] bad settings, target degraded")
			p.targets = append(p.targets, newTarget(s, nil, provider))
			continue
		}
		p.targets = append(p.targets, newTarget(s, Dial(s.Host, s.Port), provider))
	}
	return p
}

// SetStateProvider installs the callback a reconnecting target replays the
// then-current state from.
func (p *Pool) SetStateProvider(provider StateProvider) {
	p.mu.Lock()
	p.provider = provider
	p.mu.Unlock()
}

func (p *Pool) currentState() State {
	p.mu.Lock()
	provider := p.provider
	visible := p.visible
	p.mu.Unlock()
	if provider == nil {
		return State{Visible: visible}
	}
	state := provider()
	state.Visible = visible
	return state
}

// Play pushes the item's payload to every target through the double-buffer
// protocol. A payload the item cannot produce is logged and skipped.
func (p *Pool) Play(it item.Item) {
	payload, err := it.CreateRenderPayload()
	if err != nil {
		log.Warn().Err(err).Msg("[renderer] no payload for active item, skipping play")
		return
	}
	for _, t := range p.targets {
		t.Play(payload)
	}
}

// UpdateTemplate refreshes the active item's data in place; items without a
// template payload fall back to a full play.
func (p *Pool) UpdateTemplate(it item.Item) {
	payload, err := it.CreateRenderPayload()
	if err != nil {
		log.Warn().Err(err).Msg("[renderer] no payload for updated item, skipping update")
		return
	}
	for _, t := range p.targets {
		if payload.Kind == model.PayloadTemplate {
			t.UpdateTemplate(payload.Data)
		} else {
			t.Play(payload)
		}
	}
}

// SelectSlide jumps every target's foreground template to the slide.
func (p *Pool) SelectSlide(slide int) {
	for _, t := range p.targets {
		t.SelectSlide(slide)
	}
}

// SetVisibility stores and fans out the shared visibility flag.
func (p *Pool) SetVisibility(visible bool) {
	p.mu.Lock()
	p.visible = visible
	p.mu.Unlock()
	for _, t := range p.targets {
		t.SetVisibility(visible)
	}
}

// Visible reports the shared visibility flag.
func (p *Pool) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// ClearAll empties both layers on every target.
func (p *Pool) ClearAll() {
	for _, t := range p.targets {
		t.Clear()
	}
}

// SendRaw fans raw control commands out to every target.
func (p *Pool) SendRaw(commands []string) {
	for _, t := range p.targets {
		t.SendRaw(commands)
	}
}

// TargetStatus is the per-target line of the renderer status endpoint.
type TargetStatus struct {
	Name      string `json:"name"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Channel   int    `json:"channel"`
	Connected bool   `json:"connected"`
	Degraded  bool   `json:"degraded"`
}

// Statuses lists every configured target with its connectivity state.
func (p *Pool) Statuses() []TargetStatus {
	statuses := make([]TargetStatus, len(p.targets))
	for i, t := range p.targets {
		statuses[i] = TargetStatus{
			Name:      t.settings.Name,
			Host:      t.settings.Host,
			Port:      t.settings.Port,
			Channel:   t.settings.Channel,
			Connected: t.Connected(),
			Degraded:  t.degraded,
		}
	}
	return statuses
}

// Shutdown stops every target's worker and closes its connection.
func (p *Pool) Shutdown() {
	for _, t := range p.targets {
		t.close()
	}
}
