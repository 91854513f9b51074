// Package engine processes control-client commands sequentially: a command is
// fully applied to the playlist state machine before its response is
// produced, while render pushes run in the background and are never awaited.
package engine

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/versecast/versecast/internal/item"
	"github.com/versecast/versecast/internal/model"
	"github.com/versecast/versecast/internal/playlist"
	"github.com/versecast/versecast/internal/redis"
	"github.com/versecast/versecast/internal/renderer"
)

// Broadcaster fans the client snapshot out to every connected control client.
type Broadcaster interface {
	Notify(snapshot any)
	NotifyClear()
}

// StagePublisher pushes the active pointer to stage-monitor devices.
type StagePublisher interface {
	Publish(active model.ActiveItemSlide, visible bool)
}

// Engine owns the playlist and serializes every command against it. Shared
// mutable state is touched only under the command lock; render targets and
// broadcast sinks run behind it, fire and forget.
type Engine struct {
	mu     sync.Mutex
	pl     *playlist.Playlist
	pool   *renderer.Pool
	hub    Broadcaster
	stage  StagePublisher
	cache  *redis.Cache
	loaded bool
}

func New(pool *renderer.Pool, hub Broadcaster, stage StagePublisher, cache *redis.Cache, deps item.Deps) *Engine {
	e := &Engine{
		pl:    playlist.New(pool, deps),
		pool:  pool,
		hub:   hub,
		stage: stage,
		cache: cache,
	}
	pool.SetStateProvider(e.renderState)
	return e
}

// renderState is the reconnect-resync callback: the then-current active
// payload, queried at the moment a target comes back.
func (e *Engine) renderState() renderer.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	active := e.pl.ActiveItem()
	if active == nil {
		return renderer.State{}
	}
	payload, err := active.CreateRenderPayload()
	if err != nil {
		log.Warn().Err(err).Msg("[engine] active item has no payload for resync")
		return renderer.State{}
	}
	return renderer.State{Payload: payload, Active: true}
}

// snapshotLocked builds the canonical snapshot; callers hold the lock.
func (e *Engine) snapshotLocked() model.PlaylistSnapshot {
	snapshot := e.pl.CreateClientSnapshot()
	snapshot.Visible = e.pool.Visible()
	return snapshot
}

// broadcast publishes a snapshot taken under the lock. The fan-out itself
// runs in the background; a slow sink never delays the command response.
func (e *Engine) broadcast(snapshot model.PlaylistSnapshot) {
	go func() {
		e.hub.Notify(snapshot)
		e.stage.Publish(snapshot.Active, snapshot.Visible)
		e.cache.StoreSnapshot(context.Background(), snapshot)
	}()
}

// ClientSnapshot returns the one-time full state for a newly connected
// client, or ok=false when no playlist is loaded.
func (e *Engine) ClientSnapshot() (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return nil, false
	}
	return e.snapshotLocked(), true
}

// Snapshot returns the current state unconditionally.
func (e *Engine) Snapshot() model.PlaylistSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// ActiveItemSlide mirrors the playlist's active pointer.
func (e *Engine) ActiveItemSlide() model.ActiveItemSlide {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pl.ActiveItemSlide()
}

// LoadPlaylist replaces the session wholesale; previous items are stopped
// and every render target is cleared.
func (e *Engine) LoadPlaylist(caption string, items []model.ItemProps) error {
	e.mu.Lock()
	if err := e.pl.Replace(caption, items); err != nil {
		e.mu.Unlock()
		return err
	}
	e.loaded = true
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	e.cache.Invalidate(context.Background())
	e.broadcast(snapshot)
	log.Info().Str("caption", caption).Int("items", len(items)).Msg("[engine] playlist loaded")
	return nil
}

// ClosePlaylist drops the session.
func (e *Engine) ClosePlaylist() error {
	e.mu.Lock()
	if err := e.pl.Replace("", nil); err != nil {
		e.mu.Unlock()
		return err
	}
	e.loaded = false
	e.mu.Unlock()

	e.cache.Invalidate(context.Background())
	go e.hub.NotifyClear()
	return nil
}

func (e *Engine) AddItem(props model.ItemProps, index *int, setActive bool) (int, error) {
	e.mu.Lock()
	position, err := e.pl.AddItem(props, index, setActive)
	if err != nil {
		e.mu.Unlock()
		return 0, err
	}
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	e.broadcast(snapshot)
	return position, nil
}

func (e *Engine) UpdateItem(position int, props model.ItemProps) error {
	e.mu.Lock()
	if err := e.pl.UpdateItem(position, props); err != nil {
		e.mu.Unlock()
		return err
	}
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	e.broadcast(snapshot)
	return nil
}

func (e *Engine) DeleteItem(position int) error {
	e.mu.Lock()
	if _, err := e.pl.DeleteItem(position); err != nil {
		e.mu.Unlock()
		return err
	}
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	e.broadcast(snapshot)
	return nil
}

// MoveItem reorders the playlist and returns the permutation mapping old
// indices to new ones so callers can remap their references.
func (e *Engine) MoveItem(from, to int) ([]int, error) {
	e.mu.Lock()
	perm, err := e.pl.MoveItem(from, to)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	e.broadcast(snapshot)
	return perm, nil
}

// SetActiveItem activates an item. A failed activation (index error or
// non-displayable target) mutates nothing and broadcasts nothing.
func (e *Engine) SetActiveItem(position, slide int) error {
	e.mu.Lock()
	if err := e.pl.SetActiveItem(position, slide); err != nil {
		e.mu.Unlock()
		return err
	}
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	e.broadcast(snapshot)
	return nil
}

func (e *Engine) SetActiveSlide(slide int) error {
	e.mu.Lock()
	if _, err := e.pl.SetActiveSlide(slide); err != nil {
		e.mu.Unlock()
		return err
	}
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	e.broadcast(snapshot)
	return nil
}

func (e *Engine) NavigateItem(steps int) error {
	e.mu.Lock()
	if err := e.pl.NavigateItem(steps, 0); err != nil {
		e.mu.Unlock()
		return err
	}
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	e.broadcast(snapshot)
	return nil
}

// NavigateSlide moves within the active item, spilling into item navigation
// on overflow. The return value reports whether the item changed.
func (e *Engine) NavigateSlide(steps int) (bool, error) {
	e.mu.Lock()
	itemChanged, err := e.pl.NavigateSlide(steps)
	if err != nil {
		e.mu.Unlock()
		return false, err
	}
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	e.broadcast(snapshot)
	return itemChanged, nil
}

// MarkSaved clears the unsaved-changes flag after the client wrote the
// session file, optionally renaming the session.
func (e *Engine) MarkSaved(caption string) {
	e.mu.Lock()
	e.pl.MarkSaved(caption)
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	e.broadcast(snapshot)
}

// SetVisibility toggles renderer output without touching the playlist.
func (e *Engine) SetVisibility(visible bool) {
	e.mu.Lock()
	e.pool.SetVisibility(visible)
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	e.broadcast(snapshot)
}

// ReportSlide records one rasterized page/frame for a media or PDF item;
// called by the rasterizer collaborator as pages become available.
func (e *Engine) ReportSlide(position int) error {
	e.mu.Lock()
	if err := e.pl.GrowItem(position); err != nil {
		e.mu.Unlock()
		return err
	}
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	e.broadcast(snapshot)
	return nil
}

// RendererStatuses lists every configured target with connectivity state.
func (e *Engine) RendererStatuses() []renderer.TargetStatus {
	return e.pool.Statuses()
}

// Shutdown stops background delivery: targets first, then the sinks.
func (e *Engine) Shutdown() {
	e.pool.Shutdown()
}
