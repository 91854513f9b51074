package playlist

import (
	"github.com/rs/zerolog/log"

	"github.com/versecast/versecast/internal/item"
	"github.com/versecast/versecast/internal/model"
)

// Renderer receives the render pushes the playlist issues as side effects of
// activation and navigation. The render target pool implements it; pushes are
// fire-and-forget and never fail a playlist operation.
type Renderer interface {
	Play(it item.Item)
	UpdateTemplate(it item.Item)
	SelectSlide(slide int)
	ClearAll()
}

// Playlist owns the ordered item collection and the single active-item/
// active-slide pointer. Indices are the only item identity; no stable IDs
// survive a move or delete. All methods assume the caller serializes access.
type Playlist struct {
	items    []item.Item
	active   int // -1 = none
	caption  string
	unsaved  bool
	renderer Renderer
	deps     item.Deps
}

// New returns an empty playlist pushing to the given renderer and building
// items with the given collaborators.
func New(renderer Renderer, deps item.Deps) *Playlist {
	return &Playlist{active: -1, renderer: renderer, deps: deps}
}

func (p *Playlist) Len() int             { return len(p.items) }
func (p *Playlist) Caption() string      { return p.caption }
func (p *Playlist) UnsavedChanges() bool { return p.unsaved }

// Item returns the item at position, normalized via the shared index rule.
func (p *Playlist) Item(position int) (item.Item, error) {
	idx, err := model.NormalizeIndex(position, len(p.items))
	if err != nil {
		return nil, err
	}
	return p.items[idx], nil
}

// ActiveItem returns the active item, or nil when nothing is active.
func (p *Playlist) ActiveItem() item.Item {
	if p.active < 0 {
		return nil
	}
	return p.items[p.active]
}

// ActiveItemSlide mirrors the active pointer and the active item's slide.
func (p *Playlist) ActiveItemSlide() model.ActiveItemSlide {
	if p.active < 0 {
		return model.ActiveItemSlide{}
	}
	itemIdx := p.active
	slide := p.items[p.active].ActiveSlide()
	return model.ActiveItemSlide{Item: &itemIdx, Slide: &slide}
}

// Replace swaps in a freshly loaded playlist wholesale. Every previous item
// is told to stop first and the render targets are cleared. An entry the
// factory cannot build degrades to a non-displayable placeholder; one bad
// item never blocks the rest of the load.
func (p *Playlist) Replace(caption string, props []model.ItemProps) error {
	for _, it := range p.items {
		it.Stop()
	}
	items := make([]item.Item, 0, len(props))
	for _, pr := range props {
		it, err := item.New(pr, p.deps)
		if err != nil {
			log.Warn().Err(err).Str("caption", pr.Caption).Msg("[playlist] item degraded to placeholder")
			it = item.NewPlaceholder(pr)
		}
		items = append(items, it)
	}
	p.items = items
	p.active = -1
	p.caption = caption
	p.unsaved = false
	p.renderer.ClearAll()
	return nil
}

// AddItem constructs the variant matching props and inserts it at index
// (nil = append). Inserting at or before the active item shifts the active
// pointer so the live item stays live. With setActive the new item is
// additionally activated at its first slide.
func (p *Playlist) AddItem(props model.ItemProps, index *int, setActive bool) (int, error) {
	insert := len(p.items)
	if index != nil {
		// length+1 admits the one-past-end insertion point
		idx, err := model.NormalizeIndex(*index, len(p.items)+1)
		if err != nil {
			return 0, err
		}
		insert = idx
	}

	it, err := item.New(props, p.deps)
	if err != nil {
		return 0, err
	}
	// activation is validated up front so a rejected request leaves the
	// collection untouched
	if setActive && !it.Props().Displayable {
		return 0, ErrNotDisplayable
	}

	p.items = append(p.items, nil)
	copy(p.items[insert+1:], p.items[insert:])
	p.items[insert] = it

	if p.active >= 0 && insert <= p.active {
		p.active++
	}
	p.unsaved = true

	if setActive {
		if err := p.SetActiveItem(insert, 0); err != nil {
			return insert, err
		}
	}
	return insert, nil
}

// UpdateItem replaces the item's mutable fields in place. Updates that change
// the item type are rejected without mutation. Updating the active item pushes
// a template update, not a full reload.
func (p *Playlist) UpdateItem(position int, props model.ItemProps) error {
	idx, err := model.NormalizeIndex(position, len(p.items))
	if err != nil {
		return err
	}
	existing := p.items[idx]
	if existing.Props().Type != props.Type {
		return ErrTypeMismatch
	}

	replacement, err := item.New(props, p.deps)
	if err != nil {
		return err
	}
	// growable variants keep the pages the rasterizer already reported
	if growable, ok := replacement.(interface{ AddSlide() }); ok {
		for i := 0; i < existing.Props().SlideCount; i++ {
			growable.AddSlide()
		}
	}
	// preserve the slide position across the rebuild, clamped to the new count
	if prev := existing.ActiveSlide(); prev >= 0 && replacement.Props().SlideCount > 0 {
		slide := prev
		if max := replacement.Props().SlideCount - 1; slide > max {
			slide = max
		}
		replacement.SetActiveSlide(slide)
	}
	p.items[idx] = replacement
	p.unsaved = true

	if idx == p.active {
		p.renderer.UpdateTemplate(replacement)
	}
	return nil
}

// DeleteItem removes the item at position, telling it to stop. Deleting the
// active item or one before it decrements the active pointer (wrapped to
// none at -1); when nothing remains active the render targets are cleared.
// The return value reports whether the active pointer changed.
func (p *Playlist) DeleteItem(position int) (bool, error) {
	idx, err := model.NormalizeIndex(position, len(p.items))
	if err != nil {
		return false, err
	}
	removed := p.items[idx]
	p.items = append(p.items[:idx], p.items[idx+1:]...)
	removed.Stop()
	p.unsaved = true

	activeChanged := false
	if p.active >= 0 && idx <= p.active {
		p.active--
		activeChanged = true
		if p.active < 0 {
			p.renderer.ClearAll()
		}
	}
	return activeChanged, nil
}

// MoveItem reorders the collection and returns the full permutation mapping
// old indices to new ones so callers can remap external references. The
// active pointer follows the item it points at.
func (p *Playlist) MoveItem(from, to int) ([]int, error) {
	n := len(p.items)
	fromIdx, err := model.NormalizeIndex(from, n)
	if err != nil {
		return nil, err
	}
	toIdx, err := model.NormalizeIndex(to, n)
	if err != nil {
		return nil, err
	}

	moved := p.items[fromIdx]
	p.items = append(p.items[:fromIdx], p.items[fromIdx+1:]...)
	p.items = append(p.items, nil)
	copy(p.items[toIdx+1:], p.items[toIdx:])
	p.items[toIdx] = moved

	perm := make([]int, n)
	for i := range perm {
		switch {
		case i == fromIdx:
			perm[i] = toIdx
		case i > fromIdx && i <= toIdx:
			perm[i] = i - 1
		case i < fromIdx && i >= toIdx:
			perm[i] = i + 1
		default:
			perm[i] = i
		}
	}

	if p.active >= 0 {
		p.active = perm[p.active]
	}
	p.unsaved = true
	return perm, nil
}

// SetActiveItem activates the item at position with the given slide. A
// non-displayable target is a sentinel failure: no mutation, no render push,
// and the caller must not broadcast a state change.
func (p *Playlist) SetActiveItem(position, slide int) error {
	idx, err := model.NormalizeIndex(position, len(p.items))
	if err != nil {
		return err
	}
	target := p.items[idx]
	if !target.Props().Displayable {
		return ErrNotDisplayable
	}

	if prev := p.ActiveItem(); prev != nil && prev != target {
		prev.Stop()
	}
	p.active = idx
	if _, err := target.SetActiveSlide(slide); err != nil {
		return err
	}
	p.renderer.Play(target)
	return nil
}

// SetActiveSlide delegates to the active item and pushes a slide jump, not a
// full reload.
func (p *Playlist) SetActiveSlide(slide int) (int, error) {
	active := p.ActiveItem()
	if active == nil {
		return 0, ErrNoActiveItem
	}
	resolved, err := active.SetActiveSlide(slide)
	if err != nil {
		return resolved, err
	}
	p.renderer.SelectSlide(resolved)
	return resolved, nil
}

// NavigateItem steps through the collection with wraparound, skipping
// non-displayable items. With nothing active the list is entered at the
// matching end, and the entry index itself is a candidate. A full cycle
// without a hit means there is nothing to navigate to; state is left
// unchanged.
func (p *Playlist) NavigateItem(steps, slideHint int) error {
	n := len(p.items)
	if n == 0 {
		return ErrNoDisplayable
	}

	candidate := p.active
	if candidate < 0 {
		entry := 0
		if steps < 0 {
			entry = n - 1
		}
		if p.items[entry].Props().Displayable {
			return p.SetActiveItem(entry, slideHint)
		}
		candidate = entry
	}

	start := candidate
	for {
		candidate = ((candidate+steps)%n + n) % n
		if candidate == start {
			return ErrNoDisplayable
		}
		if p.items[candidate].Props().Displayable {
			return p.SetActiveItem(candidate, slideHint)
		}
	}
}

// NavigateSlide moves the active slide by steps; on overflow it advances to
// the next displayable item, entering it at its first slide going forward or
// its last slide going backward. The return value reports whether the item
// changed.
func (p *Playlist) NavigateSlide(steps int) (bool, error) {
	active := p.ActiveItem()
	if active == nil {
		return false, ErrNoActiveItem
	}
	overflow := active.NavigateSlide(steps)
	if overflow == 0 {
		p.renderer.SelectSlide(active.ActiveSlide())
		return false, nil
	}

	slideHint := 0
	if steps < 0 {
		slideHint = -1
	}
	if err := p.NavigateItem(steps, slideHint); err != nil {
		return false, err
	}
	return true, nil
}

// GrowItem reports one rasterized page/frame for the media or PDF item at
// position. Items without asynchronous slide growth are rejected.
func (p *Playlist) GrowItem(position int) error {
	idx, err := model.NormalizeIndex(position, len(p.items))
	if err != nil {
		return err
	}
	growable, ok := p.items[idx].(interface{ AddSlide() })
	if !ok {
		return ErrTypeMismatch
	}
	growable.AddSlide()
	return nil
}

// CreateClientSnapshot produces the canonical client-facing state, minus the
// visibility flag owned by the render target pool.
func (p *Playlist) CreateClientSnapshot() model.PlaylistSnapshot {
	items := make([]model.ItemSummary, len(p.items))
	for i, it := range p.items {
		props := it.Props()
		items[i] = model.ItemSummary{
			Caption:     props.Caption,
			Type:        props.Type,
			Color:       props.Color,
			Displayable: props.Displayable,
			SlideCount:  props.SlideCount,
		}
	}
	return model.PlaylistSnapshot{
		Caption:        p.caption,
		UnsavedChanges: p.unsaved,
		Items:          items,
		Active:         p.ActiveItemSlide(),
	}
}

// MarkSaved clears the unsaved-changes flag after the session file is written.
func (p *Playlist) MarkSaved(caption string) {
	if caption != "" {
		p.caption = caption
	}
	p.unsaved = false
}
