package item

import (
	"fmt"

	"github.com/versecast/versecast/internal/model"
)

// media plays a renderer clip or a raw URL. Frame extraction happens in an
// external collaborator; the slide count grows as frames are reported and
// the item stays non-displayable until the first one arrives.
type media struct {
	slideState
	props model.ItemProps
}

func newMedia(props model.ItemProps) *media {
	m := &media{props: props}
	m.slideState = newSlideState(0)
	m.props.Displayable = false
	m.syncProps()
	return m
}

// AddSlide is called by the rasterizer collaborator once per extracted frame.
func (m *media) AddSlide() {
	m.grow()
	m.props.Displayable = true
	m.syncProps()
}

func (m *media) syncProps() {
	m.props.SlideCount = m.count
	m.props.ActiveSlide = m.active
}

func (m *media) Props() model.ItemProps {
	m.syncProps()
	return m.props
}

func (m *media) SetActiveSlide(slide int) (int, error) {
	resolved, err := m.slideState.SetActiveSlide(slide)
	m.syncProps()
	return resolved, err
}

func (m *media) NavigateSlide(steps int) int {
	overflow := m.slideState.NavigateSlide(steps)
	m.syncProps()
	return overflow
}

func (m *media) CreateRenderPayload() (model.RenderPayload, error) {
	if m.props.Media == nil {
		return model.RenderPayload{}, fmt.Errorf("media %q has no source", m.props.Caption)
	}
	return model.RenderPayload{
		Kind:   model.PayloadMedia,
		Clip:   m.props.Media.Clip,
		RawURL: m.props.Media.RawURL,
	}, nil
}

func (m *media) Stop() {}

// pdf renders one extracted page image per slide. Pages are rasterized by an
// external collaborator and reported one at a time; until the first page
// arrives the item is non-displayable.
type pdf struct {
	slideState
	props model.ItemProps
}

func newPDF(props model.ItemProps) *pdf {
	p := &pdf{props: props}
	p.slideState = newSlideState(0)
	p.props.Displayable = false
	p.syncProps()
	return p
}

// AddSlide is called by the rasterizer collaborator once per rendered page.
func (p *pdf) AddSlide() {
	p.grow()
	p.props.Displayable = true
	p.syncProps()
}

func (p *pdf) syncProps() {
	p.props.SlideCount = p.count
	p.props.ActiveSlide = p.active
}

func (p *pdf) Props() model.ItemProps {
	p.syncProps()
	return p.props
}

func (p *pdf) SetActiveSlide(slide int) (int, error) {
	resolved, err := p.slideState.SetActiveSlide(slide)
	p.syncProps()
	return resolved, err
}

func (p *pdf) NavigateSlide(steps int) int {
	overflow := p.slideState.NavigateSlide(steps)
	p.syncProps()
	return overflow
}

// CreateRenderPayload names the page clip for the active slide; page clips
// follow the "<file>_<page>" convention the rasterizer uploads under.
func (p *pdf) CreateRenderPayload() (model.RenderPayload, error) {
	if p.props.PDF == nil {
		return model.RenderPayload{}, fmt.Errorf("pdf %q has no source", p.props.Caption)
	}
	if p.active < 0 {
		return model.RenderPayload{}, fmt.Errorf("pdf %q has no rendered pages yet", p.props.Caption)
	}
	return model.RenderPayload{
		Kind: model.PayloadMedia,
		Clip: fmt.Sprintf("%s_%d", p.props.PDF.File, p.active),
	}, nil
}

func (p *pdf) Stop() {}
