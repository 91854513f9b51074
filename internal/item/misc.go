package item

import (
	"fmt"

	"github.com/versecast/versecast/internal/model"
)

// template drives a renderer template with fixed data. No navigable slides;
// slide navigation passes straight through to item navigation.
type template struct {
	props model.ItemProps
}

func newTemplate(props model.ItemProps) *template {
	t := &template{props: props}
	t.props.Displayable = props.Template != nil
	t.props.SlideCount = 0
	t.props.ActiveSlide = -1
	return t
}

func (t *template) Props() model.ItemProps          { return t.props }
func (t *template) ActiveSlide() int                { return -1 }
func (t *template) SetActiveSlide(int) (int, error) { return -1, nil }
func (t *template) NavigateSlide(steps int) int     { return steps }

func (t *template) CreateRenderPayload() (model.RenderPayload, error) {
	if t.props.Template == nil {
		return model.RenderPayload{}, fmt.Errorf("template %q has no configuration", t.props.Caption)
	}
	return model.RenderPayload{
		Kind:         model.PayloadTemplate,
		TemplateName: t.props.Template.Name,
		Data:         t.props.Template.Data,
	}, nil
}

func (t *template) Stop() {}

// comment is a playlist annotation, never reachable by navigation.
type comment struct {
	props model.ItemProps
}

func newComment(props model.ItemProps) *comment {
	c := &comment{props: props}
	c.props.Displayable = false
	c.props.SlideCount = 0
	c.props.ActiveSlide = -1
	return c
}

func (c *comment) Props() model.ItemProps          { return c.props }
func (c *comment) ActiveSlide() int                { return -1 }
func (c *comment) SetActiveSlide(int) (int, error) { return -1, nil }
func (c *comment) NavigateSlide(steps int) int     { return steps }

func (c *comment) CreateRenderPayload() (model.RenderPayload, error) {
	return model.RenderPayload{}, fmt.Errorf("comment %q produces no render payload", c.props.Caption)
}

func (c *comment) Stop() {}

// placeholder stands in for an item the factory could not build. The original
// props stay visible to clients, but the item can never be shown.
type placeholder struct {
	props model.ItemProps
}

// NewPlaceholder wraps props whose type the factory does not know into a
// non-displayable stub.
func NewPlaceholder(props model.ItemProps) Item {
	p := &placeholder{props: props}
	p.props.Displayable = false
	p.props.SlideCount = 0
	p.props.ActiveSlide = -1
	return p
}

func (p *placeholder) Props() model.ItemProps          { return p.props }
func (p *placeholder) ActiveSlide() int                { return -1 }
func (p *placeholder) SetActiveSlide(int) (int, error) { return -1, nil }
func (p *placeholder) NavigateSlide(steps int) int     { return steps }

func (p *placeholder) CreateRenderPayload() (model.RenderPayload, error) {
	return model.RenderPayload{}, fmt.Errorf("item %q of type %q could not be built", p.props.Caption, p.props.Type)
}

func (p *placeholder) Stop() {}

// command issues raw renderer control commands when played and, via Stop,
// the configured deactivate commands when the item leaves the active slot.
type command struct {
	props model.ItemProps
	sink  CommandSink
}

func newCommand(props model.ItemProps, sink CommandSink) *command {
	c := &command{props: props, sink: sink}
	c.props.Displayable = props.Command != nil && len(props.Command.Activate) > 0
	c.props.SlideCount = 0
	c.props.ActiveSlide = -1
	return c
}

func (c *command) Props() model.ItemProps          { return c.props }
func (c *command) ActiveSlide() int                { return -1 }
func (c *command) SetActiveSlide(int) (int, error) { return -1, nil }
func (c *command) NavigateSlide(steps int) int     { return steps }

func (c *command) CreateRenderPayload() (model.RenderPayload, error) {
	if c.props.Command == nil {
		return model.RenderPayload{}, fmt.Errorf("command %q has no configuration", c.props.Caption)
	}
	return model.RenderPayload{
		Kind:     model.PayloadCommand,
		Commands: c.props.Command.Activate,
	}, nil
}

// Stop releases whatever the activate commands claimed on the renderers.
func (c *command) Stop() {
	if c.props.Command == nil || len(c.props.Command.Deactivate) == 0 || c.sink == nil {
		return
	}
	c.sink.SendRaw(c.props.Command.Deactivate)
}
