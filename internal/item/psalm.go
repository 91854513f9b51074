package item

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/versecast/versecast/internal/model"
)

// psalm renders a library psalm; slide count follows the parsed content.
type psalm struct {
	slideState
	props model.ItemProps
	data  *model.PsalmData
}

func newPsalm(props model.ItemProps, lib Library) *psalm {
	p := &psalm{props: props}
	if props.Psalm == nil || lib == nil {
		p.props.Displayable = false
		p.slideState = newSlideState(0)
		p.syncProps()
		return p
	}

	data, err := lib.Psalm(props.Psalm.File)
	if err != nil {
		log.Warn().Err(err).Str("file", props.Psalm.File).Msg("[item] psalm resolve failed, marking non-displayable")
		p.props.Displayable = false
		p.slideState = newSlideState(0)
		p.syncProps()
		return p
	}
	p.data = data
	p.slideState = newSlideState(len(data.Slides))
	p.props.Displayable = len(data.Slides) > 0
	p.syncProps()
	return p
}

func (p *psalm) syncProps() {
	p.props.SlideCount = p.count
	p.props.ActiveSlide = p.active
}

func (p *psalm) Props() model.ItemProps {
	p.syncProps()
	return p.props
}

func (p *psalm) SetActiveSlide(slide int) (int, error) {
	resolved, err := p.slideState.SetActiveSlide(slide)
	p.syncProps()
	return resolved, err
}

func (p *psalm) NavigateSlide(steps int) int {
	overflow := p.slideState.NavigateSlide(steps)
	p.syncProps()
	return overflow
}

func (p *psalm) CreateRenderPayload() (model.RenderPayload, error) {
	if p.data == nil {
		return model.RenderPayload{}, fmt.Errorf("psalm %q has no resolved data", p.props.Caption)
	}
	slides := make([][]string, 0, len(p.data.Slides))
	for _, sl := range p.data.Slides {
		slides = append(slides, sl.Lines)
	}
	return model.RenderPayload{
		Kind:         model.PayloadTemplate,
		TemplateName: "psalm",
		Data: map[string]any{
			"caption":      p.data.Caption,
			"slides":       slides,
			"active_slide": p.active,
		},
	}, nil
}

func (p *psalm) Stop() {}
