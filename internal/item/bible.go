package item

import "github.com/versecast/versecast/internal/model"

// bible is a single "citation" pseudo-slide: the passage text plus a citation
// line derived from the configured citation style.
type bible struct {
	slideState
	props    model.ItemProps
	citation string
}

func newBible(props model.ItemProps, style *CitationStyle) *bible {
	b := &bible{props: props}
	if props.Bible == nil {
		b.props.Displayable = false
		b.slideState = newSlideState(0)
		b.syncProps()
		return b
	}
	if style == nil {
		style = &CitationStyle{SepChapterVerse: ",", RangeVerse: "-", SepVerse: ".", SepChapter: "; "}
	}
	b.citation = style.Format(props.Bible.Book, props.Bible.Verses)
	b.slideState = newSlideState(1)
	b.props.Displayable = true
	b.syncProps()
	return b
}

func (b *bible) syncProps() {
	b.props.SlideCount = b.count
	b.props.ActiveSlide = b.active
}

func (b *bible) Props() model.ItemProps {
	b.syncProps()
	return b.props
}

func (b *bible) SetActiveSlide(slide int) (int, error) {
	resolved, err := b.slideState.SetActiveSlide(slide)
	b.syncProps()
	return resolved, err
}

func (b *bible) NavigateSlide(steps int) int {
	overflow := b.slideState.NavigateSlide(steps)
	b.syncProps()
	return overflow
}

func (b *bible) CreateRenderPayload() (model.RenderPayload, error) {
	return model.RenderPayload{
		Kind:         model.PayloadTemplate,
		TemplateName: "bible",
		Data: map[string]any{
			"citation": b.citation,
			"text":     b.props.Bible.Text,
		},
	}, nil
}

func (b *bible) Stop() {}
