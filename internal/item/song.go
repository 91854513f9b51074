package item

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/versecast/versecast/internal/model"
)

// song renders a library song: one title slide followed by the slides of
// every part named in the verse order. Verse-order entries the song file
// does not define are skipped, not an error.
type song struct {
	slideState
	props      model.ItemProps
	data       *model.SongData
	verseOrder []string // resolved: props override or file default, unknowns dropped
	languages  []int
}

func newSong(props model.ItemProps, lib Library) *song {
	s := &song{props: props}
	if props.Song == nil || lib == nil {
		s.props.Displayable = false
		s.slideState = newSlideState(0)
		s.syncProps()
		return s
	}

	data, err := lib.Song(props.Song.File)
	if err != nil {
		log.Warn().Err(err).Str("file", props.Song.File).Msg("[item] song resolve failed, marking non-displayable")
		s.props.Displayable = false
		s.slideState = newSlideState(0)
		s.syncProps()
		return s
	}
	s.data = data

	order := props.Song.VerseOrder
	if len(order) == 0 {
		order = data.VerseOrder
	}
	count := 1 // title slide
	for _, part := range order {
		p, ok := data.Parts[part]
		if !ok {
			continue
		}
		s.verseOrder = append(s.verseOrder, part)
		count += len(p.Slides)
	}

	s.languages = props.Song.Languages
	if len(s.languages) == 0 {
		s.languages = data.Languages
	}

	s.slideState = newSlideState(count)
	s.props.Displayable = true
	s.syncProps()
	return s
}

func (s *song) syncProps() {
	s.props.SlideCount = s.count
	s.props.ActiveSlide = s.active
}

func (s *song) Props() model.ItemProps {
	s.syncProps()
	return s.props
}

func (s *song) SetActiveSlide(slide int) (int, error) {
	resolved, err := s.slideState.SetActiveSlide(slide)
	s.syncProps()
	return resolved, err
}

func (s *song) NavigateSlide(steps int) int {
	overflow := s.slideState.NavigateSlide(steps)
	s.syncProps()
	return overflow
}

func (s *song) CreateRenderPayload() (model.RenderPayload, error) {
	if s.data == nil {
		return model.RenderPayload{}, fmt.Errorf("song %q has no resolved data", s.props.Caption)
	}

	parts := make([]map[string]any, 0, len(s.verseOrder))
	for _, name := range s.verseOrder {
		part := s.data.Parts[name]
		slides := make([][][]string, 0, len(part.Slides))
		for _, sl := range part.Slides {
			slides = append(slides, sl.Lines)
		}
		parts = append(parts, map[string]any{
			"part":   name,
			"slides": slides,
		})
	}

	return model.RenderPayload{
		Kind:         model.PayloadTemplate,
		TemplateName: "song",
		Data: map[string]any{
			"title":        s.data.Title,
			"parts":        parts,
			"active_slide": s.active,
			"languages":    s.languages,
		},
	}, nil
}

func (s *song) Stop() {}
