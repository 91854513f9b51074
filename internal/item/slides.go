package item

import "github.com/versecast/versecast/internal/model"

// slideState implements the shared slide-pointer rules: negative indices
// count from the end, out-of-range is rejected, in-range steps move the
// pointer, out-of-range steps are returned unchanged as an overflow signal.
type slideState struct {
	count  int
	active int
}

func newSlideState(count int) slideState {
	active := -1
	if count > 0 {
		active = 0
	}
	return slideState{count: count, active: active}
}

func (s *slideState) ActiveSlide() int { return s.active }

func (s *slideState) SetActiveSlide(slide int) (int, error) {
	if s.count == 0 {
		s.active = -1
		return -1, nil
	}
	resolved, err := model.NormalizeIndex(slide, s.count)
	if err != nil {
		return s.active, err
	}
	s.active = resolved
	return resolved, nil
}

func (s *slideState) NavigateSlide(steps int) int {
	next := s.active + steps
	if next < 0 || next >= s.count {
		return steps
	}
	s.active = next
	return 0
}

// grow raises the slide count by one, keeping the pointer valid. Used by the
// media/PDF variants as the rasterizer reports pages.
func (s *slideState) grow() {
	s.count++
	if s.active < 0 {
		s.active = 0
	}
}
