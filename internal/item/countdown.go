package item

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/versecast/versecast/internal/model"
)

// countdown is a single slide whose deadline is recomputed every time the
// item becomes active, not once at load.
type countdown struct {
	slideState
	props    model.ItemProps
	deadline time.Time
	now      func() time.Time
}

func newCountdown(props model.ItemProps) *countdown {
	c := &countdown{props: props, now: time.Now}
	c.slideState = newSlideState(1)
	c.props.Displayable = props.Countdown != nil
	if !c.props.Displayable {
		c.slideState = newSlideState(0)
	}
	c.syncProps()
	return c
}

func (c *countdown) syncProps() {
	c.props.SlideCount = c.count
	c.props.ActiveSlide = c.active
}

func (c *countdown) Props() model.ItemProps {
	c.syncProps()
	return c.props
}

// SetActiveSlide recomputes the target instant from the configured mode.
func (c *countdown) SetActiveSlide(slide int) (int, error) {
	resolved, err := c.slideState.SetActiveSlide(slide)
	c.syncProps()
	if err != nil {
		return resolved, err
	}
	if c.props.Countdown == nil {
		return resolved, fmt.Errorf("countdown %q has no configuration", c.props.Caption)
	}

	now := c.now()
	switch c.props.Countdown.Mode {
	case model.CountdownClock:
		c.deadline = time.Time{}
	case model.CountdownStopwatch:
		c.deadline = now
	case model.CountdownEndTime:
		h, m, s, perr := parseClockTime(c.props.Countdown.Time)
		if perr != nil {
			return resolved, perr
		}
		deadline := time.Date(now.Year(), now.Month(), now.Day(), h, m, s, 0, now.Location())
		if !deadline.After(now) {
			deadline = deadline.AddDate(0, 0, 1)
		}
		c.deadline = deadline
	case model.CountdownDuration:
		h, m, s, perr := parseClockTime(c.props.Countdown.Time)
		if perr != nil {
			return resolved, perr
		}
		c.deadline = now.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second)
	default:
		return resolved, fmt.Errorf("unknown countdown mode %q", c.props.Countdown.Mode)
	}
	return resolved, nil
}

func (c *countdown) NavigateSlide(steps int) int {
	overflow := c.slideState.NavigateSlide(steps)
	c.syncProps()
	return overflow
}

func (c *countdown) CreateRenderPayload() (model.RenderPayload, error) {
	if c.props.Countdown == nil {
		return model.RenderPayload{}, fmt.Errorf("countdown %q has no configuration", c.props.Caption)
	}
	data := map[string]any{
		"mode": string(c.props.Countdown.Mode),
	}
	if !c.deadline.IsZero() {
		data["deadline"] = c.deadline.Format(time.RFC3339)
	}
	return model.RenderPayload{
		Kind:         model.PayloadTemplate,
		TemplateName: "countdown",
		Data:         data,
	}, nil
}

func (c *countdown) Stop() {}

// parseClockTime accepts "HH:MM" or "HH:MM:SS".
func parseClockTime(value string) (h, m, s int, err error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid countdown time %q", value)
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, perr := strconv.Atoi(strings.TrimSpace(p))
		if perr != nil {
			return 0, 0, 0, fmt.Errorf("invalid countdown time %q", value)
		}
		nums[i] = n
	}
	h, m = nums[0], nums[1]
	if len(nums) == 3 {
		s = nums[2]
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || s < 0 || s > 59 {
		return 0, 0, 0, fmt.Errorf("invalid countdown time %q", value)
	}
	return h, m, s, nil
}
