package item

import (
	"fmt"

	"github.com/versecast/versecast/internal/model"
)

// Item is the capability contract every playlist-item variant implements.
// Variants are independent; the playlist dispatches on behavior, never on
// concrete type.
type Item interface {
	// Props returns the read-only client view of the item's configuration
	// plus its displayable/slide state.
	Props() model.ItemProps

	// ActiveSlide returns the current slide, or -1 when the item has none.
	ActiveSlide() int

	// SetActiveSlide validates and clamps the slide via the shared index
	// rule and returns the resolved slide.
	SetActiveSlide(slide int) (int, error)

	// NavigateSlide moves the active slide by steps. It returns 0 when the
	// new slide stayed in range, otherwise steps unchanged as an overflow
	// signal for the playlist to convert into item navigation.
	NavigateSlide(steps int) int

	// CreateRenderPayload produces the render-target instruction for the
	// item's current state.
	CreateRenderPayload() (model.RenderPayload, error)

	// Stop releases any external resource the item claimed while active.
	// A no-op for most variants.
	Stop()
}

// Library resolves stored song/psalm references into the parsed structures
// the variants consume. A resolve failure marks the item non-displayable;
// it never aborts a playlist load.
type Library interface {
	Song(ref string) (*model.SongData, error)
	Psalm(ref string) (*model.PsalmData, error)
}

// CommandSink accepts raw renderer control commands. The render target pool
// implements it; command items use it to deactivate on Stop.
type CommandSink interface {
	SendRaw(commands []string)
}

// Deps carries the collaborators item construction may need.
type Deps struct {
	Library  Library
	Sink     CommandSink
	Citation *CitationStyle
}

// New constructs the variant matching props.Type.
func New(props model.ItemProps, deps Deps) (Item, error) {
	switch props.Type {
	case model.TypeSong:
		return newSong(props, deps.Library), nil
	case model.TypePsalm:
		return newPsalm(props, deps.Library), nil
	case model.TypeBible:
		return newBible(props, deps.Citation), nil
	case model.TypeCountdown:
		return newCountdown(props), nil
	case model.TypeMedia:
		return newMedia(props), nil
	case model.TypePDF:
		return newPDF(props), nil
	case model.TypeTemplate:
		return newTemplate(props), nil
	case model.TypeComment:
		return newComment(props), nil
	case model.TypeCommand:
		return newCommand(props, deps.Sink), nil
	default:
		return nil, fmt.Errorf("unknown item type %q", props.Type)
	}
}
