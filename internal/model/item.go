package model

// ItemType tags the playlist-item variant carried in ItemProps.
type ItemType string

const (
	TypeSong      ItemType = "song"
	TypePsalm     ItemType = "psalm"
	TypeBible     ItemType = "bible"
	TypeCountdown ItemType = "countdown"
	TypeMedia     ItemType = "media"
	TypePDF       ItemType = "pdf"
	TypeTemplate  ItemType = "template"
	TypeComment   ItemType = "comment"
	TypeCommand   ItemType = "command"
)

// ItemProps is the client-facing view of a playlist item: the shared fields
// every variant carries plus the variant-specific payload for its type.
// Only the payload matching Type is populated.
type ItemProps struct {
	Type        ItemType `json:"type"`
	Caption     string   `json:"caption"`
	Color       string   `json:"color"`
	Displayable bool     `json:"displayable"`
	SlideCount  int      `json:"slide_count"`
	ActiveSlide int      `json:"active_slide"`

	Song      *SongProps      `json:"song,omitempty"`
	Psalm     *PsalmProps     `json:"psalm,omitempty"`
	Bible     *BibleProps     `json:"bible,omitempty"`
	Countdown *CountdownProps `json:"countdown,omitempty"`
	Media     *MediaProps     `json:"media,omitempty"`
	PDF       *PDFProps       `json:"pdf,omitempty"`
	Template  *TemplateProps  `json:"template,omitempty"`
	Command   *CommandProps   `json:"command,omitempty"`
}

// SongProps references a song in the library. VerseOrder and Languages, when
// empty, fall back to the defaults stored with the song.
type SongProps struct {
	File       string   `json:"file"`
	VerseOrder []string `json:"verse_order,omitempty"`
	Languages  []int    `json:"languages,omitempty"`
}

type PsalmProps struct {
	File string `json:"file"`
}

// BibleProps holds an already-resolved passage. Verses are listed in reading
// order; the citation text is derived from them (see the citation formatter).
type BibleProps struct {
	Book   string       `json:"book"`
	Verses []BibleVerse `json:"verses"`
	Text   string       `json:"text"`
}

type BibleVerse struct {
	Chapter int `json:"chapter"`
	Verse   int `json:"verse"`
}

// CountdownProps configures a countdown face. Time is "HH:MM" or "HH:MM:SS";
// its meaning depends on Mode.
type CountdownProps struct {
	Mode CountdownMode `json:"mode"`
	Time string        `json:"time,omitempty"`
}

type CountdownMode string

const (
	CountdownClock     CountdownMode = "clock"
	CountdownStopwatch CountdownMode = "stopwatch"
	CountdownEndTime   CountdownMode = "end_time"
	CountdownDuration  CountdownMode = "duration"
)

// MediaProps names either a clip known to the renderer or a raw URL.
type MediaProps struct {
	Clip   string `json:"clip,omitempty"`
	RawURL string `json:"raw_url,omitempty"`
}

type PDFProps struct {
	File string `json:"file"`
}

// TemplateProps drives a renderer template directly with fixed data.
type TemplateProps struct {
	Name string         `json:"name"`
	Data map[string]any `json:"data,omitempty"`
}

// CommandProps holds raw renderer control commands issued when the item
// becomes active, and optionally when it is deactivated again.
type CommandProps struct {
	Activate   []string `json:"activate"`
	Deactivate []string `json:"deactivate,omitempty"`
}
