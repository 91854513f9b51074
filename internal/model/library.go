package model

// SongData is the parsed structure the library resolves a song reference into.
type SongData struct {
	Title      string
	VerseOrder []string            // file-default part ordering
	Languages  []int               // file-default language ordering
	Parts      map[string]SongPart // keyed by part name ("verse 1", "chorus", ...)
}

type SongPart struct {
	Slides []SongSlide
}

// SongSlide is one lyric line group; one entry per language.
type SongSlide struct {
	Lines [][]string
}

// PsalmData is the parsed structure the library resolves a psalm reference into.
type PsalmData struct {
	Caption string
	Slides  []PsalmSlide
}

type PsalmSlide struct {
	Lines []string
}
