package item

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/versecast/versecast/internal/model"
)

// CitationStyle holds the separators a bible citation is assembled with.
// The separators are parsed once, at startup, out of a single human-readable
// style template via the fixed anchor tokens "1".."5": the template shows a
// worked citation of chapter 1 verses 2-3 and 4, followed by chapter 5, and
// the text between the anchors becomes the respective separator.
//
// "1,2-3.4; 5" therefore reads: chapter/verse ",", verse range "-",
// disjoint verses ".", chapters "; ".
type CitationStyle struct {
	SepChapterVerse string
	RangeVerse      string
	SepVerse        string
	SepChapter      string
}

const defaultCitationTemplate = "1,2-3.4; 5"

// ParseCitationStyle extracts the separators from the style template. The
// anchors 1..4 are required in order; anchor 5 is optional and defaults the
// chapter separator to "; ".
func ParseCitationStyle(template string) (*CitationStyle, error) {
	if template == "" {
		template = defaultCitationTemplate
	}
	positions := make([]int, 0, 5)
	rest := template
	offset := 0
	for _, anchor := range []string{"1", "2", "3", "4"} {
		idx := strings.Index(rest, anchor)
		if idx < 0 {
			return nil, fmt.Errorf("citation style %q: missing anchor %s", template, anchor)
		}
		positions = append(positions, offset+idx)
		offset += idx + 1
		rest = template[offset:]
	}

	style := &CitationStyle{
		SepChapterVerse: template[positions[0]+1 : positions[1]],
		RangeVerse:      template[positions[1]+1 : positions[2]],
		SepVerse:        template[positions[2]+1 : positions[3]],
		SepChapter:      "; ",
	}
	if idx := strings.Index(rest, "5"); idx >= 0 {
		style.SepChapter = rest[:idx]
	}
	return style, nil
}

// Format builds the citation text for a passage: runs of consecutive verse
// numbers within a chapter collapse to a start-end range, disjoint verses are
// joined with the verse separator, chapters with the chapter separator.
func (s *CitationStyle) Format(book string, verses []model.BibleVerse) string {
	if len(verses) == 0 {
		return book
	}

	var chapters []string
	i := 0
	for i < len(verses) {
		chapter := verses[i].Chapter
		var runs []string
		for i < len(verses) && verses[i].Chapter == chapter {
			start := verses[i].Verse
			end := start
			for i+1 < len(verses) && verses[i+1].Chapter == chapter && verses[i+1].Verse == end+1 {
				end = verses[i+1].Verse
				i++
			}
			if end > start {
				runs = append(runs, strconv.Itoa(start)+s.RangeVerse+strconv.Itoa(end))
			} else {
				runs = append(runs, strconv.Itoa(start))
			}
			i++
		}
		chapters = append(chapters, strconv.Itoa(chapter)+s.SepChapterVerse+strings.Join(runs, s.SepVerse))
	}

	citation := strings.Join(chapters, s.SepChapter)
	if book == "" {
		return citation
	}
	return book + " " + citation
}
