// Package library is the content provider: it resolves stored song and psalm
// references into the parsed structures the playlist items consume.
package library

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/versecast/versecast/internal/model"
)

// Store resolves content references. The playlist-item factory consumes it;
// a resolve failure marks the affected item non-displayable and never blocks
// the rest of the load.
type Store interface {
	Song(ref string) (*model.SongData, error)
	Psalm(ref string) (*model.PsalmData, error)
	ListSongs() ([]string, error)
	ListPsalms() ([]string, error)
}

type pgStore struct {
	db *sqlx.DB
}

var _ Store = (*pgStore)(nil)

// Open connects to the library database, retrying briefly so the server can
// start alongside the database container.
func Open(databaseURL string) (Store, error) {
	const maxRetries = 10
	const retryInterval = 2 * time.Second

	var db *sqlx.DB
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		db, err = sqlx.Connect("postgres", databaseURL)
		if err == nil {
			log.Info().Msg("[library] connected to database")
			return &pgStore{db: db}, nil
		}
		log.Error().Err(err).Int("attempt", attempt).Msgf("[library] connect failed, retrying in %s", retryInterval)
		time.Sleep(retryInterval)
	}
	return nil, fmt.Errorf("could not connect to library database after %d attempts: %w", maxRetries, err)
}

type songRow struct {
	File       string         `db:"file"`
	Title      string         `db:"title"`
	VerseOrder pq.StringArray `db:"verse_order"`
	Languages  pq.Int64Array  `db:"languages"`
}

type partRow struct {
	Name   string `db:"name"`
	Slides []byte `db:"slides"`
}

func (s *pgStore) Song(ref string) (*model.SongData, error) {
	var row songRow
	err := s.db.Get(&row, `SELECT file, title, verse_order, languages FROM songs WHERE file = $1`, ref)
	if err != nil {
		return nil, fmt.Errorf("song %q: %w", ref, err)
	}

	var parts []partRow
	err = s.db.Select(&parts, `SELECT name, slides FROM song_parts WHERE song_file = $1 ORDER BY position`, ref)
	if err != nil {
		return nil, fmt.Errorf("song %q parts: %w", ref, err)
	}

	data := &model.SongData{
		Title:      row.Title,
		VerseOrder: row.VerseOrder,
		Parts:      make(map[string]model.SongPart, len(parts)),
	}
	for _, lang := range row.Languages {
		data.Languages = append(data.Languages, int(lang))
	}
	for _, part := range parts {
		var slides []model.SongSlide
		if err := json.Unmarshal(part.Slides, &slides); err != nil {
			return nil, fmt.Errorf("song %q part %q: %w", ref, part.Name, err)
		}
		data.Parts[part.Name] = model.SongPart{Slides: slides}
	}
	return data, nil
}

func (s *pgStore) Psalm(ref string) (*model.PsalmData, error) {
	var row struct {
		Caption string `db:"caption"`
		Slides  []byte `db:"slides"`
	}
	err := s.db.Get(&row, `SELECT caption, slides FROM psalms WHERE file = $1`, ref)
	if err != nil {
		return nil, fmt.Errorf("psalm %q: %w", ref, err)
	}

	var slides []model.PsalmSlide
	if err := json.Unmarshal(row.Slides, &slides); err != nil {
		return nil, fmt.Errorf("psalm %q slides: %w", ref, err)
	}
	return &model.PsalmData{Caption: row.Caption, Slides: slides}, nil
}

func (s *pgStore) ListSongs() ([]string, error) {
	var files []string
	if err := s.db.Select(&files, `SELECT file FROM songs ORDER BY file`); err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	return files, nil
}

func (s *pgStore) ListPsalms() ([]string, error) {
	var files []string
	if err := s.db.Select(&files, `SELECT file FROM psalms ORDER BY file`); err != nil {
		return nil, fmt.Errorf("list psalms: %w", err)
	}
	return files, nil
}
