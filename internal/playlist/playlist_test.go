package playlist

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versecast/versecast/internal/item"
	"github.com/versecast/versecast/internal/model"
)

type recordingRenderer struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingRenderer) record(call string) {
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()
}

func (r *recordingRenderer) Play(item.Item)           { r.record("play") }
func (r *recordingRenderer) UpdateTemplate(item.Item) { r.record("update") }
func (r *recordingRenderer) SelectSlide(int)          { r.record("select") }
func (r *recordingRenderer) ClearAll()                { r.record("clear") }

func (r *recordingRenderer) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return ""
	}
	return r.calls[len(r.calls)-1]
}

func (r *recordingRenderer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type fakeLibrary struct {
	psalms map[string]*model.PsalmData
}

func (f *fakeLibrary) Song(ref string) (*model.SongData, error) {
	return nil, errors.New("no songs in fixture")
}

func (f *fakeLibrary) Psalm(ref string) (*model.PsalmData, error) {
	if data, ok := f.psalms[ref]; ok {
		return data, nil
	}
	return nil, errors.New("psalm not found")
}

// comment returns the props of an item navigation must skip.
func comment(caption string) model.ItemProps {
	return model.ItemProps{Type: model.TypeComment, Caption: caption}
}

// displayable returns the props of a psalm with the given slide count.
func displayable(caption string, slides int) model.ItemProps {
	return model.ItemProps{Type: model.TypePsalm, Caption: caption, Psalm: &model.PsalmProps{File: caption + "-" + string(rune('0'+slides))}}
}

func seedPsalms(lib *fakeLibrary, props ...model.ItemProps) {
	for _, pr := range props {
		if pr.Type != model.TypePsalm {
			continue
		}
		slides := int(pr.Psalm.File[len(pr.Psalm.File)-1] - '0')
		data := &model.PsalmData{Caption: pr.Caption}
		for i := 0; i < slides; i++ {
			data.Slides = append(data.Slides, model.PsalmSlide{Lines: []string{"line"}})
		}
		lib.psalms[pr.Psalm.File] = data
	}
}

func fixture(t *testing.T, props ...model.ItemProps) (*Playlist, *recordingRenderer) {
	t.Helper()

	lib := &fakeLibrary{psalms: make(map[string]*model.PsalmData)}
	seedPsalms(lib, props...)

	renderer := &recordingRenderer{}
	pl := New(renderer, item.Deps{Library: lib})
	require.NoError(t, pl.Replace("service", props))
	renderer.mu.Lock()
	renderer.calls = nil // drop the load-time clear
	renderer.mu.Unlock()
	return pl, renderer
}

func activeIndex(t *testing.T, pl *Playlist) int {
	t.Helper()
	active := pl.ActiveItemSlide()
	require.NotNil(t, active.Item)
	return *active.Item
}

func TestNavigateItemSkipsNonDisplayable(t *testing.T) {
	pl, _ := fixture(t,
		comment("intro"),
		displayable("song-a", 2),
		comment("notes"),
		displayable("song-b", 2),
	)
	require.NoError(t, pl.SetActiveItem(1, 0))

	require.NoError(t, pl.NavigateItem(1, 0))
	assert.Equal(t, 3, activeIndex(t, pl))

	require.NoError(t, pl.NavigateItem(-1, 0))
	assert.Equal(t, 1, activeIndex(t, pl))
}

func TestNavigateItemNothingDisplayable(t *testing.T) {
	pl, renderer := fixture(t, comment("a"), comment("b"))

	err := pl.NavigateItem(1, 0)
	assert.ErrorIs(t, err, ErrNoDisplayable)
	assert.Nil(t, pl.ActiveItemSlide().Item)
	assert.Equal(t, 0, renderer.count())
}

func TestNavigateItemEntersFreshPlaylist(t *testing.T) {
	t.Run("forward skips a leading comment", func(t *testing.T) {
		pl, _ := fixture(t, comment("intro"), displayable("opening", 2))

		require.NoError(t, pl.NavigateItem(1, 0))
		assert.Equal(t, 1, activeIndex(t, pl))
	})

	t.Run("forward enters at the first item", func(t *testing.T) {
		pl, _ := fixture(t, displayable("opening", 2), displayable("closing", 2))

		require.NoError(t, pl.NavigateItem(1, 0))
		assert.Equal(t, 0, activeIndex(t, pl))
	})

	t.Run("backward enters at the last item", func(t *testing.T) {
		pl, _ := fixture(t, displayable("opening", 2), displayable("closing", 2))

		require.NoError(t, pl.NavigateItem(-1, 0))
		assert.Equal(t, 1, activeIndex(t, pl))
	})

	t.Run("a single-item playlist is reachable", func(t *testing.T) {
		pl, _ := fixture(t, displayable("only", 1))

		require.NoError(t, pl.NavigateItem(1, 0))
		assert.Equal(t, 0, activeIndex(t, pl))
	})
}

func TestNavigateItemWrapsAround(t *testing.T) {
	pl, _ := fixture(t, displayable("a", 1), comment("x"), displayable("b", 1))
	require.NoError(t, pl.SetActiveItem(2, 0))

	require.NoError(t, pl.NavigateItem(1, 0))
	assert.Equal(t, 0, activeIndex(t, pl))
}

func TestSlideOverflowAdvancesItem(t *testing.T) {
	pl, renderer := fixture(t, displayable("a", 3), displayable("b", 2))
	require.NoError(t, pl.SetActiveItem(0, 2))

	itemChanged, err := pl.NavigateSlide(1)
	require.NoError(t, err)
	assert.True(t, itemChanged)
	active := pl.ActiveItemSlide()
	assert.Equal(t, 1, *active.Item)
	assert.Equal(t, 0, *active.Slide)
	assert.Equal(t, "play", renderer.last())
}

func TestSlideOverflowBackwardsEntersLastSlide(t *testing.T) {
	pl, _ := fixture(t, displayable("a", 3), displayable("b", 2))
	require.NoError(t, pl.SetActiveItem(1, 0))

	itemChanged, err := pl.NavigateSlide(-1)
	require.NoError(t, err)
	assert.True(t, itemChanged)
	active := pl.ActiveItemSlide()
	assert.Equal(t, 0, *active.Item)
	assert.Equal(t, 2, *active.Slide)
}

func TestNavigateSlideWithinItem(t *testing.T) {
	pl, renderer := fixture(t, displayable("a", 3))
	require.NoError(t, pl.SetActiveItem(0, 0))

	itemChanged, err := pl.NavigateSlide(1)
	require.NoError(t, err)
	assert.False(t, itemChanged)
	assert.Equal(t, 1, *pl.ActiveItemSlide().Slide)
	assert.Equal(t, "select", renderer.last())
}

func TestSetActiveItemNotDisplayable(t *testing.T) {
	pl, renderer := fixture(t, comment("notes"), displayable("a", 1))

	err := pl.SetActiveItem(0, 0)
	assert.ErrorIs(t, err, ErrNotDisplayable)
	assert.Nil(t, pl.ActiveItemSlide().Item)
	assert.Equal(t, 0, renderer.count())
}

func TestDeleteBeforeActive(t *testing.T) {
	pl, _ := fixture(t, displayable("a", 1), displayable("b", 1), displayable("c", 1))
	require.NoError(t, pl.SetActiveItem(2, 0))

	changed, err := pl.DeleteItem(0)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, activeIndex(t, pl))
	assert.Equal(t, "c", pl.ActiveItem().Props().Caption)
}

func TestDeleteAfterActive(t *testing.T) {
	pl, _ := fixture(t, displayable("a", 1), displayable("b", 1))
	require.NoError(t, pl.SetActiveItem(0, 0))

	changed, err := pl.DeleteItem(1)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 0, activeIndex(t, pl))
}

func TestDeleteLastActiveClearsTargets(t *testing.T) {
	pl, renderer := fixture(t, displayable("a", 1))
	require.NoError(t, pl.SetActiveItem(0, 0))

	changed, err := pl.DeleteItem(0)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Nil(t, pl.ActiveItemSlide().Item)
	assert.Equal(t, "clear", renderer.last())
}

func TestMoveAcrossActive(t *testing.T) {
	pl, _ := fixture(t,
		displayable("a", 1),
		displayable("b", 1),
		displayable("c", 1),
		displayable("d", 1),
	)
	require.NoError(t, pl.SetActiveItem(1, 0)) // B

	perm, err := pl.MoveItem(3, 0) // move D to front
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 0}, perm)
	assert.Equal(t, 2, activeIndex(t, pl))
	assert.Equal(t, "b", pl.ActiveItem().Props().Caption)
}

func TestMoveActiveItemFollows(t *testing.T) {
	pl, _ := fixture(t, displayable("a", 1), displayable("b", 1), displayable("c", 1))
	require.NoError(t, pl.SetActiveItem(0, 0))

	perm, err := pl.MoveItem(0, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0, 1}, perm)
	assert.Equal(t, 2, activeIndex(t, pl))
	assert.Equal(t, "a", pl.ActiveItem().Props().Caption)
}

func TestAddItemShiftsActive(t *testing.T) {
	pl, _ := fixture(t, displayable("a", 1), displayable("b", 1))
	require.NoError(t, pl.SetActiveItem(1, 0))

	idx, err := pl.AddItem(comment("inserted"), intPtr(0), false)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 2, activeIndex(t, pl))
	assert.Equal(t, "b", pl.ActiveItem().Props().Caption)
}

func TestAddItemSetActive(t *testing.T) {
	pl, renderer := fixture(t, displayable("a", 1))
	added := displayable("b", 2)
	seedPsalms(pl.deps.Library.(*fakeLibrary), added)

	idx, err := pl.AddItem(added, nil, true)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 1, activeIndex(t, pl))
	assert.Equal(t, "play", renderer.last())
}

func TestAddItemSetActiveNonDisplayableRejectedBeforeInsert(t *testing.T) {
	pl, renderer := fixture(t, displayable("a", 1))
	require.NoError(t, pl.SetActiveItem(0, 0))
	renderer.mu.Lock()
	renderer.calls = nil
	renderer.mu.Unlock()

	_, err := pl.AddItem(comment("notes"), nil, true)
	assert.ErrorIs(t, err, ErrNotDisplayable)
	assert.Equal(t, 1, pl.Len(), "rejected activation must not insert")
	assert.Equal(t, 0, activeIndex(t, pl))
	assert.Equal(t, 0, renderer.count())
}

func TestUpdateItemKeepsGrownSlides(t *testing.T) {
	pl, _ := fixture(t)
	props := model.ItemProps{Type: model.TypePDF, Caption: "bulletin", PDF: &model.PDFProps{File: "bulletin"}}
	_, err := pl.AddItem(props, nil, false)
	require.NoError(t, err)
	require.NoError(t, pl.GrowItem(0))
	require.NoError(t, pl.GrowItem(0))

	props.Color = "#ffcc00"
	require.NoError(t, pl.UpdateItem(0, props))

	updated := pl.CreateClientSnapshot().Items[0]
	assert.Equal(t, 2, updated.SlideCount, "rasterized pages survive the update")
	assert.True(t, updated.Displayable)
}

func TestReplaceDegradesUnknownItemType(t *testing.T) {
	pl, _ := fixture(t, displayable("opening", 2))
	require.NoError(t, pl.Replace("service", []model.ItemProps{
		{Type: "hologram", Caption: "future tech"},
		displayable("opening", 2),
	}))

	require.Equal(t, 2, pl.Len())
	snapshot := pl.CreateClientSnapshot()
	assert.False(t, snapshot.Items[0].Displayable)
	assert.Equal(t, model.ItemType("hologram"), snapshot.Items[0].Type)

	require.NoError(t, pl.NavigateItem(1, 0))
	assert.Equal(t, 1, activeIndex(t, pl))
}

func TestUpdateItemTypeMismatch(t *testing.T) {
	pl, _ := fixture(t, displayable("a", 1))

	err := pl.UpdateItem(0, comment("now a comment"))
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.Equal(t, model.TypePsalm, pl.CreateClientSnapshot().Items[0].Type)
}

func TestUpdateActiveItemPushesTemplateUpdate(t *testing.T) {
	pl, renderer := fixture(t, displayable("a", 2))
	require.NoError(t, pl.SetActiveItem(0, 1))

	props := displayable("a", 2)
	props.Caption = "renamed"
	require.NoError(t, pl.UpdateItem(0, props))
	assert.Equal(t, "update", renderer.last())
	// slide position survives the rebuild
	assert.Equal(t, 1, *pl.ActiveItemSlide().Slide)
}

func TestIndexValidation(t *testing.T) {
	pl, _ := fixture(t, displayable("a", 1), displayable("b", 1))

	t.Run("negative counts from the end", func(t *testing.T) {
		require.NoError(t, pl.SetActiveItem(-1, 0))
		assert.Equal(t, 1, activeIndex(t, pl))
	})

	t.Run("out of range is rejected", func(t *testing.T) {
		var indexErr *model.ErrIndexOutOfRange
		assert.ErrorAs(t, pl.SetActiveItem(2, 0), &indexErr)
		assert.ErrorAs(t, pl.SetActiveItem(-3, 0), &indexErr)
	})
}

func TestSnapshotMirrorsState(t *testing.T) {
	pl, _ := fixture(t, comment("intro"), displayable("a", 2))
	require.NoError(t, pl.SetActiveItem(1, 1))

	snapshot := pl.CreateClientSnapshot()
	assert.Equal(t, "service", snapshot.Caption)
	require.Len(t, snapshot.Items, 2)
	assert.False(t, snapshot.Items[0].Displayable)
	assert.True(t, snapshot.Items[1].Displayable)
	assert.Equal(t, 2, snapshot.Items[1].SlideCount)
	assert.Equal(t, 1, *snapshot.Active.Item)
	assert.Equal(t, 1, *snapshot.Active.Slide)
}

func TestReplaceStopsItemsAndClears(t *testing.T) {
	pl, renderer := fixture(t, displayable("a", 1))
	require.NoError(t, pl.SetActiveItem(0, 0))

	require.NoError(t, pl.Replace("next service", nil))
	assert.Nil(t, pl.ActiveItemSlide().Item)
	assert.Equal(t, 0, pl.Len())
	assert.Equal(t, "clear", renderer.last())
	assert.False(t, pl.UnsavedChanges())
}

func intPtr(v int) *int { return &v }
