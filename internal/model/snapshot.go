package model

// ActiveItemSlide is the single source of truth broadcast to clients and
// mirrored to renderers. Item mirrors the playlist's active item, Slide the
// active item's active slide; both are nil when nothing is active.
type ActiveItemSlide struct {
	Item  *int `json:"item"`
	Slide *int `json:"slide"`
}

// ItemSummary is the per-item line of the client snapshot.
type ItemSummary struct {
	Caption     string   `json:"caption"`
	Type        ItemType `json:"type"`
	Color       string   `json:"color"`
	Displayable bool     `json:"displayable"`
	SlideCount  int      `json:"slide_count"`
}

// PlaylistSnapshot is the canonical client-facing state: the ordered item
// summaries plus the active pointer and renderer visibility.
type PlaylistSnapshot struct {
	Caption        string          `json:"caption"`
	UnsavedChanges bool            `json:"unsaved_changes"`
	Items          []ItemSummary   `json:"items"`
	Active         ActiveItemSlide `json:"active"`
	Visible        bool            `json:"visible"`
}
