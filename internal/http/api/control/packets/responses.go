package packets

type AddItemResponse struct {
	Position int `json:"position"`
}

type MoveItemResponse struct {
	// Permutation maps every old index to its new index so clients can
	// remap their references after a reorder.
	Permutation []int `json:"permutation"`
}

type NavigateSlideResponse struct {
	ItemChanged bool `json:"item_changed"`
}

type LibraryResponse struct {
	Songs  []string `json:"songs,omitempty"`
	Psalms []string `json:"psalms,omitempty"`
}
