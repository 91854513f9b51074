package playlist

import "errors"

var (
	// ErrTypeMismatch rejects an update whose props carry a different item
	// type than the item being updated.
	ErrTypeMismatch = errors.New("item type does not match existing item")

	// ErrNotDisplayable rejects activating an item that cannot be shown.
	// Distinct from an index error: the index was valid, the target is not.
	ErrNotDisplayable = errors.New("item is not displayable")

	// ErrNoDisplayable reports that navigation wrapped all the way around
	// without finding a displayable item.
	ErrNoDisplayable = errors.New("no displayable item to navigate to")

	// ErrNoActiveItem rejects slide operations while nothing is active.
	ErrNoActiveItem = errors.New("no active item")
)
