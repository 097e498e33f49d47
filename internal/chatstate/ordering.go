package chatstate

import (
	"sort"

	"github.com/omniwire/chat-sync/internal/models"
)

// SortMode selects the inbox ordering inside each unread/read partition.
// Only Newest performs temporal sorting; every other mode passes the
// partition through in its existing order.
type SortMode string

const (
	SortNewest  SortMode = "newest"
	SortDefault SortMode = "default"
)

// OrderRooms derives the displayed inbox ordering: rooms with pending unread
// activity first, and in Newest mode by last activity descending within each
// partition. The sort is stable; ties keep their input order. The input slice
// is not mutated.
func OrderRooms(rooms []models.Room, mode SortMode) []models.Room {
	out := make([]models.Room, len(rooms))
	copy(out, rooms)

	sort.SliceStable(out, func(i, j int) bool {
		ui, uj := out[i].Unread(), out[j].Unread()
		if ui != uj {
			return ui
		}
		if mode == SortNewest {
			return out[i].LastActivityAt.After(out[j].LastActivityAt)
		}
		return false
	})

	return out
}
