package octree

// MoveResult reports the outcome of Move: whether the key was found at
// all, and if so whether it could be relocated in place or had to be
// fully removed (leaving the caller to re-add it).
type MoveResult int

const (
	// MoveNone means the key was not present in the tree.
	MoveNone MoveResult = iota
	// MoveRemoved means the key was found and removed, but its new
	// geometry no longer fits anywhere the move could reach in place.
	MoveRemoved
	// MoveMoved means the key was relocated successfully.
	MoveMoved
)

func (r MoveResult) String() string {
	switch r {
	case MoveNone:
		return "None"
	case MoveRemoved:
		return "Removed"
	case MoveMoved:
		return "Moved"
	default:
		return "MoveResult(?)"
	}
}
