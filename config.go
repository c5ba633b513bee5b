package octree

import "log"

// MaxNodeEntries is the per-node capacity threshold above which a node
// splits, and at or below which it is eligible to merge back down
// (spec.md §4.2, §9). A reasonable range is 8-15; 8 is the recommended
// default the teacher's own maxEntries tuning mirrors (rtree.New clamps its
// analogous parameter rather than hardcoding it, but this structure has no
// per-call-site reason to vary it, so it stays a constant as spec.md §6
// allows).
const MaxNodeEntries = 8

// treeConfig holds the construction-time parameters shared by both tree
// variants, immutable after construction (spec.md §5).
type treeConfig struct {
	initialSize float32
	minNodeSize float32
	looseness   float32
}

// newTreeConfig validates and clamps constructor parameters, logging a
// warning for every adjustment (spec.md §4.1, §7).
func newTreeConfig(initialSize, minNodeSize, looseness float32) treeConfig {
	if initialSize <= 0 {
		log.Printf("octree: initialSize must be > 0, got %v; using 1", initialSize)
		initialSize = 1
	}
	if minNodeSize > initialSize {
		log.Printf("octree: minNodeSize (%v) > initialSize (%v); clamping to initialSize", minNodeSize, initialSize)
		minNodeSize = initialSize
	}
	if minNodeSize <= 0 {
		clamped := initialSize / 1024
		log.Printf("octree: minNodeSize must be > 0, got %v; clamping to %v", minNodeSize, clamped)
		minNodeSize = clamped
	}
	if looseness < 1.0 {
		log.Printf("octree: looseness %v < 1.0; clamping to 1.0", looseness)
		looseness = 1.0
	} else if looseness > 2.0 {
		log.Printf("octree: looseness %v > 2.0; clamping to 2.0", looseness)
		looseness = 2.0
	}
	return treeConfig{
		initialSize: initialSize,
		minNodeSize: minNodeSize,
		looseness:   looseness,
	}
}

// newPointTreeConfig builds a config for the point tree variant, which
// always uses looseness 1 (no slack needed — points have no extent).
func newPointTreeConfig(initialSize, minNodeSize float32) treeConfig {
	return newTreeConfig(initialSize, minNodeSize, 1.0)
}
