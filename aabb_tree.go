package octree

import (
	"iter"
	"log"

	"github.com/maja42/vmath"
)

// defaultMaxGrowAttempts is spec.md §4.1's default for Add: how many times
// the facade will double the root before giving up.
const defaultMaxGrowAttempts = 20

// aabbTreeSettings holds options only settable at construction time via
// AABBTreeOption.
type aabbTreeSettings struct {
	legacyFrustumFilterBug bool
}

// AABBTreeOption configures an AABBTree at construction time.
type AABBTreeOption func(*aabbTreeSettings)

// WithLegacyFrustumFilterBug reproduces the historical behaviour (spec.md
// §9's Open Question) where GetWithinFrustum fails to forward its entry
// filter on recursive calls. Off by default; this repo forwards the
// filter, per the spec's prescription.
func WithLegacyFrustumFilterBug() AABBTreeOption {
	return func(s *aabbTreeSettings) { s.legacyFrustumFilterBug = true }
}

// AABBTree is a dynamic, loose octree indexing axis-aligned bounding boxes
// by spatial location (spec.md §1-§2). The zero value is not usable; build
// one with NewAABBTree.
type AABBTree[K comparable] struct {
	config                 treeConfig
	root                   *aabbNode[K]
	legacyFrustumFilterBug bool
}

// NewAABBTree constructs an empty AABB tree. initialSize must be > 0;
// minNodeSize is clamped to at most initialSize; looseness is clamped to
// [1.0, 2.0]. Bad parameters are adjusted with a logged warning rather than
// rejected (spec.md §7).
func NewAABBTree[K comparable](initialSize float32, initialCentre vmath.Vec3f, minNodeSize, looseness float32, opts ...AABBTreeOption) *AABBTree[K] {
	cfg := newTreeConfig(initialSize, minNodeSize, looseness)
	var settings aabbTreeSettings
	for _, opt := range opts {
		opt(&settings)
	}
	t := &AABBTree[K]{
		config:                 cfg,
		legacyFrustumFilterBug: settings.legacyFrustumFilterBug,
	}
	t.root = newAABBNode[K](t, newBoxInfo(initialCentre, cfg.initialSize, cfg.looseness))
	return t
}

// Contains reports whether k is currently stored in the tree.
func (t *AABBTree[K]) Contains(k K) bool {
	return t.root.contains(k)
}

// Count returns the total number of entries stored in the tree.
func (t *AABBTree[K]) Count() int {
	return t.root.count()
}

// Bounds returns the root's strict cube.
func (t *AABBTree[K]) Bounds() AABB {
	return t.root.boxInfo.StrictCube
}

// LooseBounds returns the root's loose cube — the tree's actual admission
// boundary.
func (t *AABBTree[K]) LooseBounds() AABB {
	return t.root.boxInfo.LooseCube
}

// GetAll returns an iterator over every stored key. Iteration order is
// unspecified.
func (t *AABBTree[K]) GetAll() iter.Seq[K] {
	return func(yield func(K) bool) {
		t.root.walkEntries(func(k K, _ AABB) bool { return !yield(k) })
	}
}

// GetAllSlice is a convenience wrapper over GetAll for callers that want a
// slice instead of an iterator, mirroring the teacher's All() []Item.
func (t *AABBTree[K]) GetAllSlice() []K {
	out := make([]K, 0, t.Count())
	for k := range t.GetAll() {
		out = append(out, k)
	}
	return out
}

// Add inserts k with bounds g, growing the root (up to maxGrowAttempts
// times, default 20) if it doesn't fit. Passing 0 means "attempt once, no
// growth." Returns false if the entry still doesn't fit after exhausting
// growth attempts.
func (t *AABBTree[K]) Add(k K, g AABB, maxGrowAttempts ...int) bool {
	g = g.Normalize()
	attempts := defaultMaxGrowAttempts
	if len(maxGrowAttempts) > 0 {
		attempts = maxGrowAttempts[0]
	}
	if t.root.add(k, g) {
		return true
	}
	for i := 0; i < attempts; i++ {
		t.grow(vecSub(g.Center(), t.root.boxInfo.Centre))
		if t.root.add(k, g) {
			return true
		}
	}
	log.Printf("octree: add: key %v did not fit after %d grow attempts", k, attempts)
	return false
}

// grow replaces the root with a new root of double the length, positioned
// so that it extends toward direction, adopting the old root as the child
// in the opposite octant (spec.md §4.1).
func (t *AABBTree[K]) grow(direction vmath.Vec3f) {
	signs := signMask(direction)
	half := t.root.boxInfo.Length / 2
	newLength := t.root.boxInfo.Length * 2
	newCentre := vecAdd(t.root.boxInfo.Centre, vecScale(signs, half))

	newRoot := newAABBNode[K](t, newBoxInfo(newCentre, newLength, t.config.looseness))
	oldRoot := t.root
	if oldRoot.count() > 0 {
		oldSector := sectorFromSigns(signs).complement()
		newRoot.children = &[sectorCount]*aabbNode[K]{}
		newRoot.children[oldSector] = oldRoot
		newRoot.childEntries = make(map[K]sector, oldRoot.count())
		oldRoot.collectKeysInto(newRoot.childEntries, oldSector)
	}
	t.root = newRoot
}

// Remove deletes k, merging nodes back down when possible (the default)
// and shrinking the root afterward. Pass mergeIfAble=false to skip both.
func (t *AABBTree[K]) Remove(k K, mergeIfAble ...bool) bool {
	merge := true
	if len(mergeIfAble) > 0 {
		merge = mergeIfAble[0]
	}
	removed := t.root.remove(k, true, merge)
	if removed && merge {
		t.root = t.root.shrinkIfPossible(t.config.initialSize)
	}
	return removed
}

// Move relocates k to g2, attempting to do so in place before falling
// back to a full remove-then-add (spec.md §4.1, §4.3).
func (t *AABBTree[K]) Move(k K, g2 AABB) MoveResult {
	g2 = g2.Normalize()
	switch result := t.root.move(k, g2, true); result {
	case MoveRemoved:
		if t.Add(k, g2) {
			return MoveMoved
		}
		return MoveRemoved
	default:
		return result
	}
}

// AddOrMove is the idempotent combination of Move and Add: it relocates k
// if already present, or inserts it fresh otherwise.
func (t *AABBTree[K]) AddOrMove(k K, g2 AABB) bool {
	switch t.Move(k, g2) {
	case MoveMoved:
		return true
	case MoveNone:
		return t.Add(k, g2)
	default: // MoveRemoved
		return false
	}
}

// IsIntersecting reports whether any entry overlaps box.
func (t *AABBTree[K]) IsIntersecting(box AABB, filter AABBEntryFilter[K]) bool {
	return t.root.isIntersecting(box.Normalize(), filter)
}

// GetIntersecting returns every key whose bounds overlap box.
func (t *AABBTree[K]) GetIntersecting(box AABB, filter AABBEntryFilter[K]) []K {
	var out []K
	t.root.getIntersecting(box.Normalize(), filter, &out)
	return out
}

// Raycast reports whether ray hits any entry within maxDistance.
func (t *AABBTree[K]) Raycast(ray Ray, maxDistance float32, filter AABBEntryFilter[K]) bool {
	return t.root.isRayIntersecting(ray, maxDistance, filter)
}

// RaycastAll collects every entry ray hits within maxDistance, along with
// the hit distance.
func (t *AABBTree[K]) RaycastAll(ray Ray, maxDistance float32, filter AABBEntryFilter[K]) []RayHit[K] {
	var out []RayHit[K]
	t.root.raycast(ray, maxDistance, filter, &out)
	return out
}

// GetWithinFrustum returns every key whose bounds lie at least partially
// inside the half-space intersection described by planes.
func (t *AABBTree[K]) GetWithinFrustum(planes []Plane, filter AABBEntryFilter[K]) []K {
	var out []K
	t.root.getWithinFrustum(planes, filter, &out, !t.legacyFrustumFilterBug)
	return out
}

// FindBestMatch returns the key with the lowest fitness score across the
// whole tree, or found=false if nodeFilter/entryFilter/fitness rejected
// everything.
func (t *AABBTree[K]) FindBestMatch(nodeFilter NodeFilterFunc, entryFilter AABBEntryFilter[K], fitness AABBFitnessFunc[K]) (key K, score float32, found bool) {
	return t.root.findBestMatch(nodeFilter, entryFilter, fitness)
}

// WalkNodes enumerates every node's geometry for a debug-draw host; visit
// returning true stops the walk early (spec.md §6's debug-draw hook).
func (t *AABBTree[K]) WalkNodes(visit func(box BoxInfo, hasChildren bool) bool) {
	t.root.walkNodes(visit)
}

// WalkEntries enumerates every stored entry for a debug-draw host; visit
// returning true stops the walk early.
func (t *AABBTree[K]) WalkEntries(visit func(k K, bounds AABB) bool) {
	t.root.walkEntries(visit)
}
