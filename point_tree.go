package octree

import (
	"iter"
	"log"

	"github.com/maja42/vmath"
)

// ViewProjector is the optional camera/viewport collaborator (spec.md §6)
// consumed only by FindClosestInViewDirection. It projects a world-space
// point into view space, reporting whether the point is in front of the
// camera at all.
type ViewProjector interface {
	ProjectToViewSpace(p vmath.Vec3f) (screen vmath.Vec2f, depth float32, ok bool)
}

// PointTree is a dynamic, loose octree indexing points by spatial
// location (spec.md §1-§2). Looseness is fixed at 1 — points have no
// extent, so no admission slack is needed. The zero value is not usable;
// build one with NewPointTree.
type PointTree[K comparable] struct {
	config treeConfig
	root   *pointNode[K]
}

// NewPointTree constructs an empty point tree. initialSize must be > 0;
// minNodeSize is clamped to at most initialSize. Bad parameters are
// adjusted with a logged warning rather than rejected (spec.md §7).
func NewPointTree[K comparable](initialSize float32, initialCentre vmath.Vec3f, minNodeSize float32) *PointTree[K] {
	cfg := newPointTreeConfig(initialSize, minNodeSize)
	t := &PointTree[K]{config: cfg}
	t.root = newPointNode[K](t, newBoxInfo(initialCentre, cfg.initialSize, 1.0))
	return t
}

func (t *PointTree[K]) Contains(k K) bool {
	return t.root.contains(k)
}

func (t *PointTree[K]) Count() int {
	return t.root.count()
}

func (t *PointTree[K]) Bounds() AABB {
	return t.root.boxInfo.StrictCube
}

func (t *PointTree[K]) LooseBounds() AABB {
	return t.root.boxInfo.LooseCube
}

// GetAll returns an iterator over every stored key. Iteration order is
// unspecified.
func (t *PointTree[K]) GetAll() iter.Seq[K] {
	return func(yield func(K) bool) {
		t.root.walkEntries(func(k K, _ vmath.Vec3f) bool { return !yield(k) })
	}
}

// GetAllSlice is a convenience wrapper over GetAll for callers that want a
// slice instead of an iterator.
func (t *PointTree[K]) GetAllSlice() []K {
	out := make([]K, 0, t.Count())
	for k := range t.GetAll() {
		out = append(out, k)
	}
	return out
}

// Add inserts k at position p, growing the root (up to maxGrowAttempts
// times, default 20) if it doesn't fit.
func (t *PointTree[K]) Add(k K, p vmath.Vec3f, maxGrowAttempts ...int) bool {
	attempts := defaultMaxGrowAttempts
	if len(maxGrowAttempts) > 0 {
		attempts = maxGrowAttempts[0]
	}
	if t.root.add(k, p) {
		return true
	}
	for i := 0; i < attempts; i++ {
		t.grow(vecSub(p, t.root.boxInfo.Centre))
		if t.root.add(k, p) {
			return true
		}
	}
	log.Printf("octree: add: key %v did not fit after %d grow attempts", k, attempts)
	return false
}

func (t *PointTree[K]) grow(direction vmath.Vec3f) {
	signs := signMask(direction)
	half := t.root.boxInfo.Length / 2
	newLength := t.root.boxInfo.Length * 2
	newCentre := vecAdd(t.root.boxInfo.Centre, vecScale(signs, half))

	newRoot := newPointNode[K](t, newBoxInfo(newCentre, newLength, 1.0))
	oldRoot := t.root
	if oldRoot.count() > 0 {
		oldSector := sectorFromSigns(signs).complement()
		newRoot.children = &[sectorCount]*pointNode[K]{}
		newRoot.children[oldSector] = oldRoot
		newRoot.childEntries = make(map[K]sector, oldRoot.count())
		oldRoot.collectKeysInto(newRoot.childEntries, oldSector)
	}
	t.root = newRoot
}

// Remove deletes k, merging nodes back down when possible (the default)
// and shrinking the root afterward.
func (t *PointTree[K]) Remove(k K, mergeIfAble ...bool) bool {
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

// Move relocates k to p2, attempting to do so in place before falling
// back to a full remove-then-add.
func (t *PointTree[K]) Move(k K, p2 vmath.Vec3f) MoveResult {
	switch result := t.root.move(k, p2, true); result {
	case MoveRemoved:
		if t.Add(k, p2) {
			return MoveMoved
		}
		return MoveRemoved
	default:
		return result
	}
}

// AddOrMove is the idempotent combination of Move and Add.
func (t *PointTree[K]) AddOrMove(k K, p2 vmath.Vec3f) bool {
	switch t.Move(k, p2) {
	case MoveMoved:
		return true
	case MoveNone:
		return t.Add(k, p2)
	default:
		return false
	}
}

// GetNearby returns every key within maxDistance (Euclidean) of centre.
func (t *PointTree[K]) GetNearby(centre vmath.Vec3f, maxDistance float32, filter PointEntryFilter[K]) []K {
	var out []K
	t.root.getNearby(centre, maxDistance, filter, &out)
	return out
}

// GetNearbyWithDistances returns every key within maxDistance of centre,
// along with its stored position and squared distance.
func (t *PointTree[K]) GetNearbyWithDistances(centre vmath.Vec3f, maxDistance float32, filter PointEntryFilter[K]) []PointHit[K] {
	var out []PointHit[K]
	t.root.getNearbyWithDistances(centre, maxDistance, filter, &out)
	return out
}

// GetNearbyAlongRay returns keys within maxDistance of the infinite line
// through ray. ray.Direction must be normalized. The per-entry test does no
// clamping to the ray segment (spec.md §4.5), but nodes are pruned by a
// ray test from the origin forward, so points behind the origin are
// returned only when their node is also reached by that forward ray.
func (t *PointTree[K]) GetNearbyAlongRay(ray Ray, maxDistance float32, filter PointEntryFilter[K]) []K {
	var out []K
	t.root.getNearbyAlongRay(ray, maxDistance, filter, &out)
	return out
}

// FindBestMatch returns the key with the lowest fitness score across the
// whole tree, or found=false if nothing survived the filters.
func (t *PointTree[K]) FindBestMatch(nodeFilter NodeFilterFunc, entryFilter PointEntryFilter[K], fitness PointFitnessFunc[K]) (key K, score float32, found bool) {
	return t.root.findBestMatch(nodeFilter, entryFilter, fitness)
}

// FindClosestInViewDirection is the optional convenience helper of
// spec.md §6: among entries in front of the camera (depth > 0), returns
// the one whose projection lands closest to the centre of the viewport.
// The core tree never calls this itself — it's a thin client of
// ViewProjector, built entirely out of FindBestMatch.
func (t *PointTree[K]) FindClosestInViewDirection(proj ViewProjector, filter PointEntryFilter[K]) (key K, found bool) {
	key, _, found = t.FindBestMatch(nil, nil, func(k K, p vmath.Vec3f) (float32, bool) {
		if filter != nil && !filter(k, p) {
			return 0, false
		}
		screen, depth, ok := proj.ProjectToViewSpace(p)
		if !ok || depth <= 0 {
			return 0, false
		}
		return vec2SquareLength(screen), true
	})
	return key, found
}

// WalkNodes enumerates every node's geometry for a debug-draw host; visit
// returning true stops the walk early.
func (t *PointTree[K]) WalkNodes(visit func(box BoxInfo, hasChildren bool) bool) {
	t.root.walkNodes(visit)
}

// WalkEntries enumerates every stored entry for a debug-draw host; visit
// returning true stops the walk early.
func (t *PointTree[K]) WalkEntries(visit func(k K, position vmath.Vec3f) bool) {
	t.root.walkEntries(visit)
}
