package octree

import (
	"log"

	"github.com/maja42/vmath"
)

// AABBEntryFilter optionally gates which entries a query considers at leaf
// level; filtered-out entries are skipped but never prune node traversal.
type AABBEntryFilter[K comparable] func(key K, bounds AABB) bool

// AABBFitnessFunc scores an entry for FindBestMatch. ok=false means "ignore
// this entry"; lower scores win.
type AABBFitnessFunc[K comparable] func(key K, bounds AABB) (score float32, ok bool)

// NodeFilterFunc prunes best-match traversal at the node level, given a
// node's centre and side length (its strict cube).
type NodeFilterFunc func(centre vmath.Vec3f, length float32) bool

// aabbNode is one node of the AABB loose octree. It holds either entries at
// this level, children, or both (never neither, except transiently).
type aabbNode[K comparable] struct {
	tree *AABBTree[K]

	boxInfo    BoxInfo
	childBoxes [sectorCount]BoxInfo

	ownEntries   map[K]AABB
	childEntries map[K]sector // key -> sector of the child subtree holding it
	children     *[sectorCount]*aabbNode[K]
}

func newAABBNode[K comparable](tree *AABBTree[K], box BoxInfo) *aabbNode[K] {
	return &aabbNode[K]{
		tree:       tree,
		boxInfo:    box,
		childBoxes: childBoxInfos(box, tree.config.looseness),
		ownEntries: make(map[K]AABB),
	}
}

// count returns the number of entries stored anywhere in this node's
// subtree. childEntries tracks every descendant's key (spec.md §3), so a
// single-level sum already equals the recursive total (invariant 6).
func (n *aabbNode[K]) count() int {
	return len(n.ownEntries) + len(n.childEntries)
}

func (n *aabbNode[K]) contains(k K) bool {
	if _, ok := n.ownEntries[k]; ok {
		return true
	}
	_, ok := n.childEntries[k]
	return ok
}

// add rejects entries that don't even loosely fit, probes for (and warns
// about) a duplicate key, then delegates to nocheckAdd.
func (n *aabbNode[K]) add(k K, g AABB) bool {
	if !n.boxInfo.looseEncapsulates(g) {
		return false
	}
	if n.remove(k, true, false) {
		log.Printf("octree: add: key %v already present; replacing", k)
	}
	n.nocheckAdd(k, g)
	return true
}

// nocheckAdd places an already-validated entry: at this level if the node
// is still under capacity (or too small to split further), or recursively
// into the best-fit child, or at this level anyway if the entry straddles
// the child's loose cube. This last branch is what makes the tree loose.
func (n *aabbNode[K]) nocheckAdd(k K, g AABB) {
	if n.children == nil && (len(n.ownEntries) < MaxNodeEntries || n.boxInfo.Length/2 < n.tree.config.minNodeSize) {
		n.ownEntries[k] = g
		return
	}
	if n.children == nil {
		n.split()
	}

	s := sectorOf(vecSub(g.Center(), n.boxInfo.Centre))
	childBox := n.childBoxes[s]
	if !childBox.encapsulates(g) {
		n.ownEntries[k] = g
		return
	}
	if n.children[s] == nil {
		n.children[s] = newAABBNode(n.tree, childBox)
	}
	n.children[s].nocheckAdd(k, g)
	if n.childEntries == nil {
		n.childEntries = make(map[K]sector)
	}
	n.childEntries[k] = s
}

// split allocates the child array and pushes down every own entry that
// fits in its best-fit child's loose cube, leaving stragglers in place.
func (n *aabbNode[K]) split() {
	if n.children == nil {
		n.children = &[sectorCount]*aabbNode[K]{}
	}
	if n.childEntries == nil {
		n.childEntries = make(map[K]sector)
	}
	for k, g := range n.ownEntries {
		s := sectorOf(vecSub(g.Center(), n.boxInfo.Centre))
		childBox := n.childBoxes[s]
		if !childBox.encapsulates(g) {
			continue
		}
		if n.children[s] == nil {
			n.children[s] = newAABBNode(n.tree, childBox)
		}
		n.children[s].nocheckAdd(k, g)
		delete(n.ownEntries, k)
		n.childEntries[k] = s
	}
}

// merge collapses this node's entire subtree back into ownEntries. Its
// precondition (shouldMerge) guarantees every child is, after its own
// recursive merge, a leaf.
func (n *aabbNode[K]) merge() {
	if n.children == nil {
		return
	}
	for _, child := range n.children {
		if child == nil {
			continue
		}
		child.merge()
		for k, g := range child.ownEntries {
			n.ownEntries[k] = g
		}
	}
	n.children = nil
	n.childEntries = nil
}

func (n *aabbNode[K]) shouldMerge() bool {
	return n.children != nil && n.count() <= MaxNodeEntries
}

// remove deletes k from this subtree, descending via childEntries in O(1)
// rather than scanning children. isRoot suppresses merging (the facade
// handles shrink at the root instead).
func (n *aabbNode[K]) remove(k K, isRoot, mergeIfAble bool) bool {
	var removed bool
	if _, ok := n.ownEntries[k]; ok {
		delete(n.ownEntries, k)
		removed = true
	} else if s, ok := n.childEntries[k]; ok {
		child := n.children[s]
		removed = child.remove(k, false, mergeIfAble)
		delete(n.childEntries, k)
	}
	if removed && mergeIfAble && !isRoot && n.shouldMerge() {
		n.merge()
	}
	return removed
}

// move is the three-valued relocation state machine of spec.md §4.3. isRoot
// relaxes the re-admission test from strict encapsulation to loose
// encapsulation, since a root's caller (the facade) can grow to recover.
func (n *aabbNode[K]) move(k K, g2 AABB, isRoot bool) MoveResult {
	if _, ok := n.ownEntries[k]; ok {
		delete(n.ownEntries, k)
		if n.fitsForMove(g2, isRoot) {
			n.nocheckAdd(k, g2)
			return MoveMoved
		}
		if n.shouldMerge() {
			n.merge()
		}
		return MoveRemoved
	}

	sOld, ok := n.childEntries[k]
	if !ok {
		return MoveNone
	}
	sNew := sectorOf(vecSub(g2.Center(), n.boxInfo.Centre))

	if sNew == sOld {
		child := n.children[sOld]
		switch result := child.move(k, g2, false); result {
		case MoveMoved:
			return MoveMoved
		case MoveNone:
			log.Printf("octree: move: key %v missing from expected child sector %d", k, sOld)
			return MoveNone
		default: // MoveRemoved: entry escaped the child but may still fit here
			delete(n.childEntries, k)
			if n.fitsForMove(g2, isRoot) {
				n.ownEntries[k] = g2
				return MoveMoved
			}
			return MoveRemoved
		}
	}

	// Sector changed: pull the entry out of its old child explicitly.
	n.children[sOld].remove(k, false, true)
	delete(n.childEntries, k)
	if n.fitsForMove(g2, isRoot) {
		n.nocheckAdd(k, g2)
		return MoveMoved
	}
	if n.shouldMerge() {
		n.merge()
	}
	return MoveRemoved
}

func (n *aabbNode[K]) fitsForMove(g AABB, isRoot bool) bool {
	if isRoot {
		return n.boxInfo.looseEncapsulates(g)
	}
	return n.boxInfo.encapsulates(g)
}

// shrinkIfPossible returns either this node unchanged, or a smaller
// replacement that should become the new root. See spec.md §4.4 and §9 for
// the (intentionally preserved) extra halving in the no-children case.
func (n *aabbNode[K]) shrinkIfPossible(minLength float32) *aabbNode[K] {
	if n.boxInfo.Length < 2*minLength {
		return n
	}
	if n.count() == 0 {
		return n
	}

	var winner sector
	winnerSet := false
	for _, g := range n.ownEntries {
		s := sectorOf(vecSub(g.Center(), n.boxInfo.Centre))
		if winnerSet && s != winner {
			return n
		}
		if !n.childBoxes[s].looseEncapsulates(g) {
			return n
		}
		winner, winnerSet = s, true
	}

	nonEmptyChildren := 0
	var nonEmptySector sector
	if n.children != nil {
		for s := sector(0); s < sectorCount; s++ {
			child := n.children[s]
			if child == nil || child.count() == 0 {
				continue
			}
			if winnerSet && s != winner {
				return n
			}
			nonEmptyChildren++
			nonEmptySector = s
		}
		if nonEmptyChildren > 1 {
			return n
		}
	}
	if !winnerSet {
		if nonEmptyChildren == 0 {
			return n
		}
		winner, winnerSet = nonEmptySector, true
	}

	winningBox := n.childBoxes[winner]
	if n.children == nil {
		n.setValues(winningBox.Centre, winningBox.Length/2)
		return n
	}

	newRoot := n.children[winner]
	if newRoot == nil {
		newRoot = newAABBNode(n.tree, winningBox)
	}
	for k, g := range n.ownEntries {
		newRoot.nocheckAdd(k, g)
	}
	return newRoot
}

// setValues resizes this node in place, recomputing its own geometry and
// its precomputed child boxes. Used only by shrinkIfPossible's
// no-children collapse.
func (n *aabbNode[K]) setValues(centre vmath.Vec3f, length float32) {
	n.boxInfo = newBoxInfo(centre, length, n.tree.config.looseness)
	n.childBoxes = childBoxInfos(n.boxInfo, n.tree.config.looseness)
}

// --- queries ---

func (n *aabbNode[K]) isIntersecting(box AABB, filter AABBEntryFilter[K]) bool {
	if !box.Intersects(n.boxInfo.LooseCube) {
		return false
	}
	for k, g := range n.ownEntries {
		if filter != nil && !filter(k, g) {
			continue
		}
		if box.Intersects(g) {
			return true
		}
	}
	if n.children != nil {
		for _, child := range n.children {
			if child != nil && child.isIntersecting(box, filter) {
				return true
			}
		}
	}
	return false
}

func (n *aabbNode[K]) getIntersecting(box AABB, filter AABBEntryFilter[K], out *[]K) {
	if !box.Intersects(n.boxInfo.LooseCube) {
		return
	}
	for k, g := range n.ownEntries {
		if filter != nil && !filter(k, g) {
			continue
		}
		if box.Intersects(g) {
			*out = append(*out, k)
		}
	}
	if n.children != nil {
		for _, child := range n.children {
			if child != nil {
				child.getIntersecting(box, filter, out)
			}
		}
	}
}

func (n *aabbNode[K]) isRayIntersecting(ray Ray, maxDistance float32, filter AABBEntryFilter[K]) bool {
	if hit, dist := n.boxInfo.LooseCube.IntersectRay(ray); !hit || dist > maxDistance {
		return false
	}
	for k, g := range n.ownEntries {
		if filter != nil && !filter(k, g) {
			continue
		}
		if hit, dist := g.IntersectRay(ray); hit && dist <= maxDistance {
			return true
		}
	}
	if n.children != nil {
		for _, child := range n.children {
			if child != nil && child.isRayIntersecting(ray, maxDistance, filter) {
				return true
			}
		}
	}
	return false
}

// RayHit is one result of RaycastAll: the key and the distance along the
// ray to its nearest intersection.
type RayHit[K comparable] struct {
	Key      K
	Distance float32
}

func (n *aabbNode[K]) raycast(ray Ray, maxDistance float32, filter AABBEntryFilter[K], out *[]RayHit[K]) {
	if hit, dist := n.boxInfo.LooseCube.IntersectRay(ray); !hit || dist > maxDistance {
		return
	}
	for k, g := range n.ownEntries {
		if filter != nil && !filter(k, g) {
			continue
		}
		if hit, dist := g.IntersectRay(ray); hit && dist <= maxDistance {
			*out = append(*out, RayHit[K]{Key: k, Distance: dist})
		}
	}
	if n.children != nil {
		for _, child := range n.children {
			if child != nil {
				child.raycast(ray, maxDistance, filter, out)
			}
		}
	}
}

// getWithinFrustum walks the tree pruning by loose-cube/plane overlap.
// forwardFilter toggles whether the entry filter is passed to recursive
// calls; spec.md §9's Open Question prescribes always forwarding it, with
// false reproducing the historical non-forwarding behaviour.
func (n *aabbNode[K]) getWithinFrustum(planes []Plane, filter AABBEntryFilter[K], out *[]K, forwardFilter bool) {
	if !testPlanesAABB(planes, n.boxInfo.LooseCube) {
		return
	}
	for k, g := range n.ownEntries {
		if filter != nil && !filter(k, g) {
			continue
		}
		if testPlanesAABB(planes, g) {
			*out = append(*out, k)
		}
	}
	if n.children == nil {
		return
	}
	childFilter := filter
	if !forwardFilter {
		childFilter = nil
	}
	for _, child := range n.children {
		if child != nil {
			child.getWithinFrustum(planes, childFilter, out, forwardFilter)
		}
	}
}

func (n *aabbNode[K]) findBestMatch(nodeFilter NodeFilterFunc, entryFilter AABBEntryFilter[K], fitness AABBFitnessFunc[K]) (bestKey K, bestScore float32, found bool) {
	if nodeFilter != nil && !nodeFilter(n.boxInfo.Centre, n.boxInfo.Length) {
		return
	}
	for k, g := range n.ownEntries {
		if entryFilter != nil && !entryFilter(k, g) {
			continue
		}
		score, ok := fitness(k, g)
		if !ok {
			continue
		}
		if !found || score < bestScore {
			bestKey, bestScore, found = k, score, true
		}
	}
	if n.children != nil {
		for _, child := range n.children {
			if child == nil {
				continue
			}
			k2, s2, ok2 := child.findBestMatch(nodeFilter, entryFilter, fitness)
			if ok2 && (!found || s2 < bestScore) {
				bestKey, bestScore, found = k2, s2, true
			}
		}
	}
	return
}

// walkEntries visits every stored entry until visit returns true (abort).
// Returns whether it was aborted.
func (n *aabbNode[K]) walkEntries(visit func(k K, g AABB) bool) bool {
	for k, g := range n.ownEntries {
		if visit(k, g) {
			return true
		}
	}
	if n.children != nil {
		for _, c := range n.children {
			if c != nil && c.walkEntries(visit) {
				return true
			}
		}
	}
	return false
}

// walkNodes visits every node (own subtree included) until visit returns
// true (abort). Useful for debug-draw gizmo hosts (spec.md §6).
func (n *aabbNode[K]) walkNodes(visit func(box BoxInfo, hasChildren bool) bool) bool {
	if visit(n.boxInfo, n.children != nil) {
		return true
	}
	if n.children != nil {
		for _, c := range n.children {
			if c != nil && c.walkNodes(visit) {
				return true
			}
		}
	}
	return false
}

// collectKeysInto records every key in this subtree as belonging to sector
// s in dst — used by grow to rebuild the new root's childEntries summary
// for the old root it adopts as a single child.
func (n *aabbNode[K]) collectKeysInto(dst map[K]sector, s sector) {
	for k := range n.ownEntries {
		dst[k] = s
	}
	for k := range n.childEntries {
		dst[k] = s
	}
}
