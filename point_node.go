package octree

import (
	"log"

	"github.com/maja42/vmath"
)

// PointEntryFilter optionally gates which entries a query considers at
// leaf level; filtered-out entries are skipped but never prune traversal.
type PointEntryFilter[K comparable] func(key K, position vmath.Vec3f) bool

// PointFitnessFunc scores an entry for FindBestMatch. ok=false means
// "ignore this entry"; lower scores win.
type PointFitnessFunc[K comparable] func(key K, position vmath.Vec3f) (score float32, ok bool)

// pointNode is one node of the point loose octree. Same shape as aabbNode,
// specialised to point entries (spec.md §2): looseness is always 1, so an
// entry's strict and loose admission tests coincide.
type pointNode[K comparable] struct {
	tree *PointTree[K]

	boxInfo    BoxInfo
	childBoxes [sectorCount]BoxInfo

	ownEntries   map[K]vmath.Vec3f
	childEntries map[K]sector
	children     *[sectorCount]*pointNode[K]
}

func newPointNode[K comparable](tree *PointTree[K], box BoxInfo) *pointNode[K] {
	return &pointNode[K]{
		tree:       tree,
		boxInfo:    box,
		childBoxes: childBoxInfos(box, 1.0),
		ownEntries: make(map[K]vmath.Vec3f),
	}
}

func (n *pointNode[K]) count() int {
	return len(n.ownEntries) + len(n.childEntries)
}

func (n *pointNode[K]) contains(k K) bool {
	if _, ok := n.ownEntries[k]; ok {
		return true
	}
	_, ok := n.childEntries[k]
	return ok
}

func (n *pointNode[K]) add(k K, p vmath.Vec3f) bool {
	if !n.boxInfo.looseEncapsulatesPoint(p) {
		return false
	}
	if n.remove(k, true, false) {
		log.Printf("octree: add: key %v already present; replacing", k)
	}
	n.nocheckAdd(k, p)
	return true
}

func (n *pointNode[K]) nocheckAdd(k K, p vmath.Vec3f) {
	if n.children == nil && (len(n.ownEntries) < MaxNodeEntries || n.boxInfo.Length/2 < n.tree.config.minNodeSize) {
		n.ownEntries[k] = p
		return
	}
	if n.children == nil {
		n.split()
	}

	s := sectorOf(vecSub(p, n.boxInfo.Centre))
	childBox := n.childBoxes[s]
	if !childBox.encapsulatesPoint(p) {
		n.ownEntries[k] = p
		return
	}
	if n.children[s] == nil {
		n.children[s] = newPointNode(n.tree, childBox)
	}
	n.children[s].nocheckAdd(k, p)
	if n.childEntries == nil {
		n.childEntries = make(map[K]sector)
	}
	n.childEntries[k] = s
}

// split pushes every own point down to its best-fit child. Per spec.md
// §4.2, every point fits its computed child by construction, so
// ownEntries always ends empty here.
func (n *pointNode[K]) split() {
	if n.children == nil {
		n.children = &[sectorCount]*pointNode[K]{}
	}
	if n.childEntries == nil {
		n.childEntries = make(map[K]sector)
	}
	for k, p := range n.ownEntries {
		s := sectorOf(vecSub(p, n.boxInfo.Centre))
		childBox := n.childBoxes[s]
		if !childBox.encapsulatesPoint(p) {
			continue
		}
		if n.children[s] == nil {
			n.children[s] = newPointNode(n.tree, childBox)
		}
		n.children[s].nocheckAdd(k, p)
		delete(n.ownEntries, k)
		n.childEntries[k] = s
	}
}

func (n *pointNode[K]) merge() {
	if n.children == nil {
		return
	}
	for _, child := range n.children {
		if child == nil {
			continue
		}
		child.merge()
		for k, p := range child.ownEntries {
			n.ownEntries[k] = p
		}
	}
	n.children = nil
	n.childEntries = nil
}

func (n *pointNode[K]) shouldMerge() bool {
	return n.children != nil && n.count() <= MaxNodeEntries
}

func (n *pointNode[K]) remove(k K, isRoot, mergeIfAble bool) bool {
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

func (n *pointNode[K]) move(k K, p2 vmath.Vec3f, isRoot bool) MoveResult {
	if _, ok := n.ownEntries[k]; ok {
		delete(n.ownEntries, k)
		if n.fitsForMove(p2, isRoot) {
			n.nocheckAdd(k, p2)
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
	sNew := sectorOf(vecSub(p2, n.boxInfo.Centre))

	if sNew == sOld {
		child := n.children[sOld]
		switch result := child.move(k, p2, false); result {
		case MoveMoved:
			return MoveMoved
		case MoveNone:
			log.Printf("octree: move: key %v missing from expected child sector %d", k, sOld)
			return MoveNone
		default:
			delete(n.childEntries, k)
			if n.fitsForMove(p2, isRoot) {
				n.ownEntries[k] = p2
				return MoveMoved
			}
			return MoveRemoved
		}
	}

	n.children[sOld].remove(k, false, true)
	delete(n.childEntries, k)
	if n.fitsForMove(p2, isRoot) {
		n.nocheckAdd(k, p2)
		return MoveMoved
	}
	if n.shouldMerge() {
		n.merge()
	}
	return MoveRemoved
}

func (n *pointNode[K]) fitsForMove(p vmath.Vec3f, isRoot bool) bool {
	if isRoot {
		return n.boxInfo.looseEncapsulatesPoint(p)
	}
	return n.boxInfo.encapsulatesPoint(p)
}

// shrinkIfPossible mirrors aabbNode.shrinkIfPossible exactly, specialised
// to point entries (spec.md §4.4, §9).
func (n *pointNode[K]) shrinkIfPossible(minLength float32) *pointNode[K] {
	if n.boxInfo.Length < 2*minLength {
		return n
	}
	if n.count() == 0 {
		return n
	}

	var winner sector
	winnerSet := false
	for _, p := range n.ownEntries {
		s := sectorOf(vecSub(p, n.boxInfo.Centre))
		if winnerSet && s != winner {
			return n
		}
		if !n.childBoxes[s].looseEncapsulatesPoint(p) {
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
		newRoot = newPointNode(n.tree, winningBox)
	}
	for k, p := range n.ownEntries {
		newRoot.nocheckAdd(k, p)
	}
	return newRoot
}

func (n *pointNode[K]) setValues(centre vmath.Vec3f, length float32) {
	n.boxInfo = newBoxInfo(centre, length, 1.0)
	n.childBoxes = childBoxInfos(n.boxInfo, 1.0)
}

// --- queries ---

// PointHit is one result of a radius search with distances: the key, its
// stored position, and its squared distance from the query point.
type PointHit[K comparable] struct {
	Key             K
	Position        vmath.Vec3f
	SquaredDistance float32
}

func (n *pointNode[K]) getNearby(centre vmath.Vec3f, maxDistance float32, filter PointEntryFilter[K], out *[]K) {
	if !n.boxInfo.LooseCube.sphereMayIntersect(centre, maxDistance) {
		return
	}
	maxSq := maxDistance * maxDistance
	for k, p := range n.ownEntries {
		if filter != nil && !filter(k, p) {
			continue
		}
		if vecSquareLength(vecSub(p, centre)) <= maxSq {
			*out = append(*out, k)
		}
	}
	if n.children != nil {
		for _, c := range n.children {
			if c != nil {
				c.getNearby(centre, maxDistance, filter, out)
			}
		}
	}
}

func (n *pointNode[K]) getNearbyWithDistances(centre vmath.Vec3f, maxDistance float32, filter PointEntryFilter[K], out *[]PointHit[K]) {
	if !n.boxInfo.LooseCube.sphereMayIntersect(centre, maxDistance) {
		return
	}
	maxSq := maxDistance * maxDistance
	for k, p := range n.ownEntries {
		if filter != nil && !filter(k, p) {
			continue
		}
		d := vecSquareLength(vecSub(p, centre))
		if d <= maxSq {
			*out = append(*out, PointHit[K]{Key: k, Position: p, SquaredDistance: d})
		}
	}
	if n.children != nil {
		for _, c := range n.children {
			if c != nil {
				c.getNearbyWithDistances(centre, maxDistance, filter, out)
			}
		}
	}
}

// getNearbyAlongRay tests each stored point's distance to the infinite line
// through ray (no clamping to the ray segment), per spec.md §4.5. Nodes are
// pruned by rayMayIntersect, which only follows the ray forward from its
// origin, so points behind the origin are found only in nodes that test
// also reaches.
func (n *pointNode[K]) getNearbyAlongRay(ray Ray, maxDistance float32, filter PointEntryFilter[K], out *[]K) {
	if !n.boxInfo.LooseCube.rayMayIntersect(ray, maxDistance) {
		return
	}
	maxSq := maxDistance * maxDistance
	for k, p := range n.ownEntries {
		if filter != nil && !filter(k, p) {
			continue
		}
		toPoint := vecSub(p, ray.Origin)
		perp := vecCross(ray.Direction, toPoint)
		if vecSquareLength(perp) <= maxSq {
			*out = append(*out, k)
		}
	}
	if n.children != nil {
		for _, c := range n.children {
			if c != nil {
				c.getNearbyAlongRay(ray, maxDistance, filter, out)
			}
		}
	}
}

func (n *pointNode[K]) findBestMatch(nodeFilter NodeFilterFunc, entryFilter PointEntryFilter[K], fitness PointFitnessFunc[K]) (bestKey K, bestScore float32, found bool) {
	if nodeFilter != nil && !nodeFilter(n.boxInfo.Centre, n.boxInfo.Length) {
		return
	}
	for k, p := range n.ownEntries {
		if entryFilter != nil && !entryFilter(k, p) {
			continue
		}
		score, ok := fitness(k, p)
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

func (n *pointNode[K]) walkEntries(visit func(k K, p vmath.Vec3f) bool) bool {
	for k, p := range n.ownEntries {
		if visit(k, p) {
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

func (n *pointNode[K]) walkNodes(visit func(box BoxInfo, hasChildren bool) bool) bool {
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

func (n *pointNode[K]) collectKeysInto(dst map[K]sector, s sector) {
	for k := range n.ownEntries {
		dst[k] = s
	}
	for k := range n.childEntries {
		dst[k] = s
	}
}
