package octree

import "github.com/maja42/vmath"

// BoxInfo is the precomputed geometry of a node, or of a prospective child:
// a strict cube (the node's own extent) and a loose cube (the strict cube
// scaled by the tree's looseness factor), both centred at the same point.
type BoxInfo struct {
	Centre     vmath.Vec3f
	Length     float32
	StrictCube AABB
	LooseCube  AABB
}

// newBoxInfo builds the BoxInfo for a cube of the given side length,
// centred at centre, with the given looseness multiplier (loose side =
// strict side * looseness).
func newBoxInfo(centre vmath.Vec3f, length, looseness float32) BoxInfo {
	return BoxInfo{
		Centre:     centre,
		Length:     length,
		StrictCube: NewCube(centre, length),
		LooseCube:  NewCube(centre, length*looseness),
	}
}

// looseEncapsulates reports whether b's full extent fits within this
// node's loose cube — the "admissible" test.
func (bi BoxInfo) looseEncapsulates(b AABB) bool {
	return bi.LooseCube.ContainsAABB(b)
}

// encapsulates reports whether b both fits within the loose cube and has
// its centre within the strict cube — the "belongs" test, guaranteeing an
// entry belongs to at most one node at a given level.
func (bi BoxInfo) encapsulates(b AABB) bool {
	return bi.looseEncapsulates(b) && bi.StrictCube.ContainsPoint(b.Center())
}

// looseEncapsulatesPoint and encapsulatesPoint are the point-entry
// analogues: a point has no extent, so "admissible" and "belongs" both
// reduce to plain containment (and coincide exactly when looseness is 1,
// as the point tree always uses).
func (bi BoxInfo) looseEncapsulatesPoint(p vmath.Vec3f) bool {
	return bi.LooseCube.ContainsPoint(p)
}

func (bi BoxInfo) encapsulatesPoint(p vmath.Vec3f) bool {
	return bi.looseEncapsulatesPoint(p) && bi.StrictCube.ContainsPoint(p)
}

// childBoxInfos computes the would-be BoxInfo of each of a node's eight
// children: centred at the parent centre offset by ±length/4 along each
// axis, with half the parent's length, inheriting looseness.
func childBoxInfos(parent BoxInfo, looseness float32) [sectorCount]BoxInfo {
	var out [sectorCount]BoxInfo
	childLength := parent.Length / 2
	quarter := parent.Length / 4
	for s := sector(0); s < sectorCount; s++ {
		dir := sectorDirections[s]
		centre := vecAdd(parent.Centre, vecScale(dir, quarter))
		out[s] = newBoxInfo(centre, childLength, looseness)
	}
	return out
}
