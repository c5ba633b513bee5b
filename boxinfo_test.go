package octree

import (
	"testing"

	"github.com/maja42/vmath"
	"github.com/stretchr/testify/assert"
)

func TestNewBoxInfo(t *testing.T) {
	bi := newBoxInfo(vmath.Vec3f{0, 0, 0}, 2, 1.5)
	assert.Equal(t, NewCube(vmath.Vec3f{0, 0, 0}, 2), bi.StrictCube)
	assert.Equal(t, NewCube(vmath.Vec3f{0, 0, 0}, 3), bi.LooseCube)
}

func TestBoxInfoEncapsulates(t *testing.T) {
	bi := newBoxInfo(vmath.Vec3f{0, 0, 0}, 2, 1.5) // strict [-1,1]^3, loose [-1.5,1.5]^3

	// fully inside the strict cube: belongs
	inner := AABB{Min: vmath.Vec3f{-0.5, -0.5, -0.5}, Max: vmath.Vec3f{0.5, 0.5, 0.5}}
	assert.True(t, bi.encapsulates(inner))
	assert.True(t, bi.looseEncapsulates(inner))

	// straddles the strict boundary but fits in the loose cube, centred
	// inside the strict cube: still "belongs"
	straddling := AABB{Min: vmath.Vec3f{-0.9, -0.9, -0.9}, Max: vmath.Vec3f{1.4, 0.9, 0.9}}
	assert.True(t, bi.looseEncapsulates(straddling))
	assert.True(t, bi.encapsulates(straddling))

	// centre outside the strict cube: admissible (loose) but does not belong
	offCentre := AABB{Min: vmath.Vec3f{1.05, -0.2, -0.2}, Max: vmath.Vec3f{1.45, 0.2, 0.2}}
	assert.True(t, bi.looseEncapsulates(offCentre))
	assert.False(t, bi.encapsulates(offCentre))

	// too big even for the loose cube
	tooBig := AABB{Min: vmath.Vec3f{-2, -2, -2}, Max: vmath.Vec3f{2, 2, 2}}
	assert.False(t, bi.looseEncapsulates(tooBig))
	assert.False(t, bi.encapsulates(tooBig))
}

func TestBoxInfoEncapsulatesPoint(t *testing.T) {
	bi := newBoxInfo(vmath.Vec3f{0, 0, 0}, 2, 1.0) // looseness 1: strict == loose
	assert.True(t, bi.looseEncapsulatesPoint(vmath.Vec3f{0.9, 0.9, 0.9}))
	assert.True(t, bi.encapsulatesPoint(vmath.Vec3f{0.9, 0.9, 0.9}))
	assert.False(t, bi.looseEncapsulatesPoint(vmath.Vec3f{1.1, 0, 0}))
	assert.False(t, bi.encapsulatesPoint(vmath.Vec3f{1.1, 0, 0}))
}

func TestChildBoxInfos(t *testing.T) {
	parent := newBoxInfo(vmath.Vec3f{0, 0, 0}, 4, 1.5)
	children := childBoxInfos(parent, 1.5)

	for s := sector(0); s < sectorCount; s++ {
		c := children[s]
		assert.Equal(t, float32(2), c.Length)
		// each child's centre is offset by length/4 along each axis
		dir := sectorDirections[s]
		want := vecAdd(parent.Centre, vecScale(dir, 1))
		assert.Equal(t, want, c.Centre)
		// the child's loose cube should be entirely inside the parent's
		// loose cube plus the shared looseness slack; spot-check it's at
		// least as big as the strict cube
		assert.True(t, c.LooseCube.ContainsAABB(c.StrictCube))
	}

	// children tile the parent: every child centre resolves back to its
	// own sector under sectorOf relative to the parent centre
	for s := sector(0); s < sectorCount; s++ {
		offset := vecSub(children[s].Centre, parent.Centre)
		assert.Equal(t, s, sectorOf(offset))
	}
}
