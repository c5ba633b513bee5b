package octree

import (
	"testing"

	"github.com/maja42/vmath"
	"github.com/stretchr/testify/assert"
)

func TestAABBNormalize(t *testing.T) {
	b := AABB{Min: vmath.Vec3f{1, -1, 5}, Max: vmath.Vec3f{-1, 1, 2}}.Normalize()
	assert.Equal(t, vmath.Vec3f{-1, -1, 2}, b.Min)
	assert.Equal(t, vmath.Vec3f{1, 1, 5}, b.Max)
}

func TestAABBContainsPoint(t *testing.T) {
	b := NewCube(vmath.Vec3f{0, 0, 0}, 2)
	assert.True(t, b.ContainsPoint(vmath.Vec3f{1, 1, 1}))
	assert.True(t, b.ContainsPoint(vmath.Vec3f{0, 0, 0}))
	assert.False(t, b.ContainsPoint(vmath.Vec3f{1.01, 0, 0}))
}

func TestAABBIntersects(t *testing.T) {
	a := NewCube(vmath.Vec3f{0, 0, 0}, 2)
	b := NewCube(vmath.Vec3f{1.5, 0, 0}, 2)
	c := NewCube(vmath.Vec3f{10, 0, 0}, 2)
	assert.True(t, a.Intersects(b))
	assert.False(t, a.Intersects(c))
	// touching boxes count as intersecting
	touching := NewCube(vmath.Vec3f{2, 0, 0}, 2)
	assert.True(t, a.Intersects(touching))
}

func TestAABBMerge(t *testing.T) {
	a := AABB{Min: vmath.Vec3f{-1, -1, -1}, Max: vmath.Vec3f{1, 1, 1}}
	b := AABB{Min: vmath.Vec3f{0, 0, 0}, Max: vmath.Vec3f{5, 5, 5}}
	m := a.Merge(b)
	assert.Equal(t, vmath.Vec3f{-1, -1, -1}, m.Min)
	assert.Equal(t, vmath.Vec3f{5, 5, 5}, m.Max)
}

func TestAABBClosestPoint(t *testing.T) {
	b := NewCube(vmath.Vec3f{0, 0, 0}, 2) // [-1,1]^3
	assert.Equal(t, vmath.Vec3f{1, 1, 1}, b.ClosestPoint(vmath.Vec3f{5, 5, 5}))
	assert.Equal(t, vmath.Vec3f{0, 0, 0}, b.ClosestPoint(vmath.Vec3f{0, 0, 0}))
}

func TestAABBIntersectRay(t *testing.T) {
	b := NewCube(vmath.Vec3f{5, 0, 0}, 2) // [4,6]x[-1,1]x[-1,1]
	ray := Ray{Origin: vmath.Vec3f{0, 0, 0}, Direction: vmath.Vec3f{1, 0, 0}}
	hit, dist := b.IntersectRay(ray)
	assert.True(t, hit)
	assert.InDelta(t, 4, dist, 1e-4)

	missRay := Ray{Origin: vmath.Vec3f{0, 5, 0}, Direction: vmath.Vec3f{1, 0, 0}}
	hit, _ = b.IntersectRay(missRay)
	assert.False(t, hit)

	awayRay := Ray{Origin: vmath.Vec3f{10, 0, 0}, Direction: vmath.Vec3f{1, 0, 0}}
	hit, _ = b.IntersectRay(awayRay)
	assert.False(t, hit)
}

func TestTestPlanesAABB(t *testing.T) {
	// A single plane whose normal points toward +X and passes through x=0:
	// only boxes with some corner at x>=0 are "inside".
	planes := []Plane{{Normal: vmath.Vec3f{1, 0, 0}, Distance: 0}}
	inside := NewCube(vmath.Vec3f{5, 0, 0}, 2)
	outside := NewCube(vmath.Vec3f{-5, 0, 0}, 2)
	straddling := NewCube(vmath.Vec3f{0, 0, 0}, 4)
	assert.True(t, testPlanesAABB(planes, inside))
	assert.False(t, testPlanesAABB(planes, outside))
	assert.True(t, testPlanesAABB(planes, straddling))
}

func TestSphereMayIntersectVsExpandedForm(t *testing.T) {
	b := NewCube(vmath.Vec3f{0, 0, 0}, 2) // [-1,1]^3

	// Along a single cardinal axis, the true closest-point test and the
	// expanded-AABB test agree exactly.
	axisCases := []struct {
		centre vmath.Vec3f
		radius float32
		want   bool
	}{
		{vmath.Vec3f{0, 0, 0}, 0.5, true},
		{vmath.Vec3f{5, 0, 0}, 3, false},
		{vmath.Vec3f{5, 0, 0}, 4.5, true},
	}
	for _, c := range axisCases {
		exact := b.sphereMayIntersect(c.centre, c.radius)
		expanded := b.sphereMayIntersectExpanded(c.centre, c.radius)
		assert.Equalf(t, c.want, exact, "exact: centre=%v radius=%v", c.centre, c.radius)
		assert.Equalf(t, c.want, expanded, "expanded: centre=%v radius=%v", c.centre, c.radius)
	}

	// Near a corner, the expanded-AABB prune is a conservative superset of
	// the true (tighter) closest-point test: whenever the true test says
	// "may intersect", so must the expanded one, but not vice versa.
	corner := vmath.Vec3f{2, 2, 2}
	radius := float32(1.5)
	exact := b.sphereMayIntersect(corner, radius)
	expanded := b.sphereMayIntersectExpanded(corner, radius)
	assert.False(t, exact, "true closest-point test should exclude this corner case")
	assert.True(t, expanded, "expanded-AABB test is conservative and should still include it")
}

func TestVecCross(t *testing.T) {
	x := vmath.Vec3f{1, 0, 0}
	y := vmath.Vec3f{0, 1, 0}
	assert.Equal(t, vmath.Vec3f{0, 0, 1}, vecCross(x, y))
}

func TestVecSquareLength(t *testing.T) {
	assert.Equal(t, float32(9), vecSquareLength(vmath.Vec3f{2, 2, 1}))
}
