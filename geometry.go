package octree

import (
	"github.com/maja42/vmath"
	"github.com/maja42/vmath/math32"
)

// AABB is an axis-aligned bounding box in 3-space. Min and Max are not
// normalized by construction; call Normalize before using a box built from
// untrusted corners.
type AABB struct {
	Min, Max vmath.Vec3f
}

// emptyAABB mirrors the teacher's noBounds: an infinitely small,
// "inside-out" box that contains nothing and merges as the identity.
var emptyAABB = AABB{
	Min: vmath.Vec3f{math32.Infinity, math32.Infinity, math32.Infinity},
	Max: vmath.Vec3f{math32.NegInfinity, math32.NegInfinity, math32.NegInfinity},
}

// NewAABBFromCenterSize builds a box of the given size centred at c.
func NewAABBFromCenterSize(c, size vmath.Vec3f) AABB {
	half := vecScale(size, 0.5)
	return AABB{Min: vecSub(c, half), Max: vecAdd(c, half)}
}

// NewCube builds a cube of the given side length centred at c.
func NewCube(c vmath.Vec3f, length float32) AABB {
	half := length / 2
	offset := vmath.Vec3f{half, half, half}
	return AABB{Min: vecSub(c, offset), Max: vecAdd(c, offset)}
}

// Normalize returns a box with Min/Max swapped per-component so that
// Min <= Max everywhere.
func (b AABB) Normalize() AABB {
	for i := 0; i < 3; i++ {
		if b.Min[i] > b.Max[i] {
			b.Min[i], b.Max[i] = b.Max[i], b.Min[i]
		}
	}
	return b
}

// Center returns the box's geometric centre.
func (b AABB) Center() vmath.Vec3f {
	return vecScale(vecAdd(b.Min, b.Max), 0.5)
}

// Size returns the box's extent along each axis.
func (b AABB) Size() vmath.Vec3f {
	return vecSub(b.Max, b.Min)
}

// ContainsPoint reports whether p lies within the box, inclusive of the
// boundary.
func (b AABB) ContainsPoint(p vmath.Vec3f) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// ContainsAABB reports whether o's min and max corners both lie within b.
func (b AABB) ContainsAABB(o AABB) bool {
	return b.ContainsPoint(o.Min) && b.ContainsPoint(o.Max)
}

// Intersects reports whether b and o overlap. Boxes that only touch at a
// boundary (equal floats) are considered to intersect, matching a closed
// interval test on every axis.
func (b AABB) Intersects(o AABB) bool {
	return b.Min[0] <= o.Max[0] && b.Max[0] >= o.Min[0] &&
		b.Min[1] <= o.Max[1] && b.Max[1] >= o.Min[1] &&
		b.Min[2] <= o.Max[2] && b.Max[2] >= o.Min[2]
}

// Merge returns the smallest box containing both b and o.
func (b AABB) Merge(o AABB) AABB {
	var out AABB
	for i := 0; i < 3; i++ {
		out.Min[i] = vmath.Min(b.Min[i], o.Min[i])
		out.Max[i] = vmath.Max(b.Max[i], o.Max[i])
	}
	return out
}

// Volume returns the box's volume. Zero for an empty/degenerate box.
func (b AABB) Volume() float32 {
	s := b.Size()
	if s[0] <= 0 || s[1] <= 0 || s[2] <= 0 {
		return 0
	}
	return s[0] * s[1] * s[2]
}

// ClosestPoint returns the point on (or inside) b closest to p.
func (b AABB) ClosestPoint(p vmath.Vec3f) vmath.Vec3f {
	var out vmath.Vec3f
	for i := 0; i < 3; i++ {
		v := p[i]
		if v < b.Min[i] {
			v = b.Min[i]
		} else if v > b.Max[i] {
			v = b.Max[i]
		}
		out[i] = v
	}
	return out
}

// sphereMayIntersect is the true closest-point-on-cube sphere test mandated
// by spec.md's Open Question on the point tree's node-level radius prune:
// tighter than the expanded-AABB form and carries no correctness risk.
func (b AABB) sphereMayIntersect(center vmath.Vec3f, radius float32) bool {
	cp := b.ClosestPoint(center)
	return vecSquareLength(vecSub(cp, center)) <= radius*radius
}

// sphereMayIntersectExpanded is the alternative node-level radius prune: an
// AABB expanded by radius on every side, tested for containment of the
// sphere's centre. Kept unexported per spec.md's Open Question — it remains
// an acceptable prune when a closest-point-on-cube primitive isn't
// available, but this repo always has one, so only its own pinning test
// exercises this form.
func (b AABB) sphereMayIntersectExpanded(center vmath.Vec3f, radius float32) bool {
	r := vmath.Vec3f{radius, radius, radius}
	expanded := AABB{Min: vecSub(b.Min, r), Max: vecAdd(b.Max, r)}
	return expanded.ContainsPoint(center)
}

// rayMayIntersect is the node-level prune used by the point tree's
// ray-radius search: an AABB expanded by maxDistance on every side, tested
// against the ray.
func (b AABB) rayMayIntersect(ray Ray, maxDistance float32) bool {
	d := vmath.Vec3f{maxDistance, maxDistance, maxDistance}
	expanded := AABB{Min: vecSub(b.Min, d), Max: vecAdd(b.Max, d)}
	hit, _ := expanded.IntersectRay(ray)
	return hit
}

// Ray is a ray in 3-space. Direction need not be normalized for
// IntersectRay, but must be normalized for the point tree's
// distance-to-ray radius search to return a meaningful squared distance.
type Ray struct {
	Origin, Direction vmath.Vec3f
}

// IntersectRay performs a slab test of the ray against b, returning whether
// it hits and, if so, the distance along the ray to the nearest
// intersection point (clamped to 0 if the origin is already inside b).
func (b AABB) IntersectRay(r Ray) (bool, float32) {
	tMin := float32(0)
	tMax := math32.Infinity

	for i := 0; i < 3; i++ {
		origin, dir := r.Origin[i], r.Direction[i]
		if dir == 0 {
			if origin < b.Min[i] || origin > b.Max[i] {
				return false, 0
			}
			continue
		}
		invDir := 1 / dir
		t1 := (b.Min[i] - origin) * invDir
		t2 := (b.Max[i] - origin) * invDir
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = vmath.Max(tMin, t1)
		tMax = vmath.Min(tMax, t2)
		if tMin > tMax {
			return false, 0
		}
	}
	return true, tMin
}

// Plane is a half-space boundary: points p with Dot(Normal, p) >= Distance
// are considered "inside".
type Plane struct {
	Normal   vmath.Vec3f
	Distance float32
}

// DistanceToPoint returns the signed distance from p to the plane along
// its normal. Positive means p is on the plane's inside.
func (p Plane) DistanceToPoint(pt vmath.Vec3f) float32 {
	return vecDot(p.Normal, pt) - p.Distance
}

// testPlanesAABB reports whether box is at least partially inside the
// intersection of the half-spaces described by planes (a view frustum).
// It uses the standard positive-vertex trick: for each plane, pick the
// box corner furthest along the plane's normal; if even that corner is
// outside, the whole box is outside.
func testPlanesAABB(planes []Plane, box AABB) bool {
	for _, p := range planes {
		var positive vmath.Vec3f
		for i := 0; i < 3; i++ {
			if p.Normal[i] >= 0 {
				positive[i] = box.Max[i]
			} else {
				positive[i] = box.Min[i]
			}
		}
		if p.DistanceToPoint(positive) < 0 {
			return false
		}
	}
	return true
}

func vecAdd(a, b vmath.Vec3f) vmath.Vec3f {
	return vmath.Vec3f{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func vecSub(a, b vmath.Vec3f) vmath.Vec3f {
	return vmath.Vec3f{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func vecScale(a vmath.Vec3f, s float32) vmath.Vec3f {
	return vmath.Vec3f{a[0] * s, a[1] * s, a[2] * s}
}

func vecDot(a, b vmath.Vec3f) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func vecCross(a, b vmath.Vec3f) vmath.Vec3f {
	return vmath.Vec3f{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func vecSquareLength(a vmath.Vec3f) float32 {
	return vecDot(a, a)
}

func vecLength(a vmath.Vec3f) float32 {
	return math32.Sqrt(vecSquareLength(a))
}

func vec2SquareLength(v vmath.Vec2f) float32 {
	return v[0]*v[0] + v[1]*v[1]
}

// signMask returns, per axis, +1 if the component is >= 0 and -1
// otherwise — the zero case treated as positive, as grow's direction
// convention needs (unlike sectorOf, which puts zero on the negative side).
func signMask(v vmath.Vec3f) vmath.Vec3f {
	var out vmath.Vec3f
	for i := 0; i < 3; i++ {
		if v[i] < 0 {
			out[i] = -1
		} else {
			out[i] = 1
		}
	}
	return out
}
