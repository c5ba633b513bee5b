package octree

import "github.com/maja42/vmath"

// sector identifies one of the eight octants around a node's centre, as a
// three-bit mask: bit 0 = +X, bit 1 = +Y, bit 2 = +Z.
type sector uint8

const sectorCount = 8

// sectorOf returns the sector of a point whose offset from a node's centre
// is given. The zero case on any axis is treated as the negative side
// (strict > comparison), per spec.md §3.
func sectorOf(offset vmath.Vec3f) sector {
	var s sector
	if offset[0] > 0 {
		s |= 1
	}
	if offset[1] > 0 {
		s |= 2
	}
	if offset[2] > 0 {
		s |= 4
	}
	return s
}

// sectorFromSigns maps a sign vector (each component +1 or -1) to the
// sector whose octant lies in that direction from a centre.
func sectorFromSigns(signs vmath.Vec3f) sector {
	var s sector
	if signs[0] > 0 {
		s |= 1
	}
	if signs[1] > 0 {
		s |= 2
	}
	if signs[2] > 0 {
		s |= 4
	}
	return s
}

// complement returns the opposite octant.
func (s sector) complement() sector {
	return s ^ 0b111
}

// sectorDirections[s] is the unit-ish direction vector (components in
// {-1, +1}) pointing from a node's centre toward the sector-s octant.
var sectorDirections [sectorCount]vmath.Vec3f

func init() {
	for s := sector(0); s < sectorCount; s++ {
		var d vmath.Vec3f
		if s&1 != 0 {
			d[0] = 1
		} else {
			d[0] = -1
		}
		if s&2 != 0 {
			d[1] = 1
		} else {
			d[1] = -1
		}
		if s&4 != 0 {
			d[2] = 1
		} else {
			d[2] = -1
		}
		sectorDirections[s] = d
	}
}
