package octree

import (
	"testing"

	"github.com/maja42/vmath"
	"github.com/stretchr/testify/assert"
)

func TestSectorOf(t *testing.T) {
	assert.Equal(t, sector(0), sectorOf(vmath.Vec3f{-1, -1, -1}))
	assert.Equal(t, sector(0b111), sectorOf(vmath.Vec3f{1, 1, 1}))
	assert.Equal(t, sector(0b001), sectorOf(vmath.Vec3f{1, -1, -1}))
	assert.Equal(t, sector(0b010), sectorOf(vmath.Vec3f{-1, 1, -1}))
	assert.Equal(t, sector(0b100), sectorOf(vmath.Vec3f{-1, -1, 1}))
	// exactly-zero offsets land on the negative side on every axis
	assert.Equal(t, sector(0), sectorOf(vmath.Vec3f{0, 0, 0}))
}

func TestSectorFromSigns(t *testing.T) {
	assert.Equal(t, sector(0), sectorFromSigns(vmath.Vec3f{-1, -1, -1}))
	assert.Equal(t, sector(0b111), sectorFromSigns(vmath.Vec3f{1, 1, 1}))
}

func TestSectorComplement(t *testing.T) {
	for s := sector(0); s < sectorCount; s++ {
		c := s.complement()
		assert.NotEqual(t, s, c)
		assert.Equal(t, s, c.complement())
	}
	assert.Equal(t, sector(0b111), sector(0).complement())
	assert.Equal(t, sector(0), sector(0b111).complement())
}

func TestSectorDirectionsAgreeWithSectorOf(t *testing.T) {
	for s := sector(0); s < sectorCount; s++ {
		d := sectorDirections[s]
		assert.Equal(t, s, sectorOf(d), "sectorDirections[%d] should round-trip through sectorOf", s)
	}
}
