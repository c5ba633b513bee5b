package octree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTreeConfigValid(t *testing.T) {
	cfg := newTreeConfig(16, 1, 1.5)
	assert.Equal(t, float32(16), cfg.initialSize)
	assert.Equal(t, float32(1), cfg.minNodeSize)
	assert.Equal(t, float32(1.5), cfg.looseness)
}

func TestNewTreeConfigClampsNonPositiveInitialSize(t *testing.T) {
	cfg := newTreeConfig(0, 1, 1.0)
	assert.Equal(t, float32(1), cfg.initialSize)

	cfg = newTreeConfig(-5, 1, 1.0)
	assert.Equal(t, float32(1), cfg.initialSize)
}

func TestNewTreeConfigClampsMinNodeSizeAboveInitialSize(t *testing.T) {
	cfg := newTreeConfig(8, 100, 1.0)
	assert.Equal(t, float32(8), cfg.minNodeSize)
}

func TestNewTreeConfigClampsNonPositiveMinNodeSize(t *testing.T) {
	cfg := newTreeConfig(1024, 0, 1.0)
	assert.Equal(t, float32(1), cfg.minNodeSize)

	cfg = newTreeConfig(1024, -3, 1.0)
	assert.Equal(t, float32(1), cfg.minNodeSize)
}

func TestNewTreeConfigClampsLooseness(t *testing.T) {
	cfg := newTreeConfig(16, 1, 0.5)
	assert.Equal(t, float32(1.0), cfg.looseness)

	cfg = newTreeConfig(16, 1, 5)
	assert.Equal(t, float32(2.0), cfg.looseness)
}

func TestNewPointTreeConfigForcesLoosenessOne(t *testing.T) {
	cfg := newPointTreeConfig(16, 1)
	assert.Equal(t, float32(1.0), cfg.looseness)
}
