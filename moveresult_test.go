package octree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoveResultString(t *testing.T) {
	assert.Equal(t, "None", MoveNone.String())
	assert.Equal(t, "Removed", MoveRemoved.String())
	assert.Equal(t, "Moved", MoveMoved.String())
	assert.Equal(t, "MoveResult(?)", MoveResult(99).String())
}
