package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/tileworld/internal/physics"
	"github.com/annel0/tileworld/internal/world/block"
	"github.com/annel0/tileworld/internal/world/entity"
)

func TestASCIIRenderer(t *testing.T) {
	w := newEmptyWorld(t)
	require.NoError(t, w.PlaceBlock(1, 1, block.Earth, LayerForeground))
	require.NoError(t, w.PlaceBlock(3, 1, block.Rock, LayerBackground))
	require.NoError(t, w.AddEntity(entity.NewPlayer("alice", 2*BlockPixelSize+2, 0)))

	r := NewASCIIRenderer(physics.NewRect(0, 0, 4*BlockPixelSize, 2*BlockPixelSize))
	w.Render(r)

	assert.Equal(t, "  @ \n # .\n", r.String())
}

func TestASCIIRenderer_Offset(t *testing.T) {
	r := NewASCIIRenderer(physics.NewRect(BlockPixelSize, BlockPixelSize, 2*BlockPixelSize, BlockPixelSize))
	r.DrawBlock(0, 0, LayerForeground, block.Rock, 0, false, 0)
	r.DrawBlock(2, 1, LayerForeground, block.Lightstone, 0, false, 0)
	r.DrawBlock(1, 1, LayerBackground, block.Earth, 0, false, 0)

	assert.Equal(t, ".*\n", r.String())
}
