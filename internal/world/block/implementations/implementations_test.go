package implementations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world/block"
)

func TestRegistry_AllKindsRegistered(t *testing.T) {
	for id := block.Earth; id < block.NumIDs; id++ {
		behavior, ok := block.Get(id)
		require.True(t, ok, "вид %d должен быть зарегистрирован", id)
		assert.Equal(t, id, behavior.ID())
		assert.NotEmpty(t, behavior.Name())
	}

	_, ok := block.Get(block.Empty)
	assert.False(t, ok, "Empty не имеет поведения")
	assert.Equal(t, "Grass", block.Grass.String())
	assert.Equal(t, "Empty", block.Empty.String())
}

func TestGrass_NeighborTable(t *testing.T) {
	grass := block.MustGet(block.Grass)

	for _, id := range []block.ID{block.Treewood, block.Grass, block.Earth, block.Rock, block.Wood} {
		assert.True(t, grass.IsValidNeighbor(id), "%s должен считаться соседом травы", id)
	}
	for _, id := range []block.ID{block.Empty, block.Leaves, block.Lightstone} {
		assert.False(t, grass.IsValidNeighbor(id), "%s не должен считаться соседом травы", id)
	}
}

func TestGrass_EnclosedBecomesEarth(t *testing.T) {
	grass := block.MustGet(block.Grass)
	cell := block.Cell{Pos: vec.Vec2{X: 3, Y: 3}, Foreground: true, Border: block.BorderFilled}

	r := grass.Init(cell)
	assert.True(t, r.Ok)
	assert.Equal(t, block.Earth, r.Replace)

	r = grass.Update(cell)
	assert.True(t, r.Ok)
	assert.Equal(t, block.Earth, r.Replace)

	// Один открытый край — трава остаётся травой
	cell.Border = block.BorderFilled &^ (1 << block.North)
	assert.False(t, grass.Update(cell).Ok)
	assert.True(t, grass.ContainsAlpha(cell.Border))
	assert.False(t, grass.ContainsAlpha(block.BorderFilled))
}

func TestLeaves_AlwaysTransparentAndPassable(t *testing.T) {
	leaves := block.MustGet(block.Leaves)
	assert.True(t, leaves.ContainsAlpha(block.BorderFilled))
	assert.False(t, leaves.Solid())

	rock := block.MustGet(block.Rock)
	assert.True(t, rock.Solid())
	assert.False(t, rock.Update(block.Cell{Border: block.BorderFilled}).Ok, "камень не реагирует на окружение")
}

func TestLightstone_Emits(t *testing.T) {
	assert.Equal(t, LightstoneEmission, block.MustGet(block.Lightstone).LightEmission())
	assert.Zero(t, block.MustGet(block.Earth).LightEmission())
}
