package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/tileworld/internal/config"
	"github.com/annel0/tileworld/internal/world/block"
)

func testWorldConfig(seed int64) config.WorldConfig {
	cfg := config.Default().World
	cfg.NumChunks = 4
	cfg.ChunkSize = 16
	cfg.Seed = seed
	cfg.TreeDensity = 0.1
	cfg.LightstoneChance = 0.05
	return cfg
}

func generate(t *testing.T, cfg config.WorldConfig) (*ChunkManager, *Generator, int) {
	t.Helper()
	cm := newTestManager(t, cfg.NumChunks, cfg.ChunkSize)
	NewLightUpdater(cm, config.LightConfig{})
	g := NewGenerator(GeneratorConfigFrom(cfg), cm.TotalBlocks())
	cm.Create(g)
	cm.UpdateAll()
	trees := g.GenerateTrees(cm)
	return cm, g, trees
}

func TestGenerator_Deterministic(t *testing.T) {
	cmA, gA, treesA := generate(t, testWorldConfig(42))
	cmB, gB, treesB := generate(t, testWorldConfig(42))

	assert.Equal(t, gA.Heights(), gB.Heights(), "одинаковый сид даёт одинаковый рельеф")
	assert.Equal(t, treesA, treesB)
	assert.Equal(t, cmA.Snapshot(), cmB.Snapshot(), "одинаковый сид даёт одинаковый мир")

	_, gC, _ := generate(t, testWorldConfig(7))
	assert.NotEqual(t, gA.Heights(), gC.Heights(), "другой сид должен давать другой рельеф")
}

func TestGenerator_HeightsWithinLimits(t *testing.T) {
	cfg := testWorldConfig(3)
	cfg.Amplitude = 10 // заведомо выходит за пределы
	g := NewGenerator(GeneratorConfigFrom(cfg), 64)

	minLevel, maxLevel := MinSurfaceLevel, MaxSurfaceLevel
	for x, h := range g.Heights() {
		assert.GreaterOrEqual(t, h, int(minLevel*64), "колонка %d", x)
		assert.LessOrEqual(t, h, int(maxLevel*64), "колонка %d", x)
	}
	assert.Equal(t, 64, g.Surface(-1))
	assert.Equal(t, 64, g.Surface(64))
}

func TestGenerator_ColumnLayout(t *testing.T) {
	cfg := testWorldConfig(11)
	cm, g, _ := generate(t, cfg)
	heights := g.Heights()

	for x := 0; x < cm.TotalBlocks(); x++ {
		surface := heights[x]
		for y := 0; y < cm.TotalBlocks(); y++ {
			fg, hasFg := cm.GetBlock(x, y, LayerForeground)
			bg, hasBg := cm.GetBlock(x, y, LayerBackground)

			switch {
			case y < surface:
				assert.False(t, hasBg, "над поверхностью нет фона (%d, %d)", x, y)
				if hasFg {
					assert.Contains(t, []block.ID{block.Treewood, block.Leaves}, fg.ID,
						"над поверхностью только деревья (%d, %d)", x, y)
				}
			case y == surface:
				require.True(t, hasFg)
				assert.Contains(t, []block.ID{block.Grass, block.Earth}, fg.ID, "поверхность (%d, %d)", x, y)
			case y <= surface+cfg.EarthDepth:
				require.True(t, hasFg)
				assert.Equal(t, block.Earth, fg.ID, "слой земли (%d, %d)", x, y)
			default:
				require.True(t, hasFg)
				assert.Contains(t, []block.ID{block.Rock, block.Lightstone}, fg.ID, "толща (%d, %d)", x, y)
			}
			if y >= surface {
				require.True(t, hasBg)
				assert.Equal(t, block.Earth, bg.ID)
			}
		}
	}
	assertBordersConsistent(t, cm)
}

func TestGenerator_TreesStandOnSurface(t *testing.T) {
	cm, g, trees := generate(t, testWorldConfig(5))
	require.Greater(t, trees, 0, "в мире с плотностью 0.1 должны быть деревья")
	heights := g.Heights()

	trunks := 0
	for x := 0; x < cm.TotalBlocks(); x++ {
		b, ok := cm.GetBlock(x, heights[x]-1, LayerForeground)
		if !ok || b.ID != block.Treewood {
			continue
		}
		trunks++
		height := 0
		for y := heights[x] - 1; y >= 0; y-- {
			if tb, ok := cm.GetBlock(x, y, LayerForeground); ok && tb.ID == block.Treewood {
				height++
				continue
			}
			break
		}
		assert.GreaterOrEqual(t, height, MinTrunkHeight)
		assert.LessOrEqual(t, height, MaxTrunkHeight)

		top, ok := cm.GetBlock(x, heights[x]-height-1, LayerForeground)
		require.True(t, ok, "над стволом должна быть крона")
		assert.Equal(t, block.Leaves, top.ID)
	}
	assert.Equal(t, trees, trunks, "каждое дерево стоит на поверхности своей колонки")
}

func TestGenerator_NoTreesWithZeroDensity(t *testing.T) {
	cfg := testWorldConfig(5)
	cfg.TreeDensity = 0
	_, _, trees := generate(t, cfg)
	assert.Equal(t, 0, trees)
}
