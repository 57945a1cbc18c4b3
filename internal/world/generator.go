package world

import (
	"math/rand"

	"github.com/annel0/tileworld/internal/config"
	"github.com/annel0/tileworld/internal/logging"
	"github.com/annel0/tileworld/internal/util"
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world/block"
)

// Ограничения генерации
const (
	MinSurfaceLevel = 0.1 // Доля мира, выше которой поверхность не поднимается
	MaxSurfaceLevel = 0.9 // Доля мира, ниже которой поверхность не опускается
	MaxTreeRetries  = 32  // Попыток найти место для одного дерева
	MinTrunkHeight  = 4
	MaxTrunkHeight  = 6
	CanopyRadius    = 2
)

// GeneratorConfig — параметры ландшафта
type GeneratorConfig struct {
	Seed             int64
	Amplitude        float64 // Размах холмов в долях мира
	Frequency        float64 // Количество "волн" шума на ширину мира
	BaseLevel        float64 // Средняя высота поверхности в долях мира (0 — верх)
	EarthDepth       int     // Толщина слоя земли под травой
	LightstoneChance float64 // Вероятность светящегося камня в толще камня
	TreeDensity      float64 // Деревьев на колонку
}

// GeneratorConfigFrom переносит параметры генерации из конфигурации мира
func GeneratorConfigFrom(cfg config.WorldConfig) GeneratorConfig {
	return GeneratorConfig{
		Seed:             cfg.Seed,
		Amplitude:        cfg.Amplitude,
		Frequency:        cfg.Frequency,
		BaseLevel:        cfg.BaseLevel,
		EarthDepth:       cfg.EarthDepth,
		LightstoneChance: cfg.LightstoneChance,
		TreeDensity:      cfg.TreeDensity,
	}
}

// Generator строит ландшафт: высоты поверхности по шуму Перлина,
// слои земли и камня, затем деревья поверх осевшей травы.
// Результат полностью определяется сидом.
type Generator struct {
	cfg         GeneratorConfig
	totalBlocks int
	noise       *util.HeightNoise
	rng         *rand.Rand
	heights     []int
	logger      *logging.Logger
}

// NewGenerator создаёт генератор для мира стороной totalBlocks клеток
func NewGenerator(cfg GeneratorConfig, totalBlocks int) *Generator {
	g := &Generator{
		cfg:         cfg,
		totalBlocks: totalBlocks,
		noise:       util.NewHeightNoise(cfg.Seed),
		rng:         rand.New(rand.NewSource(cfg.Seed)),
		heights:     make([]int, totalBlocks),
		logger:      logging.GetWorldLogger(),
	}
	for x := range g.heights {
		g.heights[x] = g.surfaceAt(x)
	}
	return g
}

func (g *Generator) surfaceAt(x int) int {
	t := float64(x) / float64(g.totalBlocks) * g.cfg.Frequency
	level := g.cfg.BaseLevel + g.cfg.Amplitude*0.5*g.noise.Noise1D(t)
	level = max(MinSurfaceLevel, min(level, MaxSurfaceLevel))
	return int(level * float64(g.totalBlocks))
}

// Surface возвращает строку поверхности (верхний блок травы) для колонки
func (g *Generator) Surface(x int) int {
	if x < 0 || x >= g.totalBlocks {
		return g.totalBlocks
	}
	return g.heights[x]
}

// Heights возвращает копию карты высот
func (g *Generator) Heights() []int {
	out := make([]int, len(g.heights))
	copy(out, g.heights)
	return out
}

// FillChunk заполняет чанк по карте высот.
// Светящийся камень разбрасывается генератором чанка, засеянным его координатами.
func (g *Generator) FillChunk(coords vec.Vec2, size int, set func(local vec.Vec2, id block.ID, layer Layer)) {
	rng := rand.New(rand.NewSource(g.cfg.Seed + int64(coords.X*31) + int64(coords.Y*17)))

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			local := vec.Vec2{X: x, Y: y}
			w := vec.FromChunk(coords, local, size)
			if w.X >= g.totalBlocks || w.Y >= g.totalBlocks {
				continue
			}
			surface := g.heights[w.X]
			if w.Y < surface {
				continue
			}

			set(local, block.Earth, LayerBackground)

			switch {
			case w.Y == surface:
				set(local, block.Grass, LayerForeground)
			case w.Y <= surface+g.cfg.EarthDepth:
				set(local, block.Earth, LayerForeground)
			case rng.Float64() < g.cfg.LightstoneChance:
				set(local, block.Lightstone, LayerForeground)
			default:
				set(local, block.Rock, LayerForeground)
			}
		}
	}
}

// GenerateTrees сажает деревья на осевшую траву. Вызывается после UpdateAll:
// установка идёт через SetBlock, поэтому маски и освещение обновляются сразу.
// Возвращает количество посаженных деревьев.
func (g *Generator) GenerateTrees(cm *ChunkManager) int {
	wanted := int(float64(g.totalBlocks) * g.cfg.TreeDensity)
	planted := 0
	for i := 0; i < wanted; i++ {
		ok := false
		for try := 0; try < MaxTreeRetries && !ok; try++ {
			ok = g.tryPlantTree(cm, g.rng.Intn(g.totalBlocks))
		}
		if ok {
			planted++
		} else {
			g.logger.Debug("Не удалось найти место для дерева #%d за %d попыток", i, MaxTreeRetries)
		}
	}
	g.logger.Debug("Посажено деревьев: %d из %d", planted, wanted)
	return planted
}

// tryPlantTree строит план дерева в колонке x и сажает его, если все клетки свободны
func (g *Generator) tryPlantTree(cm *ChunkManager, x int) bool {
	height := MinTrunkHeight + g.rng.Intn(MaxTrunkHeight-MinTrunkHeight+1)

	surface := -1
	for y := 0; y < g.totalBlocks; y++ {
		if b, ok := cm.GetBlock(x, y, LayerForeground); ok {
			if b.ID == block.Grass {
				surface = y
			}
			break
		}
	}
	if surface < 0 {
		return false
	}

	type placement struct {
		pos vec.Vec2
		id  block.ID
	}
	plan := make([]placement, 0, height+(2*CanopyRadius+1)*(CanopyRadius+1))
	for dy := 1; dy <= height; dy++ {
		plan = append(plan, placement{vec.Vec2{X: x, Y: surface - dy}, block.Treewood})
	}
	top := surface - height
	for dy := -CanopyRadius; dy <= 0; dy++ {
		for dx := -CanopyRadius; dx <= CanopyRadius; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if dx*dx+dy*dy > CanopyRadius*CanopyRadius+1 {
				continue
			}
			plan = append(plan, placement{vec.Vec2{X: x + dx, Y: top + dy}, block.Leaves})
		}
	}

	for _, p := range plan {
		if !cm.InBounds(p.pos.X, p.pos.Y) {
			return false
		}
		if _, occupied := cm.GetBlock(p.pos.X, p.pos.Y, LayerForeground); occupied {
			return false
		}
	}
	for _, p := range plan {
		if err := cm.SetBlock(p.pos.X, p.pos.Y, p.id, LayerForeground); err != nil {
			g.logger.Warn("Ошибка посадки дерева в (%d, %d): %v", p.pos.X, p.pos.Y, err)
			return false
		}
	}
	return true
}
