package implementations

import "github.com/annel0/tileworld/internal/world/block"

// Регистрируем все типы блоков при импорте пакета
func init() {
	block.Register(block.Earth, NewEarthBehavior())
	block.Register(block.Grass, NewGrassBehavior())
	block.Register(block.Rock, NewRockBehavior())
	block.Register(block.Lightstone, NewLightstoneBehavior())
	block.Register(block.Treewood, NewTreewoodBehavior())
	block.Register(block.Leaves, NewLeavesBehavior())
	block.Register(block.Wood, NewWoodBehavior())
}
