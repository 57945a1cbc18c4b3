package implementations

import "github.com/annel0/tileworld/internal/world/block"

// WoodBehavior — доски, строительный блок игрока
type WoodBehavior struct {
	baseBehavior
}

// NewWoodBehavior создаёт поведение досок
func NewWoodBehavior() *WoodBehavior {
	return &WoodBehavior{baseBehavior{
		id:        block.Wood,
		name:      "Wood",
		neighbors: block.NewSet(block.Wood, block.Earth, block.Grass, block.Rock),
	}}
}
