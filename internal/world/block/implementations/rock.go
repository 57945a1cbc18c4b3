package implementations

import "github.com/annel0/tileworld/internal/world/block"

// RockBehavior реализует поведение камня
type RockBehavior struct {
	baseBehavior
}

// NewRockBehavior создаёт поведение камня
func NewRockBehavior() *RockBehavior {
	return &RockBehavior{baseBehavior{
		id:        block.Rock,
		name:      "Rock",
		neighbors: block.NewSet(block.Grass, block.Earth, block.Rock, block.Wood, block.Treewood, block.Lightstone),
	}}
}
