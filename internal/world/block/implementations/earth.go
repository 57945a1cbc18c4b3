package implementations

import "github.com/annel0/tileworld/internal/world/block"

// EarthBehavior реализует поведение блока земли
type EarthBehavior struct {
	baseBehavior
}

// NewEarthBehavior создаёт поведение земли
func NewEarthBehavior() *EarthBehavior {
	return &EarthBehavior{baseBehavior{
		id:        block.Earth,
		name:      "Earth",
		neighbors: block.NewSet(block.Grass, block.Earth, block.Rock, block.Wood, block.Treewood, block.Lightstone),
	}}
}
