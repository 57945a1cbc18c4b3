package implementations

import "github.com/annel0/tileworld/internal/world/block"

// GrassBehavior реализует поведение блока травы.
// Трава живёт, только пока у неё есть хотя бы один открытый край;
// полностью окружённая трава превращается в землю.
type GrassBehavior struct {
	baseBehavior
}

// NewGrassBehavior создаёт поведение травы
func NewGrassBehavior() *GrassBehavior {
	return &GrassBehavior{baseBehavior{
		id:        block.Grass,
		name:      "Grass",
		neighbors: block.NewSet(block.Treewood, block.Grass, block.Earth, block.Rock, block.Wood),
	}}
}

// Init заменяет траву землёй, если она окружена сразу после установки
func (b *GrassBehavior) Init(c block.Cell) block.Reaction {
	return b.checkEnclosed(c)
}

// Update повторяет ту же проверку после изменения соседей
func (b *GrassBehavior) Update(c block.Cell) block.Reaction {
	return b.checkEnclosed(c)
}

func (b *GrassBehavior) checkEnclosed(c block.Cell) block.Reaction {
	if c.Border.Filled() {
		return block.ReplaceWith(block.Earth)
	}
	return block.Keep()
}
