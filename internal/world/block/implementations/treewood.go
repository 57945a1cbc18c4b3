package implementations

import "github.com/annel0/tileworld/internal/world/block"

// TreewoodBehavior — ствол дерева. Стыкуется только с другими частями ствола.
type TreewoodBehavior struct {
	baseBehavior
}

// NewTreewoodBehavior создаёт поведение ствола
func NewTreewoodBehavior() *TreewoodBehavior {
	return &TreewoodBehavior{baseBehavior{
		id:        block.Treewood,
		name:      "Treewood",
		neighbors: block.NewSet(block.Treewood),
	}}
}
