package implementations

import "github.com/annel0/tileworld/internal/world/block"

// LeavesBehavior — листва: всегда пропускает свет и не имеет коллизии
type LeavesBehavior struct {
	baseBehavior
}

// NewLeavesBehavior создаёт поведение листвы
func NewLeavesBehavior() *LeavesBehavior {
	return &LeavesBehavior{baseBehavior{
		id:        block.Leaves,
		name:      "Leaves",
		neighbors: block.NewSet(block.Leaves, block.Treewood),
	}}
}

func (b *LeavesBehavior) ContainsAlpha(border block.Border) bool { return true }
func (b *LeavesBehavior) Solid() bool                            { return false }
