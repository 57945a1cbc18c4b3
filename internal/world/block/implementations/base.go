package implementations

import "github.com/annel0/tileworld/internal/world/block"

// baseBehavior — общие для всех видов значения по умолчанию.
// Конкретные виды встраивают его и переопределяют нужные правила.
type baseBehavior struct {
	id        block.ID
	name      string
	neighbors block.Set
}

func (b baseBehavior) ID() block.ID                           { return b.id }
func (b baseBehavior) Name() string                           { return b.name }
func (b baseBehavior) IsValidNeighbor(neighbor block.ID) bool { return b.neighbors.Has(neighbor) }
func (b baseBehavior) Init(c block.Cell) block.Reaction       { return block.Keep() }
func (b baseBehavior) Update(c block.Cell) block.Reaction     { return block.Keep() }
func (b baseBehavior) Solid() bool                            { return true }
func (b baseBehavior) LightEmission() uint8                   { return 0 }
func (b baseBehavior) Destroy(c block.Cell)                   {}

// ContainsAlpha: блок прозрачен по краям, пока он не окружён полностью
func (b baseBehavior) ContainsAlpha(border block.Border) bool {
	return !border.Filled()
}
