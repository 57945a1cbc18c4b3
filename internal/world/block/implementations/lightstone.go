package implementations

import "github.com/annel0/tileworld/internal/world/block"

// LightstoneEmission — яркость светящегося камня (максимальная)
const LightstoneEmission uint8 = 15

// LightstoneBehavior — светящийся камень, источник света под землёй
type LightstoneBehavior struct {
	baseBehavior
}

// NewLightstoneBehavior создаёт поведение светящегося камня
func NewLightstoneBehavior() *LightstoneBehavior {
	return &LightstoneBehavior{baseBehavior{
		id:        block.Lightstone,
		name:      "Lightstone",
		neighbors: block.NewSet(block.Lightstone, block.Rock, block.Earth),
	}}
}

// LightEmission возвращает яркость свечения
func (b *LightstoneBehavior) LightEmission() uint8 {
	return LightstoneEmission
}
