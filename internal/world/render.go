package world

import (
	"math"

	"github.com/annel0/tileworld/internal/world/block"
	"github.com/annel0/tileworld/internal/world/entity"
)

// Renderer получает видимое содержимое мира. Координаты блоков — мировые,
// в клетках; перевод в экранные выполняет сам рендерер по Viewport.
type Renderer interface {
	DrawBlock(x, y int, layer Layer, id block.ID, border block.Border, alpha bool, light uint8)
	DrawEntity(e entity.Entity)
}

// Render передаёт рендереру блоки и сущности, попадающие в окно просмотра.
// Задний план выводится раньше переднего, сущности — последними.
func (w *World) Render(r Renderer) {
	bs := float64(BlockPixelSize)
	vp := w.viewport
	x0 := max(int(math.Floor(vp.X/bs)), 0)
	y0 := max(int(math.Floor(vp.Y/bs)), 0)
	x1 := min(int(math.Ceil(vp.MaxX()/bs)), w.cm.TotalBlocks())
	y1 := min(int(math.Ceil(vp.MaxY()/bs)), w.cm.TotalBlocks())

	for l := Layer(0); l < MaxLayers; l++ {
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				b, ok := w.cm.GetBlock(x, y, l)
				if !ok {
					continue
				}
				r.DrawBlock(x, y, l, b.ID, b.Border, b.ContainsAlpha(), w.light.Light(x, y))
			}
		}
	}

	for _, e := range w.entities {
		if e.Bounds().Intersects(vp) {
			r.DrawEntity(e)
		}
	}
}
