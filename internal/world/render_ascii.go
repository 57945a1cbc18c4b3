package world

import (
	"bytes"
	"io"
	"math"

	"github.com/annel0/tileworld/internal/physics"
	"github.com/annel0/tileworld/internal/world/block"
	"github.com/annel0/tileworld/internal/world/entity"
)

var asciiGlyphs = [block.NumIDs]byte{
	block.Empty:      ' ',
	block.Earth:      '#',
	block.Grass:      '"',
	block.Rock:       '%',
	block.Lightstone: '*',
	block.Treewood:   '|',
	block.Leaves:     '&',
	block.Wood:       '=',
}

// ASCIIRenderer рисует окно просмотра в текстовую сетку: одна клетка — один символ.
// Непустой задний план без переднего блока выводится точкой.
type ASCIIRenderer struct {
	originX, originY int
	cells            [][]byte
}

// NewASCIIRenderer создаёт сетку, покрывающую окно просмотра
func NewASCIIRenderer(viewport physics.Rect) *ASCIIRenderer {
	bs := float64(BlockPixelSize)
	x0 := int(math.Floor(viewport.X / bs))
	y0 := int(math.Floor(viewport.Y / bs))
	w := int(math.Ceil(viewport.MaxX()/bs)) - x0
	h := int(math.Ceil(viewport.MaxY()/bs)) - y0

	r := &ASCIIRenderer{originX: x0, originY: y0, cells: make([][]byte, max(h, 0))}
	for i := range r.cells {
		r.cells[i] = bytes.Repeat([]byte{' '}, max(w, 0))
	}
	return r
}

func (r *ASCIIRenderer) put(x, y int, c byte) {
	y -= r.originY
	x -= r.originX
	if y < 0 || y >= len(r.cells) || x < 0 || x >= len(r.cells[y]) {
		return
	}
	r.cells[y][x] = c
}

// DrawBlock реализует Renderer
func (r *ASCIIRenderer) DrawBlock(x, y int, layer Layer, id block.ID, border block.Border, alpha bool, light uint8) {
	if id == block.Empty || int(id) >= len(asciiGlyphs) {
		return
	}
	if layer == LayerBackground {
		r.put(x, y, '.')
		return
	}
	r.put(x, y, asciiGlyphs[id])
}

// DrawEntity реализует Renderer
func (r *ASCIIRenderer) DrawEntity(e entity.Entity) {
	c := byte('e')
	switch e.Type() {
	case entity.EntityTypePlayer:
		c = '@'
	case entity.EntityTypeDrop:
		c = 'o'
	}
	mid := e.Mid()
	bs := float64(BlockPixelSize)
	r.put(int(math.Floor(mid.X/bs)), int(math.Floor(mid.Y/bs)), c)
}

// String возвращает сетку построчно
func (r *ASCIIRenderer) String() string {
	var buf bytes.Buffer
	_, _ = r.WriteTo(&buf)
	return buf.String()
}

// WriteTo выводит сетку, каждая строка завершается переводом строки
func (r *ASCIIRenderer) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, row := range r.cells {
		n, err := w.Write(row)
		total += int64(n)
		if err != nil {
			return total, err
		}
		n, err = w.Write([]byte{'\n'})
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
