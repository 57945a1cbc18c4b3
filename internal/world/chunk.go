package world

import (
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world/block"
)

// Chunk — квадратный участок мира size x size клеток на каждом слое.
// Клетки хранятся по значению; изменять их может только ChunkManager.
type Chunk struct {
	Coords vec.Vec2 // Координаты чанка в мире

	size   int
	layers [MaxLayers][]Block // layers[layer][y*size+x]
	dirty  bool               // Изменён после последнего сохранения
}

// NewChunk создаёт пустой чанк с указанными координатами
func NewChunk(coords vec.Vec2, size int) *Chunk {
	c := &Chunk{Coords: coords, size: size}
	for l := Layer(0); l < MaxLayers; l++ {
		cells := make([]Block, size*size)
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				cells[y*size+x] = Block{
					ID:    block.Empty,
					Layer: l,
					Local: vec.Vec2{X: x, Y: y},
					Chunk: coords,
				}
			}
		}
		c.layers[l] = cells
	}
	return c
}

// Size возвращает сторону чанка в клетках
func (c *Chunk) Size() int {
	return c.size
}

func (c *Chunk) inside(local vec.Vec2) bool {
	return local.X >= 0 && local.Y >= 0 && local.X < c.size && local.Y < c.size
}

// cell возвращает указатель на клетку. Координаты должны быть проверены вызывающим.
func (c *Chunk) cell(local vec.Vec2, layer Layer) *Block {
	return &c.layers[layer][local.Y*c.size+local.X]
}

// LocalBlock возвращает блок по локальным координатам.
// ok == false, если координаты вне чанка или клетка пуста.
func (c *Chunk) LocalBlock(local vec.Vec2, layer Layer) (Block, bool) {
	if !layer.Valid() || !c.inside(local) {
		return Block{}, false
	}
	b := *c.cell(local, layer)
	return b, !b.Empty()
}

// write заменяет вид блока и сбрасывает маску соседей. Возвращает прежнее содержимое.
func (c *Chunk) write(local vec.Vec2, id block.ID, layer Layer) Block {
	cell := c.cell(local, layer)
	old := *cell
	cell.ID = id
	cell.Border = 0
	c.dirty = true
	return old
}

// CountBlocks возвращает количество непустых клеток слоя
func (c *Chunk) CountBlocks(layer Layer) int {
	n := 0
	for i := range c.layers[layer] {
		if !c.layers[layer][i].Empty() {
			n++
		}
	}
	return n
}

// IsDirty сообщает, изменялся ли чанк после последнего сохранения
func (c *Chunk) IsDirty() bool {
	return c.dirty
}

// Snapshot копирует виды блоков чанка
func (c *Chunk) Snapshot() ChunkSnapshot {
	cs := ChunkSnapshot{Coords: c.Coords}
	for l := Layer(0); l < MaxLayers; l++ {
		ids := make([]block.ID, len(c.layers[l]))
		for i := range c.layers[l] {
			ids[i] = c.layers[l][i].ID
		}
		cs.Layers[l] = ids
	}
	return cs
}
