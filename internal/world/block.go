package world

import (
	"github.com/annel0/tileworld/internal/physics"
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world/block"
)

// Block — содержимое одной клетки сетки. Хранится по значению в массиве чанка
// и ссылается на свой чанк только координатами.
type Block struct {
	ID     block.ID     // Вид блока (Empty — клетка пуста)
	Border block.Border // Маска подходящих соседей
	Layer  Layer        // План клетки
	Local  vec.Vec2     // Координаты внутри чанка
	Chunk  vec.Vec2     // Координаты чанка
}

// Empty сообщает, пуста ли клетка
func (b Block) Empty() bool {
	return b.ID == block.Empty
}

// World возвращает мировые координаты блока
func (b Block) World(chunkSize int) vec.Vec2 {
	return vec.FromChunk(b.Chunk, b.Local, chunkSize)
}

// Behavior возвращает поведение вида блока. Для пустой клетки — nil.
func (b Block) Behavior() block.Behavior {
	if b.Empty() {
		return nil
	}
	return block.MustGet(b.ID)
}

// Cell строит описание клетки для вызова поведения
func (b Block) Cell(chunkSize int) block.Cell {
	return block.Cell{
		Pos:        b.World(chunkSize),
		Foreground: b.Layer.Foreground(),
		Border:     b.Border,
	}
}

// ContainsAlpha сообщает, пропускает ли клетка свет. Пустая клетка прозрачна.
func (b Block) ContainsAlpha() bool {
	if b.Empty() {
		return true
	}
	return b.Behavior().ContainsAlpha(b.Border)
}

// Solid сообщает, участвует ли блок в коллизиях
func (b Block) Solid() bool {
	if b.Empty() || !b.Layer.Foreground() {
		return false
	}
	return b.Behavior().Solid()
}

// LightEmission возвращает собственную яркость блока
func (b Block) LightEmission() uint8 {
	if b.Empty() {
		return 0
	}
	return b.Behavior().LightEmission()
}

// CollisionRects возвращает прямоугольники коллизии в пикселях
func (b Block) CollisionRects(chunkSize, blockSize int) []physics.Rect {
	if !b.Solid() {
		return nil
	}
	pos := b.World(chunkSize)
	size := float64(blockSize)
	return []physics.Rect{physics.NewRect(float64(pos.X)*size, float64(pos.Y)*size, size, size)}
}
