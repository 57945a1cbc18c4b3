package block

import "github.com/annel0/tileworld/internal/vec"

// Direction — направление на соседа. Ось Y направлена вниз.
type Direction uint8

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest

	NumDirections
)

// Offsets — смещения соседей по направлениям
var Offsets = [NumDirections]vec.Vec2{
	North:     {X: 0, Y: -1},
	NorthEast: {X: 1, Y: -1},
	East:      {X: 1, Y: 0},
	SouthEast: {X: 1, Y: 1},
	South:     {X: 0, Y: 1},
	SouthWest: {X: -1, Y: 1},
	West:      {X: -1, Y: 0},
	NorthWest: {X: -1, Y: -1},
}

// Border — маска соседей: бит направления установлен, если сосед
// существует и удовлетворяет IsValidNeighbor владельца.
type Border uint8

// BorderFilled — блок полностью окружён подходящими соседями
const BorderFilled Border = 0xFF

// Has проверяет бит направления
func (b Border) Has(d Direction) bool {
	return b&(1<<d) != 0
}

// With возвращает маску с установленным битом направления
func (b Border) With(d Direction) Border {
	return b | 1<<d
}

// Filled сообщает, окружён ли блок со всех восьми сторон
func (b Border) Filled() bool {
	return b == BorderFilled
}

// Cardinal возвращает 4-битную маску N/E/S/W (бит 0 — N, 1 — E, 2 — S, 3 — W)
func (b Border) Cardinal() uint8 {
	var m uint8
	if b.Has(North) {
		m |= 1
	}
	if b.Has(East) {
		m |= 2
	}
	if b.Has(South) {
		m |= 4
	}
	if b.Has(West) {
		m |= 8
	}
	return m
}

// ComputeBorder строит маску по функции поиска соседей
func ComputeBorder(behavior Behavior, pos vec.Vec2, neighbor func(vec.Vec2) ID) Border {
	var b Border
	for d := Direction(0); d < NumDirections; d++ {
		id := neighbor(pos.Add(Offsets[d]))
		if id != Empty && behavior.IsValidNeighbor(id) {
			b = b.With(d)
		}
	}
	return b
}
