package vec

import "math"

// Vec2 представляет 2D координаты в блоках
type Vec2 struct {
	X, Y int
}

// Add складывает два вектора
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// ToChunkCoords преобразует мировые координаты в координаты чанка.
// Деление с округлением вниз, чтобы отрицательные координаты не попадали в чанк 0.
func (v Vec2) ToChunkCoords(chunkSize int) Vec2 {
	return Vec2{X: floorDiv(v.X, chunkSize), Y: floorDiv(v.Y, chunkSize)}
}

// LocalInChunk возвращает локальные координаты внутри чанка
func (v Vec2) LocalInChunk(chunkSize int) Vec2 {
	return Vec2{X: floorMod(v.X, chunkSize), Y: floorMod(v.Y, chunkSize)}
}

// FromChunk собирает мировые координаты из координат чанка и локальной позиции
func FromChunk(chunk, local Vec2, chunkSize int) Vec2 {
	return Vec2{X: chunk.X*chunkSize + local.X, Y: chunk.Y*chunkSize + local.Y}
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2) DistanceTo(other Vec2) float64 {
	dx := float64(v.X - other.X)
	dy := float64(v.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}
