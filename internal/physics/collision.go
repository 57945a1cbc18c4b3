package physics

import (
	"math"

	"github.com/annel0/tileworld/internal/vec"
)

// Rect представляет прямоугольник, выровненный по осям (в пикселях)
type Rect struct {
	X, Y float64 // Левый верхний угол
	W, H float64 // Ширина и высота
}

// NewRect создаёт прямоугольник с указанными координатами и размерами
func NewRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// MaxX возвращает правую границу
func (r Rect) MaxX() float64 { return r.X + r.W }

// MaxY возвращает нижнюю границу
func (r Rect) MaxY() float64 { return r.Y + r.H }

// Mid возвращает центр прямоугольника
func (r Rect) Mid() vec.Vec2Float {
	return vec.Vec2Float{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Translate возвращает прямоугольник, сдвинутый на (dx, dy)
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// Intersects проверяет строгое пересечение: касание границами не считается столкновением
func (r Rect) Intersects(other Rect) bool {
	return r.X < other.MaxX() &&
		other.X < r.MaxX() &&
		r.Y < other.MaxY() &&
		other.Y < r.MaxY()
}

// Contains проверяет, что other целиком лежит внутри r
func (r Rect) Contains(other Rect) bool {
	return other.X >= r.X &&
		other.Y >= r.Y &&
		other.MaxX() <= r.MaxX() &&
		other.MaxY() <= r.MaxY()
}

// ClampInside сдвигает r так, чтобы он лежал внутри bounds (если помещается)
func (r Rect) ClampInside(bounds Rect) Rect {
	r.X = math.Max(bounds.X, math.Min(r.X, bounds.MaxX()-r.W))
	r.Y = math.Max(bounds.Y, math.Min(r.Y, bounds.MaxY()-r.H))
	return r
}

// Collider проверяет, пересекает ли прямоугольник что-либо непроходимое
type Collider interface {
	RectCollidesBlocks(r Rect) bool
}

// MoveAndCollide перемещает прямоугольник раздельно по осям.
// Возвращает новый прямоугольник и флаги блокировки по X и Y.
// Кинематика упрощённая: при столкновении перемещение по оси отменяется целиком.
func MoveAndCollide(r Rect, dx, dy float64, world Collider) (Rect, bool, bool) {
	blockedX, blockedY := false, false

	if dx != 0 {
		moved := r.Translate(dx, 0)
		if world != nil && world.RectCollidesBlocks(moved) {
			blockedX = true
		} else {
			r = moved
		}
	}

	if dy != 0 {
		moved := r.Translate(0, dy)
		if world != nil && world.RectCollidesBlocks(moved) {
			blockedY = true
		} else {
			r = moved
		}
	}

	return r, blockedX, blockedY
}
