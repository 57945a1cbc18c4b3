package entity

import (
	"github.com/google/uuid"

	"github.com/annel0/tileworld/internal/physics"
	"github.com/annel0/tileworld/internal/vec"
)

// Gravity — ускорение свободного падения в пикселях/с²
const Gravity = 2 * 64 * 9.81

// World — то, что сущности нужно знать о мире для движения
type World interface {
	physics.Collider
	Bounds() physics.Rect
}

// Entity — общий интерфейс всех обитателей мира
type Entity interface {
	ID() uuid.UUID
	Type() EntityType
	Bounds() physics.Rect
	Mid() vec.Vec2Float

	// Tick продвигает сущность на d секунд
	Tick(d float64, w World)
}

// InputHandler реализуют сущности, принимающие ввод пользователя
type InputHandler interface {
	HandleKeyEvent(keyCode int, keyChar rune, down bool, w World)
	HandleMouseEvent(mouseX, mouseY float64, button int, down bool, w World)
	HandleMousePosition(mouseX, mouseY float64, w World)
}

// Body — кинематическое тело: прямоугольник в пикселях и скорость.
// Встраивается в конкретные сущности.
type Body struct {
	id       uuid.UUID
	rect     physics.Rect
	Velocity vec.Vec2Float // Скорость в пикселях/с
	OnGround bool          // Стоит ли тело на блоке
	Gravity  bool          // Подвержено ли тело гравитации
}

// NewBody создаёт тело с новым идентификатором
func NewBody(x, y, w, h float64, gravity bool) Body {
	return Body{
		id:      uuid.New(),
		rect:    physics.NewRect(x, y, w, h),
		Gravity: gravity,
	}
}

// ID возвращает уникальный идентификатор
func (b *Body) ID() uuid.UUID { return b.id }

// Bounds возвращает прямоугольник тела
func (b *Body) Bounds() physics.Rect { return b.rect }

// Mid возвращает центр тела
func (b *Body) Mid() vec.Vec2Float { return b.rect.Mid() }

// SetPosition перемещает тело без проверки коллизий
func (b *Body) SetPosition(x, y float64) {
	b.rect.X, b.rect.Y = x, y
}

// Move сдвигает тело с учётом коллизий. Возвращает true, если сдвиг выполнен полностью.
func (b *Body) Move(dx, dy float64, w World) bool {
	var blockedX, blockedY bool
	b.rect, blockedX, blockedY = physics.MoveAndCollide(b.rect, dx, dy, w)
	return !blockedX && !blockedY
}

// integrate применяет гравитацию и скорость за d секунд
func (b *Body) integrate(d float64, w World) {
	if b.Gravity {
		b.Velocity.Y += Gravity * d
	}

	var blockedX, blockedY bool
	b.rect, blockedX, blockedY = physics.MoveAndCollide(b.rect, b.Velocity.X*d, b.Velocity.Y*d, w)
	if blockedX {
		b.Velocity.X = 0
	}
	b.OnGround = false
	if blockedY {
		if b.Velocity.Y > 0 {
			b.OnGround = true
		}
		b.Velocity.Y = 0
	}

	if w != nil {
		bounds := w.Bounds()
		clamped := b.rect.ClampInside(bounds)
		if clamped.MaxY() < b.rect.MaxY() && b.Velocity.Y > 0 {
			b.Velocity.Y = 0
			b.OnGround = true
		}
		b.rect = clamped
	}
}

// Generic — сущность без собственного поведения: только физика
type Generic struct {
	Body
}

// NewGeneric создаёт сущность, подверженную гравитации
func NewGeneric(x, y, w, h float64) *Generic {
	return &Generic{Body: NewBody(x, y, w, h, true)}
}

func (g *Generic) Type() EntityType { return EntityTypeGeneric }

func (g *Generic) Tick(d float64, w World) {
	g.integrate(d, w)
}
