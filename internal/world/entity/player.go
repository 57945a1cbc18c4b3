package entity

import "github.com/annel0/tileworld/internal/vec"

// Параметры игрока (в пикселях)
const (
	PlayerWidth     = 12.0
	PlayerHeight    = 28.0
	PlayerSpeed     = 120.0 // Горизонтальная скорость, пикс/с
	PlayerJumpSpeed = 420.0 // Начальная скорость прыжка, пикс/с
)

// Player — управляемая пользователем сущность с уникальным именем и инвентарём
type Player struct {
	Body
	name      string
	Inventory *Inventory

	left, right, jump bool
	cursor            vec.Vec2Float // Позиция курсора в мировых пикселях
	buttons           map[int]bool
}

// NewPlayer создаёт игрока в точке (x, y) — левый верхний угол хитбокса
func NewPlayer(name string, x, y float64) *Player {
	return &Player{
		Body:      NewBody(x, y, PlayerWidth, PlayerHeight, true),
		name:      name,
		Inventory: NewInventory(DefaultInventorySlots),
		buttons:   make(map[int]bool),
	}
}

// Name возвращает имя игрока
func (p *Player) Name() string { return p.name }

func (p *Player) Type() EntityType { return EntityTypePlayer }

// Tick применяет ввод и физику
func (p *Player) Tick(d float64, w World) {
	p.Velocity.X = 0
	if p.left {
		p.Velocity.X -= PlayerSpeed
	}
	if p.right {
		p.Velocity.X += PlayerSpeed
	}
	if p.jump && p.OnGround {
		p.Velocity.Y = -PlayerJumpSpeed
		p.OnGround = false
	}
	p.integrate(d, w)
}

// Collect кладёт предмет в инвентарь. Возвращает true, если предмет поместился
// целиком и его нужно убрать из мира; иначе в предмете остаётся остаток.
func (p *Player) Collect(d *Drop) bool {
	if d == nil || d.Count <= 0 {
		return true
	}
	d.Count = p.Inventory.Add(d.Item, d.Count)
	return d.Count == 0
}

// HandleKeyEvent обрабатывает нажатие/отпускание клавиши
func (p *Player) HandleKeyEvent(keyCode int, keyChar rune, down bool, w World) {
	switch keyCode {
	case KeyLeft:
		p.left = down
	case KeyRight:
		p.right = down
	case KeyUp, KeySpace:
		p.jump = down
	default:
		if keyChar >= '1' && keyChar <= '9' && down {
			p.Inventory.Select(int(keyChar - '1'))
		}
	}
}

// HandleMouseEvent запоминает состояние кнопки и позицию курсора
func (p *Player) HandleMouseEvent(mouseX, mouseY float64, button int, down bool, w World) {
	p.cursor = vec.Vec2Float{X: mouseX, Y: mouseY}
	p.buttons[button] = down
}

// HandleMousePosition запоминает позицию курсора в мировых пикселях
func (p *Player) HandleMousePosition(mouseX, mouseY float64, w World) {
	p.cursor = vec.Vec2Float{X: mouseX, Y: mouseY}
}

// Cursor возвращает последнюю позицию курсора
func (p *Player) Cursor() vec.Vec2Float { return p.cursor }

// ButtonDown сообщает, зажата ли кнопка мыши
func (p *Player) ButtonDown(button int) bool { return p.buttons[button] }
