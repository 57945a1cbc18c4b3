package entity

// EntityType представляет тип сущности
type EntityType uint16

const (
	EntityTypeGeneric EntityType = iota
	EntityTypePlayer
	EntityTypeDrop
)

func (t EntityType) String() string {
	switch t {
	case EntityTypeGeneric:
		return "generic"
	case EntityTypePlayer:
		return "player"
	case EntityTypeDrop:
		return "drop"
	default:
		return "unknown"
	}
}

// Коды клавиш, которые понимает игрок. Сопоставление с физическими
// клавишами выполняет внешний слой ввода.
const (
	KeyLeft  = 37
	KeyUp    = 38
	KeyRight = 39
	KeyDown  = 40
	KeySpace = 32
	KeyF3    = 114
)

// Кнопки мыши
const (
	MouseLeft  = 1
	MouseRight = 3
)
