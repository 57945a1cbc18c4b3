package world

// Layer определяет план клетки.
// Задний план декоративный, передний участвует в коллизиях и перекрывает свет.
//
// 0 – LayerBackground: стены/фон;
// 1 – LayerForeground: твёрдые блоки, по которым ходят сущности.
type Layer uint8

const (
	LayerBackground Layer = iota
	LayerForeground

	MaxLayers // всегда последний: количество слоев
)

// LayerOf переводит булев флаг переднего плана в слой
func LayerOf(foreground bool) Layer {
	if foreground {
		return LayerForeground
	}
	return LayerBackground
}

// Foreground сообщает, является ли слой передним планом
func (l Layer) Foreground() bool {
	return l == LayerForeground
}

// Valid проверяет, что слой существует
func (l Layer) Valid() bool {
	return l < MaxLayers
}

func (l Layer) String() string {
	switch l {
	case LayerBackground:
		return "background"
	case LayerForeground:
		return "foreground"
	default:
		return "unknown"
	}
}
