package block

import (
	"github.com/annel0/tileworld/internal/vec"
)

// Cell описывает клетку, для которой вызывается поведение блока
type Cell struct {
	Pos        vec.Vec2 // Мировые координаты блока
	Foreground bool     // Слой: передний или задний план
	Border     Border   // Текущая маска соседей
}

// Reaction — результат реактивного правила блока.
// Если Ok, сетка заменит блок на Replace в том же коммите.
type Reaction struct {
	Replace ID
	Ok      bool
}

// Keep означает, что блок остаётся без изменений
func Keep() Reaction {
	return Reaction{}
}

// ReplaceWith просит сетку заменить блок указанным видом
func ReplaceWith(id ID) Reaction {
	return Reaction{Replace: id, Ok: true}
}

// Behavior определяет поведение вида блока. Один экземпляр на вид, без состояния:
// всё состояние клетки хранит сетка.
type Behavior interface {
	ID() ID
	Name() string

	// IsValidNeighbor сообщает, считается ли соседний вид "своим" для автотайлинга
	IsValidNeighbor(neighbor ID) bool

	// Init вызывается один раз сразу после установки блока
	Init(c Cell) Reaction

	// Update вызывается при каждом реактивном проходе (после изменения соседей)
	Update(c Cell) Reaction

	// ContainsAlpha сообщает, пропускает ли блок свет при данной маске соседей
	ContainsAlpha(b Border) bool

	// Solid сообщает, есть ли у блока прямоугольник коллизии
	Solid() bool

	// LightEmission возвращает собственную яркость блока (0 — не светится)
	LightEmission() uint8

	// Destroy освобождает ресурсы блока перед заменой
	Destroy(c Cell)
}
