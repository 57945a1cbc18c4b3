package block

import "fmt"

var registry [NumIDs]Behavior

// Register добавляет поведение блока в регистр
func Register(id ID, behavior Behavior) {
	if id == Empty || id >= NumIDs {
		panic(fmt.Sprintf("block: недопустимый ID для регистрации: %d", id))
	}
	registry[id] = behavior
}

// Get возвращает поведение для указанного ID
func Get(id ID) (Behavior, bool) {
	if id >= NumIDs {
		return nil, false
	}
	behavior := registry[id]
	return behavior, behavior != nil
}

// MustGet возвращает поведение или паникует: блок неизвестного вида в сетке —
// нарушение инварианта, а не штатная ситуация.
func MustGet(id ID) Behavior {
	behavior, ok := Get(id)
	if !ok {
		panic(fmt.Sprintf("block: поведение для ID %d не зарегистрировано", id))
	}
	return behavior
}

// IsValidBlockID проверяет, является ли ID допустимым идентификатором блока
func IsValidBlockID(id ID) bool {
	_, exists := Get(id)
	return exists
}

// ID представляет идентификатор вида блока
type ID uint8

// Константы ID блоков. Empty — пустая клетка (небо/воздух).
const (
	Empty ID = iota
	Earth
	Grass
	Rock
	Lightstone
	Treewood
	Leaves
	Wood

	NumIDs // всегда последний: количество видов
)

// String возвращает имя вида блока
func (id ID) String() string {
	if id == Empty {
		return "Empty"
	}
	if behavior, ok := Get(id); ok {
		return behavior.Name()
	}
	return fmt.Sprintf("Block(%d)", uint8(id))
}

// Set — множество видов блоков (битовая маска), используется для таблиц соседства
type Set uint16

// NewSet создаёт множество из перечисленных видов
func NewSet(ids ...ID) Set {
	var s Set
	for _, id := range ids {
		s |= 1 << id
	}
	return s
}

// Has проверяет принадлежность вида множеству. Empty никогда не входит.
func (s Set) Has(id ID) bool {
	if id == Empty || id >= NumIDs {
		return false
	}
	return s&(1<<id) != 0
}
