package world

import (
	"fmt"
	"math"
	"reflect"

	"github.com/annel0/tileworld/internal/world/entity"
)

// isNil отсекает как nil-интерфейс, так и типизированный nil-указатель
func isNil(e entity.Entity) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// AddEntity добавляет сущность в мир и во все индексы её типа.
// При переполнении предметов вытесняется самый старый.
func (w *World) AddEntity(e entity.Entity) error {
	if isNil(e) {
		return ErrNilEntity
	}
	if _, ok := w.present[e]; ok {
		return fmt.Errorf("%w: %s", ErrEntityExists, e.ID())
	}

	switch v := e.(type) {
	case *entity.Player:
		if _, taken := w.byName[v.Name()]; taken {
			return fmt.Errorf("%w: %q", ErrDuplicatePlayer, v.Name())
		}
		w.players = append(w.players, v)
		w.byName[v.Name()] = v
	case *entity.Drop:
		for len(w.drops) >= w.maxDrops {
			oldest := w.drops[0]
			w.logger.Trace("Вытеснен предмет %s: превышен предел %d", oldest.ID(), w.maxDrops)
			_ = w.RemoveEntity(oldest)
		}
		w.drops = append(w.drops, v)
	}

	w.entities = append(w.entities, e)
	w.present[e] = struct{}{}
	return nil
}

// RemoveEntity удаляет сущность из мира и из всех индексов
func (w *World) RemoveEntity(e entity.Entity) error {
	if isNil(e) {
		return ErrNilEntity
	}
	if _, ok := w.present[e]; !ok {
		return fmt.Errorf("%w: %s", ErrEntityNotFound, e.ID())
	}

	delete(w.present, e)
	w.entities = removeFirst(w.entities, e)

	switch v := e.(type) {
	case *entity.Player:
		w.players = removeFirst(w.players, v)
		delete(w.byName, v.Name())
	case *entity.Drop:
		w.drops = removeFirst(w.drops, v)
	}
	return nil
}

func removeFirst[T comparable](s []T, x T) []T {
	for i := range s {
		if s[i] == x {
			copy(s[i:], s[i+1:])
			var zero T
			s[len(s)-1] = zero
			return s[:len(s)-1]
		}
	}
	return s
}

// IsEntityExisting сообщает, находится ли сущность в мире. Для nil — false.
func (w *World) IsEntityExisting(e entity.Entity) bool {
	if isNil(e) {
		return false
	}
	_, ok := w.present[e]
	return ok
}

// Entities возвращает копию списка сущностей
func (w *World) Entities() []entity.Entity {
	out := make([]entity.Entity, len(w.entities))
	copy(out, w.entities)
	return out
}

// Players возвращает копию списка игроков в порядке добавления
func (w *World) Players() []*entity.Player {
	out := make([]*entity.Player, len(w.players))
	copy(out, w.players)
	return out
}

// Drops возвращает копию списка предметов от старых к новым
func (w *World) Drops() []*entity.Drop {
	out := make([]*entity.Drop, len(w.drops))
	copy(out, w.drops)
	return out
}

// Player возвращает игрока по имени
func (w *World) Player(name string) (*entity.Player, bool) {
	p, ok := w.byName[name]
	return p, ok
}

// NearestPlayer возвращает игрока, центр которого ближе всего к точке.
// При равенстве выигрывает добавленный раньше. Без игроков — nil.
func (w *World) NearestPlayer(x, y float64) *entity.Player {
	var nearest *entity.Player
	best := math.Inf(1)
	for _, p := range w.players {
		mid := p.Mid()
		dx, dy := mid.X-x, mid.Y-y
		if d2 := dx*dx + dy*dy; d2 < best {
			best, nearest = d2, p
		}
	}
	return nearest
}

// HandleKeyEvent передаёт событие клавиатуры сущностям, принимающим ввод
func (w *World) HandleKeyEvent(keyCode int, keyChar rune, down bool) {
	for _, e := range w.Entities() {
		if h, ok := e.(entity.InputHandler); ok {
			h.HandleKeyEvent(keyCode, keyChar, down, w)
		}
	}
}

// HandleMouseEvent передаёт нажатие кнопки мыши. Экранные координаты
// переводятся в мировые по окну просмотра.
func (w *World) HandleMouseEvent(mouseX, mouseY float64, button int, down bool) {
	x, y := w.ConvertXToWorld(mouseX), w.ConvertYToWorld(mouseY)
	for _, e := range w.Entities() {
		if h, ok := e.(entity.InputHandler); ok {
			h.HandleMouseEvent(x, y, button, down, w)
		}
	}
}

// HandleMousePosition передаёт перемещение курсора
func (w *World) HandleMousePosition(mouseX, mouseY float64) {
	x, y := w.ConvertXToWorld(mouseX), w.ConvertYToWorld(mouseY)
	for _, e := range w.Entities() {
		if h, ok := e.(entity.InputHandler); ok {
			h.HandleMousePosition(x, y, w)
		}
	}
}
