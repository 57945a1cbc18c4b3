package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dgraph-io/badger/v3"

	"github.com/annel0/tileworld/internal/world"
	"github.com/annel0/tileworld/internal/world/entity"
)

// PlayerState — сохраняемое состояние игрока: позиция в пикселях и инвентарь.
// Привязано к имени игрока, а не к идентификатору сущности, поэтому
// переживает перезапуск.
type PlayerState struct {
	Name      string         `json:"name"`
	X         float64        `json:"x"`
	Y         float64        `json:"y"`
	Inventory []entity.Stack `json:"inventory"`
}

// PlayerStateOf снимает состояние игрока
func PlayerStateOf(p *entity.Player) PlayerState {
	b := p.Bounds()
	return PlayerState{Name: p.Name(), X: b.X, Y: b.Y, Inventory: p.Inventory.Slots()}
}

// NewPlayer создаёт игрока из сохранённого состояния
func (s PlayerState) NewPlayer() *entity.Player {
	p := entity.NewPlayer(s.Name, s.X, s.Y)
	p.Inventory.Restore(s.Inventory)
	return p
}

// PlayerRepo определяет интерфейс для сохранения и загрузки игроков мира
type PlayerRepo interface {
	// SavePlayer сохраняет состояние игрока
	SavePlayer(ctx context.Context, worldName string, state PlayerState) error

	// LoadPlayer загружает состояние; false — игрок входит впервые
	LoadPlayer(ctx context.Context, worldName, name string) (PlayerState, bool, error)

	// DeletePlayer удаляет сохранённое состояние
	DeletePlayer(ctx context.Context, worldName, name string) error

	// BatchSavePlayers сохраняет нескольких игроков одновременно (для автосохранения)
	BatchSavePlayers(ctx context.Context, worldName string, states []PlayerState) error

	// ListPlayers возвращает всех сохранённых игроков мира, упорядоченных по имени
	ListPlayers(ctx context.Context, worldName string) ([]PlayerState, error)
}

// RestorePlayers добавляет в мир всех сохранённых игроков. Вызывается до запуска
// цикла симуляции или через Runner.Submit. Возвращает количество добавленных игроков.
func RestorePlayers(ctx context.Context, repo PlayerRepo, w *world.World) (int, error) {
	states, err := repo.ListPlayers(ctx, w.Name())
	if err != nil {
		return 0, err
	}
	for i, s := range states {
		if err := w.AddEntity(s.NewPlayer()); err != nil {
			return i, fmt.Errorf("восстановление игрока %q: %w", s.Name, err)
		}
	}
	return len(states), nil
}

// SavePlayers сохраняет всех игроков мира одной пачкой
func SavePlayers(ctx context.Context, repo PlayerRepo, w *world.World) (int, error) {
	players := w.Players()
	if len(players) == 0 {
		return 0, nil
	}
	states := make([]PlayerState, 0, len(players))
	for _, p := range players {
		states = append(states, PlayerStateOf(p))
	}
	if err := repo.BatchSavePlayers(ctx, w.Name(), states); err != nil {
		return 0, err
	}
	return len(states), nil
}

var (
	_ PlayerRepo = (*WorldStorage)(nil)
	_ PlayerRepo = (*MemoryPlayerRepo)(nil)
)

func playerPrefix(worldName string) []byte {
	return []byte("world:" + worldName + ":player:")
}

func playerKey(worldName, name string) []byte {
	return append(playerPrefix(worldName), name...)
}

func validatePlayer(worldName, name string) error {
	if err := validateName(worldName); err != nil {
		return err
	}
	return validateName(name)
}

// SavePlayer сохраняет состояние игрока в BadgerDB
func (ws *WorldStorage) SavePlayer(ctx context.Context, worldName string, state PlayerState) error {
	return ws.BatchSavePlayers(ctx, worldName, []PlayerState{state})
}

// BatchSavePlayers сохраняет игроков одной пачкой
func (ws *WorldStorage) BatchSavePlayers(ctx context.Context, worldName string, states []PlayerState) error {
	for _, s := range states {
		if err := validatePlayer(worldName, s.Name); err != nil {
			return err
		}
	}

	ws.mutex.RLock()
	defer ws.mutex.RUnlock()
	if err := ws.begin(ctx); err != nil {
		return err
	}

	wb := ws.db.NewWriteBatch()
	defer wb.Cancel()
	for _, s := range states {
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("ошибка сериализации игрока %q: %w", s.Name, err)
		}
		if err := wb.Set(playerKey(worldName, s.Name), data); err != nil {
			return fmt.Errorf("ошибка записи игрока %q: %w", s.Name, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("ошибка сохранения игроков в BadgerDB: %w", err)
	}
	return nil
}

// LoadPlayer загружает состояние игрока из BadgerDB
func (ws *WorldStorage) LoadPlayer(ctx context.Context, worldName, name string) (PlayerState, bool, error) {
	if err := validatePlayer(worldName, name); err != nil {
		return PlayerState{}, false, err
	}

	ws.mutex.RLock()
	defer ws.mutex.RUnlock()
	if err := ws.begin(ctx); err != nil {
		return PlayerState{}, false, err
	}

	var state PlayerState
	err := ws.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(playerKey(worldName, name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &state)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return PlayerState{}, false, nil
	}
	if err != nil {
		return PlayerState{}, false, fmt.Errorf("ошибка чтения игрока %q: %w", name, err)
	}
	return state, true, nil
}

// DeletePlayer удаляет состояние игрока из BadgerDB
func (ws *WorldStorage) DeletePlayer(ctx context.Context, worldName, name string) error {
	if err := validatePlayer(worldName, name); err != nil {
		return err
	}

	ws.mutex.RLock()
	defer ws.mutex.RUnlock()
	if err := ws.begin(ctx); err != nil {
		return err
	}

	return ws.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(playerKey(worldName, name))
	})
}

// ListPlayers читает всех игроков мира из BadgerDB
func (ws *WorldStorage) ListPlayers(ctx context.Context, worldName string) ([]PlayerState, error) {
	if err := validateName(worldName); err != nil {
		return nil, err
	}

	ws.mutex.RLock()
	defer ws.mutex.RUnlock()
	if err := ws.begin(ctx); err != nil {
		return nil, err
	}

	var states []PlayerState
	err := ws.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = playerPrefix(worldName)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var state PlayerState
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &state)
			}); err != nil {
				return err
			}
			states = append(states, state)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения игроков мира %q: %w", worldName, err)
	}
	return states, nil
}

// MemoryPlayerRepo реализует PlayerRepo в памяти.
// Используется в тестах и при запуске без хранилища.
// ВНИМАНИЕ: Данные теряются при перезапуске сервера!
type MemoryPlayerRepo struct {
	mu   sync.RWMutex
	data map[string]map[string]PlayerState // мир -> имя -> состояние
}

// NewMemoryPlayerRepo создаёт репозиторий игроков в памяти
func NewMemoryPlayerRepo() *MemoryPlayerRepo {
	return &MemoryPlayerRepo{data: make(map[string]map[string]PlayerState)}
}

func (r *MemoryPlayerRepo) SavePlayer(ctx context.Context, worldName string, state PlayerState) error {
	return r.BatchSavePlayers(ctx, worldName, []PlayerState{state})
}

func (r *MemoryPlayerRepo) BatchSavePlayers(ctx context.Context, worldName string, states []PlayerState) error {
	for _, s := range states {
		if err := validatePlayer(worldName, s.Name); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	players, ok := r.data[worldName]
	if !ok {
		players = make(map[string]PlayerState)
		r.data[worldName] = players
	}
	for _, s := range states {
		s.Inventory = append([]entity.Stack(nil), s.Inventory...)
		players[s.Name] = s
	}
	return nil
}

func (r *MemoryPlayerRepo) LoadPlayer(ctx context.Context, worldName, name string) (PlayerState, bool, error) {
	if err := validatePlayer(worldName, name); err != nil {
		return PlayerState{}, false, err
	}
	if err := ctx.Err(); err != nil {
		return PlayerState{}, false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.data[worldName][name]
	return s, ok, nil
}

func (r *MemoryPlayerRepo) DeletePlayer(ctx context.Context, worldName, name string) error {
	if err := validatePlayer(worldName, name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data[worldName], name)
	return nil
}

func (r *MemoryPlayerRepo) ListPlayers(ctx context.Context, worldName string) ([]PlayerState, error) {
	if err := validateName(worldName); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	states := make([]PlayerState, 0, len(r.data[worldName]))
	for _, s := range r.data[worldName] {
		s.Inventory = append([]entity.Stack(nil), s.Inventory...)
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Name < states[j].Name })
	return states, nil
}
