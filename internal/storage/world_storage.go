package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/annel0/tileworld/internal/config"
	"github.com/annel0/tileworld/internal/logging"
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world"
)

var (
	ErrNotReady      = errors.New("хранилище не готово")
	ErrWorldNotFound = errors.New("мир не найден")
	ErrInvalidName   = errors.New("недопустимое имя")
)

// formatVersion — версия формата сохранения
const formatVersion = 1

// WorldMeta описывает сохранённый мир
type WorldMeta struct {
	Name      string    `json:"name"`
	NumChunks int       `json:"num_chunks"`
	ChunkSize int       `json:"chunk_size"`
	Version   int       `json:"version"`
	SavedAt   time.Time `json:"saved_at"`
}

// WorldStorage хранит миры в BadgerDB. Ключи:
//
//	world:<name>:meta             — WorldMeta в JSON
//	world:<name>:chunk:<cx>:<cy>  — виды блоков чанка, сжатые zstd
//	world:<name>:player:<player>  — PlayerState в JSON
type WorldStorage struct {
	db      *badger.DB
	dbPath  string
	codec   *chunkCodec
	mutex   sync.RWMutex
	isReady bool
	logger  *logging.Logger
}

// NewWorldStorage открывает хранилище в каталоге dataPath/world
func NewWorldStorage(dataPath string) (*WorldStorage, error) {
	dbPath := filepath.Join(dataPath, "world")
	return open(badger.DefaultOptions(dbPath), dbPath)
}

// NewInMemoryWorldStorage создаёт хранилище без записи на диск
func NewInMemoryWorldStorage() (*WorldStorage, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), "")
}

// Open выбирает хранилище по конфигурации
func Open(cfg config.StorageConfig) (*WorldStorage, error) {
	if cfg.InMemory {
		return NewInMemoryWorldStorage()
	}
	return NewWorldStorage(cfg.Path)
}

func open(opts badger.Options, dbPath string) (*WorldStorage, error) {
	opts = opts.WithLogger(nil) // Отключаем логирование BadgerDB

	codec, err := newChunkCodec()
	if err != nil {
		return nil, err
	}
	db, err := badger.Open(opts)
	if err != nil {
		codec.close()
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	return &WorldStorage{
		db:      db,
		dbPath:  dbPath,
		codec:   codec,
		isReady: true,
		logger:  logging.GetStorageLogger(),
	}, nil
}

// Close закрывает хранилище данных
func (ws *WorldStorage) Close() error {
	ws.mutex.Lock()
	defer ws.mutex.Unlock()

	if !ws.isReady {
		return nil
	}

	ws.isReady = false
	ws.codec.close()
	return ws.db.Close()
}

func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, ":") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func worldPrefix(name string) []byte { return []byte("world:" + name + ":") }
func metaKey(name string) []byte     { return []byte("world:" + name + ":meta") }
func chunkPrefix(name string) []byte { return []byte("world:" + name + ":chunk:") }

func chunkKey(name string, coords vec.Vec2) []byte {
	return []byte(fmt.Sprintf("world:%s:chunk:%d:%d", name, coords.X, coords.Y))
}

// begin проверяет готовность и контекст. Вызывающий держит RLock.
func (ws *WorldStorage) begin(ctx context.Context) error {
	if !ws.isReady {
		return ErrNotReady
	}
	return ctx.Err()
}

// SaveWorld записывает метаданные и все чанки снимка. Чанки, которых нет
// в снимке, остаются без изменений, поэтому снимок может быть частичным.
func (ws *WorldStorage) SaveWorld(ctx context.Context, name string, s *world.Snapshot) error {
	if err := validateName(name); err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("%w: пустой снимок", world.ErrSnapshotMismatch)
	}

	ws.mutex.RLock()
	defer ws.mutex.RUnlock()
	if err := ws.begin(ctx); err != nil {
		return err
	}

	meta, err := json.Marshal(WorldMeta{
		Name:      name,
		NumChunks: s.NumChunks,
		ChunkSize: s.ChunkSize,
		Version:   formatVersion,
		SavedAt:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("ошибка сериализации метаданных: %w", err)
	}

	wb := ws.db.NewWriteBatch()
	defer wb.Cancel()

	if err := wb.Set(metaKey(name), meta); err != nil {
		return fmt.Errorf("ошибка записи метаданных мира %q: %w", name, err)
	}
	for _, cs := range s.Chunks {
		if err := cs.Validate(s.NumChunks, s.ChunkSize); err != nil {
			return err
		}
		if err := wb.Set(chunkKey(name, cs.Coords), ws.codec.encode(cs)); err != nil {
			return fmt.Errorf("ошибка записи чанка %v: %w", cs.Coords, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	ws.logger.Debug("Мир %q: сохранено чанков %d", name, len(s.Chunks))
	return nil
}

// SaveDirty сохраняет только изменённые чанки и снимает с них отметку.
// Вызывается из горутины симуляции.
func (ws *WorldStorage) SaveDirty(ctx context.Context, name string, cm *world.ChunkManager) (int, error) {
	dirty := cm.DirtyChunks()
	if len(dirty) == 0 {
		return 0, nil
	}
	if err := ws.SaveWorld(ctx, name, cm.SnapshotChunks(dirty)); err != nil {
		return 0, err
	}
	cm.ClearDirty(dirty...)
	return len(dirty), nil
}

// LoadMeta читает метаданные мира
func (ws *WorldStorage) LoadMeta(ctx context.Context, name string) (*WorldMeta, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	ws.mutex.RLock()
	defer ws.mutex.RUnlock()
	if err := ws.begin(ctx); err != nil {
		return nil, err
	}

	var meta WorldMeta
	err := ws.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrWorldNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения метаданных мира %q: %w", name, err)
	}
	return &meta, nil
}

// LoadSnapshot читает все сохранённые чанки мира
func (ws *WorldStorage) LoadSnapshot(ctx context.Context, name string) (*world.Snapshot, error) {
	meta, err := ws.LoadMeta(ctx, name)
	if err != nil {
		return nil, err
	}

	ws.mutex.RLock()
	defer ws.mutex.RUnlock()
	if err := ws.begin(ctx); err != nil {
		return nil, err
	}

	s := &world.Snapshot{NumChunks: meta.NumChunks, ChunkSize: meta.ChunkSize}
	prefix := chunkPrefix(name)
	err = ws.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var coords vec.Vec2
			if _, err := fmt.Sscanf(string(item.Key()[len(prefix):]), "%d:%d", &coords.X, &coords.Y); err != nil {
				ws.logger.Warn("Некорректный ключ чанка %q: %v", item.Key(), err)
				continue
			}
			data, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			cs, err := ws.codec.decode(coords, meta.ChunkSize, data)
			if err != nil {
				return err
			}
			s.Chunks = append(s.Chunks, cs)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения мира %q: %w", name, err)
	}
	return s, nil
}

// LoadWorld восстанавливает сетку мира. Маски и освещение не хранятся:
// их выводит world.NewFromChunkManager.
func (ws *WorldStorage) LoadWorld(ctx context.Context, name string) (*world.ChunkManager, error) {
	s, err := ws.LoadSnapshot(ctx, name)
	if err != nil {
		return nil, err
	}
	cm, err := world.NewChunkManagerFromSnapshot(s)
	if err != nil {
		return nil, fmt.Errorf("восстановление мира %q: %w", name, err)
	}
	ws.logger.Info("Мир %q загружен: %d чанков", name, len(s.Chunks))
	return cm, nil
}

// DeleteWorld удаляет мир со всеми чанками и игроками
func (ws *WorldStorage) DeleteWorld(ctx context.Context, name string) error {
	if _, err := ws.LoadMeta(ctx, name); err != nil {
		return err
	}

	ws.mutex.RLock()
	defer ws.mutex.RUnlock()
	if err := ws.begin(ctx); err != nil {
		return err
	}

	var keys [][]byte
	err := ws.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = worldPrefix(name)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ошибка чтения ключей мира %q: %w", name, err)
	}

	wb := ws.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return fmt.Errorf("ошибка удаления %q: %w", k, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("ошибка удаления мира %q: %w", name, err)
	}
	ws.logger.Info("Мир %q удалён (%d ключей)", name, len(keys))
	return nil
}

// ListWorlds возвращает метаданные всех сохранённых миров, отсортированные по имени
func (ws *WorldStorage) ListWorlds(ctx context.Context) ([]WorldMeta, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()
	if err := ws.begin(ctx); err != nil {
		return nil, err
	}

	var worlds []WorldMeta
	err := ws.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("world:")
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			if parts := strings.Split(string(item.Key()), ":"); len(parts) != 3 || parts[2] != "meta" {
				continue
			}
			var meta WorldMeta
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &meta)
			}); err != nil {
				return fmt.Errorf("метаданные %q: %w", item.Key(), err)
			}
			worlds = append(worlds, meta)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения списка миров: %w", err)
	}

	sort.Slice(worlds, func(i, j int) bool { return worlds[i].Name < worlds[j].Name })
	return worlds, nil
}
