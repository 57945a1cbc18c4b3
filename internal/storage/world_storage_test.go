package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/tileworld/internal/config"
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world"
	"github.com/annel0/tileworld/internal/world/block"
	"github.com/annel0/tileworld/internal/world/entity"
)

func setupTestStorage(t *testing.T) *WorldStorage {
	t.Helper()
	storage, err := NewInMemoryWorldStorage()
	if err != nil {
		t.Fatalf("Не удалось создать хранилище: %v", err)
	}
	t.Cleanup(func() { storage.Close() })
	return storage
}

func smallWorld(t *testing.T) *world.World {
	t.Helper()
	cfg := config.Default().World
	cfg.NumChunks = 2
	cfg.ChunkSize = 16
	cfg.Seed = 99
	w, err := world.New(cfg, "test")
	require.NoError(t, err)
	return w
}

func TestSaveAndLoadWorld(t *testing.T) {
	storage := setupTestStorage(t)
	ctx := context.Background()
	w := smallWorld(t)
	cm := w.ChunkManager()

	if err := storage.SaveWorld(ctx, "test", cm.Snapshot()); err != nil {
		t.Fatalf("Ошибка сохранения мира: %v", err)
	}

	loaded, err := storage.LoadWorld(ctx, "test")
	if err != nil {
		t.Fatalf("Ошибка загрузки мира: %v", err)
	}
	assert.Equal(t, cm.NumChunks(), loaded.NumChunks())
	assert.Equal(t, cm.ChunkSize(), loaded.ChunkSize())

	restored, err := world.NewFromChunkManager(loaded, "test")
	require.NoError(t, err)

	total := cm.TotalBlocks()
	for l := world.Layer(0); l < world.MaxLayers; l++ {
		for y := 0; y < total; y++ {
			for x := 0; x < total; x++ {
				want, _ := cm.GetBlock(x, y, l)
				got, _ := restored.GetBlock(x, y, l)
				if want.ID != got.ID || want.Border != got.Border {
					t.Fatalf("Клетка (%d, %d) слой %s: %s/%08b, ожидалось %s/%08b",
						x, y, l, got.ID, got.Border, want.ID, want.Border)
				}
				if w.Light().Light(x, y) != restored.Light().Light(x, y) {
					t.Fatalf("Освещение (%d, %d) не совпадает после загрузки", x, y)
				}
			}
		}
	}
}

func TestSaveDirty(t *testing.T) {
	storage := setupTestStorage(t)
	ctx := context.Background()
	cm, err := world.NewChunkManager(2, 8)
	require.NoError(t, err)

	require.NoError(t, storage.SaveWorld(ctx, "dirty", cm.Snapshot()))
	n, err := storage.SaveDirty(ctx, "dirty", cm)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "без изменений сохранять нечего")

	require.NoError(t, cm.SetBlock(12, 3, block.Lightstone, world.LayerForeground))
	n, err = storage.SaveDirty(ctx, "dirty", cm)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, cm.DirtyChunks())

	s, err := storage.LoadSnapshot(ctx, "dirty")
	require.NoError(t, err)
	assert.Len(t, s.Chunks, 4, "частичное сохранение не удаляет остальные чанки")

	loaded, err := storage.LoadWorld(ctx, "dirty")
	require.NoError(t, err)
	b, ok := loaded.GetBlock(12, 3, world.LayerForeground)
	require.True(t, ok)
	assert.Equal(t, block.Lightstone, b.ID)
}

func TestLoadWorld_NotFound(t *testing.T) {
	storage := setupTestStorage(t)
	_, err := storage.LoadWorld(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrWorldNotFound)

	assert.ErrorIs(t, storage.DeleteWorld(context.Background(), "missing"), ErrWorldNotFound)
}

func TestInvalidNames(t *testing.T) {
	storage := setupTestStorage(t)
	ctx := context.Background()
	s := &world.Snapshot{NumChunks: 1, ChunkSize: 1}

	assert.ErrorIs(t, storage.SaveWorld(ctx, "", s), ErrInvalidName)
	assert.ErrorIs(t, storage.SaveWorld(ctx, "a:b", s), ErrInvalidName)
	assert.ErrorIs(t, storage.SavePlayer(ctx, "w", PlayerState{Name: ""}), ErrInvalidName)
	assert.ErrorIs(t, storage.SaveWorld(ctx, "ok", nil), world.ErrSnapshotMismatch)

	bad := &world.Snapshot{NumChunks: 1, ChunkSize: 2, Chunks: []world.ChunkSnapshot{{Coords: vec.Vec2{X: 3, Y: 0}}}}
	assert.ErrorIs(t, storage.SaveWorld(ctx, "ok", bad), world.ErrSnapshotMismatch)
}

func TestListAndDeleteWorlds(t *testing.T) {
	storage := setupTestStorage(t)
	ctx := context.Background()
	cm, err := world.NewChunkManager(1, 4)
	require.NoError(t, err)

	for _, name := range []string{"beta", "alpha"} {
		require.NoError(t, storage.SaveWorld(ctx, name, cm.Snapshot()))
	}
	require.NoError(t, storage.SavePlayer(ctx, "alpha", PlayerState{Name: "meta"}))

	worlds, err := storage.ListWorlds(ctx)
	require.NoError(t, err)
	require.Len(t, worlds, 2, "ключи игроков не должны попадать в список миров")
	assert.Equal(t, "alpha", worlds[0].Name)
	assert.Equal(t, "beta", worlds[1].Name)
	assert.Equal(t, 4, worlds[0].ChunkSize)
	assert.Equal(t, formatVersion, worlds[0].Version)

	require.NoError(t, storage.DeleteWorld(ctx, "alpha"))
	worlds, err = storage.ListWorlds(ctx)
	require.NoError(t, err)
	require.Len(t, worlds, 1)
	assert.Equal(t, "beta", worlds[0].Name)

	_, found, err := storage.LoadPlayer(ctx, "alpha", "meta")
	require.NoError(t, err)
	assert.False(t, found, "игроки удаляются вместе с миром")
}

func TestClosedStorage(t *testing.T) {
	storage, err := NewInMemoryWorldStorage()
	require.NoError(t, err)
	require.NoError(t, storage.Close())
	require.NoError(t, storage.Close(), "повторное закрытие безопасно")

	_, err = storage.ListWorlds(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestCanceledContext(t *testing.T) {
	storage := setupTestStorage(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cm, err := world.NewChunkManager(1, 4)
	require.NoError(t, err)
	assert.ErrorIs(t, storage.SaveWorld(ctx, "w", cm.Snapshot()), context.Canceled)
}

func testPlayerRepo(t *testing.T, repo PlayerRepo) {
	ctx := context.Background()

	_, found, err := repo.LoadPlayer(ctx, "w", "alice")
	require.NoError(t, err)
	assert.False(t, found, "новый игрок не найден")

	p := entity.NewPlayer("alice", 40, 80)
	p.Inventory.Add(entity.ItemRock, 12)
	require.NoError(t, repo.SavePlayer(ctx, "w", PlayerStateOf(p)))

	state, found, err := repo.LoadPlayer(ctx, "w", "alice")
	require.NoError(t, err)
	require.True(t, found)
	restored := state.NewPlayer()
	assert.Equal(t, "alice", restored.Name())
	assert.Equal(t, p.Bounds(), restored.Bounds())
	assert.Equal(t, 12, restored.Inventory.Count(entity.ItemRock))

	require.NoError(t, repo.BatchSavePlayers(ctx, "w", []PlayerState{{Name: "bob", X: 1}, {Name: "carol", Y: 2}}))
	_, found, err = repo.LoadPlayer(ctx, "w", "carol")
	require.NoError(t, err)
	assert.True(t, found)
	_, found, err = repo.LoadPlayer(ctx, "other", "carol")
	require.NoError(t, err)
	assert.False(t, found, "игроки разных миров независимы")

	require.NoError(t, repo.DeletePlayer(ctx, "w", "alice"))
	_, found, err = repo.LoadPlayer(ctx, "w", "alice")
	require.NoError(t, err)
	assert.False(t, found)

	states, err := repo.ListPlayers(ctx, "w")
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "bob", states[0].Name)
	assert.Equal(t, "carol", states[1].Name)
	assert.Equal(t, 2.0, states[1].Y)

	states, err = repo.ListPlayers(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, states)
}

func TestPlayerRepo_Badger(t *testing.T) {
	testPlayerRepo(t, setupTestStorage(t))
}

func TestPlayerRepo_Memory(t *testing.T) {
	testPlayerRepo(t, NewMemoryPlayerRepo())
}

func TestRestoreAndSavePlayers(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPlayerRepo()

	w := smallWorld(t)
	p := entity.NewPlayer("alice", 32, 16)
	p.Inventory.Add(entity.ItemWood, 7)
	require.NoError(t, w.AddEntity(p))

	n, err := SavePlayers(ctx, repo, w)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	restored := smallWorld(t)
	n, err = RestorePlayers(ctx, repo, restored)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, ok := restored.Player("alice")
	require.True(t, ok, "игрок восстановлен после перезапуска")
	assert.Equal(t, p.Bounds(), got.Bounds())
	assert.Equal(t, 7, got.Inventory.Count(entity.ItemWood))

	_, err = RestorePlayers(ctx, repo, restored)
	assert.ErrorIs(t, err, world.ErrDuplicatePlayer)
}
