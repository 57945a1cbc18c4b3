package world

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world/block"
)

// fillerFunc позволяет задать заполнение чанков функцией от мировых координат
type fillerFunc func(x, y int, layer Layer) block.ID

func (f fillerFunc) FillChunk(coords vec.Vec2, size int, set func(local vec.Vec2, id block.ID, layer Layer)) {
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			local := vec.Vec2{X: x, Y: y}
			w := vec.FromChunk(coords, local, size)
			for l := Layer(0); l < MaxLayers; l++ {
				if id := f(w.X, w.Y, l); id != block.Empty {
					set(local, id, l)
				}
			}
		}
	}
}

// recordingObserver запоминает уведомления сетки
type recordingObserver struct {
	regions [][2]vec.Vec2
	whole   int
}

func (o *recordingObserver) RegionChanged(min, max vec.Vec2) {
	o.regions = append(o.regions, [2]vec.Vec2{min, max})
}

func (o *recordingObserver) WorldChanged() { o.whole++ }

func newTestManager(t *testing.T, numChunks, chunkSize int) *ChunkManager {
	t.Helper()
	cm, err := NewChunkManager(numChunks, chunkSize)
	require.NoError(t, err)
	return cm
}

// assertBordersConsistent проверяет, что сохранённые маски совпадают с пересчитанными
func assertBordersConsistent(t *testing.T, cm *ChunkManager) {
	t.Helper()
	total := cm.TotalBlocks()
	for l := Layer(0); l < MaxLayers; l++ {
		for y := 0; y < total; y++ {
			for x := 0; x < total; x++ {
				b, ok := cm.GetBlock(x, y, l)
				if !ok {
					continue
				}
				want := block.ComputeBorder(b.Behavior(), vec.Vec2{X: x, Y: y}, cm.idAt(l))
				if b.Border != want {
					t.Errorf("маска блока %s в (%d, %d) слой %s: %08b, ожидалось %08b", b.ID, x, y, l, b.Border, want)
				}
			}
		}
	}
}

func TestNewChunkManager_InvalidSize(t *testing.T) {
	_, err := NewChunkManager(0, 16)
	assert.True(t, errors.Is(err, ErrInvalidSize))

	_, err = NewChunkManager(2, -1)
	assert.True(t, errors.Is(err, ErrInvalidSize))
}

func TestChunkManager_GetBlockOutOfBounds(t *testing.T) {
	cm := newTestManager(t, 2, 8)

	for _, p := range []vec.Vec2{{X: -1, Y: 0}, {X: 0, Y: -1}, {X: 16, Y: 0}, {X: 0, Y: 16}, {X: -100, Y: -100}} {
		_, ok := cm.GetBlock(p.X, p.Y, LayerForeground)
		assert.False(t, ok, "клетка %v вне мира должна отсутствовать", p)
	}

	require.NoError(t, cm.SetBlock(3, 3, block.Rock, LayerForeground))
	_, ok := cm.GetBlock(3, 3, Layer(7))
	assert.False(t, ok, "недопустимый слой должен давать промах")

	_, ok = cm.GetBlock(3, 3, LayerBackground)
	assert.False(t, ok, "пустая клетка заднего плана должна отсутствовать")
}

func TestChunkManager_SetBlockErrors(t *testing.T) {
	cm := newTestManager(t, 2, 8)

	assert.ErrorIs(t, cm.SetBlock(-1, 0, block.Rock, LayerForeground), ErrOutOfBounds)
	assert.ErrorIs(t, cm.SetBlock(16, 0, block.Rock, LayerForeground), ErrOutOfBounds)
	assert.ErrorIs(t, cm.SetBlock(0, 0, block.Rock, Layer(5)), ErrInvalidLayer)
	assert.ErrorIs(t, cm.SetBlock(0, 0, block.NumIDs, LayerForeground), ErrUnknownBlock)
}

func TestChunkManager_SetGetAcrossChunks(t *testing.T) {
	cm := newTestManager(t, 3, 4)

	require.NoError(t, cm.SetBlock(5, 9, block.Wood, LayerBackground))
	b, ok := cm.GetBlock(5, 9, LayerBackground)
	require.True(t, ok)
	assert.Equal(t, block.Wood, b.ID)
	assert.Equal(t, vec.Vec2{X: 1, Y: 2}, b.Chunk)
	assert.Equal(t, vec.Vec2{X: 1, Y: 1}, b.Local)
	assert.Equal(t, vec.Vec2{X: 5, Y: 9}, b.World(cm.ChunkSize()))
	assert.Equal(t, LayerBackground, b.Layer)

	require.NoError(t, cm.SetBlock(5, 9, block.Empty, LayerBackground))
	_, ok = cm.GetBlock(5, 9, LayerBackground)
	assert.False(t, ok, "очищенная клетка должна отсутствовать")
}

func TestChunkManager_BordersAcrossChunkBoundary(t *testing.T) {
	cm := newTestManager(t, 2, 4)

	// (3,1) и (4,1) лежат в разных чанках
	require.NoError(t, cm.SetBlock(3, 1, block.Rock, LayerForeground))
	require.NoError(t, cm.SetBlock(4, 1, block.Rock, LayerForeground))
	require.NoError(t, cm.SetBlock(4, 2, block.Earth, LayerForeground))

	left, _ := cm.GetBlock(3, 1, LayerForeground)
	right, _ := cm.GetBlock(4, 1, LayerForeground)
	assert.True(t, left.Border.Has(block.East))
	assert.True(t, left.Border.Has(block.SouthEast))
	assert.True(t, right.Border.Has(block.West))
	assert.True(t, right.Border.Has(block.South))
	assert.False(t, right.Border.Has(block.North))

	// Задний план не влияет на маски переднего
	require.NoError(t, cm.SetBlock(4, 0, block.Rock, LayerBackground))
	right, _ = cm.GetBlock(4, 1, LayerForeground)
	assert.False(t, right.Border.Has(block.North))

	assertBordersConsistent(t, cm)
}

func TestChunkManager_BordersStayConsistentAfterEdits(t *testing.T) {
	cm := newTestManager(t, 2, 8)
	ids := []block.ID{block.Earth, block.Grass, block.Rock, block.Lightstone, block.Treewood, block.Leaves, block.Wood}

	for i := 0; i < 200; i++ {
		x := (i * 7) % 16
		y := (i * 11) % 16
		id := ids[i%len(ids)]
		if i%5 == 0 {
			id = block.Empty
		}
		require.NoError(t, cm.SetBlock(x, y, id, LayerOf(i%3 != 0)))
	}

	assertBordersConsistent(t, cm)
}

func TestChunkManager_GrassEnclosedBecomesEarthOnPlacement(t *testing.T) {
	cm := newTestManager(t, 1, 8)
	for y := 2; y <= 4; y++ {
		for x := 2; x <= 4; x++ {
			if x == 3 && y == 3 {
				continue
			}
			require.NoError(t, cm.SetBlock(x, y, block.Earth, LayerForeground))
		}
	}

	require.NoError(t, cm.SetBlock(3, 3, block.Grass, LayerForeground))

	b, ok := cm.GetBlock(3, 3, LayerForeground)
	require.True(t, ok)
	assert.Equal(t, block.Earth, b.ID, "окружённая трава должна стать землёй")
	assert.Equal(t, LayerForeground, b.Layer, "замена должна остаться на том же слое")
	assert.Equal(t, vec.Vec2{X: 3, Y: 3}, b.World(cm.ChunkSize()), "замена должна остаться на месте")
	assert.True(t, b.Border.Filled())

	_, ok = cm.GetBlock(3, 3, LayerBackground)
	assert.False(t, ok, "задний план не должен меняться")
	assertBordersConsistent(t, cm)
}

func TestChunkManager_GrassBecomesEarthWhenNeighborCloses(t *testing.T) {
	cm := newTestManager(t, 1, 8)
	require.NoError(t, cm.SetBlock(3, 3, block.Grass, LayerForeground))
	for y := 2; y <= 4; y++ {
		for x := 2; x <= 4; x++ {
			if x == 3 && y == 3 || x == 3 && y == 2 {
				continue
			}
			require.NoError(t, cm.SetBlock(x, y, block.Rock, LayerForeground))
		}
	}

	b, _ := cm.GetBlock(3, 3, LayerForeground)
	require.Equal(t, block.Grass, b.ID, "трава с открытым верхом остаётся травой")
	assert.True(t, b.ContainsAlpha(), "открытая трава пропускает свет")

	// Листья не считаются подходящим соседом для травы
	require.NoError(t, cm.SetBlock(3, 2, block.Leaves, LayerForeground))
	b, _ = cm.GetBlock(3, 3, LayerForeground)
	assert.Equal(t, block.Grass, b.ID)

	require.NoError(t, cm.SetBlock(3, 2, block.Empty, LayerForeground))
	require.NoError(t, cm.SetBlock(3, 2, block.Wood, LayerForeground))
	b, _ = cm.GetBlock(3, 3, LayerForeground)
	assert.Equal(t, block.Earth, b.ID, "закрытая последним соседом трава должна стать землёй")
	assertBordersConsistent(t, cm)
}

// pingPong бесконечно заменяет себя другим видом
type pingPong struct {
	block.Behavior
	next block.ID
}

func (p pingPong) Init(block.Cell) block.Reaction   { return block.ReplaceWith(p.next) }
func (p pingPong) Update(block.Cell) block.Reaction { return block.ReplaceWith(p.next) }

func TestChunkManager_ReactionDepthBounded(t *testing.T) {
	wood := block.MustGet(block.Wood)
	treewood := block.MustGet(block.Treewood)
	t.Cleanup(func() {
		block.Register(block.Wood, wood)
		block.Register(block.Treewood, treewood)
	})
	block.Register(block.Wood, pingPong{Behavior: wood, next: block.Treewood})
	block.Register(block.Treewood, pingPong{Behavior: treewood, next: block.Wood})

	cm := newTestManager(t, 1, 8)
	obs := &recordingObserver{}
	cm.SetObserver(obs)

	require.NoError(t, cm.SetBlock(4, 4, block.Wood, LayerForeground))
	b, ok := cm.GetBlock(4, 4, LayerForeground)
	require.True(t, ok)
	assert.Contains(t, []block.ID{block.Wood, block.Treewood}, b.ID)
	assert.Len(t, obs.regions, 1, "цепочка замен — один коммит")
	assert.LessOrEqual(t, cm.Edits(), uint64(MaxReactionDepth+1))
}

func TestChunkManager_ObserverNotifications(t *testing.T) {
	cm := newTestManager(t, 2, 8)
	obs := &recordingObserver{}
	cm.SetObserver(obs)

	require.NoError(t, cm.SetBlock(0, 5, block.Rock, LayerForeground))
	require.Len(t, obs.regions, 1)
	assert.Equal(t, vec.Vec2{X: 0, Y: 4}, obs.regions[0][0], "область должна быть обрезана границей мира")
	assert.Equal(t, vec.Vec2{X: 1, Y: 6}, obs.regions[0][1])

	cm.UpdateAll()
	assert.Equal(t, 1, obs.whole)
	assert.Len(t, obs.regions, 1, "UpdateAll не должен слать RegionChanged")
}

func TestChunkManager_CreateSkipsReactions(t *testing.T) {
	cm := newTestManager(t, 1, 8)
	obs := &recordingObserver{}
	cm.SetObserver(obs)

	cm.Create(fillerFunc(func(x, y int, l Layer) block.ID {
		if l == LayerForeground {
			return block.Grass
		}
		return block.Empty
	}))
	assert.Empty(t, obs.regions, "Create не уведомляет наблюдателя")

	b, _ := cm.GetBlock(4, 4, LayerForeground)
	assert.Equal(t, block.Grass, b.ID, "до UpdateAll реакции не выполняются")

	cm.UpdateAll()
	b, _ = cm.GetBlock(4, 4, LayerForeground)
	assert.Equal(t, block.Earth, b.ID, "внутренняя трава после UpdateAll становится землёй")
	edge, _ := cm.GetBlock(0, 4, LayerForeground)
	assert.Equal(t, block.Grass, edge.ID, "трава на краю мира остаётся открытой")
	assertBordersConsistent(t, cm)
}

func TestChunkManager_SnapshotRestore(t *testing.T) {
	cm := newTestManager(t, 2, 4)
	require.NoError(t, cm.SetBlock(1, 1, block.Rock, LayerForeground))
	require.NoError(t, cm.SetBlock(6, 7, block.Lightstone, LayerForeground))
	require.NoError(t, cm.SetBlock(6, 6, block.Earth, LayerBackground))

	s := cm.Snapshot()
	assert.Equal(t, 2, s.NumChunks)
	assert.Len(t, s.Chunks, 4)

	restored, err := NewChunkManagerFromSnapshot(s)
	require.NoError(t, err)
	restored.UpdateAll()

	for _, c := range []struct {
		x, y int
		l    Layer
		id   block.ID
	}{{1, 1, LayerForeground, block.Rock}, {6, 7, LayerForeground, block.Lightstone}, {6, 6, LayerBackground, block.Earth}} {
		b, ok := restored.GetBlock(c.x, c.y, c.l)
		require.True(t, ok)
		assert.Equal(t, c.id, b.ID)
	}
	assert.Empty(t, restored.DirtyChunks(), "восстановленные чанки не считаются изменёнными")

	_, err = NewChunkManagerFromSnapshot(nil)
	assert.ErrorIs(t, err, ErrSnapshotMismatch)

	other := newTestManager(t, 3, 4)
	assert.ErrorIs(t, other.Restore(s), ErrSnapshotMismatch)

	bad := cm.Snapshot()
	bad.Chunks[0].Layers[LayerForeground] = bad.Chunks[0].Layers[LayerForeground][:3]
	assert.ErrorIs(t, cm.Restore(bad), ErrSnapshotMismatch)
}

func TestChunkManager_DirtyChunks(t *testing.T) {
	cm := newTestManager(t, 2, 4)
	assert.Empty(t, cm.DirtyChunks())

	require.NoError(t, cm.SetBlock(5, 1, block.Rock, LayerForeground))
	dirty := cm.DirtyChunks()
	require.Len(t, dirty, 1)
	assert.Equal(t, vec.Vec2{X: 1, Y: 0}, dirty[0].Coords)

	cm.ClearDirty(dirty...)
	assert.Empty(t, cm.DirtyChunks())

	require.NoError(t, cm.SetBlock(0, 0, block.Rock, LayerForeground))
	cm.ClearDirty()
	assert.Empty(t, cm.DirtyChunks())
}
