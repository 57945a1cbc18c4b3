package world

import (
	"fmt"

	"github.com/annel0/tileworld/internal/logging"
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world/block"
)

// MaxReactionDepth ограничивает глубину цепочки реактивных замен в одном коммите
const MaxReactionDepth = 16

// ChangeObserver получает уведомления об изменении содержимого сетки.
// RegionChanged вызывается один раз на коммит с охватывающим прямоугольником
// (включительно), WorldChanged — после массового обновления.
type ChangeObserver interface {
	RegionChanged(min, max vec.Vec2)
	WorldChanged()
}

// ChunkFiller заполняет только что созданный чанк. set пишет вид блока без реакций.
type ChunkFiller interface {
	FillChunk(coords vec.Vec2, size int, set func(local vec.Vec2, id block.ID, layer Layer))
}

// ChunkManager владеет квадратной сеткой чанков и является единственной точкой
// изменения блоков: запись, пересчёт масок соседей и реактивные правила
// выполняются в одном коммите.
type ChunkManager struct {
	numChunks int
	chunkSize int
	chunks    []*Chunk // chunks[cy*numChunks+cx]

	observer ChangeObserver
	logger   *logging.Logger

	depth    int // Вложенность текущего коммита
	hasDirty bool
	dirtyMin vec.Vec2
	dirtyMax vec.Vec2
	edits    uint64 // Количество записей в клетки
}

// NewChunkManager создаёт пустую сетку numChunks x numChunks чанков
func NewChunkManager(numChunks, chunkSize int) (*ChunkManager, error) {
	if numChunks <= 0 || chunkSize <= 0 {
		return nil, fmt.Errorf("%w: %d чанков по %d клеток", ErrInvalidSize, numChunks, chunkSize)
	}
	cm := &ChunkManager{
		numChunks: numChunks,
		chunkSize: chunkSize,
		chunks:    make([]*Chunk, numChunks*numChunks),
		logger:    logging.GetWorldLogger(),
	}
	for cy := 0; cy < numChunks; cy++ {
		for cx := 0; cx < numChunks; cx++ {
			cm.chunks[cy*numChunks+cx] = NewChunk(vec.Vec2{X: cx, Y: cy}, chunkSize)
		}
	}
	return cm, nil
}

// NumChunks возвращает количество чанков по стороне
func (cm *ChunkManager) NumChunks() int { return cm.numChunks }

// ChunkSize возвращает сторону чанка в клетках
func (cm *ChunkManager) ChunkSize() int { return cm.chunkSize }

// TotalBlocks возвращает сторону мира в клетках
func (cm *ChunkManager) TotalBlocks() int { return cm.numChunks * cm.chunkSize }

// Edits возвращает количество записей в клетки с момента создания
func (cm *ChunkManager) Edits() uint64 { return cm.edits }

// SetObserver подключает наблюдателя изменений (обычно освещение)
func (cm *ChunkManager) SetObserver(o ChangeObserver) {
	cm.observer = o
}

// InBounds проверяет, лежат ли мировые координаты внутри сетки
func (cm *ChunkManager) InBounds(x, y int) bool {
	total := cm.TotalBlocks()
	return x >= 0 && y >= 0 && x < total && y < total
}

// Chunk возвращает чанк по его координатам
func (cm *ChunkManager) Chunk(cx, cy int) (*Chunk, bool) {
	if cx < 0 || cy < 0 || cx >= cm.numChunks || cy >= cm.numChunks {
		return nil, false
	}
	return cm.chunks[cy*cm.numChunks+cx], true
}

// Chunks возвращает все чанки в порядке строк
func (cm *ChunkManager) Chunks() []*Chunk {
	return cm.chunks
}

func (cm *ChunkManager) locate(x, y int) (*Chunk, vec.Vec2) {
	pos := vec.Vec2{X: x, Y: y}
	cc := pos.ToChunkCoords(cm.chunkSize)
	return cm.chunks[cc.Y*cm.numChunks+cc.X], pos.LocalInChunk(cm.chunkSize)
}

// peek возвращает содержимое клетки; вне мира — пустой блок
func (cm *ChunkManager) peek(x, y int, layer Layer) Block {
	if !cm.InBounds(x, y) {
		return Block{Layer: layer}
	}
	c, local := cm.locate(x, y)
	return *c.cell(local, layer)
}

func (cm *ChunkManager) idAt(layer Layer) func(vec.Vec2) block.ID {
	return func(p vec.Vec2) block.ID {
		return cm.peek(p.X, p.Y, layer).ID
	}
}

// GetBlock возвращает блок по мировым координатам.
// ok == false, если координаты вне мира или клетка пуста.
func (cm *ChunkManager) GetBlock(x, y int, layer Layer) (Block, bool) {
	if !layer.Valid() || !cm.InBounds(x, y) {
		return Block{}, false
	}
	b := cm.peek(x, y, layer)
	return b, !b.Empty()
}

// SetBlock записывает блок в клетку и выполняет реактивный коммит:
// разрушение прежнего блока, пересчёт масок в окрестности 3x3,
// Init нового блока и Update восьми соседей с применением замен.
// id == block.Empty очищает клетку.
func (cm *ChunkManager) SetBlock(x, y int, id block.ID, layer Layer) error {
	if !layer.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidLayer, layer)
	}
	if !cm.InBounds(x, y) {
		return fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, x, y)
	}
	if id != block.Empty && !block.IsValidBlockID(id) {
		return fmt.Errorf("%w: %d", ErrUnknownBlock, id)
	}

	cm.begin()
	cm.replace(vec.Vec2{X: x, Y: y}, id, layer, 0, true)
	cm.end(false)
	return nil
}

func (cm *ChunkManager) begin() {
	if cm.depth == 0 {
		cm.hasDirty = false
	}
	cm.depth++
}

func (cm *ChunkManager) end(whole bool) {
	cm.depth--
	if cm.depth > 0 || cm.observer == nil {
		return
	}
	if whole {
		cm.observer.WorldChanged()
		return
	}
	if cm.hasDirty {
		cm.observer.RegionChanged(cm.dirtyMin, cm.dirtyMax)
	}
}

// markDirty расширяет изменённую область на окрестность клетки
func (cm *ChunkManager) markDirty(pos vec.Vec2) {
	total := cm.TotalBlocks()
	lo := vec.Vec2{X: max(pos.X-1, 0), Y: max(pos.Y-1, 0)}
	hi := vec.Vec2{X: min(pos.X+1, total-1), Y: min(pos.Y+1, total-1)}
	if !cm.hasDirty {
		cm.dirtyMin, cm.dirtyMax, cm.hasDirty = lo, hi, true
		return
	}
	cm.dirtyMin = vec.Vec2{X: min(cm.dirtyMin.X, lo.X), Y: min(cm.dirtyMin.Y, lo.Y)}
	cm.dirtyMax = vec.Vec2{X: max(cm.dirtyMax.X, hi.X), Y: max(cm.dirtyMax.Y, hi.Y)}
}

// replace — шаг коммита. placed == true для внешней установки (вызывается Init),
// false для реактивной замены (вызывается Update нового блока).
func (cm *ChunkManager) replace(pos vec.Vec2, id block.ID, layer Layer, depth int, placed bool) {
	if depth > MaxReactionDepth {
		cm.logger.Error("Превышена глубина реакций в (%d, %d) слой %s: замена на %s отброшена",
			pos.X, pos.Y, layer, id)
		return
	}

	c, local := cm.locate(pos.X, pos.Y)
	cell := c.cell(local, layer)
	if !cell.Empty() {
		cell.Behavior().Destroy(cell.Cell(cm.chunkSize))
	}
	c.write(local, id, layer)
	cm.edits++
	cm.markDirty(pos)

	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			cm.updateBorder(pos.X+dx, pos.Y+dy, layer)
		}
	}

	if id != block.Empty {
		b := *cell
		var r block.Reaction
		if placed {
			r = b.Behavior().Init(b.Cell(cm.chunkSize))
		} else {
			r = b.Behavior().Update(b.Cell(cm.chunkSize))
		}
		if r.Ok && r.Replace != id {
			cm.replace(pos, r.Replace, layer, depth+1, false)
			return
		}
	}

	for d := block.Direction(0); d < block.NumDirections; d++ {
		n := pos.Add(block.Offsets[d])
		if !cm.InBounds(n.X, n.Y) {
			continue
		}
		nb := cm.peek(n.X, n.Y, layer)
		if nb.Empty() {
			continue
		}
		if r := nb.Behavior().Update(nb.Cell(cm.chunkSize)); r.Ok && r.Replace != nb.ID {
			cm.replace(n, r.Replace, layer, depth+1, false)
		}
	}
}

// updateBorder пересчитывает маску соседей клетки
func (cm *ChunkManager) updateBorder(x, y int, layer Layer) {
	if !cm.InBounds(x, y) {
		return
	}
	c, local := cm.locate(x, y)
	cell := c.cell(local, layer)
	if cell.Empty() {
		cell.Border = 0
		return
	}
	cell.Border = block.ComputeBorder(cell.Behavior(), vec.Vec2{X: x, Y: y}, cm.idAt(layer))
}

// Create заполняет все чанки через filler. Реактивные правила не выполняются;
// после Create нужно вызвать UpdateAll.
func (cm *ChunkManager) Create(filler ChunkFiller) {
	for _, c := range cm.chunks {
		chunk := c
		filler.FillChunk(chunk.Coords, cm.chunkSize, func(local vec.Vec2, id block.ID, layer Layer) {
			if !layer.Valid() || !chunk.inside(local) {
				return
			}
			chunk.write(local, id, layer)
			cm.edits++
		})
	}
	cm.logger.Debug("Заполнено %d чанков", len(cm.chunks))
}

// UpdateAll пересчитывает маски соседей всех клеток, затем выполняет Init каждого
// блока с применением замен. По завершении наблюдатель получает WorldChanged.
func (cm *ChunkManager) UpdateAll() {
	total := cm.TotalBlocks()
	for l := Layer(0); l < MaxLayers; l++ {
		for y := 0; y < total; y++ {
			for x := 0; x < total; x++ {
				cm.updateBorder(x, y, l)
			}
		}
	}

	cm.begin()
	replaced := 0
	for l := Layer(0); l < MaxLayers; l++ {
		for y := 0; y < total; y++ {
			for x := 0; x < total; x++ {
				b := cm.peek(x, y, l)
				if b.Empty() {
					continue
				}
				if r := b.Behavior().Init(b.Cell(cm.chunkSize)); r.Ok && r.Replace != b.ID {
					cm.replace(vec.Vec2{X: x, Y: y}, r.Replace, l, 1, false)
					replaced++
				}
			}
		}
	}
	cm.end(true)
	cm.logger.Debug("UpdateAll: %d реактивных замен", replaced)
}

// DirtyChunks возвращает чанки, изменённые после последнего ClearDirty
func (cm *ChunkManager) DirtyChunks() []*Chunk {
	var dirty []*Chunk
	for _, c := range cm.chunks {
		if c.dirty {
			dirty = append(dirty, c)
		}
	}
	return dirty
}

// ClearDirty снимает отметку изменения с чанков
func (cm *ChunkManager) ClearDirty(chunks ...*Chunk) {
	if len(chunks) == 0 {
		chunks = cm.chunks
	}
	for _, c := range chunks {
		c.dirty = false
	}
}

// Snapshot копирует содержимое всех чанков
func (cm *ChunkManager) Snapshot() *Snapshot {
	return cm.SnapshotChunks(cm.chunks)
}

// SnapshotChunks копирует содержимое указанных чанков
func (cm *ChunkManager) SnapshotChunks(chunks []*Chunk) *Snapshot {
	s := &Snapshot{
		NumChunks: cm.numChunks,
		ChunkSize: cm.chunkSize,
		Chunks:    make([]ChunkSnapshot, 0, len(chunks)),
	}
	for _, c := range chunks {
		s.Chunks = append(s.Chunks, c.Snapshot())
	}
	return s
}

// RestoreChunk записывает виды блоков из снимка без реакций и без уведомлений.
// Маски и освещение восстанавливаются последующим UpdateAll.
func (cm *ChunkManager) RestoreChunk(cs ChunkSnapshot) error {
	if err := cs.Validate(cm.numChunks, cm.chunkSize); err != nil {
		return err
	}
	c, _ := cm.Chunk(cs.Coords.X, cs.Coords.Y)
	for l := Layer(0); l < MaxLayers; l++ {
		for i, id := range cs.Layers[l] {
			cell := &c.layers[l][i]
			cell.ID = id
			cell.Border = 0
		}
	}
	c.dirty = false
	return nil
}

// Restore записывает все чанки снимка. Размеры снимка должны совпадать с сеткой.
func (cm *ChunkManager) Restore(s *Snapshot) error {
	if s == nil || s.NumChunks != cm.numChunks || s.ChunkSize != cm.chunkSize {
		return ErrSnapshotMismatch
	}
	for _, cs := range s.Chunks {
		if err := cm.RestoreChunk(cs); err != nil {
			return err
		}
	}
	return nil
}

// NewChunkManagerFromSnapshot строит сетку по снимку. Реакции не выполняются.
func NewChunkManagerFromSnapshot(s *Snapshot) (*ChunkManager, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: пустой снимок", ErrSnapshotMismatch)
	}
	cm, err := NewChunkManager(s.NumChunks, s.ChunkSize)
	if err != nil {
		return nil, err
	}
	if err := cm.Restore(s); err != nil {
		return nil, err
	}
	return cm, nil
}
