package world

import (
	"fmt"
	"math"
	"time"

	"github.com/annel0/tileworld/internal/config"
	"github.com/annel0/tileworld/internal/logging"
	"github.com/annel0/tileworld/internal/physics"
	"github.com/annel0/tileworld/internal/world/block"
	_ "github.com/annel0/tileworld/internal/world/block/implementations"
	"github.com/annel0/tileworld/internal/world/entity"
)

// Константы мира
const (
	BlockPixelSize = 16   // Сторона блока в пикселях
	MaxDrops       = 2000 // Предел выпавших предметов в мире
)

// Recorder принимает показатели симуляции. Реализуется пакетом metrics.
type Recorder interface {
	LightRecorder
	ObserveTick(d time.Duration)
	SetEntityCounts(entities, players, drops int)
	AddBlockEdits(n int)
}

type noopRecorder struct{}

func (noopRecorder) AddLightCells(int)             {}
func (noopRecorder) ObserveTick(time.Duration)     {}
func (noopRecorder) SetEntityCounts(int, int, int) {}
func (noopRecorder) AddBlockEdits(int)             {}

// Option настраивает мир при создании
type Option func(*World)

// WithRecorder подключает сбор метрик
func WithRecorder(r Recorder) Option {
	return func(w *World) {
		if r != nil {
			w.recorder = r
		}
	}
}

// WithLight задаёт параметры освещения
func WithLight(cfg config.LightConfig) Option {
	return func(w *World) { w.lightCfg = cfg }
}

// WithMaxDrops задаёт предел выпавших предметов
func WithMaxDrops(n int) Option {
	return func(w *World) {
		if n > 0 {
			w.maxDrops = n
		}
	}
}

// WithViewportSize задаёт размер окна просмотра в пикселях.
// Окно больше мира обрезается до его границ.
func WithViewportSize(width, height float64) Option {
	return func(w *World) {
		w.viewport.W, w.viewport.H = width, height
	}
}

// World — корневой объект симуляции: сетка блоков, освещение и сущности.
// Все методы вызываются из одной горутины симуляции.
type World struct {
	name     string
	cm       *ChunkManager
	light    *LightUpdater
	lightCfg config.LightConfig
	viewport physics.Rect

	entities []entity.Entity
	present  map[entity.Entity]struct{}
	players  []*entity.Player
	byName   map[string]*entity.Player
	drops    []*entity.Drop
	maxDrops int

	recorder  Recorder
	lastEdits uint64
	logger    *logging.Logger
}

func newWorld(cm *ChunkManager, name string, opts []Option) *World {
	w := &World{
		name:     name,
		cm:       cm,
		present:  make(map[entity.Entity]struct{}),
		byName:   make(map[string]*entity.Player),
		maxDrops: MaxDrops,
		recorder: noopRecorder{},
		logger:   logging.GetWorldLogger(),
	}
	w.viewport = w.Bounds()
	for _, opt := range opts {
		opt(w)
	}
	w.viewport = w.clampViewport(w.viewport)
	w.light = NewLightUpdater(cm, w.lightCfg)
	w.light.SetRecorder(w.recorder)
	return w
}

// New создаёт мир по конфигурации и генерирует ландшафт
func New(cfg config.WorldConfig, name string, opts ...Option) (*World, error) {
	cm, err := NewChunkManager(cfg.NumChunks, cfg.ChunkSize)
	if err != nil {
		return nil, err
	}
	if cfg.MaxDrops > 0 {
		opts = append([]Option{WithMaxDrops(cfg.MaxDrops)}, opts...)
	}
	w := newWorld(cm, name, opts)

	start := time.Now()
	trees := w.GenerateWorld(NewGenerator(GeneratorConfigFrom(cfg), cm.TotalBlocks()))
	w.logger.Info("🌍 Мир %q сгенерирован за %v: %dx%d клеток, сид %d, деревьев %d",
		name, time.Since(start), cm.TotalBlocks(), cm.TotalBlocks(), cfg.Seed, trees)
	return w, nil
}

// NewFromChunkManager оборачивает готовую сетку (например, загруженную из хранилища).
// Генерация не выполняется; маски соседей и освещение выводятся через UpdateAll.
func NewFromChunkManager(cm *ChunkManager, name string, opts ...Option) (*World, error) {
	if cm == nil {
		return nil, ErrNilChunkManager
	}
	w := newWorld(cm, name, opts)
	cm.UpdateAll()
	w.lastEdits = cm.Edits()
	return w, nil
}

// GenerateWorld заполняет сетку в строгом порядке: заполнение чанков,
// реактивный проход и освещение, затем деревья. Возвращает количество деревьев.
func (w *World) GenerateWorld(g *Generator) int {
	w.cm.Create(g)
	w.cm.UpdateAll()
	trees := g.GenerateTrees(w.cm)
	w.lastEdits = w.cm.Edits()
	return trees
}

// Name возвращает имя мира
func (w *World) Name() string { return w.name }

// ChunkManager возвращает сетку мира
func (w *World) ChunkManager() *ChunkManager { return w.cm }

// Light возвращает освещение мира
func (w *World) Light() *LightUpdater { return w.light }

// Bounds возвращает границы мира в пикселях
func (w *World) Bounds() physics.Rect {
	size := float64(w.cm.TotalBlocks() * BlockPixelSize)
	return physics.NewRect(0, 0, size, size)
}

// Viewport возвращает окно просмотра в пикселях
func (w *World) Viewport() physics.Rect { return w.viewport }

// SetViewport перемещает окно просмотра, не выпуская его за границы мира
func (w *World) SetViewport(x, y float64) {
	w.viewport.X, w.viewport.Y = x, y
	w.viewport = w.clampViewport(w.viewport)
}

// clampViewport ограничивает размер окна размером мира и сдвигает его внутрь границ
func (w *World) clampViewport(vp physics.Rect) physics.Rect {
	bounds := w.Bounds()
	vp.W = max(min(vp.W, bounds.W), 0)
	vp.H = max(min(vp.H, bounds.H), 0)
	return vp.ClampInside(bounds)
}

// ConvertXToWorld переводит экранную координату X в мировые пиксели
func (w *World) ConvertXToWorld(x float64) float64 { return w.viewport.X + x }

// ConvertYToWorld переводит экранную координату Y в мировые пиксели
func (w *World) ConvertYToWorld(y float64) float64 { return w.viewport.Y + y }

// GetBlock возвращает блок по мировым координатам клетки
func (w *World) GetBlock(x, y int, layer Layer) (Block, bool) {
	return w.cm.GetBlock(x, y, layer)
}

// Tick выполняет один шаг симуляции: тик каждой сущности, затем притяжение
// и подбор выпавших предметов.
func (w *World) Tick(ev TickEvent) {
	start := time.Now()

	snapshot := make([]entity.Entity, len(w.entities))
	copy(snapshot, w.entities)
	for _, e := range snapshot {
		if _, ok := w.present[e]; !ok {
			continue
		}
		e.Tick(ev.DeltaTime, w)
	}

	collected := w.updateDrops()

	elapsed := time.Since(start)
	edits := w.cm.Edits()
	w.recorder.AddBlockEdits(int(edits - w.lastEdits))
	w.lastEdits = edits
	w.recorder.ObserveTick(elapsed)
	w.recorder.SetEntityCounts(len(w.entities), len(w.players), len(w.drops))

	if ev.Debug {
		w.logger.Debug("Тик #%d: %v, сущностей %d, игроков %d, предметов %d, подобрано %d",
			ev.TickID, elapsed, len(w.entities), len(w.players), len(w.drops), collected)
	}
}

// updateDrops притягивает предметы к ближайшему игроку и подбирает их.
// Возвращает количество подобранных предметов.
func (w *World) updateDrops() int {
	if len(w.players) == 0 {
		return 0
	}
	collected := 0
	drops := make([]*entity.Drop, len(w.drops))
	copy(drops, w.drops)
	for _, d := range drops {
		if _, ok := w.present[d]; !ok {
			continue
		}
		mid := d.Mid()
		p := w.NearestPlayer(mid.X, mid.Y)
		if p == nil {
			continue
		}
		target := p.Mid()
		d2 := mid.DistanceSquared(target)
		switch {
		case d2 > d.MagnetRadiusSq():
		case d2 <= d.CollectRadiusSq():
			if p.Collect(d) {
				_ = w.RemoveEntity(d)
				collected++
			}
		default:
			d.PullTowards(target, w)
		}
	}
	return collected
}

// RectCollidesBlocks сообщает, пересекает ли прямоугольник (в пикселях)
// хотя бы один твёрдый блок переднего плана. Касание границами не считается.
func (w *World) RectCollidesBlocks(r physics.Rect) bool {
	bs := float64(BlockPixelSize)
	x0 := int(math.Floor(r.X / bs))
	y0 := int(math.Floor(r.Y / bs))
	x1 := int(math.Floor(r.MaxX()/bs)) + 1
	y1 := int(math.Floor(r.MaxY()/bs)) + 1

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			b, ok := w.cm.GetBlock(x, y, LayerForeground)
			if !ok {
				continue
			}
			for _, cr := range b.CollisionRects(w.cm.ChunkSize(), BlockPixelSize) {
				if r.Intersects(cr) {
					return true
				}
			}
		}
	}
	return false
}

// blockRect возвращает прямоугольник клетки в пикселях
func blockRect(x, y int) physics.Rect {
	return physics.NewRect(float64(x*BlockPixelSize), float64(y*BlockPixelSize), BlockPixelSize, BlockPixelSize)
}

// PlaceBlock ставит блок в пустую клетку. На переднем плане клетка не должна
// пересекаться с сущностями.
func (w *World) PlaceBlock(x, y int, id block.ID, layer Layer) error {
	if _, occupied := w.cm.GetBlock(x, y, layer); occupied {
		return fmt.Errorf("%w: (%d, %d) %s", ErrCellOccupied, x, y, layer)
	}
	if layer.Foreground() {
		cell := blockRect(x, y)
		for _, e := range w.entities {
			if e.Type() != entity.EntityTypeDrop && e.Bounds().Intersects(cell) {
				return fmt.Errorf("%w: (%d, %d)", ErrCellBlocked, x, y)
			}
		}
	}
	return w.cm.SetBlock(x, y, id, layer)
}

// BreakBlock убирает блок и бросает соответствующий предмет в центр клетки
func (w *World) BreakBlock(x, y int, layer Layer) (*entity.Drop, error) {
	b, ok := w.cm.GetBlock(x, y, layer)
	if !ok {
		if !w.cm.InBounds(x, y) {
			return nil, fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, x, y)
		}
		return nil, fmt.Errorf("%w: (%d, %d) %s", ErrEmptyCell, x, y, layer)
	}
	if err := w.cm.SetBlock(x, y, block.Empty, layer); err != nil {
		return nil, err
	}

	item, ok := entity.ItemFromBlock(b.ID)
	if !ok {
		return nil, nil
	}
	mid := blockRect(x, y).Mid()
	d := entity.NewDrop(item, 1, mid.X, mid.Y)
	if err := w.AddEntity(d); err != nil {
		return nil, err
	}
	return d, nil
}
