package world

import (
	"github.com/annel0/tileworld/internal/config"
	"github.com/annel0/tileworld/internal/logging"
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world/block"
)

// Значения освещения по умолчанию
const (
	DefaultMaxLight  uint8 = 15
	DefaultLightStep uint8 = 1
)

// LightRecorder получает количество клеток, затронутых пересчётом
type LightRecorder interface {
	AddLightCells(n int)
}

// LightUpdater хранит уровень освещения каждой клетки и пересчитывает его
// при изменении сетки. Небо (клетки колонки сверху до первого непустого блока
// на любом слое) и светящиеся блоки являются источниками; свет убывает на step
// за клетку и проходит только через клетки, пропускающие свет.
type LightUpdater struct {
	cm       *ChunkManager
	total    int
	maxLight uint8
	step     uint8
	radius   int

	light []uint8 // light[y*total+x]
	sky   []int   // sky[x]: первая клетка колонки, не являющаяся небом
	queue []vec.Vec2

	recorder LightRecorder
	logger   *logging.Logger
}

// NewLightUpdater создаёт освещение для сетки и подписывается на её изменения.
// Нулевые значения cfg заменяются значениями по умолчанию.
func NewLightUpdater(cm *ChunkManager, cfg config.LightConfig) *LightUpdater {
	if cfg.MaxLight == 0 {
		cfg.MaxLight = DefaultMaxLight
	}
	if cfg.Step == 0 {
		cfg.Step = DefaultLightStep
	}
	total := cm.TotalBlocks()
	l := &LightUpdater{
		cm:       cm,
		total:    total,
		maxLight: cfg.MaxLight,
		step:     cfg.Step,
		radius:   (int(cfg.MaxLight) + int(cfg.Step) - 1) / int(cfg.Step),
		light:    make([]uint8, total*total),
		sky:      make([]int, total),
		logger:   logging.GetLightLogger(),
	}
	cm.SetObserver(l)
	return l
}

// SetRecorder подключает учёт пересчитанных клеток
func (l *LightUpdater) SetRecorder(r LightRecorder) {
	l.recorder = r
}

// MaxLight возвращает максимальный уровень освещения
func (l *LightUpdater) MaxLight() uint8 { return l.maxLight }

// Light возвращает уровень освещения клетки; вне мира — 0
func (l *LightUpdater) Light(x, y int) uint8 {
	if !l.cm.InBounds(x, y) {
		return 0
	}
	return l.light[y*l.total+x]
}

// SkyDepth возвращает первую строку колонки, не являющуюся небом
func (l *LightUpdater) SkyDepth(x int) int {
	if x < 0 || x >= l.total {
		return 0
	}
	return l.sky[x]
}

func (l *LightUpdater) passable(x, y int) bool {
	return l.cm.peek(x, y, LayerForeground).ContainsAlpha()
}

func (l *LightUpdater) emission(x, y int) uint8 {
	e := max(l.cm.peek(x, y, LayerForeground).LightEmission(), l.cm.peek(x, y, LayerBackground).LightEmission())
	return min(e, l.maxLight)
}

func (l *LightUpdater) computeSky(x int) int {
	y := 0
	for y < l.total &&
		l.cm.peek(x, y, LayerForeground).ID == block.Empty &&
		l.cm.peek(x, y, LayerBackground).ID == block.Empty {
		y++
	}
	return y
}

func (l *LightUpdater) seed(x, y int) uint8 {
	if y < l.sky[x] {
		return l.maxLight
	}
	return l.emission(x, y)
}

// WorldChanged выполняет полный пересчёт
func (l *LightUpdater) WorldChanged() {
	l.RecomputeAll()
}

// RecomputeAll пересчитывает освещение всего мира
func (l *LightUpdater) RecomputeAll() {
	for x := 0; x < l.total; x++ {
		l.sky[x] = l.computeSky(x)
	}
	l.recompute(vec.Vec2{}, vec.Vec2{X: l.total - 1, Y: l.total - 1})
}

// RegionChanged пересчитывает освещение после изменения клеток в [min, max].
// Область расширяется на изменившиеся участки неба и на радиус распространения,
// клетки на границе расширенной области служат внешними источниками.
func (l *LightUpdater) RegionChanged(lo, hi vec.Vec2) {
	lo.X, lo.Y = max(lo.X, 0), max(lo.Y, 0)
	hi.X, hi.Y = min(hi.X, l.total-1), min(hi.Y, l.total-1)
	if lo.X > hi.X || lo.Y > hi.Y {
		return
	}

	for x := lo.X; x <= hi.X; x++ {
		old := l.sky[x]
		now := l.computeSky(x)
		if old == now {
			continue
		}
		l.sky[x] = now
		lo.Y = min(lo.Y, min(old, now))
		hi.Y = max(hi.Y, min(max(old, now), l.total-1))
	}

	lo = vec.Vec2{X: max(lo.X-l.radius, 0), Y: max(lo.Y-l.radius, 0)}
	hi = vec.Vec2{X: min(hi.X+l.radius, l.total-1), Y: min(hi.Y+l.radius, l.total-1)}
	l.recompute(lo, hi)
}

// recompute обнуляет прямоугольник [lo, hi], засевает его источниками
// и соседними клетками снаружи, затем распространяет свет внутри.
func (l *LightUpdater) recompute(lo, hi vec.Vec2) {
	l.queue = l.queue[:0]
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			v := l.seed(x, y)
			l.light[y*l.total+x] = v
			if v > 0 {
				l.queue = append(l.queue, vec.Vec2{X: x, Y: y})
			}
		}
	}

	ring := func(x, y int) {
		if !l.cm.InBounds(x, y) || l.light[y*l.total+x] == 0 {
			return
		}
		l.queue = append(l.queue, vec.Vec2{X: x, Y: y})
	}
	for x := lo.X; x <= hi.X; x++ {
		ring(x, lo.Y-1)
		ring(x, hi.Y+1)
	}
	for y := lo.Y; y <= hi.Y; y++ {
		ring(lo.X-1, y)
		ring(hi.X+1, y)
	}

	cells := (hi.X - lo.X + 1) * (hi.Y - lo.Y + 1)
	l.flood(lo, hi)
	if l.recorder != nil {
		l.recorder.AddLightCells(cells)
	}
	l.logger.Trace("Пересчёт света %v-%v: %d клеток", lo, hi, cells)
}

var lightOffsets = [4]vec.Vec2{{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}}

// flood распространяет свет из очереди, изменяя только клетки внутри [lo, hi]
func (l *LightUpdater) flood(lo, hi vec.Vec2) {
	for head := 0; head < len(l.queue); head++ {
		p := l.queue[head]
		v := l.light[p.Y*l.total+p.X]
		if v <= l.step {
			continue
		}
		if !l.passable(p.X, p.Y) && l.emission(p.X, p.Y) == 0 {
			continue
		}
		next := v - l.step
		for _, o := range lightOffsets {
			n := p.Add(o)
			if n.X < lo.X || n.Y < lo.Y || n.X > hi.X || n.Y > hi.Y {
				continue
			}
			i := n.Y*l.total + n.X
			if l.light[i] < next {
				l.light[i] = next
				l.queue = append(l.queue, n)
			}
		}
	}
	l.queue = l.queue[:0]
}
