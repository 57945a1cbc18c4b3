package world

import (
	"context"
	"sync"
	"time"

	"github.com/annel0/tileworld/internal/logging"
	"github.com/annel0/tileworld/internal/world/entity"
)

// Saver сохраняет снимок мира. Вызывается вне горутины симуляции.
type Saver interface {
	SaveWorld(ctx context.Context, name string, s *Snapshot) error
}

// Runner крутит симуляцию с фиксированной частотой в одной горутине.
// Внешние вызовы (ввод, правки) передаются через Submit и выполняются между тиками.
type Runner struct {
	world    *World
	session  *Session
	tps      int
	saver    Saver
	autosave time.Duration
	commands chan func(*World)
	saves    chan *Snapshot
	wg       sync.WaitGroup
	logger   *logging.Logger
}

// NewRunner создаёт цикл симуляции с частотой tps тиков в секунду
func NewRunner(w *World, session *Session, tps int) *Runner {
	if tps <= 0 {
		tps = 60
	}
	if session == nil {
		session = NewSession(false)
	}
	return &Runner{
		world:    w,
		session:  session,
		tps:      tps,
		commands: make(chan func(*World), 256),
		saves:    make(chan *Snapshot, 4),
		logger:   logging.GetWorldLogger(),
	}
}

// WithSaver включает автосохранение изменённых чанков с указанным периодом
func (r *Runner) WithSaver(saver Saver, every time.Duration) *Runner {
	r.saver = saver
	r.autosave = every
	return r
}

// Session возвращает сеанс цикла
func (r *Runner) Session() *Session { return r.session }

// Submit ставит функцию в очередь на выполнение в горутине симуляции.
// Возвращает false, если очередь переполнена.
func (r *Runner) Submit(fn func(*World)) bool {
	select {
	case r.commands <- fn:
		return true
	default:
		return false
	}
}

// HandleKeyEvent передаёт событие клавиатуры в горутину симуляции.
// F3 переключает отладочный режим сеанса, остальные клавиши получает мир.
func (r *Runner) HandleKeyEvent(keyCode int, keyChar rune, down bool) bool {
	if keyCode == entity.KeyF3 {
		return r.Submit(func(*World) { r.session.HandleDebugKey(down) })
	}
	return r.Submit(func(w *World) { w.HandleKeyEvent(keyCode, keyChar, down) })
}

// HandleMouseEvent передаёт нажатие кнопки мыши в горутину симуляции
func (r *Runner) HandleMouseEvent(mouseX, mouseY float64, button int, down bool) bool {
	return r.Submit(func(w *World) { w.HandleMouseEvent(mouseX, mouseY, button, down) })
}

// HandleMousePosition передаёт перемещение курсора в горутину симуляции
func (r *Runner) HandleMousePosition(mouseX, mouseY float64) bool {
	return r.Submit(func(w *World) { w.HandleMousePosition(mouseX, mouseY) })
}

// Run выполняет тики до отмены ctx. Перед выходом сохраняет изменённые чанки
// и дожидается завершения записи.
func (r *Runner) Run(ctx context.Context) error {
	if r.saver != nil {
		r.wg.Add(1)
		go r.saveLoop()
	}

	interval := time.Second / time.Duration(r.tps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var autosave <-chan time.Time
	if r.saver != nil && r.autosave > 0 {
		t := time.NewTicker(r.autosave)
		defer t.Stop()
		autosave = t.C
	}

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			r.queueSave()
			if r.saver != nil {
				close(r.saves)
				r.wg.Wait()
			}
			r.logger.Info("Цикл симуляции мира %q остановлен", r.world.Name())
			return ctx.Err()
		case fn := <-r.commands:
			fn(r.world)
		case now := <-ticker.C:
			delta := now.Sub(last).Seconds()
			last = now
			r.world.Tick(r.session.Next(delta))
		case <-autosave:
			r.queueSave()
		}
	}
}

// queueSave снимает изменённые чанки в горутине симуляции и передаёт снимок на запись
func (r *Runner) queueSave() {
	if r.saver == nil {
		return
	}
	cm := r.world.ChunkManager()
	dirty := cm.DirtyChunks()
	if len(dirty) == 0 {
		return
	}
	snapshot := cm.SnapshotChunks(dirty)
	cm.ClearDirty(dirty...)
	r.saves <- snapshot
	r.logger.Debug("Автосохранение: %d чанков в очереди", len(dirty))
}

func (r *Runner) saveLoop() {
	defer r.wg.Done()
	for s := range r.saves {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := r.saver.SaveWorld(ctx, r.world.Name(), s); err != nil {
			r.logger.Error("Ошибка сохранения мира %q: %v", r.world.Name(), err)
		}
		cancel()
	}
}
