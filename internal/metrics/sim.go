package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annel0/tileworld/internal/logging"
)

const namespace = "tileworld"

// SimMetrics — Prometheus-метрики симуляции на собственном регистре.
// Реализует world.Recorder.
type SimMetrics struct {
	registry *prometheus.Registry

	tickDuration prometheus.Histogram
	entities     prometheus.Gauge
	players      prometheus.Gauge
	drops        prometheus.Gauge
	blockEdits   prometheus.Counter
	lightCells   prometheus.Counter
	cpuPercent   prometheus.Gauge
	rssBytes     prometheus.Gauge
}

// NewSimMetrics создаёт и регистрирует метрики
func NewSimMetrics() *SimMetrics {
	m := &SimMetrics{
		registry: prometheus.NewRegistry(),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Длительность одного тика симуляции.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		entities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entities",
			Help:      "Количество сущностей в мире.",
		}),
		players: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "players",
			Help:      "Количество игроков в мире.",
		}),
		drops: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "drops",
			Help:      "Количество выпавших предметов в мире.",
		}),
		blockEdits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "block_edits_total",
			Help:      "Записей в клетки сетки, включая реактивные замены.",
		}),
		lightCells: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "light_cells_total",
			Help:      "Клеток, затронутых пересчётом освещения.",
		}),
		cpuPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_cpu_percent",
			Help:      "Загрузка CPU процессом, %.",
		}),
		rssBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_rss_bytes",
			Help:      "Резидентная память процесса.",
		}),
	}

	m.registry.MustRegister(m.tickDuration, m.entities, m.players, m.drops,
		m.blockEdits, m.lightCells, m.cpuPercent, m.rssBytes)
	return m
}

// Registry возвращает регистр метрик
func (m *SimMetrics) Registry() *prometheus.Registry { return m.registry }

// ObserveTick учитывает длительность тика
func (m *SimMetrics) ObserveTick(d time.Duration) {
	m.tickDuration.Observe(d.Seconds())
}

// SetEntityCounts обновляет численность сущностей
func (m *SimMetrics) SetEntityCounts(entities, players, drops int) {
	m.entities.Set(float64(entities))
	m.players.Set(float64(players))
	m.drops.Set(float64(drops))
}

// AddBlockEdits учитывает записи в сетку
func (m *SimMetrics) AddBlockEdits(n int) {
	if n > 0 {
		m.blockEdits.Add(float64(n))
	}
}

// AddLightCells учитывает пересчитанные клетки освещения
func (m *SimMetrics) AddLightCells(n int) {
	if n > 0 {
		m.lightCells.Add(float64(n))
	}
}

// SetProcessStats обновляет показатели процесса
func (m *SimMetrics) SetProcessStats(s ProcessStats) {
	m.cpuPercent.Set(s.CPUPercent)
	m.rssBytes.Set(float64(s.RSSBytes))
}

// Handler возвращает HTTP-обработчик /metrics для собственного регистра
func (m *SimMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Exporter обслуживает /metrics и периодически обновляет показатели процесса
type Exporter struct {
	metrics  *SimMetrics
	sampler  *ProcessSampler
	interval time.Duration
	server   *http.Server
	quit     chan struct{}
	done     chan struct{}
}

// NewExporter создаёт экспортер, но не запускает HTTP-сервер.
// sampler может быть nil: тогда показатели процесса не обновляются.
func NewExporter(m *SimMetrics, sampler *ProcessSampler, interval time.Duration) *Exporter {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Exporter{
		metrics:  m,
		sampler:  sampler,
		interval: interval,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// StartHTTP запускает HTTP-эндпоинт Prometheus на указанном адресе (например, ":2112").
// Метод неблокирующий: HTTP-сервер стартует в отдельной горутине.
func (e *Exporter) StartHTTP(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.metrics.Handler())
	e.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		if err := e.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
	go e.loop()
}

func (e *Exporter) loop() {
	defer close(e.done)
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		e.sample()
		select {
		case <-e.quit:
			return
		case <-ticker.C:
		}
	}
}

func (e *Exporter) sample() {
	if e.sampler == nil {
		return
	}
	stats, err := e.sampler.Sample()
	if err != nil {
		logging.Warn("Не удалось снять показатели процесса: %v", err)
	}
	e.metrics.SetProcessStats(stats)
}

// Stop останавливает обновление метрик и HTTP-сервер
func (e *Exporter) Stop(ctx context.Context) error {
	if e.server == nil {
		return nil
	}
	close(e.quit)
	<-e.done
	return e.server.Shutdown(ctx)
}
