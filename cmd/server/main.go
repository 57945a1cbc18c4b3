package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/tileworld/internal/config"
	"github.com/annel0/tileworld/internal/logging"
	"github.com/annel0/tileworld/internal/metrics"
	"github.com/annel0/tileworld/internal/storage"
	"github.com/annel0/tileworld/internal/world"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации")
	debug := flag.Bool("debug", false, "включить отладочный режим тиков")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	logging.SetLogDir(cfg.Log.Dir)

	if level, err := logging.ParseLevel(cfg.Log.Level); err == nil {
		logging.SetDefaultLevel(level)
	} else {
		logging.Warn("Неизвестный уровень логирования %q, используется INFO", cfg.Log.Level)
	}

	logging.Info("🎮 Запуск TileWorld: мир %q, %dx%d чанков по %d клеток",
		cfg.World.Name, cfg.World.NumChunks, cfg.World.NumChunks, cfg.World.ChunkSize)

	if err := run(cfg, *debug); err != nil {
		logging.Error("❌ %v", err)
		logging.CloseDefaultLogger()
		os.Exit(1)
	}

	logging.Info("👋 Сервер успешно остановлен")
}

func run(cfg *config.Config, debug bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("открытие хранилища: %w", err)
	}
	defer store.Close()

	sim := metrics.NewSimMetrics()
	opts := []world.Option{world.WithRecorder(sim), world.WithLight(cfg.Light)}

	w, err := loadOrCreate(ctx, store, cfg, opts)
	if err != nil {
		return err
	}

	if n, err := storage.RestorePlayers(ctx, store, w); err != nil {
		return fmt.Errorf("загрузка игроков: %w", err)
	} else if n > 0 {
		logging.Info("🧍 Восстановлено игроков: %d", n)
	}

	sampler, err := metrics.NewProcessSampler()
	if err != nil {
		logging.Warn("Показатели процесса недоступны: %v", err)
		sampler = nil
	}
	exporter := metrics.NewExporter(sim, sampler, 5*time.Second)
	exporter.StartHTTP(fmt.Sprintf(":%d", cfg.Server.GetMetricsPort()))

	runner := world.NewRunner(w, world.NewSession(debug), cfg.Server.TPS)
	if cfg.Storage.AutosaveSeconds > 0 {
		runner.WithSaver(store, time.Duration(cfg.Storage.AutosaveSeconds)*time.Second)
	}

	logging.Info("✅ Симуляция запущена: %d тиков/с", cfg.Server.TPS)
	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("цикл симуляции: %w", err)
	}
	logging.Info("📡 Получен сигнал завершения, сохраняем состояние...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := exporter.Stop(shutdownCtx); err != nil {
		logging.Warn("Ошибка остановки Prometheus HTTP: %v", err)
	}
	if n, err := store.SaveDirty(shutdownCtx, w.Name(), w.ChunkManager()); err != nil {
		return fmt.Errorf("финальное сохранение: %w", err)
	} else if n > 0 {
		logging.Info("💾 Сохранено чанков: %d", n)
	}

	if n, err := storage.SavePlayers(shutdownCtx, store, w); err != nil {
		return fmt.Errorf("сохранение игроков: %w", err)
	} else if n > 0 {
		logging.Info("💾 Сохранено игроков: %d", n)
	}
	return nil
}

// loadOrCreate загружает мир из хранилища или генерирует новый и сразу сохраняет его
func loadOrCreate(ctx context.Context, store *storage.WorldStorage, cfg *config.Config, opts []world.Option) (*world.World, error) {
	name := cfg.World.Name

	cm, err := store.LoadWorld(ctx, name)
	switch {
	case err == nil:
		logging.Info("📂 Мир %q загружен из хранилища", name)
		return world.NewFromChunkManager(cm, name, append(opts, world.WithMaxDrops(cfg.World.MaxDrops))...)
	case !errors.Is(err, storage.ErrWorldNotFound):
		return nil, fmt.Errorf("загрузка мира %q: %w", name, err)
	}

	start := time.Now()
	w, err := world.New(cfg.World, name, opts...)
	if err != nil {
		return nil, fmt.Errorf("генерация мира: %w", err)
	}
	logging.Info("🌱 Мир %q сгенерирован за %v", name, time.Since(start))

	if err := store.SaveWorld(ctx, name, w.ChunkManager().Snapshot()); err != nil {
		return nil, fmt.Errorf("сохранение нового мира: %w", err)
	}
	w.ChunkManager().ClearDirty()
	return w, nil
}
