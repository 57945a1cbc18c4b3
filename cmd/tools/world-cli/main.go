package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/annel0/tileworld/internal/config"
	"github.com/annel0/tileworld/internal/storage"
	"github.com/annel0/tileworld/internal/world"
)

const timeFormat = "2006-01-02T15:04:05Z"

func main() {
	var (
		configPath = flag.String("config", "", "путь к YAML конфигурации")
		command    = flag.String("cmd", "list", "Команда: list, info, map, player, delete")
		worldName  = flag.String("world", "", "Имя мира (по умолчанию из конфигурации)")
		player     = flag.String("player", "", "Имя игрока для команды player (пусто — все игроки)")
		x          = flag.Int("x", 0, "Левая клетка окна для map")
		y          = flag.Int("y", 0, "Верхняя клетка окна для map")
		width      = flag.Int("w", 80, "Ширина окна map в клетках")
		height     = flag.Int("h", 40, "Высота окна map в клетках")
		timeout    = flag.Duration("timeout", 30*time.Second, "Таймаут операции")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	if *worldName == "" {
		*worldName = cfg.World.Name
	}

	store, err := storage.Open(cfg.Storage)
	if err != nil {
		log.Fatalf("❌ Ошибка открытия хранилища: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *command {
	case "list":
		err = listWorlds(ctx, store)
	case "info":
		err = showInfo(ctx, store, *worldName)
	case "map":
		err = showMap(ctx, store, *worldName, *x, *y, *width, *height)
	case "player":
		err = showPlayer(ctx, store, *worldName, *player)
	case "delete":
		err = store.DeleteWorld(ctx, *worldName)
		if err == nil {
			fmt.Printf("🗑️  Мир %q удалён\n", *worldName)
		}
	default:
		fmt.Printf("❌ Неизвестная команда: %s\n", *command)
		fmt.Println("Доступные команды: list, info, map, player, delete")
		os.Exit(1)
	}
	if err != nil {
		store.Close()
		log.Fatalf("❌ %s: %v", *command, err)
	}
}

// listWorlds выводит сохранённые миры
func listWorlds(ctx context.Context, store *storage.WorldStorage) error {
	worlds, err := store.ListWorlds(ctx)
	if err != nil {
		return err
	}
	if len(worlds) == 0 {
		fmt.Println("Сохранённых миров нет")
		return nil
	}
	fmt.Printf("%-20s %8s %8s  %s\n", "МИР", "ЧАНКОВ", "РАЗМЕР", "СОХРАНЁН")
	for _, m := range worlds {
		fmt.Printf("%-20s %8d %8d  %s\n", m.Name, m.NumChunks, m.ChunkSize, m.SavedAt.UTC().Format(timeFormat))
	}
	return nil
}

// showInfo выводит метаданные и статистику блоков мира
func showInfo(ctx context.Context, store *storage.WorldStorage, name string) error {
	meta, err := store.LoadMeta(ctx, name)
	if err != nil {
		return err
	}
	cm, err := store.LoadWorld(ctx, name)
	if err != nil {
		return err
	}

	fmt.Printf("🌍 Мир %q (формат v%d)\n", meta.Name, meta.Version)
	fmt.Printf("   Чанков: %dx%d по %d клеток, сторона %d клеток\n",
		meta.NumChunks, meta.NumChunks, meta.ChunkSize, cm.TotalBlocks())
	fmt.Printf("   Сохранён: %s\n", meta.SavedAt.UTC().Format(timeFormat))

	for l := world.Layer(0); l < world.MaxLayers; l++ {
		total := 0
		for _, c := range cm.Chunks() {
			total += c.CountBlocks(l)
		}
		fmt.Printf("   Слой %s: %d блоков\n", l, total)
	}
	return nil
}

// showMap рисует окно мира символами
func showMap(ctx context.Context, store *storage.WorldStorage, name string, x, y, width, height int) error {
	cm, err := store.LoadWorld(ctx, name)
	if err != nil {
		return err
	}

	bs := float64(world.BlockPixelSize)
	w, err := world.NewFromChunkManager(cm, name, world.WithViewportSize(float64(width)*bs, float64(height)*bs))
	if err != nil {
		return err
	}
	w.SetViewport(float64(x)*bs, float64(y)*bs)

	r := world.NewASCIIRenderer(w.Viewport())
	w.Render(r)
	_, err = r.WriteTo(os.Stdout)
	return err
}

// showPlayer выводит сохранённое состояние игрока
// Без имени выводится список всех игроков мира.
func showPlayer(ctx context.Context, store *storage.WorldStorage, worldName, name string) error {
	if name == "" {
		states, err := store.ListPlayers(ctx, worldName)
		if err != nil {
			return err
		}
		for _, s := range states {
			fmt.Printf("🧍 %-20s (%.1f, %.1f)\n", s.Name, s.X, s.Y)
		}
		return nil
	}

	state, ok, err := store.LoadPlayer(ctx, worldName, name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("игрок %q не найден в мире %q", name, worldName)
	}

	fmt.Printf("🧍 %s: (%.1f, %.1f)\n", state.Name, state.X, state.Y)
	for i, s := range state.Inventory {
		if s.Count > 0 {
			fmt.Printf("   [%2d] %-12s x%d\n", i, s.Item, s.Count)
		}
	}
	return nil
}
