package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения.
type Config struct {
	World   WorldConfig   `yaml:"world"`
	Light   LightConfig   `yaml:"light"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// WorldConfig описывает размеры мира и параметры генерации
type WorldConfig struct {
	Name             string  `yaml:"name"`
	NumChunks        int     `yaml:"num_chunks"`
	ChunkSize        int     `yaml:"chunk_size"`
	Seed             int64   `yaml:"seed"`
	Amplitude        float64 `yaml:"amplitude"`
	Frequency        float64 `yaml:"frequency"`
	BaseLevel        float64 `yaml:"base_level"`
	EarthDepth       int     `yaml:"earth_depth"`
	LightstoneChance float64 `yaml:"lightstone_chance"`
	TreeDensity      float64 `yaml:"tree_density"`
	MaxDrops         int     `yaml:"max_drops"`
}

// LightConfig описывает параметры распространения света
type LightConfig struct {
	MaxLight uint8 `yaml:"max_light"`
	Step     uint8 `yaml:"step"`
}

type StorageConfig struct {
	Path            string `yaml:"path"`
	InMemory        bool   `yaml:"in_memory"`
	AutosaveSeconds int    `yaml:"autosave_seconds"`
}

type ServerConfig struct {
	TPS         int `yaml:"tps"`
	MetricsPort int `yaml:"metrics_port"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Name:             "world",
			NumChunks:        8,
			ChunkSize:        32,
			Seed:             0,
			Amplitude:        0.6,
			Frequency:        4,
			BaseLevel:        0.45,
			EarthDepth:       4,
			LightstoneChance: 0.01,
			TreeDensity:      0.05,
			MaxDrops:         2000,
		},
		Light: LightConfig{
			MaxLight: 15,
			Step:     1,
		},
		Storage: StorageConfig{
			Path:            "data",
			AutosaveSeconds: 300,
		},
		Server: ServerConfig{
			TPS:         60,
			MetricsPort: 2112,
		},
		Log: LogConfig{
			Level: "info",
			Dir:   "logs",
		},
	}
}

// Validate проверяет корректность значений
func (c *Config) Validate() error {
	if c.World.NumChunks <= 0 {
		return fmt.Errorf("world.num_chunks должен быть > 0, получено %d", c.World.NumChunks)
	}
	if c.World.ChunkSize <= 0 {
		return fmt.Errorf("world.chunk_size должен быть > 0, получено %d", c.World.ChunkSize)
	}
	if c.World.MaxDrops <= 0 {
		return fmt.Errorf("world.max_drops должен быть > 0, получено %d", c.World.MaxDrops)
	}
	if c.Light.Step == 0 || c.Light.MaxLight == 0 {
		return fmt.Errorf("light.max_light и light.step должны быть > 0")
	}
	if c.Server.TPS <= 0 {
		return fmt.Errorf("server.tps должен быть > 0, получено %d", c.Server.TPS)
	}
	return nil
}

// GetMetricsPort возвращает порт Prometheus с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "TILEWORLD_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// applyEnv переопределяет значения из переменных окружения
func (c *Config) applyEnv() {
	if v := os.Getenv("TILEWORLD_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.World.Seed = seed
		}
	}
	if v := os.Getenv("TILEWORLD_DATA"); v != "" {
		c.Storage.Path = v
	}
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV TILEWORLD_CONFIG, иначе возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("TILEWORLD_CONFIG")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
