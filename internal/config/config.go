package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/annel0/voxel-area/internal/util"
	"github.com/annel0/voxel-area/internal/world"
	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения.
type Config struct {
	Generation GenerationConfig `yaml:"generation"`
	Storage    StorageConfig    `yaml:"storage"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type GenerationConfig struct {
	Seed       int64   `yaml:"seed"`
	Radius     uint32  `yaml:"radius"`
	Noise      string  `yaml:"noise"`
	NoiseScale float64 `yaml:"noise_scale"`
	Amplitude  float64 `yaml:"amplitude"`
	BaseHeight float64 `yaml:"base_height"`
	SeaLevel   int     `yaml:"sea_level"`
	DirtDepth  int     `yaml:"dirt_depth"`
	Workers    int     `yaml:"workers"`
}

type StorageConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type MetricsConfig struct {
	Port int `yaml:"port"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  bool   `yaml:"file"`
}

// Ошибки валидации
var (
	ErrBadNoiseScale = errors.New("noise_scale must be positive")
	ErrBadRadius     = errors.New("radius must fit into int32")
	ErrBadWorkers    = errors.New("workers must not be negative")
)

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Generation: GenerationConfig{
			Seed:       0,
			Radius:     2,
			Noise:      util.NoiseOpenSimplex,
			NoiseScale: world.DefaultNoiseScale,
			Amplitude:  world.DefaultAmplitude,
			BaseHeight: world.DefaultBaseHeight,
			SeaLevel:   world.DefaultSeaLevel,
			DirtDepth:  world.DefaultDirtDepth,
			Workers:    1,
		},
		Storage: StorageConfig{
			Path: "data",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "voxel-area",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// GetMetricsPort возвращает порт Prometheus метрик с поддержкой fallback значений
func (m *MetricsConfig) GetMetricsPort() int {
	return getIntWithEnvFallback(m.Port, "AREA_METRICS_PORT", 2112)
}

// getIntWithEnvFallback возвращает значение с приоритетом: config -> env -> default
func getIntWithEnvFallback(configValue int, envVar string, defaultValue int) int {
	// Если значение задано в конфиге и больше 0, используем его
	if configValue > 0 {
		return configValue
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if v, err := strconv.Atoi(envVal); err == nil && v > 0 {
			return v
		}
	}

	return defaultValue
}

// applyEnv переопределяет параметры генерации из окружения (AREA_SEED, AREA_RADIUS)
func (c *Config) applyEnv() error {
	if v := os.Getenv("AREA_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("AREA_SEED: %w", err)
		}
		c.Generation.Seed = seed
	}
	if v := os.Getenv("AREA_RADIUS"); v != "" {
		radius, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("AREA_RADIUS: %w", err)
		}
		c.Generation.Radius = uint32(radius)
	}
	return nil
}

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	g := c.Generation
	if g.NoiseScale <= 0 {
		return fmt.Errorf("%w: %v", ErrBadNoiseScale, g.NoiseScale)
	}
	if g.Radius > math.MaxInt32 {
		return fmt.Errorf("%w: %d", ErrBadRadius, g.Radius)
	}
	if g.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrBadWorkers, g.Workers)
	}
	if _, err := util.NoiseByName(g.Noise); err != nil {
		return err
	}
	return nil
}

// GeneratorConfig собирает параметры генератора ландшафта
func (g GenerationConfig) GeneratorConfig() (world.GeneratorConfig, error) {
	noise, err := util.NoiseByName(g.Noise)
	if err != nil {
		return world.GeneratorConfig{}, err
	}
	return world.GeneratorConfig{
		Noise:      noise,
		NoiseScale: g.NoiseScale,
		Amplitude:  g.Amplitude,
		BaseHeight: g.BaseHeight,
		SeaLevel:   g.SeaLevel,
		DirtDepth:  g.DirtDepth,
	}, nil
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать путь из ENV AREA_CONFIG;
// если и он не задан, используются значения по умолчанию.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("AREA_CONFIG")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("ошибка разбора %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
