package world

import (
	"math"

	"github.com/annel0/voxel-area/internal/util"
	"github.com/annel0/voxel-area/internal/vec"
	"github.com/annel0/voxel-area/internal/world/tile"
)

// Параметры генерации по умолчанию
const (
	DefaultNoiseScale = 64.0 // Делитель координат для шума
	DefaultAmplitude  = 16.0 // Размах рельефа в тайлах
	DefaultBaseHeight = 0.0  // Средняя высота поверхности
	DefaultSeaLevel   = 0    // Ниже - вода над поверхностью
	DefaultDirtDepth  = 3    // Толщина слоя земли под поверхностью
)

// HeightMap - высоты поверхности одной колонки чанков, индексируются [x][z].
// Значения в тайлах (абсолютный Y).
type HeightMap [ChunkSize][ChunkSize]float64

// GeneratorConfig задаёт параметры ландшафта
type GeneratorConfig struct {
	Noise      util.NoiseFunc // Исходное поле шума, без масштабирования
	NoiseScale float64        // Во сколько раз растянуть шум по горизонтали
	Amplitude  float64
	BaseHeight float64
	SeaLevel   int
	DirtDepth  int
}

// DefaultGeneratorConfig возвращает конфигурацию генератора по умолчанию
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Noise:      util.OpenSimplex2D,
		NoiseScale: DefaultNoiseScale,
		Amplitude:  DefaultAmplitude,
		BaseHeight: DefaultBaseHeight,
		SeaLevel:   DefaultSeaLevel,
		DirtDepth:  DefaultDirtDepth,
	}
}

// WorldGenerator генерирует ландшафт мира
type WorldGenerator struct {
	Seed int64 // Сид для генерации шума

	noise   util.NoiseFunc
	cfg     GeneratorConfig
	metrics *Metrics
}

// NewWorldGenerator создаёт новый генератор мира
func NewWorldGenerator(seed int64, cfg GeneratorConfig, metrics *Metrics) *WorldGenerator {
	if cfg.Noise == nil {
		cfg.Noise = util.OpenSimplex2D
	}
	if cfg.NoiseScale <= 0 {
		cfg.NoiseScale = DefaultNoiseScale
	}

	return &WorldGenerator{
		Seed:    seed,
		noise:   util.Scaled(cfg.Noise, cfg.NoiseScale),
		cfg:     cfg,
		metrics: metrics,
	}
}

// Config возвращает итоговую конфигурацию генератора
func (wg *WorldGenerator) Config() GeneratorConfig {
	return wg.cfg
}

// GenerateHeightMap строит карту высот колонки, начинающейся в абсолютной
// позиции origin. Шум двумерный и не зависит от Y, поэтому карта строится
// один раз на колонку и переиспользуется всеми чанками по вертикали.
func (wg *WorldGenerator) GenerateHeightMap(origin vec.Vec3) HeightMap {
	var hm HeightMap

	for x := 0; x < ChunkSize; x++ {
		for z := 0; z < ChunkSize; z++ {
			n := wg.noise(wg.Seed, float64(origin.X+x), float64(origin.Z+z))
			hm[x][z] = wg.cfg.BaseHeight + n*wg.cfg.Amplitude
		}
	}

	wg.metrics.heightMapGenerated(ChunkSize * ChunkSize)
	return hm
}

// GenerateChunk заполняет чанк по его координатам и карте высот колонки.
// Функция чистая: регистрацией результата занимается вызывающий.
func (wg *WorldGenerator) GenerateChunk(coords vec.Vec3, hm *HeightMap) *Chunk {
	var tiles TileVolume

	baseY := coords.Y << vec.Log2ChunkSize

	for y := 0; y < ChunkSize; y++ {
		absY := baseY + y
		for x := 0; x < ChunkSize; x++ {
			for z := 0; z < ChunkSize; z++ {
				surface := int(math.Floor(hm[x][z]))
				tiles[y][x][z] = tile.New(wg.classify(absY, surface))
			}
		}
	}

	wg.metrics.chunkGenerated()
	return NewChunk(coords, tiles)
}

// classify определяет тип тайла на высоте absY в колонке с поверхностью surface.
// Всё ниже surface твёрдое, всё начиная с surface - вода или воздух.
func (wg *WorldGenerator) classify(absY, surface int) tile.TileType {
	switch {
	case absY >= surface:
		if absY < wg.cfg.SeaLevel {
			return tile.Water
		}
		return tile.Air

	case absY == surface-1:
		if absY >= wg.cfg.SeaLevel {
			return tile.Grass
		}
		return tile.Dirt

	case absY >= surface-1-wg.cfg.DirtDepth:
		return tile.Dirt

	default:
		return tile.Stone
	}
}
