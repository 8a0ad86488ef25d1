package util

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// NoiseFunc - детерминированное 2D поле шума: одинаковые seed, x, y
// всегда дают одинаковый результат. Значения лежат в [-1, 1].
type NoiseFunc func(seed int64, x, y float64) float64

// Имена поддерживаемых генераторов шума
const (
	NoiseOpenSimplex = "opensimplex"
	NoisePerlin      = "perlin"
)

// ErrUnknownNoise возвращается NoiseByName для неизвестного имени
var ErrUnknownNoise = errors.New("unknown noise generator")

// Параметры шума Перлина
const (
	perlinAlpha   = 2.0 // Сглаживание шума
	perlinBeta    = 2.0 // Частота шума
	perlinOctaves = 3   // Количество октав
)

var (
	simplexMu    sync.Mutex
	simplexCache = make(map[int64]opensimplex.Noise)

	perlinMu    sync.Mutex
	perlinCache = make(map[int64]*perlin.Perlin)
)

// OpenSimplex2D возвращает значение шума OpenSimplex для указанных координат (от -1 до 1)
func OpenSimplex2D(seed int64, x, y float64) float64 {
	simplexMu.Lock()
	gen, ok := simplexCache[seed]
	if !ok {
		gen = opensimplex.New(seed)
		simplexCache[seed] = gen
	}
	simplexMu.Unlock()

	return gen.Eval2(x, y)
}

// Perlin2D возвращает значение шума Перлина для указанных координат (от -1 до 1).
// Генераторы кешируются по сиду, под мьютексом только обращение к кешу.
func Perlin2D(seed int64, x, y float64) float64 {
	perlinMu.Lock()
	gen, ok := perlinCache[seed]
	if !ok {
		gen = perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed)
		perlinCache[seed] = gen
	}
	perlinMu.Unlock()

	return clamp(gen.Noise2D(x, y), -1, 1)
}

// Scaled растягивает поле шума: обе координаты делятся на scale,
// чтобы рельеф менялся на протяжении многих тайлов, а не в каждом.
func Scaled(fn NoiseFunc, scale float64) NoiseFunc {
	return func(seed int64, x, y float64) float64 {
		return fn(seed, x/scale, y/scale)
	}
}

// NoiseByName возвращает генератор шума по имени из конфигурации.
// Пустое имя означает OpenSimplex.
func NoiseByName(name string) (NoiseFunc, error) {
	switch name {
	case "", NoiseOpenSimplex:
		return OpenSimplex2D, nil
	case NoisePerlin:
		return Perlin2D, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownNoise, name)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
