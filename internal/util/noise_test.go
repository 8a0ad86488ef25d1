package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoise_Deterministic(t *testing.T) {
	for _, name := range []string{NoiseOpenSimplex, NoisePerlin} {
		fn, err := NoiseByName(name)
		require.NoError(t, err)

		for i := 0; i < 50; i++ {
			x := float64(i)*0.37 - 5
			y := float64(i)*1.13 + 2
			assert.Equal(t, fn(42, x, y), fn(42, x, y), "%s должен быть детерминированным", name)
		}
	}
}

func TestNoise_Range(t *testing.T) {
	for _, fn := range []NoiseFunc{OpenSimplex2D, Perlin2D} {
		for x := -20.0; x < 20; x += 0.7 {
			for y := -20.0; y < 20; y += 0.9 {
				v := fn(7, x, y)
				assert.GreaterOrEqual(t, v, -1.0)
				assert.LessOrEqual(t, v, 1.0)
			}
		}
	}
}

func TestNoise_SeedMatters(t *testing.T) {
	// Разные сиды должны давать разные поля хотя бы в одной точке
	differs := false
	for i := 0; i < 100 && !differs; i++ {
		x, y := float64(i)*0.31, float64(i)*0.17
		differs = OpenSimplex2D(1, x, y) != OpenSimplex2D(2, x, y)
	}
	assert.True(t, differs, "сид должен влиять на шум")
}

func TestScaled(t *testing.T) {
	var gotX, gotY float64
	probe := func(seed int64, x, y float64) float64 {
		gotX, gotY = x, y
		return 0.5
	}

	v := Scaled(probe, 64)(1, 128, -32)
	assert.Equal(t, 0.5, v)
	assert.Equal(t, 2.0, gotX)
	assert.Equal(t, -0.5, gotY)
}

func TestNoiseByName_Unknown(t *testing.T) {
	_, err := NoiseByName("value")
	assert.ErrorIs(t, err, ErrUnknownNoise)

	fn, err := NoiseByName("")
	require.NoError(t, err)
	assert.NotNil(t, fn)
}

func BenchmarkOpenSimplex2D(b *testing.B) {
	for i := 0; i < b.N; i++ {
		OpenSimplex2D(42, float64(i)*0.01, 3.3)
	}
}
