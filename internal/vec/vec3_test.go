package vec

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVec3_ToChunkCoords(t *testing.T) {
	tests := []struct {
		name string
		in   Vec3
		want Vec3
	}{
		{"начало координат", Vec3{0, 0, 0}, Vec3{0, 0, 0}},
		{"конец первого чанка", Vec3{15, 15, 15}, Vec3{0, 0, 0}},
		{"начало второго чанка", Vec3{16, 32, 48}, Vec3{1, 2, 3}},
		{"минус один", Vec3{-1, -1, -1}, Vec3{-1, -1, -1}},
		{"граница отрицательного чанка", Vec3{-16, -17, -32}, Vec3{-1, -2, -2}},
		{"смешанные знаки", Vec3{-5, 20, -33}, Vec3{-1, 1, -3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.ToChunkCoords())
		})
	}
}

func TestVec3_LocalInChunk(t *testing.T) {
	tests := []struct {
		in   Vec3
		want RelVec3
	}{
		{Vec3{0, 0, 0}, RelVec3{0, 0, 0}},
		{Vec3{17, 31, 5}, RelVec3{1, 15, 5}},
		{Vec3{-1, -16, -17}, RelVec3{15, 0, 15}},
		{Vec3{-160, -161, -159}, RelVec3{0, 15, 1}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.LocalInChunk(), "позиция %v", tt.in)
	}
}

func TestVec3_RoundTrip(t *testing.T) {
	// Фиксированный сид, чтобы падения воспроизводились
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 1000; i++ {
		p := Vec3{
			X: rng.Intn(20*ChunkSize) - 10*ChunkSize,
			Y: rng.Intn(20*ChunkSize) - 10*ChunkSize,
			Z: rng.Intn(20*ChunkSize) - 10*ChunkSize,
		}

		chunk := p.ToChunkCoords()
		rel := p.LocalInChunk()

		require.Less(t, int(rel.X), ChunkSize)
		require.Less(t, int(rel.Y), ChunkSize)
		require.Less(t, int(rel.Z), ChunkSize)

		assert.Equal(t, p.X, chunk.X*ChunkSize+int(rel.X), "X для %v", p)
		assert.Equal(t, p.Y, chunk.Y*ChunkSize+int(rel.Y), "Y для %v", p)
		assert.Equal(t, p.Z, chunk.Z*ChunkSize+int(rel.Z), "Z для %v", p)
		assert.Equal(t, p, rel.Abs(chunk))
	}
}

func TestVec3_ToChunkCoordsMonotonic(t *testing.T) {
	prev := Vec3{X: -10 * ChunkSize}.ToChunkCoords().X
	for x := -10*ChunkSize + 1; x <= 10*ChunkSize; x++ {
		cur := Vec3{X: x}.ToChunkCoords().X
		assert.GreaterOrEqual(t, cur, prev, "x=%d", x)
		assert.LessOrEqual(t, cur-prev, 1, "x=%d", x)
		prev = cur
	}
}

func TestRelVec3_Index(t *testing.T) {
	assert.Equal(t, 0, RelVec3{}.Index())
	assert.Equal(t, 1, RelVec3{Z: 1}.Index())
	assert.Equal(t, ChunkSize, RelVec3{X: 1}.Index())
	assert.Equal(t, ChunkSize*ChunkSize, RelVec3{Y: 1}.Index())
	assert.Equal(t, ChunkSize*ChunkSize*ChunkSize-1, RelVec3{X: 15, Y: 15, Z: 15}.Index())
}

func TestVec2_ChunkHelpers(t *testing.T) {
	v := Vec2{X: -1, Y: 33}
	assert.Equal(t, Vec2{X: -1, Y: 2}, v.ToChunkCoords())
	assert.Equal(t, Vec2{X: 15, Y: 1}, v.LocalInChunk())
}

func BenchmarkVec3_ToChunkCoords(b *testing.B) {
	p := Vec3{X: -12345, Y: 678, Z: -9}
	for i := 0; i < b.N; i++ {
		_ = p.ToChunkCoords()
		_ = p.LocalInChunk()
	}
}
