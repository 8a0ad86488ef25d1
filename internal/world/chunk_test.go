package world

import (
	"testing"

	"github.com/annel0/voxel-area/internal/vec"
	"github.com/annel0/voxel-area/internal/world/tile"
)

func TestChunkCreateAndGetTile(t *testing.T) {
	coords := vec.Vec3{X: 5, Y: -1, Z: 10}
	chunk := NewChunk(coords, TileVolume{})

	// Проверяем координаты
	if !chunk.Coords.Equals(coords) {
		t.Errorf("Ожидались координаты %v, получено %v", coords, chunk.Coords)
	}

	// Пустой объём состоит из нулевых тайлов
	pos := vec.RelVec3{X: 3, Y: 4, Z: 7}
	if got := chunk.Get(pos); got.Type != tile.OutOfBounds {
		t.Errorf("Ожидался нулевой тайл, получен %v", got)
	}

	// Устанавливаем и проверяем тайл
	chunk.Set(pos, tile.New(tile.Stone))
	if got := chunk.Get(pos); got.Type != tile.Stone {
		t.Errorf("Ожидался stone, получен %v", got)
	}

	// Раскладка [y][x][z]
	if chunk.Tiles[4][3][7].Type != tile.Stone {
		t.Error("Тайл должен храниться в Tiles[y][x][z]")
	}
}

func TestChunkCountTiles(t *testing.T) {
	var tiles TileVolume
	tiles[0][0][0] = tile.New(tile.Grass)
	tiles[1][2][3] = tile.New(tile.Grass)
	chunk := NewChunk(vec.Vec3{}, tiles)

	if n := chunk.CountTiles(tile.Grass); n != 2 {
		t.Errorf("Ожидалось 2 тайла травы, получено %d", n)
	}
	if n := chunk.CountTiles(tile.OutOfBounds); n != ChunkSize*ChunkSize*ChunkSize-2 {
		t.Errorf("Неверное количество пустых тайлов: %d", n)
	}
}

func TestChunkCloneIsIndependent(t *testing.T) {
	chunk := NewChunk(vec.Vec3{}, TileVolume{})
	clone := chunk.Clone()

	clone.Set(vec.RelVec3{}, tile.New(tile.Water))
	if chunk.Get(vec.RelVec3{}).Type == tile.Water {
		t.Error("Изменение копии не должно затрагивать оригинал")
	}
}
