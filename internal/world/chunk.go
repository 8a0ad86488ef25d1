package world

import (
	"github.com/annel0/voxel-area/internal/vec"
	"github.com/annel0/voxel-area/internal/world/tile"
)

// ChunkSize - длина ребра чанка в тайлах
const ChunkSize = vec.ChunkSize

// TileVolume - объём тайлов одного чанка. Порядок осей: [y][x][z].
type TileVolume [ChunkSize][ChunkSize][ChunkSize]tile.Tile

// Chunk представляет куб мира размером ChunkSize^3 тайлов
type Chunk struct {
	Coords vec.Vec3   // Координаты чанка (в чанках, не в тайлах)
	Tiles  TileVolume // Тайлы, индексируются [y][x][z]
}

// NewChunk создаёт чанк, забирая заполненный объём тайлов
func NewChunk(coords vec.Vec3, tiles TileVolume) *Chunk {
	return &Chunk{
		Coords: coords,
		Tiles:  tiles,
	}
}

// Get возвращает тайл по локальным координатам
func (c *Chunk) Get(local vec.RelVec3) tile.Tile {
	return c.Tiles[local.Y][local.X][local.Z]
}

// Set устанавливает тайл по локальным координатам
func (c *Chunk) Set(local vec.RelVec3, t tile.Tile) {
	c.Tiles[local.Y][local.X][local.Z] = t
}

// CountTiles считает тайлы указанного типа
func (c *Chunk) CountTiles(t tile.TileType) int {
	n := 0
	for y := range c.Tiles {
		for x := range c.Tiles[y] {
			for z := range c.Tiles[y][x] {
				if c.Tiles[y][x][z].Type == t {
					n++
				}
			}
		}
	}
	return n
}

// Clone возвращает независимую копию чанка
func (c *Chunk) Clone() Chunk {
	return *c
}
