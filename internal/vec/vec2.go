package vec

// Vec2 представляет 2D координаты (в мире 3D используется как X/Z колонки)
type Vec2 struct {
	X, Y int
}

// ToChunkCoords преобразует глобальные координаты в координаты чанка
func (v Vec2) ToChunkCoords() Vec2 {
	return Vec2{X: floorShift(v.X), Y: floorShift(v.Y)}
}

// LocalInChunk возвращает локальные координаты внутри чанка
func (v Vec2) LocalInChunk() Vec2 {
	return Vec2{X: int(wrapLocal(v.X)), Y: int(wrapLocal(v.Y))}
}
