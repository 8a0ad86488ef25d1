package vec

import "fmt"

// Vec3 представляет трехмерный вектор с целочисленными координатами.
// Используется и для абсолютных координат тайлов, и для координат чанков
// (одна единица = одно ребро чанка), как Vec2 в двухмерном мире.
type Vec3 struct {
	X int
	Y int
	Z int
}

// RelVec3 - смещение тайла внутри своего чанка, каждая ось в [0, ChunkSize)
type RelVec3 struct {
	X uint8
	Y uint8
	Z uint8
}

// ToChunkCoords возвращает координаты чанка, содержащего абсолютную позицию v
func (v Vec3) ToChunkCoords() Vec3 {
	return Vec3{
		X: floorShift(v.X),
		Y: floorShift(v.Y),
		Z: floorShift(v.Z),
	}
}

// LocalInChunk возвращает позицию v относительно начала её чанка
func (v Vec3) LocalInChunk() RelVec3 {
	return RelVec3{
		X: wrapLocal(v.X),
		Y: wrapLocal(v.Y),
		Z: wrapLocal(v.Z),
	}
}

// ChunkOrigin для координат чанка возвращает абсолютную позицию его угла (0,0,0)
func (v Vec3) ChunkOrigin() Vec3 {
	return Vec3{
		X: v.X << Log2ChunkSize,
		Y: v.Y << Log2ChunkSize,
		Z: v.Z << Log2ChunkSize,
	}
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Less задаёт порядок Y, X, Z - тот же, что у раскладки тайлов в чанке.
func (v Vec3) Less(other Vec3) bool {
	if v.Y != other.Y {
		return v.Y < other.Y
	}
	if v.X != other.X {
		return v.X < other.X
	}
	return v.Z < other.Z
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%d,%d,%d)", v.X, v.Y, v.Z)
}

// Index возвращает плоский индекс в массиве ChunkSize^3 с порядком [y][x][z]
func (r RelVec3) Index() int {
	return (int(r.Y)*ChunkSize+int(r.X))*ChunkSize + int(r.Z)
}

// Abs восстанавливает абсолютную позицию по координатам чанка и смещению
func (r RelVec3) Abs(chunk Vec3) Vec3 {
	return chunk.ChunkOrigin().Add(Vec3{X: int(r.X), Y: int(r.Y), Z: int(r.Z)})
}
