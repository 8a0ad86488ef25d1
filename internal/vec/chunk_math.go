package vec

// Размер чанка по каждой оси. Должен быть степенью двойки:
// деление на него выполняется сдвигом на Log2ChunkSize.
const (
	Log2ChunkSize = 4
	ChunkSize     = 1 << Log2ChunkSize
)

// floorShift делит координату на ChunkSize с округлением к минус бесконечности.
// Арифметический сдвиг в Go для знаковых типов ведёт себя именно так,
// в отличие от оператора "/", который округляет к нулю.
func floorShift(v int) int {
	return v >> Log2ChunkSize
}

// wrapLocal возвращает остаток в диапазоне [0, ChunkSize) и для отрицательных v.
func wrapLocal(v int) uint8 {
	return uint8(((v % ChunkSize) + ChunkSize) % ChunkSize)
}
