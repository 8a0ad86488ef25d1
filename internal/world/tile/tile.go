package tile

import (
	"errors"
	"fmt"
	"sort"
)

// TileType представляет тип тайла
type TileType uint8

// Константы типов тайлов
const (
	// OutOfBounds возвращается для позиций, чанк которых не сгенерирован
	OutOfBounds TileType = iota // 0
	Air                         // 1
	Water                       // 2
	Stone                       // 3
	Dirt                        // 4
	Grass                       // 5
)

// ErrUnknownTileType возвращается ParseTileType для неизвестного имени
var ErrUnknownTileType = errors.New("unknown tile type")

// Info описывает свойства типа тайла
type Info struct {
	Name  string
	Solid bool
}

var registry = make(map[TileType]Info)
var byName = make(map[string]TileType)

func init() {
	Register(OutOfBounds, Info{Name: "out_of_bounds"})
	Register(Air, Info{Name: "air"})
	Register(Water, Info{Name: "water"})
	Register(Stone, Info{Name: "stone", Solid: true})
	Register(Dirt, Info{Name: "dirt", Solid: true})
	Register(Grass, Info{Name: "grass", Solid: true})
}

// Register добавляет тип тайла в регистр
func Register(t TileType, info Info) {
	registry[t] = info
	byName[info.Name] = t
}

// Lookup возвращает свойства для указанного типа
func Lookup(t TileType) (Info, bool) {
	info, exists := registry[t]
	return info, exists
}

// IsValid проверяет, зарегистрирован ли тип
func IsValid(t TileType) bool {
	_, exists := registry[t]
	return exists
}

// ParseTileType возвращает тип по имени из регистра
func ParseTileType(name string) (TileType, error) {
	t, ok := byName[name]
	if !ok {
		return OutOfBounds, fmt.Errorf("%w: %q", ErrUnknownTileType, name)
	}
	return t, nil
}

// Names возвращает отсортированный список имён зарегистрированных типов
func Names() []string {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t TileType) String() string {
	if info, ok := registry[t]; ok {
		return info.Name
	}
	return fmt.Sprintf("tile(%d)", uint8(t))
}

// Tile - классифицированная ячейка мира. Копируется по значению.
type Tile struct {
	Type TileType
}

// New создаёт тайл указанного типа
func New(t TileType) Tile {
	return Tile{Type: t}
}

// IsSolid возвращает true для твёрдых тайлов (камень, земля, трава)
func (t Tile) IsSolid() bool {
	info, ok := registry[t.Type]
	return ok && info.Solid
}

// IsOutOfBounds возвращает true, если тайл лежит вне сгенерированной области
func (t Tile) IsOutOfBounds() bool {
	return t.Type == OutOfBounds
}

func (t Tile) String() string {
	return t.Type.String()
}
