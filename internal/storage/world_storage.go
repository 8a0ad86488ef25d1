package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/annel0/voxel-area/internal/logging"
	"github.com/annel0/voxel-area/internal/vec"
	"github.com/annel0/voxel-area/internal/world"
	"github.com/annel0/voxel-area/internal/world/tile"
	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

var (
	// ErrChunkNotFound возвращается LoadChunk, если чанк не сохранён
	ErrChunkNotFound = errors.New("chunk not found")
	// ErrStorageClosed возвращается любым методом закрытого хранилища
	ErrStorageClosed = errors.New("storage is closed")
	// ErrCorruptChunk возвращается для значений, которые не удаётся декодировать
	ErrCorruptChunk = errors.New("corrupt chunk data")
	// ErrNoAreaMeta возвращается LoadArea, если область не сохранялась
	ErrNoAreaMeta = errors.New("area metadata not found")
	// ErrAreaMismatch возвращается LoadArea, если число чанков не совпадает с метаданными
	ErrAreaMismatch = errors.New("stored chunks do not match area metadata")
)

const (
	chunkPrefix  = "chunk:"
	areaMetaKey  = "meta:area"
	formatV1     = byte(1)
	volumeLength = world.ChunkSize * world.ChunkSize * world.ChunkSize
)

// ChunkStore - узкий интерфейс постоянного хранения чанков
type ChunkStore interface {
	SaveChunk(chunk *world.Chunk) error
	LoadChunk(coords vec.Vec3) (*world.Chunk, error)
	Close() error
}

// AreaMeta описывает сохранённую область
type AreaMeta struct {
	Seed         int64     `json:"seed"`
	GenerationID string    `json:"generation_id"`
	ChunkCount   int       `json:"chunk_count"`
	SavedAt      time.Time `json:"saved_at"`
}

// WorldStorage хранит чанки в BadgerDB. Значение чанка - байт версии формата
// и сжатый zstd объём тайлов в порядке [y][x][z], по байту на тайл.
type WorldStorage struct {
	db      *badger.DB
	dbPath  string
	mutex   sync.RWMutex
	isReady bool

	encoder *zstd.Encoder
	decoder *zstd.Decoder
	logger  *logging.Logger
}

var _ ChunkStore = (*WorldStorage)(nil)

// Option настраивает хранилище при открытии
type Option func(*WorldStorage)

// WithLogger задаёт логгер хранилища. По умолчанию используется logging.Default().
func WithLogger(l *logging.Logger) Option {
	return func(ws *WorldStorage) { ws.logger = l }
}

// NewWorldStorage открывает хранилище в каталоге dataPath/world
func NewWorldStorage(dataPath string, options ...Option) (*WorldStorage, error) {
	dbPath := filepath.Join(dataPath, "world")
	return openStorage(badger.DefaultOptions(dbPath), dbPath, options)
}

// NewInMemoryWorldStorage создаёт хранилище без файлов на диске
func NewInMemoryWorldStorage(options ...Option) (*WorldStorage, error) {
	return openStorage(badger.DefaultOptions("").WithInMemory(true), "", options)
}

func openStorage(opts badger.Options, dbPath string, options []Option) (*WorldStorage, error) {
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	ws := &WorldStorage{
		db:      db,
		dbPath:  dbPath,
		isReady: true,
		encoder: encoder,
		decoder: decoder,
	}
	for _, opt := range options {
		opt(ws)
	}
	if ws.logger == nil {
		ws.logger = logging.Default()
	}
	return ws, nil
}

// Close закрывает хранилище данных
func (ws *WorldStorage) Close() error {
	ws.mutex.Lock()
	defer ws.mutex.Unlock()

	if !ws.isReady {
		return nil
	}

	ws.isReady = false
	ws.encoder.Close()
	ws.decoder.Close()
	return ws.db.Close()
}

func chunkKey(coords vec.Vec3) []byte {
	return []byte(fmt.Sprintf("%s%d:%d:%d", chunkPrefix, coords.X, coords.Y, coords.Z))
}

func parseChunkKey(key []byte) (vec.Vec3, error) {
	var c vec.Vec3
	if _, err := fmt.Sscanf(strings.TrimPrefix(string(key), chunkPrefix), "%d:%d:%d", &c.X, &c.Y, &c.Z); err != nil {
		return vec.Vec3{}, fmt.Errorf("bad chunk key %q: %w", key, err)
	}
	return c, nil
}

// encodeChunk сериализует объём тайлов чанка
func (ws *WorldStorage) encodeChunk(chunk *world.Chunk) []byte {
	raw := make([]byte, volumeLength)
	for y := range chunk.Tiles {
		for x := range chunk.Tiles[y] {
			for z := range chunk.Tiles[y][x] {
				idx := vec.RelVec3{X: uint8(x), Y: uint8(y), Z: uint8(z)}.Index()
				raw[idx] = byte(chunk.Tiles[y][x][z].Type)
			}
		}
	}
	return ws.encoder.EncodeAll(raw, []byte{formatV1})
}

// decodeChunk восстанавливает чанк из значения BadgerDB
func (ws *WorldStorage) decodeChunk(coords vec.Vec3, data []byte) (*world.Chunk, error) {
	if len(data) == 0 || data[0] != formatV1 {
		return nil, fmt.Errorf("%w: chunk %v: unsupported format", ErrCorruptChunk, coords)
	}

	raw, err := ws.decoder.DecodeAll(data[1:], make([]byte, 0, volumeLength))
	if err != nil {
		return nil, fmt.Errorf("%w: chunk %v: %v", ErrCorruptChunk, coords, err)
	}
	if len(raw) != volumeLength {
		return nil, fmt.Errorf("%w: chunk %v: %d bytes, expected %d", ErrCorruptChunk, coords, len(raw), volumeLength)
	}

	var tiles world.TileVolume
	for y := range tiles {
		for x := range tiles[y] {
			for z := range tiles[y][x] {
				t := tile.TileType(raw[vec.RelVec3{X: uint8(x), Y: uint8(y), Z: uint8(z)}.Index()])
				if !tile.IsValid(t) {
					return nil, fmt.Errorf("%w: chunk %v: unknown tile type %d", ErrCorruptChunk, coords, t)
				}
				tiles[y][x][z] = tile.New(t)
			}
		}
	}
	return world.NewChunk(coords, tiles), nil
}

// SaveChunk сохраняет чанк, перезаписывая предыдущую версию
func (ws *WorldStorage) SaveChunk(chunk *world.Chunk) error {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return ErrStorageClosed
	}

	data := ws.encodeChunk(chunk)
	err := ws.db.Update(func(txn *badger.Txn) error {
		return txn.Set(chunkKey(chunk.Coords), data)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}
	return nil
}

// LoadChunk загружает чанк. Если чанк не сохранён, возвращает ErrChunkNotFound.
func (ws *WorldStorage) LoadChunk(coords vec.Vec3) (*world.Chunk, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return nil, ErrStorageClosed
	}

	var data []byte
	err := ws.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(chunkKey(coords))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrChunkNotFound, coords)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	return ws.decodeChunk(coords, data)
}

// DeleteChunk удаляет чанк из хранилища. Отсутствие чанка не считается ошибкой.
func (ws *WorldStorage) DeleteChunk(coords vec.Vec3) error {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return ErrStorageClosed
	}

	return ws.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(chunkKey(coords))
	})
}

// ChunkCount возвращает количество сохранённых чанков
func (ws *WorldStorage) ChunkCount() (int, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return 0, ErrStorageClosed
	}

	n := 0
	err := ws.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(chunkPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// chunkKeys возвращает ключи всех сохранённых чанков
func (ws *WorldStorage) chunkKeys() (map[string]struct{}, error) {
	keys := make(map[string]struct{})
	err := ws.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(chunkPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys[string(it.Item().KeyCopy(nil))] = struct{}{}
		}
		return nil
	})
	return keys, err
}

// SaveArea заменяет сохранённую область: записывает все чанки и метаданные
// одной пакетной записью и удаляет чанки, которых в области нет.
// Чанки хранятся под позицией в области, а не под chunk.Coords.
func (ws *WorldStorage) SaveArea(area *world.Area) error {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return ErrStorageClosed
	}

	stale, err := ws.chunkKeys()
	if err != nil {
		return fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	wb := ws.db.NewWriteBatch()
	defer wb.Cancel()

	count := 0
	err = area.ForEachChunk(func(pos vec.Vec3, c *world.Chunk) error {
		key := chunkKey(pos)
		delete(stale, string(key))
		count++
		return wb.Set(key, ws.encodeChunk(c))
	})
	if err != nil {
		return fmt.Errorf("ошибка записи чанков: %w", err)
	}
	for key := range stale {
		if err := wb.Delete([]byte(key)); err != nil {
			return fmt.Errorf("ошибка удаления чанка %s: %w", key, err)
		}
	}

	meta, err := json.Marshal(AreaMeta{
		Seed:         area.Seed(),
		GenerationID: area.GenerationID().String(),
		ChunkCount:   count,
		SavedAt:      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("ошибка сериализации метаданных: %w", err)
	}
	if err := wb.Set([]byte(areaMetaKey), meta); err != nil {
		return fmt.Errorf("ошибка записи метаданных: %w", err)
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	if len(stale) > 0 {
		ws.logger.Debug("Удалено %d чанков предыдущей области", len(stale))
	}
	ws.logger.Info("💾 Область сохранена: %d чанков, generation=%s", count, area.GenerationID())
	return nil
}

// LoadAreaMeta читает метаданные сохранённой области
func (ws *WorldStorage) LoadAreaMeta() (*AreaMeta, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return nil, ErrStorageClosed
	}
	return ws.loadAreaMeta()
}

func (ws *WorldStorage) loadAreaMeta() (*AreaMeta, error) {
	var data []byte
	err := ws.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(areaMetaKey))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNoAreaMeta
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	var meta AreaMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("ошибка десериализации метаданных: %w", err)
	}
	return &meta, nil
}

// LoadArea восстанавливает сохранённую область со всеми чанками.
// opts передаются в world.NewEmptyArea (генератор, метрики и т.п.).
// Если число чанков не совпадает с метаданными, возвращается ErrAreaMismatch.
func (ws *WorldStorage) LoadArea(opts ...world.AreaOption) (*world.Area, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return nil, ErrStorageClosed
	}

	meta, err := ws.loadAreaMeta()
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(meta.GenerationID)
	if err != nil {
		return nil, fmt.Errorf("bad generation id %q: %w", meta.GenerationID, err)
	}
	area := world.NewEmptyArea(meta.Seed, append(opts[:len(opts):len(opts)], world.WithGenerationID(id))...)

	err = ws.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = []byte(chunkPrefix)

		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			coords, err := parseChunkKey(item.Key())
			if err != nil {
				return err
			}

			data, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			chunk, err := ws.decodeChunk(coords, data)
			if err != nil {
				return err
			}
			area.AddChunk(coords, chunk)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки области: %w", err)
	}

	if area.ChunkCount() != meta.ChunkCount {
		ws.logger.Warn("Загружено %d чанков, в метаданных %d", area.ChunkCount(), meta.ChunkCount)
		return nil, fmt.Errorf("%w: loaded %d chunks, expected %d", ErrAreaMismatch, area.ChunkCount(), meta.ChunkCount)
	}
	return area, nil
}
