package world

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/annel0/voxel-area/internal/logging"
	"github.com/annel0/voxel-area/internal/vec"
	"github.com/annel0/voxel-area/internal/world/tile"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// ErrRadiusOutOfRange возвращается, если радиус не помещается в int32.
// Молчаливое переполнение сместило бы область относительно начала координат.
var ErrRadiusOutOfRange = errors.New("initial radius out of range")

const tracerName = "github.com/annel0/voxel-area/internal/world"

// Area хранит все сгенерированные чанки по их координатам.
// Каждый чанк принадлежит только области; наружу отдаются копии.
type Area struct {
	mu     sync.RWMutex
	chunks map[vec.Vec3]*Chunk

	seed         int64
	generationID uuid.UUID
	generator    *WorldGenerator
	workers      int
	metrics      *Metrics
	tracer       trace.Tracer
	logger       *logging.Logger
}

type areaOptions struct {
	gen          GeneratorConfig
	workers      int
	metrics      *Metrics
	tracer       trace.Tracer
	logger       *logging.Logger
	generationID uuid.UUID
}

// AreaOption настраивает создаваемую область
type AreaOption func(*areaOptions)

// WithGenerator задаёт параметры ландшафта
func WithGenerator(cfg GeneratorConfig) AreaOption {
	return func(o *areaOptions) { o.gen = cfg }
}

// WithWorkers включает параллельную генерацию колонок в n горутинах.
// n <= 1 означает последовательную генерацию.
func WithWorkers(n int) AreaOption {
	return func(o *areaOptions) { o.workers = n }
}

// WithMetrics подключает Prometheus-метрики
func WithMetrics(m *Metrics) AreaOption {
	return func(o *areaOptions) { o.metrics = m }
}

// WithTracer заменяет трассировщик из глобального TracerProvider
func WithTracer(t trace.Tracer) AreaOption {
	return func(o *areaOptions) { o.tracer = t }
}

// WithLogger направляет сообщения области в отдельный логгер
// (по умолчанию используется logging.Default()).
func WithLogger(l *logging.Logger) AreaOption {
	return func(o *areaOptions) { o.logger = l }
}

// WithGenerationID восстанавливает идентификатор генерации (при загрузке из хранилища)
func WithGenerationID(id uuid.UUID) AreaOption {
	return func(o *areaOptions) { o.generationID = id }
}

// NewEmptyArea создаёт область без чанков
func NewEmptyArea(seed int64, opts ...AreaOption) *Area {
	o := areaOptions{
		gen:     DefaultGeneratorConfig(),
		workers: 1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	if o.logger == nil {
		o.logger = logging.Default()
	}
	if o.generationID == uuid.Nil {
		o.generationID = uuid.New()
	}

	return &Area{
		chunks:       make(map[vec.Vec3]*Chunk),
		seed:         seed,
		generationID: o.generationID,
		generator:    NewWorldGenerator(seed, o.gen, o.metrics),
		workers:      o.workers,
		metrics:      o.metrics,
		tracer:       o.tracer,
		logger:       o.logger,
	}
}

// NewArea создаёт область и генерирует куб чанков [-initialRadius, initialRadius)
// по каждой оси вокруг начала координат.
func NewArea(seed int64, initialRadius uint32, opts ...AreaOption) (*Area, error) {
	area := NewEmptyArea(seed, opts...)
	if err := area.Generate(context.Background(), initialRadius); err != nil {
		return nil, err
	}
	return area, nil
}

// signedRadius переводит беззнаковый радиус в знаковый диапазон.
func signedRadius(radius uint32) (int, error) {
	if radius > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %d > %d", ErrRadiusOutOfRange, radius, math.MaxInt32)
	}
	return int(radius), nil
}

// Generate заполняет область чанками в кубе [-radius, radius) по каждой оси.
// Карта высот строится один раз на колонку (X, Z) и используется для всех
// чанков этой колонки по Y. Контекст проверяется между колонками.
func (a *Area) Generate(ctx context.Context, radius uint32) error {
	r, err := signedRadius(radius)
	if err != nil {
		return err
	}

	ctx, span := a.tracer.Start(ctx, "area.generate", trace.WithAttributes(
		attribute.Int64("area.seed", a.seed),
		attribute.Int("area.radius", r),
		attribute.Int("area.workers", a.workers),
	))
	defer span.End()

	start := time.Now()
	a.logger.Info("🌍 Генерация области: seed=%d radius=%d workers=%d", a.seed, r, a.workers)

	if a.workers <= 1 {
		err = a.generateSequential(ctx, r)
	} else {
		err = a.generateParallel(ctx, r)
	}

	elapsed := time.Since(start)
	a.metrics.generationDone(elapsed)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.logger.Warn("Генерация области прервана: %v", err)
		return fmt.Errorf("generate area: %w", err)
	}

	count := a.ChunkCount()
	span.SetAttributes(attribute.Int("area.chunks", count))
	a.logger.Info("✅ Область сгенерирована: %d чанков за %v", count, elapsed)
	return nil
}

// forEachColumn обходит колонки [-r, r) x [-r, r) без промежуточного списка:
// для радиуса около MaxInt32 число колонок не помещается в int.
func forEachColumn(r int, fn func(col vec.Vec2) error) error {
	for z := -r; z < r; z++ {
		for x := -r; x < r; x++ {
			if err := fn(vec.Vec2{X: x, Y: z}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *Area) generateSequential(ctx context.Context, r int) error {
	return forEachColumn(r, func(col vec.Vec2) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.insertColumn(a.buildColumn(col, r))
		return nil
	})
}

// generateParallel строит колонки независимо; синхронизируется только вставка.
func (a *Area) generateParallel(ctx context.Context, r int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	spawnErr := forEachColumn(r, func(col vec.Vec2) error {
		if err := gctx.Err(); err != nil {
			return err
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a.insertColumn(a.buildColumn(col, r))
			return nil
		})
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return spawnErr
}

// buildColumn генерирует все чанки колонки col по Y в [-r, r)
func (a *Area) buildColumn(col vec.Vec2, r int) []*Chunk {
	origin := vec.Vec3{X: col.X, Z: col.Y}.ChunkOrigin()
	hm := a.generator.GenerateHeightMap(origin)

	var chunks []*Chunk
	for y := -r; y < r; y++ {
		pos := vec.Vec3{X: col.X, Y: y, Z: col.Y}
		chunks = append(chunks, a.generator.GenerateChunk(pos, &hm))
	}
	a.logger.Trace("Колонка (%d,%d): %d чанков", col.X, col.Y, len(chunks))
	return chunks
}

func (a *Area) insertColumn(chunks []*Chunk) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, c := range chunks {
		a.chunks[c.Coords] = c
	}
}

// AddChunk сохраняет чанк в позиции pos, перезаписывая существующий.
// Область становится владельцем чанка.
func (a *Area) AddChunk(pos vec.Vec3, chunk *Chunk) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.chunks[pos] = chunk
}

// GetChunk возвращает копию чанка в позиции pos, если он есть
func (a *Area) GetChunk(pos vec.Vec3) (Chunk, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	c, ok := a.chunks[pos]
	if !ok {
		return Chunk{}, false
	}
	return c.Clone(), true
}

// HasChunk проверяет наличие чанка без копирования
func (a *Area) HasChunk(pos vec.Vec3) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, ok := a.chunks[pos]
	return ok
}

// GetTile возвращает тайл в абсолютной позиции p.
// Если чанк не сгенерирован, возвращается тайл OutOfBounds.
func (a *Area) GetTile(p vec.Vec3) tile.Tile {
	chunkPos := p.ToChunkCoords()
	local := p.LocalInChunk()

	a.mu.RLock()
	c, ok := a.chunks[chunkPos]
	var t tile.Tile
	if ok {
		t = c.Tiles[local.Y][local.X][local.Z]
	}
	a.mu.RUnlock()

	a.metrics.tileLookup(ok)
	if !ok {
		return tile.New(tile.OutOfBounds)
	}
	return t
}

// SurfaceHeight возвращает абсолютный Y верхнего твёрдого тайла в колонке (x, z)
// среди загруженных чанков.
func (a *Area) SurfaceHeight(x, z int) (int, bool) {
	column := vec.Vec3{X: x, Z: z}
	cpos := column.ToChunkCoords()
	local := column.LocalInChunk()

	a.mu.RLock()
	defer a.mu.RUnlock()

	var layers []int
	for pos := range a.chunks {
		if pos.X == cpos.X && pos.Z == cpos.Z {
			layers = append(layers, pos.Y)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(layers)))

	for _, cy := range layers {
		c := a.chunks[vec.Vec3{X: cpos.X, Y: cy, Z: cpos.Z}]
		for y := ChunkSize - 1; y >= 0; y-- {
			if c.Tiles[y][local.X][local.Z].IsSolid() {
				return (cy << vec.Log2ChunkSize) + y, true
			}
		}
	}
	return 0, false
}

// ChunkCount возвращает количество чанков в области
func (a *Area) ChunkCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return len(a.chunks)
}

// ChunkCoords возвращает координаты всех чанков в порядке Y, X, Z
func (a *Area) ChunkCoords() []vec.Vec3 {
	a.mu.RLock()
	coords := make([]vec.Vec3, 0, len(a.chunks))
	for pos := range a.chunks {
		coords = append(coords, pos)
	}
	a.mu.RUnlock()

	sort.Slice(coords, func(i, j int) bool { return coords[i].Less(coords[j]) })
	return coords
}

// ForEachChunk вызывает fn для позиции и копии каждого чанка в порядке ChunkCoords.
// Позиция - ключ, под которым чанк добавлен в область; c.Coords может от неё отличаться.
// Первая ошибка fn прерывает обход.
func (a *Area) ForEachChunk(fn func(pos vec.Vec3, c *Chunk) error) error {
	for _, pos := range a.ChunkCoords() {
		c, ok := a.GetChunk(pos)
		if !ok {
			continue
		}
		if err := fn(pos, &c); err != nil {
			return err
		}
	}
	return nil
}

// Seed возвращает сид мира
func (a *Area) Seed() int64 {
	return a.seed
}

// GenerationID возвращает идентификатор генерации области
func (a *Area) GenerationID() uuid.UUID {
	return a.generationID
}

// Generator возвращает генератор ландшафта области
func (a *Area) Generator() *WorldGenerator {
	return a.generator
}
