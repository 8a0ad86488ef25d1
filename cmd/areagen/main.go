package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/annel0/voxel-area/internal/config"
	"github.com/annel0/voxel-area/internal/logging"
	"github.com/annel0/voxel-area/internal/observability"
	"github.com/annel0/voxel-area/internal/storage"
	"github.com/annel0/voxel-area/internal/vec"
	"github.com/annel0/voxel-area/internal/world"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	os.Exit(realMain())
}

// realMain возвращает код выхода, чтобы отложенные остановки успели выполниться
func realMain() int {
	var (
		configPath = flag.String("config", "", "Path to YAML config (or AREA_CONFIG)")
		seed       = flag.Int64("seed", 0, "World seed (overrides config when set)")
		radius     = flag.Int64("radius", -1, "Initial radius in chunks (overrides config when >= 0)")
		noise      = flag.String("noise", "", "Noise generator: opensimplex, perlin")
		workers    = flag.Int("workers", 0, "Parallel column workers (overrides config when > 0)")
		out        = flag.String("out", "", "Directory for BadgerDB snapshot (overrides storage.path)")
		load       = flag.Bool("load", false, "Load the area from storage instead of generating")
		probes     = flag.String("probe", "", "Semicolon separated x,y,z positions to print")
		serve      = flag.Bool("metrics", false, "Serve /metrics until SIGINT")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("❌ Ошибка загрузки конфигурации: %v", err)
		return 2
	}
	seedSet := false
	flag.Visit(func(f *flag.Flag) { seedSet = seedSet || f.Name == "seed" })
	if err := applyFlags(cfg, seedSet, *seed, *radius, *noise, *workers, *out); err != nil {
		log.Printf("❌ Некорректные параметры: %v", err)
		return 2
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("❌ Некорректная конфигурация: %v", err)
		return 2
	}

	if err := setupLogging(cfg.Logging); err != nil {
		log.Printf("❌ Ошибка инициализации логирования: %v", err)
		return 1
	}
	defer logging.CloseDefaultLogger()
	defer func() {
		if err := logging.GetLoggerManager().CloseAll(); err != nil {
			log.Printf("ошибка закрытия логгеров: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName)
		if err != nil {
			logging.Error("❌ Ошибка инициализации OpenTelemetry: %v", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logging.Warn("Ошибка остановки OpenTelemetry: %v", err)
				}
			}()
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := run(ctx, cfg, reg, *load, *probes); err != nil {
		logging.Error("❌ %v", err)
		return 1
	}

	if *serve {
		serveMetrics(ctx, reg, cfg.Metrics.GetMetricsPort())
	}
	return 0
}

// applyFlags переносит флаги командной строки в конфигурацию.
// Отрицательный radius означает "не задан"; значение больше MaxUint32 отклоняется,
// остальное проверяет cfg.Validate.
func applyFlags(cfg *config.Config, seedSet bool, seed, radius int64, noise string, workers int, out string) error {
	if seedSet {
		cfg.Generation.Seed = seed
	}
	if radius > math.MaxUint32 {
		return fmt.Errorf("%w: -radius=%d", config.ErrBadRadius, radius)
	}
	if radius >= 0 {
		cfg.Generation.Radius = uint32(radius)
	}
	if noise != "" {
		cfg.Generation.Noise = noise
	}
	if workers > 0 {
		cfg.Generation.Workers = workers
	}
	if out != "" {
		cfg.Storage.Enabled = true
		cfg.Storage.Path = out
	}
	return nil
}

func setupLogging(lc config.LoggingConfig) error {
	level, err := logging.ParseLevel(lc.Level)
	if err != nil {
		return err
	}
	if lc.File {
		if err := logging.InitDefaultLogger("areagen"); err != nil {
			return err
		}
	}
	logging.Default().SetLevels(level, logging.TRACE)
	logging.GetLoggerManager().Configure(level, logging.TRACE, lc.File)
	return nil
}

func run(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, load bool, probes string) error {
	gen, err := cfg.Generation.GeneratorConfig()
	if err != nil {
		return err
	}

	opts := []world.AreaOption{
		world.WithGenerator(gen),
		world.WithWorkers(cfg.Generation.Workers),
		world.WithMetrics(world.NewMetrics(reg)),
		world.WithLogger(logging.WorldLogger()),
	}

	var store *storage.WorldStorage
	if cfg.Storage.Enabled || load {
		store, err = storage.NewWorldStorage(filepath.Clean(cfg.Storage.Path), storage.WithLogger(logging.StorageLogger()))
		if err != nil {
			return err
		}
		defer store.Close()
	}

	var area *world.Area
	if load {
		area, err = store.LoadArea(opts...)
		if err != nil {
			return fmt.Errorf("загрузка области: %w", err)
		}
		logging.Info("📂 Область загружена: seed=%d, %d чанков", area.Seed(), area.ChunkCount())
	} else {
		area = world.NewEmptyArea(cfg.Generation.Seed, opts...)
		if err := area.Generate(ctx, cfg.Generation.Radius); err != nil {
			return err
		}
		if store != nil {
			if err := store.SaveArea(area); err != nil {
				return fmt.Errorf("сохранение области: %w", err)
			}
		}
	}

	if stats, err := observability.CollectProcessStats(); err == nil {
		logging.Info("📊 Ресурсы процесса: %s", stats)
	} else {
		logging.Debug("Статистика процесса недоступна: %v", err)
	}

	return printProbes(area, probes)
}

func printProbes(area *world.Area, probes string) error {
	if probes == "" {
		return nil
	}
	for _, raw := range strings.Split(probes, ";") {
		p, err := parseVec3(raw)
		if err != nil {
			return err
		}
		t := area.GetTile(p)
		fmt.Printf("%v chunk=%v local=%v tile=%s\n", p, p.ToChunkCoords(), p.LocalInChunk(), t)
	}
	return nil
}

func parseVec3(s string) (vec.Vec3, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 3 {
		return vec.Vec3{}, fmt.Errorf("bad position %q: expected x,y,z", s)
	}

	var xyz [3]int
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return vec.Vec3{}, fmt.Errorf("bad position %q: %w", s, err)
		}
		xyz[i] = v
	}
	return vec.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

func serveMetrics(ctx context.Context, reg *prometheus.Registry, port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logging.Info("📈 Метрики: http://localhost:%d/metrics", port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Error("❌ Ошибка HTTP сервера метрик: %v", err)
	}
	logging.Info("👋 Завершение работы")
}
