// Command form.report runs the live rep-tracking server: pose frames in over
// HTTP, session state and persisted history out. With -dev it replays a
// recorded fixtures log through the engine at capture cadence so the API can
// be exercised without a camera or estimator.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/repform-data/form.report/internal/api"
	"github.com/repform-data/form.report/internal/config"
	"github.com/repform-data/form.report/internal/db"
	"github.com/repform-data/form.report/internal/monitoring"
	"github.com/repform-data/form.report/internal/pose"
	"github.com/repform-data/form.report/internal/replay"
	"github.com/repform-data/form.report/internal/timeutil"
)

var (
	listen        = flag.String("listen", ":8080", "Listen address")
	dbPath        = flag.String("db", "sessions.db", "Path to the sessions database")
	migrationsDir = flag.String("migrations", "internal/db/migrations", "Path to the migrations directory")
	configPath    = flag.String("config", "", "Path to a tuning config JSON (defaults applied when empty)")
	devMode       = flag.Bool("dev", false, "Replay the fixtures log instead of waiting for live frames")
	fixturesPath  = flag.String("fixtures", "fixtures/push_press.ndjson", "Frame log replayed in dev mode")
)

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	tuning := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
	}

	store, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("failed to open sessions database: %v", err)
	}
	defer store.Close()
	if err := store.MigrateUp(*migrationsDir); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	engine := pose.NewEngine(pose.EngineConfigFromTuning(tuning))
	clock := timeutil.RealClock{}
	server := api.NewServer(engine, store, clock)

	mux := http.NewServeMux()
	server.RegisterRoutes(mux)

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{Addr: *listen, Handler: mux}

	wg.Add(1)
	go func() {
		defer wg.Done()
		monitoring.Logf("listening on %s", *listen)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	if *devMode {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := replayFixtures(ctx, engine, clock, *fixturesPath); err != nil {
				monitoring.Logf("fixtures replay stopped: %v", err)
			}
		}()
	}

	<-ctx.Done()
	monitoring.Logf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("http shutdown error: %v", err)
	}
	wg.Wait()
}

// replayFixtures feeds a recorded frame log through the engine, sleeping the
// recorded inter-frame gaps so the live API behaves as it would with a real
// estimator attached.
func replayFixtures(ctx context.Context, engine *pose.Engine, clock timeutil.Clock, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	frames, err := replay.ReadFrames(f)
	if err != nil {
		return err
	}
	monitoring.Logf("dev mode: replaying %d frames from %s", len(frames), path)

	lastReps := 0
	for i, frame := range frames {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if i > 0 {
			gap := time.Duration(frame.TimestampMs-frames[i-1].TimestampMs) * time.Millisecond
			if gap > 0 {
				clock.Sleep(gap)
			}
		}
		result := engine.ProcessFrame(&frame.Pose, time.UnixMilli(frame.TimestampMs))
		if result.RepCount > lastReps {
			monitoring.Logf("rep %d counted (phase=%s score=%d)", result.RepCount, result.Phase, result.Form.OverallScore)
			lastReps = result.RepCount
		}
	}
	return nil
}
