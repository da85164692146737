// Command replay runs a recorded pose-frame log through the full analysis
// pipeline offline and prints the per-rep results and session summary.
// Useful for threshold tuning and for backfilling sessions into the store.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/repform-data/form.report/internal/config"
	"github.com/repform-data/form.report/internal/db"
	"github.com/repform-data/form.report/internal/pose"
	"github.com/repform-data/form.report/internal/replay"
)

var (
	framesPath    = flag.String("frames", "", "Path to the NDJSON frame log (required)")
	configPath    = flag.String("config", "", "Path to a tuning config JSON (defaults applied when empty)")
	dbPath        = flag.String("db", "", "Persist the session to this database (optional)")
	migrationsDir = flag.String("migrations", "internal/db/migrations", "Path to the migrations directory")
	exercise      = flag.String("exercise", "push_press", "Exercise label recorded with the session")
)

func main() {
	flag.Parse()

	if *framesPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	tuning := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
	}

	f, err := os.Open(*framesPath)
	if err != nil {
		log.Fatalf("failed to open frame log: %v", err)
	}
	defer f.Close()

	frames, err := replay.ReadFrames(f)
	if err != nil {
		log.Fatalf("failed to parse frame log: %v", err)
	}
	if len(frames) == 0 {
		log.Fatal("frame log is empty")
	}

	engine := pose.NewEngine(pose.EngineConfigFromTuning(tuning))
	results := replay.Run(engine, frames)

	printRepLines(results)
	printSummary(pose.ComputeSessionStats(results))

	if *dbPath != "" {
		store, err := db.NewDB(*dbPath)
		if err != nil {
			log.Fatalf("failed to open sessions database: %v", err)
		}
		defer store.Close()
		if err := store.MigrateUp(*migrationsDir); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}

		sessionID, err := replay.Persist(store, *exercise, results)
		if err != nil {
			log.Fatalf("failed to persist session: %v", err)
		}
		fmt.Printf("session persisted: %s\n", sessionID)
	}
}

func printRepLines(results []pose.FrameResult) {
	prevReps := 0
	for _, r := range results {
		if r.RepCount > prevReps {
			validity := "valid"
			if !r.IsValidRep {
				validity = "out-of-order"
			}
			fmt.Printf("rep %2d  %s  score=%3d  %s\n",
				r.RepCount, r.CapturedAt.Format("15:04:05.000"), r.Form.OverallScore, validity)
			prevReps = r.RepCount
		}
	}
}

func printSummary(stats *pose.SessionStats) {
	fmt.Printf("\nframes: %d  reps: %d\n", stats.FrameCount, stats.RepCount)
	if stats.RepIntervalMeanSecs > 0 {
		fmt.Printf("rep cadence: %.2fs mean, %.2fs stddev\n",
			stats.RepIntervalMeanSecs, stats.RepIntervalStdDevSecs)
	}
	fmt.Printf("form score: %.1f mean (p50=%.0f p85=%.0f p95=%.0f)\n",
		stats.ScoreMean, stats.ScoreP50, stats.ScoreP85, stats.ScoreP95)

	if len(stats.IssueCounts) > 0 {
		fmt.Println("issues:")
		ids := make([]string, 0, len(stats.IssueCounts))
		for id := range stats.IssueCounts {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Printf("  %-32s %d\n", id, stats.IssueCounts[id])
		}
	}
}
