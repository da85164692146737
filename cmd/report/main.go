// Command report renders an HTML session report from a recorded frame log:
// knee-angle trace, per-frame form score, and the issue breakdown. The log is
// replayed through the same pipeline the live server runs, so the report
// matches what the lifter saw.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/repform-data/form.report/internal/config"
	"github.com/repform-data/form.report/internal/pose"
	"github.com/repform-data/form.report/internal/replay"
)

var (
	framesPath = flag.String("frames", "", "Path to the NDJSON frame log (required)")
	configPath = flag.String("config", "", "Path to a tuning config JSON (defaults applied when empty)")
	outPath    = flag.String("out", "report.html", "Output HTML file")
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
	frames, err := replay.ReadFrames(f)
	f.Close()
	if err != nil {
		log.Fatalf("failed to parse frame log: %v", err)
	}
	if len(frames) == 0 {
		log.Fatal("frame log is empty")
	}

	engineCfg := pose.EngineConfigFromTuning(tuning)
	engine := pose.NewEngine(engineCfg)
	results := replay.Run(engine, frames)
	stats := pose.ComputeSessionStats(results)

	page := components.NewPage()
	page.AddCharts(
		angleChart(results, engineCfg.Classifier.MinConfidence),
		scoreChart(results),
		issueChart(stats),
	)

	out, err := os.Create(*outPath)
	if err != nil {
		log.Fatalf("failed to create output file: %v", err)
	}
	defer out.Close()
	if err := page.Render(out); err != nil {
		log.Fatalf("failed to render report: %v", err)
	}
	fmt.Printf("report written to %s (%d frames, %d reps)\n", *outPath, stats.FrameCount, stats.RepCount)
}

// angleChart plots the smoothed knee angle over time with the phase per
// frame in the tooltip. Gaps where landmarks fell below the confidence bar
// render as zero-value points.
func angleChart(results []pose.FrameResult, minConfidence float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Knee Angle", Subtitle: "mean of both legs, degrees"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 180, Name: "degrees"}),
	)

	x := make([]string, 0, len(results))
	knee := make([]opts.LineData, 0, len(results))
	for _, r := range results {
		x = append(x, r.CapturedAt.Format("15:04:05.000"))
		angle, ok := pose.KneeAngleMeanDeg(r.Smoothed, minConfidence)
		if !ok {
			knee = append(knee, opts.LineData{Value: 0, Name: string(r.Phase)})
			continue
		}
		knee = append(knee, opts.LineData{Value: angle, Name: string(r.Phase)})
	}
	line.SetXAxis(x).AddSeries("knee angle", knee)
	return line
}

// scoreChart plots the per-frame form score.
func scoreChart(results []pose.FrameResult) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Form Score"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 100, Name: "score"}),
	)

	x := make([]string, 0, len(results))
	scores := make([]opts.LineData, 0, len(results))
	for _, r := range results {
		x = append(x, r.CapturedAt.Format("15:04:05.000"))
		scores = append(scores, opts.LineData{Value: r.Form.OverallScore, Name: string(r.Phase)})
	}
	line.SetXAxis(x).AddSeries("score", scores)
	return line
}

// issueChart shows how often each form check failed across the session.
func issueChart(stats *pose.SessionStats) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Form Issues", Subtitle: "failed checks across the session"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	ids := make([]string, 0, len(stats.IssueCounts))
	for id := range stats.IssueCounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	counts := make([]opts.BarData, 0, len(ids))
	for _, id := range ids {
		counts = append(counts, opts.BarData{Value: stats.IssueCounts[id]})
	}
	bar.SetXAxis(ids).AddSeries("count", counts)
	return bar
}
