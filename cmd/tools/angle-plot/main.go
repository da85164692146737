// Command angle-plot renders a PNG of the knee and arm angle traces from a
// recorded frame log. Quicker to eyeball than the HTML report when tuning the
// phase thresholds.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/repform-data/form.report/internal/config"
	"github.com/repform-data/form.report/internal/pose"
	"github.com/repform-data/form.report/internal/replay"
)

var (
	framesPath = flag.String("frames", "", "Path to the NDJSON frame log (required)")
	configPath = flag.String("config", "", "Path to a tuning config JSON (defaults applied when empty)")
	outPath    = flag.String("out", "angles.png", "Output PNG file")
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

	minConfidence := engineCfg.Classifier.MinConfidence
	t0 := results[0].CapturedAt

	var knee, leftArm, rightArm plotter.XYs
	for _, r := range results {
		x := r.CapturedAt.Sub(t0).Seconds()
		if angle, ok := pose.KneeAngleMeanDeg(r.Smoothed, minConfidence); ok {
			knee = append(knee, plotter.XY{X: x, Y: angle})
		}
		if left, right, ok := pose.ArmAnglesDeg(r.Smoothed, minConfidence); ok {
			leftArm = append(leftArm, plotter.XY{X: x, Y: left})
			rightArm = append(rightArm, plotter.XY{X: x, Y: right})
		}
	}

	p := plot.New()
	p.Title.Text = "Joint Angles"
	p.X.Label.Text = "seconds"
	p.Y.Label.Text = "degrees"
	p.Y.Min = 0
	p.Y.Max = 185

	addLine(p, "knee (mean)", knee, color.RGBA{R: 220, G: 60, B: 60, A: 255})
	addLine(p, "left arm", leftArm, color.RGBA{R: 60, G: 120, B: 220, A: 255})
	addLine(p, "right arm", rightArm, color.RGBA{R: 60, G: 180, B: 90, A: 255})
	p.Legend.Top = true

	if err := p.Save(14*vg.Inch, 6*vg.Inch, *outPath); err != nil {
		log.Fatalf("failed to save plot: %v", err)
	}
	fmt.Printf("plot written to %s (%d frames)\n", *outPath, len(results))
}

func addLine(p *plot.Plot, name string, pts plotter.XYs, c color.Color) {
	if len(pts) == 0 {
		return
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		log.Fatalf("failed to build %s series: %v", name, err)
	}
	line.Color = c
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add(name, line)
}
