// Command tolerances measures the thermodynamic tolerances of an already
// calculated bomb: how far each input coordinate can drift before the
// outcome degrades past the tolerance fraction.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/pthm-cable/atmosim/bomb"
	"github.com/pthm-cable/atmosim/config"
)

func main() {
	configName := flag.String("config", "goob", "Config preset name or path to a YAML file")
	serialized := flag.String("bomb", "", "Serialized bomb string")
	tol := flag.Float64("tol", 0, "Tolerance fraction (0 = config default)")
	target := flag.String("target", "radius", "Field the tolerance is measured against")
	maximise := flag.Bool("maximise", true, "Direction the field is optimized in")
	tickCap := flag.Int("tick-cap", 600, "Maximum simulation ticks per evaluation")
	roundTemp := flag.Float64("round-temp", 0.01, "Temperature step (K)")
	roundPressure := flag.Float64("round-pressure", 0.1, "Pressure step (kPa)")
	roundRatio := flag.Float64("round-ratio", 0.001, "Ratio step")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *serialized == "" {
		slog.Error("--bomb is required")
		os.Exit(1)
	}
	if err := config.Init(*configName); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	data, err := bomb.Deserialize(*serialized)
	if err != nil {
		slog.Error("bad bomb string", "error", err)
		os.Exit(1)
	}
	targetField, err := bomb.ParseField(*target)
	if err != nil {
		slog.Error("bad target field", "error", err)
		os.Exit(1)
	}

	tolFraction := *tol
	if tolFraction <= 0 {
		tolFraction = config.Cfg().Atmosim.DefaultTolerance
	}

	args := &bomb.Args{
		MixGases:        data.MixGases,
		PrimerGases:     data.PrimerGases,
		RoundTempTo:     *roundTemp,
		RoundPressureTo: *roundPressure,
		RoundRatioTo:    *roundRatio,
		TickCap:         *tickCap,
		Target:          targetField,
		Maximise:        *maximise,
	}

	intervals, err := bomb.MeasureTolerances(args, data, tolFraction)
	if err != nil {
		slog.Error("tolerance measurement failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Tolerances for target %g:\n%s\n", tolFraction, bomb.FormatTolerances(intervals))
}
