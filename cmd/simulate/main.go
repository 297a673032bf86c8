// Command simulate replays a serialized bomb string tick by tick, printing
// the mixture state at each step until the tank reaches a terminal state or
// the tick cap runs out.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/pthm-cable/atmosim/bomb"
	"github.com/pthm-cable/atmosim/config"
	"github.com/pthm-cable/atmosim/tank"
	"github.com/pthm-cable/atmosim/telemetry"
)

func main() {
	configName := flag.String("config", "goob", "Config preset name or path to a YAML file")
	serialized := flag.String("bomb", "", "Serialized bomb string")
	tickCap := flag.Int("tick-cap", 600, "Maximum simulation ticks")
	outputDir := flag.String("output-dir", "", "Output directory for the tick trace CSV")
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

	om, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to set up output", "error", err)
		os.Exit(1)
	}
	defer om.Close()

	t := data.Tank
	fmt.Printf("[Tick 0] %s\n", t.Status())

	for t.State == tank.Intact && t.Ticks < *tickCap {
		reacted := t.Tick()
		fmt.Printf("[Tick %d] %s, state: %s\n", t.Ticks, t.Status(), t.State)

		rec := telemetry.TraceRecord{
			Tick:        t.Ticks,
			State:       t.State.String(),
			Pressure:    t.Mix.Pressure(),
			Temperature: t.Mix.Temperature,
			TotalMoles:  t.Mix.TotalMoles(),
			Reacted:     reacted,
		}
		if err := om.WriteTrace(rec); err != nil {
			slog.Warn("trace write failed", "error", err)
		}
	}

	data.Ticks = t.Ticks
	data.State = t.State
	data.Radius = t.CalcRadius()
	data.FinPressure = t.FinalPressure
	if t.State == tank.Intact {
		data.FinPressure = t.Mix.Pressure()
	}
	data.FinTemperature = t.Mix.Temperature

	fmt.Println()
	fmt.Println(data.PrintFull())
}
