// Command atmosim searches for maximum-yield tank bomb recipes: it samples
// candidate mixtures inside user-supplied thermodynamic bounds, simulates
// each one and reports the best configuration found.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pthm-cable/atmosim/bomb"
	"github.com/pthm-cable/atmosim/config"
	"github.com/pthm-cable/atmosim/gas"
	"github.com/pthm-cable/atmosim/opt"
	"github.com/pthm-cable/atmosim/telemetry"
)

func main() {
	// CLI flags
	configName := flag.String("config", "goob", "Config preset name or path to a YAML file")
	mixList := flag.String("mix", "plasma", "Mix gases (csv)")
	primerList := flag.String("primer", "tritium,oxygen", "Primer gases (csv)")

	mixTempMin := flag.Float64("mix-temp-min", 375.15, "Lower mix temperature bound (K)")
	mixTempMax := flag.Float64("mix-temp-max", 595.15, "Upper mix temperature bound (K)")
	primerTempMin := flag.Float64("primer-temp-min", 293.15, "Lower primer temperature bound (K)")
	primerTempMax := flag.Float64("primer-temp-max", 293.15, "Upper primer temperature bound (K)")
	pressureMin := flag.Float64("pressure-min", 0, "Lower total pressure bound (kPa, 0 = canister pressure)")
	pressureMax := flag.Float64("pressure-max", 0, "Upper total pressure bound (kPa, 0 = canister pressure cap)")
	targetTemp := flag.Float64("target-temp", 0, "Lower target temperature bound (K, 0 = just above plasma ignition)")
	stepTargetTemp := flag.Bool("step-target-temp", false, "Vary the target temperature instead of pinning it to the lower bound")
	ratioBound := flag.Float64("ratio-bound", 3, "Gas ratio bounds in log2 space (+/-)")

	target := flag.String("target", "radius", "Optimization target field")
	minimise := flag.Bool("minimise", false, "Minimise the target instead of maximising")
	preRestrict := flag.String("pre-restrict", "", "Pre-sim restrictions, e.g. \"pre_pressure<=3000\"")
	postRestrict := flag.String("post-restrict", "", "Post-sim restrictions, e.g. \"radius>=10,state=exploded\"")
	measureBefore := flag.Bool("measure-before", false, "Snapshot pre-sim fields before the primer merge")

	roundTemp := flag.Float64("round-temp", 0.01, "Temperature rounding granularity (K)")
	roundPressure := flag.Float64("round-pressure", 0.1, "Pressure rounding granularity (kPa)")
	roundRatio := flag.Float64("round-ratio", 0.001, "Ratio rounding granularity")
	tickCap := flag.Int("tick-cap", 600, "Maximum simulation ticks per evaluation")

	runtime := flag.Duration("runtime", 10*time.Second, "Search time budget")
	sampleRounds := flag.Int("sample-rounds", 5, "Candidates recursed into per level")
	boundsScale := flag.Float64("bounds-scale", 0.5, "Child search box side as a fraction of the parent")
	threads := flag.Int("threads", 0, "Evaluation worker threads (0 = all cores)")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = time-based)")
	logLevel := flag.Int("log-level", 1, "0 silent, 1 progress, 2 numeric warnings")
	refine := flag.Bool("refine", false, "Polish the best result with a local Nelder-Mead descent")
	tol := flag.Float64("tol", 0, "Tolerance fraction for the final report (0 = config default)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	leaderboardSize := flag.Int("leaderboard", 10, "Top-N results kept in leaderboard.json")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configName); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	mixGases, err := gas.ParseList(*mixList)
	if err != nil {
		slog.Error("bad mix gases", "error", err)
		os.Exit(1)
	}
	primerGases, err := gas.ParseList(*primerList)
	if err != nil {
		slog.Error("bad primer gases", "error", err)
		os.Exit(1)
	}
	preRs, err := bomb.ParseRestrictions(*preRestrict)
	if err != nil {
		slog.Error("bad pre-sim restrictions", "error", err)
		os.Exit(1)
	}
	postRs, err := bomb.ParseRestrictions(*postRestrict)
	if err != nil {
		slog.Error("bad post-sim restrictions", "error", err)
		os.Exit(1)
	}
	targetField, err := bomb.ParseField(*target)
	if err != nil {
		slog.Error("bad target field", "error", err)
		os.Exit(1)
	}

	args := &bomb.Args{
		MixGases:         mixGases,
		PrimerGases:      primerGases,
		MeasureBefore:    *measureBefore,
		RoundTempTo:      *roundTemp,
		RoundPressureTo:  *roundPressure,
		RoundRatioTo:     *roundRatio,
		TickCap:          *tickCap,
		Target:           targetField,
		Maximise:         !*minimise,
		PreRestrictions:  preRs,
		PostRestrictions: postRs,
	}

	lower, upper := buildBounds(args, boundsInput{
		mixTempMin:     *mixTempMin,
		mixTempMax:     *mixTempMax,
		primerTempMin:  *primerTempMin,
		primerTempMax:  *primerTempMax,
		pressureMin:    *pressureMin,
		pressureMax:    *pressureMax,
		targetTemp:     *targetTemp,
		stepTargetTemp: *stepTargetTemp,
		ratioBound:     *ratioBound,
	}, cfg)

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = uint64(time.Now().UnixNano())
	}

	om, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to set up output", "error", err)
		os.Exit(1)
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to snapshot config", "error", err)
		os.Exit(1)
	}

	leaderboard := telemetry.NewLeaderboard(*leaderboardSize, args.Maximise)
	bookmarks := telemetry.NewBookmarkDetector(args.Maximise)
	perf := telemetry.NewPerfCollector(32)

	start := time.Now()
	var evalCount int64

	options := opt.Options{
		Lower:        lower,
		Upper:        upper,
		MaxRuntime:   *runtime,
		SampleRounds: *sampleRounds,
		BoundsScale:  *boundsScale,
		NThreads:     *threads,
		Seed:         rngSeed,
		LogLevel:     *logLevel,
		Logger:       logger,
		OnEvaluation: func(params []float64, res bomb.Result) {
			evalCount++
			elapsedMS := time.Since(start).Milliseconds()
			if err := om.WriteSample(telemetry.NewSampleRecord(evalCount, elapsedMS, res)); err != nil {
				slog.Warn("sample write failed", "error", err)
			}
			leaderboard.Consider(evalCount, elapsedMS, res)
		},
		OnImprovement: func(res bomb.Result, evals int64, elapsed time.Duration) {
			b := bookmarks.Check(evals, elapsed.Milliseconds(), res)
			if *logLevel >= 1 {
				b.LogBookmark()
			}
			if err := om.WriteBookmark(b); err != nil {
				slog.Warn("bookmark write failed", "error", err)
			}
		},
		Perf: perf,
	}

	optimizer, err := opt.New(args, options)
	if err != nil {
		slog.Error("bad search options", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting search",
		"config", *configName,
		"mix", *mixList,
		"primer", *primerList,
		"target", *target,
		"maximise", args.Maximise,
		"runtime", runtime.String(),
		"seed", rngSeed,
		"dimensions", args.ParamCount(),
	)

	best, err := optimizer.Run(ctx)
	if err != nil {
		slog.Error("search failed", "error", err)
		os.Exit(1)
	}

	if *refine && best.Feasible {
		refined, err := opt.Refine(args, best, lower, upper, *runtime/10)
		if err != nil {
			slog.Warn("refinement failed", "error", err)
		} else {
			best = refined
		}
	}

	if err := om.WritePerf(perf.Stats(), optimizer.Evaluations()); err != nil {
		slog.Warn("perf write failed", "error", err)
	}
	if err := om.WriteLeaderboard(leaderboard); err != nil {
		slog.Warn("leaderboard write failed", "error", err)
	}

	if !best.Feasible {
		fmt.Println("No viable recipes found within constraints.")
		os.Exit(2)
	}

	tolFraction := *tol
	if tolFraction <= 0 {
		tolFraction = cfg.Atmosim.DefaultTolerance
	}

	fmt.Println("Best configuration found:")
	fmt.Println(best.Data.PrintFull())
	fmt.Println()
	fmt.Printf("Serialized string: %s\n", best.Data.Serialize())
	fmt.Println()

	intervals, err := bomb.MeasureTolerances(args, best.Data, tolFraction)
	if err != nil {
		slog.Warn("tolerance measurement failed", "error", err)
		return
	}
	fmt.Printf("%gx tolerances:\n%s\n", tolFraction, bomb.FormatTolerances(intervals))
}

type boundsInput struct {
	mixTempMin, mixTempMax       float64
	primerTempMin, primerTempMax float64
	pressureMin, pressureMax     float64
	targetTemp                   float64
	stepTargetTemp               bool
	ratioBound                   float64
}

// buildBounds assembles the search hyperrectangle in parameter-vector order:
// target temp, mix temp, primer temp, pressure, then per-group ratios.
func buildBounds(args *bomb.Args, in boundsInput, cfg *config.Config) ([]float64, []float64) {
	targetLow := in.targetTemp
	if targetLow <= 0 {
		targetLow = cfg.Reactions.PlasmaFireTemp + 0.1
	}
	targetHigh := targetLow
	if in.stepTargetTemp {
		targetHigh = in.mixTempMax
	}

	pMin := in.pressureMin
	if pMin <= 0 {
		pMin = cfg.Canister.TransferPressureCap
	}
	pMax := in.pressureMax
	if pMax <= 0 {
		pMax = cfg.Canister.TransferPressureCap
	}

	lower := []float64{targetLow, in.mixTempMin, in.primerTempMin, pMin}
	upper := []float64{targetHigh, in.mixTempMax, in.primerTempMax, pMax}
	for i := 4; i < args.ParamCount(); i++ {
		lower = append(lower, -in.ratioBound)
		upper = append(upper, in.ratioBound)
	}
	return lower, upper
}
