// Command mixcalc converts a desired volume percentage between two gas
// supplies at different temperatures into the mole ratio and true mole
// percentage needed at the mixing valve.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
)

func main() {
	percent := flag.Float64("percent", 50, "Desired volume percentage of the first gas (0-100)")
	t1 := flag.Float64("t1", 293.15, "Temperature of the first gas supply (K)")
	t2 := flag.Float64("t2", 293.15, "Temperature of the second gas supply (K)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *percent <= 0 || *percent >= 100 {
		slog.Error("--percent must be strictly between 0 and 100")
		os.Exit(1)
	}
	if *t1 <= 0 || *t2 <= 0 {
		slog.Error("temperatures must be positive")
		os.Exit(1)
	}

	portion := *percent / 100
	// Equal pressures at different temperatures hold different mole counts,
	// so the valve ratio must be corrected by T1/T2.
	nRatio := portion / (1 - portion) * *t1 / *t2
	nPercent := 100 * nRatio / (1 + nRatio)

	fmt.Printf("Volume target: %.2f%% at %.2f K vs %.2f K\n", *percent, *t1, *t2)
	fmt.Printf("Mole ratio (first:second): %.4f\n", nRatio)
	fmt.Printf("Mole percentage of first gas: %.2f%%\n", nPercent)
}
