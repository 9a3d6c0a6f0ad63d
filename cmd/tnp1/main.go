// Package main provides tnp1, which searches for the value below 2^31 whose
// Collatz trajectory first takes at least 1000 steps.
//
// Every tunable is a build-time constant in internal/search; the program
// takes no flags and reads no environment.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/calvinalkan/tnp1/internal/search"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(zerolog.WarnLevel).
		With().Timestamp().Logger()

	res, err := search.Run(search.Options{
		Params: search.DefaultParams(),
		Logger: &logger,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if !res.Trusted() {
		logger.Warn().Uint64("wrapped", res.Wrapped).Msg("step counts wrapped at 16 bits, the maximum below is untrusted")
	}

	fmt.Printf("Found that %d took %d iterations. Total run time %d milliseconds\n",
		res.Max.N, res.Max.Iterations, res.Elapsed.Milliseconds())
}
