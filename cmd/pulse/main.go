// pulse is a terminal reflex/rhythm game: obstacles close in on a central
// target at an accelerating tempo, and you tap when they land.
//
// Usage:
//
//	pulse play                - Play in the terminal
//	pulse simulate            - Script simulated runs for tuning analysis
//
// Global flags:
//
//	--fps <rate>    - Frame rate for the TUI loop (default: 60)
//	--seed <value>  - RNG seed for reproducible runs (0 = time-based)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagFPS  int
	flagSeed int64
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Pulse - a reflex/rhythm game for your terminal",
	Long: `Pulse is a terminal rhythm game. Obstacles slide toward a target at a
tempo that accelerates the better you play; tap when they land.

Examples:
  pulse play
  pulse play --difficulty hard --seed 42
  pulse simulate --runs 200 --stddev 40`,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Frame rate for the TUI loop")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(simulateCmd)
}
