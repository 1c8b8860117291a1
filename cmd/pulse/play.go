package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-pulse/internal/config"
	"github.com/vovakirdan/tui-pulse/internal/engine"
	"github.com/vovakirdan/tui-pulse/internal/platform/tui"
)

var (
	flagConfig     string
	flagDifficulty string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play Pulse",
	Long: `Start a run.

Controls:
  Space/Enter - Tap
  R           - Restart (after the run ends)
  Q/Ctrl+C    - Quit

Difficulty options:
  easy   - Extra life, later window shrink
  normal - Shipped tuning
  hard   - One life fewer, earlier and faster window shrink

Examples:
  pulse play
  pulse play --difficulty hard
  pulse play --config ./my-pulse.yaml --seed 42`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom tuning YAML")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
}

func runPlay(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	config.ApplyPreset(&cfg, config.Preset(flagDifficulty))

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	eng, err := engine.New(cfg, seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	if err := tui.Run(eng, flagFPS, width, height); err != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		os.Exit(1)
	}
}
