// Command boothsim drives the commentary booth from the keyboard. Keys
// inject gameplay telemetry; the transcript shows every line the booth
// releases, in order, with fallbacks marked.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	commentary "github.com/castwerk/booth-core/core"
	"github.com/castwerk/booth-core/core/config"
	"github.com/castwerk/booth-core/core/events"
)

var (
	configDir    string
	live         bool
	seed         int64
	tickInterval time.Duration
	failureRate  float64

	rootCmd = &cobra.Command{
		Use:   "boothsim",
		Short: "Interactive driver for the commentary booth",
		Long: `Boothsim runs the two-persona commentary booth against simulated
gameplay. Keys inject telemetry events; the transcript shows every line
the booth releases, in order, with fallbacks marked.

Without --live the upstream chat and speech APIs are simulated with
realistic latency and a configurable failure rate. With --live the booth
talks to the configured providers (GROQ_API_KEY or OPENAI_API_KEY for
chat, DEEPGRAM_API_KEY for voice).

Configuration is read from commentator.toml in the config directory and
hot-reloads while the simulator runs.`,
		Args: cobra.NoArgs,
		RunE: runSim,
	}
)

func init() {
	rootCmd.Flags().StringVar(&configDir, "config", "", "directory containing commentator.toml (defaults to $BOOTH_CONFIG_DIR or .)")
	rootCmd.Flags().BoolVar(&live, "live", false, "use the real chat and speech APIs")
	rootCmd.Flags().Int64Var(&seed, "seed", 0, "seed for the simulated backends (0 seeds from the clock)")
	rootCmd.Flags().DurationVar(&tickInterval, "tick", 50*time.Millisecond, "booth tick interval")
	rootCmd.Flags().Float64Var(&failureRate, "failure-rate", 0.15, "simulated narration failure rate, ignored with --live")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSim(cmd *cobra.Command, args []string) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	environment, err := config.LoadEnv()
	if err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}
	dir := configDir
	if dir == "" {
		dir = environment.ConfigDir
	}

	store, err := config.NewStore(dir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	completer, synthesizer, err := buildBackends(environment, logger)
	if err != nil {
		return err
	}
	simulated := !live || environment.Offline

	// The program pointer is published after construction; events that
	// fire before the UI is up are dropped.
	var program atomic.Pointer[tea.Program]
	send := func(msg tea.Msg) {
		if p := program.Load(); p != nil {
			p.Send(msg)
		}
	}

	booth, err := commentary.New(store.Config(),
		commentary.WithChatCompleter(completer),
		commentary.WithSpeechSynthesizer(synthesizer),
		commentary.WithSubtitleCallback(func(line commentary.SubtitleLine) { send(subtitleMsg(line)) }),
		commentary.WithAudioCallback(func(clip commentary.AudioClip) { send(audioMsg(clip)) }),
		commentary.WithEventCallback(func(event events.Event) { send(busMsg{event: event}) }),
	)
	if err != nil {
		return fmt.Errorf("failed to create booth: %w", err)
	}
	defer booth.Close()

	store.Subscribe(func(next *config.Config) {
		if err := booth.ApplyConfig(next); err != nil {
			logger.Warn("rejected config update", "error", err)
			return
		}
		send(configReloadedMsg{})
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go store.Watch(ctx)
	go func() {
		if err := booth.GoLive(ctx, commentary.WithTickInterval(tickInterval)); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("booth loop ended", "error", err)
		}
	}()

	p := tea.NewProgram(newSimModel(booth, simulated), tea.WithAltScreen())
	program.Store(p)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run ui: %w", err)
	}
	return nil
}
