package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/wakeword/cmd/wakeword/internal/config"
	"github.com/haivivi/wakeword/pkg/cli"
	"github.com/haivivi/wakeword/pkg/pipeline"
)

var (
	// Global flags
	verbose      bool
	configFile   string
	formatOutput string
)

var rootCmd = &cobra.Command{
	Use:   "wakeword",
	Short: "Train and export wake-word detection models",
	Long: `wakeword - train a small CNN that detects a spoken wake word.

Positive recordings are loaded from one or more directories, normalized to
one second of 16 kHz mono audio and turned into 40 MFCCs per frame. Noise
negatives are synthesized for every positive. The trained network is saved
as a native msgpack model and transcoded to a TF.js layers model.

Examples:
  # Train with the defaults (./friday-wav, artifacts in the current directory)
  wakeword train

  # Train from a config file and publish to S3
  wakeword train -c friday.yaml --out s3://models/friday

  # Score recordings with a trained model
  wakeword predict friday-wake-word-model.msgpack clip1.wav clip2.wav`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "training config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&formatOutput, "format", "", "output format (yaml, json)")
}

// loadConfig loads --config onto the defaults.
func loadConfig() (pipeline.Config, error) {
	return config.Load(configFile)
}

// outputFormat returns the --format value, or def when it is unset.
func outputFormat(def cli.OutputFormat) (cli.OutputFormat, error) {
	f, err := cli.ParseOutputFormat(formatOutput, def)
	if err != nil || f == cli.FormatRaw {
		return "", fmt.Errorf("unsupported --format %q (want yaml or json)", formatOutput)
	}
	return f, nil
}

// printResult writes v to stdout in the selected format.
func printResult(v any) error {
	format, err := outputFormat(cli.FormatYAML)
	if err != nil {
		return err
	}
	return cli.Output(v, cli.OutputOptions{Format: format})
}
