package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/wakeword/pkg/model"
	"github.com/haivivi/wakeword/pkg/trainer"
)

// Prediction is the score of one file.
type Prediction struct {
	File  string  `yaml:"file" json:"file"`
	Score float64 `yaml:"score" json:"score"`
	Wake  bool    `yaml:"wake" json:"wake"`
}

var predictThreshold float64

var predictCmd = &cobra.Command{
	Use:   "predict <model> <file>...",
	Short: "Score audio files with a trained model",
	Long: `Load a native model and print the wake-word probability of each file.

Audio settings (sample rate, duration, coefficient count) come from the
model. The remaining feature settings come from --config and must match the
ones the model was trained with.

Examples:
  wakeword predict friday-wake-word-model.msgpack clip.wav
  wakeword predict -c friday.yaml --threshold 0.8 model.msgpack clips/*.wav`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := model.Load(args[0])
		if err != nil {
			return err
		}
		net, err := f.Network()
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cfg.Audio.SampleRate = f.Features.SampleRate
		cfg.Audio.DurationMS = int(f.Features.DurationMS)
		cfg.Features.SampleRate = f.Features.SampleRate
		cfg.Features.NumCoeffs = f.Features.NumCoeffs

		b, err := newBuilder(cfg)
		if err != nil {
			return err
		}
		if fp := b.Fingerprint(); f.Features.Fingerprint != "" && fp != f.Features.Fingerprint {
			return fmt.Errorf("feature settings %q do not match the model's %q; pass the training --config",
				fp, f.Features.Fingerprint)
		}

		ctx := cmdContext(cmd)
		files := args[1:]
		matrices := make([][][]float32, len(files))
		for i, path := range files {
			if matrices[i], err = b.Features(ctx, path); err != nil {
				return err
			}
		}

		start := time.Now()
		scores, err := trainer.Predict(net, matrices...)
		if err != nil {
			return err
		}
		slog.Debug("scored files", "count", len(files), "elapsed", time.Since(start))

		out := make([]Prediction, len(files))
		for i, path := range files {
			out[i] = Prediction{File: path, Score: scores[i], Wake: scores[i] >= predictThreshold}
		}
		return printResult(out)
	},
}

func init() {
	predictCmd.Flags().Float64Var(&predictThreshold, "threshold", trainer.Threshold, "score at or above which a file counts as the wake word")

	rootCmd.AddCommand(predictCmd)
}
