package commands

import (
	"log/slog"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/haivivi/wakeword/pkg/dataset"
	"github.com/haivivi/wakeword/pkg/pipeline"
)

// FeatureSummary describes the MFCC matrix of one file.
type FeatureSummary struct {
	File   string  `yaml:"file" json:"file"`
	Frames int     `yaml:"frames" json:"frames"`
	Coeffs int     `yaml:"coeffs" json:"coeffs"`
	Min    float64 `yaml:"min" json:"min"`
	Max    float64 `yaml:"max" json:"max"`
	Mean   float64 `yaml:"mean" json:"mean"`
	StdDev float64 `yaml:"stddev" json:"stddev"`
}

var featuresCmd = &cobra.Command{
	Use:   "features <file>...",
	Short: "Print MFCC statistics for audio files",
	Long: `Load each file exactly as training does (resample, pad or truncate,
MFCC) and print the matrix shape and value statistics.

Examples:
  wakeword features friday-wav/001.wav
  wakeword features -c friday.yaml --format json clips/*.mp3`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		b, err := newBuilder(cfg)
		if err != nil {
			return err
		}

		ctx := cmdContext(cmd)
		out := make([]FeatureSummary, 0, len(args))
		for _, path := range args {
			m, err := b.Features(ctx, path)
			if err != nil {
				return err
			}
			out = append(out, summarizeFeatures(path, m))
		}
		return printResult(out)
	},
}

func init() {
	rootCmd.AddCommand(featuresCmd)
}

func newBuilder(cfg pipeline.Config) (*dataset.Builder, error) {
	return dataset.NewBuilder(dataset.BuilderOptions{
		Loader:    cfg.Audio.Loader(),
		Features:  cfg.Features,
		Synthetic: cfg.Synthetic,
		Logger:    slog.Default(),
	})
}

func summarizeFeatures(path string, m [][]float32) FeatureSummary {
	s := FeatureSummary{File: path, Frames: len(m)}
	if len(m) == 0 {
		return s
	}
	s.Coeffs = len(m[0])
	flat := make([]float64, 0, len(m)*s.Coeffs)
	for _, row := range m {
		for _, v := range row {
			flat = append(flat, float64(v))
		}
	}
	if len(flat) == 0 {
		return s
	}
	s.Min = floats.Min(flat)
	s.Max = floats.Max(flat)
	s.Mean, s.StdDev = stat.MeanStdDev(flat, nil)
	return s
}
