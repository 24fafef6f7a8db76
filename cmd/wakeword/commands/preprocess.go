package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haivivi/wakeword/pkg/audio/codec/wav"
	"github.com/haivivi/wakeword/pkg/audio/loader"
	"github.com/haivivi/wakeword/pkg/audio/pcm"
	"github.com/haivivi/wakeword/pkg/audio/resampler"
	"github.com/haivivi/wakeword/pkg/cli"
)

var preprocessRate int

var preprocessCmd = &cobra.Command{
	Use:   "preprocess <src-dir> <dst-dir>",
	Short: "Convert recordings to mono WAV at the training sample rate",
	Long: `Decode every .wav and .mp3 file in <src-dir>, downmix it to mono,
resample it and write it to <dst-dir> as a 16-bit WAV file with the same base
name. Clip length is left unchanged.

Examples:
  wakeword preprocess raw-recordings friday-wav
  wakeword preprocess --rate 8000 raw-recordings friday-8k`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, dst := args[0], args[1]
		entries, err := os.ReadDir(src)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dst, 0755); err != nil {
			return err
		}

		n := 0
		for _, e := range entries {
			if e.IsDir() || !loader.Supported(e.Name()) {
				continue
			}
			in := filepath.Join(src, e.Name())
			out := filepath.Join(dst, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))+".wav")
			peak, err := preprocessFile(in, out, preprocessRate)
			if err != nil {
				return err
			}
			switch {
			case peak == 0:
				cli.PrintWarning("%s is silent", in)
			case peak >= 1:
				cli.PrintWarning("%s clips at full scale", in)
			}
			slog.Debug("preprocessed", "src", in, "dst", out, "peak", peak)
			n++
		}
		if n == 0 {
			cli.PrintWarning("no .wav or .mp3 files in %s", src)
			return nil
		}
		cli.PrintSuccess("wrote %d files to %s", n, dst)
		return nil
	},
}

func init() {
	preprocessCmd.Flags().IntVar(&preprocessRate, "rate", 16000, "output sample rate in Hz")

	rootCmd.AddCommand(preprocessCmd)
}

// preprocessFile converts src and returns the peak level of the written
// samples.
func preprocessFile(src, dst string, rate int) (float32, error) {
	clip, err := loader.DecodeClipFile(src)
	if err != nil {
		return 0, err
	}
	samples, err := resampler.Resample(clip.Samples, clip.SampleRate, rate)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", src, err)
	}
	if err := wav.WriteFile(dst, samples, rate); err != nil {
		return 0, err
	}
	return pcm.Peak(samples), nil
}
