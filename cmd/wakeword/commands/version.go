package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/wakeword/cmd/wakeword/internal/build"
	"github.com/haivivi/wakeword/pkg/audio/mfcc"
	"github.com/haivivi/wakeword/pkg/model"
)

// versionInfo adds the formats this binary reads and writes to the build
// details, so a model can be matched to the tool that produced it.
type versionInfo struct {
	build.Info `yaml:",inline" json:",inline"`

	ModelFormat string `yaml:"model_format" json:"model_format"`
	Features    string `yaml:"features" json:"features"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := versionInfo{
			Info:        build.Get(),
			ModelFormat: model.FormatName,
			Features:    mfcc.DefaultConfig().Fingerprint(),
		}
		if formatOutput != "" {
			return printResult(info)
		}
		fmt.Println(build.String())
		if verbose {
			fmt.Printf("  go:       %s\n", info.Go)
			fmt.Printf("  model:    %s\n", info.ModelFormat)
			fmt.Printf("  features: %s\n", info.Features)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
