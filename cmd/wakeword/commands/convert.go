package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/wakeword/cmd/wakeword/internal/build"
	"github.com/haivivi/wakeword/pkg/cli"
	"github.com/haivivi/wakeword/pkg/model"
	"github.com/haivivi/wakeword/pkg/tfjs"
)

var (
	convertInputFormat string
	convertShardSize   int
)

var convertCmd = &cobra.Command{
	Use:   "convert --input_format " + model.FormatName + " <src> <dst>",
	Short: "Transcode a native model to a TF.js layers model",
	Long: `Read a native msgpack model and write a TF.js layers model directory
(model.json plus binary weight shards).

This is the default converter run by 'wakeword train'.

Examples:
  wakeword convert --input_format ` + model.FormatName + ` friday-wake-word-model.msgpack friday-tfjs-model`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if convertInputFormat != model.FormatName {
			return fmt.Errorf("unsupported --input_format %q (want %q)", convertInputFormat, model.FormatName)
		}
		src, dst := args[0], args[1]

		f, err := model.Load(src)
		if err != nil {
			return err
		}
		err = tfjs.Write(dst, f, tfjs.Options{
			ShardSize:   convertShardSize,
			GeneratedBy: "wakeword",
			ConvertedBy: build.String(),
		})
		if err != nil {
			return err
		}
		cli.PrintSuccess("converted %s (%d parameters) to %s", src, f.CountParams(), dst)
		cli.PrintInfo("%s of float32 weights", cli.FormatBytes(4*int64(f.CountParams())))
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertInputFormat, "input_format", model.FormatName, "format of <src>")
	convertCmd.Flags().IntVar(&convertShardSize, "shard-size", tfjs.DefaultShardSize, "maximum bytes per weight shard")

	rootCmd.AddCommand(convertCmd)
}
