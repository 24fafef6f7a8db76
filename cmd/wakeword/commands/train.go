package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/haivivi/wakeword/pkg/cli"
	"github.com/haivivi/wakeword/pkg/dataset"
	"github.com/haivivi/wakeword/pkg/pipeline"
)

// cacheDefault selects ~/.wakeword/cache/features for --cache.
const cacheDefault = "default"

var (
	trainPositive  []string
	trainNegative  []string
	trainEpochs    int
	trainBatchSize int
	trainOut       string
	trainCache     string
	trainConverter string
	trainSplit     string
	trainSeed      uint64
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a wake-word model and export it",
	Long: `Build the dataset, train the network, evaluate it on the held-out
partition and export both model artifacts.

Flags override the values from --config.

Examples:
  wakeword train --positive friday-wav --negative kitchen-noise
  wakeword train -c friday.yaml --epochs 5 --out ./out
  wakeword train --cache default --converter builtin`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	f := trainCmd.Flags()
	f.StringSliceVar(&trainPositive, "positive", nil, "directory or file of wake-word recordings (repeatable)")
	f.StringSliceVar(&trainNegative, "negative", nil, "directory or file of non-wake-word recordings (repeatable)")
	f.IntVar(&trainEpochs, "epochs", 0, "number of training epochs")
	f.IntVar(&trainBatchSize, "batch-size", 0, "mini-batch size")
	f.StringVar(&trainOut, "out", "", "artifact destination (directory, file:// or s3:// URI)")
	f.StringVar(&trainCache, "cache", "", "feature cache directory ('"+cacheDefault+"' for ~/.wakeword/cache/features)")
	f.StringVar(&trainConverter, "converter", "", "TF.js converter (exec or builtin)")
	f.StringVar(&trainSplit, "split", "", fmt.Sprintf("train/test split strategy %v", dataset.Strategies()))
	f.Uint64Var(&trainSeed, "seed", 0, "seed for weights, shuffling and noise")

	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyTrainFlags(cmd, &cfg); err != nil {
		return err
	}

	p, err := pipeline.New(cfg, pipeline.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt)
	defer stop()

	res, err := p.Run(ctx)
	if err != nil {
		return err
	}

	if formatOutput != "" {
		return printResult(res)
	}
	fmt.Println(cli.RenderSummary(cli.DefaultStyles(), "wakeword "+res.RunID, summarize(res)))
	cli.PrintSuccess("model saved to %s", res.Artifacts.Model)
	cli.PrintSuccess("TF.js model saved to %s", res.Artifacts.TFJS)
	return nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func applyTrainFlags(cmd *cobra.Command, cfg *pipeline.Config) error {
	flags := cmd.Flags()
	if flags.Changed("positive") {
		cfg.Sources.Positive = trainPositive
	}
	if flags.Changed("negative") {
		cfg.Sources.Negative = trainNegative
	}
	if flags.Changed("epochs") {
		cfg.Train.Epochs = trainEpochs
	}
	if flags.Changed("batch-size") {
		cfg.Train.BatchSize = trainBatchSize
	}
	if flags.Changed("out") {
		cfg.Output.URI = trainOut
	}
	if flags.Changed("converter") {
		cfg.Output.Converter.Kind = trainConverter
	}
	if flags.Changed("split") {
		cfg.Split.Strategy = dataset.Strategy(trainSplit)
	}
	if flags.Changed("seed") {
		cfg.Model.Seed = trainSeed
		cfg.Train.Seed = trainSeed
		cfg.Synthetic.Seed = trainSeed
	}
	if flags.Changed("cache") {
		dir := trainCache
		if dir == cacheDefault {
			paths, err := cli.NewPaths()
			if err != nil {
				return err
			}
			dir = paths.FeatureCacheDir()
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}
		cfg.Cache.Dir = dir
	}
	return nil
}

func summarize(res *pipeline.Result) []cli.Section {
	data := cli.Section{Label: "Dataset", Rows: []cli.Row{
		{Key: "examples", Value: counts(res.Examples)},
		{Key: "train", Value: counts(res.Train)},
		{Key: "test", Value: counts(res.Test)},
		{Key: "features", Value: fmt.Sprintf("%d frames x %d coefficients", res.Frames, res.Coeffs)},
	}}

	training := cli.Section{Label: "Training", Rows: []cli.Row{
		{Key: "parameters", Value: strconv.Itoa(res.Params)},
		{Key: "epochs", Value: strconv.Itoa(len(res.History))},
		{Key: "duration", Value: cli.FormatDuration(res.Duration)},
	}}
	if len(res.History) > 0 {
		last := res.History.Last()
		training.Rows = append(training.Rows,
			cli.Row{Key: "final loss", Value: fmt.Sprintf("%.4f", last.Loss)},
			cli.Row{Key: "final accuracy", Value: cli.FormatPercent(last.Accuracy)},
		)
	}

	sections := []cli.Section{data, training}
	if m := res.Metrics; m != nil {
		sections = append(sections, cli.Section{Label: "Evaluation", Rows: []cli.Row{
			{Key: "loss", Value: fmt.Sprintf("%.4f", m.Loss)},
			{Key: "accuracy", Value: cli.FormatPercent(m.Accuracy)},
			{Key: "precision", Value: cli.FormatPercent(m.Precision)},
			{Key: "recall", Value: cli.FormatPercent(m.Recall)},
		}})
	}
	if a := res.Artifacts; a != nil {
		sections = append(sections, cli.Section{Label: "Artifacts", Rows: []cli.Row{
			{Key: "model", Value: withSize(a.Model)},
			{Key: "tfjs", Value: a.TFJS},
		}})
	}
	return sections
}

func withSize(path string) string {
	fi, err := os.Stat(path)
	if err != nil {
		return path
	}
	return fmt.Sprintf("%s (%s)", path, cli.FormatBytes(fi.Size()))
}

func counts(c dataset.Counts) string {
	return fmt.Sprintf("%d (%d positive, %d negative)", c.Total(), c.Positive, c.Negative)
}
