package commands

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/spf13/cobra"

	"github.com/haivivi/wakeword/cmd/wakeword/internal/config"
	"github.com/haivivi/wakeword/pkg/cli"
	"github.com/haivivi/wakeword/pkg/dataset"
	"github.com/haivivi/wakeword/pkg/pipeline"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show, initialize or describe the training config",
	Long: `Inspect the training configuration.

A config file is YAML laid over the defaults; absent keys keep their default
value and unknown keys are an error.

Examples:
  wakeword config show
  wakeword config show -c friday.yaml --format json
  wakeword config init friday.yaml
  wakeword config schema > wakeword.schema.json`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Output.S3.SecretAccessKey != "" {
			cfg.Output.S3.SecretAccessKey = "********"
		}
		return printResult(cfg)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init <file>",
	Short: "Write the default config to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Write(args[0], pipeline.DefaultConfig(), configInitForce); err != nil {
			return err
		}
		cli.PrintSuccess("wrote %s", args[0])
		return nil
	},
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the config",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, err := jsonschema.For[pipeline.Config](&jsonschema.ForOptions{})
		if err != nil {
			return fmt.Errorf("generate schema: %w", err)
		}
		enumStrategies(schema)
		data, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return err
		}
		return cli.Output(append(data, '\n'), cli.OutputOptions{Format: cli.FormatRaw})
	},
}

// enumStrategies restricts split.strategy to the strategies dataset.Split
// accepts.
func enumStrategies(schema *jsonschema.Schema) {
	split := schema.Properties["split"]
	if split == nil {
		return
	}
	strategy := split.Properties["strategy"]
	if strategy == nil {
		return
	}
	strategy.Enum = nil
	for _, s := range dataset.Strategies() {
		strategy.Enum = append(strategy.Enum, string(s))
	}
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSchemaCmd)
	rootCmd.AddCommand(configCmd)
}
