// Package cli provides terminal helpers for the wakeword command.
//
// Results are encoded with Output (YAML, JSON or raw) while status lines
// from PrintSuccess and friends go to stderr. Paths describes ~/.wakeword
// and RenderSummary draws the box printed after a training run:
//
//	format, err := cli.ParseOutputFormat(flagValue, cli.FormatYAML)
//	...
//	err = cli.Output(result, cli.OutputOptions{Format: format})
//
//	fmt.Println(cli.RenderSummary(cli.DefaultStyles(), "friday", sections))
package cli
