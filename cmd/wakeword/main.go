// Package main is the entry point for the wakeword CLI.
//
// Usage:
//
//	wakeword [flags] <command> [args]
//
// Commands:
//
//	train       - Build the dataset, train the network and export artifacts
//	convert     - Transcode a native model to a TF.js layers model
//	features    - Print MFCC statistics for audio files
//	predict     - Score audio files with a trained model
//	preprocess  - Convert recordings to 16 kHz mono WAV
//	config      - Show, initialize or describe the training config
//	version     - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/wakeword/cmd/wakeword/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
