package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/haivivi/wakeword/pkg/cli"
	"github.com/haivivi/wakeword/pkg/featcache"
)

var cacheDir string

// CacheEntry is one fingerprint's share of the feature cache.
type CacheEntry struct {
	Fingerprint string `yaml:"fingerprint" json:"fingerprint"`
	Entries     int    `yaml:"entries" json:"entries"`
	Current     bool   `yaml:"current" json:"current"`
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and prune the feature cache",
	Long: `The feature cache holds MFCC matrices keyed by file content and by the
fingerprint of the audio and feature settings that produced them. Entries
from older settings are never read again; prune removes them.

The cache directory is --dir, else cache.dir from the config, else
~/.wakeword/cache/features.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count cached matrices per feature fingerprint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, current, err := openCache()
		if err != nil {
			return err
		}
		defer store.Close()

		st, err := store.Stats(cmdContext(cmd))
		if err != nil {
			return err
		}
		out := make([]CacheEntry, 0, len(st))
		for fp, n := range st {
			out = append(out, CacheEntry{Fingerprint: fp, Entries: n, Current: fp == current})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Fingerprint < out[j].Fingerprint })
		return printResult(out)
	},
}

var cacheClearAll bool

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete cached matrices made with other feature settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, current, err := openCache()
		if err != nil {
			return err
		}
		defer store.Close()

		keep := current
		if cacheClearAll {
			keep = ""
		}
		n, err := store.Prune(cmdContext(cmd), keep)
		if err != nil {
			return err
		}
		cli.PrintSuccess("removed %d cached matrices", n)
		return nil
	},
}

// openCache opens the on-disk cache and returns the fingerprint the current
// config would write under.
func openCache() (featcache.Store, string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", err
	}
	b, err := newBuilder(cfg)
	if err != nil {
		return nil, "", err
	}

	dir := cacheDir
	if dir == "" {
		dir = cfg.Cache.Dir
	}
	if dir == "" {
		paths, err := cli.NewPaths()
		if err != nil {
			return nil, "", err
		}
		dir = paths.FeatureCacheDir()
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, "", fmt.Errorf("feature cache %s: %w", dir, err)
	}
	store, err := featcache.NewBadger(featcache.BadgerOptions{Dir: dir})
	if err != nil {
		return nil, "", err
	}
	return store, b.Fingerprint(), nil
}

func init() {
	cacheCmd.PersistentFlags().StringVar(&cacheDir, "dir", "", "feature cache directory")
	cachePruneCmd.Flags().BoolVar(&cacheClearAll, "all", false, "also delete entries for the current settings")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}
