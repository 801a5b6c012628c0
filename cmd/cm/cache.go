package main

import (
	"fmt"

	"github.com/TeamDman/cm-sub000/pkg/cm/cache"
	"github.com/TeamDman/cm-sub000/pkg/cm/config"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the fingerprint cache",
	Long: `Manage the fingerprint cache used to skip unchanged sources.

The cache records each source's size and modification time after a
successful write. A later batch skips a file when its fingerprint
matches and the output still exists.`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [root]",
	Short: "Clear cached fingerprints",
	Long: `Clear cached fingerprints. With a root argument only that root's
fingerprints are dropped; without one the whole cache is cleared.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCacheClear,
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the fingerprint cache location",
	RunE:  runCachePath,
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePathCmd)
	rootCmd.AddCommand(cacheCmd)
}

// runCacheClear drops fingerprints for one root or for everything.
func runCacheClear(cmd *cobra.Command, args []string) error {
	c, err := cache.Open(config.DefaultFingerprintPath())
	if err != nil {
		return fmt.Errorf("opening fingerprint cache: %w", err)
	}
	defer func() { _ = c.Close() }()

	root := ""
	if len(args) == 1 {
		root = args[0]
	}

	if err := c.DeletePrefix(root); err != nil {
		return err
	}

	if root == "" {
		printInfo("Cleared all cached fingerprints")
	} else {
		printInfo("Cleared cached fingerprints under %s", root)
	}
	return nil
}

// runCachePath prints the cache location.
func runCachePath(cmd *cobra.Command, args []string) error {
	fmt.Println(config.DefaultFingerprintPath())
	return nil
}
