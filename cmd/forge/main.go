package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags
var version = "dev"

var (
	configPath string
	rootCmd    = &cobra.Command{
		Use:   "forge",
		Short: "forge - one-shot script-to-executable builder",
		Long: `forge scans a directory tree of Python scripts and packages each one
into a standalone executable. The flagship script lands beside the base
directory; every other script is collected into the tools subdirectory.

Running forge with no arguments builds everything.`,
		Version:      version,
		SilenceUsage: true,
		RunE:         runBuild,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
