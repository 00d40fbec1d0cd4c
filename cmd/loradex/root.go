package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "loradex",
	Short: "Catalog service for local LoRA safetensors files",
	Long: `loradex scans a directory tree of .safetensors files, reads their
embedded training metadata, guesses the base model each was trained on and
serves the catalog, previews, sidecar notes, click counts and saved
combinations over a JSON API.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Config file (.json, .yaml or .toml); defaults to <data-dir>/config.json")
	pf.String("data-dir", "", "Directory for the config file and click ledger")
	pf.String("lora-path", "", "Base directory holding the model files")
	pf.String("clicks-file", "", "Click ledger file; relative paths resolve against the data dir")
	pf.String("log-level", "", "Log level: off, error, info or debug")
	pf.String("log-format", "", "Log format: console or json")
	pf.Int("scan-workers", 0, "Concurrent metadata reads per directory")
}
