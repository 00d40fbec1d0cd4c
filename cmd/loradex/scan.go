package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"loradex/internal/config"
	"loradex/internal/manager"
	"loradex/pkg/types"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Print the catalog of one folder, or of the whole tree, as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log := newLogger(cfg.LogLevel, cfg.LogFormat)
		mgr := manager.NewWithConfig(manager.ManagerConfig{
			Config:      config.NewStore(path, cfg),
			ClicksFile:  clicksPath(cfg),
			ScanWorkers: cfg.ScanWorkers,
			Logger:      log,
		})

		rel, _ := cmd.Flags().GetString("path")
		all, _ := cmd.Flags().GetBool("all")
		search, _ := cmd.Flags().GetString("search")

		var resp types.LoraFilesResponse
		if all {
			resp, err = mgr.ScanAll(cmd.Context(), search)
		} else {
			resp, err = mgr.LoraFiles(cmd.Context(), rel, search)
		}
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	},
}

func init() {
	scanCmd.Flags().String("path", "", "Folder relative to the base path")
	scanCmd.Flags().Bool("all", false, "Scan the whole tree")
	scanCmd.Flags().String("search", "", "Search term for per-term click counts")
	rootCmd.AddCommand(scanCmd)
}
