package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"loradex/internal/classifier"
	"loradex/internal/safetensors"
	"loradex/pkg/types"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <file.safetensors>",
	Short: "Print the embedded metadata and base model guess of one file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		full, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		if _, err := os.Stat(full); err != nil {
			return err
		}
		md, err := safetensors.NewExtractor(zerolog.Nop()).Extract(full)
		if err != nil {
			cmd.PrintErrf("warning: %v\n", err)
		}
		res := classifier.Default().Classify(md, filepath.Base(full), full)
		out := types.DerivedMetadata{
			BaseModelVersion: md.BaseModelVersion,
			NetworkModule:    md.NetworkModule,
			NetworkDim:       md.NetworkDim,
			NetworkAlpha:     md.NetworkAlpha,
			TrainingComment:  md.TrainingComment,
			SDModelName:      md.SDModelName,
			BaseModel:        res.BaseModel,
			ModelInfo:        res.ModelInfo,
			ModelScores:      res.Scores,
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
