package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var boundsCmd = &cobra.Command{
	Use:   "bounds",
	Short: "Print the data bounds and destination rectangle",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := newPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer p.Close()

		scene, err := p.scenes.Scene()
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"bounds":     scene.Bounds,
			"degenerate": scene.Bounds.IsDegenerate(),
			"rect":       scene.Rect,
			"version":    scene.Version,
		})
	},
}

var hitCmd = &cobra.Command{
	Use:   "hit <x> <y>",
	Short: "Print the feature drawn at a pixel",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("x: %w", err)
		}
		y, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("y: %w", err)
		}

		p, err := newPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer p.Close()

		rf, err := p.scenes.FeatureAt(x, y)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", rf.Feature.Key, rf.Feature.Type, rf.Feature.Label)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(boundsCmd, hitCmd)
}
