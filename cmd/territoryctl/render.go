package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/samirrijal/territorymap/internal/adapters/snapshot"
	"github.com/samirrijal/territorymap/internal/adapters/svg"
	"github.com/samirrijal/territorymap/internal/core/domain"
	"github.com/samirrijal/territorymap/internal/core/usecases"
)

var (
	renderOut    string
	renderWidth  float64
	renderHeight float64
)

var renderCmd = &cobra.Command{
	Use:       "render <svg|png>",
	Short:     "Render the composed map to a file",
	Long:      "Loads the scene and writes it as SVG, or as PNG through headless Chrome. --width and --height fit the map into another rectangle.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"svg", "png"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, err := newPipeline(ctx)
		if err != nil {
			return err
		}
		defer p.Close()

		scene, err := p.scenes.Scene()
		if err != nil {
			return err
		}
		if renderWidth > 0 || renderHeight > 0 {
			rect := scene.Rect
			if renderWidth > 0 {
				rect.Width = renderWidth
			}
			if renderHeight > 0 {
				rect.Height = renderHeight
			}
			rect.OffsetX, rect.OffsetY = 0, 0
			if scene, err = p.scenes.Relayout(rect); err != nil {
				return err
			}
		}

		renders := usecases.NewRenderService(p.composer, nil, 0,
			svg.NewRenderer(),
			snapshot.NewRenderer(snapshot.Options{
				ExecPath:  cfg.Snapshot.ChromePath,
				Timeout:   cfg.SnapshotTimeout(),
				NoSandbox: cfg.Snapshot.NoSandbox,
			}),
		)
		data, _, err := renders.Render(ctx, args[0], scene)
		if err != nil {
			return err
		}

		out := renderOut
		if out == "" {
			out = "map." + args[0]
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes, %s)\n", out, len(data), describe(scene))
		return nil
	},
}

func describe(scene *domain.Scene) string {
	n := 0
	for _, l := range scene.Layers {
		n += len(l.Features)
	}
	return fmt.Sprintf("%d layers, %d features, version %s", len(scene.Layers), n, scene.Version)
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "output file (default map.<format>)")
	renderCmd.Flags().Float64Var(&renderWidth, "width", 0, "destination width in pixels")
	renderCmd.Flags().Float64Var(&renderHeight, "height", 0, "destination height in pixels")
	rootCmd.AddCommand(renderCmd)
}
