package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"surfacesfetus/pkg/adjacency"
	"surfacesfetus/pkg/obj"
	"surfacesfetus/pkg/stats"
)

func newSmoothnessCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "smoothness surface.obj curvature.txt [smoothness.txt]",
		Short: "Average change in mean curvature between every vertex and its neighbors",
		Long: "Local smoothness is a small change in curvature between a vertex and its\n" +
			"neighbors. A surface is smooth when its values are close to 0. Without an\n" +
			"output file the mean over all vertices is printed.",
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			mesh, err := a.loadMesh(args[0])
			if err != nil {
				return err
			}
			curvature, err := a.loadField(args[1])
			if err != nil {
				return err
			}

			result, err := stats.NewCalculator(a.cfg.Processing.NumCores).
				Smoothness(adjacency.Build(mesh), curvature)
			if err != nil {
				return err
			}

			if len(args) < 3 {
				mean := stats.Summarize(result).Mean
				fmt.Fprintf(cmd.OutOrStdout(), "%.3f\n", math.Round(mean*1000)/1000)
				return nil
			}
			if err := obj.WriteScalarField(result, args[2]); err != nil {
				return err
			}
			a.wroteField(args[2], len(result))
			return nil
		},
	}
}
