package cli

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"surfacesfetus/pkg/adjacency"
	"surfacesfetus/pkg/obj"
	"surfacesfetus/pkg/stats"
	"surfacesfetus/pkg/visualization"
)

func newEdgyCmd(a *app) *cobra.Command {
	var histogram string

	cmd := &cobra.Command{
		Use:   "edgy surface.obj edges.txt",
		Short: "Average edge length at every vertex",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mesh, err := a.loadMesh(args[0])
			if err != nil {
				return err
			}

			start := time.Now()
			graph := adjacency.Build(mesh)
			a.stage("adjacency", start)
			a.logger.Debug("neighbor graph", zap.Int("edges", len(adjacency.Edges(graph))))

			start = time.Now()
			lengths, err := stats.NewCalculator(a.cfg.Processing.NumCores).AverageEdgeLength(mesh, graph)
			if err != nil {
				return err
			}
			a.stage("edge lengths", start)

			summary := stats.Summarize(lengths)
			a.logger.Info("average edge length",
				zap.Float64("mean", summary.Mean),
				zap.Float64("min", summary.Min),
				zap.Float64("max", summary.Max))

			if err := obj.WriteScalarField(lengths, args[1]); err != nil {
				return err
			}
			a.wroteField(args[1], len(lengths))

			if histogram != "" {
				h := visualization.NewHistogram("Average edge length", "length")
				return a.saveHistogram(h, lengths, histogram)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&histogram, "histogram", "", "save a PNG histogram of the edge lengths")
	return cmd
}
