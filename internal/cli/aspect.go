package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"surfacesfetus/pkg/obj"
	"surfacesfetus/pkg/quality"
	"surfacesfetus/pkg/visualization"
)

func newAspectCmd(a *app) *cobra.Command {
	var (
		fence     float64
		reject    bool
		histogram string
	)

	cmd := &cobra.Command{
		Use:   "aspect surface.obj [aspect_ratios.txt]",
		Short: "Aspect ratio of every triangle and an outlier report",
		Long: "Aspect ratio of triangles given by the ratio of the circumradius to twice\n" +
			"its inradius, a*b*c/(8*(s-a)*(s-b)*(s-c)) where s=(a+b+c)/2.\n" +
			"Ratios beyond the interquartile fences are reported as outliers.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mesh, err := a.loadMesh(args[0])
			if err != nil {
				return err
			}

			analyzer := quality.NewAnalyzer(a.cfg.Processing.NumCores)
			analyzer.Fence = a.cfg.Quality.Fence
			analyzer.Policy = quality.DegeneratePolicy(a.cfg.Quality.Degenerate)
			if cmd.Flags().Changed("fence") {
				analyzer.Fence = fence
			}
			if reject {
				analyzer.Policy = quality.PolicyReject
			}

			ratios, err := analyzer.AspectRatios(mesh)
			if err != nil {
				return err
			}

			report := analyzer.Report(ratios)
			a.logger.Info("triangle quality",
				zap.Int("triangles", report.All.N),
				zap.Int("outliers", len(report.Outliers)),
				zap.Float64("lowerFence", report.Fences.Lower),
				zap.Float64("upperFence", report.Fences.Upper))
			printReport(cmd.OutOrStdout(), report)

			if histogram != "" {
				h := visualization.NewHistogram("Triangle aspect ratio", "circumradius / (2 x inradius)")
				h.Markers = []float64{report.Fences.Lower, report.Fences.Upper}
				if err := a.saveHistogram(h, ratios, histogram); err != nil {
					return err
				}
			}

			if len(args) > 1 {
				if err := obj.WriteScalarField(ratios, args[1]); err != nil {
					return err
				}
				a.wroteField(args[1], len(ratios))
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&fence, "fence", quality.DefaultFence, "interquartile range multiplier of the outlier fences")
	cmd.Flags().BoolVar(&reject, "reject", false, "fail on degenerate triangles instead of reporting them as outliers")
	cmd.Flags().StringVar(&histogram, "histogram", "", "save a PNG histogram of the ratios with the outlier fences")
	return cmd
}

func printReport(w io.Writer, r quality.Report) {
	fmt.Fprintf(w, "all triangles, n=%d\n", r.All.N)
	fmt.Fprintf(w, "mean=%.3f  std=%.3f\n", r.All.Mean, r.All.Std)
	fmt.Fprintf(w, "%d out of %d (%.1f%%) outliers masked\n", len(r.Outliers), r.All.N, r.Percent)
	fmt.Fprintf(w, "mean=%.3f  std=%.3f\n", r.Masked.Mean, r.Masked.Std)
}
