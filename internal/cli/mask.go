package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"surfacesfetus/pkg/obj"
	"surfacesfetus/pkg/stats"
)

func newMaskCmd(a *app) *cobra.Command {
	var (
		threshold float64
		invert    bool
	)

	cmd := &cobra.Command{
		Use:   "diemesh-mask values.txt mask.txt",
		Short: "Binarize a vertex mask sampled from a label volume",
		Long: "Volume sampling interpolates near the border of a mask, leaving values\n" +
			"between 0 and 1. Values below the threshold become 1 and the others 0,\n" +
			"or the opposite with --invert.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := a.loadField(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("threshold") {
				threshold = a.cfg.Mask.Threshold
			}

			mask := stats.Binarize(values, threshold, invert)
			ones := 0
			for _, m := range mask {
				ones += m
			}
			a.logger.Info("binarized mask",
				zap.Float64("threshold", threshold),
				zap.Bool("invert", invert),
				zap.Int("ones", ones))

			if err := obj.WriteIntegerField(mask, args[1]); err != nil {
				return err
			}
			a.wroteField(args[1], len(mask))
			return nil
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 0.6, "values below this become the mask label")
	cmd.Flags().BoolVar(&invert, "invert", false, "swap the labels")
	return cmd
}
