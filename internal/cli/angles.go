package cli

import (
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"
	"go.uber.org/zap"

	"surfacesfetus/pkg/distortion"
	"surfacesfetus/pkg/normals"
	"surfacesfetus/pkg/obj"
)

type anglesOptions struct {
	ideal        bool
	errorMode    bool
	regular      string
	ratios       string
	mid          string
	innerNormals string
	outerNormals string
	recompute    bool
}

func newAnglesCmd(a *app) *cobra.Command {
	opts := &anglesOptions{}

	cmd := &cobra.Command{
		Use:   "angles inner.obj outer.obj angles.txt",
		Short: "Distortion angle between corresponding vertices of two surfaces",
		Long: "By default the surface angle ratios given with --ratios are converted to\n" +
			"radians with acos(1/a). With --ideal the angle between corresponding\n" +
			"vertex normals is used instead. --regular multiplies the result with the\n" +
			"thickness normalized to [0, 1].",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAngles(a, opts, args[0], args[1], args[2])
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.ideal, "ideal", false, "angles between corresponding normal vectors")
	f.BoolVar(&opts.errorMode, "error", false, "subtract the ideal angle from the measured distortion")
	f.StringVar(&opts.regular, "regular", "", "thickness file; multiply output with normalized thickness")
	f.StringVar(&opts.ratios, "ratios", "", "surface angle ratios for the default mode")
	f.StringVar(&opts.mid, "mid", "", "save the mid surface of inner and outer")
	f.StringVar(&opts.innerNormals, "inner-normals", "", "per-vertex normals of the inner surface (x y z per line)")
	f.StringVar(&opts.outerNormals, "outer-normals", "", "per-vertex normals of the outer surface (x y z per line)")
	f.BoolVar(&opts.recompute, "recompute", false, "recompute vertex normals from the polygons before use")
	cmd.MarkFlagsMutuallyExclusive("ideal", "error")
	return cmd
}

func runAngles(a *app, opts *anglesOptions, innerPath, outerPath, output string) error {
	inner, err := a.loadMesh(innerPath)
	if err != nil {
		return err
	}
	outer, err := a.loadMesh(outerPath)
	if err != nil {
		return err
	}
	if opts.recompute {
		normals.Recompute(inner)
		normals.Recompute(outer)
	}

	pair, err := distortion.NewCorrespondence(inner, outer)
	if err != nil {
		return err
	}

	if opts.mid != "" {
		if err := a.saveMesh(pair.MidSurface(), opts.mid); err != nil {
			return err
		}
	}

	req := distortion.Request{Mode: distortion.Mode(a.cfg.Distortion.Mode)}
	switch {
	case opts.ideal:
		req.Mode = distortion.ModeIdeal
	case opts.errorMode:
		req.Mode = distortion.ModeError
	}

	if opts.ratios != "" {
		if req.Ratios, err = a.loadField(opts.ratios); err != nil {
			return err
		}
	}
	if req.InnerNormals, err = loadNormals(a, opts.innerNormals); err != nil {
		return err
	}
	if req.OuterNormals, err = loadNormals(a, opts.outerNormals); err != nil {
		return err
	}
	if opts.regular != "" {
		if req.Thickness, err = a.loadField(opts.regular); err != nil {
			return err
		}
	}

	angles, err := pair.Angles(req)
	if err != nil {
		return err
	}
	a.logger.Info("distortion angles",
		zap.String("mode", string(req.Mode)),
		zap.Bool("regularized", req.Thickness != nil))

	if err := obj.WriteFixedField(angles, output); err != nil {
		return err
	}
	a.wroteField(output, len(angles))
	return nil
}

func loadNormals(a *app, path string) ([]r3.Vec, error) {
	if path == "" {
		return nil, nil
	}
	vectors, err := obj.ReadVectorField(path)
	if err != nil {
		return nil, err
	}
	a.logger.Info("loaded normals", zap.String("path", path), zap.Int("vectors", len(vectors)))
	return vectors, nil
}
