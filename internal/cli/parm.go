package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"surfacesfetus/pkg/spherical"
)

func newParmCmd(a *app) *cobra.Command {
	var sphere string

	cmd := &cobra.Command{
		Use:   "parm --sphere reference.obj equation... surface.obj",
		Short: "Produce a surface from a spherical function",
		Long: "Project every vertex of a reference sphere through one equation r(theta, phi)\n" +
			"or three equations x, y, z (theta, phi). Angles follow the ISO convention:\n" +
			"theta is the polar angle from +z and phi the azimuth in the xy plane.\n" +
			"The result keeps the topology of the reference, so surfaces built from\n" +
			"the same reference correspond vertex to vertex.",
		Example: "  surfacesfetus parm --sphere tetra.obj '2 + 0.3*sin(theta)*cos(4*phi)' bumpy.obj\n" +
			"  surfacesfetus parm --sphere tetra.obj '3*sin(theta)*cos(phi)' '2*sin(theta)*sin(phi)' 'cos(theta)' ellipsoid.obj",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			equations, output := args[:len(args)-1], args[len(args)-1]

			funcs := make([]spherical.Func, len(equations))
			for i, eq := range equations {
				f, err := spherical.Parse(eq)
				if err != nil {
					return fmt.Errorf("equation %d: %w", i+1, err)
				}
				funcs[i] = f
			}

			reference, err := a.loadMesh(sphere)
			if err != nil {
				return err
			}

			surface, err := spherical.NewProjector(a.cfg.Processing.NumCores).Project(reference, funcs...)
			if err != nil {
				return err
			}
			a.logger.Info("projected surface", zap.Strings("equations", equations))
			return a.saveMesh(surface, output)
		},
	}

	cmd.Flags().StringVar(&sphere, "sphere", "", "reference sphere whose vertex directions are sampled")
	_ = cmd.MarkFlagRequired("sphere")
	return cmd
}
