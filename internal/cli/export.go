package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"surfacesfetus/pkg/stl"
)

func newExportSTLCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export-stl surface.obj surface.stl",
		Short: "Convert a surface to binary STL",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mesh, err := a.loadMesh(args[0])
			if err != nil {
				return err
			}
			triangles := stl.FromMesh(mesh)
			if err := stl.SaveToSTL(args[1], triangles); err != nil {
				return err
			}
			a.logger.Info("wrote STL", zap.String("path", args[1]), zap.Int("triangles", len(triangles)))
			return nil
		},
	}
}
