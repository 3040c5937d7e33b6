// Package cli implements the surfacesfetus command tree. Every subcommand
// reads its inputs from files, runs one of the analysis packages and writes
// its result to a file or to standard output. Logs go to standard error.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"surfacesfetus/internal/models"
	"surfacesfetus/pkg/config"
	"surfacesfetus/pkg/logging"
	"surfacesfetus/pkg/obj"
	"surfacesfetus/pkg/visualization"
)

// DefaultConfigPath is read when --config is not given. A missing file means
// the built-in defaults.
const DefaultConfigPath = "surfacesfetus.yaml"

// RootOptions holds the global flags
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	Cores      int
}

// app carries what every subcommand needs once the persistent flags have
// been parsed
type app struct {
	opts   RootOptions
	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCommand builds the root command with all subcommands attached
func NewRootCommand() *cobra.Command {
	a := &app{cfg: config.DefaultConfig(), logger: logging.NewNop()}

	cmd := &cobra.Command{
		Use:   "surfacesfetus",
		Short: "Analysis tools for fetal brain surface meshes",
		Long: "surfacesfetus measures MNI polygon surfaces: edge lengths, curvature\n" +
			"smoothness, triangle quality and distortion between inner and outer\n" +
			"surfaces, and builds parametric spherical test surfaces.",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = a.logger.Sync()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.opts.ConfigPath, "config", "c", DefaultConfigPath, "YAML configuration file")
	pf.StringVar(&a.opts.LogLevel, "log-level", "", "log level (debug, info, warn, error), overrides the config")
	pf.IntVar(&a.opts.Cores, "cores", 0, "number of CPU cores to use, overrides the config (0 = all)")

	cmd.AddCommand(
		newEdgyCmd(a),
		newSmoothnessCmd(a),
		newAspectCmd(a),
		newParmCmd(a),
		newAnglesCmd(a),
		newMaskCmd(a),
		newExportSTLCmd(a),
		newConfigCmd(a),
	)
	return cmd
}

// init loads the configuration, applies flag overrides and builds the logger
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(a.opts.ConfigPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("cores") {
		cfg.Processing.NumCores = a.opts.Cores
	}
	switch {
	case flags.Changed("log-level"):
		cfg.Log.Level = a.opts.LogLevel
	case cfg.Output.Verbose:
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logging.NewWriterLogger(logging.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	}, cmd.ErrOrStderr()).Named(cmd.Name())
	return nil
}

// stage logs the duration of a processing step at debug level
func (a *app) stage(name string, start time.Time) {
	a.logger.Debug("stage finished", zap.String("stage", name), zap.Duration("elapsed", time.Since(start)))
}

func (a *app) loadMesh(path string) (*models.Mesh, error) {
	start := time.Now()
	mesh, err := obj.Load(path)
	if err != nil {
		return nil, err
	}
	a.logger.Info("loaded surface",
		zap.String("path", path),
		zap.Int("points", mesh.NumPoints()),
		zap.Int("polygons", mesh.NumPolygons()))
	a.stage("load "+path, start)
	return mesh, nil
}

func (a *app) saveMesh(mesh *models.Mesh, path string) error {
	if err := obj.Save(mesh, path); err != nil {
		return err
	}
	a.logger.Info("wrote surface", zap.String("path", path), zap.Int("points", mesh.NumPoints()))
	return nil
}

func (a *app) loadField(path string) (models.ScalarField, error) {
	field, err := obj.ReadScalarField(path)
	if err != nil {
		return nil, err
	}
	a.logger.Info("loaded field", zap.String("path", path), zap.Int("values", len(field)))
	return field, nil
}

func (a *app) wroteField(path string, n int) {
	a.logger.Info("wrote field", zap.String("path", path), zap.Int("values", n))
}

func (a *app) saveHistogram(h *visualization.Histogram, values []float64, path string) error {
	skipped, err := h.Save(values, path)
	if err != nil {
		return err
	}
	if skipped > 0 {
		a.logger.Warn("non-finite values left out of histogram", zap.Int("count", skipped))
	}
	a.logger.Info("wrote histogram", zap.String("path", path))
	return nil
}

// Execute runs the command tree with the process arguments
func Execute() error {
	if err := NewRootCommand().Execute(); err != nil {
		return fmt.Errorf("surfacesfetus: %w", err)
	}
	return nil
}
