package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/banshee-data/stopwindow/internal/config"
	"github.com/banshee-data/stopwindow/internal/dataset"
	"github.com/banshee-data/stopwindow/internal/fsutil"
	"github.com/banshee-data/stopwindow/internal/loader"
	"github.com/banshee-data/stopwindow/internal/monitoring"
	"github.com/banshee-data/stopwindow/internal/security"
	"github.com/banshee-data/stopwindow/internal/timeutil"
	"github.com/banshee-data/stopwindow/internal/version"
)

// settings is the resolved configuration: flags over STOPWINDOW_* env vars
// over the --config pipeline file over built-in defaults.
type settings struct {
	WindowSize   int     `mapstructure:"window-size"`
	Mode         string  `mapstructure:"mode"`
	MinOverlap   float64 `mapstructure:"min-overlap"`
	DeriveLabels bool    `mapstructure:"derive-labels"`
	StopLabel    string  `mapstructure:"stop-label"`
	ExportDir    string  `mapstructure:"export-dir"`
	Database     string  `mapstructure:"db"`
	LogLevel     string  `mapstructure:"log-level"`
}

// pipeline converts s back into a PipelineConfig so the same validation
// rules apply no matter where a value came from.
func (s *settings) pipeline() *config.PipelineConfig {
	return &config.PipelineConfig{
		WindowSize:        &s.WindowSize,
		WindowMode:        &s.Mode,
		MinAllowedOverlap: &s.MinOverlap,
		DeriveLabels:      &s.DeriveLabels,
		StopLabel:         &s.StopLabel,
		ExportDir:         &s.ExportDir,
		DatabasePath:      &s.Database,
		LogLevel:          &s.LogLevel,
	}
}

// app carries per-invocation state shared by the subcommands.
type app struct {
	v     *viper.Viper
	cfg   settings
	fs    fsutil.FileSystem
	clock timeutil.Clock
}

func newRootCmd() *cobra.Command {
	a := &app{
		v:     viper.New(),
		fs:    fsutil.OSFileSystem{},
		clock: timeutil.RealClock{},
	}

	root := &cobra.Command{
		Use:           "stopwindow",
		Short:         "Window accelerometer recordings and score stop detection.",
		Version:       version.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "pipeline config JSON file")
	flags.Int("window-size", config.DefaultWindowSize, "samples per window")
	flags.String("mode", config.DefaultWindowMode, "window mode: split or sliding")
	flags.Float64("min-overlap", config.DefaultMinAllowedOverlap, "minimum overlap fraction for a predicted stop to match")
	flags.Bool("derive-labels", config.DefaultDeriveLabels, "label unlabelled samples from annotated stops")
	flags.String("stop-label", config.DefaultStopLabel, "label token that marks a stop sample")
	flags.String("export-dir", config.DefaultExportDir, "directory Parquet exports are written to")
	flags.String("db", config.DefaultDatabasePath, "SQLite evaluation database")
	flags.String("log-level", config.DefaultLogLevel, "log level: trace, debug, info, warn, error")

	root.AddCommand(
		a.windowsCmd(),
		a.durationsCmd(),
		a.evaluateCmd(),
		a.migrateCmd(),
		versionCmd(),
	)
	return root
}

// setup resolves settings for the running command.
func (a *app) setup(cmd *cobra.Command) error {
	v := a.v
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	v.SetEnvPrefix("STOPWINDOW")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	base := config.EmptyPipelineConfig()
	if path := v.GetString("config"); path != "" {
		loaded, err := config.LoadPipelineConfig(path)
		if err != nil {
			return err
		}
		base = loaded
	}
	// Pipeline file values replace the flag defaults; env vars and flags
	// set on the command line still win.
	v.SetDefault("window-size", base.GetWindowSize())
	v.SetDefault("mode", base.GetWindowMode())
	v.SetDefault("min-overlap", base.GetMinAllowedOverlap())
	v.SetDefault("derive-labels", base.GetDeriveLabels())
	v.SetDefault("stop-label", base.GetStopLabel())
	v.SetDefault("export-dir", base.GetExportDir())
	v.SetDefault("db", base.GetDatabasePath())
	v.SetDefault("log-level", base.GetLogLevel())

	if err := v.Unmarshal(&a.cfg); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if err := a.cfg.pipeline().Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := monitoring.SetLevel(a.cfg.LogLevel); err != nil {
		return err
	}

	monitoring.WithFields(logrus.Fields{
		"window_size": a.cfg.WindowSize,
		"mode":        a.cfg.Mode,
		"min_overlap": a.cfg.MinOverlap,
	}).Debug("configuration resolved")
	return nil
}

func (a *app) loader() *loader.Loader {
	return loader.New(a.fs, loader.Options{
		DeriveLabels: a.cfg.DeriveLabels,
		StopLabel:    a.cfg.StopLabel,
	})
}

func (a *app) loadCorpus(paths []string) (*dataset.Corpus, error) {
	c, err := a.loader().LoadCorpus(paths)
	if err != nil {
		return nil, err
	}
	monitoring.Logf("loaded %d recordings", c.Len())
	return c, nil
}

// exportPath returns name placed inside the export directory, creating the
// directory if needed.
func (a *app) exportPath(name string) (string, error) {
	dir := a.cfg.ExportDir
	if err := a.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, security.SanitizeFilename(name))
	if err := security.ValidatePathWithinDirectory(path, dir); err != nil {
		return "", err
	}
	return path, nil
}
