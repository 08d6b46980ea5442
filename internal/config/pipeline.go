package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Defaults applied by the Get* accessors when a field is unset.
const (
	DefaultWindowSize        = 100
	DefaultMinAllowedOverlap = 0.8
	DefaultDeriveLabels      = true
	DefaultStopLabel         = "stop"
	DefaultExportDir         = "."
	DefaultDatabasePath      = "stopwindow.db"
	DefaultLogLevel          = "info"
	DefaultWindowMode        = "sliding"
)

// PipelineConfig holds windowing, scoring and output settings. Every field
// is optional; nil means "use the default".
type PipelineConfig struct {
	WindowSize        *int     `json:"window_size,omitempty" validate:"omitempty,gt=0"`
	WindowMode        *string  `json:"window_mode,omitempty" validate:"omitempty,oneof=split sliding"`
	MinAllowedOverlap *float64 `json:"min_allowed_overlap,omitempty" validate:"omitempty,gte=0,lte=1"`
	DeriveLabels      *bool    `json:"derive_labels,omitempty"`
	StopLabel         *string  `json:"stop_label,omitempty" validate:"omitempty,min=1"`
	ExportDir         *string  `json:"export_dir,omitempty" validate:"omitempty,min=1"`
	DatabasePath      *string  `json:"database_path,omitempty" validate:"omitempty,min=1"`
	LogLevel          *string  `json:"log_level,omitempty" validate:"omitempty,oneof=trace debug info warn warning error"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// EmptyPipelineConfig returns a PipelineConfig with all fields set to nil.
func EmptyPipelineConfig() *PipelineConfig {
	return &PipelineConfig{}
}

// LoadPipelineConfig loads a PipelineConfig from a JSON file.
// The file must have a .json extension and be at most 1MB.
// Fields omitted from the file keep their defaults, so partial configs are safe.
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyPipelineConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the set fields against their constraints.
func (c *PipelineConfig) Validate() error {
	return validate.Struct(c)
}

// GetWindowSize returns the window_size value or the default.
func (c *PipelineConfig) GetWindowSize() int {
	if c.WindowSize == nil {
		return DefaultWindowSize
	}
	return *c.WindowSize
}

// GetWindowMode returns the window_mode value or the default.
func (c *PipelineConfig) GetWindowMode() string {
	if c.WindowMode == nil {
		return DefaultWindowMode
	}
	return *c.WindowMode
}

// GetMinAllowedOverlap returns the min_allowed_overlap value or the default.
func (c *PipelineConfig) GetMinAllowedOverlap() float64 {
	if c.MinAllowedOverlap == nil {
		return DefaultMinAllowedOverlap
	}
	return *c.MinAllowedOverlap
}

// GetDeriveLabels returns the derive_labels value or the default.
func (c *PipelineConfig) GetDeriveLabels() bool {
	if c.DeriveLabels == nil {
		return DefaultDeriveLabels
	}
	return *c.DeriveLabels
}

// GetStopLabel returns the stop_label value or the default.
func (c *PipelineConfig) GetStopLabel() string {
	if c.StopLabel == nil {
		return DefaultStopLabel
	}
	return *c.StopLabel
}

// GetExportDir returns the export_dir value or the default.
func (c *PipelineConfig) GetExportDir() string {
	if c.ExportDir == nil {
		return DefaultExportDir
	}
	return *c.ExportDir
}

// GetDatabasePath returns the database_path value or the default.
func (c *PipelineConfig) GetDatabasePath() string {
	if c.DatabasePath == nil {
		return DefaultDatabasePath
	}
	return *c.DatabasePath
}

// GetLogLevel returns the log_level value or the default.
func (c *PipelineConfig) GetLogLevel() string {
	if c.LogLevel == nil {
		return DefaultLogLevel
	}
	return *c.LogLevel
}
