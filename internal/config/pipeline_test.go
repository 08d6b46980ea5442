package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/stopwindow/internal/testutil"
)

func TestEmptyPipelineConfigDefaults(t *testing.T) {
	cfg := EmptyPipelineConfig()

	if cfg.GetWindowSize() != 100 {
		t.Errorf("GetWindowSize() = %d, want 100", cfg.GetWindowSize())
	}
	if cfg.GetWindowMode() != "sliding" {
		t.Errorf("GetWindowMode() = %q, want sliding", cfg.GetWindowMode())
	}
	if cfg.GetMinAllowedOverlap() != 0.8 {
		t.Errorf("GetMinAllowedOverlap() = %f, want 0.8", cfg.GetMinAllowedOverlap())
	}
	if cfg.GetDeriveLabels() != true {
		t.Errorf("GetDeriveLabels() = %v, want true", cfg.GetDeriveLabels())
	}
	if cfg.GetStopLabel() != "stop" {
		t.Errorf("GetStopLabel() = %q, want stop", cfg.GetStopLabel())
	}
	if cfg.GetExportDir() != "." {
		t.Errorf("GetExportDir() = %q, want .", cfg.GetExportDir())
	}
	if cfg.GetDatabasePath() != "stopwindow.db" {
		t.Errorf("GetDatabasePath() = %q, want stopwindow.db", cfg.GetDatabasePath())
	}
	if cfg.GetLogLevel() != "info" {
		t.Errorf("GetLogLevel() = %q, want info", cfg.GetLogLevel())
	}
	testutil.AssertNoError(t, cfg.Validate())
}

func TestLoadPipelineConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pipeline.json")

	testJSON := `{
  "window_size": 64,
  "window_mode": "split",
  "min_allowed_overlap": 0.5,
  "derive_labels": false,
  "log_level": "debug"
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadPipelineConfig(configPath)
	testutil.AssertNoError(t, err)

	if cfg.GetWindowSize() != 64 {
		t.Errorf("GetWindowSize() = %d, want 64", cfg.GetWindowSize())
	}
	if cfg.GetWindowMode() != "split" {
		t.Errorf("GetWindowMode() = %q, want split", cfg.GetWindowMode())
	}
	if cfg.GetMinAllowedOverlap() != 0.5 {
		t.Errorf("GetMinAllowedOverlap() = %f, want 0.5", cfg.GetMinAllowedOverlap())
	}
	if cfg.GetDeriveLabels() != false {
		t.Errorf("GetDeriveLabels() = %v, want false", cfg.GetDeriveLabels())
	}
	if cfg.GetLogLevel() != "debug" {
		t.Errorf("GetLogLevel() = %q, want debug", cfg.GetLogLevel())
	}
	// Unset fields keep their defaults
	if cfg.GetStopLabel() != "stop" {
		t.Errorf("GetStopLabel() = %q, want stop", cfg.GetStopLabel())
	}
}

func TestLoadPipelineConfigErrors(t *testing.T) {
	tmpDir := t.TempDir()

	write := func(name, content string) string {
		p := filepath.Join(tmpDir, name)
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
		return p
	}

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"wrong extension", write("pipeline.yaml", "window_size: 3"), ".json extension"},
		{"missing file", filepath.Join(tmpDir, "missing.json"), "failed to stat"},
		{"bad json", write("bad.json", "{"), "failed to parse"},
		{"zero window", write("zero.json", `{"window_size": 0}`), "invalid configuration"},
		{"overlap above one", write("overlap.json", `{"min_allowed_overlap": 1.5}`), "invalid configuration"},
		{"unknown mode", write("mode.json", `{"window_mode": "tumbling"}`), "invalid configuration"},
		{"unknown level", write("level.json", `{"log_level": "loud"}`), "invalid configuration"},
		{"empty stop label", write("label.json", `{"stop_label": ""}`), "invalid configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPipelineConfig(tt.path)
			testutil.AssertError(t, err)
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadPipelineConfigTooLarge(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "large.json")

	large := make([]byte, 1024*1024+1)
	for i := range large {
		large[i] = ' '
	}
	if err := os.WriteFile(configPath, large, 0644); err != nil {
		t.Fatalf("Failed to write large config: %v", err)
	}

	if _, err := LoadPipelineConfig(configPath); err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("expected too large error, got %v", err)
	}
}
