package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"gamegrove/pkg/fsys"
)

const defaultRetentionDays = 30

type TelemetryConfig struct {
	Enabled       bool `json:"enabled"`
	Anonymize     bool `json:"anonymize"`
	RetentionDays int  `json:"retention_days"`
}

func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:       true,
		Anonymize:     true,
		RetentionDays: defaultRetentionDays,
	}
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gamegrove"
	}
	return filepath.Join(home, ".gamegrove")
}

func DefaultConfigPath() string {
	return filepath.Join(dataDir(), "telemetry_config.json")
}

func DefaultDBPath() string {
	return filepath.Join(dataDir(), "telemetry.db")
}

// LoadTelemetryConfig reads path, falling back to defaults when the file is
// missing or unreadable.
func LoadTelemetryConfig(afs afero.Fs, path string) TelemetryConfig {
	config := DefaultTelemetryConfig()

	data, err := afero.ReadFile(afs, path)
	if err != nil {
		return config
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return DefaultTelemetryConfig()
	}
	if config.RetentionDays <= 0 {
		config.RetentionDays = defaultRetentionDays
	}
	return config
}

func SaveTelemetryConfig(afs afero.Fs, path string, config TelemetryConfig) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	if err := fsys.WriteFileAtomic(afs, path, data, 0644); err != nil {
		return fmt.Errorf("failed to save telemetry config: %w", err)
	}
	return nil
}
