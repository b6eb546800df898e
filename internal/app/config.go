package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PatchPath string // hcl file or directory

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	MonitorURL       string
	MonitorNamespace string

	// Realtime builds the patch into a real-time context instead of
	// rendering it offline.
	Realtime bool
	// Transcript prints every call made on the native engine.
	Transcript bool
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.PatchPath == "" {
		return nil, errors.New("PatchPath is a required configuration field and cannot be empty")
	}
	if cfg.MonitorNamespace != "" && cfg.MonitorURL == "" {
		return nil, errors.New("MonitorNamespace requires MonitorURL")
	}
	return &cfg, nil
}
