// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load(ctx) layers a YAML file and SURYA_ env vars on top of the defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// SessionTTLSeconds evicts idle practice sessions after this many
	// seconds without a frame.
	SessionTTLSeconds int `koanf:"session_ttl_seconds"`

	// FrameHistoryCapacity bounds the per-session frame history ring.
	FrameHistoryCapacity int `koanf:"frame_history_capacity"`

	// HistoryCapacity bounds the completed-session summary store.
	HistoryCapacity int `koanf:"history_capacity"`

	// MaxHistoryLimit caps GET /history?limit.
	MaxHistoryLimit int `koanf:"max_history_limit"`

	// PosesPath, SafetyPath and CorrectionsPath override the embedded
	// knowledge bases with external YAML files when non-empty.
	PosesPath       string `koanf:"poses_path"`
	SafetyPath      string `koanf:"safety_path"`
	CorrectionsPath string `koanf:"corrections_path"`

	// CoachTone selects the verbal coaching register.
	CoachTone string `koanf:"coach_tone"`
}

// New creates a Config populated with service defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		SessionTTLSeconds:    1800,
		FrameHistoryCapacity: 1000,
		HistoryCapacity:      500,
		MaxHistoryLimit:      100,
		CoachTone:            "calm",
	}
}
