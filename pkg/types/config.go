package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the per-attempt HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-scout/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// HarvestConfig holds settings for one harvest run.
type HarvestConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxAttempts is the number of tries for each page fetch (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// RecordDelay is the pause between consecutive papers, applied whether
	// or not the paper needed a network call (default 800ms).
	RecordDelay time.Duration `json:"record_delay" yaml:"record_delay"`

	// CheckpointEvery is the number of completed papers between durable
	// checkpoint flushes (default 10).
	CheckpointEvery int `json:"checkpoint_every" yaml:"checkpoint_every"`

	// OutputDir is the directory for the output table and checkpoint file
	// (default ".").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// ReportConfig holds settings for the report stage.
type ReportConfig struct {
	HTTPConfig `yaml:",inline"`

	// RequestDelay is the pause between GitHub API calls (default 2s).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// Token authenticates GitHub API requests. Optional; unauthenticated
	// requests work at a much lower rate limit. Never written to disk.
	Token string `json:"-" yaml:"-"`
}
