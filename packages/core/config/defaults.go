package config

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		DefaultWaitMs:   2000,
		PollIntervalMs:  50,
		FetchTimeoutMs:  10000,
		FetchRatePerSec: 4,
		Reporters:       []string{"console"},
		HistoryPath:     "",
	}
}
