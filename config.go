package dispatcher

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config is everything a run can be tuned with.
// It is read from a JSON file, every field optional:
//
//	{
//		"quantum": "1s",
//		"levels": 4,
//		"workload": "./process",
//		"workload_args": ["20"],
//		"policy": "mlfq",
//		"isolate_failures": false,
//		"log_level": "info",
//		"report": true
//	}
type Config struct {
	Quantum         Duration `json:"quantum"`
	Levels          int      `json:"levels"`
	Workload        string   `json:"workload"`
	WorkloadArgs    []string `json:"workload_args"`
	Policy          string   `json:"policy"`
	IsolateFailures bool     `json:"isolate_failures"`
	LogLevel        string   `json:"log_level"`
	Report          bool     `json:"report"`
}

// DefaultConfig runs ./process 20 for every record, one second per tick.
func DefaultConfig() Config {
	return Config{
		Quantum:      Duration(time.Second),
		Levels:       DefaultLevels,
		Workload:     "./process",
		WorkloadArgs: []string{"20"},
		Policy:       "mlfq",
		LogLevel:     "info",
		Report:       true,
	}
}

// LoadConfig reads the JSON file at path on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if cfg.Levels < 1 {
		return cfg, fmt.Errorf("config %s: levels must be at least 1, got %d", path, cfg.Levels)
	}
	return cfg, nil
}

// Duration is a time.Duration written as "1s", "250ms" in JSON.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
