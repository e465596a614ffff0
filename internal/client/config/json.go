package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/hopespring/backoffice/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations are
// given in whole seconds so the file stays editable by hand.
type JsonConfig struct {
	APIBaseURL            string `json:"api_base_url"`
	StoragePath           string `json:"storage_path"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds"`
}

// parseJson overlays cfg with values loaded from a JSON file.
//
// The file path comes from the -c/-config flags via flagx.JsonConfigFlags;
// when absent, nothing is loaded. Read or unmarshal errors panic (caller may
// recover). Only non-zero JSON fields override the current values.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.StoragePath != "" {
		cfg.StoragePath = jc.StoragePath
	}
	if jc.RequestTimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeoutSeconds) * time.Second
	}
}
