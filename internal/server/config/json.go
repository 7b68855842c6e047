package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/mkuznecov/auctionsite/internal/flagx"
	"github.com/mkuznecov/auctionsite/internal/timex"
)

// JsonConfig is the DTO used only for reading JSON configuration files. It
// uses timex.Duration for interval fields, which allows parsing both string
// values such as "5m" and integer nanoseconds. After unmarshalling, its
// fields are copied into the runtime Config struct.
type JsonConfig struct {
	EndpointAddrHTTP      string         `json:"endpoint_addr_http"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	SessionSweepPeriod    timex.Duration `json:"session_sweep_period"`
	UseMemoryStore        bool           `json:"use_memory_store"`
	LoginRatePerMinute    int            `json:"login_rate_per_minute"`
	LoginBurst            int            `json:"login_burst"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; when neither is set, no JSON file is loaded. An unreadable file or
// invalid JSON panics: a half-applied config is worse than no server.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.TokenValidityDuration = time.Duration(c.TokenValidityDuration.Duration)
	config.SessionSweepPeriod = time.Duration(c.SessionSweepPeriod.Duration)
	config.UseMemoryStore = c.UseMemoryStore
	config.LoginRatePerMinute = c.LoginRatePerMinute
	config.LoginBurst = c.LoginBurst
}
