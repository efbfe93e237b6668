package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/rdb/internal/flagx"
	"github.com/dmitrijs2005/rdb/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "5s" and integer nanoseconds are accepted.
type JsonConfig struct {
	HTTPAddr       string         `json:"http_addr"`
	HealthAddrGRPC string         `json:"health_addr_grpc"`
	DatabaseDriver string         `json:"database_driver"`
	DatabaseDSN    string         `json:"database_dsn"`
	StoreTimeout   timex.Duration `json:"store_timeout"`
	GitHubOwners   []string       `json:"github_owners"`
	CacheTTL       timex.Duration `json:"cache_ttl"`
	LogLevel       string         `json:"log_level"`
	OTelEndpoint   string         `json:"otel_endpoint"`
	S3RootUser     string         `json:"s3_root_user"`
	S3RootPassword string         `json:"s3_root_password"`
	S3Bucket       string         `json:"s3_bucket"`
	S3Region       string         `json:"s3_region"`
	S3BaseEndpoint string         `json:"s3_base_endpoint"`
}

func toJSON(c *Config) *JsonConfig {
	return &JsonConfig{
		HTTPAddr:       c.HTTPAddr,
		HealthAddrGRPC: c.HealthAddrGRPC,
		DatabaseDriver: c.DatabaseDriver,
		DatabaseDSN:    c.DatabaseDSN,
		StoreTimeout:   timex.Duration{Duration: c.StoreTimeout},
		GitHubOwners:   c.GitHubOwners,
		CacheTTL:       timex.Duration{Duration: c.CacheTTL},
		LogLevel:       c.LogLevel,
		OTelEndpoint:   c.OTelEndpoint,
		S3RootUser:     c.S3RootUser,
		S3RootPassword: c.S3RootPassword,
		S3Bucket:       c.S3Bucket,
		S3Region:       c.S3Region,
		S3BaseEndpoint: c.S3BaseEndpoint,
	}
}

// parseJSON overlays the file named by -c/-config onto config. Keys missing
// from the file keep their current value. No flag means nothing to load.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := toJSON(config)
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	config.HTTPAddr = c.HTTPAddr
	config.HealthAddrGRPC = c.HealthAddrGRPC
	config.DatabaseDriver = c.DatabaseDriver
	config.DatabaseDSN = c.DatabaseDSN
	config.StoreTimeout = c.StoreTimeout.Duration
	config.GitHubOwners = c.GitHubOwners
	config.CacheTTL = c.CacheTTL.Duration
	config.LogLevel = c.LogLevel
	config.OTelEndpoint = c.OTelEndpoint
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	return nil
}
