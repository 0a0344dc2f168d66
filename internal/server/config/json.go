package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/careermemory/internal/flagx"
	"github.com/dmitrijs2005/careermemory/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Interval
// fields use timex.Duration so both "30s" and integer nanoseconds parse.
type JsonConfig struct {
	EndpointAddrGRPC   string         `json:"endpoint_addr_grpc"`
	MetricsAddr        string         `json:"metrics_addr"`
	DatabaseDSN        string         `json:"database_dsn"`
	SecretKey          string         `json:"secret_key"`
	Timezone           string         `json:"timezone"`
	StoreTimeout       timex.Duration `json:"store_timeout"`
	StoreWriteAttempts int            `json:"store_write_attempts"`
	SynthesisTimeout   timex.Duration `json:"synthesis_timeout"`
	RollupTimeout      timex.Duration `json:"rollup_timeout"`
	SynthesisBaseURL   string         `json:"synthesis_base_url"`
	SynthesisAPIKey    string         `json:"synthesis_api_key"`
	SynthesisModel     string         `json:"synthesis_model"`
	SynthesisMaxTokens int            `json:"synthesis_max_tokens"`
	RedisAddr          string         `json:"redis_addr"`
	S3RootUser         string         `json:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	FlowSessionTTL     timex.Duration `json:"flow_session_ttl"`
	LogFormat          string         `json:"log_format"`
	LogLevel           string         `json:"log_level"`
}

// parseJson loads the file named by -c or -config into config. Keys absent
// from the file keep their current values. An unreadable file or invalid
// JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.MetricsAddr, c.MetricsAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.Timezone, c.Timezone)
	setDuration(&config.StoreTimeout, c.StoreTimeout)
	setInt(&config.StoreWriteAttempts, c.StoreWriteAttempts)
	setDuration(&config.SynthesisTimeout, c.SynthesisTimeout)
	setDuration(&config.RollupTimeout, c.RollupTimeout)
	setString(&config.SynthesisBaseURL, c.SynthesisBaseURL)
	setString(&config.SynthesisAPIKey, c.SynthesisAPIKey)
	setString(&config.SynthesisModel, c.SynthesisModel)
	setInt(&config.SynthesisMaxTokens, c.SynthesisMaxTokens)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setDuration(&config.FlowSessionTTL, c.FlowSessionTTL)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
