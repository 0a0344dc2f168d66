package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "CAREERMEMORY_"

var (
	envFile   = ".env"
	lookupEnv = os.LookupEnv
)

// parseEnv overlays CAREERMEMORY_* variables. A .env file in the working
// directory is loaded first when present; variables already set in the
// process win over the file. Malformed values panic.
func parseEnv(config *Config) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	envString("GRPC_ADDR", &config.EndpointAddrGRPC)
	envString("METRICS_ADDR", &config.MetricsAddr)
	envString("DATABASE_DSN", &config.DatabaseDSN)
	envString("SECRET_KEY", &config.SecretKey)
	envString("TIMEZONE", &config.Timezone)
	envDuration("STORE_TIMEOUT", &config.StoreTimeout)
	envInt("STORE_WRITE_ATTEMPTS", &config.StoreWriteAttempts)
	envDuration("SYNTHESIS_TIMEOUT", &config.SynthesisTimeout)
	envDuration("ROLLUP_TIMEOUT", &config.RollupTimeout)
	envString("SYNTHESIS_BASE_URL", &config.SynthesisBaseURL)
	envString("SYNTHESIS_API_KEY", &config.SynthesisAPIKey)
	envString("SYNTHESIS_MODEL", &config.SynthesisModel)
	envInt("SYNTHESIS_MAX_TOKENS", &config.SynthesisMaxTokens)
	envString("REDIS_ADDR", &config.RedisAddr)
	envString("S3_ROOT_USER", &config.S3RootUser)
	envString("S3_ROOT_PASSWORD", &config.S3RootPassword)
	envString("S3_BUCKET", &config.S3Bucket)
	envString("S3_REGION", &config.S3Region)
	envString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	envDuration("FLOW_SESSION_TTL", &config.FlowSessionTTL)
	envString("LOG_FORMAT", &config.LogFormat)
	envString("LOG_LEVEL", &config.LogLevel)
}

func envString(name string, dst *string) {
	if v, ok := lookupEnv(envPrefix + name); ok {
		*dst = v
	}
}

func envInt(name string, dst *int) {
	v, ok := lookupEnv(envPrefix + name)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Errorf("%s%s: %w", envPrefix, name, err))
	}
	*dst = n
}

func envDuration(name string, dst *time.Duration) {
	v, ok := lookupEnv(envPrefix + name)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s%s: %w", envPrefix, name, err))
	}
	*dst = d
}
