package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/careermemory/internal/flagx"
)

var serverFlags = []string{
	"-a", "-m", "-d", "-s", "-z",
	"-store-timeout", "-store-attempts",
	"-synthesis-timeout", "-rollup-timeout",
	"-synthesis-url", "-synthesis-key", "-synthesis-model", "-synthesis-max-tokens",
	"-redis",
	"-u", "-p", "-b", "-g", "-e",
	"-flow-ttl", "-log-format", "-log-level",
}

// parseFlags populates Config fields from command-line flags.
//
// Short flags:
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-m string   metrics bind address
//	-d string   PostgreSQL DSN or "memory://"
//	-s string   JWT HMAC secret key
//	-z string   timezone of the user's calendar day
//	-u/-p/-b/-g/-e  S3 user, password, bucket, region, base endpoint
//
// The remaining flags use long names; durations accept time.ParseDuration
// syntax. Args are filtered through flagx.FilterArgs first so flags owned
// by other components do not collide.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port to serve metrics")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.Timezone, "z", config.Timezone, "timezone")

	fs.DurationVar(&config.StoreTimeout, "store-timeout", config.StoreTimeout, "store call timeout")
	fs.IntVar(&config.StoreWriteAttempts, "store-attempts", config.StoreWriteAttempts, "store write attempts")
	fs.DurationVar(&config.SynthesisTimeout, "synthesis-timeout", config.SynthesisTimeout, "synthesis call timeout")
	fs.DurationVar(&config.RollupTimeout, "rollup-timeout", config.RollupTimeout, "rollup timeout")

	fs.StringVar(&config.SynthesisBaseURL, "synthesis-url", config.SynthesisBaseURL, "synthesis API base URL")
	fs.StringVar(&config.SynthesisAPIKey, "synthesis-key", config.SynthesisAPIKey, "synthesis API key")
	fs.StringVar(&config.SynthesisModel, "synthesis-model", config.SynthesisModel, "synthesis model")
	fs.IntVar(&config.SynthesisMaxTokens, "synthesis-max-tokens", config.SynthesisMaxTokens, "synthesis max tokens")

	fs.StringVar(&config.RedisAddr, "redis", config.RedisAddr, "redis address")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.DurationVar(&config.FlowSessionTTL, "flow-ttl", config.FlowSessionTTL, "idle flow session lifetime")
	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "log format (json|text)")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
