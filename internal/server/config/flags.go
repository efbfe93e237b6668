package config

import (
	"flag"
	"io"
	"strings"

	"github.com/dmitrijs2005/rdb/internal/flagx"
)

var ownFlags = []string{"-a", "-g", "-k", "-d", "-t", "-o", "-m", "-l", "-x", "-b", "-r", "-e", "-u", "-p"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g. ":8000")
//	-g string     gRPC health bind address
//	-k string     database driver: postgres | sqlite
//	-d string     database DSN
//	-t duration   store operation timeout (e.g. "5s")
//	-o string     comma separated GitHub owners
//	-m duration   read cache TTL
//	-l string     log level
//	-x string     OTLP/HTTP endpoint
//	-b string     S3 bucket
//	-r string     S3 region
//	-e string     S3 base endpoint
//	-u string     S3 user
//	-p string     S3 password
//
// args are filtered with flagx.FilterArgs first so -c and flags owned by other
// components do not fail parsing.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("rdb", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port")
	fs.StringVar(&config.HealthAddrGRPC, "g", config.HealthAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDriver, "k", config.DatabaseDriver, "database driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.DurationVar(&config.StoreTimeout, "t", config.StoreTimeout, "store operation timeout")
	owners := fs.String("o", strings.Join(config.GitHubOwners, ","), "GitHub owners, comma separated")
	fs.DurationVar(&config.CacheTTL, "m", config.CacheTTL, "read cache TTL")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.OTelEndpoint, "x", config.OTelEndpoint, "OTLP/HTTP endpoint")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 password")

	if err := fs.Parse(flagx.FilterArgs(args, ownFlags)); err != nil {
		return err
	}

	config.GitHubOwners = flagx.SplitList(*owners)
	return nil
}
