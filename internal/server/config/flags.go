package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/deliverynotes/internal/flagx"
)

// parseFlags overlays the short command-line flags.
//
//	-a string     HTTP bind address (e.g. ":3000")
//	-d string     PostgreSQL DSN
//	-s string     JWT HMAC secret key
//	-t duration   token validity (e.g. "24h")
//	-b string     storage bucket
//	-u string     storage access key
//	-p string     storage secret key
//	-g string     storage region
//	-e string     storage endpoint
//	-l string     log level
//
// Unknown arguments are dropped by flagx.FilterArgs first; a malformed value panics.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-t", "-b", "-u", "-p", "-g", "-e", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.HTTPAddr, "a", cfg.HTTPAddr, "address and port to run server")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "secret key")
	fs.DurationVar(&cfg.TokenValidity, "t", cfg.TokenValidity, "token validity")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "storage bucket")
	fs.StringVar(&cfg.S3AccessKey, "u", cfg.S3AccessKey, "storage access key")
	fs.StringVar(&cfg.S3SecretKey, "p", cfg.S3SecretKey, "storage secret key")
	fs.StringVar(&cfg.S3Region, "g", cfg.S3Region, "storage region")
	fs.StringVar(&cfg.S3Endpoint, "e", cfg.S3Endpoint, "storage endpoint")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
