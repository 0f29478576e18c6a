package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/deliverynotes/internal/flagx"
	"github.com/dmitrijs2005/deliverynotes/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the config file. Durations use
// timex.Duration so both "30s" and integer nanoseconds are accepted.
// Only fields present with a non-zero value override the current Config.
type FileConfig struct {
	HTTPAddr        string         `json:"http_addr" yaml:"http_addr"`
	DatabaseDSN     string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey       string         `json:"secret_key" yaml:"secret_key"`
	TokenValidity   timex.Duration `json:"token_validity" yaml:"token_validity"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	BodyLimit       int            `json:"body_limit" yaml:"body_limit"`

	StorageBackend string `json:"storage_backend" yaml:"storage_backend"`
	S3AccessKey    string `json:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey    string `json:"s3_secret_key" yaml:"s3_secret_key"`
	S3Bucket       string `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region       string `json:"s3_region" yaml:"s3_region"`
	S3Endpoint     string `json:"s3_endpoint" yaml:"s3_endpoint"`
	S3PublicURL    string `json:"s3_public_url" yaml:"s3_public_url"`
	S3UseSSL       *bool  `json:"s3_use_ssl" yaml:"s3_use_ssl"`

	SMTPHost     string `json:"smtp_host" yaml:"smtp_host"`
	SMTPPort     int    `json:"smtp_port" yaml:"smtp_port"`
	SMTPUser     string `json:"smtp_user" yaml:"smtp_user"`
	SMTPPassword string `json:"smtp_password" yaml:"smtp_password"`
	MailFrom     string `json:"mail_from" yaml:"mail_from"`

	UploadDir             string         `json:"upload_dir" yaml:"upload_dir"`
	RetryAttempts         uint           `json:"retry_attempts" yaml:"retry_attempts"`
	RetryDelay            timex.Duration `json:"retry_delay" yaml:"retry_delay"`
	SignatureFetchTimeout timex.Duration `json:"signature_fetch_timeout" yaml:"signature_fetch_timeout"`

	LogBackend string `json:"log_backend" yaml:"log_backend"`
	LogLevel   string `json:"log_level" yaml:"log_level"`
}

// parseFile overlays the file named with -c or -config. Files ending in
// .yaml or .yml are parsed as YAML, anything else as JSON.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	setValue(&cfg.HTTPAddr, fc.HTTPAddr)
	setValue(&cfg.DatabaseDSN, fc.DatabaseDSN)
	setValue(&cfg.SecretKey, fc.SecretKey)
	setValue(&cfg.TokenValidity, fc.TokenValidity.Duration)
	setValue(&cfg.ShutdownTimeout, fc.ShutdownTimeout.Duration)
	setValue(&cfg.BodyLimit, fc.BodyLimit)

	setValue(&cfg.StorageBackend, fc.StorageBackend)
	setValue(&cfg.S3AccessKey, fc.S3AccessKey)
	setValue(&cfg.S3SecretKey, fc.S3SecretKey)
	setValue(&cfg.S3Bucket, fc.S3Bucket)
	setValue(&cfg.S3Region, fc.S3Region)
	setValue(&cfg.S3Endpoint, fc.S3Endpoint)
	setValue(&cfg.S3PublicURL, fc.S3PublicURL)
	if fc.S3UseSSL != nil {
		cfg.S3UseSSL = *fc.S3UseSSL
	}

	setValue(&cfg.SMTPHost, fc.SMTPHost)
	setValue(&cfg.SMTPPort, fc.SMTPPort)
	setValue(&cfg.SMTPUser, fc.SMTPUser)
	setValue(&cfg.SMTPPassword, fc.SMTPPassword)
	setValue(&cfg.MailFrom, fc.MailFrom)

	setValue(&cfg.UploadDir, fc.UploadDir)
	setValue(&cfg.RetryAttempts, fc.RetryAttempts)
	setValue(&cfg.RetryDelay, fc.RetryDelay.Duration)
	setValue(&cfg.SignatureFetchTimeout, fc.SignatureFetchTimeout.Duration)

	setValue(&cfg.LogBackend, fc.LogBackend)
	setValue(&cfg.LogLevel, fc.LogLevel)
}


func setValue[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
