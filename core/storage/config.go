package storage

import (
	"os"
	"strings"
)

// Config holds configuration for the object store.
//
// String values may reference environment variables as ${VAR}. They are
// expanded by Resolve, which the Adapter calls on every Connect so that
// credentials injected after process start are picked up.
type Config struct {
	// Endpoint is the host:port of the S3 compatible service.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket is the name of the bucket documents are stored in.
	Bucket string `mapstructure:"bucket" default:"aggregator"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// Prefix is prepended to every document key (e.g., "deployment/").
	Prefix string `mapstructure:"prefix" default:""`
	// CreateBucket makes Connect create the bucket when it does not exist.
	CreateBucket bool `mapstructure:"create_bucket" default:"false"`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// Resolve returns a copy of the configuration with ${VAR} references
// replaced by the current values of the process environment.
func (c Config) Resolve() Config {
	out := c
	out.Endpoint = os.ExpandEnv(c.Endpoint)
	out.AccessKey = os.ExpandEnv(c.AccessKey)
	out.SecretKey = os.ExpandEnv(c.SecretKey)
	out.Bucket = os.ExpandEnv(c.Bucket)
	out.Region = os.ExpandEnv(c.Region)
	out.Prefix = normalizePrefix(os.ExpandEnv(c.Prefix))
	return out
}

// normalizePrefix makes a non-empty prefix end with exactly one slash.
func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}
