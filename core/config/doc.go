// Package config provides configuration management for the aggregator.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file. Defaults live in `default` struct tags.
//
// # Configuration Structure
//
//   - Server: HTTP server settings (port, API key)
//   - Storage: S3/MinIO endpoint, credentials, bucket and key prefix
//   - Log: Logging level and format
//   - Database: MySQL or SQLite connection used by the sync feature
//   - Sources: PyPI, GitHub, prescriptions and Travis CI endpoints and tokens
//   - Documents: key layout of every stored document kind
//   - Flow: fan-out concurrency of the local runner
//
// Storage values may reference ${VAR}; those are expanded when the storage
// adapter connects, not at load time.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Storage.Bucket)
package config
