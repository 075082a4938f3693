// Package config provides configuration management for grocer.
//
// It uses Viper to read an optional grocer.yaml and environment variables,
// the latter optionally seeded from a .env file through godotenv. Environment
// variables win over the file. Defaults live next to each setting in a `default`
// struct tag and are registered by reflection, so every key is known to
// AutomaticEnv even when it has no default.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - API: endpoint, developer and application keys, request timeout
//   - Shop: catalogue cache lifetime
//   - Server: HTTP port, API key, shutdown timeout
//   - Storage: S3/MinIO credentials and bucket for exports
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.API.Endpoint)
package config
