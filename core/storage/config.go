package storage

// Config holds configuration for the export storage.
type Config struct {
	// Endpoint is the host of the S3-compatible service.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL indicates whether to use TLS.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket receives the exports. It is created on first upload.
	Bucket string `mapstructure:"bucket" default:"grocer"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// Prefix is prepended to every exported object name.
	Prefix string `mapstructure:"prefix" default:"exports"`
	// TimeoutSeconds bounds connection setup and the wait for response headers.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
