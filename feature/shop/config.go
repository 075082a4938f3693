package shop

import "time"

// Config holds configuration for the shop service.
type Config struct {
	// CatalogueTTLSeconds is how long the department hierarchy is cached.
	CatalogueTTLSeconds int `mapstructure:"catalogue_ttl_seconds" default:"3600"`
}

// Options converts the configuration into service options.
func (c Config) Options() []Option {
	if c.CatalogueTTLSeconds <= 0 {
		return nil
	}
	return []Option{WithCatalogueTTL(time.Duration(c.CatalogueTTLSeconds) * time.Second)}
}
