// Package loader registers HTTP features and mounts the enabled ones.
//
// # Feature Interface
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// # Manager
//
// The Manager keeps features in registration order. LoadAll mounts every
// enabled feature and stops at the first error; disabled ones are skipped
// silently. Enabled lists the names that would be mounted, for logging and the
// health route.
//
// The serve command registers the shop feature and, when object storage is
// configured, the export feature.
package loader
