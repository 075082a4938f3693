// Package server holds the HTTP server configuration.
//
// The serve command owns the Fiber app and its lifecycle; this package only
// defines the settings it reads: the listen port, the API key checked by the
// auth middleware, and how long a graceful shutdown may take.
package server
