// Package server holds the HTTP server configuration.
//
// The serve command builds the Fiber application; this package only defines
// the listen port, the API key protecting the document endpoints and the
// request read timeout.
package server
