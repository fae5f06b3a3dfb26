// Package server binds the HTTP listener and runs the newsletter API on it.
//
// Binding is separate from construction so callers can ask for port 0 and
// read the port the operating system picked from the listener before any
// request is served.
package server
