// Package config handles configuration loading, parsing, and validation
// from a layered set of sources: built-in defaults, the "configuration" file
// in a directory, and APP_-prefixed environment variables. It provides
// type-safe access to the settings needed by the server and by the test
// harness while keeping configuration details out of business logic.
//
// Settings are loaded once and passed explicitly to the components that need
// them; the package keeps no global state.
package config
