// Package api handles incoming HTTP requests, request validation, and
// response formatting. It translates HTTP concerns into store operations
// on newsletter subscribers.
package api
