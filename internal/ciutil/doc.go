// Package ciutil detects whether code runs under a CI provider and where
// that provider checked out the repository.
package ciutil
