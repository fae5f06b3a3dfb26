// Package domain defines the core data types of the newsletter service,
// independent of how they are stored or transported.
package domain
