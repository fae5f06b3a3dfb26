// Package postgres provides the PostgreSQL side of the service: opening
// pooled connections through the pgx driver, applying the embedded schema
// migrations with goose, and the store.SubscriberStore implementation.
package postgres
