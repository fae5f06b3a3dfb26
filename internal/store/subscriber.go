package store

import (
	"context"

	"github.com/phrazzld/newsletter-api/internal/domain"
)

// SubscriberStore persists newsletter subscribers.
type SubscriberStore interface {
	// Create inserts a new subscriber.
	// Returns ErrDuplicate if the email is already subscribed.
	Create(ctx context.Context, subscriber *domain.Subscriber) error

	// GetByEmail returns the subscriber with the given email.
	// Returns ErrSubscriberNotFound if there is none.
	GetByEmail(ctx context.Context, email string) (*domain.Subscriber, error)

	// List returns every subscriber ordered by subscription time.
	List(ctx context.Context) ([]*domain.Subscriber, error)
}
