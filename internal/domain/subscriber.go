package domain

import (
	"time"

	"github.com/google/uuid"
)

// Subscriber is a person who signed up for the newsletter.
// Records are only ever created; there is no update or delete path.
type Subscriber struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

// NewSubscriber creates a Subscriber with a fresh ID and the current time.
// Name and email are stored as given, empty strings included.
func NewSubscriber(name, email string) (*Subscriber, error) {
	s := &Subscriber{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		SubscribedAt: time.Now().UTC(),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate checks the fields the system assigns. Name and email are
// caller data and are not inspected.
func (s *Subscriber) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySubscriberID
	}
	if s.SubscribedAt.IsZero() {
		return ErrMissingSubscribedAt
	}
	return nil
}
