package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/newsletter-api/internal/domain"
	"github.com/phrazzld/newsletter-api/internal/platform/logger"
	"github.com/phrazzld/newsletter-api/internal/store"
)

// SubscriptionStore implements the store.SubscriberStore interface
// using a PostgreSQL database as the storage backend.
type SubscriptionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSubscriptionStore creates a new PostgreSQL implementation of the SubscriberStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewSubscriptionStore(db store.DBTX, log *slog.Logger) *SubscriptionStore {
	if db == nil {
		// ALLOW-PANIC: constructor misuse
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &SubscriptionStore{
		db:     db,
		logger: log.With(slog.String("component", "subscription_store")),
	}
}

// Ensure SubscriptionStore implements store.SubscriberStore interface
var _ store.SubscriberStore = (*SubscriptionStore)(nil)

// Create implements store.SubscriberStore.Create
// Returns store.ErrEmailExists if the email is already subscribed.
func (s *SubscriptionStore) Create(ctx context.Context, sub *domain.Subscriber) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := sub.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO subscriptions (id, email, name, subscribed_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query, sub.ID, sub.Email, sub.Name, sub.SubscribedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("subscriber email already exists",
				slog.String("subscriber_id", sub.ID.String()))
			return store.NewStoreError("subscriber", "create", fmt.Errorf("%w: %v", store.ErrEmailExists, err))
		}

		log.Error("failed to create subscriber",
			slog.String("error", err.Error()),
			slog.String("subscriber_id", sub.ID.String()))
		return store.NewStoreError("subscriber", "create", MapError(err))
	}

	log.Info("subscriber created", slog.String("subscriber_id", sub.ID.String()))
	return nil
}

// GetByEmail implements store.SubscriberStore.GetByEmail
func (s *SubscriptionStore) GetByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	query := `
		SELECT id, email, name, subscribed_at
		FROM subscriptions
		WHERE email = $1
	`
	var sub domain.Subscriber
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&sub.ID,
		&sub.Email,
		&sub.Name,
		&sub.SubscribedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrNotFound) {
			return nil, store.ErrSubscriberNotFound
		}
		return nil, store.NewStoreError("subscriber", "get", mapped)
	}

	return &sub, nil
}

// List implements store.SubscriberStore.List
func (s *SubscriptionStore) List(ctx context.Context) ([]*domain.Subscriber, error) {
	query := `
		SELECT id, email, name, subscribed_at
		FROM subscriptions
		ORDER BY subscribed_at, email
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, store.NewStoreError("subscriber", "list", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var subs []*domain.Subscriber
	for rows.Next() {
		var sub domain.Subscriber
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.Name, &sub.SubscribedAt); err != nil {
			return nil, store.NewStoreError("subscriber", "list", err)
		}
		subs = append(subs, &sub)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("subscriber", "list", err)
	}

	return subs, nil
}
