package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/newsletter-api/internal/domain"
	"github.com/phrazzld/newsletter-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	insertSubscriptionSQL = `INSERT INTO subscriptions (id, email, name, subscribed_at)`
	selectByEmailSQL      = `SELECT id, email, name, subscribed_at FROM subscriptions WHERE email = $1`
	listSubscriptionsSQL  = `SELECT id, email, name, subscribed_at FROM subscriptions ORDER BY subscribed_at, email`
)

func newMockStore(t *testing.T) (*SubscriptionStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewSubscriptionStore(db, nil), mock
}

// sqlmock collapses whitespace before matching, so the single-line forms
// above match the indented queries in the store.
func queryPattern(q string) string {
	return regexp.QuoteMeta(q)
}

func TestSubscriptionStore_Create(t *testing.T) {
	s, mock := newMockStore(t)
	sub, err := domain.NewSubscriber("le guin", "ursula_le_guin@gmail.com")
	require.NoError(t, err)

	mock.ExpectExec(queryPattern(insertSubscriptionSQL)).
		WithArgs(sqlmock.AnyArg(), "ursula_le_guin@gmail.com", "le guin", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Create(context.Background(), sub))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionStore_CreateDuplicate(t *testing.T) {
	s, mock := newMockStore(t)
	sub, err := domain.NewSubscriber("le guin", "ursula_le_guin@gmail.com")
	require.NoError(t, err)

	mock.ExpectExec(queryPattern(insertSubscriptionSQL)).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "subscriptions_email_key"})

	err = s.Create(context.Background(), sub)

	assert.ErrorIs(t, err, store.ErrEmailExists)
	assert.ErrorIs(t, err, store.ErrDuplicate)
	var storeErr *store.StoreError
	assert.ErrorAs(t, err, &storeErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionStore_CreateDatabaseFailure(t *testing.T) {
	s, mock := newMockStore(t)
	sub, err := domain.NewSubscriber("a", "b@c.d")
	require.NoError(t, err)

	cause := errors.New("connection reset by peer")
	mock.ExpectExec(queryPattern(insertSubscriptionSQL)).WillReturnError(cause)

	err = s.Create(context.Background(), sub)

	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, store.ErrDuplicate)
}

func TestSubscriptionStore_CreateRejectsInvalid(t *testing.T) {
	s, mock := newMockStore(t)

	err := s.Create(context.Background(), &domain.Subscriber{Name: "n", Email: "e", SubscribedAt: time.Now()})

	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionStore_GetByEmail(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(queryPattern(selectByEmailSQL)).
		WithArgs("ursula_le_guin@gmail.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "subscribed_at"}).
			AddRow(id.String(), "ursula_le_guin@gmail.com", "le guin", at))

	sub, err := s.GetByEmail(context.Background(), "ursula_le_guin@gmail.com")

	require.NoError(t, err)
	assert.Equal(t, id, sub.ID)
	assert.Equal(t, "le guin", sub.Name)
	assert.Equal(t, at, sub.SubscribedAt)
}

func TestSubscriptionStore_GetByEmailNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(queryPattern(selectByEmailSQL)).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	sub, err := s.GetByEmail(context.Background(), "nobody@example.com")

	assert.Nil(t, sub)
	assert.ErrorIs(t, err, store.ErrSubscriberNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSubscriptionStore_List(t *testing.T) {
	s, mock := newMockStore(t)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(queryPattern(listSubscriptionsSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "subscribed_at"}).
			AddRow(uuid.NewString(), "a@example.com", "a", at).
			AddRow(uuid.NewString(), "b@example.com", "b", at.Add(time.Minute)))

	subs, err := s.List(context.Background())

	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "a@example.com", subs[0].Email)
	assert.Equal(t, "b@example.com", subs[1].Email)
}

func TestSubscriptionStore_ListQueryError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(queryPattern(listSubscriptionsSQL)).WillReturnError(errors.New("boom"))

	subs, err := s.List(context.Background())

	assert.Nil(t, subs)
	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "list", storeErr.Operation)
}

func TestNewSubscriptionStorePanicsOnNilDB(t *testing.T) {
	assert.Panics(t, func() { NewSubscriptionStore(nil, nil) })
}
