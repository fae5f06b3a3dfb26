package api

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/phrazzld/newsletter-api/internal/api/shared"
	"github.com/phrazzld/newsletter-api/internal/domain"
	"github.com/phrazzld/newsletter-api/internal/platform/logger"
	"github.com/phrazzld/newsletter-api/internal/store"
)

// Rejection reasons returned in the body of a 400 response.
const (
	ReasonMissingName  = "missing name"
	ReasonMissingEmail = "missing email"
	ReasonMissingBoth  = "missing both name and email"
	ReasonInvalidForm  = "invalid form body"
)

// SubscribeRequest is the URL-encoded form accepted by POST /subscriptions.
// A nil field means the key was absent from the form; an empty value is
// accepted as is.
type SubscribeRequest struct {
	Name  *string `validate:"required"`
	Email *string `validate:"required"`
}

// formValue returns the first value for key, or nil when the key is absent.
func formValue(form url.Values, key string) *string {
	values, ok := form[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

// SubscriptionHandler handles subscription HTTP requests
type SubscriptionHandler struct {
	store  store.SubscriberStore
	logger *slog.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(s store.SubscriberStore, log *slog.Logger) *SubscriptionHandler {
	if log == nil {
		log = slog.Default()
	}
	return &SubscriptionHandler{
		store:  s,
		logger: log.With(slog.String("component", "subscription_handler")),
	}
}

// Subscribe handles POST /subscriptions requests
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	if err := shared.ParseForm(r); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, ReasonInvalidForm, err)
		return
	}

	req := SubscribeRequest{
		Name:  formValue(r.PostForm, "name"),
		Email: formValue(r.PostForm, "email"),
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, rejectionReason(err), err)
		return
	}

	subscriber, err := domain.NewSubscriber(*req.Name, *req.Email)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, ReasonInvalidForm, err)
		return
	}

	if err := h.store.Create(r.Context(), subscriber); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("new subscriber saved",
		slog.String("subscriber_id", subscriber.ID.String()))
	shared.RespondEmpty(w, http.StatusOK)
}

// rejectionReason names the missing form fields reported by the validator.
func rejectionReason(err error) string {
	var missingName, missingEmail bool
	for _, field := range shared.MissingFields(err) {
		switch field {
		case "Name":
			missingName = true
		case "Email":
			missingEmail = true
		}
	}

	switch {
	case missingName && missingEmail:
		return ReasonMissingBoth
	case missingName:
		return ReasonMissingName
	case missingEmail:
		return ReasonMissingEmail
	default:
		return ReasonInvalidForm
	}
}
