package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetTraceID(t *testing.T) {
	ctx := SetTraceID(context.Background(), "")
	generated := GetTraceID(ctx)
	assert.Len(t, generated, 36)

	ctx = SetTraceID(context.Background(), "abc-123")
	assert.Equal(t, "abc-123", GetTraceID(ctx))

	assert.Empty(t, GetTraceID(context.Background()))
}

func TestParseForm(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("a=%zz"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	err := ParseForm(req)

	assert.ErrorIs(t, err, ErrInvalidForm)
}

func TestMissingFields(t *testing.T) {
	type form struct {
		Name  string `validate:"required"`
		Email string `validate:"required"`
	}

	assert.Equal(t, []string{"Name", "Email"}, MissingFields(ValidateRequest(form{})))
	assert.Equal(t, []string{"Email"}, MissingFields(ValidateRequest(form{Name: "x"})))
	assert.Nil(t, MissingFields(ValidateRequest(form{Name: "x", Email: "y"})))
	assert.Nil(t, MissingFields(errors.New("other")))
}

func TestMissingFieldsPointerPresence(t *testing.T) {
	type form struct {
		Name *string `validate:"required"`
	}
	empty := ""

	assert.Equal(t, []string{"Name"}, MissingFields(ValidateRequest(form{})))
	assert.NoError(t, ValidateRequest(form{Name: &empty}))
}

func TestRespondWithErrorAndLog(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/subscriptions", nil)
	req = req.WithContext(SetTraceID(req.Context(), "trace-1"))
	rr := httptest.NewRecorder()

	RespondWithErrorAndLog(rr, req, http.StatusInternalServerError, "Failed to save subscription",
		errors.New("dial postgres://app:s3cret@db/x"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Failed to save subscription", resp.Error)
	assert.Equal(t, "trace-1", resp.TraceID)
	assert.NotContains(t, rr.Body.String(), "s3cret")
}
