package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpark/internal/apperr"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRespondErrorSuggestsWaitlistOnHintedConflict(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(rec, apperr.Conflict("Slot is already booked for the selected time. Consider joining the waitlist.").
		WithHint(apperr.HintJoinWaitlist))

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, true, body["suggest_waitlist"])
}

func TestRespondErrorIgnoresWaitlistWording(t *testing.T) {
	// Only the hint, never the message text, drives the suggestion.
	rec := httptest.NewRecorder()
	respondError(rec, apperr.Conflict("You are already on the waitlist for this time."))

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody(t, rec)
	_, present := body["suggest_waitlist"]
	assert.False(t, present)
}
