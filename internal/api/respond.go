package api

import (
	"encoding/json"
	"log"
	"net/http"

	"kpark/internal/apperr"
)

// All responses use the same envelope: {"success": ..., "message": ...,
// "data": ...}.

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func respondData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

func respondList(w http.ResponseWriter, count int, data interface{}) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   count,
		"data":    data,
	})
}

func respondMessage(w http.ResponseWriter, status int, message string, data interface{}) {
	body := map[string]interface{}{
		"success": true,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	writeJSON(w, status, body)
}

func respondError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
	}
	body := map[string]interface{}{
		"success": false,
		"message": apperr.UserMessage(err),
	}
	// A slot conflict is an invitation to join the waitlist.
	if apperr.HintOf(err) == apperr.HintJoinWaitlist {
		body["suggest_waitlist"] = true
	}
	writeJSON(w, status, body)
}

func respondInvalidBody(w http.ResponseWriter) {
	respondError(w, apperr.InvalidInput("Invalid request body."))
}
