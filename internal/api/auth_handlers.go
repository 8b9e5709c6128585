package api

import (
	"encoding/json"
	"net/http"

	"kpark/internal/entities"
	"kpark/internal/service"
)

type AuthHandler struct {
	Service *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{Service: svc}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req entities.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	user, err := h.Service.Register(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusCreated, "Registration successful.", userResponse(user))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req entities.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	token, user, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, entities.LoginResponse{
		Token: token,
		User:  userResponse(user),
	})
}
