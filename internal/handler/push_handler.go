package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/pocketpilot/backend/internal/model"
	"github.com/pocketpilot/backend/internal/service"
)

type ReminderServiceInterface interface {
	GetVAPIDPublicKey() (string, error)
	Subscribe(ctx context.Context, userID uuid.UUID, endpoint, p256dh, auth string) (*model.PushSubscription, error)
	Unsubscribe(ctx context.Context, userID uuid.UUID, endpoint string) error
}

type PushHandler struct {
	service ReminderServiceInterface
}

func NewPushHandler(service ReminderServiceInterface) *PushHandler {
	return &PushHandler{service: service}
}

// VAPIDPublicKey returns the key clients need to subscribe.
func (h *PushHandler) VAPIDPublicKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.service.GetVAPIDPublicKey()
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "push notifications not configured")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"publicKey": key})
}

type subscribeInput struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// Subscribe registers a device for bill reminders.
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var input subscribeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Endpoint == "" || input.Keys.P256dh == "" || input.Keys.Auth == "" {
		respondError(w, http.StatusBadRequest, "endpoint and keys are required")
		return
	}

	sub, err := h.service.Subscribe(r.Context(), GetUserID(r.Context()), input.Endpoint, input.Keys.P256dh, input.Keys.Auth)
	if err != nil {
		if errors.Is(err, service.ErrVAPIDNotConfigured) {
			respondError(w, http.StatusServiceUnavailable, "push notifications not configured")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to subscribe")
		return
	}

	respondJSON(w, http.StatusCreated, sub)
}

type unsubscribeInput struct {
	Endpoint string `json:"endpoint"`
}

// Unsubscribe removes a device subscription.
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var input unsubscribeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Endpoint == "" {
		respondError(w, http.StatusBadRequest, "endpoint is required")
		return
	}

	if err := h.service.Unsubscribe(r.Context(), GetUserID(r.Context()), input.Endpoint); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to unsubscribe")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
