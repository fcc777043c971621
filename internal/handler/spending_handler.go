package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/pocketpilot/backend/internal/model"
	"github.com/pocketpilot/backend/internal/service"
)

type SpendingServiceInterface interface {
	SetupProfile(ctx context.Context, userID uuid.UUID, input service.ProfileInput) (*model.SpendingProfile, error)
	EditProfile(ctx context.Context, userID uuid.UUID, input service.ProfileInput) (*model.SpendingProfile, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.SpendingProfile, error)
	DeleteTracker(ctx context.Context, userID uuid.UUID) error
	CheckIn(ctx context.Context, userID uuid.UUID, input service.CheckInInput) (*model.DailySpending, error)
	ListCheckIns(ctx context.Context, userID uuid.UUID) ([]model.DailySpending, error)
	GetHealth(ctx context.Context, userID uuid.UUID) (*model.BudgetHealth, error)
	GetRecommendations(ctx context.Context, userID uuid.UUID) ([]string, error)
	GetProjection(ctx context.Context, userID uuid.UUID) (*model.SavingsProjection, error)
}

type SpendingHandler struct {
	service SpendingServiceInterface
}

func NewSpendingHandler(service SpendingServiceInterface) *SpendingHandler {
	return &SpendingHandler{service: service}
}

// SetupProfile creates or replaces the spending profile.
func (h *SpendingHandler) SetupProfile(w http.ResponseWriter, r *http.Request) {
	var input service.ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.service.SetupProfile(r.Context(), GetUserID(r.Context()), input)
	if err != nil {
		respondServiceError(w, err, "failed to set up profile")
		return
	}

	respondJSON(w, http.StatusCreated, profile)
}

// EditProfile replaces an existing spending profile.
func (h *SpendingHandler) EditProfile(w http.ResponseWriter, r *http.Request) {
	var input service.ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.service.EditProfile(r.Context(), GetUserID(r.Context()), input)
	if err != nil {
		respondServiceError(w, err, "failed to update profile")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// GetProfile returns the spending profile.
func (h *SpendingHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.GetProfile(r.Context(), GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, err, "failed to get profile")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// DeleteTracker removes the profile and all check-in history.
func (h *SpendingHandler) DeleteTracker(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTracker(r.Context(), GetUserID(r.Context())); err != nil {
		respondServiceError(w, err, "failed to delete tracker")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CheckIn records today's spending total.
func (h *SpendingHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var input service.CheckInInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.service.CheckIn(r.Context(), GetUserID(r.Context()), input)
	if err != nil {
		respondServiceError(w, err, "failed to record check-in")
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// ListCheckIns returns the check-in history.
func (h *SpendingHandler) ListCheckIns(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListCheckIns(r.Context(), GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, err, "failed to list check-ins")
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// GetHealth returns the adaptive budget health snapshot.
func (h *SpendingHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	health, err := h.service.GetHealth(r.Context(), GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, err, "failed to compute budget health")
		return
	}

	respondJSON(w, http.StatusOK, health)
}

// GetRecommendations returns spending suggestions.
func (h *SpendingHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := h.service.GetRecommendations(r.Context(), GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, err, "failed to compute recommendations")
		return
	}

	respondJSON(w, http.StatusOK, map[string][]string{"recommendations": recs})
}

// GetProjection returns the month-end savings outlook.
func (h *SpendingHandler) GetProjection(w http.ResponseWriter, r *http.Request) {
	projection, err := h.service.GetProjection(r.Context(), GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, err, "failed to compute projection")
		return
	}

	respondJSON(w, http.StatusOK, projection)
}
