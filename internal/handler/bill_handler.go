package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pocketpilot/backend/internal/model"
	"github.com/pocketpilot/backend/internal/service"
	"github.com/pocketpilot/backend/pkg/datetime"
)

type BillServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, input service.CreateBillInput) (*model.Bill, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*model.Bill, error)
	List(ctx context.Context, userID uuid.UUID) ([]model.Bill, error)
	ListByStatus(ctx context.Context, userID uuid.UUID, status model.BillStatus) ([]model.Bill, error)
	ListUpcomingWithinDays(ctx context.Context, userID uuid.UUID, windowDays int) ([]model.Bill, error)
	ListForDate(ctx context.Context, userID uuid.UUID, date datetime.Date) ([]model.Bill, error)
	Update(ctx context.Context, userID, id uuid.UUID, input service.UpdateBillInput) (*model.Bill, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	MarkAsPaid(ctx context.Context, userID, id uuid.UUID) (*model.Bill, error)
}

type BillHandler struct {
	service BillServiceInterface
}

func NewBillHandler(service BillServiceInterface) *BillHandler {
	return &BillHandler{service: service}
}

// Create adds a new bill.
func (h *BillHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	var input service.CreateBillInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bill, err := h.service.Create(r.Context(), userID, input)
	if err != nil {
		respondServiceError(w, err, "failed to create bill")
		return
	}

	respondJSON(w, http.StatusCreated, bill)
}

// Get returns a single bill.
func (h *BillHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	bill, err := h.service.Get(r.Context(), GetUserID(r.Context()), id)
	if err != nil {
		respondServiceError(w, err, "failed to get bill")
		return
	}

	respondJSON(w, http.StatusOK, bill)
}

// List returns the user's bills. Optional query parameters narrow the result:
// ?status= filters by classification, ?within= keeps bills due inside a day
// window, ?date= keeps bills due on one calendar day.
func (h *BillHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := model.BillStatus(raw)
		switch status {
		case model.StatusUpcoming, model.StatusUrgent, model.StatusOverdue, model.StatusPaid:
		default:
			respondError(w, http.StatusBadRequest, "invalid status")
			return
		}
		bills, err := h.service.ListByStatus(r.Context(), userID, status)
		if err != nil {
			respondServiceError(w, err, "failed to list bills")
			return
		}
		respondJSON(w, http.StatusOK, bills)
		return
	}

	if raw := r.URL.Query().Get("within"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 0 {
			respondError(w, http.StatusBadRequest, "invalid within")
			return
		}
		bills, err := h.service.ListUpcomingWithinDays(r.Context(), userID, days)
		if err != nil {
			respondServiceError(w, err, "failed to list bills")
			return
		}
		respondJSON(w, http.StatusOK, bills)
		return
	}

	if raw := r.URL.Query().Get("date"); raw != "" {
		date, err := datetime.ParseDate(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		bills, err := h.service.ListForDate(r.Context(), userID, date)
		if err != nil {
			respondServiceError(w, err, "failed to list bills")
			return
		}
		respondJSON(w, http.StatusOK, bills)
		return
	}

	bills, err := h.service.List(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "failed to list bills")
		return
	}

	respondJSON(w, http.StatusOK, bills)
}

// Update patches a bill.
func (h *BillHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var input service.UpdateBillInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bill, err := h.service.Update(r.Context(), GetUserID(r.Context()), id, input)
	if err != nil {
		respondServiceError(w, err, "failed to update bill")
		return
	}

	respondJSON(w, http.StatusOK, bill)
}

// Delete removes a bill.
func (h *BillHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.service.Delete(r.Context(), GetUserID(r.Context()), id); err != nil {
		respondServiceError(w, err, "failed to delete bill")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkAsPaid records a payment for the bill's full amount dated today.
func (h *BillHandler) MarkAsPaid(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	bill, err := h.service.MarkAsPaid(r.Context(), GetUserID(r.Context()), id)
	if err != nil {
		respondServiceError(w, err, "failed to mark bill as paid")
		return
	}

	respondJSON(w, http.StatusOK, bill)
}
