package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pocketpilot/backend/internal/apperror"
	"github.com/pocketpilot/backend/internal/engine"
	"github.com/pocketpilot/backend/internal/logger"
	"github.com/pocketpilot/backend/internal/model"
	"github.com/pocketpilot/backend/internal/repository"
	"github.com/pocketpilot/backend/pkg/datetime"
)

// BillRepositoryInterface defines the contract for bill data access.
// Implementations must be safe for concurrent use.
type BillRepositoryInterface interface {
	Create(ctx context.Context, bill *model.Bill) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Bill, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Bill, error)
	Update(ctx context.Context, bill *model.Bill) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	AddPayment(ctx context.Context, payment *model.BillPayment) error
}

// ReminderCanceller cancels any pending reminder for a bill. Implemented by
// the notification collaborator; paying or deleting a bill must not leave a
// stale reminder behind.
type ReminderCanceller interface {
	CancelReminder(ctx context.Context, billID uuid.UUID)
}

// BillService handles bill lifecycle and temporal status queries. Date
// classification is delegated to the engine with an injected clock.
type BillService struct {
	repo      BillRepositoryInterface
	reminders ReminderCanceller
	clock     Clock
}

// NewBillService creates a new BillService. A nil reminders collaborator
// disables reminder cancellation; a nil clock falls back to system time.
func NewBillService(repo BillRepositoryInterface, reminders ReminderCanceller, clock Clock) *BillService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &BillService{repo: repo, reminders: reminders, clock: clock}
}

type CreateBillInput struct {
	Name         string              `json:"name"`
	Amount       decimal.Decimal     `json:"amount"`
	DueDate      datetime.Date       `json:"dueDate"`
	Frequency    model.BillFrequency `json:"frequency"`
	ReminderDays int                 `json:"reminderDays"`
}

type UpdateBillInput struct {
	Name         *string              `json:"name"`
	Amount       *decimal.Decimal     `json:"amount"`
	DueDate      *datetime.Date       `json:"dueDate"`
	Frequency    *model.BillFrequency `json:"frequency"`
	ReminderDays *int                 `json:"reminderDays"`
	IsActive     *bool                `json:"isActive"`
}

// Create adds a new bill with an empty payment history.
func (s *BillService) Create(ctx context.Context, userID uuid.UUID, input CreateBillInput) (*model.Bill, error) {
	if input.Name == "" {
		return nil, apperror.Validation("name", "must not be empty")
	}
	if input.Amount.IsNegative() {
		return nil, apperror.Validation("amount", "must not be negative")
	}
	if input.DueDate.IsZero() {
		return nil, apperror.Validation("dueDate", "must be a valid date")
	}
	if input.ReminderDays < 0 {
		return nil, apperror.Validation("reminderDays", "must not be negative")
	}
	if !isValidFrequency(input.Frequency) {
		return nil, apperror.Validation("frequency", "must be one of one-time, monthly, quarterly, yearly")
	}

	bill := &model.Bill{
		UserID:       userID,
		Name:         input.Name,
		Amount:       input.Amount,
		DueDate:      input.DueDate,
		Frequency:    input.Frequency,
		ReminderDays: input.ReminderDays,
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, bill); err != nil {
		return nil, fmt.Errorf("creating bill: %w", err)
	}

	return bill, nil
}

// Get retrieves a bill by ID, ensuring it belongs to the user.
func (s *BillService) Get(ctx context.Context, userID, id uuid.UUID) (*model.Bill, error) {
	bill, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return bill, nil
}

// List retrieves all of a user's bills.
func (s *BillService) List(ctx context.Context, userID uuid.UUID) ([]model.Bill, error) {
	bills, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing bills for user %s: %w", userID, err)
	}
	return bills, nil
}

// ListByStatus retrieves the user's active bills matching the given status as
// of today.
func (s *BillService) ListByStatus(ctx context.Context, userID uuid.UUID, status model.BillStatus) ([]model.Bill, error) {
	bills, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing bills for user %s: %w", userID, err)
	}
	return engine.FilterByStatus(bills, status, s.clock.Now()), nil
}

// ListUpcomingWithinDays retrieves active bills due within the window,
// excluding anything due today or earlier.
func (s *BillService) ListUpcomingWithinDays(ctx context.Context, userID uuid.UUID, windowDays int) ([]model.Bill, error) {
	if windowDays <= 0 {
		windowDays = 7
	}
	bills, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing bills for user %s: %w", userID, err)
	}
	return engine.FilterUpcomingWithinDays(bills, windowDays, s.clock.Now()), nil
}

// ListForDate retrieves active bills due on the given calendar date.
func (s *BillService) ListForDate(ctx context.Context, userID uuid.UUID, date datetime.Date) ([]model.Bill, error) {
	bills, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing bills for user %s: %w", userID, err)
	}
	return engine.FilterForDate(bills, date.Time), nil
}

// Update patches a bill's fields. Returns a not-found error if the bill does
// not exist or belongs to another user.
func (s *BillService) Update(ctx context.Context, userID, id uuid.UUID, input UpdateBillInput) (*model.Bill, error) {
	bill, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperror.Validation("name", "must not be empty")
		}
		bill.Name = *input.Name
	}
	if input.Amount != nil {
		if input.Amount.IsNegative() {
			return nil, apperror.Validation("amount", "must not be negative")
		}
		bill.Amount = *input.Amount
	}
	if input.DueDate != nil {
		if input.DueDate.IsZero() {
			return nil, apperror.Validation("dueDate", "must be a valid date")
		}
		bill.DueDate = *input.DueDate
	}
	if input.Frequency != nil {
		if !isValidFrequency(*input.Frequency) {
			return nil, apperror.Validation("frequency", "must be one of one-time, monthly, quarterly, yearly")
		}
		bill.Frequency = *input.Frequency
	}
	if input.ReminderDays != nil {
		if *input.ReminderDays < 0 {
			return nil, apperror.Validation("reminderDays", "must not be negative")
		}
		bill.ReminderDays = *input.ReminderDays
	}
	if input.IsActive != nil {
		bill.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, bill); err != nil {
		return nil, fmt.Errorf("updating bill %s: %w", id, err)
	}

	return bill, nil
}

// Delete removes a bill and cancels any pending reminder for it.
func (s *BillService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.getOwned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return fmt.Errorf("deleting bill %s: %w", id, err)
	}
	s.cancelReminder(ctx, id)
	return nil
}

// MarkAsPaid appends a payment for the bill's full amount dated today and
// cancels any pending reminder. Each call records a distinct payment event.
func (s *BillService) MarkAsPaid(ctx context.Context, userID, id uuid.UUID) (*model.Bill, error) {
	bill, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	paid := engine.MarkAsPaid(*bill, s.clock.Now())
	payment := paid.PaymentHistory[len(paid.PaymentHistory)-1]

	if err := s.repo.AddPayment(ctx, &payment); err != nil {
		return nil, fmt.Errorf("recording payment for bill %s: %w", id, err)
	}
	paid.PaymentHistory[len(paid.PaymentHistory)-1] = payment

	s.cancelReminder(ctx, id)

	return &paid, nil
}

func (s *BillService) getOwned(ctx context.Context, userID, id uuid.UUID) (*model.Bill, error) {
	bill, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBillNotFound) {
			return nil, apperror.NotFound("bill")
		}
		return nil, fmt.Errorf("getting bill %s: %w", id, err)
	}
	if bill.UserID != userID {
		return nil, apperror.NotFound("bill")
	}
	return bill, nil
}

func (s *BillService) cancelReminder(ctx context.Context, billID uuid.UUID) {
	if s.reminders == nil {
		return
	}
	s.reminders.CancelReminder(ctx, billID)
	logger.FromContext(ctx).Debug("cancelled pending reminder", "bill_id", billID.String())
}

func isValidFrequency(f model.BillFrequency) bool {
	switch f {
	case model.FrequencyOneTime, model.FrequencyMonthly, model.FrequencyQuarterly, model.FrequencyYearly:
		return true
	}
	return false
}
