package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pocketpilot/backend/internal/apperror"
	"github.com/pocketpilot/backend/internal/model"
	"github.com/pocketpilot/backend/internal/repository"
	"github.com/pocketpilot/backend/pkg/datetime"
)

// MockBillRepo for testing
type MockBillRepo struct {
	mock.Mock
}

func (m *MockBillRepo) Create(ctx context.Context, bill *model.Bill) error {
	args := m.Called(ctx, bill)
	if bill.ID == uuid.Nil {
		bill.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockBillRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Bill), args.Error(1)
}

func (m *MockBillRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Bill, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Bill), args.Error(1)
}

func (m *MockBillRepo) Update(ctx context.Context, bill *model.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockBillRepo) AddPayment(ctx context.Context, payment *model.BillPayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

type MockReminderCanceller struct {
	mock.Mock
}

func (m *MockReminderCanceller) CancelReminder(ctx context.Context, billID uuid.UUID) {
	m.Called(ctx, billID)
}

func fixedJune21() Clock {
	return FixedClock{Time: time.Date(2025, time.June, 21, 14, 30, 0, 0, time.UTC)}
}

func testBill(userID uuid.UUID, dueOffset int) model.Bill {
	due := time.Date(2025, time.June, 21, 0, 0, 0, 0, time.UTC).AddDate(0, 0, dueOffset)
	return model.Bill{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         "Electricity",
		Amount:       decimal.NewFromFloat(120.50),
		DueDate:      datetime.FromTime(due),
		Frequency:    model.FrequencyMonthly,
		ReminderDays: 3,
		IsActive:     true,
	}
}

func TestBillService_Create(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name      string
		input     CreateBillInput
		setupMock func(*MockBillRepo)
		wantErr   bool
		errField  string
	}{
		{
			name: "success",
			input: CreateBillInput{
				Name:         "Rent",
				Amount:       decimal.NewFromInt(900),
				DueDate:      datetime.NewDate(2025, time.July, 1),
				Frequency:    model.FrequencyMonthly,
				ReminderDays: 5,
			},
			setupMock: func(r *MockBillRepo) {
				r.On("Create", mock.Anything, mock.AnythingOfType("*model.Bill")).Return(nil)
			},
		},
		{
			name: "empty name rejected",
			input: CreateBillInput{
				Amount:    decimal.NewFromInt(50),
				DueDate:   datetime.NewDate(2025, time.July, 1),
				Frequency: model.FrequencyMonthly,
			},
			wantErr:  true,
			errField: "name",
		},
		{
			name: "negative amount rejected",
			input: CreateBillInput{
				Name:      "Water",
				Amount:    decimal.NewFromInt(-10),
				DueDate:   datetime.NewDate(2025, time.July, 1),
				Frequency: model.FrequencyMonthly,
			},
			wantErr:  true,
			errField: "amount",
		},
		{
			name: "unknown frequency rejected",
			input: CreateBillInput{
				Name:      "Gym",
				Amount:    decimal.NewFromInt(30),
				DueDate:   datetime.NewDate(2025, time.July, 1),
				Frequency: model.BillFrequency("weekly"),
			},
			wantErr:  true,
			errField: "frequency",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := new(MockBillRepo)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}
			svc := NewBillService(repo, nil, fixedJune21())

			bill, err := svc.Create(context.Background(), userID, tt.input)

			if tt.wantErr {
				require.Error(t, err)
				var appErr *apperror.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, tt.errField, appErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, bill.UserID)
			assert.True(t, bill.IsActive)
			assert.Empty(t, bill.PaymentHistory)
			repo.AssertExpectations(t)
		})
	}
}

func TestBillService_ListByStatus(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	overdue := testBill(userID, -2)
	urgent := testBill(userID, 2)
	upcoming := testBill(userID, 20)
	inactive := testBill(userID, 2)
	inactive.IsActive = false

	repo := new(MockBillRepo)
	repo.On("ListByUser", mock.Anything, userID).
		Return([]model.Bill{overdue, urgent, upcoming, inactive}, nil)

	svc := NewBillService(repo, nil, fixedJune21())

	got, err := svc.ListByStatus(context.Background(), userID, model.StatusUrgent)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, urgent.ID, got[0].ID)
}

func TestBillService_ListUpcomingWithinDays_DefaultsWindow(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	inWindow := testBill(userID, 5)
	outOfWindow := testBill(userID, 12)

	repo := new(MockBillRepo)
	repo.On("ListByUser", mock.Anything, userID).
		Return([]model.Bill{inWindow, outOfWindow}, nil)

	svc := NewBillService(repo, nil, fixedJune21())

	got, err := svc.ListUpcomingWithinDays(context.Background(), userID, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, inWindow.ID, got[0].ID)
}

func TestBillService_Update(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	bill := testBill(userID, 5)

	t.Run("patches only provided fields", func(t *testing.T) {
		t.Parallel()

		repo := new(MockBillRepo)
		b := bill
		repo.On("GetByID", mock.Anything, bill.ID).Return(&b, nil)
		repo.On("Update", mock.Anything, mock.AnythingOfType("*model.Bill")).Return(nil)

		svc := NewBillService(repo, nil, fixedJune21())

		newName := "Power"
		got, err := svc.Update(context.Background(), userID, bill.ID, UpdateBillInput{Name: &newName})
		require.NoError(t, err)
		assert.Equal(t, "Power", got.Name)
		assert.True(t, got.Amount.Equal(bill.Amount))
		repo.AssertExpectations(t)
	})

	t.Run("other user's bill reported as not found", func(t *testing.T) {
		t.Parallel()

		repo := new(MockBillRepo)
		b := bill
		repo.On("GetByID", mock.Anything, bill.ID).Return(&b, nil)

		svc := NewBillService(repo, nil, fixedJune21())

		_, err := svc.Update(context.Background(), uuid.New(), bill.ID, UpdateBillInput{})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("missing bill reported as not found", func(t *testing.T) {
		t.Parallel()

		repo := new(MockBillRepo)
		repo.On("GetByID", mock.Anything, bill.ID).Return(nil, repository.ErrBillNotFound)

		svc := NewBillService(repo, nil, fixedJune21())

		_, err := svc.Update(context.Background(), userID, bill.ID, UpdateBillInput{})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestBillService_MarkAsPaid(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	bill := testBill(userID, 3)

	repo := new(MockBillRepo)
	b := bill
	repo.On("GetByID", mock.Anything, bill.ID).Return(&b, nil)
	repo.On("AddPayment", mock.Anything, mock.MatchedBy(func(p *model.BillPayment) bool {
		return p.BillID == bill.ID && p.Amount.Equal(bill.Amount)
	})).Return(nil)

	reminders := new(MockReminderCanceller)
	reminders.On("CancelReminder", mock.Anything, bill.ID).Return()

	svc := NewBillService(repo, reminders, fixedJune21())

	paid, err := svc.MarkAsPaid(context.Background(), userID, bill.ID)
	require.NoError(t, err)
	require.Len(t, paid.PaymentHistory, 1)
	assert.Equal(t, datetime.NewDate(2025, time.June, 21), paid.PaymentHistory[0].Date)
	assert.True(t, paid.IsPaid())
	repo.AssertExpectations(t)
	reminders.AssertExpectations(t)
}

func TestBillService_Delete(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	bill := testBill(userID, 3)

	repo := new(MockBillRepo)
	b := bill
	repo.On("GetByID", mock.Anything, bill.ID).Return(&b, nil)
	repo.On("Delete", mock.Anything, bill.ID, userID).Return(nil)

	reminders := new(MockReminderCanceller)
	reminders.On("CancelReminder", mock.Anything, bill.ID).Return()

	svc := NewBillService(repo, reminders, fixedJune21())

	err := svc.Delete(context.Background(), userID, bill.ID)
	require.NoError(t, err)
	repo.AssertExpectations(t)
	reminders.AssertExpectations(t)
}

func TestBillService_List_RepoError(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	repo := new(MockBillRepo)
	repo.On("ListByUser", mock.Anything, userID).Return(nil, errors.New("db down"))

	svc := NewBillService(repo, nil, fixedJune21())

	_, err := svc.List(context.Background(), userID)
	assert.Error(t, err)
}
