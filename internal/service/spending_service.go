package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pocketpilot/backend/internal/apperror"
	"github.com/pocketpilot/backend/internal/engine"
	"github.com/pocketpilot/backend/internal/model"
	"github.com/pocketpilot/backend/internal/repository"
	"github.com/pocketpilot/backend/pkg/datetime"
)

// SpendingRepositoryInterface defines the contract for spending profile and
// daily check-in data access.
type SpendingRepositoryInterface interface {
	UpsertProfile(ctx context.Context, profile *model.SpendingProfile) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.SpendingProfile, error)
	DeleteTracker(ctx context.Context, userID uuid.UUID) error
	UpsertEntry(ctx context.Context, entry *model.DailySpending) error
	ListEntries(ctx context.Context, userID uuid.UUID) ([]model.DailySpending, error)
}

// SpendingService manages the budget tracker: profile setup, daily check-ins
// and the derived health, recommendation and projection views. All date math
// lives in the engine; this layer supplies the clock and storage.
type SpendingService struct {
	repo  SpendingRepositoryInterface
	clock Clock
}

func NewSpendingService(repo SpendingRepositoryInterface, clock Clock) *SpendingService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &SpendingService{repo: repo, clock: clock}
}

type ProfileInput struct {
	MonthlyIncome      decimal.Decimal `json:"monthlyIncome"`
	FixedExpenses      decimal.Decimal `json:"fixedExpenses"`
	LoanPayment        decimal.Decimal `json:"loanPayment"`
	MonthlySavingsGoal decimal.Decimal `json:"monthlySavingsGoal"`
}

type CheckInInput struct {
	Amount  decimal.Decimal        `json:"amount"`
	Feeling *model.SpendingFeeling `json:"feeling,omitempty"`
}

func (in ProfileInput) validate() error {
	if in.MonthlyIncome.IsNegative() {
		return apperror.Validation("monthlyIncome", "must not be negative")
	}
	if in.FixedExpenses.IsNegative() {
		return apperror.Validation("fixedExpenses", "must not be negative")
	}
	if in.LoanPayment.IsNegative() {
		return apperror.Validation("loanPayment", "must not be negative")
	}
	if in.MonthlySavingsGoal.IsNegative() {
		return apperror.Validation("monthlySavingsGoal", "must not be negative")
	}
	return nil
}

// SetupProfile creates or wholesale-replaces the user's spending profile. The
// daily budget is snapshotted at this moment and stays fixed until the next
// setup or edit.
func (s *SpendingService) SetupProfile(ctx context.Context, userID uuid.UUID, input ProfileInput) (*model.SpendingProfile, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	profile := &model.SpendingProfile{
		UserID:             userID,
		MonthlyIncome:      input.MonthlyIncome,
		FixedExpenses:      input.FixedExpenses,
		LoanPayment:        input.LoanPayment,
		MonthlySavingsGoal: input.MonthlySavingsGoal,
		DailyBudget:        engine.SnapshotDailyBudget(input.MonthlyIncome, input.FixedExpenses, input.MonthlySavingsGoal, now),
	}

	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("saving spending profile: %w", err)
	}

	return profile, nil
}

// EditProfile replaces the profile fields and recomputes the daily budget
// snapshot. Editing a non-existent profile is a not-found error.
func (s *SpendingService) EditProfile(ctx context.Context, userID uuid.UUID, input ProfileInput) (*model.SpendingProfile, error) {
	if _, err := s.getProfile(ctx, userID); err != nil {
		return nil, err
	}
	return s.SetupProfile(ctx, userID, input)
}

// DeleteTracker removes the profile and the entire check-in history in one
// transaction.
func (s *SpendingService) DeleteTracker(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.DeleteTracker(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return apperror.NotFound("spending profile")
		}
		return fmt.Errorf("deleting spending tracker: %w", err)
	}
	return nil
}

// CheckIn records today's spending total, overwriting any earlier check-in for
// the same calendar day. Classification compares against the static daily
// budget snapshot, not the adaptive figure shown in the health view.
func (s *SpendingService) CheckIn(ctx context.Context, userID uuid.UUID, input CheckInInput) (*model.DailySpending, error) {
	if input.Amount.IsNegative() {
		return nil, apperror.Validation("amount", "must not be negative")
	}
	if input.Feeling != nil && !isValidFeeling(*input.Feeling) {
		return nil, apperror.Validation("feeling", "must be one of planned, impulse_regret, necessary, treat")
	}

	profile, err := s.getProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	status, saved := engine.ClassifyCheckIn(input.Amount, profile.DailyBudget)

	entry := &model.DailySpending{
		UserID:       userID,
		Date:         datetime.FromTime(s.clock.Now()),
		Amount:       input.Amount,
		BudgetStatus: status,
		Feeling:      input.Feeling,
		SavedAmount:  saved,
	}

	if err := s.repo.UpsertEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("recording check-in: %w", err)
	}

	return entry, nil
}

// GetHealth computes the adaptive budget health snapshot. A user with no
// profile gets the neutral default rather than an error.
func (s *SpendingService) GetHealth(ctx context.Context, userID uuid.UUID) (*model.BudgetHealth, error) {
	profile, history, err := s.loadTracker(ctx, userID)
	if err != nil {
		return nil, err
	}
	health := engine.CalculateBudgetHealth(profile, history, s.clock.Now())
	return &health, nil
}

// GetRecommendations returns actionable suggestions derived from the current
// health snapshot and recent check-ins.
func (s *SpendingService) GetRecommendations(ctx context.Context, userID uuid.UUID) ([]string, error) {
	profile, history, err := s.loadTracker(ctx, userID)
	if err != nil {
		return nil, err
	}
	health := engine.CalculateBudgetHealth(profile, history, s.clock.Now())
	return engine.SmartRecommendations(health, history), nil
}

// GetProjection returns the month-end savings outlook.
func (s *SpendingService) GetProjection(ctx context.Context, userID uuid.UUID) (*model.SavingsProjection, error) {
	profile, history, err := s.loadTracker(ctx, userID)
	if err != nil {
		return nil, err
	}
	projection := engine.CalculateSavingsProjection(profile, history, s.clock.Now())
	return &projection, nil
}

// ListCheckIns returns the full check-in history in ascending date order.
func (s *SpendingService) ListCheckIns(ctx context.Context, userID uuid.UUID) ([]model.DailySpending, error) {
	entries, err := s.repo.ListEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading spending history: %w", err)
	}
	return entries, nil
}

// GetProfile retrieves the user's spending profile.
func (s *SpendingService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.SpendingProfile, error) {
	return s.getProfile(ctx, userID)
}

// loadTracker fetches the profile and full check-in history. A missing
// profile comes back as nil with no error; the engine treats that as the
// fresh-install case.
func (s *SpendingService) loadTracker(ctx context.Context, userID uuid.UUID) (*model.SpendingProfile, []model.DailySpending, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("loading spending profile: %w", err)
	}

	history, err := s.repo.ListEntries(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading spending history: %w", err)
	}

	return profile, history, nil
}

func (s *SpendingService) getProfile(ctx context.Context, userID uuid.UUID) (*model.SpendingProfile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.NotFound("spending profile")
		}
		return nil, fmt.Errorf("loading spending profile: %w", err)
	}
	return profile, nil
}

func isValidFeeling(f model.SpendingFeeling) bool {
	switch f {
	case model.FeelingPlanned, model.FeelingImpulseRegret, model.FeelingNecessary, model.FeelingTreat:
		return true
	}
	return false
}
