package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pocketpilot/backend/internal/model"
	"github.com/pocketpilot/backend/pkg/datetime"
)

var ErrProfileNotFound = errors.New("spending profile not found")

// SpendingRepository persists the spending profile and daily check-in
// entries. The two are deleted together when the tracker is removed.
type SpendingRepository struct {
	db *sqlx.DB
}

func NewSpendingRepository(db *sqlx.DB) *SpendingRepository {
	return &SpendingRepository{db: db}
}

// UpsertProfile creates the user's profile or replaces it wholesale.
func (r *SpendingRepository) UpsertProfile(ctx context.Context, profile *model.SpendingProfile) error {
	query := `
		INSERT INTO spending_profiles (user_id, monthly_income, fixed_expenses, loan_payment, monthly_savings_goal, daily_budget, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			monthly_income = EXCLUDED.monthly_income,
			fixed_expenses = EXCLUDED.fixed_expenses,
			loan_payment = EXCLUDED.loan_payment,
			monthly_savings_goal = EXCLUDED.monthly_savings_goal,
			daily_budget = EXCLUDED.daily_budget,
			updated_at = NOW()
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		profile.UserID, profile.MonthlyIncome, profile.FixedExpenses,
		profile.LoanPayment, profile.MonthlySavingsGoal, profile.DailyBudget,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
}

// GetProfile returns the user's profile, or ErrProfileNotFound.
func (r *SpendingRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*model.SpendingProfile, error) {
	var profile model.SpendingProfile
	query := `SELECT * FROM spending_profiles WHERE user_id = $1`
	err := r.db.GetContext(ctx, &profile, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// DeleteTracker removes the profile and every daily spending entry in a
// single transaction: both go or neither does.
func (r *SpendingRepository) DeleteTracker(ctx context.Context, userID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning delete-tracker transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `DELETE FROM spending_profiles WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrProfileNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM daily_spending WHERE user_id = $1`, userID); err != nil {
		return err
	}

	return tx.Commit()
}

// UpsertEntry records a day's check-in. A second check-in for the same date
// overwrites the first; at most one entry exists per calendar date.
func (r *SpendingRepository) UpsertEntry(ctx context.Context, entry *model.DailySpending) error {
	query := `
		INSERT INTO daily_spending (user_id, spend_date, amount, budget_status, feeling, saved_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (user_id, spend_date) DO UPDATE SET
			amount = EXCLUDED.amount,
			budget_status = EXCLUDED.budget_status,
			feeling = EXCLUDED.feeling,
			saved_amount = EXCLUDED.saved_amount,
			updated_at = NOW()
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		entry.UserID, entry.Date, entry.Amount, entry.BudgetStatus,
		entry.Feeling, entry.SavedAmount,
	).Scan(&entry.CreatedAt, &entry.UpdatedAt)
}

// ListEntries returns all of a user's check-ins in ascending date order.
func (r *SpendingRepository) ListEntries(ctx context.Context, userID uuid.UUID) ([]model.DailySpending, error) {
	var entries []model.DailySpending
	query := `SELECT * FROM daily_spending WHERE user_id = $1 ORDER BY spend_date`
	err := r.db.SelectContext(ctx, &entries, query, userID)
	return entries, err
}

// ListEntriesInMonth returns the user's check-ins for the month containing t.
func (r *SpendingRepository) ListEntriesInMonth(ctx context.Context, userID uuid.UUID, month datetime.Date) ([]model.DailySpending, error) {
	var entries []model.DailySpending
	query := `
		SELECT * FROM daily_spending
		WHERE user_id = $1 AND spend_date >= $2 AND spend_date <= $3
		ORDER BY spend_date`
	start := datetime.StartOfMonth(month.Time)
	end := datetime.EndOfMonth(month.Time)
	err := r.db.SelectContext(ctx, &entries, query, userID, start, end)
	return entries, err
}
