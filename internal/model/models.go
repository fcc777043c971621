package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pocketpilot/backend/pkg/datetime"
)

type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// BillFrequency is informational; it does not drive recurrence generation.
type BillFrequency string

const (
	FrequencyOneTime   BillFrequency = "one-time"
	FrequencyMonthly   BillFrequency = "monthly"
	FrequencyQuarterly BillFrequency = "quarterly"
	FrequencyYearly    BillFrequency = "yearly"
)

// BillStatus classifies a bill relative to a reference date.
type BillStatus string

const (
	StatusUpcoming BillStatus = "upcoming"
	StatusUrgent   BillStatus = "urgent"
	StatusOverdue  BillStatus = "overdue"
	StatusPaid     BillStatus = "paid"
)

type Bill struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	UserID       uuid.UUID       `db:"user_id" json:"userId"`
	Name         string          `db:"name" json:"name"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	DueDate      datetime.Date   `db:"due_date" json:"dueDate"`
	Frequency    BillFrequency   `db:"frequency" json:"frequency"`
	ReminderDays int             `db:"reminder_days" json:"reminderDays"`
	IsActive     bool            `db:"is_active" json:"isActive"`
	// PaymentHistory is append-only; a non-empty history marks the bill paid
	// for tab filtering regardless of due-date status.
	PaymentHistory []BillPayment `json:"paymentHistory"`
	CreatedAt      time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updatedAt"`
}

// IsPaid reports whether the bill has at least one recorded payment.
func (b Bill) IsPaid() bool {
	return len(b.PaymentHistory) > 0
}

type BillPayment struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	BillID    uuid.UUID       `db:"bill_id" json:"billId"`
	Date      datetime.Date   `db:"paid_date" json:"date"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// BudgetStatus is the classification of a single day's spending against the
// profile's static daily budget, fixed at check-in time.
type BudgetStatus string

const (
	BudgetUnder       BudgetStatus = "under"
	BudgetWithinRange BudgetStatus = "within_range"
	BudgetOver        BudgetStatus = "over"
)

// SpendingFeeling is an optional user-supplied tag describing how a day's
// spending felt after the fact. Purely descriptive.
type SpendingFeeling string

const (
	FeelingPlanned       SpendingFeeling = "planned"
	FeelingImpulseRegret SpendingFeeling = "impulse_regret"
	FeelingNecessary     SpendingFeeling = "necessary"
	FeelingTreat         SpendingFeeling = "treat"
)

// DailySpending records one day's check-in. At most one entry exists per
// calendar date; a new check-in for a recorded date overwrites it.
type DailySpending struct {
	UserID       uuid.UUID        `db:"user_id" json:"userId"`
	Date         datetime.Date    `db:"spend_date" json:"date"`
	Amount       decimal.Decimal  `db:"amount" json:"amount"`
	BudgetStatus BudgetStatus     `db:"budget_status" json:"budgetStatus"`
	Feeling      *SpendingFeeling `db:"feeling" json:"feeling,omitempty"`
	// SavedAmount = dailyBudgetAtCheckIn - amount; positive means under budget.
	SavedAmount decimal.Decimal `db:"saved_amount" json:"savedAmount"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// SpendingProfile is the singleton budget tracker configuration for a user.
type SpendingProfile struct {
	UserID             uuid.UUID       `db:"user_id" json:"userId"`
	MonthlyIncome      decimal.Decimal `db:"monthly_income" json:"monthlyIncome"`
	FixedExpenses      decimal.Decimal `db:"fixed_expenses" json:"fixedExpenses"`
	LoanPayment        decimal.Decimal `db:"loan_payment" json:"loanPayment"`
	MonthlySavingsGoal decimal.Decimal `db:"monthly_savings_goal" json:"monthlySavingsGoal"`
	// DailyBudget is a snapshot taken at profile creation, not recomputed.
	// Check-in classification uses this figure; the health display uses the
	// live adaptive daily budget instead.
	DailyBudget decimal.Decimal `db:"daily_budget" json:"dailyBudget"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// DisposableIncome is monthly income minus fixed expenses. May be negative;
// downstream spendable-income math clamps it.
func (p SpendingProfile) DisposableIncome() decimal.Decimal {
	return p.MonthlyIncome.Sub(p.FixedExpenses)
}

// HealthStatus tiers for the adaptive budget health snapshot.
type HealthStatus string

const (
	HealthExcellent HealthStatus = "excellent"
	HealthGood      HealthStatus = "good"
	HealthWarning   HealthStatus = "warning"
	HealthCritical  HealthStatus = "critical"
)

// SpendingTrend compares recent spending against earlier spending.
type SpendingTrend string

const (
	TrendImproving SpendingTrend = "improving"
	TrendStable    SpendingTrend = "stable"
	TrendDeclining SpendingTrend = "declining"
)

// BudgetHealth is the live financial-health snapshot derived from a spending
// profile and dated spending history.
type BudgetHealth struct {
	Status              HealthStatus    `json:"status"`
	PercentageUsed      float64         `json:"percentageUsed"`
	RemainingBalance    decimal.Decimal `json:"remainingBalance"`
	DaysLeft            int             `json:"daysLeft"`
	DaysElapsed         int             `json:"daysElapsed"`
	AdaptiveDailyBudget decimal.Decimal `json:"adaptiveDailyBudget"`
	TotalSpentThisMonth decimal.Decimal `json:"totalSpentThisMonth"`
	SpendableIncome     decimal.Decimal `json:"spendableIncome"`
	RecoveryMessage     string          `json:"recoveryMessage,omitempty"`
	SavingOpportunities []string        `json:"savingOpportunities"`
	HealthScore         int             `json:"healthScore"`
	Trend               SpendingTrend   `json:"trend"`
}

// SavingsProjection is the month-end savings outlook from linear extrapolation
// of spending so far.
type SavingsProjection struct {
	OnTrack          bool            `json:"onTrack"`
	ProjectedSavings decimal.Decimal `json:"projectedSavings"`
	Message          string          `json:"message"`
}

// PushSubscription is a web-push endpoint registered by a client device.
type PushSubscription struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"userId"`
	Endpoint  string    `db:"endpoint" json:"endpoint"`
	P256dh    string    `db:"p256dh" json:"-"`
	Auth      string    `db:"auth" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
