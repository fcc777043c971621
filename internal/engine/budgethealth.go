package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pocketpilot/backend/internal/model"
	"github.com/pocketpilot/backend/pkg/datetime"
)

// Classification thresholds on the unclamped percentage of spendable income
// used so far this month.
const (
	criticalThreshold = 100.0
	warningThreshold  = 85.0
	goodThreshold     = 60.0
)

// Check-in classification multipliers against the profile's static daily
// budget snapshot.
var (
	underBudgetFactor  = decimal.NewFromFloat(0.75)
	withinBudgetFactor = decimal.NewFromFloat(1.125)
)

// minDailyBudget is the floor applied to the profile's daily budget snapshot.
var minDailyBudget = decimal.NewFromInt(10)

var hundred = decimal.NewFromInt(100)

// SnapshotDailyBudget computes the static daily budget recorded at profile
// creation: the spendable remainder after the savings goal spread over the
// days left in the creation month, floored at 10.
func SnapshotDailyBudget(monthlyIncome, fixedExpenses, savingsGoal decimal.Decimal, createdAt time.Time) decimal.Decimal {
	disposable := monthlyIncome.Sub(fixedExpenses)
	daysLeft := decimal.NewFromInt(int64(datetime.DaysLeftInMonth(createdAt)))
	budget := disposable.Sub(savingsGoal).Div(daysLeft).Floor()
	if budget.LessThan(minDailyBudget) {
		return minDailyBudget
	}
	return budget
}

// CalculateBudgetHealth computes the live financial-health snapshot for the
// month containing today. It never fails: an absent or unconfigured profile
// yields a neutral record with a setup prompt, and history entries whose date
// could not be parsed (zero date) are silently excluded.
func CalculateBudgetHealth(profile *model.SpendingProfile, history []model.DailySpending, today time.Time) model.BudgetHealth {
	if profile == nil || profile.DisposableIncome().IsZero() {
		return model.BudgetHealth{
			Status:              model.HealthExcellent,
			RemainingBalance:    decimal.Zero,
			AdaptiveDailyBudget: decimal.Zero,
			TotalSpentThisMonth: decimal.Zero,
			SpendableIncome:     decimal.Zero,
			RecoveryMessage:     "Set up your budget to track spending",
			SavingOpportunities: []string{},
			HealthScore:         100,
			Trend:               model.TrendStable,
		}
	}

	daysLeft := datetime.DaysLeftInMonth(today)
	daysElapsed := datetime.DaysElapsedInMonth(today)

	totalSpent := sumCurrentMonth(history, today)

	spendable := profile.DisposableIncome().Sub(profile.MonthlySavingsGoal)
	if spendable.IsNegative() {
		spendable = decimal.Zero
	}

	// Signed internally for messaging; clamped only in the output field.
	remaining := spendable.Sub(totalSpent)

	adaptive := decimal.Zero
	if spendable.IsPositive() && daysLeft > 0 {
		adaptive = remaining.Div(decimal.NewFromInt(int64(daysLeft)))
	}
	if adaptive.IsNegative() {
		adaptive = decimal.Zero
	}

	pctUsed := 0.0
	if spendable.IsPositive() {
		pctUsed = totalSpent.Div(spendable).Mul(hundred).InexactFloat64()
	}

	health := model.BudgetHealth{
		PercentageUsed:      clampPct(pctUsed),
		DaysLeft:            daysLeft,
		DaysElapsed:         daysElapsed,
		AdaptiveDailyBudget: adaptive,
		TotalSpentThisMonth: totalSpent,
		SpendableIncome:     spendable,
		RemainingBalance:    clampZero(remaining),
		Trend:               calculateTrend(history),
	}

	// Classification runs on the unclamped percentage.
	switch {
	case pctUsed > criticalThreshold:
		overspent := totalSpent.Sub(spendable)
		dailyCut := overspent.Div(decimal.NewFromInt(int64(daysLeft)))
		health.Status = model.HealthCritical
		health.HealthScore = clampScore(100-(pctUsed-100)*2, 0)
		health.RecoveryMessage = fmt.Sprintf(
			"You've overspent by %s this month. Reduce daily spending by %s over the next %d days to recover.",
			overspent.StringFixed(2), dailyCut.StringFixed(2), daysLeft)
		health.SavingOpportunities = []string{
			"Pause all non-essential purchases until next month",
			"Cook at home instead of ordering out",
			"Review subscriptions and cancel unused ones",
		}

	case pctUsed > warningThreshold:
		target := remaining.Div(decimal.NewFromInt(int64(daysLeft)))
		health.Status = model.HealthWarning
		health.HealthScore = clampScore(100-(pctUsed-85)*3, 20)
		health.RecoveryMessage = fmt.Sprintf(
			"You've used %.0f%% of your budget with %s left for %d days.",
			pctUsed, clampZero(remaining).StringFixed(2), daysLeft)
		health.SavingOpportunities = []string{
			fmt.Sprintf("Keep daily spending under %s to stay on budget", target.StringFixed(2)),
		}

	case pctUsed > goodThreshold:
		avg := totalSpent.Div(decimal.NewFromInt(int64(daysElapsed)))
		health.Status = model.HealthGood
		health.HealthScore = 75
		health.SavingOpportunities = []string{
			fmt.Sprintf("You're averaging %s per day this month", avg.StringFixed(2)),
		}

	default:
		extra := spendable.Sub(totalSpent)
		avg := totalSpent.Div(decimal.NewFromInt(int64(daysElapsed)))
		health.Status = model.HealthExcellent
		health.HealthScore = 90
		health.SavingOpportunities = []string{
			fmt.Sprintf("You could save an extra %s this month", extra.StringFixed(2)),
			fmt.Sprintf("Current daily average: %s", avg.StringFixed(2)),
		}
	}

	return health
}

// SmartRecommendations returns ordered advisory strings for the given health
// snapshot, tiered by status plus pattern checks over the spending history.
func SmartRecommendations(health model.BudgetHealth, history []model.DailySpending) []string {
	var recs []string

	switch health.Status {
	case model.HealthCritical:
		recs = append(recs,
			"Your budget needs immediate attention. Pause discretionary spending.",
			"Consider a no-spend challenge for the rest of the month.",
		)
	case model.HealthWarning:
		recs = append(recs,
			"You're trending over budget. Plan the next few days of spending ahead.",
			"Defer any purchase over your daily budget to next month.",
		)
	case model.HealthGood:
		recs = append(recs,
			"You're doing well. A few lighter days would build extra buffer.",
		)
	default:
		recs = append(recs,
			"Great pace. Consider moving spare budget into your savings goal.",
		)
	}

	entries := validEntries(history)
	if len(entries) > 0 {
		if entries[len(entries)-1].BudgetStatus == model.BudgetOver {
			recs = append(recs, "Yesterday went over budget. A lighter day today balances it out.")
		}

		over := 0
		for _, e := range entries {
			if e.BudgetStatus == model.BudgetOver {
				over++
			}
		}
		if over*2 > len(entries) {
			recs = append(recs, "More than half of your check-ins are over budget. Try resetting your daily habits this week.")
		}
	}

	return recs
}

// CalculateSavingsProjection linearly extrapolates this month's spending to a
// month-end figure and compares the implied savings against the goal. On
// track means projected savings reach at least 90% of the monthly goal.
func CalculateSavingsProjection(profile *model.SpendingProfile, history []model.DailySpending, today time.Time) model.SavingsProjection {
	if profile == nil {
		return model.SavingsProjection{
			OnTrack:          false,
			ProjectedSavings: decimal.Zero,
			Message:          "Set up your budget to see savings projections",
		}
	}

	daysElapsed := datetime.DaysElapsedInMonth(today)
	daysInMonth := datetime.DaysInMonth(today)

	totalSpent := sumCurrentMonth(history, today)
	projectedSpend := totalSpent.
		Div(decimal.NewFromInt(int64(daysElapsed))).
		Mul(decimal.NewFromInt(int64(daysInMonth)))

	projectedSavings := profile.DisposableIncome().Sub(projectedSpend)

	goalFloor := profile.MonthlySavingsGoal.Mul(decimal.NewFromFloat(0.9))
	onTrack := projectedSavings.GreaterThanOrEqual(goalFloor)

	msg := fmt.Sprintf("At this pace you'll save about %s this month.", projectedSavings.StringFixed(2))
	if !onTrack {
		msg = fmt.Sprintf("Projected savings of %s fall short of your %s goal.",
			projectedSavings.StringFixed(2), profile.MonthlySavingsGoal.StringFixed(2))
	}

	return model.SavingsProjection{
		OnTrack:          onTrack,
		ProjectedSavings: projectedSavings,
		Message:          msg,
	}
}

// ClassifyCheckIn classifies a day's spending against the static daily budget
// snapshot taken at profile creation (not the live adaptive figure). The
// returned saved amount is signed: positive means under budget.
func ClassifyCheckIn(amount, dailyBudget decimal.Decimal) (model.BudgetStatus, decimal.Decimal) {
	saved := dailyBudget.Sub(amount)

	switch {
	case amount.LessThanOrEqual(dailyBudget.Mul(underBudgetFactor)):
		return model.BudgetUnder, saved
	case amount.LessThanOrEqual(dailyBudget.Mul(withinBudgetFactor)):
		return model.BudgetWithinRange, saved
	default:
		return model.BudgetOver, saved
	}
}

// calculateTrend compares the mean of the last 7 entries against the mean of
// the first 7, by date. Fewer than 14 valid entries is always stable.
func calculateTrend(history []model.DailySpending) model.SpendingTrend {
	entries := validEntries(history)
	if len(entries) < 14 {
		return model.TrendStable
	}

	firstMean := meanAmount(entries[:7])
	lastMean := meanAmount(entries[len(entries)-7:])

	switch {
	case lastMean.LessThan(firstMean.Mul(decimal.NewFromFloat(0.9))):
		return model.TrendImproving
	case lastMean.GreaterThan(firstMean.Mul(decimal.NewFromFloat(1.1))):
		return model.TrendDeclining
	default:
		return model.TrendStable
	}
}

// validEntries drops entries whose date failed to parse and returns the rest
// in ascending date order.
func validEntries(history []model.DailySpending) []model.DailySpending {
	entries := make([]model.DailySpending, 0, len(history))
	for _, e := range history {
		if e.Date.IsZero() {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date.Time)
	})
	return entries
}

// sumCurrentMonth totals the amounts of entries dated in today's month.
// Entries with unparseable (zero) dates are excluded, never fatal.
func sumCurrentMonth(history []model.DailySpending, today time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, e := range history {
		if e.Date.IsZero() {
			continue
		}
		if datetime.SameMonth(e.Date.Time, today) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

func meanAmount(entries []model.DailySpending) decimal.Decimal {
	if len(entries) == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total.Div(decimal.NewFromInt(int64(len(entries))))
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func clampPct(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func clampScore(score float64, floor int) int {
	if score < float64(floor) {
		return floor
	}
	if score > 100 {
		return 100
	}
	return int(score)
}
