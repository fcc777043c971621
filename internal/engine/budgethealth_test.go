package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketpilot/backend/internal/model"
	"github.com/pocketpilot/backend/pkg/datetime"
)

// spendable income = (income - fixed) - goal = 1000
func makeProfile() *model.SpendingProfile {
	return &model.SpendingProfile{
		UserID:             uuid.New(),
		MonthlyIncome:      decimal.NewFromInt(1500),
		FixedExpenses:      decimal.NewFromInt(300),
		LoanPayment:        decimal.NewFromInt(100),
		MonthlySavingsGoal: decimal.NewFromInt(200),
		DailyBudget:        decimal.NewFromInt(33),
	}
}

func entriesSumming(total decimal.Decimal, count int, year int, month time.Month) []model.DailySpending {
	per := total.Div(decimal.NewFromInt(int64(count)))
	entries := make([]model.DailySpending, count)
	for i := range entries {
		entries[i] = model.DailySpending{
			Date:   datetime.NewDate(year, month, i+1),
			Amount: per,
		}
	}
	return entries
}

func TestCalculateBudgetHealth_FreshInstall(t *testing.T) {
	t.Parallel()

	today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	health := CalculateBudgetHealth(nil, nil, today)

	assert.Equal(t, model.HealthExcellent, health.Status)
	assert.Equal(t, 100, health.HealthScore)
	assert.Equal(t, "Set up your budget to track spending", health.RecoveryMessage)
	assert.Equal(t, model.TrendStable, health.Trend)
	assert.True(t, health.SpendableIncome.IsZero())
}

func TestCalculateBudgetHealth_EmptyHistory(t *testing.T) {
	t.Parallel()

	today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	health := CalculateBudgetHealth(makeProfile(), nil, today)

	assert.Equal(t, model.HealthExcellent, health.Status)
	assert.Equal(t, 90, health.HealthScore)
	assert.Zero(t, health.PercentageUsed)
	assert.True(t, health.TotalSpentThisMonth.IsZero())
	assert.True(t, health.SpendableIncome.Equal(decimal.NewFromInt(1000)))
	assert.True(t, health.RemainingBalance.Equal(decimal.NewFromInt(1000)))
}

// Scenario: spendable income 1000, 1200 spent, 10 days left in the month.
func TestCalculateBudgetHealth_Critical(t *testing.T) {
	t.Parallel()

	// June has 30 days; the 21st leaves 10 days including itself.
	today := time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC)
	history := entriesSumming(decimal.NewFromInt(1200), 12, 2025, time.June)

	health := CalculateBudgetHealth(makeProfile(), history, today)

	assert.Equal(t, model.HealthCritical, health.Status)
	assert.Equal(t, 10, health.DaysLeft)
	assert.True(t, health.AdaptiveDailyBudget.IsZero(), "adaptive budget clamps to zero when overspent")
	assert.True(t, health.RemainingBalance.IsZero(), "remaining balance clamps to zero in output")
	assert.Equal(t, 100.0, health.PercentageUsed, "output percentage clamps to 100")
	require.NotEmpty(t, health.RecoveryMessage)
	assert.Contains(t, health.RecoveryMessage, "200.00", "overspend amount")
	assert.Contains(t, health.RecoveryMessage, "20.00", "required daily cut over 10 days")
	assert.NotEmpty(t, health.SavingOpportunities)
	// pct = 120, score = 100 - 20*2
	assert.Equal(t, 60, health.HealthScore)
}

func TestCalculateBudgetHealth_Warning(t *testing.T) {
	t.Parallel()

	today := time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC)
	history := entriesSumming(decimal.NewFromInt(900), 9, 2025, time.June)

	health := CalculateBudgetHealth(makeProfile(), history, today)

	assert.Equal(t, model.HealthWarning, health.Status)
	// pct = 90, score = 100 - 5*3
	assert.Equal(t, 85, health.HealthScore)
	assert.Equal(t, 90.0, health.PercentageUsed)
	assert.NotEmpty(t, health.RecoveryMessage)
	assert.NotEmpty(t, health.SavingOpportunities)
	assert.True(t, health.RemainingBalance.Equal(decimal.NewFromInt(100)))
}

func TestCalculateBudgetHealth_Good(t *testing.T) {
	t.Parallel()

	today := time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC)
	history := entriesSumming(decimal.NewFromInt(700), 7, 2025, time.June)

	health := CalculateBudgetHealth(makeProfile(), history, today)

	assert.Equal(t, model.HealthGood, health.Status)
	assert.Equal(t, 75, health.HealthScore)
	assert.Empty(t, health.RecoveryMessage)
}

func TestCalculateBudgetHealth_OtherMonthsExcluded(t *testing.T) {
	t.Parallel()

	today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	history := append(
		entriesSumming(decimal.NewFromInt(400), 4, 2025, time.May),
		entriesSumming(decimal.NewFromInt(100), 2, 2025, time.June)...,
	)

	health := CalculateBudgetHealth(makeProfile(), history, today)

	assert.True(t, health.TotalSpentThisMonth.Equal(decimal.NewFromInt(100)),
		"only current-month entries are summed, got %s", health.TotalSpentThisMonth)
}

func TestCalculateBudgetHealth_MalformedDatesSkipped(t *testing.T) {
	t.Parallel()

	today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	history := []model.DailySpending{
		{Date: datetime.NewDate(2025, time.June, 3), Amount: decimal.NewFromInt(50)},
		{Amount: decimal.NewFromInt(9999)}, // zero date: lenient parse failure
	}

	health := CalculateBudgetHealth(makeProfile(), history, today)

	assert.True(t, health.TotalSpentThisMonth.Equal(decimal.NewFromInt(50)))
}

// Holding all else fixed, more spending never raises the health score within
// a status tier. (The warning and critical formulas each restart near 100 at
// their lower boundary, so the guarantee is per tier, not global.)
func TestCalculateBudgetHealth_ScoreMonotonicityPerTier(t *testing.T) {
	t.Parallel()

	today := time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC)

	prevScore := map[model.HealthStatus]int{}
	for spent := int64(0); spent <= 2000; spent += 10 {
		history := []model.DailySpending{{
			Date:   datetime.NewDate(2025, time.June, 2),
			Amount: decimal.NewFromInt(spent),
		}}
		health := CalculateBudgetHealth(makeProfile(), history, today)
		if prev, ok := prevScore[health.Status]; ok {
			assert.LessOrEqual(t, health.HealthScore, prev, "spent=%d status=%s", spent, health.Status)
		}
		prevScore[health.Status] = health.HealthScore
	}
}

func TestCalculateBudgetHealth_Trend(t *testing.T) {
	t.Parallel()

	today := time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC)

	build := func(firstAvg, lastAvg int64) []model.DailySpending {
		entries := make([]model.DailySpending, 0, 14)
		for i := 0; i < 7; i++ {
			entries = append(entries, model.DailySpending{
				Date:   datetime.NewDate(2025, time.June, i+1),
				Amount: decimal.NewFromInt(firstAvg),
			})
		}
		for i := 0; i < 7; i++ {
			entries = append(entries, model.DailySpending{
				Date:   datetime.NewDate(2025, time.June, i+8),
				Amount: decimal.NewFromInt(lastAvg),
			})
		}
		return entries
	}

	tests := []struct {
		name     string
		history  []model.DailySpending
		expected model.SpendingTrend
	}{
		{"improving when last week is well below first", build(40, 20), model.TrendImproving},
		{"declining when last week is well above first", build(20, 40), model.TrendDeclining},
		{"stable when means are close", build(30, 31), model.TrendStable},
		{"stable with fewer than 14 entries", build(40, 20)[:13], model.TrendStable},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			health := CalculateBudgetHealth(makeProfile(), tt.history, today)
			assert.Equal(t, tt.expected, health.Trend)
		})
	}
}

func TestSmartRecommendations(t *testing.T) {
	t.Parallel()

	overStatus := model.BudgetOver
	underStatus := model.BudgetUnder

	entry := func(day int, status model.BudgetStatus) model.DailySpending {
		return model.DailySpending{
			Date:         datetime.NewDate(2025, time.June, day),
			Amount:       decimal.NewFromInt(40),
			BudgetStatus: status,
		}
	}

	t.Run("critical tier leads the list", func(t *testing.T) {
		t.Parallel()
		recs := SmartRecommendations(model.BudgetHealth{Status: model.HealthCritical}, nil)
		require.NotEmpty(t, recs)
		assert.Contains(t, recs[0], "immediate attention")
	})

	t.Run("last entry over budget adds a note", func(t *testing.T) {
		t.Parallel()
		history := []model.DailySpending{entry(1, underStatus), entry(2, overStatus)}
		recs := SmartRecommendations(model.BudgetHealth{Status: model.HealthGood}, history)
		assert.Contains(t, recs, "Yesterday went over budget. A lighter day today balances it out.")
	})

	t.Run("majority over budget adds habit reset note", func(t *testing.T) {
		t.Parallel()
		history := []model.DailySpending{
			entry(1, overStatus), entry(2, overStatus), entry(3, underStatus),
		}
		recs := SmartRecommendations(model.BudgetHealth{Status: model.HealthExcellent}, history)

		found := false
		for _, r := range recs {
			if r == "More than half of your check-ins are over budget. Try resetting your daily habits this week." {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("exactly half over does not trigger reset note", func(t *testing.T) {
		t.Parallel()
		history := []model.DailySpending{
			entry(1, overStatus), entry(2, underStatus),
		}
		recs := SmartRecommendations(model.BudgetHealth{Status: model.HealthExcellent}, history)
		for _, r := range recs {
			assert.NotContains(t, r, "More than half")
		}
	})
}

func TestCalculateSavingsProjection(t *testing.T) {
	t.Parallel()

	t.Run("no profile yields setup message", func(t *testing.T) {
		t.Parallel()
		proj := CalculateSavingsProjection(nil, nil, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
		assert.False(t, proj.OnTrack)
		assert.True(t, proj.ProjectedSavings.IsZero())
		assert.NotEmpty(t, proj.Message)
	})

	t.Run("on track when projected savings reach 90% of goal", func(t *testing.T) {
		t.Parallel()
		// Disposable 1200, goal 200. Spending 20/day in a 30-day month
		// projects 600 spent, 600 saved: comfortably on track.
		today := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
		history := entriesSumming(decimal.NewFromInt(300), 15, 2025, time.June)

		proj := CalculateSavingsProjection(makeProfile(), history, today)

		assert.True(t, proj.OnTrack)
		assert.True(t, proj.ProjectedSavings.Equal(decimal.NewFromInt(600)), "got %s", proj.ProjectedSavings)
	})

	t.Run("off track when spending pace eats the goal", func(t *testing.T) {
		t.Parallel()
		// 70/day projects 2100 spent against 1200 disposable.
		today := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
		history := entriesSumming(decimal.NewFromInt(1050), 15, 2025, time.June)

		proj := CalculateSavingsProjection(makeProfile(), history, today)

		assert.False(t, proj.OnTrack)
		assert.True(t, proj.ProjectedSavings.IsNegative())
		assert.Contains(t, proj.Message, "fall short")
	})

	t.Run("first of month treats elapsed days as one", func(t *testing.T) {
		t.Parallel()
		today := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
		history := []model.DailySpending{{
			Date:   datetime.NewDate(2025, time.June, 1),
			Amount: decimal.NewFromInt(10),
		}}

		proj := CalculateSavingsProjection(makeProfile(), history, today)

		// 10/day over 30 days = 300 projected spend, 900 projected savings.
		assert.True(t, proj.ProjectedSavings.Equal(decimal.NewFromInt(900)), "got %s", proj.ProjectedSavings)
	})
}

func TestClassifyCheckIn(t *testing.T) {
	t.Parallel()

	budget := decimal.NewFromInt(100)

	tests := []struct {
		name       string
		amount     decimal.Decimal
		wantStatus model.BudgetStatus
		wantSaved  string
	}{
		{"well under", decimal.NewFromInt(50), model.BudgetUnder, "50"},
		{"exactly at under boundary", decimal.NewFromInt(75), model.BudgetUnder, "25"},
		{"just over under boundary", decimal.NewFromFloat(75.01), model.BudgetWithinRange, "24.99"},
		{"exactly at within boundary", decimal.NewFromFloat(112.5), model.BudgetWithinRange, "-12.5"},
		{"over budget keeps signed saved amount", decimal.NewFromInt(150), model.BudgetOver, "-50"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			status, saved := ClassifyCheckIn(tt.amount, budget)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantSaved, saved.String())
		})
	}
}

func TestSnapshotDailyBudget(t *testing.T) {
	t.Parallel()

	t.Run("floors the division result", func(t *testing.T) {
		t.Parallel()
		// (1500-300-200) / 16 days left from June 15 = 62.5 -> 62
		createdAt := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
		got := SnapshotDailyBudget(decimal.NewFromInt(1500), decimal.NewFromInt(300), decimal.NewFromInt(200), createdAt)
		assert.True(t, got.Equal(decimal.NewFromInt(62)), "got %s", got)
	})

	t.Run("floored at minimum of 10", func(t *testing.T) {
		t.Parallel()
		createdAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		got := SnapshotDailyBudget(decimal.NewFromInt(100), decimal.NewFromInt(50), decimal.NewFromInt(40), createdAt)
		assert.True(t, got.Equal(decimal.NewFromInt(10)), "got %s", got)
	})
}

// A profile serialized and reloaded keeps an identical daily budget snapshot.
func TestSpendingProfile_SerializationRoundTrip(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	profile := makeProfile()
	profile.DailyBudget = SnapshotDailyBudget(profile.MonthlyIncome, profile.FixedExpenses, profile.MonthlySavingsGoal, createdAt)

	data, err := json.Marshal(profile)
	require.NoError(t, err)

	var back model.SpendingProfile
	require.NoError(t, json.Unmarshal(data, &back))

	assert.True(t, profile.DailyBudget.Equal(back.DailyBudget))
	assert.True(t, profile.DisposableIncome().Equal(back.DisposableIncome()))
}
