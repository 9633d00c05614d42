package service

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/VitudevIA/projeto-financeiro-CURSOR-sub001/internal/model"
	"github.com/VitudevIA/projeto-financeiro-CURSOR-sub001/internal/store"
)

// testNow is the frozen clock every service test runs against.
var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestService(st store.Store) *InsightsService {
	svc := New(st, nil, testLogger())
	svc.now = func() time.Time { return testNow }
	return svc
}

// seedSteadyUser writes four months of regular activity for userID: income
// 5000 on the 1st, the same four expense categories every month, one credit
// card, and a deliberately undersized food budget for the current month.
func seedSteadyUser(t *testing.T, st store.Store, userID string) {
	t.Helper()
	ctx := context.Background()

	expenses := []struct {
		day      int
		amount   float64
		category string
	}{
		{3, 1500, "moradia"},
		{5, 1200, "alimentacao"},
		{10, 700, "transporte"},
		{12, 600, "lazer"},
	}

	for offset := -3; offset <= 0; offset++ {
		month := testNow.AddDate(0, offset, 0)
		income := model.Transaction{
			UserID: userID,
			Amount: 5000,
			Type:   model.TransactionIncome,
			Date:   time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC),
		}
		require.NoError(t, st.CreateTransaction(ctx, &income))

		for _, e := range expenses {
			tx := model.Transaction{
				UserID:     userID,
				Amount:     e.amount,
				Type:       model.TransactionExpense,
				Date:       time.Date(month.Year(), month.Month(), e.day, 0, 0, 0, 0, time.UTC),
				CategoryID: e.category,
			}
			require.NoError(t, st.CreateTransaction(ctx, &tx))
		}
	}

	budget := model.Budget{
		UserID:      userID,
		CategoryID:  "alimentacao",
		LimitAmount: 1000,
		Month:       time.Date(testNow.Year(), testNow.Month(), 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, st.CreateBudget(ctx, &budget))
	require.NoError(t, st.CreateCard(ctx, &model.Card{UserID: userID, Type: model.CardCredit, Limit: 8000}))
	require.NoError(t, st.SetBalance(ctx, userID, 9000))
}

// --------------------------------------------------------------------------
// Parameter validation
// --------------------------------------------------------------------------

func TestServiceValidation(t *testing.T) {
	svc := newTestService(store.NewMemoryStore())
	ctx := context.Background()

	t.Run("missing user id", func(t *testing.T) {
		_, err := svc.HealthScore(ctx, "", 12)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("period out of range", func(t *testing.T) {
		_, err := svc.HealthScore(ctx, "u1", 25)
		assert.ErrorIs(t, err, ErrInvalidArgument)

		_, err = svc.Anomalies(ctx, "u1", -1)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("forecast horizon out of range", func(t *testing.T) {
		_, err := svc.Forecast(ctx, "u1", 7)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("limit out of range", func(t *testing.T) {
		_, err := svc.Recommendations(ctx, "u1", 12, 21)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("zero params resolve to defaults", func(t *testing.T) {
		_, err := svc.HealthScore(ctx, "u1", 0)
		assert.NoError(t, err)
	})
}

// --------------------------------------------------------------------------
// Happy paths against the in-memory store
// --------------------------------------------------------------------------

func TestServiceHealthScore(t *testing.T) {
	st := store.NewMemoryStore()
	seedSteadyUser(t, st, "u1")
	svc := newTestService(st)

	result, err := svc.HealthScore(context.Background(), "u1", 4)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, result.Score, 0)
	assert.LessOrEqual(t, result.Score, 100)
	assert.NotEmpty(t, result.Category)
	assert.InDelta(t, float64(result.Score), result.Breakdown.Sum(), 0.5)
}

func TestServiceAnomalies(t *testing.T) {
	st := store.NewMemoryStore()
	seedSteadyUser(t, st, "u1")
	svc := newTestService(st)

	// The 1000 food budget against three months of 1200/month spend must
	// surface as a budget overage.
	anomalies, err := svc.Anomalies(context.Background(), "u1", 3)
	require.NoError(t, err)

	var overage *model.Anomaly
	for i := range anomalies {
		if anomalies[i].Severity == model.SeverityModerate && anomalies[i].CategoryID == "alimentacao" {
			overage = &anomalies[i]
		}
	}
	require.NotNil(t, overage, "expected a budget overage for alimentacao")
	assert.InDelta(t, 3600, overage.Amount, 0.01)
}

func TestServiceForecast(t *testing.T) {
	st := store.NewMemoryStore()
	seedSteadyUser(t, st, "u1")
	svc := newTestService(st)

	result, err := svc.Forecast(context.Background(), "u1", 3)
	require.NoError(t, err)
	require.Len(t, result.Periods, 3)

	for _, p := range result.Periods {
		assert.InDelta(t, 4000, p.PredictedExpenses, 40, "flat history projects the flat average")
		assert.InDelta(t, 5000, p.PredictedIncome, 0.01)
	}
}

func TestServiceForecastInsufficientHistory(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	tx := model.Transaction{
		UserID: "u1", Amount: 100, Type: model.TransactionExpense,
		Date: testNow.AddDate(0, 0, -1), CategoryID: "lazer",
	}
	require.NoError(t, st.CreateTransaction(ctx, &tx))
	svc := newTestService(st)

	result, err := svc.Forecast(ctx, "u1", 6)
	require.NoError(t, err)
	assert.Empty(t, result.Periods)
	assert.NotEmpty(t, result.Message)
}

func TestServiceRecommendationsLimit(t *testing.T) {
	st := store.NewMemoryStore()
	seedSteadyUser(t, st, "u1")
	svc := newTestService(st)
	ctx := context.Background()

	all, err := svc.Recommendations(ctx, "u1", 4, 20)
	require.NoError(t, err)
	require.NotEmpty(t, all, "overspent food budget should trigger at least one rule")

	one, err := svc.Recommendations(ctx, "u1", 4, 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, all[0].RuleID, one[0].RuleID, "truncation keeps the best-ranked entry")
}

func TestServiceBenchmark(t *testing.T) {
	st := store.NewMemoryStore()
	seedSteadyUser(t, st, "u1")
	svc := newTestService(st)
	ctx := context.Background()

	result, err := svc.Benchmark(ctx, "u1", "", 4)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.OverallScore, 0.0)
	assert.LessOrEqual(t, result.OverallScore, 100.0)
	assert.Len(t, result.CategoryBenchmarks, 4)

	t.Run("no data yields the neutral default", func(t *testing.T) {
		empty, err := svc.Benchmark(ctx, "nobody", "", 12)
		require.NoError(t, err)
		assert.Equal(t, 50.0, empty.OverallScore)
		assert.Empty(t, empty.CategoryBenchmarks)
		assert.NotEmpty(t, empty.Message)
	})
}

// --------------------------------------------------------------------------
// Store failures
// --------------------------------------------------------------------------

func TestServiceStoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := store.NewMockStore(ctrl)
	mockStore.EXPECT().
		ListTransactions(gomock.Any(), "u1", gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("connection refused"))

	svc := newTestService(mockStore)
	_, err := svc.HealthScore(context.Background(), "u1", 12)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "listing transactions")
}
