// Package service hosts the insights API: parameter validation, snapshot
// loading, cache orchestration, and the HTTP surface over the analytic core.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/VitudevIA/projeto-financeiro-CURSOR-sub001/internal/cache"
	"github.com/VitudevIA/projeto-financeiro-CURSOR-sub001/internal/insights"
	"github.com/VitudevIA/projeto-financeiro-CURSOR-sub001/internal/model"
	"github.com/VitudevIA/projeto-financeiro-CURSOR-sub001/internal/store"
)

// Request parameter bounds. Defaults apply when the caller omits the
// parameter; values outside the bounds are rejected, not clamped.
const (
	DefaultPeriodMonths        = 12
	MaxPeriodMonths            = 24
	DefaultAnomalyPeriodMonths = 3
	DefaultForecastMonths      = 6
	MaxForecastMonths          = 6
	DefaultRecommendationLimit = 10
	MaxRecommendationLimit     = 20
)

// ErrInvalidArgument marks request-validation failures. Handlers map it to
// a 400 response.
var ErrInvalidArgument = errors.New("invalid argument")

func invalidArgf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// InsightsService computes the derived financial insights for a user from
// the current data snapshot, with a read-through cache in front of each
// computation.
type InsightsService struct {
	store store.Store
	cache *cache.Cache
	log   *logrus.Logger
	now   func() time.Time
}

// New creates an InsightsService. The cache may be nil, which disables
// caching.
func New(st store.Store, c *cache.Cache, log *logrus.Logger) *InsightsService {
	return &InsightsService{
		store: st,
		cache: c,
		log:   log,
		now:   time.Now,
	}
}

// snapshot is the per-request read of a user's data, already scoped to the
// requested window.
type snapshot struct {
	transactions []model.Transaction
	previous     []model.Transaction
	budgets      []model.Budget
	cards        []model.Card
	balance      float64
}

// loadSnapshot reads the user's records for the trailing periodMonths
// window. When withPrevious is set it also reads the window immediately
// before, for trend comparison.
func (s *InsightsService) loadSnapshot(ctx context.Context, userID string, periodMonths int, withPrevious bool) (*snapshot, error) {
	now := s.now()
	from := now.AddDate(0, -periodMonths, 0)

	txs, err := s.store.ListTransactions(ctx, userID, from, now)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	budgets, err := s.store.ListBudgets(ctx, userID, from, now)
	if err != nil {
		return nil, fmt.Errorf("listing budgets: %w", err)
	}
	cards, err := s.store.ListCards(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing cards: %w", err)
	}
	balance, err := s.store.GetBalance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reading balance: %w", err)
	}

	snap := &snapshot{
		transactions: txs,
		budgets:      budgets,
		cards:        cards,
		balance:      balance,
	}
	if withPrevious {
		prevFrom := from.AddDate(0, -periodMonths, 0)
		prev, err := s.store.ListTransactions(ctx, userID, prevFrom, from.Add(-time.Second))
		if err != nil {
			return nil, fmt.Errorf("listing previous-period transactions: %w", err)
		}
		snap.previous = prev
	}
	return snap, nil
}

// HealthScore computes the composite financial health score over the
// trailing periodMonths (0 means the default window).
func (s *InsightsService) HealthScore(ctx context.Context, userID string, periodMonths int) (*model.HealthScore, error) {
	periodMonths, err := validatePeriod(periodMonths, DefaultPeriodMonths)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, invalidArgf("user_id is required")
	}

	key := cache.Key("health", userID, strconv.Itoa(periodMonths))
	var cached model.HealthScore
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	snap, err := s.loadSnapshot(ctx, userID, periodMonths, true)
	if err != nil {
		return nil, err
	}

	result := insights.CalculateHealthScore(insights.HealthInput{
		Transactions:         snap.transactions,
		Budgets:              snap.budgets,
		Cards:                snap.cards,
		CurrentBalance:       snap.balance,
		PreviousTransactions: snap.previous,
		PeriodMonths:         periodMonths,
	})

	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"score":   result.Score,
		"trend":   result.Trend,
	}).Info("computed health score")

	s.cache.Set(ctx, key, result, cache.TTLHealthScore)
	return &result, nil
}

// Anomalies flags out-of-pattern expenses and blown budgets within the
// trailing periodMonths.
func (s *InsightsService) Anomalies(ctx context.Context, userID string, periodMonths int) ([]model.Anomaly, error) {
	periodMonths, err := validatePeriod(periodMonths, DefaultAnomalyPeriodMonths)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, invalidArgf("user_id is required")
	}

	key := cache.Key("anomalies", userID, strconv.Itoa(periodMonths))
	var cached []model.Anomaly
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	snap, err := s.loadSnapshot(ctx, userID, periodMonths, false)
	if err != nil {
		return nil, err
	}

	anomalies := insights.DetectAnomalies(insights.AnomalyInput{
		Transactions: snap.transactions,
		Budgets:      snap.budgets,
		PeriodMonths: periodMonths,
	})

	s.log.WithFields(logrus.Fields{
		"user_id":   userID,
		"anomalies": len(anomalies),
	}).Info("detected anomalies")

	s.cache.Set(ctx, key, anomalies, cache.TTLAnomalies)
	return anomalies, nil
}

// Forecast projects income and expenses for the next months (1-6), fitted
// over the user's full transaction history.
func (s *InsightsService) Forecast(ctx context.Context, userID string, months int) (*model.ForecastResult, error) {
	if userID == "" {
		return nil, invalidArgf("user_id is required")
	}
	if months == 0 {
		months = DefaultForecastMonths
	}
	if months < 1 || months > MaxForecastMonths {
		return nil, invalidArgf("months must be between 1 and %d, got %d", MaxForecastMonths, months)
	}

	key := cache.Key("forecast", userID, strconv.Itoa(months))
	var cached model.ForecastResult
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	// The trend fit wants as much history as the store holds; two years is
	// plenty for a monthly regression.
	snap, err := s.loadSnapshot(ctx, userID, MaxPeriodMonths, false)
	if err != nil {
		return nil, err
	}

	result := insights.Forecast(insights.ForecastInput{
		Transactions:  snap.transactions,
		HorizonMonths: months,
	})

	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"months":  months,
		"periods": len(result.Periods),
	}).Info("built forecast")

	s.cache.Set(ctx, key, result, cache.TTLForecast)
	return &result, nil
}

// Recommendations evaluates the rule table over the trailing periodMonths
// and returns at most limit suggestions, best first.
func (s *InsightsService) Recommendations(ctx context.Context, userID string, periodMonths, limit int) ([]model.Recommendation, error) {
	periodMonths, err := validatePeriod(periodMonths, DefaultPeriodMonths)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, invalidArgf("user_id is required")
	}
	if limit == 0 {
		limit = DefaultRecommendationLimit
	}
	if limit < 1 || limit > MaxRecommendationLimit {
		return nil, invalidArgf("limit must be between 1 and %d, got %d", MaxRecommendationLimit, limit)
	}

	key := cache.Key("recommendations", userID, strconv.Itoa(periodMonths), strconv.Itoa(limit))
	var cached []model.Recommendation
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	snap, err := s.loadSnapshot(ctx, userID, periodMonths, false)
	if err != nil {
		return nil, err
	}

	health := insights.CalculateHealthScore(insights.HealthInput{
		Transactions:   snap.transactions,
		Budgets:        snap.budgets,
		Cards:          snap.cards,
		CurrentBalance: snap.balance,
		PeriodMonths:   periodMonths,
	})

	income, expenses := totals(snap.transactions)
	recs := insights.GenerateRecommendations(insights.RecommendationInput{
		Transactions:  snap.transactions,
		Budgets:       snap.budgets,
		HealthScore:   health,
		TotalIncome:   income,
		TotalExpenses: expenses,
		TopCategories: topCategories(snap.transactions, 5),
	})
	if len(recs) > limit {
		recs = recs[:limit]
	}

	s.log.WithFields(logrus.Fields{
		"user_id":         userID,
		"recommendations": len(recs),
	}).Info("generated recommendations")

	s.cache.Set(ctx, key, recs, cache.TTLRecommendations)
	return recs, nil
}

// Benchmark compares the user's monthly category averages against market
// references, optionally adjusted for a segment.
func (s *InsightsService) Benchmark(ctx context.Context, userID, segment string, periodMonths int) (*model.Benchmark, error) {
	periodMonths, err := validatePeriod(periodMonths, DefaultPeriodMonths)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, invalidArgf("user_id is required")
	}

	key := cache.Key("benchmark", userID, segment, strconv.Itoa(periodMonths))
	var cached model.Benchmark
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	snap, err := s.loadSnapshot(ctx, userID, periodMonths, false)
	if err != nil {
		return nil, err
	}

	result := insights.GenerateBenchmark(insights.BenchmarkInput{
		CategoryExpenses: categoryMonthlyAverages(snap.transactions, periodMonths),
		Segment:          segment,
	})

	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"segment": segment,
		"score":   result.OverallScore,
	}).Info("computed benchmark")

	s.cache.Set(ctx, key, result, cache.TTLBenchmark)
	return &result, nil
}

func validatePeriod(periodMonths, fallback int) (int, error) {
	if periodMonths == 0 {
		return fallback, nil
	}
	if periodMonths < 1 || periodMonths > MaxPeriodMonths {
		return 0, invalidArgf("period_months must be between 1 and %d, got %d", MaxPeriodMonths, periodMonths)
	}
	return periodMonths, nil
}

func totals(txs []model.Transaction) (income, expenses float64) {
	for _, t := range txs {
		switch t.Type {
		case model.TransactionIncome:
			income += t.Amount
		case model.TransactionExpense:
			expenses += t.Amount
		}
	}
	return income, expenses
}

// topCategories returns the n largest expense categories by period total.
func topCategories(txs []model.Transaction, n int) []insights.CategoryTotal {
	byID := make(map[string]*insights.CategoryTotal)
	for _, t := range txs {
		if t.Type != model.TransactionExpense {
			continue
		}
		ct, ok := byID[t.CategoryID]
		if !ok {
			ct = &insights.CategoryTotal{CategoryID: t.CategoryID, Name: t.CategoryName}
			byID[t.CategoryID] = ct
		}
		ct.Total += t.Amount
		if ct.Name == "" {
			ct.Name = t.CategoryName
		}
	}

	out := make([]insights.CategoryTotal, 0, len(byID))
	for _, ct := range byID {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// categoryMonthlyAverages flattens expenses into per-category monthly
// averages over the period.
func categoryMonthlyAverages(txs []model.Transaction, periodMonths int) []insights.CategoryExpense {
	if periodMonths < 1 {
		periodMonths = 1
	}
	totals := make(map[string]float64)
	names := make(map[string]string)
	for _, t := range txs {
		if t.Type != model.TransactionExpense {
			continue
		}
		totals[t.CategoryID] += t.Amount
		if names[t.CategoryID] == "" {
			names[t.CategoryID] = t.CategoryName
		}
	}

	out := make([]insights.CategoryExpense, 0, len(totals))
	for id, total := range totals {
		out = append(out, insights.CategoryExpense{
			CategoryID: id,
			Name:       names[id],
			MonthlyAvg: total / float64(periodMonths),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MonthlyAvg > out[j].MonthlyAvg })
	return out
}
