package insights

import (
	"sort"
	"time"

	"github.com/VitudevIA/projeto-financeiro-CURSOR-sub001/internal/model"
)

// ForecastOptions holds the tunable forecasting parameters.
type ForecastOptions struct {
	// IntervalMultiplier scales the historical stddev into the confidence
	// interval margin.
	IntervalMultiplier float64
	// HighConfidenceMargin and MediumConfidenceMargin are the
	// margin/prediction ratios below which the respective labels apply.
	HighConfidenceMargin   float64
	MediumConfidenceMargin float64
	// MinHistoryMonths is the minimum history needed to project at all.
	MinHistoryMonths int
	// MaxHorizonMonths caps how far ahead a forecast reaches.
	MaxHorizonMonths int
}

// DefaultForecastOptions returns the standard forecasting parameters.
func DefaultForecastOptions() ForecastOptions {
	return ForecastOptions{
		IntervalMultiplier:     1.5,
		HighConfidenceMargin:   0.15,
		MediumConfidenceMargin: 0.30,
		MinHistoryMonths:       3,
		MaxHorizonMonths:       6,
	}
}

// ForecastInput is the history a forecast is projected from.
type ForecastInput struct {
	Transactions  []model.Transaction
	HorizonMonths int
}

// Forecast projects the next months of income and expenses with the default
// options.
func Forecast(in ForecastInput) model.ForecastResult {
	return ForecastWith(in, DefaultForecastOptions())
}

// ForecastWith fits a least-squares linear trend over monthly expense totals
// and projects it forward. Income is held at its historical average rather
// than trend-fitted. Too little history yields an empty result with a
// message, never an error.
func ForecastWith(in ForecastInput, opts ForecastOptions) model.ForecastResult {
	horizon := in.HorizonMonths
	if horizon < 1 {
		horizon = 1
	}
	if horizon > opts.MaxHorizonMonths {
		horizon = opts.MaxHorizonMonths
	}

	expenseBuckets := monthlyTotals(in.Transactions, model.TransactionExpense)
	if len(expenseBuckets) < opts.MinHistoryMonths {
		return model.ForecastResult{
			Periods: []model.ForecastPeriod{},
			Message: "at least 3 months of history are required to build a forecast",
		}
	}

	expenses := make([]float64, len(expenseBuckets))
	for i, b := range expenseBuckets {
		expenses[i] = b.total
	}
	slope, intercept := linearRegression(expenses)
	sigma := stddev(expenses)
	margin := opts.IntervalMultiplier * sigma

	incomeAvg := mean(bucketTotals(monthlyTotals(in.Transactions, model.TransactionIncome)))

	n := len(expenses)
	lastMonth := expenseBuckets[n-1].month
	periods := make([]model.ForecastPeriod, 0, horizon)
	for i := 1; i <= horizon; i++ {
		predicted := intercept + slope*float64(n+i-1)
		if predicted < 0 {
			predicted = 0
		}
		periods = append(periods, model.ForecastPeriod{
			Month:             lastMonth.AddDate(0, i, 0),
			PredictedExpenses: predicted,
			PredictedIncome:   incomeAvg,
			Confidence:        confidenceLabel(predicted, margin, opts),
			ConfidenceInterval: model.ConfidenceInterval{
				Min: clamp(predicted-margin, 0, predicted),
				Max: predicted + margin,
			},
		})
	}
	return model.ForecastResult{Periods: periods}
}

// confidenceLabel classifies how tight the interval is relative to the
// prediction. A zero prediction denominator is treated as 1.
func confidenceLabel(predicted, margin float64, opts ForecastOptions) model.ConfidenceLevel {
	denom := predicted
	if denom == 0 {
		denom = 1
	}
	switch ratio := margin / denom; {
	case ratio < opts.HighConfidenceMargin:
		return model.ConfidenceHigh
	case ratio < opts.MediumConfidenceMargin:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

type monthBucket struct {
	month time.Time
	total float64
}

// monthStart normalizes a date to midnight UTC on the first of its month.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// monthlyTotals buckets transactions of one type into calendar months,
// ordered oldest first. Months between the first and last transaction with
// no activity appear with a zero total so gaps do not shift the trend.
func monthlyTotals(txs []model.Transaction, tt model.TransactionType) []monthBucket {
	byMonth := make(map[time.Time]float64)
	var first, last time.Time
	for _, t := range txs {
		if t.Type != tt {
			continue
		}
		m := monthStart(t.Date)
		byMonth[m] += t.Amount
		if first.IsZero() || m.Before(first) {
			first = m
		}
		if last.IsZero() || m.After(last) {
			last = m
		}
	}
	if len(byMonth) == 0 {
		return nil
	}

	var buckets []monthBucket
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		buckets = append(buckets, monthBucket{month: m, total: byMonth[m]})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].month.Before(buckets[j].month) })
	return buckets
}

func bucketTotals(buckets []monthBucket) []float64 {
	totals := make([]float64, len(buckets))
	for i, b := range buckets {
		totals[i] = b.total
	}
	return totals
}
