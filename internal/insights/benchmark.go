package insights

import (
	"sort"
	"strings"

	"github.com/VitudevIA/projeto-financeiro-CURSOR-sub001/internal/model"
)

// CategoryExpense is a user category's monthly average spend.
type CategoryExpense struct {
	CategoryID string
	Name       string
	MonthlyAvg float64
}

// BenchmarkInput is the aggregated spending the comparison runs over.
// Segment, when set, adjusts the market references (e.g. "familia",
// "jovem").
type BenchmarkInput struct {
	CategoryExpenses []CategoryExpense
	Segment          string
}

// BenchmarkTable holds the reference market distribution. Averages are
// monthly amounts keyed by normalized category name.
type BenchmarkTable struct {
	MarketAverages     map[string]float64
	DefaultAverage     float64
	SegmentMultipliers map[string]float64
}

// DefaultBenchmarkTable returns the built-in market reference distribution.
func DefaultBenchmarkTable() BenchmarkTable {
	return BenchmarkTable{
		MarketAverages: map[string]float64{
			"alimentacao": 850,
			"mercado":     750,
			"moradia":     1600,
			"transporte":  450,
			"saude":       380,
			"educacao":    420,
			"lazer":       320,
			"vestuario":   220,
			"servicos":    260,
			"assinaturas": 120,
		},
		DefaultAverage: 300,
		SegmentMultipliers: map[string]float64{
			"jovem":   0.75,
			"familia": 1.35,
			"senior":  0.90,
		},
	}
}

// GenerateBenchmark compares user category spending against the built-in
// market references.
func GenerateBenchmark(in BenchmarkInput) model.Benchmark {
	return GenerateBenchmarkWith(in, DefaultBenchmarkTable())
}

// GenerateBenchmarkWith scores each category by the user/market spend ratio
// (lower is better, capped at 100) and weights the overall score by each
// category's share of total user expenses. No expenses at all yields the
// neutral default of 50 with an empty breakdown.
func GenerateBenchmarkWith(in BenchmarkInput, table BenchmarkTable) model.Benchmark {
	multiplier := 1.0
	if m, ok := table.SegmentMultipliers[strings.ToLower(in.Segment)]; ok && m > 0 {
		multiplier = m
	}

	var totalUser float64
	for _, ce := range in.CategoryExpenses {
		if ce.MonthlyAvg > 0 {
			totalUser += ce.MonthlyAvg
		}
	}
	if totalUser <= 0 {
		return model.Benchmark{
			OverallScore:       50,
			CategoryBenchmarks: []model.CategoryBenchmark{},
			Message:            "sem despesas no período para comparar com o mercado",
		}
	}

	var (
		benchmarks  []model.CategoryBenchmark
		overall     float64
		totalMarket float64
	)
	for _, ce := range in.CategoryExpenses {
		if ce.MonthlyAvg <= 0 {
			continue
		}
		market := table.marketAverage(ce, multiplier)
		totalMarket += market

		ratio := ce.MonthlyAvg / market
		score := clamp(150-100*ratio, 0, 100)
		weight := ce.MonthlyAvg / totalUser
		overall += score * weight

		benchmarks = append(benchmarks, model.CategoryBenchmark{
			CategoryID:     ce.CategoryID,
			UserMonthlyAvg: ce.MonthlyAvg,
			MarketAvg:      market,
			Ratio:          ratio,
			Score:          score,
			Status:         marketStatus(ratio),
		})
	}

	sort.Slice(benchmarks, func(i, j int) bool {
		return benchmarks[i].UserMonthlyAvg > benchmarks[j].UserMonthlyAvg
	})
	return model.Benchmark{
		OverallScore:       overall,
		CategoryBenchmarks: benchmarks,
		TotalUserExpenses:  totalUser,
		TotalMarketAverage: totalMarket,
	}
}

// marketAverage resolves the reference value for a category, falling back
// to the table default when no equivalent category exists.
func (t BenchmarkTable) marketAverage(ce CategoryExpense, multiplier float64) float64 {
	for _, key := range []string{ce.Name, ce.CategoryID} {
		if avg, ok := t.MarketAverages[normalizeCategory(key)]; ok {
			return avg * multiplier
		}
	}
	return t.DefaultAverage * multiplier
}

func marketStatus(ratio float64) string {
	switch {
	case ratio < 0.9:
		return "below_market"
	case ratio <= 1.1:
		return "at_market"
	default:
		return "above_market"
	}
}

// normalizeCategory lowercases and strips the accents that appear in the
// product's default category names so lookups survive either spelling.
func normalizeCategory(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	replacer := strings.NewReplacer(
		"á", "a", "ã", "a", "â", "a",
		"é", "e", "ê", "e",
		"í", "i",
		"ó", "o", "õ", "o", "ô", "o",
		"ú", "u",
		"ç", "c",
	)
	return replacer.Replace(name)
}
