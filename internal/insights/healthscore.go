package insights

import (
	"math"

	"github.com/VitudevIA/projeto-financeiro-CURSOR-sub001/internal/model"
)

// Sub-score ceilings. They sum to 100.
const (
	maxControleGastos   = 30.0
	maxPoupancaReservas = 25.0
	maxPrevisibilidade  = 20.0
	maxDividas          = 15.0
	maxDiversificacao   = 10.0
)

// ScoreWeights holds the tunable thresholds behind the health score. The
// zero value is not usable; start from DefaultScoreWeights.
type ScoreWeights struct {
	// HealthySpendRatio is the expense/income ratio that still earns full
	// marks on spending control.
	HealthySpendRatio float64
	// TargetSavingsRate is the savings rate that earns full marks.
	TargetSavingsRate float64
	// ReserveTargetDays is the emergency-reserve size, in days of average
	// spend, that earns full reserve credit.
	ReserveTargetDays float64
	// TrendEpsilon is the score delta below which two periods count as equal.
	TrendEpsilon float64
}

// DefaultScoreWeights returns the standard scoring thresholds.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		HealthySpendRatio: 0.70,
		TargetSavingsRate: 0.20,
		ReserveTargetDays: 90,
		TrendEpsilon:      1.0,
	}
}

// HealthInput is the snapshot the health score is computed from.
type HealthInput struct {
	Transactions []model.Transaction
	Budgets      []model.Budget
	Cards        []model.Card
	// CurrentBalance is the account balance acting as an emergency reserve.
	CurrentBalance float64
	// PreviousTransactions, when supplied, drive the trend comparison.
	PreviousTransactions []model.Transaction
	PeriodMonths         int
}

// CalculateHealthScore computes the composite 0-100 health score with the
// default weights.
func CalculateHealthScore(in HealthInput) model.HealthScore {
	return CalculateHealthScoreWith(in, DefaultScoreWeights())
}

// CalculateHealthScoreWith computes the composite score with explicit
// weights. It is a pure function: degenerate inputs produce neutral or
// floor results, never errors.
func CalculateHealthScoreWith(in HealthInput, w ScoreWeights) model.HealthScore {
	breakdown := scoreBreakdown(in.Transactions, in.Cards, in.CurrentBalance, in.PeriodMonths, w)
	raw := breakdown.Sum()

	trend := model.TrendStable
	if len(in.PreviousTransactions) > 0 {
		prev := scoreBreakdown(in.PreviousTransactions, in.Cards, in.CurrentBalance, in.PeriodMonths, w)
		switch diff := raw - prev.Sum(); {
		case diff > w.TrendEpsilon:
			trend = model.TrendUp
		case diff < -w.TrendEpsilon:
			trend = model.TrendDown
		}
	}

	score := int(clamp(math.Round(raw), 0, 100))
	return model.HealthScore{
		Score:     score,
		Breakdown: breakdown,
		Trend:     trend,
		Category:  scoreCategory(score),
	}
}

// scoreCategory maps a score to its qualitative band with fixed breakpoints.
func scoreCategory(score int) model.ScoreCategory {
	switch {
	case score >= 80:
		return model.ScoreExcellent
	case score >= 60:
		return model.ScoreGood
	case score >= 40:
		return model.ScoreFair
	case score >= 20:
		return model.ScorePoor
	default:
		return model.ScoreCritical
	}
}

func scoreBreakdown(txs []model.Transaction, cards []model.Card, balance float64, periodMonths int, w ScoreWeights) model.ScoreBreakdown {
	if len(txs) == 0 {
		// No data to judge: neutral midpoint of every component, summing
		// to a score of 50.
		return model.ScoreBreakdown{
			ControleGastos:   maxControleGastos / 2,
			PoupancaReservas: maxPoupancaReservas / 2,
			Previsibilidade:  maxPrevisibilidade / 2,
			Dividas:          maxDividas / 2,
			Diversificacao:   maxDiversificacao / 2,
		}
	}
	if periodMonths <= 0 {
		periodMonths = 1
	}

	var totalIncome, totalExpenses float64
	for _, t := range txs {
		switch t.Type {
		case model.TransactionIncome:
			totalIncome += t.Amount
		case model.TransactionExpense:
			totalExpenses += t.Amount
		}
	}

	return model.ScoreBreakdown{
		ControleGastos:   spendingControlScore(totalIncome, totalExpenses, w),
		PoupancaReservas: savingsReserveScore(totalIncome, totalExpenses, balance, periodMonths, w),
		Previsibilidade:  predictabilityScore(txs),
		Dividas:          debtScore(txs, cards),
		Diversificacao:   diversificationScore(txs, totalExpenses),
	}
}

// spendingControlScore rewards spending at or below the healthy ratio of
// income and reaches zero when expenses meet or exceed income.
func spendingControlScore(income, expenses float64, w ScoreWeights) float64 {
	if income <= 0 {
		return 0
	}
	ratio := expenses / income
	if ratio <= w.HealthySpendRatio {
		return maxControleGastos
	}
	return maxControleGastos * clamp((1-ratio)/(1-w.HealthySpendRatio), 0, 1)
}

// savingsReserveScore combines the savings rate against its target with a
// reserve credit expressed in days of average daily spend.
func savingsReserveScore(income, expenses, balance float64, periodMonths int, w ScoreWeights) float64 {
	if income <= 0 {
		return 0
	}
	savingsRate := (income - expenses) / income
	savingsPart := (maxPoupancaReservas * 0.6) * clamp(savingsRate/w.TargetSavingsRate, 0, 1)

	reserveMax := maxPoupancaReservas * 0.4
	var reservePart float64
	avgDailySpend := expenses / (float64(periodMonths) * 30)
	switch {
	case avgDailySpend <= 0:
		if balance > 0 {
			reservePart = reserveMax
		}
	case balance > 0:
		reserveDays := balance / avgDailySpend
		reservePart = reserveMax * clamp(reserveDays/w.ReserveTargetDays, 0, 1)
	}
	return savingsPart + reservePart
}

// predictabilityScore is the inverse of the coefficient of variation of
// monthly expense totals: stable months score high.
func predictabilityScore(txs []model.Transaction) float64 {
	totals := monthlyExpenseTotals(txs)
	if len(totals) < 2 {
		return maxPrevisibilidade / 2
	}
	m := mean(totals)
	if m <= 0 {
		return maxPrevisibilidade
	}
	cv := stddev(totals) / m
	return maxPrevisibilidade * clamp(1-cv, 0, 1)
}

// debtScore rewards low credit-card utilization. Without credit cards there
// is nothing to over-extend, which scores neutral-high rather than perfect.
func debtScore(txs []model.Transaction, cards []model.Card) float64 {
	var totalLimit float64
	creditCards := make(map[string]bool)
	for _, c := range cards {
		if c.Type == model.CardCredit {
			creditCards[c.ID] = true
			totalLimit += c.Limit
		}
	}
	if totalLimit <= 0 {
		return maxDividas * 0.8
	}

	var creditExpenses float64
	for _, t := range txs {
		if t.Type == model.TransactionExpense && creditCards[t.CardID] {
			creditExpenses += t.Amount
		}
	}
	utilization := creditExpenses / totalLimit
	return maxDividas * clamp(1-utilization, 0, 1)
}

// diversificationScore is the inverse of a Herfindahl-style concentration
// index over category expense shares.
func diversificationScore(txs []model.Transaction, totalExpenses float64) float64 {
	if totalExpenses <= 0 {
		return maxDiversificacao / 2
	}
	byCategory := make(map[string]float64)
	for _, t := range txs {
		if t.Type == model.TransactionExpense {
			byCategory[t.CategoryID] += t.Amount
		}
	}
	var concentration float64
	for _, amount := range byCategory {
		share := amount / totalExpenses
		concentration += share * share
	}
	return maxDiversificacao * clamp(1-concentration, 0, 1)
}

// monthlyExpenseTotals buckets expense amounts into calendar months and
// returns the totals ordered by month.
func monthlyExpenseTotals(txs []model.Transaction) []float64 {
	return bucketTotals(monthlyTotals(txs, model.TransactionExpense))
}
