package insights

import (
	"fmt"
	"sort"

	"github.com/VitudevIA/projeto-financeiro-CURSOR-sub001/internal/model"
	"github.com/google/uuid"
)

// AnomalyOptions holds the tunable detection thresholds.
type AnomalyOptions struct {
	// HighSigma and CriticalSigma are how many standard deviations above
	// the category mean an amount must sit to earn each severity.
	HighSigma     float64
	CriticalSigma float64
	// MinSamples is the minimum number of transactions a category needs
	// before its variance is considered defined.
	MinSamples int
}

// DefaultAnomalyOptions returns the standard detection thresholds.
func DefaultAnomalyOptions() AnomalyOptions {
	return AnomalyOptions{
		HighSigma:     2,
		CriticalSigma: 3,
		MinSamples:    2,
	}
}

// AnomalyInput is the snapshot anomalies are detected over. The supplied
// budgets are expected to already be scoped to the same period as the
// transactions; the detector does not re-filter by month.
type AnomalyInput struct {
	Transactions []model.Transaction
	Budgets      []model.Budget
	PeriodMonths int
}

// DetectAnomalies scans for outliers with the default thresholds.
func DetectAnomalies(in AnomalyInput) []model.Anomaly {
	return DetectAnomaliesWith(in, DefaultAnomalyOptions())
}

// DetectAnomaliesWith flags expense transactions whose amounts sit far above
// their category's history, and categories whose period total blows past
// their budget. A transaction surfaces at most once, with its highest
// applicable severity. Output is ordered severity descending, then date
// descending.
func DetectAnomaliesWith(in AnomalyInput, opts AnomalyOptions) []model.Anomaly {
	byCategory := make(map[string][]model.Transaction)
	for _, t := range in.Transactions {
		if t.Type == model.TransactionExpense {
			byCategory[t.CategoryID] = append(byCategory[t.CategoryID], t)
		}
	}

	// Highest severity per transaction id.
	flagged := make(map[string]model.Anomaly)
	for categoryID, txs := range byCategory {
		if len(txs) < opts.MinSamples {
			continue
		}
		amounts := make([]float64, len(txs))
		for i, t := range txs {
			amounts[i] = t.Amount
		}
		m := mean(amounts)
		sd := stddev(amounts)
		if sd == 0 {
			continue
		}

		for _, t := range txs {
			var severity model.AnomalySeverity
			switch {
			case t.Amount > m+opts.CriticalSigma*sd:
				severity = model.SeverityCritical
			case t.Amount > m+opts.HighSigma*sd:
				severity = model.SeverityHigh
			default:
				continue
			}
			if existing, ok := flagged[t.ID]; ok && severityRank(existing.Severity) >= severityRank(severity) {
				continue
			}
			flagged[t.ID] = model.Anomaly{
				ID:            uuid.New().String(),
				TransactionID: t.ID,
				Severity:      severity,
				Title:         "Gasto fora do padrão",
				Description: fmt.Sprintf("A transação de %.2f em %s está muito acima da média da categoria (%.2f).",
					t.Amount, categoryLabel(t), m),
				Amount:     t.Amount,
				CategoryID: categoryID,
				Date:       t.Date,
			}
		}
	}

	anomalies := make([]model.Anomaly, 0, len(flagged))
	for _, a := range flagged {
		anomalies = append(anomalies, a)
	}
	anomalies = append(anomalies, budgetOverages(byCategory, in.Budgets)...)

	sort.Slice(anomalies, func(i, j int) bool {
		if anomalies[i].Severity != anomalies[j].Severity {
			return severityRank(anomalies[i].Severity) > severityRank(anomalies[j].Severity)
		}
		return anomalies[i].Date.After(anomalies[j].Date)
	})
	return anomalies
}

// budgetOverages flags each category whose period total exceeds the sum of
// its supplied budget limits. One anomaly per category.
func budgetOverages(byCategory map[string][]model.Transaction, budgets []model.Budget) []model.Anomaly {
	limits := make(map[string]float64)
	for _, b := range budgets {
		if b.LimitAmount > 0 {
			limits[b.CategoryID] += b.LimitAmount
		}
	}

	var anomalies []model.Anomaly
	for categoryID, txs := range byCategory {
		limit, ok := limits[categoryID]
		if !ok {
			continue
		}
		var total float64
		latest := txs[0]
		for _, t := range txs {
			total += t.Amount
			if t.Date.After(latest.Date) {
				latest = t
			}
		}
		if total <= limit {
			continue
		}
		anomalies = append(anomalies, model.Anomaly{
			ID:       uuid.New().String(),
			Severity: model.SeverityModerate,
			Title:    "Orçamento estourado",
			Description: fmt.Sprintf("Os gastos da categoria %s somaram %.2f no período, acima do limite de %.2f.",
				categoryLabel(latest), total, limit),
			Amount:     total,
			CategoryID: categoryID,
			Date:       latest.Date,
		})
	}
	return anomalies
}

func severityRank(s model.AnomalySeverity) int {
	switch s {
	case model.SeverityCritical:
		return 3
	case model.SeverityHigh:
		return 2
	case model.SeverityModerate:
		return 1
	default:
		return 0
	}
}

func categoryLabel(t model.Transaction) string {
	if t.CategoryName != "" {
		return t.CategoryName
	}
	return t.CategoryID
}
