package insights

import (
	"fmt"
	"testing"
	"time"

	"github.com/VitudevIA/projeto-financeiro-CURSOR-sub001/internal/model"
)

func TestDetectAnomaliesAmountOutlier(t *testing.T) {
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	// 12 consistent purchases plus one far outlier in the same category.
	var txs []model.Transaction
	for i := 0; i < 12; i++ {
		txs = append(txs, expenseTx(fmt.Sprintf("coffee-%d", i), 100, "alimentacao", date.AddDate(0, 0, i)))
	}
	txs = append(txs, expenseTx("splurge", 500, "alimentacao", date.AddDate(0, 0, 15)))

	anomalies := DetectAnomalies(AnomalyInput{Transactions: txs, PeriodMonths: 3})

	if len(anomalies) != 1 {
		t.Fatalf("expected exactly 1 anomaly, got %d", len(anomalies))
	}
	if anomalies[0].TransactionID != "splurge" {
		t.Errorf("expected the outlier transaction to be flagged, got %q", anomalies[0].TransactionID)
	}
	if anomalies[0].Severity != model.SeverityCritical {
		t.Errorf("expected critical severity for an amount far past 3 sigma, got %q", anomalies[0].Severity)
	}
}

func TestDetectAnomaliesWithinOneSigmaNeverFlagged(t *testing.T) {
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	// Alternating 450/550 keeps every amount exactly one sigma from the
	// 500 mean; nothing should be flagged.
	var txs []model.Transaction
	for i := 0; i < 10; i++ {
		amount := 450.0
		if i%2 == 0 {
			amount = 550.0
		}
		txs = append(txs, expenseTx(fmt.Sprintf("tx-%d", i), amount, "mercado", date.AddDate(0, 0, i)))
	}

	anomalies := DetectAnomalies(AnomalyInput{Transactions: txs, PeriodMonths: 1})

	if len(anomalies) != 0 {
		t.Fatalf("expected no anomalies for amounts within one sigma, got %d", len(anomalies))
	}
}

func TestDetectAnomaliesBelowMeanNeverFlagged(t *testing.T) {
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	// Ten transactions averaging 500 with spread, plus one small 50
	// purchase. Small is below the mean, not an outlier.
	var txs []model.Transaction
	for i := 0; i < 10; i++ {
		amount := 450.0
		if i%2 == 0 {
			amount = 550.0
		}
		txs = append(txs, expenseTx(fmt.Sprintf("tx-%d", i), amount, "mercado", date.AddDate(0, 0, i)))
	}
	txs = append(txs, expenseTx("small", 50, "mercado", date.AddDate(0, 0, 12)))

	anomalies := DetectAnomalies(AnomalyInput{Transactions: txs, PeriodMonths: 1})

	for _, a := range anomalies {
		if a.TransactionID == "small" {
			t.Fatalf("below-mean transaction must never be flagged, got severity %q", a.Severity)
		}
	}
}

func TestDetectAnomaliesBudgetOverage(t *testing.T) {
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	txs := []model.Transaction{
		expenseTx("e1", 400, "lazer", date),
		expenseTx("e2", 450, "lazer", date.AddDate(0, 0, 10)),
	}
	budgets := []model.Budget{
		{ID: "b1", CategoryID: "lazer", LimitAmount: 600, Month: date},
	}

	anomalies := DetectAnomalies(AnomalyInput{Transactions: txs, Budgets: budgets, PeriodMonths: 1})

	if len(anomalies) != 1 {
		t.Fatalf("expected 1 budget-overage anomaly, got %d", len(anomalies))
	}
	a := anomalies[0]
	if a.Severity != model.SeverityModerate {
		t.Errorf("expected moderate severity for a budget overage, got %q", a.Severity)
	}
	if a.CategoryID != "lazer" {
		t.Errorf("expected category lazer, got %q", a.CategoryID)
	}
	if a.Amount != 850 {
		t.Errorf("expected the category period total 850, got %.2f", a.Amount)
	}
}

func TestDetectAnomaliesSingleDataPoint(t *testing.T) {
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	// One transaction gives the category undefined variance: no statistical
	// anomaly, but budget-overage detection still applies.
	txs := []model.Transaction{expenseTx("only", 900, "educacao", date)}
	budgets := []model.Budget{{ID: "b1", CategoryID: "educacao", LimitAmount: 500, Month: date}}

	anomalies := DetectAnomalies(AnomalyInput{Transactions: txs, Budgets: budgets, PeriodMonths: 1})

	if len(anomalies) != 1 {
		t.Fatalf("expected only the budget anomaly, got %d anomalies", len(anomalies))
	}
	if anomalies[0].Severity != model.SeverityModerate {
		t.Errorf("expected moderate severity, got %q", anomalies[0].Severity)
	}
}

func TestDetectAnomaliesOrderingAndUniqueness(t *testing.T) {
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	var txs []model.Transaction
	for i := 0; i < 12; i++ {
		txs = append(txs, expenseTx(fmt.Sprintf("base-%d", i), 100, "alimentacao", date.AddDate(0, 0, i)))
	}
	txs = append(txs, expenseTx("huge", 600, "alimentacao", date.AddDate(0, 0, 20)))
	// Separate category with a budget overage.
	txs = append(txs, expenseTx("over", 800, "lazer", date.AddDate(0, 0, 5)))
	txs = append(txs, expenseTx("over2", 100, "lazer", date.AddDate(0, 0, 6)))
	budgets := []model.Budget{{ID: "b1", CategoryID: "lazer", LimitAmount: 500, Month: date}}

	anomalies := DetectAnomalies(AnomalyInput{Transactions: txs, Budgets: budgets, PeriodMonths: 1})

	if len(anomalies) < 2 {
		t.Fatalf("expected both statistical and budget anomalies, got %d", len(anomalies))
	}

	// Severity must be non-increasing.
	for i := 1; i < len(anomalies); i++ {
		if severityRank(anomalies[i].Severity) > severityRank(anomalies[i-1].Severity) {
			t.Errorf("anomalies out of severity order at index %d: %q after %q",
				i, anomalies[i].Severity, anomalies[i-1].Severity)
		}
	}

	// No duplicate transaction ids.
	seen := make(map[string]bool)
	for _, a := range anomalies {
		if a.TransactionID == "" {
			continue
		}
		if seen[a.TransactionID] {
			t.Errorf("duplicate transaction id %q in anomaly list", a.TransactionID)
		}
		seen[a.TransactionID] = true
	}
}
