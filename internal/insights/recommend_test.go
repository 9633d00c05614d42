package insights

import (
	"testing"

	"github.com/VitudevIA/projeto-financeiro-CURSOR-sub001/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recommendationInput(txs []model.Transaction, budgets []model.Budget) RecommendationInput {
	var income, expenses float64
	byCategory := make(map[string]float64)
	for _, t := range txs {
		switch t.Type {
		case model.TransactionIncome:
			income += t.Amount
		case model.TransactionExpense:
			expenses += t.Amount
			byCategory[t.CategoryID] += t.Amount
		}
	}
	var top []CategoryTotal
	for id, total := range byCategory {
		top = append(top, CategoryTotal{CategoryID: id, Total: total})
	}
	health := CalculateHealthScore(HealthInput{Transactions: txs, Budgets: budgets, PeriodMonths: 3})
	return RecommendationInput{
		Transactions:  txs,
		Budgets:       budgets,
		HealthScore:   health,
		TotalIncome:   income,
		TotalExpenses: expenses,
		TopCategories: top,
	}
}

func TestGenerateRecommendationsOverspending(t *testing.T) {
	txs := []model.Transaction{
		incomeTx("i1", 4000, monthDate(0, 1)),
		expenseTx("e1", 4200, "moradia", monthDate(0, 5)),
	}

	recs := GenerateRecommendations(recommendationInput(txs, nil))

	require.NotEmpty(t, recs)
	var found *model.Recommendation
	for i := range recs {
		if recs[i].RuleID == "gastos-acima-da-renda" {
			found = &recs[i]
		}
	}
	require.NotNil(t, found, "expected the overspending rule to fire")
	assert.Equal(t, model.PriorityHigh, found.Priority)
	assert.Equal(t, model.RecommendSpending, found.Category)
	assert.NotEmpty(t, found.ActionSteps)
	assert.Greater(t, found.Impact.PotentialSavings, 0.0)
}

func TestGenerateRecommendationsNoBudgets(t *testing.T) {
	recs := GenerateRecommendations(recommendationInput(steadyMonths(3), nil))

	fired := false
	for _, r := range recs {
		if r.RuleID == "sem-orcamentos" {
			fired = true
			assert.Equal(t, model.RecommendBudget, r.Category)
		}
	}
	assert.True(t, fired, "expected the missing-budgets rule to fire")
}

func TestGenerateRecommendationsBudgetExceededPerCategory(t *testing.T) {
	txs := steadyMonths(3)
	budgets := []model.Budget{
		{ID: "b1", CategoryID: "alimentacao", LimitAmount: 1000, Month: monthDate(0, 1)},
		{ID: "b2", CategoryID: "moradia", LimitAmount: 5000, Month: monthDate(0, 1)},
	}

	recs := GenerateRecommendations(recommendationInput(txs, budgets))

	var exceeded []model.Recommendation
	for _, r := range recs {
		if r.RuleID == "orcamento-estourado" {
			exceeded = append(exceeded, r)
		}
	}
	// alimentacao spends 3600 against a 1000 limit; moradia stays under.
	require.Len(t, exceeded, 1)
	assert.Contains(t, exceeded[0].Title, "alimentacao")
	assert.InDelta(t, 2600, exceeded[0].Impact.PotentialSavings, 0.01)
}

func TestGenerateRecommendationsDedupeAndOrdering(t *testing.T) {
	txs := []model.Transaction{
		incomeTx("i1", 4000, monthDate(0, 1)),
		expenseTx("e1", 3000, "moradia", monthDate(0, 5)),
		expenseTx("e2", 900, "lazer", monthDate(0, 8)),
	}

	recs := GenerateRecommendations(recommendationInput(txs, nil))
	require.NotEmpty(t, recs)

	seen := make(map[string]bool)
	for _, r := range recs {
		key := r.RuleID + "|" + recKeyCategory(r)
		assert.False(t, seen[key], "duplicate (rule, category) pair %q", key)
		seen[key] = true
	}

	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, priorityRank(recs[i-1].Priority), priorityRank(recs[i].Priority),
			"recommendations must be sorted by priority descending")
		if recs[i-1].Priority == recs[i].Priority {
			assert.GreaterOrEqual(t, recs[i-1].Impact.PotentialSavings, recs[i].Impact.PotentialSavings,
				"ties must be sorted by potential savings descending")
		}
	}
}

func TestGenerateRecommendationsHealthySituation(t *testing.T) {
	// Comfortable savings, budgets in place, spread spending: only the
	// low-urgency rules may fire.
	txs := steadyMonths(3)
	budgets := []model.Budget{
		{ID: "b1", CategoryID: "alimentacao", LimitAmount: 5000, Month: monthDate(0, 1)},
	}

	recs := GenerateRecommendations(recommendationInput(txs, budgets))

	for _, r := range recs {
		assert.NotEqual(t, model.PriorityHigh, r.Priority,
			"unexpected high-priority recommendation %q for a healthy snapshot", r.RuleID)
	}
}

// recKeyCategory extracts the per-category part of the dedupe key from the
// emitted recommendation; rules without a category component use "".
func recKeyCategory(r model.Recommendation) string {
	return r.Title
}
