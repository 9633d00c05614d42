package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VitudevIA/projeto-financeiro-CURSOR-sub001/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMemoryStoreTransactions(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	txs := []model.Transaction{
		{UserID: "u1", Amount: 120, Type: model.TransactionExpense, Date: date(2025, time.March, 5), CategoryID: "alimentacao"},
		{UserID: "u1", Amount: 5000, Type: model.TransactionIncome, Date: date(2025, time.April, 1)},
		{UserID: "u1", Amount: 80, Type: model.TransactionExpense, Date: date(2025, time.May, 20), CategoryID: "lazer"},
		{UserID: "u2", Amount: 300, Type: model.TransactionExpense, Date: date(2025, time.April, 10)},
	}
	for i := range txs {
		require.NoError(t, s.CreateTransaction(ctx, &txs[i]))
		assert.NotEmpty(t, txs[i].ID, "create should assign an id")
	}

	t.Run("filters by user", func(t *testing.T) {
		got, err := s.ListTransactions(ctx, "u1", time.Time{}, time.Time{})
		require.NoError(t, err)
		assert.Len(t, got, 3)
		for _, tx := range got {
			assert.Equal(t, "u1", tx.UserID)
		}
	})

	t.Run("filters by date range", func(t *testing.T) {
		got, err := s.ListTransactions(ctx, "u1", date(2025, time.April, 1), date(2025, time.April, 30))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, model.TransactionIncome, got[0].Type)
	})

	t.Run("sorted newest first", func(t *testing.T) {
		got, err := s.ListTransactions(ctx, "u1", time.Time{}, time.Time{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		for i := 1; i < len(got); i++ {
			assert.False(t, got[i-1].Date.Before(got[i].Date))
		}
	})

	t.Run("unknown user yields empty slice", func(t *testing.T) {
		got, err := s.ListTransactions(ctx, "nobody", time.Time{}, time.Time{})
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestMemoryStoreBudgets(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	budgets := []model.Budget{
		{UserID: "u1", CategoryID: "alimentacao", LimitAmount: 900, Month: date(2025, time.March, 1)},
		{UserID: "u1", CategoryID: "lazer", LimitAmount: 400, Month: date(2025, time.April, 1)},
		{UserID: "u2", CategoryID: "alimentacao", LimitAmount: 700, Month: date(2025, time.April, 1)},
	}
	for i := range budgets {
		require.NoError(t, s.CreateBudget(ctx, &budgets[i]))
	}

	t.Run("range start mid-month still matches that month", func(t *testing.T) {
		// A budget stamped April 1 must survive a range starting April 15.
		got, err := s.ListBudgets(ctx, "u1", date(2025, time.April, 15), date(2025, time.June, 30))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "lazer", got[0].CategoryID)
	})

	t.Run("sorted by month ascending", func(t *testing.T) {
		got, err := s.ListBudgets(ctx, "u1", time.Time{}, time.Time{})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.True(t, got[0].Month.Before(got[1].Month))
	})
}

func TestMemoryStoreCardsAndBalance(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreateCard(ctx, &model.Card{UserID: "u1", Type: model.CardCredit, Limit: 3000}))
	require.NoError(t, s.CreateCard(ctx, &model.Card{UserID: "u1", Type: model.CardDebit}))
	require.NoError(t, s.CreateCard(ctx, &model.Card{UserID: "u2", Type: model.CardCredit, Limit: 1500}))

	cards, err := s.ListCards(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, cards, 2)

	balance, err := s.GetBalance(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, balance, "unset balance reads as zero")

	require.NoError(t, s.SetBalance(ctx, "u1", 12500.50))
	balance, err = s.GetBalance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 12500.50, balance)
}
