package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/VitudevIA/projeto-financeiro-CURSOR-sub001/internal/model"
	"github.com/google/uuid"
)

// MemoryStore implements Store with in-memory maps. Used for local
// development and tests.
type MemoryStore struct {
	mu sync.RWMutex

	transactions map[string]model.Transaction
	budgets      map[string]model.Budget
	cards        map[string]model.Card
	balances     map[string]float64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions: make(map[string]model.Transaction),
		budgets:      make(map[string]model.Budget),
		cards:        make(map[string]model.Card),
		balances:     make(map[string]float64),
	}
}

func (m *MemoryStore) CreateTransaction(ctx context.Context, tx *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	m.transactions[tx.ID] = *tx
	return nil
}

func (m *MemoryStore) CreateBudget(ctx context.Context, budget *model.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if budget.ID == "" {
		budget.ID = uuid.New().String()
	}
	m.budgets[budget.ID] = *budget
	return nil
}

func (m *MemoryStore) CreateCard(ctx context.Context, card *model.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if card.ID == "" {
		card.ID = uuid.New().String()
	}
	m.cards[card.ID] = *card
	return nil
}

func (m *MemoryStore) SetBalance(ctx context.Context, userID string, balance float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.balances[userID] = balance
	return nil
}

func (m *MemoryStore) ListTransactions(ctx context.Context, userID string, from, to time.Time) ([]model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	txs := make([]model.Transaction, 0)
	for _, tx := range m.transactions {
		if userID != "" && tx.UserID != userID {
			continue
		}
		if !from.IsZero() && tx.Date.Before(from) {
			continue
		}
		if !to.IsZero() && tx.Date.After(to) {
			continue
		}
		txs = append(txs, tx)
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].Date.After(txs[j].Date) })
	return txs, nil
}

func (m *MemoryStore) ListBudgets(ctx context.Context, userID string, from, to time.Time) ([]model.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	budgets := make([]model.Budget, 0)
	for _, b := range m.budgets {
		if userID != "" && b.UserID != userID {
			continue
		}
		if !from.IsZero() && b.Month.Before(monthFloor(from)) {
			continue
		}
		if !to.IsZero() && b.Month.After(to) {
			continue
		}
		budgets = append(budgets, b)
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].Month.Before(budgets[j].Month) })
	return budgets, nil
}

func (m *MemoryStore) ListCards(ctx context.Context, userID string) ([]model.Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cards := make([]model.Card, 0)
	for _, c := range m.cards {
		if userID != "" && c.UserID != userID {
			continue
		}
		cards = append(cards, c)
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
	return cards, nil
}

func (m *MemoryStore) GetBalance(ctx context.Context, userID string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.balances[userID], nil
}

// monthFloor truncates a time to the first day of its month, so a budget
// stamped on the first of the month matches a range starting mid-month.
func monthFloor(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
