package store

import (
	"context"
	"time"

	"github.com/VitudevIA/projeto-financeiro-CURSOR-sub001/internal/model"
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=store

// Store is the data-access collaborator the insights service reads its
// snapshots from. Implementations scope every read to the given user; the
// analytic core performs no authorization of its own.
type Store interface {
	// Snapshot reads.
	ListTransactions(ctx context.Context, userID string, from, to time.Time) ([]model.Transaction, error)
	ListBudgets(ctx context.Context, userID string, from, to time.Time) ([]model.Budget, error)
	ListCards(ctx context.Context, userID string) ([]model.Card, error)
	GetBalance(ctx context.Context, userID string) (float64, error)

	// Writes, used by the seeder and tests.
	CreateTransaction(ctx context.Context, tx *model.Transaction) error
	CreateBudget(ctx context.Context, budget *model.Budget) error
	CreateCard(ctx context.Context, card *model.Card) error
	SetBalance(ctx context.Context, userID string, balance float64) error
}
