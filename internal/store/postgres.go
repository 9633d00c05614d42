package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/VitudevIA/projeto-financeiro-CURSOR-sub001/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS transactions (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		amount DECIMAL(12,2) NOT NULL CHECK (amount >= 0),
		type VARCHAR(10) NOT NULL,
		date DATE NOT NULL,
		category_id TEXT NOT NULL,
		category_name TEXT,
		description TEXT,
		card_id TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions (user_id, date);

	CREATE TABLE IF NOT EXISTS budgets (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		category_id TEXT NOT NULL,
		limit_amount DECIMAL(12,2) NOT NULL CHECK (limit_amount >= 0),
		month DATE NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_budgets_user_month ON budgets (user_id, month);

	CREATE TABLE IF NOT EXISTS cards (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		type VARCHAR(10) NOT NULL,
		credit_limit DECIMAL(12,2) DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS balances (
		user_id TEXT PRIMARY KEY,
		balance DECIMAL(12,2) NOT NULL DEFAULT 0,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
`

// PostgresStore implements Store on a relational database through the pgx
// stdlib adapter.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to the database and bootstraps the schema.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	config, err := pgx.ParseConfig(normalizeDatabaseURL(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	db := stdlib.OpenDB(*config)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (p *PostgresStore) Close() error {
	return p.db.Close()
}

// normalizeDatabaseURL rewrites postgresql:// to postgres:// and defaults
// sslmode for local setups that omit it.
func normalizeDatabaseURL(databaseURL string) string {
	if strings.HasPrefix(databaseURL, "postgresql://") {
		databaseURL = "postgres://" + strings.TrimPrefix(databaseURL, "postgresql://")
	}
	if !strings.Contains(databaseURL, "sslmode=") {
		separator := "?"
		if strings.Contains(databaseURL, "?") {
			separator = "&"
		}
		databaseURL += separator + "sslmode=disable"
	}
	return databaseURL
}

func (p *PostgresStore) CreateTransaction(ctx context.Context, tx *model.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	query := `
		INSERT INTO transactions (id, user_id, amount, type, date, category_id, category_name, description, card_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := p.db.ExecContext(ctx, query,
		tx.ID, tx.UserID, tx.Amount, tx.Type, tx.Date, tx.CategoryID, tx.CategoryName, tx.Description, tx.CardID)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (p *PostgresStore) CreateBudget(ctx context.Context, budget *model.Budget) error {
	if budget.ID == "" {
		budget.ID = uuid.New().String()
	}
	query := `
		INSERT INTO budgets (id, user_id, category_id, limit_amount, month)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := p.db.ExecContext(ctx, query,
		budget.ID, budget.UserID, budget.CategoryID, budget.LimitAmount, budget.Month)
	if err != nil {
		return fmt.Errorf("failed to create budget: %w", err)
	}
	return nil
}

func (p *PostgresStore) CreateCard(ctx context.Context, card *model.Card) error {
	if card.ID == "" {
		card.ID = uuid.New().String()
	}
	query := `
		INSERT INTO cards (id, user_id, type, credit_limit)
		VALUES ($1, $2, $3, $4)`
	_, err := p.db.ExecContext(ctx, query, card.ID, card.UserID, card.Type, card.Limit)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

func (p *PostgresStore) SetBalance(ctx context.Context, userID string, balance float64) error {
	query := `
		INSERT INTO balances (user_id, balance, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE SET balance = $2, updated_at = CURRENT_TIMESTAMP`
	if _, err := p.db.ExecContext(ctx, query, userID, balance); err != nil {
		return fmt.Errorf("failed to set balance: %w", err)
	}
	return nil
}

func (p *PostgresStore) ListTransactions(ctx context.Context, userID string, from, to time.Time) ([]model.Transaction, error) {
	query := `
		SELECT id, user_id, amount, type, date, category_id,
		       COALESCE(category_name, ''), COALESCE(description, ''), COALESCE(card_id, '')
		FROM transactions
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date DESC`
	rows, err := p.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]model.Transaction, 0)
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Type, &t.Date,
			&t.CategoryID, &t.CategoryName, &t.Description, &t.CardID); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (p *PostgresStore) ListBudgets(ctx context.Context, userID string, from, to time.Time) ([]model.Budget, error) {
	query := `
		SELECT id, user_id, category_id, limit_amount, month
		FROM budgets
		WHERE user_id = $1 AND month >= date_trunc('month', $2::date) AND month <= $3
		ORDER BY month`
	rows, err := p.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	budgets := make([]model.Budget, 0)
	for rows.Next() {
		var b model.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.LimitAmount, &b.Month); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (p *PostgresStore) ListCards(ctx context.Context, userID string) ([]model.Card, error) {
	query := `SELECT id, user_id, type, credit_limit FROM cards WHERE user_id = $1 ORDER BY id`
	rows, err := p.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	cards := make([]model.Card, 0)
	for rows.Next() {
		var c model.Card
		if err := rows.Scan(&c.ID, &c.UserID, &c.Type, &c.Limit); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (p *PostgresStore) GetBalance(ctx context.Context, userID string) (float64, error) {
	var balance float64
	err := p.db.QueryRowContext(ctx, `SELECT balance FROM balances WHERE user_id = $1`, userID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}
