// seed writes six months of deterministic demo data for a demo user, so the
// insight endpoints have something realistic to chew on locally.
//
// Usage:
//
//	DATABASE_URL=postgres://... go run ./cmd/seed
package main

import (
	"context"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/VitudevIA/projeto-financeiro-CURSOR-sub001/internal/config"
	"github.com/VitudevIA/projeto-financeiro-CURSOR-sub001/internal/model"
	"github.com/VitudevIA/projeto-financeiro-CURSOR-sub001/internal/store"
)

const demoUserID = "demo-user"

// monthlyExpense is a category's baseline spend; jitter adds realistic
// month-to-month variation around it.
type monthlyExpense struct {
	categoryID string
	name       string
	base       float64
	jitter     float64
}

var demoExpenses = []monthlyExpense{
	{"moradia", "Moradia", 1800, 0},
	{"alimentacao", "Alimentação", 950, 180},
	{"mercado", "Mercado", 780, 120},
	{"transporte", "Transporte", 420, 90},
	{"saude", "Saúde", 350, 150},
	{"lazer", "Lazer", 380, 160},
	{"assinaturas", "Assinaturas", 130, 0},
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.NewConfig()
	if err != nil {
		log.WithError(err).Fatal("loading configuration")
	}

	ctx := context.Background()
	st, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("connecting to postgres")
	}
	defer st.Close()

	// Fixed seed keeps repeated runs producing the same dataset.
	rng := rand.New(rand.NewSource(42))
	now := time.Now().UTC()

	var count int
	for offset := -5; offset <= 0; offset++ {
		month := now.AddDate(0, offset, 0)
		monthStart := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)

		income := model.Transaction{
			UserID:       demoUserID,
			Amount:       8500,
			Type:         model.TransactionIncome,
			Date:         monthStart,
			CategoryID:   "salario",
			CategoryName: "Salário",
			Description:  "Salário mensal",
		}
		if err := st.CreateTransaction(ctx, &income); err != nil {
			log.WithError(err).Fatal("seeding income")
		}
		count++

		for _, e := range demoExpenses {
			amount := e.base
			if e.jitter > 0 {
				amount += (rng.Float64()*2 - 1) * e.jitter
			}
			day := 2 + rng.Intn(24)
			tx := model.Transaction{
				UserID:       demoUserID,
				Amount:       float64(int(amount*100)) / 100,
				Type:         model.TransactionExpense,
				Date:         time.Date(month.Year(), month.Month(), day, 0, 0, 0, 0, time.UTC),
				CategoryID:   e.categoryID,
				CategoryName: e.name,
			}
			if err := st.CreateTransaction(ctx, &tx); err != nil {
				log.WithError(err).Fatal("seeding expense")
			}
			count++
		}

		// One spike in the current month so the anomaly detector has
		// something to flag.
		if offset == 0 {
			spike := model.Transaction{
				UserID:       demoUserID,
				Amount:       1450,
				Type:         model.TransactionExpense,
				Date:         time.Date(month.Year(), month.Month(), 14, 0, 0, 0, 0, time.UTC),
				CategoryID:   "lazer",
				CategoryName: "Lazer",
				Description:  "Show internacional",
			}
			if err := st.CreateTransaction(ctx, &spike); err != nil {
				log.WithError(err).Fatal("seeding spike")
			}
			count++
		}

		budget := model.Budget{
			UserID:      demoUserID,
			CategoryID:  "lazer",
			LimitAmount: 500,
			Month:       monthStart,
		}
		if err := st.CreateBudget(ctx, &budget); err != nil {
			log.WithError(err).Fatal("seeding budget")
		}
	}

	cards := []model.Card{
		{UserID: demoUserID, Type: model.CardCredit, Limit: 12000},
		{UserID: demoUserID, Type: model.CardDebit},
	}
	for i := range cards {
		if err := st.CreateCard(ctx, &cards[i]); err != nil {
			log.WithError(err).Fatal("seeding card")
		}
	}

	if err := st.SetBalance(ctx, demoUserID, 21500); err != nil {
		log.WithError(err).Fatal("seeding balance")
	}

	log.WithFields(logrus.Fields{
		"user_id":      demoUserID,
		"transactions": count,
	}).Info("demo data seeded")
}
