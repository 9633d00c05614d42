package insights

import (
	"fmt"
	"sort"

	"github.com/VitudevIA/projeto-financeiro-CURSOR-sub001/internal/model"
	"github.com/google/uuid"
)

// CategoryTotal is a category's aggregated expense total for the period.
type CategoryTotal struct {
	CategoryID string
	Name       string
	Total      float64
}

// RecommendationInput carries the signals the rule table inspects.
type RecommendationInput struct {
	Transactions  []model.Transaction
	Budgets       []model.Budget
	HealthScore   model.HealthScore
	TotalIncome   float64
	TotalExpenses float64
	TopCategories []CategoryTotal
}

// ruleContext is the precomputed view of the input shared by all rules.
type ruleContext struct {
	in              RecommendationInput
	hasIncome       bool
	expenseRatio    float64
	savingsRate     float64
	spentByCategory map[string]float64
	nameByCategory  map[string]string
	weights         ScoreWeights
}

// firing is one triggered emission before the owning rule stamps its static
// metadata onto it.
type firing struct {
	categoryID  string
	priority    model.RecommendationPriority
	title       string
	description string
	savings     float64
	steps       []string
}

// rule is one independent recommendation generator: a trigger predicate
// producing zero or more firings, plus static effort metadata. Rules never
// see each other's output.
type rule struct {
	id              string
	category        model.RecommendationCategory
	timeToImplement string
	effort          string
	trigger         func(*ruleContext) []firing
}

// GenerateRecommendations evaluates every rule against the input and
// returns the union, sorted by priority then potential savings, with at
// most one recommendation per (rule, category) pair. The caller truncates
// to its requested limit.
func GenerateRecommendations(in RecommendationInput) []model.Recommendation {
	ctx := newRuleContext(in)

	seen := make(map[string]bool)
	var recs []model.Recommendation
	for _, r := range ruleTable {
		for _, f := range r.trigger(ctx) {
			key := r.id + "|" + f.categoryID
			if seen[key] {
				continue
			}
			seen[key] = true
			recs = append(recs, model.Recommendation{
				ID:          uuid.New().String(),
				RuleID:      r.id,
				Priority:    f.priority,
				Category:    r.category,
				Title:       f.title,
				Description: f.description,
				Impact: model.Impact{
					PotentialSavings: f.savings,
					TimeToImplement:  r.timeToImplement,
					Effort:           r.effort,
				},
				ActionSteps: f.steps,
			})
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Priority != recs[j].Priority {
			return priorityRank(recs[i].Priority) > priorityRank(recs[j].Priority)
		}
		return recs[i].Impact.PotentialSavings > recs[j].Impact.PotentialSavings
	})
	return recs
}

func newRuleContext(in RecommendationInput) *ruleContext {
	ctx := &ruleContext{
		in:              in,
		spentByCategory: make(map[string]float64),
		nameByCategory:  make(map[string]string),
		weights:         DefaultScoreWeights(),
	}
	for _, t := range in.Transactions {
		if t.Type != model.TransactionExpense {
			continue
		}
		ctx.spentByCategory[t.CategoryID] += t.Amount
		if t.CategoryName != "" {
			ctx.nameByCategory[t.CategoryID] = t.CategoryName
		}
	}
	if in.TotalIncome > 0 {
		ctx.hasIncome = true
		ctx.expenseRatio = in.TotalExpenses / in.TotalIncome
		ctx.savingsRate = (in.TotalIncome - in.TotalExpenses) / in.TotalIncome
	}
	return ctx
}

func (c *ruleContext) categoryName(id string) string {
	if name, ok := c.nameByCategory[id]; ok {
		return name
	}
	return id
}

func priorityRank(p model.RecommendationPriority) int {
	switch p {
	case model.PriorityHigh:
		return 3
	case model.PriorityMedium:
		return 2
	case model.PriorityLow:
		return 1
	default:
		return 0
	}
}

// priorityFor maps a normalized deviation from the healthy threshold to a
// priority: the farther past the threshold, the more urgent.
func priorityFor(deviation float64) model.RecommendationPriority {
	switch {
	case deviation >= 0.5:
		return model.PriorityHigh
	case deviation >= 0.2:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

// ruleTable is the full set of independent rules. Rules may co-fire; the
// engine dedupes per (rule, category).
var ruleTable = []rule{
	{
		id:              "gastos-acima-da-renda",
		category:        model.RecommendSpending,
		timeToImplement: "1-2 semanas",
		effort:          "médio",
		trigger: func(c *ruleContext) []firing {
			if !c.hasIncome || c.expenseRatio <= 0.75 {
				return nil
			}
			healthy := c.weights.HealthySpendRatio
			return []firing{{
				priority: priorityFor((c.expenseRatio - healthy) / healthy),
				title:    "Reduza seus gastos mensais",
				description: fmt.Sprintf("Seus gastos consomem %.0f%% da sua renda; o saudável é até %.0f%%.",
					c.expenseRatio*100, healthy*100),
				savings: c.in.TotalExpenses - healthy*c.in.TotalIncome,
				steps: []string{
					"Liste os gastos recorrentes do último mês",
					"Cancele assinaturas e serviços pouco usados",
					"Defina um teto mensal por categoria",
				},
			}}
		},
	},
	{
		id:              "taxa-de-poupanca-baixa",
		category:        model.RecommendSavings,
		timeToImplement: "1 mês",
		effort:          "médio",
		trigger: func(c *ruleContext) []firing {
			target := c.weights.TargetSavingsRate
			if !c.hasIncome || c.savingsRate >= target {
				return nil
			}
			return []firing{{
				priority: priorityFor((target - c.savingsRate) / target),
				title:    "Aumente sua taxa de poupança",
				description: fmt.Sprintf("Você está poupando %.0f%% da renda; a meta é %.0f%%.",
					clamp(c.savingsRate, 0, 1)*100, target*100),
				savings: (target - c.savingsRate) * c.in.TotalIncome,
				steps: []string{
					"Transfira um valor fixo para a poupança no dia do pagamento",
					"Automatize a transferência para não depender de disciplina",
				},
			}}
		},
	},
	{
		id:              "categoria-concentrada",
		category:        model.RecommendSpending,
		timeToImplement: "2-4 semanas",
		effort:          "médio",
		trigger: func(c *ruleContext) []firing {
			const shareLimit = 0.30
			if c.in.TotalExpenses <= 0 {
				return nil
			}
			var firings []firing
			for _, ct := range c.in.TopCategories {
				share := ct.Total / c.in.TotalExpenses
				if share <= shareLimit {
					continue
				}
				name := ct.Name
				if name == "" {
					name = c.categoryName(ct.CategoryID)
				}
				firings = append(firings, firing{
					categoryID: ct.CategoryID,
					priority:   priorityFor((share - shareLimit) / shareLimit),
					title:      fmt.Sprintf("Gastos concentrados em %s", name),
					description: fmt.Sprintf("%s representa %.0f%% de tudo que você gasta. Diversificar reduz o risco de aperto no fim do mês.",
						name, share*100),
					savings: (share - shareLimit) * c.in.TotalExpenses,
					steps: []string{
						fmt.Sprintf("Revise as transações de %s do período", name),
						"Busque alternativas mais baratas para os itens mais caros",
					},
				})
			}
			return firings
		},
	},
	{
		id:              "sem-orcamentos",
		category:        model.RecommendBudget,
		timeToImplement: "1 dia",
		effort:          "baixo",
		trigger: func(c *ruleContext) []firing {
			if len(c.in.Budgets) > 0 || len(c.in.Transactions) == 0 {
				return nil
			}
			return []firing{{
				priority:    model.PriorityMedium,
				title:       "Crie orçamentos por categoria",
				description: "Você ainda não definiu nenhum orçamento. Limites por categoria são a forma mais simples de controlar gastos.",
				steps: []string{
					"Comece pelas três categorias em que você mais gasta",
					"Use a média dos últimos meses como limite inicial",
				},
			}}
		},
	},
	{
		id:              "orcamento-estourado",
		category:        model.RecommendBudget,
		timeToImplement: "1 semana",
		effort:          "baixo",
		trigger: func(c *ruleContext) []firing {
			limits := make(map[string]float64)
			for _, b := range c.in.Budgets {
				if b.LimitAmount > 0 {
					limits[b.CategoryID] += b.LimitAmount
				}
			}
			var firings []firing
			for categoryID, limit := range limits {
				spent := c.spentByCategory[categoryID]
				if spent <= limit {
					continue
				}
				name := c.categoryName(categoryID)
				firings = append(firings, firing{
					categoryID: categoryID,
					priority:   priorityFor((spent - limit) / limit),
					title:      fmt.Sprintf("Orçamento de %s estourado", name),
					description: fmt.Sprintf("Você gastou %.2f em %s, acima do limite de %.2f definido para o período.",
						spent, name, limit),
					savings: spent - limit,
					steps: []string{
						fmt.Sprintf("Pause gastos não essenciais em %s até o fim do mês", name),
						"Avalie se o limite definido ainda é realista",
					},
				})
			}
			return firings
		},
	},
	{
		id:              "uso-de-credito-alto",
		category:        model.RecommendDebt,
		timeToImplement: "1-3 meses",
		effort:          "alto",
		trigger: func(c *ruleContext) []firing {
			dividas := c.in.HealthScore.Breakdown.Dividas
			if dividas >= maxDividas*0.5 {
				return nil
			}
			return []firing{{
				priority:    priorityFor(1 - dividas/(maxDividas*0.5)),
				title:       "Reduza o uso do cartão de crédito",
				description: "Sua utilização de crédito está alta em relação aos limites disponíveis, o que pressiona seu score e gera risco de juros.",
				steps: []string{
					"Priorize quitar a fatura integral do cartão",
					"Concentre compras grandes no débito enquanto a utilização estiver alta",
				},
			}}
		},
	},
	{
		id:              "reserva-de-emergencia",
		category:        model.RecommendSavings,
		timeToImplement: "3-6 meses",
		effort:          "médio",
		trigger: func(c *ruleContext) []firing {
			poupanca := c.in.HealthScore.Breakdown.PoupancaReservas
			if !c.hasIncome || poupanca >= maxPoupancaReservas*0.4 {
				return nil
			}
			return []firing{{
				priority:    model.PriorityHigh,
				title:       "Monte sua reserva de emergência",
				description: "Sua reserva cobre poucos dias de gastos. O ideal é acumular o equivalente a três meses de despesas.",
				savings:     c.weights.TargetSavingsRate * c.in.TotalIncome,
				steps: []string{
					"Abra uma conta separada, com liquidez diária, só para a reserva",
					"Direcione todo valor extra do mês para ela até atingir a meta",
				},
			}}
		},
	},
	{
		id:              "investir-excedente",
		category:        model.RecommendInvestment,
		timeToImplement: "2 semanas",
		effort:          "baixo",
		trigger: func(c *ruleContext) []firing {
			if !c.hasIncome || c.savingsRate < c.weights.TargetSavingsRate {
				return nil
			}
			if c.in.HealthScore.Breakdown.Diversificacao >= maxDiversificacao/2 {
				return nil
			}
			return []firing{{
				priority:    model.PriorityLow,
				title:       "Coloque o excedente para render",
				description: "Você fecha o mês com sobra consistente. Parte desse excedente pode ir para investimentos de baixo risco.",
				steps: []string{
					"Separe a reserva de emergência do valor a investir",
					"Comece por produtos conservadores com resgate rápido",
				},
			}}
		},
	},
}
