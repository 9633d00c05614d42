package model

import "time"

// TransactionType distinguishes money in from money out. Amounts are always
// non-negative; the sign is carried by the type.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// CardType identifies how a card settles.
type CardType string

const (
	CardCredit CardType = "credit"
	CardDebit  CardType = "debit"
)

// Transaction is a normalized, read-only financial record supplied by the
// data-access layer.
type Transaction struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id,omitempty"`
	Amount       float64         `json:"amount"`
	Type         TransactionType `json:"type"`
	Date         time.Time       `json:"date"`
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name,omitempty"`
	Description  string          `json:"description,omitempty"`
	CardID       string          `json:"card_id,omitempty"`
}

// Budget is a monthly spending limit for one category. Month is normalized
// to the first day of the month.
type Budget struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id,omitempty"`
	CategoryID  string    `json:"category_id"`
	LimitAmount float64   `json:"limit_amount"`
	Month       time.Time `json:"month"`
}

// Card is a payment card. Limit is only meaningful for credit cards.
type Card struct {
	ID     string   `json:"id"`
	UserID string   `json:"user_id,omitempty"`
	Type   CardType `json:"type"`
	Limit  float64  `json:"limit,omitempty"`
}

// ScoreBreakdown holds the five weighted health-score components. The field
// names follow the product's dimension names; the sub-ranges sum to 100.
type ScoreBreakdown struct {
	ControleGastos   float64 `json:"controleGastos"`   // 0-30
	PoupancaReservas float64 `json:"poupancaReservas"` // 0-25
	Previsibilidade  float64 `json:"previsibilidade"`  // 0-20
	Dividas          float64 `json:"dividas"`          // 0-15
	Diversificacao   float64 `json:"diversificacao"`   // 0-10
}

// Sum returns the raw (unrounded) total of all components.
func (b ScoreBreakdown) Sum() float64 {
	return b.ControleGastos + b.PoupancaReservas + b.Previsibilidade + b.Dividas + b.Diversificacao
}

// Trend describes the score direction against the previous period.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// ScoreCategory is the qualitative band a score falls into.
type ScoreCategory string

const (
	ScoreExcellent ScoreCategory = "excellent"
	ScoreGood      ScoreCategory = "good"
	ScoreFair      ScoreCategory = "fair"
	ScorePoor      ScoreCategory = "poor"
	ScoreCritical  ScoreCategory = "critical"
)

// HealthScore is the composite 0-100 financial health result.
type HealthScore struct {
	Score     int            `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
	Trend     Trend          `json:"trend"`
	Category  ScoreCategory  `json:"category"`
}

// AnomalySeverity orders anomalies from worst to least concerning.
type AnomalySeverity string

const (
	SeverityCritical AnomalySeverity = "critical"
	SeverityHigh     AnomalySeverity = "high"
	SeverityModerate AnomalySeverity = "moderate"
)

// Anomaly flags a transaction or category pattern that is inconsistent with
// recent history or a budget. Generated fresh per request, never persisted.
type Anomaly struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Severity      AnomalySeverity `json:"severity"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Amount        float64         `json:"amount"`
	CategoryID    string          `json:"category_id"`
	Date          time.Time       `json:"date"`
}

// ConfidenceLevel labels how tight a forecast's interval is.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// ConfidenceInterval bounds the likely range of a forecast point.
type ConfidenceInterval struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ForecastPeriod is one projected future month.
type ForecastPeriod struct {
	Month              time.Time          `json:"month"`
	PredictedExpenses  float64            `json:"predictedExpenses"`
	PredictedIncome    float64            `json:"predictedIncome"`
	Confidence         ConfidenceLevel    `json:"confidence"`
	ConfidenceInterval ConfidenceInterval `json:"confidenceInterval"`
}

// ForecastResult wraps the projected periods. Message is set instead of
// Periods when there is not enough history to project from.
type ForecastResult struct {
	Periods []ForecastPeriod `json:"periods"`
	Message string           `json:"message,omitempty"`
}

// RecommendationPriority orders recommendations by urgency.
type RecommendationPriority string

const (
	PriorityHigh   RecommendationPriority = "high"
	PriorityMedium RecommendationPriority = "medium"
	PriorityLow    RecommendationPriority = "low"
)

// RecommendationCategory groups recommendations by the area they act on.
type RecommendationCategory string

const (
	RecommendSavings    RecommendationCategory = "savings"
	RecommendSpending   RecommendationCategory = "spending"
	RecommendBudget     RecommendationCategory = "budget"
	RecommendDebt       RecommendationCategory = "debt"
	RecommendInvestment RecommendationCategory = "investment"
)

// Impact quantifies what acting on a recommendation is worth.
type Impact struct {
	PotentialSavings float64 `json:"potentialSavings,omitempty"`
	TimeToImplement  string  `json:"timeToImplement"`
	Effort           string  `json:"effort"`
}

// Recommendation is one prioritized, actionable suggestion.
type Recommendation struct {
	ID          string                 `json:"id"`
	RuleID      string                 `json:"rule_id"`
	Priority    RecommendationPriority `json:"priority"`
	Category    RecommendationCategory `json:"category"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Impact      Impact                 `json:"impact"`
	ActionSteps []string               `json:"actionSteps"`
}

// CategoryBenchmark compares one category's monthly average against the
// market reference for an equivalent category.
type CategoryBenchmark struct {
	CategoryID     string  `json:"category_id"`
	UserMonthlyAvg float64 `json:"userMonthlyAvg"`
	MarketAvg      float64 `json:"marketAvg"`
	Ratio          float64 `json:"ratio"`
	Score          float64 `json:"score"`
	Status         string  `json:"status"`
}

// Benchmark is the full comparison of user spending against market averages.
type Benchmark struct {
	OverallScore       float64             `json:"overallScore"`
	CategoryBenchmarks []CategoryBenchmark `json:"categoryBenchmarks"`
	TotalUserExpenses  float64             `json:"totalUserExpenses"`
	TotalMarketAverage float64             `json:"totalMarketAverage"`
	Message            string              `json:"message,omitempty"`
}
