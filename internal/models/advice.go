package models

// RecommendationType identifies which analysis produced a recommendation.
type RecommendationType string

const (
	RecTypeRebalance   RecommendationType = "rebalance"
	RecTypeSurplus     RecommendationType = "surplus"
	RecTypeOpportunity RecommendationType = "opportunity"
	RecTypeWarning     RecommendationType = "warning"
)

// Priority orders recommendations for display.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// PriorityRank maps priority to sort order; lower sorts first.
var PriorityRank = map[Priority]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

// Downgrade returns the priority one tier lower. Low stays low.
func (p Priority) Downgrade() Priority {
	switch p {
	case PriorityHigh:
		return PriorityMedium
	case PriorityMedium:
		return PriorityLow
	default:
		return PriorityLow
	}
}

// Recommendation is one actionable suggestion from the advisor.
// Numbers carries the supporting figures referenced by the text.
type Recommendation struct {
	Type      RecommendationType `json:"type"`
	Priority  Priority           `json:"priority"`
	Action    string             `json:"action"`
	Rationale string             `json:"rationale"`
	Impact    string             `json:"impact,omitempty"`
	Numbers   map[string]float64 `json:"numbers,omitempty"`
}

// SurplusAllocation is one consumed stage of the monthly surplus
// waterfall.
type SurplusAllocation struct {
	Purpose string  `json:"purpose"` // urgent_goal, tax_advantaged, allocation_drift, default_split
	Amount  float64 `json:"amount"`
	Detail  string  `json:"detail,omitempty"`
}

// AdviceSummary condenses the recommendation list for callers.
type AdviceSummary struct {
	HighPriorityCount int  `json:"high_priority_count"`
	TotalCount        int  `json:"total_count"`
	ActionRequired    bool `json:"action_required"`
}

// PortfolioSummary condenses the portfolio for the advice header.
type PortfolioSummary struct {
	TotalValue    float64              `json:"total_value"`
	AsOf          string               `json:"as_of"`
	ByCategoryPct map[Category]float64 `json:"by_category_pct"`
}

// AdviceBundle is the advisor's complete output.
type AdviceBundle struct {
	GeneratedAt     string                     `json:"generated_at"`
	Portfolio       PortfolioSummary           `json:"portfolio"`
	Goals           map[GoalTerm]*GoalProgress `json:"goals"`
	MonthlySurplus  float64                    `json:"monthly_surplus"`
	Sentiment       Sentiment                  `json:"sentiment"`
	Recommendations []Recommendation           `json:"recommendations"`
	SurplusPlan     []SurplusAllocation        `json:"surplus_plan,omitempty"`
	Summary         AdviceSummary              `json:"summary"`
	DataFreshness   DataFreshness              `json:"data_freshness"`
	Warnings        []string                   `json:"warnings,omitempty"`
}
