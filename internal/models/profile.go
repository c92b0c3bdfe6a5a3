package models

// GoalTerm buckets a goal by horizon. Terms are evaluated in fixed
// order: short, medium, long.
type GoalTerm string

const (
	GoalTermShort  GoalTerm = "short_term"
	GoalTermMedium GoalTerm = "medium_term"
	GoalTermLong   GoalTerm = "long_term"
)

// GoalTermOrder is the canonical evaluation order for goal terms.
var GoalTermOrder = []GoalTerm{GoalTermShort, GoalTermMedium, GoalTermLong}

// GoalSpec is a user-stated financial goal. Target nil or <= 0 means
// the goal is qualitative with no numeric projection. Deadline is
// YYYY-MM or empty for open-ended goals.
type GoalSpec struct {
	Description string   `json:"description,omitempty"`
	Target      *float64 `json:"target,omitempty"`
	Deadline    string   `json:"deadline,omitempty"`
}

// MonthlyCashFlow captures recurring income and committed outgoings.
// Missing values are treated as zero.
type MonthlyCashFlow struct {
	GrossIncome         float64 `json:"gross_income"`
	SharedExpenses      float64 `json:"shared_expenses"`
	CryptoContributions float64 `json:"crypto_contributions"`
	RothContributions   float64 `json:"roth_contributions"`
	HSAContributions    float64 `json:"hsa_contributions"`
	Discretionary       float64 `json:"discretionary"`
}

// Surplus returns income minus all committed outgoings. May be negative.
func (c MonthlyCashFlow) Surplus() float64 {
	return c.GrossIncome - c.SharedExpenses - c.CryptoContributions -
		c.RothContributions - c.HSAContributions - c.Discretionary
}

// TaxSituation holds the tax-advantaged contribution state for the
// current calendar year.
type TaxSituation struct {
	RothMaxed    bool   `json:"roth_maxed"`
	FilingStatus string `json:"filing_status,omitempty"`
}

// Profile is the user's financial context: cash flow, tax state and
// goals keyed by term. Stored as a single document.
type Profile struct {
	CashFlow  MonthlyCashFlow       `json:"monthly_cash_flow"`
	Tax       TaxSituation          `json:"tax_situation"`
	Goals     map[GoalTerm]GoalSpec `json:"goals,omitempty"`
	UpdatedAt string                `json:"updated_at,omitempty"`
}

// Goal returns the goal for a term, or an empty spec when unset.
func (p *Profile) Goal(term GoalTerm) GoalSpec {
	if p == nil || p.Goals == nil {
		return GoalSpec{}
	}
	return p.Goals[term]
}
