package models

// GoalStatus is the computed state of a single goal.
type GoalStatus string

const (
	GoalStatusNotSet          GoalStatus = "not_set"
	GoalStatusQualitative     GoalStatus = "qualitative"
	GoalStatusNoDeadline      GoalStatus = "no_deadline"
	GoalStatusComplete        GoalStatus = "complete"
	GoalStatusPastDeadline    GoalStatus = "past_deadline"
	GoalStatusOnTrack         GoalStatus = "on_track"
	GoalStatusBehind          GoalStatus = "behind"
	GoalStatusInvalidDeadline GoalStatus = "invalid_deadline"
)

// GoalProgress is the analyzer's verdict on one goal. Pointer fields
// are nil when the corresponding value cannot be determined for the
// goal's status.
type GoalProgress struct {
	Term               GoalTerm   `json:"term"`
	Description        string     `json:"description,omitempty"`
	Target             *float64   `json:"target,omitempty"`
	Deadline           string     `json:"deadline,omitempty"`
	Current            float64    `json:"current"`
	ProgressPct        *float64   `json:"progress_pct,omitempty"`
	CurrentMonthly     float64    `json:"current_monthly"`
	MonthsRemaining    *int       `json:"months_remaining,omitempty"`
	MonthlyRequired    *float64   `json:"monthly_required,omitempty"`
	MonthsAtPace       *float64   `json:"months_at_current_pace,omitempty"`
	OnTrack            *bool      `json:"on_track,omitempty"`
	Status             GoalStatus `json:"status"`
	QualitativeNote    string     `json:"qualitative_note,omitempty"`
}

// GoalSummary counts goals by outcome. MostUrgent names the
// behind/past-deadline goal term with the fewest months remaining, or
// is empty.
type GoalSummary struct {
	GoalsOnTrack     int      `json:"goals_on_track"`
	GoalsBehind      int      `json:"goals_behind"`
	GoalsQualitative int      `json:"goals_qualitative"`
	MostUrgent       GoalTerm `json:"most_urgent,omitempty"`
}

// GoalAnalysis is the full goal progress report, keyed by term.
type GoalAnalysis struct {
	Goals          map[GoalTerm]*GoalProgress `json:"goals"`
	MonthlySurplus float64                    `json:"monthly_surplus"`
	Summary        GoalSummary                `json:"summary"`
}

// AllocationAnalysis compares current allocation against the
// personalized recommendation. Drift is current minus recommended,
// signed, per category.
type AllocationAnalysis struct {
	Current           map[Category]float64 `json:"current"`
	Recommended       map[Category]float64 `json:"recommended"`
	Reasoning         string               `json:"reasoning"`
	Drift             map[Category]float64 `json:"drift"`
	SignificantDrifts []Category           `json:"significant_drifts"`
	RebalanceNeeded   bool                 `json:"rebalance_needed"`
}

// Analysis bundles all analyzer outputs for one portfolio state.
type Analysis struct {
	AsOf       string              `json:"as_of"`
	Goals      *GoalAnalysis       `json:"goals,omitempty"`
	Allocation *AllocationAnalysis `json:"allocation,omitempty"`
	Market     *MarketContext      `json:"market,omitempty"`
}
