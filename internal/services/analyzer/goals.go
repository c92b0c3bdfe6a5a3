package analyzer

import (
	"fmt"
	"math"
	"time"

	"github.com/bobmcallan/tally/internal/models"
)

// monthsBetween returns the number of whole months from start to end,
// both in YYYY-MM format. Positive when end is later.
func monthsBetween(start, end string) (int, error) {
	s, err := time.Parse("2006-01", start)
	if err != nil {
		return 0, fmt.Errorf("invalid month %q: %w", start, err)
	}
	e, err := time.Parse("2006-01", end)
	if err != nil {
		return 0, fmt.Errorf("invalid month %q: %w", end, err)
	}
	return (e.Year()-s.Year())*12 + int(e.Month()) - int(s.Month()), nil
}

// goalCurrentValue maps a goal term to the portfolio value tracking it:
// short-term goals (emergency fund) track the cash bucket, everything
// else tracks total portfolio value.
func goalCurrentValue(term models.GoalTerm, portfolio *models.PortfolioResult) float64 {
	if term == models.GoalTermShort {
		if cash, ok := portfolio.ByCategory[models.CategoryCash]; ok {
			return cash.Value
		}
		return 0
	}
	return portfolio.TotalValue
}

// goalCurrentMonthly maps a goal term to the dollars flowing toward it
// each month. Long-term goals additionally count retirement-directed
// contributions.
func goalCurrentMonthly(term models.GoalTerm, profile *models.Profile) float64 {
	surplus := profile.CashFlow.Surplus()
	if term == models.GoalTermLong {
		return surplus + profile.CashFlow.RothContributions + profile.CashFlow.HSAContributions
	}
	return surplus
}

// analyzeGoal derives progress and status for one goal. The status
// branches are evaluated in strict precedence order; the first match
// wins.
func analyzeGoal(term models.GoalTerm, spec models.GoalSpec, portfolio *models.PortfolioResult, profile *models.Profile, currentMonth string) *models.GoalProgress {
	progress := &models.GoalProgress{
		Term:        term,
		Description: spec.Description,
		Target:      spec.Target,
		Deadline:    spec.Deadline,
	}

	if spec.Description == "" {
		progress.Status = models.GoalStatusNotSet
		return progress
	}

	progress.Current = goalCurrentValue(term, portfolio)

	if spec.Target == nil || *spec.Target <= 0 {
		progress.Status = models.GoalStatusQualitative
		progress.QualitativeNote = "No numeric target set - track directional progress"
		return progress
	}
	target := *spec.Target

	pct := math.Round(progress.Current/target*1000) / 10
	progress.ProgressPct = &pct
	progress.CurrentMonthly = goalCurrentMonthly(term, profile)

	if spec.Deadline == "" {
		progress.Status = models.GoalStatusNoDeadline
		return progress
	}

	months, err := monthsBetween(currentMonth, spec.Deadline)
	if err != nil {
		progress.Status = models.GoalStatusInvalidDeadline
		return progress
	}
	progress.MonthsRemaining = &months

	remaining := target - progress.Current
	if remaining <= 0 {
		zero := 0.0
		onTrack := true
		progress.MonthlyRequired = &zero
		progress.MonthsAtPace = &zero
		progress.OnTrack = &onTrack
		progress.Status = models.GoalStatusComplete
		return progress
	}

	if months <= 0 {
		offTrack := false
		progress.OnTrack = &offTrack
		progress.Status = models.GoalStatusPastDeadline
		return progress
	}

	required := math.Round(remaining/float64(months)*100) / 100
	progress.MonthlyRequired = &required

	if progress.CurrentMonthly > 0 {
		atPace := math.Round(remaining/progress.CurrentMonthly*10) / 10
		progress.MonthsAtPace = &atPace
	}

	onTrack := progress.CurrentMonthly >= required
	progress.OnTrack = &onTrack
	if onTrack {
		progress.Status = models.GoalStatusOnTrack
	} else {
		progress.Status = models.GoalStatusBehind
	}
	return progress
}

// buildGoalAnalysis runs every goal term and rolls up the summary.
// MostUrgent is the behind or past-deadline goal with the fewest
// months remaining; ties keep the earlier term in evaluation order.
func buildGoalAnalysis(portfolio *models.PortfolioResult, profile *models.Profile, currentMonth string) *models.GoalAnalysis {
	analysis := &models.GoalAnalysis{
		Goals:          make(map[models.GoalTerm]*models.GoalProgress, len(models.GoalTermOrder)),
		MonthlySurplus: profile.CashFlow.Surplus(),
	}

	mostUrgentMonths := math.MaxInt
	for _, term := range models.GoalTermOrder {
		progress := analyzeGoal(term, profile.Goal(term), portfolio, profile, currentMonth)
		analysis.Goals[term] = progress

		switch progress.Status {
		case models.GoalStatusOnTrack, models.GoalStatusComplete:
			analysis.Summary.GoalsOnTrack++
		case models.GoalStatusBehind, models.GoalStatusPastDeadline:
			analysis.Summary.GoalsBehind++
			if progress.MonthsRemaining != nil && *progress.MonthsRemaining < mostUrgentMonths {
				mostUrgentMonths = *progress.MonthsRemaining
				analysis.Summary.MostUrgent = term
			}
		case models.GoalStatusQualitative, models.GoalStatusNoDeadline:
			analysis.Summary.GoalsQualitative++
		}
	}

	return analysis
}
