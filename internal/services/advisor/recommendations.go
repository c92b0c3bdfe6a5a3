package advisor

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/models"
)

// goalRecommendations emits one recommendation per behind or
// past-deadline goal, in goal term order.
func goalRecommendations(goals *models.GoalAnalysis, cfg *common.AdvisorConfig) []models.Recommendation {
	var recs []models.Recommendation

	for _, term := range models.GoalTermOrder {
		goal := goals.Goals[term]
		if goal == nil {
			continue
		}
		switch goal.Status {
		case models.GoalStatusBehind:
			if rec := goalBehindRecommendation(goal, cfg); rec != nil {
				recs = append(recs, *rec)
			}
		case models.GoalStatusPastDeadline:
			if rec := pastDeadlineRecommendation(goal); rec != nil {
				recs = append(recs, *rec)
			}
		}
	}
	return recs
}

func goalBehindRecommendation(goal *models.GoalProgress, cfg *common.AdvisorConfig) *models.Recommendation {
	if goal.MonthsRemaining == nil || goal.MonthlyRequired == nil {
		return nil
	}
	months := *goal.MonthsRemaining
	required := *goal.MonthlyRequired
	shortfall := required - goal.CurrentMonthly

	// Both urgency bands map to high; beyond them the goal is merely
	// behind, not pressing.
	priority := models.PriorityMedium
	if months <= cfg.GoalDeadlineCriticalMonths || months <= cfg.GoalDeadlineUrgentMonths {
		priority = models.PriorityHigh
	}

	description := goal.Description
	if description == "" {
		description = "Goal"
	}
	var action string
	if goal.Term == models.GoalTermShort {
		action = fmt.Sprintf("Redirect $%.0f/mo additional to emergency fund", shortfall)
	} else {
		action = fmt.Sprintf("Increase monthly allocation toward %s", strings.ToLower(description))
	}

	var progressPct float64
	if goal.ProgressPct != nil {
		progressPct = *goal.ProgressPct
	}

	return &models.Recommendation{
		Type:     models.RecTypeSurplus,
		Priority: priority,
		Action:   action,
		Rationale: fmt.Sprintf("%s deadline in %d months. Current pace: $%.0f/mo. Required: $%.0f/mo.",
			description, months, goal.CurrentMonthly, required),
		Impact: fmt.Sprintf("Closing the $%.0f/mo gap would put goal back on track.", shortfall),
		Numbers: map[string]float64{
			"months_remaining": float64(months),
			"monthly_required": math.Round(required*100) / 100,
			"current_monthly":  math.Round(goal.CurrentMonthly*100) / 100,
			"shortfall":        math.Round(shortfall*100) / 100,
			"progress_pct":     progressPct,
		},
	}
}

func pastDeadlineRecommendation(goal *models.GoalProgress) *models.Recommendation {
	if goal.Target == nil {
		return nil
	}
	target := *goal.Target
	remaining := target - goal.Current

	description := goal.Description
	if description == "" {
		description = "Goal"
	}

	return &models.Recommendation{
		Type:     models.RecTypeWarning,
		Priority: models.PriorityHigh,
		Action:   fmt.Sprintf("Reassess %s goal", strings.ToLower(description)),
		Rationale: fmt.Sprintf("Deadline has passed. $%.0f remaining to reach $%.0f target.",
			remaining, target),
		Impact: "Set a new realistic deadline or adjust the target.",
		Numbers: map[string]float64{
			"target":    target,
			"current":   goal.Current,
			"remaining": remaining,
		},
	}
}

// driftEntry pairs a category with its signed drift for ranking.
type driftEntry struct {
	category    models.Category
	drift       float64
	current     float64
	recommended float64
}

// allocationRecommendations emits a rebalance recommendation when
// drift exceeds the trigger, or a single informational record when the
// allocation is within tolerance.
func allocationRecommendations(allocation *models.AllocationAnalysis, cfg *common.AdvisorConfig) []models.Recommendation {
	if !allocation.RebalanceNeeded {
		var maxDrift float64
		for _, d := range allocation.Drift {
			if math.Abs(d) > maxDrift {
				maxDrift = math.Abs(d)
			}
		}
		return []models.Recommendation{{
			Type:     models.RecTypeRebalance,
			Priority: models.PriorityLow,
			Action:   "Allocation within tolerance",
			Rationale: fmt.Sprintf("Maximum drift is %.1f%%, below the %.0f%% threshold.",
				maxDrift, cfg.RebalanceTriggerPct),
			Impact:  "Continue current contribution strategy.",
			Numbers: map[string]float64{"max_drift": math.Round(maxDrift*10) / 10},
		}}
	}

	var over, under []driftEntry
	for _, cat := range models.CategoryOrder {
		d := allocation.Drift[cat]
		entry := driftEntry{cat, d, allocation.Current[cat], allocation.Recommended[cat]}
		if d >= cfg.DriftMediumPct {
			over = append(over, entry)
		} else if d <= -cfg.DriftMediumPct {
			under = append(under, entry)
		}
	}
	sort.SliceStable(over, func(i, j int) bool { return over[i].drift > over[j].drift })
	sort.SliceStable(under, func(i, j int) bool { return under[i].drift < under[j].drift })

	switch {
	case len(over) > 0 && len(under) > 0:
		o, u := over[0], under[0]
		priority := models.PriorityMedium
		if math.Abs(o.drift) >= cfg.DriftHighPct {
			priority = models.PriorityHigh
		}
		return []models.Recommendation{{
			Type:     models.RecTypeRebalance,
			Priority: priority,
			Action: fmt.Sprintf("Redirect new contributions from %s to %s",
				o.category.DisplayName(), u.category.DisplayName()),
			Rationale: fmt.Sprintf("%s is %+.1f%% above target (%.1f%% vs %.1f%%). %s is %.1f%% below target (%.1f%% vs %.1f%%).",
				o.category.DisplayName(), o.drift, o.current, o.recommended,
				u.category.DisplayName(), math.Abs(u.drift), u.current, u.recommended),
			Impact: fmt.Sprintf("Move toward balanced allocation: %s %.0f%%, %s %.0f%%.",
				o.category.DisplayName(), o.recommended, u.category.DisplayName(), u.recommended),
			Numbers: map[string]float64{
				"over_drift":    math.Round(o.drift*10) / 10,
				"over_current":  math.Round(o.current*10) / 10,
				"over_target":   math.Round(o.recommended*10) / 10,
				"under_drift":   math.Round(u.drift*10) / 10,
				"under_current": math.Round(u.current*10) / 10,
				"under_target":  math.Round(u.recommended*10) / 10,
			},
		}}
	case len(over) > 0:
		o := over[0]
		return []models.Recommendation{{
			Type:      models.RecTypeRebalance,
			Priority:  models.PriorityMedium,
			Action:    fmt.Sprintf("Reduce new contributions to %s", o.category.DisplayName()),
			Rationale: fmt.Sprintf("%s is %+.1f%% above target.", o.category.DisplayName(), o.drift),
			Impact:    "Pause contributions until allocation normalizes.",
			Numbers: map[string]float64{
				"over_drift":   math.Round(o.drift*10) / 10,
				"over_current": math.Round(o.current*10) / 10,
				"over_target":  math.Round(o.recommended*10) / 10,
			},
		}}
	default:
		return nil
	}
}

// opportunityRecommendations converts market opportunities into
// recommendations. When a most-urgent behind goal exists, every
// opportunity is downgraded one priority tier and annotated: the goal
// takes precedence over new investments.
func opportunityRecommendations(market *models.MarketContext, goals *models.GoalAnalysis) []models.Recommendation {
	if market == nil {
		return nil
	}

	urgentGoal := goals.Summary.MostUrgent
	hasUrgent := urgentGoal != "" && goals.Summary.GoalsBehind > 0

	var recs []models.Recommendation
	for _, opp := range market.Opportunities {
		priority := opp.Priority
		rationale := opp.Suggestion
		if hasUrgent {
			priority = priority.Downgrade()
			rationale += fmt.Sprintf(" Note: %s goal takes priority over new investments.",
				strings.ReplaceAll(string(urgentGoal), "_", " "))
		}
		recs = append(recs, models.Recommendation{
			Type:      models.RecTypeOpportunity,
			Priority:  priority,
			Action:    fmt.Sprintf("%s down %.1f%% this week", opp.Asset, math.Abs(opp.Magnitude)),
			Rationale: rationale,
			Impact:    "Potential DCA entry point if aligned with strategy and cash available.",
			Numbers: map[string]float64{
				"change_pct": math.Round(opp.Magnitude*10) / 10,
			},
		})
	}
	return recs
}
