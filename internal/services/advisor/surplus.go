package advisor

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/models"
)

// surplusWaterfall consumes the monthly surplus through ordered steps,
// each taking up to what it needs from the remaining balance:
//  1. the most-urgent behind goal's monthly shortfall
//  2. Roth IRA monthly headroom, when at least the minimum top-up
//  3. the single largest under-allocated category takes everything left
//  4. any remainder splits between retirement and taxable equities in
//     proportion to their recommended targets
//
// Returns nil when the surplus is not positive.
func surplusWaterfall(goals *models.GoalAnalysis, allocation *models.AllocationAnalysis, profile *models.Profile, cfg *common.AdvisorConfig) []models.SurplusAllocation {
	surplus := goals.MonthlySurplus
	if surplus <= 0 {
		return nil
	}

	remaining := surplus
	var plan []models.SurplusAllocation

	// 1. Urgent goal shortfall.
	if term := goals.Summary.MostUrgent; term != "" {
		goal := goals.Goals[term]
		if goal != nil && goal.Status == models.GoalStatusBehind && goal.MonthlyRequired != nil {
			shortfall := *goal.MonthlyRequired - goal.CurrentMonthly
			amount := math.Min(math.Max(0, shortfall), remaining)
			if amount > 0 {
				detail := goal.Description
				if detail == "" {
					detail = strings.ReplaceAll(string(term), "_", " ")
				}
				plan = append(plan, models.SurplusAllocation{
					Purpose: "urgent_goal",
					Amount:  amount,
					Detail:  detail,
				})
				remaining -= amount
			}
		}
	}

	// 2. Roth headroom, only when the top-up is worth recommending.
	if !profile.Tax.RothMaxed && remaining > 0 {
		rothMonthly := profile.CashFlow.RothContributions
		rothMonthlyMax := cfg.RothAnnualLimit / 12
		if rothMonthly < rothMonthlyMax {
			additional := math.Min(rothMonthlyMax-rothMonthly, remaining)
			if additional >= cfg.MinRothTopUp {
				additional = math.Round(additional)
				plan = append(plan, models.SurplusAllocation{
					Purpose: "tax_advantaged",
					Amount:  additional,
					Detail:  "Roth IRA",
				})
				remaining -= additional
			}
		}
	}

	// 3. Largest under-allocated category absorbs the rest.
	if remaining > 0 {
		var under []driftEntry
		for _, cat := range models.CategoryOrder {
			if d := allocation.Drift[cat]; d < -cfg.DriftMediumPct {
				under = append(under, driftEntry{category: cat, drift: d})
			}
		}
		if len(under) > 0 {
			sort.SliceStable(under, func(i, j int) bool {
				return math.Abs(under[i].drift) > math.Abs(under[j].drift)
			})
			plan = append(plan, models.SurplusAllocation{
				Purpose: "allocation_drift",
				Amount:  math.Round(remaining),
				Detail:  under[0].category.DisplayName(),
			})
			remaining = 0
		}
	}

	// 4. Default split across retirement and taxable equities.
	if remaining > 0 {
		retirementPct := allocation.Recommended[models.CategoryRetirement]
		equitiesPct := allocation.Recommended[models.CategoryTaxableEquities]
		totalPct := retirementPct + equitiesPct
		if totalPct > 0 {
			retirementShare := retirementPct / totalPct
			plan = append(plan,
				models.SurplusAllocation{
					Purpose: "default_split",
					Amount:  math.Round(remaining * retirementShare),
					Detail:  models.CategoryRetirement.DisplayName(),
				},
				models.SurplusAllocation{
					Purpose: "default_split",
					Amount:  math.Round(remaining * (1 - retirementShare)),
					Detail:  models.CategoryTaxableEquities.DisplayName(),
				},
			)
		}
	}

	return plan
}

// surplusRecommendations turns the waterfall into a single combined
// recommendation, or a cash-flow warning when there is no surplus to
// allocate.
func surplusRecommendations(goals *models.GoalAnalysis, allocation *models.AllocationAnalysis, profile *models.Profile, cfg *common.AdvisorConfig) ([]models.Recommendation, []models.SurplusAllocation) {
	surplus := goals.MonthlySurplus
	if surplus <= 0 {
		return []models.Recommendation{{
			Type:      models.RecTypeWarning,
			Priority:  models.PriorityHigh,
			Action:    "Review monthly cash flow",
			Rationale: "Monthly surplus is zero or negative. Cannot optimize investment allocation.",
			Impact:    "Address expenses or increase income before investment planning.",
			Numbers:   map[string]float64{"surplus": math.Round(surplus*100) / 100},
		}}, nil
	}

	plan := surplusWaterfall(goals, allocation, profile, cfg)
	if len(plan) == 0 {
		return nil, nil
	}

	parts := make([]string, 0, len(plan))
	hasUrgent := false
	purposes := make(map[string]bool, len(plan))
	for _, a := range plan {
		parts = append(parts, fmt.Sprintf("$%.0f/mo to %s", a.Amount, a.Detail))
		purposes[a.Purpose] = true
		if a.Purpose == "urgent_goal" {
			hasUrgent = true
		}
	}

	priority := models.PriorityMedium
	if hasUrgent {
		priority = models.PriorityHigh
	}

	var reasons []string
	for _, p := range []struct{ purpose, text string }{
		{"urgent_goal", "prioritizing off-track goal"},
		{"tax_advantaged", "maximizing tax-advantaged space"},
		{"allocation_drift", "correcting allocation drift"},
		{"default_split", "following target allocation"},
	} {
		if purposes[p.purpose] {
			reasons = append(reasons, p.text)
		}
	}

	rec := models.Recommendation{
		Type:      models.RecTypeSurplus,
		Priority:  priority,
		Action:    "Allocate surplus: " + strings.Join(parts, ", "),
		Rationale: "Based on: " + strings.Join(reasons, ", ") + ".",
		Impact:    fmt.Sprintf("Optimizes $%.0f/mo surplus toward highest-priority uses.", surplus),
		Numbers:   map[string]float64{"total_surplus": math.Round(surplus*100) / 100},
	}
	return []models.Recommendation{rec}, plan
}
