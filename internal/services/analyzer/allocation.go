package analyzer

import (
	"fmt"
	"math"
	"strings"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/models"
)

// recommendedAllocation builds the personalized target allocation:
// the configured baseline plus situational adjustments, normalized to
// sum to exactly 100.
func recommendedAllocation(profile *models.Profile, goals *models.GoalAnalysis, cfg *common.AnalysisConfig) (map[models.Category]float64, string) {
	recommended := map[models.Category]float64{
		models.CategoryRetirement:      cfg.Baseline.Retirement,
		models.CategoryTaxableEquities: cfg.Baseline.TaxableEquities,
		models.CategoryCrypto:          cfg.Baseline.Crypto,
		models.CategoryCash:            cfg.Baseline.Cash,
	}
	var adjustments []string

	// An urgent, behind-schedule emergency fund pulls allocation
	// toward cash. The boost is funded 60% from crypto, 40% from
	// taxable equities.
	shortTerm := goals.Goals[models.GoalTermShort]
	if shortTerm != nil && shortTerm.MonthsRemaining != nil &&
		*shortTerm.MonthsRemaining <= 12 &&
		(shortTerm.OnTrack == nil || !*shortTerm.OnTrack) {
		months := *shortTerm.MonthsRemaining
		var boost float64
		if months <= 6 {
			boost = cfg.Adjustments.UrgentGoalBoostHigh
			adjustments = append(adjustments, fmt.Sprintf("Emergency fund deadline in %d months (urgent)", months))
		} else {
			boost = cfg.Adjustments.UrgentGoalBoostLow
			adjustments = append(adjustments, fmt.Sprintf("Emergency fund deadline in %d months", months))
		}
		recommended[models.CategoryCash] += boost
		recommended[models.CategoryCrypto] -= boost * 0.6
		recommended[models.CategoryTaxableEquities] -= boost * 0.4
	}

	if profile.Tax.RothMaxed {
		adjustments = append(adjustments, "Roth IRA maxed - maintaining retirement priority")
	}

	// A new child calls for extra liquidity unless cash is already
	// elevated; funded entirely from crypto.
	desc := strings.ToLower(profile.Goal(models.GoalTermShort).Description)
	if (strings.Contains(desc, "baby") || strings.Contains(desc, "child")) &&
		recommended[models.CategoryCash] < cfg.Adjustments.LifeStageCashCeiling {
		boost := cfg.Adjustments.LifeStageCashBoost
		recommended[models.CategoryCash] += boost
		recommended[models.CategoryCrypto] -= boost
		adjustments = append(adjustments, "New baby expected - extra liquidity buffer")
	}

	// Normalize to exactly 100.
	var total float64
	for _, v := range recommended {
		total += v
	}
	if total != 100 && total > 0 {
		factor := 100 / total
		for cat, v := range recommended {
			recommended[cat] = math.Round(v*factor*10) / 10
		}
	}

	reasoning := "Standard allocation for high risk tolerance"
	if len(adjustments) > 0 {
		reasoning = strings.Join(adjustments, "; ")
	}
	return recommended, reasoning
}

// buildAllocationAnalysis compares the portfolio's current allocation
// against the recommendation and flags drift.
func buildAllocationAnalysis(portfolio *models.PortfolioResult, profile *models.Profile, goals *models.GoalAnalysis, cfg *common.Config) *models.AllocationAnalysis {
	current := make(map[models.Category]float64, len(models.CategoryOrder))
	for _, cat := range models.CategoryOrder {
		if b, ok := portfolio.ByCategory[cat]; ok {
			current[cat] = b.Pct
		} else {
			current[cat] = 0
		}
	}

	recommended, reasoning := recommendedAllocation(profile, goals, &cfg.Analysis)

	drift := make(map[models.Category]float64, len(models.CategoryOrder))
	var significant []models.Category
	rebalanceNeeded := false
	for _, cat := range models.CategoryOrder {
		d := math.Round((current[cat]-recommended[cat])*10) / 10
		drift[cat] = d
		if math.Abs(d) >= cfg.Advisor.DriftMediumPct {
			significant = append(significant, cat)
		}
		if math.Abs(d) >= cfg.Advisor.RebalanceTriggerPct {
			rebalanceNeeded = true
		}
	}

	return &models.AllocationAnalysis{
		Current:           current,
		Recommended:       recommended,
		Reasoning:         reasoning,
		Drift:             drift,
		SignificantDrifts: significant,
		RebalanceNeeded:   rebalanceNeeded,
	}
}
