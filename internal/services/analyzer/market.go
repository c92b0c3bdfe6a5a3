package analyzer

import (
	"context"
	"fmt"
	"math"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/models"
)

// buildMarketContext fetches reference crypto and equity data and
// derives sentiment and opportunities. Fetch failures degrade to
// partial context with the error recorded; this never fails outright.
func (s *Service) buildMarketContext(ctx context.Context) *models.MarketContext {
	mc := &models.MarketContext{
		AsOf:      s.now().Format("2006-01-02"),
		Sentiment: models.SentimentNeutral,
	}

	quotes, err := s.cryptoPrice.GetMarkets(ctx, s.config.Analysis.ReferenceCrypto)
	if err != nil {
		s.logger.Warn().Err(err).Msg("crypto market fetch failed")
		mc.FetchErrors = append(mc.FetchErrors, fmt.Sprintf("crypto: %v", err))
	} else {
		mc.Crypto = quotes
	}

	equity, err := s.fetchEquityQuote(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("equity benchmark fetch failed")
		mc.FetchErrors = append(mc.FetchErrors, fmt.Sprintf("equities: %v", err))
	} else {
		mc.Equity = equity
	}

	mc.Sentiment = classifySentiment(mc.Crypto)
	mc.Opportunities = detectOpportunities(mc.Crypto, mc.Equity, &s.config.Analysis.Opportunities)

	return mc
}

// fetchEquityQuote pulls ~3 months of benchmark history and computes
// 7-day (5 trading days) and 30-day (21 trading days) changes against
// the latest close.
func (s *Service) fetchEquityQuote(ctx context.Context) (*models.EquityQuote, error) {
	to := s.now()
	from := to.AddDate(0, -3, 0)

	bars, err := s.equityHistory.GetHistory(ctx, s.config.Analysis.EquityBenchmark,
		from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no history for %s", s.config.Analysis.EquityBenchmark)
	}

	latest := bars[len(bars)-1].AdjClose
	quote := &models.EquityQuote{
		Symbol: s.config.Analysis.EquityBenchmark,
		Price:  math.Round(latest*100) / 100,
	}

	if len(bars) > 5 {
		quote.Change7dPct = pctChange(bars[len(bars)-6].AdjClose, latest)
	}
	if len(bars) > 21 {
		quote.Change30Pct = pctChange(bars[len(bars)-22].AdjClose, latest)
	}
	return quote, nil
}

func pctChange(base, latest float64) *float64 {
	if base == 0 {
		return nil
	}
	change := math.Round((latest-base)/base*10000) / 100
	return &change
}

// classifySentiment buckets the average 7d change across the reference
// coins that reported one.
func classifySentiment(quotes []models.CryptoQuote) models.Sentiment {
	var sum float64
	var n int
	for _, q := range quotes {
		if q.Change7dPct != nil {
			sum += *q.Change7dPct
			n++
		}
	}
	if n == 0 {
		return models.SentimentNeutral
	}
	avg := sum / float64(n)

	switch {
	case avg <= -15:
		return models.SentimentExtremeFear
	case avg <= -5:
		return models.SentimentFear
	case avg >= 15:
		return models.SentimentExtremeGreed
	case avg >= 5:
		return models.SentimentGreed
	default:
		return models.SentimentNeutral
	}
}

// detectOpportunities checks each reference asset against its dip
// thresholds. Each asset is evaluated independently; for equities the
// 30d correction rule wins over the 7d pullback rule.
func detectOpportunities(quotes []models.CryptoQuote, equity *models.EquityQuote, thresholds *common.OpportunityThresholds) []models.MarketOpportunity {
	var opportunities []models.MarketOpportunity

	for _, q := range quotes {
		if q.Change7dPct == nil {
			continue
		}
		change := math.Round(*q.Change7dPct*10) / 10
		switch {
		case change <= thresholds.CryptoStrongDCA:
			opportunities = append(opportunities, models.MarketOpportunity{
				Asset:      q.Symbol,
				Signal:     "7d_drop",
				Magnitude:  change,
				Priority:   models.PriorityHigh,
				Suggestion: "Significant dip - strong DCA signal if aligned with strategy",
			})
		case change <= thresholds.CryptoPotentialDCA:
			opportunities = append(opportunities, models.MarketOpportunity{
				Asset:      q.Symbol,
				Signal:     "7d_drop",
				Magnitude:  change,
				Priority:   models.PriorityMedium,
				Suggestion: "Potential DCA opportunity",
			})
		}
	}

	if equity != nil && equity.Change7dPct != nil {
		change7d := math.Round(*equity.Change7dPct*10) / 10
		if equity.Change30Pct != nil && *equity.Change30Pct <= thresholds.EquityCorrection {
			opportunities = append(opportunities, models.MarketOpportunity{
				Asset:      equity.Symbol,
				Signal:     "30d_drop",
				Magnitude:  math.Round(*equity.Change30Pct*10) / 10,
				Priority:   models.PriorityHigh,
				Suggestion: "Correction territory - consider adding to index positions",
			})
		} else if change7d <= thresholds.EquityPullback {
			opportunities = append(opportunities, models.MarketOpportunity{
				Asset:      equity.Symbol,
				Signal:     "7d_drop",
				Magnitude:  change7d,
				Priority:   models.PriorityMedium,
				Suggestion: "Market pullback - consider adding to positions",
			})
		}
	}

	return opportunities
}
