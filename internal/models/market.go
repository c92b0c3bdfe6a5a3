package models

// CryptoQuote is one reference coin's market snapshot.
type CryptoQuote struct {
	Symbol      string   `json:"symbol"`
	Price       float64  `json:"price"`
	Change7dPct *float64 `json:"change_7d_pct"`
	Change30Pct *float64 `json:"change_30d_pct"`
}

// EquityQuote summarizes the benchmark instrument's recent movement.
// Nil change fields mean the history window was too short.
type EquityQuote struct {
	Symbol      string   `json:"symbol"`
	Price       float64  `json:"price"`
	Change7dPct *float64 `json:"change_7d_pct"`
	Change30Pct *float64 `json:"change_30d_pct"`
}

// EODBar is one end-of-day OHLCV record from the history provider.
type EODBar struct {
	Date     string  `json:"date"` // YYYY-MM-DD
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	AdjClose float64 `json:"adjusted_close"`
	Volume   int64   `json:"volume"`
}

// Sentiment is the coarse market mood derived from the average weekly
// movement of the reference crypto assets.
type Sentiment string

const (
	SentimentExtremeFear  Sentiment = "extreme_fear"
	SentimentFear         Sentiment = "fear"
	SentimentNeutral      Sentiment = "neutral"
	SentimentGreed        Sentiment = "greed"
	SentimentExtremeGreed Sentiment = "extreme_greed"
)

// MarketOpportunity is a detected buying window.
type MarketOpportunity struct {
	Asset      string   `json:"asset"`
	Signal     string   `json:"signal"` // 7d_drop or 30d_drop
	Magnitude  float64  `json:"magnitude"`
	Priority   Priority `json:"priority"`
	Suggestion string   `json:"suggestion"`
}

// MarketContext is the analyzer's view of current conditions. Partial
// results are normal: failed fetches land in FetchErrors and the
// corresponding sections stay empty.
type MarketContext struct {
	AsOf          string              `json:"as_of"`
	Crypto        []CryptoQuote       `json:"crypto,omitempty"`
	Equity        *EquityQuote        `json:"equity,omitempty"`
	Sentiment     Sentiment           `json:"sentiment"`
	Opportunities []MarketOpportunity `json:"opportunities,omitempty"`
	FetchErrors   []string            `json:"fetch_errors,omitempty"`
}
