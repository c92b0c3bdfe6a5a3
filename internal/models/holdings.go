package models

import "strings"

// CryptoHolding is a manually tracked coin position. Quantity is in
// native units; value is derived from live prices at aggregation time.
type CryptoHolding struct {
	Symbol   string  `json:"symbol"` // e.g. BTC, ETH
	Quantity float64 `json:"quantity"`
	Wallet   string  `json:"wallet,omitempty"`
}

// BankAccount is a manually tracked cash balance.
type BankAccount struct {
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
	Kind    string  `json:"kind,omitempty"` // checking, savings, cd
}

// OtherAsset is a miscellaneous manual balance. An asset named or
// kinded "hsa" is counted as retirement savings; everything else is
// cash.
type OtherAsset struct {
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
	Kind    string  `json:"kind,omitempty"` // hsa, i_bonds, ...
}

// IsRetirement reports whether the asset counts toward the retirement
// bucket.
func (o OtherAsset) IsRetirement() bool {
	return strings.EqualFold(o.Kind, "hsa") || strings.EqualFold(o.Name, "hsa")
}

// HoldingsRecord is the manually maintained ledger of assets that do
// not appear on brokerage statements.
type HoldingsRecord struct {
	Crypto       []CryptoHolding `json:"crypto,omitempty"`
	BankAccounts []BankAccount   `json:"bank_accounts,omitempty"`
	Other        []OtherAsset    `json:"other,omitempty"`
	UpdatedAt    string          `json:"updated_at,omitempty"` // YYYY-MM-DD
}

// IsEmpty reports whether the record carries no positions at all.
func (h *HoldingsRecord) IsEmpty() bool {
	return h == nil || (len(h.Crypto) == 0 && len(h.BankAccounts) == 0 && len(h.Other) == 0)
}
