package models

// AccountType classifies a brokerage statement account for categorization.
type AccountType string

const (
	AccountTypeRothIRA        AccountType = "roth_ira"
	AccountTypeTraditionalIRA AccountType = "traditional_ira"
	AccountType401k           AccountType = "401k"
	AccountTypeHSA            AccountType = "hsa"
	AccountTypeTaxable        AccountType = "taxable"
)

// retirementAccountTypes are the account types that land in the
// retirement category. HSA is treated as retirement for allocation
// purposes.
var retirementAccountTypes = map[AccountType]bool{
	AccountTypeRothIRA:        true,
	AccountTypeTraditionalIRA: true,
	AccountType401k:           true,
	AccountTypeHSA:            true,
}

// IsRetirement reports whether the account type belongs to the
// retirement allocation bucket.
func (t AccountType) IsRetirement() bool {
	return retirementAccountTypes[t]
}

// SnapshotHolding is one position inside a statement snapshot.
type SnapshotHolding struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name,omitempty"`
	Quantity float64 `json:"quantity,omitempty"`
	Value    float64 `json:"value"`
}

// SnapshotPortfolio is the parsed body of a single account statement.
type SnapshotPortfolio struct {
	TotalValue float64           `json:"total_value"`
	Cash       float64           `json:"cash,omitempty"`
	Holdings   []SnapshotHolding `json:"holdings,omitempty"`
}

// AccountSnapshot is a point-in-time record of one account, extracted
// from a brokerage statement.
type AccountSnapshot struct {
	AccountName   string            `json:"account_name"`
	AccountType   AccountType       `json:"account_type"`
	Institution   string            `json:"institution,omitempty"`
	StatementDate string            `json:"statement_date"` // YYYY-MM-DD
	Portfolio     SnapshotPortfolio `json:"portfolio"`
	ImportedAt    string            `json:"imported_at,omitempty"`
}
