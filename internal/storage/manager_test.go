package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/models"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	mgr, err := NewManager(common.NewSilentLogger(), &common.StorageConfig{
		Path:     t.TempDir(),
		Versions: 2,
	})
	require.NoError(t, err)
	return mgr
}

func TestSnapshotRoundTrip(t *testing.T) {
	mgr := newTestManager(t)

	snap := &models.AccountSnapshot{
		AccountName:   "Fidelity Roth",
		AccountType:   models.AccountTypeRothIRA,
		StatementDate: "2026-07-31",
		Portfolio: models.SnapshotPortfolio{
			TotalValue: 42000,
			Holdings: []models.SnapshotHolding{
				{Symbol: "FXAIX", Value: 42000},
			},
		},
	}
	require.NoError(t, mgr.Snapshots().SaveSnapshot(snap))

	snaps, err := mgr.Snapshots().ListSnapshots()
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "Fidelity Roth", snaps[0].AccountName)
	assert.Equal(t, 42000.0, snaps[0].Portfolio.TotalValue)
}

func TestSnapshotValidation(t *testing.T) {
	mgr := newTestManager(t)

	err := mgr.Snapshots().SaveSnapshot(&models.AccountSnapshot{StatementDate: "2026-07-31"})
	assert.Error(t, err)

	err = mgr.Snapshots().SaveSnapshot(&models.AccountSnapshot{AccountName: "x"})
	assert.Error(t, err)
}

func TestLatestByAccount(t *testing.T) {
	mgr := newTestManager(t)

	for _, snap := range []*models.AccountSnapshot{
		{AccountName: "Roth", AccountType: models.AccountTypeRothIRA, StatementDate: "2026-05-31",
			Portfolio: models.SnapshotPortfolio{TotalValue: 100}},
		{AccountName: "Roth", AccountType: models.AccountTypeRothIRA, StatementDate: "2026-07-31",
			Portfolio: models.SnapshotPortfolio{TotalValue: 300}},
		{AccountName: "Roth", AccountType: models.AccountTypeRothIRA, StatementDate: "2026-06-30",
			Portfolio: models.SnapshotPortfolio{TotalValue: 200}},
		{AccountName: "401k", AccountType: models.AccountType401k, StatementDate: "2026-06-30",
			Portfolio: models.SnapshotPortfolio{TotalValue: 900}},
	} {
		require.NoError(t, mgr.Snapshots().SaveSnapshot(snap))
	}

	latest, err := mgr.Snapshots().LatestByAccount()
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, 300.0, latest["Roth"].Portfolio.TotalValue)
	assert.Equal(t, "2026-07-31", latest["Roth"].StatementDate)
	assert.Equal(t, 900.0, latest["401k"].Portfolio.TotalValue)
}

func TestSnapshotOverwriteSameDate(t *testing.T) {
	mgr := newTestManager(t)

	snap := &models.AccountSnapshot{
		AccountName:   "Roth",
		AccountType:   models.AccountTypeRothIRA,
		StatementDate: "2026-07-31",
		Portfolio:     models.SnapshotPortfolio{TotalValue: 100},
	}
	require.NoError(t, mgr.Snapshots().SaveSnapshot(snap))

	snap.Portfolio.TotalValue = 150
	require.NoError(t, mgr.Snapshots().SaveSnapshot(snap))

	snaps, err := mgr.Snapshots().ListSnapshots()
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, 150.0, snaps[0].Portfolio.TotalValue)
}

func TestHoldingsRoundTrip(t *testing.T) {
	mgr := newTestManager(t)

	// Missing record reads back as an empty record, not an error.
	rec, err := mgr.Holdings().GetHoldings()
	require.NoError(t, err)
	assert.True(t, rec.IsEmpty())

	rec = &models.HoldingsRecord{
		Crypto: []models.CryptoHolding{
			{Symbol: "BTC", Quantity: 0.5},
		},
		BankAccounts: []models.BankAccount{
			{Name: "Ally Savings", Balance: 12000},
		},
		UpdatedAt: "2026-08-26",
	}
	require.NoError(t, mgr.Holdings().SaveHoldings(rec))

	got, err := mgr.Holdings().GetHoldings()
	require.NoError(t, err)
	assert.Equal(t, 0.5, got.Crypto[0].Quantity)
	assert.Equal(t, 12000.0, got.BankAccounts[0].Balance)
}

func TestProfileRoundTrip(t *testing.T) {
	mgr := newTestManager(t)

	// No profile yet returns nil, nil.
	p, err := mgr.Profile().GetProfile()
	require.NoError(t, err)
	assert.Nil(t, p)

	target := 12000.0
	p = &models.Profile{
		CashFlow: models.MonthlyCashFlow{GrossIncome: 9000, SharedExpenses: 7000},
		Goals: map[models.GoalTerm]models.GoalSpec{
			models.GoalTermShort: {Description: "Emergency fund", Target: &target, Deadline: "2027-02"},
		},
	}
	require.NoError(t, mgr.Profile().SaveProfile(p))

	got, err := mgr.Profile().GetProfile()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2000.0, got.CashFlow.Surplus())
	assert.Equal(t, "Emergency fund", got.Goal(models.GoalTermShort).Description)
}

func TestVersionRotation(t *testing.T) {
	mgr := newTestManager(t)

	for i := 1; i <= 3; i++ {
		rec := &models.HoldingsRecord{
			BankAccounts: []models.BankAccount{{Name: "Ally", Balance: float64(i * 100)}},
		}
		require.NoError(t, mgr.Holdings().SaveHoldings(rec))
	}

	dir := filepath.Join(mgr.fileStore.basePath, "holdings")
	for _, name := range []string{"current.json", "current.json.v1", "current.json.v2"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}
