package interfaces

import "github.com/bobmcallan/tally/internal/models"

// SnapshotStore persists account statement snapshots.
type SnapshotStore interface {
	// SaveSnapshot stores a snapshot keyed by account name and
	// statement date. Re-saving the same pair overwrites.
	SaveSnapshot(snap *models.AccountSnapshot) error

	// ListSnapshots returns every stored snapshot.
	ListSnapshots() ([]*models.AccountSnapshot, error)

	// LatestByAccount returns the most recent snapshot per account
	// name, chosen by statement date.
	LatestByAccount() (map[string]*models.AccountSnapshot, error)
}

// HoldingsStore persists the manually tracked holdings record.
type HoldingsStore interface {
	// GetHoldings returns the current record, or an empty record when
	// none has been saved.
	GetHoldings() (*models.HoldingsRecord, error)
	SaveHoldings(rec *models.HoldingsRecord) error
}

// ProfileStore persists the user financial profile.
type ProfileStore interface {
	// GetProfile returns the stored profile, or nil when none exists.
	GetProfile() (*models.Profile, error)
	SaveProfile(p *models.Profile) error
}

// StorageManager bundles the stores backed by a single data directory.
type StorageManager interface {
	Snapshots() SnapshotStore
	Holdings() HoldingsStore
	Profile() ProfileStore
	Close() error
}
