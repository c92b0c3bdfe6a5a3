package storage

import (
	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
)

// Manager bundles the stores backed by one data directory.
type Manager struct {
	fileStore *FileStore
	snapshots *snapshotStore
	holdings  *holdingsStore
	profile   *profileStore
	logger    *common.Logger
}

var _ interfaces.StorageManager = (*Manager)(nil)

// NewManager opens the data directory and wires up the stores.
func NewManager(logger *common.Logger, config *common.StorageConfig) (*Manager, error) {
	fs, err := NewFileStore(logger, config)
	if err != nil {
		return nil, err
	}

	return &Manager{
		fileStore: fs,
		snapshots: newSnapshotStore(fs),
		holdings:  newHoldingsStore(fs),
		profile:   newProfileStore(fs),
		logger:    logger,
	}, nil
}

func (m *Manager) Snapshots() interfaces.SnapshotStore { return m.snapshots }
func (m *Manager) Holdings() interfaces.HoldingsStore  { return m.holdings }
func (m *Manager) Profile() interfaces.ProfileStore    { return m.profile }

// Close releases resources. File-backed stores hold nothing open
// between operations.
func (m *Manager) Close() error {
	m.logger.Debug().Msg("storage manager closed")
	return nil
}
