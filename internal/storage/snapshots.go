package storage

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
)

// snapshotStore persists account snapshots, one file per
// account + statement date.
type snapshotStore struct {
	fs  *FileStore
	dir string
}

var _ interfaces.SnapshotStore = (*snapshotStore)(nil)

func newSnapshotStore(fs *FileStore) *snapshotStore {
	return &snapshotStore{fs: fs, dir: filepath.Join(fs.basePath, "snapshots")}
}

func snapshotKey(accountName, statementDate string) string {
	return fmt.Sprintf("%s_%s", accountName, statementDate)
}

// SaveSnapshot stores a snapshot. Re-importing the same account and
// statement date overwrites the earlier copy.
func (s *snapshotStore) SaveSnapshot(snap *models.AccountSnapshot) error {
	if snap.AccountName == "" {
		return fmt.Errorf("snapshot missing account name")
	}
	if snap.StatementDate == "" {
		return fmt.Errorf("snapshot missing statement date")
	}
	key := snapshotKey(snap.AccountName, snap.StatementDate)
	if err := s.fs.writeJSON(s.dir, key, snap, false); err != nil {
		return err
	}
	s.fs.logger.Info().
		Str("account", snap.AccountName).
		Str("date", snap.StatementDate).
		Msg("snapshot saved")
	return nil
}

// ListSnapshots returns every stored snapshot, unordered.
func (s *snapshotStore) ListSnapshots() ([]*models.AccountSnapshot, error) {
	keys, err := s.fs.listKeys(s.dir)
	if err != nil {
		return nil, err
	}

	snaps := make([]*models.AccountSnapshot, 0, len(keys))
	for _, key := range keys {
		var snap models.AccountSnapshot
		if err := s.fs.readJSON(s.dir, key, &snap); err != nil {
			s.fs.logger.Warn().Str("key", key).Err(err).Msg("skipping unreadable snapshot")
			continue
		}
		snaps = append(snaps, &snap)
	}
	return snaps, nil
}

// LatestByAccount returns the most recent snapshot per account name.
// Statement dates are YYYY-MM-DD so string comparison orders them.
func (s *snapshotStore) LatestByAccount() (map[string]*models.AccountSnapshot, error) {
	snaps, err := s.ListSnapshots()
	if err != nil {
		return nil, err
	}

	// Sort ascending so the last write per account wins.
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].StatementDate < snaps[j].StatementDate
	})

	latest := make(map[string]*models.AccountSnapshot)
	for _, snap := range snaps {
		latest[snap.AccountName] = snap
	}
	return latest, nil
}
