package storage

import (
	"path/filepath"

	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
)

const holdingsKey = "current"

// holdingsStore persists the manual holdings record as a single
// versioned document.
type holdingsStore struct {
	fs  *FileStore
	dir string
}

var _ interfaces.HoldingsStore = (*holdingsStore)(nil)

func newHoldingsStore(fs *FileStore) *holdingsStore {
	return &holdingsStore{fs: fs, dir: filepath.Join(fs.basePath, "holdings")}
}

// GetHoldings returns the stored record, or an empty record when none
// has been saved yet.
func (s *holdingsStore) GetHoldings() (*models.HoldingsRecord, error) {
	if !s.fs.exists(s.dir, holdingsKey) {
		return &models.HoldingsRecord{}, nil
	}
	var rec models.HoldingsRecord
	if err := s.fs.readJSON(s.dir, holdingsKey, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *holdingsStore) SaveHoldings(rec *models.HoldingsRecord) error {
	if err := s.fs.writeJSON(s.dir, holdingsKey, rec, true); err != nil {
		return err
	}
	s.fs.logger.Info().
		Int("crypto", len(rec.Crypto)).
		Int("bank_accounts", len(rec.BankAccounts)).
		Msg("holdings saved")
	return nil
}
