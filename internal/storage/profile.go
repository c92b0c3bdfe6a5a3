package storage

import (
	"path/filepath"

	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
)

const profileKey = "profile"

// profileStore persists the user profile as a single versioned document.
type profileStore struct {
	fs  *FileStore
	dir string
}

var _ interfaces.ProfileStore = (*profileStore)(nil)

func newProfileStore(fs *FileStore) *profileStore {
	return &profileStore{fs: fs, dir: filepath.Join(fs.basePath, "profile")}
}

// GetProfile returns the stored profile, or nil when none exists.
func (s *profileStore) GetProfile() (*models.Profile, error) {
	if !s.fs.exists(s.dir, profileKey) {
		return nil, nil
	}
	var p models.Profile
	if err := s.fs.readJSON(s.dir, profileKey, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *profileStore) SaveProfile(p *models.Profile) error {
	if err := s.fs.writeJSON(s.dir, profileKey, p, true); err != nil {
		return err
	}
	s.fs.logger.Info().Int("goals", len(p.Goals)).Msg("profile saved")
	return nil
}
