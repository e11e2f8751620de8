// Package keyfile implements the on-disk key store copctl uses: one JSON
// file per company under a keys directory, generated on first use and
// reused afterward. It is the Go analogue of the Python prototype's
// keymanager module, reduced to plain filesystem I/O.
package keyfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/luxfi/dvpguard/pkg/identity"
)

// Store is a directory of per-company identity files.
type Store struct {
	dir string
}

// Open returns a Store rooted at dir, creating the directory if absent.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("keyfile: create directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// LoadOrGenerate returns the identity for name, generating and persisting a
// fresh one if none exists yet.
func (s *Store) LoadOrGenerate(name string) (*identity.CompanyIdentity, error) {
	existing, err := s.Load(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	ident, err := identity.Generate(name)
	if err != nil {
		return nil, fmt.Errorf("keyfile: generate %q: %w", name, err)
	}
	if err := s.Save(ident); err != nil {
		return nil, err
	}
	return ident, nil
}

// Load returns the stored identity for name, or nil if none exists.
func (s *Store) Load(name string) (*identity.CompanyIdentity, error) {
	raw, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("keyfile: read %q: %w", name, err)
	}
	ident, err := identity.Deserialize(raw)
	if err != nil {
		return nil, fmt.Errorf("keyfile: decode %q: %w", name, err)
	}
	return ident, nil
}

// Save persists ident, overwriting any existing file for the same name.
func (s *Store) Save(ident *identity.CompanyIdentity) error {
	raw, err := identity.Serialize(ident)
	if err != nil {
		return fmt.Errorf("keyfile: encode %q: %w", ident.Name, err)
	}
	if err := os.WriteFile(s.path(ident.Name), raw, 0o600); err != nil {
		return fmt.Errorf("keyfile: write %q: %w", ident.Name, err)
	}
	return nil
}
