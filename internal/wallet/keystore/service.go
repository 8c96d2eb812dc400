package keystore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github/chapool/go-signer/internal/util"
)

const fileSuffix = ".json"

// Service stores key secrets as keystore v3 files, one per address
type Service interface {
	// Store encrypts secret under password and writes it for address
	Store(ctx context.Context, address string, keyType KeyType, secret []byte, password string) (*Keystore, error)

	// Decrypt returns the plaintext secret of a keystore
	Decrypt(ctx context.Context, keystore *Keystore, password string) ([]byte, error)

	// Get loads the keystore of address
	Get(ctx context.Context, address string) (*Keystore, error)

	// List loads every keystore in the directory, sorted by address
	List(ctx context.Context) ([]*Keystore, error)

	// Exists checks if a keystore exists for address
	Exists(ctx context.Context, address string) (bool, error)
}

type service struct {
	dir    string
	params *ScryptParams
}

// NewService creates a new KeystoreService rooted at dir
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(dir string, params *ScryptParams) (Service, error) {
	if dir == "" {
		return nil, errors.New("keystore directory is required")
	}

	//nolint:mnd // owner-only directory
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "failed to create keystore directory %s", dir)
	}

	if params == nil {
		params = DefaultScryptParams()
	}

	return &service{
		dir:    dir,
		params: params,
	}, nil
}

// hex addresses are case-insensitive, SS58 addresses are not
func (s *service) path(address string) string {
	name := address
	if strings.HasPrefix(name, "0x") || strings.HasPrefix(name, "0X") {
		name = strings.ToLower(name)
	}

	return filepath.Join(s.dir, name+fileSuffix)
}

// Store encrypts secret under password and writes it for address
func (s *service) Store(ctx context.Context, address string, keyType KeyType, secret []byte, password string) (*Keystore, error) {
	log := util.LogFromContext(ctx)

	if address == "" {
		return nil, errors.New("address is required")
	}

	exists, err := s.Exists(ctx, address)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check keystore existence")
	}
	if exists {
		return nil, errors.Wrapf(ErrAlreadyExists, "address %s", address)
	}

	keystoreJSON, err := encryptSecret(secret, password, s.params)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encrypt secret")
		return nil, errors.Wrap(err, "failed to encrypt secret")
	}
	keystoreJSON.Address = address
	keystoreJSON.KeyType = keyType

	data, err := json.MarshalIndent(keystoreJSON, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal keystore JSON")
	}

	path := s.path(address)
	//nolint:mnd // owner-only key file
	if err := os.WriteFile(path, data, 0o600); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to write keystore")
		return nil, errors.Wrap(err, "failed to write keystore")
	}

	log.Info().Str("address", address).Str("key_type", string(keyType)).Msg("Stored keystore")

	return &Keystore{KeystoreJSON: *keystoreJSON, Path: path}, nil
}

// Decrypt returns the plaintext secret of a keystore
func (s *service) Decrypt(ctx context.Context, keystore *Keystore, password string) ([]byte, error) {
	log := util.LogFromContext(ctx)

	secret, err := decryptSecret(&keystore.KeystoreJSON, password)
	if err != nil {
		log.Debug().Err(err).Str("address", keystore.Address).Msg("Failed to decrypt keystore")
		return nil, errors.Wrap(err, "failed to decrypt secret")
	}

	return secret, nil
}

// Get loads the keystore of address
func (s *service) Get(_ context.Context, address string) (*Keystore, error) {
	return load(s.path(address))
}

// List loads every keystore in the directory, sorted by address
func (s *service) List(ctx context.Context) ([]*Keystore, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read keystore directory")
	}

	keystores := make([]*Keystore, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileSuffix) {
			continue
		}

		ks, err := load(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			util.LogFromContext(ctx).Warn().Err(err).Str("file", entry.Name()).Msg("Skipping unreadable keystore")
			continue
		}

		keystores = append(keystores, ks)
	}

	sort.Slice(keystores, func(i, j int) bool {
		return keystores[i].Address < keystores[j].Address
	})

	return keystores, nil
}

// Exists checks if a keystore exists for address
func (s *service) Exists(_ context.Context, address string) (bool, error) {
	_, err := os.Stat(s.path(address))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	return false, errors.Wrap(err, "failed to stat keystore")
}

func load(path string) (*Keystore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to read keystore")
	}

	var keystoreJSON KeystoreJSON
	if err := json.Unmarshal(data, &keystoreJSON); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal keystore JSON")
	}

	return &Keystore{KeystoreJSON: keystoreJSON, Path: path}, nil
}
