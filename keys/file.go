package keys

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// FileSource reads PEM files from disk. Either path may be empty.
type FileSource struct {
	PrivateKeyPath string
	PublicKeyPath  string
	KeyID          string
}

func (s FileSource) Load(ctx context.Context) (Material, error) {
	if err := ctx.Err(); err != nil {
		return Material{}, err
	}
	if s.PrivateKeyPath == "" && s.PublicKeyPath == "" {
		return Material{}, fmt.Errorf("%w: no key paths configured", ErrKeyNotFound)
	}

	m := Material{KeyID: s.KeyID}
	var err error
	if s.PrivateKeyPath != "" {
		if m.PrivateKeyPEM, err = readKeyFile(s.PrivateKeyPath); err != nil {
			return Material{}, err
		}
	}
	if s.PublicKeyPath != "" {
		if m.PublicKeyPEM, err = readKeyFile(s.PublicKeyPath); err != nil {
			return Material{}, err
		}
	}
	return m, nil
}

func readKeyFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return data, nil
}
