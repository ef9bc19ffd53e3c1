// Package yamlfile stores each record as a YAML file under a save
// directory, keeping the previous good copy as a .bak alongside it.
package yamlfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/tatianab/orb-cult/internal/storage"
)

// DefaultDir is where records are written when no directory is configured.
const DefaultDir = ".saves"

// Backend implements storage.Backend and storage.Restorer on the
// filesystem. Callers serialize access per record; the store does that.
type Backend struct {
	dir string
}

// Open prepares dir for use, creating it if needed.
func Open(dir string) (*Backend, error) {
	if strings.TrimSpace(dir) == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create save dir %s: %w", dir, err)
	}
	return &Backend{dir: filepath.Clean(dir)}, nil
}

// Dir returns the save directory.
func (b *Backend) Dir() string { return b.dir }

func (b *Backend) path(keyspace, id string) string {
	return filepath.Join(b.dir, keyspace, url.PathEscape(id)+".yaml")
}

// Load implements storage.Backend.
func (b *Backend) Load(ctx context.Context, keyspace, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(b.path(keyspace, id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storage.ErrNotFound
	}
	return data, err
}

// Save writes data to a temp file and renames it over the record. The
// record being replaced becomes the backup. If the rename fails the backup
// is put back.
func (b *Backend) Save(ctx context.Context, keyspace, id string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := b.path(keyspace, id)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	hadPrev := false
	if err := copyFile(path, path+".bak"); err == nil {
		hadPrev = true
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("backup %s: %w", path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		if hadPrev {
			if rerr := copyFile(path+".bak", path); rerr != nil {
				return errors.Join(err, rerr)
			}
		}
		return err
	}
	return nil
}

// Delete implements storage.Backend. The backup goes too.
func (b *Backend) Delete(ctx context.Context, keyspace, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := b.path(keyspace, id)
	for _, p := range []string{path, path + ".bak"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Restore replaces the record with its backup.
func (b *Backend) Restore(ctx context.Context, keyspace, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := b.path(keyspace, id)
	if err := copyFile(path+".bak", path); err != nil {
		return fmt.Errorf("restore %s: %w", path, err)
	}
	return nil
}

// Close implements storage.Backend.
func (b *Backend) Close() error { return nil }

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, dst)
}
