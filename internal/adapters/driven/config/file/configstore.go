package file

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/sercha-pdf/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

const (
	// DirName is the default configuration directory under the user's home.
	DirName = ".sercha-pdf"

	// FileName is the settings file inside the configuration directory.
	FileName = "config.toml"
)

// ConfigStore persists settings to a TOML file. Keys are flat in memory
// and written back as nested tables, so "embedding.provider" lands under
// [embedding]. Every write rewrites the whole file.
type ConfigStore struct {
	*memory.ConfigStore

	writeMu sync.Mutex
	path    string
}

// DefaultDir returns ~/.sercha-pdf.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DirName), nil
}

// NewConfigStore opens dir/config.toml, creating dir when needed.
// An empty dir means DefaultDir. A missing file is an empty configuration.
func NewConfigStore(dir string) (*ConfigStore, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating config dir: %w", err)
	}

	s := &ConfigStore{
		ConfigStore: memory.NewConfigStore(),
		path:        filepath.Join(dir, FileName),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.path
}

// Set stores value under key and rewrites the file.
func (s *ConfigStore) Set(key string, value any) error {
	return s.SetAll(map[string]any{key: value})
}

// SetAll stores values and rewrites the file once.
func (s *ConfigStore) SetAll(values map[string]any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.ConfigStore.SetAll(values); err != nil {
		return err
	}
	data, err := toml.Marshal(nestMap(s.Snapshot()))
	if err != nil {
		return fmt.Errorf("encoding %s: %w", s.path, err)
	}
	// The file may hold an API key.
	return os.WriteFile(s.path, data, 0o600)
}

// Reload replaces the in-memory values with the file's contents.
func (s *ConfigStore) Reload() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.Replace(nil)
		return nil
	}
	if err != nil {
		return err
	}

	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("parsing %s: %w", s.path, err)
	}
	s.Replace(flattenMap(tree, ""))
	return nil
}

// flattenMap turns nested tables into dot keys: {"a": {"b": 1}} -> {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if prefix != "" {
			k = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			for nk, nv := range flattenMap(nested, k) {
				out[nk] = nv
			}
			continue
		}
		out[k] = v
	}
	return out
}

// nestMap is the inverse of flattenMap. Keys are placed in sorted order, so
// when "a" and "a.b" both exist the leaf wins and "a.b" stays a quoted key.
func nestMap(flat map[string]any) map[string]any {
	root := make(map[string]any)
	for _, key := range slices.Sorted(maps.Keys(flat)) {
		value := flat[key]
		parts := strings.Split(key, ".")
		if table, ok := walkTables(root, parts[:len(parts)-1]); ok {
			table[parts[len(parts)-1]] = value
		} else {
			root[key] = value
		}
	}
	return root
}

// walkTables descends path from root, creating missing tables. It fails when
// a path element is already a leaf value.
func walkTables(root map[string]any, path []string) (map[string]any, bool) {
	node := root
	for _, part := range path {
		child, exists := node[part]
		if !exists {
			next := make(map[string]any)
			node[part] = next
			node = next
			continue
		}
		next, ok := child.(map[string]any)
		if !ok {
			return nil, false
		}
		node = next
	}
	return node, true
}
