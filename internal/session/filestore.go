package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	KeyRestaurantToken = "restaurantToken"
	KeyToken           = "token"
)

var ErrNoToken = errors.New("no session token")

// FileStore is a JSON key/value file holding the persisted session, read
// again on every access so an external login can refresh it.
type FileStore struct {
	filePath string
	mu       sync.Mutex
	data     map[string]string
}

func NewFileStore(filePath string) (*FileStore, error) {
	fs := &FileStore{
		filePath: filePath,
		data:     make(map[string]string),
	}
	return fs, fs.load()
}

func (fs *FileStore) load() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	file, err := os.Open(fs.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	data := make(map[string]string)
	if err := json.NewDecoder(file).Decode(&data); err != nil {
		return fmt.Errorf("decode session file %s: %w", fs.filePath, err)
	}
	fs.data = data
	return nil
}

// save writes to a temp file in the same directory and renames it over the
// original.
func (fs *FileStore) save() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	dir := filepath.Dir(fs.filePath)
	file, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return err
	}
	tmp := file.Name()
	defer os.Remove(tmp)

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(fs.data); err != nil {
		file.Close()
		return err
	}
	if err := file.Chmod(0o600); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, fs.filePath)
}

// Token returns the restaurant-scoped token, falling back to the generic one.
func (fs *FileStore) Token() (string, error) {
	if err := fs.load(); err != nil {
		return "", err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	for _, key := range []string{KeyRestaurantToken, KeyToken} {
		if v := strings.TrimSpace(fs.data[key]); v != "" {
			return v, nil
		}
	}
	return "", ErrNoToken
}

func (fs *FileStore) Set(key, value string) error {
	if err := fs.load(); err != nil {
		return err
	}
	fs.mu.Lock()
	if value == "" {
		delete(fs.data, key)
	} else {
		fs.data[key] = value
	}
	fs.mu.Unlock()
	return fs.save()
}
