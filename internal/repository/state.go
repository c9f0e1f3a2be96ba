// state.go - Progress and result persistence
package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"upgrade-analyzer/internal/errs"
	"upgrade-analyzer/pkg/logger"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Well-known state keys. Batch runs live under the batch. prefix and are
// deleted on successful completion.
const (
	KeyAnalysisResults = "analysis.results"
	KeyAnalysisSummary = "analysis.summary"
	KeyCurrentBatch    = "batch.current"
	KeyBatchPrefix     = "batch.run."
)

// BatchRunKey returns the state key for a run id
func BatchRunKey(runID string) string {
	return KeyBatchPrefix + runID
}

type StateStoreInterface interface {
	Get(key string, out interface{}) error
	Set(key string, value interface{}) error
	Delete(key string) error
	Has(key string) (bool, error)
	Keys(prefix string) ([]string, error)
	Close() error
}

// StateStore is a flat namespaced key-value store backed by LevelDB. Values
// are JSON-serialized. The design assumes one process owns the store.
type StateStore struct {
	db     *leveldb.DB
	logger logger.Logger
	mutex  sync.RWMutex
	closed bool
}

// NewStateStore opens (or creates) the store under baseDir. A corrupted
// database is removed and recreated rather than failing startup.
func NewStateStore(baseDir string, logger logger.Logger) (*StateStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := openStateDB(baseDir)
	if err != nil {
		logger.Warn("state store open failed, recreating: %v", err)
		if removeErr := os.RemoveAll(baseDir); removeErr != nil {
			return nil, fmt.Errorf("failed to remove corrupted state store %s: %w", baseDir, removeErr)
		}
		db, err = openStateDB(baseDir)
		if err != nil {
			return nil, fmt.Errorf("failed to recreate state store %s: %w", baseDir, err)
		}
	}

	logger.Info("state store opened at %s", baseDir)
	return &StateStore{db: db, logger: logger}, nil
}

func openStateDB(dbPath string) (*leveldb.DB, error) {
	dbOptions := &opt.Options{
		WriteBuffer:        4 * 1024 * 1024,
		BlockCacheCapacity: 8 * 1024 * 1024,
	}
	db, err := leveldb.OpenFile(dbPath, dbOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}
	return db, nil
}

// Get reads and decodes the value at key into out
func (s *StateStore) Get(key string, out interface{}) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.closed {
		return fmt.Errorf("state store is closed")
	}

	data, err := s.db.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return errs.ErrKeyNotFound
		}
		return fmt.Errorf("failed to get key %s: %w", key, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode value for key %s: %w", key, err)
	}
	return nil
}

// Set encodes and writes the value at key
func (s *StateStore) Set(key string, value interface{}) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return fmt.Errorf("state store is closed")
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for key %s: %w", key, err)
	}
	if err := s.db.Put([]byte(key), data, nil); err != nil {
		return fmt.Errorf("failed to put key %s: %w", key, err)
	}
	return nil
}

// Delete removes the key, deleting a missing key is not an error
func (s *StateStore) Delete(key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return fmt.Errorf("state store is closed")
	}

	if err := s.db.Delete([]byte(key), nil); err != nil && !errors.Is(err, leveldb.ErrNotFound) {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Has reports whether the key exists
func (s *StateStore) Has(key string) (bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.closed {
		return false, fmt.Errorf("state store is closed")
	}
	return s.db.Has([]byte(key), nil)
}

// Keys returns all keys under the given prefix
func (s *StateStore) Keys(prefix string) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("state store is closed")
	}

	var keys []string
	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
	defer iter.Release()
	for iter.Next() {
		key := string(iter.Key())
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate keys with prefix %s: %w", prefix, err)
	}
	return keys, nil
}

// Close closes the underlying database
func (s *StateStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.logger.Info("state store closed")
	return s.db.Close()
}
