// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// ErrModelNotFound is returned when no snapshot matches the requested key.
var ErrModelNotFound = errors.New("model snapshot not found")

// Key prefixes
const (
	prefixModel   = "model:"
	prefixVersion = "version:"
)

// ModelMetadata contains information about a stored model.
type ModelMetadata struct {
	// Name is the model name (e.g., "svd").
	Name string `json:"name"`

	// Key identifies the training inputs, see SnapshotKey.
	Key string `json:"key"`

	// Version is the per-name save counter (monotonically increasing).
	Version int `json:"version"`

	// Fingerprint identifies the dataset the model was trained on.
	Fingerprint string `json:"fingerprint"`

	// ConfigHash identifies the hyper-parameters the model was trained with.
	ConfigHash string `json:"config_hash"`

	// TrainedAt is when the model was trained.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the model was saved.
	SavedAt time.Time `json:"saved_at"`

	// RatingCount is the number of ratings used for training.
	RatingCount int `json:"rating_count"`

	// ItemCount is the number of unique items.
	ItemCount int `json:"item_count"`

	// UserCount is the number of unique users.
	UserCount int `json:"user_count"`

	// RMSE and MAE are the holdout errors measured after training.
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`

	// Checksum is the SHA-256 checksum of the model data.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed model size in bytes.
	SizeBytes int64 `json:"size_bytes"`

	// TrainingDurationMS is how long training took.
	TrainingDurationMS int64 `json:"training_duration_ms"`
}

// storedModel is the value format for model entries.
type storedModel struct {
	Metadata       ModelMetadata
	CompressedData []byte
}

// Config configures the snapshot store.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps all data in memory; used by tests and ephemeral runs.
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool
}

// Store persists trained model snapshots in BadgerDB.
type Store struct {
	db     *badger.DB
	logger zerolog.Logger

	// mu serializes version allocation across concurrent saves.
	mu sync.Mutex
}

// Open opens (or creates) a store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg Config, logger zerolog.Logger) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("storage path is required unless in-memory")
		}
		opts = badger.DefaultOptions(cfg.Path)
		opts.SyncWrites = cfg.SyncWrites
	}

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger.With().Str("component", "model_store").Logger(),
	}

	s.logger.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Msg("model store opened")

	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SnapshotKey combines a dataset fingerprint and a config hash into the
// lookup key of a snapshot.
func SnapshotKey(fingerprint, configHash string) string {
	return fingerprint + "." + configHash
}

// HashConfig returns a short stable hash of a gob-encodable configuration value.
func HashConfig(cfg any) (string, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(cfg); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:8]), nil
}

// Save stores data under (name, key), replacing any previous entry with the
// same key. The stored version is one more than the latest saved for name.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *Store) Save(ctx context.Context, name, key string, data any, meta ModelMetadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Serialize model data
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	rawData := buf.Bytes()

	// Compute checksum
	hash := sha256.Sum256(rawData)
	meta.Checksum = hex.EncodeToString(hash[:])

	// Compress data
	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	meta.SizeBytes = int64(compressed.Len())
	meta.SavedAt = time.Now()
	meta.Name = name
	meta.Key = key

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(txn *badger.Txn) error {
		version, err := readVersion(txn, name)
		if err != nil {
			return err
		}
		meta.Version = version + 1

		var value bytes.Buffer
		if err := gob.NewEncoder(&value).Encode(storedModel{
			Metadata:       meta,
			CompressedData: compressed.Bytes(),
		}); err != nil {
			return fmt.Errorf("encode stored model: %w", err)
		}

		if err := txn.Set(modelKey(name, key), value.Bytes()); err != nil {
			return err
		}
		return txn.Set(versionKey(name), []byte(strconv.Itoa(meta.Version)))
	})
	if err != nil {
		return fmt.Errorf("save model %s: %w", name, err)
	}

	s.logger.Info().
		Str("name", name).
		Str("key", key).
		Int("version", meta.Version).
		Int64("size_bytes", meta.SizeBytes).
		Msg("model snapshot saved")

	return nil
}

// Load decodes the snapshot stored under (name, key) into target.
// Returns ErrModelNotFound if there is none.
func (s *Store) Load(ctx context.Context, name, key string, target any) (*ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sm storedModel
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(modelKey(name, key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrModelNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return gob.NewDecoder(bytes.NewReader(val)).Decode(&sm)
		})
	})
	if err != nil {
		if errors.Is(err, ErrModelNotFound) {
			return nil, fmt.Errorf("%w: %s/%s", ErrModelNotFound, name, key)
		}
		return nil, fmt.Errorf("read model %s: %w", name, err)
	}

	if err := decodeModel(sm, target); err != nil {
		return nil, err
	}
	return &sm.Metadata, nil
}

// decodeModel decompresses, verifies and decodes a stored model.
//
//nolint:gocritic // hugeParam: sm is read once per load
func decodeModel(sm storedModel, target any) error {
	gzr, err := gzip.NewReader(bytes.NewReader(sm.CompressedData))
	if err != nil {
		return fmt.Errorf("decompress model: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return fmt.Errorf("read decompressed data: %w", err)
	}

	// Verify checksum
	hash := sha256.Sum256(rawData)
	checksum := hex.EncodeToString(hash[:])
	if checksum != sm.Metadata.Checksum {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", sm.Metadata.Checksum, checksum)
	}

	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(target); err != nil {
		return fmt.Errorf("decode model: %w", err)
	}
	return nil
}

// GetLatestVersion returns the latest version number saved for a model.
func (s *Store) GetLatestVersion(name string) (int, bool) {
	var version int
	err := s.db.View(func(txn *badger.Txn) error {
		v, err := readVersion(txn, name)
		version = v
		return err
	})
	if err != nil || version == 0 {
		return 0, false
	}
	return version, true
}

// ListModels returns metadata for all stored snapshots, newest version first.
func (s *Store) ListModels(ctx context.Context) ([]ModelMetadata, error) {
	var models []ModelMetadata

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixModel)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			item := it.Item()
			var sm storedModel
			err := item.Value(func(val []byte) error {
				return gob.NewDecoder(bytes.NewReader(val)).Decode(&sm)
			})
			if err != nil {
				s.logger.Warn().Err(err).Str("key", string(item.Key())).Msg("skipping unreadable model entry")
				continue
			}
			models = append(models, sm.Metadata)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	sort.SliceStable(models, func(i, j int) bool {
		if models[i].Name != models[j].Name {
			return models[i].Name < models[j].Name
		}
		return models[i].Version > models[j].Version
	})
	return models, nil
}

// Delete removes the snapshot stored under (name, key).
func (s *Store) Delete(ctx context.Context, name, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		k := modelKey(name, key)
		if _, err := txn.Get(k); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrModelNotFound
		} else if err != nil {
			return err
		}
		return txn.Delete(k)
	})
	if err != nil {
		return fmt.Errorf("delete model %s/%s: %w", name, key, err)
	}
	return nil
}

// Prune removes old snapshots of name, keeping the keepVersions newest.
// Returns the number of snapshots removed.
func (s *Store) Prune(ctx context.Context, name string, keepVersions int) (int, error) {
	if keepVersions < 1 {
		keepVersions = 1
	}

	all, err := s.ListModels(ctx)
	if err != nil {
		return 0, err
	}

	var versions []ModelMetadata
	for _, m := range all {
		if m.Name == name {
			versions = append(versions, m)
		}
	}
	if len(versions) <= keepVersions {
		return 0, nil
	}

	stale := versions[keepVersions:]
	err = s.db.Update(func(txn *badger.Txn) error {
		for _, m := range stale {
			if err := txn.Delete(modelKey(name, m.Key)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("prune models %s: %w", name, err)
	}

	s.logger.Debug().
		Str("name", name).
		Int("removed", len(stale)).
		Int("kept", keepVersions).
		Msg("pruned model snapshots")

	return len(stale), nil
}

func readVersion(txn *badger.Txn, name string) (int, error) {
	item, err := txn.Get(versionKey(name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = item.Value(func(val []byte) error {
		v, err := strconv.Atoi(string(val))
		version = v
		return err
	})
	return version, err
}

func modelKey(name, key string) []byte {
	return []byte(prefixModel + name + ":" + strings.ReplaceAll(key, ":", "_"))
}

func versionKey(name string) []byte {
	return []byte(prefixVersion + name)
}
