// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

// Package storage persists trained correlation models to disk.
//
// Artifacts are gob-encoded, gzip-compressed, and written as versioned
// files named {name}_v{version}.gob.gz. Each file embeds metadata with a
// SHA-256 checksum of the uncompressed payload, verified on load, so a
// truncated or corrupted artifact fails loudly instead of publishing a
// broken model.
package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ArtifactMetadata describes one stored artifact version.
type ArtifactMetadata struct {
	// Name is the artifact family name.
	Name string `json:"name"`

	// Version is the monotonically increasing model version.
	Version int `json:"version"`

	// TrainedAt is when the training run completed.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the artifact was written.
	SavedAt time.Time `json:"saved_at"`

	// RatingCount is the number of ratings the model was trained on.
	RatingCount int `json:"rating_count"`

	// ItemCount is the number of unique items in the model.
	ItemCount int `json:"item_count"`

	// UserCount is the number of unique raters.
	UserCount int `json:"user_count"`

	// Checksum is the SHA-256 checksum of the uncompressed payload.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed payload size.
	SizeBytes int64 `json:"size_bytes"`

	// TrainingDurationMS is how long the training run took.
	TrainingDurationMS int64 `json:"training_duration_ms"`
}

// storedFile is the on-disk format.
type storedFile struct {
	Metadata       ArtifactMetadata
	CompressedData []byte
}

// Store manages versioned artifact files under one directory. All
// operations are safe for concurrent use.
type Store struct {
	baseDir string

	mu       sync.RWMutex
	versions map[string]int
}

// NewStore opens an artifact store at baseDir, creating the directory
// and scanning any versions already on disk.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	s := &Store{
		baseDir:  baseDir,
		versions: make(map[string]int),
	}
	if err := s.scan(); err != nil {
		return nil, fmt.Errorf("scan existing artifacts: %w", err)
	}
	return s, nil
}

func (s *Store) scan() error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, version, ok := parseArtifactFilename(entry.Name())
		if !ok {
			continue
		}
		if current, seen := s.versions[name]; !seen || version > current {
			s.versions[name] = version
		}
	}
	return nil
}

// parseArtifactFilename splits "corr_matrix_v3.gob.gz" into
// ("corr_matrix", 3). The version marker is the last "_v" so names may
// themselves contain underscores.
func parseArtifactFilename(filename string) (name string, version int, ok bool) {
	base := strings.TrimSuffix(filename, ".gob.gz")
	if base == filename {
		return "", 0, false
	}
	idx := strings.LastIndex(base, "_v")
	if idx < 1 {
		return "", 0, false
	}
	if _, err := fmt.Sscanf(base[idx+2:], "%d", &version); err != nil || version < 1 {
		return "", 0, false
	}
	return base[:idx], version, true
}

// Save serializes state, checksums and compresses it, and writes the
// versioned artifact file. The write goes through a temp file and
// rename so a crash mid-write never leaves a partial artifact behind.
func (s *Store) Save(ctx context.Context, name string, version int, state any, meta ArtifactMetadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	raw := buf.Bytes()

	hash := sha256.Sum256(raw)
	meta.Checksum = hex.EncodeToString(hash[:])

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw); err != nil {
		return fmt.Errorf("compress artifact: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	meta.Name = name
	meta.Version = version
	meta.SavedAt = time.Now()
	meta.SizeBytes = int64(compressed.Len())

	final := s.artifactPath(name, version)
	tmp := final + ".tmp"
	f, err := os.Create(tmp) //nolint:gosec // path is built from the configured directory and a fixed name
	if err != nil {
		return fmt.Errorf("create artifact file: %w", err)
	}
	sf := storedFile{Metadata: meta, CompressedData: compressed.Bytes()}
	if err := gob.NewEncoder(f).Encode(sf); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write artifact file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close artifact file: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("publish artifact file: %w", err)
	}

	if current, ok := s.versions[name]; !ok || version > current {
		s.versions[name] = version
	}
	return nil
}

// Load reads an artifact into target, verifying the checksum. Version 0
// loads the latest stored version.
func (s *Store) Load(ctx context.Context, name string, version int, target any) (*ArtifactMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		var ok bool
		version, ok = s.versions[name]
		if !ok {
			return nil, fmt.Errorf("no stored artifact named %q", name)
		}
	}

	f, err := os.Open(s.artifactPath(name, version)) //nolint:gosec // path is built from the configured directory and a fixed name
	if err != nil {
		return nil, fmt.Errorf("open artifact file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read artifact file: %w", err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("decompress artifact: %w", err)
	}
	defer func() { _ = gzr.Close() }()

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(raw)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Metadata.Checksum {
		return nil, fmt.Errorf("checksum mismatch for %s v%d: expected %s, got %s",
			name, version, sf.Metadata.Checksum, checksum)
	}

	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(target); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	return &sf.Metadata, nil
}

// LatestVersion returns the newest stored version for a name.
func (s *Store) LatestVersion(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	version, ok := s.versions[name]
	return version, ok
}

// List returns metadata for every stored version of a name, newest
// first. Unreadable files are skipped.
func (s *Store) List(ctx context.Context, name string) ([]ArtifactMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	versions, err := s.versionsOnDisk(name)
	if err != nil {
		return nil, err
	}

	metas := make([]ArtifactMetadata, 0, len(versions))
	for _, v := range versions {
		f, err := os.Open(s.artifactPath(name, v)) //nolint:gosec // path is built from the configured directory and a fixed name
		if err != nil {
			continue
		}
		var sf storedFile
		decodeErr := gob.NewDecoder(f).Decode(&sf)
		_ = f.Close()
		if decodeErr != nil {
			continue
		}
		metas = append(metas, sf.Metadata)
	}
	return metas, nil
}

// Delete removes one stored version and refreshes version tracking.
func (s *Store) Delete(ctx context.Context, name string, version int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.artifactPath(name, version)); err != nil {
		return fmt.Errorf("delete artifact: %w", err)
	}

	if s.versions[name] != version {
		return nil
	}
	remaining, err := s.versionsOnDisk(name)
	if err != nil {
		return fmt.Errorf("rescan artifacts: %w", err)
	}
	if len(remaining) == 0 {
		delete(s.versions, name)
		return nil
	}
	s.versions[name] = remaining[0]
	return nil
}

// Prune deletes all but the newest keep versions of a name. Removal is
// best effort.
func (s *Store) Prune(ctx context.Context, name string, keep int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if keep < 1 {
		keep = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	versions, err := s.versionsOnDisk(name)
	if err != nil {
		return fmt.Errorf("rescan artifacts: %w", err)
	}
	for i := keep; i < len(versions); i++ {
		_ = os.Remove(s.artifactPath(name, versions[i]))
	}
	return nil
}

// versionsOnDisk lists stored versions for a name, newest first.
// Callers must hold s.mu.
func (s *Store) versionsOnDisk(name string) ([]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}
	var versions []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		entryName, v, ok := parseArtifactFilename(entry.Name())
		if !ok || entryName != name {
			continue
		}
		versions = append(versions, v)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(versions)))
	return versions, nil
}

func (s *Store) artifactPath(name string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d.gob.gz", name, version))
}
