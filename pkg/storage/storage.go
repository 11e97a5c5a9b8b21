// Package storage keeps decoded image summaries and their source streams in
// a pebble database keyed by KSUID.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/rgbpng/pkg/decoder"
)

// ErrNotFound is returned for ids that have no stored image
var ErrNotFound = errors.New("image not found")

// Key prefixes; both are followed by the 20 byte KSUID.
const (
	prefixSummary = 'm'
	prefixSource  = 's'
)

// Entry is a stored image description
type Entry struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Size      int             `json:"size"`
	Summary   decoder.Summary `json:"summary"`
}

// ImageStore persists images in pebble
type ImageStore struct {
	db *pebble.DB
}

// Open opens or creates an image store in dir
func Open(dir string) (*ImageStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open image store: %w", err)
	}
	return &ImageStore{db: db}, nil
}

// OpenInMemory opens a store backed by an in-memory filesystem
func OpenInMemory() (*ImageStore, error) {
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory image store: %w", err)
	}
	return &ImageStore{db: db}, nil
}

// Create stores a summary and the stream it was decoded from under a new id
func (s *ImageStore) Create(summary decoder.Summary, source []byte) (*Entry, error) {
	id := ksuid.New()
	entry := &Entry{
		ID:        id.String(),
		CreatedAt: id.Time().UTC(),
		Size:      len(source),
		Summary:   summary,
	}
	meta, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to encode entry: %w", err)
	}

	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Set(key(prefixSummary, id), meta, nil); err != nil {
		return nil, err
	}
	if err := b.Set(key(prefixSource, id), source, nil); err != nil {
		return nil, err
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}
	return entry, nil
}

// Read returns the entry stored under id
func (s *ImageStore) Read(id string) (*Entry, error) {
	kid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	data, err := s.get(key(prefixSummary, kid))
	if err != nil {
		return nil, err
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode entry %s: %w", id, err)
	}
	return &entry, nil
}

// Source returns the original stream stored under id
func (s *ImageStore) Source(id string) ([]byte, error) {
	kid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.get(key(prefixSource, kid))
}

// Delete removes the image stored under id
func (s *ImageStore) Delete(id string) error {
	kid, err := parseID(id)
	if err != nil {
		return err
	}
	if _, err := s.get(key(prefixSummary, kid)); err != nil {
		return err
	}

	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Delete(key(prefixSummary, kid), nil); err != nil {
		return err
	}
	if err := b.Delete(key(prefixSource, kid), nil); err != nil {
		return err
	}
	return b.Commit(pebble.Sync)
}

// Close closes the underlying database
func (s *ImageStore) Close() error {
	return s.db.Close()
}

func (s *ImageStore) get(k []byte) ([]byte, error) {
	data, closer, err := s.db.Get(k)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	// data is only valid until closer is closed
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func key(prefix byte, id ksuid.KSUID) []byte {
	return append([]byte{prefix}, id.Bytes()...)
}

func parseID(id string) (ksuid.KSUID, error) {
	kid, err := ksuid.Parse(id)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("%w: invalid id %q", ErrNotFound, id)
	}
	return kid, nil
}
