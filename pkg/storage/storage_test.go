package storage

import (
	"path/filepath"
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/rgbpng/pkg/decoder"
)

func testSummary() decoder.Summary {
	return decoder.Summary{
		Width:   3,
		Height:  2,
		Filters: map[string]int{"Paeth": 2},
	}
}

func openMem(t *testing.T) *ImageStore {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestImageStore_CreateRead(t *testing.T) {
	s := openMem(t)
	source := []byte("\x89PNG fake stream")

	entry, err := s.Create(testSummary(), source)
	require.NoError(t, err)
	_, err = ksuid.Parse(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, len(source), entry.Size)

	got, err := s.Read(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, 3, got.Summary.Width)
	assert.Equal(t, 2, got.Summary.Height)
	assert.Equal(t, map[string]int{"Paeth": 2}, got.Summary.Filters)
	assert.True(t, entry.CreatedAt.Equal(got.CreatedAt))

	data, err := s.Source(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, source, data)
}

func TestImageStore_Delete(t *testing.T) {
	s := openMem(t)

	entry, err := s.Create(testSummary(), []byte{1, 2, 3})
	require.NoError(t, err)

	require.NoError(t, s.Delete(entry.ID))

	_, err = s.Read(entry.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Source(entry.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(entry.ID), ErrNotFound)
}

func TestImageStore_UnknownIDs(t *testing.T) {
	s := openMem(t)

	_, err := s.Read(ksuid.New().String())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Read("not-a-ksuid")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Source("")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestImageStore_DistinctIDs(t *testing.T) {
	s := openMem(t)
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		entry, err := s.Create(testSummary(), []byte{byte(i)})
		require.NoError(t, err)
		assert.False(t, seen[entry.ID])
		seen[entry.ID] = true
	}
}

func TestImageStore_Reopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")

	s, err := Open(dir)
	require.NoError(t, err)
	entry, err := s.Create(testSummary(), []byte("persisted"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()

	data, err := s.Source(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), data)
}
