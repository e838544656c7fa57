package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseKeyStore checks the behaviour every backend must share.
func exerciseKeyStore(t *testing.T, s KeyStore) {
	t.Helper()

	_, ok := s.Get("Math::Algebra::reviewed")
	assert.False(t, ok, "fresh store should not have the key")

	s.Set("Math::Algebra::reviewed", "true")
	v, ok := s.Get("Math::Algebra::reviewed")
	require.True(t, ok)
	assert.Equal(t, "true", v)

	// last write wins
	s.Set("Math::Algebra::reviewed", "false")
	v, _ = s.Get("Math::Algebra::reviewed")
	assert.Equal(t, "false", v)

	// empty values are stored, not treated as absent
	s.Set("Math::Algebra::date", "")
	v, ok = s.Get("Math::Algebra::date")
	assert.True(t, ok)
	assert.Equal(t, "", v)

	s.Remove("Math::Algebra::reviewed")
	_, ok = s.Get("Math::Algebra::reviewed")
	assert.False(t, ok)

	// removing an absent key is a no-op
	s.Remove("Math::Algebra::reviewed")
	s.Remove("never-set")
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	exerciseKeyStore(t, m)
	assert.Equal(t, 1, m.Len())
}

func TestSQLite(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "track.db"), nil)
	require.NoError(t, err)
	defer s.Close()

	exerciseKeyStore(t, s)
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.db")

	s, err := NewSQLite(path, nil)
	require.NoError(t, err)
	s.Set("__customList::Math", `["Geometry","Algebra"]`)
	require.NoError(t, s.Close())

	s, err = NewSQLite(path, nil)
	require.NoError(t, err)
	defer s.Close()

	v, ok := s.Get("__customList::Math")
	require.True(t, ok)
	assert.Equal(t, `["Geometry","Algebra"]`, v)
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("STUDYTRACK_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("STUDYTRACK_TEST_REDIS_ADDR not set")
	}
	prefix := "studytrack-test:" + uuid.NewString() + ":"
	r, err := NewRedis(addr, prefix, nil)
	require.NoError(t, err)
	defer r.Close()

	exerciseKeyStore(t, r)
	r.Remove("Math::Algebra::date")
}

func TestNewRedis_RequiresAddress(t *testing.T) {
	_, err := NewRedis("  ", "", nil)
	require.Error(t, err)
}
